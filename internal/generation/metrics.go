package generation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"lessonforge/internal/family"
)

var (
	generationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lessonforge_generation_outcomes_total",
			Help: "Terminal generation outcomes by content family.",
		},
		[]string{"family", "outcome"},
	)
	generationAttempts = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lessonforge_generation_attempts",
			Help:    "Attempts consumed per terminal generation run.",
			Buckets: []float64{1, 2, 3},
		},
		[]string{"family"},
	)
)

func recordOutcome(fam *family.Family, outcome string) {
	generationOutcomes.With(prometheus.Labels{"family": fam.Name, "outcome": outcome}).Inc()
}

func recordAttempts(fam *family.Family, attempts int) {
	generationAttempts.With(prometheus.Labels{"family": fam.Name}).Observe(float64(attempts))
}
