package family

import "testing"

func TestByName(t *testing.T) {
	for _, fam := range All() {
		got, err := ByName(fam.Name)
		if err != nil {
			t.Fatalf("ByName(%q) returned error: %v", fam.Name, err)
		}
		if got != fam {
			t.Errorf("ByName(%q) returned wrong family %q", fam.Name, got.Name)
		}
	}

	if _, err := ByName("quizzes"); err == nil {
		t.Error("ByName should fail for an unknown family")
	}
}

func TestFamilyBudgets(t *testing.T) {
	if LearningObjectives.AttemptBound != 2 {
		t.Errorf("learning objectives attempt bound = %d, want 2", LearningObjectives.AttemptBound)
	}
	if DiscussionQuestions.AttemptBound != 3 {
		t.Errorf("discussion questions attempt bound = %d, want 3", DiscussionQuestions.AttemptBound)
	}
	if LessonStarters.AttemptBound != 3 {
		t.Errorf("lesson starters attempt bound = %d, want 3", LessonStarters.AttemptBound)
	}
}

func TestFixedCountFamilies(t *testing.T) {
	for _, fam := range All() {
		if fam.CountIsFixed && fam.MinItems != fam.MaxItems {
			t.Errorf("%s is fixed-count but band is [%d, %d]", fam.Name, fam.MinItems, fam.MaxItems)
		}
		if fam.DefaultCount < fam.MinItems || fam.DefaultCount > fam.MaxItems {
			t.Errorf("%s default count %d outside band [%d, %d]",
				fam.Name, fam.DefaultCount, fam.MinItems, fam.MaxItems)
		}
	}
}

func TestClampCount(t *testing.T) {
	tests := []struct {
		name      string
		fam       *Family
		requested int
		want      int
	}{
		{"objectives default", LearningObjectives, 0, 5},
		{"objectives in band", LearningObjectives, 7, 7},
		{"objectives below band", LearningObjectives, 2, 4},
		{"objectives above band", LearningObjectives, 15, 10},
		{"questions ignore request", DiscussionQuestions, 9, 5},
		{"starters ignore request", LessonStarters, 3, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fam.ClampCount(tt.requested); got != tt.want {
				t.Errorf("ClampCount(%d) = %d, want %d", tt.requested, got, tt.want)
			}
		})
	}
}
