package routing

// Domain is a subject-matter category. Detected domains keep generated
// content factually anchored to one discipline.
type Domain string

const (
	Biology              Domain = "biology"
	Chemistry            Domain = "chemistry"
	Physics              Domain = "physics"
	EarthScience         Domain = "earth_science"
	EnvironmentalScience Domain = "environmental_science"
	Microbiology         Domain = "microbiology"
	Nutrition            Domain = "nutrition"
	Agriculture          Domain = "agriculture"
	Engineering          Domain = "engineering"
	FoodScience          Domain = "food_science"

	// GeneralScience is the fallback when no domain scores above zero.
	GeneralScience Domain = "general_science"
)

// Label renders a domain for humans ("food_science" -> "Food Science").
func (d Domain) Label() string {
	switch d {
	case Biology:
		return "Biology"
	case Chemistry:
		return "Chemistry"
	case Physics:
		return "Physics"
	case EarthScience:
		return "Earth Science"
	case EnvironmentalScience:
		return "Environmental Science"
	case Microbiology:
		return "Microbiology"
	case Nutrition:
		return "Nutrition"
	case Agriculture:
		return "Agriculture"
	case Engineering:
		return "Engineering"
	case FoodScience:
		return "Food Science"
	case GeneralScience:
		return "General Science"
	}
	return string(d)
}

// defaultKeywords maps each scored domain to its keyword list. Scores are
// normalized by list length, so lists of different sizes compete fairly.
// Overridable at runtime via the overrides watcher.
var defaultKeywords = map[Domain][]string{
	Biology: {
		"cell", "organism", "bacteria", "photosynthesis", "ecosystem",
		"dna", "genetics", "evolution", "plant", "animal", "enzyme",
		"respiration",
	},
	Chemistry: {
		"molecule", "reaction", "acid", "base", "compound", "element",
		"ph level", "chemical bond", "solution", "oxidation", "catalyst",
		"mixture",
	},
	Physics: {
		"force", "motion", "energy", "velocity", "gravity", "wave",
		"electricity", "magnetism", "momentum", "friction", "circuit",
	},
	EarthScience: {
		"rock", "mineral", "volcano", "earthquake", "plate tectonic",
		"weather", "erosion", "fossil", "soil", "atmosphere", "ocean",
		"climate",
	},
	EnvironmentalScience: {
		"pollution", "sustainability", "recycling", "conservation",
		"habitat", "renewable", "carbon footprint", "biodiversity",
		"waste", "deforestation",
	},
	Microbiology: {
		"microbe", "bacteria", "virus", "fungi", "mold", "yeast",
		"pathogen", "culture", "microorganism", "sterile", "spore",
		"contamination",
	},
	Nutrition: {
		"nutrient", "protein", "carbohydrate", "vitamin", "mineral",
		"diet", "calorie", "fiber", "metabolism", "digestion",
	},
	Agriculture: {
		"crop", "farm", "harvest", "livestock", "irrigation",
		"fertilizer", "seed", "pest", "greenhouse", "compost",
	},
	Engineering: {
		"design process", "prototype", "machine", "structure",
		"blueprint", "mechanism", "material", "load", "lever",
	},
	FoodScience: overlayKeywordDefaults,
}

// overlayKeywordDefaults is the food-science overlay keyword list. It doubles
// as the FoodScience domain's own scoring list.
var overlayKeywordDefaults = []string{
	"food", "cooking", "kitchen", "recipe", "ingredient", "baking",
	"fermentation", "spoilage", "preservation", "pasteurization",
	"flavor", "culinary", "canning", "brining", "edible",
}

// overlayCompatible lists the domains close enough to food science that a
// single overlay keyword in the intent justifies applying the overlay.
var overlayCompatible = map[Domain]bool{
	Chemistry:    true,
	Biology:      true,
	Microbiology: true,
	Nutrition:    true,
	Agriculture:  true,
}

// overlayPhrases are explicit namings of the overlay domain in intent text.
var overlayPhrases = []string{
	"food science",
	"in a food context",
	"in the context of food",
	"food-science",
}
