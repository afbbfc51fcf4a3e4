package prompt

import "lessonforge/internal/routing"

// focusAreas maps each routed domain to the subject-focus paragraph injected
// into generation prompts. Entries keep the model factually anchored in one
// discipline instead of drifting toward generic science language.
var focusAreas = map[routing.Domain]string{
	routing.Biology: "Ground every item in life-science concepts: cells, organisms, " +
		"life cycles, heredity, and the interactions between living things and " +
		"their environments.",
	routing.Chemistry: "Ground every item in chemical concepts: substances and their " +
		"properties, reactions, mixtures and solutions, and the particle-level " +
		"explanations behind observable changes.",
	routing.Physics: "Ground every item in physical-science concepts: forces, motion, " +
		"energy transfer, waves, electricity, and magnetism, with observable or " +
		"measurable phenomena.",
	routing.EarthScience: "Ground every item in Earth-science concepts: rocks and " +
		"minerals, plate tectonics, weather and climate, and the processes that " +
		"shape the planet over time.",
	routing.EnvironmentalScience: "Ground every item in environmental concepts: " +
		"ecosystems under pressure, resource use, sustainability, and how human " +
		"choices change natural systems.",
	routing.Microbiology: "Ground every item in microbiology: microorganisms and " +
		"their growth conditions, helpful and harmful microbes, contamination, " +
		"and methods for observing or controlling microbial life.",
	routing.Nutrition: "Ground every item in nutrition science: nutrients and their " +
		"roles, digestion and metabolism, dietary patterns, and evidence-based " +
		"reasoning about food choices.",
	routing.Agriculture: "Ground every item in agricultural science: how food and " +
		"fiber are produced, soil and crop management, livestock, and the " +
		"systems that move food from farm to table.",
	routing.Engineering: "Ground every item in the engineering design process: " +
		"defining problems, prototyping, testing against constraints, and " +
		"iterating on designs.",
	routing.FoodScience: "Ground every item in food science: the chemistry and " +
		"microbiology of food, cooking transformations, preservation and " +
		"safety, and the sensory properties of what we eat.",
	routing.GeneralScience: "Ground every item in broadly applicable science " +
		"practices: observing, questioning, measuring, and reasoning from " +
		"evidence, without assuming one specialized discipline.",
}

// overlayFocus is appended to the subject focus when the routing decision
// applies the food-science overlay to a non-food primary domain.
const overlayFocus = "Where it fits naturally, frame examples through a " +
	"food-science lens: kitchens, ingredients, cooking processes, and food " +
	"safety. Keep the primary subject accurate; the food framing is context, " +
	"not a replacement."

func focusFor(domain routing.Domain) string {
	if text, ok := focusAreas[domain]; ok {
		return text
	}
	return focusAreas[routing.GeneralScience]
}
