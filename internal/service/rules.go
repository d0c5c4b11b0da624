package service

import (
	"strings"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
)

// Keyword rule tables for the local enricher. Keywords cover English and the
// Hinglish spellings common in Indian recipe text.
var (
	dietKeywords = map[string][]string{
		"vegan":       {"vegan", "plant-based", "plant based", "dairy-free", "dairy free"},
		"vegetarian":  {"vegetarian", "veg ", "veg.", "paneer ", "paneer,", "paneer-"},
		"gluten_free": {"gluten-free", "gluten free", "no gluten"},
		"keto":        {"keto", "low carb", "low-carb"},
	}
	dietLabels = map[string]string{
		"vegan":       "Vegan",
		"vegetarian":  "Vegetarian",
		"gluten_free": "Gluten free",
		"keto":        "Keto / Low carb",
	}

	tasteKeywords = map[string][]string{
		"spicy": {"spicy", "fiery", "red chilli", "red chili", "green chilli", "green chili", "chilli powder", "chili powder", "mirchi"},
		"sweet": {"sweet", "sugar", "jaggery", "gud", "honey", "condensed milk"},
		"tangy": {"tangy", "sour", "chatpata", "amchur", "lemon juice", "lime juice", "imli", "tamarind"},
		"savory": {"savory", "umami", "rich gravy"},
	}
	tasteLabels = map[string]string{
		"spicy":  "Spicy",
		"sweet":  "Sweet",
		"tangy":  "Tangy / Chatpata",
		"savory": "Savory / Umami",
	}

	techniqueKeywords = map[string][]string{
		"fried":           {"deep fry", "deep-fry", "shallow fry", "shallow-fry", "stir fry", "stir-fry", "fried", "fry until", "fry till", "bhuna", "bhunao"},
		"baked":           {"bake", "baked", "oven-baked", "preheated oven"},
		"steamed":         {"steam", "steamed", "idli moulds", "idli molds", "steamer"},
		"grilled":         {"grill", "grilled", "tandoori", "tandoor", "barbecue", "bbq"},
		"pressure_cooked": {"pressure cook", "pressure-cook", "whistles", "1 whistle", "2 whistles"},
	}
	techniqueLabels = map[string]string{
		"fried":           "Fried / stir-fried",
		"baked":           "Baked",
		"steamed":         "Steamed",
		"grilled":         "Grilled / tandoori",
		"pressure_cooked": "Pressure cooked",
	}

	dishTypeKeywords = map[string][]string{
		"curry":     {"curry", "masala curry", "dal tadka", "dal fry", "sabzi", "gravy"},
		"salad":     {"salad"},
		"soup":      {"soup", "shorba"},
		"rice_dish": {"biryani", "pulao", "fried rice", "jeera rice", "lemon rice", "curd rice"},
		"bread":     {"roti", "chapati", "paratha", "naan", "kulcha", "poori", "puri", "sandwich", "wrap"},
		"snack":     {"tikki", "cutlet", "kabab", "kebab", "pakora", "bhajiya", "fritter"},
	}
	dishTypeLabels = map[string]string{
		"curry":     "Curry / Sabzi",
		"salad":     "Salad",
		"soup":      "Soup",
		"rice_dish": "Rice dish",
		"bread":     "Bread / flatbread / sandwich",
		"snack":     "Snack / starter",
	}

	nutritionKeywords = map[string][]string{
		"high_protein": {"high protein", "protein-rich", "protein rich"},
		"low_carb":     {"low carb", "keto"},
		"high_fiber":   {"high fiber", "high fibre", "fibre-rich", "fiber-rich"},
	}
	nutritionLabels = map[string]string{
		"high_protein": "High protein",
		"low_carb":     "Low carb / keto",
		"high_fiber":   "High fibre",
	}
)

// Ordered values per rule group so output is deterministic across runs.
var (
	dietOrder      = []string{"vegan", "vegetarian", "gluten_free", "keto"}
	tasteOrder     = []string{"spicy", "sweet", "tangy", "savory"}
	techniqueOrder = []string{"fried", "baked", "steamed", "grilled", "pressure_cooked"}
	dishTypeOrder  = []string{"curry", "salad", "soup", "rice_dish", "bread", "snack"}
	nutritionOrder = []string{"high_protein", "low_carb", "high_fiber"}
)

func textContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ruleBasedTags derives heuristic tag candidates from the combined lowercase
// record text. These rank below dataset tags: the merger keeps the dataset
// value when both fire on the same (type, value).
func ruleBasedTags(text string) []domain.TagCandidate {
	var tags []domain.TagCandidate

	for _, value := range dietOrder {
		if textContainsAny(text, dietKeywords[value]) {
			tags = append(tags, domain.TagCandidate{
				TagType:    "diet",
				Value:      value,
				LabelEn:    dietLabels[value],
				Confidence: 0.9,
				IsPrimary:  value == "vegan" || value == "vegetarian",
				Source:     "rules",
			})
		}
	}

	for _, value := range tasteOrder {
		if textContainsAny(text, tasteKeywords[value]) {
			tags = append(tags, domain.TagCandidate{
				TagType:    "taste_profile",
				Value:      value,
				LabelEn:    tasteLabels[value],
				Confidence: 0.85,
				Source:     "rules",
			})
		}
	}

	for _, value := range techniqueOrder {
		if textContainsAny(text, techniqueKeywords[value]) {
			tags = append(tags, domain.TagCandidate{
				TagType:    "technique",
				Value:      value,
				LabelEn:    techniqueLabels[value],
				Confidence: 0.85,
				Source:     "rules",
			})
		}
	}

	for _, value := range dishTypeOrder {
		if textContainsAny(text, dishTypeKeywords[value]) {
			tags = append(tags, domain.TagCandidate{
				TagType:    "dish_type",
				Value:      value,
				LabelEn:    dishTypeLabels[value],
				Confidence: 0.8,
				IsPrimary:  value == "curry" || value == "rice_dish" || value == "snack",
				Source:     "rules",
			})
		}
	}

	for _, value := range nutritionOrder {
		if textContainsAny(text, nutritionKeywords[value]) {
			tags = append(tags, domain.TagCandidate{
				TagType:    "nutrition_profile",
				Value:      value,
				LabelEn:    nutritionLabels[value],
				Confidence: 0.8,
				Source:     "rules",
			})
		}
	}

	return tags
}
