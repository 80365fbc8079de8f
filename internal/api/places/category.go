package places

import (
	"regexp"
	"sort"
	"strings"

	"github.com/FACorreiaa/go-nearby-places/internal/types"
)

// categoryMapping translates each app category to the provider's place
// types. Kept as data so new categories or providers are additive changes.
var categoryMapping = map[types.CategoryTag][]string{
	types.CategoryFood: {
		"restaurant",
		"cafe",
		"bakery",
		"meal_takeaway",
		"meal_delivery",
		"food",
		"supermarket",
		"grocery_or_supermarket",
		"deli",
		"convenience_store",
	},
	types.CategoryBars: {
		"bar",
		"night_club",
		"liquor_store",
		"brewery",
		"wine_bar",
		"rooftop_bar",
		"pub",
		"cocktail_bar",
		"sports_bar",
		"irish_pub",
		"dive_bar",
		"tavern",
		"restaurant", // hybrid restaurant/bar places
		"establishment",
	},
	types.CategoryAttractions: {
		"tourist_attraction",
		"museum",
		"park",
		"art_gallery",
		"landmark",
		"amusement_park",
		"aquarium",
		"church",
		"city_hall",
		"library",
		"movie_theater",
		"zoo",
		"stadium",
		"point_of_interest",
	},
	types.CategoryActivities: {
		"shopping_mall",
		"store",
		"gym",
		"spa",
		"amusement_park",
		"bowling_alley",
		"casino",
		"movie_theater",
		"clothing_store",
		"department_store",
		"electronics_store",
		"fitness_center",
		"hair_care",
		"beauty_salon",
	},
}

// MapCategoriesToProvider translates app categories to the provider's type
// vocabulary. Unknown tags are ignored; empty input yields an empty spec.
// The result is deduplicated and sorted, so the output is independent of
// input order.
func MapCategoriesToProvider(tags []types.CategoryTag) []string {
	if len(tags) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var providerTypes []string
	for _, tag := range tags {
		for _, t := range categoryMapping[tag] {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			providerTypes = append(providerTypes, t)
		}
	}
	sort.Strings(providerTypes)
	return providerTypes
}

// barNameKeywords flags bar-like places by name even when the provider
// types them as plain restaurants.
var barNameKeywords = []string{
	"bar", "pub", "tavern", "lounge", "beer", "wine", "spirits",
	"cocktail", "brewery", "ale", "saloon", "kelly's", "kellys",
	"tap", "grill", "sports", "cantina", "inn", "alehouse",
	"gastropub", "public house", "roadhouse", "oyster", "seafood",
	"steakhouse", "kitchen", "bistro", "rye", "port",
}

var barTypeSet = map[string]struct{}{
	"bar":        {},
	"night_club": {},
	"brewery":    {},
	"pub":        {},
}

var foodNameRegex = regexp.MustCompile(`(?i)\b(pizza|pizzeria|sushi|burger|taco|noodle|ramen|pho|bbq|barbecue|diner|deli|sandwich|bagel|donut|doughnut|bakery|cafe|caf\x{00e9}|coffee|eatery|trattoria|cantina|curry|grill|kebab|falafel|dumpling)`)

// IsLikelyBar reports whether the record matches any bar signal. Bar
// detection runs before the other category rules because many eateries
// double as bars and bar-intent searches should win ties.
func IsLikelyBar(raw types.RawPlace) bool {
	nameLower := strings.ToLower(raw.Name)
	for _, kw := range barNameKeywords {
		if strings.Contains(nameLower, kw) {
			return true
		}
	}

	hasType := func(t string) bool {
		for _, rt := range raw.Types {
			if rt == t {
				return true
			}
		}
		return false
	}

	for _, rt := range raw.Types {
		if _, ok := barTypeSet[rt]; ok {
			return true
		}
	}

	// Serves alcohol: establishment plus restaurant or bar typing
	if hasType("establishment") && (hasType("restaurant") || hasType("bar")) {
		return true
	}

	// Well-rated restaurant open late in the evening
	if raw.Rating >= 4.0 && hasType("restaurant") && raw.LatestClose >= "2200" && raw.LatestClose != "" {
		return true
	}

	return false
}

// ClassifyRecord assigns the app category for a raw provider record using
// ordered heuristic rules. Ambiguous records default to attractions to
// bias toward sight-seeing.
func ClassifyRecord(raw types.RawPlace) types.CategoryTag {
	if IsLikelyBar(raw) {
		return types.CategoryBars
	}
	if typesIntersect(raw.Types, categoryMapping[types.CategoryFood]) || foodNameRegex.MatchString(raw.Name) {
		return types.CategoryFood
	}
	if typesIntersect(raw.Types, categoryMapping[types.CategoryAttractions]) {
		return types.CategoryAttractions
	}
	if typesIntersect(raw.Types, categoryMapping[types.CategoryActivities]) {
		return types.CategoryActivities
	}
	return types.CategoryAttractions
}

func typesIntersect(rawTypes, table []string) bool {
	for _, rt := range rawTypes {
		for _, t := range table {
			if rt == t {
				return true
			}
		}
	}
	return false
}
