package places

import (
	"strings"

	"github.com/FACorreiaa/go-nearby-places/internal/types"
)

// intentRule maps a keyword set onto a provider search type and a
// classification tag. Rules are tested in order; the first match wins.
type intentRule struct {
	keywords     []string
	providerType string
	tag          string
}

var intentRules = []intentRule{
	{
		keywords:     []string{"movie", "movies", "cinema", "film", "theater", "theatre"},
		providerType: "movie_theater",
		tag:          "movie",
	},
	{
		keywords:     []string{"park", "parks", "playground", "garden", "trail", "hike", "picnic"},
		providerType: "park",
		tag:          "park",
	},
	{
		keywords:     []string{"game", "match", "stadium", "arena", "sports", "bowling", "golf"},
		providerType: "stadium",
		tag:          "sports",
	},
	{keywords: []string{"pizza", "pizzeria"}, providerType: "restaurant", tag: "cuisine_pizza"},
	{keywords: []string{"sushi", "japanese"}, providerType: "restaurant", tag: "cuisine_sushi"},
	{keywords: []string{"burger", "burgers"}, providerType: "restaurant", tag: "cuisine_burger"},
	{keywords: []string{"taco", "tacos", "mexican", "burrito"}, providerType: "restaurant", tag: "cuisine_mexican"},
	{keywords: []string{"chinese", "dim sum", "dumpling", "dumplings"}, providerType: "restaurant", tag: "cuisine_chinese"},
	{keywords: []string{"italian", "pasta"}, providerType: "restaurant", tag: "cuisine_italian"},
	{keywords: []string{"thai", "pad thai"}, providerType: "restaurant", tag: "cuisine_thai"},
	{keywords: []string{"indian", "curry"}, providerType: "restaurant", tag: "cuisine_indian"},
	{keywords: []string{"coffee", "espresso", "latte", "cappuccino"}, providerType: "cafe", tag: "cuisine_coffee"},
	{
		keywords:     []string{"eat", "food", "dinner", "lunch", "breakfast", "brunch", "restaurant", "hungry", "meal"},
		providerType: "restaurant",
		tag:          "dining_general",
	},
}

// stopWords are stripped from the fallback provider keyword: articles,
// pronouns and intent verbs carry no search signal.
var stopWords = map[string]struct{}{
	"i": {}, "a": {}, "an": {}, "the": {}, "me": {}, "my": {}, "we": {},
	"to": {}, "for": {}, "of": {}, "in": {}, "on": {}, "at": {},
	"want": {}, "would": {}, "like": {}, "find": {}, "get": {}, "go": {},
	"some": {}, "near": {}, "nearby": {}, "around": {}, "here": {},
	"please": {}, "show": {}, "looking": {}, "need": {},
}

// ClassifyIntent parses a free-text query into a provider search intent.
// It is total: any input, including the empty string, yields a usable
// intent with a non-empty classification tag.
func ClassifyIntent(freeText string) types.SearchIntent {
	lowered := strings.ToLower(strings.TrimSpace(freeText))

	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if containsWord(lowered, kw) {
				return types.SearchIntent{
					ProviderType:      rule.providerType,
					ProviderKeyword:   kw,
					ClassificationTag: rule.tag,
				}
			}
		}
	}

	return types.SearchIntent{
		ProviderType:      "establishment",
		ProviderKeyword:   stripStopWords(lowered),
		ClassificationTag: "general_search",
	}
}

// containsWord matches kw on word boundaries so "in" does not match
// "dining". Multi-word keywords fall back to substring matching.
func containsWord(text, kw string) bool {
	if strings.Contains(kw, " ") {
		return strings.Contains(text, kw)
	}
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || r == '\'')
	}) {
		if w == kw {
			return true
		}
	}
	return false
}

func stripStopWords(text string) string {
	var kept []string
	for _, w := range strings.Fields(text) {
		if _, ok := stopWords[strings.Trim(w, ".,!?")]; ok {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}
