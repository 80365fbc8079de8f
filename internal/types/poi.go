package types

// CategoryTag is the closed set of app-level place categories.
type CategoryTag string

const (
	CategoryFood        CategoryTag = "food"
	CategoryBars        CategoryTag = "bars"
	CategoryAttractions CategoryTag = "attractions"
	CategoryActivities  CategoryTag = "activities"
)

// AllCategories lists every valid CategoryTag.
var AllCategories = []CategoryTag{CategoryFood, CategoryBars, CategoryAttractions, CategoryActivities}

// GeoPosition is a user coordinate. Replaced wholesale on every new fix,
// never mutated in place.
type GeoPosition struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Filter holds the caller-supplied search constraints. Immutable per search.
type Filter struct {
	OpenNow            bool          `json:"open_now"`
	MinRating          float64       `json:"min_rating"`
	MaxDistanceKm      float64       `json:"max_distance"` // kilometers; converted to meters at the provider boundary
	PriceRange         [2]int        `json:"price_range"`  // min/max tier, 1..4
	SelectedCategories []CategoryTag `json:"selected_categories"`
}

// SearchIntent is the classification of a free-text query into a provider
// search shape plus a tag driving strict post-filtering.
type SearchIntent struct {
	ProviderType      string `json:"provider_type"`
	ProviderKeyword   string `json:"provider_keyword"`
	ClassificationTag string `json:"classification_tag"`
}

// Location is the resolved place coordinate plus display address.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// Contact holds optional contact details for a place.
type Contact struct {
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
}

// PointOfInterest is the canonical output entity.
//
// For a given provider id, Rating/PriceRange/Reviews stay stable across
// repeated fetches within a session (the places cache enforces this).
// Distance is position-dependent and recomputed on every fetch.
type PointOfInterest struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Category    CategoryTag `json:"category"`
	Subcategory string      `json:"subcategory,omitempty"`
	Description string      `json:"description"`
	Rating      float64     `json:"rating"`
	Reviews     int         `json:"reviews"`
	Image       string      `json:"image"`
	Location    Location    `json:"location"`
	PriceRange  int         `json:"price_range,omitempty"` // 1..4, 0 when unknown
	OpenNow     *bool       `json:"open_now,omitempty"`
	Distance    float64     `json:"distance,omitempty"` // unit fixed per deployment (meters or miles)
	Tags        []string    `json:"tags"`
	Contact     Contact     `json:"contact"`
}

// RawPlace is the normalized upstream record both provider clients produce.
// Zero values mean "upstream did not supply this"; the transformer fills
// defaults.
type RawPlace struct {
	ID          string
	Name        string
	Latitude    float64
	Longitude   float64
	Types       []string
	Rating      float64 // 0 when upstream has none
	Reviews     int
	PriceTier   int // 1..4, 0 when unknown
	OpenNow     *bool
	Address     string
	PhotoURL    string
	LatestClose string // "HHMM" of the latest closing period, "" when unknown
}

// SearchResponse is the orchestrator's HTTP payload.
type SearchResponse struct {
	Results  []PointOfInterest `json:"results"`
	Count    int               `json:"count"`
	Revision int64             `json:"position_revision"`
	Intent   *SearchIntent     `json:"intent,omitempty"`
}
