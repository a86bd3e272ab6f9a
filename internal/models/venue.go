package models

// Category classifies the kind of venue.
type Category string

const (
	CategoryRestaurant Category = "restaurant"
	CategoryBar        Category = "bar"
	CategoryKaraoke    Category = "karaoke"
	CategoryCafe       Category = "cafe"
	CategoryBuffet     Category = "buffet"
	CategoryOther      Category = "other"
)

// ValidCategories is the set of all valid venue categories.
var ValidCategories = []Category{
	CategoryRestaurant,
	CategoryBar,
	CategoryKaraoke,
	CategoryCafe,
	CategoryBuffet,
	CategoryOther,
}

// IsValid returns true if the category is recognized.
func (c Category) IsValid() bool {
	for _, v := range ValidCategories {
		if c == v {
			return true
		}
	}
	return false
}

// PriceTier buckets venues by price per person.
type PriceTier string

const (
	PriceCheap     PriceTier = "cheap"     // under 100k VND per person
	PriceModerate  PriceTier = "moderate"  // 100k-300k VND per person
	PriceExpensive PriceTier = "expensive" // over 300k VND per person
)

// ValidPriceTiers is the set of all valid price tiers.
var ValidPriceTiers = []PriceTier{
	PriceCheap,
	PriceModerate,
	PriceExpensive,
}

// IsValid returns true if the price tier is recognized.
func (p PriceTier) IsValid() bool {
	for _, v := range ValidPriceTiers {
		if p == v {
			return true
		}
	}
	return false
}

// PriceTierFromAmount derives a tier from an absolute per-person price in VND.
func PriceTierFromAmount(vnd int64) PriceTier {
	switch {
	case vnd < 100_000:
		return PriceCheap
	case vnd <= 300_000:
		return PriceModerate
	default:
		return PriceExpensive
	}
}

// Venue is a place (restaurant, bar, karaoke, ...) stored in the vector index.
// The core never persists venues itself; they are constructed per request
// from index payloads and discarded with the response.
type Venue struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	District  string    `json:"district"`
	PriceTier PriceTier `json:"price_tier"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address"`
	URL       string    `json:"url,omitempty"`
	Cuisines  []string  `json:"cuisines,omitempty"`
	Features  []string  `json:"features,omitempty"`
}

// ScoredVenue wraps a Venue with its query-result attributes. Similarity is
// in (0,1], derived from index distance as 1/(1+d); Rank is 1-based.
type ScoredVenue struct {
	Venue      Venue   `json:"venue"`
	Similarity float64 `json:"similarity_score"`
	Rank       int     `json:"rank"`
}

// Filters restricts retrieval to venues matching every set field.
// The zero value means no constraint. A non-empty District must have passed
// gazetteer validation before reaching the index.
type Filters struct {
	District  string    `json:"district,omitempty"`
	Category  Category  `json:"category,omitempty"`
	PriceTier PriceTier `json:"price_tier,omitempty"`
}

// IsZero reports whether no filter dimension is constrained.
func (f Filters) IsZero() bool {
	return f.District == "" && f.Category == "" && f.PriceTier == ""
}
