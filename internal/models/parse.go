package models

import "strings"

// categorySynonyms maps lenient spellings to canonical categories.
var categorySynonyms = map[string]Category{
	"restaurant": CategoryRestaurant,
	"nhà hàng":   CategoryRestaurant,
	"nha hang":   CategoryRestaurant,
	"quán ăn":    CategoryRestaurant,
	"bar":        CategoryBar,
	"quán bar":   CategoryBar,
	"pub":        CategoryBar,
	"karaoke":    CategoryKaraoke,
	"cafe":       CategoryCafe,
	"quán cafe":  CategoryCafe,
	"coffee":     CategoryCafe,
	"buffet":     CategoryBuffet,
	"other":      CategoryOther,
}

// ParseCategory resolves free text to a category, accepting a few textual
// synonyms per value. Unknown text returns ok=false; callers drop the field.
func ParseCategory(s string) (Category, bool) {
	c, ok := categorySynonyms[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

// priceSynonyms maps lenient spellings to canonical price tiers. The
// Vietnamese terms are what the extraction model is asked to emit.
var priceSynonyms = map[string]PriceTier{
	"cheap":      PriceCheap,
	"binh_dan":   PriceCheap,
	"binh dan":   PriceCheap,
	"bình dân":   PriceCheap,
	"rẻ":         PriceCheap,
	"giá rẻ":     PriceCheap,
	"moderate":   PriceModerate,
	"trung_binh": PriceModerate,
	"trung binh": PriceModerate,
	"trung bình": PriceModerate,
	"expensive":  PriceExpensive,
	"cao_cap":    PriceExpensive,
	"cao cap":    PriceExpensive,
	"cao cấp":    PriceExpensive,
	"sang trọng": PriceExpensive,
}

// ParsePriceTier resolves free text to a price tier, accepting a few
// textual synonyms per tier. Unknown text returns ok=false.
func ParsePriceTier(s string) (PriceTier, bool) {
	p, ok := priceSynonyms[strings.ToLower(strings.TrimSpace(s))]
	return p, ok
}
