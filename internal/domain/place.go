package domain

// Category is the coarse kind of a place. Variety scoring only compares
// categories for equality.
type Category string

const (
	CategoryCafe       Category = "cafe"
	CategoryRestaurant Category = "restaurant"
	CategoryBar        Category = "bar"
	CategoryCulture    Category = "culture"
	CategoryActivity   Category = "activity"
	CategoryNature     Category = "nature"
	CategoryShopping   Category = "shopping"
	CategoryOther      Category = "other"
)

var categories = map[Category]struct{}{
	CategoryCafe:       {},
	CategoryRestaurant: {},
	CategoryBar:        {},
	CategoryCulture:    {},
	CategoryActivity:   {},
	CategoryNature:     {},
	CategoryShopping:   {},
	CategoryOther:      {},
}

// ParseCategory maps free text onto the fixed category set.
// Unknown values collapse to CategoryOther.
func ParseCategory(s string) Category {
	c := Category(s)
	if _, ok := categories[c]; ok {
		return c
	}
	return CategoryOther
}

// A candidate stop of a course.
// Places are owned by the caller; the optimizer only refers to them by
// their index in the input slice.
type Place struct {
	ID          string
	Name        string
	Lat         float64
	Lng         float64
	Category    Category
	StayMinutes int
}

// Coords returns the place location.
func (p Place) Coords() Coordinates {
	return Coordinates{Lon: p.Lng, Lat: p.Lat}
}
