package liveview

import "strings"

// Category is the display accent tag derived from a ticket code prefix.
type Category string

const (
	CategoryPink    Category = "pink"
	CategoryViolet  Category = "violet"
	CategoryGreen   Category = "green"
	CategoryBlue    Category = "blue"
	CategoryAmber   Category = "amber"
	CategoryDefault Category = "default"
)

// Specialty prefixes stamped into ticket codes by the scheduling system.
var categoryByPrefix = map[string]Category{
	"FON": CategoryPink,
	"PSI": CategoryViolet,
	"FIS": CategoryGreen,
	"PED": CategoryBlue,
	"ODO": CategoryAmber,
}

// CategoryForCode maps the first 3 characters of a ticket code,
// case-insensitively, to its display category. Short, unmatched and
// placeholder codes map to the default category.
func CategoryForCode(code string) Category {
	if len(code) < 3 {
		return CategoryDefault
	}
	if category, ok := categoryByPrefix[strings.ToUpper(code[:3])]; ok {
		return category
	}
	return CategoryDefault
}
