// Package category holds the closed set of expense categories shared by
// limits, batch validation, the ledger and reporting.
package category

import (
	"fmt"
	"strings"
)

type Category string

const (
	Travel  Category = "travel"
	Meal    Category = "meal"
	Luggage Category = "luggage"
	Hotel   Category = "hotel"
	Cash    Category = "cash"
	Other   Category = "other"
)

// all is the display order used by timelines and reports.
var all = [...]Category{Travel, Meal, Luggage, Hotel, Cash, Other}

// All returns every category in display order.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all[:])
	return out
}

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	return c.Index() >= 0
}

// Index is the position of c in display order, or -1 for unknown values.
func (c Category) Index() int {
	for i, known := range all {
		if known == c {
			return i
		}
	}
	return -1
}

// IsCredit is true for cash advances, which reduce net spend.
func (c Category) IsCredit() bool {
	return c == Cash
}

func (c Category) Description() string {
	switch c {
	case Travel:
		return "Tickets, fuel, local transport"
	case Meal:
		return "Meals and refreshments"
	case Luggage:
		return "Luggage and porterage"
	case Hotel:
		return "Lodging"
	case Cash:
		return "Cash advance received"
	case Other:
		return "Anything else"
	}
	return ""
}

func (c Category) String() string {
	return string(c)
}

// Parse normalizes s and returns the matching category.
func Parse(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
