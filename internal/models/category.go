package models

import (
	"fmt"
	"strings"
)

// Category is one label from the fixed expense classification.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryUtilities     Category = "Utilities"
	CategoryShopping      Category = "Shopping"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealthcare    Category = "Healthcare"
	CategoryOthers        Category = "Others"
)

var allCategories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryUtilities,
	CategoryShopping,
	CategoryEntertainment,
	CategoryHealthcare,
	CategoryOthers,
}

var badgeColors = map[Category]string{
	CategoryFood:          "orange",
	CategoryTransport:     "blue",
	CategoryUtilities:     "green",
	CategoryShopping:      "purple",
	CategoryEntertainment: "pink",
	CategoryHealthcare:    "red",
	CategoryOthers:        "gray",
}

// AllCategories returns the categories in their declared order.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// IsValid reports whether c is part of the enumeration.
func (c Category) IsValid() bool {
	_, ok := badgeColors[c]
	return ok
}

// BadgeColor is the colour family used when a category is shown as a badge.
func (c Category) BadgeColor() string {
	if color, ok := badgeColors[c]; ok {
		return color
	}
	return badgeColors[CategoryOthers]
}

func (c Category) String() string { return string(c) }

// ParseCategory resolves s to a category, accepting any letter case.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if c := Category(s); c.IsValid() {
		return c, nil
	}
	for _, c := range allCategories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}
