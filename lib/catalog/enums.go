package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

type Availability string

const (
	InStock    Availability = "inStock"
	OutOfStock Availability = "outOfStock"
	Preorder   Availability = "preorder"
)

// AvailabilityFromStock maps a boolean stock flag to an availability
// value, for sites that only expose in-stock/out-of-stock.
func AvailabilityFromStock(available bool) Availability {
	if available {
		return InStock
	}
	return OutOfStock
}

// ParseSchemaAvailability maps a schema.org availability URL
// ("http://schema.org/InStock") to an Availability. Unknown values
// come back empty so Validate can reject the record.
func ParseSchemaAvailability(s string) Availability {
	switch {
	case strings.Contains(s, "InStock"):
		return InStock
	case strings.Contains(s, "OutOfStock"), strings.Contains(s, "SoldOut"):
		return OutOfStock
	case strings.Contains(s, "PreOrder"):
		return Preorder
	}
	return ""
}

type Condition string

const (
	ConditionNew         Condition = "new"
	ConditionUsed        Condition = "used"
	ConditionRefurbished Condition = "refurbished"
)

type Currency string

const (
	CAD Currency = "CAD"
	USD Currency = "USD"
)

type Region string

const (
	RegionCanada       Region = "canada"
	RegionUnitedStates Region = "united_states"
)

// Language is a lowercase BCP 47 base language code ("en", "fr").
// It doubles as the nesting key for localized product data.
type Language string

const (
	English Language = "en"
	French  Language = "fr"
)

// ParseLanguage canonicalizes an arbitrary language code ("EN",
// "fr-CA", ...) down to its base language.
func ParseLanguage(code string) (Language, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("parse language %q: %w", code, err)
	}
	base, _ := tag.Base()
	return Language(base.String()), nil
}
