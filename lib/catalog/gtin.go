package catalog

import (
	"fmt"
	"strings"
)

type GTINKind string

const (
	UPCA  GTINKind = "upca"
	EAN13 GTINKind = "ean13"
)

// GTIN is a global trade item number together with the scheme it was
// read in. Two sightings with the same value refer to the same product
// regardless of which store they came from.
type GTIN struct {
	Kind  GTINKind `bson:"type" json:"type"`
	Value string   `bson:"value" json:"value"`
}

// ParseUPC validates a UPC-A code (12 digits including the check digit)
// and returns it as a GTIN.
func ParseUPC(code string) (GTIN, error) {
	code = strings.TrimSpace(code)
	if len(code) != 12 {
		return GTIN{}, fmt.Errorf("upc %q: want 12 digits, got %d", code, len(code))
	}
	sum := 0
	for i, r := range code {
		if r < '0' || r > '9' {
			return GTIN{}, fmt.Errorf("upc %q: non-digit character", code)
		}
		d := int(r - '0')
		// odd positions (1st, 3rd, ...) weigh 3
		if i%2 == 0 {
			sum += d * 3
		} else {
			sum += d
		}
	}
	if sum%10 != 0 {
		return GTIN{}, fmt.Errorf("upc %q: check digit mismatch", code)
	}
	return GTIN{Kind: UPCA, Value: code}, nil
}

// ParseEAN13 validates an EAN-13 code and returns it as a GTIN.
func ParseEAN13(code string) (GTIN, error) {
	code = strings.TrimSpace(code)
	if len(code) != 13 {
		return GTIN{}, fmt.Errorf("ean13 %q: want 13 digits, got %d", code, len(code))
	}
	sum := 0
	for i, r := range code {
		if r < '0' || r > '9' {
			return GTIN{}, fmt.Errorf("ean13 %q: non-digit character", code)
		}
		d := int(r - '0')
		if i%2 == 1 {
			sum += d * 3
		} else {
			sum += d
		}
	}
	if sum%10 != 0 {
		return GTIN{}, fmt.Errorf("ean13 %q: check digit mismatch", code)
	}
	return GTIN{Kind: EAN13, Value: code}, nil
}
