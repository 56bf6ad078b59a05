// Package catalog defines the shared data model for scraped product,
// offer and store records. Every store scraper emits a Record; the
// reconciler turns Records into documents in the products, offers and
// stores collections.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingPrice        = errors.New("record has no price")
	ErrMissingAvailability = errors.New("record has no availability")
)

// Record is the normalized result of extracting a single product page.
// Name, Brand and Description are expected to already be cleaned up by
// textutil before the record leaves the extractor.
type Record struct {
	StoreID   string
	StoreName string
	Domain    string
	Region    Region
	SoldBy    string

	Language    Language
	Name        string
	Brand       string
	Description string
	ModelNumber string
	SKU         string
	GTIN        *GTIN
	Tags        []string

	Amount       float64
	Currency     Currency
	Availability Availability
	Condition    Condition

	URL string
}

// StoreSellerKey is the composite key a Record's product data is nested
// under inside a Product document, e.g. "walmart_canada (Walmart Canada Corp)".
// The key doubles as a mongo field name inside dotted update paths, where
// a period would split the key into nested fields, so periods in the
// seller name are stripped.
func (r Record) StoreSellerKey() string {
	return fmt.Sprintf("%s (%s)", r.StoreID, strings.ReplaceAll(r.SoldBy, ".", ""))
}

// Validate reports whether the record carries the fields processing
// cannot proceed without. Price and availability are hard requirements;
// everything else is optional.
func (r Record) Validate() error {
	if r.Amount <= 0 {
		return ErrMissingPrice
	}
	if r.Availability == "" {
		return ErrMissingAvailability
	}
	return nil
}
