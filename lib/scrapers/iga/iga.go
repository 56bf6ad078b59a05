// Package iga extracts product records from iga.net product pages.
// IGA publishes a schema.org Product JSON-LD block; selectors back it
// up for the name and price. Grocery pages carry a UPC in the JSON-LD
// gtin12 field when the product is a packaged good.
package iga

import (
	"context"
	"encoding/json"
	"strings"

	"pricemonitor/lib/catalog"
	"pricemonitor/lib/fetch"
	"pricemonitor/lib/htmlutil"
	"pricemonitor/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/iga")

const (
	StoreID   = "iga_canada"
	StoreName = "IGA"
	SoldBy    = "Sobeys Inc."
	Domain    = "iga.net"
)

var (
	nameSelectors = []string{
		"h1.product-detail--name",
		"div.item-product__content h1",
	}
	brandSelectors = []string{
		"div.product-detail--brand",
		"div.item-product__brand",
	}
	priceSelectors = []string{
		"span.price",
		"div.item-product__prices span.text--strong",
	}
)

type productLD struct {
	Type  string `json:"@type"`
	Name  string `json:"name"`
	Brand struct {
		Name string `json:"name"`
	} `json:"brand"`
	Description string `json:"description"`
	GTIN12      string `json:"gtin12"`
	SKU         string `json:"sku"`
	Offers      struct {
		// sometimes a number, sometimes a quoted string
		Price         any    `json:"price"`
		PriceCurrency string `json:"priceCurrency"`
		Availability  string `json:"availability"`
	} `json:"offers"`
}

func priceValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if amount, err := textutil.ParseAmount(n); err == nil {
			return amount
		}
	}
	return 0
}

// Extract builds a record from an iga.net product page.
func Extract(ctx context.Context, page *fetch.Page) (catalog.Record, error) {
	ctx, span := tracer.Start(ctx, "Extract")
	defer span.End()
	span.SetAttributes(attribute.String("url", page.URL.String()))

	rec := catalog.Record{
		StoreID:   StoreID,
		StoreName: StoreName,
		Domain:    Domain,
		Region:    catalog.RegionCanada,
		SoldBy:    SoldBy,
		Condition: catalog.ConditionNew,
		Language:  languageFromPath(page.URL.Path),
		URL:       page.URL.String(),
	}

	ld, found := findProductLD(page.Doc)
	if found {
		rec.Name = textutil.Clean(ld.Name)
		rec.Brand = textutil.Clean(ld.Brand.Name)
		rec.Description = textutil.Clean(ld.Description)
		rec.SKU = ld.SKU
		rec.Amount = priceValue(ld.Offers.Price)
		if ld.Offers.PriceCurrency != "" {
			rec.Currency = catalog.Currency(ld.Offers.PriceCurrency)
		}
		rec.Availability = catalog.ParseSchemaAvailability(ld.Offers.Availability)
		if gtin, err := catalog.ParseUPC(ld.GTIN12); err == nil {
			rec.GTIN = &gtin
		}
	}

	if rec.Name == "" {
		rec.Name = htmlutil.FirstText(page.Doc, nameSelectors...)
	}
	if rec.Brand == "" {
		rec.Brand = htmlutil.FirstText(page.Doc, brandSelectors...)
	}
	if rec.Amount == 0 {
		if raw := htmlutil.FirstText(page.Doc, priceSelectors...); raw != "" {
			if amount, err := textutil.ParseAmount(raw); err == nil {
				rec.Amount = amount
			}
		}
	}
	if rec.Currency == "" {
		rec.Currency = catalog.CAD
	}
	if rec.Availability == "" && rec.Amount > 0 {
		// grocery listings go out of stock by disappearing, not by
		// flipping a flag
		rec.Availability = catalog.InStock
	}

	if err := rec.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record incomplete")
		return rec, err
	}
	return rec, nil
}

func findProductLD(doc *goquery.Document) (productLD, bool) {
	var out productLD
	found := false
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var ld productLD
		if err := json.Unmarshal([]byte(sel.Text()), &ld); err != nil {
			return true
		}
		if !strings.EqualFold(ld.Type, "Product") {
			return true
		}
		out = ld
		found = true
		return false
	})
	return out, found
}

func languageFromPath(path string) catalog.Language {
	if strings.HasPrefix(path, "/fr/") || path == "/fr" {
		return catalog.French
	}
	return catalog.English
}
