// Package walmart extracts product records from walmart.ca product
// pages. Walmart renders most product detail into an inline JSON
// script and a preloaded-state global; CSS selectors are the fallback
// when neither carries a field.
package walmart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pricemonitor/lib/catalog"
	"pricemonitor/lib/fetch"
	"pricemonitor/lib/htmlutil"
	"pricemonitor/lib/textutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/walmart")

const (
	StoreID       = "walmart_canada"
	StoreName     = "Walmart"
	Domain        = "walmart.ca"
	DefaultSoldBy = "Walmart Canada Corp."

	// javascript global walmart preloads page state into
	StateVariable = "window.__PRELOADED_STATE__"
)

var (
	nameSelectors = []string{
		"#product-desc h1",
		"div.css-13hwhay.e1yn5b3f0 h1",
	}
	brandSelectors = []string{
		"#product-desc p.brand a.brand-link",
		"div.css-uxtmi3.e1yn5b3f4 span a.css-1syn49.elkyjhv0",
	}
	sellerSelectors = []string{
		"#product-desc p.seller-info span",
		"div.css-9wd9vm.etlm3820 svg title",
		"div.css-9wd9vm.etlm3820 a.css-1syn49.elkyjhv0",
	}
	priceSelectors = []string{
		"span[itemprop=price]",
		"div.css-k008qs.e1ufqjyx0 > span.css-rykmet.esdkp3p2 > span.css-2vqe5n.esdkp3p0",
	}
	offersSelector = "div.js-content div.css-ay2u5v.evlleax1 script"
)

// Extract builds a record from a walmart.ca product page.
func Extract(ctx context.Context, page *fetch.Page) (catalog.Record, error) {
	ctx, span := tracer.Start(ctx, "Extract")
	defer span.End()
	span.SetAttributes(attribute.String("url", page.URL.String()))

	rec := catalog.Record{
		StoreID:   StoreID,
		StoreName: StoreName,
		Domain:    Domain,
		Region:    catalog.RegionCanada,
		Condition: catalog.ConditionNew,
		Language:  languageFromPath(page.URL.Path),
		URL:       page.URL.String(),
	}

	offers := embeddedOffers(page)

	rec.Name = htmlutil.FirstText(page.Doc, nameSelectors...)
	rec.Brand = brand(page)
	rec.SoldBy = htmlutil.FirstText(page.Doc, sellerSelectors...)
	if rec.SoldBy == "" {
		rec.SoldBy = DefaultSoldBy
	}
	rec.SKU = activeSKU(page)

	if err := price(page, offers, &rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "no price found")
		return rec, err
	}
	rec.Availability = availability(offers)

	if err := rec.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record incomplete")
		return rec, err
	}
	return rec, nil
}

// embeddedOffers parses the inline product JSON script and returns its
// offers object, or nil when the page variant doesn't carry one.
func embeddedOffers(page *fetch.Page) map[string]any {
	raw := page.Doc.Find(offersSelector).First().Text()
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil
	}
	offers, _ := data["offers"].(map[string]any)
	return offers
}

// brand prefers the preloaded-state sku entry, falling back to the
// brand link in the markup.
func brand(page *fetch.Page) string {
	if sku := activeSKU(page); sku != "" {
		entities, _ := page.State["entities"].(map[string]any)
		skus, _ := entities["skus"].(map[string]any)
		entry, _ := skus[sku].(map[string]any)
		b, _ := entry["brand"].(map[string]any)
		if name, _ := b["name"].(string); name != "" {
			return textutil.Clean(name)
		}
	}
	return htmlutil.FirstText(page.Doc, brandSelectors...)
}

func activeSKU(page *fetch.Page) string {
	product, _ := page.State["product"].(map[string]any)
	sku, _ := product["activeSkuId"].(string)
	return sku
}

func price(page *fetch.Page, offers map[string]any, rec *catalog.Record) error {
	if offers != nil {
		if v, ok := offers["price"].(float64); ok && v > 0 {
			rec.Amount = v
		}
		if c, ok := offers["priceCurrency"].(string); ok && c != "" {
			rec.Currency = catalog.Currency(c)
		}
	}
	if rec.Amount == 0 {
		raw := htmlutil.FirstText(page.Doc, priceSelectors...)
		if raw == "" {
			return fmt.Errorf("walmart: %w", catalog.ErrMissingPrice)
		}
		amount, err := textutil.ParseAmount(raw)
		if err != nil {
			return err
		}
		rec.Amount = amount
	}
	if rec.Currency == "" {
		rec.Currency = catalog.CAD
	}
	return nil
}

// availability falls back to in-stock: walmart pulls listings that
// cannot be bought, so a rendered product page with a price is
// sellable unless the offer says otherwise.
func availability(offers map[string]any) catalog.Availability {
	if offers != nil {
		if raw, ok := offers["availability"].(string); ok {
			if a := catalog.ParseSchemaAvailability(raw); a != "" {
				return a
			}
		}
	}
	return catalog.InStock
}

func languageFromPath(path string) catalog.Language {
	if strings.HasPrefix(path, "/fr/") || path == "/fr" {
		return catalog.French
	}
	return catalog.English
}
