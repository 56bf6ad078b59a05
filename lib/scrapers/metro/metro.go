// Package metro extracts product records from metro.ca product pages.
// Metro renders server-side, so this extractor is selector-driven;
// category breadcrumbs become product tags.
package metro

import (
	"context"
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

var tracer = otel.Tracer("scrapers/metro")

const (
	StoreID   = "metro_canada"
	StoreName = "Metro"
	SoldBy    = "Metro Inc."
	Domain    = "metro.ca"
)

var (
	nameSelectors = []string{
		"h1.pi--title",
		"div.pi--product-main-info h1",
	}
	brandSelectors = []string{
		"div.pi--brand",
		"span.pi--brand-name",
	}
	priceSelectors = []string{
		"div.pi--main-price span.price-update",
		"div.pricing__sale-price span.price-update",
	}
	skuSelectors = []string{
		"div.pi--product-code span.pi--code-value",
	}
	outOfStockSelector = "div.pi--out-of-stock"
	breadcrumbSelector = "ul.b--list li a"
)

// Extract builds a record from a metro.ca product page.
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
		Language:  languageFromHost(page),
		URL:       page.URL.String(),
		Name:      htmlutil.FirstText(page.Doc, nameSelectors...),
		Brand:     htmlutil.FirstText(page.Doc, brandSelectors...),
		SKU:       htmlutil.FirstText(page.Doc, skuSelectors...),
		Tags:      breadcrumbTags(page.Doc),
		Currency:  catalog.CAD,
	}

	if raw := htmlutil.FirstText(page.Doc, priceSelectors...); raw != "" {
		if amount, err := textutil.ParseAmount(raw); err == nil {
			rec.Amount = amount
		}
	}

	rec.Availability = catalog.InStock
	if page.Doc.Find(outOfStockSelector).Length() > 0 {
		rec.Availability = catalog.OutOfStock
	}

	if err := rec.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record incomplete")
		return rec, err
	}
	return rec, nil
}

// breadcrumbTags keeps every breadcrumb level except the first (home)
// and last (the product itself).
func breadcrumbTags(doc *goquery.Document) []string {
	var crumbs []string
	doc.Find(breadcrumbSelector).Each(func(_ int, sel *goquery.Selection) {
		if text := textutil.Clean(sel.Text()); text != "" {
			crumbs = append(crumbs, text)
		}
	})
	if len(crumbs) <= 1 {
		return nil
	}
	return crumbs[1:]
}

func languageFromHost(page *fetch.Page) catalog.Language {
	if strings.HasPrefix(page.URL.Path, "/epicerie-en-ligne") {
		return catalog.French
	}
	return catalog.English
}
