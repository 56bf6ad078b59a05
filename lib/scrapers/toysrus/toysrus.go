// Package toysrus extracts product records from toysrus.ca product
// pages. The site serializes the whole product into a data-product
// attribute, so extraction is mostly JSON plumbing; the markup is only
// consulted when that JSON is missing a field.
package toysrus

import (
	"context"
	"encoding/json"
	"fmt"

	"pricemonitor/lib/catalog"
	"pricemonitor/lib/fetch"
	"pricemonitor/lib/htmlutil"
	"pricemonitor/lib/textutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/toysrus")

const (
	StoreID   = "toysrus_canada"
	StoreName = "Toys”R”Us"
	SoldBy    = "Toys”R”Us (Canada) Ltd."
	Domain    = "toysrus.ca"

	dataSelector = "div.b-product_details-stock_error p"

	// additionalInfo labels; the site serves them in french even on
	// english pages
	labelUPC         = "UPC"
	labelModelNumber = "Numéro fabricant"
)

type productJSON struct {
	ProductName     string `json:"productName"`
	Brand           string `json:"brand"`
	LongDescription string `json:"longDescription"`
	SKN             string `json:"SKN"`
	Available       bool   `json:"available"`
	Price           struct {
		Sales struct {
			Value float64 `json:"value"`
		} `json:"sales"`
	} `json:"price"`
	AdditionalInfo struct {
		Groups []struct {
			Data []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"data"`
		} `json:"groups"`
	} `json:"additionalInfo"`
}

// Extract builds a record from a toysrus.ca product page.
func Extract(ctx context.Context, page *fetch.Page) (catalog.Record, error) {
	ctx, span := tracer.Start(ctx, "Extract")
	defer span.End()
	span.SetAttributes(attribute.String("url", page.URL.String()))

	data, err := findProductJSON(page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "no product data found")
		return catalog.Record{}, err
	}

	info := flattenAdditionalInfo(data)

	rec := catalog.Record{
		StoreID:      StoreID,
		StoreName:    StoreName,
		Domain:       Domain,
		Region:       catalog.RegionCanada,
		SoldBy:       SoldBy,
		Condition:    catalog.ConditionNew,
		Language:     catalog.English,
		Name:         textutil.Clean(data.ProductName),
		Brand:        textutil.Clean(data.Brand),
		Description:  textutil.Clean(data.LongDescription),
		SKU:          data.SKN,
		ModelNumber:  info[labelModelNumber],
		Amount:       data.Price.Sales.Value,
		Currency:     catalog.CAD,
		Availability: catalog.AvailabilityFromStock(data.Available),
		URL:          page.URL.String(),
	}

	if gtin, err := catalog.ParseUPC(info[labelUPC]); err == nil {
		rec.GTIN = &gtin
	}

	if err := rec.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record incomplete")
		return rec, err
	}
	return rec, nil
}

func findProductJSON(page *fetch.Page) (productJSON, error) {
	var data productJSON
	raw := htmlutil.FirstAttr(page.Doc, "data-product", dataSelector)
	if raw == "" {
		return data, fmt.Errorf("toysrus: no data-product attribute on page")
	}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return data, fmt.Errorf("toysrus: parse data-product: %w", err)
	}
	return data, nil
}

// flattenAdditionalInfo folds the grouped name/value pairs into one
// lookup table.
func flattenAdditionalInfo(data productJSON) map[string]string {
	result := map[string]string{}
	for _, group := range data.AdditionalInfo.Groups {
		for _, entry := range group.Data {
			result[entry.Name] = entry.Value
		}
	}
	return result
}
