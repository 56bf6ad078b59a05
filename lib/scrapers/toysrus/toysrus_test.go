package toysrus

import (
	"context"
	"testing"

	"pricemonitor/lib/catalog"
	"pricemonitor/lib/fetch"

	"github.com/stretchr/testify/require"
)

const productPage = `<html><body>
<div class="b-product_details-stock_error">
<p data-product='{
  "productName": "LEGO Star Wars X-Wing Starfighter",
  "brand": "LEGO",
  "longDescription": "<p>Build &amp; display the iconic starfighter.</p>",
  "SKN": "C1277754",
  "available": true,
  "price": {"sales": {"value": 49.99}},
  "additionalInfo": {"groups": [
    {"data": [
      {"name": "UPC", "value": "012345678905"},
      {"name": "Numéro fabricant", "value": "75301"}
    ]}
  ]}
}'></p>
</div>
</body></html>`

const emptyPage = `<html><body><div class="b-product_details"></div></body></html>`

func TestExtract(t *testing.T) {
	page, err := fetch.ParsePage(
		"https://www.toysrus.ca/en/lego-x-wing/C1277754.html",
		[]byte(productPage),
		nil,
	)
	require.NoError(t, err)

	rec, err := Extract(context.Background(), page)
	require.NoError(t, err)

	require.Equal(t, StoreID, rec.StoreID)
	require.Equal(t, SoldBy, rec.SoldBy)
	require.Equal(t, "LEGO Star Wars X-Wing Starfighter", rec.Name)
	require.Equal(t, "LEGO", rec.Brand)
	require.Equal(t, "Build & display the iconic starfighter.", rec.Description)
	require.Equal(t, "C1277754", rec.SKU)
	require.Equal(t, "75301", rec.ModelNumber)
	require.Equal(t, 49.99, rec.Amount)
	require.Equal(t, catalog.CAD, rec.Currency)
	require.Equal(t, catalog.InStock, rec.Availability)
	require.NotNil(t, rec.GTIN)
	require.Equal(t, catalog.GTIN{Kind: catalog.UPCA, Value: "012345678905"}, *rec.GTIN)
}

func TestExtractOutOfStock(t *testing.T) {
	const page = `<html><body>
<div class="b-product_details-stock_error">
<p data-product='{"productName":"Gone Thing","brand":"Acme","SKN":"X1","available":false,"price":{"sales":{"value":19.99}}}'></p>
</div>
</body></html>`

	p, err := fetch.ParsePage("https://www.toysrus.ca/en/gone/X1.html", []byte(page), nil)
	require.NoError(t, err)

	rec, err := Extract(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, catalog.OutOfStock, rec.Availability)
	// no valid UPC in the page
	require.Nil(t, rec.GTIN)
}

func TestExtractWithoutProductDataFails(t *testing.T) {
	page, err := fetch.ParsePage("https://www.toysrus.ca/en/x.html", []byte(emptyPage), nil)
	require.NoError(t, err)

	_, err = Extract(context.Background(), page)
	require.Error(t, err)
}
