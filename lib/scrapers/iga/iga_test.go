package iga

import (
	"context"
	"testing"

	"pricemonitor/lib/catalog"
	"pricemonitor/lib/fetch"

	"github.com/stretchr/testify/require"
)

const productPage = `<html><head>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "Product",
  "name": "Crème glacée vanille",
  "brand": {"name": "Ben & Jerry's"},
  "description": "Vanilla ice cream.",
  "sku": "00123",
  "gtin12": "036000291452",
  "offers": {
    "@type": "Offer",
    "price": 4.99,
    "priceCurrency": "CAD",
    "availability": "https://schema.org/InStock"
  }
}
</script>
</head><body>
<h1 class="product-detail--name">Cr&egrave;me glac&eacute;e vanille</h1>
</body></html>`

const selectorOnlyPage = `<html><body>
<h1 class="product-detail--name">Beurre d&#39;arachide</h1>
<div class="product-detail--brand">Kraft</div>
<span class="price">6,49&nbsp;$</span>
</body></html>`

func TestExtractFromJSONLD(t *testing.T) {
	page, err := fetch.ParsePage(
		"https://www.iga.net/en/product/vanilla-ice-cream/00123",
		[]byte(productPage),
		nil,
	)
	require.NoError(t, err)

	rec, err := Extract(context.Background(), page)
	require.NoError(t, err)

	require.Equal(t, StoreID, rec.StoreID)
	require.Equal(t, "Crème glacée vanille", rec.Name)
	require.Equal(t, "Ben & Jerry's", rec.Brand)
	require.Equal(t, "00123", rec.SKU)
	require.Equal(t, 4.99, rec.Amount)
	require.Equal(t, catalog.CAD, rec.Currency)
	require.Equal(t, catalog.InStock, rec.Availability)
	require.NotNil(t, rec.GTIN)
	require.Equal(t, "036000291452", rec.GTIN.Value)
	require.Equal(t, catalog.English, rec.Language)
}

func TestExtractFallsBackToSelectors(t *testing.T) {
	page, err := fetch.ParsePage(
		"https://www.iga.net/fr/product/beurre-darachide/00456",
		[]byte(selectorOnlyPage),
		nil,
	)
	require.NoError(t, err)

	rec, err := Extract(context.Background(), page)
	require.NoError(t, err)

	require.Equal(t, "Beurre d'arachide", rec.Name)
	require.Equal(t, "Kraft", rec.Brand)
	require.Equal(t, 6.49, rec.Amount)
	require.Equal(t, catalog.French, rec.Language)
	require.Nil(t, rec.GTIN)
}

func TestExtractEmptyPageFails(t *testing.T) {
	page, err := fetch.ParsePage(
		"https://www.iga.net/en/product/x/1",
		[]byte("<html><body></body></html>"),
		nil,
	)
	require.NoError(t, err)

	_, err = Extract(context.Background(), page)
	require.ErrorIs(t, err, catalog.ErrMissingPrice)
}
