package reconciler

import (
	"context"
	"testing"
	"time"

	"pricemonitor/lib/catalog"
	"pricemonitor/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func setup(t testing.TB) (*Service, *MemStorage, func()) {
	cleanup := telemetry.SetupForTesting(t, "test:services/reconciler")

	storage := NewMemStorage()
	service := NewService(storage)
	return service, storage, cleanup
}

func widgetRecord() catalog.Record {
	return catalog.Record{
		StoreID:      "iga_canada",
		StoreName:    "IGA",
		Domain:       "iga.net",
		Region:       catalog.RegionCanada,
		SoldBy:       "Sobeys Inc.",
		Language:     catalog.English,
		Name:         "Widget",
		Brand:        "Acme",
		GTIN:         &catalog.GTIN{Kind: catalog.UPCA, Value: "012345678905"},
		Amount:       9.99,
		Currency:     catalog.CAD,
		Availability: catalog.InStock,
		Condition:    catalog.ConditionNew,
		URL:          "https://www.iga.net/en/product/widget",
	}
}

func TestInsertNewProduct(t *testing.T) {
	service, storage, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	result, err := service.Process(ctx, widgetRecord())
	require.NoError(t, err)
	require.Equal(t, OutcomeInsertedProduct, result.Outcome)
	require.False(t, result.ProductID.IsZero())
	require.False(t, result.OfferID.IsZero())

	products, offers, stores := storage.Snapshot()
	require.Len(t, products, 1)
	require.Len(t, offers, 1)
	require.Len(t, stores, 1)

	product := products[0]
	require.Equal(t, "012345678905", product.GTIN.Value)
	require.Equal(t, []string{"Widget"}, product.Name)
	require.Equal(t, []string{"Acme"}, product.Brand)
	require.Contains(t, product.ProductData, "iga_canada (Sobeys Inc)")

	offer := offers[0]
	require.Equal(t, result.ProductID, offer.ProductID)
	require.Equal(t, 9.99, offer.Amount)
	require.Equal(t, catalog.CAD, offer.Currency)
}

func TestGTINMatchNeverDuplicates(t *testing.T) {
	service, storage, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	first, err := service.Process(ctx, widgetRecord())
	require.NoError(t, err)

	// same gtin sighted at a different store
	rec := widgetRecord()
	rec.StoreID = "walmart_canada"
	rec.StoreName = "Walmart"
	rec.Domain = "walmart.ca"
	rec.SoldBy = "Walmart Canada Corp."
	rec.Amount = 8.49

	second, err := service.Process(ctx, rec)
	require.NoError(t, err)
	require.Equal(t, first.ProductID, second.ProductID)
	require.Equal(t, OutcomeAddedStoreData, second.Outcome)

	products, offers, _ := storage.Snapshot()
	require.Len(t, products, 1)
	require.Len(t, offers, 2)
	require.Contains(t, products[0].ProductData, "iga_canada (Sobeys Inc)")
	require.Contains(t, products[0].ProductData, "walmart_canada (Walmart Canada Corp)")
}

func TestBrandModelMatchIsCaseInsensitive(t *testing.T) {
	service, storage, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	rec := widgetRecord()
	rec.GTIN = nil
	rec.ModelNumber = "WX-100"
	first, err := service.Process(ctx, rec)
	require.NoError(t, err)

	rec2 := rec
	rec2.Brand = "ACME"
	rec2.StoreID = "metro_canada"
	rec2.StoreName = "Metro"
	rec2.SoldBy = "Metro Inc."
	second, err := service.Process(ctx, rec2)
	require.NoError(t, err)
	require.Equal(t, first.ProductID, second.ProductID)

	products, _, _ := storage.Snapshot()
	require.Len(t, products, 1)
}

func TestNewLanguageMergesUnderSameStoreSellerKey(t *testing.T) {
	service, storage, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	first, err := service.Process(ctx, widgetRecord())
	require.NoError(t, err)

	rec := widgetRecord()
	rec.Language = catalog.French
	rec.Name = "Bidule"
	second, err := service.Process(ctx, rec)
	require.NoError(t, err)
	require.Equal(t, first.ProductID, second.ProductID)
	require.Equal(t, OutcomeAddedLanguage, second.Outcome)

	products, _, _ := storage.Snapshot()
	require.Len(t, products, 1)

	storeData := products[0].ProductData["iga_canada (Sobeys Inc)"]
	require.Contains(t, storeData, catalog.English)
	require.Contains(t, storeData, catalog.French)
	require.Equal(t, "Widget", storeData[catalog.English].Name)
	require.Equal(t, "Bidule", storeData[catalog.French].Name)

	require.ElementsMatch(t,
		[]catalog.Language{catalog.English, catalog.French},
		products[0].SupportedLanguages,
	)
}

func TestRepeatSightingLeavesProductAlone(t *testing.T) {
	service, storage, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	_, err := service.Process(ctx, widgetRecord())
	require.NoError(t, err)
	before, _, _ := storage.Snapshot()

	// price changed, everything else already covered
	rec := widgetRecord()
	rec.Amount = 12.49
	result, err := service.Process(ctx, rec)
	require.NoError(t, err)
	require.Equal(t, OutcomeUnchanged, result.Outcome)

	after, offers, _ := storage.Snapshot()
	require.Equal(t, before, after)
	// the price movement still lands in the offer log
	require.Len(t, offers, 2)
	require.Equal(t, 12.49, offers[1].Amount)
}

func TestCreatedTimestampSurvivesMerges(t *testing.T) {
	service, storage, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	t0 := time.Date(2020, 5, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour * 24)

	service.now = func() time.Time { return t0 }
	_, err := service.Process(ctx, widgetRecord())
	require.NoError(t, err)

	service.now = func() time.Time { return t1 }
	rec := widgetRecord()
	rec.Language = catalog.French
	_, err = service.Process(ctx, rec)
	require.NoError(t, err)

	products, _, _ := storage.Snapshot()
	require.Len(t, products, 1)
	require.Equal(t, t0, products[0].Created)
	require.Equal(t, t1, products[0].Updated)

	storeData := products[0].ProductData["iga_canada (Sobeys Inc)"]
	require.Equal(t, t0, storeData[catalog.English].Created)
	require.Equal(t, t1, storeData[catalog.French].Created)
}

func TestStoreFieldsNeverOverwritten(t *testing.T) {
	service, storage, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	_, err := service.Process(ctx, widgetRecord())
	require.NoError(t, err)

	rec := widgetRecord()
	rec.GTIN = &catalog.GTIN{Kind: catalog.UPCA, Value: "036000291452"}
	rec.StoreName = "IGA Extra"
	rec.Domain = "igaextra.example"
	_, err = service.Process(ctx, rec)
	require.NoError(t, err)

	_, _, stores := storage.Snapshot()
	require.Len(t, stores, 1)
	require.Equal(t, "IGA", stores[0].Name)
	require.Equal(t, "iga.net", stores[0].Domain)
}

func TestEveryRunAppendsExactlyOneOffer(t *testing.T) {
	service, storage, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := service.Process(ctx, widgetRecord())
		require.NoError(t, err)
	}

	_, offers, _ := storage.Snapshot()
	require.Len(t, offers, 5)
}

func TestRecordWithoutPriceIsRejected(t *testing.T) {
	service, storage, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	rec := widgetRecord()
	rec.Amount = 0
	_, err := service.Process(ctx, rec)
	require.ErrorIs(t, err, catalog.ErrMissingPrice)

	products, offers, stores := storage.Snapshot()
	require.Empty(t, products)
	require.Empty(t, offers)
	require.Empty(t, stores)
}

func TestRecordWithoutAvailabilityIsRejected(t *testing.T) {
	service, _, cleanup := setup(t)
	defer cleanup()

	rec := widgetRecord()
	rec.Availability = ""
	_, err := service.Process(context.Background(), rec)
	require.ErrorIs(t, err, catalog.ErrMissingAvailability)
}

func TestNoGTINNoModelNumberInsertsNewProduct(t *testing.T) {
	service, storage, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	rec := widgetRecord()
	rec.GTIN = nil
	rec.ModelNumber = ""

	first, err := service.Process(ctx, rec)
	require.NoError(t, err)
	second, err := service.Process(ctx, rec)
	require.NoError(t, err)

	// without an identity there is nothing to reconcile against
	require.NotEqual(t, first.ProductID, second.ProductID)

	products, _, _ := storage.Snapshot()
	require.Len(t, products, 2)
}
