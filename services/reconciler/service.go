// Package reconciler merges scraped records into the product catalog.
// It decides whether a record is a new product or a new sighting of a
// stored one (by GTIN, else by brand + model number), writes the
// product/store documents accordingly, and appends one offer per
// record processed.
package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pricemonitor/lib/catalog"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/reconciler")

// Outcome says what Process did to the products collection.
type Outcome string

const (
	// no match found, a new product document was inserted
	OutcomeInsertedProduct Outcome = "insertedProduct"
	// matched a product that had no data for this store-seller yet
	OutcomeAddedStoreData Outcome = "addedStoreData"
	// matched a product whose store-seller entry lacked this language
	OutcomeAddedLanguage Outcome = "addedLanguage"
	// store, seller and language were already covered; the product was
	// left alone and only an offer was appended
	OutcomeUnchanged Outcome = "unchanged"
)

type Result struct {
	ProductID primitive.ObjectID
	OfferID   primitive.ObjectID
	Outcome   Outcome
}

type Service struct {
	storage Storage
	now     func() time.Time
}

func NewService(storage Storage) *Service {
	return &Service{
		storage: storage,
		now:     time.Now,
	}
}

// Process reconciles one normalized record against the catalog.
//
// Regardless of how the product resolves, every successful call
// upserts the store (insert-only-on-absent) and appends exactly one
// offer referencing the resolved product id. There is no rollback
// across the three collections: a store or offer write can outlive a
// failed product write.
func (s *Service) Process(ctx context.Context, rec catalog.Record) (Result, error) {
	ctx, span := tracer.Start(ctx, "Process")
	defer span.End()
	span.SetAttributes(
		attribute.String("store", rec.StoreID),
		attribute.String("url", rec.URL),
	)

	if err := rec.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record rejected")
		return Result{}, fmt.Errorf("record %s: %w", rec.URL, err)
	}

	now := s.now().UTC()

	if err := s.storage.EnsureStore(ctx, catalog.NewStore(rec, now)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store upsert failed")
		return Result{}, fmt.Errorf("upsert store %s: %w", rec.StoreID, err)
	}

	product, err := s.findExisting(ctx, rec)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "product lookup failed")
		return Result{}, err
	}

	var result Result
	if product == nil {
		id, err := s.storage.InsertProduct(ctx, catalog.NewProduct(rec, now))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "product insert failed")
			return Result{}, fmt.Errorf("insert product: %w", err)
		}
		slog.InfoContext(ctx, "added product", "store", rec.StoreID, "name", rec.Name)
		result = Result{ProductID: id, Outcome: OutcomeInsertedProduct}
	} else {
		outcome, err := s.merge(ctx, product, rec, now)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "product update failed")
			return Result{}, err
		}
		result = Result{ProductID: product.ID, Outcome: outcome}
	}

	offer := catalog.NewOffer(rec, now)
	offer.ProductID = result.ProductID
	offerID, err := s.storage.AppendOffer(ctx, offer)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "offer append failed")
		return Result{}, fmt.Errorf("append offer: %w", err)
	}
	slog.InfoContext(ctx, "added offer",
		"store", rec.StoreID,
		"amount", rec.Amount,
		"currency", rec.Currency,
	)
	result.OfferID = offerID

	span.SetAttributes(attribute.String("outcome", string(result.Outcome)))
	return result, nil
}

// findExisting resolves the record against stored products: GTIN
// first, then the brand + model number pair when both are present.
func (s *Service) findExisting(ctx context.Context, rec catalog.Record) (*catalog.Product, error) {
	if rec.GTIN != nil {
		product, err := s.storage.FindProductByGTIN(ctx, rec.GTIN.Value)
		if err != nil {
			return nil, fmt.Errorf("find product by gtin: %w", err)
		}
		if product != nil {
			return product, nil
		}
	}
	if rec.Brand != "" && rec.ModelNumber != "" {
		product, err := s.storage.FindProductByBrandModel(ctx, rec.Brand, rec.ModelNumber)
		if err != nil {
			return nil, fmt.Errorf("find product by brand and model: %w", err)
		}
		return product, nil
	}
	return nil, nil
}

// merge grafts the record's data onto a matched product. Per-store
// descriptive data is immutable once captured: when the store, seller
// and language are already present the product is left untouched and
// any price movement lives in the offer log alone.
func (s *Service) merge(ctx context.Context, product *catalog.Product, rec catalog.Record, now time.Time) (Outcome, error) {
	key := rec.StoreSellerKey()
	patch := ProductPatch{
		Name:     rec.Name,
		Brand:    rec.Brand,
		Language: rec.Language,
		Tags:     rec.Tags,
		Updated:  now,
	}

	storeData, ok := product.ProductData[key]
	if !ok {
		slog.InfoContext(ctx, "adding store data to product",
			"store", rec.StoreID, "key", key)
		data := catalog.StoreData{rec.Language: catalog.NewLocaleData(rec, now)}
		if err := s.storage.SetStoreData(ctx, product.ID, key, data, patch); err != nil {
			return "", fmt.Errorf("set store data: %w", err)
		}
		return OutcomeAddedStoreData, nil
	}

	if _, ok := storeData[rec.Language]; !ok {
		slog.InfoContext(ctx, "adding language to product data",
			"store", rec.StoreID, "key", key, "language", rec.Language)
		data := catalog.NewLocaleData(rec, now)
		if err := s.storage.SetLocaleData(ctx, product.ID, key, rec.Language, data, patch); err != nil {
			return "", fmt.Errorf("set locale data: %w", err)
		}
		return OutcomeAddedLanguage, nil
	}

	return OutcomeUnchanged, nil
}
