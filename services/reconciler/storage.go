package reconciler

import (
	"context"
	"time"

	"pricemonitor/lib/catalog"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductPatch carries the append-only set values every product
// mutation contributes: the sighted name and brand, the record's
// language and tags. Updated refreshes the product's timestamp;
// created timestamps are never touched by a patch.
type ProductPatch struct {
	Name     string
	Brand    string
	Language catalog.Language
	Tags     []string
	Updated  time.Time
}

// Storage is the document-store handle the reconciler is constructed
// with. The mongo implementation backs production; the in-memory one
// backs tests and dry runs.
//
// Find methods return (nil, nil) when nothing matches.
type Storage interface {
	// EnsureStore upserts a store document with insert-only-on-absent
	// semantics: once a store id exists, no field is ever overwritten.
	EnsureStore(ctx context.Context, store catalog.Store) error

	FindProductByGTIN(ctx context.Context, gtin string) (*catalog.Product, error)
	// FindProductByBrandModel matches the brand case-insensitively and
	// the model number exactly, both at once. No fuzzy matching.
	FindProductByBrandModel(ctx context.Context, brand, modelNumber string) (*catalog.Product, error)

	InsertProduct(ctx context.Context, product catalog.Product) (primitive.ObjectID, error)
	// SetStoreData sets a product's entire (store, seller) subtree.
	SetStoreData(ctx context.Context, id primitive.ObjectID, key string, data catalog.StoreData, patch ProductPatch) error
	// SetLocaleData sets a single language under an existing
	// (store, seller) subtree, leaving sibling languages alone.
	SetLocaleData(ctx context.Context, id primitive.ObjectID, key string, lang catalog.Language, data catalog.LocaleData, patch ProductPatch) error

	// AppendOffer inserts a new offer row. Offers are never updated or
	// deduplicated.
	AppendOffer(ctx context.Context, offer catalog.Offer) (primitive.ObjectID, error)
}
