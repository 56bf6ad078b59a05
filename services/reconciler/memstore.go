package reconciler

import (
	"context"
	"strings"
	"sync"

	"pricemonitor/lib/catalog"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemStorage is an in-memory Storage. It backs the service tests and
// the --dry-run pipeline mode, and mirrors the merge semantics of the
// mongo implementation.
type MemStorage struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*catalog.Product
	offers   []catalog.Offer
	stores   map[string]catalog.Store
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		products: map[primitive.ObjectID]*catalog.Product{},
		stores:   map[string]catalog.Store{},
	}
}

func (m *MemStorage) EnsureStore(_ context.Context, store catalog.Store) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stores[store.ID]; ok {
		return nil
	}
	m.stores[store.ID] = store
	return nil
}

func (m *MemStorage) FindProductByGTIN(_ context.Context, gtin string) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.GTIN != nil && p.GTIN.Value == gtin {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *MemStorage) FindProductByBrandModel(_ context.Context, brand, modelNumber string) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ModelNumber != modelNumber {
			continue
		}
		for _, b := range p.Brand {
			if strings.EqualFold(b, brand) {
				clone := *p
				return &clone, nil
			}
		}
	}
	return nil, nil
}

func (m *MemStorage) InsertProduct(_ context.Context, product catalog.Product) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product.ID = primitive.NewObjectID()
	m.products[product.ID] = &product
	return product.ID, nil
}

func (m *MemStorage) SetStoreData(_ context.Context, id primitive.ObjectID, key string, data catalog.StoreData, patch ProductPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok {
		return errProductNotFound(id)
	}
	if product.ProductData == nil {
		product.ProductData = map[string]catalog.StoreData{}
	}
	product.ProductData[key] = data
	applyPatch(product, patch)
	return nil
}

func (m *MemStorage) SetLocaleData(_ context.Context, id primitive.ObjectID, key string, lang catalog.Language, data catalog.LocaleData, patch ProductPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok {
		return errProductNotFound(id)
	}
	storeData, ok := product.ProductData[key]
	if !ok {
		storeData = catalog.StoreData{}
		product.ProductData[key] = storeData
	}
	storeData[lang] = data
	applyPatch(product, patch)
	return nil
}

func (m *MemStorage) AppendOffer(_ context.Context, offer catalog.Offer) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	offer.ID = primitive.NewObjectID()
	m.offers = append(m.offers, offer)
	return offer.ID, nil
}

// applyPatch mirrors the mongo $addToSet update: values join the set
// fields only when absent, and the updated timestamp is refreshed.
// Created timestamps are left alone.
func applyPatch(product *catalog.Product, patch ProductPatch) {
	product.Name = addToSet(product.Name, patch.Name)
	product.Brand = addToSet(product.Brand, patch.Brand)
	if !containsLanguage(product.SupportedLanguages, patch.Language) {
		product.SupportedLanguages = append(product.SupportedLanguages, patch.Language)
	}
	for _, tag := range patch.Tags {
		product.Tags = addToSet(product.Tags, tag)
	}
	product.Updated = patch.Updated
}

func addToSet(set []string, value string) []string {
	if value == "" {
		return set
	}
	for _, v := range set {
		if v == value {
			return set
		}
	}
	return append(set, value)
}

func containsLanguage(set []catalog.Language, lang catalog.Language) bool {
	for _, l := range set {
		if l == lang {
			return true
		}
	}
	return false
}

// Snapshot returns copies of the three collections, for tests and
// dry-run reporting.
func (m *MemStorage) Snapshot() ([]catalog.Product, []catalog.Offer, []catalog.Store) {
	m.mu.Lock()
	defer m.mu.Unlock()
	products := make([]catalog.Product, 0, len(m.products))
	for _, p := range m.products {
		products = append(products, *p)
	}
	offers := append([]catalog.Offer(nil), m.offers...)
	stores := make([]catalog.Store, 0, len(m.stores))
	for _, s := range m.stores {
		stores = append(stores, s)
	}
	return products, offers, stores
}

type errProductNotFound primitive.ObjectID

func (e errProductNotFound) Error() string {
	return "product not found: " + primitive.ObjectID(e).Hex()
}
