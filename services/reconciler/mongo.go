package reconciler

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"pricemonitor/lib/catalog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig points the pipeline at its document store.
type MongoConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
	Products string `json:"products_collection"`
	Offers   string `json:"offers_collection"`
	Stores   string `json:"stores_collection"`
}

func (c MongoConfig) withDefaults() MongoConfig {
	if c.Products == "" {
		c.Products = "products"
	}
	if c.Offers == "" {
		c.Offers = "offers"
	}
	if c.Stores == "" {
		c.Stores = "stores"
	}
	return c
}

// MongoStorage implements Storage on three mongo collections.
type MongoStorage struct {
	products *mongo.Collection
	offers   *mongo.Collection
	stores   *mongo.Collection
}

// NewMongoStorage connects to mongo and prepares the collections. The
// returned close function disconnects the underlying client.
func NewMongoStorage(ctx context.Context, cfg MongoConfig) (*MongoStorage, func(context.Context) error, error) {
	cfg = cfg.withDefaults()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.Database)
	m := &MongoStorage{
		products: db.Collection(cfg.Products),
		offers:   db.Collection(cfg.Offers),
		stores:   db.Collection(cfg.Stores),
	}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}
	return m, client.Disconnect, nil
}

// ensureIndexes creates the gtin uniqueness guard and the offer
// history index. The unique sparse index makes the find-then-insert
// race between concurrent page processors fail loudly instead of
// silently duplicating a product.
func (m *MongoStorage) ensureIndexes(ctx context.Context) error {
	_, err := m.products.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "gtin.value", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	})
	if err != nil {
		return fmt.Errorf("create gtin index: %w", err)
	}
	_, err = m.offers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "productId", Value: 1}, {Key: "datetime", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create offer index: %w", err)
	}
	return nil
}

func (m *MongoStorage) EnsureStore(ctx context.Context, store catalog.Store) error {
	_, err := m.stores.UpdateOne(ctx,
		bson.M{"_id": store.ID},
		bson.M{"$setOnInsert": store},
		options.Update().SetUpsert(true),
	)
	return err
}

func (m *MongoStorage) FindProductByGTIN(ctx context.Context, gtin string) (*catalog.Product, error) {
	return m.findProduct(ctx, bson.M{"gtin.value": gtin})
}

func (m *MongoStorage) FindProductByBrandModel(ctx context.Context, brand, modelNumber string) (*catalog.Product, error) {
	return m.findProduct(ctx, bson.M{
		"modelNumber": modelNumber,
		"brand": primitive.Regex{
			Pattern: "^" + regexp.QuoteMeta(brand) + "$",
			Options: "i",
		},
	})
}

func (m *MongoStorage) findProduct(ctx context.Context, filter bson.M) (*catalog.Product, error) {
	var product catalog.Product
	err := m.products.FindOne(ctx, filter).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (m *MongoStorage) InsertProduct(ctx context.Context, product catalog.Product) (primitive.ObjectID, error) {
	res, err := m.products.InsertOne(ctx, product)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

func (m *MongoStorage) SetStoreData(ctx context.Context, id primitive.ObjectID, key string, data catalog.StoreData, patch ProductPatch) error {
	_, err := m.products.UpdateOne(ctx,
		bson.M{"_id": id},
		setStoreDataUpdate(key, data, patch),
	)
	return err
}

func (m *MongoStorage) SetLocaleData(ctx context.Context, id primitive.ObjectID, key string, lang catalog.Language, data catalog.LocaleData, patch ProductPatch) error {
	_, err := m.products.UpdateOne(ctx,
		bson.M{"_id": id},
		setLocaleDataUpdate(key, lang, data, patch),
	)
	return err
}

func (m *MongoStorage) AppendOffer(ctx context.Context, offer catalog.Offer) (primitive.ObjectID, error) {
	res, err := m.offers.InsertOne(ctx, offer)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

// RecentOffers returns the newest offers across all products, newest
// first. Used by the CLI offer listing.
func (m *MongoStorage) RecentOffers(ctx context.Context, limit int64) ([]catalog.Offer, error) {
	cursor, err := m.offers.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "datetime", Value: -1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	var offers []catalog.Offer
	if err := cursor.All(ctx, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// ListStores returns every store document.
func (m *MongoStorage) ListStores(ctx context.Context) ([]catalog.Store, error) {
	cursor, err := m.stores.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var stores []catalog.Store
	if err := cursor.All(ctx, &stores); err != nil {
		return nil, err
	}
	return stores, nil
}

// storeSellerPath addresses a product's (store, seller) subtree with
// the dotted form mongo partial updates use:
// "productData.walmart_canada (Walmart Canada Corp)". Keys come out of
// Record.StoreSellerKey, which keeps them free of periods.
func storeSellerPath(key string) string {
	return "productData." + key
}

// localePath extends a store-seller path down to one language.
func localePath(key string, lang catalog.Language) string {
	return storeSellerPath(key) + "." + string(lang)
}

// addToSetDocument builds the $addToSet half of a product update.
// Empty fields are omitted so a record missing its name or brand does
// not push "" into the append-only sets.
func addToSetDocument(patch ProductPatch) bson.M {
	doc := bson.M{}
	if patch.Name != "" {
		doc["name"] = patch.Name
	}
	if patch.Brand != "" {
		doc["brand"] = patch.Brand
	}
	if patch.Language != "" {
		doc["supportedLanguages"] = patch.Language
	}
	if len(patch.Tags) > 0 {
		doc["tags"] = bson.M{"$each": patch.Tags}
	}
	return doc
}

func setStoreDataUpdate(key string, data catalog.StoreData, patch ProductPatch) bson.M {
	update := bson.M{
		"$set": bson.M{
			storeSellerPath(key): data,
			"updated":            patch.Updated,
		},
	}
	if doc := addToSetDocument(patch); len(doc) > 0 {
		update["$addToSet"] = doc
	}
	return update
}

func setLocaleDataUpdate(key string, lang catalog.Language, data catalog.LocaleData, patch ProductPatch) bson.M {
	update := bson.M{
		"$set": bson.M{
			localePath(key, lang): data,
			"updated":             patch.Updated,
		},
	}
	if doc := addToSetDocument(patch); len(doc) > 0 {
		update["$addToSet"] = doc
	}
	return update
}
