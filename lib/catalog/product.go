package catalog

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is one physical product, possibly sold by several stores in
// several languages. Identity is the GTIN when one is known, otherwise
// the (brand, model number) pair.
//
// Name, Brand, Tags and SupportedLanguages are append-only sets: every
// sighting contributes its values, nothing is removed.
type Product struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty"`
	GTIN               *GTIN                `bson:"gtin,omitempty"`
	ModelNumber        string               `bson:"modelNumber,omitempty"`
	Name               []string             `bson:"name"`
	Brand              []string             `bson:"brand"`
	Tags               []string             `bson:"tags,omitempty"`
	SupportedLanguages []Language           `bson:"supportedLanguages"`
	ProductData        map[string]StoreData `bson:"productData"`
	Created            time.Time            `bson:"created"`
	Updated            time.Time            `bson:"updated"`
}

// StoreData holds a single store-seller's localized product data,
// keyed by language. Each language appears at most once.
type StoreData map[Language]LocaleData

// LocaleData is the per (store, seller, language) view of a product.
type LocaleData struct {
	Name        string    `bson:"name"`
	Description string    `bson:"description,omitempty"`
	SKU         string    `bson:"sku,omitempty"`
	ModelNumber string    `bson:"modelNumber,omitempty"`
	URL         string    `bson:"url,omitempty"`
	Created     time.Time `bson:"created"`
	Updated     time.Time `bson:"updated"`
}

// NewProduct builds the full nested product document for a record's
// first sighting.
func NewProduct(r Record, now time.Time) Product {
	return Product{
		GTIN:               r.GTIN,
		ModelNumber:        r.ModelNumber,
		Name:               []string{r.Name},
		Brand:              appendNonEmpty(nil, r.Brand),
		Tags:               r.Tags,
		SupportedLanguages: []Language{r.Language},
		ProductData: map[string]StoreData{
			r.StoreSellerKey(): {
				r.Language: NewLocaleData(r, now),
			},
		},
		Created: now,
		Updated: now,
	}
}

// NewLocaleData builds the localized sub-document for a record.
func NewLocaleData(r Record, now time.Time) LocaleData {
	return LocaleData{
		Name:        r.Name,
		Description: r.Description,
		SKU:         r.SKU,
		ModelNumber: r.ModelNumber,
		URL:         r.URL,
		Created:     now,
		Updated:     now,
	}
}

func appendNonEmpty(dst []string, values ...string) []string {
	for _, v := range values {
		if v != "" {
			dst = append(dst, v)
		}
	}
	return dst
}
