package catalog

import "time"

// Store is a storefront. Store documents are written with
// insert-only-on-absent semantics: once created, later sightings never
// overwrite any field.
type Store struct {
	ID      string    `bson:"_id"`
	Name    string    `bson:"name"`
	Domain  string    `bson:"domain"`
	Region  Region    `bson:"region"`
	Created time.Time `bson:"created"`
}

// NewStore builds the store document for a record.
func NewStore(r Record, now time.Time) Store {
	return Store{
		ID:      r.StoreID,
		Name:    r.StoreName,
		Domain:  r.Domain,
		Region:  r.Region,
		Created: now,
	}
}
