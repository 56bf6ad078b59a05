package catalog

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Offer is one price/availability observation. The offers collection
// is an append-only log: offers are never updated or deduplicated, a
// product's price history is the set of its offers ordered by time.
type Offer struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	ProductID    primitive.ObjectID `bson:"productId"`
	Amount       float64            `bson:"amount"`
	Currency     Currency           `bson:"currency"`
	Availability Availability       `bson:"availability"`
	Condition    Condition          `bson:"condition"`
	SoldBy       string             `bson:"soldBy"`
	StoreID      string             `bson:"storeId"`
	Time         time.Time          `bson:"datetime"`
	Created      time.Time          `bson:"created"`
}

// NewOffer builds the offer document for a record. The product id is
// filled in by the reconciler once the product has been resolved.
func NewOffer(r Record, now time.Time) Offer {
	return Offer{
		Amount:       r.Amount,
		Currency:     r.Currency,
		Availability: r.Availability,
		Condition:    r.Condition,
		SoldBy:       r.SoldBy,
		StoreID:      r.StoreID,
		Time:         now,
		Created:      now,
	}
}
