// Package payable builds the accounts payable fact: unit receipt notes
// joined to the unit payment orders that settle them.
package payable

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Named struct {
	Name *string `bson:"name,omitempty"`
}

type Product struct {
	Code *string `bson:"code,omitempty"`
	Name *string `bson:"name,omitempty"`
}

// UnitReceiptNote records goods received by a unit.
type UnitReceiptNote struct {
	ID          primitive.ObjectID `bson:"_id"`
	No          *string            `bson:"no,omitempty"`
	CreatedBy   *string            `bson:"_createdBy,omitempty"`
	UpdatedDate *time.Time         `bson:"_updatedDate,omitempty"`
	Unit        *Named             `bson:"unit,omitempty"`
	Deleted     *bool              `bson:"_deleted,omitempty"`
	Items       []ReceiptItem      `bson:"items,omitempty"`
}

type ReceiptItem struct {
	Product           *Product `bson:"product,omitempty"`
	PricePerDealUnit  *float64 `bson:"pricePerDealUnit,omitempty"`
	DeliveredQuantity *float64 `bson:"deliveredQuantity,omitempty"`
	CurrencyRate      *float64 `bson:"currencyRate,omitempty"`
}

// UnitPaymentOrder settles one or more receipt notes of a supplier.
type UnitPaymentOrder struct {
	ID          primitive.ObjectID `bson:"_id"`
	No          *string            `bson:"no,omitempty"`
	CreatedDate *time.Time         `bson:"_createdDate,omitempty"`
	Date        *time.Time         `bson:"date,omitempty"`
	DueDate     *time.Time         `bson:"dueDate,omitempty"`
	Supplier    *Named             `bson:"supplier,omitempty"`
	Category    *Named             `bson:"category,omitempty"`
	Division    *Named             `bson:"division,omitempty"`
	Deleted     *bool              `bson:"_deleted,omitempty"`
	Items       []PaymentItem      `bson:"items,omitempty"`
}

type PaymentItem struct {
	UnitReceiptNoteID *primitive.ObjectID `bson:"unitReceiptNoteId,omitempty"`
}

// Group is a receipt note with one payment order that settles it.
type Group struct {
	Receipt UnitReceiptNote
	Payment UnitPaymentOrder
}
