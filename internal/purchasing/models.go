// Package purchasing builds the purchasing fact: purchase requests joined to
// the purchase orders raised against them and the delivery, receipt and
// settlement notes recorded on each order item.
package purchasing

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ref is a code/name reference embedded in a record.
type Ref struct {
	Code *string `bson:"code,omitempty"`
	Name *string `bson:"name,omitempty"`
}

type Unit struct {
	Code     *string `bson:"code,omitempty"`
	Name     *string `bson:"name,omitempty"`
	Division *Ref    `bson:"division,omitempty"`
}

type UOM struct {
	Unit *string `bson:"unit,omitempty"`
}

type Product struct {
	Code *string `bson:"code,omitempty"`
	Name *string `bson:"name,omitempty"`
	UOM  *UOM    `bson:"uom,omitempty"`
}

// PurchaseRequest is a request-type record.
type PurchaseRequest struct {
	ID                   primitive.ObjectID `bson:"_id"`
	No                   *string            `bson:"no,omitempty"`
	CreatedDate          *time.Time         `bson:"_createdDate,omitempty"`
	CreatedBy            *string            `bson:"_createdBy,omitempty"`
	UpdatedDate          *time.Time         `bson:"_updatedDate,omitempty"`
	ExpectedDeliveryDate *time.Time         `bson:"expectedDeliveryDate,omitempty"`
	Budget               *Ref               `bson:"budget,omitempty"`
	Unit                 *Unit              `bson:"unit,omitempty"`
	Category             *Ref               `bson:"category,omitempty"`
	Deleted              *bool              `bson:"_deleted,omitempty"`
	Items                []RequestItem      `bson:"items,omitempty"`
}

type RequestItem struct {
	Product  *Product `bson:"product,omitempty"`
	Quantity *float64 `bson:"quantity,omitempty"`
	UOM      *UOM     `bson:"uom,omitempty"`
}

// RequestRef is the copy of a request embedded in an order.
type RequestRef struct {
	ID     *primitive.ObjectID `bson:"_id,omitempty"`
	No     *string             `bson:"no,omitempty"`
	Budget *Ref                `bson:"budget,omitempty"`
}

// PurchaseOrder is an order-type record.
type PurchaseOrder struct {
	ID                primitive.ObjectID  `bson:"_id"`
	No                *string             `bson:"no,omitempty"`
	CreatedDate       *time.Time          `bson:"_createdDate,omitempty"`
	CreatedBy         *string             `bson:"_createdBy,omitempty"`
	UpdatedDate       *time.Time          `bson:"_updatedDate,omitempty"`
	Deleted           *bool               `bson:"_deleted,omitempty"`
	PurchaseRequestID *primitive.ObjectID `bson:"purchaseRequestId,omitempty"`
	PurchaseRequest   *RequestRef         `bson:"purchaseRequest,omitempty"`
	External          *ExternalOrder      `bson:"purchaseOrderExternal,omitempty"`
	Items             []OrderItem         `bson:"items,omitempty"`
}

// requestID returns the id of the request the order was raised against.
func (o PurchaseOrder) requestID() (primitive.ObjectID, bool) {
	if o.PurchaseRequestID != nil && !o.PurchaseRequestID.IsZero() {
		return *o.PurchaseRequestID, true
	}
	if o.PurchaseRequest != nil && o.PurchaseRequest.ID != nil && !o.PurchaseRequest.ID.IsZero() {
		return *o.PurchaseRequest.ID, true
	}
	return primitive.NilObjectID, false
}

type Currency struct {
	Code        *string `bson:"code,omitempty"`
	Description *string `bson:"description,omitempty"`
}

// ExternalOrder is the order placed with the supplier.
type ExternalOrder struct {
	No                   *string    `bson:"no,omitempty"`
	CreatedDate          *time.Time `bson:"_createdDate,omitempty"`
	Supplier             *Ref       `bson:"supplier,omitempty"`
	Currency             *Currency  `bson:"currency,omitempty"`
	PaymentMethod        *string    `bson:"paymentMethod,omitempty"`
	CurrencyRate         *float64   `bson:"currencyRate,omitempty"`
	ExpectedDeliveryDate *time.Time `bson:"expectedDeliveryDate,omitempty"`
}

type OrderItem struct {
	Product          *Product      `bson:"product,omitempty"`
	DealQuantity     *float64      `bson:"dealQuantity,omitempty"`
	DealUOM          *UOM          `bson:"dealUom,omitempty"`
	PricePerDealUnit *float64      `bson:"pricePerDealUnit,omitempty"`
	Fulfillments     []Fulfillment `bson:"fulfillments,omitempty"`
}

// Fulfillment records the delivery, receipt and settlement of an item.
type Fulfillment struct {
	DeliveryOrderNo     *string    `bson:"deliveryOrderNo,omitempty"`
	DeliveryOrderDate   *time.Time `bson:"deliveryOrderDate,omitempty"`
	UnitReceiptNoteNo   *string    `bson:"unitReceiptNoteNo,omitempty"`
	UnitReceiptNoteDate *time.Time `bson:"unitReceiptNoteDate,omitempty"`
	InterNoteNo         *string    `bson:"interNoteNo,omitempty"`
	InterNoteDate       *time.Time `bson:"interNoteDate,omitempty"`
}

// Group is one request with one of its orders, or with none.
type Group struct {
	Request PurchaseRequest
	Order   *PurchaseOrder
}
