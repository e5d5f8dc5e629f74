package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentCOD    PaymentType = "COD"
	PaymentOnline PaymentType = "ONLINE"
)

func ParsePaymentType(s string) (PaymentType, error) {
	switch PaymentType(s) {
	case PaymentCOD, PaymentOnline:
		return PaymentType(s), nil
	}
	return "", &InvalidInputError{Reason: fmt.Sprintf("unknown payment type %q", s)}
}

// MenuItem is a purchasable catalog entry owned by a restaurant.
// The pricing engine treats it as read-only lookup input.
type MenuItem struct {
	ID               string
	RestaurantID     string
	Name             string
	Description      string
	Price            decimal.Decimal
	DiscountedPrice  *decimal.Decimal
	IsVeg            bool
	PackagingCharges decimal.Decimal
	Cuisine          string
	ImageURL         string
	Addons           json.RawMessage
}

// UnitPrice is the discounted price when one is set, else the base price.
func (m *MenuItem) UnitPrice() decimal.Decimal {
	if m.DiscountedPrice != nil {
		return *m.DiscountedPrice
	}
	return m.Price
}

// LineItemRequest is one cart entry as supplied by the caller.
type LineItemRequest struct {
	MenuItemID string
	Quantity   int
	Addons     json.RawMessage
}

// PricedLineItem is a line item after pricing. Immutable once the order
// is created.
type PricedLineItem struct {
	MenuItemID string
	Quantity   int
	UnitPrice  decimal.Decimal
	LineTotal  decimal.Decimal
	Addons     json.RawMessage
}

// OrderTotals is the monetary breakdown of an order, all values rounded
// to 2 decimal places.
type OrderTotals struct {
	ItemsAmount decimal.Decimal
	Tax         decimal.Decimal
	DeliveryFee decimal.Decimal
	GrandTotal  decimal.Decimal
}

// Order is the aggregate root. Pricing fields are write-once; the only
// mutations after creation are status transitions and delivery-partner
// assignment.
type Order struct {
	ID                string
	RestaurantID      string
	CustomerID        string
	Items             []PricedLineItem
	Totals            OrderTotals
	Status            Status
	PaymentType       PaymentType
	CustomerNotes     string
	Address           string
	DistanceKm        decimal.Decimal
	DeliveryPartnerID *string
	PlacedAt          time.Time
}

type Restaurant struct {
	ID       string
	Name     string
	Mobile   string
	Email    string
	Cuisines string
	Hours    json.RawMessage
	Address  json.RawMessage
	Approved bool
	TaxRate  *decimal.Decimal
}

type Customer struct {
	ID           string
	Email        string
	Name         string
	Phone        string
	Address      string
	PasswordHash string
}

type DeliveryPartner struct {
	ID     string
	Name   string
	Mobile string
}

type OrderReview struct {
	ID                string
	OrderID           string
	CustomerID        string
	RestaurantID      string
	DeliveryPartnerID *string
	ReviewText        string
	CreatedAt         time.Time
}
