package usecase

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/feastly/delivery-api/internal/entity"
)

const (
	EventOrderNew    = "order:new"
	EventOrderUpdate = "order:update"
)

// EventLineItem is a priced line item as event consumers see it.
type EventLineItem struct {
	MenuItemID string          `json:"menuItemId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	LineTotal  decimal.Decimal `json:"lineTotal"`
	Addons     json.RawMessage `json:"addons,omitempty"`
}

// EventOrder is the wire form of an order. Field names match the HTTP
// DTOs so consumers see one vocabulary regardless of transport.
type EventOrder struct {
	ID                string             `json:"id"`
	RestaurantID      string             `json:"restaurantId"`
	CustomerID        string             `json:"customerId"`
	Items             []EventLineItem    `json:"items"`
	ItemsAmount       decimal.Decimal    `json:"itemsAmount"`
	Tax               decimal.Decimal    `json:"tax"`
	DeliveryFee       decimal.Decimal    `json:"deliveryFee"`
	GrandTotal        decimal.Decimal    `json:"grandTotal"`
	Status            domain.Status      `json:"status"`
	PaymentType       domain.PaymentType `json:"paymentType"`
	CustomerNotes     string             `json:"customerNotes,omitempty"`
	Address           string             `json:"address,omitempty"`
	DistanceKm        decimal.Decimal    `json:"distanceKm"`
	DeliveryPartnerID *string            `json:"deliveryPartnerId,omitempty"`
	PlacedAt          time.Time          `json:"placedAt"`
}

func eventOrder(o *domain.Order) EventOrder {
	items := make([]EventLineItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = EventLineItem{
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			LineTotal:  it.LineTotal,
			Addons:     it.Addons,
		}
	}
	return EventOrder{
		ID:                o.ID,
		RestaurantID:      o.RestaurantID,
		CustomerID:        o.CustomerID,
		Items:             items,
		ItemsAmount:       o.Totals.ItemsAmount,
		Tax:               o.Totals.Tax,
		DeliveryFee:       o.Totals.DeliveryFee,
		GrandTotal:        o.Totals.GrandTotal,
		Status:            o.Status,
		PaymentType:       o.PaymentType,
		CustomerNotes:     o.CustomerNotes,
		Address:           o.Address,
		DistanceKm:        o.DistanceKm,
		DeliveryPartnerID: o.DeliveryPartnerID,
		PlacedAt:          o.PlacedAt,
	}
}

type EventRestaurant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
	Email  string `json:"email"`
}

// EventCustomer carries contact fields only; credentials never leave
// the service.
type EventCustomer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type EventDeliveryPartner struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
}

// OrderProjection is the denormalized order view pushed to the event sink
// on every creation and transition.
type OrderProjection struct {
	Order           EventOrder            `json:"order"`
	Restaurant      *EventRestaurant      `json:"restaurant,omitempty"`
	Customer        *EventCustomer        `json:"customer,omitempty"`
	DeliveryPartner *EventDeliveryPartner `json:"deliveryPartner,omitempty"`
}

type OrderEvent struct {
	Name       string          `json:"event"` // EventOrderNew | EventOrderUpdate
	Projection OrderProjection `json:"payload"`
}

// DeliveryStatusMsg is sent by the dispatch service on Kafka when a
// delivery partner picks up or completes an order.
type DeliveryStatusMsg struct {
	OrderID   string `json:"orderId"`
	PartnerID string `json:"partnerId"`
	Status    string `json:"status"` // "ASSIGNED" | "DELIVERED"
}
