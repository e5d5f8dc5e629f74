package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CatalogLookup resolves a menu item id. The second return is false when
// the id is unknown.
type CatalogLookup func(id string) (*MenuItem, bool)

// PricingRates are the flat rates applied on top of the items amount.
type PricingRates struct {
	TaxRate   decimal.Decimal // fraction, e.g. 0.05
	PerKmRate decimal.Decimal // currency units per km
}

// Quote prices a cart. It resolves every line item against the catalog in
// input order, fails fast on the first unknown id, and computes the order
// totals with exact decimal arithmetic. Monetary outputs are rounded to
// 2 decimal places (half-up) once at the end; intermediate sums are never
// rounded, so identical inputs always quote identically.
func Quote(reqs []LineItemRequest, lookup CatalogLookup, distanceKm decimal.Decimal, rates PricingRates) ([]PricedLineItem, OrderTotals, error) {
	if len(reqs) == 0 {
		return nil, OrderTotals{}, &InvalidInputError{Reason: "order must contain at least one line item"}
	}
	if distanceKm.IsNegative() {
		return nil, OrderTotals{}, &InvalidInputError{Reason: "distance must not be negative"}
	}
	if rates.TaxRate.IsNegative() || rates.PerKmRate.IsNegative() {
		return nil, OrderTotals{}, &InvalidInputError{Reason: "rates must not be negative"}
	}

	items := make([]PricedLineItem, 0, len(reqs))
	itemsAmount := decimal.Zero
	for i, req := range reqs {
		if req.Quantity < 1 {
			return nil, OrderTotals{}, &InvalidInputError{
				Reason: fmt.Sprintf("line %d: quantity must be at least 1", i),
			}
		}
		mi, ok := lookup(req.MenuItemID)
		if !ok {
			return nil, OrderTotals{}, &NotFoundError{Kind: "menu item", ID: req.MenuItemID}
		}
		unit := mi.UnitPrice()
		lineTotal := unit.Mul(decimal.NewFromInt(int64(req.Quantity)))
		itemsAmount = itemsAmount.Add(lineTotal)
		items = append(items, PricedLineItem{
			MenuItemID: req.MenuItemID,
			Quantity:   req.Quantity,
			UnitPrice:  unit,
			LineTotal:  lineTotal,
			Addons:     req.Addons,
		})
	}

	tax := itemsAmount.Mul(rates.TaxRate)
	deliveryFee := distanceKm.Mul(rates.PerKmRate)
	grandTotal := itemsAmount.Add(tax).Add(deliveryFee)

	// single rounding pass over the outputs
	for i := range items {
		items[i].LineTotal = items[i].LineTotal.Round(2)
	}
	totals := OrderTotals{
		ItemsAmount: itemsAmount.Round(2),
		Tax:         tax.Round(2),
		DeliveryFee: deliveryFee.Round(2),
		GrandTotal:  grandTotal.Round(2),
	}
	return items, totals, nil
}
