package usecase

import (
	"context"

	domain "github.com/feastly/delivery-api/internal/entity"
)

// projectionLoader denormalizes an order for the event sink. Lookups are
// best-effort: a missing related entity leaves its field nil rather than
// failing the operation that triggered the event.
type projectionLoader struct {
	restaurants RestaurantRepo
	customers   CustomerRepo
	partners    DeliveryPartnerRepo
}

func (p projectionLoader) load(ctx context.Context, o *domain.Order) OrderProjection {
	proj := OrderProjection{Order: eventOrder(o)}
	if p.restaurants != nil {
		if r, err := p.restaurants.GetByID(ctx, o.RestaurantID); err == nil {
			proj.Restaurant = &EventRestaurant{ID: r.ID, Name: r.Name, Mobile: r.Mobile, Email: r.Email}
		}
	}
	if p.customers != nil {
		if c, err := p.customers.GetByID(ctx, o.CustomerID); err == nil {
			proj.Customer = &EventCustomer{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}
		}
	}
	if p.partners != nil && o.DeliveryPartnerID != nil {
		if dp, err := p.partners.GetByID(ctx, *o.DeliveryPartnerID); err == nil {
			proj.DeliveryPartner = &EventDeliveryPartner{ID: dp.ID, Name: dp.Name, Mobile: dp.Mobile}
		}
	}
	return proj
}
