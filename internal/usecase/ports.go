package usecase

import (
	"context"

	domain "github.com/feastly/delivery-api/internal/entity"
)

// HistoryPage is the pagination window for archival order queries.
type HistoryPage struct {
	Page  int // 1-based
	Limit int
}

type OrderRepo interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// UpdateStatusIf performs a guarded compare-and-swap on the status
	// column. It returns false when the current status no longer matches
	// fromStatus, so two racing transitions cannot both win.
	UpdateStatusIf(ctx context.Context, id string, fromStatus, toStatus domain.Status) (bool, error)
	AssignDeliveryPartner(ctx context.Context, id, partnerID string) error
	ListActive(ctx context.Context) ([]domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	ListActiveByRestaurant(ctx context.Context, restaurantID string) ([]domain.Order, error)
	ListHistoryByRestaurant(ctx context.Context, restaurantID string, page HistoryPage) ([]domain.Order, error)
}

type MenuRepo interface {
	Create(ctx context.Context, mi *domain.MenuItem) error
	GetByID(ctx context.Context, id string) (*domain.MenuItem, error)
	ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.MenuItem, error)
	Update(ctx context.Context, mi *domain.MenuItem) error
	Delete(ctx context.Context, id string) error
}

type RestaurantRepo interface {
	Create(ctx context.Context, r *domain.Restaurant) error
	GetByID(ctx context.Context, id string) (*domain.Restaurant, error)
	GetByMobileOrEmail(ctx context.Context, mobile, email string) (*domain.Restaurant, error)
	List(ctx context.Context) ([]domain.Restaurant, error)
	Update(ctx context.Context, r *domain.Restaurant) error
	SetApproval(ctx context.Context, id string, approved bool) error
	Delete(ctx context.Context, id string) error
}

type CustomerRepo interface {
	Create(ctx context.Context, c *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	Update(ctx context.Context, c *domain.Customer) error
}

type DeliveryPartnerRepo interface {
	GetByID(ctx context.Context, id string) (*domain.DeliveryPartner, error)
}

type ReviewRepo interface {
	Create(ctx context.Context, r *domain.OrderReview) error
	GetByID(ctx context.Context, id string) (*domain.OrderReview, error)
	GetByOrder(ctx context.Context, orderID string) (*domain.OrderReview, error)
	List(ctx context.Context) ([]domain.OrderReview, error)
	Update(ctx context.Context, r *domain.OrderReview) error
	Delete(ctx context.Context, id string) error
}

// EventSink receives the full order projection after every successful
// creation or transition. Delivery guarantees are the sink's concern;
// publishing is fire-and-forget from the engine's perspective.
type EventSink interface {
	PublishOrderEvent(ctx context.Context, ev OrderEvent) error
}

type OrderCache interface {
	SetStatus(ctx context.Context, orderID string, status domain.Status) error
	GetStatus(ctx context.Context, orderID string) (domain.Status, bool, error)
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// OTPStore is a time-indexed code store; entries expire on the adapter's
// TTL, never through a process-global map.
type OTPStore interface {
	Put(ctx context.Context, phone, code string) error
	Get(ctx context.Context, phone string) (string, bool, error)
	Delete(ctx context.Context, phone string) error
}
