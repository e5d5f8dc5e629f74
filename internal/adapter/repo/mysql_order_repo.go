package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	domain "github.com/feastly/delivery-api/internal/entity"
	"github.com/feastly/delivery-api/internal/usecase"
)

type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)

// Create writes the order row and its line items in one transaction.
// Pricing fields are write-once; nothing here is ever updated later.
func (r *MySQLOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO orders (id, restaurant_id, customer_id, status, payment_type, customer_notes,
                    address, distance_km, items_amount, tax, delivery_fee, grand_total,
                    placed_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,NOW())`,
		o.ID, o.RestaurantID, o.CustomerID, string(o.Status), string(o.PaymentType),
		o.CustomerNotes, o.Address, o.DistanceKm, o.Totals.ItemsAmount, o.Totals.Tax,
		o.Totals.DeliveryFee, o.Totals.GrandTotal, o.PlacedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for pos, it := range o.Items {
		var addons any
		if len(it.Addons) > 0 {
			addons = []byte(it.Addons)
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO order_items (order_id, position, menu_item_id, quantity, unit_price, line_total, addons)
VALUES (?,?,?,?,?,?,?)`,
			o.ID, pos, it.MenuItemID, it.Quantity, it.UnitPrice, it.LineTotal, addons)
		if err != nil {
			return fmt.Errorf("insert line item %d: %w", pos, err)
		}
	}

	return tx.Commit()
}

func (r *MySQLOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, restaurant_id, customer_id, status, payment_type, customer_notes, address,
       distance_km, items_amount, tax, delivery_fee, grand_total, delivery_partner_id, placed_at
FROM orders WHERE id=?`, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Kind: "order", ID: id}
		}
		return nil, err
	}
	if o.Items, err = r.loadItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateStatusIf is the guarded CAS write the lifecycle relies on: the
// UPDATE only matches while the row still holds fromStatus.
func (r *MySQLOrderRepo) UpdateStatusIf(ctx context.Context, id string, fromStatus, toStatus domain.Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders SET status = ?, updated_at = NOW()
WHERE id = ? AND status = ?`,
		string(toStatus), id, string(fromStatus))
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	// rows == 0: not found or status already moved on
	return rows > 0, nil
}

func (r *MySQLOrderRepo) AssignDeliveryPartner(ctx context.Context, id, partnerID string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders SET delivery_partner_id = ?, updated_at = NOW() WHERE id = ?`, partnerID, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.NotFoundError{Kind: "order", ID: id}
	}
	return nil
}

func (r *MySQLOrderRepo) ListActive(ctx context.Context) ([]domain.Order, error) {
	where, args := statusFilter(domain.ActiveStatuses())
	return r.list(ctx, "WHERE "+where+" ORDER BY placed_at DESC", args...)
}

func (r *MySQLOrderRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return r.list(ctx, "WHERE customer_id = ? ORDER BY placed_at DESC", customerID)
}

func (r *MySQLOrderRepo) ListActiveByRestaurant(ctx context.Context, restaurantID string) ([]domain.Order, error) {
	where, args := statusFilter(domain.ActiveStatuses())
	args = append([]any{restaurantID}, args...)
	return r.list(ctx, "WHERE restaurant_id = ? AND "+where+" ORDER BY placed_at DESC", args...)
}

func (r *MySQLOrderRepo) ListHistoryByRestaurant(ctx context.Context, restaurantID string, page usecase.HistoryPage) ([]domain.Order, error) {
	if page.Limit < 1 {
		page.Limit = 20
	}
	if page.Page < 1 {
		page.Page = 1
	}
	where, args := statusFilter(domain.HistoryStatuses())
	args = append([]any{restaurantID}, args...)
	args = append(args, page.Limit, (page.Page-1)*page.Limit)
	return r.list(ctx,
		"WHERE restaurant_id = ? AND "+where+" ORDER BY placed_at DESC LIMIT ? OFFSET ?",
		args...)
}

func (r *MySQLOrderRepo) list(ctx context.Context, clause string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, restaurant_id, customer_id, status, payment_type, customer_notes, address,
       distance_km, items_amount, tax, delivery_fee, grand_total, delivery_partner_id, placed_at
FROM orders `+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Items, err = r.loadItems(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *MySQLOrderRepo) loadItems(ctx context.Context, orderID string) ([]domain.PricedLineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT menu_item_id, quantity, unit_price, line_total, addons
FROM order_items WHERE order_id=? ORDER BY position`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.PricedLineItem
	for rows.Next() {
		var it domain.PricedLineItem
		var addons sql.NullString
		if err := rows.Scan(&it.MenuItemID, &it.Quantity, &it.UnitPrice, &it.LineTotal, &addons); err != nil {
			return nil, err
		}
		if addons.Valid {
			it.Addons = []byte(addons.String)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o           domain.Order
		status      string
		payment     string
		partnerID   sql.NullString
		totals      = &o.Totals
		distanceRaw decimal.Decimal
	)
	err := row.Scan(&o.ID, &o.RestaurantID, &o.CustomerID, &status, &payment,
		&o.CustomerNotes, &o.Address, &distanceRaw, &totals.ItemsAmount, &totals.Tax,
		&totals.DeliveryFee, &totals.GrandTotal, &partnerID, &o.PlacedAt)
	if err != nil {
		return nil, err
	}
	o.Status = domain.Status(status)
	o.PaymentType = domain.PaymentType(payment)
	o.DistanceKm = distanceRaw
	if partnerID.Valid {
		o.DeliveryPartnerID = &partnerID.String
	}
	return &o, nil
}

func statusFilter(statuses []domain.Status) (string, []any) {
	ph := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, s := range statuses {
		ph[i] = "?"
		args[i] = string(s)
	}
	return "status IN (" + strings.Join(ph, ",") + ")", args
}
