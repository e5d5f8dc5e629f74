package repo

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/feastly/delivery-api/internal/entity"
	"github.com/feastly/delivery-api/internal/usecase"
)

type MySQLReviewRepo struct{ db *sql.DB }

func NewMySQLReviewRepo(db *sql.DB) *MySQLReviewRepo { return &MySQLReviewRepo{db: db} }

var _ usecase.ReviewRepo = (*MySQLReviewRepo)(nil)

const reviewColumns = `id, order_id, customer_id, restaurant_id, delivery_partner_id, review_text, created_at`

func (r *MySQLReviewRepo) Create(ctx context.Context, rev *domain.OrderReview) error {
	var partnerID any
	if rev.DeliveryPartnerID != nil {
		partnerID = *rev.DeliveryPartnerID
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO order_reviews (id, order_id, customer_id, restaurant_id, delivery_partner_id, review_text, created_at)
VALUES (?,?,?,?,?,?,?)`,
		rev.ID, rev.OrderID, rev.CustomerID, rev.RestaurantID, partnerID, rev.ReviewText, rev.CreatedAt)
	return err
}

func (r *MySQLReviewRepo) GetByID(ctx context.Context, id string) (*domain.OrderReview, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM order_reviews WHERE id=?`, id)
	rev, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: "review", ID: id}
	}
	return rev, err
}

// GetByOrder enforces one review per order. Nil result, nil error when
// the order has no review yet.
func (r *MySQLReviewRepo) GetByOrder(ctx context.Context, orderID string) (*domain.OrderReview, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM order_reviews WHERE order_id=?`, orderID)
	rev, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rev, err
}

func (r *MySQLReviewRepo) List(ctx context.Context) ([]domain.OrderReview, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+reviewColumns+` FROM order_reviews ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OrderReview
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rev)
	}
	return out, rows.Err()
}

func (r *MySQLReviewRepo) Update(ctx context.Context, rev *domain.OrderReview) error {
	res, err := r.db.ExecContext(ctx, `UPDATE order_reviews SET review_text=? WHERE id=?`, rev.ReviewText, rev.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "review", rev.ID)
}

func (r *MySQLReviewRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM order_reviews WHERE id=?`, id)
	if err != nil {
		return err
	}
	return requireRow(res, "review", id)
}

func scanReview(row rowScanner) (*domain.OrderReview, error) {
	var (
		rev       domain.OrderReview
		partnerID sql.NullString
	)
	err := row.Scan(&rev.ID, &rev.OrderID, &rev.CustomerID, &rev.RestaurantID,
		&partnerID, &rev.ReviewText, &rev.CreatedAt)
	if err != nil {
		return nil, err
	}
	if partnerID.Valid {
		rev.DeliveryPartnerID = &partnerID.String
	}
	return &rev, nil
}
