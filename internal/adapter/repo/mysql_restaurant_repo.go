package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	domain "github.com/feastly/delivery-api/internal/entity"
	"github.com/feastly/delivery-api/internal/usecase"
)

type MySQLRestaurantRepo struct{ db *sql.DB }

func NewMySQLRestaurantRepo(db *sql.DB) *MySQLRestaurantRepo { return &MySQLRestaurantRepo{db: db} }

var _ usecase.RestaurantRepo = (*MySQLRestaurantRepo)(nil)

const restaurantColumns = `id, name, mobile, email, cuisines, hours, address, approved, tax_rate`

func (r *MySQLRestaurantRepo) Create(ctx context.Context, rest *domain.Restaurant) error {
	var taxRate decimal.NullDecimal
	if rest.TaxRate != nil {
		taxRate = decimal.NewNullDecimal(*rest.TaxRate)
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO restaurants (id, name, mobile, email, cuisines, hours, address, approved, tax_rate)
VALUES (?,?,?,?,?,?,?,?,?)`,
		rest.ID, rest.Name, rest.Mobile, rest.Email, rest.Cuisines,
		rawOrNil(rest.Hours), rawOrNil(rest.Address), rest.Approved, taxRate)
	return err
}

func (r *MySQLRestaurantRepo) GetByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id=?`, id)
	rest, err := scanRestaurant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: "restaurant", ID: id}
	}
	return rest, err
}

// GetByMobileOrEmail backs the duplicate check on registration. A nil
// result with nil error means no match.
func (r *MySQLRestaurantRepo) GetByMobileOrEmail(ctx context.Context, mobile, email string) (*domain.Restaurant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE mobile=? OR email=? LIMIT 1`, mobile, email)
	rest, err := scanRestaurant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rest, err
}

func (r *MySQLRestaurantRepo) List(ctx context.Context) ([]domain.Restaurant, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Restaurant
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rest)
	}
	return out, rows.Err()
}

func (r *MySQLRestaurantRepo) Update(ctx context.Context, rest *domain.Restaurant) error {
	var taxRate decimal.NullDecimal
	if rest.TaxRate != nil {
		taxRate = decimal.NewNullDecimal(*rest.TaxRate)
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE restaurants SET name=?, mobile=?, email=?, cuisines=?, hours=?, address=?, tax_rate=?
WHERE id=?`,
		rest.Name, rest.Mobile, rest.Email, rest.Cuisines,
		rawOrNil(rest.Hours), rawOrNil(rest.Address), taxRate, rest.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "restaurant", rest.ID)
}

func (r *MySQLRestaurantRepo) SetApproval(ctx context.Context, id string, approved bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE restaurants SET approved=? WHERE id=?`, approved, id)
	if err != nil {
		return err
	}
	return requireRow(res, "restaurant", id)
}

func (r *MySQLRestaurantRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM restaurants WHERE id=?`, id)
	if err != nil {
		return err
	}
	return requireRow(res, "restaurant", id)
}

func scanRestaurant(row rowScanner) (*domain.Restaurant, error) {
	var (
		rest    domain.Restaurant
		hours   sql.NullString
		address sql.NullString
		taxRate decimal.NullDecimal
	)
	err := row.Scan(&rest.ID, &rest.Name, &rest.Mobile, &rest.Email, &rest.Cuisines,
		&hours, &address, &rest.Approved, &taxRate)
	if err != nil {
		return nil, err
	}
	if hours.Valid {
		rest.Hours = []byte(hours.String)
	}
	if address.Valid {
		rest.Address = []byte(address.String)
	}
	if taxRate.Valid {
		d := taxRate.Decimal
		rest.TaxRate = &d
	}
	return &rest, nil
}

func rawOrNil(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
