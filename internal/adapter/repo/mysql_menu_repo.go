package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	domain "github.com/feastly/delivery-api/internal/entity"
	"github.com/feastly/delivery-api/internal/usecase"
)

type MySQLMenuRepo struct{ db *sql.DB }

func NewMySQLMenuRepo(db *sql.DB) *MySQLMenuRepo { return &MySQLMenuRepo{db: db} }

var _ usecase.MenuRepo = (*MySQLMenuRepo)(nil)

const menuItemColumns = `id, restaurant_id, name, description, price, discounted_price,
       is_veg, packaging_charges, cuisine, image_url, addons`

func (r *MySQLMenuRepo) Create(ctx context.Context, mi *domain.MenuItem) error {
	var discounted decimal.NullDecimal
	if mi.DiscountedPrice != nil {
		discounted = decimal.NewNullDecimal(*mi.DiscountedPrice)
	}
	var addons any
	if len(mi.Addons) > 0 {
		addons = []byte(mi.Addons)
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO menu_items (id, restaurant_id, name, description, price, discounted_price,
                        is_veg, packaging_charges, cuisine, image_url, addons)
VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		mi.ID, mi.RestaurantID, mi.Name, mi.Description, mi.Price, discounted,
		mi.IsVeg, mi.PackagingCharges, mi.Cuisine, mi.ImageURL, addons)
	return err
}

func (r *MySQLMenuRepo) GetByID(ctx context.Context, id string) (*domain.MenuItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+menuItemColumns+` FROM menu_items WHERE id=?`, id)
	mi, err := scanMenuItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: "menu item", ID: id}
	}
	return mi, err
}

func (r *MySQLMenuRepo) ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE restaurant_id=? ORDER BY name`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MenuItem
	for rows.Next() {
		mi, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *mi)
	}
	return out, rows.Err()
}

func (r *MySQLMenuRepo) Update(ctx context.Context, mi *domain.MenuItem) error {
	var discounted decimal.NullDecimal
	if mi.DiscountedPrice != nil {
		discounted = decimal.NewNullDecimal(*mi.DiscountedPrice)
	}
	var addons any
	if len(mi.Addons) > 0 {
		addons = []byte(mi.Addons)
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE menu_items
SET name=?, description=?, price=?, discounted_price=?, is_veg=?, packaging_charges=?,
    cuisine=?, image_url=?, addons=?
WHERE id=?`,
		mi.Name, mi.Description, mi.Price, discounted, mi.IsVeg, mi.PackagingCharges,
		mi.Cuisine, mi.ImageURL, addons, mi.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "menu item", mi.ID)
}

func (r *MySQLMenuRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id=?`, id)
	if err != nil {
		return err
	}
	return requireRow(res, "menu item", id)
}

func scanMenuItem(row rowScanner) (*domain.MenuItem, error) {
	var (
		mi         domain.MenuItem
		discounted decimal.NullDecimal
		imageURL   sql.NullString
		addons     sql.NullString
	)
	err := row.Scan(&mi.ID, &mi.RestaurantID, &mi.Name, &mi.Description, &mi.Price,
		&discounted, &mi.IsVeg, &mi.PackagingCharges, &mi.Cuisine, &imageURL, &addons)
	if err != nil {
		return nil, err
	}
	if discounted.Valid {
		d := discounted.Decimal
		mi.DiscountedPrice = &d
	}
	mi.ImageURL = imageURL.String
	if addons.Valid {
		mi.Addons = []byte(addons.String)
	}
	return &mi, nil
}

func requireRow(res sql.Result, kind, id string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}
