package repo

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/feastly/delivery-api/internal/entity"
	"github.com/feastly/delivery-api/internal/usecase"
)

type MySQLCustomerRepo struct{ db *sql.DB }

func NewMySQLCustomerRepo(db *sql.DB) *MySQLCustomerRepo { return &MySQLCustomerRepo{db: db} }

var _ usecase.CustomerRepo = (*MySQLCustomerRepo)(nil)

func (r *MySQLCustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO customers (id, email, name, phone, address, password_hash)
VALUES (?,?,?,?,?,?)`,
		c.ID, c.Email, c.Name, c.Phone, c.Address, c.PasswordHash)
	return err
}

func (r *MySQLCustomerRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, email, name, phone, address, password_hash FROM customers WHERE id=?`, id)
	return scanCustomer(row, id)
}

// GetByEmail returns (nil, nil) when no customer has the email, so
// callers can distinguish "available" from a lookup failure.
func (r *MySQLCustomerRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, email, name, phone, address, password_hash FROM customers WHERE email=?`, email)
	c, err := scanCustomer(row, email)
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return nil, nil
	}
	return c, err
}

func (r *MySQLCustomerRepo) Update(ctx context.Context, c *domain.Customer) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE customers SET name=?, phone=?, address=? WHERE id=?`,
		c.Name, c.Phone, c.Address, c.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "customer", c.ID)
}

func scanCustomer(row rowScanner, ref string) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Email, &c.Name, &c.Phone, &c.Address, &c.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: "customer", ID: ref}
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// MySQLDeliveryPartnerRepo is read-only: partner records are managed by
// the dispatch service, we only resolve references for projections.
type MySQLDeliveryPartnerRepo struct{ db *sql.DB }

func NewMySQLDeliveryPartnerRepo(db *sql.DB) *MySQLDeliveryPartnerRepo {
	return &MySQLDeliveryPartnerRepo{db: db}
}

var _ usecase.DeliveryPartnerRepo = (*MySQLDeliveryPartnerRepo)(nil)

func (r *MySQLDeliveryPartnerRepo) GetByID(ctx context.Context, id string) (*domain.DeliveryPartner, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, mobile FROM delivery_partners WHERE id=?`, id)
	var dp domain.DeliveryPartner
	err := row.Scan(&dp.ID, &dp.Name, &dp.Mobile)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: "delivery partner", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &dp, nil
}
