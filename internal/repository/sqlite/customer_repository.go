package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"invoice-dashboard/internal/domain"
	"invoice-dashboard/internal/repository"
)

const createCustomersTable = `
CREATE TABLE IF NOT EXISTS customers (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	image_url TEXT NOT NULL DEFAULT ''
);
`

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) repository.CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCustomersTable); err != nil {
		return fmt.Errorf("create customers table: %w", err)
	}
	return nil
}

func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) (string, error) {
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO customers (id, name, email, image_url)
VALUES (?, ?, ?, ?)`,
		customer.ID,
		customer.Name,
		customer.Email,
		customer.ImageURL,
	)
	if err != nil {
		return "", fmt.Errorf("insert customer: %w", err)
	}
	return customer.ID, nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, email, image_url
FROM customers
ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return customers, nil
}
