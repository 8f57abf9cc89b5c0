package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"invoice-dashboard/internal/domain"
	"invoice-dashboard/internal/repository"
)

const createInvoicesTable = `
CREATE TABLE IF NOT EXISTS invoices (
	id TEXT PRIMARY KEY,
	customer_id TEXT NOT NULL REFERENCES customers(id),
	amount INTEGER NOT NULL,
	status TEXT NOT NULL,
	date TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

type InvoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) repository.InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createInvoicesTable); err != nil {
		return fmt.Errorf("create invoices table: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) (string, error) {
	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}
	invoice.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO invoices (id, customer_id, amount, status, date, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.CustomerID,
		invoice.AmountCents,
		string(invoice.Status),
		invoice.Date,
		invoice.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert invoice: %w", err)
	}
	return invoice.ID, nil
}

func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	// zero rows affected is fine: deleting a missing invoice succeeds
	if _, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, customer_id, amount, status, date, created_at
FROM invoices
WHERE id = ?`,
		id,
	)
	var inv domain.Invoice
	if err := row.Scan(
		&inv.ID,
		&inv.CustomerID,
		&inv.AmountCents,
		&inv.Status,
		&inv.Date,
		&inv.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan invoice: %w", err)
	}
	return &inv, nil
}

const filteredInvoicesWhere = `
FROM invoices
JOIN customers ON invoices.customer_id = customers.id
WHERE customers.name LIKE ?
	OR customers.email LIKE ?
	OR CAST(invoices.amount AS TEXT) LIKE ?
	OR invoices.status LIKE ?
	OR invoices.date LIKE ?
`

func (r *InvoiceRepository) ListFiltered(ctx context.Context, query string, limit, offset int) ([]domain.InvoiceRow, error) {
	pattern := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx, `
SELECT invoices.id, invoices.customer_id, invoices.amount, invoices.status,
	invoices.date, invoices.created_at,
	customers.name, customers.email, customers.image_url
`+filteredInvoicesWhere+`
ORDER BY invoices.date DESC, invoices.created_at DESC
LIMIT ? OFFSET ?`,
		pattern, pattern, pattern, pattern, pattern, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var result []domain.InvoiceRow
	for rows.Next() {
		var row domain.InvoiceRow
		if err := rows.Scan(
			&row.ID,
			&row.CustomerID,
			&row.AmountCents,
			&row.Status,
			&row.Date,
			&row.CreatedAt,
			&row.CustomerName,
			&row.CustomerEmail,
			&row.CustomerImage,
		); err != nil {
			return nil, fmt.Errorf("scan invoice row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}
	return result, nil
}

func (r *InvoiceRepository) CountFiltered(ctx context.Context, query string) (int64, error) {
	pattern := "%" + query + "%"
	row := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) `+filteredInvoicesWhere,
		pattern, pattern, pattern, pattern, pattern,
	)
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return count, nil
}
