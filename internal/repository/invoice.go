package repository

import (
	"context"

	"invoice-dashboard/internal/domain"
)

// InvoiceRepository exposes persistence operations for Invoice records.
type InvoiceRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, invoice *domain.Invoice) (string, error)
	// Delete removes the invoice with the given id. Deleting a missing
	// id is not an error.
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Invoice, error)
	// ListFiltered returns invoices joined with their customer, newest
	// first, matching query against customer name, email, amount,
	// status or date. An empty query matches everything.
	ListFiltered(ctx context.Context, query string, limit, offset int) ([]domain.InvoiceRow, error)
	CountFiltered(ctx context.Context, query string) (int64, error)
}

// CustomerRepository manages the customers invoices reference.
type CustomerRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, customer *domain.Customer) (string, error)
	List(ctx context.Context) ([]domain.Customer, error)
}
