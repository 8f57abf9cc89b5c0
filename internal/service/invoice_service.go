package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"invoice-dashboard/internal/domain"
	"invoice-dashboard/internal/repository"
)

// InvoicesPerPage is the fixed page size of the invoice list view.
const InvoicesPerPage = 6

// maxAmount bounds a single invoice so the rounded cents value stays
// comfortably inside int64.
const maxAmount = 1e15

// CreateInvoiceInput carries the raw string fields of an invoice form
// post. Absent fields arrive as empty strings and fail validation the
// same way explicitly empty ones do.
type CreateInvoiceInput struct {
	CustomerID string
	Amount     string
	Status     string
}

// InvoiceService coordinates invoice operations backed by repositories.
type InvoiceService interface {
	Create(ctx context.Context, in CreateInvoiceInput) (*domain.Invoice, error)
	// Delete is idempotent: removing a missing invoice succeeds. A
	// *StorageError is returned for callers that want strict handling;
	// the HTTP layer deliberately logs it and carries on.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, query string, page int) ([]domain.InvoiceRow, error)
	CountPages(ctx context.Context, query string) (int, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	ExportCSV(ctx context.Context, query string) ([]byte, error)
}

type invoiceService struct {
	invoices  repository.InvoiceRepository
	customers repository.CustomerRepository
	now       func() time.Time
}

func NewInvoiceService(invoices repository.InvoiceRepository, customers repository.CustomerRepository) InvoiceService {
	return &invoiceService{
		invoices:  invoices,
		customers: customers,
		now:       time.Now,
	}
}

func (s *invoiceService) Create(ctx context.Context, in CreateInvoiceInput) (*domain.Invoice, error) {
	fieldErrs := &FieldErrors{Message: "Missing Fields. Failed to Create Invoice."}

	customerID := strings.TrimSpace(in.CustomerID)
	if customerID == "" {
		fieldErrs.add("customerId", "Please select a customer.")
	}

	// ParseFloat accepts "NaN", "Inf" and huge exponents without error,
	// and NaN compares false against everything, so each case is ruled
	// out explicitly before the cents conversion.
	amount, err := strconv.ParseFloat(strings.TrimSpace(in.Amount), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 || amount > maxAmount {
		fieldErrs.add("amount", "Please enter an amount greater than $0.")
	}

	status := strings.TrimSpace(in.Status)
	if !domain.ValidStatus(status) {
		fieldErrs.add("status", "Please select an invoice status.")
	}

	if !fieldErrs.empty() {
		return nil, fieldErrs
	}

	invoice := &domain.Invoice{
		CustomerID:  customerID,
		AmountCents: int64(math.Round(amount * 100)),
		Status:      domain.InvoiceStatus(status),
		Date:        s.now().UTC().Format("2006-01-02"),
	}

	if _, err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, &StorageError{Op: "Create Invoice", Err: err}
	}
	return invoice, nil
}

func (s *invoiceService) Delete(ctx context.Context, id string) error {
	if err := s.invoices.Delete(ctx, id); err != nil {
		return &StorageError{Op: "Delete Invoice", Err: err}
	}
	return nil
}

func (s *invoiceService) List(ctx context.Context, query string, page int) ([]domain.InvoiceRow, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * InvoicesPerPage
	rows, err := s.invoices.ListFiltered(ctx, query, InvoicesPerPage, offset)
	if err != nil {
		return nil, &StorageError{Op: "Fetch Invoices", Err: err}
	}
	return rows, nil
}

func (s *invoiceService) CountPages(ctx context.Context, query string) (int, error) {
	count, err := s.invoices.CountFiltered(ctx, query)
	if err != nil {
		return 0, &StorageError{Op: "Fetch Total Number of Invoices", Err: err}
	}
	return int((count + InvoicesPerPage - 1) / InvoicesPerPage), nil
}

func (s *invoiceService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, &StorageError{Op: "Fetch Customers", Err: err}
	}
	return customers, nil
}

func (s *invoiceService) ExportCSV(ctx context.Context, query string) ([]byte, error) {
	// sqlite treats LIMIT -1 as unbounded
	rows, err := s.invoices.ListFiltered(ctx, query, -1, 0)
	if err != nil {
		return nil, &StorageError{Op: "Fetch Invoices", Err: err}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "customer", "email", "amount", "status", "date"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.ID,
			row.CustomerName,
			row.CustomerEmail,
			FormatAmount(row.AmountCents),
			string(row.Status),
			row.Date,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatAmount renders cents as a dollar amount, e.g. 4550 -> "$45.50".
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
