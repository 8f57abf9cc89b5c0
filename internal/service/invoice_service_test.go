package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-dashboard/internal/domain"
	"invoice-dashboard/internal/repository"
)

type fakeInvoiceRepo struct {
	created   []*domain.Invoice
	deleted   []string
	rows      []domain.InvoiceRow
	count     int64
	createErr error
	deleteErr error
	listErr   error

	lastLimit  int
	lastOffset int
}

func (f *fakeInvoiceRepo) Init(context.Context) error { return nil }

func (f *fakeInvoiceRepo) Create(_ context.Context, invoice *domain.Invoice) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	invoice.ID = "inv-1"
	f.created = append(f.created, invoice)
	return invoice.ID, nil
}

func (f *fakeInvoiceRepo) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeInvoiceRepo) Get(context.Context, string) (*domain.Invoice, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeInvoiceRepo) ListFiltered(_ context.Context, _ string, limit, offset int) ([]domain.InvoiceRow, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.lastLimit = limit
	f.lastOffset = offset
	return f.rows, nil
}

func (f *fakeInvoiceRepo) CountFiltered(context.Context, string) (int64, error) {
	if f.listErr != nil {
		return 0, f.listErr
	}
	return f.count, nil
}

type fakeCustomerRepo struct {
	customers []domain.Customer
	listErr   error
}

func (f *fakeCustomerRepo) Init(context.Context) error { return nil }

func (f *fakeCustomerRepo) Create(_ context.Context, c *domain.Customer) (string, error) {
	c.ID = "cust-1"
	f.customers = append(f.customers, *c)
	return c.ID, nil
}

func (f *fakeCustomerRepo) List(context.Context) ([]domain.Customer, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.customers, nil
}

func newTestInvoiceService(invoices *fakeInvoiceRepo, customers *fakeCustomerRepo) *invoiceService {
	svc := NewInvoiceService(invoices, customers).(*invoiceService)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 28, 15, 4, 5, 0, time.UTC)
	}
	return svc
}

func TestCreateInvoice_ConvertsAmountToCents(t *testing.T) {
	repo := &fakeInvoiceRepo{}
	svc := newTestInvoiceService(repo, &fakeCustomerRepo{})

	invoice, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerID: "c1",
		Amount:     "45.50",
		Status:     "pending",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(4550), invoice.AmountCents)
	assert.Equal(t, domain.InvoiceStatusPending, invoice.Status)
	assert.Equal(t, "2026-08-28", invoice.Date)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "c1", repo.created[0].CustomerID)
}

func TestCreateInvoice_RejectsBadAmounts(t *testing.T) {
	for _, amount := range []string{
		"0", "-3", "abc", "", "0.00",
		// ParseFloat accepts these without error; the guard must not
		"NaN", "nan", "Inf", "+Inf", "-Inf", "1e300", "9e18",
	} {
		repo := &fakeInvoiceRepo{}
		svc := newTestInvoiceService(repo, &fakeCustomerRepo{})

		_, err := svc.Create(context.Background(), CreateInvoiceInput{
			CustomerID: "c1",
			Amount:     amount,
			Status:     "paid",
		})

		var fieldErrs *FieldErrors
		require.ErrorAs(t, err, &fieldErrs, "amount %q", amount)
		assert.Contains(t, fieldErrs.Fields, "amount")
		assert.Empty(t, repo.created, "amount %q must not be stored", amount)
	}
}

func TestCreateInvoice_RejectsUnknownStatus(t *testing.T) {
	repo := &fakeInvoiceRepo{}
	svc := newTestInvoiceService(repo, &fakeCustomerRepo{})

	_, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerID: "c1",
		Amount:     "12",
		Status:     "overdue",
	})

	var fieldErrs *FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs.Fields, "status")
	assert.Empty(t, repo.created)
}

func TestCreateInvoice_CollectsAllFieldErrors(t *testing.T) {
	repo := &fakeInvoiceRepo{}
	svc := newTestInvoiceService(repo, &fakeCustomerRepo{})

	_, err := svc.Create(context.Background(), CreateInvoiceInput{})

	var fieldErrs *FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "Missing Fields. Failed to Create Invoice.", fieldErrs.Message)
	assert.Contains(t, fieldErrs.Fields, "customerId")
	assert.Contains(t, fieldErrs.Fields, "amount")
	assert.Contains(t, fieldErrs.Fields, "status")
	assert.Empty(t, repo.created)
}

func TestCreateInvoice_WrapsStorageFailure(t *testing.T) {
	repo := &fakeInvoiceRepo{createErr: errors.New("FOREIGN KEY constraint failed")}
	svc := newTestInvoiceService(repo, &fakeCustomerRepo{})

	_, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerID: "nope",
		Amount:     "10",
		Status:     "paid",
	})

	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	// the user-facing message never carries driver text
	assert.Equal(t, "Database Error: Failed to Create Invoice.", storageErr.Error())
	assert.ErrorContains(t, storageErr.Unwrap(), "FOREIGN KEY")
}

func TestDeleteInvoice(t *testing.T) {
	repo := &fakeInvoiceRepo{}
	svc := newTestInvoiceService(repo, &fakeCustomerRepo{})

	require.NoError(t, svc.Delete(context.Background(), "inv-9"))
	assert.Equal(t, []string{"inv-9"}, repo.deleted)

	repo.deleteErr = errors.New("db locked")
	var storageErr *StorageError
	require.ErrorAs(t, svc.Delete(context.Background(), "inv-9"), &storageErr)
	assert.Equal(t, "Database Error: Failed to Delete Invoice.", storageErr.Error())
}

func TestListInvoices_Paging(t *testing.T) {
	repo := &fakeInvoiceRepo{}
	svc := newTestInvoiceService(repo, &fakeCustomerRepo{})

	_, err := svc.List(context.Background(), "acme", 3)
	require.NoError(t, err)
	assert.Equal(t, InvoicesPerPage, repo.lastLimit)
	assert.Equal(t, 2*InvoicesPerPage, repo.lastOffset)

	// page < 1 falls back to the first page
	_, err = svc.List(context.Background(), "acme", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, repo.lastOffset)
}

func TestCountPages(t *testing.T) {
	repo := &fakeInvoiceRepo{count: 13}
	svc := newTestInvoiceService(repo, &fakeCustomerRepo{})

	pages, err := svc.CountPages(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 3, pages)

	repo.count = 0
	pages, err = svc.CountPages(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, pages)
}

func TestExportCSV(t *testing.T) {
	repo := &fakeInvoiceRepo{rows: []domain.InvoiceRow{
		{
			Invoice: domain.Invoice{
				ID:          "inv-1",
				AmountCents: 4550,
				Status:      domain.InvoiceStatusPending,
				Date:        "2026-08-28",
			},
			CustomerName:  "Evil Rabbit",
			CustomerEmail: "evil@rabbit.com",
		},
	}}
	svc := newTestInvoiceService(repo, &fakeCustomerRepo{})

	data, err := svc.ExportCSV(context.Background(), "")
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "id,customer,email,amount,status,date")
	assert.Contains(t, out, "inv-1,Evil Rabbit,evil@rabbit.com,$45.50,pending,2026-08-28")
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$45.50", FormatAmount(4550))
	assert.Equal(t, "$0.05", FormatAmount(5))
	assert.Equal(t, "-$1.00", FormatAmount(-100))
}
