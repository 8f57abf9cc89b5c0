package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-dashboard/internal/domain"
	"invoice-dashboard/internal/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func initRepos(t *testing.T, db *sql.DB) (repository.InvoiceRepository, repository.CustomerRepository) {
	t.Helper()
	ctx := context.Background()

	customers := NewCustomerRepository(db)
	require.NoError(t, customers.Init(ctx))
	invoices := NewInvoiceRepository(db)
	require.NoError(t, invoices.Init(ctx))
	return invoices, customers
}

func seedCustomer(t *testing.T, repo repository.CustomerRepository, name, email string) string {
	t.Helper()
	id, err := repo.Create(context.Background(), &domain.Customer{Name: name, Email: email})
	require.NoError(t, err)
	return id
}

func TestInvoiceRepository_CreateAndGet(t *testing.T) {
	db := openTestDB(t)
	invoices, customers := initRepos(t, db)
	ctx := context.Background()

	custID := seedCustomer(t, customers, "Evil Rabbit", "evil@rabbit.com")

	inv := &domain.Invoice{
		CustomerID:  custID,
		AmountCents: 4550,
		Status:      domain.InvoiceStatusPending,
		Date:        "2026-08-28",
	}
	id, err := invoices.Create(ctx, inv)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := invoices.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(4550), got.AmountCents)
	assert.Equal(t, domain.InvoiceStatusPending, got.Status)
	assert.Equal(t, "2026-08-28", got.Date)
	assert.Equal(t, custID, got.CustomerID)
}

func TestInvoiceRepository_CreateEnforcesCustomerFK(t *testing.T) {
	db := openTestDB(t)
	invoices, _ := initRepos(t, db)

	_, err := invoices.Create(context.Background(), &domain.Invoice{
		CustomerID:  "no-such-customer",
		AmountCents: 100,
		Status:      domain.InvoiceStatusPaid,
		Date:        "2026-08-28",
	})
	require.Error(t, err)
}

func TestInvoiceRepository_DeleteIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	invoices, customers := initRepos(t, db)
	ctx := context.Background()

	custID := seedCustomer(t, customers, "Amy Burns", "amy@burns.com")
	id, err := invoices.Create(ctx, &domain.Invoice{
		CustomerID:  custID,
		AmountCents: 100,
		Status:      domain.InvoiceStatusPaid,
		Date:        "2026-08-28",
	})
	require.NoError(t, err)

	require.NoError(t, invoices.Delete(ctx, id))
	_, err = invoices.Get(ctx, id)
	require.ErrorIs(t, err, repository.ErrNotFound)

	// deleting again still succeeds
	require.NoError(t, invoices.Delete(ctx, id))
	// and so does deleting an id that never existed
	require.NoError(t, invoices.Delete(ctx, "ghost"))
}

func TestInvoiceRepository_ListFiltered(t *testing.T) {
	db := openTestDB(t)
	invoices, customers := initRepos(t, db)
	ctx := context.Background()

	rabbit := seedCustomer(t, customers, "Evil Rabbit", "evil@rabbit.com")
	amy := seedCustomer(t, customers, "Amy Burns", "amy@burns.com")

	seed := []domain.Invoice{
		{CustomerID: rabbit, AmountCents: 4550, Status: domain.InvoiceStatusPending, Date: "2026-08-26"},
		{CustomerID: rabbit, AmountCents: 20000, Status: domain.InvoiceStatusPaid, Date: "2026-08-28"},
		{CustomerID: amy, AmountCents: 3040, Status: domain.InvoiceStatusPending, Date: "2026-08-27"},
	}
	for i := range seed {
		_, err := invoices.Create(ctx, &seed[i])
		require.NoError(t, err)
	}

	// empty query matches everything, newest date first
	rows, err := invoices.ListFiltered(ctx, "", 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2026-08-28", rows[0].Date)
	assert.Equal(t, "Evil Rabbit", rows[0].CustomerName)

	// match by customer name, case-insensitive
	rows, err = invoices.ListFiltered(ctx, "amy", 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "amy@burns.com", rows[0].CustomerEmail)

	// match by status
	rows, err = invoices.ListFiltered(ctx, "paid", 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.InvoiceStatusPaid, rows[0].Status)

	// match by amount text
	rows, err = invoices.ListFiltered(ctx, "3040", 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(3040), rows[0].AmountCents)

	// limit/offset page through results
	rows, err = invoices.ListFiltered(ctx, "", 2, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2026-08-26", rows[0].Date)
}

func TestInvoiceRepository_CountFiltered(t *testing.T) {
	db := openTestDB(t)
	invoices, customers := initRepos(t, db)
	ctx := context.Background()

	rabbit := seedCustomer(t, customers, "Evil Rabbit", "evil@rabbit.com")
	for i := 0; i < 3; i++ {
		_, err := invoices.Create(ctx, &domain.Invoice{
			CustomerID:  rabbit,
			AmountCents: int64(100 * (i + 1)),
			Status:      domain.InvoiceStatusPending,
			Date:        "2026-08-28",
		})
		require.NoError(t, err)
	}

	count, err := invoices.CountFiltered(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = invoices.CountFiltered(ctx, "rabbit")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = invoices.CountFiltered(ctx, "nomatch")
	require.NoError(t, err)
	assert.Zero(t, count)
}
