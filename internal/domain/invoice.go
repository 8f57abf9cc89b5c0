package domain

import "time"

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// ValidStatus reports whether s is one of the accepted invoice statuses.
func ValidStatus(s string) bool {
	switch InvoiceStatus(s) {
	case InvoiceStatusPending, InvoiceStatusPaid:
		return true
	}
	return false
}

// Invoice represents a customer invoice tracked by the system.
// AmountCents holds the amount in minor currency units.
type Invoice struct {
	ID          string
	CustomerID  string
	AmountCents int64
	Status      InvoiceStatus
	Date        string // YYYY-MM-DD, assigned at creation
	CreatedAt   time.Time
}

// InvoiceRow is an invoice joined with the customer it bills,
// as rendered by the list view.
type InvoiceRow struct {
	Invoice
	CustomerName  string
	CustomerEmail string
	CustomerImage string
}

// Customer is the party an invoice bills.
type Customer struct {
	ID       string
	Name     string
	Email    string
	ImageURL string
}
