package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"invoice-dashboard/internal/config"
	"invoice-dashboard/internal/domain"
	"invoice-dashboard/internal/repository/sqlite"
)

// Seeds demo customers, a demo user and a handful of invoices so the
// dashboard has something to show locally. Safe to rerun against an
// empty database only.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	customerRepo := sqlite.NewCustomerRepository(db)
	invoiceRepo := sqlite.NewInvoiceRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := customerRepo.Init(ctx); err != nil {
		logger.Fatalf("init customer repository: %v", err)
	}
	if err := invoiceRepo.Init(ctx); err != nil {
		logger.Fatalf("init invoice repository: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatalf("hash demo password: %v", err)
	}
	if _, err := userRepo.Create(ctx, &domain.User{
		Name:         "Demo User",
		Email:        "user@nextmail.com",
		PasswordHash: string(hash),
	}); err != nil {
		logger.Fatalf("seed user: %v", err)
	}

	customers := []domain.Customer{
		{Name: "Evil Rabbit", Email: "evil@rabbit.com", ImageURL: "/customers/evil-rabbit.png"},
		{Name: "Delba de Oliveira", Email: "delba@oliveira.com", ImageURL: "/customers/delba-de-oliveira.png"},
		{Name: "Lee Robinson", Email: "lee@robinson.com", ImageURL: "/customers/lee-robinson.png"},
		{Name: "Michael Novotny", Email: "michael@novotny.com", ImageURL: "/customers/michael-novotny.png"},
		{Name: "Amy Burns", Email: "amy@burns.com", ImageURL: "/customers/amy-burns.png"},
		{Name: "Balazs Orban", Email: "balazs@orban.com", ImageURL: "/customers/balazs-orban.png"},
	}
	for i := range customers {
		if _, err := customerRepo.Create(ctx, &customers[i]); err != nil {
			logger.Fatalf("seed customer %s: %v", customers[i].Name, err)
		}
	}

	today := time.Now().UTC()
	invoices := []domain.Invoice{
		{CustomerID: customers[0].ID, AmountCents: 15795, Status: domain.InvoiceStatusPending},
		{CustomerID: customers[1].ID, AmountCents: 20348, Status: domain.InvoiceStatusPending},
		{CustomerID: customers[2].ID, AmountCents: 3040, Status: domain.InvoiceStatusPaid},
		{CustomerID: customers[3].ID, AmountCents: 44800, Status: domain.InvoiceStatusPaid},
		{CustomerID: customers[4].ID, AmountCents: 34577, Status: domain.InvoiceStatusPending},
		{CustomerID: customers[5].ID, AmountCents: 54246, Status: domain.InvoiceStatusPending},
		{CustomerID: customers[0].ID, AmountCents: 66666, Status: domain.InvoiceStatusPending},
		{CustomerID: customers[2].ID, AmountCents: 32545, Status: domain.InvoiceStatusPaid},
	}
	for i := range invoices {
		invoices[i].Date = today.AddDate(0, 0, -i).Format("2006-01-02")
		if _, err := invoiceRepo.Create(ctx, &invoices[i]); err != nil {
			logger.Fatalf("seed invoice: %v", err)
		}
	}

	logger.Infof("seeded %d customers and %d invoices", len(customers), len(invoices))
}
