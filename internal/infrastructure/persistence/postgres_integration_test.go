//go:build integration

package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/customer"
	"github.com/ledgerbook/backend/internal/domain/finance"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/migration"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newPostgresDB starts a disposable postgres container with the embedded schema applied
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledgerbook_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	return db
}

func TestPostgres_ConcurrentPaymentsNeverOverpay(t *testing.T) {
	ctx := context.Background()
	db := newPostgresDB(t)

	customers := NewGormCustomerRepository(db)
	invoices := NewGormInvoiceRepository(db)
	payments := NewGormPaymentRepository(db)
	transactor := NewGormFinanceTransactor(db)

	c, err := customer.NewCustomer("Acme Ltd")
	require.NoError(t, err)
	require.NoError(t, customers.Save(ctx, c))

	issued := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	inv, err := finance.NewCustomerInvoice(c.ID, "INV-202401-0001", decimal.NewFromInt(100), issued)
	require.NoError(t, err)
	require.NoError(t, invoices.Save(ctx, inv))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := transactor.WithinTransaction(ctx, func(ctx context.Context, repos finance.TxRepositories) error {
				locked, err := repos.Invoices.FindByIDForUpdate(ctx, inv.ID)
				if err != nil {
					return err
				}
				p, err := finance.NewCustomerPayment(c.ID, decimal.NewFromInt(30), issued, finance.PaymentMethodCash)
				if err != nil {
					return err
				}
				if err := p.LinkInvoice(locked); err != nil {
					return err
				}
				if err := locked.ApplyPayment(p.Amount); err != nil {
					return err
				}
				if err := repos.Payments.Save(ctx, p); err != nil {
					return err
				}
				return repos.Invoices.SaveWithLock(ctx, locked)
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)

	stored, err := invoices.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(90).Equal(stored.PaidAmount))
	assert.Equal(t, finance.InvoiceStatusPartiallyPaid, stored.Status)

	sum, err := payments.SumByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(stored.PaidAmount))
}

func TestPostgres_ConstraintsMapToDomainErrors(t *testing.T) {
	ctx := context.Background()
	db := newPostgresDB(t)

	customers := NewGormCustomerRepository(db)
	invoices := NewGormInvoiceRepository(db)

	c, err := customer.NewCustomer("Globex")
	require.NoError(t, err)
	require.NoError(t, customers.Save(ctx, c))

	inv, err := finance.NewCustomerInvoice(c.ID, "INV-1", decimal.NewFromInt(10), time.Now())
	require.NoError(t, err)
	require.NoError(t, invoices.Save(ctx, inv))

	t.Run("duplicate invoice number", func(t *testing.T) {
		dup, err := finance.NewCustomerInvoice(c.ID, "INV-1", decimal.NewFromInt(10), time.Now())
		require.NoError(t, err)
		assert.ErrorIs(t, invoices.Save(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("customer with invoices cannot be deleted", func(t *testing.T) {
		assert.ErrorIs(t, customers.Delete(ctx, c.ID), shared.ErrHasDependencies)
	})

	t.Run("invoice for unknown customer", func(t *testing.T) {
		orphan, err := finance.NewCustomerInvoice(uuid.New(), "INV-2", decimal.NewFromInt(10), time.Now())
		require.NoError(t, err)
		assert.ErrorIs(t, invoices.Save(ctx, orphan), shared.ErrHasDependencies)
	})

	t.Run("search uses ILIKE", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "glob"
		found, err := customers.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})
}
