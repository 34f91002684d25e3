package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/ledgerbook/backend/internal/domain/customer"
	"github.com/ledgerbook/backend/internal/domain/finance"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type summaryFixture struct {
	customers *testutil.MockCustomerRepository
	projects  *testutil.MockProjectRepository
	invoices  *testutil.MockInvoiceRepository
	payments  *testutil.MockPaymentRepository
	cache     *testutil.MockSummaryCache
	service   *AccountSummaryService
}

func newSummaryFixture(withCache bool) *summaryFixture {
	f := &summaryFixture{
		customers: new(testutil.MockCustomerRepository),
		projects:  new(testutil.MockProjectRepository),
		invoices:  new(testutil.MockInvoiceRepository),
		payments:  new(testutil.MockPaymentRepository),
		cache:     new(testutil.MockSummaryCache),
	}
	var cache finance.AccountSummaryCache
	if withCache {
		cache = f.cache
	}
	f.service = NewAccountSummaryService(f.customers, f.projects, f.invoices, f.payments,
		cache, clockwork.NewFakeClockAt(fixedNow), nil)
	return f
}

func (f *summaryFixture) expectRows(c *customer.Customer, invoices []finance.CustomerInvoice, payments []finance.CustomerPayment) {
	f.invoices.On("FindByCustomer", mock.Anything, c.ID).Return(invoices, nil)
	f.payments.On("FindByCustomer", mock.Anything, c.ID).Return(payments, nil)
	f.projects.On("FindByCustomer", mock.Anything, c.ID).Return([]customer.Project{}, nil)
}

func TestAccountSummaryService_Get_CacheHit(t *testing.T) {
	f := newSummaryFixture(true)
	ctx := context.Background()
	c := testCustomer(t)
	cached := &finance.AccountSummary{CustomerID: c.ID, TotalInvoiced: decimal.NewFromInt(5)}

	f.customers.On("FindByID", ctx, c.ID).Return(c, nil)
	f.cache.On("Get", ctx, c.ID).Return(cached, nil)

	summary, err := f.service.GetAccountSummary(ctx, c.ID)
	require.NoError(t, err)
	assert.Same(t, cached, summary)
	f.invoices.AssertNotCalled(t, "FindByCustomer", mock.Anything, mock.Anything)
}

func TestAccountSummaryService_Get_ComputesAndCaches(t *testing.T) {
	f := newSummaryFixture(true)
	ctx := context.Background()
	c := testCustomer(t)
	inv := testInvoice(t, c.ID, 1000)
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, inv.SetDueDate(&due))
	p := linkedPayment(t, inv, 300)

	f.customers.On("FindByID", ctx, c.ID).Return(c, nil)
	f.cache.On("Get", ctx, c.ID).Return(nil, nil)
	f.expectRows(c, []finance.CustomerInvoice{*inv}, []finance.CustomerPayment{*p})
	f.cache.On("Set", ctx, mock.AnythingOfType("*finance.AccountSummary")).Return(nil)

	summary, err := f.service.GetAccountSummary(ctx, c.ID)
	require.NoError(t, err)

	assert.True(t, summary.TotalInvoiced.Equal(decimal.NewFromInt(1000)))
	assert.True(t, summary.TotalPaid.Equal(decimal.NewFromInt(300)))
	assert.True(t, summary.TotalOutstanding.Equal(decimal.NewFromInt(700)))
	assert.Equal(t, 1, summary.OverdueCount)
	assert.Equal(t, fixedNow, summary.ComputedAt)
	f.cache.AssertExpectations(t)
}

func TestAccountSummaryService_Get_CacheErrorsAreNotFatal(t *testing.T) {
	f := newSummaryFixture(true)
	ctx := context.Background()
	c := testCustomer(t)

	f.customers.On("FindByID", ctx, c.ID).Return(c, nil)
	f.cache.On("Get", ctx, c.ID).Return(nil, errors.New("redis down"))
	f.expectRows(c, nil, nil)
	f.cache.On("Set", ctx, mock.Anything).Return(errors.New("redis down"))

	summary, err := f.service.GetAccountSummary(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, summary.TotalInvoiced.IsZero())
}

func TestAccountSummaryService_Get_RepositoryError(t *testing.T) {
	f := newSummaryFixture(false)
	ctx := context.Background()
	c := testCustomer(t)

	f.customers.On("FindByID", ctx, c.ID).Return(c, nil)
	f.invoices.On("FindByCustomer", mock.Anything, c.ID).Return(nil, errors.New("boom"))
	f.payments.On("FindByCustomer", mock.Anything, c.ID).Return(nil, nil).Maybe()
	f.projects.On("FindByCustomer", mock.Anything, c.ID).Return(nil, nil).Maybe()

	_, err := f.service.GetAccountSummary(ctx, c.ID)
	assert.EqualError(t, err, "boom")
}

func TestAccountSummaryService_List_SortedByOutstanding(t *testing.T) {
	f := newSummaryFixture(false)
	ctx := context.Background()

	small, big, settled := testCustomer(t), testCustomer(t), testCustomer(t)
	small.Name, big.Name, settled.Name = "Small", "Big", "Settled"

	f.customers.On("FindAll", ctx, mock.Anything).Return([]customer.Customer{*small, *big, *settled}, nil)
	f.expectRows(small, []finance.CustomerInvoice{*testInvoice(t, small.ID, 100)}, nil)
	f.expectRows(big, []finance.CustomerInvoice{*testInvoice(t, big.ID, 9000)}, nil)
	f.expectRows(settled, nil, nil)

	summaries, err := f.service.ListAccountSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "Big", summaries[0].CustomerName)
	assert.Equal(t, "Small", summaries[1].CustomerName)
	assert.Equal(t, "Settled", summaries[2].CustomerName)
}

func TestSummaryInvalidator(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()

	project, err := customer.NewProject(customerID, "Site", decimal.Zero)
	require.NoError(t, err)
	inv := testInvoice(t, customerID, 100)
	c := testCustomer(t)

	tests := []struct {
		name  string
		event shared.DomainEvent
		want  uuid.UUID
	}{
		{"invoice event", finance.NewInvoiceCreatedEvent(inv), customerID},
		{"project event", customer.NewProjectStatusChangedEvent(project, customer.ProjectStatusPlanned), customerID},
		{"customer event", customer.NewCustomerDeletedEvent(c), c.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := new(testutil.MockSummaryCache)
			cache.On("Invalidate", ctx, tt.want).Return(nil)

			h := NewSummaryInvalidator(cache, nil)
			require.NoError(t, h.Handle(ctx, tt.event))
			cache.AssertExpectations(t)
		})
	}
}

func TestSummaryInvalidator_IgnoresUnscopedEvents(t *testing.T) {
	cache := new(testutil.MockSummaryCache)
	h := NewSummaryInvalidator(cache, nil)

	require.NoError(t, h.Handle(context.Background(), testutil.NewTestEvent("Unrelated")))
	cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	assert.Contains(t, h.EventTypes(), finance.EventTypePaymentRecorded)
}
