package partner

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/partner"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedDay = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

type expenseFixture struct {
	expenses   *testutil.MockExpenseRepository
	partners   *testutil.MockPartnerRepository
	categories *testutil.MockCategoryRepository
	files      *testutil.MockFileRepository
	publisher  *testutil.RecordingPublisher
	clock      *clockwork.FakeClock
	service    *ExpenseService
}

func newExpenseFixture() *expenseFixture {
	f := &expenseFixture{
		expenses:   new(testutil.MockExpenseRepository),
		partners:   new(testutil.MockPartnerRepository),
		categories: new(testutil.MockCategoryRepository),
		files:      new(testutil.MockFileRepository),
		publisher:  testutil.NewRecordingPublisher(),
		clock:      clockwork.NewFakeClockAt(fixedDay.Add(14 * time.Hour)),
	}
	f.service = NewExpenseService(f.expenses, f.partners, f.categories, f.files, f.publisher, f.clock, nil)
	return f
}

func existingExpense(t *testing.T, amount int64) *partner.Expense {
	t.Helper()
	e, err := partner.NewExpense(uuid.New(), decimal.NewFromInt(amount), fixedDay, "Hotel")
	require.NoError(t, err)
	e.ClearDomainEvents()
	return e
}

func TestExpenseService_Create_Success(t *testing.T) {
	f := newExpenseFixture()
	ctx := context.Background()
	p := existingPartner(t, "Ann", 50)
	cat, err := ledger.NewCategory("travel", ledger.EntryTypeExpense)
	require.NoError(t, err)

	f.partners.On("FindByID", ctx, p.ID).Return(p, nil)
	f.categories.On("FindByID", ctx, cat.ID).Return(cat, nil)
	f.expenses.On("Save", ctx, mock.AnythingOfType("*partner.Expense")).Return(nil)

	resp, err := f.service.Create(ctx, CreateExpenseRequest{
		PartnerID:   p.ID,
		CategoryID:  &cat.ID,
		Amount:      decimal.RequireFromString("89.90"),
		Description: "Train tickets",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", resp.ExpenseDate.Format(common.DateLayout))
	assert.Equal(t, &cat.ID, resp.CategoryID)
	assert.False(t, resp.Reimbursed)
	assert.Equal(t, []string{partner.EventTypeExpenseRecorded}, f.publisher.EventTypes())
}

func TestExpenseService_Create_IncomeCategoryRejected(t *testing.T) {
	f := newExpenseFixture()
	ctx := context.Background()
	p := existingPartner(t, "Ann", 50)
	cat, err := ledger.NewCategory("consulting", ledger.EntryTypeIncome)
	require.NoError(t, err)

	f.partners.On("FindByID", ctx, p.ID).Return(p, nil)
	f.categories.On("FindByID", ctx, cat.ID).Return(cat, nil)

	_, err = f.service.Create(ctx, CreateExpenseRequest{
		PartnerID:  p.ID,
		CategoryID: &cat.ID,
		Amount:     decimal.NewFromInt(10),
	})
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "CATEGORY_TYPE_MISMATCH", derr.Code)
}

func TestExpenseService_Create_MissingReceipt(t *testing.T) {
	f := newExpenseFixture()
	ctx := context.Background()
	p := existingPartner(t, "Ann", 50)
	fileID := uuid.New()

	f.partners.On("FindByID", ctx, p.ID).Return(p, nil)
	f.files.On("FindByID", ctx, fileID).Return(nil, shared.ErrNotFound)

	_, err := f.service.Create(ctx, CreateExpenseRequest{PartnerID: p.ID, Amount: decimal.NewFromInt(10), FileID: &fileID})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestExpenseService_MarkReimbursed(t *testing.T) {
	f := newExpenseFixture()
	ctx := context.Background()
	e := existingExpense(t, 200)

	f.expenses.On("FindByID", ctx, e.ID).Return(e, nil)
	f.expenses.On("Save", ctx, e).Return(nil)

	resp, err := f.service.MarkReimbursed(ctx, e.ID, ReimburseExpenseRequest{})
	require.NoError(t, err)
	assert.True(t, resp.Reimbursed)
	require.NotNil(t, resp.ReimbursedAt)
	assert.Equal(t, f.clock.Now().UTC(), *resp.ReimbursedAt)

	_, err = f.service.MarkReimbursed(ctx, e.ID, ReimburseExpenseRequest{})
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "ALREADY_REIMBURSED", derr.Code)
	f.expenses.AssertNumberOfCalls(t, "Save", 1)
}

func TestExpenseService_Update_ReimbursedAmountFrozen(t *testing.T) {
	f := newExpenseFixture()
	ctx := context.Background()
	e := existingExpense(t, 200)
	require.NoError(t, e.MarkReimbursed(fixedDay))

	f.expenses.On("FindByID", ctx, e.ID).Return(e, nil)

	amount := decimal.NewFromInt(250)
	_, err := f.service.Update(ctx, e.ID, UpdateExpenseRequest{Amount: &amount})
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "ALREADY_REIMBURSED", derr.Code)
}

func TestExpenseService_Update_DescriptionOfReimbursed(t *testing.T) {
	f := newExpenseFixture()
	ctx := context.Background()
	e := existingExpense(t, 200)
	require.NoError(t, e.MarkReimbursed(fixedDay))
	e.ClearDomainEvents()

	f.expenses.On("FindByID", ctx, e.ID).Return(e, nil)
	f.expenses.On("Save", ctx, e).Return(nil)

	desc := "Hotel, two nights"
	resp, err := f.service.Update(ctx, e.ID, UpdateExpenseRequest{Description: &desc, ClearFile: true})
	require.NoError(t, err)
	assert.Equal(t, desc, resp.Description)
	assert.Equal(t, []string{partner.EventTypeExpenseUpdated}, f.publisher.EventTypes())
}

func TestExpenseService_List_ReimbursedFilter(t *testing.T) {
	f := newExpenseFixture()
	ctx := context.Background()
	no := false

	matches := mock.MatchedBy(func(filter shared.Filter) bool {
		v, ok := filter.Filters["reimbursed"].(bool)
		return ok && !v
	})
	f.expenses.On("FindAll", ctx, matches).Return([]partner.Expense{*existingExpense(t, 5)}, nil)
	f.expenses.On("Count", ctx, matches).Return(int64(1), nil)

	page, err := f.service.List(ctx, ExpenseListFilter{Reimbursed: &no})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestExpenseService_Delete(t *testing.T) {
	f := newExpenseFixture()
	ctx := context.Background()
	e := existingExpense(t, 5)

	f.expenses.On("FindByID", ctx, e.ID).Return(e, nil)
	f.expenses.On("Delete", ctx, e.ID).Return(nil)

	require.NoError(t, f.service.Delete(ctx, e.ID))
	assert.Equal(t, []string{partner.EventTypeExpenseDeleted}, f.publisher.EventTypes())
}
