package partner

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/partner"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type partnerFixture struct {
	partners  *testutil.MockPartnerRepository
	expenses  *testutil.MockExpenseRepository
	publisher *testutil.RecordingPublisher
	service   *PartnerService
}

func newPartnerFixture() *partnerFixture {
	f := &partnerFixture{
		partners:  new(testutil.MockPartnerRepository),
		expenses:  new(testutil.MockExpenseRepository),
		publisher: testutil.NewRecordingPublisher(),
	}
	f.service = NewPartnerService(f.partners, f.expenses, f.publisher, nil)
	return f
}

func existingPartner(t *testing.T, name string, share int64) *partner.Partner {
	t.Helper()
	p, err := partner.NewPartner(name, decimal.NewFromInt(share))
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func TestPartnerService_Create_Success(t *testing.T) {
	f := newPartnerFixture()
	ctx := context.Background()

	f.partners.On("FindActive", ctx).Return([]partner.Partner{*existingPartner(t, "Ann", 60)}, nil)
	f.partners.On("Save", ctx, mock.AnythingOfType("*partner.Partner")).Return(nil)

	resp, err := f.service.Create(ctx, CreatePartnerRequest{
		Name:            "Bob",
		Email:           "Bob@Example.com",
		SharePercentage: decimal.NewFromInt(40),
	})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", resp.Email)
	assert.True(t, resp.SharePercentage.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, []string{partner.EventTypePartnerCreated}, f.publisher.EventTypes())
	assert.Equal(t, 1, f.partners.ShareLockCalls)
}

func TestPartnerService_Create_ShareExceeded(t *testing.T) {
	f := newPartnerFixture()
	ctx := context.Background()

	f.partners.On("FindActive", ctx).Return([]partner.Partner{*existingPartner(t, "Ann", 70)}, nil)

	_, err := f.service.Create(ctx, CreatePartnerRequest{Name: "Bob", SharePercentage: decimal.NewFromInt(31)})
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "SHARE_EXCEEDED", derr.Code)
	f.partners.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPartnerService_Create_InactiveSkipsShareCheck(t *testing.T) {
	f := newPartnerFixture()
	ctx := context.Background()
	f.partners.On("Save", ctx, mock.Anything).Return(nil)

	resp, err := f.service.Create(ctx, CreatePartnerRequest{
		Name:            "Former",
		SharePercentage: decimal.NewFromInt(50),
		Status:          "inactive",
	})
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)
	f.partners.AssertNotCalled(t, "FindActive", mock.Anything)
}

func TestPartnerService_Update_ExcludesOwnShare(t *testing.T) {
	f := newPartnerFixture()
	ctx := context.Background()
	ann := existingPartner(t, "Ann", 60)
	bob := existingPartner(t, "Bob", 40)

	f.partners.On("FindByID", ctx, ann.ID).Return(ann, nil)
	f.partners.On("FindActive", ctx).Return([]partner.Partner{*ann, *bob}, nil)
	f.partners.On("SaveWithLock", ctx, ann).Return(nil)

	share := decimal.NewFromInt(55)
	resp, err := f.service.Update(ctx, ann.ID, UpdatePartnerRequest{SharePercentage: &share})
	require.NoError(t, err)
	assert.True(t, resp.SharePercentage.Equal(share))
	assert.Equal(t, 1, f.partners.ShareLockCalls)
	f.partners.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPartnerService_Update_ConcurrentEditConflicts(t *testing.T) {
	f := newPartnerFixture()
	ctx := context.Background()
	ann := existingPartner(t, "Ann", 20)
	conflict := shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")

	f.partners.On("FindByID", ctx, ann.ID).Return(ann, nil)
	f.partners.On("FindActive", ctx).Return([]partner.Partner{*ann}, nil)
	f.partners.On("SaveWithLock", ctx, ann).Return(conflict)

	share := decimal.NewFromInt(30)
	_, err := f.service.Update(ctx, ann.ID, UpdatePartnerRequest{SharePercentage: &share})
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "OPTIMISTIC_LOCK_ERROR", derr.Code)
	assert.Empty(t, f.publisher.Events())
}

func TestPartnerService_Update_ReactivationRespectsShares(t *testing.T) {
	f := newPartnerFixture()
	ctx := context.Background()
	former := existingPartner(t, "Former", 30)
	require.NoError(t, former.SetStatus(partner.StatusInactive))
	others := existingPartner(t, "Ann", 80)

	f.partners.On("FindByID", ctx, former.ID).Return(former, nil)
	f.partners.On("FindActive", ctx).Return([]partner.Partner{*others}, nil)

	status := "active"
	_, err := f.service.Update(ctx, former.ID, UpdatePartnerRequest{Status: &status})
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "SHARE_EXCEEDED", derr.Code)
}

func TestPartnerService_Delete_WithExpenses(t *testing.T) {
	f := newPartnerFixture()
	ctx := context.Background()
	p := existingPartner(t, "Ann", 10)

	f.partners.On("FindByID", ctx, p.ID).Return(p, nil)
	f.expenses.On("CountByPartner", ctx, p.ID).Return(int64(3), nil)

	err := f.service.Delete(ctx, p.ID)
	assert.ErrorIs(t, err, shared.ErrHasDependencies)
	f.partners.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestPartnerService_Delete_Success(t *testing.T) {
	f := newPartnerFixture()
	ctx := context.Background()
	p := existingPartner(t, "Ann", 10)

	f.partners.On("FindByID", ctx, p.ID).Return(p, nil)
	f.expenses.On("CountByPartner", ctx, p.ID).Return(int64(0), nil)
	f.partners.On("Delete", ctx, p.ID).Return(nil)

	require.NoError(t, f.service.Delete(ctx, p.ID))
	assert.Equal(t, []string{partner.EventTypePartnerDeleted}, f.publisher.EventTypes())
}

func TestPartnerService_Summary(t *testing.T) {
	f := newPartnerFixture()
	ctx := context.Background()
	p := existingPartner(t, "Ann", 10)

	paid, err := partner.NewExpense(p.ID, decimal.NewFromInt(120), fixedDay, "Laptop")
	require.NoError(t, err)
	require.NoError(t, paid.MarkReimbursed(fixedDay))
	open, err := partner.NewExpense(p.ID, decimal.RequireFromString("30.25"), fixedDay, "Train")
	require.NoError(t, err)

	f.partners.On("FindByID", ctx, p.ID).Return(p, nil)
	f.expenses.On("FindByPartner", ctx, p.ID).Return([]partner.Expense{*paid, *open}, nil)

	summary, err := f.service.Summary(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ExpenseCount)
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("150.25")))
	assert.True(t, summary.Outstanding.Equal(decimal.RequireFromString("30.25")))
}

func TestPartnerService_GetByID_NotFound(t *testing.T) {
	f := newPartnerFixture()
	id := uuid.New()
	f.partners.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := f.service.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
