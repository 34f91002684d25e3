package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/document"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/partner"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ExpenseService records money partners spent on the business's behalf
type ExpenseService struct {
	expenseRepo    partner.ExpenseRepository
	partnerRepo    partner.PartnerRepository
	categoryRepo   ledger.CategoryRepository
	fileRepo       document.FileRepository
	eventPublisher shared.EventPublisher
	clock          clockwork.Clock
	logger         *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenseRepo partner.ExpenseRepository,
	partnerRepo partner.PartnerRepository,
	categoryRepo ledger.CategoryRepository,
	fileRepo document.FileRepository,
	eventPublisher shared.EventPublisher,
	clock clockwork.Clock,
	logger *zap.Logger,
) *ExpenseService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ExpenseService{
		expenseRepo:    expenseRepo,
		partnerRepo:    partnerRepo,
		categoryRepo:   categoryRepo,
		fileRepo:       fileRepo,
		eventPublisher: eventPublisher,
		clock:          clock,
		logger:         common.LoggerOrNop(logger),
	}
}

// Create records a partner expense
func (s *ExpenseService) Create(ctx context.Context, req CreateExpenseRequest) (*ExpenseResponse, error) {
	if _, err := s.partnerRepo.FindByID(ctx, req.PartnerID); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	if err := s.checkFile(ctx, req.FileID); err != nil {
		return nil, err
	}

	expenseDate := common.StartOfDay(s.clock.Now())
	if req.ExpenseDate != nil && !req.ExpenseDate.IsZero() {
		expenseDate = req.ExpenseDate.Time
	}

	e, err := partner.NewExpense(req.PartnerID, req.Amount, expenseDate, req.Description)
	if err != nil {
		return nil, err
	}
	e.SetCategory(req.CategoryID)
	e.AttachReceipt(req.FileID)
	if actorID := shared.ActorID(ctx); actorID != uuid.Nil {
		e.SetCreatedBy(actorID)
	}

	if err := s.expenseRepo.Save(ctx, e); err != nil {
		return nil, err
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, e)

	response := ToExpenseResponse(e)
	return &response, nil
}

// GetByID retrieves an expense by ID
func (s *ExpenseService) GetByID(ctx context.Context, id uuid.UUID) (*ExpenseResponse, error) {
	e, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToExpenseResponse(e)
	return &response, nil
}

// List retrieves a page of partner expenses
func (s *ExpenseService) List(ctx context.Context, filter ExpenseListFilter) (shared.Paginated[ExpenseResponse], error) {
	f := filter.Filter()
	if err := filter.Apply(&f); err != nil {
		return shared.Paginated[ExpenseResponse]{}, err
	}
	common.SetFilter(&f, "partner_id", filter.PartnerID)
	common.SetFilter(&f, "category_id", filter.CategoryID)
	if filter.Reimbursed != nil {
		f.Filters["reimbursed"] = *filter.Reimbursed
	}

	expenses, err := s.expenseRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[ExpenseResponse]{}, err
	}
	total, err := s.expenseRepo.Count(ctx, f)
	if err != nil {
		return shared.Paginated[ExpenseResponse]{}, err
	}
	return shared.NewPaginated(ToExpenseResponses(expenses), total, f.Page, f.PageSize), nil
}

// Update changes an expense. The amount of a reimbursed expense is frozen.
func (s *ExpenseService) Update(ctx context.Context, id uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	e, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case req.ClearCategory:
		e.SetCategory(nil)
	case req.CategoryID != nil:
		if err := s.checkCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		e.SetCategory(req.CategoryID)
	}
	switch {
	case req.ClearFile:
		e.AttachReceipt(nil)
	case req.FileID != nil:
		if err := s.checkFile(ctx, req.FileID); err != nil {
			return nil, err
		}
		e.AttachReceipt(req.FileID)
	}

	amount, date, description := e.Amount, e.ExpenseDate, e.Description
	if req.Amount != nil {
		amount = *req.Amount
	}
	if req.ExpenseDate != nil && !req.ExpenseDate.IsZero() {
		date = req.ExpenseDate.Time
	}
	if req.Description != nil {
		description = *req.Description
	}
	if err := e.Update(amount, date, description); err != nil {
		return nil, err
	}

	if err := s.expenseRepo.Save(ctx, e); err != nil {
		return nil, err
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, e)

	response := ToExpenseResponse(e)
	return &response, nil
}

// MarkReimbursed records that the business paid the partner back
func (s *ExpenseService) MarkReimbursed(ctx context.Context, id uuid.UUID, req ReimburseExpenseRequest) (*ExpenseResponse, error) {
	e, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	at := s.clock.Now()
	if req.ReimbursedAt != nil && !req.ReimbursedAt.IsZero() {
		at = req.ReimbursedAt.Time
	}
	if err := e.MarkReimbursed(at.UTC().Truncate(time.Second)); err != nil {
		return nil, err
	}

	if err := s.expenseRepo.Save(ctx, e); err != nil {
		return nil, err
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, e)

	response := ToExpenseResponse(e)
	return &response, nil
}

// Delete removes an expense
func (s *ExpenseService) Delete(ctx context.Context, id uuid.UUID) error {
	e, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.expenseRepo.Delete(ctx, id); err != nil {
		return err
	}

	e.ClearDomainEvents()
	e.AddDomainEvent(partner.NewExpenseDeletedEvent(e))
	common.PublishEvents(ctx, s.eventPublisher, s.logger, e)
	return nil
}

// checkCategory requires an existing expense category
func (s *ExpenseService) checkCategory(ctx context.Context, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	c, err := s.categoryRepo.FindByID(ctx, *categoryID)
	if err != nil {
		return err
	}
	if c.Type != ledger.EntryTypeExpense {
		return shared.NewDomainError("CATEGORY_TYPE_MISMATCH", "Partner expenses need an expense category")
	}
	return nil
}

func (s *ExpenseService) checkFile(ctx context.Context, fileID *uuid.UUID) error {
	if fileID == nil || s.fileRepo == nil {
		return nil
	}
	_, err := s.fileRepo.FindByID(ctx, *fileID)
	return err
}
