package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/partner"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CategoryService manages income and expense categories
type CategoryService struct {
	categoryRepo    ledger.CategoryRepository
	transactionRepo ledger.TransactionRepository
	expenseRepo     partner.ExpenseRepository
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo ledger.CategoryRepository,
	transactionRepo ledger.TransactionRepository,
	expenseRepo partner.ExpenseRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *CategoryService {
	return &CategoryService{
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
		expenseRepo:     expenseRepo,
		eventPublisher:  eventPublisher,
		logger:          common.LoggerOrNop(logger),
	}
}

// Create adds a category. Names are unique per type, ignoring case.
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	c, err := ledger.NewCategory(req.Name, ledger.EntryType(req.Type))
	if err != nil {
		return nil, err
	}
	if err := s.checkUniqueName(ctx, c.Name, c.Type, uuid.Nil); err != nil {
		return nil, err
	}
	if err := c.SetColor(req.Color); err != nil {
		return nil, err
	}
	c.Description = req.Description

	if err := s.categoryRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, c)

	response := ToCategoryResponse(c)
	return &response, nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	c, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCategoryResponse(c)
	return &response, nil
}

// List retrieves a page of categories
func (s *CategoryService) List(ctx context.Context, filter CategoryListFilter) (shared.Paginated[CategoryResponse], error) {
	f := filter.Filter()
	if filter.OrderBy == "" {
		f.OrderBy = "name"
		f.OrderDir = "asc"
	}
	common.SetFilter(&f, "type", filter.Type)

	categories, err := s.categoryRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[CategoryResponse]{}, err
	}
	total, err := s.categoryRepo.Count(ctx, f)
	if err != nil {
		return shared.Paginated[CategoryResponse]{}, err
	}
	return shared.NewPaginated(ToCategoryResponses(categories), total, f.Page, f.PageSize), nil
}

// Update changes a category's name, color or description
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	c, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, color, description := c.Name, c.Color, c.Description
	if req.Name != nil {
		name = *req.Name
	}
	if req.Color != nil {
		color = *req.Color
	}
	if req.Description != nil {
		description = *req.Description
	}
	if err := c.Update(name, color, description); err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := s.checkUniqueName(ctx, c.Name, c.Type, c.ID); err != nil {
			return nil, err
		}
	}

	if err := s.categoryRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, c)

	response := ToCategoryResponse(c)
	return &response, nil
}

// Delete removes a category no transaction or partner expense refers to
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	txCount, err := s.transactionRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	var expenseCount int64
	if s.expenseRepo != nil {
		if expenseCount, err = s.expenseRepo.CountByCategory(ctx, id); err != nil {
			return err
		}
	}
	if txCount+expenseCount > 0 {
		return shared.NewDomainError("HAS_DEPENDENCIES",
			fmt.Sprintf("Category %s is used by %d transaction(s) and %d partner expense(s)", c.Name, txCount, expenseCount))
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}
	c.ClearDomainEvents()
	c.AddDomainEvent(ledger.NewCategoryEvent(ledger.EventTypeCategoryDeleted, c))
	common.PublishEvents(ctx, s.eventPublisher, s.logger, c)
	return nil
}

func (s *CategoryService) checkUniqueName(ctx context.Context, name string, entryType ledger.EntryType, excludeID uuid.UUID) error {
	exists, err := s.categoryRepo.ExistsByName(ctx, name, entryType, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS",
			fmt.Sprintf("An %s category named %s already exists", entryType, name))
	}
	return nil
}
