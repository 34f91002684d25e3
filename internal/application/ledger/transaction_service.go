package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/customer"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TransactionService manages company income and expense entries
type TransactionService struct {
	transactionRepo ledger.TransactionRepository
	categoryRepo    ledger.CategoryRepository
	customerRepo    customer.CustomerRepository
	projectRepo     customer.ProjectRepository
	eventPublisher  shared.EventPublisher
	clock           clockwork.Clock
	logger          *zap.Logger
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	transactionRepo ledger.TransactionRepository,
	categoryRepo ledger.CategoryRepository,
	customerRepo customer.CustomerRepository,
	projectRepo customer.ProjectRepository,
	eventPublisher shared.EventPublisher,
	clock clockwork.Clock,
	logger *zap.Logger,
) *TransactionService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TransactionService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		customerRepo:    customerRepo,
		projectRepo:     projectRepo,
		eventPublisher:  eventPublisher,
		clock:           clock,
		logger:          common.LoggerOrNop(logger),
	}
}

// Create records an income or expense entry
func (s *TransactionService) Create(ctx context.Context, req CreateTransactionRequest) (*TransactionResponse, error) {
	date := common.StartOfDay(s.clock.Now())
	if req.TransactionDate != nil && !req.TransactionDate.IsZero() {
		date = req.TransactionDate.Time
	}

	t, err := ledger.NewTransaction(ledger.EntryType(req.Type), req.Amount, date, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.assignCategory(ctx, t, req.CategoryID); err != nil {
		return nil, err
	}
	customerID, err := s.resolveCustomer(ctx, req.CustomerID, req.ProjectID)
	if err != nil {
		return nil, err
	}
	t.LinkCustomer(customerID, req.ProjectID)
	t.SetPayment(req.PaymentMethod, req.Reference)
	if actorID := shared.ActorID(ctx); actorID != uuid.Nil {
		t.SetCreatedBy(actorID)
	}

	if err := s.transactionRepo.Save(ctx, t); err != nil {
		return nil, err
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, t)

	response := ToTransactionResponse(t)
	return &response, nil
}

// GetByID retrieves a transaction by ID
func (s *TransactionService) GetByID(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	t, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToTransactionResponse(t)
	return &response, nil
}

// List retrieves a page of transactions. Search matches the description.
func (s *TransactionService) List(ctx context.Context, filter TransactionListFilter) (shared.Paginated[TransactionResponse], error) {
	f := filter.Filter()
	if err := filter.Apply(&f); err != nil {
		return shared.Paginated[TransactionResponse]{}, err
	}
	if filter.OrderBy == "" {
		f.OrderBy = "transaction_date"
	}
	common.SetFilter(&f, "type", filter.Type)
	common.SetFilter(&f, "category_id", filter.CategoryID)
	common.SetFilter(&f, "customer_id", filter.CustomerID)
	common.SetFilter(&f, "project_id", filter.ProjectID)

	txs, err := s.transactionRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[TransactionResponse]{}, err
	}
	total, err := s.transactionRepo.Count(ctx, f)
	if err != nil {
		return shared.Paginated[TransactionResponse]{}, err
	}
	return shared.NewPaginated(ToTransactionResponses(txs), total, f.Page, f.PageSize), nil
}

// Update changes a transaction. Switching the type drops a category of the
// old type unless a matching one is supplied.
func (s *TransactionService) Update(ctx context.Context, id uuid.UUID, req UpdateTransactionRequest) (*TransactionResponse, error) {
	t, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	entryType, amount, date, description := t.Type, t.Amount, t.TransactionDate, t.Description
	if req.Type != nil {
		entryType = ledger.EntryType(*req.Type)
	}
	if req.Amount != nil {
		amount = *req.Amount
	}
	if req.TransactionDate != nil && !req.TransactionDate.IsZero() {
		date = req.TransactionDate.Time
	}
	if req.Description != nil {
		description = *req.Description
	}
	if err := t.Update(entryType, amount, date, description); err != nil {
		return nil, err
	}

	switch {
	case req.ClearCategory:
		t.CategoryID = nil
	case req.CategoryID != nil:
		if err := s.assignCategory(ctx, t, req.CategoryID); err != nil {
			return nil, err
		}
	}

	switch {
	case req.ClearCustomer:
		t.LinkCustomer(nil, nil)
	case req.CustomerID != nil || req.ProjectID != nil:
		resolved, err := s.resolveCustomer(ctx, req.CustomerID, req.ProjectID)
		if err != nil {
			return nil, err
		}
		t.LinkCustomer(resolved, req.ProjectID)
	}

	if req.PaymentMethod != nil || req.Reference != nil {
		method, reference := t.PaymentMethod, t.Reference
		if req.PaymentMethod != nil {
			method = *req.PaymentMethod
		}
		if req.Reference != nil {
			reference = *req.Reference
		}
		t.SetPayment(method, reference)
	}

	if err := s.transactionRepo.Save(ctx, t); err != nil {
		return nil, err
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, t)

	response := ToTransactionResponse(t)
	return &response, nil
}

// Delete removes a transaction
func (s *TransactionService) Delete(ctx context.Context, id uuid.UUID) error {
	t, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.transactionRepo.Delete(ctx, id); err != nil {
		return err
	}
	t.ClearDomainEvents()
	t.AddDomainEvent(ledger.NewTransactionEvent(ledger.EventTypeTransactionDeleted, t))
	common.PublishEvents(ctx, s.eventPublisher, s.logger, t)
	return nil
}

func (s *TransactionService) assignCategory(ctx context.Context, t *ledger.Transaction, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	c, err := s.categoryRepo.FindByID(ctx, *categoryID)
	if err != nil {
		return err
	}
	return t.AssignCategory(c)
}

// resolveCustomer checks the customer and project references. A project
// alone implies its customer; both together must agree.
func (s *TransactionService) resolveCustomer(ctx context.Context, customerID, projectID *uuid.UUID) (*uuid.UUID, error) {
	if projectID != nil {
		p, err := s.projectRepo.FindByID(ctx, *projectID)
		if err != nil {
			return nil, err
		}
		if customerID == nil {
			owner := p.CustomerID
			return &owner, nil
		}
		if p.CustomerID != *customerID {
			return nil, shared.NewDomainError("PROJECT_CUSTOMER_MISMATCH", "Project belongs to a different customer")
		}
	}
	if customerID != nil {
		if _, err := s.customerRepo.FindByID(ctx, *customerID); err != nil {
			return nil, err
		}
	}
	return customerID, nil
}
