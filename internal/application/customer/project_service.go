package customer

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/customer"
	"github.com/ledgerbook/backend/internal/domain/finance"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProjectService handles project operations
type ProjectService struct {
	projectRepo    customer.ProjectRepository
	customerRepo   customer.CustomerRepository
	invoiceRepo    finance.InvoiceRepository
	paymentRepo    finance.PaymentRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo customer.ProjectRepository,
	customerRepo customer.CustomerRepository,
	invoiceRepo finance.InvoiceRepository,
	paymentRepo finance.PaymentRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo:    projectRepo,
		customerRepo:   customerRepo,
		invoiceRepo:    invoiceRepo,
		paymentRepo:    paymentRepo,
		eventPublisher: eventPublisher,
		logger:         common.LoggerOrNop(logger),
	}
}

// Create creates a project for an existing customer
func (s *ProjectService) Create(ctx context.Context, req CreateProjectRequest) (*ProjectResponse, error) {
	if _, err := s.customerRepo.FindByID(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	p, err := customer.NewProject(req.CustomerID, req.Name, req.Budget)
	if err != nil {
		return nil, err
	}
	p.Description = req.Description
	if err := p.SetSchedule(req.StartDate.Ptr(), req.EndDate.Ptr()); err != nil {
		return nil, err
	}
	if req.Status != "" {
		if err := p.ChangeStatus(customer.ProjectStatus(req.Status)); err != nil {
			return nil, err
		}
	}
	if actorID := shared.ActorID(ctx); actorID != uuid.Nil {
		p.SetCreatedBy(actorID)
	}

	if err := s.projectRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, p)

	response := ToProjectResponse(p)
	return &response, nil
}

// GetByID retrieves a project by ID
func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*ProjectResponse, error) {
	p, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProjectResponse(p)
	return &response, nil
}

// List retrieves a page of projects
func (s *ProjectService) List(ctx context.Context, filter ProjectListFilter) (shared.Paginated[ProjectResponse], error) {
	f := filter.Filter()
	common.SetFilter(&f, "customer_id", filter.CustomerID)
	common.SetFilter(&f, "status", filter.Status)

	projects, err := s.projectRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[ProjectResponse]{}, err
	}
	total, err := s.projectRepo.Count(ctx, f)
	if err != nil {
		return shared.Paginated[ProjectResponse]{}, err
	}
	return shared.NewPaginated(ToProjectResponses(projects), total, f.Page, f.PageSize), nil
}

// Update changes a project's details and schedule
func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, req UpdateProjectRequest) (*ProjectResponse, error) {
	p, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, description, budget := p.Name, p.Description, p.Budget
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.Budget != nil {
		budget = *req.Budget
	}
	if err := p.Update(name, description, budget); err != nil {
		return nil, err
	}

	switch {
	case req.ClearSchedule:
		if err := p.SetSchedule(nil, nil); err != nil {
			return nil, err
		}
	case req.StartDate != nil || req.EndDate != nil:
		start, end := p.StartDate, p.EndDate
		if req.StartDate != nil {
			start = req.StartDate.Ptr()
		}
		if req.EndDate != nil {
			end = req.EndDate.Ptr()
		}
		if err := p.SetSchedule(start, end); err != nil {
			return nil, err
		}
	}

	if err := s.projectRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, p)

	response := ToProjectResponse(p)
	return &response, nil
}

// ChangeStatus moves a project to a new status
func (s *ProjectService) ChangeStatus(ctx context.Context, id uuid.UUID, req ChangeProjectStatusRequest) (*ProjectResponse, error) {
	p, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.ChangeStatus(customer.ProjectStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.projectRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, p)

	response := ToProjectResponse(p)
	return &response, nil
}

// Delete removes a project that no invoice or payment refers to
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	invoices, err := s.invoiceRepo.CountByProject(ctx, id)
	if err != nil {
		return err
	}
	payments, err := s.paymentRepo.CountByProject(ctx, id)
	if err != nil {
		return err
	}
	if invoices > 0 || payments > 0 {
		return shared.NewDomainError("HAS_DEPENDENCIES", "Project is still referenced by invoices or payments")
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return err
	}

	p.ClearDomainEvents()
	p.AddDomainEvent(customer.NewProjectDeletedEvent(p))
	common.PublishEvents(ctx, s.eventPublisher, s.logger, p)
	return nil
}
