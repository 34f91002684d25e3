package customer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/customer"
	"github.com/ledgerbook/backend/internal/domain/finance"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo    customer.CustomerRepository
	projectRepo     customer.ProjectRepository
	invoiceRepo     finance.InvoiceRepository
	paymentRepo     finance.PaymentRepository
	transactionRepo ledger.TransactionRepository
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(
	customerRepo customer.CustomerRepository,
	projectRepo customer.ProjectRepository,
	invoiceRepo finance.InvoiceRepository,
	paymentRepo finance.PaymentRepository,
	transactionRepo ledger.TransactionRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo:    customerRepo,
		projectRepo:     projectRepo,
		invoiceRepo:     invoiceRepo,
		paymentRepo:     paymentRepo,
		transactionRepo: transactionRepo,
		eventPublisher:  eventPublisher,
		logger:          common.LoggerOrNop(logger),
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	if err := s.ensureEmailAvailable(ctx, req.Email, uuid.Nil); err != nil {
		return nil, err
	}

	c, err := customer.NewCustomer(req.Name)
	if err != nil {
		return nil, err
	}
	c.Notes = req.Notes
	if err := c.SetContact(req.Email, req.Phone); err != nil {
		return nil, err
	}
	c.SetAddress(req.Address)
	if err := c.SetTaxNumber(req.TaxNumber); err != nil {
		return nil, err
	}
	if actorID := shared.ActorID(ctx); actorID != uuid.Nil {
		c.SetCreatedBy(actorID)
	}

	if err := s.customerRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	common.PublishEvents(ctx, s.eventPublisher, s.logger, c)

	response := ToCustomerResponse(c)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(c)
	return &response, nil
}

// List retrieves a page of customers
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) (shared.Paginated[CustomerResponse], error) {
	f := filter.Filter()
	common.SetFilter(&f, "status", filter.Status)

	customers, err := s.customerRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[CustomerResponse]{}, err
	}
	total, err := s.customerRepo.Count(ctx, f)
	if err != nil {
		return shared.Paginated[CustomerResponse]{}, err
	}
	return shared.NewPaginated(ToCustomerResponses(customers), total, f.Page, f.PageSize), nil
}

// Update updates a customer. When Version is given it must match the stored version.
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != c.Version {
		return nil, shared.ErrConcurrencyConflict
	}

	name, notes := c.Name, c.Notes
	if req.Name != nil {
		name = *req.Name
	}
	if req.Notes != nil {
		notes = *req.Notes
	}
	if err := c.Update(name, notes); err != nil {
		return nil, err
	}

	if req.Email != nil || req.Phone != nil {
		email, phone := c.Email, c.Phone
		if req.Email != nil {
			email = *req.Email
			if err := s.ensureEmailAvailable(ctx, email, c.ID); err != nil {
				return nil, err
			}
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if err := c.SetContact(email, phone); err != nil {
			return nil, err
		}
	}
	if req.Address != nil {
		c.SetAddress(*req.Address)
	}
	if req.TaxNumber != nil {
		if err := c.SetTaxNumber(*req.TaxNumber); err != nil {
			return nil, err
		}
	}

	if err := s.customerRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, c)

	response := ToCustomerResponse(c)
	return &response, nil
}

// Delete removes a customer that no longer owns any invoices, payments,
// projects or transactions
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	checks := []struct {
		what  string
		count func(context.Context, uuid.UUID) (int64, error)
	}{
		{"invoices", s.invoiceRepo.CountByCustomer},
		{"payments", s.paymentRepo.CountByCustomer},
		{"projects", s.projectRepo.CountByCustomer},
		{"transactions", s.transactionRepo.CountByCustomer},
	}
	var blocking []string
	for _, check := range checks {
		n, err := check.count(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			blocking = append(blocking, fmt.Sprintf("%d %s", n, check.what))
		}
	}
	if len(blocking) > 0 {
		return shared.NewDomainError("HAS_DEPENDENCIES",
			"Customer still has "+strings.Join(blocking, ", "))
	}

	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return err
	}

	c.ClearDomainEvents()
	c.AddDomainEvent(customer.NewCustomerDeletedEvent(c))
	common.PublishEvents(ctx, s.eventPublisher, s.logger, c)
	return nil
}

// Activate marks a customer active
func (s *CustomerService) Activate(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	return s.changeStatus(ctx, id, (*customer.Customer).Activate)
}

// Deactivate marks a customer inactive
func (s *CustomerService) Deactivate(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	return s.changeStatus(ctx, id, (*customer.Customer).Deactivate)
}

func (s *CustomerService) changeStatus(ctx context.Context, id uuid.UUID, transition func(*customer.Customer) error) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := transition(c); err != nil {
		return nil, err
	}
	if err := s.customerRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, c)

	response := ToCustomerResponse(c)
	return &response, nil
}

func (s *CustomerService) ensureEmailAvailable(ctx context.Context, email string, excludeID uuid.UUID) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	exists, err := s.customerRepo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Customer with this email already exists")
	}
	return nil
}
