package finance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/customer"
	"github.com/ledgerbook/backend/internal/domain/document"
	"github.com/ledgerbook/backend/internal/domain/finance"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// maxNumberAttempts bounds the search for a free generated invoice number
const maxNumberAttempts = 5

// InvoiceService handles customer invoice operations
type InvoiceService struct {
	invoiceRepo    finance.InvoiceRepository
	paymentRepo    finance.PaymentRepository
	customerRepo   customer.CustomerRepository
	projectRepo    customer.ProjectRepository
	fileRepo       document.FileRepository
	eventPublisher shared.EventPublisher
	clock          clockwork.Clock
	logger         *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo finance.InvoiceRepository,
	paymentRepo finance.PaymentRepository,
	customerRepo customer.CustomerRepository,
	projectRepo customer.ProjectRepository,
	fileRepo document.FileRepository,
	eventPublisher shared.EventPublisher,
	clock clockwork.Clock,
	logger *zap.Logger,
) *InvoiceService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &InvoiceService{
		invoiceRepo:    invoiceRepo,
		paymentRepo:    paymentRepo,
		customerRepo:   customerRepo,
		projectRepo:    projectRepo,
		fileRepo:       fileRepo,
		eventPublisher: eventPublisher,
		clock:          clock,
		logger:         common.LoggerOrNop(logger),
	}
}

// Create issues an invoice to a customer
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerID, req.CustomerID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if _, err := s.customerRepo.FindByID(ctx, req.CustomerID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.checkProject(ctx, req.CustomerID, req.ProjectID); err != nil {
		return nil, err
	}
	if err := s.checkFile(ctx, req.FileID); err != nil {
		return nil, err
	}

	issueDate := common.StartOfDay(s.clock.Now())
	if req.IssueDate != nil && !req.IssueDate.IsZero() {
		issueDate = req.IssueDate.Time
	}

	build := func(number string) (*finance.CustomerInvoice, error) {
		inv, err := finance.NewCustomerInvoice(req.CustomerID, number, req.Amount, issueDate)
		if err != nil {
			return nil, err
		}
		if err := inv.SetCurrency(req.Currency); err != nil {
			return nil, err
		}
		if err := inv.SetDueDate(req.DueDate.Ptr()); err != nil {
			return nil, err
		}
		inv.SetProject(req.ProjectID)
		inv.SetDescription(strings.TrimSpace(req.Description))
		inv.AttachFile(req.FileID)
		if actorID := shared.ActorID(ctx); actorID != uuid.Nil {
			inv.SetCreatedBy(actorID)
		}
		return inv, nil
	}

	var inv *finance.CustomerInvoice
	if number := strings.TrimSpace(req.InvoiceNumber); number != "" {
		exists, err := s.invoiceRepo.ExistsByNumber(ctx, strings.ToUpper(number))
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("Invoice number %s is already in use", strings.ToUpper(number)))
		}
		if inv, err = build(number); err != nil {
			return nil, err
		}
		if err := s.invoiceRepo.Save(ctx, inv); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	} else {
		// Two concurrent creates can pick the same number; the unique index
		// rejects the loser, which then takes the next free one.
		err := retry.Do(
			func() error {
				number, err := s.nextInvoiceNumber(ctx, issueDate)
				if err != nil {
					return retry.Unrecoverable(err)
				}
				candidate, err := build(number)
				if err != nil {
					return retry.Unrecoverable(err)
				}
				if err := s.invoiceRepo.Save(ctx, candidate); err != nil {
					return err
				}
				inv = candidate
				return nil
			},
			retry.Context(ctx),
			retry.Attempts(3),
			retry.Delay(0),
			retry.LastErrorOnly(true),
			retry.RetryIf(func(err error) bool { return errors.Is(err, shared.ErrAlreadyExists) }),
		)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, inv.ID.String(),
		telemetry.SpanAttrInvoiceNumber, inv.InvoiceNumber,
	)
	telemetry.SetOK(span)
	common.PublishEvents(ctx, s.eventPublisher, s.logger, inv)

	response := ToInvoiceResponse(inv, s.clock.Now())
	return &response, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv, s.clock.Now())
	return &response, nil
}

// List retrieves a page of invoices
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) (shared.Paginated[InvoiceResponse], error) {
	f := filter.Filter()
	if err := filter.Apply(&f); err != nil {
		return shared.Paginated[InvoiceResponse]{}, err
	}
	common.SetFilter(&f, "customer_id", filter.CustomerID)
	common.SetFilter(&f, "project_id", filter.ProjectID)
	common.SetFilter(&f, "status", filter.Status)

	now := s.clock.Now()
	if filter.Overdue {
		f.Filters["overdue_before"] = common.StartOfDay(now)
	}

	invoices, err := s.invoiceRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[InvoiceResponse]{}, err
	}
	total, err := s.invoiceRepo.Count(ctx, f)
	if err != nil {
		return shared.Paginated[InvoiceResponse]{}, err
	}
	return shared.NewPaginated(ToInvoiceResponses(invoices, now), total, f.Page, f.PageSize), nil
}

// Update changes an invoice. The amount cannot drop below what has been paid;
// the status is re-derived from the new amount.
func (s *InvoiceService) Update(ctx context.Context, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != inv.Version {
		return nil, shared.ErrConcurrencyConflict
	}

	switch {
	case req.ClearProject:
		inv.SetProject(nil)
	case req.ProjectID != nil:
		if err := s.checkProject(ctx, inv.CustomerID, req.ProjectID); err != nil {
			return nil, err
		}
		inv.SetProject(req.ProjectID)
	}

	switch {
	case req.ClearFile:
		inv.AttachFile(nil)
	case req.FileID != nil:
		if err := s.checkFile(ctx, req.FileID); err != nil {
			return nil, err
		}
		inv.AttachFile(req.FileID)
	}

	if req.Currency != nil {
		if err := inv.SetCurrency(*req.Currency); err != nil {
			return nil, err
		}
	}
	if err := s.applySchedule(inv, req); err != nil {
		return nil, err
	}
	if req.Description != nil {
		inv.SetDescription(strings.TrimSpace(*req.Description))
	}

	if req.Amount != nil && !req.Amount.Equal(inv.Amount) {
		if err := inv.ChangeAmount(*req.Amount); err != nil {
			return nil, err
		}
	} else {
		inv.MarkUpdated()
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, inv)

	response := ToInvoiceResponse(inv, s.clock.Now())
	return &response, nil
}

// Delete removes an invoice that has no payments recorded against it
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	payments, err := s.paymentRepo.CountByInvoice(ctx, id)
	if err != nil {
		return err
	}
	if payments > 0 {
		return shared.NewDomainError("HAS_DEPENDENCIES",
			fmt.Sprintf("Invoice %s has %d payment(s); delete them first", inv.InvoiceNumber, payments))
	}

	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		return err
	}

	inv.ClearDomainEvents()
	inv.AddDomainEvent(finance.NewInvoiceDeletedEvent(inv))
	common.PublishEvents(ctx, s.eventPublisher, s.logger, inv)
	return nil
}

// nextInvoiceNumber returns the first unused INV-YYYYMM-NNNN for the issue month
func (s *InvoiceService) nextInvoiceNumber(ctx context.Context, issueDate time.Time) (string, error) {
	count, err := s.invoiceRepo.CountByNumberPrefix(ctx, finance.InvoiceNumberPrefix(issueDate))
	if err != nil {
		return "", err
	}
	seq := int(count) + 1
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number := finance.GenerateInvoiceNumber(issueDate, seq+attempt)
		exists, err := s.invoiceRepo.ExistsByNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", shared.NewDomainError("INVOICE_NUMBER_UNAVAILABLE", "Could not allocate an invoice number; supply one explicitly")
}

// applySchedule moves issue and due dates together so the pair stays ordered
func (s *InvoiceService) applySchedule(inv *finance.CustomerInvoice, req UpdateInvoiceRequest) error {
	if req.IssueDate == nil && req.DueDate == nil && !req.ClearDueDate {
		return nil
	}
	issue := inv.IssueDate
	if req.IssueDate != nil && !req.IssueDate.IsZero() {
		issue = req.IssueDate.Time
	}
	due := inv.DueDate
	switch {
	case req.ClearDueDate:
		due = nil
	case req.DueDate != nil:
		due = req.DueDate.Ptr()
	}

	inv.DueDate = nil
	if err := inv.SetIssueDate(issue); err != nil {
		return err
	}
	return inv.SetDueDate(due)
}

func (s *InvoiceService) checkProject(ctx context.Context, customerID uuid.UUID, projectID *uuid.UUID) error {
	if projectID == nil {
		return nil
	}
	p, err := s.projectRepo.FindByID(ctx, *projectID)
	if err != nil {
		return err
	}
	if p.CustomerID != customerID {
		return shared.NewDomainError("PROJECT_CUSTOMER_MISMATCH", "Project belongs to a different customer")
	}
	return nil
}

func (s *InvoiceService) checkFile(ctx context.Context, fileID *uuid.UUID) error {
	if fileID == nil || s.fileRepo == nil {
		return nil
	}
	_, err := s.fileRepo.FindByID(ctx, *fileID)
	return err
}
