package finance

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/customer"
	"github.com/ledgerbook/backend/internal/domain/finance"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PaymentService records customer payments and keeps the linked invoice in step.
// Every write that touches an invoice runs inside one transaction with the
// invoice row locked, and the invoice's paid amount is re-derived from the
// sum of its payments.
type PaymentService struct {
	transactor     finance.Transactor
	paymentRepo    finance.PaymentRepository
	customerRepo   customer.CustomerRepository
	projectRepo    customer.ProjectRepository
	eventPublisher shared.EventPublisher
	clock          clockwork.Clock
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	transactor finance.Transactor,
	paymentRepo finance.PaymentRepository,
	customerRepo customer.CustomerRepository,
	projectRepo customer.ProjectRepository,
	eventPublisher shared.EventPublisher,
	clock clockwork.Clock,
	logger *zap.Logger,
) *PaymentService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PaymentService{
		transactor:     transactor,
		paymentRepo:    paymentRepo,
		customerRepo:   customerRepo,
		projectRepo:    projectRepo,
		eventPublisher: eventPublisher,
		clock:          clock,
		logger:         common.LoggerOrNop(logger),
	}
}

// Record stores a payment. When it names an invoice the payment is applied to
// it and may not exceed the invoice's remaining amount.
func (s *PaymentService) Record(ctx context.Context, req RecordPaymentRequest) (*RecordPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record")
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

	paymentDate := common.StartOfDay(s.clock.Now())
	if req.PaymentDate != nil && !req.PaymentDate.IsZero() {
		paymentDate = req.PaymentDate.Time
	}

	p, err := finance.NewCustomerPayment(req.CustomerID, req.Amount, paymentDate, finance.PaymentMethod(req.Method))
	if err != nil {
		return nil, err
	}
	p.SetProject(req.ProjectID)
	p.SetDetails(req.Reference, strings.TrimSpace(req.Notes))
	if actorID := shared.ActorID(ctx); actorID != uuid.Nil {
		p.SetCreatedBy(actorID)
	}

	var inv *finance.CustomerInvoice
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context, repos finance.TxRepositories) error {
		if req.InvoiceID == nil {
			return repos.Payments.Save(ctx, p)
		}

		locked, err := repos.Invoices.FindByIDForUpdate(ctx, *req.InvoiceID)
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
		if err := reconcileInvoice(ctx, repos, locked); err != nil {
			return err
		}
		inv = locked
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentID, p.ID.String())
	telemetry.SetOK(span)

	p.Recorded()
	aggregates := []shared.AggregateRoot{p}
	result := &RecordPaymentResult{Payment: ToPaymentResponse(p)}
	if inv != nil {
		aggregates = append(aggregates, inv)
		invResponse := ToInvoiceResponse(inv, s.clock.Now())
		result.Invoice = &invResponse
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, aggregates...)

	s.logger.Info("Payment recorded",
		zap.String("payment_id", p.ID.String()),
		zap.String("customer_id", p.CustomerID.String()),
		zap.String("amount", p.Amount.StringFixed(2)),
	)
	return result, nil
}

// GetByID retrieves a payment by ID
func (s *PaymentService) GetByID(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(p)
	return &response, nil
}

// List retrieves a page of payments
func (s *PaymentService) List(ctx context.Context, filter PaymentListFilter) (shared.Paginated[PaymentResponse], error) {
	f := filter.Filter()
	if err := filter.Apply(&f); err != nil {
		return shared.Paginated[PaymentResponse]{}, err
	}
	common.SetFilter(&f, "customer_id", filter.CustomerID)
	common.SetFilter(&f, "invoice_id", filter.InvoiceID)
	common.SetFilter(&f, "project_id", filter.ProjectID)
	common.SetFilter(&f, "method", filter.Method)

	payments, err := s.paymentRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[PaymentResponse]{}, err
	}
	total, err := s.paymentRepo.Count(ctx, f)
	if err != nil {
		return shared.Paginated[PaymentResponse]{}, err
	}
	return shared.NewPaginated(ToPaymentResponses(payments), total, f.Page, f.PageSize), nil
}

// Update changes a recorded payment and re-reconciles its invoice
func (s *PaymentService) Update(ctx context.Context, id uuid.UUID, req UpdatePaymentRequest) (*RecordPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "update")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentID, id.String())

	var (
		p   *finance.CustomerPayment
		inv *finance.CustomerInvoice
	)
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context, repos finance.TxRepositories) error {
		var err error
		if p, err = repos.Payments.FindByID(ctx, id); err != nil {
			return err
		}
		if req.ProjectID != nil {
			if err := s.checkProject(ctx, p.CustomerID, req.ProjectID); err != nil {
				return err
			}
			p.SetProject(req.ProjectID)
		}
		if req.Amount != nil {
			if err := p.ChangeAmount(*req.Amount); err != nil {
				return err
			}
		}
		if req.PaymentDate != nil || req.Method != nil {
			date := p.PaymentDate
			if req.PaymentDate != nil && !req.PaymentDate.IsZero() {
				date = req.PaymentDate.Time
			}
			method := p.Method
			if req.Method != nil {
				method = finance.PaymentMethod(*req.Method)
			}
			if err := p.Reschedule(date, method); err != nil {
				return err
			}
		}
		reference, notes := p.Reference, p.Notes
		if req.Reference != nil {
			reference = *req.Reference
		}
		if req.Notes != nil {
			notes = strings.TrimSpace(*req.Notes)
		}
		p.SetDetails(reference, notes)

		var locked *finance.CustomerInvoice
		if p.InvoiceID != nil {
			if locked, err = repos.Invoices.FindByIDForUpdate(ctx, *p.InvoiceID); err != nil {
				return err
			}
		}
		if err := repos.Payments.Save(ctx, p); err != nil {
			return err
		}
		if locked != nil {
			if err := reconcileInvoice(ctx, repos, locked); err != nil {
				return err
			}
			inv = locked
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)

	p.Updated()
	aggregates := []shared.AggregateRoot{p}
	result := &RecordPaymentResult{Payment: ToPaymentResponse(p)}
	if inv != nil {
		aggregates = append(aggregates, inv)
		invResponse := ToInvoiceResponse(inv, s.clock.Now())
		result.Invoice = &invResponse
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, aggregates...)
	return result, nil
}

// Delete removes a payment and gives its amount back to the invoice
func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "delete")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentID, id.String())

	var (
		p   *finance.CustomerPayment
		inv *finance.CustomerInvoice
	)
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context, repos finance.TxRepositories) error {
		var err error
		if p, err = repos.Payments.FindByID(ctx, id); err != nil {
			return err
		}
		var locked *finance.CustomerInvoice
		if p.InvoiceID != nil {
			if locked, err = repos.Invoices.FindByIDForUpdate(ctx, *p.InvoiceID); err != nil {
				return err
			}
		}
		if err := repos.Payments.Delete(ctx, id); err != nil {
			return err
		}
		if locked != nil {
			if err := reconcileInvoice(ctx, repos, locked); err != nil {
				return err
			}
			inv = locked
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	telemetry.SetOK(span)

	p.ClearDomainEvents()
	p.AddDomainEvent(finance.NewPaymentDeletedEvent(p))
	aggregates := []shared.AggregateRoot{p}
	if inv != nil {
		aggregates = append(aggregates, inv)
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, aggregates...)
	return nil
}

// reconcileInvoice sets the invoice's paid amount to the sum of its payments
// and stores it under the version lock
func reconcileInvoice(ctx context.Context, repos finance.TxRepositories, inv *finance.CustomerInvoice) error {
	total, err := repos.Payments.SumByInvoice(ctx, inv.ID)
	if err != nil {
		return err
	}
	if err := inv.Reconcile(total); err != nil {
		return err
	}
	return repos.Invoices.SaveWithLock(ctx, inv)
}

func (s *PaymentService) checkProject(ctx context.Context, customerID uuid.UUID, projectID *uuid.UUID) error {
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
