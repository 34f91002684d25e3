package finance

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/customer"
	"github.com/ledgerbook/backend/internal/domain/finance"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// summaryConcurrency bounds the number of customers summarised at once
const summaryConcurrency = 8

// AccountSummaryService computes per-customer account summaries
type AccountSummaryService struct {
	customerRepo customer.CustomerRepository
	projectRepo  customer.ProjectRepository
	invoiceRepo  finance.InvoiceRepository
	paymentRepo  finance.PaymentRepository
	cache        finance.AccountSummaryCache
	clock        clockwork.Clock
	logger       *zap.Logger
}

// NewAccountSummaryService creates a new AccountSummaryService. cache may be nil.
func NewAccountSummaryService(
	customerRepo customer.CustomerRepository,
	projectRepo customer.ProjectRepository,
	invoiceRepo finance.InvoiceRepository,
	paymentRepo finance.PaymentRepository,
	cache finance.AccountSummaryCache,
	clock clockwork.Clock,
	logger *zap.Logger,
) *AccountSummaryService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AccountSummaryService{
		customerRepo: customerRepo,
		projectRepo:  projectRepo,
		invoiceRepo:  invoiceRepo,
		paymentRepo:  paymentRepo,
		cache:        cache,
		clock:        clock,
		logger:       common.LoggerOrNop(logger),
	}
}

// GetAccountSummary returns the summary for one customer, from cache when possible
func (s *AccountSummaryService) GetAccountSummary(ctx context.Context, customerID uuid.UUID) (*finance.AccountSummary, error) {
	c, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.summarise(ctx, c)
}

// ListAccountSummaries returns a summary for every customer, largest
// outstanding balance first
func (s *AccountSummaryService) ListAccountSummaries(ctx context.Context) ([]finance.AccountSummary, error) {
	customers, err := s.customerRepo.FindAll(ctx, shared.AllFilter())
	if err != nil {
		return nil, err
	}

	summaries := make([]finance.AccountSummary, len(customers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryConcurrency)
	for i := range customers {
		g.Go(func() error {
			summary, err := s.summarise(gctx, &customers[i])
			if err != nil {
				return err
			}
			summaries[i] = *summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(summaries, func(a, b int) bool {
		if !summaries[a].TotalOutstanding.Equal(summaries[b].TotalOutstanding) {
			return summaries[a].TotalOutstanding.GreaterThan(summaries[b].TotalOutstanding)
		}
		return summaries[a].CustomerName < summaries[b].CustomerName
	})
	return summaries, nil
}

// Invalidate drops the cached summary for a customer
func (s *AccountSummaryService) Invalidate(ctx context.Context, customerID uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, customerID)
}

func (s *AccountSummaryService) summarise(ctx context.Context, c *customer.Customer) (*finance.AccountSummary, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, c.ID)
		if err != nil {
			s.logger.Warn("Account summary cache read failed",
				zap.String("customer_id", c.ID.String()),
				zap.Error(err),
			)
		} else if cached != nil {
			return cached, nil
		}
	}

	var (
		invoices []finance.CustomerInvoice
		payments []finance.CustomerPayment
		projects []customer.Project
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		invoices, err = s.invoiceRepo.FindByCustomer(gctx, c.ID)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = s.paymentRepo.FindByCustomer(gctx, c.ID)
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = s.projectRepo.FindByCustomer(gctx, c.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := finance.ComputeAccountSummary(c, invoices, payments, projects, s.clock.Now())
	if s.cache != nil {
		if err := s.cache.Set(ctx, summary); err != nil {
			s.logger.Warn("Account summary cache write failed",
				zap.String("customer_id", c.ID.String()),
				zap.Error(err),
			)
		}
	}
	return summary, nil
}
