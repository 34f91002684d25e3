package report

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/customer"
	"github.com/ledgerbook/backend/internal/domain/finance"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/partner"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// UncategorizedName labels the breakdown bucket for entries without a category
const UncategorizedName = "Uncategorized"

// ReportService computes profit and receivables reports on demand
type ReportService struct {
	transactionRepo ledger.TransactionRepository
	categoryRepo    ledger.CategoryRepository
	expenseRepo     partner.ExpenseRepository
	invoiceRepo     finance.InvoiceRepository
	customerRepo    customer.CustomerRepository
	projectRepo     customer.ProjectRepository
	clock           clockwork.Clock
	logger          *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	transactionRepo ledger.TransactionRepository,
	categoryRepo ledger.CategoryRepository,
	expenseRepo partner.ExpenseRepository,
	invoiceRepo finance.InvoiceRepository,
	customerRepo customer.CustomerRepository,
	projectRepo customer.ProjectRepository,
	clock clockwork.Clock,
	logger *zap.Logger,
) *ReportService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ReportService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		expenseRepo:     expenseRepo,
		invoiceRepo:     invoiceRepo,
		customerRepo:    customerRepo,
		projectRepo:     projectRepo,
		clock:           clock,
		logger:          common.LoggerOrNop(logger),
	}
}

// ===================== Profit =====================

// PeriodFilter selects a reporting period; the default is the current month
type PeriodFilter struct {
	common.DateRange
}

// ProfitSummaryResponse represents income against expense for a period
type ProfitSummaryResponse struct {
	PeriodStart         common.Date     `json:"period_start"`
	PeriodEnd           common.Date     `json:"period_end"`
	Income              decimal.Decimal `json:"income"`
	Expense             decimal.Decimal `json:"expense"`
	TransactionExpense  decimal.Decimal `json:"transaction_expense"`
	PartnerExpense      decimal.Decimal `json:"partner_expense"`
	Profit              decimal.Decimal `json:"profit"`
	ProfitMargin        decimal.Decimal `json:"profit_margin"`
	TransactionCount    int             `json:"transaction_count"`
	PartnerExpenseCount int             `json:"partner_expense_count"`
}

// ProfitSummary totals income and expense in the period. Partner expenses
// count as business costs.
func (s *ReportService) ProfitSummary(ctx context.Context, filter PeriodFilter) (*ProfitSummaryResponse, error) {
	from, to, err := s.period(filter.DateRange)
	if err != nil {
		return nil, err
	}
	return s.profitSummary(ctx, from, to)
}

func (s *ReportService) profitSummary(ctx context.Context, from, to time.Time) (*ProfitSummaryResponse, error) {
	txs, expenses, err := s.loadPeriod(ctx, from, to)
	if err != nil {
		return nil, err
	}

	totals := ledger.SumTransactions(txs)
	partnerTotal := sumExpenses(expenses)
	summary := ledger.NewProfitSummary(totals.Income, totals.Expense.Add(partnerTotal))

	return &ProfitSummaryResponse{
		PeriodStart:         common.NewDate(from),
		PeriodEnd:           common.NewDate(to),
		Income:              summary.Income,
		Expense:             summary.Expense,
		TransactionExpense:  shared.RoundMoney(totals.Expense),
		PartnerExpense:      shared.RoundMoney(partnerTotal),
		Profit:              summary.Profit,
		ProfitMargin:        summary.ProfitMargin,
		TransactionCount:    totals.Count,
		PartnerExpenseCount: len(expenses),
	}, nil
}

// MonthlyTrendRow is one calendar month of a yearly trend
type MonthlyTrendRow struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	Profit       decimal.Decimal `json:"profit"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
}

// MonthlyTrend returns twelve rows of income, expense and profit for year.
// A zero year means the current one.
func (s *ReportService) MonthlyTrend(ctx context.Context, year int) ([]MonthlyTrendRow, error) {
	now := s.clock.Now()
	if year == 0 {
		year = now.Year()
	}
	if year < 1900 || year > 9999 {
		return nil, shared.NewDomainError("INVALID_YEAR", "Year must be between 1900 and 9999")
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location())
	to := common.EndOfDay(time.Date(year, time.December, 31, 0, 0, 0, 0, now.Location()))
	txs, expenses, err := s.loadPeriod(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var months [12]ledger.Totals
	for i := range months {
		months[i] = ledger.Totals{Income: decimal.Zero, Expense: decimal.Zero}
	}
	for i := range txs {
		m := txs[i].TransactionDate.Month() - 1
		months[m].Add(txs[i].Type, txs[i].Amount)
	}
	for i := range expenses {
		m := expenses[i].ExpenseDate.Month() - 1
		months[m].Expense = months[m].Expense.Add(expenses[i].Amount)
	}

	rows := make([]MonthlyTrendRow, 12)
	for i := range months {
		summary := months[i].Summary()
		rows[i] = MonthlyTrendRow{
			Year:         year,
			Month:        i + 1,
			Income:       summary.Income,
			Expense:      summary.Expense,
			Profit:       summary.Profit,
			ProfitMargin: summary.ProfitMargin,
		}
	}
	return rows, nil
}

// ===================== Categories =====================

// CategoryBreakdownFilter selects the entry type and period to break down
type CategoryBreakdownFilter struct {
	common.DateRange
	Type string `form:"type" binding:"omitempty,oneof=income expense"`
}

// CategoryBreakdownRow is one category's share of the type's total
type CategoryBreakdownRow struct {
	CategoryID   *uuid.UUID      `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Color        string          `json:"color,omitempty"`
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
	Percentage   decimal.Decimal `json:"percentage"`
}

// CategoryBreakdown groups one entry type's amounts by category, largest
// first. Entries without a category share a single bucket. Expense
// breakdowns include partner expenses.
func (s *ReportService) CategoryBreakdown(ctx context.Context, filter CategoryBreakdownFilter) ([]CategoryBreakdownRow, error) {
	entryType := ledger.EntryType(filter.Type)
	if entryType == "" {
		entryType = ledger.EntryTypeExpense
	}
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Type must be income or expense")
	}
	from, to, err := s.period(filter.DateRange)
	if err != nil {
		return nil, err
	}

	var (
		txs        []ledger.Transaction
		expenses   []partner.Expense
		categories []ledger.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.transactionRepo.FindInPeriod(gctx, from, to)
		return err
	})
	if entryType == ledger.EntryTypeExpense {
		g.Go(func() error {
			var err error
			expenses, err = s.partnerExpenses(gctx, from, to)
			return err
		})
	}
	g.Go(func() error {
		var err error
		categories, err = s.categoryRepo.FindByType(gctx, entryType)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*CategoryBreakdownRow, len(categories))
	uncategorized := &CategoryBreakdownRow{CategoryName: UncategorizedName, Total: decimal.Zero}
	bucket := func(categoryID *uuid.UUID) *CategoryBreakdownRow {
		if categoryID == nil {
			return uncategorized
		}
		if row, ok := byID[*categoryID]; ok {
			return row
		}
		// Category removed or of another type since the entry was made
		return uncategorized
	}
	for i := range categories {
		id := categories[i].ID
		byID[id] = &CategoryBreakdownRow{
			CategoryID:   &id,
			CategoryName: categories[i].Name,
			Color:        categories[i].Color,
			Total:        decimal.Zero,
		}
	}

	grand := decimal.Zero
	for i := range txs {
		if txs[i].Type != entryType {
			continue
		}
		row := bucket(txs[i].CategoryID)
		row.Total = row.Total.Add(txs[i].Amount)
		row.Count++
		grand = grand.Add(txs[i].Amount)
	}
	for i := range expenses {
		row := bucket(expenses[i].CategoryID)
		row.Total = row.Total.Add(expenses[i].Amount)
		row.Count++
		grand = grand.Add(expenses[i].Amount)
	}

	rows := make([]CategoryBreakdownRow, 0, len(byID)+1)
	for _, row := range byID {
		if row.Count > 0 {
			rows = append(rows, *row)
		}
	}
	if uncategorized.Count > 0 {
		rows = append(rows, *uncategorized)
	}
	for i := range rows {
		rows[i].Percentage = shared.Percentage(rows[i].Total, grand)
		rows[i].Total = shared.RoundMoney(rows[i].Total)
	}
	sort.Slice(rows, func(a, b int) bool {
		if !rows[a].Total.Equal(rows[b].Total) {
			return rows[a].Total.GreaterThan(rows[b].Total)
		}
		return rows[a].CategoryName < rows[b].CategoryName
	})
	return rows, nil
}

// ===================== Dashboard =====================

// DashboardResponse is the overview shown after login
type DashboardResponse struct {
	Month              ProfitSummaryResponse `json:"month"`
	TotalOutstanding   decimal.Decimal       `json:"total_outstanding"`
	OutstandingCount   int                   `json:"outstanding_count"`
	OverdueCount       int                   `json:"overdue_count"`
	OverdueAmount      decimal.Decimal       `json:"overdue_amount"`
	CustomerCount      int64                 `json:"customer_count"`
	ActiveProjectCount int64                 `json:"active_project_count"`
	GeneratedAt        time.Time             `json:"generated_at"`
}

// Dashboard gathers this month's profit and the receivables position
func (s *ReportService) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	now := s.clock.Now()
	from, to := common.MonthRange(now)
	resp := &DashboardResponse{GeneratedAt: now}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		month, err := s.profitSummary(gctx, from, to)
		if err != nil {
			return err
		}
		resp.Month = *month
		return nil
	})
	g.Go(func() error {
		invoices, err := s.invoiceRepo.FindOutstanding(gctx)
		if err != nil {
			return err
		}
		outstanding, overdue := decimal.Zero, decimal.Zero
		for i := range invoices {
			remaining := invoices[i].Remaining()
			outstanding = outstanding.Add(remaining)
			if invoices[i].IsOverdue(now) {
				resp.OverdueCount++
				overdue = overdue.Add(remaining)
			}
		}
		resp.OutstandingCount = len(invoices)
		resp.TotalOutstanding = shared.RoundMoney(outstanding)
		resp.OverdueAmount = shared.RoundMoney(overdue)
		return nil
	})
	g.Go(func() error {
		count, err := s.customerRepo.Count(gctx, shared.AllFilter())
		resp.CustomerCount = count
		return err
	})
	g.Go(func() error {
		count, err := s.projectRepo.CountByStatus(gctx, customer.ProjectStatusActive)
		resp.ActiveProjectCount = count
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("Dashboard query failed", zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// period resolves the filter into an inclusive range. Without bounds it is
// the current month; a single bound is completed to the month containing it.
func (s *ReportService) period(r common.DateRange) (time.Time, time.Time, error) {
	var f shared.Filter
	if err := r.Apply(&f); err != nil {
		return time.Time{}, time.Time{}, err
	}
	var from, to time.Time
	switch {
	case f.DateFrom == nil && f.DateTo == nil:
		from, to = common.MonthRange(s.clock.Now())
	case f.DateFrom == nil:
		to = *f.DateTo
		from, _ = common.MonthRange(to)
	case f.DateTo == nil:
		from = *f.DateFrom
		_, to = common.MonthRange(from)
	default:
		from, to = *f.DateFrom, *f.DateTo
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, shared.NewDomainError("INVALID_DATE_RANGE", "date_to cannot be before date_from")
	}
	return from, to, nil
}

func (s *ReportService) loadPeriod(ctx context.Context, from, to time.Time) ([]ledger.Transaction, []partner.Expense, error) {
	var (
		txs      []ledger.Transaction
		expenses []partner.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.transactionRepo.FindInPeriod(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.partnerExpenses(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return txs, expenses, nil
}

func (s *ReportService) partnerExpenses(ctx context.Context, from, to time.Time) ([]partner.Expense, error) {
	if s.expenseRepo == nil {
		return nil, nil
	}
	f := shared.AllFilter()
	f.DateFrom = &from
	f.DateTo = &to
	return s.expenseRepo.FindAll(ctx, f)
}

func sumExpenses(expenses []partner.Expense) decimal.Decimal {
	total := decimal.Zero
	for i := range expenses {
		total = total.Add(expenses[i].Amount)
	}
	return total
}
