package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	appreport "github.com/ledgerbook/backend/internal/application/report"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
	"github.com/ledgerbook/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newReportRouter(t *testing.T) (*testutil.MockTransactionRepository, http.Handler) {
	t.Helper()
	txs := new(testutil.MockTransactionRepository)
	svc := appreport.NewReportService(txs, nil, nil, nil, nil, nil,
		clockwork.NewFakeClockAt(time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)), nil)
	h := NewReportHandler(svc)

	r := newTestRouter(asUser(uuid.New(), "user"))
	r.GET("/reports/profit", h.Profit)
	r.GET("/reports/monthly", h.Monthly)
	return txs, r
}

func ledgerEntry(t *testing.T, entryType ledger.EntryType, amount string, day time.Time) ledger.Transaction {
	t.Helper()
	tx, err := ledger.NewTransaction(entryType, decimal.RequireFromString(amount), day, "")
	require.NoError(t, err)
	return *tx
}

func TestReportHandler_ProfitDefaultsToCurrentMonth(t *testing.T) {
	txs, r := newReportRouter(t)
	june := time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)
	txs.On("FindInPeriod", mock.Anything,
		time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), mock.AnythingOfType("time.Time")).
		Return([]ledger.Transaction{
			ledgerEntry(t, ledger.EntryTypeIncome, "1000", june),
			ledgerEntry(t, ledger.EntryTypeExpense, "250", june),
		}, nil)

	w, resp := doJSON(t, r, http.MethodGet, "/reports/profit", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary appreport.ProfitSummaryResponse
	dataAs(t, resp, &summary)
	assert.True(t, summary.Income.Equal(decimal.NewFromInt(1000)))
	assert.True(t, summary.Expense.Equal(decimal.NewFromInt(250)))
	assert.True(t, summary.Profit.Equal(decimal.NewFromInt(750)))
	txs.AssertExpectations(t)
}

func TestReportHandler_BadQueries(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantCode string
	}{
		{"unparseable date", "/reports/profit?date_from=06/01/2026", dto.ErrCodeBadRequest},
		{"reversed range", "/reports/profit?date_from=2026-06-30&date_to=2026-06-01", "INVALID_DATE_RANGE"},
		{"year out of range", "/reports/monthly?year=12", dto.ErrCodeValidation},
		{"year not a number", "/reports/monthly?year=last", dto.ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, r := newReportRouter(t)

			w, resp := doJSON(t, r, http.MethodGet, tt.path, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			txs.AssertNotCalled(t, "FindInPeriod", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestReportHandler_MonthlyTrend(t *testing.T) {
	txs, r := newReportRouter(t)
	txs.On("FindInPeriod", mock.Anything,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), mock.AnythingOfType("time.Time")).
		Return([]ledger.Transaction{
			ledgerEntry(t, ledger.EntryTypeIncome, "400", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)),
		}, nil)

	w, resp := doJSON(t, r, http.MethodGet, "/reports/monthly?year=2025", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rows []appreport.MonthlyTrendRow
	dataAs(t, resp, &rows)
	require.Len(t, rows, 12)
	assert.Equal(t, 3, rows[2].Month)
	assert.True(t, rows[2].Income.Equal(decimal.NewFromInt(400)))
	assert.True(t, rows[0].Income.IsZero())
}
