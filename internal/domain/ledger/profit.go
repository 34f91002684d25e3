package ledger

import (
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProfitSummary is income against expense over some period
type ProfitSummary struct {
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	Profit       decimal.Decimal `json:"profit"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
}

// NewProfitSummary computes profit = income - expense and the margin
// profit / income * 100, which is zero when there is no income.
func NewProfitSummary(income, expense decimal.Decimal) ProfitSummary {
	profit := income.Sub(expense)
	return ProfitSummary{
		Income:       shared.RoundMoney(income),
		Expense:      shared.RoundMoney(expense),
		Profit:       shared.RoundMoney(profit),
		ProfitMargin: shared.Percentage(profit, income),
	}
}

// Totals accumulates income and expense amounts
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Count   int
}

// Add accumulates one entry
func (t *Totals) Add(entryType EntryType, amount decimal.Decimal) {
	switch entryType {
	case EntryTypeIncome:
		t.Income = t.Income.Add(amount)
	case EntryTypeExpense:
		t.Expense = t.Expense.Add(amount)
	}
	t.Count++
}

// Summary turns the totals into a ProfitSummary
func (t Totals) Summary() ProfitSummary {
	return NewProfitSummary(t.Income, t.Expense)
}

// SumTransactions totals a list of transactions
func SumTransactions(txs []Transaction) Totals {
	totals := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for i := range txs {
		totals.Add(txs[i].Type, txs[i].Amount)
	}
	return totals
}
