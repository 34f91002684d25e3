package partner

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPartner(t *testing.T) {
	t.Run("creates active partner", func(t *testing.T) {
		p, err := NewPartner("Jordan", decimal.NewFromInt(50))
		require.NoError(t, err)
		assert.True(t, p.IsActive())
		assert.Equal(t, "50.00", p.SharePercentage.StringFixed(2))
	})

	t.Run("rejects share above 100", func(t *testing.T) {
		_, err := NewPartner("Jordan", decimal.NewFromInt(101))
		assert.Contains(t, err.Error(), "between 0 and 100")
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewPartner("", decimal.Zero)
		assert.Error(t, err)
	})
}

func TestValidateTotalShare(t *testing.T) {
	a, _ := NewPartner("A", decimal.NewFromInt(60))
	b, _ := NewPartner("B", decimal.NewFromInt(30))
	existing := []Partner{*a, *b}

	t.Run("fits in remaining share", func(t *testing.T) {
		c, _ := NewPartner("C", decimal.NewFromInt(10))
		assert.NoError(t, ValidateTotalShare(existing, c))
	})

	t.Run("exceeds remaining share", func(t *testing.T) {
		c, _ := NewPartner("C", decimal.RequireFromString("10.01"))
		err := ValidateTotalShare(existing, c)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "100.01%")
	})

	t.Run("candidate replaces its stored copy", func(t *testing.T) {
		updated := *a
		updated.SharePercentage = decimal.NewFromInt(70)
		assert.NoError(t, ValidateTotalShare(existing, &updated))
	})

	t.Run("inactive partners do not count", func(t *testing.T) {
		inactive := *b
		require.NoError(t, inactive.SetStatus(StatusInactive))
		c, _ := NewPartner("C", decimal.NewFromInt(40))
		assert.NoError(t, ValidateTotalShare([]Partner{*a, inactive}, c))
	})
}

func TestExpense(t *testing.T) {
	partnerID := uuid.New()
	date := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)

	t.Run("create and reimburse", func(t *testing.T) {
		e, err := NewExpense(partnerID, decimal.RequireFromString("42.50"), date, " fuel ")
		require.NoError(t, err)
		assert.Equal(t, "fuel", e.Description)
		assert.False(t, e.Reimbursed)

		require.NoError(t, e.MarkReimbursed(date.AddDate(0, 0, 3)))
		assert.True(t, e.Reimbursed)
		require.NotNil(t, e.ReimbursedAt)

		err = e.MarkReimbursed(date)
		assert.Contains(t, err.Error(), "already been reimbursed")
	})

	t.Run("reimbursed amount is frozen", func(t *testing.T) {
		e, _ := NewExpense(partnerID, decimal.NewFromInt(10), date, "")
		require.NoError(t, e.MarkReimbursed(date))
		assert.Error(t, e.Update(decimal.NewFromInt(11), date, ""))
		assert.NoError(t, e.Update(decimal.NewFromInt(10), date, "corrected note"))
	})

	t.Run("rejects invalid amount", func(t *testing.T) {
		_, err := NewExpense(partnerID, decimal.Zero, date, "")
		assert.Error(t, err)
	})
}

func TestComputeExpenseSummary(t *testing.T) {
	p, _ := NewPartner("A", decimal.NewFromInt(50))
	date := time.Now()

	e1, _ := NewExpense(p.ID, decimal.NewFromInt(100), date, "")
	e2, _ := NewExpense(p.ID, decimal.RequireFromString("25.25"), date, "")
	require.NoError(t, e2.MarkReimbursed(date))

	s := ComputeExpenseSummary(p, []Expense{*e1, *e2})
	assert.Equal(t, 2, s.ExpenseCount)
	assert.Equal(t, "125.25", s.Total.StringFixed(2))
	assert.Equal(t, "25.25", s.Reimbursed.StringFixed(2))
	assert.Equal(t, "100.00", s.Outstanding.StringFixed(2))
}
