package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomerPayment(t *testing.T) {
	customerID := uuid.New()
	date := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	t.Run("defaults method to bank transfer", func(t *testing.T) {
		p, err := NewCustomerPayment(customerID, dec("10"), date, "")
		require.NoError(t, err)
		assert.Equal(t, PaymentMethodBankTransfer, p.Method)
	})

	t.Run("rejects unknown method", func(t *testing.T) {
		_, err := NewCustomerPayment(customerID, dec("10"), date, PaymentMethod("crypto"))
		assert.Error(t, err)
	})

	t.Run("rejects zero date", func(t *testing.T) {
		_, err := NewCustomerPayment(customerID, dec("10"), time.Time{}, PaymentMethodCash)
		assert.Error(t, err)
	})
}

func TestCustomerPayment_LinkInvoice(t *testing.T) {
	customerID := uuid.New()
	projectID := uuid.New()
	date := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	inv, err := NewCustomerInvoice(customerID, "INV-1", dec("100"), date)
	require.NoError(t, err)
	inv.SetProject(&projectID)

	t.Run("inherits project from invoice", func(t *testing.T) {
		p, _ := NewCustomerPayment(customerID, dec("10"), date, PaymentMethodCash)
		require.NoError(t, p.LinkInvoice(inv))
		assert.Equal(t, inv.ID, *p.InvoiceID)
		assert.Equal(t, projectID, *p.ProjectID)
	})

	t.Run("rejects invoice of another customer", func(t *testing.T) {
		p, _ := NewCustomerPayment(uuid.New(), dec("10"), date, PaymentMethodCash)
		err := p.LinkInvoice(inv)
		assert.Contains(t, err.Error(), "different customer")
	})
}
