package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcustomer "github.com/ledgerbook/backend/internal/application/customer"
	appfinance "github.com/ledgerbook/backend/internal/application/finance"
	"github.com/ledgerbook/backend/internal/domain/customer"
	"github.com/ledgerbook/backend/internal/domain/finance"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
	"github.com/ledgerbook/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type customerHandlerFixture struct {
	customers    *testutil.MockCustomerRepository
	projects     *testutil.MockProjectRepository
	invoices     *testutil.MockInvoiceRepository
	payments     *testutil.MockPaymentRepository
	transactions *testutil.MockTransactionRepository
	publisher    *testutil.RecordingPublisher
	router       *gin.Engine
}

func newCustomerHandlerFixture() *customerHandlerFixture {
	f := &customerHandlerFixture{
		customers:    new(testutil.MockCustomerRepository),
		projects:     new(testutil.MockProjectRepository),
		invoices:     new(testutil.MockInvoiceRepository),
		payments:     new(testutil.MockPaymentRepository),
		transactions: new(testutil.MockTransactionRepository),
		publisher:    testutil.NewRecordingPublisher(),
	}
	customerService := appcustomer.NewCustomerService(f.customers, f.projects, f.invoices, f.payments, f.transactions, f.publisher, nil)
	summaryService := appfinance.NewAccountSummaryService(f.customers, f.projects, f.invoices, f.payments, nil, nil, nil)
	h := NewCustomerHandler(customerService, summaryService)

	r := newTestRouter(asUser(uuid.New(), "user"))
	r.GET("/customers", h.List)
	r.POST("/customers", h.Create)
	r.GET("/customers/summaries", h.Summaries)
	r.GET("/customers/:id", h.GetByID)
	r.PUT("/customers/:id", h.Update)
	r.DELETE("/customers/:id", h.Delete)
	r.POST("/customers/:id/deactivate", h.Deactivate)
	r.GET("/customers/:id/summary", h.Summary)
	f.router = r
	return f
}

func handlerTestCustomer(t *testing.T, name string) *customer.Customer {
	t.Helper()
	c, err := customer.NewCustomer(name)
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func TestCustomerHandler_Create(t *testing.T) {
	f := newCustomerHandlerFixture()
	f.customers.On("ExistsByEmail", mock.Anything, "billing@acme.test", uuid.Nil).Return(false, nil)
	f.customers.On("Save", mock.Anything, mock.AnythingOfType("*customer.Customer")).Return(nil)

	w, resp := doJSON(t, f.router, http.MethodPost, "/customers", map[string]string{
		"name":  "Acme Ltd",
		"email": "billing@acme.test",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var created appcustomer.CustomerResponse
	dataAs(t, resp, &created)
	assert.Equal(t, "Acme Ltd", created.Name)
	assert.Equal(t, "active", created.Status)
	assert.Equal(t, []string{customer.EventTypeCustomerCreated}, f.publisher.EventTypes())
}

func TestCustomerHandler_CreateValidation(t *testing.T) {
	f := newCustomerHandlerFixture()

	w, resp := doJSON(t, f.router, http.MethodPost, "/customers", map[string]string{"email": "not-an-email"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	fields := make([]string, 0, len(resp.Error.Details))
	for _, d := range resp.Error.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"name", "email"}, fields)
	f.customers.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCustomerHandler_CreateDuplicateEmail(t *testing.T) {
	f := newCustomerHandlerFixture()
	f.customers.On("ExistsByEmail", mock.Anything, "billing@acme.test", uuid.Nil).Return(true, nil)

	w, resp := doJSON(t, f.router, http.MethodPost, "/customers", map[string]string{
		"name":  "Acme Ltd",
		"email": "billing@acme.test",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, resp.Error)
}

func TestCustomerHandler_GetByID(t *testing.T) {
	f := newCustomerHandlerFixture()
	c := handlerTestCustomer(t, "Acme Ltd")
	missing := uuid.New()
	f.customers.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	f.customers.On("FindByID", mock.Anything, missing).Return(nil, shared.NotFound("Customer"))

	t.Run("found", func(t *testing.T) {
		w, resp := doJSON(t, f.router, http.MethodGet, "/customers/"+c.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got appcustomer.CustomerResponse
		dataAs(t, resp, &got)
		assert.Equal(t, c.ID, got.ID)
	})

	t.Run("missing", func(t *testing.T) {
		w, resp := doJSON(t, f.router, http.MethodGet, "/customers/"+missing.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		w, resp := doJSON(t, f.router, http.MethodGet, "/customers/42", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid customer ID format", resp.Error.Message)
	})
}

func TestCustomerHandler_List(t *testing.T) {
	f := newCustomerHandlerFixture()
	a := handlerTestCustomer(t, "Acme Ltd")
	b := handlerTestCustomer(t, "Bolt & Co")
	f.customers.On("FindAll", mock.Anything, mock.Anything).Return([]customer.Customer{*a, *b}, nil)
	f.customers.On("Count", mock.Anything, mock.Anything).Return(int64(12), nil)

	w, resp := doJSON(t, f.router, http.MethodGet, "/customers?page=2&page_size=10&status=active", nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(12), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 10, resp.Meta.PageSize)
	assert.Equal(t, 2, resp.Meta.TotalPages)
	var items []appcustomer.CustomerResponse
	dataAs(t, resp, &items)
	assert.Len(t, items, 2)
}

func TestCustomerHandler_ListRejectsBadQuery(t *testing.T) {
	f := newCustomerHandlerFixture()

	for _, query := range []string{"page_size=500", "status=archived", "order_dir=sideways"} {
		t.Run(query, func(t *testing.T) {
			w, resp := doJSON(t, f.router, http.MethodGet, "/customers?"+query, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		})
	}
}

func TestCustomerHandler_DeleteWithDependencies(t *testing.T) {
	f := newCustomerHandlerFixture()
	c := handlerTestCustomer(t, "Acme Ltd")
	f.customers.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	f.invoices.On("CountByCustomer", mock.Anything, c.ID).Return(int64(2), nil)
	f.payments.On("CountByCustomer", mock.Anything, c.ID).Return(int64(0), nil)
	f.projects.On("CountByCustomer", mock.Anything, c.ID).Return(int64(1), nil)
	f.transactions.On("CountByCustomer", mock.Anything, c.ID).Return(int64(0), nil)

	w, resp := doJSON(t, f.router, http.MethodDelete, "/customers/"+c.ID.String(), nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeHasDependencies, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "2 invoices")
	f.customers.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCustomerHandler_Delete(t *testing.T) {
	f := newCustomerHandlerFixture()
	c := handlerTestCustomer(t, "Acme Ltd")
	f.customers.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	f.invoices.On("CountByCustomer", mock.Anything, c.ID).Return(int64(0), nil)
	f.payments.On("CountByCustomer", mock.Anything, c.ID).Return(int64(0), nil)
	f.projects.On("CountByCustomer", mock.Anything, c.ID).Return(int64(0), nil)
	f.transactions.On("CountByCustomer", mock.Anything, c.ID).Return(int64(0), nil)
	f.customers.On("Delete", mock.Anything, c.ID).Return(nil)

	w, _ := doJSON(t, f.router, http.MethodDelete, "/customers/"+c.ID.String(), nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	f.customers.AssertExpectations(t)
}

func TestCustomerHandler_Summary(t *testing.T) {
	f := newCustomerHandlerFixture()
	c := handlerTestCustomer(t, "Acme Ltd")
	inv, err := finance.NewCustomerInvoice(c.ID, "INV-202606-0001", decimal.NewFromInt(1000), c.CreatedAt)
	require.NoError(t, err)
	require.NoError(t, inv.ApplyPayment(decimal.NewFromInt(250)))
	f.customers.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	f.projects.On("CountByCustomer", mock.Anything, c.ID).Return(int64(1), nil).Maybe()
	f.projects.On("FindByCustomer", mock.Anything, c.ID).Return([]customer.Project{}, nil).Maybe()
	f.invoices.On("FindByCustomer", mock.Anything, c.ID).Return([]finance.CustomerInvoice{*inv}, nil)
	f.payments.On("FindByCustomer", mock.Anything, c.ID).Return([]finance.CustomerPayment{}, nil).Maybe()

	w, resp := doJSON(t, f.router, http.MethodGet, "/customers/"+c.ID.String()+"/summary", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var summary finance.AccountSummary
	dataAs(t, resp, &summary)
	assert.Equal(t, c.ID, summary.CustomerID)
	assert.True(t, summary.TotalInvoiced.Equal(decimal.NewFromInt(1000)), summary.TotalInvoiced.String())
}
