package handler

import (
	"github.com/gin-gonic/gin"
	appcustomer "github.com/ledgerbook/backend/internal/application/customer"
	appfinance "github.com/ledgerbook/backend/internal/application/finance"
)

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	BaseHandler
	customerService *appcustomer.CustomerService
	summaryService  *appfinance.AccountSummaryService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(
	customerService *appcustomer.CustomerService,
	summaryService *appfinance.AccountSummaryService,
) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		summaryService:  summaryService,
	}
}

// List godoc
// @ID           listCustomers
// @Summary      List customers
// @Description  Retrieve a paginated list of customers
// @Tags         customers
// @Produce      json
// @Param        page       query int    false "Page number" default(1)
// @Param        page_size  query int    false "Page size" default(20) maximum(100)
// @Param        search     query string false "Search by name, email or phone"
// @Param        status     query string false "Filter by status" Enums(active, inactive)
// @Param        order_by   query string false "Sort field" default(created_at)
// @Param        order_dir  query string false "Sort direction" Enums(asc, desc) default(desc)
// @Success      200 {object} dto.Response{data=[]appcustomer.CustomerResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	var filter appcustomer.CustomerListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.customerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Create godoc
// @ID           createCustomer
// @Summary      Create a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body appcustomer.CreateCustomerRequest true "Customer"
// @Success      201 {object} dto.Response{data=appcustomer.CustomerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req appcustomer.CreateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// GetByID godoc
// @ID           getCustomer
// @Summary      Get a customer
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} dto.Response{data=appcustomer.CustomerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "customer")
	if !ok {
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Update godoc
// @ID           updateCustomer
// @Summary      Update a customer
// @Description  Partially update a customer. Omitted fields are left unchanged.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id      path string                            true "Customer ID" format(uuid)
// @Param        request body appcustomer.UpdateCustomerRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=appcustomer.CustomerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "customer")
	if !ok {
		return
	}
	var req appcustomer.UpdateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Delete godoc
// @ID           deleteCustomer
// @Summary      Delete a customer
// @Description  Delete a customer that has no projects, invoices, payments or transactions
// @Tags         customers
// @Param        id path string true "Customer ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "customer")
	if !ok {
		return
	}

	if err := h.customerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Activate godoc
// @ID           activateCustomer
// @Summary      Activate a customer
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} dto.Response{data=appcustomer.CustomerResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers/{id}/activate [post]
func (h *CustomerHandler) Activate(c *gin.Context) {
	id, ok := h.pathID(c, "customer")
	if !ok {
		return
	}

	customer, err := h.customerService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Deactivate godoc
// @ID           deactivateCustomer
// @Summary      Deactivate a customer
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} dto.Response{data=appcustomer.CustomerResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers/{id}/deactivate [post]
func (h *CustomerHandler) Deactivate(c *gin.Context) {
	id, ok := h.pathID(c, "customer")
	if !ok {
		return
	}

	customer, err := h.customerService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Summary godoc
// @ID           getCustomerSummary
// @Summary      Customer account summary
// @Description  Invoiced, paid and outstanding totals for one customer
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} dto.Response{data=finance.AccountSummary}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers/{id}/summary [get]
func (h *CustomerHandler) Summary(c *gin.Context) {
	id, ok := h.pathID(c, "customer")
	if !ok {
		return
	}

	summary, err := h.summaryService.GetAccountSummary(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Summaries godoc
// @ID           listCustomerSummaries
// @Summary      All customer account summaries
// @Description  One account summary per customer, largest outstanding balance first
// @Tags         customers
// @Produce      json
// @Success      200 {object} dto.Response{data=[]finance.AccountSummary}
// @Security     BearerAuth
// @Router       /customers/summaries [get]
func (h *CustomerHandler) Summaries(c *gin.Context) {
	summaries, err := h.summaryService.ListAccountSummaries(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summaries)
}
