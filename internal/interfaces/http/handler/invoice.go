package handler

import (
	"github.com/gin-gonic/gin"
	appfinance "github.com/ledgerbook/backend/internal/application/finance"
)

// InvoiceHandler handles customer invoice HTTP requests
type InvoiceHandler struct {
	BaseHandler
	invoiceService *appfinance.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *appfinance.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Description  Retrieve a paginated list of invoices. overdue=true keeps unpaid invoices past their due date.
// @Tags         invoices
// @Produce      json
// @Param        page        query int     false "Page number" default(1)
// @Param        page_size   query int     false "Page size" default(20) maximum(100)
// @Param        search      query string  false "Search by invoice number or description"
// @Param        customer_id query string  false "Filter by customer" format(uuid)
// @Param        project_id  query string  false "Filter by project" format(uuid)
// @Param        status      query string  false "Filter by status" Enums(unpaid, partially_paid, paid)
// @Param        overdue     query boolean false "Only overdue invoices"
// @Param        date_from   query string  false "Issued on or after" format(date)
// @Param        date_to     query string  false "Issued on or before" format(date)
// @Success      200 {object} dto.Response{data=[]appfinance.InvoiceResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter appfinance.InvoiceListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Create godoc
// @ID           createInvoice
// @Summary      Issue an invoice
// @Description  Issue an invoice to a customer. An omitted invoice number is generated.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body appfinance.CreateInvoiceRequest true "Invoice"
// @Success      201 {object} dto.Response{data=appfinance.InvoiceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req appfinance.CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// GetByID godoc
// @ID           getInvoice
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=appfinance.InvoiceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Update godoc
// @ID           updateInvoice
// @Summary      Update an invoice
// @Description  The amount cannot drop below what has already been paid
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "Invoice ID" format(uuid)
// @Param        request body appfinance.UpdateInvoiceRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=appfinance.InvoiceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "invoice")
	if !ok {
		return
	}
	var req appfinance.UpdateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Delete godoc
// @ID           deleteInvoice
// @Summary      Delete an invoice
// @Description  Delete an invoice with no payments applied to it
// @Tags         invoices
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "invoice")
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
