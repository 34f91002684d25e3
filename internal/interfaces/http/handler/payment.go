package handler

import (
	"github.com/gin-gonic/gin"
	appfinance "github.com/ledgerbook/backend/internal/application/finance"
)

// PaymentHandler handles customer payment HTTP requests
type PaymentHandler struct {
	BaseHandler
	paymentService *appfinance.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *appfinance.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// List godoc
// @ID           listPayments
// @Summary      List payments
// @Tags         payments
// @Produce      json
// @Param        page        query int    false "Page number" default(1)
// @Param        page_size   query int    false "Page size" default(20) maximum(100)
// @Param        search      query string false "Search by reference or notes"
// @Param        customer_id query string false "Filter by customer" format(uuid)
// @Param        invoice_id  query string false "Filter by invoice" format(uuid)
// @Param        project_id  query string false "Filter by project" format(uuid)
// @Param        method      query string false "Filter by method" Enums(cash, bank_transfer, card, check, other)
// @Param        date_from   query string false "Paid on or after" format(date)
// @Param        date_to     query string false "Paid on or before" format(date)
// @Success      200 {object} dto.Response{data=[]appfinance.PaymentResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	var filter appfinance.PaymentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.paymentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Record godoc
// @ID           recordPayment
// @Summary      Record a payment
// @Description  Record money received from a customer. When an invoice is given the payment is applied to it and may not exceed its remaining balance.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body appfinance.RecordPaymentRequest true "Payment"
// @Success      201 {object} dto.Response{data=appfinance.RecordPaymentResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	var req appfinance.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.paymentService.Record(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetByID godoc
// @ID           getPayment
// @Summary      Get a payment
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} dto.Response{data=appfinance.PaymentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/{id} [get]
func (h *PaymentHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "payment")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// Update godoc
// @ID           updatePayment
// @Summary      Update a payment
// @Description  Change a recorded payment. The linked invoice is re-settled with the new amount.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "Payment ID" format(uuid)
// @Param        request body appfinance.UpdatePaymentRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=appfinance.RecordPaymentResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/{id} [put]
func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "payment")
	if !ok {
		return
	}
	var req appfinance.UpdatePaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.paymentService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @ID           deletePayment
// @Summary      Delete a payment
// @Description  Delete a payment and take its amount back off the linked invoice
// @Tags         payments
// @Param        id path string true "Payment ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "payment")
	if !ok {
		return
	}

	if err := h.paymentService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
