package handler

import (
	"github.com/gin-gonic/gin"
	apppartner "github.com/ledgerbook/backend/internal/application/partner"
)

// ExpenseHandler handles partner expense HTTP requests
type ExpenseHandler struct {
	BaseHandler
	expenseService *apppartner.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *apppartner.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// List godoc
// @ID           listPartnerExpenses
// @Summary      List partner expenses
// @Tags         partner-expenses
// @Produce      json
// @Param        page        query int     false "Page number" default(1)
// @Param        page_size   query int     false "Page size" default(20) maximum(100)
// @Param        search      query string  false "Search by description"
// @Param        partner_id  query string  false "Filter by partner" format(uuid)
// @Param        category_id query string  false "Filter by category" format(uuid)
// @Param        reimbursed  query boolean false "Filter by reimbursement state"
// @Param        date_from   query string  false "Spent on or after" format(date)
// @Param        date_to     query string  false "Spent on or before" format(date)
// @Success      200 {object} dto.Response{data=[]apppartner.ExpenseResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /partner-expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	var filter apppartner.ExpenseListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.expenseService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Create godoc
// @ID           createPartnerExpense
// @Summary      Record a partner expense
// @Tags         partner-expenses
// @Accept       json
// @Produce      json
// @Param        request body apppartner.CreateExpenseRequest true "Expense"
// @Success      201 {object} dto.Response{data=apppartner.ExpenseResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /partner-expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req apppartner.CreateExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// GetByID godoc
// @ID           getPartnerExpense
// @Summary      Get a partner expense
// @Tags         partner-expenses
// @Produce      json
// @Param        id path string true "Expense ID" format(uuid)
// @Success      200 {object} dto.Response{data=apppartner.ExpenseResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /partner-expenses/{id} [get]
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "expense")
	if !ok {
		return
	}

	expense, err := h.expenseService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Update godoc
// @ID           updatePartnerExpense
// @Summary      Update a partner expense
// @Tags         partner-expenses
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "Expense ID" format(uuid)
// @Param        request body apppartner.UpdateExpenseRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=apppartner.ExpenseResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /partner-expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "expense")
	if !ok {
		return
	}
	var req apppartner.UpdateExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Reimburse godoc
// @ID           reimbursePartnerExpense
// @Summary      Mark an expense reimbursed
// @Description  Mark the expense as paid back to the partner. reimbursed_at defaults to now.
// @Tags         partner-expenses
// @Accept       json
// @Produce      json
// @Param        id      path string                             true  "Expense ID" format(uuid)
// @Param        request body apppartner.ReimburseExpenseRequest false "Reimbursement date"
// @Success      200 {object} dto.Response{data=apppartner.ExpenseResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /partner-expenses/{id}/reimburse [post]
func (h *ExpenseHandler) Reimburse(c *gin.Context) {
	id, ok := h.pathID(c, "expense")
	if !ok {
		return
	}
	var req apppartner.ReimburseExpenseRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.MarkReimbursed(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Delete godoc
// @ID           deletePartnerExpense
// @Summary      Delete a partner expense
// @Tags         partner-expenses
// @Param        id path string true "Expense ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /partner-expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "expense")
	if !ok {
		return
	}

	if err := h.expenseService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
