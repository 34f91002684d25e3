package handler

import (
	"github.com/gin-gonic/gin"
	appledger "github.com/ledgerbook/backend/internal/application/ledger"
)

// TransactionHandler handles ledger transaction HTTP requests
type TransactionHandler struct {
	BaseHandler
	transactionService *appledger.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *appledger.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// List godoc
// @ID           listTransactions
// @Summary      List transactions
// @Tags         transactions
// @Produce      json
// @Param        page        query int    false "Page number" default(1)
// @Param        page_size   query int    false "Page size" default(20) maximum(100)
// @Param        search      query string false "Search by description or reference"
// @Param        type        query string false "Filter by type" Enums(income, expense)
// @Param        category_id query string false "Filter by category" format(uuid)
// @Param        customer_id query string false "Filter by customer" format(uuid)
// @Param        project_id  query string false "Filter by project" format(uuid)
// @Param        date_from   query string false "On or after" format(date)
// @Param        date_to     query string false "On or before" format(date)
// @Success      200 {object} dto.Response{data=[]appledger.TransactionResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	var filter appledger.TransactionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.transactionService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Create godoc
// @ID           createTransaction
// @Summary      Record a transaction
// @Description  Record income or an expense. The category, when given, must have the same type.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        request body appledger.CreateTransactionRequest true "Transaction"
// @Success      201 {object} dto.Response{data=appledger.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var req appledger.CreateTransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tx, err := h.transactionService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tx)
}

// GetByID godoc
// @ID           getTransaction
// @Summary      Get a transaction
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} dto.Response{data=appledger.TransactionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "transaction")
	if !ok {
		return
	}

	tx, err := h.transactionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Update godoc
// @ID           updateTransaction
// @Summary      Update a transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id      path string                             true "Transaction ID" format(uuid)
// @Param        request body appledger.UpdateTransactionRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=appledger.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "transaction")
	if !ok {
		return
	}
	var req appledger.UpdateTransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tx, err := h.transactionService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Delete godoc
// @ID           deleteTransaction
// @Summary      Delete a transaction
// @Tags         transactions
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "transaction")
	if !ok {
		return
	}

	if err := h.transactionService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
