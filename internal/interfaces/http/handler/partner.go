package handler

import (
	"github.com/gin-gonic/gin"
	apppartner "github.com/ledgerbook/backend/internal/application/partner"
)

// PartnerHandler handles partner HTTP requests
type PartnerHandler struct {
	BaseHandler
	partnerService *apppartner.PartnerService
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(partnerService *apppartner.PartnerService) *PartnerHandler {
	return &PartnerHandler{partnerService: partnerService}
}

// List godoc
// @ID           listPartners
// @Summary      List partners
// @Tags         partners
// @Produce      json
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20) maximum(100)
// @Param        search    query string false "Search by name or email"
// @Param        status    query string false "Filter by status" Enums(active, inactive)
// @Success      200 {object} dto.Response{data=[]apppartner.PartnerResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /partners [get]
func (h *PartnerHandler) List(c *gin.Context) {
	var filter apppartner.PartnerListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.partnerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Create godoc
// @ID           createPartner
// @Summary      Add a partner
// @Tags         partners
// @Accept       json
// @Produce      json
// @Param        request body apppartner.CreatePartnerRequest true "Partner"
// @Success      201 {object} dto.Response{data=apppartner.PartnerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /partners [post]
func (h *PartnerHandler) Create(c *gin.Context) {
	var req apppartner.CreatePartnerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	p, err := h.partnerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// GetByID godoc
// @ID           getPartner
// @Summary      Get a partner
// @Tags         partners
// @Produce      json
// @Param        id path string true "Partner ID" format(uuid)
// @Success      200 {object} dto.Response{data=apppartner.PartnerResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /partners/{id} [get]
func (h *PartnerHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "partner")
	if !ok {
		return
	}

	p, err := h.partnerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Update godoc
// @ID           updatePartner
// @Summary      Update a partner
// @Tags         partners
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "Partner ID" format(uuid)
// @Param        request body apppartner.UpdatePartnerRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=apppartner.PartnerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /partners/{id} [put]
func (h *PartnerHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "partner")
	if !ok {
		return
	}
	var req apppartner.UpdatePartnerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	p, err := h.partnerService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Delete godoc
// @ID           deletePartner
// @Summary      Delete a partner
// @Description  Delete a partner with no recorded expenses
// @Tags         partners
// @Param        id path string true "Partner ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /partners/{id} [delete]
func (h *PartnerHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "partner")
	if !ok {
		return
	}

	if err := h.partnerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Summary godoc
// @ID           getPartnerSummary
// @Summary      Partner expense summary
// @Description  Total, reimbursed and pending expense amounts for one partner
// @Tags         partners
// @Produce      json
// @Param        id path string true "Partner ID" format(uuid)
// @Success      200 {object} dto.Response{data=partner.ExpenseSummary}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /partners/{id}/summary [get]
func (h *PartnerHandler) Summary(c *gin.Context) {
	id, ok := h.pathID(c, "partner")
	if !ok {
		return
	}

	summary, err := h.partnerService.Summary(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Summaries godoc
// @ID           listPartnerSummaries
// @Summary      All partner expense summaries
// @Tags         partners
// @Produce      json
// @Success      200 {object} dto.Response{data=[]partner.ExpenseSummary}
// @Security     BearerAuth
// @Router       /partners/summaries [get]
func (h *PartnerHandler) Summaries(c *gin.Context) {
	summaries, err := h.partnerService.Summaries(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summaries)
}
