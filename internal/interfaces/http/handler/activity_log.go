package handler

import (
	"github.com/gin-gonic/gin"
	appidentity "github.com/ledgerbook/backend/internal/application/identity"
)

// ActivityLogHandler serves the audit trail
type ActivityLogHandler struct {
	BaseHandler
	activityService *appidentity.ActivityLogService
}

// NewActivityLogHandler creates a new ActivityLogHandler
func NewActivityLogHandler(activityService *appidentity.ActivityLogService) *ActivityLogHandler {
	return &ActivityLogHandler{activityService: activityService}
}

// List godoc
// @ID           listActivityLogs
// @Summary      List activity logs
// @Description  Who changed what and when, newest first
// @Tags         activity-logs
// @Produce      json
// @Param        page        query int    false "Page number" default(1)
// @Param        page_size   query int    false "Page size" default(20) maximum(100)
// @Param        search      query string false "Search in descriptions"
// @Param        user_id     query string false "Filter by user" format(uuid)
// @Param        entity_type query string false "Filter by record kind"
// @Param        entity_id   query string false "Filter by record" format(uuid)
// @Param        action      query string false "Filter by action" Enums(create, update, delete, login, logout, payment, upload)
// @Param        date_from   query string false "On or after" format(date)
// @Param        date_to     query string false "On or before" format(date)
// @Success      200 {object} dto.Response{data=[]appidentity.ActivityLogResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /activity-logs [get]
func (h *ActivityLogHandler) List(c *gin.Context) {
	var filter appidentity.ActivityLogListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.activityService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}
