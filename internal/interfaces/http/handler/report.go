package handler

import (
	"github.com/gin-gonic/gin"
	appreport "github.com/ledgerbook/backend/internal/application/report"
)

// ReportHandler serves the financial reports
type ReportHandler struct {
	BaseHandler
	reportService *appreport.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *appreport.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// MonthlyTrendQuery selects the year of the monthly trend
type MonthlyTrendQuery struct {
	Year int `form:"year" binding:"omitempty,min=1900,max=9999"`
}

// Profit godoc
// @ID           getProfitSummary
// @Summary      Profit summary
// @Description  Income, expense and profit for a period. Defaults to the current month.
// @Tags         reports
// @Produce      json
// @Param        date_from query string false "Period start" format(date)
// @Param        date_to   query string false "Period end" format(date)
// @Success      200 {object} dto.Response{data=appreport.ProfitSummaryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/profit [get]
func (h *ReportHandler) Profit(c *gin.Context) {
	var filter appreport.PeriodFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	summary, err := h.reportService.ProfitSummary(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Monthly godoc
// @ID           getMonthlyTrend
// @Summary      Monthly trend
// @Description  Twelve months of income, expense and profit. Defaults to the current year.
// @Tags         reports
// @Produce      json
// @Param        year query int false "Calendar year"
// @Success      200 {object} dto.Response{data=[]appreport.MonthlyTrendRow}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/monthly [get]
func (h *ReportHandler) Monthly(c *gin.Context) {
	var query MonthlyTrendQuery
	if !h.bindQuery(c, &query) {
		return
	}

	rows, err := h.reportService.MonthlyTrend(c.Request.Context(), query.Year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Categories godoc
// @ID           getCategoryBreakdown
// @Summary      Category breakdown
// @Description  Totals per category for one entry type, largest first
// @Tags         reports
// @Produce      json
// @Param        type      query string false "Entry type" Enums(income, expense) default(expense)
// @Param        date_from query string false "Period start" format(date)
// @Param        date_to   query string false "Period end" format(date)
// @Success      200 {object} dto.Response{data=[]appreport.CategoryBreakdownRow}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/categories [get]
func (h *ReportHandler) Categories(c *gin.Context) {
	var filter appreport.CategoryBreakdownFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	rows, err := h.reportService.CategoryBreakdown(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Dashboard godoc
// @ID           getDashboard
// @Summary      Dashboard
// @Description  This month's profit with the receivables position
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=appreport.DashboardResponse}
// @Security     BearerAuth
// @Router       /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.reportService.Dashboard(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}
