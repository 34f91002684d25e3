package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ledgerbook/backend/internal/interfaces/http/handler"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
)

// Handlers are the HTTP handlers the API is assembled from
type Handlers struct {
	System      *handler.SystemHandler
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	ActivityLog *handler.ActivityLogHandler
	Customer    *handler.CustomerHandler
	Project     *handler.ProjectHandler
	Invoice     *handler.InvoiceHandler
	Payment     *handler.PaymentHandler
	Partner     *handler.PartnerHandler
	Expense     *handler.ExpenseHandler
	Category    *handler.CategoryHandler
	Transaction *handler.TransactionHandler
	Report      *handler.ReportHandler
	File        *handler.FileHandler
}

// APIConfig holds the middleware shared by the route groups
type APIConfig struct {
	// Authenticate validates the bearer token. Required.
	Authenticate gin.HandlerFunc
	// AuthRateLimit throttles login and refresh. Optional.
	AuthRateLimit gin.HandlerFunc
	// MaxBodySize caps JSON bodies. Uploads use the file handler's own limit.
	MaxBodySize int64
}

// RegisterAPI mounts /health and every /api/v1 route on engine
func RegisterAPI(engine *gin.Engine, h Handlers, cfg APIConfig) *Router {
	engine.GET("/health", h.System.Health)

	jsonLimit := middleware.BodyLimit(cfg.MaxBodySize)
	protected := func(name, prefix string) *DomainGroup {
		return NewDomainGroup(name, prefix).Use(cfg.Authenticate, jsonLimit)
	}

	throttle := cfg.AuthRateLimit
	if throttle == nil {
		throttle = func(c *gin.Context) { c.Next() }
	}
	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", throttle, jsonLimit, h.Auth.Login)
	authRoutes.POST("/refresh", throttle, jsonLimit, h.Auth.Refresh)
	authRoutes.POST("/logout", cfg.Authenticate, jsonLimit, h.Auth.Logout)
	authRoutes.GET("/me", cfg.Authenticate, h.Auth.Me)
	authRoutes.PUT("/password", cfg.Authenticate, jsonLimit, h.Auth.ChangePassword)

	customerRoutes := protected("customer", "/customers")
	customerRoutes.GET("", h.Customer.List)
	customerRoutes.POST("", h.Customer.Create)
	customerRoutes.GET("/summaries", h.Customer.Summaries)
	customerRoutes.GET("/:id", h.Customer.GetByID)
	customerRoutes.PUT("/:id", h.Customer.Update)
	customerRoutes.DELETE("/:id", h.Customer.Delete)
	customerRoutes.GET("/:id/summary", h.Customer.Summary)
	customerRoutes.POST("/:id/activate", h.Customer.Activate)
	customerRoutes.POST("/:id/deactivate", h.Customer.Deactivate)

	projectRoutes := protected("project", "/projects")
	projectRoutes.GET("", h.Project.List)
	projectRoutes.POST("", h.Project.Create)
	projectRoutes.GET("/:id", h.Project.GetByID)
	projectRoutes.PUT("/:id", h.Project.Update)
	projectRoutes.PUT("/:id/status", h.Project.ChangeStatus)
	projectRoutes.DELETE("/:id", h.Project.Delete)

	invoiceRoutes := protected("invoice", "/invoices")
	invoiceRoutes.GET("", h.Invoice.List)
	invoiceRoutes.POST("", h.Invoice.Create)
	invoiceRoutes.GET("/:id", h.Invoice.GetByID)
	invoiceRoutes.PUT("/:id", h.Invoice.Update)
	invoiceRoutes.DELETE("/:id", h.Invoice.Delete)

	paymentRoutes := protected("payment", "/payments")
	paymentRoutes.GET("", h.Payment.List)
	paymentRoutes.POST("", h.Payment.Record)
	paymentRoutes.GET("/:id", h.Payment.GetByID)
	paymentRoutes.PUT("/:id", h.Payment.Update)
	paymentRoutes.DELETE("/:id", h.Payment.Delete)

	partnerRoutes := protected("partner", "/partners")
	partnerRoutes.GET("", h.Partner.List)
	partnerRoutes.POST("", h.Partner.Create)
	partnerRoutes.GET("/summaries", h.Partner.Summaries)
	partnerRoutes.GET("/:id", h.Partner.GetByID)
	partnerRoutes.PUT("/:id", h.Partner.Update)
	partnerRoutes.DELETE("/:id", h.Partner.Delete)
	partnerRoutes.GET("/:id/summary", h.Partner.Summary)

	expenseRoutes := protected("partner-expense", "/partner-expenses")
	expenseRoutes.GET("", h.Expense.List)
	expenseRoutes.POST("", h.Expense.Create)
	expenseRoutes.GET("/:id", h.Expense.GetByID)
	expenseRoutes.PUT("/:id", h.Expense.Update)
	expenseRoutes.POST("/:id/reimburse", h.Expense.Reimburse)
	expenseRoutes.DELETE("/:id", h.Expense.Delete)

	categoryRoutes := protected("category", "/categories")
	categoryRoutes.GET("", h.Category.List)
	categoryRoutes.POST("", h.Category.Create)
	categoryRoutes.GET("/:id", h.Category.GetByID)
	categoryRoutes.PUT("/:id", h.Category.Update)
	categoryRoutes.DELETE("/:id", h.Category.Delete)

	transactionRoutes := protected("transaction", "/transactions")
	transactionRoutes.GET("", h.Transaction.List)
	transactionRoutes.POST("", h.Transaction.Create)
	transactionRoutes.GET("/:id", h.Transaction.GetByID)
	transactionRoutes.PUT("/:id", h.Transaction.Update)
	transactionRoutes.DELETE("/:id", h.Transaction.Delete)

	reportRoutes := protected("report", "/reports")
	reportRoutes.GET("/profit", h.Report.Profit)
	reportRoutes.GET("/monthly", h.Report.Monthly)
	reportRoutes.GET("/categories", h.Report.Categories)
	reportRoutes.GET("/dashboard", h.Report.Dashboard)

	fileRoutes := NewDomainGroup("file", "/files").Use(cfg.Authenticate)
	fileRoutes.GET("", h.File.List)
	fileRoutes.POST("", middleware.BodyLimit(h.File.BodyLimit()), h.File.Upload)
	fileRoutes.GET("/:id", h.File.GetByID)
	fileRoutes.GET("/:id/url", h.File.URL)
	fileRoutes.GET("/:id/content", h.File.Content)
	fileRoutes.DELETE("/:id", h.File.Delete)

	activityRoutes := protected("activity-log", "/activity-logs")
	activityRoutes.GET("", h.ActivityLog.List)

	userRoutes := protected("user", "/users").Use(middleware.RequireAdmin())
	userRoutes.GET("", h.User.List)
	userRoutes.POST("", h.User.Create)
	userRoutes.GET("/:id", h.User.GetByID)
	userRoutes.PUT("/:id", h.User.Update)
	userRoutes.DELETE("/:id", h.User.Delete)
	userRoutes.PUT("/:id/role", h.User.ChangeRole)
	userRoutes.POST("/:id/activate", h.User.Activate)
	userRoutes.POST("/:id/deactivate", h.User.Deactivate)
	userRoutes.POST("/:id/reset-password", h.User.ResetPassword)

	systemRoutes := protected("system", "/system")
	systemRoutes.GET("/info", h.System.Info)

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(
		authRoutes,
		customerRoutes,
		projectRoutes,
		invoiceRoutes,
		paymentRoutes,
		partnerRoutes,
		expenseRoutes,
		categoryRoutes,
		transactionRoutes,
		reportRoutes,
		fileRoutes,
		activityRoutes,
		userRoutes,
		systemRoutes,
	)
	r.Setup()
	return r
}
