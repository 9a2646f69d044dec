package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "clientportal/docs" // registers the swagger docs
	"clientportal/internal/domain"
	"clientportal/internal/handler"
	"clientportal/internal/middleware"
	"clientportal/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	authLimiter *middleware.IPRateLimiter,
	corsOrigins []string,
	authH *handler.AuthHandler,
	kycH *handler.KYCHandler,
	financialH *handler.FinancialHandler,
	uploadH *handler.UploadHandler,
	reviewH *handler.ReviewHandler,
	clientH *handler.ClientHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks, metrics and docs
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", middleware.RateLimit(authLimiter), authH.Login)
	auth.POST("/refresh", authH.RefreshToken)
	auth.POST("/forgot-password", middleware.RateLimit(authLimiter), authH.ForgotPassword)
	auth.POST("/reset-password", authH.ResetPassword)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	protected.POST("/auth/logout", authH.Logout)
	protected.GET("/auth/me", authH.Me)

	// Client views
	protected.GET("/dashboard", clientH.Dashboard)
	protected.GET("/financial-overview", clientH.FinancialOverview)
	protected.GET("/invoices", clientH.Invoices)
	protected.GET("/profile", clientH.GetProfile)
	protected.PUT("/profile", clientH.SaveProfile)
	protected.GET("/services", clientH.Services)
	protected.GET("/forms", clientH.Forms)

	// KYC documents
	kyc := protected.Group("/kyc-documents")
	kyc.GET("", kycH.Checklist)
	kyc.GET("/events", kycH.Events)
	kyc.POST("/:slot/uploads", kycH.Upload)
	kyc.DELETE("/:slot", kycH.Delete)

	// Financial documents
	financial := protected.Group("/financial-documents")
	financial.GET("", financialH.List)
	financial.GET("/categories", financialH.Categories)
	financial.GET("/export", financialH.Export)
	financial.POST("/uploads", financialH.Upload)
	financial.DELETE("/:id", financialH.Delete)

	// Staged uploads and deletes
	uploads := protected.Group("/uploads")
	uploads.GET("/:ticket", uploadH.Get)
	uploads.POST("/:ticket/confirm", uploadH.Confirm)
	uploads.DELETE("/:ticket", uploadH.Cancel)

	// Reviewer routes
	review := protected.Group("/review")
	review.Use(middleware.RequireRole(domain.RoleReviewer))
	review.GET("/kyc-documents", reviewH.ListPending)
	review.PUT("/kyc-documents/:owner_id/:slot", reviewH.UpdateStatus)

	return r
}
