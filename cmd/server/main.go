package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"clientportal/internal/catalog"
	"clientportal/internal/config"
	"clientportal/internal/docname"
	"clientportal/internal/domain"
	"clientportal/internal/email/noop"
	"clientportal/internal/email/ses"
	eventsmemory "clientportal/internal/events/memory"
	eventsredis "clientportal/internal/events/redis"
	"clientportal/internal/handler"
	"clientportal/internal/middleware"
	"clientportal/internal/port"
	"clientportal/internal/redis"
	"clientportal/internal/repository/postgres"
	"clientportal/internal/revocation"
	"clientportal/internal/router"
	"clientportal/internal/service"
	s3storage "clientportal/internal/storage/s3"
	"clientportal/internal/workflow"
)

// @title Client Portal API
// @version 1.0
// @description KYC and financial document portal for clients and reviewers.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	domain.NoticeDismissMS = cfg.UI.NoticeMS
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Redis is optional; without it events and revocations stay in-process
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	var (
		broker port.StatusBroker
		trl    port.TokenRevocationList
	)
	if redisClient != nil {
		defer redisClient.Close()
		broker = eventsredis.NewBroker(redisClient.Client)
		trl = revocation.NewRedisTRL(redisClient.Client)
		log.Printf("Redis connected: status events and token revocation are shared")
	} else {
		broker = eventsmemory.NewBroker()
		trl = revocation.NewMemoryTRL()
		log.Printf("WARNING: Redis not configured; status events and token revocation are in-process only")
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	kycRepo := postgres.NewKYCDocumentRepo(db)
	financialRepo := postgres.NewFinancialDocumentRepo(db)
	profileRepo := postgres.NewProfileRepo(db)
	metricsRepo := postgres.NewFinancialDataRepo(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)

	// Initialize storage
	objectStorage, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize email sender
	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.FrontendURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
		log.Printf("Email provider: SES (region=%s, from=%s)", cfg.Email.Region, cfg.Email.FromAddress)
	default:
		emailSender = noop.NewNoopSender()
		log.Printf("Email provider: noop (emails will be logged, not sent)")
	}

	// Document domains
	cat := catalog.Default()
	parser := docname.NewParser(cat, docname.DefaultRules)
	kycAdapter := service.NewDocumentAdapter(kycRepo, objectStorage, broker, parser, cat, service.AdapterConfig{
		Domain:          domain.DomainKYC,
		Bucket:          cfg.S3.KYCBucket,
		PresignExpiry:   cfg.S3.PresignExpiry,
		SignConcurrency: cfg.S3.SignConcurrency,
		CacheControl:    cfg.Uploads.CacheControl,
	})
	financialAdapter := service.NewDocumentAdapter(financialRepo, objectStorage, broker, parser, cat, service.AdapterConfig{
		Domain:          domain.DomainFinancial,
		Bucket:          cfg.S3.FinancialBucket,
		PresignExpiry:   cfg.S3.PresignExpiry,
		SignConcurrency: cfg.S3.SignConcurrency,
		CacheControl:    cfg.Uploads.CacheControl,
	})

	gate := workflow.NewGate(cfg.Workflow.ConfirmTTL, workflow.WithOperationTimeout(cfg.Workflow.OperationTimeout))
	go gate.Run(ctx, cfg.Workflow.SweepInterval)

	// Initialize services
	authSvc := service.NewAuthService(userRepo, trl, cfg.JWT)
	passwordResetSvc := service.NewPasswordResetService(userRepo, emailSender, cfg.JWT, cfg.Email.FrontendURL, cfg.CORS.AllowedOrigins)
	kycSvc := service.NewKYCService(kycAdapter, kycRepo, gate, cat, cfg.Uploads.KYCMaxBytes)
	financialSvc := service.NewFinancialService(financialAdapter, gate, cat, cfg.Uploads.FinancialMaxBytes, cfg.Uploads.AllowedYears)
	ticketSvc := service.NewTicketService(gate)
	reviewSvc := service.NewReviewService(kycRepo, userRepo, broker, emailSender, cat)
	dashboardSvc := service.NewDashboardService(metricsRepo, profileRepo, kycRepo, cat)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, objectStorage, cfg.S3.InvoiceBucket, cfg.S3.PresignExpiry, cfg.S3.SignConcurrency)
	profileSvc := service.NewProfileService(profileRepo)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc, passwordResetSvc)
	kycH := handler.NewKYCHandler(kycSvc)
	financialH := handler.NewFinancialHandler(financialSvc)
	uploadH := handler.NewUploadHandler(ticketSvc)
	reviewH := handler.NewReviewHandler(reviewSvc)
	clientH := handler.NewClientHandler(dashboardSvc, invoiceSvc, profileSvc)
	healthH := handler.NewHealthHandler(db, redisClient)

	// Setup router
	authLimiter := middleware.NewIPRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst)
	r := router.Setup(authSvc, authLimiter, cfg.CORS.AllowedOrigins,
		authH, kycH, financialH, uploadH, reviewH, clientH, healthH)

	srv := newServer(ctx, cfg.Server, r)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Printf("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Printf("Server stopped")
	return nil
}

// newServer builds the HTTP server. Request contexts derive from ctx, so
// cancelling it ends open event streams and lets Shutdown finish promptly.
func newServer(ctx context.Context, cfg config.ServerConfig, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}
