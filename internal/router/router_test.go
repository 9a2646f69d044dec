package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"clientportal/internal/domain"
	"clientportal/internal/handler"
	"clientportal/internal/middleware"
	"clientportal/internal/router"
	"clientportal/internal/service"
	"clientportal/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(authSvc *mocks.MockAuthService) *gin.Engine {
	return router.Setup(
		authSvc,
		middleware.NewIPRateLimiter(10, 5),
		[]string{"https://portal.example.com"},
		handler.NewAuthHandler(authSvc, nil),
		handler.NewKYCHandler(new(mocks.MockKYCService)),
		handler.NewFinancialHandler(new(mocks.MockFinancialService)),
		handler.NewUploadHandler(new(mocks.MockTicketService)),
		handler.NewReviewHandler(new(mocks.MockReviewService)),
		handler.NewClientHandler(new(mocks.MockDashboardService), new(mocks.MockInvoiceService), new(mocks.MockProfileService)),
		handler.NewHealthHandler(nil, nil),
	)
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, http.NoBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestSetup_PublicEndpoints(t *testing.T) {
	r := newEngine(new(mocks.MockAuthService))

	assert.Equal(t, http.StatusOK, get(r, "/healthz", "").Code)

	w := get(r, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestSetup_ProtectedRoutesNeedSession(t *testing.T) {
	r := newEngine(new(mocks.MockAuthService))

	for _, path := range []string{
		"/api/v1/dashboard",
		"/api/v1/kyc-documents",
		"/api/v1/financial-documents",
		"/api/v1/invoices",
		"/api/v1/profile",
		"/api/v1/uploads/" + uuid.NewString(),
	} {
		assert.Equal(t, http.StatusUnauthorized, get(r, path, "").Code, path)
	}
}

func TestSetup_ReviewRequiresReviewerRole(t *testing.T) {
	authSvc := new(mocks.MockAuthService)
	authSvc.On("Authenticate", mock.Anything, "client-token").
		Return(&service.Claims{UserID: uuid.New(), Role: domain.RoleClient}, nil)

	r := newEngine(authSvc)
	w := get(r, "/api/v1/review/kyc-documents", "client-token")

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSetup_PlaceholderRoutes(t *testing.T) {
	authSvc := new(mocks.MockAuthService)
	authSvc.On("Authenticate", mock.Anything, "client-token").
		Return(&service.Claims{UserID: uuid.New(), Role: domain.RoleClient}, nil)

	r := newEngine(authSvc)

	assert.Equal(t, http.StatusOK, get(r, "/api/v1/services", "client-token").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/forms", "client-token").Code)
}
