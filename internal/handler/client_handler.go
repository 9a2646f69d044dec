package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clientportal/internal/domain"
	"clientportal/internal/service"
)

// ClientHandler serves the read-mostly client views: dashboard, financial
// overview, invoices and profile.
type ClientHandler struct {
	dashboardService service.DashboardService
	invoiceService   service.InvoiceService
	profileService   service.ProfileService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(
	dashboardService service.DashboardService,
	invoiceService service.InvoiceService,
	profileService service.ProfileService,
) *ClientHandler {
	return &ClientHandler{
		dashboardService: dashboardService,
		invoiceService:   invoiceService,
		profileService:   profileService,
	}
}

// Dashboard handles GET /api/v1/dashboard
// @Summary Client dashboard
// @Description Session email, financial metrics, profile and KYC progress. Metrics and profile are null until recorded.
// @Tags client
// @Produce json
// @Success 200 {object} Response{data=service.Dashboard}
// @Failure 401 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /dashboard [get]
func (h *ClientHandler) Dashboard(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.Get(c.Request.Context(), session)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, dashboard)
}

// FinancialOverview handles GET /api/v1/financial-overview
// @Summary Financial metrics of the signed-in client
// @Tags client
// @Produce json
// @Success 200 {object} Response{data=domain.FinancialMetrics}
// @Failure 401 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /financial-overview [get]
func (h *ClientHandler) FinancialOverview(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	m, err := h.dashboardService.FinancialOverview(c.Request.Context(), session.UserID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, m)
}

// Invoices handles GET /api/v1/invoices
// @Summary Invoices addressed to the signed-in client
// @Description Approved, client-visible invoices, newest first, each with a signed PDF URL when available.
// @Tags client
// @Produce json
// @Success 200 {object} Response{data=[]domain.Invoice}
// @Failure 401 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /invoices [get]
func (h *ClientHandler) Invoices(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	invoices, err := h.invoiceService.List(c.Request.Context(), session.Email)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, invoices)
}

// GetProfile handles GET /api/v1/profile
// @Summary Profile of the signed-in client
// @Tags client
// @Produce json
// @Success 200 {object} Response{data=domain.UserProfile}
// @Failure 401 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /profile [get]
func (h *ClientHandler) GetProfile(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	profile, err := h.profileService.Get(c.Request.Context(), session.UserID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, profile)
}

// SaveProfile handles PUT /api/v1/profile
// @Summary Create or update the profile of the signed-in client
// @Tags client
// @Accept json
// @Produce json
// @Param body body service.ProfileInput true "Profile"
// @Success 200 {object} Response{data=domain.UserProfile}
// @Failure 400 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /profile [put]
func (h *ClientHandler) SaveProfile(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var input service.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	profile, err := h.profileService.Save(c.Request.Context(), session.UserID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondWithNotice(c, http.StatusOK, profile, domain.NewNotice(domain.NoticeSuccess, "Profile saved successfully!"))
}

// Services handles GET /api/v1/services
// @Summary Services offered to the client
// @Tags client
// @Produce json
// @Success 200 {object} Response{data=PlaceholderData}
// @Security BearerAuth
// @Router /services [get]
func (h *ClientHandler) Services(c *gin.Context) {
	RespondOK(c, PlaceholderData{Items: []string{}, Message: "Coming soon"})
}

// Forms handles GET /api/v1/forms
// @Summary Forms available to the client
// @Tags client
// @Produce json
// @Success 200 {object} Response{data=PlaceholderData}
// @Security BearerAuth
// @Router /forms [get]
func (h *ClientHandler) Forms(c *gin.Context) {
	RespondOK(c, PlaceholderData{Items: []string{}, Message: "Coming soon"})
}
