package handler

import (
	"clientportal/internal/catalog"
	"clientportal/internal/service"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"client@acme.com"`
	Password string `json:"password" binding:"required" example:"securepassword123"`
}

// RefreshRequest represents the token refresh request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// LogoutRequest represents the optional logout request body.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// ForgotPasswordRequest represents the forgot password request body.
type ForgotPasswordRequest struct {
	Email       string `json:"email" binding:"required" example:"client@acme.com"`
	RedirectURL string `json:"redirect_url" example:"https://portal.example.com/reset-password"`
}

// ResetPasswordRequest represents the reset password request body.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	NewPassword string `json:"new_password" binding:"required" example:"newsecurepassword123"`
}

// --- Response Types ---

// MessageData is the payload of endpoints that only confirm an action.
type MessageData struct {
	Message string `json:"message" example:"signed out"`
}

// KYCChecklistResponse is the KYC checklist with its progress counts.
type KYCChecklistResponse struct {
	Slots    []service.KYCSlotView `json:"slots"`
	Progress service.KYCProgress   `json:"progress"`
}

// FinancialCategoriesResponse lists the upload categories and selectable years.
type FinancialCategoriesResponse struct {
	Categories []catalog.CategoryInfo `json:"categories"`
	Years      []string               `json:"years" example:"2025,2024,2023"`
}

// PlaceholderData is returned by sections that are not available yet.
type PlaceholderData struct {
	Items   []string `json:"items"`
	Message string   `json:"message" example:"Coming soon"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
	Notice  *NoticeBody `json:"notice,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool        `json:"success" example:"false"`
	Error   *APIError   `json:"error"`
	Notice  *NoticeBody `json:"notice"`
}

// NoticeBody documents the transient message attached to responses.
type NoticeBody struct {
	Level          string `json:"level" example:"success" enums:"success,error,warning"`
	Message        string `json:"message" example:"Passport uploaded successfully! Awaiting verification."`
	DismissAfterMS int64  `json:"dismiss_after_ms" example:"5000"`
}
