package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"clientportal/internal/domain"
	"clientportal/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool           `json:"success"`
	Data    interface{}    `json:"data,omitempty"`
	Error   *APIError      `json:"error,omitempty"`
	Meta    *PagMeta       `json:"meta,omitempty"`
	Notice  *domain.Notice `json:"notice,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondWithNotice sends a success response carrying a notice for the client.
func RespondWithNotice(c *gin.Context, status int, data interface{}, notice *domain.Notice) {
	c.JSON(status, APIResponse{Success: true, Data: data, Notice: notice})
}

// RespondError sends an error response with the given status code. The
// message doubles as the error notice.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
		Notice:  domain.NewNotice(domain.NoticeError, msg),
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		switch {
		case errors.Is(ve.Err, domain.ErrFileTooLarge):
			return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", ve.Message
		case errors.Is(ve.Err, domain.ErrUnsupportedFileType):
			return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", ve.Message
		}
		return http.StatusBadRequest, "VALIDATION_ERROR", ve.Message
	}

	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		return http.StatusUnauthorized, "AUTH_REQUIRED", "Please sign in to continue"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"
	case errors.Is(err, domain.ErrUserInactive):
		return http.StatusForbidden, "USER_INACTIVE", "user is inactive"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED", "Too many attempts. Please wait a minute and try again"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "DUPLICATE_EMAIL", "email already exists"
	case errors.Is(err, domain.ErrPasswordResetTokenInvalid):
		return http.StatusUnauthorized, "INVALID_RESET_TOKEN", "password reset token is invalid or has already been used"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "Unsupported file type."
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR", "invalid request"
	case errors.Is(err, domain.ErrSlotBusy):
		return http.StatusConflict, "SLOT_BUSY", "Another upload or delete is in progress for this document"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION", "This document cannot be changed in its current state"
	case errors.Is(err, domain.ErrTicketExpired):
		return http.StatusGone, "TICKET_EXPIRED", "This action has expired. Please select the file again"
	case errors.Is(err, domain.ErrPartialFailure):
		return http.StatusInternalServerError, "PARTIAL_FAILURE", "The file could not be saved. Please try again"
	case errors.Is(err, domain.ErrStorageWrite):
		return http.StatusBadGateway, "STORAGE_WRITE_FAILED", "Failed to upload document. Please try again"
	case errors.Is(err, domain.ErrStorageRead):
		return http.StatusBadGateway, "STORAGE_READ_FAILED", "Failed to reach document storage. Please try again"
	case errors.Is(err, domain.ErrRowWrite):
		return http.StatusInternalServerError, "ROW_WRITE_FAILED", "Failed to save document record. Please try again"
	case errors.Is(err, domain.ErrRowRead):
		return http.StatusInternalServerError, "ROW_READ_FAILED", "Failed to load documents. Please try again"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT", "The operation took too long. Please try again"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// requireSession returns the caller's session. Returns false if there is
// none (error response already written).
func requireSession(c *gin.Context) (domain.Session, bool) {
	session, err := middleware.GetSession(c)
	if err != nil {
		HandleError(c, err)
		return domain.Session{}, false
	}
	return session, true
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get(middleware.ContextKeyRequestID)
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}

// bindError answers a request body that failed gin binding.
func bindError(c *gin.Context, err error) {
	RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
}
