package response

import (
	"errors"
	"net/http"

	"github.com/ceavinrufus/stay-backend/internal/domain"
	"github.com/gin-gonic/gin"
)

// envelope is the standard JSON response shape.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errBody    `json:"error,omitempty"`
	Meta    *pageMeta   `json:"meta,omitempty"`
}

type errBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type pageMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with items and pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, envelope{
		Success: true,
		Data:    items,
		Meta:    &pageMeta{Total: total, Page: page, Limit: limit},
	})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{
		Success: false,
		Error:   &errBody{Code: string(domain.CodeValidation), Message: message},
	})
}

// Unauthorized writes a 401 response. Clients treat this as a signal to
// discard their local auth token.
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, envelope{
		Success: false,
		Error:   &errBody{Code: "UNAUTHORIZED", Message: message},
	})
}

// Error maps a domain error to the appropriate HTTP status. Unclassified
// errors become opaque 500s so internals do not leak to clients.
func Error(c *gin.Context, err error) {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		c.JSON(statusFor(domainErr.Code), envelope{
			Success: false,
			Error:   &errBody{Code: string(domainErr.Code), Message: domainErr.Message},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, envelope{
		Success: false,
		Error:   &errBody{Code: "INTERNAL_ERROR", Message: "internal server error"},
	})
}

func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict, domain.CodeInvalidState:
		return http.StatusConflict
	case domain.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
