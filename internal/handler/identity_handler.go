package handler

import (
	"errors"
	"net/http"

	"github.com/ceavinrufus/stay-backend/internal/application"
	"github.com/ceavinrufus/stay-backend/internal/auth"
	"github.com/ceavinrufus/stay-backend/internal/middleware"
	"github.com/ceavinrufus/stay-backend/internal/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdentityHandler handles HTTP requests for guest identity verification.
type IdentityHandler struct {
	service *application.IdentityService
}

// NewIdentityHandler creates a new IdentityHandler.
func NewIdentityHandler(service *application.IdentityService) *IdentityHandler {
	return &IdentityHandler{service: service}
}

// RegisterRoutes registers all identity verification routes.
func (h *IdentityHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager, revocations middleware.TokenRevocations, log *zap.Logger) {
	authMW := middleware.AuthMiddleware(jwtManager, revocations, log)

	identity := r.Group("/identity")
	identity.Use(authMW)
	{
		identity.POST("/proof-requests", h.RequestProof)
		identity.GET("/proof-requests/:session_id", h.GetResult)
		identity.GET("/proof-requests/:session_id/await", h.AwaitResult)
	}
}

// RequestProof handles POST /api/v1/identity/proof-requests. The response
// carries a QR code data URI for the guest's wallet to scan.
func (h *IdentityHandler) RequestProof(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.RequestProof(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetResult handles GET /api/v1/identity/proof-requests/:session_id.
func (h *IdentityHandler) GetResult(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.GetResult(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AwaitResult handles GET /api/v1/identity/proof-requests/:session_id/await.
// It long-polls the verifier until a decision or timeout.
func (h *IdentityHandler) AwaitResult(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.AwaitResult(c.Request.Context(), c.Param("session_id"), userID)
	if err != nil {
		if errors.Is(err, application.ErrVerificationTimeout) {
			c.JSON(http.StatusRequestTimeout, gin.H{"success": false, "error": gin.H{
				"code": "VERIFICATION_TIMEOUT", "message": "verification did not complete in time",
			}})
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
