package handler

import (
	"net/http"

	"github.com/ceavinrufus/stay-backend/internal/application"
	"github.com/ceavinrufus/stay-backend/internal/auth"
	"github.com/ceavinrufus/stay-backend/internal/middleware"
	"github.com/ceavinrufus/stay-backend/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DisputeHandler handles HTTP requests for dispute operations.
type DisputeHandler struct {
	service *application.DisputeService
}

// NewDisputeHandler creates a new DisputeHandler.
func NewDisputeHandler(service *application.DisputeService) *DisputeHandler {
	return &DisputeHandler{service: service}
}

// RegisterRoutes registers all dispute routes on the given router group.
func (h *DisputeHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager, revocations middleware.TokenRevocations, log *zap.Logger) {
	authMW := middleware.AuthMiddleware(jwtManager, revocations, log)

	disputes := r.Group("/disputes")
	disputes.Use(authMW)
	{
		disputes.GET("/:id", h.GetDispute)
		disputes.GET("", middleware.RequireRole(auth.RoleAdmin), h.ListOpenDisputes)
		disputes.POST("/:id/review", middleware.RequireRole(auth.RoleAdmin), h.StartReview)
		disputes.POST("/:id/resolve", middleware.RequireRole(auth.RoleAdmin), h.ResolveDispute)
	}

	reservations := r.Group("/reservations")
	reservations.Use(authMW)
	{
		reservations.POST("/:id/disputes", middleware.RequireRole(auth.RoleGuest), h.RaiseDispute)
		reservations.GET("/:id/disputes", h.GetReservationDispute)
	}
}

// RaiseDispute handles POST /api/v1/reservations/:id/disputes.
func (h *DisputeHandler) RaiseDispute(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation ID")
		return
	}

	var req application.RaiseDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RaiseDispute(c.Request.Context(), reservationID, userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetReservationDispute handles GET /api/v1/reservations/:id/disputes.
func (h *DisputeHandler) GetReservationDispute(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation ID")
		return
	}

	role, _ := middleware.GetUserRole(c)
	result, err := h.service.GetDisputeByReservation(c.Request.Context(), reservationID, userID, role == auth.RoleAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetDispute handles GET /api/v1/disputes/:id.
func (h *DisputeHandler) GetDispute(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid dispute ID")
		return
	}

	role, _ := middleware.GetUserRole(c)
	result, err := h.service.GetDispute(c.Request.Context(), disputeID, userID, role == auth.RoleAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListOpenDisputes handles GET /api/v1/disputes (admin mediation queue).
func (h *DisputeHandler) ListOpenDisputes(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListOpenDisputes(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// StartReview handles POST /api/v1/disputes/:id/review.
func (h *DisputeHandler) StartReview(c *gin.Context) {
	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid dispute ID")
		return
	}

	result, err := h.service.StartReview(c.Request.Context(), disputeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ResolveDispute handles POST /api/v1/disputes/:id/resolve.
func (h *DisputeHandler) ResolveDispute(c *gin.Context) {
	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid dispute ID")
		return
	}

	var req application.ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ResolveDispute(c.Request.Context(), disputeID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
