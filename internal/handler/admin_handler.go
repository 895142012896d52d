package handler

import (
	"github.com/ceavinrufus/stay-backend/internal/application"
	"github.com/ceavinrufus/stay-backend/internal/auth"
	"github.com/ceavinrufus/stay-backend/internal/middleware"
	"github.com/ceavinrufus/stay-backend/internal/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler handles administrative HTTP endpoints.
type AdminHandler struct {
	reservations *application.ReservationService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(reservations *application.ReservationService) *AdminHandler {
	return &AdminHandler{reservations: reservations}
}

// RegisterRoutes registers all admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager, revocations middleware.TokenRevocations, log *zap.Logger) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager, revocations, log))
	admin.Use(middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/reservations", h.ListReservations)
		admin.GET("/reservations/stats", h.GetStats)
	}
}

// ListReservations handles GET /api/v1/admin/reservations.
func (h *AdminHandler) ListReservations(c *gin.Context) {
	page, limit := parsePagination(c)

	items, total, err := h.reservations.ListAllReservations(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// GetStats handles GET /api/v1/admin/reservations/stats.
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.reservations.GetReservationStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
