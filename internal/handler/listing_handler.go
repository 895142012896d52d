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

// ListingHandler handles HTTP requests for listing operations.
type ListingHandler struct {
	service *application.ListingService
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(service *application.ListingService) *ListingHandler {
	return &ListingHandler{service: service}
}

// RegisterRoutes registers all listing routes on the given router group.
// Browsing published listings requires no authentication.
func (h *ListingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager, revocations middleware.TokenRevocations, log *zap.Logger) {
	authMW := middleware.AuthMiddleware(jwtManager, revocations, log)

	listings := r.Group("/listings")
	{
		listings.GET("", h.ListPublished)

		authed := listings.Group("")
		authed.Use(authMW)
		{
			authed.POST("", middleware.RequireRole(auth.RoleHost), h.CreateListing)
			authed.GET("/mine", middleware.RequireRole(auth.RoleHost), h.GetMyListings)
			authed.GET("/:id", h.GetListing)
			authed.PUT("/:id", middleware.RequireRole(auth.RoleHost), h.UpdateListing)
			authed.PUT("/:id/cancellation-terms", middleware.RequireRole(auth.RoleHost), h.SetCancellationTerms)
			authed.POST("/:id/publish", middleware.RequireRole(auth.RoleHost), h.PublishListing)
			authed.POST("/:id/delist", middleware.RequireRole(auth.RoleHost), h.DelistListing)
		}
	}
}

// ListPublished handles GET /api/v1/listings.
func (h *ListingHandler) ListPublished(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListPublished(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// CreateListing handles POST /api/v1/listings.
func (h *ListingHandler) CreateListing(c *gin.Context) {
	hostID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateListing(c.Request.Context(), hostID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetMyListings handles GET /api/v1/listings/mine.
func (h *ListingHandler) GetMyListings(c *gin.Context) {
	hostID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.GetHostListings(c.Request.Context(), hostID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetListing handles GET /api/v1/listings/:id.
func (h *ListingHandler) GetListing(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid listing ID")
		return
	}

	result, err := h.service.GetListing(c.Request.Context(), listingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateListing handles PUT /api/v1/listings/:id.
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	hostID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid listing ID")
		return
	}

	var req application.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateListing(c.Request.Context(), listingID, hostID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SetCancellationTerms handles PUT /api/v1/listings/:id/cancellation-terms.
func (h *ListingHandler) SetCancellationTerms(c *gin.Context) {
	hostID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid listing ID")
		return
	}

	var req application.SetCancellationTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SetCancellationTerms(c.Request.Context(), listingID, hostID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// PublishListing handles POST /api/v1/listings/:id/publish.
func (h *ListingHandler) PublishListing(c *gin.Context) {
	hostID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid listing ID")
		return
	}

	result, err := h.service.PublishListing(c.Request.Context(), listingID, hostID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DelistListing handles POST /api/v1/listings/:id/delist.
func (h *ListingHandler) DelistListing(c *gin.Context) {
	hostID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid listing ID")
		return
	}

	result, err := h.service.DelistListing(c.Request.Context(), listingID, hostID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
