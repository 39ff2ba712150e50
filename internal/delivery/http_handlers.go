package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"adscout/internal/domain"
	"adscout/internal/usecase"
	"adscout/pkg/logger"

	"github.com/gin-gonic/gin"
)

// handles HTTP requests
type HTTPHandlers struct {
	searchService     *usecase.SearchService
	collectionService *usecase.CollectionService
	creativeService   *usecase.CreativeService
	logger            *logger.Logger
}

// creates new HTTP handlers; creativeService may be nil when no assistant is configured
func NewHTTPHandlers(
	searchService *usecase.SearchService,
	collectionService *usecase.CollectionService,
	creativeService *usecase.CreativeService,
	logger *logger.Logger,
) *HTTPHandlers {
	return &HTTPHandlers{
		searchService:     searchService,
		collectionService: collectionService,
		creativeService:   creativeService,
		logger:            logger,
	}
}

type searchRequest struct {
	Domain      string `json:"domain"`
	Country     string `json:"country"`
	Status      string `json:"status"`
	Count       int    `json:"count"`
	ExactPhrase bool   `json:"exact_phrase"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type createCollectionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type saveAdRequest struct {
	Ad    map[string]any `json:"ad" binding:"required"`
	Notes string         `json:"notes"`
}

type analyzeRequest struct {
	AdIDs []int64 `json:"ad_ids" binding:"required,min=1"`
}

type generateRequest struct {
	AdID        int64          `json:"ad_id" binding:"required"`
	Base        map[string]any `json:"base" binding:"required"`
	VariantName string         `json:"variant_name"`
	Variant     any            `json:"variant" binding:"required"`
	Size        string         `json:"size"`
}

// Search runs a domain search against the ad library
func (h *HTTPHandlers) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body", err)
		return
	}

	dateRange, err := domain.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		h.badRequest(c, "Invalid date range", err)
		return
	}

	result, err := h.searchService.Search(c.Request.Context(), domain.SearchQuery{
		Domain:      req.Domain,
		Country:     req.Country,
		Status:      req.Status,
		Count:       req.Count,
		ExactPhrase: req.ExactPhrase,
		DateRange:   dateRange,
	})
	if err != nil {
		h.respondError(c, "Search failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       result.Data,
		"total":      result.Total,
		"fetched":    result.Fetched,
		"filtered":   result.Filtered,
		"request_id": requestID(c),
	})
}

// Normalize converts posted raw items without calling the ad library
func (h *HTTPHandlers) Normalize(c *gin.Context) {
	var raw []domain.RawAdItem
	if err := c.ShouldBindJSON(&raw); err != nil {
		h.badRequest(c, "Invalid request body", fmt.Errorf("expected a JSON array of ad objects: %w", err))
		return
	}

	dateRange, err := domain.ParseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		h.badRequest(c, "Invalid date range", err)
		return
	}

	result := h.searchService.Normalize(c.Request.Context(), raw, dateRange)

	c.JSON(http.StatusOK, gin.H{
		"data":       result.Data,
		"total":      result.Total,
		"fetched":    result.Fetched,
		"filtered":   result.Filtered,
		"request_id": requestID(c),
	})
}

func (h *HTTPHandlers) ListCollections(c *gin.Context) {
	list, err := h.collectionService.ListCollections(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to list collections", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       list,
		"total":      len(list),
		"request_id": requestID(c),
	})
}

func (h *HTTPHandlers) CreateCollection(c *gin.Context) {
	var req createCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body", err)
		return
	}

	collection, err := h.collectionService.CreateCollection(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		h.respondError(c, "Failed to create collection", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":       collection,
		"request_id": requestID(c),
	})
}

func (h *HTTPHandlers) DeleteCollection(c *gin.Context) {
	name := c.Param("name")
	if err := h.collectionService.DeleteCollection(c.Request.Context(), name); err != nil {
		h.respondError(c, "Failed to delete collection", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Collection deleted",
		"collection": name,
		"request_id": requestID(c),
	})
}

func (h *HTTPHandlers) ListAds(c *gin.Context) {
	ads, err := h.collectionService.ListAds(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondError(c, "Failed to list ads", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       ads,
		"total":      len(ads),
		"request_id": requestID(c),
	})
}

// SaveAd stores a canonical record, as returned by search, into a collection
func (h *HTTPHandlers) SaveAd(c *gin.Context) {
	var req saveAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body", err)
		return
	}

	saved, err := h.collectionService.SaveAd(c.Request.Context(), c.Param("name"), domain.RecordFromMap(req.Ad), req.Notes)
	if err != nil {
		h.respondError(c, "Failed to save ad", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":       saved,
		"request_id": requestID(c),
	})
}

func (h *HTTPHandlers) DeleteAd(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.badRequest(c, "Invalid ad id", err)
		return
	}

	if err := h.collectionService.DeleteAd(c.Request.Context(), c.Param("name"), id); err != nil {
		h.respondError(c, "Failed to delete ad", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Ad deleted",
		"id":         id,
		"request_id": requestID(c),
	})
}

// Analyze asks the assistant for a base spec and variants from saved ads' images
func (h *HTTPHandlers) Analyze(c *gin.Context) {
	if h.creativeService == nil {
		h.creativeUnavailable(c)
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body", err)
		return
	}

	spec, err := h.creativeService.Analyze(c.Request.Context(), c.Param("name"), req.AdIDs)
	if err != nil {
		h.respondError(c, "Analysis failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       spec,
		"request_id": requestID(c),
	})
}

// Generate renders one variant of a saved ad
func (h *HTTPHandlers) Generate(c *gin.Context) {
	if h.creativeService == nil {
		h.creativeUnavailable(c)
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body", err)
		return
	}

	img, err := h.creativeService.Generate(c.Request.Context(), usecase.GenerateRequest{
		Collection:  c.Param("name"),
		AdID:        req.AdID,
		Base:        req.Base,
		VariantName: req.VariantName,
		Variant:     req.Variant,
		Size:        req.Size,
	})
	if err != nil {
		h.respondError(c, "Image generation failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":       img,
		"request_id": requestID(c),
	})
}

func (h *HTTPHandlers) ListGeneratedImages(c *gin.Context) {
	images, err := h.collectionService.ListGeneratedImages(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondError(c, "Failed to list generated images", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       images,
		"total":      len(images),
		"request_id": requestID(c),
	})
}

// GetAPIInfo returns API v1 information and available endpoints
func (h *HTTPHandlers) GetAPIInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"api_version": "v1",
		"service":     "adscout",
		"version":     "1.0.0",
		"description": "Ad library search, normalization and saved-ad collections",
		"endpoints": gin.H{
			"search": gin.H{
				"path":        "/api/v1/search",
				"methods":     []string{"POST"},
				"description": "Search the ad library by domain and return canonical ad records",
				"body": gin.H{
					"domain":       "Required: domain or keyword to search",
					"country":      "Optional: ISO country code (default: US)",
					"status":       "Optional: active, inactive or all (default: active)",
					"count":        "Optional: number of ads, 1-100 (default: 10)",
					"exact_phrase": "Optional: match the domain as an exact phrase",
					"start_date":   "Optional: YYYY-MM-DD, requires end_date",
					"end_date":     "Optional: YYYY-MM-DD, requires start_date",
				},
			},
			"normalize": gin.H{
				"path":        "/api/v1/normalize",
				"methods":     []string{"POST"},
				"description": "Normalize a JSON array of raw ad items",
				"parameters": gin.H{
					"from": "Optional: start date filter (YYYY-MM-DD)",
					"to":   "Optional: end date filter (YYYY-MM-DD)",
				},
			},
			"collections": gin.H{
				"path":        "/api/v1/collections",
				"methods":     []string{"GET", "POST", "DELETE"},
				"description": "Manage collections, saved ads and generated creative variants",
				"endpoints": gin.H{
					"ads":      "/api/v1/collections/:name/ads",
					"analyze":  "/api/v1/collections/:name/analyze",
					"generate": "/api/v1/collections/:name/generate",
					"images":   "/api/v1/collections/:name/images",
				},
			},
		},
		"creative_enabled": h.creativeService != nil,
		"request_id":       requestID(c),
	})
}

// HealthCheck returns the health status of the service
func (h *HTTPHandlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"service":    "adscout",
		"version":    "1.0.0",
		"request_id": requestID(c),
	})
}

func (h *HTTPHandlers) badRequest(c *gin.Context, message string, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":      message,
		"message":    err.Error(),
		"request_id": requestID(c),
	})
}

func (h *HTTPHandlers) creativeUnavailable(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error":      "Creative generation is not configured",
		"message":    "set GEMINI_API_KEY and IMAGE_API_KEY to enable analysis and generation",
		"request_id": requestID(c),
	})
}

// respondError maps domain errors to HTTP statuses; anything unknown is a 500.
func (h *HTTPHandlers) respondError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithContext(c.Request.Context()).WithError(err).Error(message)
	}

	c.JSON(status, gin.H{
		"error":      message,
		"message":    err.Error(),
		"request_id": requestID(c),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery),
		errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrMissingAdID):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCollectionNotFound),
		errors.Is(err, domain.ErrAdNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAdAlreadySaved):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoImages),
		errors.Is(err, domain.ErrAssistantOutput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func requestID(c *gin.Context) string {
	return c.GetString("request_id")
}
