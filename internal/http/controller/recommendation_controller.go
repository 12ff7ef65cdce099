package controller

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/model"
)

// RecommendationService is the part of the catalog the recommendation endpoints use.
type RecommendationService interface {
	GetRecommendationsForProducts(ctx context.Context, ids []int64) ([]*model.Recommendation, error)
	SaveRecommendation(ctx context.Context, sourceID, recommendedID int64) (*model.SavedRecommendation, error)
	SaveRecommendedProduct(ctx context.Context, sourceID int64, candidate model.RecommendationCandidate) (*model.SavedRecommendation, error)
	GetSavedRecommendations(ctx context.Context) ([]*model.SavedRecommendation, error)
}

// RecommendationController handles HTTP requests for recommendations.
type RecommendationController struct {
	recommendationService RecommendationService
}

// NewRecommendationController creates a new RecommendationController.
func NewRecommendationController(recommendationService RecommendationService) *RecommendationController {
	return &RecommendationController{
		recommendationService: recommendationService,
	}
}

// SaveRecommendationRequest pairs two existing products.
type SaveRecommendationRequest struct {
	SourceProductID      int64 `json:"source_product_id" binding:"required,gt=0"`
	RecommendedProductID int64 `json:"recommended_product_id" binding:"required,gt=0"`
}

// SaveRecommendedProductRequest stores a generated candidate as a new product.
type SaveRecommendedProductRequest struct {
	SourceProductID    int64                          `json:"source_product_id" binding:"required,gt=0"`
	RecommendedProduct *model.RecommendationCandidate `json:"recommended_product" binding:"required"`
}

// ListRecommendations handles GET /api/recommendations?product_ids=1,2,3.
// Ids that are not numbers are ignored.
func (rc *RecommendationController) ListRecommendations(c *gin.Context) {
	raw := c.Query("product_ids")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing product_ids query parameter"})
		return
	}

	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid product ids provided"})
		return
	}

	recommendations, err := rc.recommendationService.GetRecommendationsForProducts(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recommendations)
}

// SaveRecommendation handles POST /api/recommendations.
func (rc *RecommendationController) SaveRecommendation(c *gin.Context) {
	var req SaveRecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := rc.recommendationService.SaveRecommendation(c.Request.Context(), req.SourceProductID, req.RecommendedProductID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}

// ListSaved handles GET /api/saved-recommendations.
func (rc *RecommendationController) ListSaved(c *gin.Context) {
	saved, err := rc.recommendationService.GetSavedRecommendations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if saved == nil {
		saved = []*model.SavedRecommendation{}
	}

	c.JSON(http.StatusOK, saved)
}

// SaveRecommendedProduct handles POST /api/recommended-products.
func (rc *RecommendationController) SaveRecommendedProduct(c *gin.Context) {
	var req SaveRecommendedProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := rc.recommendationService.SaveRecommendedProduct(c.Request.Context(), req.SourceProductID, *req.RecommendedProduct)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}
