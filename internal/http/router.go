package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/http/controller"
	"github.com/iyhunko/product-catalog/internal/http/middleware"
)

// InitRouter registers the catalog API on server.
func InitRouter(server *gin.Engine, ctr *controller.Controller, productCtr *controller.ProductController, recommendationCtr *controller.RecommendationController) *gin.Engine {
	// Apply recovery middleware globally to prevent panics from crashing the server
	server.Use(middleware.Recovery(), middleware.Logger(), middleware.CORS())

	server.GET("/health", ctr.Ping)

	api := server.Group("/api")

	// Product endpoints
	products := api.Group("/products")
	{
		products.GET("", productCtr.ListProducts)
		products.POST("", productCtr.CreateProduct)
		products.POST("/generate", productCtr.GenerateProduct)
		products.POST("/ai", productCtr.CreateProductWithAI)
		products.GET("/:id", productCtr.GetProduct)
		products.DELETE("/:id", productCtr.DeleteProduct)
		products.GET("/:id/image", productCtr.GetImage)
		products.POST("/:id/image", productCtr.UploadImage)
		products.GET("/:id/recommendations", productCtr.GetRecommendation)
	}

	// Recommendation endpoints
	api.GET("/recommendations", recommendationCtr.ListRecommendations)
	api.POST("/recommendations", recommendationCtr.SaveRecommendation)
	api.GET("/saved-recommendations", recommendationCtr.ListSaved)
	api.POST("/recommended-products", recommendationCtr.SaveRecommendedProduct)

	return server
}
