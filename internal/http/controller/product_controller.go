package controller

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
	"github.com/shopspring/decimal"
)

// ProductService is the part of the catalog the product endpoints use.
type ProductService interface {
	CreateProduct(ctx context.Context, draft model.ProductDraft) (*model.Product, error)
	GenerateRandomProduct(ctx context.Context) (*model.Product, error)
	CreateProductWithAI(ctx context.Context, prompt string) (*model.Product, error)
	GetProductByID(ctx context.Context, id int64) (*model.Product, error)
	ListProducts(ctx context.Context, query repository.Query) ([]*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	UploadProductImage(ctx context.Context, id int64, data []byte) error
	GetProductImage(ctx context.Context, id int64) (io.ReadCloser, error)
	GetRecommendationForProduct(ctx context.Context, id int64) (*model.Recommendation, error)
}

// ProductController handles HTTP requests for product operations.
type ProductController struct {
	productService ProductService
}

// NewProductController creates a new ProductController with the given product service.
func NewProductController(productService ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// CreateProductRequest represents the request body for creating a product.
// An empty UPC is generated by the service.
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	UPC         string          `json:"upc"`
}

// CreateProductWithAIRequest represents the request body for prompt-based creation.
type CreateProductWithAIRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// CreateProduct handles the HTTP POST request for creating a new product.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	createdProduct, err := pc.productService.CreateProduct(c.Request.Context(), model.ProductDraft{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		UPC:         req.UPC,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	created(c, createdProduct)
}

// GenerateProduct handles the HTTP POST request for creating a generated random product.
func (pc *ProductController) GenerateProduct(c *gin.Context) {
	createdProduct, err := pc.productService.GenerateRandomProduct(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	created(c, createdProduct)
}

// CreateProductWithAI handles the HTTP POST request for creating a product from a prompt.
func (pc *ProductController) CreateProductWithAI(c *gin.Context) {
	var req CreateProductWithAIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	createdProduct, err := pc.productService.CreateProductWithAI(c.Request.Context(), req.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}

	created(c, createdProduct)
}

func created(c *gin.Context, product *model.Product) {
	c.Header("Location", fmt.Sprintf("/api/products/%d", product.ID))
	c.JSON(http.StatusCreated, product)
}

// GetProduct handles the HTTP GET request for a single product with its inventory.
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := pc.productService.GetProductByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles the HTTP DELETE request for deleting a product by ID.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := pc.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "product deleted successfully"})
}

// ListProductsRequest represents the query parameters for listing products.
type ListProductsRequest struct {
	Limit int32  `form:"limit"`
	Token string `form:"token"`
}

// ListProductsResponse represents the response body for listing products.
type ListProductsResponse struct {
	Products      []*model.Product `json:"products"`
	NextPageToken string           `json:"next_page_token,omitempty"`
}

// ListProducts handles the HTTP GET request for listing products with pagination.
func (pc *ProductController) ListProducts(c *gin.Context) {
	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := repository.NewQuery()
	if err := query.ApplyPagination(req.Limit, req.Token); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products, err := pc.productService.ListProducts(c.Request.Context(), *query)
	if err != nil {
		respondError(c, err)
		return
	}

	response := ListProductsResponse{
		Products: products,
	}
	if response.Products == nil {
		response.Products = []*model.Product{}
	}

	// a full page means there may be more
	if len(products) > 0 && len(products) == query.Limit {
		lastProduct := products[len(products)-1]
		paginator := repository.Paginator{
			LastID:        lastProduct.ID,
			LastCreatedAt: lastProduct.CreatedAt,
		}
		response.NextPageToken = paginator.Encode()
	}

	c.JSON(http.StatusOK, response)
}

// UploadImage handles the multipart HTTP POST request storing the product image from the "file" field.
func (pc *ProductController) UploadImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}

	if err := pc.productService.UploadProductImage(c.Request.Context(), id, data); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product_id": id, "filename": model.ProductImageFilename})
}

// GetImage handles the HTTP GET request streaming the product image.
func (pc *ProductController) GetImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	body, err := pc.productService.GetProductImage(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, -1, "image/png", body, nil)
}

// GetRecommendation handles the HTTP GET request suggesting a complementary product.
func (pc *ProductController) GetRecommendation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	recommendation, err := pc.productService.GetRecommendationForProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, recommendation)
}
