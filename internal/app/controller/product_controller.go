package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/service"
	apperrors "github.com/kashan16/fatima-botique-ecom-sub001/internal/errors"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/middleware"
	"github.com/shopspring/decimal"
)

type ProductController struct {
	catalogService service.CatalogService
}

func NewProductController(catalogService service.CatalogService) *ProductController {
	return &ProductController{
		catalogService: catalogService,
	}
}

type ProductListQuery struct {
	Category string `form:"category"`
	Search   string `form:"search" binding:"max=100"`
	MinPrice string `form:"min_price" binding:"omitempty,numeric"`
	MaxPrice string `form:"max_price" binding:"omitempty,numeric"`
	Size     string `form:"size"`
	Color    string `form:"color"`
	InStock  bool   `form:"in_stock"`
	Featured bool   `form:"featured"`
	Sort     string `form:"sort" binding:"omitempty,oneof=newest price_asc price_desc name"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type AddProductImageRequest struct {
	URL       string `json:"url" binding:"required,url"`
	AltText   string `json:"alt_text" binding:"max=255"`
	IsPrimary bool   `json:"is_primary"`
}

func (q ProductListQuery) toServiceQuery() (service.ProductQuery, []apperrors.FieldError) {
	query := service.ProductQuery{
		Category: q.Category,
		Search:   q.Search,
		Size:     q.Size,
		Color:    q.Color,
		InStock:  q.InStock,
		Featured: q.Featured,
		Sort:     q.Sort,
		Page:     q.Page,
		Limit:    q.Limit,
	}

	var fieldErrors []apperrors.FieldError
	parse := func(raw, field string) *decimal.Decimal {
		if raw == "" {
			return nil
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			fieldErrors = append(fieldErrors, apperrors.FieldError{Field: field, Message: "must be a number"})
			return nil
		}
		return &d
	}
	query.MinPrice = parse(q.MinPrice, "min_price")
	query.MaxPrice = parse(q.MaxPrice, "max_price")
	return query, fieldErrors
}

func (ctrl *ProductController) bindProductQuery(c *gin.Context) (service.ProductQuery, bool) {
	var raw ProductListQuery
	if err := c.ShouldBindQuery(&raw); err != nil {
		apperrors.RespondWithBindingError(c, err)
		return service.ProductQuery{}, false
	}
	query, fieldErrors := raw.toServiceQuery()
	if len(fieldErrors) > 0 {
		apperrors.RespondWithValidationError(c, fieldErrors)
		return service.ProductQuery{}, false
	}
	return query, true
}

// GetProducts lists active products
// GET /api/v1/products
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	query, ok := ctrl.bindProductQuery(c)
	if !ok {
		return
	}

	page, err := ctrl.catalogService.ListProducts(c.Request.Context(), query)
	if err != nil {
		respondWithServiceError(c, err, "list products")
		return
	}

	log.Debug("Products listed", map[string]interface{}{
		"count": len(page.Products),
		"total": page.Pagination.Total,
	})
	c.JSON(http.StatusOK, page)
}

// GetProductBySlug returns a product with category, variants and images
// GET /api/v1/products/:slug
func (ctrl *ProductController) GetProductBySlug(c *gin.Context) {
	product, err := ctrl.catalogService.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondWithServiceError(c, err, "get product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// GetCategories lists active categories
// GET /api/v1/categories
func (ctrl *ProductController) GetCategories(c *gin.Context) {
	categories, err := ctrl.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategoryProducts lists products of one category
// GET /api/v1/categories/:slug/products
func (ctrl *ProductController) GetCategoryProducts(c *gin.Context) {
	query, ok := ctrl.bindProductQuery(c)
	if !ok {
		return
	}

	page, err := ctrl.catalogService.ListCategoryProducts(c.Request.Context(), c.Param("slug"), query)
	if err != nil {
		respondWithServiceError(c, err, "list products")
		return
	}
	c.JSON(http.StatusOK, page)
}

// AddProductImage attaches an uploaded image to a product
// POST /api/v1/admin/products/:id/images
func (ctrl *ProductController) AddProductImage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req AddProductImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithBindingError(c, err)
		return
	}

	image, err := ctrl.catalogService.AddProductImage(c.Request.Context(), productID, service.ProductImageInput{
		URL:       req.URL,
		AltText:   req.AltText,
		IsPrimary: req.IsPrimary,
	})
	if err != nil {
		respondWithServiceError(c, err, "create product image")
		return
	}

	log.Info("Product image attached", map[string]interface{}{
		"product_id": productID,
		"image_id":   image.ID,
	})
	c.JSON(http.StatusCreated, gin.H{"image": image})
}
