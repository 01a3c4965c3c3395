package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/repository"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrInvalidSort       = errors.New("invalid sort option")
	ErrInvalidPriceRange = errors.New("min_price exceeds max_price")
	ErrInvalidImageURL   = errors.New("image url is required")
)

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

type ProductQuery struct {
	Category string
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Size     string
	Color    string
	InStock  bool
	Featured bool
	Sort     string
	Page     int
	Limit    int
}

type ProductPage struct {
	Products   []model.Product `json:"products"`
	Pagination Pagination      `json:"pagination"`
}

type ProductImageInput struct {
	URL       string
	AltText   string
	IsPrimary bool
}

type CatalogService interface {
	ListProducts(ctx context.Context, query ProductQuery) (*ProductPage, error)
	GetProduct(ctx context.Context, slug string) (*model.Product, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListCategoryProducts(ctx context.Context, slug string, query ProductQuery) (*ProductPage, error)
	AddProductImage(ctx context.Context, productID uint, input ProductImageInput) (*model.ProductImage, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

func sortOrder(sort string) (repository.ProductSort, bool, error) {
	switch sort {
	case "", SortNewest:
		return repository.ProductSortCreatedAt, false, nil
	case SortPriceAsc:
		return repository.ProductSortPrice, true, nil
	case SortPriceDesc:
		return repository.ProductSortPrice, false, nil
	case SortName:
		return repository.ProductSortName, true, nil
	}
	return "", false, ErrInvalidSort
}

func (s *catalogService) ListProducts(ctx context.Context, query ProductQuery) (*ProductPage, error) {
	sortBy, ascending, err := sortOrder(query.Sort)
	if err != nil {
		return nil, err
	}
	if query.MinPrice != nil && query.MaxPrice != nil && query.MinPrice.GreaterThan(*query.MaxPrice) {
		return nil, ErrInvalidPriceRange
	}

	page, limit := normalizePage(query.Page, query.Limit)
	products, total, err := s.productRepo.FindWithFilter(repository.ProductFilter{
		CategorySlug:  query.Category,
		Search:        strings.TrimSpace(query.Search),
		MinPrice:      query.MinPrice,
		MaxPrice:      query.MaxPrice,
		Size:          query.Size,
		Color:         query.Color,
		InStock:       query.InStock,
		FeaturedOnly:  query.Featured,
		SortBy:        sortBy,
		SortAscending: ascending,
		Limit:         limit,
		Offset:        (page - 1) * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}

	return &ProductPage{
		Products:   products,
		Pagination: newPagination(page, limit, total),
	}, nil
}

func (s *catalogService) GetProduct(ctx context.Context, slug string) (*model.Product, error) {
	product, err := s.productRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return categories, nil
}

func (s *catalogService) ListCategoryProducts(ctx context.Context, slug string, query ProductQuery) (*ProductPage, error) {
	if _, err := s.categoryRepo.FindBySlug(slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	query.Category = slug
	return s.ListProducts(ctx, query)
}

func (s *catalogService) AddProductImage(ctx context.Context, productID uint, input ProductImageInput) (*model.ProductImage, error) {
	if strings.TrimSpace(input.URL) == "" {
		return nil, ErrInvalidImageURL
	}
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	image := &model.ProductImage{
		ProductID: productID,
		URL:       strings.TrimSpace(input.URL),
		AltText:   input.AltText,
		IsPrimary: input.IsPrimary,
	}
	if err := s.productRepo.AddImage(image); err != nil {
		return nil, fmt.Errorf("add product image: %w", err)
	}

	logger.Info("Product image added", map[string]interface{}{
		"product_id": productID,
		"image_id":   image.ID,
		"is_primary": image.IsPrimary,
	})
	return image, nil
}
