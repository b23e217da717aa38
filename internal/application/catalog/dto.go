package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductListFilter holds the public product listing parameters
type ProductListFilter struct {
	CategoryID *uuid.UUID
	Search     string
	Featured   bool
	Sort       string
	Page       int
	PageSize   int
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Slug        string `json:"slug" binding:"omitempty,slug,max=100"`
	Description string `json:"description"`
	Image       string `json:"image" binding:"max=500"`
	IsActive    *bool  `json:"is_active"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	Image       *string `json:"image" binding:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name              string           `json:"name" binding:"required,min=1,max=200"`
	Slug              string           `json:"slug" binding:"omitempty,slug,max=200"`
	Description       string           `json:"description"`
	ShortDescription  string           `json:"short_description" binding:"max=300"`
	Price             decimal.Decimal  `json:"price" binding:"required"`
	OriginalPrice     *decimal.Decimal `json:"original_price"`
	CategoryID        uuid.UUID        `json:"category" binding:"required"`
	SKU               string           `json:"sku" binding:"required,min=1,max=50"`
	StockQuantity     int              `json:"stock_quantity" binding:"min=0"`
	LowStockThreshold *int             `json:"low_stock_threshold" binding:"omitempty,min=0"`
	IsActive          *bool            `json:"is_active"`
	IsFeatured        bool             `json:"is_featured"`
	Weight            *decimal.Decimal `json:"weight"`
	Dimensions        string           `json:"dimensions" binding:"max=100"`
}

// UpdateProductRequest represents a request to update a product.
// Stock is changed through the inventory endpoints only.
type UpdateProductRequest struct {
	Name              *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description       *string          `json:"description"`
	ShortDescription  *string          `json:"short_description" binding:"omitempty,max=300"`
	Price             *decimal.Decimal `json:"price"`
	OriginalPrice     *decimal.Decimal `json:"original_price"`
	ClearOriginal     bool             `json:"clear_original_price"`
	CategoryID        *uuid.UUID       `json:"category"`
	LowStockThreshold *int             `json:"low_stock_threshold" binding:"omitempty,min=0"`
	IsActive          *bool            `json:"is_active"`
	IsFeatured        *bool            `json:"is_featured"`
	Weight            *decimal.Decimal `json:"weight"`
	Dimensions        *string          `json:"dimensions" binding:"omitempty,max=100"`
}

// UploadImageRequest describes an uploaded product image
type UploadImageRequest struct {
	Filename    string
	ContentType string
	Size        int64
	AltText     string
	IsPrimary   bool
	Order       *int
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	IsActive    bool      `json:"is_active"`
}

// ProductImageResponse represents a product image in API responses
type ProductImageResponse struct {
	ID             uuid.UUID `json:"id"`
	Image          string    `json:"image"`
	OptimizedImage string    `json:"optimized_image"`
	AltText        string    `json:"alt_text"`
	IsPrimary      bool      `json:"is_primary"`
	Order          int       `json:"order"`
}

// ProductListResponse is the compact product representation used by listings and carts
type ProductListResponse struct {
	ID                 uuid.UUID             `json:"id"`
	Name               string                `json:"name"`
	Slug               string                `json:"slug"`
	ShortDescription   string                `json:"short_description"`
	Price              decimal.Decimal       `json:"price"`
	OriginalPrice      *decimal.Decimal      `json:"original_price"`
	CategoryName       string                `json:"category_name"`
	StockQuantity      int                   `json:"stock_quantity"`
	IsFeatured         bool                  `json:"is_featured"`
	PrimaryImage       *ProductImageResponse `json:"primary_image"`
	PrimaryImageURL    string                `json:"primary_image_url"`
	StockStatus        string                `json:"stock_status"`
	HasDiscount        bool                  `json:"has_discount"`
	DiscountPercentage int                   `json:"discount_percentage"`
}

// ProductResponse is the full product representation
type ProductResponse struct {
	ProductListResponse
	Description       string                 `json:"description"`
	CategoryID        uuid.UUID              `json:"category"`
	SKU               string                 `json:"sku"`
	LowStockThreshold int                    `json:"low_stock_threshold"`
	IsActive          bool                   `json:"is_active"`
	Weight            *decimal.Decimal       `json:"weight"`
	Dimensions        string                 `json:"dimensions"`
	Images            []ProductImageResponse `json:"images"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category, storage ObjectStorage) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Image:       resolveURL(storage, c.Image),
		IsActive:    c.IsActive,
	}
}

// ToCategoryResponses converts a slice of domain Categories
func ToCategoryResponses(categories []catalog.Category, storage ObjectStorage) []CategoryResponse {
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i], storage)
	}
	return responses
}

// ToProductImageResponse converts a domain ProductImage, resolving its URLs
func ToProductImageResponse(img *catalog.ProductImage, storage ObjectStorage) ProductImageResponse {
	return ProductImageResponse{
		ID:             img.ID,
		Image:          resolveURL(storage, img.Image),
		OptimizedImage: resolveURL(storage, img.OptimizedImage),
		AltText:        img.AltText,
		IsPrimary:      img.IsPrimary,
		Order:          img.Order,
	}
}

// ToProductListResponse converts a domain Product to its list representation
func ToProductListResponse(p *catalog.Product, storage ObjectStorage) ProductListResponse {
	resolveImageURLs(p, storage)
	resp := ProductListResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Slug:               p.Slug,
		ShortDescription:   p.ShortDescription,
		Price:              p.Price,
		OriginalPrice:      p.OriginalPrice,
		CategoryName:       p.CategoryName(),
		StockQuantity:      p.StockQuantity,
		IsFeatured:         p.IsFeatured,
		PrimaryImageURL:    p.PrimaryImageURL(),
		StockStatus:        string(p.StockStatus()),
		HasDiscount:        p.HasDiscount(),
		DiscountPercentage: p.DiscountPercentage(),
	}
	if img := p.PrimaryImage(); img != nil {
		r := ToProductImageResponse(img, storage)
		resp.PrimaryImage = &r
	}
	return resp
}

// ToProductListResponses converts a slice of domain Products
func ToProductListResponses(products []catalog.Product, storage ObjectStorage) []ProductListResponse {
	responses := make([]ProductListResponse, len(products))
	for i := range products {
		responses[i] = ToProductListResponse(&products[i], storage)
	}
	return responses
}

// ToProductResponse converts a domain Product to its detail representation
func ToProductResponse(p *catalog.Product, storage ObjectStorage) ProductResponse {
	images := make([]ProductImageResponse, len(p.Images))
	for i := range p.Images {
		images[i] = ToProductImageResponse(&p.Images[i], storage)
	}
	return ProductResponse{
		ProductListResponse: ToProductListResponse(p, storage),
		Description:         p.Description,
		CategoryID:          p.CategoryID,
		SKU:                 p.SKU,
		LowStockThreshold:   p.LowStockThreshold,
		IsActive:            p.IsActive,
		Weight:              p.Weight,
		Dimensions:          p.Dimensions,
		Images:              images,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func resolveImageURLs(p *catalog.Product, storage ObjectStorage) {
	for i := range p.Images {
		p.Images[i].URL = resolveURL(storage, p.Images[i].Image)
	}
}
