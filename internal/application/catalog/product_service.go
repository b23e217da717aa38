package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/jossiefancies/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	// DefaultFeaturedLimit is the number of featured products returned when no limit is given
	DefaultFeaturedLimit = 8
	// MaxFeaturedLimit caps the featured products limit
	MaxFeaturedLimit = 50
	// MaxImageSize is the largest accepted product image upload
	MaxImageSize = 10 << 20
)

var (
	// ErrProductNotFound is returned for missing or hidden products
	ErrProductNotFound = shared.NewDomainError("NOT_FOUND", "Product not found")
	// ErrImageNotFound is returned when an image does not belong to the product
	ErrImageNotFound = shared.NewDomainError("NOT_FOUND", "Image not found")
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	categoryRepo   catalog.CategoryRepository
	imageRepo      catalog.ProductImageRepository
	storage        ObjectStorage
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	imageRepo catalog.ProductImageRepository,
	storage ObjectStorage,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		imageRepo:    imageRepo,
		storage:      storage,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List returns a page of active products. The default order is newest first.
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) (*shared.Paginated[ProductListResponse], error) {
	sort := catalog.SortNewest
	switch catalog.ProductSort(filter.Sort) {
	case catalog.SortPriceLow, catalog.SortPriceHigh, catalog.SortName:
		sort = catalog.ProductSort(filter.Sort)
	}

	products, total, err := s.productRepo.List(ctx, catalog.ProductQuery{
		CategoryID:         filter.CategoryID,
		Search:             filter.Search,
		FeaturedOnly:       filter.Featured,
		ActiveOnly:         true,
		SearchCategoryName: true,
		Sort:               sort,
		Page:               filter.Page,
		PageSize:           filter.PageSize,
	})
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToProductListResponses(products, s.storage), total, filter.Page, filter.PageSize)
	return &result, nil
}

// Featured returns active featured products, newest first.
// limit is clamped to [1, MaxFeaturedLimit].
func (s *ProductService) Featured(ctx context.Context, limit int) ([]ProductListResponse, error) {
	limit = ClampFeaturedLimit(limit)
	products, err := s.productRepo.FindFeatured(ctx, limit)
	if err != nil {
		return nil, err
	}
	return ToProductListResponses(products, s.storage), nil
}

// ClampFeaturedLimit bounds a featured products limit
func ClampFeaturedLimit(limit int) int {
	return max(1, min(limit, MaxFeaturedLimit))
}

// Get returns an active product by UUID or slug
func (s *ProductService) Get(ctx context.Context, idOrSlug string) (*ProductResponse, error) {
	product, err := s.find(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}
	resp := ToProductResponse(product, s.storage)
	return &resp, nil
}

// GetForAdmin returns any product by UUID or slug
func (s *ProductService) GetForAdmin(ctx context.Context, idOrSlug string) (*ProductResponse, error) {
	product, err := s.find(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product, s.storage)
	return &resp, nil
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return nil, err
	}

	product, err := catalog.NewProduct(req.CategoryID, req.Name, req.SKU, req.Price)
	if err != nil {
		return nil, err
	}
	if slug := strings.TrimSpace(req.Slug); slug != "" {
		product.Slug = slug
	}

	exists, err := s.productRepo.ExistsBySKU(ctx, product.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists")
	}
	exists, err = s.productRepo.ExistsBySlug(ctx, product.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this slug already exists")
	}

	product.Description = req.Description
	product.ShortDescription = req.ShortDescription
	if err := product.SetPrices(req.Price, req.OriginalPrice); err != nil {
		return nil, err
	}
	if _, _, err := product.SetStock(req.StockQuantity); err != nil {
		return nil, err
	}
	if req.LowStockThreshold != nil {
		if err := product.SetLowStockThreshold(*req.LowStockThreshold); err != nil {
			return nil, err
		}
	}
	if err := product.SetPhysical(req.Weight, req.Dimensions); err != nil {
		return nil, err
	}
	product.SetFeatured(req.IsFeatured)
	if req.IsActive != nil {
		product.SetActive(*req.IsActive)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	product.Category = category
	resp := ToProductResponse(product, s.storage)
	return &resp, nil
}

// Update updates a product's catalog fields
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Description != nil || req.ShortDescription != nil {
		name, description, short := product.Name, product.Description, product.ShortDescription
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if req.ShortDescription != nil {
			short = *req.ShortDescription
		}
		if err := product.Update(name, description, short); err != nil {
			return nil, err
		}
	}

	if req.Price != nil || req.OriginalPrice != nil || req.ClearOriginal {
		price := product.Price
		if req.Price != nil {
			price = *req.Price
		}
		original := product.OriginalPrice
		if req.OriginalPrice != nil {
			original = req.OriginalPrice
		}
		if req.ClearOriginal {
			original = nil
		}
		if err := product.SetPrices(price, original); err != nil {
			return nil, err
		}
	}

	if req.CategoryID != nil && *req.CategoryID != product.CategoryID {
		category, err := s.categoryRepo.FindByID(ctx, *req.CategoryID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_CATEGORY", "Category not found")
			}
			return nil, err
		}
		if err := product.SetCategory(category.ID); err != nil {
			return nil, err
		}
	}

	if req.LowStockThreshold != nil {
		if err := product.SetLowStockThreshold(*req.LowStockThreshold); err != nil {
			return nil, err
		}
	}
	if req.Weight != nil || req.Dimensions != nil {
		weight, dimensions := product.Weight, product.Dimensions
		if req.Weight != nil {
			weight = req.Weight
		}
		if req.Dimensions != nil {
			dimensions = *req.Dimensions
		}
		if err := product.SetPhysical(weight, dimensions); err != nil {
			return nil, err
		}
	}
	if req.IsFeatured != nil {
		product.SetFeatured(*req.IsFeatured)
	}
	if req.IsActive != nil {
		product.SetActive(*req.IsActive)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	return s.GetForAdmin(ctx, product.ID.String())
}

// Delete deletes a product, its image records and stored image objects.
// Order lines keep their snapshots with the product reference cleared.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	var keys []string
	for i := range product.Images {
		keys = append(keys, product.Images[i].StorageKeys()...)
	}
	s.deleteObjects(ctx, keys...)
	return nil
}

// UploadImage stores an image for a product and records it. The first image
// of a product becomes its primary image.
func (s *ProductService) UploadImage(ctx context.Context, productID uuid.UUID, body io.Reader, req UploadImageRequest) (*ProductImageResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Image storage is not configured")
	}
	if !strings.HasPrefix(req.ContentType, "image/") {
		return nil, shared.NewDomainError("INVALID_IMAGE", "Only image uploads are accepted")
	}
	if req.Size <= 0 || req.Size > MaxImageSize {
		return nil, shared.NewDomainError("INVALID_IMAGE", fmt.Sprintf("Image size must be between 1 byte and %d MB", MaxImageSize>>20))
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	count, err := s.imageRepo.CountByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	order := int(count)
	if req.Order != nil {
		order = *req.Order
	}

	key := fmt.Sprintf("products/%s/%s%s", productID, uuid.New(), strings.ToLower(filepath.Ext(req.Filename)))
	image, err := catalog.NewProductImage(productID, key, req.AltText, req.IsPrimary || count == 0, order)
	if err != nil {
		return nil, err
	}

	if err := s.storage.Upload(ctx, key, body, req.Size, req.ContentType); err != nil {
		return nil, fmt.Errorf("upload product image: %w", err)
	}
	if err := s.imageRepo.Save(ctx, image); err != nil {
		s.deleteObjects(ctx, key)
		return nil, err
	}

	s.logger.Info("product image uploaded",
		zap.String("product_id", productID.String()),
		zap.String("key", key),
		zap.Int64("size", req.Size))

	resp := ToProductImageResponse(image, s.storage)
	return &resp, nil
}

// DeleteImage deletes one of a product's images and its stored objects
func (s *ProductService) DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error {
	image, err := s.productImage(ctx, productID, imageID)
	if err != nil {
		return err
	}
	if err := s.imageRepo.Delete(ctx, image.ID); err != nil {
		return err
	}
	s.deleteObjects(ctx, image.StorageKeys()...)
	return nil
}

// SetPrimaryImage makes an image the product's only primary image
func (s *ProductService) SetPrimaryImage(ctx context.Context, productID, imageID uuid.UUID) (*ProductImageResponse, error) {
	image, err := s.productImage(ctx, productID, imageID)
	if err != nil {
		return nil, err
	}
	image.MarkPrimary()
	if err := s.imageRepo.Save(ctx, image); err != nil {
		return nil, err
	}
	resp := ToProductImageResponse(image, s.storage)
	return &resp, nil
}

func (s *ProductService) productImage(ctx context.Context, productID, imageID uuid.UUID) (*catalog.ProductImage, error) {
	image, err := s.imageRepo.FindByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	if image.ProductID != productID {
		return nil, ErrImageNotFound
	}
	return image, nil
}

func (s *ProductService) find(ctx context.Context, idOrSlug string) (*catalog.Product, error) {
	var (
		product *catalog.Product
		err     error
	)
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		product, err = s.productRepo.FindByID(ctx, id)
	} else {
		product, err = s.productRepo.FindBySlug(ctx, idOrSlug)
	}
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) publish(ctx context.Context, product *catalog.Product) {
	events := product.PullDomainEvents()
	if s.eventPublisher == nil {
		return
	}
	for _, event := range events {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish product event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
}

func (s *ProductService) deleteObjects(ctx context.Context, keys ...string) {
	deleteStoredObjects(ctx, s.storage, s.logger, keys...)
}

// deleteStoredObjects removes stored objects, logging failures. External
// URLs are not owned by the storage and are skipped.
func deleteStoredObjects(ctx context.Context, storage ObjectStorage, logger *zap.Logger, keys ...string) {
	if storage == nil {
		return
	}
	for _, key := range keys {
		if key == "" || strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
			continue
		}
		if err := storage.DeleteObject(ctx, key); err != nil {
			logger.Warn("failed to delete stored object",
				zap.String("key", key),
				zap.Error(err))
		}
	}
}
