package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/jossiefancies/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrCategoryNotFound is returned for missing or hidden categories
var ErrCategoryNotFound = shared.NewDomainError("NOT_FOUND", "Category not found")

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo   catalog.CategoryRepository
	productRepo    catalog.ProductRepository
	storage        ObjectStorage
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	storage ObjectStorage,
	logger *zap.Logger,
) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		storage:      storage,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *CategoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List returns the active categories ordered by name
func (s *CategoryService) List(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	return ToCategoryResponses(categories, s.storage), nil
}

// GetByID returns an active category
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.findActive(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category, s.storage)
	return &resp, nil
}

// Products lists an active category's active products. The default order
// is by name.
func (s *CategoryService) Products(ctx context.Context, id uuid.UUID, search, sort string, page, pageSize int) (*shared.Paginated[ProductListResponse], error) {
	if _, err := s.findActive(ctx, id); err != nil {
		return nil, err
	}
	productSort := catalog.SortName
	switch catalog.ProductSort(sort) {
	case catalog.SortPriceLow, catalog.SortPriceHigh, catalog.SortNewest:
		productSort = catalog.ProductSort(sort)
	}
	products, total, err := s.productRepo.List(ctx, catalog.ProductQuery{
		CategoryID: &id,
		Search:     search,
		ActiveOnly: true,
		Sort:       productSort,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToProductListResponses(products, s.storage), total, page, pageSize)
	return &result, nil
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name, req.Slug, req.Description)
	if err != nil {
		return nil, err
	}
	exists, err := s.categoryRepo.ExistsBySlug(ctx, category.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this slug already exists")
	}
	if req.Image != "" {
		category.SetImage(req.Image)
	}
	if req.IsActive != nil && !*req.IsActive {
		category.Deactivate()
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	s.publish(ctx, category)

	resp := ToCategoryResponse(category, s.storage)
	return &resp, nil
}

// Update updates a category. Inactive categories can be updated.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Description != nil {
		name := category.Name
		if req.Name != nil {
			name = *req.Name
		}
		description := category.Description
		if req.Description != nil {
			description = *req.Description
		}
		if err := category.Update(name, description); err != nil {
			return nil, err
		}
	}
	replacedImage := ""
	if req.Image != nil && *req.Image != category.Image {
		replacedImage = category.Image
		category.SetImage(*req.Image)
	}
	if req.IsActive != nil {
		if *req.IsActive {
			category.Activate()
		} else {
			category.Deactivate()
		}
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	s.publish(ctx, category)
	s.deleteObjects(ctx, replacedImage)

	resp := ToCategoryResponse(category, s.storage)
	return &resp, nil
}

// Delete deletes a category. Categories that still hold products cannot be
// deleted.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	_, total, err := s.productRepo.List(ctx, catalog.ProductQuery{CategoryID: &id, Page: 1, PageSize: 1})
	if err != nil {
		return err
	}
	if total > 0 {
		return shared.NewDomainError("HAS_PRODUCTS", "Cannot delete a category that still has products")
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.deleteObjects(ctx, category.Image)
	return nil
}

func (s *CategoryService) findActive(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if !category.IsActive {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (s *CategoryService) publish(ctx context.Context, category *catalog.Category) {
	events := category.PullDomainEvents()
	if s.eventPublisher == nil {
		return
	}
	for _, event := range events {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish category event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
}

func (s *CategoryService) deleteObjects(ctx context.Context, keys ...string) {
	deleteStoredObjects(ctx, s.storage, s.logger, keys...)
}
