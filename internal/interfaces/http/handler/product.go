package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/jossiefancies/storefront/internal/application/catalog"
	"github.com/jossiefancies/storefront/internal/interfaces/http/dto"
)

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	pageSize       int
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService, pageSize int) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		pageSize:       pageSize,
	}
}

// List godoc
// @Summary      List products
// @Description  Active products, newest first unless sorted
// @Tags         products
// @Produce      json
// @Param        category  query string false "Category ID"
// @Param        search    query string false "Name, description or category name"
// @Param        featured  query bool   false "Only featured products"
// @Param        sort      query string false "price_low, price_high or name"
// @Param        page      query int    false "Page number"
// @Param        page_size query int    false "Page size (max 100)"
// @Success      200 {object} ListResponse[catalogapp.ProductListResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /products/ [get]
func (h *ProductHandler) List(c *gin.Context) {
	categoryID, err := optionalUUIDQuery(c, "category")
	if err != nil {
		h.BadRequest(c, "Invalid category format")
		return
	}
	page, pageSize := pageParams(c, h.pageSize)

	result, err := h.productService.List(c.Request.Context(), catalogapp.ProductListFilter{
		CategoryID: categoryID,
		Search:     c.Query("search"),
		Featured:   c.Query("featured") == "true",
		Sort:       c.Query("sort"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, result)
}

// Featured godoc
// @Summary      Featured products
// @Tags         products
// @Produce      json
// @Param        limit query int false "Number of products (1-50, default 8)"
// @Success      200 {object} APIResponse[[]catalogapp.ProductListResponse]
// @Router       /products/featured/ [get]
func (h *ProductHandler) Featured(c *gin.Context) {
	limit := catalogapp.DefaultFeaturedLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	products, err := h.productService.Featured(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// Get godoc
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID or slug"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /products/{id}/ [get]
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.productService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// AdminGet returns any product, including inactive ones
// @Summary      Get product (admin)
// @Tags         admin-catalog
// @Produce      json
// @Param        id path string true "Product ID or slug"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Security     BearerAuth
// @Router       /admin/products/{id} [get]
func (h *ProductHandler) AdminGet(c *gin.Context) {
	product, err := h.productService.GetForAdmin(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
// @Summary      Create product
// @Tags         admin-catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product"
// @Success      201 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @Summary      Update product
// @Tags         admin-catalog
// @Accept       json
// @Produce      json
// @Param        id      path string true "Product ID"
// @Param        request body catalogapp.UpdateProductRequest true "Changed fields"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete product
// @Tags         admin-catalog
// @Param        id path string true "Product ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UploadImage godoc
// @Summary      Upload product image
// @Tags         admin-catalog
// @Accept       multipart/form-data
// @Produce      json
// @Param        id         path     string true  "Product ID"
// @Param        image      formData file   true  "Image file"
// @Param        alt_text   formData string false "Alt text"
// @Param        is_primary formData bool   false "Make primary"
// @Param        order      formData int    false "Display order"
// @Success      201 {object} APIResponse[catalogapp.ProductImageResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id}/images [post]
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	header, err := c.FormFile("image")
	if err != nil {
		h.BadRequest(c, "An image file is required")
		return
	}
	if header.Size > catalogapp.MaxImageSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge, "Image exceeds the 10 MB limit")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Unable to read the uploaded image")
		return
	}
	defer file.Close()

	req := catalogapp.UploadImageRequest{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		AltText:     c.PostForm("alt_text"),
		IsPrimary:   c.PostForm("is_primary") == "true",
	}
	if raw := c.PostForm("order"); raw != "" {
		order, err := strconv.Atoi(raw)
		if err != nil || order < 0 {
			h.BadRequest(c, "Invalid order")
			return
		}
		req.Order = &order
	}

	image, err := h.productService.UploadImage(c.Request.Context(), id, file, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, image)
}

// DeleteImage godoc
// @Summary      Delete product image
// @Tags         admin-catalog
// @Param        id      path string true "Product ID"
// @Param        imageId path string true "Image ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id}/images/{imageId} [delete]
func (h *ProductHandler) DeleteImage(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	imageID, ok := h.uuidParam(c, "imageId")
	if !ok {
		return
	}
	if err := h.productService.DeleteImage(c.Request.Context(), id, imageID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetPrimaryImage godoc
// @Summary      Make an image primary
// @Tags         admin-catalog
// @Produce      json
// @Param        id      path string true "Product ID"
// @Param        imageId path string true "Image ID"
// @Success      200 {object} APIResponse[catalogapp.ProductImageResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id}/images/{imageId}/primary [patch]
func (h *ProductHandler) SetPrimaryImage(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	imageID, ok := h.uuidParam(c, "imageId")
	if !ok {
		return
	}
	image, err := h.productService.SetPrimaryImage(c.Request.Context(), id, imageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, image)
}
