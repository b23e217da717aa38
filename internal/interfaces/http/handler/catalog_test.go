package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jossiefancies/storefront/internal/infrastructure/persistence"
	"github.com/jossiefancies/storefront/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogRouter(env *storeEnv) *gin.Engine {
	categories := NewCategoryHandler(env.category, 12)
	products := NewProductHandler(env.product, 12)

	r := testRouter()
	api := r.Group("/api")
	api.GET("/categories/", categories.List)
	api.GET("/categories/:id/", categories.Get)
	api.GET("/categories/:id/products/", categories.Products)
	api.GET("/products/", products.List)
	api.GET("/products/featured/", products.Featured)
	api.GET("/products/:id/", products.Get)

	admin := api.Group("/admin")
	admin.POST("/categories", categories.Create)
	admin.PUT("/categories/:id", categories.Update)
	admin.DELETE("/categories/:id", categories.Delete)
	admin.GET("/products/:id", products.AdminGet)
	admin.POST("/products", products.Create)
	admin.PUT("/products/:id", products.Update)
	admin.DELETE("/products/:id", products.Delete)
	admin.POST("/products/:id/images", products.UploadImage)
	admin.DELETE("/products/:id/images/:imageId", products.DeleteImage)
	admin.PATCH("/products/:id/images/:imageId/primary", products.SetPrimaryImage)
	return r
}

func TestCategoryHandler(t *testing.T) {
	env := newStoreEnv(t)
	r := catalogRouter(env)

	kitchen := testutil.CreateCategory(t, env.db, "Kitchen")
	bedding := testutil.CreateCategory(t, env.db, "Bedding")
	testutil.CreateProduct(t, env.db, kitchen.ID, "Chef Knife Set", "KIT-001", 8999, 25)
	testutil.CreateProduct(t, env.db, kitchen.ID, "Cast Iron Pan", "KIT-002", 4500, 10)

	t.Run("list ordered by name", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{Path: "/api/categories/"})
		require.Equal(t, http.StatusOK, w.Code)
		data := testutil.JSONResponse(t, w)["data"].([]interface{})
		require.Len(t, data, 2)
		assert.Equal(t, "Bedding", data[0].(map[string]interface{})["name"])
	})

	t.Run("get by id", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{Path: "/api/categories/" + bedding.ID.String() + "/"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "bedding", testutil.Data(t, w)["slug"])
	})

	t.Run("invalid id", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{Path: "/api/categories/not-a-uuid/"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing category", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{Path: "/api/categories/" + testutil.NewTestUUID("none").String() + "/"})
		assert.Equal(t, http.StatusNotFound, w.Code)
		testutil.AssertErrorResponse(t, w, "ERR_NOT_FOUND")
	})

	t.Run("products sorted by price", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{Path: "/api/categories/" + kitchen.ID.String() + "/products/?sort=price_low"})
		require.Equal(t, http.StatusOK, w.Code)
		resp := testutil.JSONResponse(t, w)
		data := resp["data"].([]interface{})
		require.Len(t, data, 2)
		assert.Equal(t, "Cast Iron Pan", data[0].(map[string]interface{})["name"])
		assert.Equal(t, float64(2), resp["meta"].(map[string]interface{})["total"])
	})

	t.Run("create update and delete", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{Method: http.MethodPost, Path: "/api/admin/categories",
			Body: map[string]any{"name": "Bathroom", "description": "Premium bathroom accessories"}})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		id := testutil.Data(t, w)["id"].(string)

		w = testutil.Do(t, r, testutil.Request{Method: http.MethodPut, Path: "/api/admin/categories/" + id,
			Body: map[string]any{"description": "Towels and more"}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Towels and more", testutil.Data(t, w)["description"])

		w = testutil.Do(t, r, testutil.Request{Method: http.MethodDelete, Path: "/api/admin/categories/" + id})
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("create requires a name", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{Method: http.MethodPost, Path: "/api/admin/categories",
			Body: map[string]any{"description": "nameless"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		testutil.AssertErrorResponse(t, w, "ERR_VALIDATION")
	})

	t.Run("category with products cannot be deleted", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{Method: http.MethodDelete, Path: "/api/admin/categories/" + kitchen.ID.String()})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProductHandler(t *testing.T) {
	env := newStoreEnv(t)
	r := catalogRouter(env)
	ctx := context.Background()

	kitchen := testutil.CreateCategory(t, env.db, "Kitchen")
	knife := testutil.CreateProduct(t, env.db, kitchen.ID, "Chef Knife Set", "KIT-001", 8999, 25)
	pan := testutil.CreateProduct(t, env.db, kitchen.ID, "Cast Iron Pan", "KIT-002", 4500, 0)
	hidden := testutil.CreateProduct(t, env.db, kitchen.ID, "Old Kettle", "KIT-003", 1000, 5)

	products := persistence.NewGormProductRepository(env.db)
	knife.IsFeatured = true
	require.NoError(t, products.Save(ctx, knife))
	hidden.IsActive = false
	require.NoError(t, products.Save(ctx, hidden))

	t.Run("list hides inactive products", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{Path: "/api/products/"})
		require.Equal(t, http.StatusOK, w.Code)
		resp := testutil.JSONResponse(t, w)
		assert.Len(t, resp["data"], 2)
		assert.Equal(t, float64(12), resp["meta"].(map[string]interface{})["page_size"])
	})

	t.Run("search and featured filters", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{Path: "/api/products/?search=iron"})
		data := testutil.JSONResponse(t, w)["data"].([]interface{})
		require.Len(t, data, 1)
		assert.Equal(t, "out_of_stock", data[0].(map[string]interface{})["stock_status"])

		w = testutil.Do(t, r, testutil.Request{Path: "/api/products/?featured=true"})
		data = testutil.JSONResponse(t, w)["data"].([]interface{})
		require.Len(t, data, 1)
		assert.Equal(t, knife.ID.String(), data[0].(map[string]interface{})["id"])
	})

	t.Run("bad category filter", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{Path: "/api/products/?category=xyz"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("featured with non numeric limit", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{Path: "/api/products/featured/?limit=abc"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, testutil.JSONResponse(t, w)["data"], 1)
	})

	t.Run("detail by slug", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{Path: "/api/products/" + pan.Slug + "/"})
		require.Equal(t, http.StatusOK, w.Code)
		data := testutil.Data(t, w)
		assert.Equal(t, "KIT-002", data["sku"])
		assert.Equal(t, "Kitchen", data["category_name"])
	})

	t.Run("inactive product is hidden publicly but visible to admins", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{Path: "/api/products/" + hidden.ID.String() + "/"})
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = testutil.Do(t, r, testutil.Request{Path: "/api/admin/products/" + hidden.ID.String()})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("create and update", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{Method: http.MethodPost, Path: "/api/admin/products", Body: map[string]any{
			"name":           "Linen Duvet",
			"price":          "6500.00",
			"original_price": "8000.00",
			"category":       kitchen.ID.String(),
			"sku":            "BED-001",
			"stock_quantity": 12,
		}})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		data := testutil.Data(t, w)
		assert.Equal(t, "linen-duvet", data["slug"])
		assert.Equal(t, true, data["has_discount"])
		assert.Equal(t, float64(19), data["discount_percentage"])

		w = testutil.Do(t, r, testutil.Request{Method: http.MethodPut, Path: "/api/admin/products/" + data["id"].(string),
			Body: map[string]any{"is_featured": true}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, true, testutil.Data(t, w)["is_featured"])
	})

	t.Run("duplicate sku", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{Method: http.MethodPost, Path: "/api/admin/products", Body: map[string]any{
			"name": "Another Knife", "price": "10", "category": kitchen.ID.String(), "sku": "KIT-001",
		}})
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})
}

func uploadRequest(t *testing.T, path, filename, contentType string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestProductHandlerImages(t *testing.T) {
	env := newStoreEnv(t)
	r := catalogRouter(env)

	kitchen := testutil.CreateCategory(t, env.db, "Kitchen")
	knife := testutil.CreateProduct(t, env.db, kitchen.ID, "Chef Knife Set", "KIT-001", 8999, 25)
	base := "/api/admin/products/" + knife.ID.String() + "/images"

	upload := func(name string, fields map[string]string) map[string]interface{} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, base, name, "image/jpeg", []byte("jpeg-bytes"), fields))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return testutil.Data(t, w)
	}

	first := upload("front.jpg", nil)
	assert.Equal(t, true, first["is_primary"])
	assert.Contains(t, first["image"], "https://cdn.test/products/")

	second := upload("side.JPG", map[string]string{"alt_text": "Side view"})
	assert.Equal(t, false, second["is_primary"])
	assert.Equal(t, "Side view", second["alt_text"])

	t.Run("make second primary", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{Method: http.MethodPatch, Path: base + "/" + second["id"].(string) + "/primary"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = testutil.Do(t, r, testutil.Request{Path: "/api/products/" + knife.ID.String() + "/"})
		data := testutil.Data(t, w)
		primary := data["primary_image"].(map[string]interface{})
		assert.Equal(t, second["id"], primary["id"])
		assert.Len(t, data["images"], 2)
	})

	t.Run("non image upload", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, base, "notes.txt", "text/plain", []byte("hello"), nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{Method: http.MethodPost, Path: base, Body: map[string]any{}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete removes stored object", func(t *testing.T) {
		w := testutil.Do(t, r, testutil.Request{Method: http.MethodDelete, Path: base + "/" + first["id"].(string)})
		require.Equal(t, http.StatusNoContent, w.Code)

		w = testutil.Do(t, r, testutil.Request{Method: http.MethodDelete, Path: base + "/" + first["id"].(string)})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
