package handler

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	catalogapp "github.com/adfinitum/backend/internal/application/catalog"
	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/adfinitum/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupProductRouter(h *ProductHandler, userID *uuid.UUID, admin bool) *gin.Engine {
	r := gin.New()
	if userID != nil {
		r.Use(asUser(*userID, admin))
	}
	g := r.Group("/api/v1/products")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.GetByID)
	g.GET("/slug/:slug", h.GetBySlug)
	g.POST("/:id/images", h.AddImage)
	g.GET("/:id/reviews", h.ListReviews)
	g.POST("/:id/reviews", h.CreateReview)
	g.DELETE("/:id/reviews/:reviewId", h.DeleteReview)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fileField, filename))
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestProductHandler_List(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		products := new(MockProductService)
		brandID := uuid.New()
		products.On("List", mock.Anything, mock.MatchedBy(func(q catalogapp.ProductListQuery) bool {
			return q.Category == "phones" &&
				q.BrandID != nil && *q.BrandID == brandID &&
				q.MinPrice != nil && q.MinPrice.Equal(decimal.NewFromInt(100)) &&
				q.MaxPrice == nil &&
				q.IsFeatured != nil && *q.IsFeatured &&
				q.Ordering == "-price" &&
				q.Page == 2
		})).Return(&catalogapp.ProductListResult{
			Products: []catalogapp.ProductResponse{{ID: uuid.New(), Name: "Phone"}},
			Total:    21,
			Page:     2,
			PageSize: 20,
		}, nil)

		h := NewProductHandler(products, new(MockReviewService))
		path := fmt.Sprintf("/api/v1/products?category=phones&brand=%s&min_price=100&is_featured=true&ordering=-price&page=2", brandID)
		w := performRequest(setupProductRouter(h, nil, false), http.MethodGet, path, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(21), resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.TotalPages)
		products.AssertExpectations(t)
	})

	t.Run("malformed price filter", func(t *testing.T) {
		h := NewProductHandler(new(MockProductService), new(MockReviewService))
		w := performRequest(setupProductRouter(h, nil, false), http.MethodGet, "/api/v1/products?max_price=cheap", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "max_price", resp.Error.Details[0].Field)
	})

	t.Run("page size above limit", func(t *testing.T) {
		h := NewProductHandler(new(MockProductService), new(MockReviewService))
		w := performRequest(setupProductRouter(h, nil, false), http.MethodGet, "/api/v1/products?page_size=500", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "page_size", decodeResponse(t, w).Error.Details[0].Field)
	})
}

func TestProductHandler_GetByID(t *testing.T) {
	id := uuid.New()

	t.Run("anonymous sees active only", func(t *testing.T) {
		products := new(MockProductService)
		products.On("Get", mock.Anything, id, false).Return(nil, shared.ErrNotFound)

		h := NewProductHandler(products, new(MockReviewService))
		w := performRequest(setupProductRouter(h, nil, false), http.MethodGet, "/api/v1/products/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		products.AssertExpectations(t)
	})

	t.Run("admin may see inactive", func(t *testing.T) {
		adminID := uuid.New()
		products := new(MockProductService)
		products.On("Get", mock.Anything, id, true).Return(&catalogapp.ProductResponse{ID: id, IsActive: false}, nil)

		h := NewProductHandler(products, new(MockReviewService))
		w := performRequest(setupProductRouter(h, &adminID, true), http.MethodGet, "/api/v1/products/"+id.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		products.AssertExpectations(t)
	})

	t.Run("malformed id", func(t *testing.T) {
		h := NewProductHandler(new(MockProductService), new(MockReviewService))
		w := performRequest(setupProductRouter(h, nil, false), http.MethodGet, "/api/v1/products/abc", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestProductHandler_Create(t *testing.T) {
	adminID := uuid.New()
	categoryID := uuid.New()

	t.Run("created with creator", func(t *testing.T) {
		products := new(MockProductService)
		products.On("Create", mock.Anything, mock.MatchedBy(func(in catalogapp.ProductInput) bool {
			return in.Name == "Tecno Spark" && in.Price.Equal(decimal.RequireFromString("15999.00")) && in.CategoryID == categoryID
		}), &adminID).Return(&catalogapp.ProductResponse{ID: uuid.New(), Name: "Tecno Spark", Slug: "tecno-spark"}, nil)

		h := NewProductHandler(products, new(MockReviewService))
		w := performRequest(setupProductRouter(h, &adminID, true), http.MethodPost, "/api/v1/products", map[string]any{
			"name":        "Tecno Spark",
			"category_id": categoryID,
			"price":       "15999.00",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "tecno-spark", decodeResponse(t, w).Data.(map[string]any)["slug"])
		products.AssertExpectations(t)
	})

	t.Run("missing price and category", func(t *testing.T) {
		h := NewProductHandler(new(MockProductService), new(MockReviewService))
		w := performRequest(setupProductRouter(h, &adminID, true), http.MethodPost, "/api/v1/products", map[string]any{
			"name":         "Tecno Spark",
			"availability": "sold_out",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var fields []string
		for _, d := range decodeResponse(t, w).Error.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"category_id", "price", "availability"}, fields)
	})

	t.Run("duplicate sku", func(t *testing.T) {
		products := new(MockProductService)
		products.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, shared.ErrAlreadyExists.WithMessage("product with this sku already exists.").WithField("sku"))

		h := NewProductHandler(products, new(MockReviewService))
		w := performRequest(setupProductRouter(h, &adminID, true), http.MethodPost, "/api/v1/products", map[string]any{
			"name":        "Tecno Spark",
			"category_id": categoryID,
			"price":       "10",
			"sku":         "TS-1",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "sku", decodeResponse(t, w).Error.Details[0].Field)
	})
}

func TestProductHandler_AddImage(t *testing.T) {
	adminID := uuid.New()
	productID := uuid.New()

	t.Run("uploads the file", func(t *testing.T) {
		products := new(MockProductService)
		products.On("AddImage", mock.Anything, productID, mock.MatchedBy(func(u appshared.Upload) bool {
			return u.Filename == "front.png" && u.ContentType == "image/png" && u.Size == 4
		}), "Front view", true).Return(&catalogapp.ImageResponse{ID: uuid.New()}, nil)

		body, contentType := multipartBody(t, map[string]string{"alt_text": "Front view", "is_featured": "true"},
			"image", "front.png", "image/png", []byte{0x89, 'P', 'N', 'G'})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+productID.String()+"/images", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		setupProductRouter(NewProductHandler(products, new(MockReviewService)), &adminID, true).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		products.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{"alt_text": "Front view"}, "", "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+productID.String()+"/images", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		setupProductRouter(NewProductHandler(new(MockProductService), new(MockReviewService)), &adminID, true).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "image", resp.Error.Details[0].Field)
		assert.Equal(t, "No file was submitted.", resp.Error.Details[0].Message)
	})

	t.Run("unsupported type", func(t *testing.T) {
		products := new(MockProductService)
		products.On("AddImage", mock.Anything, productID, mock.Anything, "", false).
			Return(nil, shared.NewFieldError("image", "Upload a valid image."))

		body, contentType := multipartBody(t, nil, "image", "notes.txt", "text/plain", []byte("hello"))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+productID.String()+"/images", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		setupProductRouter(NewProductHandler(products, new(MockReviewService)), &adminID, true).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
	})
}

func TestProductHandler_Reviews(t *testing.T) {
	productID := uuid.New()
	userID := uuid.New()

	t.Run("anonymous cannot review", func(t *testing.T) {
		h := NewProductHandler(new(MockProductService), new(MockReviewService))
		w := performRequest(setupProductRouter(h, nil, false), http.MethodPost, "/api/v1/products/"+productID.String()+"/reviews", map[string]any{
			"rating": 5,
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rating out of range", func(t *testing.T) {
		h := NewProductHandler(new(MockProductService), new(MockReviewService))
		w := performRequest(setupProductRouter(h, &userID, false), http.MethodPost, "/api/v1/products/"+productID.String()+"/reviews", map[string]any{
			"rating": 6,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "rating", decodeResponse(t, w).Error.Details[0].Field)
	})

	t.Run("second review conflicts", func(t *testing.T) {
		reviews := new(MockReviewService)
		reviews.On("Create", mock.Anything, productID, userID, catalogapp.ReviewInput{Rating: 4, Comment: "Good"}).
			Return(nil, shared.ErrAlreadyExists.WithMessage("You have already reviewed this product."))

		h := NewProductHandler(new(MockProductService), reviews)
		w := performRequest(setupProductRouter(h, &userID, false), http.MethodPost, "/api/v1/products/"+productID.String()+"/reviews", map[string]any{
			"rating":  4,
			"comment": "Good",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("deleting someone else's review", func(t *testing.T) {
		reviewID := uuid.New()
		reviews := new(MockReviewService)
		reviews.On("Delete", mock.Anything, productID, reviewID, userID, false).Return(shared.ErrForbidden)

		h := NewProductHandler(new(MockProductService), reviews)
		w := performRequest(setupProductRouter(h, &userID, false), http.MethodDelete,
			"/api/v1/products/"+productID.String()+"/reviews/"+reviewID.String(), nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		reviews.AssertExpectations(t)
	})

	t.Run("list pages", func(t *testing.T) {
		reviews := new(MockReviewService)
		reviews.On("List", mock.Anything, productID, 0, 0).Return(&catalogapp.ReviewListResult{
			Reviews:  []catalogapp.ReviewResponse{{ID: uuid.New(), Rating: 5}},
			Total:    1,
			Page:     1,
			PageSize: 20,
		}, nil)

		h := NewProductHandler(new(MockProductService), reviews)
		w := performRequest(setupProductRouter(h, nil, false), http.MethodGet, "/api/v1/products/"+productID.String()+"/reviews", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(1), decodeResponse(t, w).Meta.Total)
	})
}
