package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	orderapp "github.com/adfinitum/backend/internal/application/order"
	"github.com/adfinitum/backend/internal/application/printing"
	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/domain/order"
	"github.com/adfinitum/backend/internal/interfaces/http/dto"
	"github.com/adfinitum/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupOrderRouter(h *OrderHandler, userID *uuid.UUID, admin bool) *gin.Engine {
	r := gin.New()
	if userID != nil {
		r.Use(asUser(*userID, admin))
	}
	g := r.Group("/api/v1/orders", middleware.GuestSession())
	g.POST("", h.Checkout)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/update-status", h.UpdateStatus)
	g.POST("/:id/cancel", h.Cancel)
	g.GET("/:id/history", h.History)
	g.GET("/:id/invoice", h.Invoice)
	return r
}

func userActor(id uuid.UUID, staff bool) appshared.Actor {
	return appshared.Actor{UserID: &id, IsStaff: staff}
}

func TestOrderHandler_Checkout(t *testing.T) {
	userID := uuid.New()
	cartID := uuid.New()
	addressID := uuid.New()
	methodID := uuid.New()
	body := map[string]any{
		"cart_id":             cartID,
		"email":               "wanjiku@example.com",
		"full_name":           "Wanjiku Kamau",
		"phone_number":        "0712345678",
		"shipping_address_id": addressID,
		"shipping_method_id":  methodID,
		"payment_method":      "mpesa",
	}

	t.Run("places the order", func(t *testing.T) {
		orders := new(MockOrderService)
		orders.On("Checkout", mock.Anything, userActor(userID, false), orderapp.CheckoutInput{
			CartID:            cartID,
			Email:             "wanjiku@example.com",
			FullName:          "Wanjiku Kamau",
			PhoneNumber:       "0712345678",
			ShippingAddressID: addressID,
			ShippingMethodID:  methodID,
			PaymentMethod:     "mpesa",
		}).Return(&orderapp.OrderResponse{
			ID:     uuid.New(),
			Status: "pending",
			Total:  decimal.RequireFromString("1150.00"),
		}, nil)

		w := performRequest(setupOrderRouter(NewOrderHandler(orders, new(MockInvoiceService)), &userID, false),
			http.MethodPost, "/api/v1/orders", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "pending", data["status"])
		assert.Equal(t, "1150", data["total"])
		orders.AssertExpectations(t)
	})

	t.Run("empty cart", func(t *testing.T) {
		orders := new(MockOrderService)
		orders.On("Checkout", mock.Anything, mock.Anything, mock.Anything).Return(nil, order.ErrEmptyOrder)

		w := performRequest(setupOrderRouter(NewOrderHandler(orders, new(MockInvoiceService)), &userID, false),
			http.MethodPost, "/api/v1/orders", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeEmptyOrder, decodeResponse(t, w).Error.Code)
	})

	t.Run("cash on delivery", func(t *testing.T) {
		cod := map[string]any{}
		for k, v := range body {
			cod[k] = v
		}
		cod["payment_method"] = "cod"

		orders := new(MockOrderService)
		orders.On("Checkout", mock.Anything, userActor(userID, false), mock.MatchedBy(func(in orderapp.CheckoutInput) bool {
			return in.PaymentMethod == "cod"
		})).Return(&orderapp.OrderResponse{ID: uuid.New(), Status: "pending", PaymentMethod: "cod"}, nil)

		w := performRequest(setupOrderRouter(NewOrderHandler(orders, new(MockInvoiceService)), &userID, false),
			http.MethodPost, "/api/v1/orders", cod)

		assert.Equal(t, http.StatusCreated, w.Code)
		orders.AssertExpectations(t)
	})

	t.Run("cart built before login", func(t *testing.T) {
		orders := new(MockOrderService)
		want := userActor(userID, false)
		want.SessionID = "guest-session-abc"
		orders.On("Checkout", mock.Anything, want, mock.Anything).
			Return(&orderapp.OrderResponse{ID: uuid.New(), Status: "pending"}, nil)

		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.SessionIDHeader, "guest-session-abc")
		w := httptest.NewRecorder()
		setupOrderRouter(NewOrderHandler(orders, new(MockInvoiceService)), &userID, false).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		orders.AssertExpectations(t)
	})

	t.Run("unknown payment method", func(t *testing.T) {
		bad := map[string]any{}
		for k, v := range body {
			bad[k] = v
		}
		bad["payment_method"] = "cash"

		w := performRequest(setupOrderRouter(NewOrderHandler(new(MockOrderService), new(MockInvoiceService)), &userID, false),
			http.MethodPost, "/api/v1/orders", bad)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "payment_method", resp.Error.Details[0].Field)
	})
}

func TestOrderHandler_List(t *testing.T) {
	userID := uuid.New()
	orders := new(MockOrderService)
	orders.On("List", mock.Anything, userActor(userID, false), orderapp.ListFilter{Status: "shipped", Page: 1, PageSize: 10}).
		Return(&orderapp.ListResult{
			Orders:   []orderapp.OrderResponse{{ID: uuid.New(), Status: "shipped"}},
			Total:    1,
			Page:     1,
			PageSize: 10,
		}, nil)

	w := performRequest(setupOrderRouter(NewOrderHandler(orders, new(MockInvoiceService)), &userID, false),
		http.MethodGet, "/api/v1/orders?status=shipped&page=1&page_size=10", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, int64(1), resp.Meta.Total)
	orders.AssertExpectations(t)
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	adminID := uuid.New()
	orderID := uuid.New()

	t.Run("reports the new status", func(t *testing.T) {
		orders := new(MockOrderService)
		orders.On("UpdateStatus", mock.Anything, userActor(adminID, true), orderID, "shipped", "Dispatched via G4S").
			Return(&orderapp.OrderResponse{ID: orderID, Status: "shipped"}, nil)

		w := performRequest(setupOrderRouter(NewOrderHandler(orders, new(MockInvoiceService)), &adminID, true),
			http.MethodPost, "/api/v1/orders/"+orderID.String()+"/update-status", map[string]string{
				"status": "shipped",
				"note":   "Dispatched via G4S",
			})

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "Order updated to shipped", data["status"])
		assert.Equal(t, "shipped", data["order"].(map[string]any)["status"])
		orders.AssertExpectations(t)
	})

	t.Run("status is required", func(t *testing.T) {
		w := performRequest(setupOrderRouter(NewOrderHandler(new(MockOrderService), new(MockInvoiceService)), &adminID, true),
			http.MethodPost, "/api/v1/orders/"+orderID.String()+"/update-status", map[string]string{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "status", decodeResponse(t, w).Error.Details[0].Field)
	})

	t.Run("unknown status", func(t *testing.T) {
		orders := new(MockOrderService)
		orders.On("UpdateStatus", mock.Anything, mock.Anything, orderID, "teleported", "").
			Return(nil, order.ErrInvalidStatus)

		w := performRequest(setupOrderRouter(NewOrderHandler(orders, new(MockInvoiceService)), &adminID, true),
			http.MethodPost, "/api/v1/orders/"+orderID.String()+"/update-status", map[string]string{"status": "teleported"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("transition not allowed", func(t *testing.T) {
		orders := new(MockOrderService)
		orders.On("UpdateStatus", mock.Anything, mock.Anything, orderID, "pending", "").
			Return(nil, order.ErrTransitionDenied)

		w := performRequest(setupOrderRouter(NewOrderHandler(orders, new(MockInvoiceService)), &adminID, true),
			http.MethodPost, "/api/v1/orders/"+orderID.String()+"/update-status", map[string]string{"status": "pending"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidTransition, decodeResponse(t, w).Error.Code)
	})
}

func TestOrderHandler_Cancel(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	t.Run("cancelled", func(t *testing.T) {
		orders := new(MockOrderService)
		orders.On("Cancel", mock.Anything, userActor(userID, false), orderID).
			Return(&orderapp.OrderResponse{ID: orderID, Status: "cancelled"}, nil)

		w := performRequest(setupOrderRouter(NewOrderHandler(orders, new(MockInvoiceService)), &userID, false),
			http.MethodPost, "/api/v1/orders/"+orderID.String()+"/cancel", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("already shipped", func(t *testing.T) {
		orders := new(MockOrderService)
		orders.On("Cancel", mock.Anything, mock.Anything, orderID).Return(nil, order.ErrCannotCancel)

		w := performRequest(setupOrderRouter(NewOrderHandler(orders, new(MockInvoiceService)), &userID, false),
			http.MethodPost, "/api/v1/orders/"+orderID.String()+"/cancel", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeOrderNotCancellable, decodeResponse(t, w).Error.Code)
	})

	t.Run("someone else's order", func(t *testing.T) {
		orders := new(MockOrderService)
		orders.On("Cancel", mock.Anything, mock.Anything, orderID).Return(nil, order.ErrCancelForbidden)

		w := performRequest(setupOrderRouter(NewOrderHandler(orders, new(MockInvoiceService)), &userID, false),
			http.MethodPost, "/api/v1/orders/"+orderID.String()+"/cancel", nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestOrderHandler_History(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	changed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	orders := new(MockOrderService)
	orders.On("History", mock.Anything, userActor(userID, false), orderID).Return([]orderapp.HistoryResponse{
		{ID: uuid.New(), OldStatus: "", NewStatus: "pending", ChangedAt: changed, Note: "Order placed"},
		{ID: uuid.New(), OldStatus: "pending", NewStatus: "paid", ChangedAt: changed.Add(time.Hour), Note: "M-Pesa QGH12345"},
	}, nil)

	w := performRequest(setupOrderRouter(NewOrderHandler(orders, new(MockInvoiceService)), &userID, false),
		http.MethodGet, "/api/v1/orders/"+orderID.String()+"/history", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	entries := decodeResponse(t, w).Data.([]any)
	require.Len(t, entries, 2)
	last := entries[1].(map[string]any)
	assert.Equal(t, "pending", last["old_status"])
	assert.Equal(t, "paid", last["new_status"])
	assert.Equal(t, "M-Pesa QGH12345", last["note"])
	assert.NotEmpty(t, last["changed_at"])
}

func TestOrderHandler_Invoice(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	invoices := new(MockInvoiceService)
	invoices.On("Generate", mock.Anything, userActor(userID, false), orderID).Return(&printing.InvoiceResponse{
		OrderID: orderID,
		URL:     "https://cdn.example.com/invoices/x.pdf",
		Size:    2048,
	}, nil)

	w := performRequest(setupOrderRouter(NewOrderHandler(new(MockOrderService), invoices), &userID, false),
		http.MethodGet, "/api/v1/orders/"+orderID.String()+"/invoice", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://cdn.example.com/invoices/x.pdf", decodeResponse(t, w).Data.(map[string]any)["url"])
}
