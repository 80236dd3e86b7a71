package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	cartapp "github.com/adfinitum/backend/internal/application/cart"
	catalogapp "github.com/adfinitum/backend/internal/application/catalog"
	"github.com/adfinitum/backend/internal/application/identity"
	orderapp "github.com/adfinitum/backend/internal/application/order"
	paymentapp "github.com/adfinitum/backend/internal/application/payment"
	"github.com/adfinitum/backend/internal/application/printing"
	appshared "github.com/adfinitum/backend/internal/application/shared"
	shippingapp "github.com/adfinitum/backend/internal/application/shipping"
	"github.com/adfinitum/backend/internal/domain/analytics"
	"github.com/adfinitum/backend/internal/infrastructure/auth"
	"github.com/adfinitum/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// asUser marks the request as authenticated the way JWTAuthMiddleware does
func asUser(id uuid.UUID, canManage bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTClaimsKey, &auth.Claims{UserID: id.String(), CanManage: canManage})
		c.Set(middleware.JWTUserIDKey, id.String())
		c.Set(middleware.JWTCanManageKey, canManage)
		c.Next()
	}
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, input identity.RegisterInput) (*identity.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.AuthResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, input identity.LoginInput) (*identity.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.AuthResult), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*identity.TokenResult, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.TokenResult), args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, userID uuid.UUID) (*identity.UserResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserResponse), args.Error(1)
}

func (m *MockAuthService) UpdateMe(ctx context.Context, userID uuid.UUID, input identity.ProfileInput) (*identity.UserResponse, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserResponse), args.Error(1)
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockAuthService) ConfirmPasswordReset(ctx context.Context, input identity.PasswordResetConfirmInput) error {
	return m.Called(ctx, input).Error(0)
}

// MockProductService is a mock implementation of ProductService
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, query catalogapp.ProductListQuery) (*catalogapp.ProductListResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductListResult), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *MockProductService) GetBySlug(ctx context.Context, slug string) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, input catalogapp.ProductInput, createdBy *uuid.UUID) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, input, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id uuid.UUID, input catalogapp.ProductInput) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) AddImage(ctx context.Context, productID uuid.UUID, upload appshared.Upload, altText string, featured bool) (*catalogapp.ImageResponse, error) {
	args := m.Called(ctx, productID, upload, altText, featured)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ImageResponse), args.Error(1)
}

func (m *MockProductService) DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error {
	return m.Called(ctx, productID, imageID).Error(0)
}

func (m *MockProductService) AddVariation(ctx context.Context, productID uuid.UUID, input catalogapp.VariationInput) (*catalogapp.VariationResponse, error) {
	args := m.Called(ctx, productID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.VariationResponse), args.Error(1)
}

func (m *MockProductService) UpdateVariation(ctx context.Context, productID, variationID uuid.UUID, input catalogapp.VariationInput) (*catalogapp.VariationResponse, error) {
	args := m.Called(ctx, productID, variationID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.VariationResponse), args.Error(1)
}

func (m *MockProductService) DeleteVariation(ctx context.Context, productID, variationID uuid.UUID) error {
	return m.Called(ctx, productID, variationID).Error(0)
}

// MockReviewService is a mock implementation of ReviewService
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) List(ctx context.Context, productID uuid.UUID, page, pageSize int) (*catalogapp.ReviewListResult, error) {
	args := m.Called(ctx, productID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ReviewListResult), args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, productID, userID uuid.UUID, input catalogapp.ReviewInput) (*catalogapp.ReviewResponse, error) {
	args := m.Called(ctx, productID, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, productID, reviewID, userID uuid.UUID, canManage bool) error {
	return m.Called(ctx, productID, reviewID, userID, canManage).Error(0)
}

// MockCartService is a mock implementation of CartService
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, owner cartapp.Owner) (*cartapp.CartResponse, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cartapp.CartResponse), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, owner cartapp.Owner, productID uuid.UUID, quantity int) (*cartapp.CartResponse, error) {
	args := m.Called(ctx, owner, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cartapp.CartResponse), args.Error(1)
}

func (m *MockCartService) UpdateItem(ctx context.Context, owner cartapp.Owner, itemID uuid.UUID, quantity int) (*cartapp.CartResponse, error) {
	args := m.Called(ctx, owner, itemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cartapp.CartResponse), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, owner cartapp.Owner, itemID uuid.UUID) (*cartapp.CartResponse, error) {
	args := m.Called(ctx, owner, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cartapp.CartResponse), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, owner cartapp.Owner) error {
	return m.Called(ctx, owner).Error(0)
}

func (m *MockCartService) ApplyCoupon(ctx context.Context, owner cartapp.Owner, code string) (*cartapp.ApplyCouponResult, error) {
	args := m.Called(ctx, owner, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cartapp.ApplyCouponResult), args.Error(1)
}

// MockOrderService is a mock implementation of OrderService
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, actor appshared.Actor, input orderapp.CheckoutInput) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.OrderResponse), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, actor appshared.Actor, filter orderapp.ListFilter) (*orderapp.ListResult, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.ListResult), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, actor appshared.Actor, id uuid.UUID) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.OrderResponse), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, actor appshared.Actor, id uuid.UUID, status, note string) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, actor, id, status, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.OrderResponse), args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, actor appshared.Actor, id uuid.UUID) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.OrderResponse), args.Error(1)
}

func (m *MockOrderService) History(ctx context.Context, actor appshared.Actor, id uuid.UUID) ([]orderapp.HistoryResponse, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]orderapp.HistoryResponse), args.Error(1)
}

// MockInvoiceService is a mock implementation of InvoiceService
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Generate(ctx context.Context, actor appshared.Actor, orderID uuid.UUID) (*printing.InvoiceResponse, error) {
	args := m.Called(ctx, actor, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printing.InvoiceResponse), args.Error(1)
}

// MockPaymentService is a mock implementation of PaymentService
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) List(ctx context.Context, actor appshared.Actor, filter paymentapp.ListFilter) (*paymentapp.ListResult, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentapp.ListResult), args.Error(1)
}

func (m *MockPaymentService) Get(ctx context.Context, actor appshared.Actor, id uuid.UUID) (*paymentapp.PaymentResponse, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentapp.PaymentResponse), args.Error(1)
}

func (m *MockPaymentService) InitiateMpesa(ctx context.Context, actor appshared.Actor, input paymentapp.MpesaInput) (*paymentapp.PaymentResponse, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentapp.PaymentResponse), args.Error(1)
}

func (m *MockPaymentService) HandleCallback(ctx context.Context, raw []byte) error {
	return m.Called(ctx, raw).Error(0)
}

func (m *MockPaymentService) SubmitBank(ctx context.Context, actor appshared.Actor, input paymentapp.BankInput) (*paymentapp.PaymentResponse, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentapp.PaymentResponse), args.Error(1)
}

func (m *MockPaymentService) Review(ctx context.Context, actor appshared.Actor, id uuid.UUID, approve bool, note string) (*paymentapp.PaymentResponse, error) {
	args := m.Called(ctx, actor, id, approve, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentapp.PaymentResponse), args.Error(1)
}

// MockShipmentService is a mock implementation of ShipmentService
type MockShipmentService struct {
	mock.Mock
}

func (m *MockShipmentService) List(ctx context.Context, actor appshared.Actor, filter shippingapp.ShipmentListFilter) (*shippingapp.ShipmentListResult, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shippingapp.ShipmentListResult), args.Error(1)
}

func (m *MockShipmentService) Get(ctx context.Context, actor appshared.Actor, id uuid.UUID) (*shippingapp.ShipmentResponse, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shippingapp.ShipmentResponse), args.Error(1)
}

func (m *MockShipmentService) History(ctx context.Context, actor appshared.Actor, id uuid.UUID) ([]shippingapp.HistoryResponse, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shippingapp.HistoryResponse), args.Error(1)
}

func (m *MockShipmentService) Create(ctx context.Context, input shippingapp.ShipmentInput) (*shippingapp.ShipmentResponse, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shippingapp.ShipmentResponse), args.Error(1)
}

func (m *MockShipmentService) UpdateCarrier(ctx context.Context, id uuid.UUID, input shippingapp.CarrierInput) (*shippingapp.ShipmentResponse, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shippingapp.ShipmentResponse), args.Error(1)
}

func (m *MockShipmentService) UpdateStatus(ctx context.Context, actor appshared.Actor, id uuid.UUID, status, note string) (*shippingapp.ShipmentResponse, error) {
	args := m.Called(ctx, actor, id, status, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shippingapp.ShipmentResponse), args.Error(1)
}

// MockAnalyticsService is a mock implementation of AnalyticsService
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) Overview(ctx context.Context) (*analytics.Overview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.Overview), args.Error(1)
}

func (m *MockAnalyticsService) Sales(ctx context.Context, days int) ([]analytics.SalesPoint, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.SalesPoint), args.Error(1)
}

func (m *MockAnalyticsService) RecentOrders(ctx context.Context, limit int) ([]analytics.RecentOrder, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.RecentOrder), args.Error(1)
}

func (m *MockAnalyticsService) TopProducts(ctx context.Context, limit int) ([]analytics.TopProduct, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.TopProduct), args.Error(1)
}
