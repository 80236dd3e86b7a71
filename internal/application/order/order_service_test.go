package order

import (
	"context"
	"errors"
	"testing"
	"time"

	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/domain/cart"
	"github.com/adfinitum/backend/internal/domain/catalog"
	"github.com/adfinitum/backend/internal/domain/order"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/adfinitum/backend/internal/domain/shipping"
	"github.com/adfinitum/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type orderFixture struct {
	orders    *MockOrderRepository
	carts     *MockCartRepository
	coupons   *MockCouponRepository
	addresses *MockAddressRepository
	methods   *MockMethodRepository
	products  *MockProductReader
	events    *MockEventPublisher
	service   *OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:    new(MockOrderRepository),
		carts:     new(MockCartRepository),
		coupons:   new(MockCouponRepository),
		addresses: new(MockAddressRepository),
		methods:   new(MockMethodRepository),
		products:  new(MockProductReader),
		events:    new(MockEventPublisher),
	}
	scope := appshared.NoOpTransactionScope{Repos: appshared.RepositorySet{
		CartRepo:  f.carts,
		OrderRepo: f.orders,
	}}
	f.service = NewOrderService(scope, f.orders, f.addresses, f.methods, f.coupons, f.products,
		storage.NewStubObjectStorage(""), f.events, zap.NewNop())
	return f
}

func newAddress(t *testing.T, userID uuid.UUID) *shipping.Address {
	t.Helper()
	a, err := shipping.NewAddress(userID, shipping.AddressDetails{
		FullName:      "Amina Wanjiru",
		PhoneNumber:   "0712345678",
		Country:       "Kenya",
		City:          "Nairobi",
		StreetAddress: "Moi Avenue 12",
	})
	require.NoError(t, err)
	return a
}

func newMethod(t *testing.T, base int64, days int) *shipping.Method {
	t.Helper()
	m, err := shipping.NewMethod("Standard", "", decimal.NewFromInt(base), decimal.Zero, days)
	require.NoError(t, err)
	return m
}

func newUserCart(t *testing.T, userID uuid.UUID, lines ...decimal.Decimal) *cart.Cart {
	t.Helper()
	c := cart.NewUserCart(userID)
	for _, price := range lines {
		_, err := c.AddItem(uuid.New(), 2, price)
		require.NoError(t, err)
	}
	return c
}

func pendingOrder(t *testing.T, userID uuid.UUID) *order.Order {
	t.Helper()
	o, err := order.NewOrder(order.Customer{UserID: &userID, Email: "a@example.com", FullName: "Amina"}, order.PaymentMethodMpesa)
	require.NoError(t, err)
	pid := uuid.New()
	o.AddItem(&pid, "Kettle", "", 1, decimal.NewFromInt(100))
	require.NoError(t, o.Place(decimal.Zero, "", NoteCheckout))
	o.ClearDomainEvents()
	return o
}

func checkoutInput(c *cart.Cart, a *shipping.Address, m *shipping.Method) CheckoutInput {
	return CheckoutInput{
		CartID:            c.ID,
		Email:             "Amina@Example.com",
		FullName:          "Amina Wanjiru",
		PhoneNumber:       "0712345678",
		ShippingAddressID: a.ID,
		ShippingMethodID:  m.ID,
		PaymentMethod:     "mpesa",
	}
}

func TestOrderService_Checkout(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	userID := uuid.New()
	c := newUserCart(t, userID, decimal.NewFromInt(500), decimal.NewFromInt(250))
	address := newAddress(t, userID)
	method := newMethod(t, 300, 2)

	f.addresses.On("FindForUser", mock.Anything, userID, address.ID).Return(address, nil)
	f.methods.On("FindByID", mock.Anything, method.ID).Return(method, nil)
	f.carts.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	f.products.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Product{}, nil)
	f.carts.On("Save", mock.Anything, mock.MatchedBy(func(saved *cart.Cart) bool {
		return !saved.IsActive
	})).Return(nil)
	f.orders.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Checkout(ctx, appshared.Actor{UserID: &userID}, checkoutInput(c, address, method))
	require.NoError(t, err)

	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "unpaid", resp.PaymentStatus)
	assert.Equal(t, "amina@example.com", resp.Email)
	assert.True(t, decimal.NewFromInt(1500).Equal(resp.Subtotal))
	assert.True(t, decimal.NewFromInt(300).Equal(resp.ShippingCost))
	assert.True(t, decimal.NewFromInt(1800).Equal(resp.Total))
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, address.Format(), resp.ShippingAddress)
	require.NotNil(t, resp.EstimatedDelivery)

	require.Len(t, resp.History, 1)
	assert.Equal(t, "", resp.History[0].OldStatus)
	assert.Equal(t, "pending", resp.History[0].NewStatus)
	assert.Equal(t, NoteCheckout, resp.History[0].Note)
	assert.False(t, resp.History[0].ChangedAt.IsZero())

	assert.False(t, c.IsActive)
	f.carts.AssertExpectations(t)
	f.orders.AssertExpectations(t)
	f.events.AssertCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestOrderService_Checkout_AppliesValidCoupon(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	userID := uuid.New()
	c := newUserCart(t, userID, decimal.NewFromInt(500))
	now := time.Now()
	coupon, err := cart.NewCoupon("SAVE10", decimal.NewFromInt(10), now.Add(-time.Hour), now.Add(time.Hour), true)
	require.NoError(t, err)
	require.NoError(t, c.ApplyCoupon(coupon, now))
	address := newAddress(t, userID)
	method := newMethod(t, 0, 1)

	f.addresses.On("FindForUser", mock.Anything, userID, address.ID).Return(address, nil)
	f.methods.On("FindByID", mock.Anything, method.ID).Return(method, nil)
	f.carts.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	f.coupons.On("FindByCode", mock.Anything, "SAVE10").Return(coupon, nil)
	f.products.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Product{}, nil)
	f.carts.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.orders.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Checkout(ctx, appshared.Actor{UserID: &userID}, checkoutInput(c, address, method))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(resp.Discount))
	assert.True(t, decimal.NewFromInt(900).Equal(resp.Total))
	assert.Equal(t, "SAVE10", resp.CouponCode)
}

func TestOrderService_Checkout_RejectsForeignCart(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	userID := uuid.New()
	c := newUserCart(t, uuid.New(), decimal.NewFromInt(10))
	address := newAddress(t, userID)
	method := newMethod(t, 0, 1)

	f.addresses.On("FindForUser", mock.Anything, userID, address.ID).Return(address, nil)
	f.methods.On("FindByID", mock.Anything, method.ID).Return(method, nil)
	f.carts.On("FindByID", mock.Anything, c.ID).Return(c, nil)

	_, err := f.service.Checkout(ctx, appshared.Actor{UserID: &userID}, checkoutInput(c, address, method))
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "cart_id", domainErr.Field)
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOrderService_Checkout_RejectsInactiveOrMissingCart(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	userID := uuid.New()
	inactive := newUserCart(t, userID, decimal.NewFromInt(10))
	inactive.Deactivate()
	missing := uuid.New()
	address := newAddress(t, userID)
	method := newMethod(t, 0, 1)

	f.addresses.On("FindForUser", mock.Anything, userID, address.ID).Return(address, nil)
	f.methods.On("FindByID", mock.Anything, method.ID).Return(method, nil)
	f.carts.On("FindByID", mock.Anything, inactive.ID).Return(inactive, nil)
	f.carts.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)

	_, err := f.service.Checkout(ctx, appshared.Actor{UserID: &userID}, checkoutInput(inactive, address, method))
	assert.ErrorIs(t, err, ErrInvalidCart)

	input := checkoutInput(inactive, address, method)
	input.CartID = missing
	_, err = f.service.Checkout(ctx, appshared.Actor{UserID: &userID}, input)
	assert.ErrorIs(t, err, ErrInvalidCart)
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	userID := uuid.New()
	c := newUserCart(t, userID)
	address := newAddress(t, userID)
	method := newMethod(t, 0, 1)

	f.addresses.On("FindForUser", mock.Anything, userID, address.ID).Return(address, nil)
	f.methods.On("FindByID", mock.Anything, method.ID).Return(method, nil)
	f.carts.On("FindByID", mock.Anything, c.ID).Return(c, nil)

	_, err := f.service.Checkout(ctx, appshared.Actor{UserID: &userID}, checkoutInput(c, address, method))
	assert.ErrorIs(t, err, order.ErrEmptyOrder)
	assert.True(t, c.IsActive)
}

func TestOrderService_Checkout_GuestSessionCart(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	userID := uuid.New()
	c, err := cart.NewGuestCart("guest-session-abc")
	require.NoError(t, err)
	_, err = c.AddItem(uuid.New(), 1, decimal.NewFromInt(400))
	require.NoError(t, err)
	address := newAddress(t, userID)
	method := newMethod(t, 100, 1)

	f.carts.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	f.addresses.On("FindForUser", mock.Anything, userID, address.ID).Return(address, nil)
	f.methods.On("FindByID", mock.Anything, method.ID).Return(method, nil)
	f.products.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Product{}, nil)
	f.carts.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.orders.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	t.Run("rejected without the session", func(t *testing.T) {
		_, err := f.service.Checkout(ctx, appshared.Actor{UserID: &userID}, checkoutInput(c, address, method))
		assert.ErrorIs(t, err, ErrInvalidCart)
	})

	t.Run("accepted with the session", func(t *testing.T) {
		actor := appshared.Actor{UserID: &userID, SessionID: "guest-session-abc"}
		resp, err := f.service.Checkout(ctx, actor, checkoutInput(c, address, method))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(500).Equal(resp.Total))
		assert.False(t, c.IsActive)
	})
}

func TestOrderService_Checkout_ValidatesCartBeforeShipping(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	userID := uuid.New()
	empty := newUserCart(t, userID)
	address := newAddress(t, userID)
	method := newMethod(t, 0, 1)

	f.carts.On("FindByID", mock.Anything, empty.ID).Return(empty, nil)
	f.carts.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

	_, err := f.service.Checkout(ctx, appshared.Actor{UserID: &userID}, checkoutInput(empty, address, method))
	assert.ErrorIs(t, err, order.ErrEmptyOrder)

	input := checkoutInput(empty, address, method)
	input.CartID = uuid.New()
	_, err = f.service.Checkout(ctx, appshared.Actor{UserID: &userID}, input)
	assert.ErrorIs(t, err, ErrInvalidCart)

	f.addresses.AssertNotCalled(t, "FindForUser", mock.Anything, mock.Anything, mock.Anything)
	f.methods.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestOrderService_Checkout_InvalidAddressAndMethod(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	userID := uuid.New()
	c := newUserCart(t, userID, decimal.NewFromInt(10))
	address := newAddress(t, userID)
	method := newMethod(t, 0, 1)
	inactive := newMethod(t, 0, 1)
	inactive.IsActive = false
	f.carts.On("FindByID", mock.Anything, c.ID).Return(c, nil)

	t.Run("foreign address", func(t *testing.T) {
		f.addresses.On("FindForUser", mock.Anything, userID, address.ID).Return(nil, shared.ErrNotFound).Once()
		_, err := f.service.Checkout(ctx, appshared.Actor{UserID: &userID}, checkoutInput(c, address, method))
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "shipping_address_id", domainErr.Field)
	})

	t.Run("inactive method", func(t *testing.T) {
		f.addresses.On("FindForUser", mock.Anything, userID, address.ID).Return(address, nil).Once()
		f.methods.On("FindByID", mock.Anything, inactive.ID).Return(inactive, nil).Once()
		_, err := f.service.Checkout(ctx, appshared.Actor{UserID: &userID}, checkoutInput(c, address, inactive))
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "shipping_method_id", domainErr.Field)
	})
}

func TestOrderService_UpdateStatus_RecordsHistory(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	staffID := uuid.New()
	o := pendingOrder(t, uuid.New())

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.UpdateStatus(ctx, appshared.Actor{UserID: &staffID, IsStaff: true}, o.ID, "paid", "")
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Status)

	require.Len(t, resp.History, 2)
	last := resp.History[1]
	assert.Equal(t, "pending", last.OldStatus)
	assert.Equal(t, "paid", last.NewStatus)
	assert.Equal(t, NoteAdminUpdate, last.Note)
	require.NotNil(t, last.ChangedBy)
	assert.Equal(t, staffID, *last.ChangedBy)
	f.orders.AssertExpectations(t)
}

func TestOrderService_UpdateStatus_Rejections(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	staff := appshared.Actor{IsStaff: true}
	o := pendingOrder(t, uuid.New())
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	_, err := f.service.UpdateStatus(ctx, staff, o.ID, "refunded", "")
	assert.ErrorIs(t, err, order.ErrInvalidStatus)

	_, err = f.service.UpdateStatus(ctx, staff, o.ID, "delivered", "")
	assert.ErrorIs(t, err, order.ErrTransitionDenied)

	assert.Len(t, o.History, 1)
	assert.Equal(t, order.StatusPending, o.Status)
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOrderService_Cancel(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("owner cancels pending order", func(t *testing.T) {
		f := newOrderFixture()
		o := pendingOrder(t, ownerID)
		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.orders.On("Save", mock.Anything, o).Return(nil)
		f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.Cancel(ctx, appshared.Actor{UserID: &ownerID}, o.ID)
		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		assert.Equal(t, NoteUserCancelled, resp.History[len(resp.History)-1].Note)
	})

	t.Run("other customer is forbidden", func(t *testing.T) {
		f := newOrderFixture()
		o := pendingOrder(t, ownerID)
		other := uuid.New()
		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := f.service.Cancel(ctx, appshared.Actor{UserID: &other}, o.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("shipped order cannot be cancelled", func(t *testing.T) {
		f := newOrderFixture()
		o := pendingOrder(t, ownerID)
		require.NoError(t, o.TransitionTo(order.StatusPaid, "", nil))
		require.NoError(t, o.TransitionTo(order.StatusShipped, "", nil))
		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := f.service.Cancel(ctx, appshared.Actor{UserID: &ownerID}, o.ID)
		assert.ErrorIs(t, err, order.ErrCannotCancel)
	})
}

func TestOrderService_Get_HidesForeignOrders(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	ownerID := uuid.New()
	other := uuid.New()
	o := pendingOrder(t, ownerID)
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	_, err := f.service.Get(ctx, appshared.Actor{UserID: &other}, o.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	resp, err := f.service.Get(ctx, appshared.Actor{UserID: &ownerID}, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, resp.ID)

	resp, err = f.service.Get(ctx, appshared.Actor{UserID: &other, IsStaff: true}, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, resp.ID)
}

func TestOrderService_List_ScopesToOwner(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	userID := uuid.New()

	f.orders.On("FindAll", mock.Anything, mock.MatchedBy(func(filter order.OrderFilter) bool {
		return filter.UserID != nil && *filter.UserID == userID && filter.Status != nil && *filter.Status == order.StatusPaid
	})).Return([]order.Order{}, int64(0), nil)

	result, err := f.service.List(ctx, appshared.Actor{UserID: &userID}, ListFilter{Status: "paid"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 20, result.PageSize)

	_, err = f.service.List(ctx, appshared.Actor{UserID: &userID}, ListFilter{Status: "lost"})
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "status", domainErr.Field)
	f.orders.AssertExpectations(t)
}

func TestOrderService_History(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	ownerID := uuid.New()
	o := pendingOrder(t, ownerID)
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("FindHistory", mock.Anything, o.ID).Return(o.History, nil)

	history, err := f.service.History(ctx, appshared.Actor{UserID: &ownerID}, o.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "pending", history[0].NewStatus)
}
