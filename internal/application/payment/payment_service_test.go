package payment

import (
	"context"
	"errors"
	"strings"
	"testing"

	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/domain/order"
	"github.com/adfinitum/backend/internal/domain/payment"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/adfinitum/backend/internal/infrastructure/cache"
	"github.com/adfinitum/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	successCallback = `{"Body":{"stkCallback":{"MerchantRequestID":"29115-1","CheckoutRequestID":"ws_CO_100","ResultCode":0,"ResultDesc":"The service request is processed successfully.","CallbackMetadata":{"Item":[{"Name":"Amount","Value":100.00},{"Name":"MpesaReceiptNumber","Value":"NLJ7RT61SV"},{"Name":"PhoneNumber","Value":254712345678}]}}}}`
	failedCallback  = `{"Body":{"stkCallback":{"MerchantRequestID":"29115-1","CheckoutRequestID":"ws_CO_100","ResultCode":1032,"ResultDesc":"Request cancelled by user"}}}`
)

type paymentFixture struct {
	payments *MockPaymentRepository
	orders   *MockOrderRepository
	gateway  *MockGateway
	events   *MockEventPublisher
	storage  *storage.StubObjectStorage
	store    *cache.InMemoryIdempotencyStore
	service  *PaymentService
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	f := &paymentFixture{
		payments: new(MockPaymentRepository),
		orders:   new(MockOrderRepository),
		gateway:  new(MockGateway),
		events:   new(MockEventPublisher),
		storage:  storage.NewStubObjectStorage("https://cdn.example.com"),
		store:    cache.NewInMemoryIdempotencyStore(),
	}
	t.Cleanup(func() { _ = f.store.Close() })
	scope := appshared.NoOpTransactionScope{Repos: appshared.RepositorySet{
		PaymentRepo: f.payments,
		OrderRepo:   f.orders,
	}}
	f.service = NewPaymentService(scope, f.payments, f.orders, f.gateway, f.storage, f.store, f.events, zap.NewNop())
	return f
}

func pendingOrder(t *testing.T, userID uuid.UUID, method order.PaymentMethod) *order.Order {
	t.Helper()
	o, err := order.NewOrder(order.Customer{UserID: &userID, Email: "a@example.com", FullName: "Amina"}, method)
	require.NoError(t, err)
	pid := uuid.New()
	o.AddItem(&pid, "Kettle", "", 1, decimal.NewFromInt(100))
	require.NoError(t, o.Place(decimal.Zero, "", "Order created during checkout"))
	o.ClearDomainEvents()
	return o
}

func initiatedPayment(t *testing.T, o *order.Order) *payment.Payment {
	t.Helper()
	p, err := payment.NewMpesaPayment(o.ID, o.UserID, decimal.NewFromInt(100), "0712345678")
	require.NoError(t, err)
	p.AttachCheckout("29115-1", "ws_CO_100")
	return p
}

func TestPaymentService_InitiateMpesa(t *testing.T) {
	f := newPaymentFixture(t)
	userID := uuid.New()
	o := pendingOrder(t, userID, order.PaymentMethodMpesa)

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.payments.On("ExistsForOrder", mock.Anything, o.ID).Return(false, nil)
	f.payments.On("Save", mock.Anything, mock.AnythingOfType("*payment.Payment")).Return(nil)
	f.gateway.On("STKPush", mock.Anything, mock.MatchedBy(func(req payment.STKPushRequest) bool {
		return req.PhoneNumber == "254712345678" &&
			len(req.AccountReference) == 12 &&
			req.AccountReference == strings.ToUpper(req.AccountReference) &&
			strings.Contains(req.Description, o.ID.String())
	})).Return(&payment.STKPushResponse{MerchantRequestID: "29115-1", CheckoutRequestID: "ws_CO_100"}, nil)

	resp, err := f.service.InitiateMpesa(context.Background(), appshared.Actor{UserID: &userID},
		MpesaInput{OrderID: o.ID, Amount: decimal.NewFromInt(100), PhoneNumber: "0712345678"})
	require.NoError(t, err)

	assert.Equal(t, "initiated", resp.Status)
	assert.Equal(t, "mpesa", resp.Method)
	assert.Equal(t, "ws_CO_100", resp.CheckoutRequestID)
	assert.Equal(t, "254712345678", resp.PhoneNumber)
	f.gateway.AssertExpectations(t)
	f.payments.AssertNumberOfCalls(t, "Save", 2)
}

func TestPaymentService_InitiateMpesa_RejectsSecondPayment(t *testing.T) {
	f := newPaymentFixture(t)
	userID := uuid.New()
	o := pendingOrder(t, userID, order.PaymentMethodMpesa)

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.payments.On("ExistsForOrder", mock.Anything, o.ID).Return(true, nil)

	_, err := f.service.InitiateMpesa(context.Background(), appshared.Actor{UserID: &userID},
		MpesaInput{OrderID: o.ID, Amount: decimal.NewFromInt(100), PhoneNumber: "0712345678"})
	require.ErrorIs(t, err, payment.ErrAlreadyPaid)

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "PAYMENT_EXISTS", domainErr.Code)
	f.gateway.AssertNotCalled(t, "STKPush", mock.Anything, mock.Anything)
}

func TestPaymentService_InitiateMpesa_ValidatesInput(t *testing.T) {
	userID := uuid.New()
	tests := []struct {
		name  string
		input func(orderID uuid.UUID) MpesaInput
		field string
	}{
		{
			name: "zero amount",
			input: func(id uuid.UUID) MpesaInput {
				return MpesaInput{OrderID: id, Amount: decimal.Zero, PhoneNumber: "0712345678"}
			},
			field: "amount",
		},
		{
			name: "landline number",
			input: func(id uuid.UUID) MpesaInput {
				return MpesaInput{OrderID: id, Amount: decimal.NewFromInt(10), PhoneNumber: "020123456"}
			},
			field: "phone_number",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture(t)
			o := pendingOrder(t, userID, order.PaymentMethodMpesa)
			f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
			f.payments.On("ExistsForOrder", mock.Anything, o.ID).Return(false, nil)

			_, err := f.service.InitiateMpesa(context.Background(), appshared.Actor{UserID: &userID}, tt.input(o.ID))
			var domainErr *shared.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, tt.field, domainErr.Field)
			f.payments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestPaymentService_InitiateMpesa_HidesForeignOrder(t *testing.T) {
	f := newPaymentFixture(t)
	o := pendingOrder(t, uuid.New(), order.PaymentMethodMpesa)
	stranger := uuid.New()
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	_, err := f.service.InitiateMpesa(context.Background(), appshared.Actor{UserID: &stranger},
		MpesaInput{OrderID: o.ID, Amount: decimal.NewFromInt(100), PhoneNumber: "0712345678"})
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestPaymentService_InitiateMpesa_GatewayFailureMarksPaymentFailed(t *testing.T) {
	f := newPaymentFixture(t)
	userID := uuid.New()
	o := pendingOrder(t, userID, order.PaymentMethodMpesa)

	var saved []*payment.Payment
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.payments.On("ExistsForOrder", mock.Anything, o.ID).Return(false, nil)
	f.payments.On("Save", mock.Anything, mock.AnythingOfType("*payment.Payment")).
		Run(func(args mock.Arguments) { saved = append(saved, args.Get(1).(*payment.Payment)) }).
		Return(nil)
	f.gateway.On("STKPush", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.InitiateMpesa(context.Background(), appshared.Actor{UserID: &userID},
		MpesaInput{OrderID: o.ID, Amount: decimal.NewFromInt(100), PhoneNumber: "0712345678"})
	require.ErrorIs(t, err, payment.ErrGatewayUnavailable)

	require.Len(t, saved, 2)
	assert.Equal(t, payment.StatusFailed, saved[1].Status)
	assert.Equal(t, "connection refused", saved[1].ResultDescription)
	f.events.AssertCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestPaymentService_InitiateMpesa_NoGatewayConfigured(t *testing.T) {
	payments := new(MockPaymentRepository)
	orders := new(MockOrderRepository)
	scope := appshared.NoOpTransactionScope{Repos: appshared.RepositorySet{PaymentRepo: payments, OrderRepo: orders}}
	svc := NewPaymentService(scope, payments, orders, nil, storage.NewStubObjectStorage(""), nil,
		new(MockEventPublisher), zap.NewNop())
	userID := uuid.New()

	_, err := svc.InitiateMpesa(context.Background(), appshared.Actor{UserID: &userID},
		MpesaInput{OrderID: uuid.New(), Amount: decimal.NewFromInt(100), PhoneNumber: "0712345678"})
	require.ErrorIs(t, err, payment.ErrGatewayUnavailable)
	payments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPaymentService_HandleCallback_Success(t *testing.T) {
	f := newPaymentFixture(t)
	o := pendingOrder(t, uuid.New(), order.PaymentMethodMpesa)
	p := initiatedPayment(t, o)

	f.payments.On("FindByCheckoutRequestID", mock.Anything, "ws_CO_100").Return(p, nil)
	f.payments.On("Save", mock.Anything, p).Return(nil)
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.service.HandleCallback(context.Background(), []byte(successCallback)))

	assert.Equal(t, payment.StatusSuccessful, p.Status)
	assert.Equal(t, "NLJ7RT61SV", p.TransactionID)
	assert.Equal(t, successCallback, p.Logs[0].Payload)

	assert.Equal(t, order.StatusPaid, o.Status)
	assert.Equal(t, order.PaymentStatusPaid, o.PaymentStatus)
	assert.Equal(t, "NLJ7RT61SV", o.PaymentID)
	latest := o.LatestHistory()
	require.NotNil(t, latest)
	assert.Equal(t, order.StatusPending, latest.OldStatus)
	assert.Equal(t, order.StatusPaid, latest.NewStatus)
	assert.Equal(t, NoteMpesaReceived, latest.Note)
	assert.False(t, latest.ChangedAt.IsZero())

	done, err := f.store.IsProcessed(context.Background(), "mpesa:callback:ws_CO_100")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestPaymentService_HandleCallback_Failure(t *testing.T) {
	f := newPaymentFixture(t)
	o := pendingOrder(t, uuid.New(), order.PaymentMethodMpesa)
	p := initiatedPayment(t, o)

	f.payments.On("FindByCheckoutRequestID", mock.Anything, "ws_CO_100").Return(p, nil)
	f.payments.On("Save", mock.Anything, p).Return(nil)
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.service.HandleCallback(context.Background(), []byte(failedCallback)))

	assert.Equal(t, payment.StatusFailed, p.Status)
	require.NotNil(t, p.ResultCode)
	assert.Equal(t, 1032, *p.ResultCode)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, order.PaymentStatusFailed, o.PaymentStatus)
}

func TestPaymentService_HandleCallback_IgnoresUnknownAndMalformed(t *testing.T) {
	f := newPaymentFixture(t)
	f.payments.On("FindByCheckoutRequestID", mock.Anything, "ws_CO_100").Return(nil, shared.ErrNotFound)

	assert.NoError(t, f.service.HandleCallback(context.Background(), []byte(successCallback)))
	assert.NoError(t, f.service.HandleCallback(context.Background(), []byte(`{not json`)))
	assert.NoError(t, f.service.HandleCallback(context.Background(), []byte(`{"Body":{"stkCallback":{}}}`)))

	f.payments.AssertNumberOfCalls(t, "FindByCheckoutRequestID", 1)
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPaymentService_HandleCallback_DuplicateDeliveryIgnored(t *testing.T) {
	f := newPaymentFixture(t)
	o := pendingOrder(t, uuid.New(), order.PaymentMethodMpesa)
	p := initiatedPayment(t, o)

	f.payments.On("FindByCheckoutRequestID", mock.Anything, "ws_CO_100").Return(p, nil)
	f.payments.On("Save", mock.Anything, p).Return(nil)
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.service.HandleCallback(context.Background(), []byte(successCallback)))
	require.NoError(t, f.service.HandleCallback(context.Background(), []byte(successCallback)))

	f.payments.AssertNumberOfCalls(t, "FindByCheckoutRequestID", 1)
	f.orders.AssertNumberOfCalls(t, "Save", 1)
	assert.Len(t, o.History, 2)
}

func TestPaymentService_HandleCallback_SettledPaymentWithoutStore(t *testing.T) {
	o := pendingOrder(t, uuid.New(), order.PaymentMethodMpesa)
	p := initiatedPayment(t, o)
	p.MarkFailed("timeout")

	payments := new(MockPaymentRepository)
	orders := new(MockOrderRepository)
	payments.On("FindByCheckoutRequestID", mock.Anything, "ws_CO_100").Return(p, nil)
	scope := appshared.NoOpTransactionScope{Repos: appshared.RepositorySet{PaymentRepo: payments, OrderRepo: orders}}
	svc := NewPaymentService(scope, payments, orders, new(MockGateway), storage.NewStubObjectStorage(""), nil,
		new(MockEventPublisher), zap.NewNop())

	require.NoError(t, svc.HandleCallback(context.Background(), []byte(successCallback)))
	assert.Equal(t, payment.StatusFailed, p.Status)
	payments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPaymentService_SubmitBank(t *testing.T) {
	f := newPaymentFixture(t)
	userID := uuid.New()
	o := pendingOrder(t, userID, order.PaymentMethodBank)

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.payments.On("ExistsForOrder", mock.Anything, o.ID).Return(false, nil)
	f.payments.On("Save", mock.Anything, mock.AnythingOfType("*payment.Payment")).Return(nil)

	resp, err := f.service.SubmitBank(context.Background(), appshared.Actor{UserID: &userID}, BankInput{
		OrderID:         o.ID,
		Amount:          decimal.NewFromInt(100),
		ReferenceNumber: "FT24123ABC",
		Receipt: &appshared.Upload{
			Filename:    "slip.PNG",
			ContentType: "image/png",
			Size:        4,
			Body:        strings.NewReader("\x89PNG"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "bank", resp.Method)
	assert.Equal(t, "FT24123ABC", resp.ReferenceNumber)
	require.True(t, strings.HasPrefix(resp.ReceiptImage, "https://cdn.example.com/bank_receipts/"))
	assert.True(t, strings.HasSuffix(resp.ReceiptImage, ".png"))

	key := strings.TrimPrefix(resp.ReceiptImage, "https://cdn.example.com/")
	data, contentType, ok := f.storage.Object(key)
	require.True(t, ok)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, []byte("\x89PNG"), data)
}

func TestPaymentService_SubmitBank_Validation(t *testing.T) {
	userID := uuid.New()
	receipt := func(contentType string) *appshared.Upload {
		return &appshared.Upload{Filename: "r.bin", ContentType: contentType, Size: 1, Body: strings.NewReader("x")}
	}
	tests := []struct {
		name  string
		input BankInput
		field string
	}{
		{"missing receipt", BankInput{Amount: decimal.NewFromInt(10), ReferenceNumber: "R1"}, "receipt_image"},
		{"unsupported receipt type", BankInput{Amount: decimal.NewFromInt(10), ReferenceNumber: "R1", Receipt: receipt("text/plain")}, "receipt_image"},
		{"missing reference", BankInput{Amount: decimal.NewFromInt(10), Receipt: receipt("application/pdf")}, "reference_number"},
		{"negative amount", BankInput{Amount: decimal.NewFromInt(-5), ReferenceNumber: "R1", Receipt: receipt("image/jpeg")}, "amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture(t)
			o := pendingOrder(t, userID, order.PaymentMethodBank)
			f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
			f.payments.On("ExistsForOrder", mock.Anything, o.ID).Return(false, nil)

			input := tt.input
			input.OrderID = o.ID
			_, err := f.service.SubmitBank(context.Background(), appshared.Actor{UserID: &userID}, input)
			var domainErr *shared.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, tt.field, domainErr.Field)
			assert.Zero(t, f.storage.Len())
		})
	}
}

func TestPaymentService_Review(t *testing.T) {
	staffID := uuid.New()
	staff := appshared.Actor{UserID: &staffID, IsStaff: true}

	t.Run("approve marks the order paid", func(t *testing.T) {
		f := newPaymentFixture(t)
		o := pendingOrder(t, uuid.New(), order.PaymentMethodBank)
		p, err := payment.NewBankPayment(o.ID, o.UserID, decimal.NewFromInt(100), "FT24123ABC", "bank_receipts/x.png")
		require.NoError(t, err)

		f.payments.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		f.payments.On("Save", mock.Anything, p).Return(nil)
		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.orders.On("Save", mock.Anything, o).Return(nil)
		f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.Review(context.Background(), staff, p.ID, true, "")
		require.NoError(t, err)
		assert.Equal(t, "successful", resp.Status)
		assert.Equal(t, order.StatusPaid, o.Status)
		assert.Equal(t, "FT24123ABC", o.PaymentID)
		assert.Equal(t, NoteBankApproved, o.LatestHistory().Note)
	})

	t.Run("reject marks the payment failed", func(t *testing.T) {
		f := newPaymentFixture(t)
		o := pendingOrder(t, uuid.New(), order.PaymentMethodBank)
		p, err := payment.NewBankPayment(o.ID, o.UserID, decimal.NewFromInt(100), "FT24123ABC", "bank_receipts/x.png")
		require.NoError(t, err)

		f.payments.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		f.payments.On("Save", mock.Anything, p).Return(nil)
		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.orders.On("Save", mock.Anything, o).Return(nil)
		f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.Review(context.Background(), staff, p.ID, false, "Amount does not match")
		require.NoError(t, err)
		assert.Equal(t, "failed", resp.Status)
		assert.Equal(t, "Amount does not match", resp.ResultDescription)
		assert.Equal(t, order.StatusPending, o.Status)
		assert.Equal(t, order.PaymentStatusFailed, o.PaymentStatus)
	})

	t.Run("mpesa payments are not reviewable", func(t *testing.T) {
		f := newPaymentFixture(t)
		o := pendingOrder(t, uuid.New(), order.PaymentMethodMpesa)
		p := initiatedPayment(t, o)
		f.payments.On("FindByID", mock.Anything, p.ID).Return(p, nil)

		_, err := f.service.Review(context.Background(), staff, p.ID, true, "")
		assert.ErrorIs(t, err, payment.ErrNotReviewable)
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestPaymentService_Get_ScopesToOwner(t *testing.T) {
	f := newPaymentFixture(t)
	owner := uuid.New()
	o := pendingOrder(t, owner, order.PaymentMethodMpesa)
	p := initiatedPayment(t, o)
	f.payments.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	_, err := f.service.Get(context.Background(), appshared.Actor{UserID: &owner}, p.ID)
	require.NoError(t, err)

	stranger := uuid.New()
	_, err = f.service.Get(context.Background(), appshared.Actor{UserID: &stranger}, p.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.service.Get(context.Background(), appshared.Actor{IsStaff: true}, p.ID)
	assert.NoError(t, err)
}
