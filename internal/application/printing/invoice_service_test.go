package printing_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/adfinitum/backend/internal/application/printing"
	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/domain/order"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/adfinitum/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter order.OrderFilter) ([]order.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) FindHistory(ctx context.Context, orderID uuid.UUID) ([]order.HistoryEntry, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]order.HistoryEntry), args.Error(1)
}

type fakeRenderer struct {
	calls int
	err   error
}

func (f *fakeRenderer) RenderInvoice(_ context.Context, o *order.Order) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 " + o.ID.String()), nil
}

func placedOrder(t *testing.T, userID uuid.UUID) *order.Order {
	t.Helper()
	o, err := order.NewOrder(order.Customer{UserID: &userID, Email: "a@example.com", FullName: "Amina"}, order.PaymentMethodBank)
	require.NoError(t, err)
	pid := uuid.New()
	o.AddItem(&pid, "Kettle", "", 1, decimal.NewFromInt(2500))
	require.NoError(t, o.Place(decimal.Zero, "", "created"))
	return o
}

func TestInvoiceService_Generate(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	o := placedOrder(t, userID)
	repo := new(MockOrderRepository)
	repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	store := storage.NewStubObjectStorage("https://cdn.example.com")
	renderer := &fakeRenderer{}
	svc := printing.NewInvoiceService(renderer, repo, store, 10*time.Minute, zap.NewNop())

	resp, err := svc.Generate(ctx, appshared.Actor{UserID: &userID}, o.ID)
	require.NoError(t, err)

	assert.Equal(t, o.ID, resp.OrderID)
	assert.True(t, strings.HasPrefix(resp.URL, "https://cdn.example.com/invoices/"+o.ID.String()+".pdf"))
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), resp.ExpiresAt, time.Minute)

	data, contentType, ok := store.Object(printing.InvoiceKey(o.ID))
	require.True(t, ok)
	assert.Equal(t, "application/pdf", contentType)
	assert.Equal(t, len(data), resp.Size)
	assert.Equal(t, 1, renderer.calls)
}

func TestInvoiceService_Generate_HidesForeignOrders(t *testing.T) {
	ctx := context.Background()
	o := placedOrder(t, uuid.New())
	repo := new(MockOrderRepository)
	repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	renderer := &fakeRenderer{}
	svc := printing.NewInvoiceService(renderer, repo, storage.NewStubObjectStorage(""), 0, nil)

	stranger := uuid.New()
	_, err := svc.Generate(ctx, appshared.Actor{UserID: &stranger}, o.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Zero(t, renderer.calls)

	_, err = svc.Generate(ctx, appshared.Actor{UserID: &stranger, IsStaff: true}, o.ID)
	assert.NoError(t, err)
}

func TestInvoiceService_Generate_Disabled(t *testing.T) {
	svc := printing.NewInvoiceService(nil, new(MockOrderRepository), storage.NewStubObjectStorage(""), 0, zap.NewNop())
	_, err := svc.Generate(context.Background(), appshared.Actor{IsStaff: true}, uuid.New())
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestInvoiceService_Generate_RenderFailure(t *testing.T) {
	o := placedOrder(t, uuid.New())
	repo := new(MockOrderRepository)
	repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	store := storage.NewStubObjectStorage("")
	svc := printing.NewInvoiceService(&fakeRenderer{err: errors.New("chrome crashed")}, repo, store, 0, zap.NewNop())

	_, err := svc.Generate(context.Background(), appshared.Actor{IsStaff: true}, o.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chrome crashed")
	assert.Zero(t, store.Len())
}
