package integration

import (
	"testing"
	"time"

	analyticsapp "github.com/adfinitum/backend/internal/application/analytics"
	cartapp "github.com/adfinitum/backend/internal/application/cart"
	orderapp "github.com/adfinitum/backend/internal/application/order"
	appshared "github.com/adfinitum/backend/internal/application/shared"
	shippingapp "github.com/adfinitum/backend/internal/application/shipping"
	"github.com/adfinitum/backend/internal/domain/order"
	"github.com/adfinitum/backend/internal/infrastructure/persistence"
	"github.com/adfinitum/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDashboard_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewSharedTestDB(t)
	tdb.CleanTables()
	sf := newStorefront(t, tdb)
	dashboard := analyticsapp.NewAnalyticsService(persistence.NewGormAnalyticsRepository(tdb.DB), zap.NewNop())
	ctx, cancel := testutil.ContextWithTimeout(t, 30*time.Second)
	defer cancel()

	customerID := tdb.SeedUser("wanjiru@example.com", "customer")
	adminID := tdb.SeedUser("ops@example.com", "admin")
	categoryID := tdb.SeedCategory("Audio")
	speaker := tdb.SeedProduct(categoryID, "Speaker", decimal.NewFromInt(1500), 5)
	cable := tdb.SeedProduct(categoryID, "Aux cable", decimal.NewFromInt(250), 50)
	methodID := tdb.SeedShippingMethod("Pickup", decimal.NewFromInt(200))

	owner := cartapp.Owner{UserID: &customerID}
	customer := appshared.Actor{UserID: &customerID}
	admin := appshared.Actor{UserID: &adminID, IsStaff: true}

	_, err := sf.carts.AddItem(ctx, owner, speaker, 1)
	require.NoError(t, err)
	c, err := sf.carts.AddItem(ctx, owner, cable, 2)
	require.NoError(t, err)

	addr, err := sf.addresses.Create(ctx, customerID, shippingapp.AddressInput{
		FullName:      "Wanjiru Kamau",
		PhoneNumber:   "0722000111",
		City:          "Mombasa",
		StreetAddress: "Nkrumah Road 4",
	})
	require.NoError(t, err)

	placed, err := sf.orders.Checkout(ctx, customer, orderapp.CheckoutInput{
		CartID:            c.ID,
		Email:             "wanjiru@example.com",
		FullName:          "Wanjiru Kamau",
		ShippingAddressID: addr.ID,
		ShippingMethodID:  methodID,
		PaymentMethod:     "bank",
	})
	require.NoError(t, err)

	t.Run("pending orders are not revenue", func(t *testing.T) {
		overview, err := dashboard.Overview(ctx)
		require.NoError(t, err)
		assert.True(t, overview.TotalRevenue.IsZero())
		assert.Equal(t, int64(1), overview.TotalOrders)
		assert.Equal(t, int64(2), overview.TotalProducts)
		assert.Equal(t, int64(1), overview.TotalCustomers)
	})

	_, err = sf.orders.UpdateStatus(ctx, admin, placed.ID, string(order.StatusPaid), "bank transfer reconciled")
	require.NoError(t, err)

	t.Run("paid order counts", func(t *testing.T) {
		overview, err := dashboard.Overview(ctx)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(2200).Equal(overview.TotalRevenue), overview.TotalRevenue.String())

		sales, err := dashboard.Sales(ctx, 0)
		require.NoError(t, err)
		require.Len(t, sales, 1)
		assert.Equal(t, int64(1), sales[0].Count)
		assert.Equal(t, time.Now().UTC().Format(time.DateOnly), sales[0].Day)

		top, err := dashboard.TopProducts(ctx, 0)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, "Aux cable", top[0].ProductName)
		assert.Equal(t, int64(2), top[0].Quantity)

		recent, err := dashboard.RecentOrders(ctx, 1)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, placed.ID, recent[0].ID)
		assert.Equal(t, string(order.StatusPaid), recent[0].Status)
	})
}
