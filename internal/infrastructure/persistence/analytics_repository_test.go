package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/adfinitum/backend/internal/domain/identity"
	"github.com/adfinitum/backend/internal/domain/order"
	"github.com/adfinitum/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormAnalyticsRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormAnalyticsRepository(db)
	orders := NewGormOrderRepository(db)
	ctx := context.Background()

	for i, role := range []identity.Role{identity.RoleCustomer, identity.RoleCustomer, identity.RoleAdmin} {
		user := &models.UserModel{
			Email:        uuid.NewString() + "@example.com",
			FullName:     "User",
			Role:         role,
			IsActive:     true,
			PasswordHash: "x",
		}
		user.ID = uuid.New()
		user.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
		user.UpdatedAt = user.CreatedAt
		require.NoError(t, db.Create(user).Error)
	}

	paid := seedOrder(t, db, uuid.New(), "paid@example.com")
	require.NoError(t, paid.TransitionTo(order.StatusPaid, "", nil))
	require.NoError(t, orders.Save(ctx, paid))
	seedOrder(t, db, uuid.New(), "pending@example.com")

	revenue, err := repo.TotalRevenue(ctx, []string{"paid", "shipped", "delivered"})
	require.NoError(t, err)
	assert.True(t, revenue.Equal(decimal.RequireFromString("3200")), revenue.String())

	count, err := repo.CountOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	customers, err := repo.CountCustomers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), customers)

	points, err := repo.SalesByDay(ctx, time.Now().AddDate(0, 0, -7), []string{"paid"})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Len(t, points[0].Day, 10)
	assert.Equal(t, int64(1), points[0].Count)

	recent, err := repo.RecentOrders(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	top, err := repo.TopProducts(ctx, []string{"paid"}, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Kettle", top[0].ProductName)
	assert.Equal(t, int64(2), top[0].Quantity)
}
