package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/adfinitum/backend/internal/domain/cart"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCartRepository_SaveReplacesItems(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormCartRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	c := cart.NewUserCart(userID)
	keep, err := c.AddItem(uuid.New(), 1, decimal.RequireFromString("10.00"))
	require.NoError(t, err)
	keepID := keep.ID
	drop, err := c.AddItem(uuid.New(), 2, decimal.RequireFromString("5.00"))
	require.NoError(t, err)
	dropID := drop.ID
	require.NoError(t, repo.Save(ctx, c))

	loaded, err := repo.FindActiveByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)

	require.NoError(t, loaded.RemoveItem(dropID))
	_, err = loaded.UpdateItemQuantity(keepID, 4)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, loaded))

	loaded, err = repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 4, loaded.Items[0].Quantity)
	assert.True(t, loaded.TotalPrice().Equal(decimal.RequireFromString("40.00")))

	loaded.Deactivate()
	require.NoError(t, repo.Save(ctx, loaded))
	_, err = repo.FindActiveByUser(ctx, userID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormCartRepository_GuestSession(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormCartRepository(db)
	ctx := context.Background()

	c, err := cart.NewGuestCart("session-abc")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	found, err := repo.FindActiveBySession(ctx, "session-abc")
	require.NoError(t, err)
	assert.Equal(t, c.ID, found.ID)

	_, err = repo.FindActiveBySession(ctx, "")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormCouponRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormCouponRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	c, err := cart.NewCoupon("SAVE10", decimal.NewFromInt(10), now.Add(-time.Hour), now.Add(time.Hour), true)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	found, err := repo.FindByCode(ctx, " save10 ")
	require.NoError(t, err)
	assert.Equal(t, c.ID, found.ID)
	assert.True(t, found.IsValid(now))

	dup, err := cart.NewCoupon("SAVE10", decimal.NewFromInt(5), now, now.Add(time.Hour), true)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, dup), shared.ErrAlreadyExists)

	list, total, err := repo.FindAll(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, c.ID))
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), shared.ErrNotFound)
}
