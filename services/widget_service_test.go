package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidgetKeyLifecycle(t *testing.T) {
	db := setupTestDB(t)
	business := createTestBusiness(t, db)
	svc := NewWidgetService(db)
	ctx := context.Background()

	key, err := svc.IssueKey(ctx, business.ID, "storefront")
	require.NoError(t, err)
	assert.Len(t, key.Key, 64) // 32 random bytes, hex encoded
	assert.True(t, key.Active)

	resolved, err := svc.Resolve(ctx, key.Key)
	require.NoError(t, err)
	assert.Equal(t, business.ID, resolved.BusinessID)

	require.NoError(t, svc.RevokeKey(ctx, business.ID, key.ID))

	_, err = svc.Resolve(ctx, key.Key)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Revoked keys stay listed so the operator can audit them.
	keys, err := svc.ListKeys(ctx, business.ID)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.False(t, keys[0].Active)
}

func TestResolveUnknownKey(t *testing.T) {
	db := setupTestDB(t)
	svc := NewWidgetService(db)

	_, err := svc.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Resolve(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRevokeKeyTenancy(t *testing.T) {
	db := setupTestDB(t)
	business := createTestBusiness(t, db)
	svc := NewWidgetService(db)
	ctx := context.Background()

	key, err := svc.IssueKey(ctx, business.ID, "")
	require.NoError(t, err)

	// Another business cannot revoke a key it doesn't own.
	err = svc.RevokeKey(ctx, business.ID+100, key.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	resolved, err := svc.Resolve(ctx, key.Key)
	require.NoError(t, err)
	assert.True(t, resolved.Active)
}
