package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryListExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	l := NewMemoryList()
	l.now = func() time.Time { return now }

	require.NoError(t, l.RevokeToken(ctx, "jti-1", time.Minute))
	revoked, err := l.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = l.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(time.Minute)
	revoked, err = l.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Empty(t, l.entries)
}

func TestMemoryListIgnoresDeadTokens(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryList()

	require.NoError(t, l.RevokeToken(ctx, "", time.Minute))
	require.NoError(t, l.RevokeToken(ctx, "jti-1", 0))
	assert.Empty(t, l.entries)
}
