package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGenerateStaffToken(t *testing.T) {
	raw, hash, err := GenerateStaffToken()
	require.NoError(t, err)

	assert.NotEmpty(t, raw)
	assert.Len(t, hash, 64)
	assert.Equal(t, HashStaffToken(raw), hash)
	// The raw token must be URL-safe: it travels in ?token= for websockets.
	assert.NotContains(t, raw, "+")
	assert.NotContains(t, raw, "/")
	assert.NotContains(t, raw, "=")

	raw2, hash2, err := GenerateStaffToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, raw2)
	assert.NotEqual(t, hash, hash2)
}

func TestHashStaffTokenDeterministic(t *testing.T) {
	assert.Equal(t, HashStaffToken("abc"), HashStaffToken("abc"))
	assert.NotEqual(t, HashStaffToken("abc"), HashStaffToken("abd"))
}

// Bootstrap with incomplete credentials must be a no-op: the nil store would
// panic on any access, so finishing cleanly proves nothing was touched.
func TestBootstrapSkipsWithoutCredentials(t *testing.T) {
	s := NewStaffTokenService(nil, nil, zap.NewNop())

	s.Bootstrap(context.Background(), "", "")
	s.Bootstrap(context.Background(), "Main Counter", "")
	s.Bootstrap(context.Background(), "", "raw-token")
}
