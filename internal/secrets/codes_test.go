package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodeService_RequiresPepper(t *testing.T) {
	_, err := NewCodeService("")
	require.ErrorIs(t, err, ErrNoPepper)

	s, err := NewCodeService("pepper")
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestHashVerify_RoundTrip(t *testing.T) {
	s, err := NewCodeService("pepper")
	require.NoError(t, err)

	hash, err := s.Hash("123456")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, s.Verify(hash, "123456"))
	assert.False(t, s.Verify(hash, "123457"))
	assert.False(t, s.Verify(hash, ""))
}

func TestHash_SaltedPerCall(t *testing.T) {
	s, err := NewCodeService("pepper")
	require.NoError(t, err)

	h1, err := s.Hash("654321")
	require.NoError(t, err)
	h2, err := s.Hash("654321")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, s.Verify(h1, "654321"))
	assert.True(t, s.Verify(h2, "654321"))
}

func TestDigest_Deterministic(t *testing.T) {
	s, err := NewCodeService("pepper")
	require.NoError(t, err)

	assert.Equal(t, s.Digest("123456"), s.Digest("123456"))
	assert.NotEqual(t, s.Digest("123456"), s.Digest("123457"))
	assert.Len(t, s.Digest("123456"), 64) // hex sha256
}

func TestDigest_DependsOnPepper(t *testing.T) {
	s1, err := NewCodeService("pepper-one")
	require.NoError(t, err)
	s2, err := NewCodeService("pepper-two")
	require.NoError(t, err)

	assert.NotEqual(t, s1.Digest("123456"), s2.Digest("123456"))
}
