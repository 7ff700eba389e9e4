package pool_vo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAuthorityBase58 = "2wwr3BteoVoYbZ7Q89RXNu4q2tkiw75Bveco7nAemt3j"

func TestNewAuthority_Success(t *testing.T) {
	a, err := NewAuthority(testAuthorityBase58)

	require.NoError(t, err)
	assert.Equal(t, testAuthorityBase58, a.String())
	assert.False(t, a.IsZero())
}

func TestNewAuthority_InvalidBase58_ReturnsError(t *testing.T) {
	a, err := NewAuthority("not-valid-base58-!!!")

	assert.Error(t, err)
	assert.Empty(t, a)
}

func TestNewAuthority_WrongLength_ReturnsError(t *testing.T) {
	// valid base58 but decodes to far fewer than 32 bytes.
	a, err := NewAuthority("2NEpo7TZRRrLZSi2U")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected")
	assert.Empty(t, a)
}

func TestAuthority_PublicKey_RoundTrips(t *testing.T) {
	a, err := NewAuthority(testAuthorityBase58)
	require.NoError(t, err)

	pub, err := a.PublicKey()
	require.NoError(t, err)
	assert.Len(t, pub, 32)
}

func TestAuthority_IsZero(t *testing.T) {
	var a Authority
	assert.True(t, a.IsZero())

	a, err := NewAuthority(testAuthorityBase58)
	require.NoError(t, err)
	assert.False(t, a.IsZero())
}
