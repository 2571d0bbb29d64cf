package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	digest, err := Hash("Sup3r$ecret")
	require.NoError(t, err)
	assert.NotEqual(t, "Sup3r$ecret", digest)

	assert.True(t, Verify("Sup3r$ecret", digest))
	assert.False(t, Verify("sup3r$ecret", digest))
	assert.False(t, Verify("", digest))
}

func TestHash_SaltedDigestsDiffer(t *testing.T) {
	d1, err := Hash("123456")
	require.NoError(t, err)
	d2, err := Hash("123456")
	require.NoError(t, err)
	assert.NotEqual(t, d1, d2)
	assert.True(t, Verify("123456", d1))
	assert.True(t, Verify("123456", d2))
}

func TestVerify_GarbageDigest(t *testing.T) {
	assert.False(t, Verify("123456", "not-a-bcrypt-digest"))
}
