package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Length(t *testing.T) {
	for _, digits := range []int{4, 6, 10} {
		code, err := Generate(digits)
		require.NoError(t, err)
		assert.Len(t, code, digits)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', code)
		}
	}
}

func TestGenerate_PreservesLeadingZeros(t *testing.T) {
	// enough draws to all but guarantee at least one code below 100000
	seen := map[string]struct{}{}
	for i := 0; i < 200; i++ {
		code, err := Generate(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 150, "codes should be close to unique")
}

func TestGenerate_RejectsOutOfRangeDigits(t *testing.T) {
	_, err := Generate(3)
	assert.Error(t, err)
	_, err = Generate(11)
	assert.Error(t, err)
	_, err = Generate(0)
	assert.Error(t, err)
}
