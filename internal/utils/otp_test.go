package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateOtpCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateOtpCode()
		require.NoError(t, err)
		require.Len(t, code, OtpDigits)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "code %q must be numeric", code)
		}
		seen[code] = true
	}
	// 50 draws from a 10^6 space colliding down to a handful would mean a
	// broken random source.
	require.Greater(t, len(seen), 40)
}
