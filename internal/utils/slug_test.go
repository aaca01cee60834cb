package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Electronics", "electronics"},
		{"spaces", "Home Appliances", "home-appliances"},
		{"mixed separators", "TVs & Audio / Video", "tvs-audio-video"},
		{"surrounding space", "  Gaming  ", "gaming"},
		{"digits", "4K Monitors", "4k-monitors"},
		{"collapse runs", "a---b   c", "a-b-c"},
		{"empty", "", ""},
		{"symbols only", "***", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}
