package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitUsername(t *testing.T) {
	cases := []struct {
		in          string
		first, last string
	}{
		{"Ada Lovelace", "Ada", "Lovelace"},
		{"Madonna", "Madonna", ""},
		{"Jean Claude Van Damme", "Jean", "Claude Van Damme"},
		{"  spaced   out  ", "spaced", "out"},
		{"", "", ""},
	}
	for _, tc := range cases {
		first, last := splitUsername(tc.in)
		assert.Equal(t, tc.first, first, tc.in)
		assert.Equal(t, tc.last, last, tc.in)
	}
}
