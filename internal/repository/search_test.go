package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitOffsetDefaults(t *testing.T) {
	cases := []struct {
		name                  string
		q                     SearchQuery
		wantLimit, wantOffset int
	}{
		{"zero value", SearchQuery{}, defaultPageSize, 0},
		{"negative inputs", SearchQuery{Page: -2, Size: -1}, defaultPageSize, 0},
		{"first page explicit", SearchQuery{Page: 1, Size: 10}, 10, 0},
		{"third page", SearchQuery{Page: 3, Size: 10}, 10, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			limit, offset := tc.q.limitOffset()
			assert.Equal(t, tc.wantLimit, limit)
			assert.Equal(t, tc.wantOffset, offset)
		})
	}
}

func TestSearchPredicate(t *testing.T) {
	pred, args := searchPredicate("")
	assert.Empty(t, pred)
	assert.Nil(t, args)

	pred, args = searchPredicate("laptop")
	assert.Equal(t, " AND (name LIKE ? OR slug LIKE ? OR description LIKE ?)", pred)
	assert.Equal(t, []any{"%laptop%", "%laptop%", "%laptop%"}, args)
}
