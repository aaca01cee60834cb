package repository

// SearchQuery carries the list filtering and pagination options shared by
// the catalog repositories. A zero Page or Size falls back to defaults.
type SearchQuery struct {
	Search string // matched against name, slug and description
	Page   int    // 1-based page number
	Size   int    // page size
}

const defaultPageSize = 5

func (q SearchQuery) limitOffset() (limit, offset int) {
	size := q.Size
	if size < 1 {
		size = defaultPageSize
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	return size, (page - 1) * size
}

// searchPredicate renders the free-text filter as an additional WHERE
// conjunct. An empty term contributes nothing.
func searchPredicate(term string) (string, []any) {
	if term == "" {
		return "", nil
	}
	like := "%" + term + "%"
	return " AND (name LIKE ? OR slug LIKE ? OR description LIKE ?)", []any{like, like, like}
}
