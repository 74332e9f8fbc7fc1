package pagination

// PageRequest is a 1-indexed page/limit pair.
type PageRequest struct {
	Page  int
	Limit int
}

func (r PageRequest) Offset() int {
	if r.Page <= 1 {
		return 0
	}
	return (r.Page - 1) * r.Limit
}

type Page[T any] struct {
	Items      []T
	Page       int
	TotalCount int64
	TotalPages int
}

// TotalPages is ceil(count / limit).
func TotalPages(count int64, limit int) int {
	if limit <= 0 || count <= 0 {
		return 0
	}
	return int((count + int64(limit) - 1) / int64(limit))
}
