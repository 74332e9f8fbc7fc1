package storage

// ListPostsParams filters and pages the post listing. Search is matched
// case-insensitively against title and content.
type ListPostsParams struct {
	Search     string
	CategoryID string
	Offset     int
	Limit      int
}

// PostPatch is the allow-list of mutable post fields. A nil field is left
// untouched; author and id are deliberately absent.
type PostPatch struct {
	Title      *string
	Content    *string
	Image      *string
	CategoryID *string
}

func (p PostPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Image == nil && p.CategoryID == nil
}
