package shared

// Filter narrows and orders repository list queries. Repositories apply
// Search to their own searchable columns and ignore unknown Filters keys;
// paging only kicks in when both Page and PageSize are positive.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}
