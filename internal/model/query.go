package model

// ListQuery carries the common list parameters. Limit 0 means no limit.
type ListQuery struct {
	Search string
	Order  string
	Limit  int
	Offset int
}
