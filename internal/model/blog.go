package model

type Blog struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Publisher   *string `json:"publisher"`
	Date        *string `json:"date"`
	Status      string  `json:"status"`
	State       int     `json:"-"`
	Ctime       int64   `json:"created_at"`
	Mtime       int64   `json:"updated_at"`
}
