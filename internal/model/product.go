package model

type Product struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  *string  `json:"description,omitempty"`
	Price        *float64 `json:"price"`
	Image        *string  `json:"image"`
	Category     *string  `json:"category"`
	Brand        *string  `json:"brand"`
	Rating       *float64 `json:"rating"`
	CountInStock *int     `json:"count_in_stock"`
	NumReviews   *int     `json:"num_reviews"`
	Status       string   `json:"status"`
	State        int      `json:"-"`
	Ctime        int64    `json:"created_at"`
	Mtime        int64    `json:"updated_at"`
}
