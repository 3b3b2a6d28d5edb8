package response

import "github.com/gin-gonic/gin"

// Pagination mirrors the list envelope reported to clients. NextPage and
// PreviousPage are null at the boundaries.
type Pagination struct {
	LimitPage    int    `json:"limit_page"`
	TotalCount   int64  `json:"total_count"`
	TotalPage    int    `json:"total_page"`
	CurrentPage  int    `json:"current_page"`
	NextPage     *int   `json:"next_page"`
	PreviousPage *int   `json:"previous_page"`
}

func NewPagination(limit int, total int64, page int) Pagination {
	if limit < 1 {
		limit = 1
	}
	if page < 1 {
		page = 1
	}
	totalPage := int((total + int64(limit) - 1) / int64(limit))
	if totalPage < 1 {
		totalPage = 1
	}
	p := Pagination{
		LimitPage:   limit,
		TotalCount:  total,
		TotalPage:   totalPage,
		CurrentPage: page,
	}
	if page < totalPage {
		next := page + 1
		p.NextPage = &next
	}
	if page > 1 {
		prev := page - 1
		p.PreviousPage = &prev
	}
	return p
}

func Success(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func SuccessList(c *gin.Context, message string, data interface{}, p Pagination) {
	c.JSON(200, gin.H{
		"pagination": p,
		"message":    message,
		"data":       data,
	})
}

func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// FailDetail reports a failure with a diagnostic detail under the error key.
func FailDetail(c *gin.Context, status int, message, detail string) {
	c.JSON(status, gin.H{"message": message, "error": detail})
}
