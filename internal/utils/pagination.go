package utils

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type PaginationParams struct {
	Page   int        `json:"page" form:"page"`
	Limit  int        `json:"limit" form:"limit"`
	Before *time.Time `json:"before,omitempty" form:"before"`
}

type PaginationMeta struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// GetPaginationParams reads page/limit/before from the query string, clamping
// the page size to sane bounds. before is an RFC 3339 timestamp.
func GetPaginationParams(c *gin.Context) *PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)))

	if page < 1 {
		page = 1
	}
	if limit < MinPageSize {
		limit = MinPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	params := &PaginationParams{Page: page, Limit: limit}

	if raw := c.Query("before"); raw != "" {
		if before, err := time.Parse(time.RFC3339, raw); err == nil {
			params.Before = &before
		}
	}

	return params
}

func (p *PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

func NewPaginationMeta(params *PaginationParams, total int64) *PaginationMeta {
	totalPages := int(math.Ceil(float64(total) / float64(params.Limit)))
	return &PaginationMeta{
		Page:        params.Page,
		Limit:       params.Limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     params.Page < totalPages,
		HasPrevious: params.Page > 1,
	}
}
