package utils

import (
	"strconv"

	"gorm.io/gorm"
)

// PageSize is the fixed site-wide page length for every list view.
const PageSize = 10

// Page describes one window of an ordered result set.
type Page struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// ParsePage reads a page number from a query value. Anything that is not a
// positive integer falls back to page 1.
func ParsePage(raw string) int {
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return n
	}
	return 1
}

// Paginate counts the query, clamps the requested page into the valid range
// and loads one window into out. Out-of-range pages never error; they return
// the nearest valid page, so the same inputs always yield the same slice.
func Paginate(query *gorm.DB, page int, out interface{}) (Page, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return Page{}, err
	}

	totalPages := int((total + PageSize - 1) / PageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	offset := (page - 1) * PageSize
	if err := query.Offset(offset).Limit(PageSize).Find(out).Error; err != nil {
		return Page{}, err
	}

	return Page{
		Page:       page,
		PageSize:   PageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}
