package utils

import "strconv"

// Page size bounds for list endpoints
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationInfo is the page metadata of a list response
type PaginationInfo struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// ParsePaginationFromQuery reads page and page_size query values. Malformed
// values fall back to the defaults.
func ParsePaginationFromQuery(pageStr, pageSizeStr string) (int, int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil {
		page = 1
	}
	pageSize, err := strconv.Atoi(pageSizeStr)
	if err != nil {
		pageSize = DefaultPageSize
	}
	return ValidateAndNormalizePagination(page, pageSize)
}

// ValidateAndNormalizePagination clamps page to >= 1 and page size to
// [1, MaxPageSize]
func ValidateAndNormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize < 1:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// CalculateOffset returns the row offset of page
func CalculateOffset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// CalculatePaginationInfo builds the page metadata; an empty result still has one page
func CalculatePaginationInfo(total, page, pageSize int) PaginationInfo {
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	return PaginationInfo{
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}
