package helpers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/commune-social/commune/internal/app/models/dto"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultPage     = 1
)

// CalculateOffsetLimit calculates the offset and limit for SQL queries based on 1-based page index.
func CalculateOffsetLimit(page, size int) (offset uint64, limit int) {
	if size <= 0 || size > MaxPageSize {
		limit = DefaultPageSize
	} else {
		limit = size
	}

	if page < 1 {
		page = DefaultPage
	}

	offset = uint64((page - 1) * limit)
	return offset, limit
}

// NewPaginationInfo creates a standard PaginationInfo DTO.
// page should be the 1-based page number.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}

	totalPages := 0
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(size)))
	} else if page == 1 {
		totalPages = 1
	}

	currentPage := page
	if totalPages > 0 && currentPage > totalPages {
		currentPage = totalPages
	}

	return dto.PaginationInfo{
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}

// ParsePaginationParams extracts and validates pagination parameters from the request
func ParsePaginationParams(c *gin.Context) (page, size int) {
	pageStr := c.DefaultQuery("page", "1")
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = DefaultPage
	}

	sizeStr := c.DefaultQuery("limit", "20")
	size, err = strconv.Atoi(sizeStr)
	if err != nil || size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}

	return page, size
}
