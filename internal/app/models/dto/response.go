package dto

import "time"

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Success   bool         `json:"success" example:"true"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewSuccessResponse wraps data in a successful APIResponse
func NewSuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message"`
}

// PaginationInfo describes the page window of a list response
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
}
