// Package model defines the response envelope, error taxonomy and
// core data structures shared by every phantom-cores API surface.
package model

import (
	"time"
)

// APIResponse is the uniform envelope returned by every route.
// Exactly one of Data/Error is populated depending on Success.
type APIResponse struct {
	Success             bool        `json:"success"`
	Data                interface{} `json:"data,omitempty"`
	Error               string      `json:"error,omitempty"`
	ErrorCode           string      `json:"error_code,omitempty"`
	Operation           string      `json:"operation,omitempty"`
	Source              string      `json:"source,omitempty"`
	AvailableOperations []string    `json:"available_operations,omitempty"`
	Timestamp           string      `json:"timestamp"`
}

// PageInfo describes the pagination state of a list response.
type PageInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// PaginatedData wraps a list payload together with its pagination state.
type PaginatedData struct {
	Items      interface{} `json:"items"`
	Pagination PageInfo    `json:"pagination"`
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// NewSuccess builds a success envelope around a payload.
// Operation and source are optional and omitted when empty.
func NewSuccess(data interface{}, operation, source string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		Operation: operation,
		Source:    source,
		Timestamp: now(),
	}
}

// NewError builds an error envelope. The code should be one of the
// taxonomy constants in errors.go.
func NewError(code, message, operation string) *APIResponse {
	return &APIResponse{
		Success:   false,
		Error:     message,
		ErrorCode: code,
		Operation: operation,
		Timestamp: now(),
	}
}

// NewPaginated builds a success envelope around a page of items.
func NewPaginated(items interface{}, page PageInfo, operation, source string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      PaginatedData{Items: items, Pagination: page},
		Operation: operation,
		Source:    source,
		Timestamp: now(),
	}
}

// NewPageInfo computes pagination state from page, limit and total count.
func NewPageInfo(page, limit int, total int64) PageInfo {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return PageInfo{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}
