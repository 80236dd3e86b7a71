package handler

import "github.com/adfinitum/backend/internal/interfaces/http/dto"

// The types below only describe the envelope for swag; handlers write
// dto.Response directly.

// APIResponse is a success envelope around T
// @Description Success envelope; data holds the resource
type APIResponse[T any] struct {
	Success bool `json:"success" example:"true"`
	Data    T    `json:"data"`
}

// PagedResponse is a success envelope around one page of T
// @Description Success envelope for list endpoints; meta carries paging
type PagedResponse[T any] struct {
	Success bool      `json:"success" example:"true"`
	Data    []T       `json:"data"`
	Meta    *dto.Meta `json:"meta"`
}

// ErrorResponse is the failure envelope
// @Description Failure envelope; error.code is one of the ERR_* codes
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}

