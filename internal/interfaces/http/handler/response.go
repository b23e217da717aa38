package handler

import "github.com/jossiefancies/storefront/internal/interfaces/http/dto"

// Swagger shapes for the resource envelope. Handlers write the envelope
// through dto; these types only describe it.

// APIResponse is the envelope around a single resource
// @Description Resource envelope: success flag plus data or error
type APIResponse[T any] struct {
	Success bool           `json:"success" example:"true"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// ListResponse is the envelope around a paginated list
// @Description Paginated list envelope with page metadata
type ListResponse[T any] struct {
	Success bool      `json:"success" example:"true"`
	Data    []T       `json:"data"`
	Meta    *dto.Meta `json:"meta"`
}

// ErrorResponse is the envelope of a failed resource request
// @Description Error envelope with a machine-readable code
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}

// MessageResponse is the flat body of auth and cart mutation endpoints
// @Description Flat success or failure message
type MessageResponse = dto.MessageResponse
