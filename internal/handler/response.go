package handler

import "github.com/jwalitptl/walkin-api/internal/form"

type Response struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  []form.FieldError `json:"errors,omitempty"`
	TraceID string            `json:"trace_id,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// NewValidationResponse lists the inputs the client must fix.
func NewValidationResponse(message string, fields []form.FieldError) *Response {
	return &Response{
		Status:  "error",
		Message: message,
		Errors:  fields,
	}
}
