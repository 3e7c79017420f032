package dto

import "net/http"

// BaseResponse is the JSON envelope for every API reply.
type BaseResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(message string, data interface{}) *BaseResponse {
	return &BaseResponse{Code: http.StatusOK, Message: message, Data: data}
}

// NewAcceptedResponse acknowledges a pipeline run that continues in the
// background after the request returns.
func NewAcceptedResponse(message string) *BaseResponse {
	return &BaseResponse{Code: http.StatusAccepted, Message: message}
}

func NewErrorResponse(code int, message string) *BaseResponse {
	return &BaseResponse{Code: code, Message: message}
}
