package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrUnauthorized    = 1003
	ErrForbidden       = 1004
	ErrConflict        = 1005
	ErrTooManyRequests = 1006
	ErrBadRequest      = 1007
	ErrServiceUnavail  = 1008
	ErrDatabaseError   = 1009

	// Chat errors (2000-2999)
	ErrChatEmptyMessage     = 2000
	ErrChatModelUnavailable = 2001
	ErrChatGenerationFailed = 2002
	ErrChatStreamFailed     = 2003

	// Connector errors (3000-3999)
	ErrConnectorNotConfigured  = 3000
	ErrConnectorRequestFailed  = 3001
	ErrConnectorToolNotFound   = 3002
	ErrConnectorExecuteFailed  = 3003
	ErrConnectorAuthFailed     = 3004
	ErrConnectorInvalidPayload = 3005

	// Social posting errors (4000-4999)
	ErrPostMissingContent  = 4000
	ErrPostMissingUser     = 4001
	ErrPostMissingAuthor   = 4002
	ErrPostPublishFailed   = 4003
	ErrPostAlreadyPosted   = 4004
	ErrPostCardNotFound    = 4005
	ErrPostResultUnparsed  = 4006
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:    {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:       {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrConflict:        {ErrConflict, http.StatusConflict, "Resource conflict"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},
	ErrDatabaseError:   {ErrDatabaseError, http.StatusInternalServerError, "Database operation failed"},

	// Chat errors
	ErrChatEmptyMessage:     {ErrChatEmptyMessage, http.StatusBadRequest, "Message content is required"},
	ErrChatModelUnavailable: {ErrChatModelUnavailable, http.StatusInternalServerError, "Model provider is not configured"},
	ErrChatGenerationFailed: {ErrChatGenerationFailed, http.StatusInternalServerError, "Text generation failed"},
	ErrChatStreamFailed:     {ErrChatStreamFailed, http.StatusInternalServerError, "Streaming response failed"},

	// Connector errors
	ErrConnectorNotConfigured:  {ErrConnectorNotConfigured, http.StatusInternalServerError, "Connector API key not configured"},
	ErrConnectorRequestFailed:  {ErrConnectorRequestFailed, http.StatusBadGateway, "Connector request failed"},
	ErrConnectorToolNotFound:   {ErrConnectorToolNotFound, http.StatusNotFound, "Connector tool not found"},
	ErrConnectorExecuteFailed:  {ErrConnectorExecuteFailed, http.StatusBadGateway, "Tool execution failed"},
	ErrConnectorAuthFailed:     {ErrConnectorAuthFailed, http.StatusInternalServerError, "Failed to initiate authentication"},
	ErrConnectorInvalidPayload: {ErrConnectorInvalidPayload, http.StatusBadGateway, "Invalid payload from connector"},

	// Social posting errors
	ErrPostMissingContent: {ErrPostMissingContent, http.StatusBadRequest, "Content and userId are required"},
	ErrPostMissingUser:    {ErrPostMissingUser, http.StatusBadRequest, "Content and userId are required"},
	ErrPostMissingAuthor:  {ErrPostMissingAuthor, http.StatusBadRequest, "Author ID is required"},
	ErrPostPublishFailed:  {ErrPostPublishFailed, http.StatusInternalServerError, "Failed to publish post"},
	ErrPostAlreadyPosted:  {ErrPostAlreadyPosted, http.StatusConflict, "Card has already been posted"},
	ErrPostCardNotFound:   {ErrPostCardNotFound, http.StatusNotFound, "Post card not found"},
	ErrPostResultUnparsed: {ErrPostResultUnparsed, http.StatusInternalServerError, "Failed to parse post response"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsSuccess checks if the code represents success
func IsSuccess(code int) bool {
	return code == Success
}

// IsClientError checks if the code represents a client error (4xx)
func IsClientError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

// IsServerError checks if the code represents a server error (5xx)
func IsServerError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 500
}

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
