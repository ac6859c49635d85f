package dto

import "net/http"

// Error codes for the system endpoints and route fallbacks. The widget
// endpoints carry their own flat error shapes and never use these.
const (
	// ErrCodeNotFound is used when no route matches the request path
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeMethodNotAllowed is used when the path exists but the method does not
	ErrCodeMethodNotAllowed = "ERR_METHOD_NOT_ALLOWED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeMethodNotAllowed: http.StatusMethodNotAllowed,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
