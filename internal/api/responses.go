// Package api defines the JSON envelopes shared by every HTTP handler.
package api

// Response is the common {success, message} envelope returned by the storefront API.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SessionUser is the identity block returned by check_session.
type SessionUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserResponse wraps the identity of the current session.
type UserResponse struct {
	Success bool        `json:"success"`
	User    SessionUser `json:"user"`
}

// DataResponse wraps an arbitrary payload under "data".
type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// OK builds a successful envelope.
func OK(message string) Response {
	return Response{Success: true, Message: message}
}

// Fail builds a failed envelope.
func Fail(message string) Response {
	return Response{Success: false, Message: message}
}
