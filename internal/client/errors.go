package client

import (
	"fmt"
	"strings"
)

// AuthenticationError is a 401. Always fatal to the calling operation and
// never retried automatically.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }

// RouteNotFoundError is a 404 whose body is HTML: the route itself is
// missing (a deployment defect), as opposed to a missing record.
type RouteNotFoundError struct {
	Path string
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("API route not found: %s (server returned an HTML page)", e.Path)
}

// ResourceNotFoundError is a 404 with a JSON body carrying the server's
// message about the missing record.
type ResourceNotFoundError struct {
	Message string
}

func (e *ResourceNotFoundError) Error() string { return e.Message }

// ConflictError is a 409, e.g. settling an already settled debt.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// MalformedResponseError is a response body that is neither JSON nor HTML.
type MalformedResponseError struct {
	StatusCode int
	Snippet    string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("unexpected response from server (status %d): %s", e.StatusCode, e.Snippet)
}

// RequestError is any other non-2xx outcome, with a message suitable for
// direct user display.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string { return e.Message }

// ValidationError is a local, pre-network failure carrying every
// field-level message.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string { return strings.Join(e.Messages, "; ") }

// statusMessage maps a status code and the server-supplied message to the
// text shown to the user.
func statusMessage(status int, serverMsg string) string {
	switch status {
	case 400, 404:
		return serverMsg
	case 401:
		return "Your session has expired, please re-authenticate"
	case 403:
		return "You do not have permission to perform this action"
	case 409:
		return "Conflict: " + serverMsg
	case 422:
		return "Validation error: " + serverMsg
	case 500:
		return "Something went wrong on the server, please try again later"
	default:
		return serverMsg
	}
}
