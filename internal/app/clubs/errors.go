package clubs

import "net/http"

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func errNotFound() error {
	return &Error{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: "club not found"}
}

func errUnauthorized() error {
	return &Error{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "authentication required"}
}

func errForbidden() error {
	return &Error{Status: http.StatusForbidden, Code: "FORBIDDEN", Message: "only club organizers and leads can view registrations"}
}
