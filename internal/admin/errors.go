package admin

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is returned when the admin API answers with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("admin api %s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// IsStatusError reports whether err carries an admin StatusError and returns it.
func IsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsNotFound reports whether err is an admin 404.
func IsNotFound(err error) bool {
	se, ok := IsStatusError(err)
	return ok && se.StatusCode == http.StatusNotFound
}
