package zendesk

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx response from the Zendesk API. Body holds the raw
// response text, or "" if it could not be read.
type APIError struct {
	StatusCode int
	Body       string
}

func (err *APIError) Error() string {
	return fmt.Sprintf("zendesk: HTTP %d: %s", err.StatusCode, err.Body)
}

// AsAPIError returns the *APIError wrapped in err, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiError *APIError
	if errors.As(err, &apiError) {
		return apiError, true
	}
	return nil, false
}
