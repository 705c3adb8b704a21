package cartodex

import "fmt"

// APIError is a non-2xx response from the cartodex API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cartodex: api error %d: %s", e.StatusCode, e.Detail)
}
