package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnavailable is returned when the gateway cannot be reached or does not
// produce a usable answer. Callers must not treat it as a payment outcome.
var ErrUnavailable = errors.New("payment gateway unavailable")

// BusinessError is returned when the gateway answered but reported a
// failure. Details holds the gateway response verbatim.
type BusinessError struct {
	StatusCode int
	Status     string
	Details    json.RawMessage
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("payment gateway rejected request: http %d, status %q", e.StatusCode, e.Status)
}

// IsBusinessError reports whether err carries a *BusinessError.
func IsBusinessError(err error) bool {
	var be *BusinessError
	return errors.As(err, &be)
}
