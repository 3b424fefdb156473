package family

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the sentinel matched by every *ConfigurationError.
var ErrConfiguration = errors.New("invalid configuration")

// ConfigurationError reports an invalid input or a derived parameter outside
// the supported range.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

// Is makes errors.Is(err, ErrConfiguration) match.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configError(field string, value any, reason string) error {
	return &ConfigurationError{Field: field, Value: value, Reason: reason}
}
