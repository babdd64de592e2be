package ionconfig

import (
	"errors"
	"fmt"
)

// ErrNotFound is reported by the Require* query accessors when a key is
// missing; the typed variants also report it for a null value or a value of
// the wrong category, while RequireValue returns a null value as found.
var ErrNotFound = errors.New("config value not found")

// ConfigError is the single fault kind raised for every construction-time
// problem: namespace shape, undeclared namespaces, malformed criteria,
// criteria missing from priorities, sub-field shape, and source I/O.
// Problems found while reading a record name that record. Undeclared
// namespaces and criteria missing from priorities are detected after all
// records are read; those messages name the namespaces, not a record.
// Evaluation never produces errors.
type ConfigError struct {
	msg string
	err error
}

func (e *ConfigError) Error() string {
	return e.msg
}

func (e *ConfigError) Unwrap() error {
	return e.err
}

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// recordErrorf prefixes the message with the record name, mirroring how every
// parse failure is reported.
func recordErrorf(recordName string, format string, args ...any) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf("record %s: %s", recordName, fmt.Sprintf(format, args...))}
}

func recordError(recordName string, err error, format string, args ...any) *ConfigError {
	return &ConfigError{
		msg: fmt.Sprintf("record %s: %s: %v", recordName, fmt.Sprintf(format, args...), err),
		err: err,
	}
}
