// Package guard holds the precondition checks shared by the request builder
// and the query parameter collection.
package guard

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidArgument marks a nil or blank required argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidConfiguration marks builder state that cannot produce a request.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrKeyNotFound marks a lookup of a key that is not present.
	ErrKeyNotFound = errors.New("key not found")
)

// NotBlank fails when value is empty or only whitespace.
func NotBlank(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.Wrapf(ErrInvalidArgument, "%s cannot be empty or whitespace", name)
	}
	return nil
}

// NotNil fails when isNil is true. Callers pass the nil check because typed
// nils inside interfaces are not visible here.
func NotNil(name string, isNil bool) error {
	if isNil {
		return errors.Wrapf(ErrInvalidArgument, "%s cannot be nil", name)
	}
	return nil
}

// Configuration wraps ErrInvalidConfiguration with a formatted message.
func Configuration(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidConfiguration, format, args...)
}

// NotFound wraps ErrKeyNotFound for key.
func NotFound(key string) error {
	return errors.Wrapf(ErrKeyNotFound, "%q", key)
}
