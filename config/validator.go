package config

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the name of the invalid field
	Path string

	// Message describes the validation error
	Message string
}

// Error returns the error message.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors collects every problem found by Validate.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return "invalid client config: " + strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns ValidationErrors, or nil
// when the configuration is usable.
func (c *ClientConfig) Validate() error {
	var errs ValidationErrors

	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		switch {
		case err != nil:
			errs = append(errs, ValidationError{
				Path:    "baseUrl",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		case !u.IsAbs() || u.Host == "":
			errs = append(errs, ValidationError{
				Path:    "baseUrl",
				Message: "must be an absolute URL",
			})
		case u.RawQuery != "" || u.ForceQuery || u.Fragment != "":
			errs = append(errs, ValidationError{
				Path:    "baseUrl",
				Message: "cannot contain a query string or fragment",
			})
		}
	}

	if c.Timeout < 0 {
		errs = append(errs, ValidationError{
			Path:    "timeout",
			Message: "must not be negative",
		})
	}

	if c.RateLimit < 0 {
		errs = append(errs, ValidationError{
			Path:    "rateLimit",
			Message: "must not be negative",
		})
	}
	if c.RateBurst < 0 {
		errs = append(errs, ValidationError{
			Path:    "rateBurst",
			Message: "must not be negative",
		})
	}

	for name, value := range c.Headers {
		if !validHeaderName(name) {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("headers.%s", name),
				Message: "invalid header name",
			})
			continue
		}
		if !validHeaderValue(value) {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("headers.%s", http.CanonicalHeaderKey(name)),
				Message: "invalid header value",
			})
		}
	}

	if !validHeaderValue(c.UserAgent) {
		errs = append(errs, ValidationError{
			Path:    "userAgent",
			Message: "invalid header value",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validHeaderName reports whether name is a non-empty RFC 7230 token.
func validHeaderName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r <= ' ' || r >= 0x7f || strings.ContainsRune(`"(),/:;<=>?@[\]{}`, r) {
			return false
		}
	}
	return true
}

// validHeaderValue rejects values that would split the header line.
func validHeaderValue(value string) bool {
	return !strings.ContainsAny(value, "\r\n\x00")
}
