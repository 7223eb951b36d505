package config

import (
	"fmt"
	"strings"
)

// PermissionError reports a config file paloma cannot read or write.
type PermissionError struct {
	Path    string
	Op      string // "read" or "write"
	Fix     string // Suggested fix command
	Details string
}

func (e *PermissionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "permission denied (cannot %s config): %s\n", e.Op, e.Path)
	if e.Details != "" {
		b.WriteString(e.Details + "\n")
	}
	b.WriteString("💡 Fix: " + e.Fix)
	return b.String()
}

// ConfigNotFoundError reports a missing config file.
type ConfigNotFoundError struct {
	Path string
	Hint string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s\n\n💡 %s", e.Path, e.Hint)
}

// InvalidConfigError reports a config file that cannot be parsed or does
// not validate. Err holds the underlying *FieldError when there is one.
type InvalidConfigError struct {
	Path    string
	Message string
	Hint    string
	Err     error
}

func (e *InvalidConfigError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid config: %s\n", e.Path)
	switch {
	case e.Message != "":
		b.WriteString(e.Message + "\n")
	case e.Err != nil:
		b.WriteString(e.Err.Error() + "\n")
	}
	if e.Hint != "" {
		b.WriteString("💡 " + e.Hint)
	}
	return b.String()
}

func (e *InvalidConfigError) Unwrap() error { return e.Err }

// FieldError names the config key holding an unusable value.
type FieldError struct {
	Field   string // dotted key, e.g. "storage.driver"
	Message string
	Err     error
}

func (e *FieldError) Error() string {
	msg := e.Field + ": " + e.Message
	if e.Err != nil {
		if e.Message == "" {
			return e.Field + ": " + e.Err.Error()
		}
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FieldError) Unwrap() error { return e.Err }

func fieldErrorf(field, format string, args ...interface{}) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}
