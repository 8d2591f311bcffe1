package validate

import (
	"errors"
	"strings"
)

// FieldError is used to indicate an error with a specific field.
type FieldError struct {
	Field string
	Error string
}

// Errors collects field errors found before anything is sent.
type Errors struct {
	Summary string
	Fields  []FieldError
}

func New(summary string) *Errors {
	return &Errors{Summary: summary}
}

func (e *Errors) Error() string {
	if e.Summary != "" {
		return e.Summary
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Error)
	}
	return strings.Join(msgs, "; ")
}

// Add records msg for field; the first message per field wins.
func (e *Errors) Add(field, msg string) {
	if e.Get(field) != "" {
		return
	}
	e.Fields = append(e.Fields, FieldError{Field: field, Error: msg})
}

// Get returns the message for field, or "".
func (e *Errors) Get(field string) string {
	if e == nil {
		return ""
	}
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Error
		}
	}
	return ""
}

// Map returns field -> message, for templates.
func (e *Errors) Map() map[string]string {
	if e == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Error
	}
	return out
}

// OrNil returns nil when no field failed.
func (e *Errors) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// As extracts *Errors from err.
func As(err error) (*Errors, bool) {
	var verr *Errors
	ok := errors.As(err, &verr)
	return verr, ok
}
