package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code names a class of failure
type Code string

const (
	CodeSessionUnavailable      Code = "SessionUnavailable"
	CodeRenderTimeout           Code = "RenderTimeout"
	CodeControlNotFound         Code = "ControlNotFound"
	CodeTableNotFound           Code = "TableNotFound"
	CodeTableFormatUnrecognized Code = "TableFormatUnrecognized"
	CodeFeedUnavailable         Code = "FeedUnavailable"
	CodeDateUnparseable         Code = "DateUnparseable"
	CodeTimeUnparseable         Code = "TimeUnparseable"
	CodeTeamNotFound            Code = "TeamNotFound"
	CodeNoScheduleData          Code = "NoScheduleData"
	CodeInvalidRequest          Code = "InvalidRequest"
	CodeInternal                Code = "Internal"
)

// Sentinels for errors.Is. Any *Error with the same Code matches.
var (
	ErrSessionUnavailable      = &Error{Code: CodeSessionUnavailable}
	ErrRenderTimeout           = &Error{Code: CodeRenderTimeout}
	ErrControlNotFound         = &Error{Code: CodeControlNotFound}
	ErrTableNotFound           = &Error{Code: CodeTableNotFound}
	ErrTableFormatUnrecognized = &Error{Code: CodeTableFormatUnrecognized}
	ErrFeedUnavailable         = &Error{Code: CodeFeedUnavailable}
	ErrDateUnparseable         = &Error{Code: CodeDateUnparseable}
	ErrTimeUnparseable         = &Error{Code: CodeTimeUnparseable}
	ErrTeamNotFound            = &Error{Code: CodeTeamNotFound}
	ErrNoScheduleData          = &Error{Code: CodeNoScheduleData}
	ErrInvalidRequest          = &Error{Code: CodeInvalidRequest}
	ErrInternal                = &Error{Code: CodeInternal}
)

// Error is a classified failure carrying enough context (selector, url,
// field, offending value) to diagnose it without re-running.
type Error struct {
	Code         Code              `json:"code"`
	Message      string            `json:"message"`
	Details      map[string]string `json:"details,omitempty"`
	Alternatives []string          `json:"alternatives,omitempty"`
	Err          error             `json:"-"`
}

// NewError creates an Error with the given code and message
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// With adds a detail key/value and returns the same error for chaining
func (e *Error) With(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Wrap records the underlying cause
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%q", k, e.Details[k]))
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, " "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// AsError attempts to unwrap an error into an *Error.
func AsError(err error) (*Error, bool) {
	var sErr *Error
	if errors.As(err, &sErr) {
		return sErr, true
	}
	return nil, false
}

// CodeOf returns the code of a classified error, or "" for anything else.
func CodeOf(err error) Code {
	if sErr, ok := AsError(err); ok {
		return sErr.Code
	}
	return ""
}
