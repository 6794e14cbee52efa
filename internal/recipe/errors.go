package recipe

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrorKind classifies why producing a response failed
type ErrorKind string

const (
	KindMalformedOutput ErrorKind = "malformed_output"
	KindSchemaMismatch  ErrorKind = "schema_mismatch"
	KindUpstream        ErrorKind = "upstream"
	KindUnknown         ErrorKind = "unknown"
)

const snippetLimit = 200

// ParseError is returned when the model output is not a single JSON value
type ParseError struct {
	Snippet string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("model output is not valid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Kind() ErrorKind { return KindMalformedOutput }

// SchemaError is returned when the model output is valid JSON but does not
// have the documented shape. Path points at the offending element, e.g.
// dishes[2].nutrition.fiber.
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("model output does not match schema: %s: %s", e.Path, e.Reason)
}

func (e *SchemaError) Kind() ErrorKind { return KindSchemaMismatch }

// KindOf returns the kind of the first classified error in err's chain
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var k interface{ Kind() ErrorKind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}

func newParseError(raw string, err error) *ParseError {
	return &ParseError{Snippet: truncate(raw, snippetLimit), Err: err}
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
