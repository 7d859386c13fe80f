package generator

import (
	"fmt"
	"strings"
)

// ValidationError reports content that parsed but failed validation.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// FormatError reports a response that could not be decoded as JSON even
// after code-fence stripping and embedded-object extraction.
type FormatError struct {
	Detail string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("malformed response: %s", e.Detail)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
