package workflows

import (
	"errors"
	"unicode"

	"go.temporal.io/sdk/temporal"
)

// allDigits reports whether s is non-empty and contains only digits.
func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if !unicode.IsDigit(ch) {
			return false
		}
	}
	return true
}

// applicationErrorMessage extracts the user-facing message carried by an
// application error raised in an activity, or returns the fallback text.
func applicationErrorMessage(err error, fallback string) string {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) && appErr.Message() != "" {
		return appErr.Message()
	}
	return fallback
}
