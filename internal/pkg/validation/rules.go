package validation

import "regexp"

// Validation rule patterns
var (
	// Lowercase-only; callers normalize the address first.
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// Usernames are short alphanumeric handles.
	UsernamePattern = `^[a-zA-Z0-9_]{3,30}$`

	// Password min length
	PasswordMinLength = 8
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Email    *regexp.Regexp
	Username *regexp.Regexp
}{
	Email:    regexp.MustCompile(EmailPattern),
	Username: regexp.MustCompile(UsernamePattern),
}
