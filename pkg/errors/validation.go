package errors

import (
	"strings"
	"unicode"
)

// ValidateBasename validates an output basename. Directories are allowed,
// control characters and empty names are not.
func ValidateBasename(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidPath, "output basename cannot be empty")
	}

	const maxPathLength = 1024
	if len(name) > maxPathLength {
		return New(ErrCodeInvalidPath, "output basename too long (max %d characters)", maxPathLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output basename contains invalid control characters")
		}
	}

	if strings.HasSuffix(name, "/") {
		return New(ErrCodeInvalidPath, "output basename must name a file, not a directory: %q", name)
	}

	return nil
}

// ValidateHost validates a host filter token.
// Hosts are compared against the first word of a peer name, so whitespace is rejected.
func ValidateHost(host string) error {
	if host == "" {
		return nil
	}
	if strings.IndexFunc(host, unicode.IsSpace) >= 0 {
		return New(ErrCodeInvalidFilter, "host filter must be a single word: %q", host)
	}
	if strings.ContainsRune(host, '"') {
		return New(ErrCodeInvalidFilter, "host filter cannot contain quotes: %q", host)
	}
	return nil
}

// ValidateLID validates a LID filter value. Unicast LIDs are 1..0xBFFF.
func ValidateLID(lid int) error {
	if lid < 1 || lid > 0xBFFF {
		return New(ErrCodeInvalidFilter, "LID %d out of range (1-49151)", lid)
	}
	return nil
}
