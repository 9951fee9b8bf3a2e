package registry

import (
	"errors"
	"fmt"
)

// MaxIDLength bounds catalog identifiers
const MaxIDLength = 128

var (
	errIDEmpty   = errors.New("cannot be empty")
	errIDTooLong = fmt.Errorf("exceeds %d characters", MaxIDLength)
)

// CheckID reports whether id is usable as a catalog identifier. IDs may
// contain ASCII letters, digits, '.', '_' and '-' so that they can appear
// unescaped in a URL path segment.
func CheckID(id string) error {
	if id == "" {
		return errIDEmpty
	}
	if len(id) > MaxIDLength {
		return errIDTooLong
	}
	for _, r := range id {
		if !idRune(r) {
			return fmt.Errorf("contains invalid character %s", string(r))
		}
	}
	return nil
}

func idRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '.':
		return true
	}
	return false
}

// checkID adds an error to res when id is set but malformed. Missing IDs
// are reported by the caller.
func checkID(res *ValidationResult, kind, id string) {
	if id == "" {
		return
	}
	if err := CheckID(id); err != nil {
		res.AddError("%s ID %q %v", kind, id, err)
	}
}
