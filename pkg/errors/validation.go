package errors

import (
	"strings"
	"unicode"
)

// ValidateID validates an item, connection or deployment identifier.
// Identifiers are assigned by the external store; this only rejects values
// that would be unsafe as keys in the store adapters.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - No whitespace at either end
//   - Maximum length of 128 characters
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s ID cannot be empty", kind)
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "%s ID too long (max 128 characters)", kind)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s ID contains invalid control characters", kind)
		}
	}

	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidInput, "%s ID has leading or trailing whitespace: %q", kind, id)
	}

	return nil
}

// ValidateZone validates a zone code used for filtering.
// An empty zone is valid and means "no zone filter".
func ValidateZone(zone string) error {
	if zone == "" {
		return nil
	}
	if len(zone) > 64 {
		return New(ErrCodeInvalidInput, "zone too long (max 64 characters)")
	}
	for _, r := range zone {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "zone contains invalid control characters")
		}
	}
	return nil
}
