package errors

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "D1", false},
		{"valid with dash", "ACC-CRD-0042", false},
		{"valid uuid", "0f8fad5b-d9cb-469f-a165-70867728950e", false},

		{"empty", "", true},
		{"too long", strings.Repeat("x", 129), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"leading space", " D1", true},
		{"trailing space", "D1 ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID("item", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateZone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"no filter", "", false},
		{"code", "A", false},
		{"name", "Front Yard", false},

		{"too long", strings.Repeat("z", 65), true},
		{"control char", "Front\x07Yard", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateZone(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateZone(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
