package errors

import (
	"strings"
	"testing"
)

func TestValidateItemID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "photo-1", false},
		{"with slash", "album/photo.jpg", false},
		{"unicode", "café", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"quote", `foo"bar`, true},
		{"angle bracket", "<script>", true},
		{"ampersand", "a&b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItemID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateItemID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "img/cat.jpg", false},
		{"valid nested", "albums/2024/summer/beach.png", false},
		{"valid filename only", "cover.gif", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"absolute path", "/etc/passwd", true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestIsRemoteURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://example.com/a.jpg", true},
		{"http://example.com/a.jpg", true},
		{"img/a.jpg", false},
		{"ftp://example.com/a.jpg", false},
	}
	for _, tt := range tests {
		if got := IsRemoteURL(tt.input); got != tt.want {
			t.Errorf("IsRemoteURL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
