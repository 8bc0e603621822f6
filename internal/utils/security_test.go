package contextutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskAPIKey(t *testing.T) {
	tests := map[string]string{
		"":                          "[EMPTY]",
		"abcd":                      "****",
		"abcdefgh":                  "********",
		"abcdefghijkl":              "abcd****ijkl",
		"sk-or-v1-abcdef123456":     "sk-o*************3456",
		"sk-ant-api03-0123456789ab": "sk-a*****************89ab",
	}
	for key, want := range tests {
		assert.Equal(t, want, MaskAPIKey(key), key)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Binary Search", "Binary Search"},
		{"<script>alert(1)</script>", "scriptalert(1)/script"},
		{`say "hi"`, "say hi"},
		{"  padded  ", "padded"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeInput(tt.in))
	}
}
