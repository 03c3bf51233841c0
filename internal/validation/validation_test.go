package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewName(t *testing.T) {
	tests := []struct {
		name    string
		view    string
		wantErr error
	}{
		{"component page", "components/button/example-index", nil},
		{"top level", "kitchen-sink", nil},
		{"empty", "", ErrEmpty},
		{"blank", "   ", ErrEmpty},
		{"root", "/", ErrEmpty},
		{"traversal", "../secrets", ErrTraversal},
		{"nested traversal", "tests/../../etc/passwd", ErrTraversal},
		{"nul byte", "tests/a\x00b", ErrNulByte},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ViewName(tt.view)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestContentRoot(t *testing.T) {
	tests := []struct {
		name    string
		root    string
		wantErr bool
	}{
		{"relative", "app/views", false},
		{"dot relative", "./app/views", false},
		{"absolute", "/srv/demo/views", false},
		{"dotdot prefix in name", "..views", false},
		{"empty", "", true},
		{"parent", "..", true},
		{"escapes", "../views", true},
		{"escapes after clean", "app/../../views", true},
		{"nul byte", "app\x00views", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ContentRoot(tt.root)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOriginHost(t *testing.T) {
	allowed := []string{"localhost:4000"}

	tests := []struct {
		name     string
		origin   string
		host     string
		wantHost string
		wantErr  bool
	}{
		{"same host", "http://example.com", "example.com", "example.com", false},
		{"https same host", "https://example.com:8443", "example.com:8443", "example.com:8443", false},
		{"allowed list", "http://localhost:4000", "127.0.0.1:4000", "localhost:4000", false},
		{"missing", "", "example.com", "", true},
		{"other host", "http://evil.test", "example.com", "", true},
		{"file scheme", "file:///tmp/page.html", "example.com", "", true},
		{"javascript scheme", "javascript:alert(1)", "example.com", "", true},
		{"unparsable", "http://[::1", "example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, err := OriginHost(tt.origin, tt.host, allowed)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "ko-KR", SanitizeInput("ko-\x00KR"))
	assert.Equal(t, "a\tb\nc", SanitizeInput("a\tb\nc\x07"))
}
