// Package validation holds the input checks shared by the config loader, the
// view renderer and the live-reload endpoint: anything that reaches the
// filesystem or upgrades a connection from untrusted input goes through here.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

var (
	ErrEmpty     = errors.New("value cannot be empty")
	ErrTraversal = errors.New("path traversal attempt detected")
	ErrNulByte   = errors.New("contains a NUL byte")
)

// ViewName validates a views-relative template name such as
// "components/button/example-index". Names may not be empty, climb out of
// the root or carry NUL bytes.
func ViewName(name string) error {
	switch {
	case strings.TrimSpace(name) == "" || path.Clean("/"+name) == "/":
		return ErrEmpty
	case strings.Contains(name, ".."):
		return fmt.Errorf("%w: %s", ErrTraversal, name)
	case strings.ContainsRune(name, 0):
		return ErrNulByte
	}
	return nil
}

// ContentRoot validates a configured content root. Absolute roots are
// accepted; relative ones may not start above the working directory.
func ContentRoot(root string) error {
	if strings.TrimSpace(root) == "" {
		return ErrEmpty
	}
	if strings.ContainsRune(root, 0) {
		return ErrNulByte
	}

	clean := filepath.Clean(root)
	if !filepath.IsAbs(clean) && (clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator))) {
		return fmt.Errorf("%w: %q escapes the working directory", ErrTraversal, root)
	}

	return nil
}

// OriginHost validates a websocket Origin header. The origin must be an
// http or https URL whose host is requestHost or one of allowed. It returns
// that host.
func OriginHost(origin, requestHost string, allowed []string) (string, error) {
	if origin == "" {
		return "", fmt.Errorf("origin header is required")
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("invalid origin format: %w", err)
	}

	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return "", fmt.Errorf("invalid origin scheme '%s': only http and https are allowed", originURL.Scheme)
	}

	if originURL.Host != "" && originURL.Host == requestHost {
		return originURL.Host, nil
	}
	for _, a := range allowed {
		if originURL.Host == a {
			return originURL.Host, nil
		}
	}

	return "", fmt.Errorf("origin '%s' is not in allowed origins list", origin)
}

// SanitizeInput drops NUL bytes and control characters other than common
// whitespace.
func SanitizeInput(input string) string {
	var sanitized strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' || r == '\r' {
			sanitized.WriteRune(r)
		}
	}
	return sanitized.String()
}
