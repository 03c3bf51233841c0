package server

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// CSPConfig holds the Content-Security-Policy directives. The request nonce
// is appended to script-src when the header is built.
type CSPConfig struct {
	DefaultSrc     []string
	ScriptSrc      []string
	StyleSrc       []string
	ImgSrc         []string
	ConnectSrc     []string
	FontSrc        []string
	ObjectSrc      []string
	FrameAncestors []string
	BaseURI        []string
	FormAction     []string
}

// SecurityConfig holds the response headers added to every page.
type SecurityConfig struct {
	CSP                 *CSPConfig
	XFrameOptions       string
	XContentTypeNoSniff bool
	ReferrerPolicy      string
}

// DefaultSecurityConfig returns the policy pages are served with. Demo pages
// load inline styles and open the live-reload websocket.
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		CSP: &CSPConfig{
			DefaultSrc:     []string{"'self'"},
			ScriptSrc:      []string{"'self'"},
			StyleSrc:       []string{"'self'", "'unsafe-inline'"},
			ImgSrc:         []string{"'self'", "data:", "blob:"},
			ConnectSrc:     []string{"'self'", "ws:", "wss:"},
			FontSrc:        []string{"'self'", "data:"},
			ObjectSrc:      []string{"'none'"},
			FrameAncestors: []string{"'self'"},
			BaseURI:        []string{"'self'"},
			FormAction:     []string{"'self'"},
		},
		XFrameOptions:       "SAMEORIGIN",
		XContentTypeNoSniff: true,
		ReferrerPolicy:      "strict-origin-when-cross-origin",
	}
}

// applySecurityHeaders sets the configured headers. The CSP header is only
// sent when CSP is active for the request.
func applySecurityHeaders(w http.ResponseWriter, config *SecurityConfig, nonce string, cspActive bool) {
	if config == nil {
		return
	}

	if cspActive && config.CSP != nil {
		w.Header().Set("Content-Security-Policy", buildCSPHeader(config.CSP, nonce))
	}
	if config.XFrameOptions != "" {
		w.Header().Set("X-Frame-Options", config.XFrameOptions)
	}
	if config.XContentTypeNoSniff {
		w.Header().Set("X-Content-Type-Options", "nosniff")
	}
	if config.ReferrerPolicy != "" {
		w.Header().Set("Referrer-Policy", config.ReferrerPolicy)
	}
}

// buildCSPHeader constructs the Content-Security-Policy header value
func buildCSPHeader(csp *CSPConfig, nonce string) string {
	var directives []string

	addDirective := func(name string, values []string) {
		if len(values) > 0 {
			directives = append(directives, fmt.Sprintf("%s %s", name, strings.Join(values, " ")))
		}
	}

	scriptSrc := csp.ScriptSrc
	if nonce != "" {
		scriptSrc = append(append([]string(nil), scriptSrc...), "'nonce-"+nonce+"'")
	}

	addDirective("default-src", csp.DefaultSrc)
	addDirective("script-src", scriptSrc)
	addDirective("style-src", csp.StyleSrc)
	addDirective("img-src", csp.ImgSrc)
	addDirective("connect-src", csp.ConnectSrc)
	addDirective("font-src", csp.FontSrc)
	addDirective("object-src", csp.ObjectSrc)
	addDirective("frame-ancestors", csp.FrameAncestors)
	addDirective("base-uri", csp.BaseURI)
	addDirective("form-action", csp.FormAction)

	return strings.Join(directives, "; ")
}

// newNonce returns a fresh base64 nonce for one request.
func newNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
