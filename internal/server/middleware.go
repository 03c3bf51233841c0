package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/conneroisu/demoapp/internal/layout"
	"github.com/conneroisu/demoapp/internal/validation"
	"github.com/conneroisu/demoapp/internal/widget/compositeform"
)

// NoFrillsCookie remembers the no-frills choice between requests.
const NoFrillsCookie = "nofrillslayout"

type stateKey struct{}

// requestState is what the page middleware hands to the handlers.
type requestState struct {
	options   layout.Options
	cspActive bool
}

func stateFrom(ctx context.Context) requestState {
	if st, ok := ctx.Value(stateKey{}).(requestState); ok {
		return st
	}
	return requestState{}
}

// requestLogger emits one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// pageOptions seeds the request's render options: a fresh nonce, the
// no-frills setting, the locale and any generated demo data for the path.
// It also sets the security headers, since only pages carry a nonce.
func (s *Server) pageOptions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce, err := newNonce()
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		query := r.URL.Query()
		cspActive := s.base.CSP || query.Has("csp")

		loc := s.base.Locale
		if q := validation.SanitizeInput(query.Get("locale")); q != "" {
			loc = s.catalog.Negotiate(q)
		}

		transforms := []layout.Transform{
			layout.WithNonce(nonce),
			layout.WithNoFrills(s.noFrills(w, r)),
			layout.WithLocale(loc),
			layout.WithExtra("messages", s.catalog.Messages(loc)),
		}
		for key, value := range s.mock.For(r.URL.Path) {
			transforms = append(transforms, layout.WithExtra(key, value))
		}
		if strings.Contains(r.URL.Path, "composite-form") {
			tr := compositeform.TranslatorFunc(s.catalog.Translator(loc))
			transforms = append(transforms, layout.WithExtra("compositeForm", compositeform.DefaultSettings(tr)))
		}

		st := requestState{
			options:   s.base.Apply(transforms...),
			cspActive: cspActive,
		}

		applySecurityHeaders(w, s.security, nonce, cspActive)

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), stateKey{}, st)))
	})
}

// noFrills reads the no-frills setting. The query parameter wins and is
// remembered in a cookie; "nofrillslayout=false" clears it.
func (s *Server) noFrills(w http.ResponseWriter, r *http.Request) bool {
	query := r.URL.Query()
	if query.Has(NoFrillsCookie) {
		if strings.EqualFold(query.Get(NoFrillsCookie), "false") {
			http.SetCookie(w, &http.Cookie{
				Name:     NoFrillsCookie,
				Value:    "",
				Path:     s.config.Server.BasePath,
				MaxAge:   -1,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			return false
		}
		http.SetCookie(w, &http.Cookie{
			Name:     NoFrillsCookie,
			Value:    "true",
			Path:     s.config.Server.BasePath,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		return true
	}

	c, err := r.Cookie(NoFrillsCookie)
	return err == nil && c.Value == "true"
}
