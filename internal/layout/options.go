// Package layout holds the per-request render options and the rules that
// decide which layout template wraps a view.
//
// Options is a value type. Every stage of a request applies a Transform that
// returns a new Options, so the order in which rules run is the only thing
// that decides which layout wins.
package layout

import (
	"maps"

	"github.com/conneroisu/demoapp/internal/listing"
)

// NoFrillsLayout is the header-less layout forced by the no-frills setting.
const NoFrillsLayout = "tests/layout-noheader"

// Options are the values handed to a view and its layout.
type Options struct {
	// Layout names the wrapping template without extension. Empty renders
	// the view on its own.
	Layout   string
	Title    string
	Subtitle string
	Locale   string
	Version  string
	BasePath string

	CSP   bool
	Nonce string

	NoFrills    bool
	LiveReload  bool
	UseBaseHref bool
	AMD         bool

	Paths []listing.MappedPath
	Extra map[string]any
}

// Transform derives new options from old ones.
type Transform func(Options) Options

// Defaults returns the process-wide starting options.
func Defaults() Options {
	return Options{
		Layout:     "layout",
		Title:      "SoHo XI",
		Locale:     "en-US",
		BasePath:   "/",
		CSP:        true,
		LiveReload: true,
	}
}

// Apply runs ts over o in order.
func (o Options) Apply(ts ...Transform) Options {
	for _, t := range ts {
		if t != nil {
			o = t(o)
		}
	}
	return o
}

// Get returns an extra value.
func (o Options) Get(key string) (any, bool) {
	v, ok := o.Extra[key]
	return v, ok
}

// WithLayout sets the layout view. An empty name renders the page bare.
func WithLayout(name string) Transform {
	return func(o Options) Options {
		o.Layout = name
		return o
	}
}

// WithSubtitle sets the page subtitle.
func WithSubtitle(s string) Transform {
	return func(o Options) Options {
		o.Subtitle = s
		return o
	}
}

// WithNonce sets the request's CSP nonce.
func WithNonce(nonce string) Transform {
	return func(o Options) Options {
		o.Nonce = nonce
		return o
	}
}

// WithCSP turns nonce injection on or off.
func WithCSP(on bool) Transform {
	return func(o Options) Options {
		o.CSP = on
		return o
	}
}

// WithNoFrills marks the request as a no-frills render.
func WithNoFrills(on bool) Transform {
	return func(o Options) Options {
		o.NoFrills = on
		return o
	}
}

// WithLocale sets the culture name used for messages.
func WithLocale(locale string) Transform {
	return func(o Options) Options {
		o.Locale = locale
		return o
	}
}

// WithPage copies a listing page's subtitle and entries.
func WithPage(p listing.Page) Transform {
	return func(o Options) Options {
		o.Subtitle = p.Subtitle
		o.Paths = append([]listing.MappedPath(nil), p.Paths...)
		return o
	}
}

// WithExtra sets an extra template value. The map is copied so earlier
// Options never observe the write.
func WithExtra(key string, value any) Transform {
	return func(o Options) Options {
		extra := make(map[string]any, len(o.Extra)+1)
		maps.Copy(extra, o.Extra)
		extra[key] = value
		o.Extra = extra
		return o
	}
}

// Data flattens the options into the map templates are executed with.
func (o Options) Data() map[string]any {
	data := map[string]any{
		"layout":           o.Layout,
		"title":            o.Title,
		"subtitle":         o.Subtitle,
		"locale":           o.Locale,
		"version":          o.Version,
		"basepath":         o.BasePath,
		"csp":              o.CSP,
		"nonce":            o.Nonce,
		"nofrillslayout":   o.NoFrills,
		"enableLiveReload": o.LiveReload,
		"usebasehref":      o.UseBaseHref,
		"amd":              o.AMD,
		"paths":            o.Paths,
	}
	for k, v := range o.Extra {
		if _, taken := data[k]; !taken {
			data[k] = v
		}
	}
	return data
}
