// Package pathutil holds the small string helpers the router uses to turn
// view file names into routes and labels.
package pathutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const htmlExt = ".html"

// wordToken matches a run starting with a word character up to the next space.
var wordToken = regexp.MustCompile(`\w\S*`)

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// StripExtension removes the first ".html" occurrence from p.
func StripExtension(p string) string {
	return strings.Replace(p, htmlExt, "", 1)
}

// EnsureExtension returns p with exactly one trailing ".html".
func EnsureExtension(p string) string {
	return StripExtension(p) + htmlExt
}

// TitleCase upper-cases the first letter of every word token and lower-cases
// the rest of it. Text between tokens is kept as is.
func TitleCase(s string) string {
	return wordToken.ReplaceAllStringFunc(s, func(tok string) string {
		first, rest := splitFirst(tok)
		return upper.String(first) + lower.String(rest)
	})
}

// Capitalize upper-cases only the first character of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	first, rest := splitFirst(s)
	return upper.String(first) + rest
}

// Subtitle derives a page subtitle from a component or page name:
// "list-view" becomes "List View". Only the first hyphen is replaced.
func Subtitle(name string) string {
	return TitleCase(Capitalize(strings.Replace(name, "-", " ", 1)))
}

// HasTrailingSlash reports whether s ends in "/". Empty input is false.
func HasTrailingSlash(s string) bool {
	return s != "" && s[len(s)-1] == '/'
}

// TrimTrailingSlash drops a single trailing "/".
func TrimTrailingSlash(s string) string {
	if HasTrailingSlash(s) {
		return s[:len(s)-1]
	}
	return s
}

// Humanize turns a file link into a listing label: hyphens become spaces and
// the first ".html" is removed.
func Humanize(p string) string {
	return StripExtension(strings.ReplaceAll(p, "-", " "))
}

// CollapseSlashes replaces every "//" pair with a single "/".
func CollapseSlashes(p string) string {
	return strings.ReplaceAll(p, "//", "/")
}

// EnsureLeadingSlash prefixes p with "/" when it does not already start with one.
func EnsureLeadingSlash(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}

func splitFirst(s string) (string, string) {
	for i := range s {
		if i > 0 {
			return s[:i], s[i:]
		}
	}
	return s, ""
}
