package listing

import (
	"regexp"
)

// Rules is an ordered set of exclude patterns. A link is excluded when any
// rule matches it.
type Rules []*regexp.Regexp

// GeneralExcludes hides files that are never pages on their own: layouts,
// header and footer partials, generated API docs, partial, functional and
// unit test fixtures, and OS metadata.
var GeneralExcludes = Rules{
	regexp.MustCompile(`(_)?(layout)(\s)?(\.html)?`),
	regexp.MustCompile(`footer\.html`),
	regexp.MustCompile(`_header\.html`),
	regexp.MustCompile(`(api.md$)`),
	regexp.MustCompile(`(api.html$)`),
	regexp.MustCompile(`partial`),
	regexp.MustCompile(`functional`),
	regexp.MustCompile(`unit`),
	regexp.MustCompile(`\.DS_Store`),
}

// With returns a new rule set holding r followed by more. r is not modified.
func (r Rules) With(more ...*regexp.Regexp) Rules {
	out := make(Rules, 0, len(r)+len(more))
	out = append(out, r...)
	return append(out, more...)
}

// Match reports whether any rule matches s.
func (r Rules) Match(s string) bool {
	for _, re := range r {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// Names builds rules that exclude literal file names.
func Names(names ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(names))
	for _, n := range names {
		out = append(out, regexp.MustCompile(regexp.QuoteMeta(n)))
	}
	return out
}

// ComponentExcludes hides the files inside a component folder that are not
// example or test pages: the page named after the component itself, source
// and doc files, and index pages.
func ComponentExcludes(kind string) []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`[^-](_)?(` + regexp.QuoteMeta(kind) + `)\.(html)`),
		regexp.MustCompile(`\.(scss|js|md)`),
		regexp.MustCompile(`[^-.]index\.html`),
	}
}
