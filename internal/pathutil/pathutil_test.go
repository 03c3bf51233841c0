package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripExtension(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"example-index.html", "example-index"},
		{"example-index", "example-index"},
		{"a.html.html", "a.html"},
		{"components/button/test-sizes.html", "components/button/test-sizes"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StripExtension(tt.in))
		})
	}
}

func TestEnsureExtension(t *testing.T) {
	assert.Equal(t, "example-index.html", EnsureExtension("example-index"))
	assert.Equal(t, "example-index.html", EnsureExtension("example-index.html"))
	assert.Equal(t, EnsureExtension("x"), EnsureExtension(EnsureExtension("x")))
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello world", "Hello World"},
		{"HELLO wORLD", "Hello World"},
		{"list view", "List View"},
		{"date picker-range", "Date Picker-range"},
		{"  spaced  out ", "  Spaced  Out "},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleCase(tt.in))
		})
	}
}

func TestSubtitle(t *testing.T) {
	assert.Equal(t, "Datagrid", Subtitle("datagrid"))
	assert.Equal(t, "List View", Subtitle("list-view"))
	assert.Equal(t, "Base Tag", Subtitle("base-tag"))
	assert.Equal(t, "Date Picker-range", Subtitle("date-picker-range"))
}

func TestHasTrailingSlash(t *testing.T) {
	assert.False(t, HasTrailingSlash(""))
	assert.False(t, HasTrailingSlash("tests"))
	assert.True(t, HasTrailingSlash("tests/"))
	assert.True(t, HasTrailingSlash("/"))
}

func TestTrimTrailingSlash(t *testing.T) {
	assert.Equal(t, "tests", TrimTrailingSlash("tests/"))
	assert.Equal(t, "tests/", TrimTrailingSlash("tests//"))
	assert.Equal(t, "tests", TrimTrailingSlash("tests"))
	assert.Equal(t, "", TrimTrailingSlash(""))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "list view", Humanize("list-view.html"))
	assert.Equal(t, "components/button/basic", Humanize("components/button/basic.html"))
}

func TestCollapseSlashes(t *testing.T) {
	assert.Equal(t, "/components/button/", CollapseSlashes("//components//button//"))
	assert.Equal(t, "a//b", CollapseSlashes("a////b"))
}

func TestEnsureLeadingSlash(t *testing.T) {
	assert.Equal(t, "/tests", EnsureLeadingSlash("tests"))
	assert.Equal(t, "/tests", EnsureLeadingSlash("/tests"))
	assert.Equal(t, "/", EnsureLeadingSlash(""))
}
