package layout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/demoapp/internal/listing"
)

type fakeViews map[string]bool

func (f fakeViews) FileExists(_ context.Context, p string) bool { return f[p] }

func TestWithExtraCopiesOnWrite(t *testing.T) {
	base := Defaults().Apply(WithExtra("a", 1))
	derived := base.Apply(WithExtra("b", 2))

	_, ok := base.Get("b")
	assert.False(t, ok)
	v, ok := derived.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestWithPageCopiesPaths(t *testing.T) {
	page := listing.Page{Subtitle: "Listing for tests/", Paths: []listing.MappedPath{{Href: "/tests/a"}}}
	o := Defaults().Apply(WithPage(page))
	page.Paths[0].Href = "/changed"

	assert.Equal(t, "Listing for tests/", o.Subtitle)
	assert.Equal(t, "/tests/a", o.Paths[0].Href)
}

func TestDataKeepsReservedKeys(t *testing.T) {
	o := Defaults().Apply(WithNonce("abc"), WithExtra("nonce", "evil"), WithExtra("dropdownListData", []string{"x"}))
	data := o.Data()

	assert.Equal(t, "abc", data["nonce"])
	assert.Equal(t, []string{"x"}, data["dropdownListData"])
	assert.Equal(t, "SoHo XI", data["title"])
}

func TestSectionDefaults(t *testing.T) {
	base := Defaults()

	assert.Equal(t, "patterns/layout", base.Apply(Patterns.Defaults()).Layout)
	assert.Equal(t, "Examples", base.Apply(Examples.Defaults()).Subtitle)

	perf := base.Apply(PerformanceTests.Defaults())
	assert.Equal(t, "layout", perf.Layout)
	assert.Equal(t, "Performance Tests", perf.Subtitle)
}

func TestResolveComponent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		views        fakeViews
		base         Options
		component    string
		example      string
		wantLayout   string
		wantSubtitle string
		wantBaseHref bool
	}{
		{
			name:         "section default",
			component:    "datagrid",
			example:      "example-index",
			wantLayout:   "layout",
			wantSubtitle: "Datagrid",
		},
		{
			name:         "folder layout",
			views:        fakeViews{"components/datagrid/_layout.html": true},
			component:    "datagrid",
			example:      "example-index",
			wantLayout:   "components/datagrid/_layout",
			wantSubtitle: "Datagrid",
		},
		{
			name: "layout.html wins over _layout.html",
			views: fakeViews{
				"components/datagrid/_layout.html": true,
				"components/datagrid/layout.html":  true,
			},
			component:    "datagrid",
			example:      "example-index",
			wantLayout:   "components/datagrid/layout",
			wantSubtitle: "Datagrid",
		},
		{
			name:         "base-tag wins over folder layout",
			views:        fakeViews{"components/base-tag/layout.html": true},
			component:    "base-tag",
			example:      "example-x",
			wantLayout:   "tests/layout",
			wantSubtitle: "Base Tag",
			wantBaseHref: true,
		},
		{
			name:         "applicationmenu examples have no layout",
			component:    "applicationmenu",
			example:      "example-index.html",
			wantLayout:   "",
			wantSubtitle: "Applicationmenu",
		},
		{
			name:         "applicationmenu other pages keep the layout",
			component:    "applicationmenu",
			example:      "index",
			wantLayout:   "layout",
			wantSubtitle: "Applicationmenu",
		},
		{
			name:         "header gauntlet",
			component:    "header",
			example:      "test-header-gauntlet",
			wantLayout:   "components/header/layout-header-gauntlet",
			wantSubtitle: "Header",
		},
		{
			name:         "partial page clears layout",
			views:        fakeViews{"components/tabs/layout.html": true},
			component:    "tabs",
			example:      "partial-tab-content.html",
			wantLayout:   "",
			wantSubtitle: "Tabs",
		},
		{
			name:         "no-frills overrides partial",
			base:         Defaults().Apply(WithNoFrills(true)),
			component:    "tabs",
			example:      "partial-tab-content",
			wantLayout:   NoFrillsLayout,
			wantSubtitle: "Tabs",
		},
		{
			name:         "no-frills overrides base-tag",
			base:         Defaults().Apply(WithNoFrills(true)),
			component:    "base-tag",
			example:      "example-x",
			wantLayout:   NoFrillsLayout,
			wantSubtitle: "Base Tag",
			wantBaseHref: true,
		},
		{
			name:         "subtitle only replaces first hyphen",
			component:    "list-detail-view",
			example:      "example-index",
			wantLayout:   "layout",
			wantSubtitle: "List Detail-view",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := tt.base
			if base.Title == "" {
				base = Defaults()
			}
			r := NewResolver(tt.views, nil)

			o := r.Component(ctx, base, tt.component, tt.example)

			assert.Equal(t, tt.wantLayout, o.Layout)
			assert.Equal(t, tt.wantSubtitle, o.Subtitle)
			assert.Equal(t, tt.wantBaseHref, o.UseBaseHref)
		})
	}
}

func TestResolveComponentLeavesBaseUntouched(t *testing.T) {
	base := Defaults()
	r := NewResolver(fakeViews{}, nil)

	_ = r.Component(context.Background(), base, "base-tag", "example-x")

	assert.Equal(t, "layout", base.Layout)
	assert.False(t, base.UseBaseHref)
}

func TestResolveTests(t *testing.T) {
	tests := []struct {
		dir          string
		noFrills     bool
		wantLayout   string
		wantSubtitle string
		wantAMD      bool
		wantBaseHref bool
	}{
		{dir: "tests/button/example", wantLayout: "tests/layout", wantSubtitle: "Tests"},
		{dir: "tests/composite-form/example-index", wantLayout: "tests/composite-form/_layout", wantSubtitle: "Tests"},
		{dir: "tests/call-to-action-header", wantLayout: "tests/call-to-action-header/layout", wantSubtitle: "Tests"},
		{dir: "tests/distribution/amd", wantLayout: "", wantSubtitle: "AMD Tests", wantAMD: true},
		{dir: "tests/datagrid-fixed-header/x", wantLayout: "tests/layout-noscroll", wantSubtitle: "Tests"},
		{dir: "tests/masthead/x", wantLayout: "tests/masthead/layout", wantSubtitle: "Tests"},
		{dir: "tests/place/scrolling/container-is-body", wantLayout: "tests/place/scrolling/layout-body", wantSubtitle: "Tests"},
		{dir: "tests/place/scrolling/container-is-nested", wantLayout: "tests/place/scrolling/layout-nested", wantSubtitle: "Tests"},
		{dir: "tests/signin/x", wantLayout: NoFrillsLayout, wantSubtitle: "Tests"},
		{dir: "tests/tabs-module/x", wantLayout: "tests/tabs-module/layout", wantSubtitle: "Tests"},
		{dir: "tests/tabs-header/x", wantLayout: "tests/tabs-header/layout", wantSubtitle: "Tests"},
		{dir: "tests/tabs-vertical/x", wantLayout: "tests/tabs-vertical/layout", wantSubtitle: "Tests"},
		{dir: "tests/components/base-tag/x", wantLayout: "tests/layout", wantSubtitle: "Tests", wantBaseHref: true},
		{dir: "tests/patterns/x", wantLayout: NoFrillsLayout, wantSubtitle: "Tests"},
		{dir: "tests/masthead/x", noFrills: true, wantLayout: NoFrillsLayout, wantSubtitle: "Tests"},
		{dir: "tests/distribution/amd", noFrills: true, wantLayout: NoFrillsLayout, wantSubtitle: "AMD Tests", wantAMD: true},
	}

	r := NewResolver(nil, nil)
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			o := r.Tests(Defaults().Apply(WithNoFrills(tt.noFrills)), tt.dir)

			assert.Equal(t, tt.wantLayout, o.Layout)
			assert.Equal(t, tt.wantSubtitle, o.Subtitle)
			assert.Equal(t, tt.wantAMD, o.AMD)
			assert.Equal(t, tt.wantBaseHref, o.UseBaseHref)
		})
	}
}
