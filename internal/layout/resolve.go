package layout

import (
	"context"
	"regexp"
	"strings"

	"github.com/conneroisu/demoapp/internal/logging"
	"github.com/conneroisu/demoapp/internal/pathutil"
)

// Section is a top-level area of the site with its own default layout.
type Section struct {
	Name     string
	Layout   string
	Subtitle string
	// KeepLayout leaves the inherited layout alone.
	KeepLayout bool
}

var (
	Components       = Section{Name: "components", Layout: "layout", Subtitle: "Style"}
	Tests            = Section{Name: "tests", Layout: "tests/layout", Subtitle: "Tests"}
	Layouts          = Section{Name: "layouts", Layout: "layouts/layout", Subtitle: "Layouts"}
	Patterns         = Section{Name: "patterns", Layout: "patterns/layout", Subtitle: "Patterns"}
	Examples         = Section{Name: "examples", Layout: "examples/layout", Subtitle: "Examples"}
	Angular          = Section{Name: "angular", Layout: "angular/layout", Subtitle: "Angular"}
	PerformanceTests = Section{Name: "performance-tests", Subtitle: "Performance Tests", KeepLayout: true}
)

// Defaults returns the transform seeding a request with the section defaults.
func (s Section) Defaults() Transform {
	return func(o Options) Options {
		if !s.KeepLayout {
			o.Layout = s.Layout
		}
		o.Subtitle = s.Subtitle
		return o
	}
}

// Target is the page a layout rule is evaluated against.
type Target struct {
	// Component and Example are the route parameters of a component page.
	Component string
	Example   string
	// Dir is the tests path, e.g. "tests/tabs-module/example-index".
	Dir string
}

// Rule is one entry of an ordered override table.
type Rule struct {
	Name  string
	Match func(Target) bool
	Apply Transform
}

func dirMatches(pattern string) func(Target) bool {
	re := regexp.MustCompile(pattern)
	return func(t Target) bool { return re.MatchString(t.Dir) }
}

func useBaseHref(o Options) Options {
	o.UseBaseHref = true
	return o
}

// ComponentRules are evaluated in order after the folder layout check.
var ComponentRules = []Rule{
	{
		Name:  "base-tag",
		Match: func(t Target) bool { return t.Component == "base-tag" },
		Apply: func(o Options) Options {
			o = useBaseHref(o)
			o.Layout = "tests/layout"
			return o
		},
	},
	{
		Name: "applicationmenu",
		Match: func(t Target) bool {
			return t.Component == "applicationmenu" &&
				(strings.Contains(t.Example, "example-") || strings.Contains(t.Example, "test-"))
		},
		Apply: WithLayout(""),
	},
	{
		Name: "header-gauntlet",
		Match: func(t Target) bool {
			return t.Component == "header" && strings.Contains(t.Example, "test-header-gauntlet")
		},
		Apply: WithLayout("components/header/layout-header-gauntlet"),
	},
}

// TestRules are evaluated in order against the tests path.
var TestRules = []Rule{
	{Name: "base-tag", Match: dirMatches(`components/base-tag`), Apply: useBaseHref},
	{Name: "composite-form", Match: dirMatches(`tests/composite-form`), Apply: WithLayout("tests/composite-form/_layout")},
	{Name: "call-to-action-header", Match: dirMatches(`tests/call-to-action-header`), Apply: WithLayout("tests/call-to-action-header/layout")},
	{
		Name:  "distribution",
		Match: dirMatches(`tests/distribution`),
		Apply: func(o Options) Options {
			o.AMD = true
			o.Layout = ""
			o.Subtitle = "AMD Tests"
			return o
		},
	},
	{Name: "datagrid-fixed-header", Match: dirMatches(`tests/datagrid-fixed-header`), Apply: WithLayout("tests/layout-noscroll")},
	{Name: "masthead", Match: dirMatches(`tests/masthead`), Apply: WithLayout("tests/masthead/layout")},
	{Name: "container-is-body", Match: dirMatches(`tests/place/scrolling/container-is-body`), Apply: WithLayout("tests/place/scrolling/layout-body")},
	{Name: "container-is-nested", Match: dirMatches(`tests/place/scrolling/container-is-nested`), Apply: WithLayout("tests/place/scrolling/layout-nested")},
	{Name: "signin", Match: dirMatches(`tests/signin`), Apply: WithLayout(NoFrillsLayout)},
	{Name: "tabs-module", Match: dirMatches(`tests/tabs-module`), Apply: WithLayout("tests/tabs-module/layout")},
	{Name: "tabs-header", Match: dirMatches(`tests/tabs-header`), Apply: WithLayout("tests/tabs-header/layout")},
	{Name: "tabs-vertical", Match: dirMatches(`tests/tabs-vertical`), Apply: WithLayout("tests/tabs-vertical/layout")},
}

var testsPatterns = regexp.MustCompile(`tests/patterns`)

// FileChecker is the part of the content repository the resolver probes.
type FileChecker interface {
	FileExists(ctx context.Context, p string) bool
}

// Resolver computes the options for component and test pages.
type Resolver struct {
	views  FileChecker
	logger logging.Logger
}

// NewResolver returns a Resolver that probes views for per-folder layouts.
// A nil logger discards output.
func NewResolver(views FileChecker, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{views: views, logger: logger.WithComponent("layout")}
}

// Component resolves the options for /components/{component}/{example}.
// Later stages win: section default, folder layout file, the ComponentRules
// table, partial pages, then the no-frills override.
func (r *Resolver) Component(ctx context.Context, base Options, component, example string) Options {
	target := Target{Component: component, Example: pathutil.StripExtension(example)}

	o := base.Apply(
		Components.Defaults(),
		WithSubtitle(pathutil.Subtitle(component)),
		r.folderLayout(ctx, component),
	)
	o = applyRules(o, ComponentRules, target)

	if strings.HasPrefix(target.Example, "partial") {
		o.Layout = ""
	}
	if o.NoFrills {
		o.Layout = NoFrillsLayout
	}

	return o
}

// Tests resolves the options for a tests path such as "tests/tabs/example".
func (r *Resolver) Tests(base Options, dir string) Options {
	o := applyRules(base.Apply(Tests.Defaults()), TestRules, Target{Dir: dir})

	if o.NoFrills || testsPatterns.MatchString(dir) {
		o.Layout = NoFrillsLayout
	}

	return o
}

// folderLayout picks up a layout file placed inside the component folder.
// When both exist, layout.html wins over _layout.html.
func (r *Resolver) folderLayout(ctx context.Context, component string) Transform {
	return func(o Options) Options {
		if r.views == nil {
			return o
		}
		for _, name := range []string{"_layout.html", "layout.html"} {
			p := "components/" + component + "/" + name
			if r.views.FileExists(ctx, p) {
				o.Layout = pathutil.StripExtension(p)
				r.logger.Info(ctx, "layout for this folder changed", "layout", o.Layout)
			}
		}
		return o
	}
}

func applyRules(o Options, rules []Rule, t Target) Options {
	for _, rule := range rules {
		if rule.Match(t) {
			o = rule.Apply(o)
		}
	}
	return o
}
