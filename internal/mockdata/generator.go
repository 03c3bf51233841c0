// Package mockdata supplies the junk data some demo pages are rendered with.
//
// Pages that show data-bound controls (dropdowns, lookups) receive generated
// values as extra template data. Which pages get what is decided by matching
// the request path against a small table of route rules.
package mockdata

import (
	"fmt"
	"math/rand"
	"regexp"
	"sync"
	"time"
)

// Option is one entry of a generated dropdown list.
type Option struct {
	Value    string `json:"value" yaml:"value"`
	Label    string `json:"label" yaml:"label"`
	Selected bool   `json:"selected,omitempty" yaml:"selected,omitempty"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// MockGenerator produces demo data. It is safe for concurrent use.
type MockGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockGenerator creates a generator seeded from the clock.
func NewMockGenerator() *MockGenerator {
	return NewSeededGenerator(time.Now().UnixNano())
}

// NewSeededGenerator creates a generator with a fixed seed.
func NewSeededGenerator(seed int64) *MockGenerator {
	return &MockGenerator{rng: rand.New(rand.NewSource(seed))} // #nosec G404 -- demo data only
}

var states = []struct{ code, name string }{
	{"AL", "Alabama"}, {"AK", "Alaska"}, {"AZ", "Arizona"}, {"AR", "Arkansas"},
	{"CA", "California"}, {"CO", "Colorado"}, {"CT", "Connecticut"}, {"DE", "Delaware"},
	{"FL", "Florida"}, {"GA", "Georgia"}, {"HI", "Hawaii"}, {"ID", "Idaho"},
	{"IL", "Illinois"}, {"IN", "Indiana"}, {"IA", "Iowa"}, {"KS", "Kansas"},
	{"KY", "Kentucky"}, {"LA", "Louisiana"}, {"ME", "Maine"}, {"MD", "Maryland"},
	{"MA", "Massachusetts"}, {"MI", "Michigan"}, {"MN", "Minnesota"}, {"MS", "Mississippi"},
	{"MO", "Missouri"}, {"MT", "Montana"}, {"NE", "Nebraska"}, {"NV", "Nevada"},
	{"NH", "New Hampshire"}, {"NJ", "New Jersey"}, {"NM", "New Mexico"}, {"NY", "New York"},
	{"NC", "North Carolina"}, {"ND", "North Dakota"}, {"OH", "Ohio"}, {"OK", "Oklahoma"},
	{"OR", "Oregon"}, {"PA", "Pennsylvania"}, {"RI", "Rhode Island"}, {"SC", "South Carolina"},
	{"SD", "South Dakota"}, {"TN", "Tennessee"}, {"TX", "Texas"}, {"UT", "Utah"},
	{"VT", "Vermont"}, {"VA", "Virginia"}, {"WA", "Washington"}, {"WV", "West Virginia"},
	{"WI", "Wisconsin"}, {"WY", "Wyoming"},
}

// DropdownOptions returns the full state list with one random entry
// selected and one other disabled.
func (g *MockGenerator) DropdownOptions() []Option {
	g.mu.Lock()
	selected := g.rng.Intn(len(states))
	disabled := (selected + 1 + g.rng.Intn(len(states)-1)) % len(states)
	g.mu.Unlock()

	out := make([]Option, len(states))
	for i, s := range states {
		out[i] = Option{
			Value:    s.code,
			Label:    s.name,
			Selected: i == selected,
			Disabled: i == disabled,
		}
	}
	return out
}

// Names returns n generated full names.
func (g *MockGenerator) Names(n int) []string {
	firstNames := []string{"John", "Jane", "Alex", "Taylor", "Jordan", "Casey", "Morgan", "Riley"}
	lastNames := []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis"}

	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s %s",
			firstNames[g.rng.Intn(len(firstNames))],
			lastNames[g.rng.Intn(len(lastNames))])
	}
	return out
}

// RouteRule attaches generated data under Key to every request whose path
// matches Pattern.
type RouteRule struct {
	Pattern *regexp.Regexp
	Key     string
	Data    func(*MockGenerator) any
}

// DefaultRules lists the pages that need generated data.
var DefaultRules = []RouteRule{
	{
		Pattern: regexp.MustCompile(`dropdown`),
		Key:     "dropdownListData",
		Data:    func(g *MockGenerator) any { return g.DropdownOptions() },
	},
	{
		Pattern: regexp.MustCompile(`lookup`),
		Key:     "lookupNames",
		Data:    func(g *MockGenerator) any { return g.Names(10) },
	},
}

// Provider resolves the extra template data for a request path.
type Provider struct {
	gen   *MockGenerator
	rules []RouteRule
}

// NewProvider returns a Provider over rules, or DefaultRules when rules is nil.
func NewProvider(gen *MockGenerator, rules []RouteRule) *Provider {
	if gen == nil {
		gen = NewMockGenerator()
	}
	if rules == nil {
		rules = DefaultRules
	}
	return &Provider{gen: gen, rules: rules}
}

// For returns the data every matching rule contributes for urlPath.
func (p *Provider) For(urlPath string) map[string]any {
	var out map[string]any
	for _, rule := range p.rules {
		if !rule.Pattern.MatchString(urlPath) {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[rule.Key] = rule.Data(p.gen)
	}
	return out
}
