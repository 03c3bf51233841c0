//go:build property

package watcher

import (
	"sort"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestDebouncerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(9876)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("a batch holds each changed path once, sorted", prop.ForAll(
		func(paths []string) bool {
			d := NewDebouncer(time.Hour)
			defer d.Stop()

			for _, p := range paths {
				d.Add(ChangeEvent{Path: p})
			}
			d.flush()

			want := map[string]bool{}
			for _, p := range paths {
				want[p] = true
			}

			select {
			case events := <-d.Output():
				if len(events) != len(want) {
					return false
				}
				got := make([]string, len(events))
				for i, e := range events {
					if !want[e.Path] {
						return false
					}
					got[i] = e.Path
				}
				return sort.StringsAreSorted(got)
			default:
				return len(paths) == 0
			}
		},
		gen.SliceOf(gen.OneConstOf("index.html", "a.md", "b/c.html", "d.yaml", "e.html")),
	))

	properties.Property("the latest event for a path wins", prop.ForAll(
		func(types []int) bool {
			if len(types) == 0 {
				return true
			}
			d := NewDebouncer(time.Hour)
			defer d.Stop()

			for _, ty := range types {
				d.Add(ChangeEvent{Path: "page.html", Type: EventType(ty)})
			}
			d.flush()

			events := <-d.Output()
			return len(events) == 1 && events[0].Type == EventType(types[len(types)-1])
		},
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}
