package compositeform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type binding struct {
	event, namespace string
	handler          func()
}

type events struct {
	bindings []binding
}

func (e *events) On(event, namespace string, handler func()) {
	e.bindings = append(e.bindings, binding{event, namespace, handler})
}

func (e *events) Off(namespace string, evs ...string) {
	kept := e.bindings[:0:0]
	for _, b := range e.bindings {
		if b.namespace == namespace && (len(evs) == 0 || contains(evs, b.event)) {
			continue
		}
		kept = append(kept, b)
	}
	e.bindings = kept
}

func (e *events) fire(event string) {
	snapshot := append([]binding(nil), e.bindings...)
	for _, b := range snapshot {
		if b.event == event {
			b.handler()
		}
	}
}

func (e *events) count() int { return len(e.bindings) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type fakeArea struct {
	events
	expanded bool
	text     string
	opens    int
}

func (a *fakeArea) IsExpanded() bool { return a.expanded }
func (a *fakeArea) Open() { a.expanded = true; a.opens++ }
func (a *fakeArea) SetTriggerText(t string) { a.text = t }
func (a *fakeArea) toggle() { a.expanded = !a.expanded; a.fireState() }
func (a *fakeArea) fireState() {
	if a.expanded {
		a.fire(EventExpand)
	} else {
		a.fire(EventCollapse)
	}
}

type fakeHost struct {
	area    *fakeArea
	created int
	trigger string
}

func (h *fakeHost) Area() (ExpandableArea, bool) {
	if h.area == nil {
		return nil, false
	}
	return h.area, true
}

func (h *fakeHost) NewArea(trigger string) ExpandableArea {
	h.created++
	h.trigger = trigger
	h.area = &fakeArea{}
	return h.area
}

type fakeElement struct {
	events
	classes map[string]bool
	host    *fakeHost
	data    map[string]bool
}

func newElement(classes ...string) *fakeElement {
	el := &fakeElement{classes: map[string]bool{}, data: map[string]bool{ComponentName: true}}
	for _, c := range classes {
		el.classes[c] = true
	}
	return el
}

func (e *fakeElement) HasClass(n string) bool { return e.classes[n] }
func (e *fakeElement) AddClass(n string) { e.classes[n] = true }
func (e *fakeElement) RemoveClass(n string) { delete(e.classes, n) }
func (e *fakeElement) RemoveData(k string) { delete(e.data, k) }

func (e *fakeElement) FindExpandableArea() (AreaHost, bool) {
	if e.host == nil {
		return nil, false
	}
	return e.host, true
}

type fakeViewport struct {
	events
	below bool
}

func (v *fakeViewport) IsBelow(string) bool { return v.below }

var translations = TranslatorFunc(func(key string) string {
	return map[string]string{"ShowLess": "Show Less", "ShowMore": "Show More"}[key]
})

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings(translations)
	assert.Equal(t, "phone-to-tablet", s.Breakpoint)
	assert.Equal(t, "Show Less", s.ExpandedText)
	assert.Equal(t, "Show More", s.CollapsedText)
	assert.Empty(t, s.Trigger)
}

func TestAttachBuildsWidget(t *testing.T) {
	el := newElement()
	el.host = &fakeHost{}
	vp := &fakeViewport{}

	f, err := New(el, vp, Settings{Trigger: ".expander"}, translations)
	require.NoError(t, err)

	assert.True(t, el.HasClass(ClassComponent))
	assert.True(t, f.HasSummary())
	assert.Equal(t, 1, el.host.created)
	assert.Equal(t, ".expander", el.host.trigger)
	assert.Equal(t, "Show Less", el.host.area.text)
	assert.Equal(t, StateInline, f.State())
	assert.True(t, f.Attached())
}

func TestExistingAreaIsReused(t *testing.T) {
	el := newElement(ClassComponent)
	el.host = &fakeHost{area: &fakeArea{expanded: true}}

	_, err := New(el, &fakeViewport{}, Settings{}, translations)
	require.NoError(t, err)
	assert.Equal(t, 0, el.host.created)
}

func TestResponsiveSwitching(t *testing.T) {
	el := newElement(ClassOnSide)
	el.host = &fakeHost{}
	vp := &fakeViewport{below: true}

	f, err := New(el, vp, Settings{}, translations)
	require.NoError(t, err)
	assert.Equal(t, StateResponsive, f.State())
	assert.Equal(t, 0, el.host.area.opens)

	vp.below = false
	vp.fire(EventResize)
	assert.Equal(t, StateInline, f.State())
	assert.True(t, el.host.area.expanded, "side-oriented form opens its summary when inline")
	assert.Equal(t, 1, el.host.area.opens)

	vp.fire(EventResize)
	assert.Equal(t, 1, el.host.area.opens, "already expanded area is left alone")

	vp.below = true
	vp.fire(EventResize)
	assert.True(t, el.HasClass(ClassResponsive))
}

func TestInlineFormNotOnSideStaysCollapsed(t *testing.T) {
	el := newElement()
	el.host = &fakeHost{}

	_, err := New(el, &fakeViewport{}, Settings{}, translations)
	require.NoError(t, err)
	assert.False(t, el.host.area.expanded)
}

func TestSideOrientedWithoutSummary(t *testing.T) {
	el := newElement(ClassOnSide)

	f, err := New(el, &fakeViewport{}, Settings{}, translations)
	require.NoError(t, err)
	assert.False(t, f.HasSummary())
	assert.True(t, f.IsSideOriented())
}

func TestExpanderTextFollowsArea(t *testing.T) {
	el := newElement()
	el.host = &fakeHost{}

	_, err := New(el, &fakeViewport{}, Settings{ExpandedText: "Less", CollapsedText: "More"}, translations)
	require.NoError(t, err)
	area := el.host.area

	area.toggle()
	assert.Equal(t, "Less", area.text)
	area.toggle()
	assert.Equal(t, "More", area.text)
}

func TestSetExpanderTextGuards(t *testing.T) {
	el := newElement()
	el.host = &fakeHost{}
	f, err := New(el, &fakeViewport{}, Settings{}, translations)
	require.NoError(t, err)

	f.SetExpanderText("")
	assert.Equal(t, "Show Less", el.host.area.text)

	noSummary, err := New(newElement(), &fakeViewport{}, Settings{}, translations)
	require.NoError(t, err)
	noSummary.SetExpanderText("ignored")
}

func TestDetachIsSafeToRepeat(t *testing.T) {
	el := newElement()
	el.host = &fakeHost{}
	vp := &fakeViewport{}

	f, err := New(el, vp, Settings{}, translations)
	require.NoError(t, err)
	require.Equal(t, 1, vp.count())
	require.Equal(t, 1, el.count())
	require.Equal(t, 2, el.host.area.count())

	f.Detach()
	f.Detach()

	assert.Zero(t, vp.count())
	assert.Zero(t, el.count())
	assert.Zero(t, el.host.area.count())
	assert.False(t, f.Attached())
}

func TestRefreshIsIdempotent(t *testing.T) {
	el := newElement()
	el.host = &fakeHost{}
	vp := &fakeViewport{}

	f, err := New(el, vp, Settings{}, translations)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, f.Refresh())
		assert.Equal(t, 1, vp.count(), "resize bindings after refresh %d", i)
		assert.Equal(t, 1, el.count(), "updated bindings after refresh %d", i)
		assert.Equal(t, 2, el.host.area.count(), "area bindings after refresh %d", i)
	}
	assert.Equal(t, 1, el.host.created)
	assert.True(t, f.Attached())
}

func TestUpdatedEventRefreshes(t *testing.T) {
	el := newElement()
	vp := &fakeViewport{}

	f, err := New(el, vp, Settings{}, translations)
	require.NoError(t, err)
	assert.False(t, f.HasSummary())

	el.host = &fakeHost{}
	el.fire(EventUpdated)

	assert.True(t, f.HasSummary())
	assert.Equal(t, 1, el.count())
	assert.Equal(t, 1, vp.count())
}

func TestInstancesDoNotShareBindings(t *testing.T) {
	vp := &fakeViewport{}

	a, err := New(newElement(), vp, Settings{}, translations)
	require.NoError(t, err)
	b, err := New(newElement(), vp, Settings{}, translations)
	require.NoError(t, err)
	require.NotEqual(t, a.Namespace(), b.Namespace())

	a.Detach()
	assert.Equal(t, 1, vp.count(), "b keeps its resize handler")
}

func TestDestroy(t *testing.T) {
	el := newElement()
	f, err := New(el, &fakeViewport{}, Settings{}, translations)
	require.NoError(t, err)

	f.Destroy()
	assert.NotContains(t, el.data, ComponentName)
	assert.ErrorIs(t, f.Attach(), ErrDestroyed)
	f.Destroy()
}

func TestNewRequiresPorts(t *testing.T) {
	_, err := New(nil, &fakeViewport{}, Settings{}, nil)
	assert.Error(t, err)
}
