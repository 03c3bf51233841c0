// Package compositeform implements the responsive composite form widget.
//
// A composite form shows its summary area inline on wide viewports and
// switches to a collapsible layout below a breakpoint. The widget talks to
// the page only through the ports declared here (Element, Viewport,
// ExpandableArea), so its state machine runs and is tested without a
// browser.
package compositeform

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ComponentName is the data key and event namespace prefix of the widget.
const ComponentName = "compositeform"

// Class names the widget reads and writes.
const (
	ClassComponent  = "composite-form"
	ClassResponsive = "is-in-responsive-mode"
	ClassOnSide     = "on-side"
)

// Events the widget listens to.
const (
	EventResize   = "resize"
	EventUpdated  = "updated"
	EventExpand   = "expand"
	EventCollapse = "collapse"
)

// ErrDestroyed is returned when attaching a destroyed widget.
var ErrDestroyed = errors.New("compositeform: widget destroyed")

// EventTarget binds handlers under a namespace so they can be removed
// together.
type EventTarget interface {
	On(event, namespace string, handler func())
	// Off removes the handlers bound under namespace. With no events given
	// every handler of the namespace goes.
	Off(namespace string, events ...string)
}

// Element is the widget's root element.
type Element interface {
	EventTarget
	HasClass(name string) bool
	AddClass(name string)
	RemoveClass(name string)
	// FindExpandableArea looks up the child .expandable-area element.
	FindExpandableArea() (AreaHost, bool)
	RemoveData(key string)
}

// AreaHost is the element an expandable area widget lives on.
type AreaHost interface {
	// Area returns the expandable area already attached to the element.
	Area() (ExpandableArea, bool)
	// NewArea attaches a new expandable area.
	NewArea(trigger string) ExpandableArea
}

// ExpandableArea is the collapsible summary region.
type ExpandableArea interface {
	EventTarget
	IsExpanded() bool
	Open()
	// SetTriggerText replaces the text of the expander, or of its inner
	// span when it has one.
	SetTriggerText(text string)
}

// Viewport reports breakpoints and delivers resize events.
type Viewport interface {
	EventTarget
	IsBelow(breakpoint string) bool
}

// Translator resolves a message key in the page locale.
type Translator interface {
	Translate(key string) string
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(key string) string

func (f TranslatorFunc) Translate(key string) string { return f(key) }

// Settings configures a widget.
type Settings struct {
	Breakpoint    string
	Trigger       string
	ExpandedText  string
	CollapsedText string
}

// DefaultSettings returns the defaults with texts taken from tr.
func DefaultSettings(tr Translator) Settings {
	s := Settings{Breakpoint: "phone-to-tablet"}
	if tr != nil {
		s.ExpandedText = tr.Translate("ShowLess")
		s.CollapsedText = tr.Translate("ShowMore")
	}
	return s
}

// State is the layout mode the widget is in.
type State int

const (
	StateInline State = iota
	StateResponsive
)

func (s State) String() string {
	if s == StateResponsive {
		return "in-responsive-mode"
	}
	return "inline"
}

var instances atomic.Uint64

// CompositeForm is one widget instance.
type CompositeForm struct {
	settings  Settings
	element   Element
	viewport  Viewport
	namespace string

	area       ExpandableArea
	hasSummary bool

	attached  bool
	destroyed bool
}

// New creates the widget and attaches it. Empty settings fields fall back to
// the defaults from DefaultSettings(tr).
func New(element Element, viewport Viewport, settings Settings, tr Translator) (*CompositeForm, error) {
	if element == nil || viewport == nil {
		return nil, errors.New("compositeform: element and viewport are required")
	}

	defaults := DefaultSettings(tr)
	if settings.Breakpoint == "" {
		settings.Breakpoint = defaults.Breakpoint
	}
	if settings.ExpandedText == "" {
		settings.ExpandedText = defaults.ExpandedText
	}
	if settings.CollapsedText == "" {
		settings.CollapsedText = defaults.CollapsedText
	}

	f := &CompositeForm{
		settings:  settings,
		element:   element,
		viewport:  viewport,
		namespace: fmt.Sprintf("%s.%d", ComponentName, instances.Add(1)),
	}
	if err := f.Attach(); err != nil {
		return nil, err
	}
	return f, nil
}

// Settings returns the effective settings.
func (f *CompositeForm) Settings() Settings { return f.settings }

// Namespace is the event namespace owned by this instance.
func (f *CompositeForm) Namespace() string { return f.namespace }

// Attached reports whether the widget's handlers are bound.
func (f *CompositeForm) Attached() bool { return f.attached }

// HasSummary reports whether an expandable summary area was found.
func (f *CompositeForm) HasSummary() bool { return f.hasSummary }

// State reports the current layout mode.
func (f *CompositeForm) State() State {
	if f.element.HasClass(ClassResponsive) {
		return StateResponsive
	}
	return StateInline
}

// Attach builds the widget and binds its handlers. Attaching an attached
// widget does nothing.
func (f *CompositeForm) Attach() error {
	if f.destroyed {
		return ErrDestroyed
	}
	if f.attached {
		return nil
	}

	f.build()
	f.bind()
	f.attached = true

	return nil
}

// Detach removes every handler bound by this instance. It is safe to call
// any number of times.
func (f *CompositeForm) Detach() {
	f.viewport.Off(f.namespace, EventResize)
	f.element.Off(f.namespace, EventUpdated)
	if f.hasSummary && f.area != nil {
		f.area.Off(f.namespace, EventExpand, EventCollapse)
	}
	f.attached = false
}

// Refresh rebuilds the widget: Detach followed by Attach.
func (f *CompositeForm) Refresh() error {
	f.Detach()
	return f.Attach()
}

// Destroy detaches the widget and removes it from its element.
func (f *CompositeForm) Destroy() {
	f.Detach()
	f.element.RemoveData(ComponentName)
	f.destroyed = true
}

// CheckResponsive switches into responsive mode below the breakpoint. Above
// it, a side-oriented form opens a collapsed summary area.
func (f *CompositeForm) CheckResponsive() {
	if f.viewport.IsBelow(f.settings.Breakpoint) {
		f.element.AddClass(ClassResponsive)
		return
	}

	f.element.RemoveClass(ClassResponsive)
	if f.IsSideOriented() && f.hasSummary && !f.area.IsExpanded() {
		f.area.Open()
	}
}

// SetExpanderText sets the expander label. It does nothing without a
// summary area or with empty text.
func (f *CompositeForm) SetExpanderText(text string) {
	if !f.hasSummary || text == "" {
		return
	}
	f.area.SetTriggerText(text)
}

// IsSideOriented reports whether the summary is placed beside the form.
func (f *CompositeForm) IsSideOriented() bool {
	return f.element.HasClass(ClassOnSide)
}

func (f *CompositeForm) build() {
	if !f.element.HasClass(ClassComponent) {
		f.element.AddClass(ClassComponent)
	}

	f.area, f.hasSummary = nil, false
	if host, ok := f.element.FindExpandableArea(); ok {
		area, ok := host.Area()
		if !ok {
			area = host.NewArea(f.settings.Trigger)
		}
		f.area, f.hasSummary = area, true
		f.SetExpanderText(f.settings.ExpandedText)
	}

	f.CheckResponsive()
}

func (f *CompositeForm) bind() {
	f.viewport.On(EventResize, f.namespace, f.CheckResponsive)
	f.element.On(EventUpdated, f.namespace, func() {
		_ = f.Refresh()
	})

	if f.hasSummary {
		f.area.On(EventExpand, f.namespace, f.syncExpanderText)
		f.area.On(EventCollapse, f.namespace, f.syncExpanderText)
	}
}

func (f *CompositeForm) syncExpanderText() {
	if f.area.IsExpanded() {
		f.SetExpanderText(f.settings.ExpandedText)
		return
	}
	f.SetExpanderText(f.settings.CollapsedText)
}
