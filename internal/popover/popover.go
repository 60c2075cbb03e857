// Package popover models the concept picker: whether it is open, and the
// live count of selected concepts shown next to it.
package popover

import (
	"fmt"

	"github.com/seo-joon/benkyou/internal/filter"
)

type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

type EventKind int

const (
	EventToggle EventKind = iota
	EventClose
	EventPointer
	EventKey
)

// Target says where a pointer event landed.
type Target int

const (
	TargetOutside Target = iota
	TargetInside
	TargetToggle
)

type Event struct {
	Kind   EventKind
	Target Target // EventPointer only
	Key    string // EventKey only
}

type transition func(State, Event) State

var transitions = map[EventKind]transition{
	EventToggle: func(s State, _ Event) State {
		if s == Open {
			return Closed
		}
		return Open
	},
	EventClose: func(State, Event) State { return Closed },
	EventPointer: func(s State, ev Event) State {
		if s == Open && ev.Target == TargetOutside {
			return Closed
		}
		return s
	},
	EventKey: func(s State, ev Event) State {
		if s == Open && ev.Key == "esc" {
			return Closed
		}
		return s
	},
}

// Next is the pure transition function. Unknown event kinds leave s as is.
func Next(s State, ev Event) State {
	if t, ok := transitions[ev.Kind]; ok {
		return t(s, ev)
	}
	return s
}

// Popover couples the open/closed machine with the selection it edits. All
// selection changes made through it refresh the count label before
// returning.
type Popover struct {
	state State
	sel   *filter.State
	label string
}

func New(sel *filter.State) *Popover {
	p := &Popover{state: Closed, sel: sel}
	p.Refresh()
	return p
}

// Dispatch applies ev and returns the new state.
func (p *Popover) Dispatch(ev Event) State {
	p.state = Next(p.state, ev)
	return p.state
}

func (p *Popover) State() State { return p.state }

func (p *Popover) IsOpen() bool { return p.state == Open }

// Expanded is the value of the toggle control's expanded attribute.
func (p *Popover) Expanded() bool { return p.state == Open }

func (p *Popover) ToggleConcept(concept string) bool {
	checked := p.sel.Toggle(concept)
	p.Refresh()
	return checked
}

func (p *Popover) SelectAll() {
	p.sel.SelectAll()
	p.Refresh()
}

func (p *Popover) SelectNone() {
	p.sel.SelectNone()
	p.Refresh()
}

// Refresh recomputes the label; call it after changing the selection
// outside the popover (catalog reloads, restored preferences).
func (p *Popover) Refresh() {
	p.label = CountLabel(p.sel.Count())
}

// Label is the live "N selected" text.
func (p *Popover) Label() string { return p.label }

func CountLabel(n int) string {
	return fmt.Sprintf("%d selected", n)
}
