package dom

import "strings"

// Declaration is a single `property: value` pair.
type Declaration struct {
	Property string
	Value    string
}

// StyleList is an ordered declaration block.
type StyleList []Declaration

// String renders the block as inline CSS.
func (l StyleList) String() string {
	parts := make([]string, 0, len(l))
	for _, d := range l {
		parts = append(parts, d.Property+": "+d.Value)
	}
	return strings.Join(parts, "; ")
}

// StateName enumerates the pseudo-class and pseudo-element selectors a
// styling block can target.
type StateName uint8

const (
	StateActive StateName = iota
	StateAfter
	StateBefore
	StateChecked
	StateDisabled
	StateEmpty
	StateEnabled
	StateFirstChild
	StateFirstLetter
	StateFirstLine
	StateFocus
	StateHover
	StateLastChild
	StateOnlyChild
	StateLink
	StateVisited
	StateSpellingError
	StateGrammarError
	StateSelection
	StatePlaceholder
	StateMarker
	StateCue
	StateBackdrop
)

var stateSelectors = [...]string{
	StateActive:        ":active",
	StateAfter:         "::after",
	StateBefore:        "::before",
	StateChecked:       ":checked",
	StateDisabled:      ":disabled",
	StateEmpty:         ":empty",
	StateEnabled:       ":enabled",
	StateFirstChild:    ":first-child",
	StateFirstLetter:   "::first-letter",
	StateFirstLine:     "::first-line",
	StateFocus:         ":focus",
	StateHover:         ":hover",
	StateLastChild:     ":last-child",
	StateOnlyChild:     ":only-child",
	StateLink:          ":link",
	StateVisited:       ":visited",
	StateSpellingError: "::spelling-error",
	StateGrammarError:  "::grammar-error",
	StateSelection:     "::selection",
	StatePlaceholder:   "::placeholder",
	StateMarker:        "::marker",
	StateCue:           "::cue",
	StateBackdrop:      "::backdrop",
}

// Selector returns the CSS selector suffix, e.g. ":hover" or "::before".
func (s StateName) Selector() string {
	if int(s) < len(stateSelectors) {
		return stateSelectors[s]
	}
	return ""
}

// StateSelector is a declaration block that applies in a given state.
type StateSelector struct {
	Name StateName
	Body StyleList
}

// AnimationInterval is one keyframe stop, e.g. "50%".
type AnimationInterval struct {
	Value string
	Style StyleList
}

// Animation is an ordered keyframe list.
type Animation []AnimationInterval

// MediaCondition is a conditional block: Body applies when Condition holds.
type MediaCondition struct {
	Condition StyleList
	Body      StyleList
}

// Styling is the structured style payload an element may carry. The tree
// model stores and copies it but never interprets it.
type Styling struct {
	Default    StyleList
	State      []StateSelector
	Animations []Animation
	Media      []MediaCondition
}

// IsEmpty reports whether the styling carries nothing.
func (s *Styling) IsEmpty() bool {
	return s == nil ||
		(len(s.Default) == 0 && len(s.State) == 0 && len(s.Animations) == 0 && len(s.Media) == 0)
}

// Extend appends every block of other.
func (s *Styling) Extend(other *Styling) {
	if s == nil || other == nil {
		return
	}
	s.Default = append(s.Default, other.Default...)
	s.State = append(s.State, other.State...)
	s.Animations = append(s.Animations, other.Animations...)
	s.Media = append(s.Media, other.Media...)
}

// AddDeclaration appends to the default block.
func (s *Styling) AddDeclaration(property, value string) {
	s.Default = append(s.Default, Declaration{Property: property, Value: value})
}

// AddState appends a pseudo-state block.
func (s *Styling) AddState(name StateName, body StyleList) {
	s.State = append(s.State, StateSelector{Name: name, Body: body})
}

// AddAnimation appends a keyframe animation.
func (s *Styling) AddAnimation(intervals ...AnimationInterval) {
	s.Animations = append(s.Animations, Animation(intervals))
}

// AddMedia appends a conditional block.
func (s *Styling) AddMedia(condition, body StyleList) {
	s.Media = append(s.Media, MediaCondition{Condition: condition, Body: body})
}

// Clone deep-copies the styling.
func (s *Styling) Clone() *Styling {
	if s == nil {
		return nil
	}
	cp := &Styling{
		Default: append(StyleList(nil), s.Default...),
		Media:   append([]MediaCondition(nil), s.Media...),
	}
	for _, st := range s.State {
		cp.State = append(cp.State, StateSelector{Name: st.Name, Body: append(StyleList(nil), st.Body...)})
	}
	for _, a := range s.Animations {
		cp.Animations = append(cp.Animations, append(Animation(nil), a...))
	}
	return cp
}
