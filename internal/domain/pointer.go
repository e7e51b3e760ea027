package domain

import "fmt"

// Handle identifies one of the eight resize hotspots around a selected
// instance.
type Handle string

const (
	HandleNW Handle = "nw"
	HandleN  Handle = "n"
	HandleNE Handle = "ne"
	HandleE  Handle = "e"
	HandleSE Handle = "se"
	HandleS  Handle = "s"
	HandleSW Handle = "sw"
	HandleW  Handle = "w"
)

// Handles lists every resize handle in clockwise order starting top-left.
var Handles = []Handle{HandleNW, HandleN, HandleNE, HandleE, HandleSE, HandleS, HandleSW, HandleW}

// ParseHandle validates s as a handle name.
func ParseHandle(s string) (Handle, error) {
	for _, h := range Handles {
		if string(h) == s {
			return h, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownHandle, s)
}

// PointerEvent is a raw pointer event in canvas coordinates.
type PointerEvent struct {
	Position Position
	// DefaultPrevented is set by a listener that consumed the event, the
	// way a drag suppresses text selection in a browser.
	DefaultPrevented bool
}

// PreventDefault marks the event as consumed.
func (e *PointerEvent) PreventDefault() {
	e.DefaultPrevented = true
}
