package drag

// Point is a surface coordinate pair in page space.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// TouchPhase is the lifecycle stage of a touch event.
type TouchPhase int

const (
	TouchStart TouchPhase = iota + 1
	TouchMove
	TouchEnd
	TouchCancel
)

// TouchEvent is a discrete touch-surface event.
// Target names the placement the touch started on; it is only read for TouchStart.
type TouchEvent struct {
	Phase   TouchPhase
	Target  string
	Touches []Point
}

// Touch adapts touch-point sequences to a Session.
// The first active touch point drives the drag; additional fingers are ignored.
type Touch struct {
	session Session
	owned   bool
}

// NewTouch creates a touch adapter for session.
func NewTouch(session Session) *Touch {
	return &Touch{session: session}
}

// Handle routes one touch event.
//
// A start that arrives while this adapter still owns a session means the
// terminal event was lost; the old session is ended before the new one begins.
func (t *Touch) Handle(ev TouchEvent) {
	switch ev.Phase {
	case TouchStart:
		if len(ev.Touches) == 0 {
			return
		}
		if t.owned {
			t.session.End()
		}
		p := ev.Touches[0]
		t.owned = t.session.Begin(ev.Target, p.X, p.Y)
	case TouchMove:
		if !t.owned || len(ev.Touches) == 0 {
			return
		}
		p := ev.Touches[0]
		t.session.Update(p.X, p.Y)
	case TouchEnd, TouchCancel:
		if !t.owned {
			return
		}
		t.owned = false
		t.session.End()
	}
}

// Reset forgets ownership without touching the session.
// Used when the surface has already ended the session itself.
func (t *Touch) Reset() {
	t.owned = false
}

// Owned reports whether the touch adapter currently owns a session.
func (t *Touch) Owned() bool {
	return t.owned
}

// PointerPhase is the lifecycle stage of a pointer event.
type PointerPhase int

const (
	PointerDown PointerPhase = iota + 1
	PointerMove
	PointerUp
	PointerCancel
)

// PrimaryButton is the main (usually left) mouse button.
const PrimaryButton = 0

// PointerEvent is a continuous pointer-device event.
// Target is only read for PointerDown.
type PointerEvent struct {
	Phase  PointerPhase
	Target string
	Button int
	X, Y   float64
}

// Pointer adapts pointer-device streams to a Session.
//
// Pointer devices report motion whether or not a button is held. Moves are
// forwarded only between a primary-button down that started a session and
// the matching up, which mirrors document-level move listeners that are
// installed on mousedown and removed on mouseup.
type Pointer struct {
	session  Session
	captured bool
}

// NewPointer creates a pointer adapter for session.
func NewPointer(session Session) *Pointer {
	return &Pointer{session: session}
}

// Handle routes one pointer event.
func (p *Pointer) Handle(ev PointerEvent) {
	switch ev.Phase {
	case PointerDown:
		if ev.Button != PrimaryButton {
			return
		}
		if p.captured {
			p.session.End()
		}
		p.captured = p.session.Begin(ev.Target, ev.X, ev.Y)
	case PointerMove:
		if !p.captured {
			return
		}
		p.session.Update(ev.X, ev.Y)
	case PointerUp, PointerCancel:
		if !p.captured {
			return
		}
		p.captured = false
		p.session.End()
	}
}

// Reset releases the capture without touching the session.
func (p *Pointer) Reset() {
	p.captured = false
}

// Captured reports whether the pointer currently owns a session.
func (p *Pointer) Captured() bool {
	return p.captured
}
