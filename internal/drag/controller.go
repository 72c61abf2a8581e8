package drag

import (
	"log/slog"
	"math"

	"github.com/Arterning/style-mirror/internal/model"
)

// Session is the input-device-agnostic drag capability.
type Session interface {
	// Begin starts a session for the placement key anchored at (x, y).
	// Returns false if the session was not started.
	Begin(key string, x, y float64) bool

	// Update moves the active placement so the anchor follows (x, y).
	// Returns false if no session is active.
	Update(x, y float64) bool

	// End terminates the active session, if any.
	End()
}

// Target is the set of placements a Controller can move.
type Target interface {
	// Position returns the current position of a placement.
	Position(key string) (model.Position, bool)

	// SetPosition replaces the position of a placement.
	SetPosition(key string, pos model.Position) bool
}

// Controller implements Session over a Target.
type Controller struct {
	target Target
	logger *slog.Logger

	active string
	anchor model.Position // origin - position at Begin
	moves  int
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for rejected input.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// NewController creates an idle controller for target.
func NewController(target Target, opts ...Option) *Controller {
	c := &Controller{
		target: target,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Begin implements Session.
//
// Rejected (returns false, state unchanged) when key is unknown to the
// target, another key already has an active session, or a coordinate is
// NaN or infinite.
func (c *Controller) Begin(key string, x, y float64) bool {
	if !finite(x, y) {
		c.logger.Debug("drag begin rejected: non-finite point", "key", key)
		return false
	}
	if c.active != "" && c.active != key {
		c.logger.Debug("drag begin rejected: session active",
			"key", key,
			"active", c.active,
		)
		return false
	}

	pos, ok := c.target.Position(key)
	if !ok {
		c.logger.Debug("drag begin rejected: unknown placement", "key", key)
		return false
	}

	c.active = key
	c.anchor = model.Position{X: x - pos.X, Y: y - pos.Y}
	c.moves = 0
	return true
}

// Update implements Session.
// Non-finite coordinates are ignored and leave the session as it was.
func (c *Controller) Update(x, y float64) bool {
	if c.active == "" {
		return false
	}
	if !finite(x, y) {
		c.logger.Debug("drag update ignored: non-finite point", "key", c.active)
		return false
	}
	next := model.Position{X: x - c.anchor.X, Y: y - c.anchor.Y}
	if !c.target.SetPosition(c.active, next) {
		// Placement vanished under us; nothing sensible left to drag.
		c.logger.Warn("drag target lost, ending session", "key", c.active)
		c.reset()
		return false
	}
	c.moves++
	return true
}

// End implements Session.
func (c *Controller) End() {
	if c.active == "" {
		return
	}
	c.logger.Debug("drag ended", "key", c.active, "moves", c.moves)
	c.reset()
}

// Active returns the key being dragged, if any.
// While a session is active that placement is drawn above all others.
func (c *Controller) Active() (string, bool) {
	return c.active, c.active != ""
}

// Anchor returns the anchor offset of the active session.
func (c *Controller) Anchor() (model.Position, bool) {
	return c.anchor, c.active != ""
}

// Reset ends any active session without logging. Used on teardown.
func (c *Controller) Reset() {
	c.reset()
}

func (c *Controller) reset() {
	c.active = ""
	c.anchor = model.Position{}
	c.moves = 0
}

func finite(x, y float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && !math.IsNaN(y) && !math.IsInf(y, 0)
}
