package ai

import (
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/body"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/geometry"
)

// Transform is anything with a position, used when no body can be found.
type Transform interface {
	Pos() geometry.Vector2D
}

// Target is what an agent chases: a Precise body it can lead and shoot at, or a
// Simple position it can only head for. No target is a nil Target.
type Target interface {
	Position() geometry.Vector2D
	Velocity() geometry.Vector2D
	Alive() bool
	isTarget()
}

// Precise targets a body. Position and velocity are always read from the body.
type Precise struct {
	Body *body.Body
}

func (p Precise) Position() geometry.Vector2D { return p.Body.Position }
func (p Precise) Velocity() geometry.Vector2D { return p.Body.Velocity }
func (p Precise) Alive() bool                 { return p.Body.Alive() }
func (Precise) isTarget()                     {}

// Simple targets a transform that has no velocity to predict from.
type Simple struct {
	Transform Transform
}

func (s Simple) Position() geometry.Vector2D { return s.Transform.Pos() }
func (Simple) Velocity() geometry.Vector2D   { return geometry.Zero }
func (s Simple) Alive() bool                 { return s.Transform != nil }
func (Simple) isTarget()                     {}

// TargetLocator finds whoever the enemies are after.
// Body lookups return nil when nothing matches; transform lookups return a nil
// interface.
type TargetLocator interface {
	PlayerBody() *body.Body
	PlayerLikeBody() *body.Body
	CameraBody() *body.Body
	PlayerTransform() Transform
	PlayerLikeTransform() Transform
	CameraTransform() Transform
}

// FindTarget walks the fallback chain: the tagged player, anything that looks like
// a player, the camera, then the bare transform of whichever of those exists.
func FindTarget(loc TargetLocator) Target {
	if loc == nil {
		return nil
	}
	for _, b := range []*body.Body{loc.PlayerBody(), loc.PlayerLikeBody(), loc.CameraBody()} {
		if b.Alive() {
			return Precise{Body: b}
		}
	}
	for _, t := range []Transform{loc.PlayerTransform(), loc.PlayerLikeTransform(), loc.CameraTransform()} {
		if t != nil {
			return Simple{Transform: t}
		}
	}
	return nil
}
