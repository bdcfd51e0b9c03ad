// Package body holds the moving things of the arena and the registry that lets
// them look for each other.
package body

import (
	"github.com/google/uuid"

	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/geometry"
)

// Kind tells ships, the player and projectiles apart.
type Kind int

const (
	KindShip Kind = iota
	KindPlayer
	KindProjectile
	KindCamera
)

func (k Kind) String() string {
	switch k {
	case KindShip:
		return "ship"
	case KindPlayer:
		return "player"
	case KindProjectile:
		return "projectile"
	case KindCamera:
		return "camera"
	default:
		return "unknown"
	}
}

// Body is a point mass on the plane.
// Orientation is in degrees, 0 = up, positive = clockwise.
type Body struct {
	ID          string
	Kind        Kind
	Position    geometry.Vector2D
	Velocity    geometry.Vector2D
	Orientation float64
	Mass        float64
	Radius      float64

	dead bool
}

// New returns a live body of unit mass with a fresh id.
func New(kind Kind, position geometry.Vector2D, orientation float64) *Body {
	return &Body{
		ID:          uuid.NewString(),
		Kind:        kind,
		Position:    position,
		Orientation: orientation,
		Mass:        1,
		Radius:      0.5,
	}
}

func (b *Body) Pos() geometry.Vector2D { return b.Position }
func (b *Body) Vel() geometry.Vector2D { return b.Velocity }
func (b *Body) Orient() float64        { return b.Orientation }

// BodyMass returns the mass, treating an unset mass as 1.
func (b *Body) BodyMass() float64 {
	if b.Mass <= 0 {
		return 1
	}
	return b.Mass
}

// Speed is the length of the velocity.
func (b *Body) Speed() float64 {
	return b.Velocity.Len()
}

// Alive reports whether the body has not been killed. A nil body is not alive.
func (b *Body) Alive() bool {
	return b != nil && !b.dead
}

// Kill marks the body dead. It stays where it is until its owner removes it.
func (b *Body) Kill() {
	b.dead = true
}

// Accelerate applies accel for dt seconds and clamps the speed to maxSpeed.
func (b *Body) Accelerate(accel geometry.Vector2D, maxSpeed, dt float64) {
	b.Velocity = b.Velocity.Add(accel.Mul(dt)).ClampLen(maxSpeed)
}

// Integrate moves the body along its velocity for dt seconds.
func (b *Body) Integrate(dt float64) {
	b.Position = b.Position.Add(b.Velocity.Mul(dt))
}

// Heading is the unit vector the body's nose points at.
func (b *Body) Heading() geometry.Vector2D {
	return geometry.FromHeading(b.Orientation)
}

// DistanceTo gives the cartesian distance from this Body and the other
func (b *Body) DistanceTo(other *Body) float64 {
	return b.Position.DistanceTo(other.Position)
}

// Hit is one body crossed by a ray, Distance along the ray from its origin.
type Hit struct {
	Body     *Body
	Point    geometry.Vector2D
	Distance float64
}
