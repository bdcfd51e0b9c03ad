package body

import (
	"fmt"
	"math"

	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/geometry"
)

// DefaultCollisionRadius is the radius every registered body is assumed to have
// when predicting collisions.
const DefaultCollisionRadius = 0.5

// Threat is the most pressing predicted collision for a body.
type Threat struct {
	Body            *Body
	MinSeparation   float64
	TimeToCollision float64
	// Direction is a unit vector pointing from the threat toward the querying body.
	Direction geometry.Vector2D
}

// Registry is the set of bodies that take part in collision avoidance.
// Bodies keep the order they were inserted in; scans follow it.
type Registry struct {
	bodies []*Body
	index  map[*Body]int
	radius float64
	// scanning counts the scans in progress; mutating while it is non-zero is a bug.
	scanning int
}

// Option configures a Registry.
type Option func(*Registry)

// WithCollisionRadius overrides DefaultCollisionRadius.
func WithCollisionRadius(r float64) Option {
	return func(reg *Registry) {
		if r > 0 {
			reg.radius = r
		}
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		index:  make(map[*Body]int),
		radius: DefaultCollisionRadius,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CollisionRadius returns the radius used by FindLikeliestCollision.
func (r *Registry) CollisionRadius() float64 {
	return r.radius
}

// Insert adds b. Inserting a body twice keeps a single entry.
func (r *Registry) Insert(b *Body) {
	r.mustNotScan("Insert")
	if b == nil {
		return
	}
	if _, ok := r.index[b]; ok {
		return
	}
	r.index[b] = len(r.bodies)
	r.bodies = append(r.bodies, b)
}

// Remove deletes b, keeping the order of the others. Unknown bodies are ignored.
func (r *Registry) Remove(b *Body) {
	r.mustNotScan("Remove")
	i, ok := r.index[b]
	if !ok {
		return
	}
	delete(r.index, b)
	copy(r.bodies[i:], r.bodies[i+1:])
	r.bodies[len(r.bodies)-1] = nil
	r.bodies = r.bodies[:len(r.bodies)-1]
	for j := i; j < len(r.bodies); j++ {
		r.index[r.bodies[j]] = j
	}
}

func (r *Registry) Contains(b *Body) bool {
	_, ok := r.index[b]
	return ok
}

func (r *Registry) Len() int {
	return len(r.bodies)
}

// Bodies returns a copy of the registered bodies in insertion order.
func (r *Registry) Bodies() []*Body {
	out := make([]*Body, len(r.bodies))
	copy(out, r.bodies)
	return out
}

// Each calls fn for every body in insertion order until fn returns false.
// fn must not Insert or Remove.
func (r *Registry) Each(fn func(*Body) bool) {
	r.scanning++
	defer func() { r.scanning-- }()
	for _, b := range r.bodies {
		if !fn(b) {
			return
		}
	}
}

func (r *Registry) mustNotScan(op string) {
	if r.scanning > 0 {
		panic(fmt.Sprintf("body: Registry.%s called while the registry is being scanned", op))
	}
}

// FindLikeliestCollision returns the registered body that self will hit first,
// among the live ones within threshold, assuming everyone keeps a constant velocity.
//
// Bodies that will miss by more than two radii or that are moving apart are
// ignored, unless they already overlap self. On equal times the body inserted
// first wins.
func (r *Registry) FindLikeliestCollision(self *Body, threshold float64) (*Threat, bool) {
	if self == nil {
		return nil, false
	}
	var (
		best     *Threat
		diameter = 2 * r.radius
		fallback = spreadDirection(r.index[self])
	)
	r.Each(func(other *Body) bool {
		if other == self || !other.Alive() {
			return true
		}
		relPos := other.Position.Sub(self.Position)
		distance := relPos.Len()
		if distance > threshold {
			return true
		}
		relVel := other.Velocity.Sub(self.Velocity)
		relSpeedSq := relVel.LenSqr()
		overlapping := distance < diameter

		var t, separation float64
		switch {
		case overlapping:
			t, separation = 0, distance
		case relSpeedSq < geometry.Epsilon:
			return true
		default:
			// closest approach of other relative to self, moving at relVel
			t = -relPos.Dot(relVel) / relSpeedSq
			separation = distance - math.Sqrt(relSpeedSq)*t
			if separation > diameter || t <= 0 {
				return true
			}
		}
		if best != nil && !(t < best.TimeToCollision) {
			return true
		}
		best = &Threat{
			Body:            other,
			MinSeparation:   separation,
			TimeToCollision: t,
			Direction:       avoidance(relPos, relVel, t, overlapping || separation <= 0, fallback),
		}
		return true
	})
	return best, best != nil
}

// avoidance points away from the threat: from its current relative position when
// already close, from its predicted one otherwise.
func avoidance(relPos, relVel geometry.Vector2D, t float64, now bool, fallback geometry.Vector2D) geometry.Vector2D {
	away := relPos.Neg()
	if !now {
		away = relPos.Add(relVel.Mul(t)).Neg()
	}
	if dir := away.Normalize(); !dir.IsZero() {
		return dir
	}
	if dir := relVel.Normalize(); !dir.IsZero() {
		// coincident: step out of the way the threat is coming from
		return dir.Neg()
	}
	return fallback
}

// goldenAngle spreads the fallback directions of stacked bodies around the circle.
const goldenAngle = 137.50776405003785

// spreadDirection is the way out for a body sitting still on top of another.
// The first body inserted goes down; every later one turns a golden angle further,
// so a stack fans out instead of moving as one.
func spreadDirection(i int) geometry.Vector2D {
	return geometry.FromHeading(180 + float64(i)*goldenAngle)
}
