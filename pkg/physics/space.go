// Package physics mirrors registered bodies into a Chipmunk space so the AI can
// ask what a shot would cross before it is fired.
package physics

import (
	"sort"

	"github.com/jakecoffman/cp"
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/body"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/geometry"
)

type tracked struct {
	body  *cp.Body
	shape *cp.Shape
}

// Space owns the Chipmunk space and one kinematic circle per mirrored body.
// Chipmunk never integrates anything here: positions are copied in by Sync.
type Space struct {
	space *cp.Space

	bodies        map[*body.Body]*tracked
	shapeToEntity map[*cp.Shape]*body.Body
	logger        golog.Logger
}

func NewSpace(logger golog.Logger) *Space {
	if logger == nil {
		logger = golog.DiscardLogger
	}
	return &Space{
		space:         cp.NewSpace(),
		bodies:        make(map[*body.Body]*tracked),
		shapeToEntity: make(map[*cp.Shape]*body.Body),
		logger:        logger,
	}
}

// Len returns the number of mirrored bodies.
func (s *Space) Len() int {
	return len(s.bodies)
}

// Track starts mirroring b.
func (s *Space) Track(b *body.Body) {
	if b == nil {
		return
	}
	if _, ok := s.bodies[b]; ok {
		return
	}
	radius := b.Radius
	if radius <= 0 {
		radius = body.DefaultCollisionRadius
	}
	cpBody := cp.NewKinematicBody()
	cpBody.SetPosition(toCP(b.Position))
	cpBody.SetVelocityVector(toCP(b.Velocity))
	shape := cp.NewCircle(cpBody, radius, cp.Vector{})

	s.space.AddBody(cpBody)
	s.space.AddShape(shape)
	s.bodies[b] = &tracked{body: cpBody, shape: shape}
	s.shapeToEntity[shape] = b
}

// Untrack stops mirroring b. Unknown bodies are ignored.
func (s *Space) Untrack(b *body.Body) {
	t, ok := s.bodies[b]
	if !ok {
		return
	}
	s.space.RemoveShape(t.shape)
	s.space.RemoveBody(t.body)
	delete(s.shapeToEntity, t.shape)
	delete(s.bodies, b)
}

// Sync makes the space match the registry: new bodies are added, bodies that left
// the registry or died are dropped, and every position is refreshed.
func (s *Space) Sync(r *body.Registry) {
	seen := make(map[*body.Body]struct{}, r.Len())
	r.Each(func(b *body.Body) bool {
		if b.Alive() {
			seen[b] = struct{}{}
		}
		return true
	})

	for b := range s.bodies {
		if _, ok := seen[b]; !ok {
			s.Untrack(b)
		}
	}
	for b := range seen {
		s.Track(b)
		t := s.bodies[b]
		t.body.SetPosition(toCP(b.Position))
		t.body.SetVelocityVector(toCP(b.Velocity))
		// the index only refreshes on Step, which never runs here
		s.space.RemoveShape(t.shape)
		s.space.AddShape(t.shape)
	}
}

// Raycast returns every mirrored body the segment from origin along direction
// crosses within maxDistance, nearest first.
func (s *Space) Raycast(origin, direction geometry.Vector2D, maxDistance float64) []body.Hit {
	dir := direction.Normalize()
	if dir.IsZero() || maxDistance <= 0 {
		return nil
	}
	end := origin.Add(dir.Mul(maxDistance))

	var hits []body.Hit
	s.space.SegmentQuery(toCP(origin), toCP(end), 0, cp.SHAPE_FILTER_ALL,
		func(shape *cp.Shape, point, normal cp.Vector, alpha float64, data interface{}) {
			b, ok := s.shapeToEntity[shape]
			if !ok {
				return
			}
			hits = append(hits, body.Hit{
				Body:     b,
				Point:    fromCP(point),
				Distance: alpha * maxDistance,
			})
		}, nil)

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if len(hits) > 0 {
		s.logger.Debugf("raycast from %s: %d hit(s), nearest %s at %.2f",
			origin, len(hits), hits[0].Body.Kind, hits[0].Distance)
	}
	return hits
}

func toCP(v geometry.Vector2D) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

func fromCP(v cp.Vector) geometry.Vector2D {
	return geometry.Vector2D{X: v.X, Y: v.Y}
}
