package simulation

import (
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/ai"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/body"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/geometry"
)

// ProjectileRadius is the collision radius of a missile.
const ProjectileRadius = 0.15

// Projectile is a missile in flight.
type Projectile struct {
	Body      *body.Body
	Owner     *body.Body
	Damage    float64
	Enemy     bool
	ExpiresAt float64
}

// Armory turns launch requests into projectile bodies. Launches are held back
// until Flush so nothing enters the registry while agents are reading it.
type Armory struct {
	registry *body.Registry
	clock    ai.Clock
	logger   golog.Logger

	pending     []*Projectile
	projectiles []*Projectile
}

var _ ai.Weapon = (*Armory)(nil)

func NewArmory(registry *body.Registry, clock ai.Clock, logger golog.Logger) *Armory {
	if logger == nil {
		logger = golog.DiscardLogger
	}
	return &Armory{registry: registry, clock: clock, logger: logger}
}

// Launch queues a missile flying along the shot orientation. It lives for
// range/speed seconds.
func (a *Armory) Launch(s ai.Shot) {
	if s.Speed <= 0 || s.Range <= 0 {
		return
	}
	b := body.New(body.KindProjectile, s.Origin, s.Orientation)
	b.Velocity = geometry.FromHeading(s.Orientation).Mul(s.Speed)
	b.Radius = ProjectileRadius
	b.Mass = 0.1
	a.pending = append(a.pending, &Projectile{
		Body:      b,
		Owner:     s.Owner,
		Damage:    s.Damage,
		Enemy:     s.Enemy,
		ExpiresAt: a.clock.Now() + s.Range/s.Speed,
	})
}

// Flush puts the queued missiles into flight.
func (a *Armory) Flush() {
	for _, p := range a.pending {
		a.registry.Insert(p.Body)
		a.projectiles = append(a.projectiles, p)
	}
	a.pending = a.pending[:0]
}

// Projectiles returns the missiles in flight.
func (a *Armory) Projectiles() []*Projectile {
	out := make([]*Projectile, len(a.projectiles))
	copy(out, a.projectiles)
	return out
}

// Age removes the missiles that expired or were killed. Survivors keep their
// launch order.
func (a *Armory) Age(now float64) (expired int) {
	kept := a.projectiles[:0]
	for _, p := range a.projectiles {
		if p.Body.Alive() && now < p.ExpiresAt {
			kept = append(kept, p)
			continue
		}
		p.Body.Kill()
		a.registry.Remove(p.Body)
		expired++
	}
	clear(a.projectiles[len(kept):])
	a.projectiles = kept
	return expired
}
