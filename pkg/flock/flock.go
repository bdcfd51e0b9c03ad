// Package flock keeps enemy ships together in formations.
//
// A Flock is an ordered list of agents. The first one leads and seeks the target;
// the others fly in formation around the group. When the leader goes, the next
// ship in line takes over; when the last one goes, the flock tells its owner.
package flock

import (
	"container/list"
	"iter"
	"math/rand/v2"

	"github.com/google/uuid"
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/ai"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/body"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/steering"
)

const (
	// DefaultMaxPlacementAttempts bounds the jitter retries of AvoidSpawnOnOthers.
	DefaultMaxPlacementAttempts = 256
	// SpawnClearance is how far a new ship must be from every registered body.
	SpawnClearance = 1.0
	// BountyPerShip is the score for each ship the flock started with.
	BountyPerShip = 5
)

// Owner hears about the end of a flock, typically the wave that spawned it.
type Owner interface {
	OnFlockDestroyed(f *Flock)
}

// Factory builds and activates one ship at position. The ship's body must be in
// the registry when Factory returns so later placements avoid it.
type Factory func(position geometry.Vector2D, orientation float64, leader bool) *ai.Agent

type Flock struct {
	id       string
	registry *body.Registry
	owner    Owner

	members *list.List
	index   map[*ai.Agent]*list.Element

	size        int
	destroyed   bool
	maxAttempts int
	rng         *rand.Rand
	logger      golog.Logger
}

var _ ai.Group = (*Flock)(nil)

type Option func(*Flock)

func WithMaxPlacementAttempts(n int) Option {
	return func(f *Flock) {
		if n >= 0 {
			f.maxAttempts = n
		}
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(f *Flock) {
		if rng != nil {
			f.rng = rng
		}
	}
}

func WithLogger(logger golog.Logger) Option {
	return func(f *Flock) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New returns an empty flock placing its ships among the bodies of registry.
// owner may be nil.
func New(registry *body.Registry, owner Owner, opts ...Option) *Flock {
	f := &Flock{
		id:          uuid.NewString(),
		registry:    registry,
		owner:       owner,
		members:     list.New(),
		index:       make(map[*ai.Agent]*list.Element),
		maxAttempts: DefaultMaxPlacementAttempts,
		logger:      golog.DiscardLogger,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.rng == nil {
		f.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return f
}

func (f *Flock) ID() string      { return f.id }
func (f *Flock) Len() int        { return f.members.Len() }
func (f *Flock) Destroyed() bool { return f.destroyed }

// Bounty is the score for wiping the flock out.
func (f *Flock) Bounty() int {
	return f.size * BountyPerShip
}

// Leader returns the first member, or nil for an empty flock.
func (f *Flock) Leader() *ai.Agent {
	if front := f.members.Front(); front != nil {
		return front.Value.(*ai.Agent)
	}
	return nil
}

// AddMember appends a to the formation. It does not assign a role.
func (f *Flock) AddMember(a *ai.Agent) {
	if a == nil || f.destroyed {
		return
	}
	if _, ok := f.index[a]; ok {
		return
	}
	f.index[a] = f.members.PushBack(a)
	f.size++
}

// RemoveMember drops a. If a was leading, the next ship in line is promoted; if
// nobody is left the flock is destroyed and its owner told, once.
func (f *Flock) RemoveMember(a *ai.Agent) {
	el, ok := f.index[a]
	if !ok || f.destroyed {
		return
	}
	wasLeader := el == f.members.Front()
	f.members.Remove(el)
	delete(f.index, a)

	if f.members.Len() == 0 {
		f.destroyed = true
		f.logger.Debugf("flock %s destroyed, bounty %d", f.id, f.Bounty())
		if f.owner != nil {
			f.owner.OnFlockDestroyed(f)
		}
		return
	}
	if wasLeader {
		next := f.Leader()
		next.SetAsLeader(f)
		f.logger.Debugf("flock %s: ship %s takes the lead", f.id, next.ID())
	}
}

// Members returns the agents in formation order.
func (f *Flock) Members() []*ai.Agent {
	out := make([]*ai.Agent, 0, f.members.Len())
	for a := range f.AsEnumerable() {
		out = append(out, a)
	}
	return out
}

// AsEnumerable iterates the members in formation order.
func (f *Flock) AsEnumerable() iter.Seq[*ai.Agent] {
	return func(yield func(*ai.Agent) bool) {
		for el := f.members.Front(); el != nil; el = el.Next() {
			if !yield(el.Value.(*ai.Agent)) {
				return
			}
		}
	}
}

// Kinematics lists the member bodies for peer steering.
func (f *Flock) Kinematics() []steering.Kinematic {
	out := make([]steering.Kinematic, 0, f.members.Len())
	for a := range f.AsEnumerable() {
		out = append(out, a.Body())
	}
	return out
}

// ============================================================================
// Spawning
// ============================================================================

// Spawn builds count ships: the leader at origin, each follower a short random
// hop from the previous one, all nudged clear of the bodies already registered.
func (f *Flock) Spawn(origin geometry.Vector2D, orientation float64, count int, build Factory) []*ai.Agent {
	spawned := make([]*ai.Agent, 0, count)
	position := f.AvoidSpawnOnOthers(origin)
	for i := 0; i < count; i++ {
		if i > 0 {
			position = f.AvoidSpawnOnOthers(position.Add(f.jitter()))
		}
		leader := i == 0
		a := build(position, orientation, leader)
		if a == nil {
			continue
		}
		f.AddMember(a)
		if leader {
			a.SetAsLeader(f)
		} else {
			a.SetAsFlock(f)
		}
		spawned = append(spawned, a)
	}
	f.logger.Debugf("flock %s spawned %d ship(s) at %s", f.id, len(spawned), origin)
	return spawned
}

// AvoidSpawnOnOthers moves position by random hops until it is more than
// SpawnClearance away from every registered body. Past the attempt bound the last
// candidate is returned as is.
func (f *Flock) AvoidSpawnOnOthers(position geometry.Vector2D) geometry.Vector2D {
	for attempt := 0; ; attempt++ {
		if f.isClear(position) {
			return position
		}
		if attempt >= f.maxAttempts {
			f.logger.Warnf("flock %s: no clear spot after %d attempts, spawning at %s", f.id, attempt, position)
			return position
		}
		position = position.Add(f.jitter())
	}
}

func (f *Flock) isClear(position geometry.Vector2D) bool {
	if f.registry == nil {
		return true
	}
	free := true
	f.registry.Each(func(b *body.Body) bool {
		free = b.Position.DistanceTo(position) > SpawnClearance
		return free
	})
	return free
}

// jitter is a 2D binomial step in (-2, 2) on each axis.
func (f *Flock) jitter() geometry.Vector2D {
	return geometry.Vector2D{
		X: 2 * (f.rng.Float64() - f.rng.Float64()),
		Y: 2 * (f.rng.Float64() - f.rng.Float64()),
	}
}
