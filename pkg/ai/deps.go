package ai

import (
	"math/rand/v2"

	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/body"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/steering"
)

// LineOfSight casts rays for the attack check. Hits come nearest first.
type LineOfSight interface {
	Raycast(origin, direction geometry.Vector2D, maxDistance float64) []body.Hit
}

// Shot is a projectile launch request.
type Shot struct {
	Origin      geometry.Vector2D
	Orientation float64
	Range       float64
	Speed       float64
	Owner       *body.Body
	Damage      float64
	// Enemy is true for shots fired by the AI side.
	Enemy bool
}

// Weapon spawns projectiles.
type Weapon interface {
	Launch(Shot)
}

// Clock returns the simulation time in seconds.
type Clock interface {
	Now() float64
}

// Group is the formation an agent flies in.
type Group interface {
	// Kinematics lists every member body, the caller included, for peer steering.
	Kinematics() []steering.Kinematic
	RemoveMember(a *Agent)
}

// Deps are the collaborators an Agent works with. Any of them may be left nil:
// no locator means no target, no line of sight means nothing blocks a shot, no
// weapon means no shot, no clock means the agent keeps its own time.
type Deps struct {
	Targets TargetLocator
	Sight   LineOfSight
	Weapon  Weapon
	Clock   Clock
	Rand    *rand.Rand
	Logger  golog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Rand == nil {
		d.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if d.Logger == nil {
		d.Logger = golog.DiscardLogger
	}
	return d
}
