package simulation

import (
	"math"

	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/ai"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/body"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/geometry"
)

// healthyRatio is the health fraction above which the autopilot presses forward.
const healthyRatio = 0.75

// Pilot flies the player ship, either from PlayerInput or on autopilot.
type Pilot struct {
	player *body.Body
	health *Health
	cfg    PlayerConfig
	world  *World

	lastShotTime float64
}

func NewPilot(world *World, player *body.Body, health *Health) *Pilot {
	return &Pilot{
		player:       player,
		health:       health,
		cfg:          world.cfg.Player,
		world:        world,
		lastShotTime: math.Inf(-1),
	}
}

// Auto flies one tick on autopilot: dodge the likeliest collision, turn toward
// the flock leader most nearly ahead, fire when something is in line.
func (p *Pilot) Auto(dt float64) {
	if !p.player.Alive() {
		return
	}

	// 1. Movement: dodge, pressing on while healthy and backing off when hurt
	var motion geometry.Vector2D
	if threat, ok := p.world.registry.FindLikeliestCollision(p.player, p.cfg.DodgeThreshold); ok {
		motion = threat.Direction
	}
	if p.health.Percentage() > healthyRatio {
		motion = motion.Add(p.player.Heading())
	} else {
		motion = motion.Sub(p.player.Heading())
	}
	p.player.Accelerate(motion.Normalize().Mul(p.cfg.MaxAcceleration), p.cfg.MaxSpeed, dt)

	// 2. Aim at the leader closest to the nose
	if dir, ok := p.bestDirection(); ok {
		diff := geometry.WrapDegrees(dir.HeadingDegrees() - p.player.Orientation)
		step := math.Min(math.Abs(diff), p.cfg.RotationRate*dt)
		p.player.Orientation = geometry.WrapDegrees(p.player.Orientation + math.Copysign(step, diff))
	}

	// 3. Fire when something other than a missile is in line
	if p.hasTargetInLine() {
		p.fire()
	}
}

// PlayerInput is what a human pilot asks for on one tick. Thrust and Turn are
// in [-1, 1]; positive Turn is clockwise.
type PlayerInput struct {
	Thrust float64
	Turn   float64
	Fire   bool
}

// Fly applies manual controls for one tick.
func (p *Pilot) Fly(in PlayerInput, dt float64) {
	if !p.player.Alive() {
		return
	}
	turn := math.Max(-1, math.Min(1, in.Turn))
	p.player.Orientation = geometry.WrapDegrees(p.player.Orientation + turn*p.cfg.RotationRate*dt)
	thrust := math.Max(-1, math.Min(1, in.Thrust))
	p.player.Accelerate(p.player.Heading().Mul(thrust*p.cfg.MaxAcceleration), p.cfg.MaxSpeed, dt)
	if in.Fire {
		p.fire()
	}
}

func (p *Pilot) fire() {
	now := p.world.Now()
	if now-p.lastShotTime < p.cfg.ReloadTime {
		return
	}
	p.lastShotTime = now
	p.world.armory.Launch(ai.Shot{
		Origin:      p.player.Position,
		Orientation: p.player.Orientation,
		Range:       p.cfg.AttackRange,
		Speed:       p.cfg.MissileSpeed,
		Owner:       p.player,
		Damage:      p.cfg.DamagePerShot,
	})
}

func (p *Pilot) bestDirection() (geometry.Vector2D, bool) {
	heading := p.player.Heading()
	var best geometry.Vector2D
	bestDot := math.Inf(-1)
	found := false
	for _, f := range p.world.wave.Flocks() {
		leader := f.Leader()
		if leader == nil {
			continue
		}
		delta := leader.Body().Position.Sub(p.player.Position)
		distance := delta.Len()
		if distance <= 0 || (found && distance > p.cfg.AttackRange) {
			continue
		}
		direction := delta.Div(distance)
		if dot := direction.Dot(heading); dot > bestDot {
			best, bestDot, found = direction, dot, true
		}
	}
	return best, found
}

func (p *Pilot) hasTargetInLine() bool {
	hits := p.world.space.Raycast(p.player.Position, p.player.Heading(), p.cfg.AttackRange)
	for _, hit := range hits {
		if hit.Body == p.player || hit.Body.Kind == body.KindProjectile {
			continue
		}
		return true
	}
	return false
}
