// Package ai drives enemy ships: each Agent picks a behaviour every tick, turns it
// into steering, and decides when to shoot.
package ai

import (
	"fmt"
	"math"

	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/body"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/steering"
)

// Agent is one AI controlled ship.
type Agent struct {
	body  *body.Body
	mover *body.Mover
	cfg   Tuning
	deps  Deps

	mode     Mode
	target   Target
	isLeader bool
	group    Group

	// targetDelta is the aim vector; it includes the lead when a shot is lined up.
	targetDelta    geometry.Vector2D
	targetDistance float64

	lastShotTime float64
	wanderState  float64
	elapsed      float64
	destroyed    bool
}

// New builds an agent in Seek mode and looks for a target straight away.
// mover may be nil for a ship that does not avoid collisions.
func New(b *body.Body, mover *body.Mover, cfg Tuning, deps Deps) *Agent {
	a := &Agent{
		body:           b,
		mover:          mover,
		cfg:            cfg,
		deps:           deps.withDefaults(),
		mode:           Seek,
		targetDistance: math.Inf(1),
		lastShotTime:   math.Inf(-1),
	}
	a.target = FindTarget(a.deps.Targets)
	return a
}

func (a *Agent) ID() string       { return a.body.ID }
func (a *Agent) Body() *body.Body { return a.body }
func (a *Agent) Mode() Mode       { return a.mode }
func (a *Agent) Target() Target   { return a.target }
func (a *Agent) IsLeader() bool   { return a.isLeader }
func (a *Agent) Group() Group     { return a.group }
func (a *Agent) Tuning() Tuning   { return a.cfg }
func (a *Agent) Alive() bool      { return !a.destroyed && a.body.Alive() }

// TargetDistance is the distance measured on the last tick, +Inf without a target.
func (a *Agent) TargetDistance() float64 {
	return a.targetDistance
}

// ============================================================================
// Events
// ============================================================================

// OnHit breaks formation to regroup, if there is someone to run from.
func (a *Agent) OnHit() {
	if a.target != nil {
		a.setMode(Flee)
	}
}

// OnHealthRestored sends a follower back into formation.
func (a *Agent) OnHealthRestored() {
	if !a.isLeader {
		a.setMode(Flock)
	}
}

// SetAsLeader makes the agent lead g.
func (a *Agent) SetAsLeader(g Group) {
	a.group = g
	a.isLeader = true
	a.setMode(Seek)
}

// SetAsFlock makes the agent follow in g.
func (a *Agent) SetAsFlock(g Group) {
	a.group = g
	a.isLeader = false
	a.setMode(Flock)
}

// Destroy kills the ship, takes it out of the registry and tells its group.
// Calling it again does nothing. It must not run while the registry is scanned.
func (a *Agent) Destroy() {
	if a.destroyed {
		return
	}
	a.destroyed = true
	a.body.Kill()
	if a.mover != nil {
		a.mover.Deactivate()
	}
	if g := a.group; g != nil {
		a.group = nil
		g.RemoveMember(a)
	}
	a.deps.Logger.Debugf("ship %s destroyed", a.body.ID)
}

func (a *Agent) setMode(m Mode) {
	if a.mode == m {
		return
	}
	a.deps.Logger.Debugf("ship %s: %s -> %s", a.body.ID, a.mode, m)
	a.mode = m
}

// ============================================================================
// Tick
// ============================================================================

// Update runs one tick of dt seconds: target check, attack, then the mode's
// steering. The resulting velocity is left on the body; moving it is the caller's job.
func (a *Agent) Update(dt float64) {
	if !a.Alive() {
		return
	}
	a.elapsed += dt

	a.resolveTarget()
	a.maybeAttack(dt)

	switch a.mode {
	case Wander:
		a.wander(dt)
		if a.target != nil && a.targetDistance > a.cfg.MaxDistanceFromTarget {
			a.setMode(Seek)
		}
	case Seek:
		a.seek(dt)
		if a.targetDistance < a.cfg.MinDistanceFromTarget {
			a.setMode(Flee)
		}
	case Flee:
		a.flee(dt)
		if a.targetDistance > a.cfg.MaxDistanceFromTarget {
			a.setMode(Seek)
		}
	case Flock:
		a.flock(dt)
	default:
		panic(fmt.Sprintf("ai: ship %s is in unknown mode %d", a.body.ID, int(a.mode)))
	}
}

func (a *Agent) now() float64 {
	if a.deps.Clock != nil {
		return a.deps.Clock.Now()
	}
	return a.elapsed
}

// resolveTarget drops a dead target and looks again when nothing precise is held.
func (a *Agent) resolveTarget() {
	if a.target != nil && !a.target.Alive() {
		a.target = nil
	}
	if _, precise := a.target.(Precise); precise {
		return
	}
	a.target = FindTarget(a.deps.Targets)
	if a.target == nil && a.mode != Flock && a.mode != Wander {
		a.deps.Logger.Debugf("ship %s lost its target", a.body.ID)
		a.setMode(Wander)
	}
}

// ============================================================================
// Attack
// ============================================================================

func (a *Agent) maybeAttack(dt float64) {
	if a.target == nil {
		a.targetDistance = math.Inf(1)
		a.targetDelta = geometry.Zero
		a.faceMovement(dt)
		return
	}

	a.targetDelta = a.target.Position().Sub(a.body.Position)
	a.targetDistance = a.targetDelta.Len()
	if a.targetDistance > a.cfg.AttackRange {
		a.faceMovement(dt)
		return
	}

	precise, ok := a.target.(Precise)
	if !ok {
		// a bare transform cannot be shot at, so keep the nose on the flight path
		a.faceMovement(dt)
		return
	}

	// face where the target will be when the missile gets there
	a.targetDelta = a.targetDelta.Add(precise.Body.Velocity.Mul(a.leadTime()))
	a.faceTarget(dt)

	if a.deps.Rand.Float64()*a.cfg.MinTimeBetweenShots >= dt {
		return
	}
	if a.shotBlocked(precise.Body) {
		return
	}
	a.fire()
}

func (a *Agent) leadTime() float64 {
	if a.cfg.MissileSpeed <= 0 {
		return 0
	}
	return math.Min(a.cfg.AttackRange, a.targetDistance) / a.cfg.MissileSpeed
}

// shotBlocked reports whether anything but the shooter, a missile or the target
// sits on the aim line within attack range.
func (a *Agent) shotBlocked(target *body.Body) bool {
	if a.deps.Sight == nil {
		return false
	}
	hits := a.deps.Sight.Raycast(a.body.Position, a.targetDelta, a.cfg.AttackRange)
	for _, hit := range hits {
		switch {
		case hit.Body == a.body:
		case hit.Body.Speed() >= a.cfg.MissileSpeed*missileLikeSpeedRatio:
		case hit.Body == target:
		default:
			return true
		}
	}
	return false
}

func (a *Agent) fire() {
	if a.deps.Weapon == nil {
		return
	}
	now := a.now()
	if now-a.lastShotTime < a.cfg.MinTimeBetweenShots {
		return
	}
	a.lastShotTime = now
	a.deps.Weapon.Launch(Shot{
		Origin:      a.body.Position,
		Orientation: a.body.Orientation,
		Range:       a.cfg.AttackRange,
		Speed:       a.cfg.MissileSpeed,
		Owner:       a.body,
		Damage:      a.cfg.DamagePerShot,
		Enemy:       true,
	})
	a.deps.Logger.Debugf("ship %s fired at %.2f", a.body.ID, now)
}

func (a *Agent) faceMovement(dt float64) {
	a.turnTo(steering.Face(a.body, a.body.Velocity), dt)
}

func (a *Agent) faceTarget(dt float64) {
	a.turnTo(steering.Face(a.body, a.targetDelta), dt)
}

func (a *Agent) turnTo(orientation, dt float64) {
	next := steering.Align(a.body, orientation, a.cfg.RotationRate, faceTargetRadius, faceSlowRadius, dt)
	a.body.Orientation = geometry.WrapDegrees(next)
}

// ============================================================================
// Movement
// ============================================================================

// avoidCollision dodges the most imminent collision, ahead of the mode's steering.
func (a *Agent) avoidCollision(dt float64) {
	if a.mover == nil {
		return
	}
	threat, ok := a.mover.FindLikeliestCollision(a.cfg.CollisionAvoidanceThreshold)
	if !ok {
		return
	}
	a.body.Accelerate(threat.Direction.Mul(a.cfg.MaxAcceleration), a.cfg.FleeSpeed, dt)
}

func (a *Agent) wander(dt float64) {
	a.avoidCollision(dt)
	accel := steering.Wander(a.body, a.cfg.WanderCircleDistance, a.cfg.WanderCircleRadius,
		a.cfg.WanderAngleChangeRate, &a.wanderState, a.cfg.MaxAcceleration, a.deps.Rand)
	a.body.Accelerate(accel, a.cfg.MaxSpeed, dt)
}

func (a *Agent) seek(dt float64) {
	a.avoidCollision(dt)
	var accel geometry.Vector2D
	switch t := a.target.(type) {
	case Precise:
		accel = steering.Pursue(a.body, t.Body.Position, t.Body.Velocity, a.cfg.MaxAcceleration, a.cfg.MaxPrediction)
	case Simple:
		accel = steering.Seek(a.body, t.Position(), a.cfg.MaxAcceleration)
	}
	a.body.Accelerate(accel, a.cfg.MaxSpeed, dt)
}

func (a *Agent) flee(dt float64) {
	a.avoidCollision(dt)
	var accel geometry.Vector2D
	switch t := a.target.(type) {
	case Precise:
		accel = steering.Evade(a.body, t.Body.Position, t.Body.Velocity, a.cfg.MaxAcceleration, a.cfg.MaxPrediction)
	case Simple:
		accel = steering.Flee(a.body, t.Position(), a.cfg.MaxAcceleration)
	}
	a.body.Accelerate(accel, a.cfg.FleeSpeed, dt)
}

func (a *Agent) flock(dt float64) {
	if a.group == nil {
		a.setMode(Seek)
		return
	}
	a.avoidCollision(dt)

	peers := a.group.Kinematics()
	groupVelocity := steering.ComputeFlockVelocity(peers)
	accel := steering.MatchVelocity(a.body, groupVelocity, a.cfg.MaxAcceleration, steering.DefaultTimeToTarget)
	accel = accel.Add(steering.Separation(a.body, a.cfg.MaxAcceleration, peers,
		a.cfg.SeparationThreshold, a.cfg.SeparationStrength))
	accel = accel.Add(steering.Cohesion(a.body, a.cfg.MaxAcceleration, peers, a.cfg.FlockSpeed,
		a.cfg.CohesionTargetRadius, a.cfg.CohesionSlowRadius, steering.DefaultTimeToTarget))
	a.body.Accelerate(steering.Clamp(accel, a.cfg.MaxAcceleration), a.cfg.FlockSpeed, dt)

	// runaway guard
	if a.target != nil && a.targetDistance > 2*a.cfg.MaxDistanceFromTarget {
		a.setMode(Seek)
	}
}
