package simulation

import (
	"math/rand/v2"
	"slices"

	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/ai"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/body"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/physics"
)

// World is the whole simulation: every body, the enemy ships and their flocks,
// the player, projectiles and timers. It is not safe for concurrent use; the
// ArenaActor is its only owner when it runs inside an actor system.
type World struct {
	cfg    *Config
	logger golog.Logger
	rng    *rand.Rand

	registry  *body.Registry
	space     *physics.Space
	camera    *Camera
	directory *Directory
	armory    *Armory
	scheduler *Scheduler
	wave      *Wave

	// agents are kept in spawn order, which is also their update order.
	agents  []*ai.Agent
	health  map[*ai.Agent]*Health
	despawn []*ai.Agent

	player       *body.Body
	playerHealth *Health
	pilot        *Pilot
	input        PlayerInput

	now      float64
	ticks    uint64
	score    int
	kills    int
	gameOver bool
}

type Option func(*World)

func WithLogger(logger golog.Logger) Option {
	return func(w *World) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithRand overrides the random source built from Config.Seed.
func WithRand(rng *rand.Rand) Option {
	return func(w *World) {
		if rng != nil {
			w.rng = rng
		}
	}
}

// NewWorld creates an empty arena. Nothing spawns until SpawnPlayer, StartWave
// or SpawnFlock is called.
func NewWorld(cfg *Config, opts ...Option) *World {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	w := &World{
		cfg:    cfg,
		logger: golog.DiscardLogger,
		health: make(map[*ai.Agent]*Health),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = rand.Uint64()
		}
		w.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	w.registry = body.NewRegistry(body.WithCollisionRadius(cfg.CollisionRadius))
	w.space = physics.NewSpace(w.logger)
	w.camera = &Camera{}
	w.directory = NewDirectory(w.camera)
	w.armory = NewArmory(w.registry, w, w.logger)
	w.scheduler = NewScheduler(w.logger)
	w.wave = NewWave(w, cfg.Wave)
	return w
}

func (w *World) Config() *Config          { return w.cfg }
func (w *World) Now() float64             { return w.now }
func (w *World) Ticks() uint64            { return w.ticks }
func (w *World) Score() int               { return w.score }
func (w *World) Kills() int               { return w.kills }
func (w *World) GameOver() bool           { return w.gameOver }
func (w *World) Registry() *body.Registry { return w.registry }
func (w *World) Directory() *Directory    { return w.directory }
func (w *World) Armory() *Armory          { return w.armory }
func (w *World) Wave() *Wave              { return w.wave }
func (w *World) Player() *body.Body       { return w.player }
func (w *World) Camera() *Camera          { return w.camera }

// Agents returns the live enemy ships in spawn order.
func (w *World) Agents() []*ai.Agent {
	return slices.Clone(w.agents)
}

// Health returns the hit points of a, nil for an unknown agent.
func (w *World) Health(a *ai.Agent) *Health {
	return w.health[a]
}

// ============================================================================
// Spawning
// ============================================================================

// SpawnPlayer puts the player ship at position and points the camera at it.
func (w *World) SpawnPlayer(position geometry.Vector2D) *body.Body {
	p := body.New(body.KindPlayer, position, 0)
	p.Radius = w.cfg.CollisionRadius
	w.registry.Insert(p)

	w.player = p
	w.playerHealth = NewHealth(w.cfg.StartingHealth, w.cfg.MaxHealth, w.cfg.HealingRate)
	w.pilot = NewPilot(w, p, w.playerHealth)
	w.directory.SetPlayer(p)
	w.camera.Position = position
	w.gameOver = false
	w.logger.Infof("🛸 player %s spawned at %s", p.ID, position)
	return p
}

// StartWave schedules the configured wave.
func (w *World) StartWave() {
	w.wave.Start()
}

// SpawnFlock builds a flock of Config.FlockSize ships around origin.
// owner may be nil.
func (w *World) SpawnFlock(origin geometry.Vector2D, rotation float64, owner flock.Owner) *flock.Flock {
	f := flock.New(w.registry, owner, flock.WithRand(w.rng), flock.WithLogger(w.logger))
	members := f.Spawn(origin, rotation, max(1, w.cfg.FlockSize()), w.newShip)
	w.logger.Infof("🚀 flock %s: %d ship(s) at %s", f.ID(), len(members), origin)
	return f
}

// newShip is the flock.Factory of the world.
func (w *World) newShip(position geometry.Vector2D, orientation float64, leader bool) *ai.Agent {
	b := body.New(body.KindShip, position, orientation)
	b.Radius = w.cfg.CollisionRadius
	mover := body.NewMover(b, w.registry)
	mover.Activate()

	tuning := w.cfg.Support
	if leader {
		tuning = w.cfg.Leader
	}
	a := ai.New(b, mover, tuning, ai.Deps{
		Targets: w.directory,
		Sight:   w.space,
		Weapon:  w.armory,
		Clock:   w,
		Rand:    w.rng,
		Logger:  w.logger,
	})
	w.agents = append(w.agents, a)
	w.health[a] = NewHealth(w.cfg.StartingHealth, w.cfg.MaxHealth, w.cfg.HealingRate)
	return a
}

// Schedule runs fn delay seconds of simulation time from now.
func (w *World) Schedule(delay float64, name string, fn func()) {
	w.scheduler.At(w.now+max(0, delay), name, fn)
}

func (w *World) AddScore(points int) {
	w.score += points
}

// SetInput records the manual controls used while the autopilot is off.
func (w *World) SetInput(in PlayerInput) {
	w.input = in
}

// ============================================================================
// Damage
// ============================================================================

// Damage hurts a. A ship that survives breaks off; one that does not is queued
// for despawn at the end of the tick.
func (w *World) Damage(a *ai.Agent, amount float64) {
	h, ok := w.health[a]
	if !ok || !a.Alive() {
		return
	}
	if h.TakeDamage(amount) {
		w.Despawn(a)
		return
	}
	a.OnHit()
}

// Despawn queues a for removal at the end of the tick. Removing ships from the
// registry while agents read it would break the collision scan.
func (w *World) Despawn(a *ai.Agent) {
	if a == nil || !a.Alive() || slices.Contains(w.despawn, a) {
		return
	}
	w.despawn = append(w.despawn, a)
}

func (w *World) damagePlayer(amount float64) {
	if !w.player.Alive() {
		return
	}
	if !w.playerHealth.TakeDamage(amount) {
		return
	}
	w.player.Kill()
	w.registry.Remove(w.player)
	w.gameOver = true
	w.logger.Infof("💥 player destroyed at %.2fs, score %d", w.now, w.score)
}

// ============================================================================
// Tick
// ============================================================================

// Step advances the simulation by dt seconds.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	w.now += dt
	w.ticks++

	// 1. Timers due this tick (wave spawns)
	w.scheduler.RunDue(w.now)

	// 2. Decisions, in spawn order, against a registry nobody mutates
	w.space.Sync(w.registry)
	for _, a := range w.agents {
		a.Update(dt)
	}
	w.flyPlayer(dt)
	w.armory.Flush()

	// 3. Movement
	w.registry.Each(func(b *body.Body) bool {
		b.Integrate(dt)
		return true
	})
	w.camera.Follow(w.player)

	// 4. Projectiles and health
	w.resolveHits()
	w.armory.Age(w.now)
	w.heal(dt)

	// 5. Deaths
	w.flushDespawns()
}

func (w *World) flyPlayer(dt float64) {
	if w.pilot == nil {
		return
	}
	if w.cfg.Player.Autopilot {
		w.pilot.Auto(dt)
		return
	}
	w.pilot.Fly(w.input, dt)
}

// resolveHits lets each missile hit at most one thing. Enemy missiles only hurt
// the player; the player's hurt any ship.
func (w *World) resolveHits() {
	for _, p := range w.armory.Projectiles() {
		if !p.Body.Alive() {
			continue
		}
		if p.Enemy {
			if w.player.Alive() && overlaps(p.Body, w.player) {
				p.Body.Kill()
				w.damagePlayer(p.Damage)
			}
			continue
		}
		for _, a := range w.agents {
			if !a.Alive() || a.Body() == p.Owner || !overlaps(p.Body, a.Body()) {
				continue
			}
			p.Body.Kill()
			w.Damage(a, p.Damage)
			break
		}
	}
}

func (w *World) heal(dt float64) {
	for _, a := range w.agents {
		if h := w.health[a]; a.Alive() && h.Heal(dt) {
			a.OnHealthRestored()
		}
	}
	if w.player.Alive() {
		w.playerHealth.Heal(dt)
	}
}

func (w *World) flushDespawns() {
	if len(w.despawn) == 0 {
		return
	}
	queue := w.despawn
	w.despawn = nil
	for _, a := range queue {
		if !a.Alive() {
			continue
		}
		a.Destroy()
		delete(w.health, a)
		w.kills++
	}
	w.agents = slices.DeleteFunc(w.agents, func(a *ai.Agent) bool { return !a.Alive() })
}

func overlaps(a, b *body.Body) bool {
	return a.Position.DistanceTo(b.Position) <= a.Radius+b.Radius
}
