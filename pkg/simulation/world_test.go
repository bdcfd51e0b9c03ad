package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/ai"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/body"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/geometry"
)

const tick = 1.0 / 60

// newTestWorld returns a seeded world with no wave and a player that only
// moves on input.
func newTestWorld(t testing.TB, mutate ...func(*Config)) *World {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.Wave = nil
	cfg.Player.Autopilot = false
	for _, m := range mutate {
		m(cfg)
	}
	return NewWorld(cfg)
}

func TestWorld_FlockOfThreeAtOnePoint(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnPlayer(geometry.Vector2D{Y: 4})

	// build the formation by hand so all three ships start on the same spot
	f := flock.New(w.Registry(), nil)
	for i := 0; i < 3; i++ {
		a := w.newShip(geometry.Zero, 0, i == 0)
		f.AddMember(a)
		if i == 0 {
			a.SetAsLeader(f)
		} else {
			a.SetAsFlock(f)
		}
	}
	members := f.Members()

	w.Step(tick)

	leader := members[0]
	assert.True(t, leader.IsLeader())
	assert.Equal(t, ai.Seek, leader.Mode())
	assert.LessOrEqual(t, leader.Body().Speed(), w.Config().Leader.MaxSpeed+1e-9)
	for _, a := range members[1:] {
		assert.Equal(t, ai.Flock, a.Mode())
		assert.LessOrEqual(t, a.Body().Speed(), w.Config().Support.FlockSpeed+1e-9)
	}
	assert.False(t, members[1].Body().Velocity.ApproxEq(members[2].Body().Velocity, 1e-6),
		"stacked followers split up")
}

func TestWorld_SpawnedFlockFirstTick(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnPlayer(geometry.Vector2D{Y: 4})
	f := w.SpawnFlock(geometry.Zero, 0, nil)
	require.Equal(t, 3, f.Len())
	assert.Equal(t, 4, w.Registry().Len())

	w.Step(tick)

	for i, a := range f.Members() {
		if i == 0 {
			assert.Equal(t, ai.Seek, a.Mode())
			assert.LessOrEqual(t, a.Body().Speed(), w.Config().Leader.MaxSpeed+1e-9)
			continue
		}
		assert.Equal(t, ai.Flock, a.Mode())
		assert.LessOrEqual(t, a.Body().Speed(), w.Config().Support.FlockSpeed+1e-9)
	}
}

func TestWorld_HardLevelFlocksAreBigger(t *testing.T) {
	w := newTestWorld(t, func(c *Config) { c.Level = 11 })
	f := w.SpawnFlock(geometry.Zero, 0, nil)
	assert.Equal(t, 6, f.Len())
	assert.Len(t, w.Agents(), 6)
}

func TestWorld_StepMovesBodies(t *testing.T) {
	w := newTestWorld(t)
	p := w.SpawnPlayer(geometry.Zero)
	p.Velocity = geometry.Vector2D{X: 2}

	w.Step(0.5)
	assert.Equal(t, geometry.Vector2D{X: 1}, p.Position)
	assert.Equal(t, p.Position, w.Camera().Position, "the camera follows the player")
	assert.Equal(t, uint64(1), w.Ticks())
	assert.InDelta(t, 0.5, w.Now(), 1e-12)

	w.Step(0)
	w.Step(-1)
	assert.Equal(t, uint64(1), w.Ticks(), "non positive steps are ignored")
}

func TestWorld_DespawnIsDeferred(t *testing.T) {
	w := newTestWorld(t)
	f := w.SpawnFlock(geometry.Zero, 0, nil)
	leader := f.Leader()

	w.Damage(leader, 1000)
	assert.True(t, leader.Alive(), "ships die at the end of the tick")
	assert.True(t, w.Registry().Contains(leader.Body()))

	w.Step(tick)
	assert.False(t, leader.Alive())
	assert.False(t, w.Registry().Contains(leader.Body()))
	assert.Len(t, w.Agents(), 2)
	assert.Equal(t, 1, w.Kills())
	assert.NotSame(t, leader, f.Leader())
	assert.True(t, f.Leader().IsLeader(), "the next ship took over")
}

func TestWorld_DamageBreaksFormation(t *testing.T) {
	w := newTestWorld(t, func(c *Config) { c.HealingRate = 100 })
	w.SpawnPlayer(geometry.Vector2D{Y: 5})
	f := w.SpawnFlock(geometry.Zero, 0, nil)
	follower := f.Members()[1]

	w.Damage(follower, 10)
	assert.Equal(t, ai.Flee, follower.Mode())
	assert.InDelta(t, 90, w.Health(follower).Current(), 1e-9)

	// 10 hp at 100 hp/s
	for i := 0; i < 10; i++ {
		w.Step(tick)
	}
	assert.True(t, w.Health(follower).Full())
	assert.Equal(t, ai.Flock, follower.Mode(), "back in formation once healed")
}

func TestWorld_MissilesExpire(t *testing.T) {
	w := newTestWorld(t)
	w.Armory().Launch(ai.Shot{Origin: geometry.Zero, Orientation: 0, Range: 4, Speed: 8})
	assert.Empty(t, w.Armory().Projectiles(), "launches wait for the flush")

	w.Step(0.1)
	missiles := w.Armory().Projectiles()
	require.Len(t, missiles, 1)
	m := missiles[0].Body
	assert.Equal(t, body.KindProjectile, m.Kind)
	assert.True(t, w.Registry().Contains(m))
	assert.InDelta(t, 0.8, m.Position.Y, 1e-9)

	for i := 0; i < 5; i++ {
		w.Step(0.1)
	}
	assert.Empty(t, w.Armory().Projectiles())
	assert.False(t, w.Registry().Contains(m))
	assert.False(t, m.Alive())
}

func TestWorld_PlayerMissileHitsShip(t *testing.T) {
	w := newTestWorld(t, func(c *Config) { c.HealingRate = 0 })
	p := w.SpawnPlayer(geometry.Zero)
	ship := w.newShip(geometry.Vector2D{Y: 1}, 180, true)

	w.Armory().Launch(ai.Shot{Origin: geometry.Zero, Range: 8, Speed: 8, Owner: p, Damage: 40})
	w.Step(0.1)

	assert.InDelta(t, 60, w.Health(ship).Current(), 1e-6)
	assert.Equal(t, ai.Flee, ship.Mode())
	for _, m := range w.Armory().Projectiles() {
		assert.True(t, m.Enemy, "the player missile was used up")
	}
}

func TestWorld_EnemiesFallBackToTheCamera(t *testing.T) {
	w := newTestWorld(t, func(c *Config) { c.StartingHealth = 1 })
	p := w.SpawnPlayer(geometry.Vector2D{X: 3})

	w.damagePlayer(5)
	assert.False(t, p.Alive())
	assert.True(t, w.GameOver())
	assert.False(t, w.Registry().Contains(p))

	target := ai.FindTarget(w.Directory())
	require.IsType(t, ai.Simple{}, target)
	assert.Equal(t, geometry.Vector2D{X: 3}, target.Position())
}

func TestWorld_WaveScoring(t *testing.T) {
	w := newTestWorld(t, func(c *Config) {
		c.Wave = []FlockSpawn{{Delay: 0, X: 0, Y: 10}, {Delay: 1, X: 10, Y: -10}}
	})
	w.SpawnPlayer(geometry.Zero)
	w.StartWave()
	wave := w.Wave()

	w.Step(0.1)
	require.Len(t, wave.Flocks(), 1)
	assert.Equal(t, 1, wave.Remaining())

	for i := 0; i < 12; i++ {
		w.Step(0.1)
	}
	flocks := wave.Flocks()
	require.Len(t, flocks, 2)
	assert.Zero(t, wave.Remaining())

	for _, a := range flocks[0].Members() {
		w.Despawn(a)
	}
	w.Step(tick)
	assert.Equal(t, 3*flock.BountyPerShip, w.Score())
	assert.False(t, wave.Complete())

	for _, a := range flocks[1].Members() {
		w.Despawn(a)
	}
	w.Step(tick)
	assert.Equal(t, 6*flock.BountyPerShip+w.Config().WaveBonus, w.Score())
	assert.True(t, wave.Complete())
	assert.Equal(t, 6, w.Kills())
	assert.Empty(t, w.Agents())
}

func TestWorld_HardLevelWaveArrivesSooner(t *testing.T) {
	w := newTestWorld(t, func(c *Config) {
		c.Level = 11
		c.Wave = []FlockSpawn{{Delay: 3, X: 0, Y: 10}}
	})
	w.StartWave()

	for i := 0; i < 11; i++ {
		w.Step(0.1)
	}
	assert.Len(t, w.Wave().Flocks(), 1, "3s delay divided by 3")
}

func TestWorld_EmptyWaveIsComplete(t *testing.T) {
	w := newTestWorld(t)
	w.StartWave()
	assert.True(t, w.Wave().Complete())
}

func TestWorld_AutopilotDodgesAndFires(t *testing.T) {
	w := newTestWorld(t, func(c *Config) {
		c.Player.Autopilot = true
		c.Wave = []FlockSpawn{{X: 0, Y: 5}}
	})
	p := w.SpawnPlayer(geometry.Zero)
	w.StartWave()

	fired := false
	for i := 0; i < 120 && !fired; i++ {
		w.Step(tick)
		for _, m := range w.Armory().Projectiles() {
			fired = fired || m.Owner == p
		}
	}
	assert.True(t, fired, "the autopilot shoots at the flock ahead")
	assert.Greater(t, p.Speed(), 0.0)
}

func TestSnapshot_ToStruct(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnPlayer(geometry.Vector2D{Y: 5})
	w.SpawnFlock(geometry.Zero, 0, nil)
	w.Step(tick)

	s := w.Snapshot()
	require.NotNil(t, s.Player)
	assert.Len(t, s.Ships, 3)
	assert.True(t, s.Ships[0].Leader)

	st, err := s.ToStruct()
	require.NoError(t, err)
	assert.Equal(t, 1.0, st.Fields["tick"].GetNumberValue())
	assert.Len(t, st.Fields["ships"].GetListValue().GetValues(), 3)
	assert.Equal(t, 5.0, st.Fields["player"].GetStructValue().Fields["position"].GetStructValue().Fields["y"].GetNumberValue())
}

func BenchmarkWorld_Step(b *testing.B) {
	w := newTestWorld(b, func(c *Config) { c.ShipsPerFlock = 10 })
	w.SpawnPlayer(geometry.Zero)
	for i := 0; i < 10; i++ {
		w.SpawnFlock(geometry.Vector2D{X: float64(i%5) * 8, Y: float64(i/5)*8 + 10}, 180, nil)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Step(tick)
	}
}
