package steering

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/geometry"
)

const tolerance = 1e-9

type kin struct {
	pos, vel geometry.Vector2D
	orient   float64
	mass     float64
}

func (k *kin) Pos() geometry.Vector2D { return k.pos }
func (k *kin) Vel() geometry.Vector2D { return k.vel }
func (k *kin) Orient() float64        { return k.orient }
func (k *kin) BodyMass() float64 {
	if k.mass == 0 {
		return 1
	}
	return k.mass
}

func at(x, y float64) *kin {
	return &kin{pos: geometry.Vector2D{X: x, Y: y}}
}

func assertVec(t *testing.T, want, got geometry.Vector2D, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-6, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, 1e-6, msgAndArgs...)
}

func TestFace(t *testing.T) {
	k := &kin{orient: 42}

	assert.Equal(t, 42.0, Face(k, geometry.Vector2D{}), "zero direction keeps orientation")
	assert.Equal(t, 42.0, Face(k, geometry.Vector2D{X: 1e-5}), "tiny direction keeps orientation")
	assert.InDelta(t, 0, Face(k, geometry.Vector2D{Y: 3}), tolerance)
	assert.InDelta(t, -90, Face(k, geometry.Vector2D{X: 2}), tolerance)
	assert.InDelta(t, 90, Face(k, geometry.Vector2D{X: -2}), tolerance)
}

func TestAlign(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		target   float64
		wantRate float64
	}{
		{"inside target radius", 10, 10.5, 0},
		{"positive delta, full speed", 0, 90, 180},
		{"negative delta, full speed", 0, -90, -180},
		{"wraps across 180", 170, -170, 180 * 20.0 / 30.0},
		{"wraps across -180", -170, 170, -180 * 20.0 / 30.0},
		{"inside slow radius brakes", 0, 15, 180 * 15.0 / 30.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := &kin{orient: tt.current}
			rate := AlignRate(k, tt.target, 180, 1, 30)
			assert.InDelta(t, tt.wantRate, rate, 1e-6)

			next := Align(k, tt.target, 180, 1, 30, 0.1)
			assert.InDelta(t, tt.current+tt.wantRate*0.1, next, 1e-6)
		})
	}
}

func TestAlign_SignMatchesShortestDelta(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 500; i++ {
		current := rng.Float64()*720 - 360
		target := rng.Float64()*720 - 360
		k := &kin{orient: current}
		delta := geometry.WrapDegrees(target - current)
		turned := Align(k, target, 90, 2, 10, 0.02) - current

		if math.Abs(delta) < 2 {
			require.Zero(t, turned, "no rotation inside target radius (delta %v)", delta)
			continue
		}
		require.Equal(t, math.Signbit(delta), math.Signbit(turned), "delta %v turned %v", delta, turned)
	}
}

func TestSeekFlee(t *testing.T) {
	k := at(1, 1)
	target := geometry.Vector2D{X: 4, Y: 5}

	seek := Seek(k, target, 10)
	assertVec(t, geometry.Vector2D{X: 6, Y: 8}, seek)

	flee := Flee(k, target, 10)
	assertVec(t, geometry.Vector2D{X: -6, Y: -8}, flee)

	assertVec(t, geometry.Zero, Seek(k, k.pos, 10), "seeking own position is no effect")
}

func TestArrive(t *testing.T) {
	t.Run("inside target radius", func(t *testing.T) {
		k := at(0, 0)
		got := Arrive(k, geometry.Vector2D{X: 0.5}, 5, 3, 1, 6, 0.1)
		assertVec(t, geometry.Zero, got)
	})

	t.Run("outside slow radius uses max speed", func(t *testing.T) {
		k := at(0, 0)
		got := Arrive(k, geometry.Vector2D{X: 10}, 5, 3, 1, 6, 0.1)
		assertVec(t, geometry.Vector2D{X: 3}, got)
	})

	t.Run("inside slow radius scales speed", func(t *testing.T) {
		k := at(0, 0)
		got := Arrive(k, geometry.Vector2D{Y: 3}, 5, 4, 1, 6, 0.1)
		assertVec(t, geometry.Vector2D{Y: 2}, got)
	})

	t.Run("velocity gap is clamped", func(t *testing.T) {
		k := at(0, 0)
		k.vel = geometry.Vector2D{X: -10}
		got := Arrive(k, geometry.Vector2D{X: 10}, 5, 3, 1, 6, 0.1)
		assertVec(t, geometry.Vector2D{X: 5}, got)
	})
}

func TestMatchVelocity(t *testing.T) {
	k := at(0, 0)
	k.vel = geometry.Vector2D{X: 1}

	got := MatchVelocity(k, geometry.Vector2D{X: 1.2}, 5, 0.1)
	assertVec(t, geometry.Vector2D{X: 2}, got)

	got = MatchVelocity(k, geometry.Vector2D{X: 10}, 5, 0.1)
	assertVec(t, geometry.Vector2D{X: 5}, got, "clamped to max acceleration")

	got = MatchVelocity(k, geometry.Vector2D{X: 1.2}, 5, 0)
	assertVec(t, geometry.Vector2D{X: 2}, got, "non-positive time falls back to the default")
}

func TestPursue_StillTargetCollapsesToSeek(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for i := 0; i < 200; i++ {
		k := &kin{
			pos: geometry.Vector2D{X: rng.Float64()*20 - 10, Y: rng.Float64()*20 - 10},
			vel: geometry.Vector2D{X: rng.Float64()*6 - 3, Y: rng.Float64()*6 - 3},
		}
		target := geometry.Vector2D{X: rng.Float64()*20 - 10, Y: rng.Float64()*20 - 10}
		maxAccel := rng.Float64() * 10

		pursue := Pursue(k, target, geometry.Zero, maxAccel, 1)
		seek := Seek(k, target, maxAccel)
		require.True(t, pursue.ApproxEq(seek, 1e-9), "Pursue %v != Seek %v", pursue, seek)
	}
}

func TestPursueEvade_Prediction(t *testing.T) {
	t.Run("still pursuer uses the full horizon", func(t *testing.T) {
		k := at(0, 0)
		got := Pursue(k, geometry.Vector2D{X: 10}, geometry.Vector2D{Y: 1}, 1, 2)
		assertVec(t, geometry.Vector2D{X: 10, Y: 2}.Normalize(), got)
	})

	t.Run("fast pursuer shortens the horizon", func(t *testing.T) {
		k := at(0, 0)
		k.vel = geometry.Vector2D{X: 20}
		// distance 10 / speed 20 = 0.5s < maxPrediction 2s
		got := Pursue(k, geometry.Vector2D{X: 10}, geometry.Vector2D{Y: 4}, 1, 2)
		assertVec(t, geometry.Vector2D{X: 10, Y: 2}.Normalize(), got)
	})

	t.Run("evade flees the predicted point", func(t *testing.T) {
		k := at(0, 0)
		got := Evade(k, geometry.Vector2D{X: 10}, geometry.Vector2D{Y: 1}, 1, 2)
		assertVec(t, geometry.Vector2D{X: -10, Y: -2}.Normalize(), got)
	})

	assert.Equal(t, DefaultMaxPrediction, Prediction(5, 0, 0))
	assert.Equal(t, 0.25, Prediction(1, 4, 3))
}

func TestSeparation(t *testing.T) {
	t.Run("peers at or beyond threshold give nothing", func(t *testing.T) {
		k := at(0, 0)
		peers := []Kinematic{k, at(4, 0), at(0, -4), at(10, 10)}
		assertVec(t, geometry.Zero, Separation(k, 5, peers, 4, 10))
	})

	t.Run("self is ignored", func(t *testing.T) {
		k := at(0, 0)
		assertVec(t, geometry.Zero, Separation(k, 5, []Kinematic{k}, 4, 10))
	})

	t.Run("close peer pushes away with inverse square decay", func(t *testing.T) {
		k := at(0, 0)
		peers := []Kinematic{k, at(2, 0)}
		// strength = min(10 / 4, 5) = 2.5, directed to -X
		assertVec(t, geometry.Vector2D{X: -2.5}, Separation(k, 5, peers, 4, 10))
	})

	t.Run("strength is capped per peer", func(t *testing.T) {
		k := at(0, 0)
		peers := []Kinematic{at(0, 0.1)}
		assertVec(t, geometry.Vector2D{Y: -5}, Separation(k, 5, peers, 4, 10))
	})

	t.Run("contributions add up", func(t *testing.T) {
		k := at(0, 0)
		peers := []Kinematic{at(2, 0), at(0, 2)}
		assertVec(t, geometry.Vector2D{X: -2.5, Y: -2.5}, Separation(k, 5, peers, 4, 10))
	})
}

func TestCohesion(t *testing.T) {
	k := at(0, 0)
	peers := []Kinematic{k, at(10, 0), &kin{pos: geometry.Vector2D{X: 10, Y: 10}, mass: 3}}
	// centroid of the others weighted by mass: (10*1 + 10*3)/4, (0 + 30)/4 = (10, 7.5)
	got := Cohesion(k, 100, peers, 4, 1, 2, 0.1)
	assertVec(t, geometry.Vector2D{X: 10, Y: 7.5}.Normalize().Mul(4), got)

	assertVec(t, geometry.Zero, Cohesion(k, 100, []Kinematic{k}, 4, 1, 2, 0.1), "alone means no cohesion")
}

func TestComputeFlockVelocity_AveragesPositions(t *testing.T) {
	a := &kin{pos: geometry.Vector2D{X: 2}, vel: geometry.Vector2D{X: 100}}
	b := &kin{pos: geometry.Vector2D{Y: 4}, vel: geometry.Vector2D{Y: 100}}
	got := ComputeFlockVelocity([]Kinematic{a, b})
	assertVec(t, geometry.Vector2D{X: 1, Y: 2}, got)

	assertVec(t, geometry.Zero, ComputeFlockVelocity(nil))
}

func TestWander_StateStaysWithinRate(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1))
	k := at(3, -2)
	k.orient = 30
	state := 0.0
	const rate = 45.0

	for i := 0; i < 1000; i++ {
		before := state
		accel := Wander(k, 3, 2, rate, &state, 5, rng)

		step := geometry.WrapDegrees(state - before)
		require.Less(t, math.Abs(step), rate, "tick %d drifted %v", i, step)
		require.LessOrEqual(t, state, 180.0)
		require.Greater(t, state, -180.0)
		require.InDelta(t, 5, accel.Len(), 1e-9)
	}
}

func TestWander_TargetsPointAhead(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	k := at(0, 0)
	// with a zero drift rate the wander point is straight ahead: up, 3 + 2
	state := 0.0
	got := Wander(k, 3, 2, 0, &state, 1, rng)
	assertVec(t, geometry.Vector2D{Y: 1}, got)
}

func TestClamp(t *testing.T) {
	assertVec(t, geometry.Vector2D{X: 3, Y: 4}, Clamp(geometry.Vector2D{X: 3, Y: 4}, 10))
	assertVec(t, geometry.Vector2D{X: 0.6, Y: 0.8}, Clamp(geometry.Vector2D{X: 3, Y: 4}, 1))
}
