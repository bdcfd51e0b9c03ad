// Package steering turns a body's kinematic state and a goal into acceleration or
// rotation requests.
//
// Method names are from Craig Reynolds, "Steering Behaviors for Autonomous
// Characters" (GDC 1999); the algorithms follow Ian Millington, "AI for Games".
// Every function is pure: it reads the Kinematic it is given and returns a request
// that the caller clamps and applies.
package steering

import (
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/geometry"
)

const (
	// FaceEpsilon is the shortest direction Face accepts before keeping the current orientation.
	FaceEpsilon = 1e-4
	// DefaultTimeToTarget is used when a caller passes a non-positive timeToTarget.
	DefaultTimeToTarget = 0.1
	// DefaultMaxPrediction is the look-ahead, in seconds, used by Pursue and Evade
	// when the caller passes a non-positive horizon.
	DefaultMaxPrediction = 1.0
	// DefaultDecayCoef is the separation decay coefficient used when none is given.
	DefaultDecayCoef = 1.0
)

// Kinematic is the read-only view of a moving body the behaviours work from.
// Orientation is in degrees, 0 = up, positive = clockwise.
type Kinematic interface {
	Pos() geometry.Vector2D
	Vel() geometry.Vector2D
	Orient() float64
	BodyMass() float64
}

// Face returns the orientation that makes "up" point along direction.
// Direction need not be normalized; a degenerate direction keeps the current orientation.
func Face(k Kinematic, direction geometry.Vector2D) float64 {
	if direction.Len() < FaceEpsilon {
		return k.Orient()
	}
	return direction.HeadingDegrees()
}

// Align returns the orientation after rotating toward targetOrientation for dt seconds.
// targetRadius is how many degrees the body may miss by; inside slowRadius the
// rotation speed brakes linearly to avoid overshooting.
func Align(k Kinematic, targetOrientation, rotationSpeed, targetRadius, slowRadius, dt float64) float64 {
	return k.Orient() + AlignRate(k, targetOrientation, rotationSpeed, targetRadius, slowRadius)*dt
}

// AlignRate is the signed rotation speed, in degrees per second, Align integrates.
func AlignRate(k Kinematic, targetOrientation, rotationSpeed, targetRadius, slowRadius float64) float64 {
	delta := geometry.WrapDegrees(targetOrientation - k.Orient())
	mag := math.Abs(delta)
	if mag < targetRadius {
		return 0
	}
	rate := rotationSpeed
	if slowRadius > 0 && mag <= slowRadius {
		rate *= mag / slowRadius
	}
	if delta < 0 {
		rate = -rate
	}
	return rate
}

// Seek accelerates toward the target's current position as fast as allowed.
func Seek(k Kinematic, target geometry.Vector2D, maxAcceleration float64) geometry.Vector2D {
	return target.Sub(k.Pos()).Normalize().Mul(maxAcceleration)
}

// Flee accelerates away from the target's current position as fast as allowed.
func Flee(k Kinematic, target geometry.Vector2D, maxAcceleration float64) geometry.Vector2D {
	return k.Pos().Sub(target).Normalize().Mul(maxAcceleration)
}

// Arrive is Seek that slows down and stops at the target.
// Inside targetRadius there is no acceleration; inside slowRadius the desired speed
// scales with the remaining distance. timeToTarget is accepted for symmetry with
// MatchVelocity but the velocity gap is returned undivided, only clamped.
func Arrive(k Kinematic, target geometry.Vector2D, maxAcceleration, maxSpeed, targetRadius, slowRadius, _ float64) geometry.Vector2D {
	direction := target.Sub(k.Pos())
	distance := direction.Len()
	if distance < targetRadius {
		return geometry.Zero
	}
	targetSpeed := maxSpeed
	if slowRadius > 0 && distance <= slowRadius {
		targetSpeed = maxSpeed * distance / slowRadius
	}
	targetVelocity := direction.Normalize().Mul(targetSpeed)
	return targetVelocity.Sub(k.Vel()).ClampLen(maxAcceleration)
}

// MatchVelocity accelerates to reach targetVelocity within timeToTarget seconds.
func MatchVelocity(k Kinematic, targetVelocity geometry.Vector2D, maxAcceleration, timeToTarget float64) geometry.Vector2D {
	t := timeOrDefault(timeToTarget)
	return targetVelocity.Sub(k.Vel()).Div(t).ClampLen(maxAcceleration)
}

// Pursue seeks the predicted position of a target moving at constant velocity.
// maxPrediction bounds the look-ahead in seconds; a small value reacts better to
// sudden velocity changes.
func Pursue(k Kinematic, targetPos, targetVel geometry.Vector2D, maxAcceleration, maxPrediction float64) geometry.Vector2D {
	return Seek(k, predict(k, targetPos, targetVel, maxPrediction), maxAcceleration)
}

// Evade flees the predicted position of a target moving at constant velocity.
func Evade(k Kinematic, targetPos, targetVel geometry.Vector2D, maxAcceleration, maxPrediction float64) geometry.Vector2D {
	return Flee(k, predict(k, targetPos, targetVel, maxPrediction), maxAcceleration)
}

// Prediction returns the look-ahead used for a target at distance: min(maxPrediction,
// distance/speed), or maxPrediction when the body is (nearly) still.
func Prediction(distance, speed, maxPrediction float64) float64 {
	if maxPrediction <= 0 {
		maxPrediction = DefaultMaxPrediction
	}
	if speed < geometry.Epsilon {
		return maxPrediction
	}
	return math.Min(maxPrediction, distance/speed)
}

func predict(k Kinematic, targetPos, targetVel geometry.Vector2D, maxPrediction float64) geometry.Vector2D {
	distance := targetPos.DistanceTo(k.Pos())
	prediction := Prediction(distance, k.Vel().Len(), maxPrediction)
	return targetPos.Add(targetVel.Mul(prediction))
}

// Separation pushes k away from every peer strictly closer than threshold.
// Strength decays with the inverse square of the distance, scaled by decayCoef and
// capped at maxAcceleration per peer. k itself and coincident peers are ignored.
func Separation(k Kinematic, maxAcceleration float64, peers []Kinematic, threshold, decayCoef float64) geometry.Vector2D {
	var result geometry.Vector2D
	for _, peer := range peers {
		if peer == k {
			continue
		}
		away := k.Pos().Sub(peer.Pos())
		distance := away.Len()
		if !(distance < threshold) || distance < geometry.Epsilon {
			continue
		}
		strength := math.Min(decayCoef/(distance*distance), maxAcceleration)
		result = result.Add(away.Mul(strength / distance))
	}
	return result
}

// Cohesion arrives at the mass-weighted centre of the other peers.
// Use a wide targetRadius and slowRadius so members do not bunch up.
func Cohesion(k Kinematic, maxAcceleration float64, peers []Kinematic, maxSpeed, targetRadius, slowRadius, timeToTarget float64) geometry.Vector2D {
	var center geometry.Vector2D
	totalMass := 0.0
	for _, peer := range peers {
		if peer == k {
			continue
		}
		mass := peer.BodyMass()
		center = center.Add(peer.Pos().Mul(mass))
		totalMass += mass
	}
	if totalMass <= 0 {
		return geometry.Zero
	}
	return Arrive(k, center.Div(totalMass), maxAcceleration, maxSpeed, targetRadius, slowRadius, timeToTarget)
}

// ComputeFlockVelocity returns the mass-weighted average of the peers' positions.
// The group "velocity" used for alignment is, literally, this centroid signal.
func ComputeFlockVelocity(peers []Kinematic) geometry.Vector2D {
	var sum geometry.Vector2D
	totalMass := 0.0
	for _, peer := range peers {
		mass := peer.BodyMass()
		sum = sum.Add(peer.Pos().Mul(mass))
		totalMass += mass
	}
	return sum.Div(totalMass)
}

// WanderDrift returns the next wander state: state plus a random delta strictly
// inside (-angleChangeRate, angleChangeRate), wrapped to (-180, 180].
func WanderDrift(state, angleChangeRate float64, rng *rand.Rand) float64 {
	delta := (rng.Float64() - rng.Float64()) * angleChangeRate
	return geometry.WrapDegrees(state + delta)
}

// Wander seeks a point on a circle projected circleDistance ahead of the body.
// state is the persistent heading offset, in degrees, carried across ticks; it
// drifts by at most angleChangeRate per call.
func Wander(k Kinematic, circleDistance, circleRadius, angleChangeRate float64, state *float64, maxAcceleration float64, rng *rand.Rand) geometry.Vector2D {
	*state = WanderDrift(*state, angleChangeRate, rng)
	orientation := k.Orient()
	center := k.Pos().Add(geometry.FromHeading(orientation).Mul(circleDistance))
	target := center.Add(geometry.FromHeading(orientation + *state).Mul(circleRadius))
	return Seek(k, target, maxAcceleration)
}

// Clamp limits a combined acceleration request to maxAcceleration.
func Clamp(acceleration geometry.Vector2D, maxAcceleration float64) geometry.Vector2D {
	return acceleration.ClampLen(maxAcceleration)
}

func timeOrDefault(timeToTarget float64) float64 {
	if timeToTarget <= 0 {
		return DefaultTimeToTarget
	}
	return timeToTarget
}
