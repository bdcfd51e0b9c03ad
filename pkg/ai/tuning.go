package ai

// Tuning holds the per-ship numbers. Distances are in world units, speeds in units
// per second, angles in degrees.
type Tuning struct {
	MaxAcceleration float64 `json:"maxAcceleration" yaml:"maxAcceleration"`
	MaxSpeed        float64 `json:"maxSpeed" yaml:"maxSpeed"`
	FleeSpeed       float64 `json:"fleeSpeed" yaml:"fleeSpeed"`
	FlockSpeed      float64 `json:"flockSpeed" yaml:"flockSpeed"`
	RotationRate    float64 `json:"rotationRate" yaml:"rotationRate"`

	// Weapon
	MissileSpeed        float64 `json:"missileSpeed" yaml:"missileSpeed"`
	AttackRange         float64 `json:"attackRange" yaml:"attackRange"`
	MinTimeBetweenShots float64 `json:"minTimeBetweenShots" yaml:"minTimeBetweenShots"`
	DamagePerShot       float64 `json:"damagePerShot" yaml:"damagePerShot"`

	// Stand-off distance kept from the target
	MinDistanceFromTarget float64 `json:"minDistanceFromTarget" yaml:"minDistanceFromTarget"`
	MaxDistanceFromTarget float64 `json:"maxDistanceFromTarget" yaml:"maxDistanceFromTarget"`

	// Flocking
	SeparationStrength   float64 `json:"separationStrength" yaml:"separationStrength"`
	SeparationThreshold  float64 `json:"separationThreshold" yaml:"separationThreshold"`
	CohesionTargetRadius float64 `json:"cohesionTargetRadius" yaml:"cohesionTargetRadius"`
	CohesionSlowRadius   float64 `json:"cohesionSlowRadius" yaml:"cohesionSlowRadius"`

	CollisionAvoidanceThreshold float64 `json:"collisionAvoidanceThreshold" yaml:"collisionAvoidanceThreshold"`

	// Wander circle
	WanderCircleDistance  float64 `json:"wanderCircleDistance" yaml:"wanderCircleDistance"`
	WanderCircleRadius    float64 `json:"wanderCircleRadius" yaml:"wanderCircleRadius"`
	WanderAngleChangeRate float64 `json:"wanderAngleChangeRate" yaml:"wanderAngleChangeRate"`

	// MaxPrediction is the Pursue/Evade look-ahead in seconds.
	MaxPrediction float64 `json:"maxPrediction" yaml:"maxPrediction"`
}

// DefaultTuning is the stock enemy ship.
func DefaultTuning() Tuning {
	return Tuning{
		MaxAcceleration:             5,
		MaxSpeed:                    3,
		FleeSpeed:                   6,
		FlockSpeed:                  6,
		RotationRate:                180,
		MissileSpeed:                8,
		AttackRange:                 8,
		MinTimeBetweenShots:         1,
		DamagePerShot:               30,
		MinDistanceFromTarget:       3,
		MaxDistanceFromTarget:       7,
		SeparationStrength:          10,
		SeparationThreshold:         4,
		CohesionTargetRadius:        3,
		CohesionSlowRadius:          6,
		CollisionAvoidanceThreshold: 2,
		WanderCircleDistance:        3,
		WanderCircleRadius:          2,
		WanderAngleChangeRate:       45,
		MaxPrediction:               1,
	}
}

const (
	// faceTargetRadius and faceSlowRadius are the Align radii, in degrees, used
	// whenever a ship turns its nose.
	faceTargetRadius = 1
	faceSlowRadius   = 5
	// missileLikeSpeedRatio marks bodies at or above this fraction of the missile
	// speed as projectiles that never block a shot.
	missileLikeSpeedRatio = 0.9
)
