package simulation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/ai"
)

// ErrInvalidConfig wraps every schema violation reported by LoadConfig.
var ErrInvalidConfig = errors.New("invalid config")

const (
	// hardLevel is the first level where flocks grow and arrive faster.
	hardLevel           = 10
	hardLevelExtraShips = 3
	hardLevelDelayRatio = 3
)

// FlockSpawn is one entry of a wave. Delay counts from the previous entry's spawn.
type FlockSpawn struct {
	Delay    float64 `json:"delay" yaml:"delay"`
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Rotation float64 `json:"rotation" yaml:"rotation"`
}

// PlayerConfig tunes the player ship and its autopilot.
type PlayerConfig struct {
	X               float64 `json:"x" yaml:"x"`
	Y               float64 `json:"y" yaml:"y"`
	MaxSpeed        float64 `json:"maxSpeed" yaml:"maxSpeed"`
	MaxAcceleration float64 `json:"maxAcceleration" yaml:"maxAcceleration"`
	RotationRate    float64 `json:"rotationRate" yaml:"rotationRate"`
	AttackRange     float64 `json:"attackRange" yaml:"attackRange"`
	MissileSpeed    float64 `json:"missileSpeed" yaml:"missileSpeed"`
	ReloadTime      float64 `json:"reloadTime" yaml:"reloadTime"`
	DamagePerShot   float64 `json:"damagePerShot" yaml:"damagePerShot"`
	// DodgeThreshold is the look-ahead passed to the collision search.
	DodgeThreshold float64 `json:"dodgeThreshold" yaml:"dodgeThreshold"`
	Autopilot      bool    `json:"autopilot" yaml:"autopilot"`
}

type Config struct {
	// Visible arena, in world units, centred on the camera
	WorldWidth  float64 `json:"worldWidth" yaml:"worldWidth"`
	WorldHeight float64 `json:"worldHeight" yaml:"worldHeight"`
	// Scale is the number of pixels per world unit in the viewer.
	Scale float64 `json:"scale" yaml:"scale"`

	TickRate        int     `json:"tickRate" yaml:"tickRate"`
	CollisionRadius float64 `json:"collisionRadius" yaml:"collisionRadius"`
	Level           int     `json:"level" yaml:"level"`
	// Seed makes a run reproducible. Zero picks a random seed.
	Seed uint64 `json:"seed" yaml:"seed"`

	// Health, shared by every ship and the player
	StartingHealth float64 `json:"startingHealth" yaml:"startingHealth"`
	MaxHealth      float64 `json:"maxHealth" yaml:"maxHealth"`
	HealingRate    float64 `json:"healingRate" yaml:"healingRate"`

	ShipsPerFlock int          `json:"shipsPerFlock" yaml:"shipsPerFlock"`
	WaveBonus     int          `json:"waveBonus" yaml:"waveBonus"`
	Wave          []FlockSpawn `json:"wave" yaml:"wave"`

	Player  PlayerConfig `json:"player" yaml:"player"`
	Leader  ai.Tuning    `json:"leader" yaml:"leader"`
	Support ai.Tuning    `json:"support" yaml:"support"`
}

func DefaultConfig() *Config {
	return &Config{
		WorldWidth:      40,
		WorldHeight:     30,
		Scale:           20,
		TickRate:        60,
		CollisionRadius: 0.5,
		Level:           1,
		StartingHealth:  100,
		MaxHealth:       100,
		HealingRate:     10,
		ShipsPerFlock:   3,
		WaveBonus:       50,
		Wave: []FlockSpawn{
			{Delay: 0, X: 0, Y: 12, Rotation: 180},
			{Delay: 8, X: -12, Y: -10, Rotation: 45},
			{Delay: 8, X: 12, Y: -10, Rotation: -45},
		},
		Player: PlayerConfig{
			MaxSpeed:        4,
			MaxAcceleration: 8,
			RotationRate:    180,
			AttackRange:     8,
			MissileSpeed:    8,
			ReloadTime:      0.5,
			DamagePerShot:   40,
			DodgeThreshold:  3,
			Autopilot:       true,
		},
		Leader:  ai.DefaultTuning(),
		Support: ai.DefaultTuning(),
	}
}

// FlockSize is the number of ships per flock at the configured level.
func (c *Config) FlockSize() int {
	if c.Level > hardLevel {
		return c.ShipsPerFlock + hardLevelExtraShips
	}
	return c.ShipsPerFlock
}

// SpawnDelay scales a wave delay for the configured level.
func (c *Config) SpawnDelay(delay float64) float64 {
	if c.Level > hardLevel {
		return delay / hardLevelDelayRatio
	}
	return delay
}

// TickInterval is the wall-clock period of one simulation step.
func (c *Config) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.TickRate)
}

// LoadConfig loads a JSON or YAML configuration and validates it against the schema.
// Fields missing from the file keep their DefaultConfig value.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := jsonschema.Compile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File, as JSON whatever it was written in
	raw, err := readDocument(configFile)
	if err != nil {
		return nil, err
	}

	// 3. Validate
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	// 4. Unmarshal into Struct
	cfg := DefaultConfig()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// readDocument returns the file content as JSON. YAML files are converted so
// the schema sees the same numbers and maps either way.
func readDocument(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc interface{}
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode config yaml: %w", err)
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to convert config yaml: %w", err)
		}
		return out, nil
	default:
		return b, nil
	}
}
