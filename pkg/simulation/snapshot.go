package simulation

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/geometry"
)

// ShipState is an enemy ship as the viewer sees it.
type ShipState struct {
	ID          string
	Position    geometry.Vector2D
	Velocity    geometry.Vector2D
	Orientation float64
	Mode        string
	Leader      bool
	Health      float64
}

type ProjectileState struct {
	Position geometry.Vector2D
	Velocity geometry.Vector2D
	Enemy    bool
}

type PlayerState struct {
	Position    geometry.Vector2D
	Orientation float64
	Health      float64
}

// Snapshot is a copy of the world state, safe to hand to another goroutine.
type Snapshot struct {
	Tick  uint64
	Time  float64
	Score int
	Kills int

	Camera      geometry.Vector2D
	Player      *PlayerState
	Ships       []ShipState
	Projectiles []ProjectileState

	Flocks        int
	PendingFlocks int
	WaveComplete  bool
	GameOver      bool
}

// Snapshot copies the current state.
func (w *World) Snapshot() *Snapshot {
	s := &Snapshot{
		Tick:          w.ticks,
		Time:          w.now,
		Score:         w.score,
		Kills:         w.kills,
		Camera:        w.camera.Position,
		Ships:         make([]ShipState, 0, len(w.agents)),
		Flocks:        len(w.wave.flocks),
		PendingFlocks: w.wave.Remaining(),
		WaveComplete:  w.wave.Complete(),
		GameOver:      w.gameOver,
	}
	if w.player.Alive() {
		s.Player = &PlayerState{
			Position:    w.player.Position,
			Orientation: w.player.Orientation,
			Health:      w.playerHealth.Current(),
		}
	}
	for _, a := range w.agents {
		if !a.Alive() {
			continue
		}
		b := a.Body()
		s.Ships = append(s.Ships, ShipState{
			ID:          a.ID(),
			Position:    b.Position,
			Velocity:    b.Velocity,
			Orientation: b.Orientation,
			Mode:        a.Mode().String(),
			Leader:      a.IsLeader(),
			Health:      w.health[a].Current(),
		})
	}
	for _, p := range w.armory.projectiles {
		if !p.Body.Alive() {
			continue
		}
		s.Projectiles = append(s.Projectiles, ProjectileState{
			Position: p.Body.Position,
			Velocity: p.Body.Velocity,
			Enemy:    p.Enemy,
		})
	}
	return s
}

// ToStruct encodes the snapshot as a protobuf Struct for actor replies.
func (s *Snapshot) ToStruct() (*structpb.Struct, error) {
	ships := make([]interface{}, 0, len(s.Ships))
	for _, sh := range s.Ships {
		ships = append(ships, map[string]interface{}{
			"id":          sh.ID,
			"position":    vec(sh.Position),
			"velocity":    vec(sh.Velocity),
			"orientation": sh.Orientation,
			"mode":        sh.Mode,
			"leader":      sh.Leader,
			"health":      sh.Health,
		})
	}
	projectiles := make([]interface{}, 0, len(s.Projectiles))
	for _, p := range s.Projectiles {
		projectiles = append(projectiles, map[string]interface{}{
			"position": vec(p.Position),
			"velocity": vec(p.Velocity),
			"enemy":    p.Enemy,
		})
	}
	fields := map[string]interface{}{
		"tick":          float64(s.Tick),
		"time":          s.Time,
		"score":         s.Score,
		"kills":         s.Kills,
		"camera":        vec(s.Camera),
		"ships":         ships,
		"projectiles":   projectiles,
		"flocks":        s.Flocks,
		"pendingFlocks": s.PendingFlocks,
		"waveComplete":  s.WaveComplete,
		"gameOver":      s.GameOver,
	}
	if s.Player != nil {
		fields["player"] = map[string]interface{}{
			"position":    vec(s.Player.Position),
			"orientation": s.Player.Orientation,
			"health":      s.Player.Health,
		}
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return st, nil
}

func vec(v geometry.Vector2D) map[string]interface{} {
	return map[string]interface{}{"x": v.X, "y": v.Y}
}
