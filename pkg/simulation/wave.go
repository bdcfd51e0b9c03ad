package simulation

import (
	"fmt"
	"slices"

	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/geometry"
)

// Wave spawns its flocks one after the other, each entry's delay after the
// previous spawn. It owns the flocks it spawned and pays out when they die.
type Wave struct {
	world   *World
	entries []FlockSpawn
	logger  golog.Logger

	// next is the first entry not scheduled yet, spawned the number already in flight.
	next     int
	spawned  int
	started  bool
	complete bool
	flocks   []*flock.Flock
}

var _ flock.Owner = (*Wave)(nil)

func NewWave(world *World, entries []FlockSpawn) *Wave {
	return &Wave{
		world:   world,
		entries: slices.Clone(entries),
		logger:  world.logger,
	}
}

// Start schedules the first entry. Calling it again does nothing.
func (wv *Wave) Start() {
	if wv.started {
		return
	}
	wv.started = true
	if len(wv.entries) == 0 {
		wv.finish()
		return
	}
	wv.scheduleNext()
}

// Flocks returns the flocks still flying.
func (wv *Wave) Flocks() []*flock.Flock {
	return slices.Clone(wv.flocks)
}

// Remaining is the number of entries not spawned yet.
func (wv *Wave) Remaining() int { return len(wv.entries) - wv.spawned }
func (wv *Wave) Complete() bool { return wv.complete }

func (wv *Wave) scheduleNext() {
	if wv.next >= len(wv.entries) {
		return
	}
	index := wv.next
	entry := wv.entries[index]
	wv.next++
	wv.world.Schedule(wv.world.cfg.SpawnDelay(entry.Delay), fmt.Sprintf("flock %d", index+1), func() {
		f := wv.world.SpawnFlock(geometry.Vector2D{X: entry.X, Y: entry.Y}, entry.Rotation, wv)
		wv.flocks = append(wv.flocks, f)
		wv.spawned++
		wv.scheduleNext()
	})
}

// OnFlockDestroyed pays the flock bounty, and the wave bonus when no flock is
// left flying. The wave completes once every entry has spawned and died.
func (wv *Wave) OnFlockDestroyed(f *flock.Flock) {
	i := slices.Index(wv.flocks, f)
	if i < 0 {
		return
	}
	wv.flocks = slices.Delete(wv.flocks, i, i+1)
	wv.world.AddScore(f.Bounty())
	if len(wv.flocks) != 0 {
		return
	}
	wv.world.AddScore(wv.world.cfg.WaveBonus)
	if wv.spawned >= len(wv.entries) {
		wv.finish()
	}
}

func (wv *Wave) finish() {
	if wv.complete {
		return
	}
	wv.complete = true
	wv.logger.Infof("🏁 wave complete, score %d", wv.world.Score())
}
