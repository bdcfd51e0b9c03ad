package simulation

import (
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/geometry"
)

// ArenaActor hosts a World inside the actor system. Its mailbox serialises
// every access to the world.
//
// Messages:
//   - *durationpb.Duration steps the world by that much (zero means one tick)
//   - *structpb.Struct sets the manual controls: thrust, turn, fire
//   - *emptypb.Empty asks for a snapshot, answered with a *structpb.Struct
type ArenaActor struct {
	cfg        *Config
	world      *World
	snapshotCh chan<- *Snapshot

	// --- Benchmark Stats ---
	tickCount   int
	lastLogTime time.Time
}

// NewArenaActor creates the arena. snapshotCh may be nil; when set, a snapshot
// is offered after every step and dropped if the reader is busy.
func NewArenaActor(cfg *Config, snapshotCh chan<- *Snapshot) *ArenaActor {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &ArenaActor{
		cfg:         cfg,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

// PreStart builds the world, so it is ready before the first message arrives.
func (a *ArenaActor) PreStart(ctx *actor.Context) error {
	logger := ctx.ActorSystem().Logger()
	a.world = NewWorld(a.cfg, WithLogger(logger))
	a.world.SpawnPlayer(geometry.Vector2D{X: a.cfg.Player.X, Y: a.cfg.Player.Y})
	a.world.StartWave()
	logger.Infof("Arena is ready: %d flock(s) in the wave", len(a.cfg.Wave))
	return nil
}

func (a *ArenaActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Infof("%s started", ctx.Self().Name())

	// 1. The Main Simulation Step (Driven by Game Loop)
	case *durationpb.Duration:
		dt := msg.AsDuration().Seconds()
		if dt <= 0 {
			dt = a.cfg.TickInterval().Seconds()
		}
		a.world.Step(dt)
		a.logBenchmarks(ctx)
		a.pushSnapshot()

	// 2. Manual controls from the viewer
	case *structpb.Struct:
		a.world.SetInput(inputFromStruct(msg))

	// 3. Snapshot request
	case *emptypb.Empty:
		reply, err := a.world.Snapshot().ToStruct()
		if err != nil {
			ctx.Err(err)
			return
		}
		ctx.Response(reply)

	default:
		ctx.Unhandled()
	}
}

func (a *ArenaActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("Arena is shutdown... final score %d", a.world.Score())
	return nil
}

func (a *ArenaActor) logBenchmarks(ctx *actor.ReceiveContext) {
	a.tickCount++
	if time.Since(a.lastLogTime) >= time.Second {
		ctx.Logger().Infof("📊 TICK RATE: %d/sec | Ships: %d | Bodies: %d | Score: %d",
			a.tickCount, len(a.world.agents), a.world.registry.Len(), a.world.score)
		a.tickCount = 0
		a.lastLogTime = time.Now()
	}
}

func (a *ArenaActor) pushSnapshot() {
	if a.snapshotCh == nil {
		return
	}
	select {
	case a.snapshotCh <- a.world.Snapshot():
	default:
		// UI busy, skip frame
	}
}

// InputToStruct encodes manual controls for the arena mailbox.
func InputToStruct(in PlayerInput) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"thrust": structpb.NewNumberValue(in.Thrust),
		"turn":   structpb.NewNumberValue(in.Turn),
		"fire":   structpb.NewBoolValue(in.Fire),
	}}
}

func inputFromStruct(s *structpb.Struct) PlayerInput {
	f := s.GetFields()
	return PlayerInput{
		Thrust: f["thrust"].GetNumberValue(),
		Turn:   f["turn"].GetNumberValue(),
		Fire:   f["fire"].GetBoolValue(),
	}
}
