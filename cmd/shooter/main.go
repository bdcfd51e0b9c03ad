package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/simulation"
)

func main() {
	configFile := flag.String("config", "configs/default.yaml", "configuration file (.json, .yaml or .yml)")
	schemaFile := flag.String("schema", "configs/config.schema.json", "JSON schema the configuration is validated against")
	quiet := flag.Bool("quiet", false, "discard the simulation logs")
	headless := flag.Duration("headless", 0, "run this much simulated time without a window, then print the result")
	flag.Parse()

	cfg, err := simulation.LoadConfig(*configFile, *schemaFile)
	if err != nil {
		log.Fatal(err)
	}

	logger := golog.DefaultLogger
	if *quiet {
		logger = golog.DiscardLogger
	}

	ctx := context.Background()
	system, err := actor.NewActorSystem("FlockShooter",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		log.Fatal(err)
	}
	if err := system.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer system.Stop(ctx)

	if *headless > 0 {
		if err := runHeadless(ctx, system, cfg, *headless); err != nil {
			log.Fatal(err)
		}
		return
	}

	ebiten.SetWindowSize(int(cfg.WorldWidth*cfg.Scale), int(cfg.WorldHeight*cfg.Scale))
	ebiten.SetWindowTitle("Flock Shooter")
	ebiten.SetTPS(cfg.TickRate)

	game := GetNewGame(ctx, cfg, system)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}

// runHeadless steps the arena as fast as the mailbox allows and prints the
// final snapshot.
func runHeadless(ctx context.Context, system actor.ActorSystem, cfg *simulation.Config, length time.Duration) error {
	pid, err := system.Spawn(ctx, "arena", simulation.NewArenaActor(cfg, nil))
	if err != nil {
		return fmt.Errorf("failed to spawn arena: %w", err)
	}

	step := durationpb.New(cfg.TickInterval())
	for elapsed := time.Duration(0); elapsed < length; elapsed += cfg.TickInterval() {
		if err := actor.Tell(ctx, pid, step); err != nil {
			return fmt.Errorf("failed to step arena: %w", err)
		}
	}

	reply, err := actor.Ask(ctx, pid, &emptypb.Empty{}, 30*time.Second)
	if err != nil {
		return fmt.Errorf("failed to read arena snapshot: %w", err)
	}
	snapshot, ok := reply.(*structpb.Struct)
	if !ok {
		return fmt.Errorf("unexpected snapshot reply %T", reply)
	}
	f := snapshot.GetFields()
	fmt.Printf("after %s: score %.0f, kills %.0f, ships %d, flocks %.0f (+%.0f pending), wave complete %t, game over %t\n",
		length,
		f["score"].GetNumberValue(),
		f["kills"].GetNumberValue(),
		len(f["ships"].GetListValue().GetValues()),
		f["flocks"].GetNumberValue(),
		f["pendingFlocks"].GetNumberValue(),
		f["waveComplete"].GetBoolValue(),
		f["gameOver"].GetBoolValue())
	return nil
}
