package main

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tochemey/goakt/v3/actor"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flock-shooter/pkg/ui"
)

// Pre-rendered sprites for fast batched drawing
var (
	whiteImage    = ebiten.NewImage(3, 3)
	enemySprite   *ebiten.Image
	playerSprite  *ebiten.Image
	background    = color.RGBA{R: 10, G: 10, B: 30, A: 255}
	enemyMissile  = color.RGBA{R: 255, G: 100, B: 50, A: 255}
	playerMissile = color.RGBA{R: 0, G: 255, B: 255, A: 255}
)

var modeColors = map[string]color.RGBA{
	"Wander": {R: 150, G: 150, B: 150, A: 120},
	"Seek":   {R: 255, G: 50, B: 50, A: 120},
	"Flee":   {R: 255, G: 200, B: 0, A: 120},
	"Flock":  {R: 50, G: 255, B: 50, A: 120},
}

type Game struct {
	ctx        context.Context
	System     actor.ActorSystem
	arenaPID   *actor.PID
	snapshotCh chan *simulation.Snapshot
	lastState  *simulation.Snapshot
	cfg        *simulation.Config
	tick       *durationpb.Duration

	// overlays, toggled from the keyboard
	showModes  bool
	showRanges bool
	paused     bool
	panel      *ui.Panel

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

func GetNewGame(ctx context.Context, cfg *simulation.Config, system actor.ActorSystem) *Game {
	// 1. Create Channels for communication
	snapshotCh := make(chan *simulation.Snapshot, 10) // Buffer to avoid blocking

	// 2. Spawn the Arena
	arenaPID, err := system.Spawn(ctx, "arena", simulation.NewArenaActor(cfg, snapshotCh))
	if err != nil {
		panic(fmt.Sprintf("Failed to spawn arena: %v", err))
	}

	g := &Game{
		ctx:        ctx,
		System:     system,
		arenaPID:   arenaPID,
		snapshotCh: snapshotCh,
		lastState:  &simulation.Snapshot{}, // Avoid nil pointer
		cfg:        cfg,
		tick:       durationpb.New(cfg.TickInterval()),
		showModes:  true,
	}

	g.panel = ui.NewPanel("Overlays [H]", 10, cfg.WorldHeight*cfg.Scale-150, 160)
	g.panel.Add(ui.NewCheckbox("Modes", &g.showModes))
	g.panel.Add(ui.NewCheckbox("Ranges", &g.showRanges))
	g.panel.Add(ui.NewCheckbox("Paused", &g.paused))
	g.panel.Add(ui.NewButton(140, 22, "Dump state", g.dumpState))
	return g
}

// dumpState asks the arena for its state and logs it as JSON.
func (g *Game) dumpState() {
	reply, err := actor.Ask(g.ctx, g.arenaPID, &emptypb.Empty{}, time.Second)
	if err != nil {
		log.Printf("failed to read arena state: %v", err)
		return
	}
	out, err := protojson.Marshal(reply)
	if err != nil {
		log.Printf("failed to encode arena state: %v", err)
		return
	}
	log.Println(string(out))
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	// 1. Overlays
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.showModes = !g.showModes
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.showRanges = !g.showRanges
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.panel.Hidden = !g.panel.Hidden
	}
	g.panel.Update()

	// 2. Retrieve Latest State (Non-blocking)
	select {
	case snap := <-g.snapshotCh:
		g.lastState = snap
	default:
		// Use previous state if new one isn't ready
	}

	// 3. Freeze once the game is decided
	if g.paused || g.lastState.GameOver || g.lastState.WaveComplete {
		return nil
	}
	if !g.cfg.Player.Autopilot {
		_ = actor.Tell(g.ctx, g.arenaPID, simulation.InputToStruct(readInput()))
	}
	_ = actor.Tell(g.ctx, g.arenaPID, g.tick)
	return nil
}

func readInput() simulation.PlayerInput {
	var in simulation.PlayerInput
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		in.Thrust++
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		in.Thrust--
	}
	// positive orientation turns the nose left
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		in.Turn++
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		in.Turn--
	}
	in.Fire = ebiten.IsKeyPressed(ebiten.KeySpace)
	return in
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()
	screen.Fill(background)
	s := g.lastState

	// 1. Ships
	for _, ship := range s.Ships {
		x, y := g.toScreen(ship.Position)
		if g.showModes {
			if clr, ok := modeColors[ship.Mode]; ok {
				vector.StrokeCircle(screen, x, y, float32(g.cfg.CollisionRadius*g.cfg.Scale)+3, 1, clr, true)
			}
		}
		if g.showRanges && ship.Leader {
			vector.StrokeCircle(screen, x, y, float32(g.cfg.Leader.AttackRange*g.cfg.Scale), 1,
				color.RGBA{R: 255, G: 50, B: 50, A: 60}, true)
		}
		drawSprite(screen, enemySprite, x, y, ship.Orientation)
	}

	// 2. Missiles
	for _, p := range s.Projectiles {
		x, y := g.toScreen(p.Position)
		clr := playerMissile
		if p.Enemy {
			clr = enemyMissile
		}
		vector.FillCircle(screen, x, y, float32(simulation.ProjectileRadius*g.cfg.Scale)+1, clr, true)
	}

	// 3. Player
	if s.Player != nil {
		x, y := g.toScreen(s.Player.Position)
		drawSprite(screen, playerSprite, x, y, s.Player.Orientation)
		if g.showRanges {
			drawHeading(screen, x, y, s.Player.Orientation, float32(g.cfg.Player.AttackRange*g.cfg.Scale))
		}
	}

	// 4. HUD
	g.drawStatsBar(screen)
	g.panel.Draw(screen)
	msg := fmt.Sprintf("Score: %d  Kills: %d\nFlocks: %d (+%d)\nTime: %.1fs",
		s.Score, s.Kills, s.Flocks, s.PendingFlocks, s.Time)
	ebitenutil.DebugPrintAt(screen, msg, 10, 10)

	switch {
	case s.GameOver:
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("GAME OVER\nScore: %d", s.Score),
			int(g.cfg.WorldWidth*g.cfg.Scale/2-40), int(g.cfg.WorldHeight*g.cfg.Scale/2))
	case s.WaveComplete:
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("WAVE CLEARED\nScore: %d", s.Score),
			int(g.cfg.WorldWidth*g.cfg.Scale/2-40), int(g.cfg.WorldHeight*g.cfg.Scale/2))
	}

	// Display performance stats on the right side
	perf := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\n\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(), ebiten.ActualTPS(), g.updateAvg, g.drawAvg)
	ebitenutil.DebugPrintAt(screen, perf, int(g.cfg.WorldWidth*g.cfg.Scale)-150, 50)
}

// drawStatsBar shows the player health in the top right corner.
func (g *Game) drawStatsBar(screen *ebiten.Image) {
	health := 0.0
	if g.lastState.Player != nil {
		health = g.lastState.Player.Health
	}
	ratio := float32(0)
	if g.cfg.MaxHealth > 0 {
		ratio = float32(math.Max(0, math.Min(1, health/g.cfg.MaxHealth)))
	}

	barWidth := float32(200.0)
	barHeight := float32(20.0)
	x := float32(screen.Bounds().Dx()) - barWidth - 10
	y := float32(10.0)

	vector.FillRect(screen, x, y, barWidth*ratio, barHeight, color.RGBA{R: 50, G: 200, B: 50, A: 255}, true)
	vector.FillRect(screen, x+barWidth*ratio, y, barWidth*(1-ratio), barHeight, color.RGBA{R: 120, G: 30, B: 30, A: 255}, true)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%.0f", math.Floor(health)), int(x), int(y+barHeight+5))
}

func (g *Game) Layout(w, h int) (int, int) {
	return int(g.cfg.WorldWidth * g.cfg.Scale), int(g.cfg.WorldHeight * g.cfg.Scale)
}

// toScreen maps world units, y up and centred on the camera, to pixels.
func (g *Game) toScreen(p geometry.Vector2D) (float32, float32) {
	rel := p.Sub(g.lastState.Camera).Mul(g.cfg.Scale)
	return float32(g.cfg.WorldWidth*g.cfg.Scale/2 + rel.X), float32(g.cfg.WorldHeight*g.cfg.Scale/2 - rel.Y)
}

// drawSprite draws an up-facing sprite centred on (x, y). Orientations turn
// counterclockwise on screen, GeoM rotations clockwise.
func drawSprite(screen, sprite *ebiten.Image, x, y float32, orientation float64) {
	op := &ebiten.DrawImageOptions{}
	w, h := sprite.Bounds().Dx(), sprite.Bounds().Dy()
	op.GeoM.Translate(-float64(w)/2, -float64(h)/2)
	op.GeoM.Rotate(-orientation * math.Pi / 180)
	op.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(sprite, op)
}

// drawHeading draws a thin triangle along the nose, as long as the attack range.
func drawHeading(screen *ebiten.Image, x, y float32, orientation float64, length float32) {
	heading := geometry.FromHeading(orientation)
	side := geometry.FromHeading(orientation + 90).Mul(2)
	tipX, tipY := x+length*float32(heading.X), y-length*float32(heading.Y)

	vertices := []ebiten.Vertex{
		{DstX: tipX, DstY: tipY, SrcX: 1, SrcY: 1, ColorR: 0, ColorG: 1, ColorB: 1, ColorA: 0.3},
		{DstX: x + float32(side.X), DstY: y - float32(side.Y), SrcX: 1, SrcY: 1, ColorR: 0, ColorG: 1, ColorB: 1, ColorA: 0.3},
		{DstX: x - float32(side.X), DstY: y + float32(side.Y), SrcX: 1, SrcY: 1, ColorR: 0, ColorG: 1, ColorB: 1, ColorA: 0.3},
	}
	screen.DrawTriangles(vertices, []uint16{0, 1, 2}, whiteImage, &ebiten.DrawTrianglesOptions{})
}

func init() {
	whiteImage.Fill(color.White)

	// Enemy raider, nose up. R hull, D dark plating, Y cockpit, O engines.
	enemySprite = generateSprite([]string{
		"......RR......",
		".....RYYR.....",
		"....RRYYRR....",
		"R...RDRRDR...R",
		"RR.RRDRRDRR.RR",
		"RRRRRRRRRRRRRR",
		".DRR.RRRR.RRD.",
		"..D..O..O..D..",
	}, map[rune]color.RGBA{
		'R': {R: 200, G: 40, B: 60, A: 255},
		'D': {R: 110, G: 20, B: 40, A: 255},
		'Y': {R: 255, G: 220, B: 80, A: 255},
		'O': {R: 255, G: 140, B: 0, A: 220},
	})

	// Player interceptor. C canopy, B hull, W wing edges, F exhaust.
	playerSprite = generateSprite([]string{
		"......C......",
		".....CCC.....",
		".....BCB.....",
		"....BBBBB....",
		"W..BBBBBBB..W",
		"WBBBBBBBBBBBW",
		"W...BB.BB...W",
		".....F.F.....",
	}, map[rune]color.RGBA{
		'C': {R: 160, G: 255, B: 255, A: 255},
		'B': {R: 30, G: 110, B: 240, A: 255},
		'W': {R: 220, G: 230, B: 255, A: 255},
		'F': {R: 255, G: 120, B: 20, A: 200},
	})
}

// generateSprite converts an ASCII grid into an Ebiten image
func generateSprite(design []string, palette map[rune]color.RGBA) *ebiten.Image {
	h := len(design)
	w := 0
	for _, row := range design {
		w = max(w, len(row))
	}
	img := ebiten.NewImage(w, h)
	for y, row := range design {
		for x, char := range row {
			if col, ok := palette[char]; ok {
				img.Set(x, y, col)
			}
		}
	}
	return img
}
