package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Widget is anything a Panel can stack.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	Place(x, y float64)
	Height() float64
}

// Panel stacks its widgets vertically under a title and can be folded away.
type Panel struct {
	Title   string
	X, Y    float64
	Width   float64
	Widgets []Widget
	Hidden  bool

	BGColor     color.RGBA
	BorderColor color.RGBA
}

func NewPanel(title string, x, y, width float64) *Panel {
	return &Panel{
		Title:       title,
		X:           x,
		Y:           y,
		Width:       width,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 200},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

func (p *Panel) Add(w Widget) {
	p.Widgets = append(p.Widgets, w)
	p.layout()
}

func (p *Panel) layout() {
	y := p.Y + 25
	for _, w := range p.Widgets {
		w.Place(p.X+10, y)
		y += w.Height()
	}
}

// Contains reports whether the cursor is over the panel.
func (p *Panel) Contains() bool {
	return !p.Hidden && hovered(p.X, p.Y, p.Width, p.height())
}

func (p *Panel) height() float64 {
	h := 30.0
	for _, w := range p.Widgets {
		h += w.Height()
	}
	return h
}

func (p *Panel) Update() {
	if p.Hidden {
		return
	}
	for _, w := range p.Widgets {
		w.Update()
	}
}

func (p *Panel) Draw(screen *ebiten.Image) {
	if p.Hidden {
		return
	}
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.height()),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.height()),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	for _, w := range p.Widgets {
		w.Draw(screen)
	}
}
