package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Button runs OnClick once per press.
type Button struct {
	Label   string
	X, Y    float64
	W, H    float64
	clicked bool
	OnClick func()

	BGColor    color.RGBA
	HoverColor color.RGBA
}

func NewButton(width, height float64, label string, onClick func()) *Button {
	return &Button{
		Label:      label,
		W:          width,
		H:          height,
		OnClick:    onClick,
		BGColor:    color.RGBA{R: 80, G: 120, B: 180, A: 255},
		HoverColor: color.RGBA{R: 100, G: 150, B: 220, A: 255},
	}
}

func (b *Button) Update() {
	if hovered(b.X, b.Y, b.W, b.H) && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if !b.clicked && b.OnClick != nil {
			b.OnClick()
			b.clicked = true
		}
	} else {
		b.clicked = false
	}
}

func (b *Button) Draw(screen *ebiten.Image) {
	bgColor := b.BGColor
	if hovered(b.X, b.Y, b.W, b.H) {
		bgColor = b.HoverColor
	}

	vector.FillRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.W), float32(b.H),
		bgColor, true)
	vector.StrokeRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.W), float32(b.H),
		2, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
	// DebugPrint glyphs are 6x16
	ebitenutil.DebugPrintAt(screen, b.Label,
		int(b.X+(b.W-float64(6*len(b.Label)))/2), int(b.Y+(b.H-16)/2))
}

func (b *Button) Place(x, y float64) { b.X, b.Y = x, y }
func (b *Button) Height() float64    { return b.H + 6 }

func hovered(x, y, w, h float64) bool {
	mx, my := ebiten.CursorPosition()
	return float64(mx) >= x && float64(mx) <= x+w &&
		float64(my) >= y && float64(my) <= y+h
}
