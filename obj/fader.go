package obj

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

type fadeMode int

const (
	fadeNone fadeMode = iota
	fadeOut
	fadeIn
)

// Fader animates a full-screen fade to and from black. It implements the
// session pipeline's Fader contract; Draw overlays the current alpha.
type Fader struct {
	mode     fadeMode
	frames   int
	duration int
	overlay  *ebiten.Image
}

func NewFader(durationFrames int) *Fader {
	if durationFrames <= 0 {
		durationFrames = 30
	}
	img := ebiten.NewImage(1, 1)
	img.Fill(color.Black)
	return &Fader{duration: durationFrames, overlay: img}
}

func (f *Fader) StartFadeOut() {
	f.mode = fadeOut
	f.frames = 0
}

func (f *Fader) StartFadeIn() {
	f.mode = fadeIn
	f.frames = 0
}

// Update advances the current fade by one frame.
func (f *Fader) Update() {
	if f.mode == fadeNone {
		return
	}
	if f.frames < f.duration {
		f.frames++
	}
}

// Done reports whether the current fade has finished.
func (f *Fader) Done() bool {
	return f.mode == fadeNone || f.frames >= f.duration
}

// Alpha returns the overlay opacity for the current frame.
func (f *Fader) Alpha() float64 {
	switch f.mode {
	case fadeOut:
		return float64(f.frames) / float64(f.duration)
	case fadeIn:
		return 1 - float64(f.frames)/float64(f.duration)
	}
	return 0
}

// Draw overlays the fade on the screen.
func (f *Fader) Draw(screen *ebiten.Image) {
	alpha := f.Alpha()
	if alpha <= 0 {
		return
	}
	b := screen.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(b.Dx()), float64(b.Dy()))
	op.ColorScale.ScaleAlpha(float32(alpha))
	screen.DrawImage(f.overlay, op)
}
