package obj

import (
	"math"

	"github.com/milk9111/hollowmere/common"
)

// Camera smoothly follows a bound world-space target. Binding is re-done
// after every player spawn; with no target the camera holds position.
type Camera struct {
	PosX float64
	PosY float64

	screenW int
	screenH int
	zoom    float64
	smooth  float64

	// world bounds in pixels (0 means unbounded)
	worldW float64
	worldH float64

	target func() (float64, float64)
}

// NewCamera creates a camera with the given logical screen size.
func NewCamera(screenW, screenH int, zoom, smooth float64) *Camera {
	if zoom <= 0 {
		zoom = 1
	}
	return &Camera{
		screenW: screenW,
		screenH: screenH,
		zoom:    zoom,
		smooth:  smooth,
		PosX:    float64(screenW) / 2.0,
		PosY:    float64(screenH) / 2.0,
	}
}

// Bind sets the follow target and snaps to it immediately.
func (c *Camera) Bind(target func() (float64, float64)) {
	c.target = target
	if target != nil {
		c.PosX, c.PosY = target()
	}
}

// Unbind clears the follow target.
func (c *Camera) Unbind() {
	c.target = nil
}

// SetWorldBounds sets the world pixel dimensions for clamping.
func (c *Camera) SetWorldBounds(w, h int) {
	c.worldW = float64(w)
	c.worldH = float64(h)
}

// Zoom returns the current camera zoom.
func (c *Camera) Zoom() float64 {
	return c.zoom
}

// ViewTopLeft returns the world-space top-left of the current view.
func (c *Camera) ViewTopLeft() (float64, float64) {
	viewW := float64(c.screenW) / c.zoom
	viewH := float64(c.screenH) / c.zoom
	return c.PosX - viewW/2.0, c.PosY - viewH/2.0
}

// Update moves the camera toward the bound target. Call from the fixed-rate
// update loop to get consistent smoothing.
func (c *Camera) Update() {
	if c.target == nil {
		return
	}
	tx, ty := c.target()
	if c.smooth <= 0 {
		c.PosX = tx
		c.PosY = ty
	} else {
		c.PosX += (tx - c.PosX) * c.smooth
		c.PosY += (ty - c.PosY) * c.smooth
	}

	// snap to 1/zoom grid so source texels align to integer screen pixels
	c.PosX = math.Round(c.PosX*c.zoom) / c.zoom
	c.PosY = math.Round(c.PosY*c.zoom) / c.zoom

	viewW := float64(c.screenW) / c.zoom
	viewH := float64(c.screenH) / c.zoom
	if c.worldW > 0 {
		c.PosX = common.Clamp(c.PosX, viewW/2, math.Max(viewW/2, c.worldW-viewW/2))
	}
	if c.worldH > 0 {
		c.PosY = common.Clamp(c.PosY, viewH/2, math.Max(viewH/2, c.worldH-viewH/2))
	}
}
