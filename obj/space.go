package obj

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/hollowmere/common"
	"github.com/milk9111/hollowmere/scene"
)

const (
	collisionTypePlayer cp.CollisionType = iota + 1
	collisionTypeSolid
)

// NewSpace builds the shared physics space. One space lives for the whole
// session; scene geometry is swapped in and out of it by Walls.
func NewSpace() *cp.Space {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: common.Gravity})
	return space
}

// Walls owns the static scene geometry currently installed in the space.
type Walls struct {
	space  *cp.Space
	shapes []*cp.Shape
}

func NewWalls(space *cp.Space) *Walls {
	return &Walls{space: space}
}

// Rebuild replaces the installed geometry with the given scene's solid
// tiles. Horizontal runs of solid tiles merge into single boxes so the
// solver sees fewer shapes.
func (w *Walls) Rebuild(sc *scene.Scene) {
	for _, shape := range w.shapes {
		w.space.RemoveShape(shape)
	}
	w.shapes = w.shapes[:0]
	if sc == nil {
		return
	}

	for _, layer := range sc.Layers {
		if !layer.Physics || len(layer.Tiles) != sc.Width*sc.Height {
			continue
		}
		for y := 0; y < sc.Height; y++ {
			x := 0
			for x < sc.Width {
				if layer.Tiles[y*sc.Width+x] == 0 {
					x++
					continue
				}
				run := x
				for run < sc.Width && layer.Tiles[y*sc.Width+run] != 0 {
					run++
				}
				x0 := float64(x * common.TileSize)
				y0 := float64(y * common.TileSize)
				x1 := float64(run * common.TileSize)
				y1 := y0 + common.TileSize
				shape := cp.NewBox2(w.space.StaticBody, cp.BB{L: x0, B: y0, R: x1, T: y1}, 0)
				shape.SetCollisionType(collisionTypeSolid)
				shape.SetFriction(0.9)
				w.space.AddShape(shape)
				w.shapes = append(w.shapes, shape)
				x = run
			}
		}
	}
}
