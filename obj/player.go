package obj

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"golang.org/x/image/colornames"

	"github.com/milk9111/hollowmere/prefabs"
	"github.com/milk9111/hollowmere/session"
)

// Player is the session's one controllable entity. It owns a dynamic body
// in the shared space and survives scene loads until the registry tears it
// down.
type Player struct {
	space *cp.Space
	body  *cp.Body
	shape *cp.Shape
	input *Input

	spec prefabs.PlayerSpec

	health    int
	maxHealth int

	checkpointX float64
	checkpointY float64

	inputEnabled bool
	facingLeft   bool

	grounded    bool
	groundGrace int
}

const groundGraceFrames = 6

// NewPlayer spawns the player body at a world position.
func NewPlayer(space *cp.Space, input *Input, spec prefabs.PlayerSpec, x, y float64) *Player {
	w := spec.Collider.Width
	h := spec.Collider.Height
	if w <= 0 {
		w = 24
	}
	if h <= 0 {
		h = 30
	}

	body := space.AddBody(cp.NewBody(1, cp.INFINITY))
	body.SetPosition(cp.Vector{X: x, Y: y})
	shape := space.AddShape(cp.NewBox(body, w, h, 0))
	shape.SetCollisionType(collisionTypePlayer)
	shape.SetFriction(0.6)
	shape.SetElasticity(0)

	maxHealth := spec.Health
	if maxHealth <= 0 {
		maxHealth = 100
	}

	p := &Player{
		space:        space,
		body:         body,
		shape:        shape,
		input:        input,
		spec:         spec,
		health:       maxHealth,
		maxHealth:    maxHealth,
		inputEnabled: true,
	}

	// Rebinding the player/solid handler on every spawn is fine: the pair
	// maps to a single handler and the previous player is already disposed.
	handler := space.NewCollisionHandler(collisionTypePlayer, collisionTypeSolid)
	handler.PreSolveFunc = func(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
		shapeA, _ := arb.Shapes()
		n := arb.Normal()
		if shapeA != p.shape {
			n = n.Neg()
		}
		// Grounded only when the contact normal points up at the player
		// (positive Y in screen-down coordinates).
		if n.Y > 0.5 {
			p.grounded = true
			p.groundGrace = groundGraceFrames
		}
		return true
	}
	return p
}

// Update applies movement input to the body. Input is ignored while the
// respawn sequence has it disabled.
func (p *Player) Update() {
	if p.body == nil || p.input == nil || !p.inputEnabled {
		return
	}
	v := p.body.Velocity()
	v.X = float64(p.input.MoveX) * p.spec.MoveSpeed
	if p.input.MoveX < 0 {
		p.facingLeft = true
	} else if p.input.MoveX > 0 {
		p.facingLeft = false
	}
	if p.input.JumpPressed && (p.grounded || p.groundGrace > 0) {
		v.Y = -p.spec.JumpSpeed
		p.grounded = false
		p.groundGrace = 0
	}
	p.body.SetVelocity(v.X, v.Y)

	// The collision handler re-arms these during the next space step.
	p.grounded = false
	if p.groundGrace > 0 {
		p.groundGrace--
	}
}

// Draw renders the player as a filled box offset by the camera view.
func (p *Player) Draw(screen *ebiten.Image, viewX, viewY float64) {
	if p.body == nil {
		return
	}
	pos := p.body.Position()
	w := float32(p.spec.Collider.Width)
	h := float32(p.spec.Collider.Height)
	x := float32(pos.X-viewX) - w/2
	y := float32(pos.Y-viewY) - h/2
	c := colornames.Orangered
	if !p.inputEnabled {
		c = colornames.Dimgray
	}
	vector.DrawFilledRect(screen, x, y, w, h, c, false)
}

// Size returns the collider dimensions.
func (p *Player) Size() (float64, float64) {
	return p.spec.Collider.Width, p.spec.Collider.Height
}

// Position returns the body's world position.
func (p *Player) Position() (float64, float64) {
	pos := p.body.Position()
	return pos.X, pos.Y
}

// Teleport moves the player instantly. The body and shape are pulled out of
// the space around the move so the solver never reacts to the jump, then
// re-added with velocity cleared.
func (p *Player) Teleport(x, y float64) {
	p.space.RemoveShape(p.shape)
	p.space.RemoveBody(p.body)
	p.body.SetPosition(cp.Vector{X: x, Y: y})
	p.body.SetVelocityVector(cp.Vector{})
	p.body.SetAngularVelocity(0)
	p.space.AddBody(p.body)
	p.space.AddShape(p.shape)
}

// Health returns current and maximum health.
func (p *Player) Health() (int, int) {
	return p.health, p.maxHealth
}

// SetHealth clamps and sets current health.
func (p *Player) SetHealth(cur int) {
	if cur < 0 {
		cur = 0
	}
	if cur > p.maxHealth {
		cur = p.maxHealth
	}
	p.health = cur
}

// Damage lowers current health.
func (p *Player) Damage(amount int) {
	if amount <= 0 {
		return
	}
	p.SetHealth(p.health - amount)
}

// SetCheckpoint records where the player is restored to on respawn. Updated
// on spawn, not continuously.
func (p *Player) SetCheckpoint(x, y float64) {
	p.checkpointX = x
	p.checkpointY = y
}

// Checkpoint returns the recorded respawn position.
func (p *Player) Checkpoint() (float64, float64) {
	return p.checkpointX, p.checkpointY
}

// SetInputEnabled gates movement input, used while sequences run.
func (p *Player) SetInputEnabled(enabled bool) {
	p.inputEnabled = enabled
}

// InputEnabled reports whether movement input is being applied.
func (p *Player) InputEnabled() bool {
	return p.inputEnabled
}

// ApplySaveData applies the player-specific fields of a save record.
func (p *Player) ApplySaveData(rec *session.SaveRecord) {
	if rec == nil {
		return
	}
	if rec.MaxHealth > 0 {
		p.maxHealth = rec.MaxHealth
	}
	p.SetHealth(rec.Health)
}

// Dispose removes the body and shape from the space.
func (p *Player) Dispose() {
	if p.shape != nil {
		p.space.RemoveShape(p.shape)
		p.shape = nil
	}
	if p.body != nil {
		p.space.RemoveBody(p.body)
		p.body = nil
	}
}
