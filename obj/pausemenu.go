package obj

import (
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/hollowmere/common"
)

// PauseMenuCallbacks are invoked by the pause menu buttons.
type PauseMenuCallbacks struct {
	OnResume func()
	OnSave   func()
	OnQuit   func()
}

// PauseMenu is the in-game pause overlay. The registry owns it like any
// other singleton; it stays hidden until Show.
type PauseMenu struct {
	ui      *ebitenui.UI
	visible bool
}

// NewPauseMenu builds a centered menu with Resume, Save, and Quit buttons.
// Buttons use colored nine-slices and the built-in basic font so no theme
// assets need to load.
func NewPauseMenu(cb PauseMenuCallbacks) *PauseMenu {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 200})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})

	goFace := ebtext.NewGoXFace(basicfont.Face7x13)
	var face ebtext.Face = goFace

	btnTextColor := &widget.ButtonTextColor{Idle: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}}

	title := widget.NewText(
		widget.TextOpts.Text("Paused", &face, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
	)

	m := &PauseMenu{}

	button := func(label string, onClick func()) *widget.Button {
		return widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Pressed: btnImg}),
			widget.ButtonOpts.Text(label, &face, btnTextColor),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				if onClick != nil {
					onClick()
				}
			}),
		)
	}

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(10),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 20, Bottom: 20, Left: 30, Right: 30}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(common.BaseWidth/2, common.BaseHeight/2),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionCenter, VerticalPosition: widget.AnchorLayoutPositionCenter}),
		),
	)
	panel.AddChild(title)
	panel.AddChild(button("Resume", func() {
		m.Hide()
		if cb.OnResume != nil {
			cb.OnResume()
		}
	}))
	panel.AddChild(button("Save", cb.OnSave))
	panel.AddChild(button("Quit to Menu", func() {
		m.Hide()
		if cb.OnQuit != nil {
			cb.OnQuit()
		}
	}))

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	m.ui = &ebitenui.UI{Container: root}
	return m
}

func (m *PauseMenu) Show() { m.visible = true }
func (m *PauseMenu) Hide() { m.visible = false }

func (m *PauseMenu) Visible() bool {
	return m != nil && m.visible
}

// Update drives the UI while visible.
func (m *PauseMenu) Update() {
	if m.visible {
		m.ui.Update()
	}
}

// Draw renders the menu while visible.
func (m *PauseMenu) Draw(screen *ebiten.Image) {
	if m.visible {
		m.ui.Draw(screen)
	}
}

func (m *PauseMenu) Dispose() {
	m.visible = false
	m.ui = nil
}
