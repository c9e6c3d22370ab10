package main

import (
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/hollowmere/common"
	"github.com/milk9111/hollowmere/session"
)

const slotCount = 3

// TitleUI is the main-menu slot picker. Each slot button continues an
// existing save or starts a new game, which is the orchestrator's decision,
// not the menu's.
type TitleUI struct {
	ui      *ebitenui.UI
	store   session.SaveStore
	orch    *session.Orchestrator
	buttons []*widget.Button
}

func NewTitleUI(store session.SaveStore, orch *session.Orchestrator) *TitleUI {
	t := &TitleUI{store: store, orch: orch}

	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 160})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})

	goFace := ebtext.NewGoXFace(basicfont.Face7x13)
	var face ebtext.Face = goFace
	btnTextColor := &widget.ButtonTextColor{Idle: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}}

	title := widget.NewText(
		widget.TextOpts.Text("HOLLOWMERE", &face, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
	)

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(10),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 20, Bottom: 20, Left: 30, Right: 30}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(common.BaseWidth/3, common.BaseHeight/2),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionCenter, VerticalPosition: widget.AnchorLayoutPositionCenter}),
		),
	)
	panel.AddChild(title)

	for slot := 0; slot < slotCount; slot++ {
		slot := slot
		btn := widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Pressed: btnImg}),
			widget.ButtonOpts.Text(t.slotLabel(slot), &face, btnTextColor),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				t.pick(slot)
			}),
		)
		t.buttons = append(t.buttons, btn)
		panel.AddChild(btn)
	}

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	t.ui = &ebitenui.UI{Container: root}
	return t
}

func (t *TitleUI) slotLabel(slot int) string {
	if t.store.Exists(slot) {
		return fmt.Sprintf("Slot %d: Continue", slot+1)
	}
	return fmt.Sprintf("Slot %d: New Game", slot+1)
}

// Refresh re-labels the slot buttons. Called when the menu becomes active so
// a slot saved during play shows Continue.
func (t *TitleUI) Refresh() {
	for slot, btn := range t.buttons {
		if text := btn.Text(); text != nil {
			text.Label = t.slotLabel(slot)
		}
	}
}

func (t *TitleUI) pick(slot int) {
	if t.orch.Busy() {
		return
	}
	// LoadGame falls back to a new game on an empty slot.
	_ = t.orch.LoadGame(slot)
}

func (t *TitleUI) Update() {
	t.ui.Update()
}

func (t *TitleUI) Draw(screen *ebiten.Image) {
	t.ui.Draw(screen)
}
