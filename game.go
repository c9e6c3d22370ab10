package main

import (
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"golang.org/x/image/colornames"

	"github.com/milk9111/hollowmere/common"
	"github.com/milk9111/hollowmere/encounter"
	"github.com/milk9111/hollowmere/levels"
	"github.com/milk9111/hollowmere/obj"
	"github.com/milk9111/hollowmere/prefabs"
	"github.com/milk9111/hollowmere/savefile"
	"github.com/milk9111/hollowmere/scene"
	"github.com/milk9111/hollowmere/session"
)

const (
	sceneMainMenu session.SceneID = iota
	sceneIntro
	sceneHollow
	sceneMire
)

const physicsStep = 1.0 / 60.0

type Game struct {
	frames int
	debug  bool

	input  *obj.Input
	space  *cp.Space
	walls  *obj.Walls
	scenes *scene.Manager
	orch   *session.Orchestrator
	camera *obj.Camera
	fader  *obj.Fader
	itemDB *obj.ItemDB

	titleUI *TitleUI
	watcher *prefabs.Watcher

	boss *encounter.Runtime

	startup *session.Await
	// bootSlot enters this slot as soon as the menu is up, -1 for none.
	bootSlot int

	// set at scene activation so the edge the player spawned inside doesn't
	// immediately fire again
	armEdgeCooldown bool
	edgeCooldownID  string

	deathHandled bool
}

func NewGame(saveDir string, bootSlot int, debug bool) (*Game, error) {
	g := &Game{debug: debug, bootSlot: bootSlot}

	g.input = obj.NewInput()
	g.space = obj.NewSpace()
	g.walls = obj.NewWalls(g.space)

	g.scenes = scene.NewManager(levels.FS,
		scene.Source{ID: sceneMainMenu, Name: "main_menu", File: "main_menu.json"},
		scene.Source{ID: sceneIntro, Name: "intro", File: "intro.json"},
		scene.Source{ID: sceneHollow, Name: "hollow", File: "hollow.json"},
		scene.Source{ID: sceneMire, Name: "mire", File: "mire.json"},
	)

	playerSpec, err := prefabs.LoadPlayerSpec()
	if err != nil {
		log.Printf("game: player prefab unavailable, player spawning disabled: %v", err)
	}
	itemsSpec, err := prefabs.LoadItemsSpec()
	if err != nil {
		log.Printf("game: items prefab unavailable: %v", err)
	}
	hotbarSpec, err := prefabs.LoadHotbarSpec()
	if err != nil {
		log.Printf("game: hotbar prefab unavailable: %v", err)
	}
	faderFrames := 30
	if faderSpec, err := prefabs.LoadFaderSpec(); err == nil {
		faderFrames = faderSpec.Frames
	} else {
		log.Printf("game: fader prefab unavailable, using defaults: %v", err)
	}
	zoom, smooth := 2.0, 0.15
	if camSpec, err := prefabs.LoadCameraSpec(); err == nil {
		zoom, smooth = camSpec.Zoom, camSpec.Smoothness
	} else {
		log.Printf("game: camera prefab unavailable, using defaults: %v", err)
	}

	g.fader = obj.NewFader(faderFrames)
	g.camera = obj.NewCamera(common.BaseWidth, common.BaseHeight, zoom, smooth)
	g.itemDB = obj.NewItemDB(itemsSpec)

	reg := session.NewRegistry()
	if playerSpec != nil {
		reg.RegisterPlayerFactory(func(x, y float64) session.Player {
			return obj.NewPlayer(g.space, g.input, *playerSpec, x, y)
		})
	}
	reg.RegisterFactory(session.CategoryInventory, func() session.Entity {
		return obj.NewInventory(g.itemDB)
	})
	reg.RegisterFactory(session.CategoryItemDB, func() session.Entity {
		return g.itemDB
	})
	reg.RegisterFactory(session.CategoryMoney, func() session.Entity {
		return obj.NewMoney()
	})
	reg.RegisterFactory(session.CategoryPauseMenu, func() session.Entity {
		return obj.NewPauseMenu(obj.PauseMenuCallbacks{
			OnSave: func() { _ = g.orch.SaveGameEvent(session.SaveReasonManual) },
			OnQuit: func() { _ = g.orch.QuitToMenu() },
		})
	})
	reg.RegisterFactory(session.CategoryHotbar, func() session.Entity {
		inv, _ := reg.Get(session.CategoryInventory).(*obj.Inventory)
		return obj.NewHotbar(hotbarSpec, inv, g.itemDB)
	})
	reg.SetCameraBind(func(p session.Player) {
		g.camera.Bind(func() (float64, float64) { return p.Position() })
	})

	store, err := savefile.NewStore(saveDir)
	if err != nil {
		return nil, err
	}

	maxHealth := 100
	if playerSpec != nil && playerSpec.Health > 0 {
		maxHealth = playerSpec.Health
	}
	orch, err := session.New(session.Config{
		Store:          store,
		Scenes:         g.scenes,
		Registry:       reg,
		Fader:          g.fader,
		Missions:       obj.NewMissionLog(),
		ResetEncounter: func() { g.boss.Reset() },
		MenuScene:      sceneMainMenu,
		IntroScene:     sceneIntro,
		StartScene:     sceneHollow,
		StartX:         96,
		StartY:         160,
		MaxHealth:      maxHealth,
	})
	if err != nil {
		return nil, err
	}
	g.orch = orch

	g.scenes.SubscribeActivated(g.onSceneActivated)
	g.titleUI = NewTitleUI(store, orch)

	if w, err := prefabs.NewWatcher("prefabs", "levels"); err == nil {
		g.watcher = w
	} else if debug {
		log.Printf("game: prefab watcher unavailable: %v", err)
	}

	// Boot into the main menu.
	g.startup = g.scenes.LoadSceneAsync(sceneMainMenu)
	return g, nil
}

func (g *Game) onSceneActivated(id session.SceneID) {
	sc := g.scenes.Current()
	g.walls.Rebuild(sc)
	if sc != nil {
		g.camera.SetWorldBounds(sc.Width*common.TileSize, sc.Height*common.TileSize)
	}
	g.armEdgeCooldown = true
	g.edgeCooldownID = ""
	g.deathHandled = false

	g.boss = nil
	if sc != nil && sc.BossScript != "" {
		rt, err := encounter.Load(sc.BossScript, encounter.Hooks{
			OnEvent: func(event string) { log.Printf("encounter: %s", event) },
			OnStage: func(stage string) { log.Printf("encounter: stage %s", stage) },
		})
		if err != nil {
			log.Printf("game: boss encounter for scene %d: %v", id, err)
		} else {
			g.boss = rt
		}
	}
	if id == sceneMainMenu {
		g.camera.Unbind()
		g.titleUI.Refresh()
	}
}

func (g *Game) Update() error {
	g.frames++
	g.input.Update()
	g.drainWatcher()

	if g.startup != nil && g.startup.Done() {
		if err := g.startup.Err(); err != nil {
			return fmt.Errorf("game: loading main menu: %w", err)
		}
		g.startup = nil
		if g.bootSlot >= 0 {
			_ = g.orch.LoadGame(g.bootSlot)
			g.bootSlot = -1
		}
	}

	g.orch.Update()

	switch g.scenes.ActiveScene() {
	case session.SceneNone:
		// still booting
	case sceneMainMenu:
		if !g.orch.Busy() {
			g.titleUI.Update()
		}
	case sceneIntro:
		if g.input.ConfirmPressed && !g.orch.Busy() {
			_ = g.orch.FinishIntro()
		}
	default:
		g.updateGameplay()
	}
	return nil
}

func (g *Game) updateGameplay() {
	menu, _ := g.orch.Entity(session.CategoryPauseMenu).(*obj.PauseMenu)
	if menu.Visible() {
		menu.Update()
		return
	}
	if g.input.PausePressed && !g.orch.Busy() && menu != nil {
		menu.Show()
		return
	}
	if g.input.SavePressed && !g.orch.Busy() {
		_ = g.orch.SaveGameEvent(session.SaveReasonManual)
	}

	player, _ := g.orch.Player().(*obj.Player)
	if player != nil {
		player.Update()
	}
	g.space.Step(physicsStep)
	g.camera.Update()

	if g.boss != nil {
		if !g.boss.Started() {
			if err := g.boss.Start(); err != nil {
				log.Printf("game: boss start: %v", err)
				g.boss = nil
			}
		} else if err := g.boss.Update(); err != nil {
			log.Printf("game: boss update: %v", err)
			g.boss = nil
		}
	}

	if g.debug && player != nil && g.input.DamagePressed {
		player.Damage(25)
	}

	if player != nil {
		if hp, _ := player.Health(); hp <= 0 {
			if !g.deathHandled {
				if err := g.orch.Respawn(); err == nil {
					g.deathHandled = true
				}
			}
		} else {
			g.deathHandled = false
		}
	}

	g.checkEdges(player)
}

// checkEdges detects the player crossing a scene-boundary volume and kicks
// off the edge transition. An edge the player spawned inside is locked out
// until the player leaves it once.
func (g *Game) checkEdges(player *obj.Player) {
	if player == nil || g.orch.Busy() {
		return
	}
	sc := g.scenes.Current()
	if sc == nil {
		return
	}

	px, py := player.Position()
	pw, ph := player.Size()

	inside := func(e scene.Edge) bool {
		return px-pw/2 < e.X+e.W && px+pw/2 > e.X && py-ph/2 < e.Y+e.H && py+ph/2 > e.Y
	}

	if g.armEdgeCooldown {
		g.armEdgeCooldown = false
		for _, e := range sc.Edges() {
			if inside(e) {
				g.edgeCooldownID = e.ID
				break
			}
		}
	}

	if g.edgeCooldownID != "" {
		still := false
		for _, e := range sc.Edges() {
			if e.ID == g.edgeCooldownID && inside(e) {
				still = true
				break
			}
		}
		if still {
			return
		}
		g.edgeCooldownID = ""
	}

	for _, e := range sc.Edges() {
		if !inside(e) {
			continue
		}
		if err := g.orch.LoadSceneFromEdge(e.TargetScene, e.SpawnPoint); err != nil {
			log.Printf("game: edge %s: %v", e.ID, err)
		}
		return
	}
}

func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("game: %s changed, tuning reloads on next spawn", name)
		case err := <-g.watcher.Errors:
			if err != nil {
				log.Printf("game: prefab watcher: %v", err)
			}
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.NRGBA{R: 0x16, G: 0x14, B: 0x1c, A: 0xff})

	switch g.scenes.ActiveScene() {
	case session.SceneNone:
	case sceneMainMenu:
		g.titleUI.Draw(screen)
	case sceneIntro:
		ebitenutil.DebugPrintAt(screen, "The hollow remembers you.\n\nPress Enter.", common.BaseWidth/2-80, common.BaseHeight/2-20)
	default:
		g.drawWorld(screen)
	}

	g.fader.Draw(screen)

	if g.debug {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("Frames: %d    FPS: %.2f", g.frames, ebiten.ActualFPS()))
	}
}

func (g *Game) drawWorld(screen *ebiten.Image) {
	sc := g.scenes.Current()
	if sc == nil {
		return
	}
	viewX, viewY := g.camera.ViewTopLeft()

	for _, layer := range sc.Layers {
		if len(layer.Tiles) != sc.Width*sc.Height {
			continue
		}
		for y := 0; y < sc.Height; y++ {
			for x := 0; x < sc.Width; x++ {
				if layer.Tiles[y*sc.Width+x] == 0 {
					continue
				}
				vector.DrawFilledRect(screen,
					float32(float64(x*common.TileSize)-viewX),
					float32(float64(y*common.TileSize)-viewY),
					common.TileSize, common.TileSize,
					colornames.Darkslategray, false)
			}
		}
	}

	if player, ok := g.orch.Player().(*obj.Player); ok && player != nil {
		player.Draw(screen, viewX, viewY)
	}

	g.drawHUD(screen)

	if menu, ok := g.orch.Entity(session.CategoryPauseMenu).(*obj.PauseMenu); ok {
		menu.Draw(screen)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	player, _ := g.orch.Player().(*obj.Player)
	if player == nil {
		return
	}
	hp, maxHP := player.Health()
	hud := fmt.Sprintf("HP %d/%d", hp, maxHP)
	if money, ok := g.orch.Entity(session.CategoryMoney).(*obj.Money); ok && money != nil {
		hud += fmt.Sprintf("   Shards %d", money.Balance())
	}
	if hotbar, ok := g.orch.Entity(session.CategoryHotbar).(*obj.Hotbar); ok && hotbar != nil {
		if item, count, ok := hotbar.SlotItem(hotbar.Selected()); ok {
			hud += fmt.Sprintf("   [%s x%d]", item.Name, count)
		}
	}
	ebitenutil.DebugPrintAt(screen, hud, 8, common.BaseHeight-24)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return common.BaseWidth, common.BaseHeight
}
