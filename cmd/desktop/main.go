// Command desktop runs the simulation in an ebiten window.
//
// Controls:
//
//	Mouse Click  - Spawn a zombie at the cursor
//	P / Space    - Toggle pause
//	1            - Buy zombie speed upgrade
//	2            - Buy zombie capacity upgrade
//	Tab          - Cycle to the next unlocked area
//	C            - Clear all zombies
//	Q / Escape   - Quit
package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"soul-harvest/internal/audio"
	"soul-harvest/internal/config"
	"soul-harvest/internal/economy"
	"soul-harvest/internal/game"
	"soul-harvest/internal/persist"
	"soul-harvest/internal/render"
)

var errQuit = errors.New("quit requested")

var (
	background  = color.RGBA{12, 12, 28, 255}
	zombieBody  = color.RGBA{76, 175, 80, 255}
	zombieEye   = color.RGBA{255, 62, 62, 255}
	healthBack  = color.RGBA{60, 0, 0, 255}
	healthFront = color.RGBA{220, 40, 40, 255}
	pauseShade  = color.RGBA{0, 0, 0, 140}
)

// desktopGame implements ebiten.Game. ebiten calls Update on one goroutine,
// so the engine's direct control methods are safe to use here.
type desktopGame struct {
	engine  *game.Engine
	economy *economy.Economy
	sound   *audio.Player
	start   time.Time
	status  string
	width   int
	height  int
}

func (g *desktopGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return errQuit
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if g.engine.TogglePause() {
			g.status = "Paused"
		} else {
			g.status = "Resumed"
		}
	}

	if !g.engine.Paused() {
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			x, y := ebiten.CursorPosition()
			if !g.engine.SpawnZombie(game.Vector2{X: float64(x), Y: float64(y)}) {
				g.status = "Zombie limit reached"
				g.sound.Play(audio.CueReject)
			}
		}
		if inpututil.IsKeyJustPressed(ebiten.Key1) {
			g.buy(economy.UpgradeZombieSpeed)
		}
		if inpututil.IsKeyJustPressed(ebiten.Key2) {
			g.buy(economy.UpgradeZombieCapacity)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
			g.nextArea()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyC) {
			g.status = fmt.Sprintf("Cleared %d zombies", g.engine.ClearZombies())
		}
	}

	g.engine.Frame(time.Since(g.start))
	g.sound.Observe(g.engine.Snapshot())
	return nil
}

func (g *desktopGame) buy(kind string) {
	level, err := g.engine.PurchaseUpgrade(kind)
	if err != nil {
		g.status = fmt.Sprintf("%s: %v", kind, err)
		g.sound.Play(audio.CueReject)
		return
	}
	g.status = fmt.Sprintf("%s -> level %d", kind, level)
}

// nextArea selects the next unlocked area, wrapping to the first.
func (g *desktopGame) nextArea() {
	areas := g.economy.AreaTable()
	all := areas.All()
	if len(all) == 0 {
		return
	}
	current := areas.CurrentArea().ID
	idx := 0
	for i, a := range all {
		if a.ID == current {
			idx = i
			break
		}
	}
	for n := 1; n <= len(all); n++ {
		next := all[(idx+n)%len(all)]
		if next.ID == current {
			return
		}
		if err := g.engine.SelectArea(next.ID); err == nil {
			g.status = "Area: " + next.Name
			return
		}
	}
}

func (g *desktopGame) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	snap := g.engine.Snapshot()
	if snap == nil {
		return
	}

	for _, w := range snap.Walkers {
		r := float32(w.Size / 2)
		vector.DrawFilledCircle(screen, float32(w.X), float32(w.Y), r, render.ParseColor(w.Color), true)
		if w.MaxHealth > 0 && w.Health < w.MaxHealth {
			bx, by := float32(w.X)-r, float32(w.Y)-r-5
			vector.DrawFilledRect(screen, bx, by, 2*r, 3, healthBack, false)
			vector.DrawFilledRect(screen, bx, by, 2*r*float32(w.Health/w.MaxHealth), 3, healthFront, false)
		}
	}

	for _, z := range snap.Zombies {
		s := float32(z.Size)
		x, y := float32(z.X)-s/2, float32(z.Y)-s/2
		vector.DrawFilledRect(screen, x, y, s, s, zombieBody, true)
		vector.DrawFilledCircle(screen, x+s*0.3, y+s*0.35, s*0.1, zombieEye, true)
		vector.DrawFilledCircle(screen, x+s*0.7, y+s*0.35, s*0.1, zombieEye, true)
	}

	for _, p := range snap.Particles {
		c := render.ParseColor(p.Color)
		a := p.Alpha
		if a < 0 {
			a = 0
		} else if a > 1 {
			a = 1
		}
		c.A = uint8(a * 255)
		vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), float32(p.Size/2), premultiply(c), true)
	}

	if snap.Paused {
		vector.DrawFilledRect(screen, 0, 0, float32(g.width), float32(g.height), pauseShade, false)
	}

	eco := snap.Economy
	hud := fmt.Sprintf("Souls: %.0f  Defeated: %d  Area: %s\nZombies: %d/%d  Speed x%.1f\n[1] speed %.0f  [2] capacity %.0f\nFPS %.0f (%s)",
		eco.Souls, eco.WalkersDefeated, eco.AreaName,
		len(snap.Zombies), eco.MaxZombies, eco.SpeedMultiplier,
		eco.NextCosts[economy.UpgradeZombieSpeed], eco.NextCosts[economy.UpgradeZombieCapacity],
		snap.Stats.Performance.FPS, snap.Stats.Performance.LevelName)
	if snap.Paused {
		hud += "\nPAUSED"
	}
	if g.status != "" {
		hud += "\n" + g.status
	}
	ebitenutil.DebugPrint(screen, hud)
}

// premultiply converts straight alpha to the premultiplied form ebiten expects.
func premultiply(c color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8(uint16(c.R) * uint16(c.A) / 255),
		G: uint8(uint16(c.G) * uint16(c.A) / 255),
		B: uint8(uint16(c.B) * uint16(c.A) / 255),
		A: c.A,
	}
}

func (g *desktopGame) Layout(int, int) (int, int) {
	return g.width, g.height
}

func main() {
	if path, ok := config.LoadDotEnv("../.env", ".env"); ok {
		log.Printf("✅ Loaded environment from %s", path)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Config: %v", err)
	}

	eco, err := economy.New(cfg.Upgrades, cfg.Areas)
	if err != nil {
		log.Fatalf("❌ Economy: %v", err)
	}
	store := persist.Open(cfg.Persistence)
	if _, err := store.RestoreInto(eco); err != nil {
		log.Printf("⚠️ Ignoring unreadable save: %v", err)
	}

	engine, err := game.NewEngine(cfg, eco)
	if err != nil {
		log.Fatalf("❌ Engine: %v", err)
	}

	autosaver := persist.NewAutosaver(store, engine, cfg.Persistence.AutosaveInterval)
	autosaver.Start(context.Background())
	defer autosaver.Stop()

	sound := audio.Open(cfg.Audio)
	defer sound.Close()

	g := &desktopGame{
		engine:  engine,
		economy: eco,
		sound:   sound,
		start:   time.Now(),
		width:   int(cfg.World.Width),
		height:  int(cfg.World.Height),
	}

	ebiten.SetWindowSize(g.width, g.height)
	ebiten.SetWindowTitle("Soul Harvest")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Loop.FrameRate)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, errQuit) {
		log.Printf("❌ %v", err)
	}
	log.Println("👋 Goodbye!")
}
