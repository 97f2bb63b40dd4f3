// Command terminal runs the simulation in a terminal with tcell.
//
// Controls:
//
//	Arrows / Mouse  - Move the cursor (click spawns)
//	z               - Spawn a zombie at the cursor
//	x               - Clear all zombies
//	u               - Buy zombie speed upgrade
//	c               - Buy zombie capacity upgrade
//	a               - Cycle to the next unlocked area
//	p / Space       - Toggle pause
//	q / Escape      - Quit
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"soul-harvest/internal/audio"
	"soul-harvest/internal/config"
	"soul-harvest/internal/economy"
	"soul-harvest/internal/game"
	"soul-harvest/internal/persist"
)

// session owns the engine. Every engine call happens on the run loop's
// goroutine.
type session struct {
	screen  tcell.Screen
	engine  *game.Engine
	economy *economy.Economy
	sound   *audio.Player
	view    view

	cursorX, cursorY int
	status           string
	mouseDown        bool
}

func (s *session) handleKey(ev *tcell.EventKey) (quit bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		s.moveCursor(0, -1)
	case tcell.KeyDown:
		s.moveCursor(0, 1)
	case tcell.KeyLeft:
		s.moveCursor(-1, 0)
	case tcell.KeyRight:
		s.moveCursor(1, 0)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'p', ' ':
			if s.engine.TogglePause() {
				s.status = "Paused"
			} else {
				s.status = "Resumed"
			}
		case 'z':
			s.spawn()
		case 'x':
			if s.engine.Paused() {
				s.reject("Paused")
				return false
			}
			s.status = fmt.Sprintf("Cleared %d zombies", s.engine.ClearZombies())
		case 'u':
			s.buy(economy.UpgradeZombieSpeed)
		case 'c':
			s.buy(economy.UpgradeZombieCapacity)
		case 'a':
			s.nextArea()
		}
	}
	return false
}

func (s *session) handleMouse(ev *tcell.EventMouse) {
	pressed := ev.Buttons()&tcell.Button1 != 0
	wasDown := s.mouseDown
	s.mouseDown = pressed
	if !pressed || wasDown {
		return // Spawn on press, not while dragging
	}
	x, y := ev.Position()
	if y < hudRows {
		return
	}
	s.cursorX, s.cursorY = x, y
	s.spawn()
}

func (s *session) moveCursor(dx, dy int) {
	s.cursorX = clampInt(s.cursorX+dx, 0, s.view.cols-1)
	s.cursorY = clampInt(s.cursorY+dy, hudRows, hudRows+s.view.rows-1)
}

func (s *session) spawn() {
	if s.engine.SpawnZombie(s.view.world(s.cursorX, s.cursorY)) {
		s.status = "Zombie spawned"
		return
	}
	if s.engine.Paused() {
		s.reject("Paused")
	} else {
		s.reject("Zombie limit reached")
	}
}

func (s *session) buy(kind string) {
	if s.engine.Paused() {
		s.reject("Paused")
		return
	}
	level, err := s.engine.PurchaseUpgrade(kind)
	if err != nil {
		s.reject(fmt.Sprintf("%s: %v", kind, err))
		return
	}
	s.status = fmt.Sprintf("%s -> level %d", kind, level)
}

// nextArea selects the next unlocked area after the current one.
func (s *session) nextArea() {
	if s.engine.Paused() {
		s.reject("Paused")
		return
	}
	areas := s.economy.AreaTable()
	all := areas.All()
	current := areas.CurrentArea().ID
	idx := 0
	for i, a := range all {
		if a.ID == current {
			idx = i
		}
	}
	for n := 1; n < len(all); n++ {
		next := all[(idx+n)%len(all)]
		if err := s.engine.SelectArea(next.ID); err == nil {
			s.status = "Area: " + next.Name
			return
		}
	}
	s.reject("No other area unlocked")
}

func (s *session) reject(msg string) {
	s.status = msg
	s.sound.Play(audio.CueReject)
}

func (s *session) resize() {
	w, h := s.screen.Size()
	s.view = newView(s.view.worldW, s.view.worldH, w, h)
	s.moveCursor(0, 0)
	s.screen.Sync()
}

// run drives the engine from a frame ticker and services terminal events
// between frames until quit or ctx is done.
func (s *session) run(ctx context.Context, frameRate int) {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				return // Screen finalised
			}
			events <- ev
		}
	}()

	if frameRate <= 0 {
		frameRate = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(frameRate))
	defer ticker.Stop()
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if s.handleKey(ev) {
					return
				}
			case *tcell.EventMouse:
				s.handleMouse(ev)
			case *tcell.EventResize:
				s.resize()
			}
		case <-ticker.C:
			s.engine.Frame(time.Since(start))
			snap := s.engine.Snapshot()
			s.sound.Observe(snap)
			draw(s.screen, s.view, snap, s.cursorX, s.cursorY, s.status)
		}
	}
}

func main() {
	config.LoadDotEnv("../.env", ".env")

	// The screen owns stdout; keep logs in a file when asked, else drop them
	log.SetOutput(io.Discard)
	if path := os.Getenv("TERMINAL_LOG"); path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			log.SetOutput(f)
			defer f.Close()
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	eco, err := economy.New(cfg.Upgrades, cfg.Areas)
	if err != nil {
		fmt.Fprintf(os.Stderr, "economy: %v\n", err)
		os.Exit(1)
	}
	store := persist.Open(cfg.Persistence)
	if _, err := store.RestoreInto(eco); err != nil {
		log.Printf("⚠️ Ignoring unreadable save: %v", err)
	}

	engine, err := game.NewEngine(cfg, eco)
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "terminal: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	screen.HideCursor()

	sound := audio.Open(cfg.Audio)

	autosaver := persist.NewAutosaver(store, engine, cfg.Persistence.AutosaveInterval)
	autosaver.Start(context.Background())

	w, h := screen.Size()
	s := &session{
		screen:  screen,
		engine:  engine,
		economy: eco,
		sound:   sound,
		view:    newView(cfg.World.Width, cfg.World.Height, w, h),
	}
	s.cursorX, s.cursorY = s.view.cols/2, hudRows+s.view.rows/2

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	s.run(ctx, cfg.Loop.FrameRate)
	stop()

	screen.Fini()
	sound.Close()
	autosaver.Stop()
	log.Println("👋 Goodbye!")
}
