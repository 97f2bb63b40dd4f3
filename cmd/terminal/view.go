package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"soul-harvest/internal/economy"
	"soul-harvest/internal/game"
	"soul-harvest/internal/render"
)

const hudRows = 3

// view maps the world onto the terminal grid below the HUD.
type view struct {
	worldW, worldH float64
	cols, rows     int // Field size in cells
}

func newView(worldW, worldH float64, screenW, screenH int) view {
	rows := screenH - hudRows
	if rows < 1 {
		rows = 1
	}
	if screenW < 1 {
		screenW = 1
	}
	return view{worldW: worldW, worldH: worldH, cols: screenW, rows: rows}
}

// cell returns the cell holding world point (x, y), clamped to the field.
func (v view) cell(x, y float64) (int, int) {
	cx := int(x / v.worldW * float64(v.cols))
	cy := int(y / v.worldH * float64(v.rows))
	return clampInt(cx, 0, v.cols-1), clampInt(cy, 0, v.rows-1) + hudRows
}

// world returns the world point at the centre of a field cell.
func (v view) world(cx, cy int) game.Vector2 {
	cy -= hudRows
	return game.Vector2{
		X: (float64(clampInt(cx, 0, v.cols-1)) + 0.5) * v.worldW / float64(v.cols),
		Y: (float64(clampInt(cy, 0, v.rows-1)) + 0.5) * v.worldH / float64(v.rows),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func styleFor(hex string) tcell.Style {
	c := render.ParseColor(hex)
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
}

var (
	zombieStyle   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	cursorStyle   = tcell.StyleDefault.Reverse(true)
	hudStyle      = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkSlateGray)
	pausedStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	particleStyle = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// draw paints one snapshot. Later layers overwrite earlier ones in a cell.
func draw(s tcell.Screen, v view, snap *game.GameSnapshot, cursorX, cursorY int, status string) {
	s.Clear()
	w, _ := s.Size()

	for y := 0; y < hudRows; y++ {
		for x := 0; x < w; x++ {
			s.SetContent(x, y, ' ', nil, hudStyle)
		}
	}

	if snap != nil {
		for _, p := range snap.Particles {
			x, y := v.cell(p.X, p.Y)
			s.SetContent(x, y, '·', nil, particleStyle)
		}
		for _, wk := range snap.Walkers {
			x, y := v.cell(wk.X, wk.Y)
			r := '●'
			if wk.MaxHealth > 0 && wk.Health < wk.MaxHealth/2 {
				r = '○'
			}
			s.SetContent(x, y, r, nil, styleFor(wk.Color))
		}
		for _, z := range snap.Zombies {
			x, y := v.cell(z.X, z.Y)
			s.SetContent(x, y, 'Z', nil, zombieStyle)
		}

		eco := snap.Economy
		putString(s, 1, 0, hudStyle, fmt.Sprintf("Souls %.0f  Defeated %d  Area %s  Zombies %d/%d  FPS %.0f",
			eco.Souls, eco.WalkersDefeated, eco.AreaName, len(snap.Zombies), eco.MaxZombies, snap.Stats.Performance.FPS))
		putString(s, 1, 1, hudStyle, fmt.Sprintf("[u] speed %.0f  [c] capacity %.0f  [z] spawn  [x] clear  [a] area  [p] pause  [q] quit",
			eco.NextCosts[economy.UpgradeZombieSpeed], eco.NextCosts[economy.UpgradeZombieCapacity]))
		if snap.Paused {
			putString(s, w-8, 0, pausedStyle.Background(tcell.ColorDarkSlateGray), "PAUSED")
		}
	}
	putString(s, 1, 2, hudStyle, status)

	s.SetContent(cursorX, cursorY, '+', nil, cursorStyle)
	s.Show()
}

func putString(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
