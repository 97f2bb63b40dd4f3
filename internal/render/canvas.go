// Package render draws game snapshots into images with gg.
//
// The canvas is a game.Renderer: the engine hands it one immutable snapshot
// per displayed frame. The finished image is published atomically so HTTP
// handlers can encode the latest frame without touching the simulation.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync/atomic"
	"time"

	"github.com/fogleman/gg"

	"soul-harvest/internal/game"
)

// FallbackColor is used for any colour string that does not parse.
var FallbackColor = color.RGBA{200, 200, 200, 255}

var (
	backgroundColor = color.RGBA{12, 12, 28, 255}
	gridColor       = color.RGBA{30, 30, 45, 255}
	zombieColor     = color.RGBA{76, 175, 80, 255}
	zombieEyeColor  = color.RGBA{255, 62, 62, 255}
	hudColor        = color.RGBA{18, 18, 24, 220}
)

// Options configures a Canvas.
type Options struct {
	Width, Height int
	// MinInterval throttles redraws; frames arriving sooner are skipped.
	// Zero draws every frame.
	MinInterval time.Duration
	ShowGrid    bool
}

// Canvas renders snapshots into RGBA images.
type Canvas struct {
	opts Options
	now  func() time.Time

	// Double-buffered like a swap chain: draw into back, publish a copy.
	contexts [2]*gg.Context
	back     int

	lastDraw time.Time
	latest   atomic.Pointer[image.RGBA]
	drawn    atomic.Uint64
	skipped  atomic.Uint64
}

// NewCanvas creates a canvas of the given size.
func NewCanvas(opts Options) (*Canvas, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("render: invalid canvas size %dx%d", opts.Width, opts.Height)
	}
	return &Canvas{
		opts: opts,
		now:  time.Now,
		contexts: [2]*gg.Context{
			gg.NewContext(opts.Width, opts.Height),
			gg.NewContext(opts.Width, opts.Height),
		},
	}, nil
}

// Render draws snap and publishes the result. It satisfies game.Renderer.
func (c *Canvas) Render(snap *game.GameSnapshot) error {
	if snap == nil {
		return fmt.Errorf("render: nil snapshot")
	}
	now := c.now()
	if c.opts.MinInterval > 0 && !c.lastDraw.IsZero() && now.Sub(c.lastDraw) < c.opts.MinInterval {
		c.skipped.Add(1)
		return nil
	}
	c.lastDraw = now

	dc := c.contexts[c.back]
	c.back ^= 1

	c.draw(dc, snap)

	src := dc.Image().(*image.RGBA)
	img := image.NewRGBA(src.Rect)
	copy(img.Pix, src.Pix)
	c.latest.Store(img)
	c.drawn.Add(1)
	return nil
}

// Latest returns the most recently published frame, or nil.
func (c *Canvas) Latest() *image.RGBA {
	return c.latest.Load()
}

// Stats returns the number of drawn and throttled frames.
func (c *Canvas) Stats() (drawn, skipped uint64) {
	return c.drawn.Load(), c.skipped.Load()
}

// EncodePNG encodes the latest frame.
func (c *Canvas) EncodePNG() ([]byte, error) {
	img := c.Latest()
	if img == nil {
		return nil, fmt.Errorf("render: no frame yet")
	}
	return EncodePNG(img)
}

// EncodePNG encodes img with fast compression.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("render: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *Canvas) draw(dc *gg.Context, snap *game.GameSnapshot) {
	w, h := float64(c.opts.Width), float64(c.opts.Height)

	// World coordinates scale to the canvas
	sx, sy := 1.0, 1.0
	if snap.Width > 0 && snap.Height > 0 {
		sx, sy = w/snap.Width, h/snap.Height
	}

	dc.SetColor(backgroundColor)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()
	if c.opts.ShowGrid {
		drawGrid(dc, w, h)
	}

	dc.Push()
	dc.Scale(sx, sy)
	drawParticles(dc, snap.Particles)
	drawWalkers(dc, snap.Walkers)
	drawZombies(dc, snap.Zombies)
	dc.Pop()

	drawHUD(dc, snap, w)
	if snap.Paused {
		drawPauseOverlay(dc, w, h)
	}
}

func drawGrid(dc *gg.Context, w, h float64) {
	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	const gridSize = 100.0
	for x := 0.0; x < w; x += gridSize {
		dc.DrawLine(x, 0, x, h)
		dc.Stroke()
	}
	for y := 0.0; y < h; y += gridSize {
		dc.DrawLine(0, y, w, y)
		dc.Stroke()
	}
}

func drawWalkers(dc *gg.Context, walkers []game.WalkerSnapshot) {
	for _, wk := range walkers {
		r := wk.Size / 2

		dc.SetColor(color.RGBA{0, 0, 0, 128})
		dc.DrawCircle(wk.X, wk.Y+2, r)
		dc.Fill()

		dc.SetColor(ParseColor(wk.Color))
		dc.DrawCircle(wk.X, wk.Y, r)
		dc.Fill()

		if wk.MaxHealth > 0 && wk.Health < wk.MaxHealth {
			drawHealthBar(dc, wk.X, wk.Y-r-6, wk.Size, wk.Health/wk.MaxHealth)
		}
	}
}

func drawHealthBar(dc *gg.Context, cx, y, width, frac float64) {
	frac = math.Max(0, math.Min(1, frac))
	const height = 3.0

	dc.SetColor(color.RGBA{51, 51, 51, 255})
	dc.DrawRectangle(cx-width/2, y, width, height)
	dc.Fill()

	switch {
	case frac > 0.5:
		dc.SetColor(color.RGBA{83, 255, 69, 255})
	case frac > 0.25:
		dc.SetColor(color.RGBA{255, 149, 0, 255})
	default:
		dc.SetColor(color.RGBA{255, 62, 62, 255})
	}
	dc.DrawRectangle(cx-width/2, y, width*frac, height)
	dc.Fill()
}

func drawZombies(dc *gg.Context, zombies []game.ZombieSnapshot) {
	for _, z := range zombies {
		half := z.Size / 2

		dc.SetColor(zombieColor)
		dc.DrawRoundedRectangle(z.X-half, z.Y-half, z.Size, z.Size, z.Size/5)
		dc.Fill()

		dc.SetColor(zombieEyeColor)
		dc.DrawCircle(z.X-half/2.5, z.Y-half/3, z.Size/10)
		dc.DrawCircle(z.X+half/2.5, z.Y-half/3, z.Size/10)
		dc.Fill()
	}
}

func drawParticles(dc *gg.Context, particles []game.ParticleSnapshot) {
	for _, p := range particles {
		c := ParseColor(p.Color)
		c.A = uint8(math.Max(0, math.Min(1, p.Alpha)) * 255)
		dc.SetColor(c)
		dc.DrawCircle(p.X, p.Y, math.Max(1, p.Size/2))
		dc.Fill()
	}
}

func drawHUD(dc *gg.Context, snap *game.GameSnapshot, w float64) {
	e := snap.Economy

	dc.SetColor(hudColor)
	dc.DrawRoundedRectangle(8, 8, 300, 44, 4)
	dc.Fill()

	dc.SetColor(color.White)
	dc.DrawString(fmt.Sprintf("Souls %.0f   Defeated %d", e.Souls, e.WalkersDefeated), 18, 26)
	dc.DrawString(fmt.Sprintf("Area %d %s   Zombies %d/%d", e.CurrentArea, e.AreaName, len(snap.Zombies), e.MaxZombies), 18, 42)

	perf := snap.Stats.Performance
	dc.DrawStringAnchored(fmt.Sprintf("%.0f FPS  %s", perf.FPS, perf.LevelName), w-12, 22, 1, 0.5)
}

func drawPauseOverlay(dc *gg.Context, w, h float64) {
	dc.SetColor(color.RGBA{0, 0, 0, 140})
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	dc.SetColor(color.White)
	dc.DrawRectangle(w/2-22, h/2-30, 14, 60)
	dc.DrawRectangle(w/2+8, h/2-30, 14, 60)
	dc.Fill()
	dc.DrawStringAnchored("PAUSED", w/2, h/2+50, 0.5, 0.5)
}
