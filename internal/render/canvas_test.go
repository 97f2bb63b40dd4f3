package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"
	"time"

	"soul-harvest/internal/game"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#ff0000", color.RGBA{255, 0, 0, 255}},
		{"#0f0", color.RGBA{0, 255, 0, 255}},
		{" 8d5524 ", color.RGBA{0x8d, 0x55, 0x24, 255}},
		{"", FallbackColor},
		{"#12345", FallbackColor},
		{"#zzzzzz", FallbackColor},
		{"red", FallbackColor},
	}
	for _, tt := range tests {
		if got := ParseColor(tt.in); got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func testSnapshot() *game.GameSnapshot {
	return &game.GameSnapshot{
		Width:  200,
		Height: 100,
		Walkers: []game.WalkerSnapshot{
			{ID: 1, X: 50, Y: 80, Size: 20, Health: 5, MaxHealth: 20, Color: "#ff0000"},
			{ID: 2, X: 20, Y: 80, Size: 20, Health: 20, MaxHealth: 20, Color: "not-a-colour"},
		},
		Zombies:   []game.ZombieSnapshot{{ID: 3, X: 150, Y: 80, Size: 24}},
		Particles: []game.ParticleSnapshot{{X: 100, Y: 90, Size: 4, Color: "#fff", Alpha: 2}},
		Economy:   game.EconomyState{Souls: 3, AreaName: "Graveyard", MaxZombies: 10},
	}
}

func TestCanvasRendersSnapshot(t *testing.T) {
	c, err := NewCanvas(Options{Width: 200, Height: 100, ShowGrid: true})
	if err != nil {
		t.Fatal(err)
	}
	if c.Latest() != nil {
		t.Fatal("frame published before first render")
	}
	if _, err := c.EncodePNG(); err == nil {
		t.Error("EncodePNG succeeded without a frame")
	}

	if err := c.Render(testSnapshot()); err != nil {
		t.Fatal(err)
	}
	img := c.Latest()
	if img == nil || img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Fatalf("latest = %v", img)
	}

	// Walker body centre carries its palette colour
	if got := img.RGBAAt(50, 80); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("walker pixel = %v", got)
	}
	// Invalid palette entry degrades to the fallback colour
	if got := img.RGBAAt(20, 80); got != FallbackColor {
		t.Errorf("fallback pixel = %v", got)
	}
	if got := img.RGBAAt(150, 86); got != zombieColor {
		t.Errorf("zombie pixel = %v", got)
	}

	data, err := c.EncodePNG()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("encoded frame does not decode: %v", err)
	}
}

func TestCanvasPublishedFrameIsStable(t *testing.T) {
	c, _ := NewCanvas(Options{Width: 200, Height: 100})
	snap := testSnapshot()
	c.Render(snap)
	first := c.Latest()
	before := first.RGBAAt(50, 80)

	snap.Walkers[0].Color = "#0000ff"
	c.Render(snap)
	c.Render(snap)

	if first.RGBAAt(50, 80) != before {
		t.Error("published frame mutated by later renders")
	}
	if c.Latest().RGBAAt(50, 80) != (color.RGBA{0, 0, 255, 255}) {
		t.Error("latest frame not updated")
	}
}

func TestCanvasPauseOverlayDarkens(t *testing.T) {
	c, _ := NewCanvas(Options{Width: 200, Height: 100})
	snap := testSnapshot()
	c.Render(snap)
	lit := c.Latest().RGBAAt(50, 80)

	snap.Paused = true
	c.Render(snap)
	dim := c.Latest().RGBAAt(50, 80)
	if dim.R >= lit.R {
		t.Errorf("pause overlay did not darken: %v -> %v", lit, dim)
	}
}

func TestCanvasThrottle(t *testing.T) {
	c, _ := NewCanvas(Options{Width: 20, Height: 20, MinInterval: 100 * time.Millisecond})
	now := time.Unix(0, 0)
	c.now = func() time.Time { return now }

	snap := testSnapshot()
	c.Render(snap)
	now = now.Add(50 * time.Millisecond)
	c.Render(snap)
	now = now.Add(60 * time.Millisecond)
	c.Render(snap)

	if drawn, skipped := c.Stats(); drawn != 2 || skipped != 1 {
		t.Errorf("drawn %d skipped %d, want 2 and 1", drawn, skipped)
	}
}

func TestCanvasRejectsBadInput(t *testing.T) {
	if _, err := NewCanvas(Options{Width: 0, Height: 10}); err == nil {
		t.Error("zero width accepted")
	}
	c, _ := NewCanvas(Options{Width: 10, Height: 10})
	if err := c.Render(nil); err == nil {
		t.Error("nil snapshot accepted")
	}
}
