package audio

import (
	"math"
	"testing"
	"time"

	"soul-harvest/internal/config"
	"soul-harvest/internal/game"
)

func drain(t *testing.T, n int, stream func([][2]float64) (int, bool)) (samples int, peak float64) {
	t.Helper()
	buf := make([][2]float64, 256)
	for samples < n {
		got, ok := stream(buf)
		for i := 0; i < got; i++ {
			peak = math.Max(peak, math.Abs(buf[i][0]))
		}
		samples += got
		if !ok || got == 0 {
			break
		}
	}
	return samples, peak
}

func TestCuesAreFiniteAndAudible(t *testing.T) {
	for _, c := range []Cue{CueDefeat, CuePurchase, CueArea, CuePause, CueReject} {
		t.Run(c.String(), func(t *testing.T) {
			s := NewCue(c, SampleRate)
			limit := SampleRate.N(2 * time.Second)
			n, peak := drain(t, limit, s.Stream)
			if n == 0 || n >= limit {
				t.Errorf("cue produced %d samples, want finite and non-empty", n)
			}
			if peak == 0 {
				t.Error("cue is silent")
			}
			if peak > 1.5 {
				t.Errorf("peak %v clips badly", peak)
			}
		})
	}
}

func TestOscillatorLength(t *testing.T) {
	o := newOscillator(440, 10*time.Millisecond, WaveSine, SampleRate)
	n, _ := drain(t, SampleRate.N(time.Second), o.Stream)
	if want := SampleRate.N(10 * time.Millisecond); n != want {
		t.Errorf("samples = %d, want %d", n, want)
	}
}

func TestEnvelopeStartsSilent(t *testing.T) {
	e := newEnvelope(newOscillator(0, 50*time.Millisecond, WaveSquare, SampleRate),
		50*time.Millisecond, 10*time.Millisecond, 10*time.Millisecond, SampleRate)
	buf := make([][2]float64, 1)
	e.Stream(buf)
	if buf[0][0] != 0 {
		t.Errorf("first sample = %v, want 0 at start of attack", buf[0][0])
	}
}

func snapshot(defeated int, area int, levels map[string]int, paused bool) *game.GameSnapshot {
	return &game.GameSnapshot{
		Paused: paused,
		Economy: game.EconomyState{
			WalkersDefeated: defeated,
			CurrentArea:     area,
			Upgrades:        levels,
		},
	}
}

func newTestPlayer() *Player {
	p := NewPlayer(config.AudioConfig{Enabled: true, Volume: 0.5})
	clock := time.Unix(0, 0)
	p.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return p
}

func TestObserveDetectsChanges(t *testing.T) {
	p := newTestPlayer()

	if cues := p.Observe(snapshot(0, 1, map[string]int{"zombie_speed": 0}, false)); len(cues) != 0 {
		t.Fatalf("first observation played %v", cues)
	}

	cues := p.Observe(snapshot(1, 1, map[string]int{"zombie_speed": 0}, false))
	if len(cues) != 1 || cues[0] != CueDefeat {
		t.Errorf("defeat: got %v", cues)
	}

	cues = p.Observe(snapshot(1, 1, map[string]int{"zombie_speed": 1}, false))
	if len(cues) != 1 || cues[0] != CuePurchase {
		t.Errorf("purchase: got %v", cues)
	}

	cues = p.Observe(snapshot(1, 2, map[string]int{"zombie_speed": 1}, true))
	if len(cues) != 2 || cues[0] != CueArea || cues[1] != CuePause {
		t.Errorf("area+pause: got %v", cues)
	}

	if cues := p.Observe(snapshot(1, 2, map[string]int{"zombie_speed": 1}, true)); len(cues) != 0 {
		t.Errorf("unchanged snapshot played %v", cues)
	}

	played, _ := p.Stats()
	if played[CueDefeat] != 1 || played[CuePurchase] != 1 || played[CueArea] != 1 || played[CuePause] != 1 {
		t.Errorf("played = %v", played)
	}
	if p.Voices() == 0 {
		t.Error("no voices mixing")
	}
	if _, peak := drain(t, 1024, p.Stream); peak == 0 {
		t.Error("mixed output is silent")
	}
}

func TestDefeatCueThrottled(t *testing.T) {
	p := NewPlayer(config.AudioConfig{Enabled: true, Volume: 1})
	now := time.Unix(100, 0)
	p.now = func() time.Time { return now }

	p.Observe(snapshot(0, 1, nil, false))
	if cues := p.Observe(snapshot(5, 1, nil, false)); len(cues) != 1 {
		t.Fatalf("first defeat: %v", cues)
	}
	now = now.Add(defeatCueMinGap / 2)
	if cues := p.Observe(snapshot(9, 1, nil, false)); len(cues) != 0 {
		t.Errorf("defeat inside gap played %v", cues)
	}
	now = now.Add(defeatCueMinGap)
	if cues := p.Observe(snapshot(10, 1, nil, false)); len(cues) != 1 {
		t.Errorf("defeat after gap: %v", cues)
	}
}

func TestDisabledPlayerIsSilent(t *testing.T) {
	p := NewPlayer(config.AudioConfig{Enabled: false})
	p.Play(CueDefeat)
	if p.Voices() != 0 {
		t.Error("disabled player mixed a cue")
	}
	if p.Observe(nil) != nil {
		t.Error("nil snapshot should be ignored")
	}
}

func TestVoiceLimit(t *testing.T) {
	p := NewPlayer(config.AudioConfig{Enabled: true, Volume: 0.5})
	for i := 0; i < maxVoices+4; i++ {
		p.Play(CueArea)
	}
	if v := p.Voices(); v != maxVoices {
		t.Errorf("voices = %d, want %d", v, maxVoices)
	}
	if _, dropped := p.Stats(); dropped != 4 {
		t.Errorf("dropped = %d, want 4", dropped)
	}
	p.Close()
	if p.Voices() != 0 {
		t.Error("Close left voices mixing")
	}
}

func TestLoadMusicMissingFile(t *testing.T) {
	if _, err := LoadMusic(t.TempDir() + "/missing.ogg"); err == nil {
		t.Error("expected error for missing file")
	}
	p := NewPlayer(config.AudioConfig{Enabled: true})
	if err := p.PlayMusic(t.TempDir() + "/missing.ogg"); err == nil {
		t.Error("PlayMusic should surface load errors")
	}
}
