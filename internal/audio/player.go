// Package audio plays synthesised cues for simulation events with beep.
//
// A Player watches published snapshots and turns what changed between them
// (defeats, purchases, area changes, pause) into one-shot sounds. Audio is
// best effort: if the speaker cannot be opened the player stays silent and
// the game carries on.
package audio

import (
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"soul-harvest/internal/config"
	"soul-harvest/internal/game"
)

// SampleRate matches the rate the music loader resamples to.
const SampleRate = beep.SampleRate(44100)

const (
	maxVoices       = 16
	defeatCueMinGap = 60 * time.Millisecond // Mass defeats collapse into one blip
)

// Player mixes cue streamers into one output.
type Player struct {
	mu      sync.Mutex
	cfg     config.AudioConfig
	mixer   *beep.Mixer
	music   *beep.Ctrl
	now     func() time.Time
	lock    func()
	unlock  func()
	started bool

	// Previous observation
	observed    bool
	lastArea    int
	lastLevels  map[string]int
	lastPaused  bool
	lastDefeats int
	lastDefeat  time.Time

	played  map[Cue]uint64
	dropped uint64
}

// NewPlayer creates a player that has not opened the speaker. Cues still
// mix into its stream, which is what tests read.
func NewPlayer(cfg config.AudioConfig) *Player {
	return &Player{
		cfg:        cfg,
		mixer:      &beep.Mixer{},
		now:        time.Now,
		lock:       func() {},
		unlock:     func() {},
		lastLevels: make(map[string]int),
		played:     make(map[Cue]uint64),
	}
}

// Open creates a player and starts the speaker. Any failure returns a
// silent player.
func Open(cfg config.AudioConfig) *Player {
	p := NewPlayer(cfg)
	if !cfg.Enabled {
		log.Println("🔇 Audio disabled")
		return p
	}
	if err := p.start(); err != nil {
		log.Printf("⚠️ Audio unavailable: %v", err)
		p.cfg.Enabled = false
		return p
	}
	if cfg.MusicPath != "" {
		if err := p.PlayMusic(cfg.MusicPath); err != nil {
			log.Printf("⚠️ Background music disabled: %v", err)
		}
	}
	return p
}

func (p *Player) start() error {
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	p.mu.Lock()
	p.lock, p.unlock = speaker.Lock, speaker.Unlock
	p.started = true
	p.mu.Unlock()
	speaker.Play(p.mixer)
	log.Printf("🔊 Audio started at %d Hz", SampleRate)
	return nil
}

// Play queues one cue. Beyond maxVoices concurrent sounds the cue is dropped.
func (p *Player) Play(c Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playLocked(c)
}

func (p *Player) playLocked(c Cue) {
	if !p.cfg.Enabled {
		return
	}
	p.lock()
	defer p.unlock()
	if p.mixer.Len() >= maxVoices {
		p.dropped++
		return
	}
	p.mixer.Add(withVolume(NewCue(c, SampleRate), p.cfg.Volume))
	p.played[c]++
}

// Observe compares snap with the previous snapshot and plays a cue for each
// kind of change. It returns the cues played.
func (p *Player) Observe(snap *game.GameSnapshot) []Cue {
	if snap == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	eco := snap.Economy
	var cues []Cue
	if p.observed {
		if len(snap.Defeats) > 0 || eco.WalkersDefeated > p.lastDefeats {
			if now := p.now(); now.Sub(p.lastDefeat) >= defeatCueMinGap {
				p.lastDefeat = now
				cues = append(cues, CueDefeat)
			}
		}
		for kind, level := range eco.Upgrades {
			if level > p.lastLevels[kind] {
				cues = append(cues, CuePurchase)
				break
			}
		}
		if eco.CurrentArea != p.lastArea {
			cues = append(cues, CueArea)
		}
		if snap.Paused != p.lastPaused {
			cues = append(cues, CuePause)
			if p.music != nil {
				p.lock()
				p.music.Paused = snap.Paused
				p.unlock()
			}
		}
	}

	p.observed = true
	p.lastArea = eco.CurrentArea
	p.lastPaused = snap.Paused
	p.lastDefeats = eco.WalkersDefeated
	for k := range p.lastLevels {
		delete(p.lastLevels, k)
	}
	for kind, level := range eco.Upgrades {
		p.lastLevels[kind] = level
	}

	for _, c := range cues {
		p.playLocked(c)
	}
	return cues
}

// Stream reads mixed samples. The speaker calls it once started; tests call
// it directly.
func (p *Player) Stream(samples [][2]float64) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lock()
	defer p.unlock()
	return p.mixer.Stream(samples)
}

// Voices returns the number of sounds currently mixing.
func (p *Player) Voices() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lock()
	defer p.unlock()
	return p.mixer.Len()
}

// Stats reports how many of each cue played and how many were dropped.
func (p *Player) Stats() (map[Cue]uint64, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[Cue]uint64, len(p.played))
	for c, n := range p.played {
		out[c] = n
	}
	return out, p.dropped
}

// Close silences every voice.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lock()
	p.mixer.Clear()
	p.unlock()
	p.music = nil
	if p.started {
		speaker.Clear()
	}
}
