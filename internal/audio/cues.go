package audio

import (
	"time"

	"github.com/gopxl/beep"
)

// Cue names a one-shot sound effect.
type Cue int

const (
	CueDefeat   Cue = iota // Walker defeated
	CuePurchase            // Upgrade level bought
	CueArea                // Area changed or unlocked
	CuePause               // Pause toggled
	CueReject              // Spawn or purchase refused
)

var cueNames = [...]string{"defeat", "purchase", "area", "pause", "reject"}

func (c Cue) String() string {
	if int(c) < len(cueNames) {
		return cueNames[c]
	}
	return "unknown"
}

// NewCue synthesises c at rate. Every cue is finite.
func NewCue(c Cue, rate beep.SampleRate) beep.Streamer {
	switch c {
	case CueDefeat:
		// Short falling blip with a noise burst
		return beep.Mix(
			beep.Seq(
				tone(660, 40*time.Millisecond, WaveSquare, rate),
				tone(440, 60*time.Millisecond, WaveSquare, rate),
			),
			withVolume(tone(0, 50*time.Millisecond, WaveNoise, rate), 0.3),
		)
	case CuePurchase:
		// Two-note coin chime (B5, E6)
		return beep.Seq(
			tone(987.77, 80*time.Millisecond, WaveSquare, rate),
			tone(1318.51, 220*time.Millisecond, WaveSquare, rate),
		)
	case CueArea:
		return beep.Mix(
			withVolume(tone(880, 400*time.Millisecond, WaveSine, rate), 0.7),
			withVolume(tone(1760, 250*time.Millisecond, WaveSine, rate), 0.3),
		)
	case CuePause:
		return tone(520, 90*time.Millisecond, WaveSine, rate)
	default:
		return tone(100, 150*time.Millisecond, WaveSaw, rate)
	}
}
