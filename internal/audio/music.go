package audio

import (
	"fmt"
	"log"
	"os"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/vorbis"
)

// LoadMusic decodes an OGG Vorbis file as an endless loop at SampleRate.
// The file is streamed, not decoded up front.
func LoadMusic(path string) (beep.Streamer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	stream, format, err := vorbis.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	log.Printf("🎵 Music loaded: %s (%d Hz, %d channels)", path, format.SampleRate, format.NumChannels)

	looped := beep.Loop(-1, stream)
	if format.SampleRate != SampleRate {
		return beep.Resample(4, format.SampleRate, SampleRate, looped), nil
	}
	return looped, nil
}

// PlayMusic starts a background loop under the cues. Pausing the game
// pauses the music.
func (p *Player) PlayMusic(path string) error {
	s, err := LoadMusic(path)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.cfg.Enabled {
		return nil
	}
	ctrl := &beep.Ctrl{Streamer: withVolume(s, p.cfg.MusicVolume)}
	p.lock()
	p.mixer.Add(ctrl)
	p.unlock()
	p.music = ctrl
	return nil
}
