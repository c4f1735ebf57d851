// Package chime plays short tones when a countdown changes segment or
// ends.
package chime

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/mzt-timers/mzt-go/pkg/log"
)

// DefaultSampleRate is used by NewPlayer.
const DefaultSampleRate = beep.SampleRate(44100)

// Tone frequencies in Hz.
const (
	SegmentTone = 880.0
	EndTone     = 660.0
)

// Generator is a sine tone with an exponential decay envelope. It stops
// after Length samples.
type Generator struct {
	SampleRate beep.SampleRate
	Freq       float64
	Length     int

	// Decay is the envelope time constant in samples.
	Decay float64

	pos int
}

// NewGenerator returns a chime of frequency freq lasting d.
func NewGenerator(sr beep.SampleRate, freq float64, d time.Duration) *Generator {
	n := sr.N(d)
	return &Generator{SampleRate: sr, Freq: freq, Length: n, Decay: float64(n) / 4}
}

// Stream fills samples with the next part of the tone.
func (g *Generator) Stream(samples [][2]float64) (n int, ok bool) {
	if g.pos >= g.Length {
		return 0, false
	}
	step := 2 * math.Pi * g.Freq / float64(g.SampleRate)
	for i := range samples {
		if g.pos >= g.Length {
			break
		}
		v := math.Sin(step*float64(g.pos)) * math.Exp(-float64(g.pos)/g.Decay)
		samples[i][0], samples[i][1] = v, v
		g.pos++
		n++
	}
	return n, true
}

// Err always returns nil.
func (g *Generator) Err() error {
	return nil
}

// Player plays chimes on the system speaker. A disabled Player does
// nothing. The speaker is opened on first use.
type Player struct {
	enabled bool
	sr      beep.SampleRate

	once    sync.Once
	initErr error

	// Replaced in tests.
	initSpeaker func(beep.SampleRate, int) error
	play        func(...beep.Streamer)
}

// NewPlayer returns a player. When enabled is false every method is a
// no-op.
func NewPlayer(enabled bool) *Player {
	return &Player{
		enabled:     enabled,
		sr:          DefaultSampleRate,
		initSpeaker: speaker.Init,
		play:        speaker.Play,
	}
}

// Enabled reports whether the player makes sound.
func (p *Player) Enabled() bool {
	return p.enabled
}

func (p *Player) ready() error {
	p.once.Do(func() {
		p.initErr = p.initSpeaker(p.sr, p.sr.N(time.Second/10))
	})
	return p.initErr
}

// Init opens the speaker of an enabled player. Only the first call does
// any work; later calls return the same error. Log drops playback errors,
// so callers check Init before relying on it.
func (p *Player) Init() error {
	if !p.enabled {
		return nil
	}
	return p.ready()
}

// Play plays the given tones one after another.
func (p *Player) Play(freqs ...float64) error {
	if !p.enabled || len(freqs) == 0 {
		return nil
	}
	if err := p.ready(); err != nil {
		return err
	}

	streams := make([]beep.Streamer, 0, len(freqs))
	for _, f := range freqs {
		streams = append(streams, NewGenerator(p.sr, f, 250*time.Millisecond))
	}
	p.play(beep.Seq(streams...))
	return nil
}

// Log plays a chime for segment changes and the end of the sequence.
// Other events are ignored.
func (p *Player) Log(e log.Event) {
	switch e.Kind {
	case log.EventSegmentAdvanced:
		_ = p.Play(SegmentTone)
	case log.EventEnded:
		_ = p.Play(EndTone, SegmentTone, EndTone)
	}
}

var _ log.Logger = (*Player)(nil)
