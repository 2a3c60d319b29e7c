package preview

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/wav"
)

const (
	DefaultSampleRate = 48000
	DefaultDuration   = 500 * time.Millisecond
	DefaultAttack     = 10 * time.Millisecond
	DefaultRelease    = 50 * time.Millisecond

	// MaxVoices matches the largest chord or combination a button can hold
	MaxVoices = 12

	maxDuration = 10 * time.Second
)

var (
	ErrNoVoices       = errors.New("no voices to render")
	ErrInvalidVoice   = errors.New("voice frequency cannot be rendered")
	ErrInvalidOptions = errors.New("invalid preview options")
)

// Options controls the rendered clip. Zero fields take the defaults.
type Options struct {
	SampleRate int
	Duration   time.Duration
	Attack     time.Duration
	Release    time.Duration
}

func (o Options) withDefaults() Options {
	if o.SampleRate <= 0 {
		o.SampleRate = DefaultSampleRate
	}
	if o.Duration <= 0 {
		o.Duration = DefaultDuration
	}
	if o.Attack <= 0 {
		o.Attack = DefaultAttack
	}
	if o.Release <= 0 {
		o.Release = DefaultRelease
	}
	return o
}

// RenderWAV mixes one sine voice per frequency into a mono 16-bit WAV clip.
// Each voice is scaled by 1/len(freqs) so the mix never clips.
func RenderWAV(freqs []float64, opts Options) ([]byte, error) {
	if len(freqs) == 0 {
		return nil, ErrNoVoices
	}
	if len(freqs) > MaxVoices {
		return nil, fmt.Errorf("%w: %d voices exceeds %d", ErrInvalidOptions, len(freqs), MaxVoices)
	}
	opts = opts.withDefaults()
	if opts.Duration > maxDuration {
		return nil, fmt.Errorf("%w: duration %s exceeds %s", ErrInvalidOptions, opts.Duration, maxDuration)
	}

	rate := beep.SampleRate(opts.SampleRate)
	total := rate.N(opts.Duration)

	voices := make([]beep.Streamer, 0, len(freqs))
	for _, hz := range freqs {
		if hz <= 0 || math.IsNaN(hz) || math.IsInf(hz, 0) {
			return nil, fmt.Errorf("%w: %v Hz", ErrInvalidVoice, hz)
		}
		tone, err := generators.SineTone(rate, hz)
		if err != nil {
			return nil, fmt.Errorf("%w: %v Hz: %w", ErrInvalidVoice, hz, err)
		}
		voices = append(voices, beep.Take(total, tone))
	}

	mixed := scale(beep.Mix(voices...), 1/float64(len(voices)))
	shaped := newEnvelope(mixed, total, rate.N(opts.Attack), rate.N(opts.Release))

	out := &memFile{}
	format := beep.Format{SampleRate: rate, NumChannels: 1, Precision: 2}
	if err := wav.Encode(out, shaped, format); err != nil {
		return nil, fmt.Errorf("failed to encode wav: %w", err)
	}
	return out.Bytes(), nil
}

// scale applies a linear gain; math.Log2(0) is -Inf so silence is explicit
func scale(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}
