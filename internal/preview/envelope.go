package preview

import "github.com/gopxl/beep"

// envelope applies a linear attack and release to a stream of known length
type envelope struct {
	streamer beep.Streamer
	position int
	total    int
	attack   int
	release  int
}

func newEnvelope(s beep.Streamer, total, attack, release int) *envelope {
	// Short clips split the ramps instead of overlapping them
	if attack+release > total {
		attack = total / 2
		release = total - attack
	}
	return &envelope{streamer: s, total: total, attack: attack, release: release}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, false
		}
		gain := e.gainAt(e.position)
		samples[i][0] *= gain
		samples[i][1] *= gain
		e.position++
	}
	return n, ok
}

func (e *envelope) gainAt(pos int) float64 {
	if e.attack > 0 && pos < e.attack {
		return float64(pos) / float64(e.attack)
	}
	releaseStart := e.total - e.release
	if e.release > 0 && pos >= releaseStart {
		return float64(e.total-pos-1) / float64(e.release)
	}
	return 1
}

func (e *envelope) Err() error { return e.streamer.Err() }
