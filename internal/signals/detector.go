package signals

import (
	"math"
	"time"
)

// #region detector

// Detector derives scroll velocity and stillness from a stream of samples.
// Snapping only runs once the detector reports a settle, never while the
// user is actively scrolling.
type Detector struct {
	config Config

	last      Sample
	has       bool
	velocity  float64   // px/s between the last two samples
	slowSince time.Time // zero while moving faster than StillVelocity
	consumed  bool
}

// NewDetector creates a detector with the given configuration.
func NewDetector(config Config) *Detector {
	return &Detector{config: config}
}

// #endregion detector

// #region observe

// Observe records a scroll sample and re-arms the detector.
func (d *Detector) Observe(offset float64, at time.Time) {
	if d.has {
		dt := at.Sub(d.last.At).Seconds()
		if dt > 0 {
			d.velocity = math.Abs(offset-d.last.Offset) / dt
		}
	}

	if d.velocity <= d.config.StillVelocity {
		if d.slowSince.IsZero() {
			d.slowSince = at
		}
	} else {
		d.slowSince = time.Time{}
	}

	d.last = Sample{Offset: offset, At: at}
	d.has = true
	d.consumed = false
}

// #endregion observe

// #region settle

// Settled reports whether input has ceased for SettleWindow, or has stayed
// below StillVelocity for SettleWindow. A consumed settle stays false until
// the next Observe.
func (d *Detector) Settled(now time.Time) bool {
	if !d.has || d.consumed {
		return false
	}
	if now.Sub(d.last.At) >= d.config.SettleWindow {
		return true
	}
	return !d.slowSince.IsZero() && now.Sub(d.slowSince) >= d.config.SettleWindow
}

// Active reports whether the user is scrolling faster than StillVelocity.
func (d *Detector) Active(now time.Time) bool {
	return d.has && d.velocity > d.config.StillVelocity && now.Sub(d.last.At) < d.config.SettleWindow
}

// Consume marks the current settle as handled.
func (d *Detector) Consume() { d.consumed = true }

// Velocity returns the last measured velocity in px/s.
func (d *Detector) Velocity() float64 { return d.velocity }

// Last returns the most recent sample.
func (d *Detector) Last() (Sample, bool) { return d.last, d.has }

// Reset forgets every sample.
func (d *Detector) Reset() { *d = Detector{config: d.config} }

// #endregion settle
