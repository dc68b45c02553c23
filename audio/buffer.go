package audio

import "time"

// DefaultSegmentTarget is how much caller audio accumulates before a
// pipeline invocation. Two seconds balances STT accuracy against
// perceived response latency.
const DefaultSegmentTarget = 2 * time.Second

// FrameDuration is the fixed quantum of one inbound telephony media frame.
const FrameDuration = 20 * time.Millisecond

// Accumulator buffers raw audio frames for one call until a target duration
// has been collected. It is not safe for concurrent use: each call's event
// stream is processed by a single goroutine, which is the only toucher of
// that call's accumulator.
type Accumulator struct {
	buf      []byte
	duration time.Duration
	target   time.Duration
}

// NewAccumulator creates an accumulator with the given target duration.
// A non-positive target falls back to DefaultSegmentTarget.
func NewAccumulator(target time.Duration) *Accumulator {
	if target <= 0 {
		target = DefaultSegmentTarget
	}
	return &Accumulator{target: target}
}

// Append adds one frame and credits its duration.
func (a *Accumulator) Append(frame []byte, frameDuration time.Duration) {
	a.buf = append(a.buf, frame...)
	a.duration += frameDuration
}

// Ready reports whether the accumulated duration has reached the target.
func (a *Accumulator) Ready() bool {
	return a.duration >= a.target
}

// Drain returns the buffered audio and atomically resets the accumulator.
// Draining an empty accumulator returns an empty slice.
func (a *Accumulator) Drain() []byte {
	data := a.buf
	if data == nil {
		data = []byte{}
	}
	a.buf = nil
	a.duration = 0
	return data
}

// Duration reports the currently accumulated duration, for diagnostics.
func (a *Accumulator) Duration() time.Duration {
	return a.duration
}

// Len reports the buffered byte count.
func (a *Accumulator) Len() int {
	return len(a.buf)
}
