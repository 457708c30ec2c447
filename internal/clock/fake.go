package clock

import "time"

// Fake is a deterministic Clock for tests: NowMs and Mono advance only when
// Sleep or Advance is called, so retry/backoff and deadline logic can be
// exercised without a real wall-clock delay.
type Fake struct {
	nowMs int64
	mono  time.Time
}

var _ Clock = (*Fake)(nil)

// NewFake returns a Fake clock starting at the given epoch milliseconds.
func NewFake(startMs int64) *Fake {
	return &Fake{nowMs: startMs, mono: time.Unix(0, startMs*int64(time.Millisecond))}
}

func (f *Fake) NowMs() int64 { return f.nowMs }

func (f *Fake) Since(start time.Time) time.Duration { return f.mono.Sub(start) }

func (f *Fake) Mono() time.Time { return f.mono }

// Sleep advances the fake clock by d instead of blocking.
func (f *Fake) Sleep(d time.Duration) { f.Advance(d) }

// Advance moves the fake clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mono = f.mono.Add(d)
	f.nowMs += d.Milliseconds()
}
