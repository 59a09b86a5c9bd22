package playback

import (
	"context"
	"math"
	"sync"
	"time"
)

// DefaultInterval is how often playback time is sampled.
const DefaultInterval = 80 * time.Millisecond

// Player is the video playback surface the preview drives.
type Player interface {
	CurrentTime() float64
	IsPlaying() bool
	SeekTo(seconds float64)
	Play()
	Pause()
}

// Clock is a Player with no media behind it: time advances with a
// monotonic clock while playing and stops at the known duration.
type Clock struct {
	mu        sync.Mutex
	now       func() time.Time
	duration  float64
	position  float64
	startedAt time.Time
	playing   bool
}

// NewClock creates a paused clock at 0. A duration <= 0 means unbounded.
// now defaults to time.Now.
func NewClock(duration float64, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	if math.IsNaN(duration) || duration < 0 {
		duration = 0
	}
	return &Clock{now: now, duration: duration}
}

func (c *Clock) Duration() float64 {
	return c.duration
}

func (c *Clock) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advance()
	return c.position
}

func (c *Clock) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advance()
	return c.playing
}

func (c *Clock) SeekTo(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = c.clamp(seconds)
	c.startedAt = c.now()
}

func (c *Clock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		return
	}
	if c.duration > 0 && c.position >= c.duration {
		c.position = 0
	}
	c.playing = true
	c.startedAt = c.now()
}

func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advance()
	c.playing = false
}

// advance folds elapsed wall time into position; callers hold mu
func (c *Clock) advance() {
	if !c.playing {
		return
	}
	now := c.now()
	c.position = c.clamp(c.position + now.Sub(c.startedAt).Seconds())
	c.startedAt = now
	if c.duration > 0 && c.position >= c.duration {
		c.playing = false
	}
}

func (c *Clock) clamp(seconds float64) float64 {
	if math.IsNaN(seconds) || seconds < 0 {
		return 0
	}
	if c.duration > 0 && seconds > c.duration {
		return c.duration
	}
	return seconds
}

// Run samples the player every interval and passes the time to fn,
// synchronously, on the calling goroutine. It samples once immediately,
// returns nil once the player stops playing, and returns the context
// error on cancellation.
func Run(ctx context.Context, player Player, interval time.Duration, fn func(t float64)) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	fn(player.CurrentTime())
	if !player.IsPlaying() {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn(player.CurrentTime())
			if !player.IsPlaying() {
				return nil
			}
		}
	}
}

// Poller runs Run on its own goroutine with an explicit start/stop
// lifecycle.
type Poller struct {
	Interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

func NewPoller(interval time.Duration) *Poller {
	return &Poller{Interval: interval}
}

// Start begins polling. Starting a running poller restarts it.
func (p *Poller) Start(ctx context.Context, player Player, fn func(t float64)) {
	p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.err = nil

	go func() {
		defer close(done)
		err := Run(ctx, player, p.Interval, fn)
		p.mu.Lock()
		p.err = err
		p.mu.Unlock()
	}()
}

// Stop halts polling and waits for the poller goroutine to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done is closed when the current polling run ends; nil when idle.
func (p *Poller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Err returns how the last run ended.
func (p *Poller) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
