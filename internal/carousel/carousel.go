// SPDX-License-Identifier: MIT

// Package carousel advances a horizontally scrolling strip of cards on a
// timer, wrapping back to the start once the end is reached.
package carousel

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultIncrement is the distance of one automatic step, in pixels
	DefaultIncrement = 320
	// DefaultInterval is the time between automatic steps
	DefaultInterval = 3 * time.Second
)

// Direction of a manual scroll
type Direction int

const (
	Left Direction = iota
	Right
)

// Config is the strip geometry and timing
type Config struct {
	ItemCount     int
	CardWidth     int
	ViewportWidth int
	Increment     int
	Interval      time.Duration
}

// State is a snapshot of the carousel
type State struct {
	Position  int
	Extent    int
	ItemCount int
	Paused    bool
}

// Carousel is safe for concurrent use
type Carousel struct {
	mu       sync.Mutex
	cfg      Config
	position int
	hovered  bool
	held     bool
	onChange func(State)
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New creates a stopped carousel at position 0
func New(cfg Config) *Carousel {
	if cfg.Increment <= 0 {
		cfg.Increment = DefaultIncrement
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Carousel{cfg: cfg}
}

// OnChange registers fn to receive the state after every movement
func (c *Carousel) OnChange(fn func(State)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// extent must be called with mu held
func (c *Carousel) extent() int {
	e := c.cfg.ItemCount*c.cfg.CardWidth - c.cfg.ViewportWidth
	if e < 0 {
		return 0
	}
	return e
}

// state must be called with mu held
func (c *Carousel) state() State {
	return State{
		Position:  c.position,
		Extent:    c.extent(),
		ItemCount: c.cfg.ItemCount,
		Paused:    c.hovered || c.held,
	}
}

// State returns the current snapshot
func (c *Carousel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state()
}

// update applies fn under the lock and notifies when the position moved
func (c *Carousel) update(fn func() bool) {
	c.mu.Lock()
	before := c.position
	notify := fn()
	s := c.state()
	cb := c.onChange
	c.mu.Unlock()

	if cb != nil && (notify || s.Position != before) {
		cb(s)
	}
}

// Tick performs one automatic step. It does nothing while paused or with
// fewer than two items.
func (c *Carousel) Tick() {
	c.update(func() bool {
		if c.hovered || c.held || c.cfg.ItemCount <= 1 {
			return false
		}
		if c.position+c.cfg.Increment >= c.extent() {
			c.position = 0
		} else {
			c.position += c.cfg.Increment
		}
		return false
	})
}

// ScrollBy moves one increment by hand, clamped to the strip
func (c *Carousel) ScrollBy(dir Direction) {
	c.update(func() bool {
		if c.cfg.ItemCount <= 1 {
			return false
		}
		pos := c.position
		if dir == Left {
			pos -= c.cfg.Increment
		} else {
			pos += c.cfg.Increment
		}
		c.position = clamp(pos, 0, c.extent())
		return false
	})
}

// Hover pauses automatic steps while the pointer is over the strip
func (c *Carousel) Hover(over bool) {
	c.update(func() bool {
		changed := c.hovered != over
		c.hovered = over
		return changed
	})
}

// TogglePause holds or releases the carousel and reports whether it is now held
func (c *Carousel) TogglePause() bool {
	var held bool
	c.update(func() bool {
		c.held = !c.held
		held = c.held
		return true
	})
	return held
}

// SetItems changes the number of cards, keeping the position in range
func (c *Carousel) SetItems(n int) {
	c.update(func() bool {
		c.cfg.ItemCount = n
		c.position = clamp(c.position, 0, c.extent())
		return true
	})
}

// Resize changes the viewport width, keeping the position in range
func (c *Carousel) Resize(viewport int) {
	c.update(func() bool {
		c.cfg.ViewportWidth = viewport
		c.position = clamp(c.position, 0, c.extent())
		return true
	})
}

// Start runs the timer until Stop is called. Starting twice has no effect.
func (c *Carousel) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	interval := c.cfg.Interval

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// Stop may have won the race with this tick
				if ctx.Err() != nil {
					return
				}
				c.Tick()
			}
		}
	}()
}

// Stop cancels the timer. No tick runs after Stop returns.
func (c *Carousel) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
