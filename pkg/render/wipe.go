package render

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// TicRate is the game tick rate in Hz.
const TicRate = 35

// WipeKind selects the transition effect.
type WipeKind int

const (
	WipeMelt       WipeKind = iota // columns slide down at random speeds
	WipeColorXForm                 // indices step toward the end screen
)

func (k WipeKind) String() string {
	switch k {
	case WipeMelt:
		return "melt"
	case WipeColorXForm:
		return "colorxform"
	}
	return fmt.Sprintf("WipeKind(%d)", int(k))
}

// Wipe transitions the screen from a start frame to an end frame. Both
// frames must be captured before the caller draws anything else.
type Wipe struct {
	Kind WipeKind

	start, end, dst *Framebuffer
	y               []int // melt offset per column pair
	rng             *rand.Rand
	active          bool
}

// NewWipe creates a wipe whose melt pattern is determined by seed.
func NewWipe(kind WipeKind, seed uint64) *Wipe {
	return &Wipe{
		Kind: kind,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Start captures the two frames and draws the start frame into dst.
func (w *Wipe) Start(start, end, dst *Framebuffer) {
	if start.Width != end.Width || start.Height != end.Height {
		panic(fmt.Sprintf("render: wipe between %dx%d and %dx%d frames",
			start.Width, start.Height, end.Width, end.Height))
	}
	w.start, w.end, w.dst = start.Clone(), end.Clone(), dst
	dst.CopyFrom(w.start)
	w.active = true

	if w.Kind != WipeMelt {
		return
	}
	// Columns move in pairs, one 16-bit word at a time.
	pairs := (start.Width + 1) / 2
	w.y = make([]int, pairs)
	w.y[0] = -w.rng.IntN(16)
	for i := 1; i < pairs; i++ {
		r := w.rng.IntN(3) - 1
		w.y[i] = w.y[i-1] + r
		switch {
		case w.y[i] > 0:
			w.y[i] = 0
		case w.y[i] == -16:
			w.y[i] = -15
		}
	}
}

// Active reports whether a wipe is in progress.
func (w *Wipe) Active() bool { return w.active }

// Offsets returns the current melt offsets, one per column pair.
func (w *Wipe) Offsets() []int { return w.y }

// Step advances the wipe by ticks and reports whether it has finished.
func (w *Wipe) Step(ticks int) bool {
	if !w.active {
		return true
	}
	var done bool
	switch w.Kind {
	case WipeMelt:
		done = w.melt(ticks)
	case WipeColorXForm:
		done = w.colorXForm(ticks)
	default:
		panic(fmt.Sprintf("render: unknown wipe kind %d", int(w.Kind)))
	}
	if done {
		w.active = false
		w.start, w.end = nil, nil
	}
	return done
}

func (w *Wipe) melt(ticks int) bool {
	width, height := w.dst.Width, w.dst.Height
	done := true
	for ; ticks > 0; ticks-- {
		for i := range w.y {
			y := w.y[i]
			if y < 0 {
				w.y[i]++
				done = false
				continue
			}
			if y >= height {
				continue
			}
			dy := 8
			if y < 16 {
				dy = y + 1
			}
			if y+dy >= height {
				dy = height - y
			}
			for x := 2 * i; x < 2*i+2 && x < width; x++ {
				for row := y; row < y+dy; row++ {
					w.dst.Pixels[row*width+x] = w.end.Pixels[row*width+x]
				}
				// The start frame slides down below the revealed rows.
				ny := y + dy
				for row := height - 1; row >= ny; row-- {
					w.dst.Pixels[row*width+x] = w.start.Pixels[(row-ny)*width+x]
				}
			}
			w.y[i] = y + dy
			done = false
		}
	}
	return done
}

func (w *Wipe) colorXForm(ticks int) bool {
	changed := false
	for i, c := range w.dst.Pixels {
		e := w.end.Pixels[i]
		if c == e {
			continue
		}
		changed = true
		if c > e {
			if int(c)-ticks < int(e) {
				w.dst.Pixels[i] = e
			} else {
				w.dst.Pixels[i] = c - byte(ticks)
			}
		} else {
			if int(c)+ticks > int(e) {
				w.dst.Pixels[i] = e
			} else {
				w.dst.Pixels[i] = c + byte(ticks)
			}
		}
	}
	return !changed
}

// TickSource reports the game tick counter.
type TickSource interface {
	Ticks() int
}

// ClockTicks counts TicRate ticks from its creation.
type ClockTicks struct {
	start time.Time
}

// NewClockTicks starts a tick clock.
func NewClockTicks() *ClockTicks {
	return &ClockTicks{start: time.Now()}
}

// Ticks implements TickSource.
func (c *ClockTicks) Ticks() int {
	return int(time.Since(c.start) * TicRate / time.Second)
}

// RunWipe drives w to completion. It busy-polls ticks until the counter
// moves, steps the wipe by the elapsed ticks and presents the frame. It
// returns ctx's error if ctx is done first.
func RunWipe(ctx context.Context, w *Wipe, ticks TickSource, p Presenter) error {
	last := ticks.Ticks()
	for {
		var now int
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			if now = ticks.Ticks(); now != last {
				break
			}
		}
		done := w.Step(now - last)
		last = now
		if p != nil {
			p.Present()
		}
		if done {
			Logger().Info("wipe complete", "kind", w.Kind)
			return nil
		}
	}
}
