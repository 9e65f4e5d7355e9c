package automap

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/taigrr/doomview/pkg/fixed"
	"github.com/taigrr/doomview/pkg/level"
	"github.com/taigrr/doomview/pkg/render"
)

// startDemo opens the map on the demo level in a 320x200 frame.
func startDemo(t testing.TB, opts ...Option) (*Engine, *render.Framebuffer, *level.Player) {
	t.Helper()
	fb := render.NewFramebuffer(320, 200)
	lvl := level.Demo()
	p, ok := lvl.PlayerStart()
	if !ok {
		t.Fatal("demo has no player start")
	}
	e := New(fb, opts...)
	e.Start(lvl, &p)
	return e, fb, &p
}

func press(e *Engine, k Key) bool {
	return e.Responder(Event{Type: KeyDown, Key: k})
}

func release(e *Engine, k Key) bool {
	return e.Responder(Event{Type: KeyUp, Key: k})
}

func TestLevelInitScales(t *testing.T) {
	e, _, _ := startDemo(t)
	w := e.Window()

	// 200 pixels over 1024 units is tighter than 320 over 1408.
	if w.MinScale != 12800 {
		t.Errorf("MinScale = %d, want 12800", w.MinScale)
	}
	// 200 pixels over two player radii.
	if w.MaxScale != 409600 {
		t.Errorf("MaxScale = %d, want 409600", w.MaxScale)
	}
	if want := fixed.Div(w.MinScale, initialZoom); w.ScaleMtoF != want {
		t.Errorf("ScaleMtoF = %d, want %d", w.ScaleMtoF, want)
	}
	if w.ScaleFtoM != fixed.Reciprocal(w.ScaleMtoF) {
		t.Errorf("ScaleFtoM = %d, want reciprocal of %d", w.ScaleFtoM, w.ScaleMtoF)
	}
	if !e.Active() || e.State.String() != "active" {
		t.Errorf("State = %v, want active", e.State)
	}
}

func TestStartMemoizesLevel(t *testing.T) {
	e, _, p := startDemo(t)
	initial := e.Window().ScaleMtoF

	press(e, KeyZoomIn)
	for range 10 {
		e.Ticker()
	}
	release(e, KeyZoomIn)
	zoomed := e.Window().ScaleMtoF
	if zoomed <= initial {
		t.Fatalf("zoom in did not grow scale: %d -> %d", initial, zoomed)
	}

	e.Stop()
	e.Start(e.lvl, p)
	if got := e.Window().ScaleMtoF; got != zoomed {
		t.Errorf("restart on same map reset scale to %d, want %d", got, zoomed)
	}

	next := level.Demo()
	next.Map = 2
	e.Start(next, p)
	if got := e.Window().ScaleMtoF; got != initial {
		t.Errorf("new map scale = %d, want %d", got, initial)
	}
}

func TestZoomClampsExactly(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want func(Window) fixed.Fixed
	}{
		{"in", KeyZoomIn, func(w Window) fixed.Fixed { return w.MaxScale }},
		{"out", KeyZoomOut, func(w Window) fixed.Fixed { return w.MinScale }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, _, _ := startDemo(t)
			press(e, tc.key)
			for range 400 {
				e.Ticker()
			}
			w := e.Window()
			if w.ScaleMtoF != tc.want(w) {
				t.Errorf("ScaleMtoF = %d, want limit %d", w.ScaleMtoF, tc.want(w))
			}
			if w.ScaleFtoM != fixed.Reciprocal(w.ScaleMtoF) {
				t.Errorf("ScaleFtoM = %d, not the reciprocal", w.ScaleFtoM)
			}
		})
	}
}

// checkWindow verifies the window lies inside the level box, or is
// centered on an axis where it is larger.
func checkWindow(t *testing.T, w Window) {
	t.Helper()
	axis := func(name string, pos, size, lo, hi fixed.Fixed) {
		if size > hi-lo {
			if want := lo - (size-(hi-lo))/2; pos != want {
				t.Fatalf("%s = %d, want centered %d", name, pos, want)
			}
			return
		}
		if pos < lo || pos+size > hi {
			t.Fatalf("%s span [%d, %d] outside [%d, %d]", name, pos, pos+size, lo, hi)
		}
	}
	axis("x", w.X, w.W, w.MinX, w.MaxX)
	axis("y", w.Y, w.H, w.MinY, w.MaxY)
	if w.X2 != w.X+w.W || w.Y2 != w.Y+w.H {
		t.Fatalf("corner (%d, %d) inconsistent with size", w.X2, w.Y2)
	}
	if w.ScaleMtoF < w.MinScale || w.ScaleMtoF > w.MaxScale {
		t.Fatalf("scale %d outside [%d, %d]", w.ScaleMtoF, w.MinScale, w.MaxScale)
	}
}

func TestWindowStaysInBounds(t *testing.T) {
	e, _, _ := startDemo(t)
	checkWindow(t, e.Window())

	keys := []Key{KeyPanUp, KeyPanDown, KeyPanLeft, KeyPanRight, KeyZoomIn, KeyZoomOut, KeyGoBig}
	rng := rand.New(rand.NewPCG(1, 2))
	held := map[Key]bool{}

	for range 2000 {
		k := keys[rng.IntN(len(keys))]
		if held[k] || k == KeyGoBig && rng.IntN(4) == 0 {
			release(e, k)
			held[k] = false
		} else {
			press(e, k)
			held[k] = k != KeyGoBig
		}
		for range rng.IntN(5) {
			e.Ticker()
			checkWindow(t, e.Window())
		}
	}
}

func TestFollowTracksPlayer(t *testing.T) {
	e, _, p := startDemo(t)
	if got := press(e, KeyFollow); !got {
		t.Fatal("follow key not consumed")
	}

	p.X = fixed.FromInt(700)
	e.Ticker()

	w := e.Window()
	center := w.X + w.W/2
	if d := fixed.Abs(center - p.X); d > e.ftom(1)+fixed.FracUnit {
		t.Errorf("window center %v, player %v", center.Float64(), p.X.Float64())
	}
}

func TestPanLeavesFollowAlone(t *testing.T) {
	var msgs []string
	e, _, _ := startDemo(t, WithMessages(func(m string) { msgs = append(msgs, m) }))

	press(e, KeyFollow)
	if press(e, KeyPanRight) {
		t.Error("pan consumed while following")
	}
	if e.Window().PanInc != (MapPoint{}) {
		t.Errorf("PanInc = %+v while following", e.Window().PanInc)
	}

	press(e, KeyFollow)
	x := e.Window().X
	if !press(e, KeyPanRight) {
		t.Fatal("pan not consumed in free mode")
	}
	e.Ticker()
	if got := e.Window().X; got <= x {
		t.Errorf("pan right moved X from %d to %d", x, got)
	}
	release(e, KeyPanRight)
	if e.Window().PanInc.X != 0 {
		t.Error("release did not stop panning")
	}

	want := []string{"Follow Mode On", "Follow Mode Off"}
	if !slices.Equal(msgs, want) {
		t.Errorf("messages = %q, want %q", msgs, want)
	}
}

func TestGridMessages(t *testing.T) {
	var msgs []string
	e, _, _ := startDemo(t, WithMessages(func(m string) { msgs = append(msgs, m) }))

	press(e, KeyGrid)
	if !e.Grid {
		t.Error("grid not enabled")
	}
	press(e, KeyGrid)
	if e.Grid {
		t.Error("grid not disabled")
	}
	if want := []string{"Grid ON", "Grid OFF"}; !slices.Equal(msgs, want) {
		t.Errorf("messages = %q, want %q", msgs, want)
	}
}

func TestMapKeyCycle(t *testing.T) {
	fb := render.NewFramebuffer(320, 200)
	lvl := level.Demo()
	p, _ := lvl.PlayerStart()
	e := New(fb)

	if press(e, KeyMap) {
		t.Fatal("map key consumed before Bind")
	}
	e.Bind(lvl, &p)

	if press(e, KeyGrid) {
		t.Error("inactive map consumed grid key")
	}
	if !press(e, KeyMap) || !e.Active() || e.Overlay {
		t.Fatalf("first press: active=%v overlay=%v", e.Active(), e.Overlay)
	}
	if !press(e, KeyMap) || !e.Overlay || !e.Rotate || !e.Follow {
		t.Fatalf("second press: overlay=%v rotate=%v follow=%v", e.Overlay, e.Rotate, e.Follow)
	}
	if !press(e, KeyMap) || e.Active() {
		t.Fatalf("third press left map active")
	}
	if release(e, KeyMap) {
		t.Error("key release consumed")
	}
}

func TestGoBigRestores(t *testing.T) {
	e, _, _ := startDemo(t)
	before := e.Window()

	press(e, KeyGoBig)
	if w := e.Window(); w.ScaleMtoF != w.MinScale {
		t.Errorf("go big scale = %d, want %d", w.ScaleMtoF, w.MinScale)
	}

	press(e, KeyGoBig)
	after := e.Window()
	if after.X != before.X || after.Y != before.Y || after.W != before.W || after.H != before.H {
		t.Errorf("restored window %+v, want %+v", after, before)
	}
}

func TestCheatCycles(t *testing.T) {
	e, _, _ := startDemo(t)
	for _, want := range []int{1, 2, 0} {
		if press(e, KeyCheat) {
			t.Error("cheat key should pass through")
		}
		if e.Cheat != want {
			t.Errorf("Cheat = %d, want %d", e.Cheat, want)
		}
	}
}

func TestUnknownKeyPanics(t *testing.T) {
	for _, k := range []Key{-1, numKeys, 99} {
		t.Run(k.String(), func(t *testing.T) {
			e, _, _ := startDemo(t)
			defer func() {
				if recover() == nil {
					t.Errorf("key %d did not panic", int(k))
				}
			}()
			press(e, k)
		})
	}
}

func TestReciprocalOverScaleRange(t *testing.T) {
	e, _, _ := startDemo(t)
	w := e.Window()
	step := max((w.MaxScale-w.MinScale)/1000, 1)
	for s := w.MinScale; s <= w.MaxScale; s += step {
		r := fixed.Reciprocal(fixed.Reciprocal(s))
		slack := fixed.Fixed(int64(s)*int64(s)>>32) + 1
		if r < s || r-s > slack {
			t.Fatalf("round trip of %d = %d, slack %d", s, r, slack)
		}
	}
}

func TestTickerInactive(t *testing.T) {
	e := New(render.NewFramebuffer(64, 64))
	e.Ticker()
	e.Drawer()
	if e.Clock() != 0 {
		t.Errorf("inactive map ticked: clock %d", e.Clock())
	}
}
