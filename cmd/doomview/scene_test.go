package main

import (
	"math"
	"testing"

	"github.com/taigrr/doomview/pkg/automap"
	"github.com/taigrr/doomview/pkg/fixed"
	"github.com/taigrr/doomview/pkg/level"
	"github.com/taigrr/doomview/pkg/render"
)

func newTestScene(t *testing.T, backend string) *Scene {
	t.Helper()
	lvl := level.Demo()
	p, ok := lvl.PlayerStart()
	if !ok {
		t.Fatal("demo has no player start")
	}
	cfg := Config{Backend: backend, FPS: render.TicRate}
	s, err := NewScene(cfg, lvl, p, 160, 100, nil)
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	return s
}

func TestMoveStopsAtClosedDoor(t *testing.T) {
	s := newTestScene(t, render.BackendVGA)
	for range 200 {
		s.Move(8, 0)
	}
	p := s.Player
	if p.X <= fixed.FromInt(1000) || p.X > fixed.FromInt(1088) {
		t.Errorf("walked to x=%v, want just short of the yellow door", p.X.Float64())
	}
	if want := fixed.FromInt(24) + level.ViewHeight; p.Z != want {
		t.Errorf("eye height = %v, want %v", p.Z.Float64(), want.Float64())
	}
}

func TestMoveStopsAtWall(t *testing.T) {
	s := newTestScene(t, render.BackendVGA)
	s.Move(0, math.Pi)
	for range 50 {
		s.Move(8, 0)
	}
	if s.Player.X < 0 {
		t.Errorf("walked through the west wall to x=%v", s.Player.X.Float64())
	}
	if s.Player.X > fixed.FromInt(16) {
		t.Errorf("stopped early at x=%v", s.Player.X.Float64())
	}
}

func TestMoveTurns(t *testing.T) {
	s := newTestScene(t, render.BackendVGA)
	s.Move(0, math.Pi/2)
	diff := int64(s.Player.Angle) - int64(fixed.Angle90)
	if diff < -1<<16 || diff > 1<<16 {
		t.Errorf("angle = %#x, want about %#x", uint32(s.Player.Angle), uint32(fixed.Angle90))
	}
}

func TestMotionAxis(t *testing.T) {
	a := NewMotionAxis(render.TicRate)
	for range 10 {
		a.Push(walkAccel, walkMax)
	}
	if a.Velocity != walkMax {
		t.Fatalf("velocity = %v, want clamped to %v", a.Velocity, walkMax)
	}
	if v := a.Update(); v != walkMax {
		t.Errorf("first update returned %v, want %v", v, walkMax)
	}
	for range 200 {
		a.Update()
	}
	if a.Velocity != 0 {
		t.Errorf("velocity = %v after settling, want 0", a.Velocity)
	}
}

func TestToggleMapCycle(t *testing.T) {
	s := newTestScene(t, render.BackendVGA)

	if !s.ToggleMap() || !s.Map.Active() || s.Map.Overlay {
		t.Fatal("first toggle did not open the full map")
	}
	if !s.ToggleMap() || !s.Map.Overlay {
		t.Fatal("second toggle did not switch to the overlay")
	}
	// Overlay to view keeps the view on screen, so there is no wipe.
	if s.ToggleMap() || s.Map.Active() {
		t.Fatal("third toggle did not close the map quietly")
	}
}

func TestSceneMessages(t *testing.T) {
	s := newTestScene(t, render.BackendVGA)
	if s.Message() != "" {
		t.Fatal("message before any was posted")
	}
	s.ToggleMap()
	s.Map.Responder(automap.Event{Type: automap.KeyDown, Key: automap.KeyGrid})
	if got := s.Message(); got != automap.MsgGridOn {
		t.Errorf("message = %q, want %q", got, automap.MsgGridOn)
	}
}

func TestSceneBackends(t *testing.T) {
	tests := []struct {
		backend string
		w, h    int
	}{
		{render.BackendVGA, 160, 100},
		{render.BackendModeY, 160, 100},
		{render.BackendEGA, 160, 100},
		{render.BackendCGA, 160, 100},
		{render.BackendText, 80, 50},
	}

	for _, tc := range tests {
		t.Run(tc.backend, func(t *testing.T) {
			s := newTestScene(t, tc.backend)
			if s.Frame.Width != tc.w || s.Frame.Height != tc.h {
				t.Fatalf("frame = %dx%d, want %dx%d", s.Frame.Width, s.Frame.Height, tc.w, tc.h)
			}
			s.Render()
			first := s.Frame.Pixels[0]
			uniform := true
			for _, c := range s.Frame.Pixels {
				if c != first {
					uniform = false
					break
				}
			}
			if uniform {
				t.Error("rendered frame is a single color")
			}
		})
	}
}

func TestNewSceneRejects(t *testing.T) {
	lvl := level.Demo()
	p, _ := lvl.PlayerStart()
	tests := []struct {
		name    string
		backend string
		w, h    int
	}{
		{"unknown backend", "hercules", 160, 100},
		{"modey odd width", render.BackendModeY, 162, 100},
		{"too tall", render.BackendVGA, 320, 300},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewScene(Config{Backend: tc.backend}, lvl, p, tc.w, tc.h, nil); err == nil {
				t.Errorf("NewScene(%q, %dx%d) returned no error", tc.backend, tc.w, tc.h)
			}
		})
	}

	if _, err := NewScene(Config{Backend: render.BackendVGA}, lvl, p, 162, render.MaxViewHeight, nil); err != nil {
		t.Errorf("NewScene at the height limit: %v", err)
	}
}

func TestParseFlags(t *testing.T) {
	if m, err := parseSky("FLAT"); err != nil || m != render.SkyFlatColor {
		t.Errorf("parseSky(FLAT) = %v, %v", m, err)
	}
	if _, err := parseSky("stars"); err == nil {
		t.Error("parseSky accepted an unknown mode")
	}
	if s, err := parseFuzz("readback"); err != nil || s != render.FuzzReadBack {
		t.Errorf("parseFuzz(readback) = %v, %v", s, err)
	}
	if k, err := parseWipe("colorxform"); err != nil || k != render.WipeColorXForm {
		t.Errorf("parseWipe(colorxform) = %v, %v", k, err)
	}

	sizes := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{"320x200", 320, 200, false},
		{"640X400", 640, 400, false},
		{"320", 0, 0, true},
		{"0x200", 0, 0, true},
		{"axb", 0, 0, true},
		{"320x300", 0, 0, true},
		{"320x254", 320, 254, false},
	}
	for _, tc := range sizes {
		w, h, err := parseSize(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("parseSize(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if w != tc.w || h != tc.h {
			t.Errorf("parseSize(%q) = %dx%d, want %dx%d", tc.in, w, h, tc.w, tc.h)
		}
	}
}

func TestSceneSize(t *testing.T) {
	if w, h := sceneSize(82, 25); w != 80 || h != 48 {
		t.Errorf("sceneSize(82, 25) = %dx%d, want 80x48", w, h)
	}
	if _, h := sceneSize(200, 200); h > render.MaxViewHeight {
		t.Errorf("sceneSize height %d exceeds %d", h, render.MaxViewHeight)
	}
}
