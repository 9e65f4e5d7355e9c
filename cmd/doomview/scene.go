package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/taigrr/doomview/pkg/automap"
	"github.com/taigrr/doomview/pkg/fixed"
	"github.com/taigrr/doomview/pkg/level"
	"github.com/taigrr/doomview/pkg/render"
	"github.com/taigrr/doomview/pkg/view"
)

// Player movement limits in map units.
const (
	maxStep      = 24 // highest floor step the player can climb
	playerHeight = 56
	walkAccel    = 2.5  // units per frame added per key press
	walkMax      = 12.0 // units per frame
	turnAccel    = 0.05 // radians per frame added per key press
	turnMax      = 0.2  // radians per frame
)

// MotionAxis tracks a velocity that eases back to rest with a spring
type MotionAxis struct {
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // internal spring velocity (for animating Velocity toward 0)
}

// NewMotionAxis creates an axis whose velocity settles without overshoot
func NewMotionAxis(fps int) MotionAxis {
	return MotionAxis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// Push adds dv to the velocity, limited to [-limit, limit].
func (a *MotionAxis) Push(dv, limit float64) {
	a.Velocity = max(-limit, min(a.Velocity+dv, limit))
}

// Update returns this frame's velocity and decays it toward 0.
func (a *MotionAxis) Update() float64 {
	v := a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
	if math.Abs(a.Velocity) < 1e-3 {
		a.Velocity, a.velAccel = 0, 0
	}
	return v
}

// Motion holds the smoothed walk and turn speeds.
type Motion struct {
	Walk, Turn MotionAxis
}

func NewMotion(fps int) *Motion {
	return &Motion{Walk: NewMotionAxis(fps), Turn: NewMotionAxis(fps)}
}

// Config is the command line configuration shared by every scene.
type Config struct {
	Backend string
	Sky     render.SkyMode
	Fuzz    render.FuzzStrategy
	Wipe    render.WipeKind
	FPS     int
}

// Scene is one level being viewed: the screen, the player view and the
// automap drawing into the same sink.
type Scene struct {
	Level   *level.Level
	Player  level.Player
	Sink    render.PixelSink
	View    *view.Renderer
	Map     *automap.Engine
	Frame   *render.Framebuffer // chunky copy of the sink for presentation
	Palette render.Palette

	msg        string
	msgExpires time.Time
}

// msgDuration is how long an automap message stays on the status line.
const msgDuration = 4 * time.Second

// NewScene builds the rendering stack for lvl on a width x height screen.
// Textures may be nil.
func NewScene(cfg Config, lvl *level.Level, player level.Player, width, height int, tex *view.Textures) (*Scene, error) {
	if height > render.MaxViewHeight {
		return nil, fmt.Errorf("screen height %d exceeds %d", height, render.MaxViewHeight)
	}
	if cfg.Backend == render.BackendModeY && width%4 != 0 {
		return nil, fmt.Errorf("backend %q needs a width divisible by 4, got %d", cfg.Backend, width)
	}
	pal := render.DefaultPalette()
	sink, err := render.NewSink(cfg.Backend, width, height, &pal)
	if err != nil {
		return nil, err
	}
	if _, ok := sink.(render.Resolver); !ok {
		return nil, fmt.Errorf("backend %q cannot be presented", cfg.Backend)
	}
	w, h := sink.Bounds()

	maps := render.BuildColormaps(&pal)
	r := render.NewRasterizer(sink, render.WithFuzzStrategy(cfg.Fuzz))
	opts := []view.Option{view.WithSkyMode(cfg.Sky)}
	if tex != nil {
		opts = append(opts, view.WithTextures(tex))
	}

	s := &Scene{
		Level:   lvl,
		Player:  player,
		Sink:    sink,
		View:    view.New(r, lvl, maps, opts...),
		Frame:   render.NewFramebuffer(w, h),
		Palette: pal,
	}
	s.Frame.SetPalette(pal)
	s.Map = automap.New(sink, automap.WithMessages(s.post))
	s.Map.Bind(lvl, &s.Player)
	return s, nil
}

func (s *Scene) post(msg string) {
	s.msg = msg
	s.msgExpires = time.Now().Add(msgDuration)
}

// Message returns the current status line message, if any.
func (s *Scene) Message() string {
	if time.Now().After(s.msgExpires) {
		return ""
	}
	return s.msg
}

// Render draws one frame into the sink and resolves it into Frame.
func (s *Scene) Render() {
	full := s.Map.Active() && !s.Map.Overlay
	if !full {
		s.View.RenderPlayerView(&s.Player)
	}
	if s.Map.Active() {
		s.Map.Drawer()
	}
	s.Sink.(render.Resolver).Resolve(s.Frame)
}

// Tick advances the player and the automap by one frame.
func (s *Scene) Tick(m *Motion) {
	s.Move(m.Walk.Update(), m.Turn.Update())
	s.Map.Ticker()
}

// Move turns the player by turn radians and walks forward units,
// sliding along walls and refusing steps that are too high or too low.
func (s *Scene) Move(forward, turn float64) {
	p := &s.Player
	if turn != 0 {
		p.Angle += fixed.AngleFromRadians(turn)
	}
	if forward == 0 {
		return
	}
	sin, cos := math.Sincos(p.Angle.Radians())
	nx := p.X + fixed.FromFloat(forward*cos)
	ny := p.Y + fixed.FromFloat(forward*sin)

	for _, try := range [][2]fixed.Fixed{{nx, ny}, {nx, p.Y}, {p.X, ny}} {
		if sec, ok := s.canStand(try[0], try[1]); ok {
			p.X, p.Y = try[0], try[1]
			p.Z = fixed.FromInt(sec.Floor) + level.ViewHeight
			return
		}
	}
}

func (s *Scene) canStand(x, y fixed.Fixed) (*level.Sector, bool) {
	lvl := s.Level
	next := lvl.SectorAt(x, y)
	if next == level.NoSector {
		return nil, false
	}
	to := &lvl.Sectors[next]
	if to.Ceiling-to.Floor < playerHeight {
		return nil, false
	}
	if cur := lvl.SectorAt(s.Player.X, s.Player.Y); cur != level.NoSector {
		if to.Floor-lvl.Sectors[cur].Floor > maxStep {
			return nil, false
		}
	}
	return to, true
}

// ToggleMap runs the map key through the automap and reports whether the
// screen switched between the view and the full map.
func (s *Scene) ToggleMap() bool {
	before := s.Map.Active() && !s.Map.Overlay
	s.Map.Responder(automap.Event{Type: automap.KeyDown, Key: automap.KeyMap})
	s.Map.Responder(automap.Event{Type: automap.KeyUp, Key: automap.KeyMap})
	return before != (s.Map.Active() && !s.Map.Overlay)
}

func parseSky(v string) (render.SkyMode, error) {
	switch strings.ToLower(v) {
	case "textured", "":
		return render.SkyTextured, nil
	case "flat":
		return render.SkyFlatColor, nil
	}
	return 0, fmt.Errorf("unknown sky mode %q (use textured or flat)", v)
}

func parseFuzz(v string) (render.FuzzStrategy, error) {
	for _, s := range []render.FuzzStrategy{render.FuzzAuto, render.FuzzReadBack, render.FuzzFixedColors} {
		if strings.EqualFold(v, s.String()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown fuzz strategy %q (use auto, readback or fixed)", v)
}

func parseWipe(v string) (render.WipeKind, error) {
	for _, k := range []render.WipeKind{render.WipeMelt, render.WipeColorXForm} {
		if strings.EqualFold(v, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown wipe %q (use melt or colorxform)", v)
}

// parseSize parses WIDTHxHEIGHT. Heights above render.MaxViewHeight are
// rejected.
func parseSize(v string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(v), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q is not WIDTHxHEIGHT", v)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("size width: %w", err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("size height: %w", err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("size %q must be positive", v)
	}
	if h > render.MaxViewHeight {
		return 0, 0, fmt.Errorf("size height %d exceeds %d", h, render.MaxViewHeight)
	}
	return w, h, nil
}
