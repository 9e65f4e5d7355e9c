// Package automap draws the top-down level map: it keeps a pan/zoom window
// in map space, follows or frees itself from the player, clips level lines
// to the frame and colors them by what the player has seen.
package automap

import (
	"github.com/taigrr/doomview/pkg/fixed"
	"github.com/taigrr/doomview/pkg/level"
	"github.com/taigrr/doomview/pkg/render"
)

// Map geometry and motion constants.
const (
	PlayerRadius = 16 * fixed.FracUnit

	// PanInc is the pan speed in frame pixels per tic.
	PanInc = 4

	// ZoomIn and ZoomOut scale by 1.02 per tic, doubling in about a second.
	ZoomIn  fixed.Fixed = 66846 // 1.02
	ZoomOut fixed.Fixed = 64250 // 1/1.02

	// initialZoom places the first view a little inside the whole map.
	initialZoom fixed.Fixed = 45875 // 0.7

	// MapBlockUnits is the grid spacing in map units.
	MapBlockUnits = 128
)

// Messages posted to the HUD.
const (
	MsgFollowOn  = "Follow Mode On"
	MsgFollowOff = "Follow Mode Off"
	MsgGridOn    = "Grid ON"
	MsgGridOff   = "Grid OFF"
)

// State is whether the automap is shown.
type State int

const (
	Inactive State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "inactive"
}

// Engine is the automap.
type Engine struct {
	sink   render.PixelSink
	fw, fh int
	colors Colors
	post   func(string)

	// State and the orthogonal mode flags.
	State   State
	Overlay bool
	Rotate  bool
	Follow  bool
	Grid    bool

	// Cheat is the map cheat level: 1 shows every line, 2 adds things.
	Cheat int

	win Window

	bigState               bool
	oldX, oldY, oldW, oldH fixed.Fixed
	oldLoc                 MapPoint

	lvl    *level.Level
	player *level.Player

	stopped              bool
	lastEpisode, lastMap int
	clock                int
}

// Option configures an Engine during creation.
type Option func(*Engine)

// WithColors sets the line colors.
func WithColors(c Colors) Option {
	return func(e *Engine) {
		e.colors = c
	}
}

// WithMessages sets the function that receives HUD messages.
func WithMessages(post func(string)) Option {
	return func(e *Engine) {
		e.post = post
	}
}

// WithFrame limits the map to the top-left w x h pixels of the sink, for
// example to leave room for a status bar.
func WithFrame(w, h int) Option {
	return func(e *Engine) {
		e.fw, e.fh = w, h
	}
}

// New creates an automap drawing into sink.
func New(sink render.PixelSink, opts ...Option) *Engine {
	w, h := sink.Bounds()
	e := &Engine{
		sink:        sink,
		fw:          w,
		fh:          h,
		colors:      DefaultColors(),
		post:        func(string) {},
		stopped:     true,
		lastEpisode: -1,
		lastMap:     -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Window returns a copy of the current window state.
func (e *Engine) Window() Window { return e.win }

// Clock returns the number of tics the map has been open.
func (e *Engine) Clock() int { return e.clock }

// Active reports whether the map is shown.
func (e *Engine) Active() bool { return e.State == Active }

// LevelInit computes the scale limits for lvl. Start calls it when the
// level changes.
func (e *Engine) LevelInit(lvl *level.Level) {
	e.lvl = lvl
	e.findMinMaxBoundaries()

	w := &e.win
	w.ScaleMtoF = fixed.Div(w.MinScale, initialZoom)
	if w.ScaleMtoF > w.MaxScale {
		w.ScaleMtoF = w.MinScale
	}
	w.ScaleFtoM = fixed.Reciprocal(w.ScaleMtoF)

	render.Logger().Info("automap level init",
		"episode", lvl.Episode, "map", lvl.Map,
		"min_scale", w.MinScale, "max_scale", w.MaxScale, "scale", w.ScaleMtoF)
}

func (e *Engine) findMinMaxBoundaries() {
	w := &e.win
	b := e.lvl.Bounds()
	w.MinX, w.MinY, w.MaxX, w.MaxY = b.MinX, b.MinY, b.MaxX, b.MaxY

	maxW := max(w.MaxX-w.MinX, fixed.FracUnit)
	maxH := max(w.MaxY-w.MinY, fixed.FracUnit)
	a := fixed.Div(fixed.FromInt(e.fw), maxW)
	c := fixed.Div(fixed.FromInt(e.fh), maxH)
	w.MinScale = min(a, c)
	w.MaxScale = fixed.Div(fixed.FromInt(e.fh), 2*PlayerRadius)
}

// Start opens the map for player on lvl. Scale limits are recomputed
// only when the episode or map number changed since the last Start.
func (e *Engine) Start(lvl *level.Level, player *level.Player) {
	if !e.stopped {
		e.Stop()
	}
	e.stopped = false
	if lvl.Episode != e.lastEpisode || lvl.Map != e.lastMap {
		e.LevelInit(lvl)
		e.lastEpisode, e.lastMap = lvl.Episode, lvl.Map
	}
	e.lvl = lvl
	e.player = player
	e.initVariables()
	render.Logger().Debug("automap started", "episode", lvl.Episode, "map", lvl.Map)
}

// Stop closes the map.
func (e *Engine) Stop() {
	e.State = Inactive
	e.Overlay = false
	e.stopped = true
	render.Logger().Debug("automap stopped")
}

func (e *Engine) initVariables() {
	e.State = Active
	e.oldLoc.X = fixed.MaxFixed
	e.clock = 0

	w := &e.win
	w.PanInc = MapPoint{}
	w.FtoMZoomMul = fixed.FracUnit
	w.MtoFZoomMul = fixed.FracUnit

	w.W = e.ftom(e.fw)
	w.H = e.ftom(e.fh)
	w.X = e.player.X - w.W/2
	w.Y = e.player.Y - w.H/2
	e.changeWindowLoc()

	e.oldX, e.oldY, e.oldW, e.oldH = w.X, w.Y, w.W, w.H
}

// Ticker advances the map by one tic.
func (e *Engine) Ticker() {
	if e.State != Active {
		return
	}
	e.clock++

	if e.Follow {
		e.doFollowPlayer()
	}
	if e.win.FtoMZoomMul != fixed.FracUnit {
		e.changeWindowScale()
	}
	if e.win.PanInc.X != 0 || e.win.PanInc.Y != 0 {
		e.changeWindowLoc()
	}
}
