package automap

import (
	"fmt"

	"github.com/taigrr/doomview/pkg/fixed"
	"github.com/taigrr/doomview/pkg/level"
)

// Key is a logical automap key. Front ends map physical keys onto these.
type Key int

const (
	KeyMap Key = iota // open, overlay, close
	KeyPanUp
	KeyPanDown
	KeyPanLeft
	KeyPanRight
	KeyZoomIn
	KeyZoomOut
	KeyGoBig // toggle between the whole map and the saved view
	KeyFollow
	KeyGrid
	KeyRotate
	KeyCheat // cycle the map cheat level
	numKeys
)

var keyNames = [numKeys]string{
	"map", "pan-up", "pan-down", "pan-left", "pan-right",
	"zoom-in", "zoom-out", "go-big", "follow", "grid", "rotate", "cheat",
}

func (k Key) String() string {
	if k < 0 || k >= numKeys {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return keyNames[k]
}

// EventType distinguishes presses from releases.
type EventType int

const (
	KeyDown EventType = iota
	KeyUp
)

// Event is one key transition.
type Event struct {
	Type EventType
	Key  Key
}

// Responder handles one input event and reports whether the automap
// consumed it. Events outside the Key range panic.
func (e *Engine) Responder(ev Event) bool {
	if ev.Key < 0 || ev.Key >= numKeys {
		panic(fmt.Sprintf("automap: unknown key %d", int(ev.Key)))
	}

	if e.State != Active {
		if ev.Type == KeyDown && ev.Key == KeyMap && e.lvl != nil && e.player != nil {
			e.Start(e.lvl, e.player)
			return true
		}
		return false
	}

	switch ev.Type {
	case KeyDown:
		return e.keyDown(ev.Key)
	case KeyUp:
		e.keyUp(ev.Key)
	}
	return false
}

// Bind sets the level and player that KeyMap opens the map on.
func (e *Engine) Bind(lvl *level.Level, player *level.Player) {
	e.lvl = lvl
	e.player = player
}

func (e *Engine) keyDown(k Key) bool {
	w := &e.win
	switch k {
	case KeyPanRight, KeyPanLeft, KeyPanUp, KeyPanDown:
		if e.Follow {
			return false
		}
		step := e.ftom(PanInc)
		switch k {
		case KeyPanRight:
			w.PanInc.X = step
		case KeyPanLeft:
			w.PanInc.X = -step
		case KeyPanUp:
			w.PanInc.Y = step
		case KeyPanDown:
			w.PanInc.Y = -step
		}
	case KeyZoomOut:
		w.MtoFZoomMul = ZoomOut
		w.FtoMZoomMul = ZoomIn
	case KeyZoomIn:
		w.MtoFZoomMul = ZoomIn
		w.FtoMZoomMul = ZoomOut
	case KeyMap:
		if e.Overlay {
			e.bigState = false
			e.Stop()
		} else {
			e.Overlay = true
			e.Rotate = true
			e.setFollow(true)
		}
	case KeyGoBig:
		e.bigState = !e.bigState
		if e.bigState {
			e.saveScaleAndLoc()
			e.minOutWindowScale()
		} else {
			e.restoreScaleAndLoc()
		}
	case KeyFollow:
		e.setFollow(!e.Follow)
		if e.Follow {
			e.post(MsgFollowOn)
		} else {
			e.post(MsgFollowOff)
		}
	case KeyGrid:
		e.Grid = !e.Grid
		if e.Grid {
			e.post(MsgGridOn)
		} else {
			e.post(MsgGridOff)
		}
	case KeyRotate:
		e.Rotate = !e.Rotate
	case KeyCheat:
		e.Cheat = (e.Cheat + 1) % 3
		return false
	}
	return true
}

func (e *Engine) keyUp(k Key) {
	w := &e.win
	switch k {
	case KeyPanRight, KeyPanLeft:
		if !e.Follow {
			w.PanInc.X = 0
		}
	case KeyPanUp, KeyPanDown:
		if !e.Follow {
			w.PanInc.Y = 0
		}
	case KeyZoomIn, KeyZoomOut:
		w.MtoFZoomMul = fixed.FracUnit
		w.FtoMZoomMul = fixed.FracUnit
	}
}

func (e *Engine) setFollow(on bool) {
	e.Follow = on
	e.oldLoc.X = fixed.MaxFixed
	if on {
		e.win.PanInc = MapPoint{}
	}
}
