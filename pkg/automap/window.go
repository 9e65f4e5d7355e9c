package automap

import "github.com/taigrr/doomview/pkg/fixed"

// MapPoint is a point in map space.
type MapPoint struct {
	X, Y fixed.Fixed
}

// MapLine is a segment in map space.
type MapLine struct {
	A, B MapPoint
}

// Window is the part of the map shown in the frame and the scale between
// the two spaces.
type Window struct {
	// X, Y is the lower-left corner; X2, Y2 the upper-right.
	X, Y, W, H, X2, Y2 fixed.Fixed

	// ScaleMtoF converts map units to frame pixels; ScaleFtoM is its
	// reciprocal.
	ScaleMtoF, ScaleFtoM fixed.Fixed

	// PanInc is the pan applied each tic.
	PanInc MapPoint

	// Zoom multipliers applied each tic; FracUnit when not zooming.
	MtoFZoomMul, FtoMZoomMul fixed.Fixed

	MinScale, MaxScale fixed.Fixed

	// Level bounding box.
	MinX, MinY, MaxX, MaxY fixed.Fixed
}

// mtof converts a map distance to frame pixels.
func (e *Engine) mtof(x fixed.Fixed) int {
	return int(fixed.Mul(x, e.win.ScaleMtoF) >> fixed.FracBits)
}

// ftom converts frame pixels to a map distance.
func (e *Engine) ftom(px int) fixed.Fixed {
	return fixed.Mul(fixed.FromInt(px), e.win.ScaleFtoM)
}

// cxmtof and cymtof map a point to frame coordinates; frame y grows down
// and the window's bottom edge lands on the last row.
func (e *Engine) cxmtof(x fixed.Fixed) int {
	return e.mtof(x - e.win.X)
}

func (e *Engine) cymtof(y fixed.Fixed) int {
	return e.fh - 1 - e.mtof(y-e.win.Y)
}

// clampWindow keeps the window inside the level bounding box. On an axis
// where the window is larger than the box it is centered instead.
func (e *Engine) clampWindow() {
	w := &e.win
	w.X = clampAxis(w.X, w.W, w.MinX, w.MaxX)
	w.Y = clampAxis(w.Y, w.H, w.MinY, w.MaxY)
	w.X2 = w.X + w.W
	w.Y2 = w.Y + w.H
}

func clampAxis(pos, size, lo, hi fixed.Fixed) fixed.Fixed {
	if size > hi-lo {
		return lo - (size-(hi-lo))/2
	}
	return fixed.Clamp(pos, lo, hi-size)
}

func (e *Engine) activateNewScale() {
	w := &e.win
	w.X += w.W / 2
	w.Y += w.H / 2
	w.W = e.ftom(e.fw)
	w.H = e.ftom(e.fh)
	w.X -= w.W / 2
	w.Y -= w.H / 2
	e.clampWindow()
}

func (e *Engine) saveScaleAndLoc() {
	e.oldX, e.oldY = e.win.X, e.win.Y
	e.oldW, e.oldH = e.win.W, e.win.H
}

func (e *Engine) restoreScaleAndLoc() {
	w := &e.win
	w.W, w.H = e.oldW, e.oldH
	if !e.Follow {
		w.X, w.Y = e.oldX, e.oldY
	} else {
		w.X = e.player.X - w.W/2
		w.Y = e.player.Y - w.H/2
	}
	w.ScaleMtoF = fixed.Clamp(fixed.Div(fixed.FromInt(e.fw), w.W), w.MinScale, w.MaxScale)
	w.ScaleFtoM = fixed.Reciprocal(w.ScaleMtoF)
	e.clampWindow()
}

func (e *Engine) minOutWindowScale() {
	e.win.ScaleMtoF = e.win.MinScale
	e.win.ScaleFtoM = fixed.Reciprocal(e.win.ScaleMtoF)
	e.activateNewScale()
}

func (e *Engine) maxOutWindowScale() {
	e.win.ScaleMtoF = e.win.MaxScale
	e.win.ScaleFtoM = fixed.Reciprocal(e.win.ScaleMtoF)
	e.activateNewScale()
}

// changeWindowScale applies one tic of zoom. A scale that would leave
// [MinScale, MaxScale] is replaced by the limit exactly.
func (e *Engine) changeWindowScale() {
	w := &e.win
	w.ScaleMtoF = fixed.Mul(w.ScaleMtoF, w.MtoFZoomMul)
	w.ScaleFtoM = fixed.Reciprocal(w.ScaleMtoF)

	switch {
	case w.ScaleMtoF < w.MinScale:
		e.minOutWindowScale()
	case w.ScaleMtoF > w.MaxScale:
		e.maxOutWindowScale()
	default:
		e.activateNewScale()
	}
}

// changeWindowLoc applies one tic of pan. Any pan leaves follow mode.
func (e *Engine) changeWindowLoc() {
	w := &e.win
	if w.PanInc.X != 0 || w.PanInc.Y != 0 {
		e.Follow = false
		e.oldLoc.X = fixed.MaxFixed
	}
	w.X += w.PanInc.X
	w.Y += w.PanInc.Y
	e.clampWindow()
}

// doFollowPlayer recenters on the player when it moved, snapping to the
// frame pixel grid so the map does not shimmer.
func (e *Engine) doFollowPlayer() {
	p := e.player
	if e.oldLoc.X == p.X && e.oldLoc.Y == p.Y {
		return
	}
	w := &e.win
	w.X = e.ftom(e.mtof(p.X)) - w.W/2
	w.Y = e.ftom(e.mtof(p.Y)) - w.H/2
	e.clampWindow()
	e.oldLoc = MapPoint{p.X, p.Y}
}
