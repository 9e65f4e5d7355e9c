package automap

import "github.com/taigrr/doomview/pkg/fixed"

// FramePoint is a pixel position in the frame.
type FramePoint struct {
	X, Y int
}

// FrameLine is a segment in frame coordinates.
type FrameLine struct {
	A, B FramePoint
}

// Outcode bits for Cohen-Sutherland clipping.
const (
	outLeft = 1 << iota
	outRight
	outBottom
	outTop
)

// maxClipSteps bounds the clip loop; each step moves one endpoint onto a
// frame edge, so a line needs at most four.
const maxClipSteps = 8

func (e *Engine) outcode(x, y int) int {
	oc := 0
	if y < 0 {
		oc |= outTop
	} else if y >= e.fh {
		oc |= outBottom
	}
	if x < 0 {
		oc |= outLeft
	} else if x >= e.fw {
		oc |= outRight
	}
	return oc
}

// ClipLine rejects ml if it cannot touch the window, otherwise converts it
// to frame coordinates and clips it to the frame. On success both
// endpoints of out lie inside the frame; on rejection out is untouched.
func (e *Engine) ClipLine(ml MapLine, out *FrameLine) bool {
	w := &e.win

	// Trivial rejects in map space.
	var oc1, oc2 int
	if ml.A.Y > w.Y2 {
		oc1 = outTop
	} else if ml.A.Y < w.Y {
		oc1 = outBottom
	}
	if ml.B.Y > w.Y2 {
		oc2 = outTop
	} else if ml.B.Y < w.Y {
		oc2 = outBottom
	}
	if oc1&oc2 != 0 {
		return false
	}
	if ml.A.X < w.X {
		oc1 |= outLeft
	} else if ml.A.X > w.X2 {
		oc1 |= outRight
	}
	if ml.B.X < w.X {
		oc2 |= outLeft
	} else if ml.B.X > w.X2 {
		oc2 |= outRight
	}
	if oc1&oc2 != 0 {
		return false
	}

	fl := FrameLine{
		A: FramePoint{e.cxmtof(ml.A.X), e.cymtof(ml.A.Y)},
		B: FramePoint{e.cxmtof(ml.B.X), e.cymtof(ml.B.Y)},
	}
	// A point inside the window can round one pixel past the far edges.
	if oc1 == 0 {
		fl.A = e.clampFrame(fl.A)
	}
	if oc2 == 0 {
		fl.B = e.clampFrame(fl.B)
	}
	oc1 = e.outcode(fl.A.X, fl.A.Y)
	oc2 = e.outcode(fl.B.X, fl.B.Y)
	if oc1&oc2 != 0 {
		return false
	}

	for step := 0; oc1|oc2 != 0; step++ {
		if step == maxClipSteps {
			return false
		}
		outside := oc2
		if oc1 != 0 {
			outside = oc1
		}

		var p FramePoint
		switch {
		case outside&outTop != 0:
			dy := fl.A.Y - fl.B.Y
			dx := fl.B.X - fl.A.X
			p = FramePoint{fl.A.X + dx*fl.A.Y/dy, 0}
		case outside&outBottom != 0:
			dy := fl.A.Y - fl.B.Y
			dx := fl.B.X - fl.A.X
			p = FramePoint{fl.A.X + dx*(fl.A.Y-(e.fh-1))/dy, e.fh - 1}
		case outside&outRight != 0:
			dy := fl.B.Y - fl.A.Y
			dx := fl.B.X - fl.A.X
			p = FramePoint{e.fw - 1, fl.A.Y + dy*(e.fw-1-fl.A.X)/dx}
		case outside&outLeft != 0:
			dy := fl.B.Y - fl.A.Y
			dx := fl.B.X - fl.A.X
			p = FramePoint{0, fl.A.Y + dy*(-fl.A.X)/dx}
		}

		if outside == oc1 {
			fl.A = p
			oc1 = e.outcode(p.X, p.Y)
		} else {
			fl.B = p
			oc2 = e.outcode(p.X, p.Y)
		}
		if oc1&oc2 != 0 {
			return false
		}
	}

	*out = fl
	return true
}

func (e *Engine) clampFrame(p FramePoint) FramePoint {
	return FramePoint{fixed.Clamp(p.X, 0, e.fw-1), fixed.Clamp(p.Y, 0, e.fh-1)}
}

// Rotate turns (x, y) by a about the origin.
func Rotate(x, y *fixed.Fixed, a fixed.Angle) {
	sin, cos := fixed.Sin(a), fixed.Cos(a)
	tx := fixed.Mul(*x, cos) - fixed.Mul(*y, sin)
	*y = fixed.Mul(*x, sin) + fixed.Mul(*y, cos)
	*x = tx
}
