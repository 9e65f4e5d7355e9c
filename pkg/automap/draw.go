package automap

import (
	"github.com/taigrr/doomview/pkg/fixed"
	"github.com/taigrr/doomview/pkg/render"
)

// arrowR is the player arrow length.
const arrowR = 8 * PlayerRadius / 7

// playerArrow points along +x and is rotated to the player's angle.
var playerArrow = [...]MapLine{
	{MapPoint{-arrowR + arrowR/8, 0}, MapPoint{arrowR, 0}},
	{MapPoint{arrowR, 0}, MapPoint{arrowR - arrowR/2, arrowR / 4}},
	{MapPoint{arrowR, 0}, MapPoint{arrowR - arrowR/2, -arrowR / 4}},
	{MapPoint{-arrowR + arrowR/8, 0}, MapPoint{-arrowR - arrowR/8, arrowR / 4}},
	{MapPoint{-arrowR + arrowR/8, 0}, MapPoint{-arrowR - arrowR/8, -arrowR / 4}},
	{MapPoint{-arrowR + 3*arrowR/8, 0}, MapPoint{-arrowR + arrowR/8, arrowR / 4}},
	{MapPoint{-arrowR + 3*arrowR/8, 0}, MapPoint{-arrowR + arrowR/8, -arrowR / 4}},
}

// thingTriangle is a unit triangle scaled up for things.
var thingTriangle = [...]MapLine{
	{MapPoint{-56819, -32768}, MapPoint{56819, -32768}}, // (-0.867, -0.5) (0.867, -0.5)
	{MapPoint{56819, -32768}, MapPoint{0, fixed.FracUnit}},
	{MapPoint{0, fixed.FracUnit}, MapPoint{-56819, -32768}},
}

const thingScale = 16 * fixed.FracUnit

// Drawer renders the map for the current tic.
func (e *Engine) Drawer() {
	if e.State != Active {
		return
	}
	if !e.Overlay {
		e.clearFrame(e.colors.Background)
	}
	if e.Grid {
		e.drawGrid(e.colors.Grid)
	}
	e.drawWalls()
	e.drawPlayer()
	if e.Cheat == 2 {
		e.drawThings(e.colors.Thing)
	}
	if !e.Follow {
		e.drawCrosshair(e.colors.Crosshair)
	}
}

func (e *Engine) clearFrame(c byte) {
	if w, h := e.sink.Bounds(); w == e.fw && h == e.fh {
		if fb, ok := e.sink.(interface{ Clear(byte) }); ok {
			fb.Clear(c)
			return
		}
	}
	for y := range e.fh {
		for x := range e.fw {
			e.sink.WritePixel(x, y, c)
		}
	}
}

func (e *Engine) drawMline(ml MapLine, c byte) {
	var fl FrameLine
	if e.ClipLine(ml, &fl) {
		render.DrawLine(e.sink, fl.A.X, fl.A.Y, fl.B.X, fl.B.Y, c)
	}
}

// rotation is the angle that turns the player's facing to straight up.
func (e *Engine) rotation() fixed.Angle {
	return fixed.Angle90 - e.player.Angle
}

// rotateAroundPlayer applies the rotate mode transform to p.
func (e *Engine) rotateAroundPlayer(p *MapPoint) {
	x, y := p.X-e.player.X, p.Y-e.player.Y
	Rotate(&x, &y, e.rotation())
	p.X, p.Y = x+e.player.X, y+e.player.Y
}

// drawGrid draws lines every MapBlockUnits, aligned to the level origin.
func (e *Engine) drawGrid(c byte) {
	w := &e.win
	const unit = fixed.Fixed(MapBlockUnits << fixed.FracBits)

	start := w.X
	if r := (start - w.MinX) % unit; r != 0 {
		if r < 0 {
			r += unit
		}
		start += unit - r
	}
	for x := start; x < w.X+w.W; x += unit {
		e.drawMline(MapLine{MapPoint{x, w.Y}, MapPoint{x, w.Y + w.H}}, c)
	}

	start = w.Y
	if r := (start - w.MinY) % unit; r != 0 {
		if r < 0 {
			r += unit
		}
		start += unit - r
	}
	for y := start; y < w.Y+w.H; y += unit {
		e.drawMline(MapLine{MapPoint{w.X, y}, MapPoint{w.X + w.W, y}}, c)
	}
}

func (e *Engine) drawWalls() {
	allMap := e.player != nil && e.player.AllMap
	for i := range e.lvl.Lines {
		ln := &e.lvl.Lines[i]
		c, ok := e.colors.For(Classify(e.lvl, ln, e.Cheat, allMap))
		if !ok {
			continue
		}
		a, b := e.lvl.Endpoints(ln)
		ml := MapLine{
			MapPoint{fixed.FromInt(a.X), fixed.FromInt(a.Y)},
			MapPoint{fixed.FromInt(b.X), fixed.FromInt(b.Y)},
		}
		if e.Rotate {
			e.rotateAroundPlayer(&ml.A)
			e.rotateAroundPlayer(&ml.B)
		}
		e.drawMline(ml, c)
	}
}

// drawCharacter draws a line figure scaled, turned by angle and moved to
// (x, y). A zero scale leaves the figure's size unchanged.
func (e *Engine) drawCharacter(lines []MapLine, scale fixed.Fixed, angle fixed.Angle, c byte, x, y fixed.Fixed) {
	for _, l := range lines {
		if scale != 0 {
			l.A.X, l.A.Y = fixed.Mul(scale, l.A.X), fixed.Mul(scale, l.A.Y)
			l.B.X, l.B.Y = fixed.Mul(scale, l.B.X), fixed.Mul(scale, l.B.Y)
		}
		if angle != 0 {
			Rotate(&l.A.X, &l.A.Y, angle)
			Rotate(&l.B.X, &l.B.Y, angle)
		}
		l.A.X += x
		l.A.Y += y
		l.B.X += x
		l.B.Y += y
		e.drawMline(l, c)
	}
}

func (e *Engine) drawPlayer() {
	angle := e.player.Angle
	if e.Rotate {
		angle = fixed.Angle90
	}
	e.drawCharacter(playerArrow[:], 0, angle, e.colors.Player, e.player.X, e.player.Y)
}

func (e *Engine) drawThings(c byte) {
	for _, t := range e.lvl.Things {
		p := MapPoint{fixed.FromInt(t.X), fixed.FromInt(t.Y)}
		angle := fixed.AngleFromDegrees(t.Angle)
		if e.Rotate {
			e.rotateAroundPlayer(&p)
			angle += e.rotation()
		}
		e.drawCharacter(thingTriangle[:], thingScale, angle, c, p.X, p.Y)
	}
}

func (e *Engine) drawCrosshair(c byte) {
	e.sink.WritePixel(e.fw/2, e.fh/2, c)
}
