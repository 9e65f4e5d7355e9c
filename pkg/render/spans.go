package render

import (
	"fmt"

	"github.com/taigrr/doomview/pkg/fixed"
)

// FlatSize is the side of a square flat texture.
const FlatSize = 64

// SpanVars is one horizontal span job. Position and Step pack the U and V
// accumulators into one word; see PackSpan.
type SpanVars struct {
	Y      int
	X1, X2 int // inclusive

	Source   []byte // 64x64 flat, row-major
	Colormap *Colormap

	Position uint32
	Step     uint32
}

// PackSpan packs U (xfrac) into the high 16 bits and V (yfrac) into the
// low 16 bits, each keeping 6 integer and 10 fractional bits.
func PackSpan(xfrac, yfrac fixed.Fixed) uint32 {
	return uint32(xfrac<<10)&0xffff0000 | uint32(yfrac>>6)&0x0000ffff
}

// SpanSpot extracts the flat texel index from a packed accumulator.
func SpanSpot(position uint32) int {
	return int((position>>4)&0x0fc0 | position>>26)
}

// DrawSpan draws pixels X1..X2 of row Y.
func (r *Rasterizer) DrawSpan(v *SpanVars) {
	count := v.X2 - v.X1
	if count < 0 {
		return
	}
	if len(v.Source) < FlatSize*FlatSize {
		panic(fmt.Sprintf("render: DrawSpan: flat has %d bytes, need %d", len(v.Source), FlatSize*FlatSize))
	}
	src, cm := v.Source, v.Colormap
	pos := v.Position
	for x := v.X1; x <= v.X2; x++ {
		r.sink.WritePixel(x, v.Y, cm[src[SpanSpot(pos)]])
		pos += v.Step
	}
}

// fieldOfView is the horizontal field of view in fine angles (90 degrees).
const fieldOfView = 2048

// PlaneView holds the per-view projection tables and the per-frame view
// position used to texture floors and ceilings.
type PlaneView struct {
	Width, Height int
	CenterX       int
	CenterY       int
	CenterXFrac   fixed.Fixed

	// YSlope is the distance factor of each screen row.
	YSlope []fixed.Fixed
	// DistScale corrects each column's distance for its angle off center.
	DistScale []fixed.Fixed
	// XToViewAngle is the view-relative angle of each column edge.
	XToViewAngle []fixed.Angle
	// ViewAngleToX maps fine angles in the view cone to screen columns.
	ViewAngleToX []int

	ViewX, ViewY, ViewZ fixed.Fixed
	ViewAngle           fixed.Angle
	BaseXScale          fixed.Fixed
	BaseYScale          fixed.Fixed

	planeHeight fixed.Fixed
	planeLight  int

	cachedHeight   []fixed.Fixed
	cachedDistance []fixed.Fixed
	cachedXStep    []fixed.Fixed
	cachedYStep    []fixed.Fixed
	spanStart      []int

	lighting *Lighting
	raster   *Rasterizer
	span     SpanVars
}

// NewPlaneView builds the projection tables for the rasterizer's screen.
func NewPlaneView(r *Rasterizer, lt *Lighting) *PlaneView {
	w, h := r.Bounds()
	if h > MaxViewHeight {
		panic(fmt.Sprintf("render: view height %d exceeds %d rows", h, MaxViewHeight))
	}
	v := &PlaneView{
		Width:          w,
		Height:         h,
		CenterX:        w / 2,
		CenterY:        r.CenterY,
		CenterXFrac:    fixed.FromInt(w / 2),
		YSlope:         make([]fixed.Fixed, h),
		DistScale:      make([]fixed.Fixed, w),
		XToViewAngle:   make([]fixed.Angle, w+1),
		ViewAngleToX:   make([]int, fixed.FineAngles/2),
		cachedHeight:   make([]fixed.Fixed, h),
		cachedDistance: make([]fixed.Fixed, h),
		cachedXStep:    make([]fixed.Fixed, h),
		cachedYStep:    make([]fixed.Fixed, h),
		spanStart:      make([]int, h),
		lighting:       lt,
		raster:         r,
	}
	v.initTextureMapping()

	for i := range v.YSlope {
		dy := fixed.Abs(fixed.FromInt(i-v.CenterY) + fixed.FracUnit/2)
		v.YSlope[i] = fixed.Div(fixed.FromInt(w/2), dy)
	}
	for i := range v.DistScale {
		cosadj := fixed.Abs(fixed.Cos(v.XToViewAngle[i]))
		v.DistScale[i] = fixed.Div(fixed.FracUnit, cosadj)
	}
	return v
}

func (v *PlaneView) initTextureMapping() {
	focal := fixed.Div(v.CenterXFrac, fixed.FineTangent[fixed.FineAngles/4+fieldOfView/2])

	for i := range v.ViewAngleToX {
		var t int
		switch tan := fixed.FineTangent[i]; {
		case tan > 2*fixed.FracUnit:
			t = -1
		case tan < -2*fixed.FracUnit:
			t = v.Width + 1
		default:
			t = int((v.CenterXFrac - fixed.Mul(tan, focal) + fixed.FracUnit - 1) >> fixed.FracBits)
			t = fixed.Clamp(t, -1, v.Width+1)
		}
		v.ViewAngleToX[i] = t
	}

	// Each column gets the smallest angle that maps to it.
	for x := 0; x <= v.Width; x++ {
		i := 0
		for v.ViewAngleToX[i] > x {
			i++
		}
		v.XToViewAngle[x] = fixed.Angle(i<<fixed.AngleToFineShift) - fixed.Angle90
	}

	for i, t := range v.ViewAngleToX {
		switch t {
		case -1:
			v.ViewAngleToX[i] = 0
		case v.Width + 1:
			v.ViewAngleToX[i] = v.Width
		}
	}
}

// ClipAngle is the view-relative angle of the left screen edge.
func (v *PlaneView) ClipAngle() fixed.Angle {
	return v.XToViewAngle[0]
}

// SetupFrame positions the view for a new frame.
func (v *PlaneView) SetupFrame(x, y, z fixed.Fixed, angle fixed.Angle) {
	v.ViewX, v.ViewY, v.ViewZ, v.ViewAngle = x, y, z, angle

	a := angle - fixed.Angle90
	v.BaseXScale = fixed.Div(fixed.Cos(a), v.CenterXFrac)
	v.BaseYScale = -fixed.Div(fixed.Sin(a), v.CenterXFrac)
	clear(v.cachedHeight)
}

// SetupPlane selects the plane height above or below the eye and its
// sector light for the following MapPlane calls.
func (v *PlaneView) SetupPlane(height fixed.Fixed, light int) {
	v.planeHeight = fixed.Abs(height - v.ViewZ)
	v.planeLight = light
}

// SetSource selects the flat texture for the following MapPlane calls.
func (v *PlaneView) SetSource(flat []byte) {
	v.span.Source = flat
}

// MapPlane draws row y from x1 to x2 of the current plane.
func (v *PlaneView) MapPlane(y, x1, x2 int) {
	if x2 < x1 {
		return
	}
	var distance, xstep, ystep fixed.Fixed
	if v.planeHeight != v.cachedHeight[y] {
		v.cachedHeight[y] = v.planeHeight
		distance = fixed.Mul(v.planeHeight, v.YSlope[y])
		xstep = fixed.Mul(distance, v.BaseXScale)
		ystep = fixed.Mul(distance, v.BaseYScale)
		v.cachedDistance[y] = distance
		v.cachedXStep[y] = xstep
		v.cachedYStep[y] = ystep
	} else {
		distance = v.cachedDistance[y]
		xstep = v.cachedXStep[y]
		ystep = v.cachedYStep[y]
	}

	length := fixed.Mul(distance, v.DistScale[x1])
	angle := v.ViewAngle + v.XToViewAngle[x1]
	xfrac := v.ViewX + fixed.Mul(fixed.Cos(angle), length)
	yfrac := -v.ViewY - fixed.Mul(fixed.Sin(angle), length)

	s := &v.span
	s.Y, s.X1, s.X2 = y, x1, x2
	s.Colormap = v.lighting.PlaneColormap(v.planeLight, distance)
	s.Position = PackSpan(xfrac, yfrac)
	s.Step = PackSpan(xstep, ystep)
	v.raster.DrawSpan(s)
}

// MakeSpans turns the column boundary change between x-1 (t1..b1) and x
// (t2..b2) into spans: rows that close at x are drawn from where they
// opened, rows that open at x record their start.
func (v *PlaneView) MakeSpans(x, t1, b1, t2, b2 int) {
	for t1 < t2 && t1 <= b1 {
		v.MapPlane(t1, v.spanStart[t1], x-1)
		t1++
	}
	for b1 > b2 && b1 >= t1 {
		v.MapPlane(b1, v.spanStart[b1], x-1)
		b1--
	}
	for t2 < t1 && t2 <= b2 {
		v.spanStart[t2] = x
		t2++
	}
	for b2 > b1 && b2 >= t2 {
		v.spanStart[b2] = x
		b2--
	}
}

// DrawPlane spans a whole visplane with the given flat.
func (v *PlaneView) DrawPlane(pl *Visplane, flat []byte) {
	v.SetupPlane(pl.Height, pl.Light)
	v.SetSource(flat)

	pl.Top[pl.MaxX+2] = emptyTop
	pl.Top[pl.MinX] = emptyTop
	for x := pl.MinX; x <= pl.MaxX+1; x++ {
		v.MakeSpans(x,
			int(pl.Top[x]), int(pl.Bottom[x]),
			int(pl.Top[x+1]), int(pl.Bottom[x+1]))
	}
}
