package render

import (
	"fmt"

	"github.com/taigrr/doomview/pkg/fixed"
)

// ColumnKind selects how DrawColumn fills a column.
type ColumnKind int

const (
	ColumnWall   ColumnKind = iota // texture column, wraps every 128 texels
	ColumnSprite                   // texture column, clamped to the post
	ColumnFill                     // solid color
	ColumnFuzz                     // translucent static
)

func (k ColumnKind) String() string {
	switch k {
	case ColumnWall:
		return "wall"
	case ColumnSprite:
		return "sprite"
	case ColumnFill:
		return "fill"
	case ColumnFuzz:
		return "fuzz"
	}
	return fmt.Sprintf("ColumnKind(%d)", int(k))
}

// wallHeightMask wraps wall texture rows; wall textures are 128 tall.
const wallHeightMask = 127

// ColumnVars is one column job. The caller owns it; DrawColumn never keeps
// a reference.
type ColumnVars struct {
	X      int
	YL, YH int // inclusive; YH < YL is an empty column

	Source      []byte      // texture column (wall, sprite)
	TextureMid  fixed.Fixed // texture row at the view center line
	FracStep    fixed.Fixed // texture rows per screen row
	Colormap    *Colormap   // light level
	Translation *Colormap   // optional remap applied before Colormap

	Fill byte // color for ColumnFill
}

// FuzzStrategy selects how fuzz columns are produced.
type FuzzStrategy int

const (
	// FuzzAuto reads back when the sink supports it, else uses FuzzFixedColors.
	FuzzAuto FuzzStrategy = iota
	// FuzzReadBack darkens the neighbouring screen pixel through the dark colormap.
	FuzzReadBack
	// FuzzFixedColors cycles through four dark colors.
	FuzzFixedColors
)

func (s FuzzStrategy) String() string {
	switch s {
	case FuzzAuto:
		return "auto"
	case FuzzReadBack:
		return "readback"
	case FuzzFixedColors:
		return "fixed"
	}
	return fmt.Sprintf("FuzzStrategy(%d)", int(s))
}

// FuzzTableSize is the period of the fuzz animation.
const FuzzTableSize = 50

// FuzzOffsets is the horizontal pixel offset sampled at each fuzz step.
var FuzzOffsets = [FuzzTableSize]int{
	1, -1, 1, -1, 1, 1, -1,
	1, 1, -1, 1, 1, 1, -1,
	1, 1, 1, -1, -1, -1, -1,
	1, -1, -1, 1, 1, 1, 1, -1,
	1, -1, 1, 1, -1, -1, 1,
	1, -1, -1, -1, -1, 1, 1,
	1, 1, -1, 1, 1, -1, 1,
}

// FuzzPhase is the animation index shared by every fuzz column. It
// advances once per fuzz pixel and is never reset between columns, so
// the noise keeps moving across a whole silhouette.
type FuzzPhase struct {
	pos int
}

// Index returns the current position in the fuzz table.
func (p *FuzzPhase) Index() int { return p.pos }

// Advance steps the phase by one pixel.
func (p *FuzzPhase) Advance() {
	p.pos++
	if p.pos == FuzzTableSize {
		p.pos = 0
	}
}

// Reset returns the phase to the start of the table.
func (p *FuzzPhase) Reset() { p.pos = 0 }

// Set positions the phase, wrapping into the table.
func (p *FuzzPhase) Set(i int) {
	p.pos = ((i % FuzzTableSize) + FuzzTableSize) % FuzzTableSize
}

// Rasterizer draws columns and spans into a PixelSink.
type Rasterizer struct {
	sink   PixelSink
	reader PixelReader

	width, height int

	// CenterY is the screen row of the view center line.
	CenterY int

	fuzz         *FuzzPhase
	fuzzStrategy FuzzStrategy
	darkMap      *Colormap
	darkColors   [4]byte
}

// RasterizerOption configures a Rasterizer during creation.
type RasterizerOption func(*rasterizerOptions)

type rasterizerOptions struct {
	centerY    int
	fuzz       *FuzzPhase
	strategy   FuzzStrategy
	darkMap    *Colormap
	darkColors [4]byte
}

// WithCenterY overrides the view center row, default height/2.
func WithCenterY(y int) RasterizerOption {
	return func(o *rasterizerOptions) {
		o.centerY = y
	}
}

// WithFuzzPhase shares an existing phase counter.
func WithFuzzPhase(p *FuzzPhase) RasterizerOption {
	return func(o *rasterizerOptions) {
		o.fuzz = p
	}
}

// WithFuzzStrategy forces a fuzz strategy. FuzzReadBack on a sink without
// read support falls back to FuzzFixedColors.
func WithFuzzStrategy(s FuzzStrategy) RasterizerOption {
	return func(o *rasterizerOptions) {
		o.strategy = s
	}
}

// WithDarkColormap sets the colormap used to darken read-back fuzz pixels.
func WithDarkColormap(cm *Colormap) RasterizerOption {
	return func(o *rasterizerOptions) {
		o.darkMap = cm
	}
}

// WithDarkColors sets the four colors cycled by FuzzFixedColors.
func WithDarkColors(c [4]byte) RasterizerOption {
	return func(o *rasterizerOptions) {
		o.darkColors = c
	}
}

// NewRasterizer creates a rasterizer drawing into sink.
func NewRasterizer(sink PixelSink, opts ...RasterizerOption) *Rasterizer {
	w, h := sink.Bounds()
	o := rasterizerOptions{
		centerY: h / 2,
		darkColors: [4]byte{
			Shade(RampGray, 1), Shade(RampGray, 3),
			Shade(RampGray, 2), Shade(RampGray, 4),
		},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fuzz == nil {
		o.fuzz = new(FuzzPhase)
	}
	if o.darkMap == nil {
		o.darkMap = defaultDarkColormap()
	}

	r := &Rasterizer{
		sink:       sink,
		width:      w,
		height:     h,
		CenterY:    o.centerY,
		fuzz:       o.fuzz,
		darkMap:    o.darkMap,
		darkColors: o.darkColors,
	}
	reader, readable := sink.(PixelReader)
	switch {
	case o.strategy == FuzzFixedColors, !readable:
		r.fuzzStrategy = FuzzFixedColors
	default:
		r.fuzzStrategy = FuzzReadBack
		r.reader = reader
	}
	Logger().Debug("rasterizer created", "width", w, "height", h, "fuzz", r.fuzzStrategy)
	return r
}

// defaultDarkColormap darkens the default palette ramps to the
// brightness of light level 6.
func defaultDarkColormap() *Colormap {
	cm := new(Colormap)
	for i := range cm {
		cm[i] = Shade(i>>4, (i&15)*(NumColormaps-FuzzDarkColormap)/NumColormaps)
	}
	return cm
}

// Sink returns the sink the rasterizer draws into.
func (r *Rasterizer) Sink() PixelSink { return r.sink }

// Bounds returns the sink size.
func (r *Rasterizer) Bounds() (width, height int) { return r.width, r.height }

// Fuzz returns the shared fuzz phase.
func (r *Rasterizer) Fuzz() *FuzzPhase { return r.fuzz }

// FuzzStrategy reports the strategy in use.
func (r *Rasterizer) FuzzStrategy() FuzzStrategy { return r.fuzzStrategy }

// DrawColumn draws rows YL..YH of column X. An empty column does nothing.
func (r *Rasterizer) DrawColumn(v *ColumnVars, kind ColumnKind) {
	count := v.YH - v.YL + 1
	if count <= 0 {
		return
	}

	switch kind {
	case ColumnWall, ColumnSprite:
		r.drawTextured(v, count, kind)
	case ColumnFill:
		for y := v.YL; y <= v.YH; y++ {
			r.sink.WritePixel(v.X, y, v.Fill)
		}
	case ColumnFuzz:
		if r.fuzzStrategy == FuzzReadBack {
			r.drawFuzzReadBack(v)
		} else {
			r.drawFuzzFixed(v)
		}
	default:
		panic(fmt.Sprintf("render: DrawColumn: unknown column kind %d", int(kind)))
	}
}

func (r *Rasterizer) drawTextured(v *ColumnVars, count int, kind ColumnKind) {
	src := v.Source
	if len(src) == 0 {
		panic(fmt.Sprintf("render: DrawColumn: %s column %d has no source", kind, v.X))
	}
	if v.Colormap == nil {
		panic(fmt.Sprintf("render: DrawColumn: %s column %d has no colormap", kind, v.X))
	}
	cm, tr := v.Colormap, v.Translation

	frac := v.TextureMid + fixed.Fixed(v.YL-r.CenterY)*v.FracStep
	y := v.YL
	for ; count > 0; count-- {
		var i int
		if kind == ColumnWall {
			i = int(frac>>fixed.FracBits) & wallHeightMask
			if i >= len(src) {
				i %= len(src)
			}
		} else {
			i = fixed.Clamp(int(frac>>fixed.FracBits), 0, len(src)-1)
		}
		c := src[i]
		if tr != nil {
			c = tr[c]
		}
		r.sink.WritePixel(v.X, y, cm[c])
		y++
		frac += v.FracStep
	}
}

func (r *Rasterizer) drawFuzzReadBack(v *ColumnVars) {
	for y := v.YL; y <= v.YH; y++ {
		sx := fixed.Clamp(v.X+FuzzOffsets[r.fuzz.Index()], 0, r.width-1)
		r.sink.WritePixel(v.X, y, r.darkMap[r.reader.ReadPixel(sx, y)])
		r.fuzz.Advance()
	}
}

func (r *Rasterizer) drawFuzzFixed(v *ColumnVars) {
	for y := v.YL; y <= v.YH; y++ {
		r.sink.WritePixel(v.X, y, r.darkColors[r.fuzz.Index()&3])
		r.fuzz.Advance()
	}
}
