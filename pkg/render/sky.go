package render

import (
	"fmt"

	"github.com/taigrr/doomview/pkg/fixed"
)

// SkyMode selects how sky planes are drawn.
type SkyMode int

const (
	SkyTextured  SkyMode = iota // cylindrical texture indexed by view angle
	SkyFlatColor                // one solid color
)

func (m SkyMode) String() string {
	switch m {
	case SkyTextured:
		return "textured"
	case SkyFlatColor:
		return "flat"
	}
	return fmt.Sprintf("SkyMode(%d)", int(m))
}

// AngleToSkyShift turns a view angle into a sky column: 1024 columns
// around the full circle, so a 256 wide texture repeats four times.
const AngleToSkyShift = 22

// SkyTexture is a sky patch addressed by column. Width must be a power of
// two.
type SkyTexture interface {
	Width() int
	Column(x int) []byte
}

// SkyRenderer draws sky planes. Skies are always full bright and are not
// affected by the invulnerability colormap.
type SkyRenderer struct {
	Mode    SkyMode
	Color   byte // SkyFlatColor fill
	Texture SkyTexture

	TextureMid fixed.Fixed
	FracStep   fixed.Fixed
	Colormap   *Colormap

	raster *Rasterizer
	vars   ColumnVars
}

// NewSkyRenderer creates a textured sky renderer. The texture's top row
// lands on the top screen row.
func NewSkyRenderer(r *Rasterizer, tex SkyTexture) *SkyRenderer {
	if tex != nil {
		if w := tex.Width(); w <= 0 || w&(w-1) != 0 {
			panic(fmt.Sprintf("render: sky width %d is not a power of two", w))
		}
	}
	w, _ := r.Bounds()
	step := fixed.Div(fixed.FromInt(baseWidth), fixed.FromInt(w))
	mode := SkyTextured
	if tex == nil {
		mode = SkyFlatColor
	}
	return &SkyRenderer{
		Mode:       mode,
		Color:      Shade(RampSky, 10),
		Texture:    tex,
		TextureMid: fixed.Mul(fixed.FromInt(r.CenterY), step),
		FracStep:   step,
		Colormap:   IdentityColormap(),
		raster:     r,
	}
}

// SkyColumn returns the texture column for screen column x.
func (s *SkyRenderer) SkyColumn(view *PlaneView, x int) int {
	a := view.ViewAngle + view.XToViewAngle[x]
	return int(a>>AngleToSkyShift) & (s.Texture.Width() - 1)
}

// DrawSky fills every marked column of a sky plane.
func (s *SkyRenderer) DrawSky(pl *Visplane, view *PlaneView) {
	v := &s.vars
	for x := pl.MinX; x <= pl.MaxX; x++ {
		top, bottom, ok := pl.Column(x)
		if !ok {
			continue
		}
		v.X, v.YL, v.YH = x, top, bottom

		if s.Mode == SkyFlatColor || s.Texture == nil {
			v.Fill = s.Color
			s.raster.DrawColumn(v, ColumnFill)
			continue
		}
		v.Source = s.Texture.Column(s.SkyColumn(view, x))
		v.TextureMid = s.TextureMid
		v.FracStep = s.FracStep
		v.Colormap = s.Colormap
		v.Translation = nil
		s.raster.DrawColumn(v, ColumnWall)
	}
}
