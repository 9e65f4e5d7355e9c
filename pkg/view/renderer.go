// Package view is a reference player view: a column ray caster over level
// lines that feeds walls, visplanes, the sky and sprites to the render
// package the way a BSP walk would.
package view

import (
	"cmp"
	"math"
	"slices"

	"github.com/taigrr/doomview/pkg/fixed"
	"github.com/taigrr/doomview/pkg/level"
	"github.com/taigrr/doomview/pkg/render"
)

// Projection limits.
const (
	minDistance = 4.0
	maxScale    = 64 * fixed.FracUnit
)

// Renderer draws the player's view of a level.
type Renderer struct {
	Raster   *render.Rasterizer
	View     *render.PlaneView
	Planes   *render.VisplaneManager
	Sky      *render.SkyRenderer
	Lighting *render.Lighting
	Textures *Textures
	Level    *level.Level

	width, height int
	centerYFrac   fixed.Fixed

	// depth is the distance of the solid wall that closed each column.
	depth   []float64
	hits    []hit
	sprites []sprite
	col     render.ColumnVars
}

// Option configures a Renderer during creation.
type Option func(*options)

type options struct {
	skyMode  render.SkyMode
	textures *Textures
}

// WithSkyMode selects a textured or flat colored sky.
func WithSkyMode(m render.SkyMode) Option {
	return func(o *options) {
		o.skyMode = m
	}
}

// WithTextures shares a texture set between renderers.
func WithTextures(t *Textures) Option {
	return func(o *options) {
		o.textures = t
	}
}

// New creates a renderer for lvl drawing through r.
func New(r *render.Rasterizer, lvl *level.Level, maps *render.Colormaps, opts ...Option) *Renderer {
	o := options{skyMode: render.SkyTextured}
	for _, opt := range opts {
		opt(&o)
	}
	if o.textures == nil {
		o.textures = NewTextures()
	}

	w, h := r.Bounds()
	lt := render.NewLighting(maps, w)
	pv := render.NewPlaneView(r, lt)
	sky := render.NewSkyRenderer(r, o.textures.Sky())
	sky.Mode = o.skyMode

	rd := &Renderer{
		Raster:      r,
		View:        pv,
		Sky:         sky,
		Lighting:    lt,
		Textures:    o.textures,
		Level:       lvl,
		width:       w,
		height:      h,
		centerYFrac: fixed.FromInt(r.CenterY),
		depth:       make([]float64, w),
	}
	rd.Planes = render.NewVisplaneManager(pv,
		render.WithSkyFlat(lvl.SkyFlat),
		render.WithSky(sky))

	render.Logger().Debug("view renderer created", "width", w, "height", h, "sky", o.skyMode)
	return rd
}

// SetLevel switches to another level and drops the plane arena.
func (rd *Renderer) SetLevel(lvl *level.Level) {
	rd.Level = lvl
	rd.Planes.ResetPlanes()
}

// hit is a ray crossing a line.
type hit struct {
	line  int
	dist  float64 // along the ray
	u     float64 // map units from V1
	front bool    // viewer is on the line's front side
}

// RenderPlayerView draws one frame from p's eye and marks the lines it
// saw as mapped.
func (rd *Renderer) RenderPlayerView(p *level.Player) {
	rd.Planes.ClearPlanes()
	rd.View.SetupFrame(p.X, p.Y, p.Z, p.Angle)

	rd.Lighting.Fixed = nil
	if p.Invulnerable {
		rd.Lighting.Fixed = &rd.Lighting.Maps[render.InverseColormap]
	}

	px, py := p.X.Float64(), p.Y.Float64()
	for x := range rd.width {
		rd.renderColumn(x, px, py, p)
	}
	rd.Planes.DrawPlanes(rd.Textures)
	rd.drawSprites(p)
}

func (rd *Renderer) castRay(px, py float64, a fixed.Angle) []hit {
	dx, dy := math.Cos(a.Radians()), math.Sin(a.Radians())
	lvl := rd.Level
	rd.hits = rd.hits[:0]

	for i := range lvl.Lines {
		ln := &lvl.Lines[i]
		va, vb := lvl.Endpoints(ln)
		ax, ay := float64(va.X), float64(va.Y)
		ex, ey := float64(vb.X)-ax, float64(vb.Y)-ay

		denom := dx*ey - dy*ex
		if math.Abs(denom) < 1e-9 {
			continue
		}
		ox, oy := ax-px, ay-py
		t := (ox*ey - oy*ex) / denom
		s := (ox*dy - oy*dx) / denom
		if t <= 1e-6 || s < 0 || s > 1 {
			continue
		}

		// Front is on the right walking from V1 to V2.
		side := ex*(py-ay) - ey*(px-ax)
		front := side <= 0
		if !front && !ln.TwoSided() {
			continue
		}
		rd.hits = append(rd.hits, hit{
			line:  i,
			dist:  t,
			u:     s * math.Hypot(ex, ey),
			front: front,
		})
	}
	slices.SortFunc(rd.hits, func(a, b hit) int {
		return cmp.Compare(a.dist, b.dist)
	})
	return rd.hits
}

// row is the first screen row at or below world height h.
func (rd *Renderer) row(h int16, z, scale fixed.Fixed) int {
	y := rd.centerYFrac - fixed.Mul(fixed.FromInt(h)-z, scale)
	return int((y + fixed.FracUnit - 1) >> fixed.FracBits)
}

func (rd *Renderer) renderColumn(x int, px, py float64, p *level.Player) {
	lvl := rd.Level
	planes := rd.Planes
	ray := p.Angle + rd.View.XToViewAngle[x]
	cosAdj := math.Cos(rd.View.XToViewAngle[x].Radians())

	rd.depth[x] = math.Inf(1)
	cc, fc := planes.CeilingClip[x], planes.FloorClip[x]

	for _, h := range rd.castRay(px, py, ray) {
		if cc+1 >= fc {
			break
		}
		ln := &lvl.Lines[h.line]
		ln.Flags |= level.Mapped

		near, far := lvl.Front(ln), lvl.Back(ln)
		if !h.front {
			near, far = far, near
		}

		dist := max(h.dist*cosAdj, minDistance)
		scale := min(fixed.Div(rd.View.CenterXFrac, fixed.FromFloat(dist)), maxScale)
		top := rd.row(near.Ceiling, p.Z, scale)
		bottom := rd.row(near.Floor, p.Z, scale)
		u := int(h.u)

		if fixed.FromInt(near.Ceiling) > p.Z || near.CeilingPic == lvl.SkyFlat {
			rd.mark(x, fixed.FromInt(near.Ceiling), near.CeilingPic, near.Light, cc+1, min(top-1, fc-1))
		}
		if fixed.FromInt(near.Floor) < p.Z {
			rd.mark(x, fixed.FromInt(near.Floor), near.FloorPic, near.Light, max(bottom, cc+1), fc-1)
		}

		if far == nil {
			rd.wall(x, max(top, cc+1), min(bottom-1, fc-1), LineTexture(ln.Special), u,
				fixed.FromInt(near.Ceiling)-p.Z, scale, near.Light)
			cc = fc - 1
			rd.depth[x] = dist
			break
		}

		farCeil := far.Ceiling
		if near.CeilingPic == lvl.SkyFlat && far.CeilingPic == lvl.SkyFlat {
			farCeil = near.Ceiling
		}
		farTop := rd.row(farCeil, p.Z, scale)
		farBottom := rd.row(far.Floor, p.Z, scale)

		tex := WallStep
		if far.Floor == far.Ceiling {
			tex = WallDoor
		}
		if special := LineTexture(ln.Special); special != WallBrick {
			tex = special
		}
		if farCeil < near.Ceiling {
			rd.wall(x, max(top, cc+1), min(farTop-1, fc-1), tex, u,
				fixed.FromInt(near.Ceiling)-p.Z, scale, near.Light)
		}
		if far.Floor > near.Floor {
			rd.wall(x, max(farBottom, cc+1), min(bottom-1, fc-1), tex, u,
				fixed.FromInt(far.Floor)-p.Z, scale, near.Light)
		}

		cc = max(cc, max(top, farTop)-1)
		fc = min(fc, min(bottom, farBottom))
		if cc+1 >= fc {
			rd.depth[x] = dist
		}
	}
	planes.CeilingClip[x], planes.FloorClip[x] = cc, fc
}

// mark adds rows top..bottom of column x to the matching visplane.
func (rd *Renderer) mark(x int, height fixed.Fixed, picnum, light, top, bottom int) {
	top, bottom = max(top, 0), min(bottom, rd.height-1)
	if top > bottom {
		return
	}
	pm := rd.Planes
	h := pm.FindPlane(height, picnum, light)
	h = pm.CheckPlane(h, x, x)
	pm.MarkColumn(h, x, top, bottom)
}

func (rd *Renderer) wall(x, yl, yh, tex, u int, mid, scale fixed.Fixed, light int) {
	if yl > yh {
		return
	}
	v := &rd.col
	v.X, v.YL, v.YH = x, max(yl, 0), min(yh, rd.height-1)
	v.Source = rd.Textures.WallColumn(tex, u)
	v.TextureMid = mid
	v.FracStep = fixed.Div(fixed.FracUnit, scale)
	v.Colormap = rd.Lighting.WallColormap(light, scale)
	v.Translation = nil
	rd.Raster.DrawColumn(v, render.ColumnWall)
}
