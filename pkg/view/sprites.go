package view

import (
	"cmp"
	"math"
	"slices"

	"github.com/taigrr/doomview/pkg/fixed"
	"github.com/taigrr/doomview/pkg/level"
	"github.com/taigrr/doomview/pkg/render"
)

// sprite is a thing projected for this frame.
type sprite struct {
	depth  float64
	center float64 // screen x of the sprite's center
	scale  fixed.Fixed
	floor  int16
	light  int
	kind   render.ColumnKind
	trans  *render.Colormap
}

// spriteKind reports how a thing type is drawn, if at all.
func (rd *Renderer) spriteKind(typ int) (render.ColumnKind, *render.Colormap, bool) {
	switch typ {
	case level.ThingSpectre:
		return render.ColumnFuzz, nil, true
	case level.ThingZombieman:
		return render.ColumnSprite, &rd.Textures.Translation, true
	}
	return 0, nil, false
}

func (rd *Renderer) projectSprites(p *level.Player) {
	rd.sprites = rd.sprites[:0]
	lvl := rd.Level
	px, py := p.X.Float64(), p.Y.Float64()
	sin, cos := math.Sincos(p.Angle.Radians())
	centerX := float64(rd.View.CenterX)

	for _, t := range lvl.Things {
		kind, trans, ok := rd.spriteKind(t.Type)
		if !ok {
			continue
		}
		dx, dy := float64(t.X)-px, float64(t.Y)-py
		depth := dx*cos + dy*sin
		if depth < minDistance {
			continue
		}
		side := dx*sin - dy*cos
		sec := lvl.SectorAt(fixed.FromInt(t.X), fixed.FromInt(t.Y))
		if sec == level.NoSector {
			continue
		}
		rd.sprites = append(rd.sprites, sprite{
			depth:  depth,
			center: centerX + side*centerX/depth,
			scale:  min(fixed.Div(rd.View.CenterXFrac, fixed.FromFloat(depth)), maxScale),
			floor:  lvl.Sectors[sec].Floor,
			light:  lvl.Sectors[sec].Light,
			kind:   kind,
			trans:  trans,
		})
	}

	// Far to near.
	slices.SortFunc(rd.sprites, func(a, b sprite) int {
		return cmp.Compare(b.depth, a.depth)
	})
}

func (rd *Renderer) drawSprites(p *level.Player) {
	rd.projectSprites(p)
	for i := range rd.sprites {
		rd.drawSprite(&rd.sprites[i], p.Z)
	}
}

func (rd *Renderer) drawSprite(s *sprite, z fixed.Fixed) {
	half := SpriteWidth / 2 * s.scale.Float64()
	x1 := int(math.Ceil(s.center - half))
	x2 := int(math.Floor(s.center + half))
	if x2 < 0 || x1 >= rd.width || x2 < x1 {
		return
	}

	v := &rd.col
	v.Colormap = rd.Lighting.WallColormap(s.light, s.scale)
	v.Translation = s.trans
	v.FracStep = fixed.Div(fixed.FracUnit, s.scale)
	v.TextureMid = fixed.FromInt(s.floor+SpriteHeight) - z
	bottom := rd.row(s.floor, z, s.scale) - 1

	for x := max(x1, 0); x <= min(x2, rd.width-1); x++ {
		if s.depth >= rd.depth[x] {
			continue
		}
		u := (x - x1) * SpriteWidth / (x2 - x1 + 1)
		src, top := rd.Textures.SpriteColumn(u)
		v.X = x
		v.YL = max(rd.row(s.floor+SpriteHeight-int16(top), z, s.scale), 0)
		v.YH = min(bottom, rd.height-1)
		v.Source = src
		rd.Raster.DrawColumn(v, s.kind)
	}
}
