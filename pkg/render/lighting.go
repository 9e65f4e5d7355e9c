package render

import "github.com/taigrr/doomview/pkg/fixed"

// Light diminishing constants.
const (
	LightLevels     = 16
	LightSegShift   = 4
	MaxLightScale   = 48
	LightScaleShift = 12
	MaxLightZ       = 128
	LightZShift     = 20
	DistMap         = 2

	// baseWidth is the screen width the light falloff was tuned for.
	baseWidth = 320
)

// Lighting holds the distance-indexed colormap tables for a view size.
// Walls pick a map by projected scale, planes by distance.
type Lighting struct {
	Maps       *Colormaps
	ZLight     [LightLevels][MaxLightZ]*Colormap
	ScaleLight [LightLevels][MaxLightScale]*Colormap

	// Fixed overrides the light tables when set, e.g. the inverse map
	// while invulnerable.
	Fixed *Colormap

	// ExtraLight brightens every sector, as for weapon flashes.
	ExtraLight int
}

// NewLighting builds the light tables for a view viewWidth pixels wide.
func NewLighting(maps *Colormaps, viewWidth int) *Lighting {
	lt := &Lighting{Maps: maps}
	for i := range LightLevels {
		startMap := ((LightLevels - 1 - i) * 2) * NumColormaps / LightLevels
		for j := range MaxLightZ {
			scale := fixed.Div(fixed.FromInt(baseWidth/2), fixed.Fixed((j+1)<<LightZShift))
			scale >>= LightScaleShift
			level := fixed.Clamp(startMap-int(scale)/DistMap, 0, NumColormaps-1)
			lt.ZLight[i][j] = &maps[level]
		}
		for j := range MaxLightScale {
			level := fixed.Clamp(startMap-j*baseWidth/viewWidth/DistMap, 0, NumColormaps-1)
			lt.ScaleLight[i][j] = &maps[level]
		}
	}
	return lt
}

// LightIndex converts a sector light level (0..255) to a table row.
func (lt *Lighting) LightIndex(sectorLight int) int {
	return fixed.Clamp(sectorLight>>LightSegShift+lt.ExtraLight, 0, LightLevels-1)
}

// WallColormap returns the colormap for a wall column of the given
// projected scale.
func (lt *Lighting) WallColormap(sectorLight int, scale fixed.Fixed) *Colormap {
	if lt.Fixed != nil {
		return lt.Fixed
	}
	i := fixed.Clamp(int(scale>>LightScaleShift), 0, MaxLightScale-1)
	return lt.ScaleLight[lt.LightIndex(sectorLight)][i]
}

// PlaneColormap returns the colormap for a plane row at distance.
func (lt *Lighting) PlaneColormap(sectorLight int, distance fixed.Fixed) *Colormap {
	if lt.Fixed != nil {
		return lt.Fixed
	}
	i := fixed.Clamp(int(distance>>LightZShift), 0, MaxLightZ-1)
	return lt.ZLight[lt.LightIndex(sectorLight)][i]
}

// IdentityColormap returns a colormap that leaves every index unchanged.
func IdentityColormap() *Colormap {
	cm := new(Colormap)
	for i := range cm {
		cm[i] = byte(i)
	}
	return cm
}
