package render

import "image/color"

// Palette maps the 256 logical color indices to RGB.
type Palette [256]color.RGBA

// Colormap is a 256-entry remap applied to every texture sample before it
// reaches the sink. Light levels are colormaps.
type Colormap [256]byte

// Colormap indices beyond the light levels.
const (
	NumColormaps     = 32
	InverseColormap  = 32 // invulnerability
	BlackColormap    = 33
	TotalColormaps   = 34
	FuzzDarkColormap = 6
)

// Colormaps holds the light-level ramp plus the special maps.
type Colormaps [TotalColormaps]Colormap

// Ramps of the default palette. Each ramp has 16 shades ordered dark to
// bright; ramp 0 shade 0 is black.
const (
	RampGray = iota
	RampBrown
	RampRed
	RampGreen
	RampBlue
	RampYellow
	RampOrange
	RampTan
	RampCyan
	RampPurple
	RampSky
	RampOlive
	RampPink
	RampSteel
	RampRust
	RampFlesh
)

var rampBase = [16]color.RGBA{
	RampGray:   {255, 255, 255, 255},
	RampBrown:  {160, 104, 56, 255},
	RampRed:    {255, 40, 32, 255},
	RampGreen:  {64, 232, 64, 255},
	RampBlue:   {56, 72, 255, 255},
	RampYellow: {255, 236, 64, 255},
	RampOrange: {255, 148, 32, 255},
	RampTan:    {220, 188, 140, 255},
	RampCyan:   {48, 232, 232, 255},
	RampPurple: {176, 64, 232, 255},
	RampSky:    {120, 172, 255, 255},
	RampOlive:  {148, 148, 72, 255},
	RampPink:   {255, 140, 180, 255},
	RampSteel:  {140, 156, 172, 255},
	RampRust:   {180, 72, 40, 255},
	RampFlesh:  {240, 176, 148, 255},
}

// Shade returns the palette index of a ramp at brightness level 0..15.
func Shade(ramp, level int) byte {
	return byte((ramp&15)<<4 | level&15)
}

// DefaultPalette builds the 16x16 ramp palette.
func DefaultPalette() Palette {
	var p Palette
	for r, base := range rampBase {
		for s := range 16 {
			p[r<<4|s] = color.RGBA{
				R: uint8(int(base.R) * s / 15),
				G: uint8(int(base.G) * s / 15),
				B: uint8(int(base.B) * s / 15),
				A: 255,
			}
		}
	}
	return p
}

// Nearest returns the palette index closest to c. Ties resolve to the
// lowest index.
func (p *Palette) Nearest(c color.RGBA) byte {
	best, bestDist := 0, int(^uint(0)>>1)
	for i, e := range p {
		dr := int(e.R) - int(c.R)
		dg := int(e.G) - int(c.G)
		db := int(e.B) - int(c.B)
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			best, bestDist = i, d
			if d == 0 {
				break
			}
		}
	}
	return byte(best)
}

// BuildColormaps derives the light-level colormaps from p: map 0 is full
// bright, map 31 nearly black. Map 32 is the inverse grayscale used by the
// invulnerability power and map 33 is solid black.
func BuildColormaps(p *Palette) *Colormaps {
	cm := new(Colormaps)
	cache := make(map[color.RGBA]byte)
	nearest := func(c color.RGBA) byte {
		if i, ok := cache[c]; ok {
			return i
		}
		i := p.Nearest(c)
		cache[c] = i
		return i
	}

	for level := range NumColormaps {
		for i, c := range p {
			f := NumColormaps - level
			cm[level][i] = nearest(color.RGBA{
				R: uint8(int(c.R) * f / NumColormaps),
				G: uint8(int(c.G) * f / NumColormaps),
				B: uint8(int(c.B) * f / NumColormaps),
				A: 255,
			})
		}
	}
	for i, c := range p {
		lum := (int(c.R)*299 + int(c.G)*587 + int(c.B)*114) / 1000
		g := uint8(255 - lum)
		cm[InverseColormap][i] = nearest(color.RGBA{g, g, g, 255})
	}
	// BlackColormap stays zero: index 0 is black in the default palette.
	return cm
}
