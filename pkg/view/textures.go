package view

import (
	"fmt"
	"math"

	"github.com/taigrr/doomview/pkg/level"
	"github.com/taigrr/doomview/pkg/render"
)

// Texture sizes.
const (
	WallWidth    = 64
	WallHeight   = 128
	SkyWidth     = 256
	SkyHeight    = 128
	SpriteWidth  = 32
	SpriteHeight = 56
)

// Wall texture numbers.
const (
	WallBrick = iota
	WallStep
	WallDoor
	WallBlueDoor
	WallYellowDoor
	WallRedDoor
	WallTeleport
	numWalls
)

// wallTexture is column-major so a column is a contiguous slice.
type wallTexture [WallWidth][WallHeight]byte

// Column returns texture column u, wrapping.
func (t *wallTexture) Column(u int) []byte {
	return t[u&(WallWidth-1)][:]
}

type skyTexture [SkyWidth][SkyHeight]byte

func (t *skyTexture) Width() int          { return SkyWidth }
func (t *skyTexture) Column(x int) []byte { return t[x&(SkyWidth-1)][:] }

type spriteTexture struct {
	cols [SpriteWidth][SpriteHeight]byte
	// top is the first opaque row of each column.
	top [SpriteWidth]int
}

// Textures holds the procedural art: walls, flats, the sky and sprites.
type Textures struct {
	walls  [numWalls]wallTexture
	flats  map[int][]byte
	sky    skyTexture
	custom render.SkyTexture
	sprite spriteTexture

	// Translation recolors the green ramp brown for the zombie sprite.
	Translation render.Colormap
}

// NewTextures generates every texture.
func NewTextures() *Textures {
	t := &Textures{flats: make(map[int][]byte)}
	t.genBrick(&t.walls[WallBrick], render.RampRust)
	t.genBrick(&t.walls[WallStep], render.RampTan)
	t.genDoor(&t.walls[WallDoor], render.RampSteel)
	t.genDoor(&t.walls[WallBlueDoor], render.RampBlue)
	t.genDoor(&t.walls[WallYellowDoor], render.RampYellow)
	t.genDoor(&t.walls[WallRedDoor], render.RampRed)
	t.genDoor(&t.walls[WallTeleport], render.RampPurple)

	t.flats[level.FlatFloor] = genChecker(render.RampGray, 5, 7)
	t.flats[level.FlatCeiling] = genChecker(render.RampTan, 6, 8)
	t.flats[level.FlatNukage] = genNukage()
	t.flats[level.FlatDoor] = genChecker(render.RampSteel, 6, 9)

	t.genSky()
	t.genSprite()

	for i := range t.Translation {
		t.Translation[i] = byte(i)
	}
	for l := range 16 {
		t.Translation[render.Shade(render.RampGreen, l)] = render.Shade(render.RampBrown, l)
	}
	return t
}

// WallColumn returns column u of wall texture n, wrapping u.
func (t *Textures) WallColumn(n, u int) []byte {
	return t.walls[n].Column(u)
}

// Flat implements render.FlatSource. Unknown flats use the floor.
func (t *Textures) Flat(picnum int) []byte {
	if f, ok := t.flats[picnum]; ok {
		return f
	}
	return t.flats[level.FlatFloor]
}

// Sky returns the sky texture.
func (t *Textures) Sky() render.SkyTexture {
	if t.custom != nil {
		return t.custom
	}
	return &t.sky
}

// SetSky replaces the procedural sky. It only affects renderers created
// afterwards.
func (t *Textures) SetSky(sky render.SkyTexture) {
	t.custom = sky
}

// LoadSky loads an image file as the sky, resampled to SkyWidth x
// SkyHeight and mapped onto pal.
func (t *Textures) LoadSky(path string, pal *render.Palette) error {
	pic, err := render.LoadPicture(path, SkyWidth, SkyHeight, pal, render.FilterBilinear)
	if err != nil {
		return fmt.Errorf("load sky: %w", err)
	}
	t.SetSky(pic)
	return nil
}

func (t *Textures) genBrick(tex *wallTexture, ramp int) {
	for u := range WallWidth {
		for v := range WallHeight {
			row := v / 16
			off := 0
			if row&1 == 1 {
				off = 16
			}
			mortar := v%16 == 15 || (u+off)%32 == 31
			shade := 9 + (u*7+v*13)%3
			if mortar {
				tex[u][v] = render.Shade(render.RampGray, 4)
			} else {
				tex[u][v] = render.Shade(ramp, shade)
			}
		}
	}
}

func (t *Textures) genDoor(tex *wallTexture, ramp int) {
	for u := range WallWidth {
		for v := range WallHeight {
			shade := 8
			switch {
			case u < 4 || u >= WallWidth-4:
				shade = 5
			case u%8 == 0:
				shade = 11
			case v < 12:
				shade = 13
			}
			tex[u][v] = render.Shade(ramp, shade)
		}
	}
}

// genChecker makes a flat of 8 texel squares in two shades.
func genChecker(ramp, a, b int) []byte {
	flat := make([]byte, render.FlatSize*render.FlatSize)
	for y := range render.FlatSize {
		for x := range render.FlatSize {
			s := a
			if (x/8+y/8)&1 == 1 {
				s = b
			}
			flat[y*render.FlatSize+x] = render.Shade(ramp, s)
		}
	}
	return flat
}

func genNukage() []byte {
	flat := make([]byte, render.FlatSize*render.FlatSize)
	for y := range render.FlatSize {
		for x := range render.FlatSize {
			w := math.Sin(float64(x)/5) + math.Cos(float64(y)/7)
			flat[y*render.FlatSize+x] = render.Shade(render.RampGreen, 8+int(w*2))
		}
	}
	return flat
}

func (t *Textures) genSky() {
	for x := range SkyWidth {
		for y := range SkyHeight {
			shade := 14 - y*10/SkyHeight
			a := float64(x) * 2 * math.Pi / SkyWidth
			cloud := math.Sin(a*3)+math.Sin(a*7+float64(y)/9) > 1.2 && y < SkyHeight/2
			if cloud {
				t.sky[x][y] = render.Shade(render.RampGray, 13)
			} else {
				t.sky[x][y] = render.Shade(render.RampSky, shade)
			}
		}
	}
}

// genSprite draws a round-shouldered figure: green body, flesh head.
func (t *Textures) genSprite() {
	s := &t.sprite
	for u := range SpriteWidth {
		d := (float64(u) - (SpriteWidth-1)/2.0) / (SpriteWidth / 2)
		s.top[u] = int(SpriteHeight / 2 * (1 - math.Sqrt(max(0, 1-d*d))))
		for v := range SpriteHeight {
			switch {
			case v < 14 && u >= 10 && u < 22:
				s.cols[u][v] = render.Shade(render.RampFlesh, 10)
			case v > 44:
				s.cols[u][v] = render.Shade(render.RampBrown, 6)
			default:
				s.cols[u][v] = render.Shade(render.RampGreen, 7+u%3)
			}
		}
	}
}

// SpriteColumn returns sprite column u and its first opaque row.
func (t *Textures) SpriteColumn(u int) ([]byte, int) {
	u = max(0, min(u, SpriteWidth-1))
	return t.sprite.cols[u][:], t.sprite.top[u]
}

// LineTexture picks the wall texture for a line special.
func LineTexture(special int) int {
	switch special {
	case level.SpecialBlueDoor:
		return WallBlueDoor
	case level.SpecialYellowDoor:
		return WallYellowDoor
	case level.SpecialRedDoor:
		return WallRedDoor
	}
	if level.TeleportSpecial(special) {
		return WallTeleport
	}
	return WallBrick
}
