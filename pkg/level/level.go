// Package level holds the read-only map geometry the renderer and automap
// consume: vertices, lines, sectors and things in map units.
package level

import (
	"errors"
	"fmt"

	"github.com/taigrr/doomview/pkg/fixed"
)

// ErrBadReference is returned by Validate when a line points at a vertex
// or sector that does not exist.
var ErrBadReference = errors.New("bad reference")

// Vertex is a map point in whole map units.
type Vertex struct {
	X, Y int16
}

// LineFlags are the line definition flags as stored in map data.
type LineFlags uint16

const (
	Blocking      LineFlags = 1 << iota // blocks players and monsters
	BlockMonsters                       // blocks monsters only
	TwoSided                            // has a back side
	DontPegTop                          // upper texture unpegged
	DontPegBottom                       // lower texture unpegged
	Secret                              // shown as a plain wall on the automap
	SoundBlock                          // blocks sound propagation
	DontDraw                            // never shown on the automap
	Mapped                              // seen by the player
)

// NoSector marks a missing back side.
const NoSector = -1

// Line is a wall segment between two vertices. Front is on the right
// walking from V1 to V2.
type Line struct {
	V1, V2  int
	Flags   LineFlags
	Special int
	Tag     int
	Front   int
	Back    int // NoSector if one-sided
}

// Has reports whether all of f are set.
func (l *Line) Has(f LineFlags) bool { return l.Flags&f == f }

// TwoSided reports whether the line has a back sector.
func (l *Line) TwoSided() bool { return l.Back != NoSector }

// SectorSecret is the sector special counted as a secret area.
const SectorSecret = 9

// Sector is a region with one floor and ceiling.
type Sector struct {
	Floor, Ceiling int16
	Light          int
	FloorPic       int
	CeilingPic     int
	Special        int
	Tag            int

	// OldSpecial keeps the special after it is cleared, so a found secret
	// is still known to have been one.
	OldSpecial int
}

// WasSecret reports whether the sector is or was a secret area.
func (s *Sector) WasSecret() bool { return s.OldSpecial == SectorSecret }

// Thing is a map object placement.
type Thing struct {
	X, Y  int16
	Angle int // degrees
	Type  int
}

// Thing types used by the demo.
const (
	ThingPlayer1     = 1
	ThingBlueCard    = 5
	ThingYellowCard  = 6
	ThingRedCard     = 13
	ThingSpectre     = 58
	ThingZombieman   = 3004
	ThingTeleportDst = 14
)

// Player is the state of the viewing player that the renderer and automap
// read each tic.
type Player struct {
	X, Y  fixed.Fixed
	Z     fixed.Fixed // eye height above the map origin
	Angle fixed.Angle

	AllMap       bool // computer area map power
	Invulnerable bool
}

// Bounds is a map-space bounding box.
type Bounds struct {
	MinX, MinY fixed.Fixed
	MaxX, MaxY fixed.Fixed
}

// Level is one map.
type Level struct {
	Episode, Map int
	Name         string

	Vertices []Vertex
	Lines    []Line
	Sectors  []Sector
	Things   []Thing

	// SkyFlat is the flat number that shows the sky.
	SkyFlat int
}

// Bounds returns the bounding box of all vertices.
func (l *Level) Bounds() Bounds {
	if len(l.Vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{
		MinX: fixed.MaxFixed, MinY: fixed.MaxFixed,
		MaxX: -fixed.MaxFixed, MaxY: -fixed.MaxFixed,
	}
	for _, v := range l.Vertices {
		x, y := fixed.FromInt(v.X), fixed.FromInt(v.Y)
		b.MinX = min(b.MinX, x)
		b.MaxX = max(b.MaxX, x)
		b.MinY = min(b.MinY, y)
		b.MaxY = max(b.MaxY, y)
	}
	return b
}

// Validate checks every reference. The renderer trusts the data, so
// loaders call this before handing a level over.
func (l *Level) Validate() error {
	nv, ns := len(l.Vertices), len(l.Sectors)
	for i, ln := range l.Lines {
		if ln.V1 < 0 || ln.V1 >= nv || ln.V2 < 0 || ln.V2 >= nv {
			return fmt.Errorf("line %d: vertex %d-%d of %d: %w", i, ln.V1, ln.V2, nv, ErrBadReference)
		}
		if ln.Front < 0 || ln.Front >= ns {
			return fmt.Errorf("line %d: front sector %d of %d: %w", i, ln.Front, ns, ErrBadReference)
		}
		if ln.Back != NoSector && (ln.Back < 0 || ln.Back >= ns) {
			return fmt.Errorf("line %d: back sector %d of %d: %w", i, ln.Back, ns, ErrBadReference)
		}
		if ln.TwoSided() != ln.Has(TwoSided) {
			return fmt.Errorf("line %d: two-sided flag disagrees with back sector %d: %w", i, ln.Back, ErrBadReference)
		}
	}
	return nil
}

// Endpoints returns the line's vertices in map units.
func (l *Level) Endpoints(line *Line) (a, b Vertex) {
	return l.Vertices[line.V1], l.Vertices[line.V2]
}

// Front returns the line's front sector.
func (l *Level) Front(line *Line) *Sector {
	return &l.Sectors[line.Front]
}

// Back returns the line's back sector, or nil if one-sided.
func (l *Level) Back(line *Line) *Sector {
	if line.Back == NoSector {
		return nil
	}
	return &l.Sectors[line.Back]
}

// PlayerStart returns the player placed at the first player 1 start, at
// eye height above the floor of the sector containing it.
func (l *Level) PlayerStart() (Player, bool) {
	for _, th := range l.Things {
		if th.Type != ThingPlayer1 {
			continue
		}
		p := Player{
			X:     fixed.FromInt(th.X),
			Y:     fixed.FromInt(th.Y),
			Angle: fixed.AngleFromDegrees(th.Angle),
		}
		var floor fixed.Fixed
		if s := l.SectorAt(p.X, p.Y); s >= 0 {
			floor = fixed.FromInt(l.Sectors[s].Floor)
		}
		p.Z = floor + ViewHeight
		return p, true
	}
	return Player{}, false
}

// ViewHeight is the eye height above the floor.
const ViewHeight = 41 * fixed.FracUnit

// SectorAt returns the sector containing (x, y), or -1. It takes the
// side of the nearest line crossed by a ray cast toward +x.
func (l *Level) SectorAt(x, y fixed.Fixed) int {
	px, py := x.Float64(), y.Float64()
	best, bestDist, found := NoSector, 0.0, false
	for i := range l.Lines {
		ln := &l.Lines[i]
		a, b := l.Endpoints(ln)
		ax, ay, bx, by := float64(a.X), float64(a.Y), float64(b.X), float64(b.Y)
		if (ay > py) == (by > py) {
			continue
		}
		ix := ax + (py-ay)*(bx-ax)/(by-ay)
		if ix < px {
			continue
		}
		if d := ix - px; !found || d < bestDist {
			// The point is left of the crossing. A line heading down has
			// its front on that side.
			s := ln.Back
			if by < ay {
				s = ln.Front
			}
			best, bestDist, found = s, d, true
		}
	}
	return best
}

// TeleportSpecial reports whether a line special is a teleporter.
func TeleportSpecial(special int) bool {
	switch special {
	case 39, 97, 125, 126:
		return true
	}
	return false
}
