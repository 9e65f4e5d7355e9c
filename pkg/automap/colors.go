package automap

import (
	"github.com/taigrr/doomview/pkg/level"
	"github.com/taigrr/doomview/pkg/render"
)

// LineClass is how a level line is drawn on the map.
type LineClass int

const (
	// ClassHidden lines are not drawn.
	ClassHidden LineClass = iota
	// ClassUnseen lines are revealed by the area map power.
	ClassUnseen
	// ClassWall is a one-sided line or one flagged secret.
	ClassWall
	ClassBlueDoor
	ClassYellowDoor
	ClassRedDoor
	// ClassSecret borders a secret sector.
	ClassSecret
	ClassTeleport
	// ClassClosedDoor has a side whose floor meets its ceiling.
	ClassClosedDoor
	ClassFloorChange
	ClassCeilingChange
	// ClassTwoSided has no height change and shows only with a cheat.
	ClassTwoSided
)

// KeyColor is the key a door needs.
type KeyColor int

const (
	KeyNone KeyColor = iota
	KeyBlue
	KeyYellow
	KeyRed
)

func (k KeyColor) String() string {
	switch k {
	case KeyBlue:
		return "blue"
	case KeyYellow:
		return "yellow"
	case KeyRed:
		return "red"
	}
	return "none"
}

// KeyDoor returns the key a line special needs. Only the manual keyed
// doors 26, 27 and 28 are recognized.
func KeyDoor(special int) KeyColor {
	switch special {
	case 26:
		return KeyBlue
	case 27:
		return KeyYellow
	case 28:
		return KeyRed
	}
	return KeyNone
}

// Classify decides how line is drawn. Lines the player has not seen show
// only with a cheat or the area map power; lines flagged DontDraw never
// show without a cheat.
func Classify(lvl *level.Level, line *level.Line, cheat int, allMap bool) LineClass {
	hidden := line.Has(level.DontDraw) && cheat == 0
	if cheat == 0 && !line.Has(level.Mapped) {
		if allMap && !hidden {
			return ClassUnseen
		}
		return ClassHidden
	}
	if hidden {
		return ClassHidden
	}

	secret := line.Has(level.Secret)
	if !secret {
		switch KeyDoor(line.Special) {
		case KeyBlue:
			return ClassBlueDoor
		case KeyYellow:
			return ClassYellowDoor
		case KeyRed:
			return ClassRedDoor
		}
	}

	front := lvl.Front(line)
	back := lvl.Back(line)
	if back == nil {
		if front.WasSecret() {
			return ClassSecret
		}
		return ClassWall
	}

	// Order matters: a secret-flagged teleporter draws as a plain wall.
	switch {
	case level.TeleportSpecial(line.Special) && !secret:
		return ClassTeleport
	case secret:
		return ClassWall
	case back.Floor == back.Ceiling || front.Floor == front.Ceiling:
		return ClassClosedDoor
	case front.WasSecret() || back.WasSecret():
		return ClassSecret
	case back.Floor != front.Floor:
		return ClassFloorChange
	case back.Ceiling != front.Ceiling:
		return ClassCeilingChange
	case cheat > 0:
		return ClassTwoSided
	}
	return ClassHidden
}

// Colors are the palette indices the map draws with.
type Colors struct {
	Background byte
	Grid       byte
	Crosshair  byte
	Player     byte
	Thing      byte

	Wall          byte
	Unseen        byte
	BlueDoor      byte
	YellowDoor    byte
	RedDoor       byte
	Secret        byte
	Teleport      byte
	ClosedDoor    byte
	FloorChange   byte
	CeilingChange byte
	TwoSided      byte
}

// DefaultColors returns colors for render.DefaultPalette.
func DefaultColors() Colors {
	return Colors{
		Background: render.Shade(render.RampGray, 0),
		Grid:       render.Shade(render.RampGray, 4),
		Crosshair:  render.Shade(render.RampGray, 11),
		Player:     render.Shade(render.RampGray, 15),
		Thing:      render.Shade(render.RampGreen, 12),

		Wall:          render.Shade(render.RampRed, 12),
		Unseen:        render.Shade(render.RampGray, 8),
		BlueDoor:      render.Shade(render.RampBlue, 15),
		YellowDoor:    render.Shade(render.RampYellow, 15),
		RedDoor:       render.Shade(render.RampRed, 15),
		Secret:        render.Shade(render.RampPurple, 12),
		Teleport:      render.Shade(render.RampRed, 7),
		ClosedDoor:    render.Shade(render.RampOrange, 12),
		FloorChange:   render.Shade(render.RampBrown, 12),
		CeilingChange: render.Shade(render.RampYellow, 10),
		TwoSided:      render.Shade(render.RampGray, 6),
	}
}

// For returns the color of a line class. ClassHidden has none.
func (c *Colors) For(class LineClass) (byte, bool) {
	switch class {
	case ClassUnseen:
		return c.Unseen, true
	case ClassWall:
		return c.Wall, true
	case ClassBlueDoor:
		return c.BlueDoor, true
	case ClassYellowDoor:
		return c.YellowDoor, true
	case ClassRedDoor:
		return c.RedDoor, true
	case ClassSecret:
		return c.Secret, true
	case ClassTeleport:
		return c.Teleport, true
	case ClassClosedDoor:
		return c.ClosedDoor, true
	case ClassFloorChange:
		return c.FloorChange, true
	case ClassCeilingChange:
		return c.CeilingChange, true
	case ClassTwoSided:
		return c.TwoSided, true
	}
	return 0, false
}
