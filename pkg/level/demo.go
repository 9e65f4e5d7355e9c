package level

// Flat numbers used by the demo level.
const (
	FlatFloor = iota
	FlatCeiling
	FlatSky
	FlatNukage
	FlatDoor
)

// Line specials used by the demo level.
const (
	SpecialBlueDoor     = 26
	SpecialYellowDoor   = 27
	SpecialRedDoor      = 28
	SpecialTeleportLine = 97
)

// builder assembles lines from coordinates, sharing vertices.
type builder struct {
	lvl   *Level
	index map[Vertex]int
}

func newBuilder(lvl *Level) *builder {
	return &builder{lvl: lvl, index: make(map[Vertex]int)}
}

func (b *builder) vertex(x, y int16) int {
	v := Vertex{x, y}
	if i, ok := b.index[v]; ok {
		return i
	}
	b.lvl.Vertices = append(b.lvl.Vertices, v)
	b.index[v] = len(b.lvl.Vertices) - 1
	return b.index[v]
}

func (b *builder) line(x1, y1, x2, y2 int16, front, back, special int, flags LineFlags) {
	ln := Line{
		V1:      b.vertex(x1, y1),
		V2:      b.vertex(x2, y2),
		Flags:   flags,
		Special: special,
		Front:   front,
		Back:    back,
	}
	if back == NoSector {
		ln.Flags |= Blocking
	} else {
		ln.Flags |= TwoSided
	}
	b.lvl.Lines = append(b.lvl.Lines, ln)
}

// wall adds a one-sided line.
func (b *builder) wall(x1, y1, x2, y2 int16, front int) {
	b.line(x1, y1, x2, y2, front, NoSector, 0, 0)
}

// portal adds a two-sided line.
func (b *builder) portal(x1, y1, x2, y2 int16, front, back, special int) {
	b.line(x1, y1, x2, y2, front, back, special, 0)
}

// Demo builds a small level exercising every automap color: three keyed
// doors (one closed), a teleporter pad, a secret room, an outdoor room
// under the sky and a step between floor heights.
func Demo() *Level {
	lvl := &Level{Episode: 1, Map: 1, Name: "Demo", SkyFlat: FlatSky}

	const (
		roomA    = iota // start room
		roomB           // courtyard under the sky
		blueDoor        // open
		redDoor         // open, leads to the secret room
		roomC           // secret room
		pad             // teleporter pad
		yellowDr        // closed
		roomD           // behind the yellow door
	)
	lvl.Sectors = []Sector{
		roomA:    {Floor: 0, Ceiling: 128, Light: 192, FloorPic: FlatFloor, CeilingPic: FlatCeiling},
		roomB:    {Floor: 24, Ceiling: 200, Light: 176, FloorPic: FlatFloor, CeilingPic: FlatSky},
		blueDoor: {Floor: 0, Ceiling: 112, Light: 160, FloorPic: FlatDoor, CeilingPic: FlatDoor},
		redDoor:  {Floor: 0, Ceiling: 112, Light: 160, FloorPic: FlatDoor, CeilingPic: FlatDoor},
		roomC:    {Floor: -16, Ceiling: 96, Light: 128, FloorPic: FlatNukage, CeilingPic: FlatCeiling, Special: SectorSecret, OldSpecial: SectorSecret},
		pad:      {Floor: 32, Ceiling: 200, Light: 255, FloorPic: FlatNukage, CeilingPic: FlatSky},
		yellowDr: {Floor: 24, Ceiling: 24, Light: 144, FloorPic: FlatDoor, CeilingPic: FlatDoor},
		roomD:    {Floor: 24, Ceiling: 128, Light: 112, FloorPic: FlatFloor, CeilingPic: FlatCeiling},
	}

	b := newBuilder(lvl)

	// Room A, 0..512 square.
	b.wall(0, 0, 0, 512, roomA)
	b.wall(0, 512, 192, 512, roomA)
	b.portal(192, 512, 320, 512, roomA, redDoor, SpecialRedDoor)
	b.wall(320, 512, 512, 512, roomA)
	b.wall(512, 512, 512, 320, roomA)
	b.portal(512, 320, 512, 192, roomA, blueDoor, SpecialBlueDoor)
	b.wall(512, 192, 512, 0, roomA)
	b.wall(512, 0, 0, 0, roomA)

	// Blue door between A and B.
	b.wall(512, 320, 576, 320, blueDoor)
	b.wall(576, 192, 512, 192, blueDoor)
	b.portal(576, 320, 576, 192, blueDoor, roomB, SpecialBlueDoor)

	// Room B.
	b.wall(576, 0, 576, 192, roomB)
	b.wall(576, 320, 576, 512, roomB)
	b.wall(576, 512, 1088, 512, roomB)
	b.wall(1088, 512, 1088, 320, roomB)
	b.portal(1088, 320, 1088, 192, roomB, yellowDr, SpecialYellowDoor)
	b.wall(1088, 192, 1088, 0, roomB)
	b.wall(1088, 0, 576, 0, roomB)

	// Teleporter pad inside B, lines facing out.
	b.portal(800, 224, 864, 224, roomB, pad, SpecialTeleportLine)
	b.portal(864, 224, 864, 288, roomB, pad, SpecialTeleportLine)
	b.portal(864, 288, 800, 288, roomB, pad, SpecialTeleportLine)
	b.portal(800, 288, 800, 224, roomB, pad, SpecialTeleportLine)

	// Closed yellow door and room D.
	b.wall(1088, 320, 1152, 320, yellowDr)
	b.wall(1152, 192, 1088, 192, yellowDr)
	b.portal(1152, 320, 1152, 192, yellowDr, roomD, SpecialYellowDoor)
	b.wall(1152, 128, 1152, 192, roomD)
	b.wall(1152, 320, 1152, 384, roomD)
	b.wall(1152, 384, 1408, 384, roomD)
	b.wall(1408, 384, 1408, 128, roomD)
	b.wall(1408, 128, 1152, 128, roomD)

	// Red door corridor and the secret room.
	b.wall(192, 512, 192, 576, redDoor)
	b.wall(320, 576, 320, 512, redDoor)
	b.portal(192, 576, 320, 576, redDoor, roomC, SpecialRedDoor)
	b.wall(0, 576, 0, 1024, roomC)
	b.wall(0, 1024, 512, 1024, roomC)
	b.wall(512, 1024, 512, 576, roomC)
	b.wall(512, 576, 320, 576, roomC)
	b.wall(192, 576, 0, 576, roomC)

	lvl.Things = []Thing{
		{X: 128, Y: 256, Angle: 0, Type: ThingPlayer1},
		{X: 900, Y: 420, Angle: 180, Type: ThingZombieman},
		{X: 700, Y: 120, Angle: 90, Type: ThingSpectre},
		{X: 256, Y: 900, Angle: 0, Type: ThingYellowCard},
		{X: 832, Y: 256, Angle: 0, Type: ThingTeleportDst},
		{X: 1280, Y: 256, Angle: 0, Type: ThingRedCard},
	}
	return lvl
}
