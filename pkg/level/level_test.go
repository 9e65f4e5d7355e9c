package level

import (
	"errors"
	"testing"

	"github.com/taigrr/doomview/pkg/fixed"
)

func TestDemoValid(t *testing.T) {
	lvl := Demo()
	if err := lvl.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	b := lvl.Bounds()
	want := Bounds{MinX: 0, MinY: 0, MaxX: fixed.FromInt(1408), MaxY: fixed.FromInt(1024)}
	if b != want {
		t.Errorf("Bounds = %+v, want %+v", b, want)
	}

	doors := map[int]int{}
	for _, ln := range lvl.Lines {
		doors[ln.Special]++
	}
	for _, s := range []int{SpecialBlueDoor, SpecialYellowDoor, SpecialRedDoor} {
		if doors[s] != 2 {
			t.Errorf("special %d on %d lines, want 2", s, doors[s])
		}
	}
	if doors[SpecialTeleportLine] != 4 {
		t.Errorf("teleport lines = %d, want 4", doors[SpecialTeleportLine])
	}
}

func TestDemoSharesVertices(t *testing.T) {
	lvl := Demo()
	seen := map[Vertex]bool{}
	for _, v := range lvl.Vertices {
		if seen[v] {
			t.Fatalf("vertex %v duplicated", v)
		}
		seen[v] = true
	}
}

func TestSectorAt(t *testing.T) {
	lvl := Demo()
	tests := []struct {
		name string
		x, y int
		want int
	}{
		{"start room", 128, 256, 0},
		{"courtyard", 700, 100, 1},
		{"secret room", 300, 800, 4},
		{"teleporter pad", 832, 256, 5},
		{"behind yellow door", 1300, 256, 7},
		{"outside", -50, 50, NoSector},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := lvl.SectorAt(fixed.FromInt(tc.x), fixed.FromInt(tc.y)); got != tc.want {
				t.Errorf("SectorAt(%d, %d) = %d, want %d", tc.x, tc.y, got, tc.want)
			}
		})
	}
}

func TestPlayerStart(t *testing.T) {
	p, ok := Demo().PlayerStart()
	if !ok {
		t.Fatal("demo has no player start")
	}
	if p.X != fixed.FromInt(128) || p.Y != fixed.FromInt(256) {
		t.Errorf("start = (%v, %v), want (128, 256)", p.X.Float64(), p.Y.Float64())
	}
	if p.Z != ViewHeight {
		t.Errorf("eye height = %v, want 41", p.Z.Float64())
	}

	if _, ok := (&Level{}).PlayerStart(); ok {
		t.Error("empty level should have no start")
	}
}

func TestValidateBadReference(t *testing.T) {
	tests := []struct {
		name string
		line Line
	}{
		{"vertex", Line{V1: 0, V2: 5, Front: 0, Back: NoSector}},
		{"front", Line{V1: 0, V2: 1, Front: 3, Back: NoSector}},
		{"back", Line{V1: 0, V2: 1, Front: 0, Back: 7, Flags: TwoSided}},
		{"two-sided flag", Line{V1: 0, V2: 1, Front: 0, Back: NoSector, Flags: TwoSided}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lvl := &Level{
				Vertices: []Vertex{{0, 0}, {64, 0}},
				Sectors:  []Sector{{}},
				Lines:    []Line{tc.line},
			}
			if err := lvl.Validate(); !errors.Is(err, ErrBadReference) {
				t.Errorf("Validate = %v, want ErrBadReference", err)
			}
		})
	}
}

func TestWasSecret(t *testing.T) {
	s := Sector{Special: 0, OldSpecial: SectorSecret}
	if !s.WasSecret() {
		t.Error("found secret should still be a secret")
	}
	if (&Sector{Special: SectorSecret}).WasSecret() {
		t.Error("only OldSpecial marks a secret")
	}
}

func TestTeleportSpecial(t *testing.T) {
	for _, s := range []int{39, 97, 125, 126} {
		if !TeleportSpecial(s) {
			t.Errorf("special %d should be a teleporter", s)
		}
	}
	for _, s := range []int{0, 26, 40, 98} {
		if TeleportSpecial(s) {
			t.Errorf("special %d should not be a teleporter", s)
		}
	}
}
