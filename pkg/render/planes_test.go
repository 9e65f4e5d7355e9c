package render

import (
	"testing"

	"github.com/taigrr/doomview/pkg/fixed"
)

func createTestPlanes(opts ...PlanesOption) *VisplaneManager {
	view, _ := createTestView(64, 40)
	return NewVisplaneManager(view, opts...)
}

func TestFindPlaneSameKey(t *testing.T) {
	m := createTestPlanes()
	a := m.FindPlane(fixed.FromInt(8), 3, 144)
	b := m.FindPlane(fixed.FromInt(8), 3, 144)
	if a != b {
		t.Errorf("FindPlane returned %d then %d for the same key", a, b)
	}
	if c := m.FindPlane(fixed.FromInt(8), 3, 160); c == a {
		t.Error("different light should give a different plane")
	}
	if m.Count() != 2 {
		t.Errorf("Count = %d, want 2", m.Count())
	}

	pl := m.Plane(a)
	if pl.MinX != 64 || pl.MaxX != -1 {
		t.Errorf("fresh plane range = [%d, %d], want [64, -1]", pl.MinX, pl.MaxX)
	}
}

func TestFindPlaneSkyNormalizes(t *testing.T) {
	m := createTestPlanes(WithSkyFlat(9))
	a := m.FindPlane(fixed.FromInt(128), 9, 200)
	b := m.FindPlane(fixed.FromInt(-16), 9, 96)
	if a != b {
		t.Error("sky planes with different height and light should merge")
	}
	if pl := m.Plane(a); pl.Height != 0 || pl.Light != 0 {
		t.Errorf("sky plane key = (%d, %d), want (0, 0)", pl.Height, pl.Light)
	}
}

func TestCheckPlane(t *testing.T) {
	tests := []struct {
		name      string
		claimGap  int // column marked before the second range, -1 for none
		wantMerge bool
	}{
		{"gap unclaimed merges", -1, true},
		{"claimed gap column splits", 15, false},
		{"claimed column in new range splits", 25, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := createTestPlanes()
			h := m.FindPlane(0, 1, 128)
			h = m.CheckPlane(h, 0, 10)
			for x := 0; x <= 10; x++ {
				m.MarkColumn(h, x, 30, 39)
			}
			if tc.claimGap >= 0 {
				m.Plane(h).Top[tc.claimGap+1] = 30
			}

			h2 := m.CheckPlane(h, 20, 30)
			if got := h2 == h; got != tc.wantMerge {
				t.Fatalf("merged = %v, want %v", got, tc.wantMerge)
			}

			pl := m.Plane(h2)
			if tc.wantMerge {
				if pl.MinX != 0 || pl.MaxX != 30 {
					t.Errorf("merged range = [%d, %d], want [0, 30]", pl.MinX, pl.MaxX)
				}
				return
			}
			if pl.MinX != 20 || pl.MaxX != 30 {
				t.Errorf("new plane range = [%d, %d], want [20, 30]", pl.MinX, pl.MaxX)
			}
			old := m.Plane(h)
			if old.MinX != 0 || old.MaxX != 10 {
				t.Errorf("original plane changed to [%d, %d]", old.MinX, old.MaxX)
			}
			if _, _, ok := old.Column(5); !ok {
				t.Error("original plane lost its spans")
			}
			if pl.Height != old.Height || pl.Picnum != old.Picnum || pl.Light != old.Light {
				t.Error("split plane key differs from original")
			}
		})
	}
}

func TestCheckPlaneOverlapClaimed(t *testing.T) {
	m := createTestPlanes()
	h := m.FindPlane(0, 1, 128)
	h = m.CheckPlane(h, 0, 10)
	m.MarkColumn(h, 8, 0, 5)

	if h2 := m.CheckPlane(h, 5, 12); h2 == h {
		t.Error("overlap over a claimed column should split")
	}

	// Shrinking inside the old range skips the old columns.
	h3 := m.FindPlane(fixed.FromInt(4), 1, 128)
	h3 = m.CheckPlane(h3, 0, 20)
	m.MarkColumn(h3, 18, 0, 5)
	if got := m.CheckPlane(h3, 0, 10); got != h3 {
		t.Error("claimed column outside the new range should not split")
	}
}

func TestFindPlaneAfterSplitReturnsNewest(t *testing.T) {
	m := createTestPlanes()
	h := m.CheckPlane(m.FindPlane(0, 1, 128), 0, 10)
	m.MarkColumn(h, 3, 0, 1)
	h2 := m.CheckPlane(h, 2, 4)
	if h2 == h {
		t.Fatal("expected split")
	}
	if got := m.FindPlane(0, 1, 128); got != h2 {
		t.Errorf("FindPlane = %d, want newest %d", got, h2)
	}
}

func TestClearPlanesRecycles(t *testing.T) {
	m := createTestPlanes()
	for i := range 5 {
		m.FindPlane(fixed.FromInt(i), i, 0)
	}
	arena := len(m.planes)
	m.ClearPlanes()
	if m.Count() != 0 {
		t.Errorf("Count after clear = %d, want 0", m.Count())
	}
	for i := range 5 {
		m.FindPlane(fixed.FromInt(i*2), i, 16)
	}
	if len(m.planes) != arena {
		t.Errorf("arena grew to %d after clear, want %d", len(m.planes), arena)
	}

	m.ResetPlanes()
	if len(m.planes) != 0 || m.Count() != 0 {
		t.Error("ResetPlanes should drop the arena")
	}
	for x := range m.FloorClip {
		if m.FloorClip[x] != 40 || m.CeilingClip[x] != -1 {
			t.Fatalf("clip arrays not reset at %d", x)
		}
	}
}

func TestDrawPlanesSkipsUnused(t *testing.T) {
	view, sink := createTestView(16, 12)
	view.SetupFrame(0, 0, fixed.FromInt(41), 0)
	m := NewVisplaneManager(view)

	// One plane never gets a range, the other gets a range but no marks.
	m.FindPlane(0, 1, 160)
	m.CheckPlane(m.FindPlane(0, 2, 160), 0, 5)
	m.DrawPlanes(flatMap{1: solidFlat(1), 2: solidFlat(2)})
	if len(sink.writes) != 0 {
		t.Errorf("got %d writes, want 0", len(sink.writes))
	}
}

func TestWithBucketsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for non power of two bucket count")
		}
	}()
	createTestPlanes(WithBuckets(100))
}

func TestMarkColumnPanicsOutsideView(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for row outside the view")
		}
	}()
	m := createTestPlanes()
	h := m.FindPlane(0, 1, 0)
	m.MarkColumn(h, 0, 0, 40)
}

func BenchmarkFindPlane(b *testing.B) {
	m := createTestPlanes()
	for b.Loop() {
		m.ClearPlanes()
		for i := range 64 {
			m.FindPlane(fixed.FromInt(i*8), i&7, i&15*16)
		}
	}
}
