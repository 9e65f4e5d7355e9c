package render

import (
	"testing"

	"github.com/taigrr/doomview/pkg/fixed"
)

// pixelWrite is one recorded sink write.
type pixelWrite struct {
	x, y int
	c    byte
}

// mockSink records every write and optionally supports read back.
type mockSink struct {
	w, h   int
	writes []pixelWrite
	pixels []byte
}

func newMockSink(w, h int) *mockSink {
	return &mockSink{w: w, h: h, pixels: make([]byte, w*h)}
}

func (s *mockSink) Bounds() (int, int) { return s.w, s.h }

func (s *mockSink) WritePixel(x, y int, c byte) {
	s.writes = append(s.writes, pixelWrite{x, y, c})
	s.pixels[y*s.w+x] = c
}

// readableMockSink adds PixelReader to mockSink.
type readableMockSink struct {
	*mockSink
}

func (s readableMockSink) ReadPixel(x, y int) byte { return s.pixels[y*s.w+x] }

func TestDrawColumnEmpty(t *testing.T) {
	tests := []struct {
		name string
		kind ColumnKind
	}{
		{"wall", ColumnWall},
		{"sprite", ColumnSprite},
		{"fill", ColumnFill},
		{"fuzz", ColumnFuzz},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sink := newMockSink(16, 16)
			r := NewRasterizer(sink)
			v := &ColumnVars{X: 3, YL: 8, YH: 7, Source: make([]byte, 128), Colormap: IdentityColormap()}
			r.DrawColumn(v, tc.kind)
			if len(sink.writes) != 0 {
				t.Errorf("empty column made %d writes, want 0", len(sink.writes))
			}
			if r.Fuzz().Index() != 0 {
				t.Errorf("empty column advanced fuzz phase to %d", r.Fuzz().Index())
			}
		})
	}
}

func TestDrawColumnWall(t *testing.T) {
	sink := newMockSink(8, 8)
	r := NewRasterizer(sink, WithCenterY(4))

	src := make([]byte, 128)
	for i := range src {
		src[i] = byte(i)
	}
	cm := IdentityColormap()
	cm[2] = 200

	v := &ColumnVars{
		X: 5, YL: 0, YH: 7,
		Source:     src,
		TextureMid: fixed.FromInt(4),
		FracStep:   fixed.FracUnit,
		Colormap:   cm,
	}
	r.DrawColumn(v, ColumnWall)

	if len(sink.writes) != 8 {
		t.Fatalf("got %d writes, want 8", len(sink.writes))
	}
	for i, w := range sink.writes {
		want := byte(i)
		if i == 2 {
			want = 200
		}
		if w.x != 5 || w.y != i || w.c != want {
			t.Errorf("write %d = %+v, want (5, %d, %d)", i, w, i, want)
		}
	}
}

func TestDrawColumnWallWraps(t *testing.T) {
	sink := newMockSink(1, 4)
	r := NewRasterizer(sink, WithCenterY(0))

	src := make([]byte, 128)
	for i := range src {
		src[i] = byte(i)
	}
	v := &ColumnVars{
		YL: 0, YH: 3,
		Source:     src,
		TextureMid: fixed.FromInt(126),
		FracStep:   fixed.FracUnit,
		Colormap:   IdentityColormap(),
	}
	r.DrawColumn(v, ColumnWall)

	want := []byte{126, 127, 0, 1}
	for i, w := range sink.writes {
		if w.c != want[i] {
			t.Errorf("row %d = %d, want %d", i, w.c, want[i])
		}
	}
}

func TestDrawColumnSpriteClamps(t *testing.T) {
	sink := newMockSink(1, 4)
	r := NewRasterizer(sink, WithCenterY(0))

	v := &ColumnVars{
		YL: 0, YH: 3,
		Source:     []byte{10, 20},
		TextureMid: 0,
		FracStep:   fixed.FracUnit,
		Colormap:   IdentityColormap(),
	}
	r.DrawColumn(v, ColumnSprite)

	want := []byte{10, 20, 20, 20}
	for i, w := range sink.writes {
		if w.c != want[i] {
			t.Errorf("row %d = %d, want %d", i, w.c, want[i])
		}
	}
}

func TestDrawColumnTranslation(t *testing.T) {
	sink := newMockSink(1, 1)
	r := NewRasterizer(sink, WithCenterY(0))

	tr := IdentityColormap()
	tr[7] = 9
	cm := IdentityColormap()
	cm[9] = 42

	r.DrawColumn(&ColumnVars{
		Source:      []byte{7},
		Colormap:    cm,
		Translation: tr,
	}, ColumnSprite)

	if sink.writes[0].c != 42 {
		t.Errorf("translated pixel = %d, want 42", sink.writes[0].c)
	}
}

func TestDrawColumnFill(t *testing.T) {
	sink := newMockSink(4, 10)
	r := NewRasterizer(sink)
	r.DrawColumn(&ColumnVars{X: 1, YL: 2, YH: 6, Fill: 77}, ColumnFill)

	if len(sink.writes) != 5 {
		t.Fatalf("got %d writes, want 5", len(sink.writes))
	}
	for _, w := range sink.writes {
		if w.x != 1 || w.c != 77 {
			t.Errorf("unexpected write %+v", w)
		}
	}
}

func TestDrawColumnPanicsWithoutSource(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for wall column without source")
		}
	}()
	r := NewRasterizer(newMockSink(4, 4))
	r.DrawColumn(&ColumnVars{YL: 0, YH: 3, Colormap: IdentityColormap()}, ColumnWall)
}

func TestFuzzPhaseContinuity(t *testing.T) {
	tests := []struct {
		name  string
		start int
		want  int
	}{
		{"from zero", 0, 15},
		{"across wrap", 40, 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sink := newMockSink(8, 8)
			phase := new(FuzzPhase)
			phase.Set(tc.start)
			r := NewRasterizer(sink, WithFuzzPhase(phase))

			for x := 0; x < 3; x++ {
				r.DrawColumn(&ColumnVars{X: x, YL: 1, YH: 5}, ColumnFuzz)
			}
			if got := phase.Index(); got != tc.want {
				t.Errorf("phase = %d, want %d", got, tc.want)
			}
			if len(sink.writes) != 15 {
				t.Errorf("got %d writes, want 15", len(sink.writes))
			}
		})
	}
}

func TestFuzzPhaseWrap(t *testing.T) {
	var p FuzzPhase
	p.Set(FuzzTableSize - 1)
	p.Advance()
	if p.Index() != 0 {
		t.Errorf("phase after 49 = %d, want 0", p.Index())
	}
	p.Set(-1)
	if p.Index() != 49 {
		t.Errorf("Set(-1) = %d, want 49", p.Index())
	}
}

func TestFuzzStrategySelection(t *testing.T) {
	plain := NewRasterizer(newMockSink(4, 4))
	if plain.FuzzStrategy() != FuzzFixedColors {
		t.Errorf("write-only sink strategy = %v, want fixed", plain.FuzzStrategy())
	}

	readable := NewRasterizer(readableMockSink{newMockSink(4, 4)})
	if readable.FuzzStrategy() != FuzzReadBack {
		t.Errorf("readable sink strategy = %v, want readback", readable.FuzzStrategy())
	}

	forced := NewRasterizer(readableMockSink{newMockSink(4, 4)}, WithFuzzStrategy(FuzzFixedColors))
	if forced.FuzzStrategy() != FuzzFixedColors {
		t.Errorf("forced strategy = %v, want fixed", forced.FuzzStrategy())
	}
}

func TestFuzzReadBackDarkens(t *testing.T) {
	sink := readableMockSink{newMockSink(3, 1)}
	sink.pixels[0] = 10
	sink.pixels[1] = 11
	sink.pixels[2] = 12

	dark := new(Colormap)
	for i := range dark {
		dark[i] = byte(i) + 100
	}
	r := NewRasterizer(sink, WithDarkColormap(dark), WithCenterY(0))

	// Phase 0 offset is +1: column 1 samples column 2.
	r.DrawColumn(&ColumnVars{X: 1, YL: 0, YH: 0}, ColumnFuzz)
	if got := sink.writes[0].c; got != 112 {
		t.Errorf("fuzz pixel = %d, want 112", got)
	}

	// Phase 1 offset is -1: column 0 clamps to itself.
	r.DrawColumn(&ColumnVars{X: 0, YL: 0, YH: 0}, ColumnFuzz)
	if got := sink.writes[1].c; got != 110 {
		t.Errorf("clamped fuzz pixel = %d, want 110", got)
	}
}

func TestFuzzFixedColorsCycle(t *testing.T) {
	sink := newMockSink(1, 8)
	colors := [4]byte{1, 2, 3, 4}
	r := NewRasterizer(sink, WithDarkColors(colors))
	r.DrawColumn(&ColumnVars{YL: 0, YH: 7}, ColumnFuzz)

	for i, w := range sink.writes {
		if w.c != colors[i&3] {
			t.Errorf("row %d = %d, want %d", i, w.c, colors[i&3])
		}
	}
}

func TestFuzzOffsetsBalanced(t *testing.T) {
	for i, off := range FuzzOffsets {
		if off != 1 && off != -1 {
			t.Fatalf("offset %d = %d, want +-1", i, off)
		}
	}
}

func BenchmarkDrawColumnWall(b *testing.B) {
	fb := NewFramebuffer(320, 200)
	r := NewRasterizer(fb)
	v := &ColumnVars{
		X: 160, YL: 0, YH: 199,
		Source:   make([]byte, 128),
		FracStep: fixed.FracUnit / 2,
		Colormap: IdentityColormap(),
	}
	for b.Loop() {
		r.DrawColumn(v, ColumnWall)
	}
}
