package render

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// quadrants is a 2x2 image: white top-left and bottom-right, black elsewhere.
func quadrants(pal *Palette) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, pal[white])
	img.SetRGBA(1, 0, pal[black])
	img.SetRGBA(0, 1, pal[black])
	img.SetRGBA(1, 1, pal[white])
	return img
}

func checkQuadrants(t *testing.T, pic *Picture) {
	t.Helper()
	for x := range pic.W {
		for y := range pic.H {
			want := byte(black)
			if (x < pic.W/2) == (y < pic.H/2) {
				want = white
			}
			if got := pic.At(x, y); got != want {
				t.Fatalf("At(%d, %d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestPictureFromImage(t *testing.T) {
	pal := DefaultPalette()
	pic := PictureFromImage(quadrants(&pal), 4, 4, &pal, FilterNearest)
	checkQuadrants(t, pic)

	col := pic.Column(0)
	if len(col) != 4 || col[0] != white || col[3] != black {
		t.Errorf("Column(0) = %v", col)
	}
}

func TestPictureColumnWraps(t *testing.T) {
	pic := NewPicture(4, 2)
	for i := range pic.Pix {
		pic.Pix[i] = byte(i)
	}
	tests := []struct {
		x, want int
	}{
		{0, 0},
		{3, 3},
		{4, 0},
		{-1, 3},
		{9, 1},
	}
	for _, tc := range tests {
		if got := pic.Column(tc.x)[0]; int(got) != tc.want*2 {
			t.Errorf("Column(%d)[0] = %d, want %d", tc.x, got, tc.want*2)
		}
	}
}

func TestLoadPicture(t *testing.T) {
	pal := DefaultPalette()
	path := filepath.Join(t.TempDir(), "sky.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, quadrants(&pal)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	pic, err := LoadPicture(path, 8, 4, &pal, FilterNearest)
	if err != nil {
		t.Fatalf("LoadPicture: %v", err)
	}
	if pic.Width() != 8 {
		t.Errorf("Width = %d, want 8", pic.Width())
	}
	checkQuadrants(t, pic)

	if _, err := LoadPicture(filepath.Join(t.TempDir(), "missing.png"), 8, 4, &pal, FilterNearest); err == nil {
		t.Error("expected error for missing file")
	}
}
