package render

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"

	"golang.org/x/image/draw"
)

// FilterMode determines how an image is resampled to the picture size.
type FilterMode int

const (
	FilterNearest  FilterMode = iota // Nearest-neighbor (pixelated)
	FilterBilinear                   // Bilinear interpolation (smooth)
)

func (f FilterMode) scaler() draw.Scaler {
	if f == FilterBilinear {
		return draw.BiLinear
	}
	return draw.NearestNeighbor
}

// Picture is a palette-indexed image stored column-major, so a column is
// a contiguous slice that the column drawers can sample directly.
type Picture struct {
	W, H int
	Pix  []byte // column x is Pix[x*H : (x+1)*H]
}

// NewPicture creates a picture filled with index 0.
func NewPicture(width, height int) *Picture {
	return &Picture{W: width, H: height, Pix: make([]byte, width*height)}
}

// Width implements SkyTexture.
func (p *Picture) Width() int { return p.W }

// Column returns column x, wrapping.
func (p *Picture) Column(x int) []byte {
	x %= p.W
	if x < 0 {
		x += p.W
	}
	return p.Pix[x*p.H : (x+1)*p.H]
}

// At returns the palette index at (x, y).
func (p *Picture) At(x, y int) byte {
	return p.Pix[x*p.H+y]
}

// LoadPicture decodes a PNG or JPEG file and converts it with
// PictureFromImage.
func LoadPicture(path string, width, height int, pal *Palette, filter FilterMode) (*Picture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open picture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return PictureFromImage(img, width, height, pal, filter), nil
}

// PictureFromImage resamples img to width x height and maps every pixel
// to the nearest palette entry. Alpha is ignored.
func PictureFromImage(img image.Image, width, height int, pal *Palette, filter FilterMode) *Picture {
	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	filter.scaler().Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	pic := NewPicture(width, height)
	cache := make(map[color.RGBA]byte)
	for y := range height {
		for x := range width {
			c := scaled.RGBAAt(x, y)
			c.A = 0xff
			idx, ok := cache[c]
			if !ok {
				idx = pal.Nearest(c)
				cache[c] = idx
			}
			pic.Pix[x*height+y] = idx
		}
	}
	Logger().Debug("picture converted", "width", width, "height", height, "colors", len(cache))
	return pic
}
