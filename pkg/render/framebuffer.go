// Package render provides the software rasterizer: column, span, plane and
// sky drawing, the screen wipe, and the pixel sinks that map the logical
// screen onto each video adapter's memory layout.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// Framebuffer is a chunky 8-bit palette-indexed screen, the layout of VGA
// mode 13h. It is also the presentation surface the other sinks resolve
// into.
type Framebuffer struct {
	Width   int     // Width in pixels
	Height  int     // Height in pixels
	Pixels  []byte  // Row-major palette indices
	Palette Palette // Current palette
}

// NewFramebuffer creates a framebuffer with the default palette.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:   width,
		Height:  height,
		Pixels:  make([]byte, width*height),
		Palette: DefaultPalette(),
	}
}

// Clear fills the framebuffer with a single color.
func (fb *Framebuffer) Clear(c byte) {
	if len(fb.Pixels) == 0 {
		return
	}
	fb.Pixels[0] = c
	for i := 1; i < len(fb.Pixels); i *= 2 {
		copy(fb.Pixels[i:], fb.Pixels[:i])
	}
}

// ClearRegion fills a rectangle, clipped to the screen.
func (fb *Framebuffer) ClearRegion(x, y, w, h int, c byte) {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, fb.Width), min(y+h, fb.Height)
	for py := y0; py < y1; py++ {
		row := fb.Pixels[py*fb.Width+x0 : py*fb.Width+x1]
		for i := range row {
			row[i] = c
		}
	}
}

// SetPixel sets a pixel at (x, y). Out of range writes are dropped.
func (fb *Framebuffer) SetPixel(x, y int, c byte) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the palette index at (x, y), or 0 out of range.
func (fb *Framebuffer) GetPixel(x, y int) byte {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return 0
	}
	return fb.Pixels[y*fb.Width+x]
}

// WritePixel implements PixelSink.
func (fb *Framebuffer) WritePixel(x, y int, c byte) {
	fb.Pixels[y*fb.Width+x] = c
}

// ReadPixel implements PixelReader.
func (fb *Framebuffer) ReadPixel(x, y int) byte {
	return fb.Pixels[y*fb.Width+x]
}

// Bounds implements PixelSink.
func (fb *Framebuffer) Bounds() (width, height int) {
	return fb.Width, fb.Height
}

// Resolve implements Resolver; a linear screen is already chunky.
func (fb *Framebuffer) Resolve(dst *Framebuffer) {
	if dst == fb {
		return
	}
	dst.CopyFrom(fb)
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c byte) {
	drawLine(fb, x0, y0, x1, y1, c)
}

// DrawRect draws a filled rectangle.
func (fb *Framebuffer) DrawRect(x, y, w, h int, c byte) {
	fb.ClearRegion(x, y, w, h, c)
}

// CopyFrom copies pixels and palette from src. Both must be the same size.
func (fb *Framebuffer) CopyFrom(src *Framebuffer) {
	if src.Width != fb.Width || src.Height != fb.Height {
		panic(fmt.Sprintf("render: copy %dx%d into %dx%d framebuffer", src.Width, src.Height, fb.Width, fb.Height))
	}
	copy(fb.Pixels, src.Pixels)
	fb.Palette = src.Palette
}

// Clone returns an independent snapshot of the framebuffer.
func (fb *Framebuffer) Clone() *Framebuffer {
	c := &Framebuffer{Width: fb.Width, Height: fb.Height, Palette: fb.Palette}
	c.Pixels = make([]byte, len(fb.Pixels))
	copy(c.Pixels, fb.Pixels)
	return c
}

// SetPalette replaces the palette used for presentation.
func (fb *Framebuffer) SetPalette(p Palette) {
	fb.Palette = p
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, fb.Palette[fb.Pixels[y*fb.Width+x]])
		}
	}
	return img
}

// Paletted converts the framebuffer to an image.Paletted sharing no memory.
func (fb *Framebuffer) Paletted() *image.Paletted {
	pal := make(color.Palette, len(fb.Palette))
	for i, c := range fb.Palette {
		pal[i] = c
	}
	img := image.NewPaletted(image.Rect(0, 0, fb.Width, fb.Height), pal)
	copy(img.Pix, fb.Pixels)
	return img
}

// SavePNG saves the framebuffer as a PNG file scaled to width x height.
// A zero size keeps the native resolution. Scaling is nearest-neighbour so
// the pixel grid survives, e.g. 320x200 to the 4:3 320x240 of a CRT.
func (fb *Framebuffer) SavePNG(path string, width, height int) error {
	var img image.Image = fb.ToImage()
	if width > 0 && height > 0 && (width != fb.Width || height != fb.Height) {
		scaled := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = scaled
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create screenshot: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode screenshot: %w", err)
	}
	return nil
}
