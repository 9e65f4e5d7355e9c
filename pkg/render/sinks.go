package render

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/taigrr/doomview/pkg/fixed"
)

// PixelSink is the write side of a video backend. Coordinates are logical
// screen pixels and colors are palette indices; the sink only translates
// the address. Callers guarantee coordinates are in bounds.
type PixelSink interface {
	Bounds() (width, height int)
	WritePixel(x, y int, c byte)
}

// PixelReader is implemented by sinks that can read back the screen.
// The fuzz effect needs it for true translucency.
type PixelReader interface {
	ReadPixel(x, y int) byte
}

// Resolver converts a sink's memory layout back into a chunky framebuffer
// for presentation and screenshots.
type Resolver interface {
	Resolve(dst *Framebuffer)
}

// Presenter shows a finished frame, the page flip of a real adapter.
type Presenter interface {
	Present()
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func()

// Present calls f.
func (f PresenterFunc) Present() { f() }

// Backend names accepted by NewSink.
const (
	BackendVGA   = "vga"
	BackendModeY = "modey"
	BackendEGA   = "ega"
	BackendCGA   = "cga"
	BackendText  = "text"
)

// NewSink creates the sink for a backend name. The text backend ignores the
// requested size and always uses 80x25 cells.
func NewSink(backend string, width, height int, pal *Palette) (PixelSink, error) {
	switch strings.ToLower(backend) {
	case BackendVGA, "linear", "":
		fb := NewFramebuffer(width, height)
		fb.Palette = *pal
		return fb, nil
	case BackendModeY:
		return NewModeYSink(width, height), nil
	case BackendEGA:
		return NewEGASink(width, height, pal), nil
	case BackendCGA:
		return NewCGASink(width, height, pal), nil
	case BackendText:
		return NewTextSink(80, 25, pal), nil
	}
	return nil, fmt.Errorf("unknown backend %q", backend)
}

// DrawLine draws a line on any sink using Bresenham's algorithm. Pixels
// outside the sink are dropped.
func DrawLine(s PixelSink, x0, y0, x1, y1 int, c byte) {
	drawLine(s, x0, y0, x1, y1, c)
}

func drawLine(s PixelSink, x0, y0, x1, y1 int, c byte) {
	w, h := s.Bounds()
	dx := fixed.Abs(x1 - x0)
	dy := -fixed.Abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if x0 >= 0 && x0 < w && y0 >= 0 && y0 < h {
			s.WritePixel(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// ModeYSink is unchained VGA 256-color memory: four planes, pixel x lives
// in plane x&3 at offset y*(w/4) + x>>2.
type ModeYSink struct {
	width, height int
	Planes        [4][]byte
}

// NewModeYSink allocates planar memory. Width must be a multiple of 4.
func NewModeYSink(width, height int) *ModeYSink {
	if width%4 != 0 {
		panic(fmt.Sprintf("render: mode-y width %d is not a multiple of 4", width))
	}
	s := &ModeYSink{width: width, height: height}
	for p := range s.Planes {
		s.Planes[p] = make([]byte, width/4*height)
	}
	return s
}

func (s *ModeYSink) Bounds() (int, int) { return s.width, s.height }

func (s *ModeYSink) WritePixel(x, y int, c byte) {
	s.Planes[x&3][y*(s.width>>2)+x>>2] = c
}

// ReadPixel emulates a read-mode 0 latch fetch from the pixel's plane.
func (s *ModeYSink) ReadPixel(x, y int) byte {
	return s.Planes[x&3][y*(s.width>>2)+x>>2]
}

// Resolve de-interleaves the planes into dst.
func (s *ModeYSink) Resolve(dst *Framebuffer) {
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			dst.Pixels[y*dst.Width+x] = s.ReadPixel(x, y)
		}
	}
}

// quantizer maps 256 palette indices onto a small fixed adapter palette.
type quantizer struct {
	toHW  [256]byte // palette index -> hardware color
	toPal []byte    // hardware color -> representative palette index
}

func newQuantizer(pal *Palette, hw []color.RGBA) quantizer {
	var q quantizer
	for i, c := range pal {
		best, bestDist := 0, int(^uint(0)>>1)
		for k, h := range hw {
			dr := int(h.R) - int(c.R)
			dg := int(h.G) - int(c.G)
			db := int(h.B) - int(c.B)
			if d := dr*dr + dg*dg + db*db; d < bestDist {
				best, bestDist = k, d
			}
		}
		q.toHW[i] = byte(best)
	}
	q.toPal = make([]byte, len(hw))
	for k, h := range hw {
		q.toPal[k] = pal.Nearest(h)
	}
	return q
}

// EGAColors is the standard 16-color EGA/CGA text palette.
var EGAColors = []color.RGBA{
	{0x00, 0x00, 0x00, 0xff}, {0x00, 0x00, 0xaa, 0xff}, {0x00, 0xaa, 0x00, 0xff}, {0x00, 0xaa, 0xaa, 0xff},
	{0xaa, 0x00, 0x00, 0xff}, {0xaa, 0x00, 0xaa, 0xff}, {0xaa, 0x55, 0x00, 0xff}, {0xaa, 0xaa, 0xaa, 0xff},
	{0x55, 0x55, 0x55, 0xff}, {0x55, 0x55, 0xff, 0xff}, {0x55, 0xff, 0x55, 0xff}, {0x55, 0xff, 0xff, 0xff},
	{0xff, 0x55, 0x55, 0xff}, {0xff, 0x55, 0xff, 0xff}, {0xff, 0xff, 0x55, 0xff}, {0xff, 0xff, 0xff, 0xff},
}

// CGAColors is CGA mode 4 palette 1, high intensity.
var CGAColors = []color.RGBA{
	{0x00, 0x00, 0x00, 0xff},
	{0x55, 0xff, 0xff, 0xff},
	{0xff, 0x55, 0xff, 0xff},
	{0xff, 0xff, 0xff, 0xff},
}

// EGASink is 16-color planar memory: four bit-planes, 8 pixels per byte,
// most significant bit leftmost.
type EGASink struct {
	width, height int
	stride        int
	Planes        [4][]byte
	q             quantizer
}

// NewEGASink allocates bit-plane memory. Colors are reduced to the EGA
// palette by nearest match against pal.
func NewEGASink(width, height int, pal *Palette) *EGASink {
	s := &EGASink{width: width, height: height, stride: (width + 7) / 8}
	for p := range s.Planes {
		s.Planes[p] = make([]byte, s.stride*height)
	}
	s.q = newQuantizer(pal, EGAColors)
	return s
}

func (s *EGASink) Bounds() (int, int) { return s.width, s.height }

func (s *EGASink) WritePixel(x, y int, c byte) {
	nib := s.q.toHW[c]
	off := y*s.stride + x>>3
	mask := byte(0x80) >> (x & 7)
	for p := range s.Planes {
		if nib&(1<<p) != 0 {
			s.Planes[p][off] |= mask
		} else {
			s.Planes[p][off] &^= mask
		}
	}
}

// ReadPixel reassembles the four plane bits and returns the palette index
// representing that EGA color.
func (s *EGASink) ReadPixel(x, y int) byte {
	return s.q.toPal[s.nibble(x, y)]
}

func (s *EGASink) nibble(x, y int) byte {
	off := y*s.stride + x>>3
	shift := 7 - x&7
	var nib byte
	for p := range s.Planes {
		nib |= (s.Planes[p][off] >> shift & 1) << p
	}
	return nib
}

func (s *EGASink) Resolve(dst *Framebuffer) {
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			dst.Pixels[y*dst.Width+x] = s.ReadPixel(x, y)
		}
	}
}

// cgaBankSize is the distance between the even and odd scanline banks.
const cgaBankSize = 0x2000

// CGASink is 4-color packed memory: 2 bits per pixel, four pixels per byte,
// even scanlines in the first bank and odd ones in the second. Reading back
// is too slow on the real adapter, so it does not implement PixelReader.
type CGASink struct {
	width, height int
	stride        int
	bank          int
	Mem           []byte
	q             quantizer
}

// NewCGASink allocates interleaved memory for a width x height screen.
func NewCGASink(width, height int, pal *Palette) *CGASink {
	stride := (width + 3) / 4
	bank := max(cgaBankSize, stride*((height+1)/2))
	return &CGASink{
		width:  width,
		height: height,
		stride: stride,
		bank:   bank,
		Mem:    make([]byte, 2*bank),
		q:      newQuantizer(pal, CGAColors),
	}
}

func (s *CGASink) Bounds() (int, int) { return s.width, s.height }

// Offset returns the byte address and bit shift of a pixel.
func (s *CGASink) Offset(x, y int) (off int, shift uint) {
	return (y&1)*s.bank + (y>>1)*s.stride + x>>2, uint(6 - 2*(x&3))
}

func (s *CGASink) WritePixel(x, y int, c byte) {
	off, shift := s.Offset(x, y)
	s.Mem[off] = s.Mem[off]&^(3<<shift) | s.q.toHW[c]<<shift
}

func (s *CGASink) Resolve(dst *Framebuffer) {
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			off, shift := s.Offset(x, y)
			dst.Pixels[y*dst.Width+x] = s.q.toPal[s.Mem[off]>>shift&3]
		}
	}
}

// HalfBlock is the code page 437 upper half block.
const HalfBlock = 0xdf

// TextSink renders into 80x25 style character/attribute cells, two
// vertically stacked pixels per cell: the glyph is an upper half block, the
// foreground nibble is the top pixel and the background nibble the bottom.
// Blink must be disabled for bright backgrounds. Not readable.
type TextSink struct {
	Cols, Rows int
	Mem        []byte // char, attr pairs
	q          quantizer
}

// NewTextSink allocates cols x rows cells, a cols x 2*rows pixel screen.
func NewTextSink(cols, rows int, pal *Palette) *TextSink {
	s := &TextSink{Cols: cols, Rows: rows, Mem: make([]byte, cols*rows*2)}
	for i := 0; i < len(s.Mem); i += 2 {
		s.Mem[i] = HalfBlock
	}
	s.q = newQuantizer(pal, EGAColors)
	return s
}

func (s *TextSink) Bounds() (int, int) { return s.Cols, s.Rows * 2 }

func (s *TextSink) WritePixel(x, y int, c byte) {
	cell := ((y>>1)*s.Cols + x) * 2
	nib := s.q.toHW[c]
	attr := s.Mem[cell+1]
	if y&1 == 0 {
		attr = attr&0xf0 | nib
	} else {
		attr = attr&0x0f | nib<<4
	}
	s.Mem[cell] = HalfBlock
	s.Mem[cell+1] = attr
}

func (s *TextSink) Resolve(dst *Framebuffer) {
	for row := 0; row < s.Rows; row++ {
		for col := 0; col < s.Cols; col++ {
			attr := s.Mem[(row*s.Cols+col)*2+1]
			dst.Pixels[row*2*dst.Width+col] = s.q.toPal[attr&0x0f]
			dst.Pixels[(row*2+1)*dst.Width+col] = s.q.toPal[attr>>4]
		}
	}
}
