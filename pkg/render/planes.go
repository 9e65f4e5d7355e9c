package render

import (
	"fmt"

	"github.com/taigrr/doomview/pkg/fixed"
)

// emptyTop marks a column with no span in a visplane.
const emptyTop = 0xff

// DefaultPlaneBuckets is the default visplane hash size.
const DefaultPlaneBuckets = 128

// PlaneHandle identifies a visplane in the manager's arena.
type PlaneHandle int

// Visplane accumulates the visible rows of one floor or ceiling occurrence.
// Top and Bottom are indexed by x+1 so that columns -1 and width are
// addressable pads.
type Visplane struct {
	Height fixed.Fixed
	Picnum int
	Light  int

	MinX, MaxX int
	Top        []byte
	Bottom     []byte

	// Modified is set once any column has been marked.
	Modified bool
}

// Column returns the rows marked for column x and whether any are.
func (pl *Visplane) Column(x int) (top, bottom int, ok bool) {
	t, b := pl.Top[x+1], pl.Bottom[x+1]
	if t == emptyTop || t > b {
		return 0, 0, false
	}
	return int(t), int(b), true
}

func (pl *Visplane) reset(height fixed.Fixed, picnum, light, minx, maxx int) {
	pl.Height, pl.Picnum, pl.Light = height, picnum, light
	pl.MinX, pl.MaxX = minx, maxx
	pl.Modified = false
	for i := range pl.Top {
		pl.Top[i] = emptyTop
	}
	clear(pl.Bottom)
}

// FlatSource supplies 64x64 flat textures by number.
type FlatSource interface {
	Flat(picnum int) []byte
}

// VisplaneManager finds, merges and draws visplanes. Planes live in an
// arena and are recycled through a free stack between frames; the hash
// buckets hold arena indices, newest first.
type VisplaneManager struct {
	width, height int

	planes  []*Visplane
	free    []PlaneHandle
	live    []PlaneHandle
	buckets [][]PlaneHandle
	mask    int
	skyFlat int

	view *PlaneView
	sky  *SkyRenderer

	// FloorClip and CeilingClip are the per-column occlusion bounds the
	// wall pass narrows as it goes.
	FloorClip   []int
	CeilingClip []int
}

// PlanesOption configures a VisplaneManager during creation.
type PlanesOption func(*VisplaneManager)

// WithBuckets sets the hash bucket count, which must be a power of two.
func WithBuckets(n int) PlanesOption {
	return func(m *VisplaneManager) {
		if n <= 0 || n&(n-1) != 0 {
			panic(fmt.Sprintf("render: visplane bucket count %d is not a power of two", n))
		}
		m.buckets = make([][]PlaneHandle, n)
		m.mask = n - 1
	}
}

// WithSkyFlat sets the flat number that marks sky planes.
func WithSkyFlat(picnum int) PlanesOption {
	return func(m *VisplaneManager) {
		m.skyFlat = picnum
	}
}

// WithSky sets the renderer used for sky planes.
func WithSky(s *SkyRenderer) PlanesOption {
	return func(m *VisplaneManager) {
		m.sky = s
	}
}

// MaxViewHeight is the tallest view a visplane can hold: rows are stored
// as bytes and emptyTop is reserved.
const MaxViewHeight = emptyTop - 1

// NewVisplaneManager creates a manager for the view's screen. It panics if
// the view is taller than MaxViewHeight.
func NewVisplaneManager(view *PlaneView, opts ...PlanesOption) *VisplaneManager {
	if view.Height > MaxViewHeight {
		panic(fmt.Sprintf("render: view height %d exceeds %d", view.Height, MaxViewHeight))
	}
	m := &VisplaneManager{
		width:       view.Width,
		height:      view.Height,
		skyFlat:     -1,
		view:        view,
		FloorClip:   make([]int, view.Width),
		CeilingClip: make([]int, view.Width),
	}
	WithBuckets(DefaultPlaneBuckets)(m)
	for _, opt := range opts {
		opt(m)
	}
	m.resetClip()
	return m
}

// SkyFlat returns the flat number that marks sky planes.
func (m *VisplaneManager) SkyFlat() int { return m.skyFlat }

// Sky returns the sky renderer, or nil.
func (m *VisplaneManager) Sky() *SkyRenderer { return m.sky }

func (m *VisplaneManager) hash(height fixed.Fixed, picnum, light int) int {
	return (picnum*3 + light + height.Int()*7) & m.mask
}

func (m *VisplaneManager) alloc() PlaneHandle {
	if n := len(m.free); n > 0 {
		h := m.free[n-1]
		m.free = m.free[:n-1]
		return h
	}
	m.planes = append(m.planes, &Visplane{
		Top:    make([]byte, m.width+2),
		Bottom: make([]byte, m.width+2),
	})
	Logger().Debug("visplane arena grew", "planes", len(m.planes))
	return PlaneHandle(len(m.planes) - 1)
}

func (m *VisplaneManager) create(height fixed.Fixed, picnum, light, minx, maxx int) PlaneHandle {
	h := m.alloc()
	m.planes[h].reset(height, picnum, light, minx, maxx)
	b := m.hash(height, picnum, light)
	m.buckets[b] = append(m.buckets[b], h)
	m.live = append(m.live, h)
	return h
}

// FindPlane returns the plane for (height, picnum, light), creating an
// empty one if none exists this frame. Sky planes ignore height and light.
func (m *VisplaneManager) FindPlane(height fixed.Fixed, picnum, light int) PlaneHandle {
	if picnum == m.skyFlat {
		height, light = 0, 0
	}

	chain := m.buckets[m.hash(height, picnum, light)]
	for i := len(chain) - 1; i >= 0; i-- {
		pl := m.planes[chain[i]]
		if pl.Height == height && pl.Picnum == picnum && pl.Light == light {
			return chain[i]
		}
	}
	return m.create(height, picnum, light, m.width, -1)
}

// CheckPlane extends plane h to cover columns start..stop. If any column
// the extended plane would newly own is already claimed, h is left alone
// and a fresh plane with the same key covering start..stop is returned.
func (m *VisplaneManager) CheckPlane(h PlaneHandle, start, stop int) PlaneHandle {
	pl := m.planes[h]
	unionl, unionh := min(start, pl.MinX), max(stop, pl.MaxX)

	for x := unionl; x <= unionh; x++ {
		// Columns the plane already owns outside the new range keep
		// their spans.
		if x >= pl.MinX && x <= pl.MaxX && (x < start || x > stop) {
			continue
		}
		if pl.Top[x+1] != emptyTop {
			return m.create(pl.Height, pl.Picnum, pl.Light, start, stop)
		}
	}
	pl.MinX, pl.MaxX = unionl, unionh
	return h
}

// MarkColumn records rows top..bottom of column x as visible in plane h.
func (m *VisplaneManager) MarkColumn(h PlaneHandle, x, top, bottom int) {
	if top < 0 || bottom >= m.height || x < 0 || x >= m.width {
		panic(fmt.Sprintf("render: MarkColumn(%d, %d, %d) outside %dx%d view", x, top, bottom, m.width, m.height))
	}
	pl := m.planes[h]
	pl.Top[x+1] = byte(top)
	pl.Bottom[x+1] = byte(bottom)
	pl.Modified = true
}

// Plane returns the visplane for h. The pointer stays valid until
// ResetPlanes.
func (m *VisplaneManager) Plane(h PlaneHandle) *Visplane {
	return m.planes[h]
}

// Count returns the number of planes in use this frame.
func (m *VisplaneManager) Count() int { return len(m.live) }

// Each calls fn for every plane in use, in creation order.
func (m *VisplaneManager) Each(fn func(PlaneHandle, *Visplane)) {
	for _, h := range m.live {
		fn(h, m.planes[h])
	}
}

// ClearPlanes starts a new frame: every plane goes back on the free stack
// and the clip arrays open up to the full view.
func (m *VisplaneManager) ClearPlanes() {
	m.free = append(m.free, m.live...)
	m.live = m.live[:0]
	for i := range m.buckets {
		m.buckets[i] = m.buckets[i][:0]
	}
	m.resetClip()
}

// ResetPlanes drops the arena. Used between levels.
func (m *VisplaneManager) ResetPlanes() {
	m.planes = nil
	m.free = nil
	m.live = nil
	for i := range m.buckets {
		m.buckets[i] = nil
	}
	m.resetClip()
}

func (m *VisplaneManager) resetClip() {
	for x := range m.FloorClip {
		m.FloorClip[x] = m.height
		m.CeilingClip[x] = -1
	}
}

// DrawPlanes spans every marked plane. Sky planes go to the sky renderer.
func (m *VisplaneManager) DrawPlanes(flats FlatSource) {
	for _, h := range m.live {
		pl := m.planes[h]
		if pl.MinX > pl.MaxX || !pl.Modified {
			continue
		}
		if pl.Picnum == m.skyFlat {
			if m.sky != nil {
				m.sky.DrawSky(pl, m.view)
			}
			continue
		}
		m.view.DrawPlane(pl, flats.Flat(pl.Picnum))
	}
}
