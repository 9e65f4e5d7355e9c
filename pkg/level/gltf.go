package level

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"
)

// LoadGLTF loads a level drawn as glTF line primitives.
//
// Each mesh is one sector; its extras may set "floor", "ceiling", "light",
// "floorpic", "ceilingpic" and "special". Each LINES primitive of a mesh
// adds lines fronting that sector; its extras may set "special", "flags",
// "tag" and "back" (a mesh index). Positions map X to map x and -Z to map
// y; Y is ignored. Nodes whose extras carry "thing" become things at their
// translation, with an optional "angle" in degrees.
func LoadGLTF(path string) (*Level, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	lvl, err := FromGLTF(doc)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	if lvl.Name == "" {
		lvl.Name = filepath.Base(path)
	}
	return lvl, nil
}

// FromGLTF converts a decoded glTF document into a validated level.
func FromGLTF(doc *gltf.Document) (*Level, error) {
	lvl := &Level{Episode: 1, Map: 1, SkyFlat: FlatSky}
	if doc.Asset.Extras != nil {
		ex := extrasMap(doc.Asset.Extras)
		lvl.Episode = extraInt(ex, "episode", 1)
		lvl.Map = extraInt(ex, "map", 1)
		lvl.SkyFlat = extraInt(ex, "skyflat", FlatSky)
		if name, ok := ex["name"].(string); ok {
			lvl.Name = name
		}
	}
	b := newBuilder(lvl)

	for si, m := range doc.Meshes {
		ex := extrasMap(m.Extras)
		lvl.Sectors = append(lvl.Sectors, Sector{
			Floor:      int16(extraInt(ex, "floor", 0)),
			Ceiling:    int16(extraInt(ex, "ceiling", 128)),
			Light:      extraInt(ex, "light", 160),
			FloorPic:   extraInt(ex, "floorpic", FlatFloor),
			CeilingPic: extraInt(ex, "ceilingpic", FlatCeiling),
			Special:    extraInt(ex, "special", 0),
			OldSpecial: extraInt(ex, "special", 0),
		})

		for pi, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveLines {
				// Skip non-line primitives (triangles, points)
				continue
			}
			if err := b.addPrimitive(doc, prim, si); err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", m.Name, pi, err)
			}
		}
	}

	for _, n := range doc.Nodes {
		ex := extrasMap(n.Extras)
		typ := extraInt(ex, "thing", 0)
		if typ == 0 {
			continue
		}
		lvl.Things = append(lvl.Things, Thing{
			X:     int16(math.Round(n.Translation[0])),
			Y:     int16(math.Round(-n.Translation[2])),
			Angle: extraInt(ex, "angle", 0),
			Type:  typ,
		})
	}

	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	return lvl, nil
}

func (b *builder) addPrimitive(doc *gltf.Document, prim *gltf.Primitive, front int) error {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return fmt.Errorf("no POSITION attribute")
	}
	positions, err := readVec3Accessor(doc, posIdx)
	if err != nil {
		return fmt.Errorf("read positions: %w", err)
	}

	var indices []int
	if prim.Indices != nil {
		indices, err = readIndices(doc, *prim.Indices)
		if err != nil {
			return fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]int, len(positions))
		for i := range indices {
			indices[i] = i
		}
	}

	ex := extrasMap(prim.Extras)
	back := extraInt(ex, "back", NoSector)
	special := extraInt(ex, "special", 0)
	flags := LineFlags(extraInt(ex, "flags", 0))
	tag := extraInt(ex, "tag", 0)

	for i := 0; i+1 < len(indices); i += 2 {
		i1, i2 := indices[i], indices[i+1]
		if i1 >= len(positions) || i2 >= len(positions) {
			return fmt.Errorf("index %d/%d of %d positions: %w", i1, i2, len(positions), ErrBadReference)
		}
		p1, p2 := positions[i1], positions[i2]
		x1, y1 := int16(math.Round(float64(p1[0]))), int16(math.Round(-float64(p1[2])))
		x2, y2 := int16(math.Round(float64(p2[0]))), int16(math.Round(-float64(p2[2])))
		if x1 == x2 && y1 == y2 {
			// Degenerate segment.
			continue
		}
		b.line(x1, y1, x2, y2, front, back, special, flags)
		b.lvl.Lines[len(b.lvl.Lines)-1].Tag = tag
	}
	return nil
}

// extrasMap returns glTF extras as a JSON object, or nil.
func extrasMap(extras any) map[string]any {
	switch v := extras.(type) {
	case map[string]any:
		return v
	case json.RawMessage:
		var m map[string]any
		if json.Unmarshal(v, &m) == nil {
			return m
		}
	}
	return nil
}

// extraInt reads an integer field from extras.
func extraInt(ex map[string]any, key string, def int) int {
	switch v := ex[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return def
}

// readVec3Accessor reads VEC3 float data from a glTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([][3]float32, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", accessorIdx, ErrBadReference)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 || accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3, got %v/%v", accessor.Type, accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, 12)
	if err != nil {
		return nil, err
	}
	result := make([][3]float32, accessor.Count)
	for i := range accessor.Count {
		offset := i * stride
		for j := range 3 {
			result[i][j] = math.Float32frombits(binary.LittleEndian.Uint32(data[offset+j*4:]))
		}
	}
	return result, nil
}

// readIndices reads scalar index data from a glTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", accessorIdx, ErrBadReference)
	}
	accessor := doc.Accessors[accessorIdx]

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}
	result := make([]int, accessor.Count)
	for i := range accessor.Count {
		b := data[i*stride:]
		switch size {
		case 1:
			result[i] = int(b[0])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(b))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return result, nil
}

// accessorBytes returns the accessor's bytes starting at its first element
// and the stride between elements.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor has no buffer view")
	}
	if *accessor.BufferView >= len(doc.BufferViews) {
		return nil, 0, fmt.Errorf("buffer view %d: %w", *accessor.BufferView, ErrBadReference)
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	if bufferView.Buffer >= len(doc.Buffers) {
		return nil, 0, fmt.Errorf("buffer %d: %w", bufferView.Buffer, ErrBadReference)
	}
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.Data == nil {
		return nil, 0, fmt.Errorf("buffer has no data")
	}

	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := bufferView.ByteOffset + accessor.ByteOffset
	end := start
	if accessor.Count > 0 {
		end = start + (accessor.Count-1)*stride + elemSize
	}
	if end > len(buffer.Data) {
		return nil, 0, fmt.Errorf("accessor reads %d bytes past buffer end", end-len(buffer.Data))
	}
	return buffer.Data[start:end], stride, nil
}
