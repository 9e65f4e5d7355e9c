package fixed

import "math"

// Angle is a binary angle measure: the full circle is 2^32.
type Angle uint32

const (
	Angle45  Angle = 0x20000000
	Angle90  Angle = 0x40000000
	Angle180 Angle = 0x80000000
	Angle270 Angle = 0xc0000000
	AngleMax Angle = 0xffffffff

	// FineAngles is the resolution of the fine trig tables.
	FineAngles       = 8192
	FineMask         = FineAngles - 1
	AngleToFineShift = 19
)

var (
	// FineSine covers 5/4 of a circle so that cosine is a quarter-turn
	// offset into the same table. Entries sit on exact fine angles, so the
	// quarter turns hold exact 0 and FracUnit.
	FineSine [5 * FineAngles / 4]Fixed

	// FineTangent spans -90..+90 degrees, sampled half a step off so the
	// ends stay finite.
	FineTangent [FineAngles / 2]Fixed
)

func init() {
	for i := range FineSine {
		a := float64(i) * 2 * math.Pi / FineAngles
		FineSine[i] = Fixed(math.Round(math.Sin(a) * float64(FracUnit)))
	}
	for i := range FineTangent {
		a := (float64(i-FineAngles/4) + 0.5) * math.Pi * 2 / FineAngles
		t := math.Tan(a) * float64(FracUnit)
		switch {
		case t > math.MaxInt32:
			t = math.MaxInt32
		case t < math.MinInt32:
			t = math.MinInt32
		}
		FineTangent[i] = Fixed(t)
	}
}

// Fine returns the fine table index of a.
func (a Angle) Fine() int {
	return int(a >> AngleToFineShift)
}

// FineCosine returns the cosine of fine angle index i.
func FineCosine(i int) Fixed {
	return FineSine[(i&FineMask)+FineAngles/4]
}

// Sin returns the sine of a.
func Sin(a Angle) Fixed {
	return FineSine[a.Fine()]
}

// Cos returns the cosine of a.
func Cos(a Angle) Fixed {
	return FineCosine(a.Fine())
}

// AngleFromDegrees converts whole degrees (as stored in map things) to BAM.
func AngleFromDegrees(deg int) Angle {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return Angle(uint64(deg) * (1 << 32) / 360)
}

// AngleFromRadians converts radians to BAM, wrapping into one turn.
func AngleFromRadians(r float64) Angle {
	turns := r / (2 * math.Pi)
	turns -= math.Floor(turns)
	return Angle(uint64(turns * (1 << 32)))
}

// Radians converts a to radians in [0, 2pi).
func (a Angle) Radians() float64 {
	return float64(a) * 2 * math.Pi / (1 << 32)
}
