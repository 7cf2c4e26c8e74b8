package colorspace

import (
	"fmt"
	"log"
)

// ---------------------- Indexed ----------------------

// Indexed maps small integer indices to colors of a base space,
// through a lookup table of base components. Indices outside
// [0, HighVal) read the closest table entry.
type Indexed struct {
	Base ColorSpace
	// HighVal is the number of table entries, that is the Hival field
	// of the descriptor plus one.
	HighVal int
	// Lookup holds Base.NComps() * HighVal bytes.
	Lookup []byte

	lookup16 []uint16 // Lookup widened for the base conversion
}

func newIndexed(base ColorSpace, highVal int, lookup []byte) (*Indexed, error) {
	if highVal < 1 || highVal > 256 {
		return nil, fmt.Errorf("Indexed: invalid table size %d", highVal)
	}
	length := base.NComps() * highVal
	out := &Indexed{Base: base, HighVal: highVal, Lookup: make([]byte, length)}
	// a short table is zero padded
	copy(out.Lookup, lookup)
	out.lookup16 = make([]uint16, length)
	for i, v := range out.Lookup {
		out.lookup16[i] = uint16(v)
	}
	return out, nil
}

// lookupPos bounds an index to the table before converting it to a
// byte offset: samples of a deeper bit depth than the table are valid
// input and must not read past it.
func (c *Indexed) lookupPos(index int) int {
	if index >= c.HighVal {
		index = c.HighVal - 1
	}
	if index < 0 {
		index = 0
	}
	return index * c.Base.NComps()
}

func (*Indexed) isColorSpace()            {}
func (*Indexed) Name() Name               { return NameIndexed }
func (*Indexed) NComps() int              { return 1 }
func (*Indexed) IsPassthrough(int) bool   { return false }
func (*Indexed) UsesZeroToOneRange() bool { return true }

func (c *Indexed) RGBItem(src []Fl, srcOff int, dest []uint8, destOff int) {
	c.Base.RGBBuffer(c.lookup16, c.lookupPos(int(src[srcOff])), 1, dest, destOff, 8, 0)
}

func (c *Indexed) RGBBuffer(src []uint16, srcOff, count int, dest []uint8, destOff, bits, alpha01 int) {
	outputDelta := c.Base.OutputLength(c.Base.NComps(), alpha01)
	for i := 0; i < count; i++ {
		c.Base.RGBBuffer(c.lookup16, c.lookupPos(int(src[srcOff])), 1, dest, destOff, 8, alpha01)
		srcOff++
		destOff += outputDelta
	}
}

func (c *Indexed) OutputLength(inputLength, alpha01 int) int {
	return c.Base.OutputLength(inputLength*c.Base.NComps(), alpha01)
}

// IsDefaultDecode checks the identity map for indices, [0, 2^bpc - 1].
func (c *Indexed) IsDefaultDecode(decode []Fl, bpc int) bool {
	if decode == nil {
		return true
	}
	if len(decode) != 2 {
		log.Printf("Indexed: invalid decode map length %d", len(decode))
		return true
	}
	if bpc < 1 {
		log.Printf("Indexed: invalid bits per component %d", bpc)
		return true
	}
	return decode[0] == 0 && decode[1] == Fl((int(1)<<bpc)-1)
}

// ---------------------- Alternate ----------------------

// Alternate implements both the Separation and DeviceN color spaces:
// the named colorants are mapped onto a base color space by a tint
// function.
type Alternate struct {
	Base ColorSpace
	Tint TintFunction

	nComps int // number of colorants, 1 for Separation
}

func newAlternate(nComps int, base ColorSpace, tint TintFunction) (*Alternate, error) {
	if nComps < 1 {
		return nil, fmt.Errorf("Separation/DeviceN: invalid number of colorants %d", nComps)
	}
	if tint == nil {
		return nil, fmt.Errorf("Separation/DeviceN: missing tint transform")
	}
	return &Alternate{Base: base, Tint: tint, nComps: nComps}, nil
}

func (*Alternate) isColorSpace()            {}
func (*Alternate) Name() Name               { return NameAlternate }
func (c *Alternate) NComps() int            { return c.nComps }
func (*Alternate) IsPassthrough(int) bool   { return false }
func (*Alternate) UsesZeroToOneRange() bool { return true }

func (c *Alternate) RGBItem(src []Fl, srcOff int, dest []uint8, destOff int) {
	tinted := make([]Fl, c.Base.NComps())
	c.Tint.Transform(src, srcOff, tinted, 0)
	c.Base.RGBItem(tinted, 0, dest, destOff)
}

func (c *Alternate) RGBBuffer(src []uint16, srcOff, count int, dest []uint8, destOff, bits, alpha01 int) {
	base := c.Base
	scale := 1 / Fl((int(1)<<bits)-1)
	baseNComps := base.NComps()
	usesZeroToOne := base.UsesZeroToOneRange()
	isPassthrough := (base.IsPassthrough(8) || !usesZeroToOne) && alpha01 == 0

	// stage the tinted components, directly in dest when the staged
	// bytes are already the final output
	var staged []uint8
	var pos int
	if isPassthrough {
		staged = dest
		pos = destOff
	} else {
		staged = make([]uint8, baseNComps*count)
	}

	scaled := make([]Fl, c.nComps)
	tinted := make([]Fl, baseNComps)
	for i := 0; i < count; i++ {
		for j := 0; j < c.nComps; j++ {
			scaled[j] = scale * Fl(src[srcOff])
			srcOff++
		}
		c.Tint.Transform(scaled, 0, tinted, 0)
		if usesZeroToOne {
			for j := 0; j < baseNComps; j++ {
				staged[pos] = clampByte(tinted[j] * 255)
				pos++
			}
		} else {
			base.RGBItem(tinted, 0, staged, pos)
			pos += baseNComps
		}
	}

	if !isPassthrough {
		widened := make([]uint16, len(staged))
		for i, v := range staged {
			widened[i] = uint16(v)
		}
		base.RGBBuffer(widened, 0, count, dest, destOff, 8, alpha01)
	}
}

func (c *Alternate) OutputLength(inputLength, alpha01 int) int {
	return c.Base.OutputLength(inputLength*c.Base.NComps()/c.nComps, alpha01)
}

func (c *Alternate) IsDefaultDecode(decode []Fl, _ int) bool {
	return IsDefaultDecode(decode, c.nComps)
}

// ---------------------- Pattern ----------------------

// Pattern only carries the underlying color space of uncolored tiling
// patterns; it has no pixel representation. Invoking a conversion on a
// Pattern is a programming error and panics.
type Pattern struct {
	Base ColorSpace // nil for colored patterns
}

func (*Pattern) isColorSpace()            {}
func (*Pattern) Name() Name               { return NamePattern }
func (*Pattern) NComps() int              { return 0 }
func (*Pattern) IsPassthrough(int) bool   { return false }
func (*Pattern) UsesZeroToOneRange() bool { return true }

func (*Pattern) RGBItem([]Fl, int, []uint8, int) {
	panic("pattern color space has no pixel conversion")
}

func (*Pattern) RGBBuffer([]uint16, int, int, []uint8, int, int, int) {
	panic("pattern color space has no pixel conversion")
}

func (*Pattern) OutputLength(int, int) int {
	panic("pattern color space has no pixel conversion")
}

func (*Pattern) IsDefaultDecode([]Fl, int) bool { return true }
