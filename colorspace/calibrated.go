package colorspace

import (
	"fmt"
	"log"
	"math"
)

// ---------------------- CalGray ----------------------

// CalGray is a CIE-based grayscale space, defined by a white point
// and a decoding gamma.
type CalGray struct {
	WhitePoint [3]Fl
	BlackPoint [3]Fl // accepted but ignored by the conversion
	Gamma      Fl
}

func newCalGray(whitePoint, blackPoint []Fl, gamma Fl) (*CalGray, error) {
	if len(whitePoint) != 3 {
		return nil, fmt.Errorf("CalGray: expected 3-elements WhitePoint, got %v", whitePoint)
	}
	out := &CalGray{Gamma: 1}
	copy(out.WhitePoint[:], whitePoint)
	if out.WhitePoint[0] < 0 || out.WhitePoint[2] < 0 || out.WhitePoint[1] != 1 {
		return nil, fmt.Errorf("CalGray: invalid WhitePoint %v", out.WhitePoint)
	}
	if len(blackPoint) == 3 {
		copy(out.BlackPoint[:], blackPoint)
	}
	if out.BlackPoint[0] < 0 || out.BlackPoint[1] < 0 || out.BlackPoint[2] < 0 {
		log.Printf("CalGray: invalid BlackPoint %v, using default", out.BlackPoint)
		out.BlackPoint = [3]Fl{}
	}
	if out.BlackPoint != [3]Fl{} {
		log.Printf("CalGray: BlackPoint %v is not applied, only default values are supported", out.BlackPoint)
	}
	if gamma != 0 {
		out.Gamma = gamma
	}
	if out.Gamma < 1 {
		log.Printf("CalGray: invalid Gamma %g, using default", out.Gamma)
		out.Gamma = 1
	}
	return out, nil
}

func (*CalGray) isColorSpace()            {}
func (*CalGray) Name() Name               { return NameCalGray }
func (*CalGray) NComps() int              { return 1 }
func (*CalGray) IsPassthrough(int) bool   { return false }
func (*CalGray) UsesZeroToOneRange() bool { return true }

func (c *CalGray) toRGB(a Fl, dest []uint8, destOff int) {
	ag := pow(a, c.Gamma)
	l := c.WhitePoint[1] * ag
	// CIE 1976 lightness, rescaled to the byte range
	val := 295.8*Fl(math.Cbrt(float64(l))) - 40.8
	if val < 0 {
		val = 0
	}
	v := clampByte(val)
	dest[destOff] = v
	dest[destOff+1] = v
	dest[destOff+2] = v
}

func (c *CalGray) RGBItem(src []Fl, srcOff int, dest []uint8, destOff int) {
	c.toRGB(src[srcOff], dest, destOff)
}

func (c *CalGray) RGBBuffer(src []uint16, srcOff, count int, dest []uint8, destOff, bits, alpha01 int) {
	scale := 1 / Fl((int(1)<<bits)-1)
	for i := 0; i < count; i++ {
		c.toRGB(scale*Fl(src[srcOff]), dest, destOff)
		srcOff++
		destOff += 3 + alpha01
	}
}

func (*CalGray) OutputLength(inputLength, alpha01 int) int {
	return inputLength * (3 + alpha01)
}

func (*CalGray) IsDefaultDecode(decode []Fl, _ int) bool {
	return IsDefaultDecode(decode, 1)
}

// ---------------------- CalRGB ----------------------

// Bradford cone response matrix and its inverse, used for the
// chromatic adaptation between white points.
var bradfordScaleMatrix = [9]Fl{
	0.8951, 0.2664, -0.1614,
	-0.7502, 1.7135, 0.0367,
	0.0389, -0.0685, 1.0296,
}

var bradfordScaleInverseMatrix = [9]Fl{
	0.9869929, -0.1470543, 0.1599627,
	0.4323053, 0.5183603, 0.0492912,
	-0.0085287, 0.0400428, 0.9684867,
}

// CIE XYZ (D65 white point) to linear sRGB.
var sRGBD65XYZToRGBMatrix = [9]Fl{
	3.2404542, -1.5371385, -0.4985314,
	-0.9692660, 1.8760108, 0.0415560,
	0.0556434, -0.2040259, 1.0572252,
}

var flatWhitePoint = [3]Fl{1, 1, 1}

// CalRGB is a CIE-based three component space, defined by a white
// point, per channel gamma exponents and a linear map to XYZ.
type CalRGB struct {
	WhitePoint [3]Fl
	BlackPoint [3]Fl
	Gamma      [3]Fl
	// Matrix holds [XA YA ZA XB YB ZB XC YC ZC], the columns of the
	// linear map from decoded ABC to XYZ.
	Matrix [9]Fl
}

func newCalRGB(whitePoint, blackPoint, gamma, matrix []Fl) (*CalRGB, error) {
	if len(whitePoint) != 3 {
		return nil, fmt.Errorf("CalRGB: expected 3-elements WhitePoint, got %v", whitePoint)
	}
	out := &CalRGB{
		Gamma:  [3]Fl{1, 1, 1},
		Matrix: [9]Fl{1, 0, 0, 0, 1, 0, 0, 0, 1},
	}
	copy(out.WhitePoint[:], whitePoint)
	if out.WhitePoint[0] < 0 || out.WhitePoint[2] < 0 || out.WhitePoint[1] != 1 {
		return nil, fmt.Errorf("CalRGB: invalid WhitePoint %v", out.WhitePoint)
	}
	if len(blackPoint) == 3 {
		copy(out.BlackPoint[:], blackPoint)
	}
	if out.BlackPoint[0] < 0 || out.BlackPoint[1] < 0 || out.BlackPoint[2] < 0 {
		log.Printf("CalRGB: invalid BlackPoint %v, using default", out.BlackPoint)
		out.BlackPoint = [3]Fl{}
	}
	if len(gamma) == 3 {
		copy(out.Gamma[:], gamma)
	}
	if out.Gamma[0] < 0 || out.Gamma[1] < 0 || out.Gamma[2] < 0 {
		log.Printf("CalRGB: invalid Gamma %v, using default", out.Gamma)
		out.Gamma = [3]Fl{1, 1, 1}
	}
	if len(matrix) == 9 {
		copy(out.Matrix[:], matrix)
	}
	return out, nil
}

func (*CalRGB) isColorSpace()            {}
func (*CalRGB) Name() Name               { return NameCalRGB }
func (*CalRGB) NComps() int              { return 3 }
func (*CalRGB) IsPassthrough(int) bool   { return false }
func (*CalRGB) UsesZeroToOneRange() bool { return true }

// toFlat rescales LMS cone responses from the source white point to
// the flat (equal energy) white point.
func toFlat(sourceWhitePoint, lms, result *[3]Fl) {
	result[0] = lms[0] / sourceWhitePoint[0]
	result[1] = lms[1] / sourceWhitePoint[1]
	result[2] = lms[2] / sourceWhitePoint[2]
}

// toD65 rescales LMS cone responses from the source white point to
// the D65 white point.
func toD65(sourceWhitePoint, lms, result *[3]Fl) {
	const d65X, d65Y, d65Z = 0.95047, 1, 1.08883
	result[0] = lms[0] * d65X / sourceWhitePoint[0]
	result[1] = lms[1] * d65Y / sourceWhitePoint[1]
	result[2] = lms[2] * d65Z / sourceWhitePoint[2]
}

func normalizeWhitePointToFlat(sourceWhitePoint, xyzIn, result *[3]Fl) {
	// the flat white point is already reached
	if sourceWhitePoint[0] == 1 && sourceWhitePoint[2] == 1 {
		*result = *xyzIn
		return
	}
	var lms, lmsFlat [3]Fl
	matrixProduct(&bradfordScaleMatrix, xyzIn, &lms)
	toFlat(sourceWhitePoint, &lms, &lmsFlat)
	matrixProduct(&bradfordScaleInverseMatrix, &lmsFlat, result)
}

func normalizeWhitePointToD65(sourceWhitePoint, xyzIn, result *[3]Fl) {
	var lms, lmsD65 [3]Fl
	matrixProduct(&bradfordScaleMatrix, xyzIn, &lms)
	toD65(sourceWhitePoint, &lms, &lmsD65)
	matrixProduct(&bradfordScaleInverseMatrix, &lmsD65, result)
}

// compensateBlackPoint maps the source black point to the destination
// black [0 0 0], scaling lightness channel-wise.
func compensateBlackPoint(sourceBlackPoint, xyzFlat, result *[3]Fl) {
	if sourceBlackPoint[0] == 0 && sourceBlackPoint[1] == 0 && sourceBlackPoint[2] == 0 {
		*result = *xyzFlat
		return
	}
	zeroDecodeL := decodeL(0)
	xDst, xSrc := zeroDecodeL, decodeL(sourceBlackPoint[0])
	yDst, ySrc := zeroDecodeL, decodeL(sourceBlackPoint[1])
	zDst, zSrc := zeroDecodeL, decodeL(sourceBlackPoint[2])
	xScale := (1 - xDst) / (1 - xSrc)
	xOffset := 1 - xScale
	yScale := (1 - yDst) / (1 - ySrc)
	yOffset := 1 - yScale
	zScale := (1 - zDst) / (1 - zSrc)
	zOffset := 1 - zScale
	result[0] = xyzFlat[0]*xScale + xOffset
	result[1] = xyzFlat[1]*yScale + yOffset
	result[2] = xyzFlat[2]*zScale + zOffset
}

func (c *CalRGB) toRGB(a, b, cc Fl, dest []uint8, destOff int) {
	// A, B and C represent red, green and blue in [0, 1]
	a = clamp01(a)
	b = clamp01(b)
	cc = clamp01(cc)

	agr := pow(a, c.Gamma[0])
	bgg := pow(b, c.Gamma[1])
	cgb := pow(cc, c.Gamma[2])

	m := &c.Matrix
	xyz := [3]Fl{
		m[0]*agr + m[3]*bgg + m[6]*cgb,
		m[1]*agr + m[4]*bgg + m[7]*cgb,
		m[2]*agr + m[5]*bgg + m[8]*cgb,
	}

	var xyzFlat, xyzBlack, xyzD65, srgb [3]Fl
	normalizeWhitePointToFlat(&c.WhitePoint, &xyz, &xyzFlat)
	compensateBlackPoint(&c.BlackPoint, &xyzFlat, &xyzBlack)
	normalizeWhitePointToD65(&flatWhitePoint, &xyzBlack, &xyzD65)
	matrixProduct(&sRGBD65XYZToRGBMatrix, &xyzD65, &srgb)

	dest[destOff] = clampByte(sRGBTransferFunction(srgb[0]) * 255)
	dest[destOff+1] = clampByte(sRGBTransferFunction(srgb[1]) * 255)
	dest[destOff+2] = clampByte(sRGBTransferFunction(srgb[2]) * 255)
}

func (c *CalRGB) RGBItem(src []Fl, srcOff int, dest []uint8, destOff int) {
	c.toRGB(src[srcOff], src[srcOff+1], src[srcOff+2], dest, destOff)
}

func (c *CalRGB) RGBBuffer(src []uint16, srcOff, count int, dest []uint8, destOff, bits, alpha01 int) {
	scale := 1 / Fl((int(1)<<bits)-1)
	for i := 0; i < count; i++ {
		c.toRGB(scale*Fl(src[srcOff]), scale*Fl(src[srcOff+1]), scale*Fl(src[srcOff+2]), dest, destOff)
		srcOff += 3
		destOff += 3 + alpha01
	}
}

func (*CalRGB) OutputLength(inputLength, alpha01 int) int {
	return inputLength * (3 + alpha01) / 3
}

func (*CalRGB) IsDefaultDecode(decode []Fl, _ int) bool {
	return IsDefaultDecode(decode, 3)
}

// ---------------------- Lab ----------------------

// Lab is the CIE 1976 L*a*b* space with a D50 or D65 white point.
type Lab struct {
	WhitePoint [3]Fl
	BlackPoint [3]Fl
	// Range holds [amin amax bmin bmax], the declared ranges of the
	// a* and b* components.
	Range [4]Fl
}

func newLab(whitePoint, blackPoint, rng []Fl) (*Lab, error) {
	if len(whitePoint) != 3 {
		return nil, fmt.Errorf("Lab: expected 3-elements WhitePoint, got %v", whitePoint)
	}
	out := &Lab{Range: [4]Fl{-100, 100, -100, 100}}
	copy(out.WhitePoint[:], whitePoint)
	if out.WhitePoint[0] < 0 || out.WhitePoint[2] < 0 || out.WhitePoint[1] != 1 {
		return nil, fmt.Errorf("Lab: invalid WhitePoint %v, no fallback available", out.WhitePoint)
	}
	if len(blackPoint) == 3 {
		copy(out.BlackPoint[:], blackPoint)
	}
	if out.BlackPoint[0] < 0 || out.BlackPoint[1] < 0 || out.BlackPoint[2] < 0 {
		log.Printf("Lab: invalid BlackPoint %v, using default", out.BlackPoint)
		out.BlackPoint = [3]Fl{}
	}
	if len(rng) == 4 {
		copy(out.Range[:], rng)
	}
	if out.Range[0] > out.Range[1] || out.Range[2] > out.Range[3] {
		log.Printf("Lab: invalid Range %v, using default", out.Range)
		out.Range = [4]Fl{-100, 100, -100, 100}
	}
	return out, nil
}

func (*Lab) isColorSpace()          {}
func (*Lab) Name() Name             { return NameLab }
func (*Lab) NComps() int            { return 3 }
func (*Lab) IsPassthrough(int) bool { return false }

// UsesZeroToOneRange is false: L* lives in [0, 100] and a*, b* in
// their declared ranges.
func (*Lab) UsesZeroToOneRange() bool { return false }

// labG is the g function from the PDF specification, inverting the
// L*a*b* nonlinearity.
func labG(x Fl) Fl {
	if x >= 6.0/29.0 {
		return x * x * x
	}
	return (108.0 / 841.0) * (x - 4.0/29.0)
}

// labDecode maps an integer sample in [0, high1] to [low2, high2].
func labDecode(value, high1, low2, high2 Fl) Fl {
	return low2 + value*(high2-low2)/high1
}

func sqrtOrZero(v Fl) Fl {
	if v <= 0 {
		return 0
	}
	return Fl(math.Sqrt(float64(v)))
}

// toRGB converts one L*, a*, b* triplet. A positive maxVal remaps
// integer samples in [0, maxVal] to the native component ranges;
// maxVal <= 0 means the components are already in native ranges.
func (l *Lab) toRGB(ls, as, bs, maxVal Fl, dest []uint8, destOff int) {
	if maxVal > 0 {
		ls = labDecode(ls, maxVal, 0, 100)
		as = labDecode(as, maxVal, l.Range[0], l.Range[1])
		bs = labDecode(bs, maxVal, l.Range[2], l.Range[3])
	}
	if as > l.Range[1] {
		as = l.Range[1]
	} else if as < l.Range[0] {
		as = l.Range[0]
	}
	if bs > l.Range[3] {
		bs = l.Range[3]
	} else if bs < l.Range[2] {
		bs = l.Range[2]
	}

	m := (ls + 16) / 116
	lv := m + as/500
	n := m - bs/200

	x := l.WhitePoint[0] * labG(lv)
	y := l.WhitePoint[1] * labG(m)
	z := l.WhitePoint[2] * labG(n)

	var r, g, b Fl
	if l.WhitePoint[2] < 1 {
		// D50 white point
		r = x*3.1339 + y*-1.617 + z*-0.4906
		g = x*-0.9785 + y*1.916 + z*0.0333
		b = x*0.072 + y*-0.229 + z*1.4057
	} else {
		// D65 white point
		r = x*3.2406 + y*-1.5372 + z*-0.4986
		g = x*-0.9689 + y*1.8758 + z*0.0415
		b = x*0.0557 + y*-0.204 + z*1.057
	}
	dest[destOff] = clampByte(sqrtOrZero(r) * 255)
	dest[destOff+1] = clampByte(sqrtOrZero(g) * 255)
	dest[destOff+2] = clampByte(sqrtOrZero(b) * 255)
}

func (l *Lab) RGBItem(src []Fl, srcOff int, dest []uint8, destOff int) {
	l.toRGB(src[srcOff], src[srcOff+1], src[srcOff+2], 0, dest, destOff)
}

func (l *Lab) RGBBuffer(src []uint16, srcOff, count int, dest []uint8, destOff, bits, alpha01 int) {
	maxVal := Fl((int(1) << bits) - 1)
	for i := 0; i < count; i++ {
		l.toRGB(Fl(src[srcOff]), Fl(src[srcOff+1]), Fl(src[srcOff+2]), maxVal, dest, destOff)
		srcOff += 3
		destOff += 3 + alpha01
	}
}

func (*Lab) OutputLength(inputLength, alpha01 int) int {
	return inputLength * (3 + alpha01) / 3
}

// IsDefaultDecode always returns true: the Lab ranges drive the
// decoding of image samples.
func (*Lab) IsDefaultDecode([]Fl, int) bool { return true }
