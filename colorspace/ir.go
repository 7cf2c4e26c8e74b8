package colorspace

import "fmt"

// IR is the intermediate representation of a parsed color space
// descriptor: a self contained value, free of the PDF object model,
// that FromIR materializes into a ColorSpace. A renderer may cache IR
// values by reference key and materialize them on demand.
//
// IR is sealed: the concrete types are IRDeviceGray, IRDeviceRGB,
// IRDeviceCMYK, IRCalGray, IRCalRGB, IRLab, IRIndexed, IRAlternate
// and IRPattern.
type IR interface {
	isIR()
}

func (IRDeviceGray) isIR() {}
func (IRDeviceRGB) isIR()  {}
func (IRDeviceCMYK) isIR() {}
func (IRCalGray) isIR()    {}
func (IRCalRGB) isIR()     {}
func (IRLab) isIR()        {}
func (IRIndexed) isIR()    {}
func (IRAlternate) isIR()  {}
func (IRPattern) isIR()    {}

type (
	IRDeviceGray struct{}
	IRDeviceRGB  struct{}
	IRDeviceCMYK struct{}
)

// IRCalGray holds the raw CalGray parameters; a nil slice stands for
// an absent entry. Validation and defaulting happen in FromIR.
type IRCalGray struct {
	WhitePoint []Fl
	BlackPoint []Fl
	Gamma      Fl // 0 when absent
}

type IRCalRGB struct {
	WhitePoint []Fl
	BlackPoint []Fl
	Gamma      []Fl
	Matrix     []Fl
}

type IRLab struct {
	WhitePoint []Fl
	BlackPoint []Fl
	Range      []Fl
}

type IRIndexed struct {
	Base IR
	// HighVal is the Hival field of the descriptor plus one.
	HighVal int
	Lookup  []byte
}

type IRAlternate struct {
	NComps int
	Base   IR
	Tint   TintFunction
}

type IRPattern struct {
	Base IR // nil for colored patterns
}

// FromIR materializes a color space instance, validating the raw
// parameters. It never calls back into the parser: the IR is self
// contained.
func FromIR(ir IR) (ColorSpace, error) {
	switch ir := ir.(type) {
	case IRDeviceGray:
		return DeviceGray, nil
	case IRDeviceRGB:
		return DeviceRGB, nil
	case IRDeviceCMYK:
		return DeviceCMYK, nil
	case IRCalGray:
		return newCalGray(ir.WhitePoint, ir.BlackPoint, ir.Gamma)
	case IRCalRGB:
		return newCalRGB(ir.WhitePoint, ir.BlackPoint, ir.Gamma, ir.Matrix)
	case IRLab:
		return newLab(ir.WhitePoint, ir.BlackPoint, ir.Range)
	case IRIndexed:
		base, err := FromIR(ir.Base)
		if err != nil {
			return nil, err
		}
		return newIndexed(base, ir.HighVal, ir.Lookup)
	case IRAlternate:
		base, err := FromIR(ir.Base)
		if err != nil {
			return nil, err
		}
		return newAlternate(ir.NComps, base, ir.Tint)
	case IRPattern:
		out := &Pattern{}
		if ir.Base != nil {
			base, err := FromIR(ir.Base)
			if err != nil {
				return nil, err
			}
			out.Base = base
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("missing color space IR")
	}
	return nil, fmt.Errorf("unexpected color space IR %T", ir)
}
