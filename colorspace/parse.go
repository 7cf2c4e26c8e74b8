package colorspace

import (
	"encoding/hex"
	"fmt"
	"log"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// Xref resolves indirect references to their target object. It is the
// only capability the parser needs from the surrounding PDF file.
type Xref interface {
	// FetchIfRef resolves an indirect reference, returning every other
	// object unchanged. An undefined reference yields nil, which is
	// treated as the null object (PDF spec, clause 7.3.10).
	FetchIfRef(o pdfcpu.Object) pdfcpu.Object
}

// XrefTable adapts a pdfcpu cross reference table to the Xref
// capability.
type XrefTable struct {
	Table *pdfcpu.XRefTable
}

func (x XrefTable) FetchIfRef(o pdfcpu.Object) pdfcpu.Object {
	// despite its signature, Dereference always returns a nil error
	out, _ := x.Table.Dereference(o)
	return out
}

// FunctionFactory builds a tint transform from a PDF function object.
type FunctionFactory interface {
	Create(fn pdfcpu.Object) (TintFunction, error)
}

// Parse reads a color space descriptor: either a name, possibly
// declared in the ColorSpace sub-dictionary of `resources`, or an
// array for the parameterized families. `xref` and `resources` may be
// nil for self contained descriptors; `factory` is only needed for
// Separation and DeviceN spaces.
func Parse(cs pdfcpu.Object, xref Xref, resources pdfcpu.Dict, factory FunctionFactory) (ColorSpace, error) {
	ir, err := ParseToIR(cs, xref, resources, factory)
	if err != nil {
		return nil, err
	}
	return FromIR(ir)
}

// ParseToIR reads a color space descriptor into its intermediate
// representation, without materializing an instance. See Parse.
func ParseToIR(cs pdfcpu.Object, xref Xref, resources pdfcpu.Dict, factory FunctionFactory) (IR, error) {
	r := resolver{xref: xref, res: resources, fns: factory}
	return r.parseToIR(cs)
}

type resolver struct {
	xref Xref
	res  pdfcpu.Dict
	fns  FunctionFactory
}

func (r resolver) parseToIR(cs pdfcpu.Object) (IR, error) {
	cs = r.resolve(cs)
	if name, ok := cs.(pdfcpu.Name); ok {
		switch name {
		case "G", "DeviceGray":
			return IRDeviceGray{}, nil
		case "RGB", "DeviceRGB":
			return IRDeviceRGB{}, nil
		case "CMYK", "DeviceCMYK":
			return IRDeviceCMYK{}, nil
		case "Pattern":
			return IRPattern{}, nil
		default:
			// the name may be declared in the resource dictionary
			csRes, _ := r.resolve(r.res["ColorSpace"]).(pdfcpu.Dict)
			target, has := csRes[string(name)]
			if !has || target == nil {
				return nil, fmt.Errorf("unrecognized color space name %s", name)
			}
			target = r.resolve(target)
			if _, isName := target.(pdfcpu.Name); isName {
				return r.parseToIR(target)
			}
			cs = target
		}
	}

	ar, ok := cs.(pdfcpu.Array)
	if !ok {
		return nil, errType("color space", cs)
	}
	if len(ar) == 0 {
		return nil, fmt.Errorf("empty array for color space")
	}
	mode, _ := r.resolve(ar[0]).(pdfcpu.Name)
	switch mode {
	case "G", "DeviceGray":
		return IRDeviceGray{}, nil
	case "RGB", "DeviceRGB":
		return IRDeviceRGB{}, nil
	case "CMYK", "DeviceCMYK":
		return IRDeviceCMYK{}, nil
	case "CalGray":
		return r.parseCalGray(ar)
	case "CalRGB":
		return r.parseCalRGB(ar)
	case "Lab":
		return r.parseLab(ar)
	case "ICCBased":
		return r.parseICCBased(ar)
	case "Pattern":
		out := IRPattern{}
		if len(ar) > 1 {
			base, err := r.parseToIR(ar[1])
			if err != nil {
				return nil, err
			}
			out.Base = base
		}
		return out, nil
	case "I", "Indexed":
		return r.parseIndexed(ar)
	case "Separation", "DeviceN":
		return r.parseSeparationDeviceN(ar)
	default:
		return nil, fmt.Errorf("unsupported color space %s", mode)
	}
}

// params returns the parameters dictionary of a 2-elements family
// array such as [/CalGray <<...>>].
func (r resolver) params(family string, ar pdfcpu.Array) (pdfcpu.Dict, error) {
	if len(ar) != 2 {
		return nil, fmt.Errorf("expected 2-elements array for %s color space, got %v", family, ar)
	}
	dict, ok := r.resolve(ar[1]).(pdfcpu.Dict)
	if !ok {
		return nil, errType(family, r.resolve(ar[1]))
	}
	return dict, nil
}

func (r resolver) parseCalGray(ar pdfcpu.Array) (IR, error) {
	dict, err := r.params("CalGray", ar)
	if err != nil {
		return nil, err
	}
	var out IRCalGray
	if wp, ok := r.resolveArray(dict["WhitePoint"]); ok {
		out.WhitePoint = r.processFloatArray(wp)
	}
	if bp, ok := r.resolveArray(dict["BlackPoint"]); ok {
		out.BlackPoint = r.processFloatArray(bp)
	}
	out.Gamma, _ = r.resolveNumber(dict["Gamma"])
	return out, nil
}

func (r resolver) parseCalRGB(ar pdfcpu.Array) (IR, error) {
	dict, err := r.params("CalRGB", ar)
	if err != nil {
		return nil, err
	}
	var out IRCalRGB
	if wp, ok := r.resolveArray(dict["WhitePoint"]); ok {
		out.WhitePoint = r.processFloatArray(wp)
	}
	if bp, ok := r.resolveArray(dict["BlackPoint"]); ok {
		out.BlackPoint = r.processFloatArray(bp)
	}
	if gamma, ok := r.resolveArray(dict["Gamma"]); ok {
		out.Gamma = r.processFloatArray(gamma)
	}
	if mat, ok := r.resolveArray(dict["Matrix"]); ok {
		out.Matrix = r.processFloatArray(mat)
	}
	return out, nil
}

func (r resolver) parseLab(ar pdfcpu.Array) (IR, error) {
	dict, err := r.params("Lab", ar)
	if err != nil {
		return nil, err
	}
	var out IRLab
	if wp, ok := r.resolveArray(dict["WhitePoint"]); ok {
		out.WhitePoint = r.processFloatArray(wp)
	}
	if bp, ok := r.resolveArray(dict["BlackPoint"]); ok {
		out.BlackPoint = r.processFloatArray(bp)
	}
	if rng, ok := r.resolveArray(dict["Range"]); ok {
		out.Range = r.processFloatArray(rng)
	}
	return out, nil
}

func (r resolver) parseICCBased(ar pdfcpu.Array) (IR, error) {
	if len(ar) != 2 {
		return nil, fmt.Errorf("expected 2-elements array for ICCBased color space, got %v", ar)
	}
	stream, ok := r.resolve(ar[1]).(pdfcpu.StreamDict)
	if !ok {
		return nil, errType("ICCBased stream", r.resolve(ar[1]))
	}
	n, _ := r.resolveInt(stream.Dict["N"])
	if alt := stream.Dict["Alternate"]; alt != nil {
		altIR, err := r.parseToIR(alt)
		if err != nil {
			return nil, err
		}
		altCS, err := FromIR(altIR)
		if err != nil {
			return nil, err
		}
		if altCS.NComps() == n {
			return altIR, nil
		}
		log.Printf("ICCBased color space: ignoring /Alternate entry with %d components (N is %d)",
			altCS.NComps(), n)
	}
	switch n {
	case 1:
		return IRDeviceGray{}, nil
	case 3:
		return IRDeviceRGB{}, nil
	case 4:
		return IRDeviceCMYK{}, nil
	}
	return nil, fmt.Errorf("ICCBased color space with unsupported component count %d", n)
}

func (r resolver) parseIndexed(ar pdfcpu.Array) (IR, error) {
	if len(ar) != 4 {
		return nil, fmt.Errorf("expected 4-elements array for Indexed color space, got %v", ar)
	}
	base, err := r.parseToIR(ar[1])
	if err != nil {
		return nil, err
	}
	hival, _ := r.resolveInt(ar[2])
	out := IRIndexed{Base: base, HighVal: hival + 1}
	lookup := r.resolve(ar[3])
	if s, ok := isString(lookup); ok {
		out.Lookup = []byte(s)
	} else if stream, ok := lookup.(pdfcpu.StreamDict); ok {
		out.Lookup = stream.Content
		if out.Lookup == nil {
			out.Lookup = stream.Raw
		}
	} else {
		return nil, errType("Indexed lookup table", lookup)
	}
	return out, nil
}

func (r resolver) parseSeparationDeviceN(ar pdfcpu.Array) (IR, error) {
	if len(ar) != 4 && len(ar) != 5 {
		return nil, fmt.Errorf("expected 4 or 5 elements array for Separation/DeviceN color space, got %v", ar)
	}
	// a single name for Separation, an array of names for DeviceN
	nComps := 1
	if names, ok := r.resolveArray(ar[1]); ok {
		nComps = len(names)
	}
	base, err := r.parseToIR(ar[2])
	if err != nil {
		return nil, err
	}
	if r.fns == nil {
		return nil, fmt.Errorf("missing function factory for tint transform")
	}
	tint, err := r.fns.Create(r.resolve(ar[3]))
	if err != nil {
		return nil, fmt.Errorf("invalid tint transform: %w", err)
	}
	return IRAlternate{NComps: nComps, Base: base, Tint: tint}, nil
}

// might return nil: an indirect reference to an undefined object is
// treated as a reference to the null object
func (r resolver) resolve(o pdfcpu.Object) pdfcpu.Object {
	if r.xref == nil {
		return o
	}
	return r.xref.FetchIfRef(o)
}

func (r resolver) resolveInt(o pdfcpu.Object) (int, bool) {
	b, ok := r.resolve(o).(pdfcpu.Integer)
	return int(b), ok
}

// accepts both integer and float
func (r resolver) resolveNumber(o pdfcpu.Object) (Fl, bool) {
	switch o := r.resolve(o).(type) {
	case pdfcpu.Float:
		return Fl(o.Value()), true
	case pdfcpu.Integer:
		return Fl(o.Value()), true
	default:
		return 0, false
	}
}

func (r resolver) resolveArray(o pdfcpu.Object) (pdfcpu.Array, bool) {
	b, ok := r.resolve(o).(pdfcpu.Array)
	return b, ok
}

func (r resolver) processFloatArray(ar pdfcpu.Array) []Fl {
	out := make([]Fl, len(ar))
	for i, v := range ar {
		out[i], _ = r.resolveNumber(v)
	}
	return out
}

// return the string and true if o is a StringLiteral (...) or a
// HexLiteral <...>
func isString(o pdfcpu.Object) (string, bool) {
	switch o := o.(type) {
	case pdfcpu.StringLiteral:
		return o.Value(), true
	case pdfcpu.HexLiteral:
		out, err := hex.DecodeString(o.Value())
		return string(out), err == nil
	default:
		return "", false
	}
}

func errType(label string, o pdfcpu.Object) error {
	return fmt.Errorf("unexpected type for %s: %T", label, o)
}
