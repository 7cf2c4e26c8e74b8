package function

import (
	"errors"
	"fmt"

	"github.com/benoitkugler/pdfrender/colorspace"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// Parse reads a PDF function object: a dictionary for exponential and
// stitching functions, a stream for sampled and calculator functions.
// `xref` may be nil for self contained objects.
func Parse(fn pdfcpu.Object, xref colorspace.Xref) (FunctionDict, error) {
	r := resolver{xref: xref}
	return r.resolveFunction(fn)
}

type resolver struct {
	xref colorspace.Xref
}

func (r resolver) resolveFunction(fn pdfcpu.Object) (FunctionDict, error) {
	fn = r.resolve(fn)
	var (
		out      FunctionDict
		err      error
		dict     pdfcpu.Dict
		stream   pdfcpu.StreamDict
		isStream bool
	)
	// fn is either a dict (type 2 and 3) or a content stream (type 0 and 4)
	switch fn := fn.(type) {
	case pdfcpu.Dict:
		dict = fn
	case pdfcpu.StreamDict:
		dict = fn.Dict
		stream = fn
		isStream = true
	default:
		return out, errType("Function", fn)
	}

	// common fields
	domain, _ := r.resolveArray(dict["Domain"])
	out.Domain, err = r.processRanges(domain)
	if err != nil {
		return out, err
	}
	if len(out.Domain) == 0 {
		return out, errors.New("missing Domain for function")
	}
	rng, _ := r.resolveArray(dict["Range"])
	out.Range, err = r.processRanges(rng)
	if err != nil {
		return out, err
	}

	// specialization
	fType, _ := r.resolveInt(dict["FunctionType"])
	switch fType {
	case 0:
		if !isStream {
			return out, errors.New("missing stream for sampled function")
		}
		if len(out.Range) == 0 {
			return out, errors.New("missing Range for sampled function")
		}
		out.FunctionType, err = r.processSampledFn(stream, len(out.Domain), len(out.Range))
	case 2:
		out.FunctionType, err = r.processExpInterpolationFn(dict)
	case 3:
		out.FunctionType, err = r.resolveStitchingFn(dict)
	case 4:
		if !isStream {
			return out, errors.New("missing stream for calculator function")
		}
		if len(out.Range) == 0 {
			return out, errors.New("missing Range for calculator function")
		}
		out.FunctionType, err = parseCalculator(streamContent(stream))
	default:
		return out, fmt.Errorf("invalid function type %d", fType)
	}
	return out, err
}

// streamContent returns the decoded stream bytes, best effort.
func streamContent(s pdfcpu.StreamDict) []byte {
	if s.Content != nil {
		return s.Content
	}
	return s.Raw
}

func (r resolver) processSampledFn(stream pdfcpu.StreamDict, m, n int) (FunctionSampled, error) {
	out := FunctionSampled{Data: streamContent(stream)}

	size, _ := r.resolveArray(stream.Dict["Size"])
	if len(size) != m {
		return out, fmt.Errorf("expected %d elements array for Size, got %v", m, size)
	}
	out.Size = make([]int, m)
	for i, s := range size {
		out.Size[i], _ = r.resolveInt(s)
		if out.Size[i] < 1 {
			return out, fmt.Errorf("invalid sample count %d for input %d", out.Size[i], i)
		}
	}

	if bs, ok := r.resolveInt(stream.Dict["BitsPerSample"]); ok {
		out.BitsPerSample = uint8(bs)
	}
	switch out.BitsPerSample {
	case 1, 2, 4, 8, 12, 16, 24, 32:
	default:
		return out, fmt.Errorf("invalid BitsPerSample %d for sampled function", out.BitsPerSample)
	}
	if o, ok := r.resolveInt(stream.Dict["Order"]); ok {
		out.Order = uint8(o)
	}

	encode, _ := r.resolveArray(stream.Dict["Encode"])
	if len(encode) != 2*m && len(encode) != 0 {
		return out, fmt.Errorf("expected 2 x %d elements array for Encode, got %v", m, encode)
	}
	out.Encode = r.processPoints(encode)

	decode, _ := r.resolveArray(stream.Dict["Decode"])
	if len(decode) != 2*n && len(decode) != 0 {
		return out, fmt.Errorf("expected 2 x %d elements array for Decode, got %v", n, decode)
	}
	out.Decode = r.processPoints(decode)

	// enough bits for the whole sample grid
	totalSamples := n
	for _, s := range out.Size {
		totalSamples *= s
	}
	if needed := (totalSamples*int(out.BitsPerSample) + 7) / 8; len(out.Data) < needed {
		return out, fmt.Errorf("sampled function stream too short: %d bytes for %d samples of %d bits",
			len(out.Data), totalSamples, out.BitsPerSample)
	}
	return out, nil
}

func (r resolver) processExpInterpolationFn(fn pdfcpu.Dict) (FunctionExpInterpolation, error) {
	c0, _ := r.resolveArray(fn["C0"])
	c1, _ := r.resolveArray(fn["C1"])
	if len(c0) != 0 && len(c1) != 0 && len(c0) != len(c1) {
		return FunctionExpInterpolation{}, errors.New("array length must be equal for C0 and C1")
	}
	out := FunctionExpInterpolation{
		C0: r.processFloatArray(c0),
		C1: r.processFloatArray(c1),
	}
	if len(out.C0) == 0 {
		out.C0 = []Fl{0}
	}
	if len(out.C1) == 0 {
		out.C1 = []Fl{1}
	}
	if len(out.C0) != len(out.C1) {
		return out, errors.New("array length must be equal for C0 and C1")
	}
	out.N, _ = r.resolveNumber(fn["N"])
	return out, nil
}

func (r resolver) resolveStitchingFn(fn pdfcpu.Dict) (FunctionStitching, error) {
	fns, _ := r.resolveArray(fn["Functions"])
	k := len(fns)
	if k == 0 {
		return FunctionStitching{}, errors.New("missing Functions for stitching function")
	}
	var out FunctionStitching
	out.Functions = make([]FunctionDict, k)
	for i, f := range fns {
		sub, err := r.resolveFunction(f)
		if err != nil {
			return out, err
		}
		out.Functions[i] = sub
	}
	bounds, _ := r.resolveArray(fn["Bounds"])
	if len(bounds) != k-1 {
		return out, fmt.Errorf("expected k-1 elements array for Bounds, got %v", bounds)
	}
	out.Bounds = r.processFloatArray(bounds)

	encode, _ := r.resolveArray(fn["Encode"])
	if len(encode) != 2*k {
		return out, fmt.Errorf("expected 2 x k elements array for Encode, got %v", encode)
	}
	out.Encode = r.processPoints(encode)
	return out, nil
}

// might return nil, see colorspace.Xref
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

// do not impose a < b
func (r resolver) processPoints(ar pdfcpu.Array) [][2]Fl {
	out := make([][2]Fl, len(ar)/2)
	for i := range out {
		out[i][0], _ = r.resolveNumber(ar[2*i])
		out[i][1], _ = r.resolveNumber(ar[2*i+1])
	}
	return out
}

func (r resolver) processRanges(ar pdfcpu.Array) ([]Range, error) {
	if len(ar)%2 != 0 {
		return nil, fmt.Errorf("expected even length for ranges array, got %v", ar)
	}
	out := make([]Range, len(ar)/2)
	for i := range out {
		a, _ := r.resolveNumber(ar[2*i])
		b, _ := r.resolveNumber(ar[2*i+1])
		if a > b {
			return nil, fmt.Errorf("invalid range %v > %v", a, b)
		}
		out[i] = Range{a, b}
	}
	return out, nil
}

func errType(label string, o pdfcpu.Object) error {
	return fmt.Errorf("unexpected type for %s: %T", label, o)
}
