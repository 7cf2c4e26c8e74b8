package function

import (
	"log"

	"github.com/benoitkugler/pdfrender/colorspace"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

var _ colorspace.FunctionFactory = Factory{}

// Factory builds tint transforms for Separation and DeviceN color
// spaces. It implements colorspace.FunctionFactory.
type Factory struct {
	Xref colorspace.Xref // may be nil
}

// Create parses the given function object and returns it as a tint
// transform.
func (f Factory) Create(fn pdfcpu.Object) (colorspace.TintFunction, error) {
	fd, err := Parse(fn, f.Xref)
	if err != nil {
		return nil, err
	}
	return &tintTransform{fn: fd}, nil
}

// tintTransform adapts a FunctionDict to the TintFunction interface.
// It holds no mutable state, so it is safe for concurrent use.
type tintTransform struct {
	fn FunctionDict
}

func (t *tintTransform) Transform(src []Fl, srcOff int, dest []Fl, destOff int) {
	in := src[srcOff : srcOff+len(t.fn.Domain)]
	out := dest[destOff : destOff+t.fn.NOutputs()]
	if err := t.fn.Evaluate(in, out); err != nil {
		log.Printf("tint transform: %s", err)
		for i := range out {
			out[i] = 0
		}
	}
}
