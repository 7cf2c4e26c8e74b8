package colorspace

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"golang.org/x/exp/errors/fmt"
)

// testXref resolves indirect references from a plain map.
type testXref map[pdfcpu.IndirectRef]pdfcpu.Object

func (x testXref) FetchIfRef(o pdfcpu.Object) pdfcpu.Object {
	if ref, ok := o.(pdfcpu.IndirectRef); ok {
		return x[ref]
	}
	return o
}

// stubFactory ignores the function object and returns a fixed tint.
type stubFactory struct{}

func (stubFactory) Create(pdfcpu.Object) (TintFunction, error) {
	return invertTint{}, nil
}

func TestParseNames(t *testing.T) {
	for _, test := range []struct {
		cs       pdfcpu.Object
		expected Name
	}{
		{pdfcpu.Name("DeviceGray"), NameDeviceGray},
		{pdfcpu.Name("G"), NameDeviceGray},
		{pdfcpu.Name("DeviceRGB"), NameDeviceRGB},
		{pdfcpu.Name("RGB"), NameDeviceRGB},
		{pdfcpu.Name("DeviceCMYK"), NameDeviceCMYK},
		{pdfcpu.Name("CMYK"), NameDeviceCMYK},
		{pdfcpu.Name("Pattern"), NamePattern},
		{pdfcpu.Array{pdfcpu.Name("DeviceRGB")}, NameDeviceRGB},
		{pdfcpu.Array{pdfcpu.Name("Pattern"), pdfcpu.Name("DeviceCMYK")}, NamePattern},
		{
			pdfcpu.Array{pdfcpu.Name("CalGray"), pdfcpu.Dict{
				"WhitePoint": pdfcpu.Array{pdfcpu.Float(0.9505), pdfcpu.Integer(1), pdfcpu.Float(1.089)},
				"Gamma":      pdfcpu.Float(2.2),
			}},
			NameCalGray,
		},
		{
			pdfcpu.Array{pdfcpu.Name("CalRGB"), pdfcpu.Dict{
				"WhitePoint": pdfcpu.Array{pdfcpu.Float(0.9505), pdfcpu.Integer(1), pdfcpu.Float(1.089)},
			}},
			NameCalRGB,
		},
		{
			pdfcpu.Array{pdfcpu.Name("Lab"), pdfcpu.Dict{
				"WhitePoint": pdfcpu.Array{pdfcpu.Float(0.9505), pdfcpu.Integer(1), pdfcpu.Float(1.089)},
				"Range":      pdfcpu.Array{pdfcpu.Integer(-128), pdfcpu.Integer(127), pdfcpu.Integer(-128), pdfcpu.Integer(127)},
			}},
			NameLab,
		},
		{
			pdfcpu.Array{pdfcpu.Name("I"), pdfcpu.Name("DeviceRGB"), pdfcpu.Integer(1),
				pdfcpu.StringLiteral("\xff\x00\x00\x00\xff\x00")},
			NameIndexed,
		},
		{
			pdfcpu.Array{pdfcpu.Name("Separation"), pdfcpu.Name("All"),
				pdfcpu.Name("DeviceGray"), pdfcpu.Dict{}},
			NameAlternate,
		},
		{
			pdfcpu.Array{pdfcpu.Name("DeviceN"),
				pdfcpu.Array{pdfcpu.Name("Cyan"), pdfcpu.Name("Magenta")},
				pdfcpu.Name("DeviceCMYK"), pdfcpu.Dict{}},
			NameAlternate,
		},
		{
			pdfcpu.Array{pdfcpu.Name("ICCBased"),
				pdfcpu.StreamDict{Dict: pdfcpu.Dict{"N": pdfcpu.Integer(3)}}},
			NameDeviceRGB,
		},
	} {
		cs, err := Parse(test.cs, nil, nil, stubFactory{})
		if err != nil {
			t.Fatalf("%v: %s", test.cs, err)
		}
		if cs.Name() != test.expected {
			t.Errorf("expected %s, got %s", test.expected, cs.Name())
		}
	}
}

func TestParseResources(t *testing.T) {
	res := pdfcpu.Dict{
		"ColorSpace": pdfcpu.Dict{
			"CS0": pdfcpu.Name("DeviceCMYK"),
			"CS1": pdfcpu.Array{pdfcpu.Name("CalGray"), pdfcpu.Dict{
				"WhitePoint": pdfcpu.Array{pdfcpu.Integer(1), pdfcpu.Integer(1), pdfcpu.Integer(1)},
			}},
		},
	}
	cs, err := Parse(pdfcpu.Name("CS0"), nil, res, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cs != DeviceCMYK {
		t.Fatalf("expected the DeviceCMYK singleton, got %v", cs)
	}
	cs, err = Parse(pdfcpu.Name("CS1"), nil, res, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cs.Name() != NameCalGray {
		t.Fatalf("expected CalGray, got %s", cs.Name())
	}
	if _, err = Parse(pdfcpu.Name("CS2"), nil, res, nil); err == nil {
		t.Fatal("expected error for unknown resource name")
	}
}

func TestParseIndirect(t *testing.T) {
	lookupRef := *pdfcpu.NewIndirectRef(5, 0)
	baseRef := *pdfcpu.NewIndirectRef(6, 0)
	xref := testXref{
		lookupRef: pdfcpu.StreamDict{Content: []byte{0, 0, 0, 255, 255, 255}},
		baseRef:   pdfcpu.Name("DeviceRGB"),
	}
	desc := pdfcpu.Array{pdfcpu.Name("Indexed"), baseRef, pdfcpu.Integer(1), lookupRef}
	cs, err := Parse(desc, xref, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	indexed, ok := cs.(*Indexed)
	if !ok {
		t.Fatalf("expected an Indexed color space, got %T", cs)
	}
	if indexed.Base != DeviceRGB || indexed.HighVal != 2 {
		t.Fatalf("unexpected Indexed %v", indexed)
	}
	fmt.Printf("lookup: %v\n", indexed.Lookup)
}

func TestParseIndexedHexLookup(t *testing.T) {
	desc := pdfcpu.Array{pdfcpu.Name("Indexed"), pdfcpu.Name("DeviceGray"),
		pdfcpu.Integer(2), pdfcpu.HexLiteral("00FF80")}
	cs, err := Parse(desc, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	indexed := cs.(*Indexed)
	if diff := cmp.Diff([]byte{0x00, 0xFF, 0x80}, indexed.Lookup); diff != "" {
		t.Fatal(diff)
	}
}

func TestParseToIRCalRGB(t *testing.T) {
	desc := pdfcpu.Array{pdfcpu.Name("CalRGB"), pdfcpu.Dict{
		"WhitePoint": pdfcpu.Array{pdfcpu.Float(0.9505), pdfcpu.Integer(1), pdfcpu.Float(1.089)},
		"Gamma":      pdfcpu.Array{pdfcpu.Float(1.8), pdfcpu.Float(1.8), pdfcpu.Float(1.8)},
		"Matrix": pdfcpu.Array{
			pdfcpu.Float(0.4497), pdfcpu.Float(0.2446), pdfcpu.Float(0.0252),
			pdfcpu.Float(0.3163), pdfcpu.Float(0.6720), pdfcpu.Float(0.1412),
			pdfcpu.Float(0.1845), pdfcpu.Float(0.0833), pdfcpu.Float(0.9227),
		},
	}}
	ir, err := ParseToIR(desc, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	expected := IRCalRGB{
		WhitePoint: []Fl{0.9505, 1, 1.089},
		Gamma:      []Fl{1.8, 1.8, 1.8},
		Matrix: []Fl{
			0.4497, 0.2446, 0.0252,
			0.3163, 0.6720, 0.1412,
			0.1845, 0.0833, 0.9227,
		},
	}
	if diff := cmp.Diff(expected, ir); diff != "" {
		t.Fatal(diff)
	}

	// the IR is self contained: no xref or factory needed
	cs, err := FromIR(ir)
	if err != nil {
		t.Fatal(err)
	}
	if cs.Name() != NameCalRGB {
		t.Fatalf("expected CalRGB, got %s", cs.Name())
	}
}

func TestParseICCBasedFallback(t *testing.T) {
	// an invalid alternate fails the parse
	desc := pdfcpu.Array{pdfcpu.Name("ICCBased"), pdfcpu.StreamDict{Dict: pdfcpu.Dict{
		"N":         pdfcpu.Integer(3),
		"Alternate": pdfcpu.Name("CalRGB"),
	}}}
	// CalRGB as a bare name is not valid, the parse must fail through
	// the alternate
	if _, err := Parse(desc, nil, nil, nil); err == nil {
		t.Fatal("expected error for invalid alternate")
	}

	// the alternate matches N and is used
	desc = pdfcpu.Array{pdfcpu.Name("ICCBased"), pdfcpu.StreamDict{Dict: pdfcpu.Dict{
		"N":         pdfcpu.Integer(4),
		"Alternate": pdfcpu.Name("DeviceCMYK"),
	}}}
	cs, err := Parse(desc, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cs != DeviceCMYK {
		t.Fatalf("expected DeviceCMYK, got %s", cs.Name())
	}

	// mismatched alternate: fall back on N
	desc = pdfcpu.Array{pdfcpu.Name("ICCBased"), pdfcpu.StreamDict{Dict: pdfcpu.Dict{
		"N":         pdfcpu.Integer(1),
		"Alternate": pdfcpu.Name("DeviceRGB"),
	}}}
	cs, err = Parse(desc, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cs != DeviceGray {
		t.Fatalf("expected DeviceGray, got %s", cs.Name())
	}

	// unsupported component count
	desc = pdfcpu.Array{pdfcpu.Name("ICCBased"), pdfcpu.StreamDict{Dict: pdfcpu.Dict{
		"N": pdfcpu.Integer(2),
	}}}
	if _, err := Parse(desc, nil, nil, nil); err == nil {
		t.Fatal("expected error for unsupported N")
	}
}

func TestParseSeparation(t *testing.T) {
	desc := pdfcpu.Array{pdfcpu.Name("Separation"), pdfcpu.Name("Spot"),
		pdfcpu.Name("DeviceGray"), pdfcpu.Dict{}}
	cs, err := Parse(desc, nil, nil, stubFactory{})
	if err != nil {
		t.Fatal(err)
	}
	alt, ok := cs.(*Alternate)
	if !ok {
		t.Fatalf("expected an Alternate color space, got %T", cs)
	}
	if alt.NComps() != 1 || alt.Base != DeviceGray {
		t.Fatalf("unexpected Separation %v", alt)
	}

	// without a factory the parse fails
	if _, err = Parse(desc, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing function factory")
	}
}

func TestParseFailures(t *testing.T) {
	for _, cs := range []pdfcpu.Object{
		pdfcpu.Name("NotAColorSpace"),
		pdfcpu.Integer(4),
		pdfcpu.Array{},
		pdfcpu.Array{pdfcpu.Name("Foo")},
		pdfcpu.Array{pdfcpu.Name("CalGray"), pdfcpu.Dict{}}, // missing WhitePoint
		pdfcpu.Array{pdfcpu.Name("Indexed"), pdfcpu.Name("DeviceRGB"),
			pdfcpu.Integer(1), pdfcpu.Integer(0)}, // bad lookup
		nil,
	} {
		if _, err := Parse(cs, nil, nil, nil); err == nil {
			t.Errorf("expected parse error for %v", cs)
		}
	}
}
