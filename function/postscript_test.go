package function

import (
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/stretchr/testify/require"
)

func calculator(t *testing.T, program string, nIn, nOut int) FunctionDict {
	t.Helper()
	domain := make(pdfcpu.Array, 0, 2*nIn)
	for i := 0; i < nIn; i++ {
		domain = append(domain, pdfcpu.Integer(0), pdfcpu.Integer(1))
	}
	rng := make(pdfcpu.Array, 0, 2*nOut)
	for i := 0; i < nOut; i++ {
		rng = append(rng, pdfcpu.Integer(-100), pdfcpu.Integer(100))
	}
	fn, err := Parse(pdfcpu.StreamDict{
		Dict: pdfcpu.Dict{
			"FunctionType": pdfcpu.Integer(4),
			"Domain":       domain,
			"Range":        rng,
		},
		Content: []byte(program),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return fn
}

func evalOne(t *testing.T, fn FunctionDict, in []Fl) []Fl {
	t.Helper()
	out := make([]Fl, fn.NOutputs())
	if err := fn.Evaluate(in, out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestCalculatorArithmetic(t *testing.T) {
	fn := calculator(t, "{ 2 mul 1 add }", 1, 1)
	require.Equal(t, []Fl{2}, evalOne(t, fn, []Fl{0.5}))
	require.Equal(t, []Fl{1}, evalOne(t, fn, []Fl{0}))

	fn = calculator(t, "{ neg 1 add }", 1, 1)
	require.Equal(t, []Fl{0.75}, evalOne(t, fn, []Fl{0.25}))

	fn = calculator(t, "{ dup mul }", 1, 1)
	require.Equal(t, []Fl{0.25}, evalOne(t, fn, []Fl{0.5}))

	fn = calculator(t, "{ 7 3 idiv 7 3 mod }", 1, 2)
	require.Equal(t, []Fl{2, 1}, evalOne(t, fn, []Fl{0}))

	fn = calculator(t, "{ 2.5 floor 2.5 ceiling }", 1, 2)
	require.Equal(t, []Fl{2, 3}, evalOne(t, fn, []Fl{0}))

	// 2^8 = 256 is clipped to the upper bound of the [-100, 100] Range
	fn = calculator(t, "{ 9 sqrt 2 8 exp }", 1, 2)
	require.Equal(t, []Fl{3, 100}, evalOne(t, fn, []Fl{0}))
}

func TestCalculatorConditionals(t *testing.T) {
	fn := calculator(t, "{ 0.5 lt { 0 } { 1 } ifelse }", 1, 1)
	require.Equal(t, []Fl{0}, evalOne(t, fn, []Fl{0.25}))
	require.Equal(t, []Fl{1}, evalOne(t, fn, []Fl{0.75}))

	fn = calculator(t, "{ dup 0.5 gt { 0.5 sub } if }", 1, 1)
	require.Equal(t, []Fl{0.25}, evalOne(t, fn, []Fl{0.25}))
	require.InDelta(t, 0.25, evalOne(t, fn, []Fl{0.75})[0], 1e-6)
}

func TestCalculatorStackOps(t *testing.T) {
	fn := calculator(t, "{ 1 2 3 pop }", 1, 2)
	require.Equal(t, []Fl{1, 2}, evalOne(t, fn, []Fl{0})[0:2])

	fn = calculator(t, "{ 1 2 exch }", 1, 2)
	require.Equal(t, []Fl{2, 1}, evalOne(t, fn, []Fl{0}))

	fn = calculator(t, "{ 1 2 3 2 copy }", 1, 5)
	require.Equal(t, []Fl{1, 2, 3, 2, 3}, evalOne(t, fn, []Fl{0}))

	fn = calculator(t, "{ 10 20 30 2 index }", 1, 4)
	require.Equal(t, []Fl{10, 20, 30, 10}, evalOne(t, fn, []Fl{0}))

	fn = calculator(t, "{ 1 2 3 3 1 roll }", 1, 3)
	require.Equal(t, []Fl{3, 1, 2}, evalOne(t, fn, []Fl{0}))

	fn = calculator(t, "{ 1 2 3 3 -1 roll }", 1, 3)
	require.Equal(t, []Fl{2, 3, 1}, evalOne(t, fn, []Fl{0}))
}

func TestCalculatorBooleans(t *testing.T) {
	fn := calculator(t, "{ true false and true true and }", 1, 2)
	require.Equal(t, []Fl{0, 1}, evalOne(t, fn, []Fl{0}))

	fn = calculator(t, "{ true not false not }", 1, 2)
	require.Equal(t, []Fl{0, 1}, evalOne(t, fn, []Fl{0}))

	fn = calculator(t, "{ 1 2 bitshift }", 1, 1)
	require.Equal(t, []Fl{4}, evalOne(t, fn, []Fl{0}))

	fn = calculator(t, "{ 12 -2 bitshift }", 1, 1)
	require.Equal(t, []Fl{3}, evalOne(t, fn, []Fl{0}))
}

func TestCalculatorTrigonometry(t *testing.T) {
	fn := calculator(t, "{ 90 sin 0 cos }", 1, 2)
	out := evalOne(t, fn, []Fl{0})
	require.InDelta(t, 1, out[0], 1e-6)
	require.InDelta(t, 1, out[1], 1e-6)

	fn = calculator(t, "{ 1 1 atan }", 1, 1)
	require.InDelta(t, 45, evalOne(t, fn, []Fl{0})[0], 1e-4)

	// the angle is 315 (not -45), clipped to the upper bound of the
	// [-100, 100] Range
	fn = calculator(t, "{ -1 1 atan }", 1, 1)
	require.InDelta(t, 100, evalOne(t, fn, []Fl{0})[0], 1e-4)
}

func TestCalculatorErrors(t *testing.T) {
	// unbalanced procedure
	if _, err := parseCalculator([]byte("{ 1 2 add")); err == nil {
		t.Fatal("expected error for unbalanced procedure")
	}
	// unknown operator
	if _, err := parseCalculator([]byte("{ frobnicate }")); err == nil {
		t.Fatal("expected error for unknown operator")
	}
	// if without procedure
	if _, err := parseCalculator([]byte("{ 1 if }")); err == nil {
		t.Fatal("expected error for if without procedure")
	}
	// dangling procedure
	if _, err := parseCalculator([]byte("{ { 1 } }")); err == nil {
		t.Fatal("expected error for dangling procedure")
	}

	// stack underflow at evaluation time
	fn := calculator(t, "{ pop pop pop }", 1, 1)
	out := make([]Fl, 1)
	if err := fn.Evaluate([]Fl{0}, out); err == nil {
		t.Fatal("expected stack underflow")
	}
}

func TestCalculatorRangeClip(t *testing.T) {
	fn := calculator(t, "{ 1000 mul }", 1, 1)
	require.Equal(t, []Fl{100}, evalOne(t, fn, []Fl{1}))
	fn = calculator(t, "{ -1000 add }", 1, 1)
	require.Equal(t, []Fl{-100}, evalOne(t, fn, []Fl{0.5}))
}
