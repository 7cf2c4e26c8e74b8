package colorspace

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeviceGrayBuffer(t *testing.T) {
	src := []uint16{0, 127, 255}
	dest := make([]uint8, 9)
	DeviceGray.RGBBuffer(src, 0, 3, dest, 0, 8, 0)
	expected := []uint8{0, 0, 0, 127, 127, 127, 255, 255, 255}
	require.Equal(t, expected, dest)

	// with an alpha slot, marked to check it is left untouched
	dest = bytes.Repeat([]uint8{0xAA}, 12)
	DeviceGray.RGBBuffer(src, 0, 3, dest, 0, 8, 1)
	expected = []uint8{0, 0, 0, 0xAA, 127, 127, 127, 0xAA, 255, 255, 255, 0xAA}
	require.Equal(t, expected, dest)

	if L := DeviceGray.OutputLength(3, 1); L != 12 {
		t.Errorf("expected output length 12, got %d", L)
	}
}

func TestDeviceGray16Bits(t *testing.T) {
	src := []uint16{0, 0x8000, 0xFFFF}
	dest := make([]uint8, 9)
	DeviceGray.RGBBuffer(src, 0, 3, dest, 0, 16, 0)
	require.Equal(t, []uint8{0, 0, 0, 127, 127, 127, 255, 255, 255}, dest)
}

func TestDeviceRGBPassthrough(t *testing.T) {
	if !DeviceRGB.IsPassthrough(8) {
		t.Fatal("DeviceRGB at 8 bits must be passthrough")
	}
	for _, cs := range []ColorSpace{DeviceGray, DeviceCMYK} {
		for _, bits := range []int{1, 2, 4, 8, 16} {
			if cs.IsPassthrough(bits) {
				t.Errorf("%s must not be passthrough at %d bits", cs.Name(), bits)
			}
		}
	}
	for _, bits := range []int{1, 2, 4, 16} {
		if DeviceRGB.IsPassthrough(bits) {
			t.Errorf("DeviceRGB must not be passthrough at %d bits", bits)
		}
	}

	src := []uint16{10, 20, 30, 40, 50, 60}
	dest := make([]uint8, 6)
	DeviceRGB.RGBBuffer(src, 0, 2, dest, 0, 8, 0)
	require.Equal(t, []uint8{10, 20, 30, 40, 50, 60}, dest)
}

func TestDeviceRGBItem(t *testing.T) {
	dest := make([]uint8, 3)
	DeviceRGB.RGBItem([]Fl{1, 0.5, 0}, 0, dest, 0)
	require.Equal(t, []uint8{255, 128, 0}, dest)

	// out of range values are clamped
	DeviceRGB.RGBItem([]Fl{-1, 2, 0.25}, 0, dest, 0)
	require.Equal(t, []uint8{0, 255, 64}, dest)
}

func TestDeviceCMYK(t *testing.T) {
	dest := make([]uint8, 3)

	// no ink is white
	DeviceCMYK.RGBItem([]Fl{0, 0, 0, 0}, 0, dest, 0)
	require.Equal(t, []uint8{255, 255, 255}, dest)

	// full ink is nearly black: the polynomial fit bottoms out a few
	// counts above zero
	DeviceCMYK.RGBBuffer([]uint16{255, 255, 255, 255}, 0, 1, dest, 0, 8, 0)
	for i, v := range dest {
		if v > 16 {
			t.Errorf("expected near black, got component %d = %d", i, v)
		}
	}

	// pure cyan is not a primary of sRGB but stays in gamut
	DeviceCMYK.RGBItem([]Fl{1, 0, 0, 0}, 0, dest, 0)
	if !(dest[0] < 100 && dest[1] > 100 && dest[2] > 100) {
		t.Errorf("unexpected cyan conversion %v", dest)
	}

	if L := DeviceCMYK.OutputLength(8, 0); L != 6 {
		t.Errorf("expected output length 6, got %d", L)
	}
	if L := DeviceCMYK.OutputLength(8, 1); L != 8 {
		t.Errorf("expected output length 8, got %d", L)
	}
}

// the byte count written by RGBBuffer must agree with OutputLength
func TestOutputLengths(t *testing.T) {
	for _, test := range []struct {
		cs      ColorSpace
		samples int
	}{
		{DeviceGray, 7},
		{DeviceRGB, 9},
		{DeviceCMYK, 8},
	} {
		n := test.cs.NComps()
		count := test.samples / n
		src := make([]uint16, test.samples)
		for _, alpha01 := range []int{0, 1} {
			L := test.cs.OutputLength(test.samples, alpha01)
			dest := make([]uint8, L)
			// fills exactly, panics on overflow
			test.cs.RGBBuffer(src, 0, count, dest, 0, 8, alpha01)
			if expected := count * (3 + alpha01); L != expected {
				t.Errorf("%s: expected length %d, got %d", test.cs.Name(), expected, L)
			}
		}
	}
}
