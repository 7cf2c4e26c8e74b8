package function

// FunctionSampled (type 0) interpolates a grid of bit-packed samples.
type FunctionSampled struct {
	Data []byte // decoded sample stream

	Size          []int   // length m
	BitsPerSample uint8   // 1, 2, 4, 8, 12, 16, 24 or 32
	Order         uint8   // 1 (linear) or 3 (cubic), optional, default to 1
	Encode        [][2]Fl // length m, optional, default to [ 0 (Size_0 - 1) 0 (Size_1 - 1) ... ]
	Decode        [][2]Fl // length n, optional, default to Range
}

func (s FunctionSampled) evaluate(f *FunctionDict, in, out []Fl) error {
	m := len(f.Domain)
	n := len(f.Range)

	// encode the inputs to grid positions
	e := make([]Fl, m)
	for i := 0; i < m; i++ {
		enc := [2]Fl{0, Fl(s.Size[i] - 1)}
		if i < len(s.Encode) {
			enc = s.Encode[i]
		}
		x := interpolate(in[i], f.Domain[i][0], f.Domain[i][1], enc[0], enc[1])
		e[i] = clip(x, 0, Fl(s.Size[i]-1))
	}

	if m == 1 {
		// linear interpolation between the two neighboring samples
		x := e[0]
		i0 := int(x)
		i1 := i0 + 1
		if i1 > s.Size[0]-1 {
			i1 = s.Size[0] - 1
		}
		frac := x - Fl(i0)
		for j := 0; j < n; j++ {
			v0 := s.sample(i0*n + j)
			v1 := s.sample(i1*n + j)
			out[j] = s.decodeSample(f, j, v0+frac*(v1-v0))
		}
		return nil
	}

	// several inputs: nearest sample, the first input varying fastest
	index, stride := 0, 1
	for i := 0; i < m; i++ {
		k := int(e[i] + 0.5)
		if k > s.Size[i]-1 {
			k = s.Size[i] - 1
		}
		index += k * stride
		stride *= s.Size[i]
	}
	for j := 0; j < n; j++ {
		out[j] = s.decodeSample(f, j, s.sample(index*n+j))
	}
	return nil
}

// sample returns the i-th raw sample, normalized to [0, 1].
func (s FunctionSampled) sample(i int) Fl {
	bps := uint(s.BitsPerSample)
	v := readBits(s.Data, uint(i)*bps, bps)
	max := (uint64(1) << bps) - 1
	return Fl(v) / Fl(max)
}

// decodeSample maps a normalized sample to the j-th output range.
func (s FunctionSampled) decodeSample(f *FunctionDict, j int, v Fl) Fl {
	d := [2]Fl(f.Range[j])
	if j < len(s.Decode) {
		d = s.Decode[j]
	}
	return d[0] + v*(d[1]-d[0])
}

// readBits extracts n bits (at most 32) at the given bit position,
// big-endian. Missing trailing bytes read as zero.
func readBits(data []byte, bitPos, n uint) uint64 {
	var v uint64
	for n > 0 {
		byteIdx := bitPos >> 3
		if byteIdx >= uint(len(data)) {
			return v << n
		}
		bitIdx := bitPos & 7
		take := 8 - bitIdx
		if take > n {
			take = n
		}
		b := data[byteIdx]
		v = v<<take | uint64(b>>(8-bitIdx-take)&(0xFF>>(8-take)))
		bitPos += take
		n -= take
	}
	return v
}
