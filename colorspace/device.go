package colorspace

// ------------------------ DeviceGray ------------------------

type deviceGray struct{}

func (deviceGray) isColorSpace()            {}
func (deviceGray) Name() Name               { return NameDeviceGray }
func (deviceGray) NComps() int              { return 1 }
func (deviceGray) IsPassthrough(int) bool   { return false }
func (deviceGray) UsesZeroToOneRange() bool { return true }

func (deviceGray) RGBItem(src []Fl, srcOff int, dest []uint8, destOff int) {
	c := clampByte(src[srcOff] * 255)
	dest[destOff] = c
	dest[destOff+1] = c
	dest[destOff+2] = c
}

func (deviceGray) RGBBuffer(src []uint16, srcOff, count int, dest []uint8, destOff, bits, alpha01 int) {
	scale := 255 / Fl((int(1)<<bits)-1)
	j, q := srcOff, destOff
	for i := 0; i < count; i++ {
		c := uint8(scale * Fl(src[j]))
		j++
		dest[q] = c
		dest[q+1] = c
		dest[q+2] = c
		q += 3 + alpha01
	}
}

func (deviceGray) OutputLength(inputLength, alpha01 int) int {
	return inputLength * (3 + alpha01)
}

func (deviceGray) IsDefaultDecode(decode []Fl, _ int) bool {
	return IsDefaultDecode(decode, 1)
}

// ------------------------ DeviceRGB ------------------------

type deviceRGB struct{}

func (deviceRGB) isColorSpace()            {}
func (deviceRGB) Name() Name               { return NameDeviceRGB }
func (deviceRGB) NComps() int              { return 3 }
func (deviceRGB) IsPassthrough(bits int) bool {
	return bits == 8
}
func (deviceRGB) UsesZeroToOneRange() bool { return true }

func (deviceRGB) RGBItem(src []Fl, srcOff int, dest []uint8, destOff int) {
	dest[destOff] = clampByte(src[srcOff] * 255)
	dest[destOff+1] = clampByte(src[srcOff+1] * 255)
	dest[destOff+2] = clampByte(src[srcOff+2] * 255)
}

func (deviceRGB) RGBBuffer(src []uint16, srcOff, count int, dest []uint8, destOff, bits, alpha01 int) {
	if bits == 8 && alpha01 == 0 {
		for i, n := 0, count*3; i < n; i++ {
			dest[destOff+i] = uint8(src[srcOff+i])
		}
		return
	}
	scale := 255 / Fl((int(1)<<bits)-1)
	j, q := srcOff, destOff
	for i := 0; i < count; i++ {
		dest[q] = uint8(scale * Fl(src[j]))
		dest[q+1] = uint8(scale * Fl(src[j+1]))
		dest[q+2] = uint8(scale * Fl(src[j+2]))
		j += 3
		q += 3 + alpha01
	}
}

func (deviceRGB) OutputLength(inputLength, alpha01 int) int {
	return inputLength * (3 + alpha01) / 3
}

func (deviceRGB) IsDefaultDecode(decode []Fl, _ int) bool {
	return IsDefaultDecode(decode, 3)
}

// ------------------------ DeviceCMYK ------------------------

type deviceCMYK struct{}

func (deviceCMYK) isColorSpace()            {}
func (deviceCMYK) Name() Name               { return NameDeviceCMYK }
func (deviceCMYK) NComps() int              { return 4 }
func (deviceCMYK) IsPassthrough(int) bool   { return false }
func (deviceCMYK) UsesZeroToOneRange() bool { return true }

// cmykToRGB evaluates a polynomial fit of the SWOP CMYK to sRGB
// reference table. The coefficients must not be altered.
func cmykToRGB(c, m, y, k Fl, dest []uint8, destOff int) {
	r := 255 +
		c*(-4.387332384609988*c+54.48615194189176*m+18.82290502165302*y+
			212.25662451639585*k-285.2331026137004) +
		m*(1.7149763477362134*m-5.6096736904047315*y-17.873870861415444*k-
			5.497006427196366) +
		y*(-2.5217340131683033*y-21.248923337353073*k+17.5119270841813) +
		k*(-21.86122147463605*k-189.48180835922747)
	g := 255 +
		c*(8.841041422036149*c+60.118027045597366*m+6.871425592049007*y+
			31.159100130055922*k-79.2970844816548) +
		m*(-15.310361306967817*m+17.575251261109482*y+131.35250912493976*k-
			190.9453302588951) +
		y*(4.444339102852739*y+9.8632861493405*k-24.86741582555878) +
		k*(-20.737325471181034*k-187.80453709719578)
	b := 255 +
		c*(0.8842522430003296*c+8.078677503112928*m+30.89978309703729*y-
			0.23883238689178934*k-14.183576799673286) +
		m*(10.49593273432072*m+63.02378494754052*y+50.606957656360734*k-
			112.23884253719248) +
		y*(0.03296041114873217*y+115.60384449646641*k-193.58209356861505) +
		k*(-22.33816807309886*k-180.12613974708367)
	dest[destOff] = clampByte(r)
	dest[destOff+1] = clampByte(g)
	dest[destOff+2] = clampByte(b)
}

func (deviceCMYK) RGBItem(src []Fl, srcOff int, dest []uint8, destOff int) {
	cmykToRGB(src[srcOff], src[srcOff+1], src[srcOff+2], src[srcOff+3], dest, destOff)
}

func (deviceCMYK) RGBBuffer(src []uint16, srcOff, count int, dest []uint8, destOff, bits, alpha01 int) {
	scale := 1 / Fl((int(1)<<bits)-1)
	for i := 0; i < count; i++ {
		cmykToRGB(scale*Fl(src[srcOff]), scale*Fl(src[srcOff+1]),
			scale*Fl(src[srcOff+2]), scale*Fl(src[srcOff+3]), dest, destOff)
		srcOff += 4
		destOff += 3 + alpha01
	}
}

func (deviceCMYK) OutputLength(inputLength, alpha01 int) int {
	return inputLength * (3 + alpha01) / 4
}

func (deviceCMYK) IsDefaultDecode(decode []Fl, _ int) bool {
	return IsDefaultDecode(decode, 4)
}
