package colorspace

import (
	parallel "github.com/kovidgoyal/go-parallel"
)

// minParallelPixels is the pixel count above which bulk conversion
// and resizing split scanline ranges over goroutines.
const minParallelPixels = 1 << 16

// FillRGB applies the color space to a raster of unpacked component
// samples: comps holds originalWidth*originalHeight pixels of
// NComps() samples each, bpc bits deep. dest receives width x height
// pixels of 3+alpha01 bytes (the alpha byte, if any, is left
// untouched); when the output size differs from the original one the
// raster is resized with nearest neighbor sampling. actualHeight is
// the number of valid source rows, at most originalHeight.
//
// Any alpha01 value other than 1 is treated as 0.
func FillRGB(c ColorSpace, dest []uint8, originalWidth, originalHeight, width, height, actualHeight, bpc int, comps []uint16, alpha01 int) {
	if alpha01 != 1 {
		alpha01 = 0
	}
	count := originalWidth * originalHeight
	numComponentColors := 1 << bpc
	needsResizing := originalHeight != height || originalWidth != width

	var rgbBuf []uint8
	switch {
	case c.IsPassthrough(bpc):
		if !needsResizing && alpha01 == 0 {
			// the samples are the output bytes
			for i, n := 0, count*3; i < n; i++ {
				dest[i] = uint8(comps[i])
			}
			return
		}
		rgbBuf = make([]uint8, count*3)
		for i := range rgbBuf {
			rgbBuf[i] = uint8(comps[i])
		}

	case c.NComps() == 1 && count > numComponentColors &&
		c.Name() != NameDeviceGray && c.Name() != NameDeviceRGB:
		// Optimization: for one component color spaces with few
		// possible sample values, convert each value once and fill the
		// raster from the resulting color map.
		allColors := make([]uint16, numComponentColors)
		for i := range allColors {
			allColors[i] = uint16(i)
		}
		colorMap := make([]uint8, numComponentColors*3)
		c.RGBBuffer(allColors, 0, numComponentColors, colorMap, 0, bpc, 0)

		if !needsResizing {
			destPos := 0
			for i := 0; i < count; i++ {
				key := int(comps[i]) * 3
				dest[destPos] = colorMap[key]
				dest[destPos+1] = colorMap[key+1]
				dest[destPos+2] = colorMap[key+2]
				destPos += 3 + alpha01
			}
			return
		}
		rgbBuf = make([]uint8, count*3)
		pos := 0
		for i := 0; i < count; i++ {
			key := int(comps[i]) * 3
			rgbBuf[pos] = colorMap[key]
			rgbBuf[pos+1] = colorMap[key+1]
			rgbBuf[pos+2] = colorMap[key+2]
			pos += 3
		}

	case !needsResizing:
		convertScanlines(c, comps, dest, bpc, alpha01, width, actualHeight)
		return

	default:
		rgbBuf = make([]uint8, count*3)
		convertScanlines(c, comps, rgbBuf, bpc, 0, originalWidth, originalHeight)
	}

	if needsResizing {
		resizeRGBImage(rgbBuf, dest, originalWidth, originalHeight, width, height, alpha01)
	} else {
		destPos, rgbPos := 0, 0
		for i, n := 0, width*actualHeight; i < n; i++ {
			dest[destPos] = rgbBuf[rgbPos]
			dest[destPos+1] = rgbBuf[rgbPos+1]
			dest[destPos+2] = rgbBuf[rgbPos+2]
			destPos += 3 + alpha01
			rgbPos += 3
		}
	}
}

// convertScanlines converts rows*width pixels with RGBBuffer,
// splitting complete scanlines over goroutines for large rasters.
// For an Alternate space this calls the tint function concurrently,
// which TintFunction implementations must support.
func convertScanlines(c ColorSpace, comps []uint16, dest []uint8, bpc, alpha01, width, rows int) {
	count := width * rows
	if count < minParallelPixels || rows < 2 {
		c.RGBBuffer(comps, 0, count, dest, 0, bpc, alpha01)
		return
	}
	n := c.NComps()
	rowBytes := c.OutputLength(width*n, alpha01)
	_ = parallel.Run_in_parallel_over_range(0, func(start, limit int) {
		c.RGBBuffer(comps, start*width*n, (limit-start)*width, dest, start*rowBytes, bpc, alpha01)
	}, 0, rows)
}

// resizeRGBImage scales src, a packed RGB raster of w1 x h1 pixels, to
// w2 x h2 pixels in dest with nearest neighbor sampling. Each output
// pixel writes three bytes and skips alpha01 bytes; any alpha01 value
// other than 1 is treated as 0.
func resizeRGBImage(src, dest []uint8, w1, h1, w2, h2, alpha01 int) {
	if alpha01 != 1 {
		alpha01 = 0
	}
	const components = 3
	xRatio := float64(w1) / float64(w2)
	yRatio := float64(h1) / float64(h2)
	w1Scanline := w1 * components
	rowLen := w2 * (components + alpha01)

	xScaled := make([]int, w2)
	for i := range xScaled {
		xScaled[i] = int(float64(i)*xRatio) * components
	}

	process := func(start, limit int) {
		for i := start; i < limit; i++ {
			py := int(float64(i)*yRatio) * w1Scanline
			newIndex := i * rowLen
			for j := 0; j < w2; j++ {
				oldIndex := py + xScaled[j]
				dest[newIndex] = src[oldIndex]
				dest[newIndex+1] = src[oldIndex+1]
				dest[newIndex+2] = src[oldIndex+2]
				newIndex += components + alpha01
			}
		}
	}
	if w2*h2 < minParallelPixels || h2 < 2 {
		process(0, h2)
	} else {
		_ = parallel.Run_in_parallel_over_range(0, process, 0, h2)
	}
}
