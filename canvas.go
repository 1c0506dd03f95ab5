package aribcaption

// Canvas draws onto a Bitmap. It is a lightweight view; create one per
// drawing pass with NewCanvas.
type Canvas struct {
	bmp *Bitmap
}

// NewCanvas creates a canvas targeting the given bitmap.
func NewCanvas(bmp *Bitmap) Canvas {
	return Canvas{bmp: bmp}
}

// Bitmap returns the bitmap this canvas draws onto.
func (c Canvas) Bitmap() *Bitmap {
	return c.bmp
}

// DrawRect fills the rectangle with the color, alpha-compositing it
// over the existing pixels. The rectangle is clipped to the bitmap.
func (c Canvas) DrawRect(col ColorRGBA, r Rect) {
	r = r.Intersect(c.bmp.Bounds())
	if r.Empty() || col.A == 0 {
		return
	}
	for y := r.Top; y < r.Bottom; y++ {
		row := c.bmp.Row(y)
		for x := r.Left; x < r.Right; x++ {
			i := x * 4
			sr, sg, sb, sa := blendSrcOver(col.R, col.G, col.B, col.A, row[i], row[i+1], row[i+2], row[i+3])
			row[i], row[i+1], row[i+2], row[i+3] = sr, sg, sb, sa
		}
	}
}

// DrawBitmap composites src over the destination with its top-left
// corner at (x, y), using per-pixel source alpha. The source is
// clipped to the destination bounds.
func (c Canvas) DrawBitmap(src *Bitmap, x, y int) {
	if src == nil || src.width == 0 || src.height == 0 {
		return
	}
	dst := c.bmp
	srcLeft, srcTop := 0, 0
	if x < 0 {
		srcLeft = -x
		x = 0
	}
	if y < 0 {
		srcTop = -y
		y = 0
	}
	w := src.width - srcLeft
	h := src.height - srcTop
	if x+w > dst.width {
		w = dst.width - x
	}
	if y+h > dst.height {
		h = dst.height - y
	}
	if w <= 0 || h <= 0 {
		return
	}
	for sy := 0; sy < h; sy++ {
		srow := src.Row(srcTop + sy)
		drow := dst.Row(y + sy)
		for sx := 0; sx < w; sx++ {
			si := (srcLeft + sx) * 4
			di := (x + sx) * 4
			sa := srow[si+3]
			if sa == 0 {
				continue
			}
			r, g, b, a := blendSrcOver(srow[si], srow[si+1], srow[si+2], sa, drow[di], drow[di+1], drow[di+2], drow[di+3])
			drow[di], drow[di+1], drow[di+2], drow[di+3] = r, g, b, a
		}
	}
}

// FillLineWithAlphas expands a run of 8-bit alpha samples into RGBA
// pixels of the given color, writing width pixels into dst. Each
// sample is multiplied into the color's alpha channel.
func FillLineWithAlphas(dst []uint8, alphas []uint8, col ColorRGBA, width int) {
	for i := 0; i < width; i++ {
		a := uint32(alphas[i]) * uint32(col.A) / 255
		j := i * 4
		dst[j] = col.R
		dst[j+1] = col.G
		dst[j+2] = col.B
		dst[j+3] = uint8(a)
	}
}

// blendSrcOver applies the Porter-Duff source-over formula to a pair
// of non-premultiplied RGBA pixels.
func blendSrcOver(srcR, srcG, srcB, srcA, dstR, dstG, dstB, dstA uint8) (r, g, b, a uint8) {
	if srcA == 255 || dstA == 0 {
		return srcR, srcG, srcB, srcA
	}
	if srcA == 0 {
		return dstR, dstG, dstB, dstA
	}

	// out_a = src_a + dst_a * (1 - src_a)
	// out_c = (src_c * src_a + dst_c * dst_a * (1 - src_a)) / out_a
	sa := uint32(srcA)
	da := uint32(dstA) * (255 - sa) / 255
	oa := sa + da
	if oa == 0 {
		return 0, 0, 0, 0
	}
	r = uint8((uint32(srcR)*sa + uint32(dstR)*da) / oa)
	g = uint8((uint32(srcG)*sa + uint32(dstG)*da) / oa)
	b = uint8((uint32(srcB)*sa + uint32(dstB)*da) / oa)
	return r, g, b, uint8(oa)
}
