package aribcaption

import "image"

// Bitmap represents a rectangular RGBA8888 pixel buffer.
// Alpha is not premultiplied.
type Bitmap struct {
	width  int
	height int
	pix    []uint8 // RGBA format, 4 bytes per pixel
}

// NewBitmap creates a new transparent bitmap with the given dimensions.
func NewBitmap(width, height int) *Bitmap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Bitmap{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*4),
	}
}

// Width returns the width of the bitmap.
func (b *Bitmap) Width() int {
	return b.width
}

// Height returns the height of the bitmap.
func (b *Bitmap) Height() int {
	return b.height
}

// Data returns the raw pixel data (RGBA format, row-major).
func (b *Bitmap) Data() []uint8 {
	return b.pix
}

// Stride returns the number of bytes per row.
func (b *Bitmap) Stride() int {
	return b.width * 4
}

// GetPixelAt returns the color of a single pixel.
// Out-of-range coordinates return a transparent color.
func (b *Bitmap) GetPixelAt(x, y int) ColorRGBA {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return ColorRGBA{}
	}
	i := (y*b.width + x) * 4
	return ColorRGBA{R: b.pix[i], G: b.pix[i+1], B: b.pix[i+2], A: b.pix[i+3]}
}

// SetPixelAt sets the color of a single pixel.
// Out-of-range coordinates are ignored.
func (b *Bitmap) SetPixelAt(x, y int, c ColorRGBA) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	i := (y*b.width + x) * 4
	b.pix[i] = c.R
	b.pix[i+1] = c.G
	b.pix[i+2] = c.B
	b.pix[i+3] = c.A
}

// Row returns the pixel data of row y, or nil if y is out of range.
func (b *Bitmap) Row(y int) []uint8 {
	if y < 0 || y >= b.height {
		return nil
	}
	return b.pix[y*b.width*4 : (y+1)*b.width*4]
}

// Clear fills the entire bitmap with a color.
func (b *Bitmap) Clear(c ColorRGBA) {
	for i := 0; i < len(b.pix); i += 4 {
		b.pix[i] = c.R
		b.pix[i+1] = c.G
		b.pix[i+2] = c.B
		b.pix[i+3] = c.A
	}
}

// Bounds returns the bitmap rectangle anchored at the origin.
func (b *Bitmap) Bounds() Rect {
	return Rect{Right: b.width, Bottom: b.height}
}

// ToImage converts the bitmap to an image.NRGBA.
func (b *Bitmap) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	copy(img.Pix, b.pix)
	return img
}
