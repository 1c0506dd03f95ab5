package aribcaption

import "image/color"

// ColorRGBA represents a color with 8-bit red, green, blue, and alpha
// components. Alpha is not premultiplied.
type ColorRGBA struct {
	R, G, B, A uint8
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b uint8) ColorRGBA {
	return ColorRGBA{R: r, G: g, B: b, A: 255}
}

// RGBA creates a color from RGBA components.
func RGBA(r, g, b, a uint8) ColorRGBA {
	return ColorRGBA{R: r, G: g, B: b, A: a}
}

// Color converts ColorRGBA to the standard color.Color interface.
func (c ColorRGBA) Color() color.Color {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// FromColor converts a standard color.Color to ColorRGBA.
func FromColor(c color.Color) ColorRGBA {
	nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
	return ColorRGBA{R: nrgba.R, G: nrgba.G, B: nrgba.B, A: nrgba.A}
}

// WithAlpha returns a copy of the color with the given alpha.
func (c ColorRGBA) WithAlpha(a uint8) ColorRGBA {
	c.A = a
	return c
}
