package aribcaption

import (
	"image/color"
	"testing"
)

func TestColorRGBA(t *testing.T) {
	c := RGB(10, 20, 30)
	if c.A != 255 {
		t.Errorf("RGB alpha = %d, want 255", c.A)
	}
	if got := c.WithAlpha(100); got != RGBA(10, 20, 30, 100) {
		t.Errorf("WithAlpha = %v", got)
	}
}

func TestColorConversion(t *testing.T) {
	c := RGBA(1, 2, 3, 200)
	std := c.Color()
	if std != (color.NRGBA{R: 1, G: 2, B: 3, A: 200}) {
		t.Errorf("Color() = %v", std)
	}
	if got := FromColor(std); got != c {
		t.Errorf("FromColor(Color()) = %v, want %v", got, c)
	}
}
