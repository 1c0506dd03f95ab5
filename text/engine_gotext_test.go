package text

import (
	"testing"

	ot "github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/math/fixed"
)

func p26(x, y int) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(x << 6), Y: fixed.Int26_6(y << 6)}
}

// squareOutline builds a closed y-down square from (x0,y0) to (x1,y1).
func squareOutline(x0, y0, x1, y1 int) *gotextOutline {
	var b pathBuilder
	b.moveTo(p26(x0, y0))
	b.lineTo(p26(x1, y0))
	b.lineTo(p26(x1, y1))
	b.lineTo(p26(x0, y1))
	return b.outline()
}

func TestPathBuilderBounds(t *testing.T) {
	o := squareOutline(-2, 1, 4, 5)
	if o.minX != -2<<6 || o.maxX != 4<<6 || o.minY != 1<<6 || o.maxY != 5<<6 {
		t.Errorf("bounds = (%d,%d)-(%d,%d)", o.minX, o.minY, o.maxX, o.maxY)
	}
}

func TestPathBuilderClosesContours(t *testing.T) {
	var b pathBuilder
	b.moveTo(p26(0, 0))
	b.lineTo(p26(4, 0))
	b.lineTo(p26(4, 4))
	// Second contour forces the first to close back to its start.
	b.moveTo(p26(10, 10))
	b.lineTo(p26(12, 10))
	o := b.outline()

	minX, minY, maxX, maxY := pathBounds(o.path)
	if minX != 0 || minY != 0 || maxX != 12<<6 || maxY != 10<<6 {
		t.Errorf("bounds = (%d,%d)-(%d,%d)", minX, minY, maxX, maxY)
	}

	// Count closing line-tos: walking the path must find a point
	// equal to each contour start after its segments.
	if len(o.path) == 0 {
		t.Fatal("empty path")
	}
	var ends []fixed.Point26_6
	var last fixed.Point26_6
	for i := 0; i < len(o.path); {
		n := pathPointCount(o.path[i])
		if n == 0 {
			break
		}
		if n == 1 && o.path[i] == 0 && i > 0 {
			ends = append(ends, last)
		}
		last = fixed.Point26_6{X: o.path[i+2*n-1], Y: o.path[i+2*n]}
		i += 2 + 2*n
	}
	ends = append(ends, last)
	if len(ends) != 2 || ends[0] != p26(0, 0) || ends[1] != p26(10, 10) {
		t.Errorf("contour end points = %v, want [%v %v]", ends, p26(0, 0), p26(10, 10))
	}
}

func TestTranslatePath(t *testing.T) {
	o := squareOutline(0, 0, 4, 4)
	moved := translatePath(o.path, 2<<6, -1<<6)

	minX, minY, maxX, maxY := pathBounds(moved)
	if minX != 2<<6 || minY != -1<<6 || maxX != 6<<6 || maxY != 3<<6 {
		t.Errorf("translated bounds = (%d,%d)-(%d,%d)", minX, minY, maxX, maxY)
	}

	// The original path is untouched.
	minX, _, _, _ = pathBounds(o.path)
	if minX != 0 {
		t.Error("translatePath modified its input")
	}
}

func TestRasterizeSquare(t *testing.T) {
	o := squareOutline(0, 0, 4, 4)
	bmp, err := o.Rasterize()
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if bmp.Width != 4 || bmp.Rows != 4 {
		t.Fatalf("mask %dx%d, want 4x4", bmp.Width, bmp.Rows)
	}
	if bmp.Left != 0 || bmp.Top != 0 {
		t.Errorf("bearing (%d,%d), want (0,0)", bmp.Left, bmp.Top)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if a := bmp.Buffer[y*bmp.Pitch+x]; a != 255 {
				t.Fatalf("alpha at (%d,%d) = %d, want 255", x, y, a)
			}
		}
	}
}

func TestRasterizeBearings(t *testing.T) {
	// A square raised above the baseline: y-down coordinates are
	// negative, so Top is positive (above the origin) and Left keeps
	// the horizontal offset.
	o := squareOutline(3, -7, 6, -2)
	bmp, err := o.Rasterize()
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if bmp.Left != 3 {
		t.Errorf("Left = %d, want 3", bmp.Left)
	}
	if bmp.Top != 7 {
		t.Errorf("Top = %d, want 7", bmp.Top)
	}
	if bmp.Width != 3 || bmp.Rows != 5 {
		t.Errorf("mask %dx%d, want 3x5", bmp.Width, bmp.Rows)
	}
}

func TestRasterizeEmptyOutline(t *testing.T) {
	var b pathBuilder
	o := b.outline()
	bmp, err := o.Rasterize()
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if bmp.Width != 0 || bmp.Rows != 0 {
		t.Errorf("empty outline produced %dx%d mask", bmp.Width, bmp.Rows)
	}
}

func TestStrokeBorderExpandsBounds(t *testing.T) {
	o := squareOutline(0, 0, 8, 8)
	border, err := o.StrokeBorder(2 << 6) // 2 pixels
	if err != nil {
		t.Fatalf("StrokeBorder() error = %v", err)
	}
	bo := border.(*gotextOutline)
	if bo.minX > -2<<6 || bo.minY > -2<<6 {
		t.Errorf("border min = (%d,%d), want <= (-128,-128)", bo.minX, bo.minY)
	}
	if bo.maxX < 10<<6 || bo.maxY < 10<<6 {
		t.Errorf("border max = (%d,%d), want >= (640,640)", bo.maxX, bo.maxY)
	}

	bmp, err := border.Rasterize()
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if bmp.Width < 12 || bmp.Rows < 12 {
		t.Errorf("border mask %dx%d, want at least 12x12", bmp.Width, bmp.Rows)
	}
	// The interior stays covered: the border is the dilated glyph,
	// drawn beneath the fill.
	cx := -bmp.Left + 4
	cy := bmp.Top + 4
	if a := bmp.Buffer[cy*bmp.Pitch+cx]; a == 0 {
		t.Error("dilated border does not cover the glyph interior")
	}
}

func TestStrokeBorderZeroRadius(t *testing.T) {
	o := squareOutline(0, 0, 4, 4)
	border, err := o.StrokeBorder(0)
	if err != nil {
		t.Fatalf("StrokeBorder() error = %v", err)
	}
	if border != Outline(o) {
		t.Error("zero radius should return the outline unchanged")
	}
}

func TestPt26FlipsY(t *testing.T) {
	// A point above the baseline in font units maps to negative y in
	// raster space.
	got := pt26(ot.SegmentPoint{X: 100, Y: 50}, 0.5, 0.25)
	if got.X != fixed.Int26_6(100*0.5*64) {
		t.Errorf("X = %d", got.X)
	}
	if got.Y != fixed.Int26_6(-50*0.25*64) {
		t.Errorf("Y = %d, want negative (flipped)", got.Y)
	}
}

func TestGoTextEngineOpenFaceMissingFile(t *testing.T) {
	e := NewGoTextEngine()
	if _, err := e.OpenFace("/nonexistent/font.ttf", 0); err == nil {
		t.Error("OpenFace() on a missing file succeeded")
	}
}

func TestGoTextEngineOpenGarbage(t *testing.T) {
	e := NewGoTextEngine()
	if _, err := e.OpenFaceFromMemory([]byte("not a font at all"), 0); err == nil {
		t.Error("OpenFaceFromMemory() on garbage succeeded")
	}
}
