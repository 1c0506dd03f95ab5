package text

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"math"
	"os"

	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/golang/freetype/raster"
	"golang.org/x/image/math/fixed"
)

// GoTextEngine is the default outline Engine. Face parsing, character
// mapping, and outline extraction come from go-text/typesetting;
// scan conversion and border stroking come from freetype/raster.
type GoTextEngine struct{}

// NewGoTextEngine creates the default engine.
func NewGoTextEngine() *GoTextEngine {
	return &GoTextEngine{}
}

// OpenFace implements Engine.
func (e *GoTextEngine) OpenFace(path string, faceIndex int) (Face, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- font path comes from the font provider
	if err != nil {
		return nil, fmt.Errorf("text: reading font file: %w", err)
	}
	return e.OpenFaceFromMemory(data, faceIndex)
}

// OpenFaceFromMemory implements Engine.
func (e *GoTextEngine) OpenFaceFromMemory(data []byte, faceIndex int) (Face, error) {
	loaders, err := ot.NewLoaders(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("text: parsing font: %w", err)
	}
	index := faceIndex
	if index < 0 {
		index = 0
	}
	if index >= len(loaders) {
		return nil, fmt.Errorf("text: face index %d out of range, file has %d faces", faceIndex, len(loaders))
	}
	ld := loaders[index]
	fnt, err := font.NewFont(ld)
	if err != nil {
		return nil, fmt.Errorf("text: parsing face %d: %w", index, err)
	}

	f := &gotextFace{
		ld:       ld,
		face:     font.NewFace(fnt),
		numFaces: len(loaders),
		upem:     int(fnt.Upem()),
	}
	if f.upem <= 0 {
		f.upem = 1000
	}
	f.parseNames()
	f.parsePost()
	return f, nil
}

// Close implements Engine. The engine holds no global state.
func (e *GoTextEngine) Close() error {
	return nil
}

// gotextFace implements Face for GoTextEngine.
type gotextFace struct {
	ld       *ot.Loader
	face     *font.Face
	numFaces int
	upem     int

	names  []SfntName
	psName string

	// post table values, in font units
	underlinePosition  int16
	underlineThickness int16

	widthPx  int
	heightPx int
}

// NumFaces implements Face.
func (f *gotextFace) NumFaces() int {
	return f.numFaces
}

// PostscriptName implements Face.
func (f *gotextFace) PostscriptName() string {
	return f.psName
}

// SfntNames implements Face.
func (f *gotextFace) SfntNames() []SfntName {
	return f.names
}

// GlyphIndex implements Face.
func (f *gotextFace) GlyphIndex(codePoint rune) GlyphID {
	gid, ok := f.face.NominalGlyph(codePoint)
	if !ok || gid > 0xFFFF {
		return 0
	}
	return GlyphID(gid)
}

// SetPixelSizes implements Face.
func (f *gotextFace) SetPixelSizes(width, height int) error {
	if height <= 0 || width < 0 {
		return fmt.Errorf("text: invalid pixel sizes %dx%d", width, height)
	}
	if width == 0 {
		width = height
	}
	f.widthPx, f.heightPx = width, height
	f.face.SetPpem(uint16(width), uint16(height))
	return nil
}

// scaleX26 converts horizontal font units to 26.6 pixels at the
// current size.
func (f *gotextFace) scaleX26(v float64) int {
	return int(math.Round(v * 64 * float64(f.widthPx) / float64(f.upem)))
}

// scaleY26 converts vertical font units to 26.6 pixels.
func (f *gotextFace) scaleY26(v float64) int {
	return int(math.Round(v * 64 * float64(f.heightPx) / float64(f.upem)))
}

// ScaledMetrics implements Face.
func (f *gotextFace) ScaledMetrics() ScaledMetrics {
	asc26 := f.heightPx * 64
	desc26 := 0
	if ext, ok := f.face.FontHExtents(); ok {
		asc26 = f.scaleY26(float64(ext.Ascender))
		desc26 = f.scaleY26(float64(ext.Descender))
	}
	return ScaledMetrics{
		Ascender:           asc26 >> 6,
		Descender:          desc26 >> 6,
		UnderlinePosition:  f.scaleX26(float64(f.underlinePosition)) >> 6,
		UnderlineThickness: f.scaleX26(float64(f.underlineThickness)) >> 6,
	}
}

// LoadGlyphOutline implements Face.
func (f *gotextFace) LoadGlyphOutline(glyphID GlyphID) (Outline, error) {
	if f.widthPx == 0 || f.heightPx == 0 {
		return nil, errors.New("text: pixel sizes not set")
	}
	data := f.face.GlyphData(font.GID(glyphID))
	outline, ok := data.(font.GlyphOutline)
	if !ok {
		return nil, fmt.Errorf("text: glyph %d carries no outline", glyphID)
	}

	sx := float64(f.widthPx) / float64(f.upem)
	sy := float64(f.heightPx) / float64(f.upem)

	// Build a y-down 26.6 path. Font outlines grow upward, the
	// rasterizer's coordinate system grows downward, so y is negated.
	var b pathBuilder
	for _, seg := range outline.Segments {
		switch seg.Op {
		case ot.SegmentOpMoveTo:
			b.moveTo(pt26(seg.Args[0], sx, sy))
		case ot.SegmentOpLineTo:
			b.lineTo(pt26(seg.Args[0], sx, sy))
		case ot.SegmentOpQuadTo:
			b.quadTo(pt26(seg.Args[0], sx, sy), pt26(seg.Args[1], sx, sy))
		case ot.SegmentOpCubeTo:
			b.cubeTo(pt26(seg.Args[0], sx, sy), pt26(seg.Args[1], sx, sy), pt26(seg.Args[2], sx, sy))
		}
	}
	return b.outline(), nil
}

// RawTable implements Face.
func (f *gotextFace) RawTable(tag string) ([]byte, error) {
	if len(tag) != 4 {
		return nil, fmt.Errorf("text: invalid table tag %q", tag)
	}
	return f.ld.RawTable(ot.MustNewTag(tag))
}

// Close implements Face.
func (f *gotextFace) Close() error {
	f.ld = nil
	f.face = nil
	f.names = nil
	return nil
}

// parseNames reads the SFNT name table into f.names and extracts the
// PostScript name.
func (f *gotextFace) parseNames() {
	// name table:
	// uint16   version
	// uint16   count
	// Offset16 storageOffset
	// NameRecord records[count], 12 bytes each:
	//   platformID, encodingID, languageID, nameID, length, stringOffset
	raw, err := f.ld.RawTable(ot.MustNewTag("name"))
	if err != nil || len(raw) < 6 {
		return
	}
	count := int(binary.BigEndian.Uint16(raw[2:]))
	storageOffset := int(binary.BigEndian.Uint16(raw[4:]))

	for i := 0; i < count; i++ {
		rec := 6 + i*12
		if len(raw) < rec+12 {
			break
		}
		platformID := binary.BigEndian.Uint16(raw[rec:])
		nameID := binary.BigEndian.Uint16(raw[rec+6:])
		length := int(binary.BigEndian.Uint16(raw[rec+8:]))
		offset := int(binary.BigEndian.Uint16(raw[rec+10:]))

		start := storageOffset + offset
		end := start + length
		if start < 0 || end > len(raw) {
			continue
		}
		value := make([]byte, length)
		copy(value, raw[start:end])
		f.names = append(f.names, SfntName{PlatformID: platformID, NameID: nameID, Value: value})
	}

	for _, n := range f.names {
		if n.NameID != NameIDPostscriptName {
			continue
		}
		if s := sfntNameString(n); s != "" {
			f.psName = s
			break
		}
	}
}

// parsePost reads the underline metrics from the post table.
func (f *gotextFace) parsePost() {
	// post table: version (4), italicAngle (4),
	// underlinePosition (int16), underlineThickness (int16), ...
	raw, err := f.ld.RawTable(ot.MustNewTag("post"))
	if err != nil || len(raw) < 12 {
		return
	}
	f.underlinePosition = int16(binary.BigEndian.Uint16(raw[8:]))
	f.underlineThickness = int16(binary.BigEndian.Uint16(raw[10:]))
}

// pt26 scales a font-unit segment point to y-down 26.6 pixels.
func pt26(p ot.SegmentPoint, sx, sy float64) fixed.Point26_6 {
	return fixed.Point26_6{
		X: fixed.Int26_6(math.Round(float64(p.X) * sx * 64)),
		Y: fixed.Int26_6(math.Round(float64(p.Y) * sy * -64)),
	}
}

// pathBuilder accumulates a raster.Path and its control-point bounds.
// Contours are closed explicitly: the rasterizer does not connect the
// last point back to the contour start on its own.
type pathBuilder struct {
	path    raster.Path
	started bool
	start   fixed.Point26_6
	cur     fixed.Point26_6
	hasPt   bool
	minX    fixed.Int26_6
	minY    fixed.Int26_6
	maxX    fixed.Int26_6
	maxY    fixed.Int26_6
}

func (b *pathBuilder) grow(pts ...fixed.Point26_6) {
	for _, p := range pts {
		if !b.hasPt {
			b.minX, b.maxX = p.X, p.X
			b.minY, b.maxY = p.Y, p.Y
			b.hasPt = true
			continue
		}
		if p.X < b.minX {
			b.minX = p.X
		}
		if p.X > b.maxX {
			b.maxX = p.X
		}
		if p.Y < b.minY {
			b.minY = p.Y
		}
		if p.Y > b.maxY {
			b.maxY = p.Y
		}
	}
}

func (b *pathBuilder) closeContour() {
	if b.started && b.cur != b.start {
		b.path.Add1(b.start)
		b.cur = b.start
	}
}

func (b *pathBuilder) moveTo(p fixed.Point26_6) {
	b.closeContour()
	b.path.Start(p)
	b.started = true
	b.start = p
	b.cur = p
	b.grow(p)
}

func (b *pathBuilder) lineTo(p fixed.Point26_6) {
	if !b.started {
		b.moveTo(p)
		return
	}
	b.path.Add1(p)
	b.cur = p
	b.grow(p)
}

func (b *pathBuilder) quadTo(ctrl, p fixed.Point26_6) {
	if !b.started {
		b.moveTo(p)
		return
	}
	b.path.Add2(ctrl, p)
	b.cur = p
	b.grow(ctrl, p)
}

func (b *pathBuilder) cubeTo(ctrl1, ctrl2, p fixed.Point26_6) {
	if !b.started {
		b.moveTo(p)
		return
	}
	b.path.Add3(ctrl1, ctrl2, p)
	b.cur = p
	b.grow(ctrl1, ctrl2, p)
}

func (b *pathBuilder) outline() *gotextOutline {
	b.closeContour()
	return &gotextOutline{
		path: b.path,
		minX: b.minX,
		minY: b.minY,
		maxX: b.maxX,
		maxY: b.maxY,
	}
}

// gotextOutline implements Outline over a y-down 26.6 raster.Path.
type gotextOutline struct {
	path                   raster.Path
	minX, minY, maxX, maxY fixed.Int26_6
}

// StrokeBorder implements Outline. The stroked band (width 2*radius,
// centered on the contour) is unioned with the original fill so the
// result covers the glyph dilated by the border radius, matching what
// a caption border draws beneath the fill.
func (o *gotextOutline) StrokeBorder(radius fixed.Int26_6) (Outline, error) {
	if radius <= 0 || len(o.path) == 0 {
		return o, nil
	}
	var band raster.Path
	raster.Stroke(&band, o.path, radius*2, raster.RoundCapper, raster.RoundJoiner)

	combined := make(raster.Path, 0, len(band)+len(o.path))
	combined = append(combined, band...)
	combined = append(combined, o.path...)

	out := &gotextOutline{path: combined}
	out.minX, out.minY, out.maxX, out.maxY = pathBounds(combined)
	return out, nil
}

// Rasterize implements Outline.
func (o *gotextOutline) Rasterize() (*AlphaBitmap, error) {
	if len(o.path) == 0 {
		return &AlphaBitmap{}, nil
	}
	minXI := int(o.minX) >> 6
	minYI := int(o.minY) >> 6
	maxXI := int(o.maxX+63) >> 6
	maxYI := int(o.maxY+63) >> 6
	w := maxXI - minXI
	h := maxYI - minYI
	if w <= 0 || h <= 0 {
		return &AlphaBitmap{}, nil
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r := raster.NewRasterizer(w, h)
	r.UseNonZeroWinding = true
	r.AddPath(translatePath(o.path, -fixed.Int26_6(minXI)<<6, -fixed.Int26_6(minYI)<<6))
	r.Rasterize(raster.NewAlphaSrcPainter(mask))

	return &AlphaBitmap{
		Buffer: mask.Pix,
		Width:  w,
		Rows:   h,
		Pitch:  mask.Stride,
		Left:   minXI,
		// The path is y-down, so the top bearing is the negated
		// integer top row.
		Top: -minYI,
	}, nil
}

// pathPointCount returns the number of points of a path element with
// the given op code.
func pathPointCount(op fixed.Int26_6) int {
	switch op {
	case 0, 1:
		return 1
	case 2:
		return 2
	case 3:
		return 3
	}
	return 0
}

// pathBounds walks an encoded raster.Path and returns the bounding
// box of all on-curve and control points.
func pathBounds(p raster.Path) (minX, minY, maxX, maxY fixed.Int26_6) {
	first := true
	for i := 0; i < len(p); {
		n := pathPointCount(p[i])
		if n == 0 {
			break
		}
		for k := 0; k < n; k++ {
			x := p[i+1+2*k]
			y := p[i+2+2*k]
			if first {
				minX, maxX, minY, maxY = x, x, y, y
				first = false
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
		i += 2 + 2*n
	}
	return minX, minY, maxX, maxY
}

// translatePath returns a copy of p offset by (dx, dy).
func translatePath(p raster.Path, dx, dy fixed.Int26_6) raster.Path {
	out := make(raster.Path, len(p))
	copy(out, p)
	for i := 0; i < len(out); {
		n := pathPointCount(out[i])
		if n == 0 {
			break
		}
		for k := 0; k < n; k++ {
			out[i+1+2*k] += dx
			out[i+2+2*k] += dy
		}
		i += 2 + 2*n
	}
	return out
}
