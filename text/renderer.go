// Package text renders single caption characters into a bitmap.
//
// TextRenderer resolves fonts across an ordered family list, falling
// back to later families when the primary face lacks a code point,
// substitutes half-width glyph forms through the OpenType GSUB 'hwid'
// feature, and composites filled, stroked, and underlined glyphs onto
// an aribcaption.Bitmap.
//
// A TextRenderer carries mutable face-slot state and is not safe for
// concurrent use; callers sharing an instance across goroutines must
// serialize externally.
package text

import (
	"slices"

	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"

	aribcaption "github.com/otya128/libaribcaption"
	"github.com/otya128/libaribcaption/fontprovider"
	"github.com/otya128/libaribcaption/text/gsub"
)

// Option configures a TextRenderer.
type Option func(*TextRenderer)

// WithEngine selects the outline engine. The default is
// NewGoTextEngine().
func WithEngine(e Engine) Option {
	return func(r *TextRenderer) {
		r.engine = e
	}
}

// faceSlot holds one opened face together with the buffer backing it
// (for memory-opened faces), the family-list index that produced it,
// and the lazily computed half-width substitution map.
type faceSlot struct {
	face  Face
	data  []byte
	index int

	// halfWidthMap is three-state: not computed (halfWidthLoaded
	// false), computed empty, computed populated.
	halfWidthMap    map[uint16]uint16
	halfWidthLoaded bool
}

func (s *faceSlot) loaded() bool {
	return s.face != nil
}

func (s *faceSlot) reset() {
	if s.face != nil {
		_ = s.face.Close()
	}
	*s = faceSlot{}
}

// TextRenderer rasterizes caption characters.
type TextRenderer struct {
	provider fontprovider.Provider
	engine   Engine

	fontFamily []string
	main       faceSlot
	fallback   faceSlot
}

// RenderContext is one drawing pass over a target bitmap. Obtain one
// from BeginDraw.
type RenderContext struct {
	bitmap *aribcaption.Bitmap
}

// Bitmap returns the target bitmap of this context.
func (c *RenderContext) Bitmap() *aribcaption.Bitmap {
	return c.bitmap
}

// NewTextRenderer creates a renderer that resolves fonts through the
// given provider.
func NewTextRenderer(provider fontprovider.Provider, opts ...Option) *TextRenderer {
	r := &TextRenderer{provider: provider}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Initialize acquires the outline engine. It returns false if no
// engine could be acquired.
func (r *TextRenderer) Initialize() bool {
	if r.engine == nil {
		r.engine = NewGoTextEngine()
	}
	return r.engine != nil
}

// Close releases the face slots and the engine.
func (r *TextRenderer) Close() error {
	r.main.reset()
	r.fallback.reset()
	if r.engine != nil {
		err := r.engine.Close()
		r.engine = nil
		return err
	}
	return nil
}

// SetLanguage accepts an ISO 639-2 language code ("jpn", "por", ...).
// This renderer shapes per code point and does not vary by language;
// the code is validated and otherwise ignored, keeping the signature
// for variants with language-sensitive shaping.
func (r *TextRenderer) SetLanguage(iso6392Code string) {
	if _, err := language.ParseBase(iso6392Code); err != nil {
		aribcaption.Logger().Warn("text: ignoring unknown language code", "code", iso6392Code)
	}
}

// SetFontFamily sets the ordered font family list. Position 0 is the
// primary family, later positions are fallbacks. An empty list is
// rejected.
//
// Setting a list different from the current one drops both face slots
// and everything cached on them; setting the same list again is a
// no-op and keeps loaded faces.
func (r *TextRenderer) SetFontFamily(fontFamily []string) bool {
	if len(fontFamily) == 0 {
		return false
	}
	if len(r.fontFamily) > 0 && !slices.Equal(r.fontFamily, fontFamily) {
		r.main.reset()
		r.fallback.reset()
	}
	r.fontFamily = append([]string(nil), fontFamily...)
	return true
}

// BeginDraw starts a drawing pass onto the target bitmap.
func (r *TextRenderer) BeginDraw(target *aribcaption.Bitmap) RenderContext {
	return RenderContext{bitmap: target}
}

// EndDraw finishes a drawing pass.
func (r *TextRenderer) EndDraw(ctx *RenderContext) {
	// No-op: DrawChar composites directly into the target.
	_ = ctx
}

// DrawChar renders one code point at (targetX, targetY) in the given
// size and style. charWidth equal to half of charHeight requests the
// half-width form: if the face's GSUB table substitutes the glyph, the
// substituted glyph renders at the full em square instead.
//
// A non-OK status leaves the destination bitmap unchanged.
func (r *TextRenderer) DrawChar(ctx *RenderContext, targetX, targetY int, codePoint rune,
	style CharStyle, color, strokeColor aribcaption.ColorRGBA, strokeWidth float64,
	charWidth, charHeight int, underline *UnderlineInfo, policy FallbackPolicy) Status {

	log := aribcaption.Logger()

	if charHeight <= 0 {
		return StatusOtherError
	}
	if strokeWidth < 0 {
		strokeWidth = 0
	}

	// Space characters render nothing.
	if isWhitespace(codePoint) {
		return StatusOK
	}

	if !r.main.loaded() {
		// Load the primary face; the code point does not matter yet.
		face, data, index, err := r.loadFontFace(-1, 0)
		if err != nil {
			log.Error("text: cannot find valid font", "err", err)
			return providerErrorToStatus(err)
		}
		r.main = faceSlot{face: face, data: data, index: index}
	}

	slot := &r.main
	glyphID := slot.face.GlyphIndex(codePoint)

	if glyphID == 0 {
		log.Warn("text: main font is missing code point",
			"family", r.fontFamily[r.main.index], "codepoint", codePoint)

		if policy == FallbackFailOnCodePointNotFound {
			return StatusCodePointNotFound
		}

		switch {
		case r.fallback.loaded() && r.fallback.face.GlyphIndex(codePoint) != 0:
			slot = &r.fallback
			glyphID = slot.face.GlyphIndex(codePoint)
		case r.main.index+1 >= len(r.fontFamily):
			// No families left to try.
			return StatusCodePointNotFound
		default:
			face, data, index, err := r.loadFontFace(codePoint, r.main.index+1)
			if err != nil {
				log.Error("text: cannot find fallback font", "codepoint", codePoint, "err", err)
				return providerErrorToStatus(err)
			}
			r.fallback.reset()
			r.fallback = faceSlot{face: face, data: data, index: index}
			slot = &r.fallback
			glyphID = slot.face.GlyphIndex(codePoint)
			if glyphID == 0 {
				log.Error("text: fallback font is missing code point", "codepoint", codePoint)
				return StatusCodePointNotFound
			}
		}
	}

	// Half-width request: consult the face's GSUB 'hwid' feature.
	if charWidth == charHeight/2 {
		if !slot.halfWidthLoaded {
			table, err := slot.face.RawTable("GSUB")
			if err != nil {
				table = nil
			}
			slot.halfWidthMap = gsub.HalfWidthMap(table)
			slot.halfWidthLoaded = true
		}
		if subst, ok := slot.halfWidthMap[uint16(glyphID)]; ok {
			// The substituted glyph is drawn on the full em square.
			glyphID = GlyphID(subst)
			charWidth = charHeight
		}
	}

	face := slot.face
	if err := face.SetPixelSizes(charWidth, charHeight); err != nil {
		log.Error("text: setting pixel sizes failed", "err", err)
		return StatusOtherError
	}

	metrics := face.ScaledMetrics()
	ascender := metrics.Ascender
	descender := metrics.Descender
	baseline := ascender
	underlinePos := abs(metrics.UnderlinePosition)
	underlineThickness := metrics.UnderlineThickness

	emHeight := ascender + abs(descender)
	emAdjustY := (charHeight - emHeight) / 2

	outline, err := face.LoadGlyphOutline(glyphID)
	if err != nil {
		log.Error("text: loading glyph outline failed", "glyph", glyphID, "err", err)
		return StatusOtherError
	}

	fillBitmap, err := outline.Rasterize()
	if err != nil {
		log.Error("text: rasterizing glyph failed", "glyph", glyphID, "err", err)
		return StatusOtherError
	}

	var borderBitmap *AlphaBitmap
	if style&CharStyleStroke != 0 && strokeWidth > 0 {
		border, err := outline.StrokeBorder(fixed.Int26_6(strokeWidth * 64))
		if err != nil {
			log.Error("text: stroking glyph border failed", "glyph", glyphID, "err", err)
			return StatusOtherError
		}
		borderBitmap, err = border.Rasterize()
		if err != nil {
			log.Error("text: rasterizing glyph border failed", "glyph", glyphID, "err", err)
			return StatusOtherError
		}
	}

	canvas := aribcaption.NewCanvas(ctx.bitmap)

	// Underline, beneath both glyph layers.
	if style&CharStyleUnderline != 0 && underline != nil && underlineThickness > 0 {
		underlineY := targetY + baseline + emAdjustY + underlinePos
		rect := aribcaption.NewRect(underline.StartX, underlineY,
			underline.StartX+underline.Width, underlineY+1)

		halfThickness := underlineThickness / 2
		if underlineThickness%2 == 1 {
			rect.Top -= halfThickness
			rect.Bottom += halfThickness
		} else {
			rect.Top -= halfThickness - 1
			rect.Bottom += halfThickness
		}
		canvas.DrawRect(color, rect)
	}

	// Stroke border first, fill on top of it.
	if borderBitmap != nil {
		bmp := coloredBitmap(borderBitmap, strokeColor)
		canvas.DrawBitmap(bmp,
			targetX+borderBitmap.Left,
			targetY+baseline+emAdjustY-borderBitmap.Top)
	}

	bmp := coloredBitmap(fillBitmap, color)
	canvas.DrawBitmap(bmp,
		targetX+fillBitmap.Left,
		targetY+baseline+emAdjustY-fillBitmap.Top)

	return StatusOK
}

// coloredBitmap expands an 8-bit alpha mask into an RGBA bitmap of the
// given color.
func coloredBitmap(src *AlphaBitmap, color aribcaption.ColorRGBA) *aribcaption.Bitmap {
	bmp := aribcaption.NewBitmap(src.Width, src.Rows)
	for y := 0; y < src.Rows; y++ {
		aribcaption.FillLineWithAlphas(bmp.Row(y), src.Buffer[y*src.Pitch:], color, src.Width)
	}
	return bmp
}

// isWhitespace reports whether the code point is one of the
// non-printing space characters that render as a successful no-op.
func isWhitespace(codePoint rune) bool {
	switch codePoint {
	case 0x0009, // horizontal tab
		0x0020, // space
		0x00A0, // no-break space
		0x1680, // Ogham space mark
		0x202F, // narrow no-break space
		0x205F, // medium mathematical space
		0x3000: // ideographic space
		return true
	}
	return codePoint >= 0x2000 && codePoint <= 0x200A
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
