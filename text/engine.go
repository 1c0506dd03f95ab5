package text

import "golang.org/x/image/math/fixed"

// GlyphID is a face-local glyph index. 0 is the conventional
// "missing glyph" marker.
type GlyphID uint16

// SFNT name-record identifiers used for face matching.
const (
	// PlatformMicrosoft marks name records whose payload is
	// big-endian UTF-16.
	PlatformMicrosoft = 3

	// NameIDFontFamily is the font family name record.
	NameIDFontFamily = 1

	// NameIDFullName is the full font name record.
	NameIDFullName = 4

	// NameIDPostscriptName is the PostScript name record.
	NameIDPostscriptName = 6
)

// SfntName is one record of a face's SFNT name table. Value holds the
// raw payload; records with PlatformID == PlatformMicrosoft are
// big-endian UTF-16, others are treated as byte strings.
type SfntName struct {
	PlatformID uint16
	NameID     uint16
	Value      []byte
}

// ScaledMetrics exposes face metrics at the current pixel size, in
// integer pixels (26.6 fixed-point values shifted right by 6).
// Descender and UnderlinePosition are typically negative.
type ScaledMetrics struct {
	Ascender           int
	Descender          int
	UnderlinePosition  int
	UnderlineThickness int
}

// AlphaBitmap is a rasterized glyph: an 8-bit coverage mask plus its
// placement relative to the glyph origin. Left is the horizontal
// bearing; Top is the distance from the origin up to the first row.
type AlphaBitmap struct {
	Buffer []byte
	Width  int
	Rows   int
	Pitch  int
	Left   int
	Top    int
}

// Engine abstracts the glyph-outline library. It opens faces from a
// file path or from memory; everything else happens through the
// returned Face.
//
// An Engine is acquired once at renderer initialization and released
// once at renderer close.
type Engine interface {
	// OpenFace opens one face of the font file at path. A negative
	// faceIndex opens the first face; NumFaces on the result still
	// reports the collection size.
	OpenFace(path string, faceIndex int) (Face, error)

	// OpenFaceFromMemory is OpenFace for font bytes already in
	// memory. The caller keeps data alive for the face's lifetime.
	OpenFaceFromMemory(data []byte, faceIndex int) (Face, error)

	// Close releases the engine.
	Close() error
}

// Face is one opened style of a font file or collection.
// Faces are not safe for concurrent use.
type Face interface {
	// NumFaces returns the number of faces in the containing file.
	NumFaces() int

	// PostscriptName returns the face's PostScript name, or "".
	PostscriptName() string

	// SfntNames returns the face's SFNT name records.
	SfntNames() []SfntName

	// GlyphIndex returns the glyph for a code point, 0 if missing.
	GlyphIndex(codePoint rune) GlyphID

	// SetPixelSizes sets the nominal glyph size in pixels. A width of
	// 0 means "same as height".
	SetPixelSizes(width, height int) error

	// ScaledMetrics returns metrics at the current pixel size.
	ScaledMetrics() ScaledMetrics

	// LoadGlyphOutline loads a glyph's outline scaled to the current
	// pixel size. The outline is scoped to the current draw call.
	LoadGlyphOutline(glyphID GlyphID) (Outline, error)

	// RawTable returns the raw bytes of an SFNT table ("GSUB",
	// "name", ...), or an error if the face has no such table.
	RawTable(tag string) ([]byte, error)

	// Close releases the face.
	Close() error
}

// Outline is a loaded glyph outline ready for scan conversion.
type Outline interface {
	// StrokeBorder returns a new outline covering this outline
	// dilated by the given border radius in 26.6 pixels, with round
	// caps and joins. The receiver is unchanged.
	StrokeBorder(radius fixed.Int26_6) (Outline, error)

	// Rasterize scan-converts the outline into an 8-bit alpha mask.
	Rasterize() (*AlphaBitmap, error)
}
