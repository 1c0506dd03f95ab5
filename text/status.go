package text

import (
	"errors"

	"github.com/otya128/libaribcaption/fontprovider"
)

// Status is the result of a DrawChar call.
type Status int

const (
	// StatusOK means the character was rendered (or was whitespace,
	// which renders nothing).
	StatusOK Status = iota

	// StatusFontNotFound means no family in the list produced a
	// usable font face.
	StatusFontNotFound

	// StatusCodePointNotFound means neither the primary face nor any
	// remaining fallback family contains the code point, or the
	// fallback policy forbade searching.
	StatusCodePointNotFound

	// StatusOtherError covers outline-library failures and face
	// resolution without name hints.
	StatusOtherError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusFontNotFound:
		return "FontNotFound"
	case StatusCodePointNotFound:
		return "CodePointNotFound"
	case StatusOtherError:
		return "OtherError"
	default:
		return "Unknown"
	}
}

// CharStyle is a bitset of character decorations. Flags combine.
type CharStyle uint32

const (
	// CharStyleDefault renders the plain filled glyph.
	CharStyleDefault CharStyle = 0

	// CharStyleStroke draws a border around the glyph in the stroke
	// color before filling.
	CharStyleStroke CharStyle = 1 << 0

	// CharStyleUnderline draws an underline rectangle in the fill
	// color.
	CharStyleUnderline CharStyle = 1 << 1
)

// UnderlineInfo describes the horizontal span of an underline.
// The renderer computes the vertical position from the face metrics.
type UnderlineInfo struct {
	StartX int
	Width  int
}

// FallbackPolicy controls what DrawChar does when the primary face
// lacks the requested code point.
type FallbackPolicy int

const (
	// FallbackAuto searches the remaining families for a face that
	// contains the code point.
	FallbackAuto FallbackPolicy = iota

	// FallbackFailOnCodePointNotFound reports CodePointNotFound
	// without consulting further families.
	FallbackFailOnCodePointNotFound
)

// errMissingNameHints is returned by face resolution when the provider
// reports an unknown collection index but supplies neither a family
// name nor a PostScript name to identify the face by.
var errMissingNameHints = errors.New("text: missing family and PostScript name for unknown face index")

// providerErrorToStatus maps a font-provider (or resolution) error to
// the render status surfaced to the caller.
func providerErrorToStatus(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, fontprovider.ErrFontNotFound):
		return StatusFontNotFound
	default:
		return StatusOtherError
	}
}
