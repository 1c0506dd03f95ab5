// Package aribcaption provides the rendering surface primitives for a
// Japanese ARIB broadcast caption renderer.
//
// # Overview
//
// The root package holds the pixel-level building blocks: Bitmap (an
// RGBA8888 pixel buffer), ColorRGBA, Rect, and Canvas (rectangle fill
// and alpha-composited bitmap blits). Text rendering itself lives in
// the text subpackage, which rasterizes single caption characters into
// a Bitmap, resolving fonts across a family list with fallback and
// applying half-width glyph substitution via the OpenType GSUB table.
//
// # Quick Start
//
//	import (
//		aribcaption "github.com/otya128/libaribcaption"
//		"github.com/otya128/libaribcaption/fontprovider"
//		"github.com/otya128/libaribcaption/text"
//	)
//
//	bmp := aribcaption.NewBitmap(1920, 1080)
//	renderer := text.NewTextRenderer(fontprovider.NewSystem())
//	renderer.Initialize()
//	renderer.SetFontFamily([]string{"Hiragino Sans", "sans-serif"})
//
//	ctx := renderer.BeginDraw(bmp)
//	renderer.DrawChar(&ctx, 100, 100, 'ア', text.CharStyleDefault,
//		aribcaption.RGB(255, 255, 255), aribcaption.RGB(0, 0, 0),
//		1.5, 36, 36, nil, text.FallbackAuto)
//	renderer.EndDraw(&ctx)
//
// # Logging
//
// The library produces no log output by default. Call SetLogger to
// enable structured logging through log/slog.
package aribcaption
