package text

import (
	"golang.org/x/text/encoding/unicode"

	aribcaption "github.com/otya128/libaribcaption"
	"github.com/otya128/libaribcaption/fontprovider"
)

// loadFontFace walks the family list starting at beginIndex, asks the
// font provider for each family in turn until one answers, and opens
// the face that provider answer describes; if that face cannot be
// opened, the error is returned and later families are not tried.
// codePoint < 0 means "any face of the family"; otherwise the
// provider is asked to prefer faces containing it.
//
// On success it returns the opened face, the memory buffer backing it
// (nil for file-opened faces; the caller stores it in the same slot as
// the face), and the family-list index that produced it.
func (r *TextRenderer) loadFontFace(codePoint rune, beginIndex int) (Face, []byte, int, error) {
	if beginIndex < 0 {
		beginIndex = 0
	}
	if beginIndex >= len(r.fontFamily) {
		return nil, nil, 0, fontprovider.ErrFontNotFound
	}

	fontIndex := beginIndex
	info, err := r.provider.GetFontFace(r.fontFamily[fontIndex], codePoint)
	for err != nil && fontIndex+1 < len(r.fontFamily) {
		// This family is unavailable; try the next one.
		fontIndex++
		info, err = r.provider.GetFontFace(r.fontFamily[fontIndex], codePoint)
	}
	if err != nil {
		return nil, nil, 0, err
	}

	face, err := r.openFaceFromInfo(&info)
	if err != nil {
		return nil, nil, 0, err
	}
	return face, info.FontData, fontIndex, nil
}

// openFaceFromInfo opens the face a provider described. When the
// collection index is unknown (negative), every face of the file is
// probed until one matches the provider's PostScript or family name.
func (r *TextRenderer) openFaceFromInfo(info *fontprovider.FontfaceInfo) (Face, error) {
	open := func(index int) (Face, error) {
		if len(info.FontData) > 0 {
			// Memory data is authoritative when present.
			return r.engine.OpenFaceFromMemory(info.FontData, index)
		}
		return r.engine.OpenFace(info.Filename, index)
	}

	face, err := open(info.FaceIndex)
	if err != nil {
		return nil, fontprovider.ErrFontNotFound
	}
	if info.FaceIndex >= 0 {
		return face, nil
	}

	// Unknown face index: identify the exact face by name.
	if info.FamilyName == "" && info.PostscriptName == "" {
		aribcaption.Logger().Error(
			"text: provider returned an unknown face index without name hints",
			"filename", info.Filename)
		_ = face.Close()
		return nil, errMissingNameHints
	}

	numFaces := face.NumFaces()
	_ = face.Close()
	for i := 0; i < numFaces; i++ {
		face, err = open(i)
		if err != nil {
			return nil, fontprovider.ErrFontNotFound
		}
		if info.PostscriptName != "" && info.PostscriptName == face.PostscriptName() {
			return face, nil
		}
		if info.FamilyName != "" && matchFontFamilyName(face, info.FamilyName) {
			return face, nil
		}
		_ = face.Close()
	}
	return nil, fontprovider.ErrFontNotFound
}

// matchFontFamilyName reports whether any of the face's SFNT family or
// full-name records equals familyName.
func matchFontFamilyName(face Face, familyName string) bool {
	for _, name := range face.SfntNames() {
		if name.NameID != NameIDFontFamily && name.NameID != NameIDFullName {
			continue
		}
		if sfntNameString(name) == familyName {
			return true
		}
	}
	return false
}

// sfntNameString decodes a name record: Microsoft-platform records are
// big-endian UTF-16, everything else is taken as a byte string.
func sfntNameString(name SfntName) string {
	if name.PlatformID == PlatformMicrosoft {
		return decodeUTF16BE(name.Value)
	}
	return string(name.Value)
}

// decodeUTF16BE converts big-endian UTF-16 bytes to a string, "" on
// malformed input.
func decodeUTF16BE(b []byte) string {
	decoded, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return string(decoded)
}
