package fontprovider

import (
	"path/filepath"
	"strings"

	"github.com/flopp/go-findfont"
)

// System is a Provider that searches the operating system's font
// directories by family name, using the go-findfont search paths
// (fontconfig directories on Linux, the standard font folders on
// Windows and macOS).
//
// Matching is name-based: the family name is normalized and compared
// against font file names. Collection indices are unknown at this
// level, so for collection files (.ttc, .otc) System reports FaceIndex
// -1 together with the family name and lets the renderer identify the
// exact face by its SFNT names; other files report FaceIndex 0.
//
// The code-point hint is ignored; System cannot inspect character
// coverage without opening the file.
type System struct{}

// NewSystem creates a system font provider.
func NewSystem() *System {
	return &System{}
}

// GetFontFace implements Provider.
func (s *System) GetFontFace(familyName string, codePoint rune) (FontfaceInfo, error) {
	if familyName == "" {
		return FontfaceInfo{}, ErrInvalidName
	}

	path, ok := s.locate(familyName)
	if !ok {
		return FontfaceInfo{}, ErrFontNotFound
	}

	faceIndex := 0
	if isCollection(path) {
		// The face position inside a .ttc is unknown; the renderer
		// resolves it by family name.
		faceIndex = -1
	}
	return FontfaceInfo{
		Filename:   path,
		FaceIndex:  faceIndex,
		FamilyName: familyName,
	}, nil
}

// locate tries progressively looser name forms against the system
// font search paths.
func (s *System) locate(familyName string) (string, bool) {
	candidates := []string{
		familyName,
		familyName + ".ttf",
		familyName + ".otf",
		familyName + ".ttc",
		normalizeName(familyName),
	}
	for _, c := range candidates {
		if path, err := findfont.Find(c); err == nil && path != "" {
			return path, true
		}
	}

	want := normalizeName(familyName)
	for _, path := range findfont.List() {
		base := normalizeName(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		if base == want {
			return path, true
		}
	}
	return "", false
}

// normalizeName lowercases a family name and strips separators so that
// "Noto Sans CJK JP" matches "NotoSansCJKjp".
func normalizeName(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		switch r {
		case ' ', '-', '_', '.':
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// isCollection reports whether the path looks like a TrueType or
// OpenType collection file.
func isCollection(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttc", ".otc":
		return true
	}
	return false
}
