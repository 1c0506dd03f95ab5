// Package gsub extracts single-substitution mappings from a raw
// OpenType GSUB table. It exists for one purpose: resolving the
// half-width ('hwid') glyph forms that Japanese broadcast captions use
// for half-em-square characters.
//
// The parser is deliberately forgiving. Broadcast receivers meet fonts
// of wildly varying quality, so a missing table, an absent script or
// feature, and any malformed or truncated structure all yield an empty
// map, never an error. Every multi-byte read is bounds-checked against
// the table length.
package gsub

import "encoding/binary"

// Tag is an OpenType tag: four ASCII bytes packed big-endian.
type Tag uint32

// NewTag builds a tag from four bytes.
func NewTag(a, b, c, d byte) Tag {
	return Tag(a)<<24 | Tag(b)<<16 | Tag(c)<<8 | Tag(d)
}

// String returns the tag as its four ASCII characters.
func (t Tag) String() string {
	return string([]byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)})
}

// OpenType tags involved in half-width substitution.
const (
	// FeatureHalfWidth is the 'hwid' feature tag.
	FeatureHalfWidth Tag = 'h'<<24 | 'w'<<16 | 'i'<<8 | 'd'

	// ScriptKana is the 'kana' script tag (Hiragana/Katakana).
	ScriptKana Tag = 'k'<<24 | 'a'<<16 | 'n'<<8 | 'a'

	// LangSysJapanese is the 'JAN ' language-system tag.
	LangSysJapanese Tag = 'J'<<24 | 'A'<<16 | 'N'<<8 | ' '
)

// Lookup types handled by the parser.
const (
	lookupTypeSingle    = 1 // Single Substitution
	lookupTypeExtension = 7 // Extension Substitution
)

// HalfWidthMap returns the glyph substitutions of the 'hwid' feature
// for the 'kana' script under the 'JAN ' language system.
//
// gsubTable is the raw GSUB table; pass nil if the font has none.
func HalfWidthMap(gsubTable []byte) map[uint16]uint16 {
	return SingleSubstitutions(gsubTable, FeatureHalfWidth, ScriptKana, LangSysJapanese)
}

// SingleSubstitutions walks the GSUB table and accumulates the
// glyph-to-glyph mapping of every single-substitution lookup reachable
// from the first feature record matching the feature tag under the
// given script and language system. Extension lookups (type 7) are
// followed one level; all other lookup types are ignored.
//
// The result is empty whenever the table, script, language system, or
// feature is absent, and whenever any structure is malformed.
func SingleSubstitutions(gsubTable []byte, feature, script, langSys Tag) map[uint16]uint16 {
	m := map[uint16]uint16{}

	// GSUB Header:
	// uint16       majorVersion
	// uint16       minorVersion
	// Offset16     scriptListOffset
	// Offset16     featureListOffset
	// Offset16     lookupListOffset
	if len(gsubTable) < 10 {
		return m
	}
	scriptListOffset := offset16(gsubTable, 4)
	featureListOffset := offset16(gsubTable, 6)
	lookupListOffset := offset16(gsubTable, 8)

	featureIndices := readScriptFeatureIndices(gsubTable, scriptListOffset, script, langSys)
	if len(featureIndices) == 0 {
		return m
	}

	// FeatureList table:
	// uint16           featureCount
	// FeatureRecord    featureRecords[featureCount]
	//
	// LookupList table:
	// uint16           lookupCount
	// Offset16         lookupOffsets[lookupCount]
	featureCount, ok := readU16(gsubTable, featureListOffset)
	if !ok {
		return m
	}
	lookupCount, ok := readU16(gsubTable, lookupListOffset)
	if !ok {
		return m
	}
	featureRecordsOffset := featureListOffset + 2
	lookupOffsetsOffset := lookupListOffset + 2

	for _, featureIndex := range featureIndices {
		// FeatureRecord:
		// Tag          featureTag
		// Offset16     featureOffset
		const featureRecordSize = 6
		if featureIndex >= featureCount {
			return emptyMap()
		}
		featureRecordOffset := featureRecordsOffset + int(featureIndex)*featureRecordSize
		if len(gsubTable) < featureRecordOffset+featureRecordSize {
			return emptyMap()
		}
		featureTag := Tag(binary.BigEndian.Uint32(gsubTable[featureRecordOffset:]))
		if featureTag != feature {
			continue
		}
		featureOffset := featureListOffset + offset16(gsubTable, featureRecordOffset+4)

		// Feature table:
		// Offset16     featureParamsOffset
		// uint16       lookupIndexCount
		// uint16       lookupListIndices[lookupIndexCount]
		if len(gsubTable) < featureOffset+4 {
			return emptyMap()
		}
		// FeatureParams tables exist only for 'cv01'-'cv99', 'size',
		// and 'ss01'-'ss20'; one here means the table is not what we
		// expect, so give up on all of it.
		if offset16(gsubTable, featureOffset) != 0 {
			return emptyMap()
		}
		lookupIndexCount := int(binary.BigEndian.Uint16(gsubTable[featureOffset+2:]))
		lookupListIndices := featureOffset + 4

		for i := 0; i < lookupIndexCount; i++ {
			lookupListIndex, ok := readU16(gsubTable, lookupListIndices+i*2)
			if !ok || lookupListIndex >= lookupCount {
				return emptyMap()
			}
			lookupOffsetOffset := lookupOffsetsOffset + int(lookupListIndex)*2
			if len(gsubTable) < lookupOffsetOffset+2 {
				return emptyMap()
			}
			lookupOffset := lookupListOffset + offset16(gsubTable, lookupOffsetOffset)
			if !parseLookup(gsubTable, lookupOffset, m) {
				return emptyMap()
			}
		}

		// Only the first record carrying the feature tag is honored.
		break
	}
	return m
}

// parseLookup walks one Lookup table, accumulating substitutions into
// m. It reports false when the table is malformed (the caller then
// discards everything).
func parseLookup(gsubTable []byte, lookupOffset int, m map[uint16]uint16) bool {
	// Lookup table:
	// uint16       lookupType
	// uint16       lookupFlag
	// uint16       subTableCount
	// Offset16     subtableOffsets[subTableCount]
	if len(gsubTable) < lookupOffset+6 {
		return false
	}
	lookupType := binary.BigEndian.Uint16(gsubTable[lookupOffset:])
	subTableCount := int(binary.BigEndian.Uint16(gsubTable[lookupOffset+4:]))
	isExtension := lookupType == lookupTypeExtension
	subtableOffsets := lookupOffset + 6

	for i := 0; i < subTableCount; i++ {
		off, ok := readU16(gsubTable, subtableOffsets+i*2)
		if !ok {
			return false
		}
		subtableOffset := lookupOffset + int(off)
		substFormat, ok := readU16(gsubTable, subtableOffset)
		if !ok {
			return false
		}

		effectiveType := lookupType
		if isExtension {
			// Extension Substitution Subtable Format 1:
			// uint16       substFormat
			// uint16       extensionLookupType
			// Offset32     extensionOffset
			if substFormat != 1 {
				continue
			}
			if len(gsubTable) < subtableOffset+8 {
				return false
			}
			effectiveType = binary.BigEndian.Uint16(gsubTable[subtableOffset+2:])
			subtableOffset += int(binary.BigEndian.Uint32(gsubTable[subtableOffset+4:]))
			substFormat, ok = readU16(gsubTable, subtableOffset)
			if !ok {
				return false
			}
			// A redirect to another extension lookup is not permitted
			// and fails closed via the type check below.
		}

		if effectiveType != lookupTypeSingle {
			continue
		}
		if !parseSingleSubst(gsubTable, subtableOffset, substFormat, m) {
			return false
		}
	}
	return true
}

// parseSingleSubst handles a LookupType 1 (Single Substitution)
// subtable of either format.
func parseSingleSubst(gsubTable []byte, subtableOffset int, substFormat uint16, m map[uint16]uint16) bool {
	if len(gsubTable) < subtableOffset+4 {
		return false
	}
	coverageOffset := subtableOffset + offset16(gsubTable, subtableOffset+2)
	coverage, ok := readCoverage(gsubTable, coverageOffset)
	if !ok {
		return false
	}

	switch substFormat {
	case 1:
		// Single Substitution Format 1:
		// uint16   substFormat
		// Offset16 coverageOffset
		// int16    deltaGlyphID
		if len(gsubTable) < subtableOffset+6 {
			return false
		}
		delta := int16(binary.BigEndian.Uint16(gsubTable[subtableOffset+4:]))
		for _, glyphID := range coverage {
			m[glyphID] = glyphID + uint16(delta)
		}
	case 2:
		// Single Substitution Format 2:
		// uint16   substFormat
		// Offset16 coverageOffset
		// uint16   glyphCount
		// uint16   substituteGlyphIDs[glyphCount]
		if len(gsubTable) < subtableOffset+6 {
			return false
		}
		glyphCount := int(binary.BigEndian.Uint16(gsubTable[subtableOffset+4:]))
		substituteGlyphIDs := subtableOffset + 6
		for coverageIndex := 0; coverageIndex < glyphCount; coverageIndex++ {
			substituteGlyphID, ok := readU16(gsubTable, substituteGlyphIDs+coverageIndex*2)
			if !ok {
				return false
			}
			if coverageIndex >= len(coverage) {
				return false
			}
			m[coverage[coverageIndex]] = substituteGlyphID
		}
	}
	return true
}

// readScriptFeatureIndices selects the LangSys table for the script
// and language-system tags and returns its feature indices, including
// the required feature when present. A missing script, a script with
// neither a default LangSys nor a matching record, or any malformed
// structure yields nil.
func readScriptFeatureIndices(gsubTable []byte, scriptListOffset int, script, langSys Tag) []uint16 {
	// ScriptList table:
	// uint16           scriptCount
	// ScriptRecord     scriptRecords[scriptCount]
	//
	// ScriptRecord:
	// Tag              scriptTag
	// Offset16         scriptOffset
	//
	// Script table:
	// Offset16         defaultLangSysOffset
	// uint16           langSysCount
	// LangSysRecord    langSysRecords[langSysCount]
	//
	// LangSysRecord:
	// Tag              langSysTag
	// Offset16         langSysOffset
	//
	// LangSys table:
	// Offset16         lookupOrderOffset
	// uint16           requiredFeatureIndex
	// uint16           featureIndexCount
	// uint16           featureIndices[featureIndexCount]
	scriptCount, ok := readU16(gsubTable, scriptListOffset)
	if !ok {
		return nil
	}
	scriptRecordsOffset := scriptListOffset + 2

	for scriptIndex := 0; scriptIndex < int(scriptCount); scriptIndex++ {
		const scriptRecordSize = 6
		scriptRecordOffset := scriptRecordsOffset + scriptIndex*scriptRecordSize
		if len(gsubTable) < scriptRecordOffset+scriptRecordSize {
			return nil
		}
		scriptTag := Tag(binary.BigEndian.Uint32(gsubTable[scriptRecordOffset:]))
		if scriptTag != script {
			continue
		}
		scriptOffset := scriptListOffset + offset16(gsubTable, scriptRecordOffset+4)
		if len(gsubTable) < scriptOffset+4 {
			return nil
		}
		langSysOffset := scriptOffset + offset16(gsubTable, scriptOffset)
		langSysCount := int(binary.BigEndian.Uint16(gsubTable[scriptOffset+2:]))
		langSysRecordsOffset := scriptOffset + 4

		for langSysIndex := 0; langSysIndex < langSysCount; langSysIndex++ {
			const langSysRecordSize = 6
			langSysRecordOffset := langSysRecordsOffset + langSysIndex*langSysRecordSize
			if len(gsubTable) < langSysRecordOffset+langSysRecordSize {
				return nil
			}
			langSysTag := Tag(binary.BigEndian.Uint32(gsubTable[langSysRecordOffset:]))
			if langSysTag == langSys {
				langSysOffset = scriptOffset + offset16(gsubTable, langSysRecordOffset+4)
				break
			}
		}

		// defaultLangSysOffset was zero and no record matched.
		if langSysOffset == scriptOffset {
			continue
		}
		if len(gsubTable) < langSysOffset+6 {
			return nil
		}

		var featureIndices []uint16
		requiredFeatureIndex := binary.BigEndian.Uint16(gsubTable[langSysOffset+2:])
		if requiredFeatureIndex != 0xFFFF {
			featureIndices = append(featureIndices, requiredFeatureIndex)
		}
		featureIndexCount := int(binary.BigEndian.Uint16(gsubTable[langSysOffset+4:]))
		featureIndicesOffset := langSysOffset + 6
		for i := 0; i < featureIndexCount; i++ {
			featureIndex, ok := readU16(gsubTable, featureIndicesOffset+i*2)
			if !ok {
				return nil
			}
			featureIndices = append(featureIndices, featureIndex)
		}
		return featureIndices
	}
	return nil
}

// readCoverage expands a Coverage table into the ordered list of
// covered glyph IDs. ok is false for unknown formats, non-monotonic
// range records, and out-of-bounds reads.
func readCoverage(gsubTable []byte, offset int) (coverage []uint16, ok bool) {
	coverageFormat, ok := readU16(gsubTable, offset)
	if !ok {
		return nil, false
	}
	switch coverageFormat {
	case 1:
		// Coverage Format 1:
		// uint16       coverageFormat
		// uint16       glyphCount
		// uint16       glyphArray[glyphCount]
		glyphCount, ok := readU16(gsubTable, offset+2)
		if !ok {
			return nil, false
		}
		glyphArrayOffset := offset + 4
		coverage = make([]uint16, 0, glyphCount)
		for i := 0; i < int(glyphCount); i++ {
			glyphID, ok := readU16(gsubTable, glyphArrayOffset+i*2)
			if !ok {
				return nil, false
			}
			coverage = append(coverage, glyphID)
		}
		return coverage, true
	case 2:
		// Coverage Format 2:
		// uint16       coverageFormat
		// uint16       rangeCount
		// RangeRecord  rangeRecords[rangeCount]
		//
		// RangeRecord:
		// uint16       startGlyphID
		// uint16       endGlyphID
		// uint16       startCoverageIndex
		rangeCount, ok := readU16(gsubTable, offset+2)
		if !ok {
			return nil, false
		}
		rangeRecordsOffset := offset + 4
		coverageIndex := uint32(0)
		for i := 0; i < int(rangeCount); i++ {
			const rangeRecordSize = 6
			recordOffset := rangeRecordsOffset + i*rangeRecordSize
			if len(gsubTable) < recordOffset+rangeRecordSize {
				return nil, false
			}
			startGlyphID := binary.BigEndian.Uint16(gsubTable[recordOffset:])
			endGlyphID := binary.BigEndian.Uint16(gsubTable[recordOffset+2:])
			startCoverageIndex := binary.BigEndian.Uint16(gsubTable[recordOffset+4:])
			if startGlyphID > endGlyphID || uint32(startCoverageIndex) != coverageIndex {
				return nil, false
			}
			coverageIndex += uint32(endGlyphID-startGlyphID) + 1
			for glyphID := uint32(startGlyphID); glyphID <= uint32(endGlyphID); glyphID++ {
				coverage = append(coverage, uint16(glyphID))
			}
		}
		return coverage, true
	}
	return nil, false
}

// readU16 reads a big-endian uint16, reporting false when the read
// would pass the end of the table.
func readU16(b []byte, offset int) (uint16, bool) {
	if offset < 0 || len(b) < offset+2 {
		return 0, false
	}
	return binary.BigEndian.Uint16(b[offset:]), true
}

// offset16 reads an unchecked Offset16. Callers use it only after a
// covering bounds check.
func offset16(b []byte, offset int) int {
	return int(binary.BigEndian.Uint16(b[offset:]))
}

func emptyMap() map[uint16]uint16 {
	return map[uint16]uint16{}
}
