package analyzer

import "strings"

const (
	attributeKeyword = "@attribute"
	dataKeyword      = "@data"
)

// Phase tells whether the header or the data section is being read
type Phase int

const (
	PhaseHeader Phase = iota
	PhaseData
)

// LineKind is the classification of a single input line
type LineKind int

const (
	KindBlank LineKind = iota
	KindAttribute
	KindDataMarker
	KindDataRow
)

func (k LineKind) String() string {
	switch k {
	case KindAttribute:
		return "attribute"
	case KindDataMarker:
		return "data-marker"
	case KindDataRow:
		return "data-row"
	default:
		return "blank"
	}
}

// Line is a classified input line
type Line struct {
	Kind LineKind
	Name string // Attribute name, KindAttribute only
	Raw  string // Trimmed row text, KindDataRow only
}

// Classify determines what a raw line means in the given phase.
//
// Keywords are matched as plain prefixes of the trimmed line, so
// "@attributeFoo" still counts as a declaration.
func Classify(line string, phase Phase) Line {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Line{Kind: KindBlank}
	}

	if phase == PhaseData {
		return Line{Kind: KindDataRow, Raw: trimmed}
	}

	if strings.HasPrefix(trimmed, attributeKeyword) {
		var name string
		if fields := strings.Fields(trimmed); len(fields) > 1 {
			name = fields[1]
		}

		return Line{Kind: KindAttribute, Name: name}
	}

	if strings.HasPrefix(trimmed, dataKeyword) {
		return Line{Kind: KindDataMarker}
	}

	return Line{Kind: KindBlank}
}

// Next returns the phase that applies to the line after l
func (l Line) Next(phase Phase) Phase {
	if l.Kind == KindDataMarker {
		return PhaseData
	}

	return phase
}
