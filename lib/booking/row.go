package booking

import (
	"regexp"
	"strings"
)

// Row is one <tr> of a rendered page. Cells are already whitespace-collapsed.
type Row struct {
	Cells []string
	// Header is true when every cell came from <th> markup.
	Header bool
	// HeaderCells is the number of <th> cells in the row.
	HeaderCells int
}

// Cell returns the i-th cell and whether it exists.
func (r Row) Cell(i int) (string, bool) {
	if i < 0 || i >= len(r.Cells) {
		return "", false
	}
	return r.Cells[i], true
}

// CellOr returns the i-th cell or "" when it is absent.
func (r Row) CellOr(i int) string {
	c, _ := r.Cell(i)
	return c
}

func (r Row) joined() string {
	return strings.ToLower(strings.Join(r.Cells, " "))
}

type RowKind int

const (
	ValueRow RowKind = iota
	HeaderRow
	InlineLabelValueRow
	SectionMarkerRow
)

func (k RowKind) String() string {
	switch k {
	case HeaderRow:
		return "header"
	case InlineLabelValueRow:
		return "inline"
	case SectionMarkerRow:
		return "marker"
	default:
		return "value"
	}
}

type Marker int

const (
	NoMarker Marker = iota
	ChargesMarker
	ReleaseMarker
)

const maxHeaderCellLength = 60

var leadingDigit = regexp.MustCompile(`^\d`)

// SectionMarker reports whether the row announces the start of the charges
// block or the start of the release information block. Header-ness of the
// row does not matter.
func SectionMarker(r Row) Marker {
	text := r.joined()
	if strings.TrimSpace(text) == "charges" {
		return ChargesMarker
	}
	if strings.Contains(text, "release information") || strings.Contains(text, "not released") {
		return ReleaseMarker
	}
	return NoMarker
}

func looksLikeLabels(cells []string) bool {
	for _, c := range cells {
		if leadingDigit.MatchString(c) || len(c) > maxHeaderCellLength {
			return false
		}
	}
	return true
}

// Classify decides how a row takes part in key/value reconstruction.
// Markup header-ness wins over text content.
func Classify(r Row) RowKind {
	if r.Header && len(r.Cells) > 0 && looksLikeLabels(r.Cells) {
		return HeaderRow
	}
	if r.HeaderCells > 0 && r.HeaderCells < len(r.Cells) && r.HeaderCells*2 == len(r.Cells) {
		return InlineLabelValueRow
	}
	if SectionMarker(r) != NoMarker {
		return SectionMarkerRow
	}
	return ValueRow
}
