package booking

import (
	"regexp"
	"strings"

	"inmatesearch-backend/lib/textutil"
)

type Charge struct {
	Warrant     string `json:"warrant,omitempty"`
	WarrantDate string `json:"warrantDate,omitempty"`
	Counts      string `json:"counts,omitempty"`
	CaseNumber  string `json:"caseNumber,omitempty"`
	OffenseDate string `json:"offenseDate,omitempty"`
	Statute     string `json:"statute,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	Bond        string `json:"bond,omitempty"`
	BondAmount  string `json:"bondAmount,omitempty"`
	BondStatus  string `json:"bondStatus,omitempty"`
	Disposition string `json:"disposition,omitempty"`
}

type segmentState int

const (
	outside segmentState = iota
	inCharges
	inRelease
)

// transitions lists every section change the segmenter makes. The charge in
// progress is finalized whenever a transition leaves inCharges. inRelease is
// terminal.
var transitions = map[segmentState]map[Marker]segmentState{
	outside:   {ChargesMarker: inCharges},
	inCharges: {ReleaseMarker: inRelease},
}

var dollarAmount = regexp.MustCompile(`^\$\s*[\d,]+(\.\d+)?$`)

type segmenter struct {
	state         segmentState
	current       *Charge
	columnHeaders []string
	charges       []Charge
}

func (s *segmenter) finalize() {
	if s.current != nil {
		s.charges = append(s.charges, *s.current)
		s.current = nil
	}
	s.columnHeaders = nil
}

func (s *segmenter) step(r Row) {
	if next, ok := transitions[s.state][SectionMarker(r)]; ok {
		if s.state == inCharges {
			s.finalize()
		}
		s.state = next
		return
	}
	if s.state != inCharges || len(r.Cells) == 0 {
		return
	}

	first := textutil.NormalizeLabel(r.Cells[0])
	text := r.joined()
	// column headers only apply to the row right after them
	columnHeaders := s.columnHeaders
	s.columnHeaders = nil

	switch {
	case first == "warrant" && r.CellOr(1) != "" && textutil.NormalizeLabel(r.CellOr(1)) != "date":
		s.finalize()
		s.current = &Charge{
			Warrant:     r.CellOr(1),
			WarrantDate: r.CellOr(3),
			Counts:      r.CellOr(4),
		}
		return
	case first == "case" && s.current != nil:
		if v := r.CellOr(1); v != "" {
			s.current.CaseNumber = v
		}
		return
	case strings.Contains(text, "offense date") && strings.Contains(text, "description"):
		headers := make([]string, len(r.Cells))
		for i, c := range r.Cells {
			headers[i] = textutil.NormalizeLabel(c)
		}
		s.columnHeaders = headers
		return
	case columnHeaders != nil && len(r.Cells) >= 3 && s.current != nil:
		s.applyColumns(columnHeaders, r)
		return
	case first == "disposition" && s.current != nil:
		rest := make([]string, 0, len(r.Cells)-1)
		for _, c := range r.Cells[1:] {
			if c != "" {
				rest = append(rest, c)
			}
		}
		s.current.Disposition = strings.Join(rest, " ")
		return
	}

	if s.current == nil {
		return
	}
	if strings.Contains(text, "bond amount") {
		s.current.BondAmount = r.Cells[len(r.Cells)-1]
	}
	if strings.Contains(text, "bond status") {
		// the status is the first cell that is neither a bond label nor an amount
		for _, c := range r.Cells {
			label := textutil.NormalizeLabel(c)
			if c == "" || label == "bond status" || label == "bond amount" || dollarAmount.MatchString(c) {
				continue
			}
			s.current.BondStatus = c
			break
		}
		if s.current.BondAmount == "" {
			s.current.BondAmount = r.Cells[len(r.Cells)-1]
		}
	}
}

func indexOf(headers []string, match func(string) bool) int {
	for i, h := range headers {
		if match(h) {
			return i
		}
	}
	return -1
}

func equals(name string) func(string) bool {
	return func(h string) bool { return h == name }
}

func (s *segmenter) applyColumns(headers []string, r Row) {
	columns := []struct {
		index int
		field *string
	}{
		{indexOf(headers, equals("offense date")), &s.current.OffenseDate},
		{indexOf(headers, equals("code section")), &s.current.Statute},
		{indexOf(headers, equals("description")), &s.current.Description},
		{indexOf(headers, equals("type")), &s.current.Type},
		{indexOf(headers, func(h string) bool { return strings.Contains(h, "count") }), &s.current.Counts},
		{indexOf(headers, equals("bond")), &s.current.Bond},
	}
	for _, col := range columns {
		if col.index < 0 {
			continue
		}
		if v := r.CellOr(col.index); v != "" {
			*col.field = v
		}
	}
}

// Segment walks the rows once and groups the charges section into Charge
// records. A page without warrant rows yields an empty, non-nil slice.
func Segment(rows []Row) []Charge {
	s := segmenter{charges: []Charge{}}
	for _, r := range rows {
		s.step(r)
	}
	s.finalize()
	return s.charges
}
