package booking

import "regexp"

var soidPattern = regexp.MustCompile(`^\d{9}$`)

func ValidSoid(soid string) bool {
	return soidPattern.MatchString(soid)
}

// ResultsLayout gives the zero-based column of every summary field in the
// search results table. A negative index means the column is not present.
type ResultsLayout struct {
	Name          int `json:"name"`
	Dob           int `json:"dob"`
	Race          int `json:"race"`
	Sex           int `json:"sex"`
	Location      int `json:"location"`
	Soid          int `json:"soid"`
	DaysInCustody int `json:"days_in_custody"`
}

// DefaultResultsLayout skips the leading button column.
var DefaultResultsLayout = ResultsLayout{
	Name:          1,
	Dob:           2,
	Race:          3,
	Sex:           4,
	Location:      5,
	Soid:          6,
	DaysInCustody: 7,
}

// ParseSummaries maps the rows of a search results page to summaries. Rows
// whose SOID column is not a 9 digit number are layout noise and dropped.
func ParseSummaries(rows []Row, layout ResultsLayout) []InmateSummary {
	summaries := []InmateSummary{}
	for _, r := range rows {
		soid := r.CellOr(layout.Soid)
		if !ValidSoid(soid) {
			continue
		}
		summaries = append(summaries, InmateSummary{
			Name:          r.CellOr(layout.Name),
			Dob:           r.CellOr(layout.Dob),
			Race:          r.CellOr(layout.Race),
			Sex:           r.CellOr(layout.Sex),
			Location:      r.CellOr(layout.Location),
			Soid:          soid,
			DaysInCustody: r.CellOr(layout.DaysInCustody),
		})
	}
	return summaries
}
