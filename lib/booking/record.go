package booking

// InmateSummary is one row of the search results list.
type InmateSummary struct {
	Name          string `json:"name"`
	Dob           string `json:"dob"`
	Race          string `json:"race"`
	Sex           string `json:"sex"`
	Location      string `json:"location"`
	Soid          string `json:"soid"`
	DaysInCustody string `json:"daysInCustody"`
}

type BookingRecord struct {
	AgencyId         string   `json:"agencyId"`
	ArrestDate       string   `json:"arrestDate"`
	BookingStarted   string   `json:"bookingStarted"`
	BookingComplete  string   `json:"bookingComplete"`
	Height           string   `json:"height"`
	Weight           string   `json:"weight"`
	Hair             string   `json:"hair"`
	Eyes             string   `json:"eyes"`
	Address          string   `json:"address"`
	City             string   `json:"city"`
	State            string   `json:"state"`
	Zip              string   `json:"zip"`
	PlaceOfBirth     string   `json:"placeOfBirth"`
	LocationOfArrest string   `json:"locationOfArrest"`
	Courtroom        string   `json:"courtroom"`
	Attorney         string   `json:"attorney"`
	BondStatus       string   `json:"bondStatus"`
	ReleaseDate      string   `json:"releaseDate"`
	ReleasedTo       string   `json:"releasedTo"`
	Charges          []Charge `json:"charges"`
}

// Inmate is a search result merged with its detail page, serialized as a
// single flat object.
type Inmate struct {
	InmateSummary
	BookingRecord
	// Details is the detail page's body text, only filled on request.
	Details string `json:"details,omitempty"`
}

type synonym struct {
	field *string
	keys  []string
}

func bookingSynonyms(r *BookingRecord) []synonym {
	return []synonym{
		{&r.AgencyId, []string{"agency id", "agency"}},
		{&r.ArrestDate, []string{"arrest date/time", "arrest date"}},
		{&r.BookingStarted, []string{"booking started", "booking start"}},
		{&r.BookingComplete, []string{"booking complete", "booking completed"}},
		{&r.Height, []string{"height"}},
		{&r.Weight, []string{"weight"}},
		{&r.Hair, []string{"hair", "hair color"}},
		{&r.Eyes, []string{"eyes", "eye color", "eye"}},
		{&r.Address, []string{"address", "street"}},
		{&r.City, []string{"city"}},
		{&r.State, []string{"state"}},
		{&r.Zip, []string{"zip", "zip code", "postal"}},
		{&r.PlaceOfBirth, []string{"place of birth", "birth place", "pob"}},
		{&r.LocationOfArrest, []string{"location of arrest", "arrest location"}},
		{&r.Courtroom, []string{"courtroom", "court room"}},
		{&r.Attorney, []string{"attorney"}},
		{&r.BondStatus, []string{"bond status"}},
		{&r.ReleaseDate, []string{"release date/time", "release date"}},
		{&r.ReleasedTo, []string{"released to"}},
	}
}

func summarySynonyms(s *InmateSummary) []synonym {
	return []synonym{
		{&s.Name, []string{"name", "inmate name"}},
		{&s.Dob, []string{"dob", "date of birth", "birth date"}},
		{&s.Race, []string{"race"}},
		{&s.Sex, []string{"sex", "gender"}},
		{&s.Location, []string{"housing location", "housing"}},
		{&s.Soid, []string{"soid", "so id", "state offender id"}},
		{&s.DaysInCustody, []string{"days in custody"}},
	}
}

// Assemble resolves every booking field through its synonyms, keeps the
// summary values and back-fills empty summary values from the detail page.
// It never fails; a field nothing matched stays "".
func Assemble(fields FieldMap, charges []Charge, summary InmateSummary) Inmate {
	var record BookingRecord
	for _, s := range bookingSynonyms(&record) {
		*s.field = fields.Get(s.keys...)
	}
	record.Charges = charges
	if record.Charges == nil {
		record.Charges = []Charge{}
	}

	for _, s := range summarySynonyms(&summary) {
		if *s.field == "" {
			*s.field = fields.Get(s.keys...)
		}
	}

	return Inmate{
		InmateSummary: summary,
		BookingRecord: record,
	}
}

// Extract runs the whole pipeline over the rows of one detail page.
func Extract(rows []Row, summary InmateSummary) Inmate {
	return Assemble(Reconstruct(rows), Segment(rows), summary)
}
