package commands

import (
	"io"

	"inmatesearch-backend/lib/booking"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func renderSummaries(out io.Writer, summaries []booking.InmateSummary) {
	t := newTable(out)
	t.AppendHeader(table.Row{"SOID", "Name", "DOB", "Race", "Sex", "Location", "Days"})
	for _, s := range summaries {
		t.AppendRow(table.Row{s.Soid, s.Name, s.Dob, s.Race, s.Sex, s.Location, s.DaysInCustody})
	}
	t.Render()
}

func renderInmate(out io.Writer, inmate booking.Inmate) {
	t := newTable(out)
	t.SetTitle("%s (%s)", inmate.Name, inmate.Soid)
	for _, field := range []struct {
		label string
		value string
	}{
		{"DOB", inmate.Dob},
		{"Race / Sex", inmate.Race + " / " + inmate.Sex},
		{"Location", inmate.Location},
		{"Days in Custody", inmate.DaysInCustody},
		{"Agency", inmate.AgencyId},
		{"Arrest Date", inmate.ArrestDate},
		{"Booking", inmate.BookingStarted + " - " + inmate.BookingComplete},
		{"Height / Weight", inmate.Height + " / " + inmate.Weight},
		{"Hair / Eyes", inmate.Hair + " / " + inmate.Eyes},
		{"Address", inmate.Address + ", " + inmate.City + ", " + inmate.State + " " + inmate.Zip},
		{"Place of Birth", inmate.PlaceOfBirth},
		{"Location of Arrest", inmate.LocationOfArrest},
		{"Courtroom", inmate.Courtroom},
		{"Attorney", inmate.Attorney},
		{"Bond Status", inmate.BondStatus},
		{"Release Date", inmate.ReleaseDate},
		{"Released To", inmate.ReleasedTo},
	} {
		t.AppendRow(table.Row{field.label, field.value})
	}
	t.Render()

	if len(inmate.Charges) == 0 {
		return
	}
	charges := newTable(out)
	charges.SetTitle("Charges")
	charges.AppendHeader(table.Row{"Warrant", "Date", "Case", "Statute", "Description", "Type", "Counts", "Bond", "Status", "Disposition"})
	for _, c := range inmate.Charges {
		bond := c.BondAmount
		if bond == "" {
			bond = c.Bond
		}
		charges.AppendRow(table.Row{
			c.Warrant, c.WarrantDate, c.CaseNumber, c.Statute, c.Description,
			c.Type, c.Counts, bond, c.BondStatus, c.Disposition,
		})
	}
	charges.Render()
}
