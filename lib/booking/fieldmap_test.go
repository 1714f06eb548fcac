package booking

import (
	"fmt"
	"testing"

	"inmatesearch-backend/lib/textutil"

	"github.com/google/go-cmp/cmp"
	"github.com/mazen160/go-random"
	"github.com/stretchr/testify/require"
)

func valueRow(cells ...string) Row {
	return Row{Cells: cells}
}

func headerRow(cells ...string) Row {
	return Row{Cells: cells, Header: true, HeaderCells: len(cells)}
}

func TestReconstructTwoColumnRows(t *testing.T) {
	fields := Reconstruct([]Row{
		valueRow("Height", "5'10"),
		valueRow("Weight", "180"),
	})

	diff := cmp.Diff(map[string]string{
		"height": "5'10",
		"weight": "180",
	}, fields.Map())
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestReconstructHeaderThenValues(t *testing.T) {
	fields := Reconstruct([]Row{
		headerRow("Arrest Date", "Booking Started"),
		valueRow("1/2/2024", "1/2/2024 10:00"),
	})

	diff := cmp.Diff(map[string]string{
		"arrest date":     "1/2/2024",
		"booking started": "1/2/2024 10:00",
	}, fields.Map())
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestReconstructShapes(t *testing.T) {
	fields := Reconstruct([]Row{
		// inline label/value
		{Cells: []string{"Address:", "123 MAIN ST", "City:", "MARIETTA"}, HeaderCells: 2},
		// four cells, extras ignored
		valueRow("Hair", "BRO", "Eyes", "BLU", "ignored"),
		// three cells match nothing
		valueRow("Disposition", "BOUND", "OVER"),
		// empty sides are skipped
		valueRow("Zip", ""),
		valueRow("", "orphan", "State", "GA"),
		// a header row followed by a shorter value row
		headerRow("Courtroom", "Attorney", "Judge"),
		valueRow("5B"),
		// pending labels are consumed by the first row after them
		valueRow("Released To", "SELF"),
	})

	diff := cmp.Diff(map[string]string{
		"address":     "123 MAIN ST",
		"city":        "MARIETTA",
		"hair":        "BRO",
		"eyes":        "BLU",
		"state":       "GA",
		"courtroom":   "5B",
		"released to": "SELF",
	}, fields.Map())
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestReconstructLastWriteWins(t *testing.T) {
	fields := Reconstruct([]Row{
		valueRow("Bond", "$100.00"),
		valueRow("Height", "6'0"),
		valueRow("BOND:", "$200.00"),
	})

	require.Equal(t, "$200.00", fields.Get("bond"))
	require.Equal(t, []string{"bond", "height"}, fields.Keys())
}

func TestReconstructRoundTrip(t *testing.T) {
	for attempt := 0; attempt < 20; attempt++ {
		expected := map[string]string{}
		var labels, values []string
		for i := 0; i < 6; i++ {
			suffix, err := random.String(8)
			require.NoError(t, err)
			value, err := random.String(12)
			require.NoError(t, err)

			label := fmt.Sprintf("Field %s:", suffix)
			if _, seen := expected[textutil.NormalizeLabel(label)]; seen {
				continue
			}
			labels = append(labels, label)
			values = append(values, value)
			expected[textutil.NormalizeLabel(label)] = value
		}

		fields := Reconstruct([]Row{headerRow(labels...), valueRow(values...)})
		diff := cmp.Diff(expected, fields.Map())
		if diff != "" {
			t.Fatal(diff)
		}
	}
}

func TestGetFuzzyFallback(t *testing.T) {
	fields := NewFieldMap()
	fields.Set("Arrest Agency Number", "GA033")

	require.Equal(t, "GA033", fields.Get("agency id", "agency"))
}

func TestGetPrecedence(t *testing.T) {
	fields := NewFieldMap()
	fields.Set("Arrest Date/Time", "1/2/2024 09:00")
	fields.Set("Arrest Date", "1/2/2024")
	fields.Set("Release Date", "1/9/2024")

	// exact matches win over substring matches for every candidate
	require.Equal(t, "1/2/2024", fields.Get("arrest", "arrest date"))
	// substring matches follow insertion order
	require.Equal(t, "1/2/2024 09:00", fields.Get("date"))
	require.Equal(t, "1/9/2024", fields.Get("release"))
	// candidates are normalized like labels
	require.Equal(t, "1/9/2024", fields.Get("  RELEASE DATE: "))
}

func TestGetUnicodeSpacedLabel(t *testing.T) {
	fields := NewFieldMap()
	fields.Set("Arrest\u2003Date:", "1/2/2024")
	fields.Set("Booking\u3000\u00a0Started", "1/2/2024 10:15")

	require.Equal(t, "1/2/2024", fields.Get("arrest date"))
	require.Equal(t, "1/2/2024 10:15", fields.Get("booking started"))
}

func TestGetTotal(t *testing.T) {
	var zero FieldMap
	require.Equal(t, "", zero.Get("anything"))
	require.Equal(t, "", zero.Get())

	fields := Reconstruct([]Row{valueRow("Height", "5'10")})
	require.Equal(t, "", fields.Get(""))
	require.Equal(t, "", fields.Get("weight", ":"))
	require.Equal(t, 1, fields.Len())

	var set FieldMap
	set.Set("Height", "5'10")
	require.Equal(t, "5'10", set.Get("height"))
}
