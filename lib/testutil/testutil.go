package testutil

import (
	"fmt"
	"strings"
	"testing"

	"inmatesearch-backend/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
)

// SetupTelemetry sets up telemetry for the tests of the named package, it is
// shut down when the test finishes.
func SetupTelemetry(t testing.TB, name string) {
	cleanup := telemetry.SetupForTesting(fmt.Sprintf("test:%s", name))
	t.Cleanup(cleanup)
}

// Document parses an html page, failing the test when it can't.
func Document(t testing.TB, page string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}
