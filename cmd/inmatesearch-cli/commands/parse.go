package commands

import (
	"fmt"
	"os"

	"inmatesearch-backend/lib/booking"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"
)

var (
	parseSoid   string
	parseTable  bool
	resultsJson bool
)

func init() {
	parseCmd.Flags().StringVar(&parseSoid, "soid", "", "The SOID to fill in the summary with.")
	parseCmd.Flags().BoolVar(&parseTable, "table", false, "Print a table instead of JSON.")
	resultsCmd.Flags().BoolVar(&resultsJson, "json", false, "Print JSON instead of a table.")
	rootCmd.AddCommand(parseCmd, resultsCmd)
}

func readRows(path string) ([]booking.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return booking.ParseRows(doc.Selection), nil
}

var parseCmd = &cobra.Command{
	Use:   "parse <detail.html>",
	Short: "Extracts the booking record from a saved detail page.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := readRows(args[0])
		if err != nil {
			return err
		}
		inmate := booking.Extract(rows, booking.InmateSummary{Soid: parseSoid})
		if parseTable {
			renderInmate(cmd.OutOrStdout(), inmate)
			return nil
		}
		return printJson(cmd.OutOrStdout(), inmate)
	},
}

var resultsCmd = &cobra.Command{
	Use:   "results <results.html>",
	Short: "Prints the inmates listed on a saved search results page.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := readRows(args[0])
		if err != nil {
			return err
		}
		summaries := booking.ParseSummaries(rows, booking.DefaultResultsLayout)
		if resultsJson {
			return printJson(cmd.OutOrStdout(), summaries)
		}
		renderSummaries(cmd.OutOrStdout(), summaries)
		return nil
	},
}
