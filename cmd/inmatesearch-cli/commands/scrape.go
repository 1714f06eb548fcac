package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"inmatesearch-backend/lib/booking"
	"inmatesearch-backend/lib/restyutil"
	"inmatesearch-backend/lib/scrapers/sheriff"
	"inmatesearch-backend/services/inmatesearch"

	"github.com/spf13/cobra"
)

var (
	scrapeMode    string
	scrapeDriver  string
	scrapeBaseUrl string
	scrapeLimit   int
	scrapeTimeout time.Duration
	scrapeJson    bool
	scrapeText    bool
	scrapeDump    string
)

func init() {
	flags := scrapeCmd.Flags()
	flags.StringVar(&scrapeMode, "mode", inmatesearch.DefaultMode, "The search mode to submit.")
	flags.StringVar(&scrapeDriver, "driver", string(sheriff.HttpDriver), "The scrape driver, http or chrome.")
	flags.StringVar(&scrapeBaseUrl, "base-url", sheriff.DefaultBaseUrl, "The base url of the inmate search site.")
	flags.IntVar(&scrapeLimit, "limit", 0, "The most detail pages to follow, 0 follows every match.")
	flags.DurationVar(&scrapeTimeout, "timeout", sheriff.DefaultTimeout, "The timeout of each page load.")
	flags.BoolVar(&scrapeJson, "json", false, "Print JSON instead of tables.")
	flags.BoolVar(&scrapeText, "text", false, "Include the raw detail page text.")
	flags.StringVar(&scrapeDump, "dump", "", "Write every http exchange to this directory (<dev_state>/... is allowed).")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <name> [--mode] [--driver] [--json]",
	Short: "Searches the live site for a name and prints every matching inmate.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := sheriff.Options{
			BaseUrl: scrapeBaseUrl,
			Driver:  sheriff.Driver(scrapeDriver),
			Timeout: scrapeTimeout,
		}
		if scrapeDump != "" {
			output, err := restyutil.NewFilesystemOutput(scrapeDump)
			if err != nil {
				return err
			}
			opts.Dump = output
		}

		service, err := inmatesearch.NewService(func(ctx context.Context) (sheriff.Session, error) {
			return sheriff.NewSession(ctx, opts)
		}, inmatesearch.Options{ResultsLayout: booking.DefaultResultsLayout})
		if err != nil {
			return err
		}

		req, err := service.Normalize(inmatesearch.Request{
			Name:        args[0],
			Mode:        scrapeMode,
			Limit:       scrapeLimit,
			IncludeText: scrapeText,
		})
		if err != nil {
			return err
		}

		start := time.Now()
		res := service.Scrape(cmd.Context(), req)
		slog.Debug("scrape finished", "seconds", time.Since(start).Seconds())

		if scrapeJson {
			return printJson(cmd.OutOrStdout(), res)
		}
		if res.Error != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "error:", res.Error)
		}
		if !res.Found {
			fmt.Fprintln(cmd.OutOrStdout(), "no inmates found")
			return nil
		}
		for _, inmate := range res.Inmates {
			renderInmate(cmd.OutOrStdout(), inmate)
			if scrapeText && inmate.Details != "" {
				fmt.Fprintln(cmd.OutOrStdout(), inmate.Details)
			}
		}
		return nil
	},
}
