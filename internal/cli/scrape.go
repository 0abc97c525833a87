// internal/cli/scrape.go
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/law-makers/funnel/internal/dedup"
	"github.com/law-makers/funnel/internal/provider"
	"github.com/law-makers/funnel/internal/reqctx"
	"github.com/law-makers/funnel/internal/scrape"
	"github.com/law-makers/funnel/internal/ui"
	"github.com/law-makers/funnel/internal/utils/headers"
	"github.com/law-makers/funnel/internal/utils/output"
	"github.com/law-makers/funnel/pkg/models"
)

var (
	scrapeProviders []string
	scrapeKeywords  []string
	scrapeCity      string
	scrapeProvince  string
	scrapeLocale    string
	scrapeRadius    int
	scrapeSession   string
	scrapeHeaders   []string
	scrapeOutDir    string
	scrapeMarkdown  bool
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Search job boards and export the merged listings",
	Long: `Scrape searches the selected job boards, fetches every page of results
concurrently, validates each listing, removes duplicates across boards, and
writes the merged list to CSV and JSON (and optionally Markdown).`,
	Example: `  # Search monster.ca for Go jobs around Toronto
  $ funnel scrape -k "go developer" --city Toronto --province ON

  # Search both boards in the US, 50 mile radius, with a Markdown report
  $ funnel scrape -k python -k backend --city Austin --province TX \
      --locale USA_ENG --radius 50 --providers monster,glassdoor --markdown`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringSliceVar(&scrapeProviders, "providers", provider.Names(), "Job boards to search")
	scrapeCmd.Flags().StringSliceVarP(&scrapeKeywords, "keyword", "k", nil, "Search keyword (repeatable)")
	scrapeCmd.Flags().StringVar(&scrapeCity, "city", "", "Search city")
	scrapeCmd.Flags().StringVar(&scrapeProvince, "province", "", "Province or state code")
	scrapeCmd.Flags().StringVar(&scrapeLocale, "locale", string(models.LocaleCANEnglish), "Search locale (CAN_ENG or USA_ENG)")
	scrapeCmd.Flags().IntVar(&scrapeRadius, "radius", 25, "Search radius")
	scrapeCmd.Flags().StringVar(&scrapeSession, "session", "", "Stored login session to attach")
	scrapeCmd.Flags().StringArrayVar(&scrapeHeaders, "header", nil, "Extra request header 'Key: Value' (repeatable)")
	scrapeCmd.Flags().StringVarP(&scrapeOutDir, "out", "o", ".", "Output directory")
	scrapeCmd.Flags().BoolVar(&scrapeMarkdown, "markdown", false, "Also write a Markdown report")

	_ = scrapeCmd.MarkFlagRequired("keyword")
	_ = scrapeCmd.MarkFlagRequired("city")
	_ = scrapeCmd.MarkFlagRequired("province")
}

func runScrape(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}

	desc := models.SearchDescriptor{
		Keywords: scrapeKeywords,
		City:     scrapeCity,
		Province: scrapeProvince,
		Locale:   models.Locale(strings.ToUpper(scrapeLocale)),
		Radius:   scrapeRadius,
	}

	ctx := reqctx.WithRunContext(cmd.Context())
	run := reqctx.GetRunContext(ctx)
	log.Info().
		Str("run_id", run.RunID).
		Strs("providers", scrapeProviders).
		Str("query", desc.Query()).
		Msg("Scrape run starting")

	registry := dedup.NewRegistry()
	var merged []*models.JobRecord
	perProvider := make(map[string]int, len(scrapeProviders))
	extraHeaders := headers.ParseHeaders(scrapeHeaders)

	for _, name := range scrapeProviders {
		src, err := provider.New(name, desc.Locale, provider.Options{
			Session: scrapeSession,
			Headers: extraHeaders,
		})
		if err != nil {
			return err
		}

		coord := scrape.NewCoordinator(src, a.Fetcher(), a.Config.Concurrency)
		coord.OnProgress = pageProgress(src.Name())

		records, err := coord.ScrapeAll(ctx, desc)
		if err != nil {
			// One dead board should not sink the others.
			log.Error().Err(err).Str("provider", src.Name()).Msg("Provider scrape failed")
			fmt.Fprintf(os.Stderr, "%s %s: %v\n", ui.Error("✗"), src.Name(), err)
			continue
		}

		kept := registry.Filter(records)
		perProvider[src.Name()] = len(kept)
		merged = append(merged, kept...)
	}

	if err := writeOutputs(merged); err != nil {
		return err
	}

	printSummary(merged, perProvider, registry.Duplicates(), time.Since(run.StartTime))
	return nil
}

// pageProgress renders a per-provider page bar. The bar is created on the
// first callback, once the planner knows the page count.
func pageProgress(name string) func(done, total int) {
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription(fmt.Sprintf("Fetching %s pages", name)),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(done)
	}
}

func writeOutputs(records []*models.JobRecord) error {
	if err := os.MkdirAll(scrapeOutDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	csvPath := filepath.Join(scrapeOutDir, "jobs.csv")
	if err := output.SaveCSV(records, csvPath); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	jsonPath := filepath.Join(scrapeOutDir, "jobs.json")
	if err := output.SaveJSON(records, jsonPath); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	if scrapeMarkdown {
		mdPath := filepath.Join(scrapeOutDir, "jobs.md")
		if err := output.SaveMarkdown(records, mdPath); err != nil {
			return fmt.Errorf("write markdown: %w", err)
		}
	}
	return nil
}

func printSummary(records []*models.JobRecord, perProvider map[string]int, dups int, elapsed time.Duration) {
	fmt.Println()
	fmt.Printf("%s %s listings collected in %s\n",
		ui.Success("✓"),
		ui.Bold(fmt.Sprintf("%d", len(records))),
		elapsed.Round(time.Millisecond),
	)
	for name, n := range perProvider {
		fmt.Printf("  %s %d\n", ui.Provider(name), n)
	}
	if dups > 0 {
		fmt.Printf("  %s\n", ui.Info(fmt.Sprintf("%d duplicates removed", dups)))
	}
	fmt.Printf("  %s\n", ui.Info(fmt.Sprintf("written to %s", scrapeOutDir)))
	fmt.Println()
}
