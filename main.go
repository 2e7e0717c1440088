package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"metastats-scraper/config"
	"metastats-scraper/models"
	"metastats-scraper/scraper/metastats"
	"metastats-scraper/services"
	"metastats-scraper/storage"
	"metastats-scraper/utils"
)

var (
	flagBaseURL     string
	flagBound       int
	flagReportDir   string
	flagPublishPath string
	flagFetchMode   string
)

var rootCmd = &cobra.Command{
	Use:           "metastats",
	Short:         "Scrape the current metagame into a decklist report",
	Long:          "Fetches the metastats index, follows the top archetypes to their decklists and writes one dated report, then publishes it as decks.txt.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runScrape,
}

var summaryCmd = &cobra.Command{
	Use:           "summary [report]",
	Short:         "Print a summary of a published report (default decks.txt)",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSummary,
}

func init() {
	rootCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "Index page URL (overrides METASTATS_BASE_URL)")
	rootCmd.Flags().IntVar(&flagBound, "bound", 0, "Full archetype sections before truncation (overrides ARCHETYPE_BOUND)")
	rootCmd.Flags().StringVar(&flagReportDir, "report-dir", "", "Directory for the dated report (overrides REPORT_DIR)")
	rootCmd.Flags().StringVarP(&flagPublishPath, "out", "o", "", "Published copy path (overrides PUBLISH_PATH)")
	rootCmd.Flags().StringVar(&flagFetchMode, "fetch-mode", "", "http or browser (overrides FETCH_MODE)")

	rootCmd.AddCommand(summaryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		utils.NewLogger().Error("%v", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = flagBaseURL
	}
	if flags.Changed("bound") {
		cfg.Bound = flagBound
	}
	if flags.Changed("report-dir") {
		cfg.ReportDir = flagReportDir
	}
	if flags.Changed("out") {
		cfg.PublishPath = flagPublishPath
	}
	if flags.Changed("fetch-mode") {
		cfg.FetchMode = flagFetchMode
	}
	return cfg
}

func newFetcher(cfg *config.Config, logger *utils.Logger) (metastats.Fetcher, func(), error) {
	timeout := time.Duration(cfg.HTTPTimeoutSec) * time.Second
	switch cfg.FetchMode {
	case config.FetchModeHTTP:
		return metastats.NewHTTPFetcher(timeout, cfg.UserAgent), func() {}, nil
	case config.FetchModeBrowser:
		logger.Info("[metastats] Using headless browser")
		f, err := metastats.NewBrowserFetcher(cfg.ChromeBin, cfg.UserAgent, timeout)
		if err != nil {
			return nil, nil, err
		}
		return f, f.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown fetch mode %q (want %q or %q)",
			cfg.FetchMode, config.FetchModeHTTP, config.FetchModeBrowser)
	}
}

func runScrape(cmd *cobra.Command, _ []string) error {
	logger := utils.NewLogger()
	cfg := loadConfig(cmd)
	logger.SetDebug(cfg.Debug)

	logger.Info("=== Metastats scraper starting ===")
	logger.Info("Config: base: %s | bound: %d | fetch: %s | publish: %s",
		cfg.BaseURL, cfg.Bound, cfg.FetchMode, cfg.PublishPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fetcher, closeFetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFetcher()

	scraper := metastats.New(cfg, logger, fetcher, func(identifier string) storage.ReportAppender {
		return storage.NewReportWriter(cfg.ReportDir, identifier)
	})

	report, out, err := scraper.Run(ctx)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	target, err := storage.Publish(out.Path(), cfg.PublishPath)
	if err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}
	logger.Info("[publish] %s -> %s", out.Path(), target)

	if cfg.SnapshotToPostgres {
		snapshot(cfg, logger, report)
	}

	summarySvc := services.NewSummaryService(logger)
	summarySvc.Print(os.Stdout, summarySvc.Generate(report))

	fmt.Printf("  Done. Report → %s | Published → %s\n\n", out.Path(), target)
	return nil
}

// snapshot stores the report in PostgreSQL. Failures are logged only; the
// files on disk are the run's real output.
func snapshot(cfg *config.Config, logger *utils.Logger, report *models.Report) {
	pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Warn("[snapshot] PostgreSQL unavailable: %v", err)
		return
	}
	defer pgWriter.Close()

	if err := pgWriter.Write(report); err != nil {
		logger.Warn("[snapshot] Write failed: %v", err)
		return
	}
	logger.Info("[snapshot] Stored %s (%d archetypes) in PostgreSQL", report.Identifier, len(report.Sections))
}

func runSummary(cmd *cobra.Command, args []string) error {
	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetDebug(cfg.Debug)

	path := cfg.PublishPath
	if len(args) == 1 {
		path = args[0]
	}

	sections, marker, err := storage.ReadReportFile(path)
	if err != nil {
		return err
	}

	report := &models.Report{
		Identifier:       path,
		Sections:         sections,
		Truncated:        marker != "",
		TruncationMarker: marker,
	}
	summarySvc := services.NewSummaryService(logger)
	summarySvc.Print(cmd.OutOrStdout(), summarySvc.Generate(report))
	return nil
}
