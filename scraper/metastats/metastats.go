package metastats

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"metastats-scraper/config"
	"metastats-scraper/models"
	"metastats-scraper/storage"
	"metastats-scraper/utils"
)

// OpenReportFunc binds an append-only sink to a report identifier.
type OpenReportFunc func(identifier string) storage.ReportAppender

// Scraper fetches the metagame index, follows up to Bound archetypes and
// writes their decklists into one dated report.
type Scraper struct {
	cfg        *config.Config
	logger     *utils.Logger
	fetcher    Fetcher
	openReport OpenReportFunc
	retry      *utils.RetryConfig
	throttle   *utils.Throttle
}

// New creates a ready-to-use Scraper.
func New(cfg *config.Config, logger *utils.Logger, fetcher Fetcher, openReport OpenReportFunc) *Scraper {
	return &Scraper{
		cfg:        cfg,
		logger:     logger,
		fetcher:    fetcher,
		openReport: openReport,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		throttle: utils.NewThrottle(cfg.RateLimitMs),
	}
}

// Run executes one scrape. The returned report mirrors what was appended to
// the sink; the sink path is available through the report identifier.
//
// Each archetype gets a full section until Bound sections are written. The
// name of the archetype that exhausted the bound is then appended once more
// as a truncation marker and nothing further is parsed or fetched. If the
// index runs out first, no marker is written.
func (s *Scraper) Run(ctx context.Context) (*models.Report, storage.ReportAppender, error) {
	if s.cfg.Bound < 1 {
		return nil, nil, fmt.Errorf("archetype bound must be positive, got %d", s.cfg.Bound)
	}

	base, err := url.Parse(s.cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, nil, &FetchError{URL: s.cfg.BaseURL, Message: "invalid base URL", Cause: err}
	}

	s.logger.Info("[metastats] Fetching index %s", base)
	index, err := s.fetchDocument(ctx, base.String())
	if err != nil {
		return nil, nil, fmt.Errorf("index page: %w", err)
	}

	identifier, err := ReportName(index)
	if err != nil {
		return nil, nil, err
	}
	out := s.openReport(identifier)
	s.logger.Info("[metastats] Report file: %s", out.Path())

	report := &models.Report{
		Identifier: identifier,
		SourceURL:  base.String(),
		CreatedAt:  time.Now(),
	}

	archetypes := Archetypes(index, base)
	s.logger.Debug("[metastats] Index lists %d archetypes, bound %d", archetypes.Len(), s.cfg.Bound)

	remaining := s.cfg.Bound
	cutoff := ""
	for position := 1; ; position++ {
		entry, ok, err := archetypes.Next()
		if err != nil {
			return report, out, fmt.Errorf("archetype #%d: %w", position, err)
		}
		if !ok {
			break
		}

		lines, err := s.fetchDecklist(ctx, entry.DecklistURL)
		if err != nil {
			return report, out, fmt.Errorf("archetype #%d %q: %w", position, entry.Name, err)
		}

		if err := out.Append(entry.Name + "\n" + RenderDecklist(lines)); err != nil {
			return report, out, err
		}
		report.Sections = append(report.Sections, models.Section{Name: entry.Name, Lines: lines})
		s.logger.Info("[metastats] #%d %s: %d card lines", position, entry.Name, len(lines))

		remaining--
		if remaining < 1 {
			cutoff = entry.Name
			break
		}
	}

	if cutoff != "" {
		if err := out.Append(cutoff); err != nil {
			return report, out, err
		}
		report.Truncated = true
		report.TruncationMarker = cutoff
		s.logger.Info("[metastats] Bound of %d reached, truncated at %s", s.cfg.Bound, cutoff)
	}

	s.logger.Info("[metastats] Scrape complete: %d archetypes", len(report.Sections))
	return report, out, nil
}

func (s *Scraper) fetchDecklist(ctx context.Context, decklistURL string) ([]models.DecklistLine, error) {
	doc, err := s.fetchDocument(ctx, decklistURL)
	if err != nil {
		return nil, err
	}
	return ExtractDecklist(doc)
}

func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := s.throttle.Wait(ctx); err != nil {
		return nil, &FetchError{URL: pageURL, Message: "cancelled", Cause: err}
	}

	var body []byte
	err := s.retry.Do(ctx, "fetch "+pageURL, func() error {
		var fetchErr error
		body, fetchErr = s.fetcher.Fetch(ctx, pageURL)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("[metastats] Fetched %s (%d bytes)", pageURL, len(body))
	return ParseDocument(body)
}
