package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"metastats-scraper/models"
)

// PostgresWriter persists report snapshots to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

var _ SnapshotWriter = (*PostgresWriter)(nil)

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 5; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS meta_reports (
			id                SERIAL PRIMARY KEY,
			identifier        TEXT        UNIQUE NOT NULL,
			source_url        TEXT        NOT NULL DEFAULT '',
			truncation_marker TEXT        NOT NULL DEFAULT '',
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS meta_decklists (
			report_id  INTEGER NOT NULL REFERENCES meta_reports(id) ON DELETE CASCADE,
			position   INTEGER NOT NULL,
			archetype  TEXT    NOT NULL,
			line_no    INTEGER NOT NULL,
			quantity   TEXT    NOT NULL,
			card_name  TEXT    NOT NULL,
			PRIMARY KEY (report_id, position, line_no)
		);

		CREATE INDEX IF NOT EXISTS idx_meta_decklists_card ON meta_decklists(card_name);
	`)
	return err
}

// Write stores the report, replacing any earlier snapshot with the same identifier.
func (pw *PostgresWriter) Write(report *models.Report) error {
	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM meta_reports WHERE identifier = $1`, report.Identifier); err != nil {
		return fmt.Errorf("postgres: clear %s: %w", report.Identifier, err)
	}

	var reportID int64
	err = tx.QueryRow(`
		INSERT INTO meta_reports (identifier, source_url, truncation_marker)
		VALUES ($1, $2, $3)
		RETURNING id
	`, report.Identifier, report.SourceURL, report.TruncationMarker).Scan(&reportID)
	if err != nil {
		return fmt.Errorf("postgres: insert report: %w", err)
	}

	rows := flattenSections(report.Sections)
	const batchSize = 50
	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := insertBatch(tx, reportID, rows[i:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

type decklistRow struct {
	position  int
	archetype string
	lineNo    int
	line      models.DecklistLine
}

func flattenSections(sections []models.Section) []decklistRow {
	var rows []decklistRow
	for pos, s := range sections {
		for n, l := range s.Lines {
			rows = append(rows, decklistRow{position: pos, archetype: s.Name, lineNo: n, line: l})
		}
	}
	return rows
}

func insertBatch(tx *sql.Tx, reportID int64, batch []decklistRow) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*6)

	for idx, r := range batch {
		base := idx * 6
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6))
		valueArgs = append(valueArgs,
			reportID, r.position, r.archetype, r.lineNo, r.line.Quantity, r.line.CardName)
	}

	query := fmt.Sprintf(`
		INSERT INTO meta_decklists (report_id, position, archetype, line_no, quantity, card_name)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	if _, err := tx.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert decklists: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchReport loads a stored snapshot by identifier.
// Archetypes with an empty decklist have no rows and are not returned.
func (pw *PostgresWriter) FetchReport(identifier string) (*models.Report, error) {
	report := &models.Report{Identifier: identifier}
	var reportID int64
	err := pw.db.QueryRow(`
		SELECT id, source_url, truncation_marker, created_at
		FROM meta_reports
		WHERE identifier = $1
	`, identifier).Scan(&reportID, &report.SourceURL, &report.TruncationMarker, &report.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch report %s: %w", identifier, err)
	}
	report.Truncated = report.TruncationMarker != ""

	rows, err := pw.db.Query(`
		SELECT position, archetype, quantity, card_name
		FROM meta_decklists
		WHERE report_id = $1
		ORDER BY position, line_no
	`, reportID)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch decklists: %w", err)
	}
	defer rows.Close()

	lastPos := -1
	for rows.Next() {
		var (
			pos       int
			archetype string
			line      models.DecklistLine
		)
		if err := rows.Scan(&pos, &archetype, &line.Quantity, &line.CardName); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		if pos != lastPos {
			report.Sections = append(report.Sections, models.Section{Name: archetype})
			lastPos = pos
		}
		last := &report.Sections[len(report.Sections)-1]
		last.Lines = append(last.Lines, line)
	}
	return report, rows.Err()
}
