package storage

import "metastats-scraper/models"

// ReportAppender is an append-only sink for one dated report.
type ReportAppender interface {
	Append(text string) error
	Path() string
}

// SnapshotWriter is the interface any structured snapshot backend must satisfy.
type SnapshotWriter interface {
	Write(report *models.Report) error
	Close() error
}
