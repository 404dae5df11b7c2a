package ports

import (
	"github.com/baditaflorin/go_nec_fidelity/internal/core/domain"
)

// ReportStore persists analysis reports keyed by deck ID.
//
// Writes are transactional: a crash mid-write must not corrupt reports that
// were already committed.
type ReportStore interface {
	// SaveReport stores report under its DeckID, replacing any previous one.
	SaveReport(report *domain.Report) error

	// LoadReport returns the report for deckID, or nil, nil if none exists.
	LoadReport(deckID string) (*domain.Report, error)

	// ListReports returns summaries of every stored report, newest first.
	ListReports() ([]domain.ReportSummary, error)

	// DeleteReport removes a report. Deleting a missing report is not an error.
	DeleteReport(deckID string) error

	Close() error
}
