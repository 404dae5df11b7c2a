// Package bbolt implements the ports.ReportStore interface using bbolt (embedded B+ tree).
// Full reports and their listing summaries live in two top-level buckets keyed by
// deck ID, both JSON-serialized. Writes are transactional: a crash mid-write
// cannot corrupt previously committed reports.
package bbolt

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/baditaflorin/go_nec_fidelity/internal/core/domain"
)

// Bucket keys
var (
	bucketReports   = []byte("reports")
	bucketSummaries = []byte("summaries")
)

// Store implements ports.ReportStore backed by bbolt.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketReports, bucketSummaries} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bbolt init buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveReport persists report under its deck ID, replacing any earlier analysis.
func (s *Store) SaveReport(report *domain.Report) error {
	if report == nil {
		return errors.New("nil report")
	}
	if report.DeckID == "" {
		return errors.New("report has no deck id")
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	summaryJSON, err := json.Marshal(report.Summary())
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	key := []byte(report.DeckID)
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketReports).Put(key, reportJSON); err != nil {
			return err
		}
		return tx.Bucket(bucketSummaries).Put(key, summaryJSON)
	})
}

// LoadReport retrieves the report for deckID.
// Returns nil, nil if no report exists.
func (s *Store) LoadReport(deckID string) (*domain.Report, error) {
	var data []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := tx.Bucket(bucketReports).Get([]byte(deckID)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if data == nil {
		return nil, nil
	}

	var report domain.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("unmarshal report %s: %w", deckID, err)
	}
	return &report, nil
}

// ListReports returns the summaries of all stored reports, newest analysis first.
func (s *Store) ListReports() ([]domain.ReportSummary, error) {
	summaries := []domain.ReportSummary{}

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSummaries).ForEach(func(k, v []byte) error {
			var sum domain.ReportSummary
			if err := json.Unmarshal(v, &sum); err != nil {
				return fmt.Errorf("unmarshal summary %s: %w", k, err)
			}
			summaries = append(summaries, sum)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].AnalyzedAt.After(summaries[j].AnalyzedAt)
	})
	return summaries, nil
}

// DeleteReport removes the report for deckID.
// Idempotent: deleting a nonexistent report is not an error.
func (s *Store) DeleteReport(deckID string) error {
	key := []byte(deckID)
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketReports).Delete(key); err != nil {
			return err
		}
		return tx.Bucket(bucketSummaries).Delete(key)
	})
}
