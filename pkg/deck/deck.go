// Package deck analyses NEC antenna decks: it resolves SY symbols, parses and
// validates cards, rebuilds the deck from the parsed cards and scores how
// faithfully the rebuild matches, and extracts wire geometry and feed points.
package deck

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/baditaflorin/go_nec_fidelity/internal/adapters/stream/lineprocessor"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/converter"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/domain"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/expr"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/feed"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/fidelity"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/geometry"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/parser"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/symbols"
	"github.com/baditaflorin/go_nec_fidelity/internal/ports"
)

// Result types produced by an Analyzer.
type (
	Report         = domain.Report
	ReportSummary  = domain.ReportSummary
	Card           = domain.Card
	Param          = domain.Param
	SymbolTable    = domain.SymbolTable
	FidelityReport = domain.FidelityReport
	FidelityResult = domain.FidelityResult
	Segment        = domain.Segment
	FeedPoint      = domain.FeedPoint
)

// Analyzer runs the deck pipeline. It holds no per-deck state and is safe for
// concurrent use.
type Analyzer struct {
	logger     ports.Logger
	normalizer ports.Normalizer
	lines      ports.LineSource
	store      ports.ReportStore

	resolver  ports.SymbolResolver
	parser    ports.DeckParser
	converter *converter.Converter
	scorer    ports.FidelityScorer
	geometry  *geometry.Extractor
	feed      *feed.Extractor
}

// New creates a new Analyzer.
func New(opts ...Option) (*Analyzer, error) {
	config := defaultAnalyzerConfig()
	for _, opt := range opts {
		opt(config)
	}
	if err := config.setDefaults(); err != nil {
		return nil, err
	}

	evaluator := expr.NewEvaluator()
	p, err := parser.NewParser(parser.Config{
		CommentMarker: config.CommentMarker,
		Specs:         config.Specs,
	}, config.Logger, evaluator)
	if err != nil {
		return nil, fmt.Errorf("parser config: %w", err)
	}
	resolver := symbols.NewResolver(config.Logger, evaluator)

	return &Analyzer{
		logger:     config.Logger,
		normalizer: config.Normalizer,
		lines:      lineprocessor.NewProcessor(config.Logger, lineprocessor.ProcessingConfig{ChunkSize: config.ChunkSize}),
		store:      config.Store,
		resolver:   resolver,
		parser:     p,
		converter:  converter.NewConverter(config.Logger),
		scorer:     fidelity.NewScorer(fidelity.ScorerConfig{AutoJunk: config.AutoJunk}, config.Logger),
		geometry:   geometry.NewExtractor(config.Logger, resolver, evaluator),
		feed:       feed.NewExtractor(config.Logger),
	}, nil
}

// Analyze runs the full pipeline over text. When a store is configured the
// report is saved under its DeckID; a failed save still returns the report.
func (a *Analyzer) Analyze(ctx context.Context, name, text string) (*Report, error) {
	start := time.Now()

	lines, err := a.SplitLines(ctx, text)
	if err != nil {
		return nil, err
	}

	table := a.ResolveSymbols(lines)
	cards, count := a.Parse(lines, table)
	reconverted := a.Convert(cards)
	reconvertedCards, _ := a.Parse(reconverted, a.ResolveSymbols(reconverted))
	segments, geometryErrors := a.ExtractGeometry(cards)

	report := &Report{
		DeckID:         DeckID(text),
		Name:           name,
		LineCount:      len(lines),
		CardCount:      count,
		Cards:          cards,
		Symbols:        table,
		Errors:         CollectErrors(cards),
		Reconverted:    reconverted,
		Fidelity:       a.Fidelity(cards, reconvertedCards),
		Geometry:       segments,
		GeometryErrors: geometryErrors,
		FeedPoints:     a.FeedPoints(cards),
		AnalyzedAt:     start.UTC(),
	}
	report.Duration = time.Since(start)

	a.logger.Info("Analyzed deck",
		"deck_id", report.DeckID,
		"name", name,
		"lines", report.LineCount,
		"cards", report.CardCount,
		"errors", len(report.Errors),
		"segments", len(report.Geometry),
		"mean_score", report.Fidelity.Mean,
		"duration", report.Duration,
	)

	if a.store != nil {
		if err := a.store.SaveReport(report); err != nil {
			a.logger.Error("Failed to save report", "deck_id", report.DeckID, "error", err)
			return report, fmt.Errorf("save report: %w", err)
		}
	}
	return report, nil
}

// AnalyzeReader reads the whole deck from r and analyses it.
func (a *Analyzer) AnalyzeReader(ctx context.Context, name string, r io.Reader) (*Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read deck: %w", err)
	}
	return a.Analyze(ctx, name, string(data))
}

// SplitLines normalizes text and splits it into deck lines.
func (a *Analyzer) SplitLines(ctx context.Context, text string) ([]string, error) {
	lines, _, err := a.lines.ReadLines(ctx, strings.NewReader(a.normalizer.Normalize(text)))
	if err != nil {
		return nil, fmt.Errorf("split deck lines: %w", err)
	}
	return lines, nil
}

// ResolveSymbols builds the symbol table from the SY cards in lines.
func (a *Analyzer) ResolveSymbols(lines []string) SymbolTable {
	return a.resolver.Resolve(lines)
}

// Parse converts lines into cards, evaluating numeric fields against table.
func (a *Analyzer) Parse(lines []string, table SymbolTable) ([]Card, int) {
	return a.parser.Parse(lines, table)
}

// Convert rebuilds deck lines from cards.
func (a *Analyzer) Convert(cards []Card) []string {
	return a.converter.Convert(cards)
}

// Fidelity scores reconverted against original card by card.
func (a *Analyzer) Fidelity(original, reconverted []Card) FidelityReport {
	return a.scorer.Compare(original, reconverted)
}

// ExtractGeometry returns the wire segments of the GW cards and the messages
// for those that could not be evaluated.
func (a *Analyzer) ExtractGeometry(cards []Card) ([]Segment, []string) {
	return a.geometry.Extract(cards)
}

// FeedPoints returns the distinct segment tags excited by EX cards.
func (a *Analyzer) FeedPoints(cards []Card) []FeedPoint {
	return a.feed.Extract(cards)
}

// Store returns the configured report store, or nil.
func (a *Analyzer) Store() ports.ReportStore {
	return a.store
}

// CollectErrors flattens card validation errors into "Line <n>: <message>"
// entries in deck order.
func CollectErrors(cards []Card) []string {
	errs := []string{}
	for _, card := range cards {
		for _, msg := range card.Errors {
			errs = append(errs, fmt.Sprintf("Line %d: %s", card.LineNumber, msg))
		}
	}
	return errs
}

// DeckID identifies a deck by the SHA-256 of its text.
func DeckID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
