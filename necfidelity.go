// Package necfidelity checks how faithfully an NEC antenna deck survives a
// parse and rebuild round trip.
// Every card is compared with its rebuilt counterpart on three signals:
//
//	similarity       matching-block ratio of the two raw lines
//	field count      1 - |len_o - len_r| / max(len_o, len_r, 1)
//	value alignment  share of positions whose values render identically
//
// The deck score is the mean of the per-card averages. A deck passes when the
// score reaches the threshold and no card failed validation.
//
// Use pkg/deck for the full report including symbols, geometry and feed points.
package necfidelity

import (
	"context"

	"github.com/baditaflorin/go_nec_fidelity/pkg/deck"
	"github.com/baditaflorin/l"
)

// Result holds the outcome of a round-trip fidelity check.
type Result struct {
	// Name of the metric.
	Name string
	// Score is the mean per-card fidelity between 0 and 1.
	Score float64
	// Passed indicates whether the score meets the threshold and the deck is valid.
	Passed bool
	// CardCount is the number of cards parsed from the deck.
	CardCount int
	// ErrorCount is the number of card validation errors.
	ErrorCount int
	// Threshold used to determine pass/fail.
	Threshold float64
	// Details holds additional diagnostic information.
	Details map[string]interface{}
}

// Config holds configuration options for the fidelity check.
type Config struct {
	Threshold float64
	// Logger for tracing computation steps.
	Logger l.Logger
}

// Option defines a functional option for configuring the check.
type Option func(*Config)

// WithThreshold sets a custom threshold.
func WithThreshold(th float64) Option {
	return func(cfg *Config) {
		cfg.Threshold = th
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger l.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = logger
	}
}

// DefaultThreshold is the minimum mean score for a deck to pass.
const DefaultThreshold = 0.95

// FidelityCheck runs round-trip checks with a fixed configuration.
type FidelityCheck struct {
	config   Config
	analyzer *deck.Analyzer
}

// New creates a new FidelityCheck with the provided functional options.
// If no logger is provided, a default logger is created.
func New(opts ...Option) *FidelityCheck {
	cfg := Config{Threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		logger, err := createDefaultLogger()
		if err != nil {
			panic(err)
		}
		cfg.Logger = logger
	}
	analyzer, err := deck.New(deck.WithLogger(cfg.Logger))
	if err != nil {
		panic(err)
	}
	return &FidelityCheck{config: cfg, analyzer: analyzer}
}

// Check analyses deckText and scores its round trip. A deck without cards
// scores 0 and fails.
func (fc *FidelityCheck) Check(deckText string) Result {
	details := make(map[string]interface{})

	report, err := fc.analyzer.Analyze(context.Background(), "", deckText)
	if err != nil {
		fc.config.Logger.Error("Deck analysis failed", "error", err)
		details["error"] = err.Error()
		return Result{Name: "nec_fidelity", Threshold: fc.config.Threshold, Details: details}
	}

	if report.CardCount == 0 {
		fc.config.Logger.Error("Deck has no cards", "lines", report.LineCount)
		details["error"] = "deck has no cards"
		return Result{Name: "nec_fidelity", Threshold: fc.config.Threshold, Details: details}
	}

	score := report.Fidelity.Mean
	passed := score >= fc.config.Threshold && len(report.Errors) == 0

	details["deck_id"] = report.DeckID
	details["stddev"] = report.Fidelity.StdDev
	details["segments"] = len(report.Geometry)
	details["geometry_errors"] = len(report.GeometryErrors)
	if len(report.Errors) > 0 {
		details["errors"] = report.Errors
	}

	fc.config.Logger.Info("Computed deck fidelity",
		"score", score,
		"passed", passed,
		"details", details,
	)

	return Result{
		Name:       "nec_fidelity",
		Score:      score,
		Passed:     passed,
		CardCount:  report.CardCount,
		ErrorCount: len(report.Errors),
		Threshold:  fc.config.Threshold,
		Details:    details,
	}
}

// CheckWithDefaults runs a check using the default configuration.
func CheckWithDefaults(deckText string) Result {
	return New().Check(deckText)
}
