// Package fidelity scores how closely a reconverted deck matches its original.
//
// Each card pair gets three signals in [0,1]:
//
//	similarity       = 2*M / (len(a)+len(b))   over the raw lines, M = matched code points
//	field count      = 1 - |len_o - len_r| / max(len_o, len_r, 1)
//	value alignment  = equal positions / max(len_o, len_r, 1), or text equality for CM/CE/SY
//
// and the overall score is their mean.
package fidelity

import (
	"math"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/baditaflorin/go_nec_fidelity/internal/core/domain"
	"github.com/baditaflorin/go_nec_fidelity/internal/ports"
)

// ScorerConfig holds configuration for the fidelity scorer.
type ScorerConfig struct {
	// AutoJunk enables difflib's popular-element heuristic for lines of 200+ code points.
	AutoJunk bool
}

// DefaultConfig returns a default configuration.
func DefaultConfig() ScorerConfig {
	return ScorerConfig{AutoJunk: true}
}

// Scorer implements ports.FidelityScorer.
type Scorer struct {
	config ScorerConfig
	logger ports.Logger
}

// NewScorer creates a new fidelity scorer.
func NewScorer(config ScorerConfig, logger ports.Logger) *Scorer {
	return &Scorer{config: config, logger: logger}
}

// Compare scores original against reconverted position by position. Cards
// beyond the shorter sequence are ignored.
func (s *Scorer) Compare(original, reconverted []domain.Card) domain.FidelityReport {
	n := len(original)
	if len(reconverted) < n {
		n = len(reconverted)
	}
	if len(original) != len(reconverted) {
		s.logger.Debug("Card counts differ, comparing common prefix",
			"original", len(original),
			"reconverted", len(reconverted),
		)
	}

	results := make([]domain.FidelityResult, 0, n)
	scores := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		r := s.compareCards(original[i], reconverted[i])
		results = append(results, r)
		scores = append(scores, r.OverallScore)
	}

	mean, stddev := meanStdDev(scores)
	s.logger.Debug("Computed deck fidelity",
		"pairs", n,
		"mean", mean,
		"stddev", stddev,
	)
	return domain.FidelityReport{Results: results, Mean: mean, StdDev: stddev}
}

func (s *Scorer) compareCards(o, r domain.Card) domain.FidelityResult {
	lenO, lenR := len(o.Params), len(r.Params)
	denom := float64(maxInt(lenO, lenR, 1))

	sim := s.Similarity(o.RawContent, r.RawContent)
	countScore := 1 - math.Abs(float64(lenO-lenR))/denom

	var align float64
	if domain.IsTextCard(o.Type) {
		if strings.TrimSpace(o.Text) == strings.TrimSpace(r.Text) {
			align = 1
		}
	} else {
		matches := 0
		for i := 0; i < lenO && i < lenR; i++ {
			if o.Params[i].String() == r.Params[i].String() {
				matches++
			}
		}
		align = float64(matches) / denom
	}

	return domain.FidelityResult{
		LineNumber:          o.LineNumber,
		Type:                o.Type,
		ActualParams:        lenO,
		Similarity:          sim,
		FieldCountScore:     countScore,
		ValueAlignmentScore: align,
		OverallScore:        (sim + countScore + align) / 3,
	}
}

// Similarity returns the difflib matching-block ratio of a and b over code points.
// Two empty strings are identical.
func (s *Scorer) Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	m := difflib.NewMatcherWithJunk(codePoints(a), codePoints(b), s.config.AutoJunk, nil)
	return m.Ratio()
}

func codePoints(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func meanStdDev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}

func maxInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
