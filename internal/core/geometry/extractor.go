// Package geometry derives wire segments from GW cards for visualization.
package geometry

import (
	"fmt"
	"math"

	"github.com/baditaflorin/go_nec_fidelity/internal/core/domain"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/expr"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/parser"
	"github.com/baditaflorin/go_nec_fidelity/internal/ports"
)

// minWireTokens is tag, segment count and two endpoints.
const minWireTokens = 8

// Extractor rebuilds its own symbol table from the SY cards it is given, so it
// does not depend on any earlier resolution pass.
type Extractor struct {
	logger    ports.Logger
	resolver  ports.SymbolResolver
	evaluator ports.Evaluator
}

// NewExtractor creates a new geometry extractor.
func NewExtractor(logger ports.Logger, resolver ports.SymbolResolver, evaluator ports.Evaluator) *Extractor {
	return &Extractor{
		logger:    logger,
		resolver:  resolver,
		evaluator: evaluator,
	}
}

// Extract returns one segment per well-formed GW card plus the messages for
// the GW cards that could not be converted. A failing card produces no segment.
func (e *Extractor) Extract(cards []domain.Card) ([]domain.Segment, []string) {
	table := e.resolver.Resolve(symbolLines(cards))

	segments := []domain.Segment{}
	errs := []string{}
	for _, card := range cards {
		if card.Type != domain.TagWire {
			continue
		}
		tokens := wireTokens(card)
		if len(tokens) < minWireTokens {
			errs = append(errs, fmt.Sprintf("GW insufficient params on line %d: %v", card.LineNumber, tokens))
			continue
		}
		seg, err := e.segment(tokens, table)
		if err != nil {
			errs = append(errs, fmt.Sprintf("GW parse error on line %d, params %v: %v", card.LineNumber, tokens, err))
			continue
		}
		segments = append(segments, seg)
	}

	e.logger.Debug("Extracted geometry",
		"segments", len(segments),
		"errors", len(errs),
	)
	return segments, errs
}

func (e *Extractor) segment(tokens []string, table domain.SymbolTable) (domain.Segment, error) {
	n := minWireTokens
	if len(tokens) > minWireTokens {
		n = minWireTokens + 1
	}
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := e.evaluator.Evaluate(tokens[i], table)
		if err != nil {
			return domain.Segment{}, fmt.Errorf("token %d %q: %w", i, tokens[i], err)
		}
		values[i] = v
	}

	tag, err := expr.ToInt(values[0])
	if err != nil {
		return domain.Segment{}, fmt.Errorf("tag: %w", err)
	}
	count, err := expr.ToInt(values[1])
	if err != nil {
		return domain.Segment{}, fmt.Errorf("segments: %w", err)
	}
	if tag > math.MaxInt32 || tag < math.MinInt32 || count > math.MaxInt32 || count < math.MinInt32 {
		return domain.Segment{}, fmt.Errorf("tag %d or segment count %d out of range", tag, count)
	}

	seg := domain.Segment{
		Tag:      int(tag),
		Segments: int(count),
		Start:    [3]float64{values[2], values[3], values[4]},
		End:      [3]float64{values[5], values[6], values[7]},
	}
	if n > minWireTokens {
		r := values[8]
		seg.Radius = &r
	}
	seg.Length = distance(seg.Start, seg.End)
	return seg, nil
}

func distance(a, b [3]float64) float64 {
	dx, dy, dz := b[0]-a[0], b[1]-a[1], b[2]-a[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// wireTokens re-tokenizes the source line so symbolic fields are evaluated
// from their original text; synthesized cards fall back to their params.
func wireTokens(card domain.Card) []string {
	if card.RawContent == "" {
		return card.ParamStrings()
	}
	tokens := parser.Tokenize(card.RawContent)
	if len(tokens) == 0 {
		return nil
	}
	return tokens[1:]
}

func symbolLines(cards []domain.Card) []string {
	var lines []string
	for _, card := range cards {
		if card.Type != domain.TagSymbol {
			continue
		}
		if card.RawContent != "" {
			lines = append(lines, card.RawContent)
		} else {
			lines = append(lines, domain.TagSymbol+" "+card.Text)
		}
	}
	return lines
}
