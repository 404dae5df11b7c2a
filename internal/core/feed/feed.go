// Package feed lists the segment tags that EX cards excite.
package feed

import (
	"sort"
	"strconv"
	"strings"

	"github.com/baditaflorin/go_nec_fidelity/internal/core/domain"
	"github.com/baditaflorin/go_nec_fidelity/internal/ports"
)

// Extractor collects feed points from excitation cards.
type Extractor struct {
	logger ports.Logger
}

// NewExtractor creates a new feed-point extractor.
func NewExtractor(logger ports.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract returns one feed point per distinct segment tag, ordered by tag.
// The tag is the second EX parameter; cards where it is missing or not an
// integer are skipped. Repeated tags keep the line of their first card.
func (e *Extractor) Extract(cards []domain.Card) []domain.FeedPoint {
	seen := make(map[int]int)
	for _, card := range cards {
		if card.Type != domain.TagExcitation || len(card.Params) < 2 {
			continue
		}
		tag, ok := segmentTag(card.Params[1])
		if !ok {
			e.logger.Debug("Skipping EX card with non-integer segment tag",
				"line", card.LineNumber,
				"value", card.Params[1].String(),
			)
			continue
		}
		if _, dup := seen[tag]; !dup {
			seen[tag] = card.LineNumber
		}
	}

	points := make([]domain.FeedPoint, 0, len(seen))
	for tag, line := range seen {
		points = append(points, domain.FeedPoint{SegmentTag: tag, LineNumber: line})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].SegmentTag < points[j].SegmentTag })
	return points
}

func segmentTag(p domain.Param) (int, bool) {
	if p.Kind == domain.ParamInt {
		return int(p.Int), true
	}
	n, err := strconv.Atoi(strings.TrimSpace(p.String()))
	if err != nil {
		return 0, false
	}
	return n, true
}
