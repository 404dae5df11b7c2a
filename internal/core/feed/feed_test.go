package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_nec_fidelity/internal/adapters/logger"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/domain"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/expr"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/parser"
)

func TestExtractFeedPoints(t *testing.T) {
	p, err := parser.NewParser(parser.DefaultConfig(), logger.NewNopLogger(), expr.NewEvaluator())
	require.NoError(t, err)
	cards, _ := p.Parse([]string{
		"GW 7 21 0 0 -5 0 0 5 0.001",
		"EX 0 3 11 0 1.0 0",
		"EX 0 1 11 0 1.0 0",
		"EX 0 3 5 0 1.0 0",
		"EX 0 x 1",
		"EX 0",
		"EN",
	}, nil)

	points := NewExtractor(logger.NewNopLogger()).Extract(cards)
	assert.Equal(t, []domain.FeedPoint{
		{SegmentTag: 1, LineNumber: 3},
		{SegmentTag: 3, LineNumber: 2},
	}, points)
}

func TestExtractTypedParam(t *testing.T) {
	cards := []domain.Card{{
		Type:       "EX",
		LineNumber: 9,
		Params:     []domain.Param{domain.IntParam(0), domain.IntParam(4)},
	}}
	points := NewExtractor(logger.NewNopLogger()).Extract(cards)
	assert.Equal(t, []domain.FeedPoint{{SegmentTag: 4, LineNumber: 9}}, points)
}

func TestExtractNoExcitation(t *testing.T) {
	points := NewExtractor(logger.NewNopLogger()).Extract([]domain.Card{{Type: "GE"}})
	assert.NotNil(t, points)
	assert.Empty(t, points)
}
