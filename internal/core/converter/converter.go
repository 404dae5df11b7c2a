// Package converter rebuilds deck lines from parsed cards.
package converter

import (
	"github.com/baditaflorin/go_nec_fidelity/internal/core/domain"
	"github.com/baditaflorin/go_nec_fidelity/internal/pool"
	"github.com/baditaflorin/go_nec_fidelity/internal/ports"
)

// Converter emits one line per card. Cards with source text are passed through
// byte for byte; others are synthesized as tab-separated fields.
type Converter struct {
	logger   ports.Logger
	builders *pool.StringBuilderPool
}

// NewConverter creates a new converter.
func NewConverter(logger ports.Logger) *Converter {
	return &Converter{
		logger:   logger,
		builders: pool.NewStringBuilderPool(),
	}
}

// Convert returns the deck lines for cards, in order.
func (c *Converter) Convert(cards []domain.Card) []string {
	lines := make([]string, 0, len(cards))
	synthesized := 0
	for _, card := range cards {
		if card.RawContent != "" {
			lines = append(lines, card.RawContent)
			continue
		}
		lines = append(lines, c.synthesize(card))
		synthesized++
	}
	c.logger.Debug("Converted cards to deck lines",
		"cards", len(cards),
		"synthesized", synthesized,
	)
	return lines
}

func (c *Converter) synthesize(card domain.Card) string {
	sb := c.builders.Get()
	defer c.builders.Put(sb)

	sb.WriteString(card.Type)
	if len(card.Params) == 0 && domain.IsTextCard(card.Type) && card.Text != "" {
		sb.WriteByte('\t')
		sb.WriteString(card.Text)
		return sb.String()
	}
	for _, p := range card.Params {
		sb.WriteByte('\t')
		sb.WriteString(p.String())
	}
	return sb.String()
}
