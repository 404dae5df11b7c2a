// Package parser turns NEC deck lines into typed cards.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/baditaflorin/go_nec_fidelity/internal/core/domain"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/expr"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/symbols"
	"github.com/baditaflorin/go_nec_fidelity/internal/ports"
)

// DefaultCommentMarker starts lines that are dropped without producing a card.
const DefaultCommentMarker = "*"

var separators = regexp.MustCompile(`[\s,]+`)

// Config holds configuration for the deck parser.
type Config struct {
	// CommentMarker prefixes lines that are skipped entirely. Empty disables skipping.
	CommentMarker string
	// Specs maps upper-case card tags to their field specifications.
	Specs map[string]CardSpec
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		CommentMarker: DefaultCommentMarker,
		Specs:         DefaultSpecs(),
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if strings.HasPrefix(c.CommentMarker, "'") {
		return errors.New("comment marker must not start with an apostrophe")
	}
	for tag, spec := range c.Specs {
		if tag != strings.ToUpper(tag) {
			return fmt.Errorf("card tag %q must be upper case", tag)
		}
		if domain.IsTextCard(tag) {
			return fmt.Errorf("card tag %s carries text and cannot have a field spec", tag)
		}
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("card %s: %w", tag, err)
		}
	}
	return nil
}

// Parser implements the deck parsing rules. It holds no per-deck state and is
// safe for concurrent use.
type Parser struct {
	config    Config
	logger    ports.Logger
	evaluator ports.Evaluator
}

// NewParser creates a new deck parser.
func NewParser(config Config, logger ports.Logger, evaluator ports.Evaluator) (*Parser, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Parser{
		config:    config,
		logger:    logger,
		evaluator: evaluator,
	}, nil
}

// Parse converts lines into cards. Numeric fields are evaluated against table.
// Blank and comment-marker lines are dropped but still count towards line numbers.
func (p *Parser) Parse(lines []string, table domain.SymbolTable) ([]domain.Card, int) {
	cards := make([]domain.Card, 0, len(lines))
	invalid := 0
	for i, raw := range lines {
		card, ok := p.parseLine(i+1, raw, table)
		if !ok {
			continue
		}
		if !card.Valid() {
			invalid++
		}
		cards = append(cards, card)
	}

	p.logger.Debug("Parsed deck",
		"lines", len(lines),
		"cards", len(cards),
		"invalid_cards", invalid,
	)
	return cards, len(cards)
}

func (p *Parser) parseLine(lineNumber int, raw string, table domain.SymbolTable) (domain.Card, bool) {
	stripped := strings.TrimSpace(raw)
	if stripped == "" {
		return domain.Card{}, false
	}
	if p.config.CommentMarker != "" && strings.HasPrefix(stripped, p.config.CommentMarker) {
		return domain.Card{}, false
	}

	card := domain.Card{
		LineNumber: lineNumber,
		RawContent: stripped,
		Params:     []domain.Param{},
		Errors:     []string{},
	}

	if strings.HasPrefix(stripped, "'") {
		card.Type = domain.TagComment
		card.Text = strings.TrimSpace(stripped[1:])
		return card, true
	}

	tokens := Tokenize(stripped)
	if len(tokens) == 0 {
		return card, true
	}
	card.Type = strings.ToUpper(tokens[0])
	args := tokens[1:]

	switch card.Type {
	case domain.TagComment, domain.TagCommentEnd:
		card.Text = strings.Join(args, " ")
		return card, true
	case domain.TagSymbol:
		card.Text, _ = symbols.Remainder(stripped)
		return card, true
	}

	spec, ok := p.config.Specs[card.Type]
	if !ok {
		for _, tok := range args {
			card.Params = append(card.Params, domain.StringParam(tok))
		}
		return card, true
	}

	for i, tok := range args {
		if i >= len(spec) {
			card.Params = append(card.Params, domain.StringParam(tok))
			continue
		}
		param, err := p.convert(tok, spec[i].Kind, table)
		if err != nil {
			card.Errors = append(card.Errors, fmt.Sprintf("Failed to eval '%s': %v", tok, err))
			card.Params = append(card.Params, domain.StringParam(tok))
			continue
		}
		card.Params = append(card.Params, param)
	}

	if n := len(card.Params); n < spec.Required() || n > len(spec) {
		card.Errors = append(card.Errors, fmt.Sprintf("Expected %d-%d params, got %d", spec.Required(), len(spec), n))
	}
	if len(card.Errors) > 0 {
		p.logger.Debug("Card failed validation",
			"line", lineNumber,
			"type", card.Type,
			"errors", card.Errors,
		)
	}
	return card, true
}

func (p *Parser) convert(tok string, kind domain.ParamKind, table domain.SymbolTable) (domain.Param, error) {
	v, err := p.evaluator.Evaluate(tok, table)
	if err != nil {
		return domain.Param{}, err
	}
	if kind == domain.ParamInt {
		n, err := expr.ToInt(v)
		if err != nil {
			return domain.Param{}, err
		}
		return domain.IntParam(n), nil
	}
	return domain.FloatParam(v), nil
}

// Tokenize splits a card line into its tag and raw parameter tokens. Lines
// containing a tab are split on tabs; otherwise on runs of whitespace and commas.
// Empty tokens are discarded.
func Tokenize(line string) []string {
	s := strings.TrimSpace(line)
	var parts []string
	if strings.ContainsRune(s, '\t') {
		parts = strings.Split(s, "\t")
	} else {
		parts = separators.Split(s, -1)
	}
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}
