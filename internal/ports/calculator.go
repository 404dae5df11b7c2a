package ports

import (
	"github.com/baditaflorin/go_nec_fidelity/internal/core/domain"
)

// Evaluator computes a restricted arithmetic expression against a symbol table.
type Evaluator interface {
	Evaluate(expression string, table domain.SymbolTable) (float64, error)
}

// DeckParser turns deck lines into cards.
type DeckParser interface {
	Parse(lines []string, table domain.SymbolTable) ([]domain.Card, int)
}

// FidelityScorer compares original cards against their reconverted counterparts.
type FidelityScorer interface {
	Compare(original, reconverted []domain.Card) domain.FidelityReport
}

// SymbolResolver builds the symbol table from SY definitions.
type SymbolResolver interface {
	Resolve(lines []string) domain.SymbolTable
}
