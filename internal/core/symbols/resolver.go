// Package symbols builds the SY symbol table in a single forward pass.
package symbols

import (
	"strings"

	"github.com/baditaflorin/go_nec_fidelity/internal/core/domain"
	"github.com/baditaflorin/go_nec_fidelity/internal/ports"
)

// Resolver collects SY definitions in file order. A definition may only
// reference names defined above it; redefinitions overwrite.
type Resolver struct {
	logger    ports.Logger
	evaluator ports.Evaluator
}

// NewResolver creates a resolver that evaluates definitions with evaluator.
func NewResolver(logger ports.Logger, evaluator ports.Evaluator) *Resolver {
	return &Resolver{logger: logger, evaluator: evaluator}
}

// Resolve scans lines and returns the completed table. Definitions that fail
// to evaluate are skipped.
func (r *Resolver) Resolve(lines []string) domain.SymbolTable {
	table := make(domain.SymbolTable)
	for i, line := range lines {
		rest, ok := Remainder(line)
		if !ok {
			continue
		}
		name, expression, found := strings.Cut(rest, "=")
		if !found {
			r.logger.Debug("SY card without assignment", "line", i+1, "content", rest)
			continue
		}
		name = strings.TrimSpace(name)
		value, err := r.evaluator.Evaluate(expression, table)
		if err != nil {
			r.logger.Debug("Skipping SY definition", "line", i+1, "name", name, "error", err)
			continue
		}
		table[name] = value
	}
	r.logger.Debug("Resolved symbols", "count", len(table))
	return table
}

// Remainder reports whether line is an SY card and returns the text after the
// tag with leading separators removed.
func Remainder(line string) (string, bool) {
	s := strings.TrimSpace(line)
	if len(s) < 2 || !strings.EqualFold(s[:2], domain.TagSymbol) {
		return "", false
	}
	if len(s) > 2 && isWordByte(s[2]) {
		return "", false
	}
	return strings.TrimLeft(s[2:], " \t,"), true
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}
