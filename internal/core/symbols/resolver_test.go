package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baditaflorin/go_nec_fidelity/internal/adapters/logger"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/domain"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/expr"
)

func newTestResolver() *Resolver {
	return NewResolver(logger.NewNopLogger(), expr.NewEvaluator())
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  domain.SymbolTable
	}{
		{
			name:  "chained definitions",
			lines: []string{"SY A=2", "SY B=A*3", "GW 1 5 0 0 0 B 0 0 1.0"},
			want:  domain.SymbolTable{"A": 2, "B": 6},
		},
		{
			name:  "last write wins",
			lines: []string{"SY A=2", "SY A=5"},
			want:  domain.SymbolTable{"A": 5},
		},
		{
			name:  "forward reference skipped",
			lines: []string{"SY B=A+1", "SY A=1"},
			want:  domain.SymbolTable{"A": 1},
		},
		{
			name:  "failed definition does not stop the scan",
			lines: []string{"SY A=1/0", "SY C=3"},
			want:  domain.SymbolTable{"C": 3},
		},
		{
			name:  "case insensitive tag and spacing",
			lines: []string{"  sy  len = 1.5 ", "Sy\thalf=len/2"},
			want:  domain.SymbolTable{"len": 1.5, "half": 0.75},
		},
		{
			name:  "only first equals splits",
			lines: []string{"SY A=1=2"},
			want:  domain.SymbolTable{},
		},
		{
			name:  "no assignment",
			lines: []string{"SY A", "SYMBOL=3", "CM SY A=1"},
			want:  domain.SymbolTable{},
		},
		{
			name:  "empty input",
			lines: nil,
			want:  domain.SymbolTable{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, newTestResolver().Resolve(tc.lines))
		})
	}
}

func TestResolveDeterministic(t *testing.T) {
	lines := []string{"SY A=2", "SY B=A**2", "SY A=B-1", "SY C=(A+B)/2"}
	r := newTestResolver()
	first := r.Resolve(lines)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, r.Resolve(lines))
	}
	assert.Equal(t, domain.SymbolTable{"A": 3, "B": 4, "C": 3.5}, first)
}

func TestRemainder(t *testing.T) {
	rest, ok := Remainder("SY A=2")
	assert.True(t, ok)
	assert.Equal(t, "A=2", rest)

	rest, ok = Remainder("SY,A=2")
	assert.True(t, ok)
	assert.Equal(t, "A=2", rest)

	rest, ok = Remainder("SY")
	assert.True(t, ok)
	assert.Equal(t, "", rest)

	_, ok = Remainder("SYM A=2")
	assert.False(t, ok)

	_, ok = Remainder("GW 1 2")
	assert.False(t, ok)
}
