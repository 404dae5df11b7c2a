package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeckNormalizer(t *testing.T) {
	n := NewDeckNormalizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii untouched", "GW 1 5 0 0 0 6 0 0 1.0\r\nEN", "GW 1 5 0 0 0 6 0 0 1.0\r\nEN"},
		{"bom stripped", "\ufeffCM hello\nEN", "CM hello\nEN"},
		{"full width folded", "ＧＷ\u3000１\u3000５", "GW 1 5"},
		{"nbsp to space", "GE\u00a00", "GE 0"},
		{"tabs kept", "GW\t1\t5", "GW\t1\t5"},
		{"controls dropped", "CM a\x00b\x07", "CM ab"},
		{"composed", "CM cafe\u0301", "CM caf\u00e9"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestPassthroughNormalizer(t *testing.T) {
	in := "\ufeffＧＷ"
	assert.Equal(t, in, NewPassthroughNormalizer().Normalize(in))
}
