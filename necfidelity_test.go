package necfidelity

import (
	"testing"
)

func TestCheckWithDefaults(t *testing.T) {
	tests := []struct {
		name     string
		deck     string
		expected bool // whether the deck should pass with the default threshold
	}{
		{
			name:     "Well-formed dipole",
			deck:     "CM dipole\nCE\nSY L=5\nGW 1 21 0 0 -L 0 0 L 0.001\nGE 0\nFR 0 1 0 0 14.2 0\nEN\n",
			expected: true,
		},
		{
			name:     "Apostrophe comments",
			deck:     "' this is a note\nGE 0\nEN",
			expected: true,
		},
		{
			name: "Short FR card",
			deck: "GE 0\nFR 0 1 0 0 14.0\nEN",
			// Round trip is exact but the card is invalid.
			expected: false,
		},
		{
			name:     "Empty deck",
			deck:     "* only a comment\n\n",
			expected: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := CheckWithDefaults(tc.deck)
			if result.Passed != tc.expected {
				t.Errorf("expected passed=%v, got %v, details: %v", tc.expected, result.Passed, result.Details)
			}
		})
	}
}

func TestCheckScore(t *testing.T) {
	result := New(WithThreshold(0.5)).Check("GW 1 5 0 0 0 6 0 0 1.0\nEN")
	if result.Score != 1.0 {
		t.Errorf("expected score 1.0, got %v", result.Score)
	}
	if result.CardCount != 2 {
		t.Errorf("expected 2 cards, got %d", result.CardCount)
	}
	if result.Threshold != 0.5 {
		t.Errorf("expected threshold 0.5, got %v", result.Threshold)
	}
}
