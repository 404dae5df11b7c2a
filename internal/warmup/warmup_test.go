package warmup

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_nec_fidelity/internal/adapters/logger"
	"github.com/baditaflorin/go_nec_fidelity/internal/adapters/normalizer"
	"github.com/baditaflorin/go_nec_fidelity/internal/adapters/stream/lineprocessor"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/domain"
)

type countingAnalyzer struct {
	calls int64
}

func (c *countingAnalyzer) Analyze(_ context.Context, name, text string) (*domain.Report, error) {
	atomic.AddInt64(&c.calls, 1)
	return &domain.Report{Name: name}, nil
}

func smallConfig() WarmupConfig {
	return WarmupConfig{Concurrency: 2, Iterations: 5, SampleCards: 20, ForceGC: true}
}

func TestWarmUpRunsEveryComponent(t *testing.T) {
	a := &countingAnalyzer{}
	m := NewManager(logger.NewNopLogger(), smallConfig())
	m.RegisterAnalyzer(a)
	m.RegisterNormalizer(normalizer.NewDeckNormalizer())
	m.RegisterLineSource(lineprocessor.NewProcessor(logger.NewNopLogger(), lineprocessor.ProcessingConfig{}))

	n := m.WarmUp(context.Background())
	assert.Equal(t, int64(10), n)
	assert.Equal(t, int64(10), atomic.LoadInt64(&a.calls))
}

func TestWarmUpStopsOnCancel(t *testing.T) {
	a := &countingAnalyzer{}
	m := NewManager(logger.NewNopLogger(), smallConfig())
	m.RegisterAnalyzer(a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, int64(0), m.WarmUp(ctx))
}

func TestWarmUpNothingRegistered(t *testing.T) {
	cfg := smallConfig()
	cfg.Duration = time.Second
	assert.Equal(t, int64(0), NewManager(logger.NewNopLogger(), cfg).WarmUp(context.Background()))
}

func TestGenerateSampleDeck(t *testing.T) {
	deck := GenerateSampleDeck(20)
	lines := strings.Split(strings.TrimSuffix(deck, "\n"), "\n")
	require.Len(t, lines, 20)
	assert.Equal(t, "CM generated sample deck", lines[0])
	assert.Equal(t, "EN", lines[len(lines)-1])
	assert.Equal(t, "GW 1 11 0 0.0 0 0 0.0 H 0.001", lines[3])

	assert.Len(t, strings.Split(strings.TrimSuffix(GenerateSampleDeck(0), "\n"), "\n"), 4)
}

func TestGenerateEditedDeck(t *testing.T) {
	deck := GenerateSampleDeck(44) // 20 GW cards
	edited := GenerateEditedDeck(deck, 0.1)
	assert.NotEqual(t, deck, edited)
	assert.Contains(t, edited, "GW 1 13 0 0.0 0 0 0.0 H 0.001\n")
	assert.Contains(t, edited, "GW 2 13 1.5 0 0 1.5 0 2*H\n")
	assert.Contains(t, edited, "GW 5 11 ")
	assert.Equal(t, deck, GenerateEditedDeck(deck, 0))
}
