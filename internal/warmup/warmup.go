package warmup

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/baditaflorin/go_nec_fidelity/internal/core/domain"
	"github.com/baditaflorin/go_nec_fidelity/internal/ports"
)

// Analyzer runs the whole deck pipeline on one text.
type Analyzer interface {
	Analyze(ctx context.Context, name, text string) (*domain.Report, error)
}

// WarmupConfig defines configuration for warming up the system
type WarmupConfig struct {
	// Number of concurrent warmup routines to run
	Concurrency int
	// Number of iterations per routine
	Iterations int
	// Number of cards in the sample deck
	SampleCards int
	// Warmup duration (0 means no time limit)
	Duration time.Duration
	// Whether to perform GC after warmup
	ForceGC bool
}

// DefaultWarmupConfig returns the default warmup configuration
func DefaultWarmupConfig() WarmupConfig {
	return WarmupConfig{
		Concurrency: runtime.NumCPU(),
		Iterations:  200,
		SampleCards: 200,
		Duration:    5 * time.Second,
		ForceGC:     true,
	}
}

// Manager handles system warmup operations
type Manager struct {
	logger      ports.Logger
	analyzers   []Analyzer
	lineSources []ports.LineSource
	normalizers []ports.Normalizer
	config      WarmupConfig
}

// NewManager creates a new warmup manager
func NewManager(logger ports.Logger, config WarmupConfig) *Manager {
	return &Manager{
		logger: logger,
		config: config,
	}
}

// RegisterAnalyzer adds an analyzer to be warmed up. It should not persist
// reports, or the sample decks end up in the store.
func (wm *Manager) RegisterAnalyzer(a Analyzer) {
	wm.analyzers = append(wm.analyzers, a)
}

// RegisterLineSource adds a line reader to be warmed up
func (wm *Manager) RegisterLineSource(src ports.LineSource) {
	wm.lineSources = append(wm.lineSources, src)
}

// RegisterNormalizer adds a normalizer to be warmed up
func (wm *Manager) RegisterNormalizer(norm ports.Normalizer) {
	wm.normalizers = append(wm.normalizers, norm)
}

// WarmUp runs the warmup process for all registered components and returns
// the number of decks analysed.
func (wm *Manager) WarmUp(ctx context.Context) int64 {
	startTime := time.Now()
	wm.logger.Info("Starting system warmup",
		"components", len(wm.analyzers)+len(wm.lineSources)+len(wm.normalizers),
		"concurrency", wm.config.Concurrency,
		"iterations", wm.config.Iterations,
	)

	// Create a context with timeout if duration is specified
	warmupCtx := ctx
	if wm.config.Duration > 0 {
		var cancel context.CancelFunc
		warmupCtx, cancel = context.WithTimeout(ctx, wm.config.Duration)
		defer cancel()
	}

	sample := GenerateSampleDeck(wm.config.SampleCards)

	wm.run(warmupCtx, len(wm.normalizers) > 0, func(int) {
		for _, n := range wm.normalizers {
			_ = n.Normalize(sample)
		}
	})

	wm.run(warmupCtx, len(wm.lineSources) > 0, func(int) {
		for _, src := range wm.lineSources {
			_, _, _ = src.ReadLines(warmupCtx, strings.NewReader(sample))
		}
	})

	var mu sync.Mutex
	var analysed int64
	edited := GenerateEditedDeck(sample, 0.1)
	wm.run(warmupCtx, len(wm.analyzers) > 0, func(j int) {
		text := sample
		if j%2 == 1 {
			text = edited
		}
		for _, a := range wm.analyzers {
			if _, err := a.Analyze(warmupCtx, "warmup", text); err != nil {
				return
			}
			mu.Lock()
			analysed++
			mu.Unlock()
		}
	})

	// Force garbage collection if configured
	if wm.config.ForceGC {
		wm.logger.Debug("Forcing garbage collection after warmup")
		runtime.GC()
	}

	wm.logger.Info("System warmup completed",
		"duration", time.Since(startTime),
		"decks", analysed,
	)
	return analysed
}

// run calls step Iterations times on each of Concurrency goroutines.
func (wm *Manager) run(ctx context.Context, enabled bool, step func(iteration int)) {
	if !enabled {
		return
	}
	concurrency := wm.config.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < wm.config.Iterations; j++ {
				select {
				case <-ctx.Done():
					return
				default:
				}
				step(j)
			}
		}()
	}
	wg.Wait()
}

// GenerateSampleDeck returns a well-formed deck with roughly cards cards,
// mixing comments, symbols, wires and control cards.
func GenerateSampleDeck(cards int) string {
	if cards < 4 {
		cards = 4
	}

	var sb strings.Builder
	sb.WriteString("CM generated sample deck\nCE\nSY H=0.5\n")
	wires := cards - 4
	for i := 0; i < wires; i++ {
		tag := i + 1
		switch i % 4 {
		case 0:
			fmt.Fprintf(&sb, "GW %d 11 0 %d.0 0 0 %d.0 H 0.001\n", tag, i, i)
		case 1:
			fmt.Fprintf(&sb, "GW %d 7 %d.5 0 0 %d.5 0 2*H\n", tag, i, i)
		case 2:
			fmt.Fprintf(&sb, "' wire %d\n", tag)
		default:
			fmt.Fprintf(&sb, "EX 0 %d 1 0 1.0 0\n", tag-1)
		}
	}
	sb.WriteString("EN\n")
	return sb.String()
}

// GenerateEditedDeck changes the segment count of about ratio of the GW cards.
func GenerateEditedDeck(deck string, ratio float64) string {
	lines := strings.Split(deck, "\n")
	var wires []int
	for i, line := range lines {
		if strings.HasPrefix(line, domain.TagWire+" ") {
			wires = append(wires, i)
		}
	}

	changeCount := int(float64(len(wires)) * ratio)
	for i := 0; i < changeCount; i++ {
		idx := wires[i]
		fields := strings.Fields(lines[idx])
		fields[2] = "13"
		lines[idx] = strings.Join(fields, " ")
	}
	return strings.Join(lines, "\n")
}
