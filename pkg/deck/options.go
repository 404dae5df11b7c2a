package deck

import (
	"fmt"
	"strings"

	"github.com/baditaflorin/go_nec_fidelity/internal/adapters/logger"
	"github.com/baditaflorin/go_nec_fidelity/internal/adapters/normalizer"
	"github.com/baditaflorin/go_nec_fidelity/internal/config"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/domain"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/fidelity"
	"github.com/baditaflorin/go_nec_fidelity/internal/core/parser"
	"github.com/baditaflorin/go_nec_fidelity/internal/ports"
	"github.com/baditaflorin/l"
)

// Field describes one positional field of a card type.
type Field = parser.Field

// Field kinds accepted by WithFieldSpec.
const (
	Int   = domain.ParamInt
	Float = domain.ParamFloat
)

// Option defines a functional option for configuring an Analyzer.
type Option func(*analyzerConfig)

type analyzerConfig struct {
	Logger        ports.Logger
	Normalizer    ports.Normalizer
	Store         ports.ReportStore
	CommentMarker string
	Specs         map[string]parser.CardSpec
	AutoJunk      bool
	ChunkSize     int
	specErr       error
}

func defaultAnalyzerConfig() *analyzerConfig {
	return &analyzerConfig{
		CommentMarker: parser.DefaultCommentMarker,
		Specs:         parser.DefaultSpecs(),
		AutoJunk:      fidelity.DefaultConfig().AutoJunk,
	}
}

func (c *analyzerConfig) setDefaults() error {
	if c.specErr != nil {
		return c.specErr
	}
	if c.Logger == nil {
		var err error
		c.Logger, err = logger.NewStdLogger()
		if err != nil {
			return err
		}
	}
	if c.Normalizer == nil {
		c.Normalizer = normalizer.NewDeckNormalizer()
	}
	return nil
}

// WithLogger sets a custom logger.
func WithLogger(l l.Logger) Option {
	return func(cfg *analyzerConfig) {
		cfg.Logger = logger.FromExisting(l)
	}
}

// WithPortLogger sets a logger already adapted to ports.Logger.
func WithPortLogger(log ports.Logger) Option {
	return func(cfg *analyzerConfig) {
		cfg.Logger = log
	}
}

// WithNopLogger discards all log output.
func WithNopLogger() Option {
	return WithPortLogger(logger.NewNopLogger())
}

// WithNormalizer sets a custom text normalizer.
func WithNormalizer(n ports.Normalizer) Option {
	return func(cfg *analyzerConfig) {
		cfg.Normalizer = n
	}
}

// WithoutNormalization feeds deck text to the parser unchanged.
func WithoutNormalization() Option {
	return WithNormalizer(normalizer.NewPassthroughNormalizer())
}

// WithStore persists every analysed report.
func WithStore(store ports.ReportStore) Option {
	return func(cfg *analyzerConfig) {
		cfg.Store = store
	}
}

// WithCommentMarker sets the prefix of lines that are skipped entirely.
// An empty marker disables skipping.
func WithCommentMarker(marker string) Option {
	return func(cfg *analyzerConfig) {
		cfg.CommentMarker = marker
	}
}

// WithFieldSpec registers or replaces the field specification for a card tag.
func WithFieldSpec(tag string, fields ...Field) Option {
	return func(cfg *analyzerConfig) {
		specs := make(map[string]parser.CardSpec, len(cfg.Specs)+1)
		for k, v := range cfg.Specs {
			specs[k] = v
		}
		specs[strings.ToUpper(tag)] = parser.CardSpec(fields)
		cfg.Specs = specs
	}
}

// WithAutoJunk toggles difflib's popular-element heuristic in similarity scoring.
func WithAutoJunk(enable bool) Option {
	return func(cfg *analyzerConfig) {
		cfg.AutoJunk = enable
	}
}

// WithChunkSize sets the read size used when splitting deck text into lines.
func WithChunkSize(size int) Option {
	return func(cfg *analyzerConfig) {
		cfg.ChunkSize = size
	}
}

// WithParserConfig applies the parser section of a configuration file.
func WithParserConfig(pc config.ParserConfig) Option {
	return func(cfg *analyzerConfig) {
		cfg.CommentMarker = pc.CommentMarker
		cfg.AutoJunk = pc.AutoJunk
		if !pc.Normalize {
			cfg.Normalizer = normalizer.NewPassthroughNormalizer()
		}
		for tag, fields := range pc.Cards {
			spec := make([]Field, 0, len(fields))
			for _, f := range fields {
				kind, err := parseKind(f.Kind)
				if err != nil {
					cfg.specErr = fmt.Errorf("card %s field %s: %w", tag, f.Name, err)
					return
				}
				spec = append(spec, Field{Name: f.Name, Kind: kind, Required: f.Required})
			}
			WithFieldSpec(tag, spec...)(cfg)
		}
	}
}

func parseKind(kind string) (domain.ParamKind, error) {
	switch strings.ToLower(kind) {
	case "int":
		return domain.ParamInt, nil
	case "float":
		return domain.ParamFloat, nil
	}
	return 0, fmt.Errorf("unknown field kind %q", kind)
}
