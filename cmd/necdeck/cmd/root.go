package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/baditaflorin/go_nec_fidelity/internal/adapters/bbolt"
	"github.com/baditaflorin/go_nec_fidelity/internal/adapters/logger"
	"github.com/baditaflorin/go_nec_fidelity/internal/config"
	"github.com/baditaflorin/go_nec_fidelity/internal/ports"
	"github.com/baditaflorin/go_nec_fidelity/pkg/deck"
	"github.com/baditaflorin/l"
)

var (
	configPath string
	storePath  string
	verbose    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:          "necdeck",
	Short:        "NEC deck validation and round-trip fidelity",
	Long:         "Parses NEC antenna decks, resolves SY symbols, rebuilds the deck and scores the rebuild, and extracts wire geometry.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "report database (overrides store.path)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline steps to stderr or log.file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(symbolsCmd)
	rootCmd.AddCommand(geometryCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
}

// session bundles what a command needs and releases it on close.
type session struct {
	cfg      config.Config
	logger   ports.Logger
	store    ports.ReportStore
	analyzer *deck.Analyzer
}

func (s *session) close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("Closing report store failed", "error", err)
		}
	}
	s.logger.Close()
}

// openSession loads the config, applies flag overrides and builds the analyzer.
// withStore opens the report database when one is configured.
func openSession(withStore bool) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if storePath != "" {
		cfg.Store.Path = storePath
	}

	log := logger.NewNopLogger()
	if verbose {
		base, err := createLogger(cfg.Log)
		if err != nil {
			return nil, err
		}
		log = logger.FromExisting(base)
	}

	s := &session{cfg: cfg, logger: log}
	opts := []deck.Option{deck.WithPortLogger(log), deck.WithParserConfig(cfg.Parser)}
	if withStore && cfg.Store.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
			s.close()
			return nil, fmt.Errorf("create store directory: %w", err)
		}
		store, err := bbolt.NewStore(cfg.Store.Path)
		if err != nil {
			s.close()
			return nil, err
		}
		s.store = store
		opts = append(opts, deck.WithStore(store))
	}

	s.analyzer, err = deck.New(opts...)
	if err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

// readDeck reads a deck file, or stdin for "-".
func readDeck(cmd *cobra.Command, path string) (string, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// analyzeFile reads and analyses one deck.
func analyzeFile(ctx context.Context, cmd *cobra.Command, s *session, path string) (*deck.Report, error) {
	text, err := readDeck(cmd, path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	if path == "-" {
		name = "stdin"
	}
	return s.analyzer.Analyze(ctx, name, text)
}

// createLogger creates and configures a logger
func createLogger(cfg config.LogConfig) (l.Logger, error) {
	factory := l.NewStandardFactory()

	var output io.Writer = os.Stderr
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	logger, err := factory.CreateLogger(l.Config{
		Output:      output,
		JsonFormat:  cfg.JSON,
		AsyncWrite:  false,
		BufferSize:  1024 * 1024,       // 1MB
		MaxFileSize: 100 * 1024 * 1024, // 100MB
		MaxBackups:  5,
		AddSource:   cfg.AddSource,
		Metrics:     false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
