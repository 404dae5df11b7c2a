package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/baditaflorin/go_nec_fidelity/internal/adapters/bbolt"
	"github.com/baditaflorin/go_nec_fidelity/internal/adapters/logger"
	"github.com/baditaflorin/go_nec_fidelity/internal/adapters/normalizer"
	"github.com/baditaflorin/go_nec_fidelity/internal/adapters/stream/lineprocessor"
	"github.com/baditaflorin/go_nec_fidelity/internal/config"
	"github.com/baditaflorin/go_nec_fidelity/internal/ports"
	"github.com/baditaflorin/go_nec_fidelity/internal/warmup"
	"github.com/baditaflorin/go_nec_fidelity/pkg/deck"
	"github.com/baditaflorin/l"
	"github.com/valyala/fasthttp"
)

// Default configuration
const (
	DefaultConcurrency = 0 // 0 means use GOMAXPROCS
	DefaultTimeout     = 30 * time.Second
)

var (
	// Deck analyzer shared by all handlers
	analyzer *deck.Analyzer

	// Logger instance
	log ports.Logger
)

// Request carries a deck to analyse.
type Request struct {
	Name string `json:"name,omitempty"`
	Deck string `json:"deck"`
}

// ConvertResponse is the body of /convert.
type ConvertResponse struct {
	Lines     []string `json:"lines"`
	CardCount int      `json:"card_count"`
}

// GeometryResponse is the body of /geometry.
type GeometryResponse struct {
	Segments   []deck.Segment   `json:"segments"`
	Errors     []string         `json:"errors"`
	FeedPoints []deck.FeedPoint `json:"feed_points"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "YAML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides server.port)")
	storePath := flag.String("store", "", "report database (overrides store.path)")
	concurrency := flag.Int("concurrency", DefaultConcurrency, "Maximum number of concurrent requests (0 = GOMAXPROCS)")
	logFile := flag.String("log-file", "", "Log file path (overrides log.file)")
	enableWarmup := flag.Bool("warmup", false, "Run the analysis pipeline on sample decks before serving")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *storePath != "" {
		cfg.Store.Path = *storePath
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}

	// Set up logger
	base, err := createLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	log = logger.FromExisting(base)
	defer log.Close()

	log.Info("Starting NEC deck HTTP server",
		"port", cfg.Server.Port,
		"read_timeout", cfg.Server.ReadTimeout,
		"write_timeout", cfg.Server.WriteTimeout,
		"max_request_size", cfg.Server.MaxRequestSize,
		"concurrency", *concurrency,
		"store", cfg.Store.Path,
	)

	opts := []deck.Option{deck.WithPortLogger(log), deck.WithParserConfig(cfg.Parser)}
	if cfg.Store.Path != "" {
		store, err := bbolt.NewStore(cfg.Store.Path)
		if err != nil {
			log.Error("Failed to open report store", "path", cfg.Store.Path, "error", err)
			os.Exit(1)
		}
		defer store.Close()
		opts = append(opts, deck.WithStore(store))
	}
	analyzer, err = deck.New(opts...)
	if err != nil {
		log.Error("Failed to initialize deck analyzer", "error", err)
		os.Exit(1)
	}

	if *enableWarmup {
		if err := warmUp(cfg.Parser); err != nil {
			log.Error("Warmup failed", "error", err)
			os.Exit(1)
		}
	}

	// Create HTTP server with fasthttp
	server := &fasthttp.Server{
		Handler:               requestHandler,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		MaxRequestBodySize:    cfg.Server.MaxRequestSize,
		Concurrency:           *concurrency,
		DisableKeepalive:      false,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxIdleWorkerDuration: 10 * time.Second,
		Logger:                nil, // we'll handle logging ourselves
	}

	// Set up graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("Shutting down server...")
		if err := server.Shutdown(); err != nil {
			log.Error("Error during server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Server listening", "address", addr)
	if err := server.ListenAndServe(addr); err != nil {
		log.Error("Server error", "error", err)
	}

	<-idleConnsClosed
	log.Info("Server stopped")
}

// warmUp exercises a store-less copy of the pipeline so pools and the line
// reader buffers are populated before the first request.
func warmUp(pc config.ParserConfig) error {
	warm, err := deck.New(deck.WithNopLogger(), deck.WithParserConfig(pc))
	if err != nil {
		return err
	}
	manager := warmup.NewManager(log, warmup.DefaultWarmupConfig())
	manager.RegisterAnalyzer(warm)
	manager.RegisterNormalizer(normalizer.NewDeckNormalizer())
	manager.RegisterLineSource(lineprocessor.NewProcessor(log, lineprocessor.ProcessingConfig{}))
	manager.WarmUp(context.Background())
	return nil
}

// requestHandler is the main fasthttp request handler
func requestHandler(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	// Set common headers
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.Response.Header.Set("Server", "NecDeckServer")

	// Route based on path
	switch string(ctx.Path()) {
	case "/health":
		handleHealthCheck(ctx)
	case "/analyze":
		handleAnalyze(ctx)
	case "/convert":
		handleConvert(ctx)
	case "/geometry":
		handleGeometry(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		writeJSONError(ctx, "Not found")
	}

	// Log request
	log.Info("Request processed",
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", time.Since(startTime),
	)
}

// handleHealthCheck responds to health check requests
func handleHealthCheck(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	response := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
	writeJSONResponse(ctx, response)
}

// handleAnalyze runs the full pipeline and returns the report.
func handleAnalyze(ctx *fasthttp.RequestCtx) {
	req, ok := parseRequest(ctx)
	if !ok {
		return
	}

	c, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	report, err := analyzer.Analyze(c, req.Name, req.Deck)
	if err != nil && report == nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		writeJSONError(ctx, "Analysis failed: "+err.Error())
		return
	}
	if err != nil {
		// the report is complete, only persisting it failed
		ctx.Response.Header.Set("X-Report-Stored", "false")
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, report)
}

// handleConvert returns the deck rebuilt from its parsed cards.
func handleConvert(ctx *fasthttp.RequestCtx) {
	req, ok := parseRequest(ctx)
	if !ok {
		return
	}
	lines, ok := splitLines(ctx, req.Deck)
	if !ok {
		return
	}

	cards, count := analyzer.Parse(lines, analyzer.ResolveSymbols(lines))
	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, ConvertResponse{
		Lines:     analyzer.Convert(cards),
		CardCount: count,
	})
}

// handleGeometry returns the wire segments and feed points of a deck.
func handleGeometry(ctx *fasthttp.RequestCtx) {
	req, ok := parseRequest(ctx)
	if !ok {
		return
	}
	lines, ok := splitLines(ctx, req.Deck)
	if !ok {
		return
	}

	cards, _ := analyzer.Parse(lines, analyzer.ResolveSymbols(lines))
	segments, geomErrs := analyzer.ExtractGeometry(cards)
	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, GeometryResponse{
		Segments:   segments,
		Errors:     geomErrs,
		FeedPoints: analyzer.FeedPoints(cards),
	})
}

// Helper functions

// parseRequest accepts a JSON Request, or a raw deck when the body is not JSON.
func parseRequest(ctx *fasthttp.RequestCtx) (Request, bool) {
	// Only accept POST requests
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return Request{}, false
	}

	var req Request
	body := ctx.PostBody()
	if strings.HasPrefix(string(ctx.Request.Header.ContentType()), "application/json") {
		if err := json.Unmarshal(body, &req); err != nil {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			writeJSONError(ctx, "Invalid request: "+err.Error())
			return Request{}, false
		}
	} else {
		req.Deck = string(body)
		req.Name = string(ctx.QueryArgs().Peek("name"))
	}

	if req.Deck == "" {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Deck text is required")
		return Request{}, false
	}
	return req, true
}

func splitLines(ctx *fasthttp.RequestCtx, text string) ([]string, bool) {
	c, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	lines, err := analyzer.SplitLines(c, text)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		writeJSONError(ctx, err.Error())
		return nil, false
	}
	return lines, true
}

// writeJSONResponse writes a JSON response to the context
func writeJSONResponse(ctx *fasthttp.RequestCtx, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		log.Error("Error marshaling JSON response", "error", err)
		writeJSONError(ctx, "Internal server error")
		return
	}

	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func writeJSONError(ctx *fasthttp.RequestCtx, message string) {
	errResponse := ErrorResponse{
		Error: message,
	}

	response, err := json.Marshal(errResponse)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		log.Error("Error marshaling JSON error response", "error", err)
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}

	ctx.SetBody(response)
}

// createLogger creates and configures a logger
func createLogger(cfg config.LogConfig) (l.Logger, error) {
	// Create a logger factory
	factory := l.NewStandardFactory()

	// Configure the logger
	var output io.Writer = os.Stdout
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	// Create the logger
	logger, err := factory.CreateLogger(l.Config{
		Output:      output,
		JsonFormat:  true,
		AsyncWrite:  true,
		BufferSize:  1024 * 1024,       // 1MB
		MaxFileSize: 100 * 1024 * 1024, // 100MB
		MaxBackups:  5,
		AddSource:   cfg.AddSource,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}
