package lineprocessor

import (
	"context"
	"io"
	"time"

	"github.com/baditaflorin/go_nec_fidelity/internal/pool"
	"github.com/baditaflorin/go_nec_fidelity/internal/ports"
)

// Constants for line processing
const (
	// DefaultChunkSize defines the default size of each chunk for reading
	DefaultChunkSize = 64 * 1024 // 64KB

	// ContextCheckFrequency defines how often to check for context cancellation
	ContextCheckFrequency = 64 // chunks

	CR = '\r'
	LF = '\n'
)

// ProcessingConfig defines configuration for line processing
type ProcessingConfig struct {
	ChunkSize int
}

// Processor splits a deck stream into lines. LF, CRLF and a lone CR all end a
// line; a terminator at the very end of the input does not start a new one.
// Empty lines are kept so line numbers match the source.
type Processor struct {
	logger    ports.Logger
	chunkPool *pool.BufferPool
}

// NewProcessor creates a new line processor.
func NewProcessor(logger ports.Logger, config ProcessingConfig) *Processor {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}
	return &Processor{
		logger:    logger,
		chunkPool: pool.NewBufferPool(config.ChunkSize),
	}
}

// ReadLines implements ports.LineSource.
func (p *Processor) ReadLines(ctx context.Context, reader io.Reader) ([]string, int64, error) {
	startTime := time.Now()

	chunk := p.chunkPool.Get()
	defer p.chunkPool.Put(chunk)

	var (
		lines          []string
		partial        []byte
		bytesProcessed int64
		// a CR ended the previous chunk; a leading LF in this one belongs to it
		pendingCR bool
	)

	for reads := 1; ; reads++ {
		if reads%ContextCheckFrequency == 0 {
			select {
			case <-ctx.Done():
				p.logger.Warn("Line reading cancelled by context", "error", ctx.Err())
				return lines, bytesProcessed, ctx.Err()
			default:
			}
		}

		n, err := reader.Read(*chunk)
		if n > 0 {
			bytesProcessed += int64(n)
			data := (*chunk)[:n]
			start := 0
			if pendingCR && data[0] == LF {
				start = 1
			}
			pendingCR = false

			for i := start; i < n; i++ {
				b := data[i]
				if b != LF && b != CR {
					continue
				}
				partial = append(partial, data[start:i]...)
				lines = append(lines, string(partial))
				partial = partial[:0]

				if b == CR {
					if i+1 < n {
						if data[i+1] == LF {
							i++
						}
					} else {
						pendingCR = true
					}
				}
				start = i + 1
			}
			if start < n {
				partial = append(partial, data[start:]...)
			}
		}

		if err != nil {
			if err != io.EOF {
				p.logger.Warn("Error reading deck input", "error", err)
				return lines, bytesProcessed, err
			}
			break
		}
	}

	if len(partial) > 0 {
		lines = append(lines, string(partial))
	}

	p.logger.Debug("Read deck lines",
		"lines", len(lines),
		"bytes", bytesProcessed,
		"duration", time.Since(startTime),
	)
	return lines, bytesProcessed, nil
}
