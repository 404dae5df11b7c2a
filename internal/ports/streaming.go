package ports

import (
	"context"
	"io"
)

// LineSource splits an input stream into deck lines.
type LineSource interface {
	// ReadLines returns every line of reader without line terminators and the
	// number of bytes consumed.
	ReadLines(ctx context.Context, reader io.Reader) ([]string, int64, error)
}
