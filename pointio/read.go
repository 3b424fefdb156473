package pointio

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/hupe1980/hamlsh/bitvec"
)

// maxLineBytes bounds a single line of a point file.
const maxLineBytes = 64 << 20

// Options configures reading.
type Options struct {
	// Dimension, when positive, is the required dimension of every point.
	// Otherwise the first point defines it.
	Dimension int

	// Limit, when positive, stops reading after that many points.
	Limit int
}

// Option configures Read and Load.
type Option func(*Options)

// WithDimension requires every point to have dimension d.
func WithDimension(d int) Option {
	return func(o *Options) { o.Dimension = d }
}

// WithLimit stops after n points.
func WithLimit(n int) Option {
	return func(o *Options) { o.Limit = n }
}

// Read parses all points from r, decompressing zstd or lz4 input.
func Read(r io.Reader, optFns ...Option) ([]bitvec.BitVector, error) {
	return ReadContext(context.Background(), r, optFns...)
}

// ReadContext is Read with cancellation checked between lines.
func ReadContext(ctx context.Context, r io.Reader, optFns ...Option) ([]bitvec.BitVector, error) {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	src, release, err := decompress(r)
	if err != nil {
		return nil, err
	}
	defer release()

	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	dim := opts.Dimension
	var points []bitvec.BitVector

	for line := 1; sc.Scan(); line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		for _, tok := range strings.Fields(sc.Text()) {
			p, err := bitvec.Parse(tok)
			if err != nil {
				return nil, &ParseError{Line: line, Token: len(points) + 1, Err: err}
			}
			if dim <= 0 {
				dim = p.Len()
			}
			if p.Len() != dim {
				return nil, &ParseError{
					Line:  line,
					Token: len(points) + 1,
					Err:   &bitvec.DimensionMismatchError{Expected: dim, Actual: p.Len()},
				}
			}

			points = append(points, p)
			if opts.Limit > 0 && len(points) >= opts.Limit {
				return points, nil
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return points, nil
}
