package resource

import (
	"context"
	"io"
)

// LimitReader returns r throttled to the controller's IO limit. Reads
// stop with the context error once ctx is done.
func (c *Controller) LimitReader(ctx context.Context, r io.Reader) io.Reader {
	return &limitedReader{ctx: ctx, r: r, c: c}
}

type limitedReader struct {
	ctx context.Context
	r   io.Reader
	c   *Controller
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if chunk := l.c.ioChunk(); chunk > 0 && len(p) > chunk {
		p = p[:chunk]
	}
	if err := l.c.WaitIO(l.ctx, len(p)); err != nil {
		return 0, err
	}
	return l.r.Read(p)
}
