package resource

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a reservation would exceed the memory limit.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits. Zero values mean unlimited.
type Config struct {
	// MemoryLimitBytes caps the bytes reserved for hash tables.
	MemoryLimitBytes int64

	// MaxConcurrentBuilds caps index builds running at once on one controller.
	// 0 defaults to 1.
	MaxConcurrentBuilds int64

	// IOLimitBytesPerSec caps the throughput of point source reads.
	IOLimitBytesPerSec int64
}

// Usage is a snapshot of a controller's budgets.
type Usage struct {
	MemoryReserved int64
	MemoryLimit    int64
	BuildsRunning  int64
}

// Controller hands out memory reservations, build slots and IO tokens.
// A nil *Controller is valid and imposes no limits.
type Controller struct {
	cfg Config

	mem      *semaphore.Weighted // nil when unlimited
	reserved atomic.Int64

	builds  *semaphore.Weighted
	running atomic.Int64

	io *rate.Limiter // nil when unlimited
}

// NewController creates a controller for cfg.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentBuilds <= 0 {
		cfg.MaxConcurrentBuilds = 1
	}

	c := &Controller{
		cfg:    cfg,
		builds: semaphore.NewWeighted(cfg.MaxConcurrentBuilds),
	}
	if cfg.MemoryLimitBytes > 0 {
		c.mem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.io = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// Usage returns the current budget usage.
func (c *Controller) Usage() Usage {
	if c == nil {
		return Usage{}
	}
	return Usage{
		MemoryReserved: c.reserved.Load(),
		MemoryLimit:    c.cfg.MemoryLimitBytes,
		BuildsRunning:  c.running.Load(),
	}
}

// Reservation is memory held against a controller's limit until released.
type Reservation struct {
	c     *Controller
	bytes int64
	once  sync.Once
}

// Reserve takes bytes from the memory budget without blocking. It fails with
// ErrMemoryLimitExceeded when the budget cannot cover the request.
func (c *Controller) Reserve(bytes int64) (*Reservation, error) {
	bytes = max(bytes, 0)
	if c == nil {
		return &Reservation{bytes: bytes}, nil
	}
	if c.mem != nil && bytes > 0 && !c.mem.TryAcquire(bytes) {
		return nil, ErrMemoryLimitExceeded
	}
	c.reserved.Add(bytes)
	return &Reservation{c: c, bytes: bytes}, nil
}

// Bytes returns the reserved size.
func (r *Reservation) Bytes() int64 {
	if r == nil {
		return 0
	}
	return r.bytes
}

// Release returns the reservation to the budget. Only the first call has an
// effect.
func (r *Reservation) Release() {
	if r == nil {
		return
	}
	r.once.Do(func() {
		if r.c == nil || r.bytes == 0 {
			return
		}
		if r.c.mem != nil {
			r.c.mem.Release(r.bytes)
		}
		r.c.reserved.Add(-r.bytes)
	})
}

// StartBuild blocks until a build slot is free or ctx is done. The returned
// function frees the slot.
func (c *Controller) StartBuild(ctx context.Context) (func(), error) {
	if c == nil {
		return func() {}, nil
	}
	if err := c.builds.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	c.running.Add(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			c.running.Add(-1)
			c.builds.Release(1)
		})
	}, nil
}

// ioChunk returns the largest read a single token wait may cover, or 0 when
// IO is unlimited.
func (c *Controller) ioChunk() int {
	if c == nil || c.io == nil {
		return 0
	}
	return c.io.Burst()
}

// WaitIO blocks until the IO limit admits n bytes. Requests larger than the
// limiter burst are admitted in chunks.
func (c *Controller) WaitIO(ctx context.Context, n int) error {
	chunk := c.ioChunk()
	if chunk == 0 {
		return ctx.Err()
	}
	for n > 0 {
		step := min(n, chunk)
		if err := c.io.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}
