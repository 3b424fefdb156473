// Package resource bounds the resources an index build and a point load may use.
//
// A Controller manages three budgets:
//
//   - Memory: hash-table estimates are reserved up front and fail fast
//   - Build slots: limit concurrent index builds sharing one controller
//   - IO: token-bucket limit on bytes read from point sources
//
// # Memory
//
// Reserve never blocks. When the limit would be exceeded it returns
// ErrMemoryLimitExceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30,
//	})
//
//	res, err := rc.Reserve(estimate)
//	if err != nil {
//	    return err
//	}
//	defer res.Release()
//
// # IO
//
// LimitReader throttles any io.Reader:
//
//	r := rc.LimitReader(ctx, f)
//
// A nil *Controller is valid and imposes no limits.
package resource
