package pointio

import (
	"context"
	"fmt"

	"github.com/hupe1980/hamlsh/bitvec"
	"github.com/hupe1980/hamlsh/blobstore"
	"github.com/hupe1980/hamlsh/internal/resource"
)

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	read []Option
	rc   *resource.Controller
}

// WithReadOptions passes read options through Load.
func WithReadOptions(optFns ...Option) LoadOption {
	return func(o *loadOptions) { o.read = append(o.read, optFns...) }
}

// WithResource throttles reads with the controller's IO limit.
func WithResource(rc *resource.Controller) LoadOption {
	return func(o *loadOptions) { o.rc = rc }
}

// Load reads the point file name from store.
func Load(ctx context.Context, store blobstore.BlobStore, name string, optFns ...LoadOption) ([]bitvec.BitVector, error) {
	var opts loadOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = blob.Close() }()

	rc, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	defer func() { _ = rc.Close() }()

	points, err := ReadContext(ctx, opts.rc.LimitReader(ctx, rc), opts.read...)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return points, nil
}

// Save writes points to name in store, compressed according to the name's
// extension.
func Save(ctx context.Context, store blobstore.BlobStore, name string, points []bitvec.BitVector) error {
	w, err := store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := WriteCompressed(w, points, CompressionForName(name)); err != nil {
		_ = w.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}
