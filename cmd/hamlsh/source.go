package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/hamlsh/bitvec"
	"github.com/hupe1980/hamlsh/blobstore"
	"github.com/hupe1980/hamlsh/blobstore/minio"
	"github.com/hupe1980/hamlsh/blobstore/s3"
	"github.com/hupe1980/hamlsh/internal/resource"
	"github.com/hupe1980/hamlsh/pointio"
)

// location is a parsed source or destination URI.
type location struct {
	scheme string // "file", "s3" or "minio"
	bucket string
	dir    string
	name   string
}

// parseLocation splits s3://bucket/key, minio://bucket/key or a local path.
func parseLocation(uri string) (location, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		abs, err := filepath.Abs(uri)
		if err != nil {
			return location{}, err
		}
		return location{scheme: "file", dir: filepath.Dir(abs), name: filepath.Base(abs)}, nil
	}

	switch scheme {
	case "s3", "minio":
	default:
		return location{}, fmt.Errorf("unsupported scheme %q in %s", scheme, uri)
	}

	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return location{}, fmt.Errorf("%s: expected %s://bucket/key", uri, scheme)
	}
	return location{scheme: scheme, bucket: bucket, name: key}, nil
}

// store opens the blob store holding loc.
func (g *globalFlags) store(ctx context.Context, loc location) (blobstore.BlobStore, error) {
	switch loc.scheme {
	case "file":
		return blobstore.NewLocalStore(loc.dir), nil
	case "s3":
		var opts []s3.Option
		if g.s3Region != "" {
			opts = append(opts, s3.WithRegion(g.s3Region))
		}
		if g.s3Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(g.s3Endpoint))
		}
		if g.s3PathStyle {
			opts = append(opts, s3.WithPathStyle())
		}
		return s3.New(ctx, loc.bucket, opts...)
	case "minio":
		return minio.New(loc.bucket, minioConfigFromEnv())
	default:
		return nil, fmt.Errorf("unsupported scheme %q", loc.scheme)
	}
}

// minioConfigFromEnv reads MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY,
// MINIO_REGION and MINIO_SECURE.
func minioConfigFromEnv() minio.Config {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}
	return minio.Config{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		Region:    os.Getenv("MINIO_REGION"),
		Secure:    os.Getenv("MINIO_SECURE") == "true",
	}
}

// loadPoints reads a point file from a local path or object store URI.
func (g *globalFlags) loadPoints(ctx context.Context, uri string, rc *resource.Controller, readOpts ...pointio.Option) ([]bitvec.BitVector, error) {
	loc, err := parseLocation(uri)
	if err != nil {
		return nil, err
	}
	store, err := g.store(ctx, loc)
	if err != nil {
		return nil, err
	}
	return pointio.Load(ctx, store, loc.name,
		pointio.WithResource(rc),
		pointio.WithReadOptions(readOpts...),
	)
}

// savePoints writes a point file to a local path or object store URI.
func (g *globalFlags) savePoints(ctx context.Context, uri string, points []bitvec.BitVector) error {
	loc, err := parseLocation(uri)
	if err != nil {
		return err
	}
	store, err := g.store(ctx, loc)
	if err != nil {
		return err
	}
	return pointio.Save(ctx, store, loc.name, points)
}

// writeBlob writes data to a local path or object store URI.
func (g *globalFlags) writeBlob(ctx context.Context, uri string, data []byte) error {
	loc, err := parseLocation(uri)
	if err != nil {
		return err
	}
	store, err := g.store(ctx, loc)
	if err != nil {
		return err
	}
	return store.Put(ctx, loc.name, data)
}
