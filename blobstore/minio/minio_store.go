package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/hamlsh/blobstore"
)

var errUploadAborted = errors.New("minio: upload aborted")

// Store reads and writes point files in a MinIO (or other S3-compatible)
// bucket.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

var _ blobstore.BlobStore = (*Store)(nil)

// Config holds connection settings for New.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
	Region    string
	// Prefix is prepended to every blob name, e.g. "datasets/".
	Prefix string
}

// New connects to cfg.Endpoint with static credentials.
func New(bucket string, cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}
	return NewStore(client, bucket, cfg.Prefix), nil
}

// NewStore wraps an existing client.
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: rootPrefix}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

func putOptions(name string) minio.PutObjectOptions {
	return minio.PutObjectOptions{ContentType: blobstore.ContentType(name)}
}

func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if isNotFound(err) {
		return nil, blobstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &object{client: s.client, bucket: s.bucket, key: key, size: info.Size}, nil
}

func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), putOptions(name))
	return err
}

// Create streams writes into a single PutObject call of unknown size.
// The object appears when Close returns nil.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	pr, pw := io.Pipe()
	u := &upload{pw: pw, done: make(chan error, 1)}

	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, s.key(name), pr, -1, putOptions(name))
		_ = pr.CloseWithError(err)
		u.done <- err
	}()

	return u, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if isNotFound(err) {
		return nil
	}
	return err
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	opts := minio.ListObjectsOptions{Prefix: s.key(prefix), Recursive: true}

	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if name := relName(obj.Key, s.prefix); name != "" {
			names = append(names, name)
		}
	}

	slices.Sort(names)
	return names, nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	default:
		return false
	}
}

// relName strips the root prefix from an object key.
func relName(key, prefix string) string {
	name := strings.TrimPrefix(key, strings.TrimSuffix(prefix, "/"))
	return strings.TrimPrefix(name, "/")
}

// object is a stat'ed object read with ranged GETs.
type object struct {
	client *minio.Client
	bucket string
	key    string
	size   int64
}

// get opens the byte range [off, off+length) clipped to the object size.
func (o *object) get(ctx context.Context, off, length int64) (*minio.Object, int64, error) {
	if off >= o.size || length <= 0 {
		return nil, 0, io.EOF
	}
	end := min(off+length, o.size) - 1

	var opts minio.GetObjectOptions
	if err := opts.SetRange(off, end); err != nil {
		return nil, 0, err
	}
	obj, err := o.client.GetObject(ctx, o.bucket, o.key, opts)
	if err != nil {
		return nil, 0, err
	}
	return obj, end - off + 1, nil
}

func (o *object) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	obj, n, err := o.get(ctx, off, int64(len(p)))
	if err != nil {
		return 0, err
	}
	defer obj.Close()

	read, err := io.ReadFull(obj, p[:n])
	if err == nil && read < len(p) {
		err = io.EOF
	}
	return read, err
}

func (o *object) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	obj, _, err := o.get(ctx, off, length)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (o *object) Size() int64 { return o.size }

func (o *object) Close() error { return nil }

// upload feeds a background PutObject through a pipe.
type upload struct {
	pw     *io.PipeWriter
	done   chan error
	closed bool
}

func (u *upload) Write(p []byte) (int, error) {
	return u.pw.Write(p)
}

func (u *upload) Close() error {
	if u.closed {
		return nil
	}
	u.closed = true
	if err := u.pw.Close(); err != nil {
		return err
	}
	return <-u.done
}

// Abort cancels the upload; the object is not created.
func (u *upload) Abort() error {
	if u.closed {
		return nil
	}
	u.closed = true
	_ = u.pw.CloseWithError(errUploadAborted)
	<-u.done
	return nil
}

func (u *upload) Sync() error { return nil }
