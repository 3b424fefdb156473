package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// object reads one S3 object with ranged GETs. When the HEAD returned an
// ETag every range is requested with If-Match, so a point file replaced
// while it is being read fails instead of yielding mixed contents.
type object struct {
	client Client
	bucket string
	key    string
	etag   string
	size   int64
}

func (o *object) Size() int64 { return o.size }

func (o *object) Close() error { return nil }

// get requests [off, off+length) clipped to the object size.
func (o *object) get(ctx context.Context, off, length int64) (io.ReadCloser, int64, error) {
	if off >= o.size || length <= 0 {
		return nil, 0, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	end := min(off+length, o.size) - 1

	input := &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, end)),
	}
	if o.etag != "" {
		input.IfMatch = aws.String(o.etag)
	}

	resp, err := o.client.GetObject(ctx, input)
	if err != nil {
		return nil, 0, fmt.Errorf("get s3://%s/%s: %w", o.bucket, o.key, err)
	}
	return resp.Body, end - off + 1, nil
}

func (o *object) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	body, n, err := o.get(ctx, off, int64(len(p)))
	if err != nil {
		return 0, err
	}
	defer func() { _ = body.Close() }()

	read, err := io.ReadFull(body, p[:n])
	if errors.Is(err, io.ErrUnexpectedEOF) || (err == nil && read < len(p)) {
		err = io.EOF
	}
	return read, err
}

func (o *object) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	body, _, err := o.get(ctx, off, length)
	return body, err
}
