package s3

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// UploadConfig configures uploads of point files and reports.
type UploadConfig struct {
	// PartSize is the multipart part size, and the size above which Put
	// switches from a single PutObject to a multipart upload.
	// Default: 8MB
	PartSize int64

	// Concurrency is the number of concurrent part uploads.
	// Default: 5
	Concurrency int

	// EnableChecksum enables CRC32C integrity validation.
	// Default: true
	EnableChecksum bool

	// LeavePartsOnError keeps uploaded parts when a multipart upload fails.
	LeavePartsOnError bool
}

// DefaultUploadConfig returns the default upload settings.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:       8 << 20,
		Concurrency:    5,
		EnableChecksum: true,
	}
}

func newUploader(client Client, cfg UploadConfig) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		if cfg.PartSize > 0 {
			u.PartSize = cfg.PartSize
		}
		if cfg.Concurrency > 0 {
			u.Concurrency = cfg.Concurrency
		}
		u.LeavePartsOnError = cfg.LeavePartsOnError
	})
}

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// computeCRC32C returns the CRC32C checksum in the base64 form S3 expects.
func computeCRC32C(data []byte) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], crc32.Checksum(data, castagnoli))
	return base64.StdEncoding.EncodeToString(b[:])
}

// upload pipes writes into a background manager.Uploader call.
type upload struct {
	pw   *io.PipeWriter
	done chan error

	mu     sync.Mutex
	closed bool
	err    error
}

func startUpload(ctx context.Context, uploader *manager.Uploader, input *s3.PutObjectInput, checksum bool) *upload {
	pr, pw := io.Pipe()
	u := &upload{pw: pw, done: make(chan error, 1)}

	input.Body = pr
	if checksum {
		input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}

	go func() {
		_, err := uploader.Upload(ctx, input)
		_ = pr.CloseWithError(err)
		u.done <- err
	}()

	return u
}

func (u *upload) Write(p []byte) (int, error) {
	u.mu.Lock()
	closed := u.closed
	u.mu.Unlock()
	if closed {
		return 0, io.ErrClosedPipe
	}
	return u.pw.Write(p)
}

// Close completes the upload. It returns the upload error, also on
// repeated calls.
func (u *upload) Close() error {
	return u.finish(nil)
}

// Abort cancels the upload. The uploader removes a started multipart
// upload unless LeavePartsOnError is set.
func (u *upload) Abort() error {
	_ = u.finish(context.Canceled)
	return nil
}

func (u *upload) finish(cause error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return u.err
	}
	u.closed = true

	if cause != nil {
		_ = u.pw.CloseWithError(cause)
		<-u.done
		u.err = cause
		return cause
	}

	_ = u.pw.Close()
	u.err = <-u.done
	return u.err
}

// Sync is a no-op; data is committed on Close.
func (u *upload) Sync() error { return nil }

func putInput(bucket, key, name string) *s3.PutObjectInput {
	return &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType(name)),
	}
}
