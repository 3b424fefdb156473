package pointio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the framing of a point file.
type Compression uint8

const (
	// CompressionNone indicates plain text.
	CompressionNone Compression = iota
	// CompressionZSTD indicates a zstd frame stream.
	CompressionZSTD
	// CompressionLZ4 indicates an lz4 frame stream.
	CompressionLZ4
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZSTD:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses "none", "zstd" or "lz4".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "zstd", "zst":
		return CompressionZSTD, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return CompressionNone, fmt.Errorf("pointio: unknown compression %q", s)
	}
}

// CompressionForName picks the compression from a file extension
// (.zst/.zstd or .lz4). Other names are uncompressed.
func CompressionForName(name string) Compression {
	switch strings.ToLower(path.Ext(name)) {
	case ".zst", ".zstd":
		return CompressionZSTD
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// detect peeks at the first bytes of r.
func detect(r *bufio.Reader) Compression {
	magic, _ := r.Peek(4)
	switch {
	case bytes.Equal(magic, zstdMagic):
		return CompressionZSTD
	case bytes.Equal(magic, lz4Magic):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// decompress wraps r according to its detected compression. The returned
// close function releases decoder resources.
func decompress(r io.Reader) (io.Reader, func(), error) {
	br := bufio.NewReader(r)

	switch detect(br) {
	case CompressionZSTD:
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	case CompressionLZ4:
		return lz4.NewReader(br), func() {}, nil
	default:
		return br, func() {}, nil
	}
}

// compress wraps w with an encoder for c. Closing the returned writer
// flushes the encoder but does not close w.
func compress(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionZSTD:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("pointio: unknown compression %v", c)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
