package pointio

import (
	"bufio"
	"io"

	"github.com/hupe1980/hamlsh/bitvec"
)

// Write writes one bit string per line.
func Write(w io.Writer, points []bitvec.BitVector) error {
	return WriteCompressed(w, points, CompressionNone)
}

// WriteCompressed writes one bit string per line through an encoder for c.
func WriteCompressed(w io.Writer, points []bitvec.BitVector, c Compression) error {
	enc, err := compress(w, c)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(enc)
	for _, p := range points {
		if _, err := bw.WriteString(p.String()); err != nil {
			_ = enc.Close()
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			_ = enc.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}
