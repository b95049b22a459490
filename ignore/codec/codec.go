// Package codec serializes records for artifacts and pipes them through
// a compressor.
package codec

import (
	"errors"
	"fmt"
	"io"

	"github.com/pithecene-io/ignore/ignore"
	"github.com/pithecene-io/ignore/ignore/compress"
)

// ErrInvalidFormat indicates input that cannot be decoded.
var ErrInvalidFormat = errors.New("codec: invalid format")

// Codec encodes and decodes record batches.
type Codec interface {
	// Name returns the codec identifier (e.g., "jsonl").
	Name() string

	// Encode writes records to w.
	Encode(w io.Writer, records []any) error

	// Decode reads all records from r.
	Decode(r io.Reader) ([]any, error)
}

// EncodeCompressed encodes records with c and compresses the result with
// comp into w. When encoding fails the compressor is abandoned and the
// encoding error is returned.
func EncodeCompressed(w io.Writer, c Codec, comp compress.Compressor, records []any) error {
	cw, err := comp.Compress(w)
	if err != nil {
		return fmt.Errorf("codec: %s: %w", comp.Name(), err)
	}
	if err := c.Encode(cw, records); err != nil {
		return ignore.Preserve(err, cw.Close)
	}
	return cw.Close()
}

// DecodeCompressed reverses EncodeCompressed.
func DecodeCompressed(r io.Reader, c Codec, comp compress.Compressor) ([]any, error) {
	rc, err := comp.Decompress(r)
	if err != nil {
		return nil, fmt.Errorf("codec: %s: %w", comp.Name(), err)
	}
	defer ignore.Closer(rc)()
	return c.Decode(rc)
}
