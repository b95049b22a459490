// Package compress provides the compressors used for artifacts, and
// helpers that abandon a half-written stream without masking the error
// that interrupted it.
package compress

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/pithecene-io/ignore/ignore"
)

// Compressor wraps streams with a compression format.
type Compressor interface {
	// Name returns the compressor identifier (e.g., "gzip").
	Name() string

	// Extension returns the file extension, including the dot, or "".
	Extension() string

	// Compress wraps w. The returned writer must be closed to flush.
	Compress(w io.Writer) (io.WriteCloser, error)

	// Decompress wraps r.
	Decompress(r io.Reader) (io.ReadCloser, error)
}

// Encode compresses data into w.
//
// If the write fails the compressing writer is closed best-effort and
// the write error is returned as is.
func Encode(c Compressor, w io.Writer, data []byte) error {
	cw, err := c.Compress(w)
	if err != nil {
		return fmt.Errorf("compress: %s: %w", c.Name(), err)
	}
	if _, err := cw.Write(data); err != nil {
		return ignore.Preserve(err, cw.Close)
	}
	return cw.Close()
}

// Decode decompresses everything in r.
func Decode(c Compressor, r io.Reader) ([]byte, error) {
	rc, err := c.Decompress(r)
	if err != nil {
		return nil, fmt.Errorf("compress: %s: %w", c.Name(), err)
	}
	defer ignore.Closer(rc)()
	return io.ReadAll(rc)
}

// -----------------------------------------------------------------------------
// Gzip
// -----------------------------------------------------------------------------

// Gzip implements Compressor using gzip.
type Gzip struct{}

// NewGzip creates a gzip compressor.
func NewGzip() *Gzip {
	return &Gzip{}
}

// Name returns the compressor identifier.
func (g *Gzip) Name() string {
	return "gzip"
}

// Extension returns the file extension for gzip.
func (g *Gzip) Extension() string {
	return ".gz"
}

// Compress wraps a writer with gzip compression.
func (g *Gzip) Compress(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(w), nil
}

// Decompress wraps a reader with gzip decompression.
func (g *Gzip) Decompress(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

var _ Compressor = (*Gzip)(nil)

// -----------------------------------------------------------------------------
// Zstd
// -----------------------------------------------------------------------------

// Zstd implements Compressor using Zstandard.
type Zstd struct {
	opts []zstd.EOption
}

// NewZstd creates a zstd compressor. Encoder options such as
// zstd.WithEncoderLevel are applied to every stream.
func NewZstd(opts ...zstd.EOption) *Zstd {
	return &Zstd{opts: opts}
}

func (z *Zstd) Name() string {
	return "zstd"
}

func (z *Zstd) Extension() string {
	return ".zst"
}

func (z *Zstd) Compress(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w, z.opts...)
}

func (z *Zstd) Decompress(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return decoder.IOReadCloser(), nil
}

var _ Compressor = (*Zstd)(nil)

// -----------------------------------------------------------------------------
// Noop
// -----------------------------------------------------------------------------

// Noop implements Compressor with no compression.
type Noop struct{}

// NewNoop creates a noop compressor.
func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Name() string {
	return "noop"
}

func (n *Noop) Extension() string {
	return ""
}

func (n *Noop) Compress(w io.Writer) (io.WriteCloser, error) {
	return &noopWriteCloser{w}, nil
}

func (n *Noop) Decompress(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

type noopWriteCloser struct {
	io.Writer
}

func (n *noopWriteCloser) Close() error {
	return nil
}

var _ Compressor = (*Noop)(nil)
