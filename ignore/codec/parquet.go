package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/pithecene-io/ignore/ignore"
)

// readBatchSize bounds the rows decoded per Read call.
const readBatchSize = 100

// WriteParquet writes rows as a Parquet file to w. The schema is derived
// from T's struct tags.
//
// A failed row write abandons the file; the writer is closed best-effort
// and the write error returned.
func WriteParquet[T any](w io.Writer, rows []T, opts ...parquet.WriterOption) error {
	pw := parquet.NewGenericWriter[T](w, opts...)
	if _, err := pw.Write(rows); err != nil {
		return ignore.Preserve(fmt.Errorf("parquet: write rows: %w", err), pw.Close)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("parquet: close writer: %w", err)
	}
	return nil
}

// ReadParquet decodes every row of a Parquet file held in data.
// Returns ErrInvalidFormat for empty or malformed input.
func ReadParquet[T any](data []byte) ([]T, error) {
	if len(data) == 0 {
		return nil, ErrInvalidFormat
	}

	// Validate the footer first; the generic reader panics on a bad file.
	file, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	if file.NumRows() == 0 {
		return []T{}, nil
	}

	reader := parquet.NewGenericReader[T](bytes.NewReader(data))
	defer ignore.Closer(reader)()

	rows := make([]T, 0, file.NumRows())
	batch := make([]T, readBatchSize)
	for {
		clear(batch)
		n, err := reader.Read(batch)
		rows = append(rows, batch[:n]...)
		if errors.Is(err, io.EOF) || int64(len(rows)) >= file.NumRows() {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parquet: read rows: %w", err)
		}
	}
}
