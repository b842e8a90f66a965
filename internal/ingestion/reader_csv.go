package ingestion

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/rpattn/salesingest/internal/schema/validator"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

type csvReader struct {
	src       *countingReader
	csv       *csv.Reader
	header    []string
	size      int64
	chunkSize int
	index     int
	offset    int
	done      bool
}

func newCSVReader(r io.Reader, size int64, chunkSize int) (*csvReader, error) {
	src := &countingReader{r: r}
	buffered := bufio.NewReader(src)
	if prefix, err := buffered.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = buffered.Discard(len(byteOrderMark))
	}

	cr := csv.NewReader(buffered)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	switch {
	case errors.Is(err, io.EOF):
		header = nil
	case err != nil:
		return nil, fmt.Errorf("%w: failed to read csv header: %v", ErrUnreadableFile, err)
	}

	return &csvReader{
		src:       src,
		csv:       cr,
		header:    validator.NormalizeHeader(header),
		size:      size,
		chunkSize: chunkSize,
	}, nil
}

func (r *csvReader) Header() []string { return r.header }

func (r *csvReader) Next(ctx context.Context) (RawChunk, error) {
	if r.done {
		return RawChunk{}, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return RawChunk{}, err
	}

	chunk := RawChunk{Index: r.index, Start: r.offset}
	for len(chunk.Rows) < r.chunkSize {
		row, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			r.done = true
			break
		}
		if err != nil {
			return RawChunk{}, &RowError{Row: r.offset + len(chunk.Rows) + 2, Err: err}
		}
		if blankRow(row) {
			continue
		}
		chunk.Rows = append(chunk.Rows, row)
	}

	if len(chunk.Rows) == 0 {
		return RawChunk{}, io.EOF
	}
	r.index++
	r.offset += len(chunk.Rows)
	return chunk, nil
}

func (r *csvReader) Progress() (int64, int64) {
	return r.src.n, r.size
}

func (r *csvReader) Close() error { return nil }
