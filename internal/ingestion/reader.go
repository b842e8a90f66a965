package ingestion

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// DefaultChunkSize is the number of data rows per chunk.
const DefaultChunkSize = 50000

// RawChunk is a batch of unparsed data rows. Start is the 0-based offset of
// the first row among all data rows of the file.
type RawChunk struct {
	Index int
	Start int
	Rows  [][]string
}

// ChunkReader yields a source file as a finite sequence of row batches.
// Next returns io.EOF after the last chunk. A reader cannot seek; restart by
// opening the source again.
type ChunkReader interface {
	Header() []string
	Next(ctx context.Context) (RawChunk, error)
	Close() error
}

// Progress is implemented by readers that can report how far they are through
// the source. Units are reader specific.
type Progress interface {
	Progress() (done, total int64)
}

var supportedExtensions = map[string]struct{}{
	".csv":  {},
	".xlsx": {},
	".xls":  {},
}

func extensionOf(fileName string) string {
	return strings.ToLower(filepath.Ext(fileName))
}

// NewReader opens the reader matching fileName's extension. size is the
// source length in bytes, or <= 0 if unknown.
func NewReader(fileName string, r io.Reader, size int64, chunkSize int) (ChunkReader, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	switch ext := extensionOf(fileName); ext {
	case ".csv":
		return newCSVReader(r, size, chunkSize)
	case ".xlsx", ".xls":
		return newXLSXReader(r, chunkSize)
	default:
		return nil, fmt.Errorf("%w: %q, upload an .xls, .xlsx or .csv file", ErrUnsupportedFormat, ext)
	}
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
