package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rpattn/salesingest/internal/schema/validator"

	"github.com/xuri/excelize/v2"
)

// xlsxReader streams the first worksheet of a workbook. The row total is
// counted up front with a pass that never decodes cell values.
type xlsxReader struct {
	file      *excelize.File
	rows      *excelize.Rows
	header    []string
	totalRows int
	chunkSize int
	index     int
	offset    int
	consumed  int
	done      bool
}

func newXLSXReader(r io.Reader, chunkSize int) (*xlsxReader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		if errors.Is(err, excelize.ErrWorkbookFileFormat) {
			return nil, fmt.Errorf("%w: legacy or unrecognised workbook format, save the file as .xlsx or .csv", ErrUnreadableFile)
		}
		return nil, fmt.Errorf("%w: failed to open workbook: %v", ErrUnreadableFile, err)
	}

	reader := &xlsxReader{file: f, chunkSize: chunkSize}
	if err := reader.init(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return reader, nil
}

func (r *xlsxReader) init() error {
	sheets := r.file.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("%w: workbook has no sheets", ErrUnreadableFile)
	}
	sheet := sheets[0]

	counter, err := r.file.Rows(sheet)
	if err != nil {
		return fmt.Errorf("%w: failed to read rows from workbook: %v", ErrUnreadableFile, err)
	}
	total := 0
	for counter.Next() {
		total++
	}
	if err := counter.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	if total > 0 {
		r.totalRows = total - 1
	}

	rows, err := r.file.Rows(sheet)
	if err != nil {
		return fmt.Errorf("%w: failed to read rows from workbook: %v", ErrUnreadableFile, err)
	}
	r.rows = rows

	if !rows.Next() {
		r.done = true
		return nil
	}
	header, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("%w: failed to read header row: %v", ErrUnreadableFile, err)
	}
	r.header = validator.NormalizeHeader(header)
	return nil
}

func (r *xlsxReader) Header() []string { return r.header }

func (r *xlsxReader) Next(ctx context.Context) (RawChunk, error) {
	if r.done {
		return RawChunk{}, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return RawChunk{}, err
	}

	chunk := RawChunk{Index: r.index, Start: r.offset}
	for len(chunk.Rows) < r.chunkSize {
		if !r.rows.Next() {
			r.done = true
			break
		}
		r.consumed++
		row, err := r.rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return RawChunk{}, &RowError{Row: r.offset + len(chunk.Rows) + 2, Err: err}
		}
		if blankRow(row) {
			continue
		}
		chunk.Rows = append(chunk.Rows, row)
	}
	if err := r.rows.Error(); err != nil {
		return RawChunk{}, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}

	if len(chunk.Rows) == 0 {
		return RawChunk{}, io.EOF
	}
	r.index++
	r.offset += len(chunk.Rows)
	return chunk, nil
}

func (r *xlsxReader) Progress() (int64, int64) {
	return int64(r.consumed), int64(r.totalRows)
}

func (r *xlsxReader) Close() error {
	var errs []error
	if r.rows != nil {
		errs = append(errs, r.rows.Close())
	}
	errs = append(errs, r.file.Close())
	return errors.Join(errs...)
}
