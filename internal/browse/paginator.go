// Package browse serves the paginated, newest-first view of stored records
// and the ingestion run history.
package browse

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rpattn/salesingest/internal/domain"
	"github.com/rpattn/salesingest/internal/repository"
)

// DefaultPageSize is the number of records shown per page.
const DefaultPageSize = 100

// Page is one resolved page of records.
type Page struct {
	Number     int             `json:"page"`
	NumPages   int             `json:"numPages"`
	PageSize   int             `json:"pageSize"`
	TotalCount int64           `json:"totalCount"`
	HasNext    bool            `json:"hasNext"`
	HasPrev    bool            `json:"hasPrevious"`
	Records    []domain.Record `json:"records"`
}

// Paginator resolves page requests against a record repository.
type Paginator struct {
	records  repository.RecordRepository
	pageSize int
}

func NewPaginator(records repository.RecordRepository, pageSize int) *Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Paginator{records: records, pageSize: pageSize}
}

// ParsePage converts a raw page parameter. Anything that is not an integer
// resolves to page 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return n
}

// NumPages returns the page count for total rows. An empty store still has
// one (empty) page.
func NumPages(total int64, pageSize int) int {
	if total <= 0 {
		return 1
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// Get returns the requested page. Any number outside 1..NumPages, including
// zero and negatives, resolves to the last page.
func (p *Paginator) Get(ctx context.Context, number int) (Page, error) {
	total, err := p.records.Count(ctx)
	if err != nil {
		return Page{}, fmt.Errorf("count records: %w", err)
	}
	numPages := NumPages(total, p.pageSize)
	if number < 1 || number > numPages {
		number = numPages
	}

	page := Page{
		Number:     number,
		NumPages:   numPages,
		PageSize:   p.pageSize,
		TotalCount: total,
		HasNext:    number < numPages,
		HasPrev:    number > 1,
		Records:    []domain.Record{},
	}
	if total == 0 {
		return page, nil
	}

	records, err := p.records.List(ctx, p.pageSize, (number-1)*p.pageSize)
	if err != nil {
		return Page{}, fmt.Errorf("list records: %w", err)
	}
	page.Records = records
	return page, nil
}
