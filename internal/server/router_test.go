package server

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/rpattn/salesingest/internal/db"
	"github.com/rpattn/salesingest/internal/ingestion"
	"github.com/rpattn/salesingest/internal/repository"
	"github.com/rpattn/salesingest/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, ping func(context.Context) error) http.Handler {
	t.Helper()
	sqlDB := db.OpenTestSQLite(t)
	records := repository.NewSQLiteRecordRepository(sqlDB)
	runs := repository.NewSQLiteIngestionRunRepository(sqlDB)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(Deps{
		Ingestion:      ingestion.NewService(records, runs, logger, ingestion.DefaultOptions()),
		Records:        records,
		Runs:           runs,
		Logger:         logger,
		AllowedOrigins: []string{"http://localhost:3000"},
		Ping:           ping,
	})
}

func csvUpload(t *testing.T, rows int) (*bytes.Buffer, string) {
	t.Helper()
	var file bytes.Buffer
	w := csv.NewWriter(&file)
	names := schema.Names(schema.Columns)
	require.NoError(t, w.Write(names))
	for i := 0; i < rows; i++ {
		row := make([]string, len(names))
		for j, col := range schema.Columns {
			switch col.Kind {
			case schema.Integer, schema.Number:
				row[j] = strconv.Itoa(i + 1)
			case schema.Date:
				row[j] = "15/01/2024"
			default:
				row[j] = "x"
			}
		}
		require.NoError(t, w.Write(row))
	}
	w.Flush()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(ingestion.FormField, "sales.csv")
	require.NoError(t, err)
	_, err = part.Write(file.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestRouter_UploadThenBrowse(t *testing.T) {
	h := newTestRouter(t, nil)

	body, contentType := csvUpload(t, 3)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var upload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &upload))
	assert.Equal(t, "success", upload["status"])
	assert.Contains(t, upload["message"], "Successfully saved 3 records")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records?page=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var page map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.EqualValues(t, 3, page["totalCount"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "sales.csv", runs[0]["fileName"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, bytes.Count(rec.Body.Bytes(), []byte("\n")))
}

func TestRouter_UnknownMethodAndRoute(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/upload", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/upload", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	down := func(context.Context) error { return errors.New("dial tcp: refused") }
	rec = httptest.NewRecorder()
	newTestRouter(t, down).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "refused")
}
