package browse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rpattn/salesingest/internal/repository"
)

// RecordsHandler serves GET requests for one page of stored records.
type RecordsHandler struct {
	paginator *Paginator
}

func NewRecordsHandler(paginator *Paginator) http.Handler {
	return &RecordsHandler{paginator: paginator}
}

func (h *RecordsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	page, err := h.paginator.Get(r.Context(), ParsePage(r.URL.Query().Get("page")))
	if err != nil {
		http.Error(w, fmt.Sprintf("list records: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// RunsHandler serves GET requests for the ingestion run history.
type RunsHandler struct {
	runs repository.IngestionRunRepository
}

func NewRunsHandler(runs repository.IngestionRunRepository) http.Handler {
	return &RunsHandler{runs: runs}
}

func (h *RunsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	query := r.URL.Query()
	limit := 20
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	offset := 0
	if raw := strings.TrimSpace(query.Get("offset")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "offset must be zero or positive", http.StatusBadRequest)
			return
		}
		offset = parsed
	}
	runs, err := h.runs.List(r.Context(), limit, offset)
	if err != nil {
		http.Error(w, fmt.Sprintf("list runs: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
