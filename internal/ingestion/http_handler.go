package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rpattn/salesingest/internal/domain"
)

// FormField is the multipart field carrying the uploaded file.
const FormField = "excel_file"

// Handler exposes ingestion as an HTTP endpoint.
type Handler struct {
	service  *Service
	maxBytes int64
}

// NewHTTPHandler wraps the service with a POST endpoint.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service, maxBytes: service.opts.MaxUploadBytes}
}

type uploadResponse struct {
	RunID          string               `json:"runId"`
	Status         domain.RunStatus     `json:"status"`
	Message        string               `json:"message,omitempty"`
	Error          string               `json:"error,omitempty"`
	RowsProcessed  int                  `json:"rowsProcessed"`
	Chunks         int                  `json:"chunks"`
	TotalStored    int64                `json:"totalStored,omitempty"`
	RowNumber      *int                 `json:"rowNumber,omitempty"`
	ElapsedSeconds float64              `json:"elapsedSeconds"`
	InvalidValues  []domain.ColumnCount `json:"invalidValues"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Leave headroom for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%v: maximum size is %d MB", ErrFileTooLarge, h.maxBytes>>20))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid form data: %v", err))
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	file, header, err := r.FormFile(FormField)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s required: %v", FormField, err))
		return
	}
	defer file.Close()

	out := h.service.Ingest(r.Context(), Upload{
		FileName: header.Filename,
		Size:     header.Size,
		Data:     file,
	})

	resp := uploadResponse{
		RunID:          out.RunID.String(),
		Status:         out.Status,
		RowsProcessed:  out.RowsProcessed,
		Chunks:         out.Chunks,
		TotalStored:    out.TotalStored,
		RowNumber:      out.RowNumber,
		ElapsedSeconds: out.Elapsed.Seconds(),
		InvalidValues:  out.Ledger.Summary(),
	}
	if out.Succeeded() {
		resp.Message = out.Message()
	} else {
		resp.Error = out.Message()
	}
	writeJSON(w, statusCode(out.Status), resp)
}

func statusCode(status domain.RunStatus) int {
	switch status {
	case domain.RunStatusSuccess:
		return http.StatusOK
	case domain.RunStatusValidationError:
		return http.StatusBadRequest
	case domain.RunStatusRowError, domain.RunStatusEmptyResult:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
