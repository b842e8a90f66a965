package export

import (
	"fmt"
	"net/http"
	"time"
)

type Handler struct {
	service *Service
	now     func() time.Time
}

// NewHTTPHandler serves GET requests with a CSV attachment of all stored records.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service, now: time.Now}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	filename := fmt.Sprintf("sales-records-%s.csv", h.now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	// Headers are already sent once rows stream; a late failure can only be logged.
	if _, err := h.service.WriteCSV(r.Context(), w); err != nil {
		h.service.logger.Error("export failed", "error", err)
	}
}
