package quotes

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/knowbot/knowledge-chatbot/pkg/logger"
)

// maxQuotes caps the read endpoint's page size.
const maxQuotes = 100

// Handler serves the stored quotes over HTTP.
type Handler struct {
	store  *Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewHandler creates a Handler over the given store. Quotes older than ttl
// are treated as stale and excluded; a non-positive ttl disables the cutoff.
func NewHandler(store *Store, ttl time.Duration) *Handler {
	return &Handler{
		store:  store,
		ttl:    ttl,
		logger: slog.Default().With("component", "quotes-handler"),
	}
}

// Latest handles GET /api/v1/quotes, returning the newest non-stale quotes.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	stored, err := h.store.Latest(ctx, maxQuotes)
	if err != nil {
		log.Error("listing quotes failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "listing quotes failed")
		return
	}

	result := make([]Quote, 0, len(stored))
	for _, q := range stored {
		if h.ttl > 0 && q.Expired(h.ttl) {
			continue
		}
		result = append(result, q)
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
