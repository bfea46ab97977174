package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"statdesk/internal/provider"
	"statdesk/internal/services"
)

const queryTimeout = 60 * time.Second

// Answerer is the slice of the orchestrator the handler needs.
type Answerer interface {
	Answer(ctx context.Context, turns []provider.Turn, store services.StoreConfig) (string, error)
}

// AskHandler serves one domain assistant endpoint backed by one store.
type AskHandler struct {
	answerer Answerer
	store    services.StoreConfig
}

type askRequest struct {
	Messages []services.IncomingMessage `json:"messages"`
}

type askResponse struct {
	Text   string `json:"text"`
	Detail string `json:"detail,omitempty"`
}

func NewAskHandler(answerer Answerer, store services.StoreConfig) *AskHandler {
	return &AskHandler{answerer: answerer, store: store}
}

func (h *AskHandler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Bad ask request", slog.String("domain", h.store.Domain), "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	turns := services.Normalize(req.Messages)
	if len(turns) == 0 {
		http.Error(w, "messages must contain at least one non-empty turn", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	text, err := h.answerer.Answer(ctx, turns, h.store)
	if err != nil {
		slog.Error("Query failed",
			slog.String("domain", h.store.Domain),
			slog.String("store", h.store.ID),
			"error", err)
		writeJSON(w, http.StatusInternalServerError, askResponse{
			Text:   h.store.Domain + " server error",
			Detail: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, askResponse{Text: text})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}
