package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/decoyline/honeypot-agent/internal/honeypot"
	"github.com/decoyline/honeypot-agent/pkg/logging"
)

// ConversationService runs the deception pipeline for one inbound turn.
type ConversationService interface {
	HandleMessage(ctx context.Context, req honeypot.InboundRequest) (*honeypot.AgentResponse, error)
}

// ChatHandler is the inbound surface of the honeypot.
type ChatHandler struct {
	service ConversationService
	logger  *logging.Logger
}

func NewChatHandler(service ConversationService, logger *logging.Logger) *ChatHandler {
	if service == nil {
		panic("handlers: conversation service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{
		service: service,
		logger:  logger,
	}
}

// HandleChat decodes the inbound turn, runs the pipeline, and writes the
// agent's reply. Pipeline-internal failures never reach this layer; only a
// malformed request produces an error response.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req honeypot.InboundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	if req.Message.Text == "" {
		writeError(w, http.StatusBadRequest, "message.text is required")
		return
	}
	if req.Message.Sender == "" {
		req.Message.Sender = honeypot.SenderScammer
	}

	resp, err := h.service.HandleMessage(r.Context(), req)
	if err != nil {
		h.logger.Error("pipeline rejected request", "error", err, "session_id", req.SessionID)
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// HealthCheck reports process liveness.
func (h *ChatHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(honeypot.AgentResponse{Status: "error", Reply: msg})
}
