package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/user/debugpanel/internal/delivery/http/response"
	"github.com/user/debugpanel/internal/usecase"
)

type Handler struct {
	panel  usecase.Panel
	logger *zap.Logger
}

func NewHandler(panel usecase.Panel, logger *zap.Logger) *Handler {
	return &Handler{
		panel:  panel,
		logger: logger,
	}
}

func (h *Handler) HandleDebugPanel(w http.ResponseWriter, r *http.Request) {
	username, password, ok := r.BasicAuth()
	received, err := h.panel.Accept(r.Context(), usecase.PanelCall{
		Username: username,
		Password: password,
		HasAuth:  ok,
		Query:    r.URL.Query(),
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUnauthorized):
			w.Header().Set("WWW-Authenticate", `Basic realm="LOCKSS Admin"`)
			h.writeJSONError(w, err.Error(), http.StatusUnauthorized)
		case errors.Is(err, usecase.ErrUnknownAction), errors.Is(err, usecase.ErrMissingAUID):
			h.writeJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("Failed to accept action", zap.Error(err))
			h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, response.ActionResponse{
		Status: "requested",
		ID:     received.ID,
		Action: received.Action,
		AUID:   received.AUID,
	})
}

func (h *Handler) HandleListRequests(w http.ResponseWriter, r *http.Request) {
	actions, err := h.panel.Received(r.Context())
	if err != nil {
		h.logger.Error("Failed to list actions", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := response.ReceivedActionsResponse{
		Count:   len(actions),
		Actions: make([]response.ReceivedActionResponse, 0, len(actions)),
	}
	for _, a := range actions {
		resp.Actions = append(resp.Actions, response.ReceivedActionResponse{
			ID:         a.ID,
			Action:     a.Action,
			Operation:  a.Operation,
			AUID:       a.AUID,
			Params:     a.Params,
			ReceivedAt: a.ReceivedAt,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
