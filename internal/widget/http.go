package widget

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/HsiangNianian/esaskywidget/internal/correlator"
	"github.com/HsiangNianian/esaskywidget/internal/protocol"
	"github.com/HsiangNianian/esaskywidget/internal/sky"
)

const maxCallBody = 8 << 20

type callRequest struct {
	Method string `json:"method"`
	Params Params `json:"params"`
}

type callHandler struct {
	widget    *Widget
	authToken string
}

// NewHandler serves Call over HTTP: POST {"method": ..., "params": {...}}
// answers {"result": ..., "output": ...}; GET lists the method names.
func NewHandler(w *Widget, authToken string) http.Handler {
	return &callHandler{widget: w, authToken: authToken}
}

func (h *callHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if h.authToken != "" && r.Header.Get("Authorization") != "Bearer "+h.authToken {
		http.Error(rw, "unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(rw, http.StatusOK, map[string]any{"methods": Methods()})
		return
	case http.MethodPost:
	default:
		http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req callRequest
	if err := json.NewDecoder(http.MaxBytesReader(rw, r.Body, maxCallBody)).Decode(&req); err != nil {
		writeJSON(rw, http.StatusBadRequest, map[string]any{"error": "invalid request body: " + err.Error()})
		return
	}

	reply, err := h.widget.Call(r.Context(), req.Method, req.Params)
	if err != nil {
		status := statusFor(err)
		log.Printf("call failed: method=%s status=%d err=%v", req.Method, status, err)
		writeJSON(rw, status, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(rw, http.StatusOK, reply)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownMethod):
		return http.StatusNotFound
	case errors.Is(err, ErrBadParam),
		errors.Is(err, ErrInvalidCooFrame),
		errors.Is(err, protocol.ErrContentNotMapping),
		errors.Is(err, sky.ErrInvalidID),
		errors.Is(err, sky.ErrInvalidSTCS),
		errors.Is(err, sky.ErrRaggedTable):
		return http.StatusBadRequest
	case errors.Is(err, correlator.ErrTimedOut):
		return http.StatusGatewayTimeout
	case errors.Is(err, correlator.ErrChannelNotInitialized),
		errors.Is(err, correlator.ErrChannelNotReady):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		log.Printf("write response failed: err=%v", err)
	}
}
