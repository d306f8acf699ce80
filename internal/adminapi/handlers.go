package adminapi

import (
	"encoding/json"
	"net/http"

	"github.com/eventfilter-go/eventfilter/internal/filtersupervisor"
)

// Handlers implements the admin surface's HTTP handlers. It holds no
// state of its own beyond a reference to the Supervisor it fronts.
type Handlers struct {
	supervisor *filtersupervisor.Supervisor
	jwtAuth    *JWTAuth
}

// NewHandlers creates Handlers for supervisor, issuing tokens via
// jwtAuth.
func NewHandlers(supervisor *filtersupervisor.Supervisor, jwtAuth *JWTAuth) *Handlers {
	return &Handlers{supervisor: supervisor, jwtAuth: jwtAuth}
}

// Login issues a bearer token for clientID. Every token this surface
// issues is an admin token; there is no other role.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ClientID == "" {
		writeError(w, "clientId is required", http.StatusBadRequest)
		return
	}

	token, expiresAt, err := h.jwtAuth.GenerateToken(req.ClientID)
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, AuthResponse{
		Token:     token,
		ClientID:  req.ClientID,
		ExpiresAt: expiresAt,
	}, http.StatusOK)
}

// Reload triggers filtersupervisor.Supervisor.ReloadConfig.
func (h *Handlers) Reload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.supervisor.ReloadConfig(r.Context()); err != nil {
		writeJSON(w, ReloadResponse{Reloaded: false, Message: err.Error()}, http.StatusConflict)
		return
	}

	writeJSON(w, ReloadResponse{Reloaded: true}, http.StatusOK)
}

// Processes lists the known Supervisor processes via discovery.
func (h *Handlers) Processes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	handles, err := h.supervisor.Processes(r.Context())
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := ProcessesResponse{Processes: make([]ProcessInfo, 0, len(handles))}
	for _, handle := range handles {
		resp.Processes = append(resp.Processes, ProcessInfo{
			NodeID:  handle.NodeID(),
			Address: handle.Address(),
		})
	}
	writeJSON(w, resp, http.StatusOK)
}

// Workers lists every currently live Filter Worker with its stats.
func (h *Handlers) Workers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	eventTypes := h.supervisor.EventTypes()
	resp := WorkersResponse{Workers: make([]WorkerInfo, 0, len(eventTypes))}
	for _, eventType := range eventTypes {
		stats, ok := h.supervisor.WorkerStats(eventType)
		if !ok {
			continue
		}
		resp.Workers = append(resp.Workers, WorkerInfo{
			EventType:         stats.EventType,
			SubscriberCount:   stats.SubscriberCount,
			SubscriptionCount: stats.SubscriptionCount,
			EventsMatched:     stats.EventsMatched,
			EventsDelivered:   stats.EventsDelivered,
			DeliveryDrops:     stats.DeliveryDrops,
			ExtractionErrors:  stats.ExtractionErrors,
		})
	}
	writeJSON(w, resp, http.StatusOK)
}

// Health reports basic liveness for the admin surface.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	count := len(h.supervisor.EventTypes())
	writeJSON(w, HealthResponse{
		Healthy:     true,
		WorkerCount: count,
	}, http.StatusOK)
}
