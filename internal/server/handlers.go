package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sanhedrin/sanhedrin/internal/cache"
	"github.com/sanhedrin/sanhedrin/internal/config"
	"github.com/sanhedrin/sanhedrin/internal/orchestrator"
	"github.com/sanhedrin/sanhedrin/pkg/models"
)

type handlers struct {
	registry Deliberator
	cfg      *config.Config
	version  string
	started  time.Time
	cards    *cache.Cache[string, []byte]
}

func newHandlers(registry Deliberator, cfg *config.Config, version string) *handlers {
	return &handlers{
		registry: registry,
		cfg:      cfg,
		version:  version,
		started:  time.Now(),
		cards:    cache.New[string, []byte](8, 5*time.Minute),
	}
}

// handleSubmit accepts a task and admits it for deliberation.
func (h *handlers) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var task models.Task
	if err := decodeJSON(r, &task); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", fmt.Sprintf("malformed task: %v", err))
		return
	}
	delib, err := h.registry.Submit(task)
	if err != nil {
		h.writeSubmitError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, delib)
}

func (h *handlers) writeSubmitError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, orchestrator.ErrAtCapacity):
		w.Header().Set("Retry-After", "5")
		writeError(w, r, http.StatusServiceUnavailable, "at_capacity", "deliberation capacity reached, retry later")
	case errors.Is(err, orchestrator.ErrShuttingDown):
		writeError(w, r, http.StatusServiceUnavailable, "shutting_down", "server is shutting down")
	default:
		writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
	}
}

// handleStatus returns the current snapshot of one deliberation.
func (h *handlers) handleStatus(w http.ResponseWriter, r *http.Request) {
	delib, err := h.registry.Status(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, orchestrator.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "not_found", "no such deliberation")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, delib)
}

// handleCancel aborts a deliberation.
func (h *handlers) handleCancel(w http.ResponseWriter, r *http.Request) {
	delib, err := h.registry.Cancel(r.PathValue("id"), "cancelled by client")
	if err != nil {
		var invalid *models.InvalidTransitionError
		switch {
		case errors.Is(err, orchestrator.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "not_found", "no such deliberation")
		case errors.As(err, &invalid):
			writeError(w, r, http.StatusConflict, "invalid_state", err.Error())
		default:
			writeError(w, r, http.StatusInternalServerError, "internal", err.Error())
		}
		return
	}
	writeJSON(w, r, http.StatusOK, delib)
}

// handleList returns tracked deliberations, newest first, optionally
// filtered by state and truncated to limit.
func (h *handlers) handleList(w http.ResponseWriter, r *http.Request) {
	state := models.DeliberationState(r.URL.Query().Get("state"))
	if state != "" && !state.Valid() {
		writeError(w, r, http.StatusBadRequest, "invalid_request", fmt.Sprintf("unknown state %q", state))
		return
	}
	delibs := h.registry.List(state)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, r, http.StatusBadRequest, "invalid_request", fmt.Sprintf("bad limit %q", raw))
			return
		}
		if limit < len(delibs) {
			delibs = delibs[:limit]
		}
	}
	writeJSON(w, r, http.StatusOK, delibs)
}

// handleHealth reports liveness and basic load.
func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":         "ok",
		"version":        h.version,
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"active":         h.registry.Active(),
	})
}

// agentCard describes this server for agent discovery.
type agentCard struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Version      string   `json:"version"`
	URL          string   `json:"url"`
	Capabilities []string `json:"capabilities"`
	Policies     []string `json:"policies"`
	Decisions    []string `json:"default_decision_set"`
}

// handleAgentCard serves the discovery document. The rendered card is
// cached; panel configuration is fixed for the process lifetime but the
// active count in health is not part of the card, so the TTL is generous.
func (h *handlers) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	body, ok := h.cards.Get("card")
	if !ok {
		card := agentCard{
			Name:        "sanhedrin",
			Description: "Deliberation orchestrator: fans a task out to a panel of independent judging agents and reduces their verdicts to one ruling.",
			Version:     h.version,
			URL:         fmt.Sprintf("http://%s/", h.cfg.Addr()),
			Capabilities: []string{
				"deliberations.submit",
				"deliberations.status",
				"deliberations.cancel",
				"deliberations.list",
			},
			Policies:  []string{"majority", "unanimous", "weighted-score"},
			Decisions: models.DefaultDecisionSet(),
		}
		var err error
		body, err = json.Marshal(card)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "internal", err.Error())
			return
		}
		h.cards.Set("card", body)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
