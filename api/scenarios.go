/*
scenarios.go - Demo scenario loaders

PURPOSE:
  Lets a demo or a test swap the snapshot for one of the built-in
  datasets from package scenarios.

HOW SCENARIOS LOAD:
  With a SQLite store:
    1. Reset the database (clear all datasets)
    2. Save the scenario records as a new dataset
    3. Reload the service from the store
  Without a store:
    1. Build the scenario table in memory
    2. Swap it into the service

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "bidco-promo"}

NOTE:
  Loading a scenario with a store resets the database. Only use in
  development/demo environments.

SEE ALSO:
  - scenarios/scenarios.go: Scenario definitions
  - handlers.go: Response envelope
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/warp/retail-insights/retail"
	"github.com/warp/retail-insights/scenarios"
)

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, toScenarioDTOs(scenarios.List()), nil)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	id := h.currentScenario
	h.mu.Unlock()

	if id == "" {
		h.respond(w, r, nil, nil)
		return
	}
	s, err := scenarios.Get(id)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r, toScenarioDTOs([]scenarios.Scenario{s})[0], nil)
}

// LoadScenario replaces the snapshot with a demo scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, retail.Invalid("body", "", "invalid JSON: "+err.Error()))
		return
	}

	if err := h.SeedScenario(r.Context(), req.ScenarioID); err != nil {
		h.fail(w, err)
		return
	}

	records := 0
	if t, err := h.Service.Snapshot(); err == nil {
		records = t.Len()
	}
	h.respond(w, r, map[string]any{
		"scenario_id": req.ScenarioID,
		"records":     records,
	}, nil)
}

// loadScenario builds the scenario and makes it the current snapshot.
func (h *Handler) loadScenario(ctx context.Context, id string) (*retail.Table, error) {
	s, err := scenarios.Get(id)
	if err != nil {
		return nil, err
	}

	if h.Store == nil {
		table, err := s.Table()
		if err != nil {
			return nil, err
		}
		h.Service.Swap(table)
		return table, nil
	}

	if err := h.Store.Reset(ctx); err != nil {
		return nil, err
	}
	if _, err := h.Store.SaveDataset(ctx, "scenario:"+s.ID, s.Records()); err != nil {
		return nil, err
	}
	return h.Service.Reload(ctx)
}

// SeedScenario makes a scenario the current snapshot.
func (h *Handler) SeedScenario(ctx context.Context, id string) error {
	table, err := h.loadScenario(ctx, id)
	h.Metrics.Reloaded(err)
	if err != nil {
		return err
	}
	h.Metrics.Snapshot(table)

	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
	return nil
}
