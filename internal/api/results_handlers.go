package api

import (
	"net/http"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/services"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/utils"
)

type positionView struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Department string `json:"department,omitempty"`
	HasProfile bool   `json:"has_profile"`
}

// GET /api/positions
func (rt *Router) handlePositions(w http.ResponseWriter, r *http.Request) {
	all := rt.catalog.Positions()
	out := make([]positionView, 0, len(all))
	for _, p := range all {
		out = append(out, positionView{
			ID:         p.ID,
			Title:      p.Title,
			Department: p.Department,
			HasProfile: services.CheckProfile(p.ID, p.Personality) == nil,
		})
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"positions": out}))
}

// GET /api/results
func (rt *Router) handleResults(w http.ResponseWriter, r *http.Request) {
	view, err := rt.results.Results(r.Context(), sessionID(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	out := map[string]any{"has_results": view.HasResults}
	if view.CVMatch != nil {
		out["cv_match"] = view.CVMatch
	}
	if view.Personality != nil {
		out["personality"] = rt.assessmentPayload(view.Personality, rt.locale(r))
	}
	if view.Combined != nil {
		out["combined_score"] = view.Combined
	}
	writeJSON(w, http.StatusOK, ok(out))
}

// POST /api/results/cv {cv_text, position?}
func (rt *Router) handleAnalyzeCV(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CVText   string `json:"cv_text"`
		Position string `json:"position"`
	}
	if !rt.decodeBody(w, r, &req) {
		return
	}
	match, err := rt.results.AnalyzeCV(r.Context(), sessionID(r), req.CVText, positionParam(r, req.Position))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"cv_match": match}))
}

// POST /api/results/clear and /clear-results
func (rt *Router) handleClearResults(w http.ResponseWriter, r *http.Request) {
	if err := rt.results.ClearCV(r.Context(), sessionID(r)); err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"message": utils.T(rt.locale(r), "results.cleared")}))
}
