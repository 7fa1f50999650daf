package api

import (
	"net/http"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/services"
)

type interpretationView struct {
	Name        string `json:"name"`
	Level       string `json:"level"`
	Description string `json:"description"`
	Score       int    `json:"score"`
}

type fitView struct {
	Level       string `json:"level"`
	Description string `json:"description"`
}

func statusPayload(st services.StatusView) map[string]any {
	answers := st.Answers
	if answers == nil {
		answers = models.Answers{}
	}
	return map[string]any{
		"started":                st.Started,
		"completed":              st.Completed,
		"current_question_index": st.CurrentQuestionIndex,
		"answers":                answers,
	}
}

func (rt *Router) assessmentPayload(a *models.Assessment, locale string) map[string]any {
	scores := make(map[models.Dimension]int, len(models.Dimensions))
	interps := make(map[models.Dimension]interpretationView, len(models.Dimensions))
	for _, d := range models.Dimensions {
		s := a.Scores[d]
		scores[d] = s.RawScore
		interps[d] = interpretationView{
			Name:        rt.catalog.DimensionName(d, locale, rt.defaultLocale),
			Level:       s.Level,
			Description: s.Description,
			Score:       s.RawScore,
		}
	}
	out := map[string]any{
		"scores":             scores,
		"interpretations":    interps,
		"fit_score":          a.Fit.Value,
		"fit_interpretation": fitView{Level: a.Fit.Level, Description: a.Fit.Description},
		"position_id":        a.PositionID,
		"submitted_at":       a.SubmittedAt,
	}
	if len(a.Imputed) > 0 {
		out["imputed"] = a.Imputed
	}
	if len(a.Fit.BelowMinimum) > 0 {
		out["below_minimum"] = a.Fit.BelowMinimum
	}
	return out
}

func positionParam(r *http.Request, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	return r.URL.Query().Get("position")
}

// GET /api/personality/questions
func (rt *Router) handleQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := rt.sessions.Questions(r.Context(), sessionID(r), rt.locale(r), rt.defaultLocale)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(map[string]any{"questions": qs, "total": len(qs)}))
}

// GET /api/personality/status
func (rt *Router) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := rt.sessions.Status(r.Context(), sessionID(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(statusPayload(st)))
}

// POST /api/personality/start
func (rt *Router) handleStart(w http.ResponseWriter, r *http.Request) {
	st, err := rt.sessions.Start(r.Context(), sessionID(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(statusPayload(st)))
}

// POST /api/personality/progress {answers, current_question_index}
func (rt *Router) handleProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answers              models.Answers `json:"answers"`
		CurrentQuestionIndex *int           `json:"current_question_index"`
	}
	if !rt.decodeBody(w, r, &req) {
		return
	}
	st, err := rt.sessions.SaveProgress(r.Context(), sessionID(r), req.Answers, req.CurrentQuestionIndex)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(statusPayload(st)))
}

// POST /api/personality/answer {question_id, value}
func (rt *Router) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionID *int `json:"question_id"`
		Value      *int `json:"value"`
	}
	if !rt.decodeBody(w, r, &req) {
		return
	}
	if req.QuestionID == nil || req.Value == nil {
		rt.writeError(w, r, services.NewInvalidError("question_id and value are required"))
		return
	}
	st, err := rt.sessions.Answer(r.Context(), sessionID(r), *req.QuestionID, *req.Value)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(statusPayload(st)))
}

// POST /api/personality/next {position?}
func (rt *Router) handleNext(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Position string `json:"position"`
	}
	if !rt.decodeBody(w, r, &req) {
		return
	}
	locale := rt.locale(r)
	nav, err := rt.sessions.Next(r.Context(), sessionID(r), services.SubmitParams{
		PositionID: positionParam(r, req.Position),
		Locale:     locale,
	})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	out := statusPayload(nav.Status)
	out["blocked"] = nav.Blocked
	if nav.Result != nil {
		out["result"] = rt.assessmentPayload(nav.Result, locale)
	}
	writeJSON(w, http.StatusOK, ok(out))
}

// POST /api/personality/back
func (rt *Router) handleBack(w http.ResponseWriter, r *http.Request) {
	st, err := rt.sessions.Back(r.Context(), sessionID(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(statusPayload(st)))
}

// POST /api/personality/submit {answers?, allow_incomplete?, position?}
func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answers         models.Answers `json:"answers"`
		AllowIncomplete bool           `json:"allow_incomplete"`
		Position        string         `json:"position"`
	}
	if !rt.decodeBody(w, r, &req) {
		return
	}
	locale := rt.locale(r)
	res, err := rt.sessions.Submit(r.Context(), sessionID(r), req.Answers, services.SubmitParams{
		PositionID:      positionParam(r, req.Position),
		Locale:          locale,
		AllowIncomplete: req.AllowIncomplete,
	})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(rt.assessmentPayload(res, locale)))
}

// GET /api/personality/result
func (rt *Router) handleResult(w http.ResponseWriter, r *http.Request) {
	res, err := rt.sessions.Result(r.Context(), sessionID(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(rt.assessmentPayload(res, rt.locale(r))))
}
