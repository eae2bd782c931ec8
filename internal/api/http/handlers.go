// Package http exposes the assessment controller over JSON endpoints. The
// transport is a thin shell: decode, call the service, map errors.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prepdesk/assessment-engine/internal/assess"
	"github.com/prepdesk/assessment-engine/internal/bank"
	"github.com/prepdesk/assessment-engine/internal/embedding"
)

const defaultUserID = "default_user"

// StartAssessmentHandler serves the first question of the user's current
// section, optionally jumping to an explicitly requested section.
func StartAssessmentHandler(svc *assess.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID  string `json:"user_id"`
			Section *int   `json:"section"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.UserID == "" {
			req.UserID = defaultUserID
		}
		view, err := svc.Start(r.Context(), req.UserID, req.Section)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, view)
	}
}

// GetQuestionHandler serves an arbitrary question, re-anchoring the user to
// the section that owns it.
func GetQuestionHandler(svc *assess.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID         string `json:"user_id"`
			QuestionNumber int    `json:"question_number"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.UserID == "" {
			req.UserID = defaultUserID
		}
		view, err := svc.GetQuestion(r.Context(), req.UserID, req.QuestionNumber)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, view)
	}
}

// SubmitAnswerHandler scores an answer and returns the next question, a
// section summary, or the final completion payload.
func SubmitAnswerHandler(svc *assess.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID         string `json:"user_id"`
			QuestionNumber int    `json:"question_number"`
			Answer         string `json:"answer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.UserID == "" {
			req.UserID = defaultUserID
		}
		res, err := svc.Submit(r.Context(), req.UserID, req.QuestionNumber, req.Answer)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		switch {
		case res.Completed != nil:
			writeJSON(w, res.Completed)
		case res.SectionCompleted != nil:
			writeJSON(w, res.SectionCompleted)
		default:
			writeJSON(w, res.NextQuestion)
		}
	}
}

// SectionsHandler returns the static section catalog for initial rendering.
func SectionsHandler(b *bank.Bank) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, b.Sections())
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeServiceError maps the engine's error taxonomy onto status codes:
// rejected input 400, unknown question 404, post-completion 409, transient
// upstream failure 502, integrity problems 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var unavailable *embedding.ErrUnavailable
	switch {
	case errors.Is(err, assess.ErrInvalidSection):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, bank.ErrQuestionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, assess.ErrCompleted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &unavailable), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
