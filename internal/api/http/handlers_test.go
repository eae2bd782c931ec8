package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prepdesk/assessment-engine/internal/assess"
	"github.com/prepdesk/assessment-engine/internal/bank"
	"github.com/prepdesk/assessment-engine/internal/embedding"
)

type stubEvaluator struct {
	scores map[int]int
	err    error
}

func (s *stubEvaluator) Evaluate(_ context.Context, _ string, questionNumber int) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.scores[questionNumber], nil
}

func newTestService(t *testing.T, ev assess.Evaluator) (*assess.Service, *bank.Bank) {
	t.Helper()
	sections := []bank.Section{
		{ID: 1, Name: "One", Questions: []int{1, 2}},
		{ID: 2, Name: "Two", Questions: []int{3}},
	}
	b, err := bank.New(sections, []bank.Question{
		{Number: 1, SectionID: 1, Text: "q1?", CorrectAnswer: "ca1"},
		{Number: 2, SectionID: 1, Text: "q2?", CorrectAnswer: "ca2"},
		{Number: 3, SectionID: 2, Text: "q3?", CorrectAnswer: "ca3"},
	})
	if err != nil {
		t.Fatalf("bank: %v", err)
	}
	return assess.NewService(b, assess.NewMemoryStore(), ev, time.Second), b
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestStartAssessmentHandler(t *testing.T) {
	svc, _ := newTestService(t, &stubEvaluator{})
	h := StartAssessmentHandler(svc)

	w := postJSON(t, h, `{"user_id":"u1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body.String())
	}
	var view assess.QuestionView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Section != 1 || view.QuestionNumber != 1 || view.TotalQuestions != 2 {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestStartAssessmentHandler_InvalidSection(t *testing.T) {
	svc, _ := newTestService(t, &stubEvaluator{})
	w := postJSON(t, StartAssessmentHandler(svc), `{"user_id":"u1","section":42}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
}

func TestStartAssessmentHandler_BadJSON(t *testing.T) {
	svc, _ := newTestService(t, &stubEvaluator{})
	w := postJSON(t, StartAssessmentHandler(svc), `{`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
}

func TestGetQuestionHandler_UnknownQuestion(t *testing.T) {
	svc, _ := newTestService(t, &stubEvaluator{})
	w := postJSON(t, GetQuestionHandler(svc), `{"user_id":"u1","question_number":99}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
}

func TestSubmitAnswerHandler_NextQuestion(t *testing.T) {
	svc, _ := newTestService(t, &stubEvaluator{scores: map[int]int{1: 80}})
	if _, err := svc.Start(context.Background(), "u1", nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	w := postJSON(t, SubmitAnswerHandler(svc), `{"user_id":"u1","question_number":1,"answer":"hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		QuestionNumber  int    `json:"question_number"`
		MatchPercentage int    `json:"match_percentage"`
		CorrectAnswer   string `json:"correct_answer"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.QuestionNumber != 2 || resp.MatchPercentage != 80 || resp.CorrectAnswer != "ca1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSubmitAnswerHandler_SectionMismatchIs500(t *testing.T) {
	svc, _ := newTestService(t, &stubEvaluator{})
	if _, err := svc.Start(context.Background(), "u1", nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	w := postJSON(t, SubmitAnswerHandler(svc), `{"user_id":"u1","question_number":3,"answer":"x"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", w.Code)
	}
}

func TestSubmitAnswerHandler_TransientUpstreamIs502(t *testing.T) {
	ev := &stubEvaluator{err: &embedding.ErrUnavailable{Err: context.DeadlineExceeded}}
	svc, _ := newTestService(t, ev)
	if _, err := svc.Start(context.Background(), "u1", nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	w := postJSON(t, SubmitAnswerHandler(svc), `{"user_id":"u1","question_number":1,"answer":"x"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("want 502, got %d", w.Code)
	}
}

func TestSubmitAnswerHandler_CompletionPayload(t *testing.T) {
	svc, _ := newTestService(t, &stubEvaluator{scores: map[int]int{1: 100, 2: 100, 3: 100}})
	ctx := context.Background()
	if _, err := svc.Start(ctx, "u1", nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, q := range []int{1, 2} {
		if _, err := svc.Submit(ctx, "u1", q, "x"); err != nil {
			t.Fatalf("submit %d: %v", q, err)
		}
	}
	w := postJSON(t, SubmitAnswerHandler(svc), `{"user_id":"u1","question_number":3,"answer":"x"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Status string             `json:"status"`
		Scores map[string]float64 `json:"scores"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "completed" || len(resp.Scores) != 2 {
		t.Fatalf("unexpected completion payload: %+v", resp)
	}

	// Post-completion submissions are rejected.
	w = postJSON(t, SubmitAnswerHandler(svc), `{"user_id":"u1","question_number":3,"answer":"x"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("want 409, got %d", w.Code)
	}
}

func TestSectionsHandler(t *testing.T) {
	_, b := newTestService(t, &stubEvaluator{})
	req := httptest.NewRequest(http.MethodGet, "/sections", nil)
	w := httptest.NewRecorder()
	SectionsHandler(b)(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var sections []bank.Section
	if err := json.Unmarshal(w.Body.Bytes(), &sections); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sections) != 2 || sections[0].Name != "One" {
		t.Fatalf("unexpected sections: %+v", sections)
	}
}
