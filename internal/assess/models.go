// Package assess implements the assessment engine proper: per-user progress,
// the answer-submission state machine, and section advancement.
package assess

import "errors"

var (
	// ErrInvalidSection rejects a requested section outside the catalog.
	ErrInvalidSection = errors.New("invalid section")
	// ErrSectionMismatch flags a question served or submitted against the
	// wrong section — a data-integrity problem, not a user error.
	ErrSectionMismatch = errors.New("question does not belong to current section")
	// ErrCompleted rejects interactions after the assessment has finished.
	ErrCompleted = errors.New("assessment already completed")
)

// Progress is one user's mutable assessment state. It is owned by the
// Store and mutated only by the Service under the per-user lock.
type Progress struct {
	// CurrentSection starts at 1 and only grows; a value past the last
	// section means the assessment is complete.
	CurrentSection int `json:"current_section"`
	// CurrentQuestions is the queue of remaining question numbers in the
	// active section; the front is the next question to serve.
	CurrentQuestions []int `json:"current_questions"`
	// CurrentIndex counts questions answered within the current section.
	CurrentIndex int `json:"current_index"`
	// Scores and AnsweredQuestions are parallel per-section accumulators,
	// cleared when the section finishes.
	Scores            []int `json:"scores"`
	AnsweredQuestions []int `json:"answered_question_numbers"`
	// SectionScores maps finished section id to its average score. Never
	// cleared.
	SectionScores map[int]float64 `json:"section_scores"`
}

// NewProgress returns fresh state anchored at section 1.
func NewProgress() *Progress {
	return &Progress{
		CurrentSection: 1,
		SectionScores:  map[int]float64{},
	}
}

// Clone deep-copies p so stored state cannot alias a caller's slices.
func (p *Progress) Clone() *Progress {
	c := &Progress{
		CurrentSection:    p.CurrentSection,
		CurrentQuestions:  append([]int(nil), p.CurrentQuestions...),
		CurrentIndex:      p.CurrentIndex,
		Scores:            append([]int(nil), p.Scores...),
		AnsweredQuestions: append([]int(nil), p.AnsweredQuestions...),
		SectionScores:     make(map[int]float64, len(p.SectionScores)),
	}
	for k, v := range p.SectionScores {
		c.SectionScores[k] = v
	}
	return c
}

// QuestionView is the rendering payload for one question.
type QuestionView struct {
	Section               int    `json:"section"`
	SectionName           string `json:"section_name"`
	QuestionNumber        int    `json:"question_number"`
	DisplayQuestionNumber int    `json:"display_question_number"`
	Question              string `json:"question"`
	Answered              int    `json:"answered"`
	TotalQuestions        int    `json:"total_questions"`
}

// AnswerFeedback is the mid-section submit response: the next question plus
// the scoring of the answer just submitted.
type AnswerFeedback struct {
	QuestionView
	MatchPercentage  int    `json:"match_percentage"`
	ScorePoints      int    `json:"score_points"`
	ContentAccuracy  string `json:"content_accuracy"`
	DetailedFeedback string `json:"detailed_feedback"`
	CorrectAnswer    string `json:"correct_answer"`
}

// QuestionScore pairs a question with the score it earned.
type QuestionScore struct {
	QuestionNumber int `json:"question_number"`
	Score          int `json:"score"`
}

// SectionResult is returned when a submission finishes a section. Section
// and SectionName describe the section the user is now on (the same one
// again when the score was below the advancement bar).
type SectionResult struct {
	Status         string          `json:"status"`
	Section        int             `json:"section"`
	SectionName    string          `json:"section_name"`
	SectionScore   float64         `json:"section_score"`
	Feedback       string          `json:"feedback"`
	QuestionScores []QuestionScore `json:"question_scores"`
}

// CompletionResult is the terminal payload after the last section passes.
type CompletionResult struct {
	Status string          `json:"status"`
	Scores map[int]float64 `json:"scores"`
}

// SubmitResult carries exactly one of the three submit outcomes.
type SubmitResult struct {
	NextQuestion     *AnswerFeedback
	SectionCompleted *SectionResult
	Completed        *CompletionResult
}
