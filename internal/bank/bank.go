// Package bank holds the static question catalog: twelve ordered sections,
// each owning a contiguous range of question numbers, and the per-question
// records loaded once at startup. Everything here is read-only after Load.
package bank

import (
	"errors"
	"fmt"
)

// ErrQuestionNotFound is returned when a question number is not in the bank.
var ErrQuestionNotFound = errors.New("question not found")

// Section is a named block of the assessment. Questions is the ordered list
// of global question numbers the section owns.
type Section struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Questions []int  `json:"questions"`
}

// Question is one record from the question bank.
type Question struct {
	Number        int
	SectionID     int
	Text          string
	CorrectAnswer string
	Keywords      []string
}

// DefaultSections is the static section catalog. Ranges are half-open in the
// source data sense: section 1 owns questions 1..8, section 2 owns 9..14, etc.
func DefaultSections() []Section {
	defs := []struct {
		name       string
		first, end int // [first, end)
	}{
		{"Daily Numbers Tracking", 1, 9},
		{"Calendly Slot Availability", 9, 15},
		{"Event Registration Numbers", 15, 18},
		{"Scholarship Numbers and Process", 18, 29},
		{"Action Payment Process", 29, 56},
		{"Scheduling Session", 56, 61},
		{"Generic", 61, 63},
		{"Weekly Conversation Tracker", 63, 76},
		{"Counselling FAQs", 76, 77},
		{"Test Scores and Transcripts", 77, 82},
		{"Application FAQs", 82, 98},
		{"Interview Prep FAQs", 98, 102},
	}
	out := make([]Section, 0, len(defs))
	for i, d := range defs {
		qs := make([]int, 0, d.end-d.first)
		for n := d.first; n < d.end; n++ {
			qs = append(qs, n)
		}
		out = append(out, Section{ID: i + 1, Name: d.name, Questions: qs})
	}
	return out
}

// Bank is the in-memory question store plus its section catalog.
type Bank struct {
	sections  []Section
	byNumber  map[int]Question
	sectionOf map[int]int // question number -> section id
}

// New builds a Bank from a section catalog and question records. Every
// question must belong to exactly one catalog section and agree with the
// catalog about which one; violations are load-time errors, not user errors.
func New(sections []Section, questions []Question) (*Bank, error) {
	b := &Bank{
		sections:  sections,
		byNumber:  make(map[int]Question, len(questions)),
		sectionOf: make(map[int]int),
	}
	for _, s := range sections {
		for _, n := range s.Questions {
			if prev, ok := b.sectionOf[n]; ok {
				return nil, fmt.Errorf("question %d listed in both section %d and section %d", n, prev, s.ID)
			}
			b.sectionOf[n] = s.ID
		}
	}
	for _, q := range questions {
		if _, ok := b.byNumber[q.Number]; ok {
			return nil, fmt.Errorf("duplicate question number %d", q.Number)
		}
		want, ok := b.sectionOf[q.Number]
		if !ok {
			return nil, fmt.Errorf("question %d does not belong to any section", q.Number)
		}
		if q.SectionID != want {
			return nil, fmt.Errorf("question %d declares section %d, catalog says section %d", q.Number, q.SectionID, want)
		}
		b.byNumber[q.Number] = q
	}
	return b, nil
}

// Lookup returns the record for a global question number.
func (b *Bank) Lookup(number int) (Question, error) {
	q, ok := b.byNumber[number]
	if !ok {
		return Question{}, fmt.Errorf("question %d: %w", number, ErrQuestionNotFound)
	}
	return q, nil
}

// Sections returns the ordered section catalog.
func (b *Bank) Sections() []Section { return b.sections }

// NumSections reports how many sections the assessment has.
func (b *Bank) NumSections() int { return len(b.sections) }

// SectionByID returns a catalog section by its id.
func (b *Bank) SectionByID(id int) (Section, bool) {
	for _, s := range b.sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// SectionOf locates the section owning a question number. Linear scan over
// the catalog, mirroring how out-of-order navigation resolves a question.
func (b *Bank) SectionOf(number int) (Section, bool) {
	for _, s := range b.sections {
		for _, n := range s.Questions {
			if n == number {
				return s, true
			}
		}
	}
	return Section{}, false
}
