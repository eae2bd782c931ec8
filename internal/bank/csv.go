package bank

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Required columns in the question bank CSV. Keywords are a single column,
// phrases separated by '|'.
var requiredColumns = []string{"section", "question_number", "question", "correct_answer", "keywords"}

// Load reads the question bank CSV and builds a Bank against the default
// section catalog. Any malformed or inconsistent record is a fatal load
// error; the engine never starts on a partial bank.
func Load(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open question bank: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses question bank CSV from r. Split out from Load for tests.
func Read(r io.Reader) (*Bank, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(strings.ToLower(h))] = i
	}
	for _, want := range requiredColumns {
		if _, ok := col[want]; !ok {
			return nil, fmt.Errorf("question bank missing required column %q", want)
		}
	}

	var questions []Question
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		get := func(name string) string {
			i := col[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		num, err := strconv.Atoi(get("question_number"))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad question_number %q", line, get("question_number"))
		}
		sec, err := strconv.Atoi(get("section"))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad section %q", line, get("section"))
		}
		questions = append(questions, Question{
			Number:        num,
			SectionID:     sec,
			Text:          get("question"),
			CorrectAnswer: get("correct_answer"),
			Keywords:      splitKeywords(get("keywords")),
		})
	}
	return New(DefaultSections(), questions)
}

// splitKeywords parses the '|'-separated keyword column. Blank entries are
// dropped; an empty column means no keywords to evaluate.
func splitKeywords(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if kw := strings.TrimSpace(p); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
