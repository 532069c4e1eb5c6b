package services

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
)

// choiceFieldPrefix marks the form fields that carry selected choice IDs
const choiceFieldPrefix = "choice"

// GradeResult is the outcome of grading one set of selections
type GradeResult struct {
	Score     int                     `json:"score"`
	MaxScore  int                     `json:"max_score"`
	Questions []models.QuestionResult `json:"questions"`
}

// GradeSubmission awards a question's grade when the selected choices of that
// question are exactly its correct choices. There is no partial credit.
func GradeSubmission(questions []models.Question, selected []uint) GradeResult {
	chosen := make(map[uint]struct{}, len(selected))
	for _, id := range selected {
		chosen[id] = struct{}{}
	}

	result := GradeResult{Questions: make([]models.QuestionResult, 0, len(questions))}
	for i := range questions {
		q := &questions[i]
		qr := models.QuestionResult{
			QuestionID:        q.ID,
			Text:              q.Text,
			Grade:             q.Grade,
			SelectedChoiceIDs: []uint{},
			CorrectChoiceIDs:  []uint{},
		}

		correct := true
		for _, c := range q.Choices {
			_, picked := chosen[c.ID]
			if picked {
				qr.SelectedChoiceIDs = append(qr.SelectedChoiceIDs, c.ID)
			}
			if c.IsCorrect {
				qr.CorrectChoiceIDs = append(qr.CorrectChoiceIDs, c.ID)
			}
			if picked != c.IsCorrect {
				correct = false
			}
		}

		qr.Correct = correct
		if correct {
			qr.Awarded = q.Grade
		}

		result.Score += qr.Awarded
		result.MaxScore += q.Grade
		result.Questions = append(result.Questions, qr)
	}
	return result
}

// ExtractAnswers collects the choice IDs from every "choice*" form field in
// key order. Any value that is not an unsigned integer fails the whole set.
func ExtractAnswers(form url.Values) ([]uint, error) {
	keys := make([]string, 0, len(form))
	for key := range form {
		if strings.HasPrefix(key, choiceFieldPrefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	ids := make([]uint, 0, len(keys))
	for _, key := range keys {
		for _, value := range form[key] {
			id, err := parseChoiceID(value)
			if err != nil {
				return nil, fmt.Errorf("%w: field %s value %q", ErrInvalidChoiceID, key, value)
			}
			ids = append(ids, uint(id))
		}
	}
	return ids, nil
}

// parseChoiceID accepts a decimal ID with surrounding whitespace and an optional plus sign
func parseChoiceID(value string) (uint64, error) {
	v := strings.TrimSpace(value)
	v = strings.TrimPrefix(v, "+")
	return strconv.ParseUint(v, 10, 64)
}

// uniqueIDs drops repeated IDs, keeping first occurrences in order
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
