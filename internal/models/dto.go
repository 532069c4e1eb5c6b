package models

import (
	"time"
)

// ===== COURSE VIEWS =====

type CourseSummary struct {
	ID              uint       `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	PubDate         *time.Time `json:"pub_date,omitempty"`
	TotalEnrollment int        `json:"total_enrollment"`
	IsEnrolled      bool       `json:"is_enrolled"`
}

type CourseDetail struct {
	CourseSummary
	Questions []QuestionView `json:"questions"`
}

// QuestionView is a question as shown to learners; correctness flags are omitted.
type QuestionView struct {
	ID      uint         `json:"id"`
	Text    string       `json:"text"`
	Grade   int          `json:"grade"`
	Choices []ChoiceView `json:"choices"`
}

type ChoiceView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

func NewCourseSummary(c *Course, enrolled bool) CourseSummary {
	return CourseSummary{
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		PubDate:         c.PubDate,
		TotalEnrollment: c.TotalEnrollment,
		IsEnrolled:      enrolled,
	}
}

func NewCourseDetail(c *Course, enrolled bool) *CourseDetail {
	detail := &CourseDetail{
		CourseSummary: NewCourseSummary(c, enrolled),
		Questions:     make([]QuestionView, 0, len(c.Questions)),
	}
	for _, q := range c.Questions {
		view := QuestionView{
			ID:      q.ID,
			Text:    q.Text,
			Grade:   q.Grade,
			Choices: make([]ChoiceView, 0, len(q.Choices)),
		}
		for _, ch := range q.Choices {
			view.Choices = append(view.Choices, ChoiceView{ID: ch.ID, Text: ch.Text})
		}
		detail.Questions = append(detail.Questions, view)
	}
	return detail
}

// ===== EXAM RESULT VIEWS =====

type SelectedChoice struct {
	ID         uint   `json:"id"`
	QuestionID uint   `json:"question_id"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
}

type QuestionResult struct {
	QuestionID        uint   `json:"question_id"`
	Text              string `json:"text"`
	Grade             int    `json:"grade"`
	Awarded           int    `json:"awarded"`
	Correct           bool   `json:"correct"`
	SelectedChoiceIDs []uint `json:"selected_choice_ids"`
	CorrectChoiceIDs  []uint `json:"correct_choice_ids"`
}

type ExamResult struct {
	Course          CourseSummary    `json:"course"`
	SubmissionID    uint             `json:"submission_id"`
	SubmittedAt     time.Time        `json:"submitted_at"`
	Score           int              `json:"grade"`
	MaxScore        int              `json:"max_grade"`
	SelectedChoices []SelectedChoice `json:"selected_choices"`
	Questions       []QuestionResult `json:"questions"`
}
