package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "onlinecourse-service"
	EventVersion = "1.0"
)

type EventType string

const (
	EventCourseEnrolled EventType = "course.enrolled"
	EventExamSubmitted  EventType = "exam.submitted"
)

// EventTypes lists every event type the service publishes
var EventTypes = []EventType{EventCourseEnrolled, EventExamSubmitted}

// Event is the envelope of every published domain event
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type CourseEnrolledData struct {
	UserID   uint   `json:"user_id"`
	CourseID uint   `json:"course_id"`
	Mode     string `json:"mode"`
}

type ExamSubmittedData struct {
	SubmissionID uint `json:"submission_id"`
	UserID       uint `json:"user_id"`
	CourseID     uint `json:"course_id"`
	Score        int  `json:"score"`
	MaxScore     int  `json:"max_score"`
}
