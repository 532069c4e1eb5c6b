package models

import (
	"time"

	"gorm.io/datatypes"
)

type EnrollmentMode string

const (
	EnrollmentAudit EnrollmentMode = "audit"
	EnrollmentHonor EnrollmentMode = "honor"
	EnrollmentBeta  EnrollmentMode = "BETA"
)

func (m EnrollmentMode) IsValid() bool {
	switch m {
	case EnrollmentAudit, EnrollmentHonor, EnrollmentBeta:
		return true
	}
	return false
}

// Enrollment links one user to one course. The (user_id, course_id) pair is unique.
type Enrollment struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserID       uint           `json:"user_id" gorm:"not null;index;uniqueIndex:idx_enrollment_user_course"`
	CourseID     uint           `json:"course_id" gorm:"not null;index;uniqueIndex:idx_enrollment_user_course"`
	Mode         EnrollmentMode `json:"mode" gorm:"type:varchar(10);not null;default:honor"`
	DateEnrolled time.Time      `json:"date_enrolled" gorm:"not null"`

	// Relations
	User   *User   `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// Submission is one exam attempt. It is written once and never updated.
type Submission struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	EnrollmentID uint           `json:"enrollment_id" gorm:"not null;index"`
	ClientInfo   datatypes.JSON `json:"client_info"`
	CreatedAt    time.Time      `json:"created_at"`

	// Relations
	Enrollment *Enrollment `json:"enrollment,omitempty" gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE"`
	Choices    []Choice    `json:"choices" gorm:"many2many:submission_choices;constraint:OnDelete:CASCADE"`
}

func (Submission) TableName() string {
	return "submissions"
}

// ChoiceIDs returns the IDs of the selected choices.
func (s *Submission) ChoiceIDs() []uint {
	ids := make([]uint, len(s.Choices))
	for i, c := range s.Choices {
		ids[i] = c.ID
	}
	return ids
}
