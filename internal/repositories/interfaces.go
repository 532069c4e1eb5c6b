package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// TopCoursesLimit caps the popular course listing.
const TopCoursesLimit = 10

var ErrNotFound = errors.New("record not found")

// IsNotFoundError reports whether err means the requested row does not exist
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is a unique constraint violation.
// The gorm connection must be opened with TranslateError enabled.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// SubmissionFilters narrows submission listings
type SubmissionFilters struct {
	CourseID *uint
	UserID   *uint
	Limit    int
	Offset   int
}
