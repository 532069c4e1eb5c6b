package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/onlinecourse-service/internal/auth"
	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
	"github.com/SAP-F-2025/onlinecourse-service/internal/repositories"
	"github.com/SAP-F-2025/onlinecourse-service/internal/telemetry"
	"github.com/SAP-F-2025/onlinecourse-service/internal/validator"
)

const resultsSheet = "Results"

// Catalog spreadsheet columns
const (
	colCourseTitle       = "course_title"
	colCourseDescription = "course_description"
	colQuestionText      = "question_text"
	colQuestionGrade     = "question_grade"
	colChoiceText        = "choice_text"
	colChoiceIsCorrect   = "choice_is_correct"
)

var requiredCatalogColumns = []string{colCourseTitle, colQuestionText, colChoiceText}

var resultsHeader = []string{
	"Submission ID", "Username", "First Name", "Last Name", "Mode", "Submitted At", "Score", "Max Score",
}

type importExportService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewImportExportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) ImportExportService {
	return &importExportService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== CATALOG IMPORT =====

// ImportCatalog creates courses with their questions and choices from the
// first sheet of an xlsx workbook. Every row is one choice. The import is all
// or nothing.
func (s *importExportService) ImportCatalog(ctx context.Context, identity auth.Identity, r io.Reader) (*ImportResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "ImportExportService.ImportCatalog")
	defer span.End()

	if !identity.IsAdmin() {
		return nil, NewPermissionError(identity.UserID, 0, "catalog", "import", "admin role required")
	}

	rows, err := s.readCatalogRows(r)
	if err != nil {
		return nil, err
	}

	courses, errs := groupCatalog(rows)
	if len(errs) > 0 {
		return nil, errs
	}
	if len(courses) == 0 {
		return nil, NewBusinessRuleError("catalog_empty", "workbook contains no catalog rows", nil)
	}

	result := &ImportResult{CourseIDs: make([]uint, 0, len(courses))}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, course := range courses {
			if err := s.repo.Course().Create(ctx, tx, course); err != nil {
				return err
			}
			result.CourseIDs = append(result.CourseIDs, course.ID)
			result.Courses++
			result.Questions += len(course.Questions)
			for _, q := range course.Questions {
				result.Choices += len(q.Choices)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import catalog: %w", err)
	}

	for _, id := range result.CourseIDs {
		s.repo.Course().InvalidateCache(ctx, id)
	}

	s.logger.InfoContext(ctx, "Catalog imported",
		"courses", result.Courses,
		"questions", result.Questions,
		"choices", result.Choices)
	return result, nil
}

func (s *importExportService) readCatalogRows(r io.Reader) ([]*validator.CatalogRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ValidationErrors{*NewValidationError("file", "is not a valid xlsx workbook", nil)}
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Error("Failed to close workbook", "error", err)
		}
	}()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ValidationErrors{*NewValidationError("file", "contains no sheets", nil)}
	}

	sheetRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}
	if len(sheetRows) == 0 {
		return nil, ValidationErrors{*NewValidationError("file", "has no header row", nil)}
	}

	columns := make(map[string]int)
	for i, name := range sheetRows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var errs ValidationErrors
	for _, name := range requiredCatalogColumns {
		if _, ok := columns[name]; !ok {
			errs = append(errs, *NewValidationError("header", "missing column", name))
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	cell := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	rows := make([]*validator.CatalogRow, 0, len(sheetRows)-1)
	for i, raw := range sheetRows[1:] {
		line := i + 2
		if isBlankRow(raw) {
			continue
		}

		row := &validator.CatalogRow{
			Line:              line,
			CourseTitle:       cell(raw, colCourseTitle),
			CourseDescription: cell(raw, colCourseDescription),
			QuestionText:      cell(raw, colQuestionText),
			ChoiceText:        cell(raw, colChoiceText),
		}

		if v := cell(raw, colQuestionGrade); v != "" {
			grade, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, *NewValidationError(rowField(line, colQuestionGrade), "must be an integer", v))
				continue
			}
			row.QuestionGrade = grade
			row.HasGrade = true
		}
		if v := cell(raw, colChoiceIsCorrect); v != "" {
			correct, err := parseBool(v)
			if err != nil {
				errs = append(errs, *NewValidationError(rowField(line, colChoiceIsCorrect), "must be a boolean", v))
				continue
			}
			row.ChoiceIsCorrect = correct
		}

		for _, fe := range s.validator.ValidateCatalogRow(row) {
			fe.Field = rowField(line, fe.Field)
			errs = append(errs, fe)
		}
		rows = append(rows, row)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return rows, nil
}

// groupCatalog folds choice rows into courses and questions, in order of first
// appearance. Rows of one question must not disagree on its grade; a blank
// grade cell defers to the other rows.
func groupCatalog(rows []*validator.CatalogRow) ([]*models.Course, ValidationErrors) {
	var courses []*models.Course
	var errs ValidationErrors
	courseIndex := make(map[string]*models.Course)
	questionIndex := make(map[string]map[string]int)
	gradeSet := make(map[*models.Course]map[int]bool)

	for _, row := range rows {
		course, ok := courseIndex[row.CourseTitle]
		if !ok {
			course = &models.Course{Title: row.CourseTitle, Description: row.CourseDescription}
			courseIndex[row.CourseTitle] = course
			questionIndex[row.CourseTitle] = make(map[string]int)
			gradeSet[course] = make(map[int]bool)
			courses = append(courses, course)
		}

		qi, ok := questionIndex[row.CourseTitle][row.QuestionText]
		if !ok {
			course.Questions = append(course.Questions, models.Question{Text: row.QuestionText, Grade: row.QuestionGrade})
			qi = len(course.Questions) - 1
			questionIndex[row.CourseTitle][row.QuestionText] = qi
			gradeSet[course][qi] = row.HasGrade
		} else if row.HasGrade {
			question := &course.Questions[qi]
			switch {
			case !gradeSet[course][qi]:
				question.Grade = row.QuestionGrade
				gradeSet[course][qi] = true
			case question.Grade != row.QuestionGrade:
				errs = append(errs, *NewValidationError(rowField(row.Line, colQuestionGrade),
					fmt.Sprintf("conflicts with grade %d given earlier for the same question", question.Grade),
					row.QuestionGrade))
			}
		}

		course.Questions[qi].Choices = append(course.Questions[qi].Choices, models.Choice{
			Text:      row.ChoiceText,
			IsCorrect: row.ChoiceIsCorrect,
		})
	}
	return courses, errs
}

// ===== RESULTS EXPORT =====

// ExportCourseResults writes one row per submission, graded against the current catalog
func (s *importExportService) ExportCourseResults(ctx context.Context, identity auth.Identity, courseID uint) (*bytes.Buffer, error) {
	if !identity.IsAdmin() {
		return nil, NewPermissionError(identity.UserID, courseID, "course", "export_results", "admin role required")
	}

	course, err := s.repo.Course().GetWithCatalog(ctx, s.db, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course catalog: %w", err)
	}

	submissions, err := s.repo.Submission().List(ctx, s.db, repositories.SubmissionFilters{CourseID: &courseID})
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Error("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), resultsSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeRow(f, 1, toCells(resultsHeader)); err != nil {
		return nil, err
	}

	for i, sub := range submissions {
		grade := GradeSubmission(course.Questions, sub.ChoiceIDs())

		var username, firstName, lastName, mode string
		if sub.Enrollment != nil {
			mode = string(sub.Enrollment.Mode)
			if sub.Enrollment.User != nil {
				username = sub.Enrollment.User.Username
				firstName = sub.Enrollment.User.FirstName
				lastName = sub.Enrollment.User.LastName
			}
		}

		values := []interface{}{
			sub.ID, username, firstName, lastName, mode,
			sub.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			grade.Score, grade.MaxScore,
		}
		if err := writeRow(f, i+2, values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.InfoContext(ctx, "Course results exported", "course_id", courseID, "submissions", len(submissions))
	return buf, nil
}

// ===== HELPERS =====

func writeRow(f *excelize.File, row int, values []interface{}) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to address cell: %w", err)
		}
		if err := f.SetCellValue(resultsSheet, cell, value); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func rowField(line int, field string) string {
	return fmt.Sprintf("row %d %s", line, field)
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

var errNotBoolean = errors.New("not a boolean")

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "yes", "y", "x":
		return true, nil
	case "no", "n":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errNotBoolean
	}
	return b, nil
}
