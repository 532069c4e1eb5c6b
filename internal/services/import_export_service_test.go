package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
	"github.com/SAP-F-2025/onlinecourse-service/internal/validator"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				t.Fatal(err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}
	return buf
}

var catalogHeader = []interface{}{
	"course_title", "course_description", "question_text", "question_grade", "choice_text", "choice_is_correct",
}

func TestImportExportService_ImportCatalog(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "root", models.RoleAdmin)
	svc := NewImportExportService(env.repo, env.db, env.logger, env.validator)

	workbook := buildWorkbook(t, [][]interface{}{
		catalogHeader,
		{"Go", "Learn Go", "Zero value of int?", 5, "0", "true"},
		{"Go", "", "Zero value of int?", 5, "nil", "false"},
		{"Go", "", "Keyword for goroutines?", 10, "go", "yes"},
		{},
		{"SQL", "", "Select all rows?", 3, "SELECT *", "TRUE"},
	})

	result, err := svc.ImportCatalog(context.Background(), admin, workbook)
	if err != nil {
		t.Fatalf("ImportCatalog() error = %v", err)
	}
	if result.Courses != 2 || result.Questions != 3 || result.Choices != 4 {
		t.Errorf("ImportCatalog() = %+v", result)
	}

	course, err := env.repo.Course().GetWithCatalog(context.Background(), env.db, result.CourseIDs[0])
	if err != nil {
		t.Fatalf("GetWithCatalog() error = %v", err)
	}
	if course.Title != "Go" || course.Description != "Learn Go" {
		t.Errorf("imported course = %+v", course)
	}
	if len(course.Questions) != 2 || course.Questions[0].Grade != 5 || len(course.Questions[0].Choices) != 2 {
		t.Errorf("imported questions = %+v", course.Questions)
	}
	if !course.Questions[0].Choices[0].IsCorrect || course.Questions[0].Choices[1].IsCorrect {
		t.Errorf("imported correctness = %+v", course.Questions[0].Choices)
	}
}

func TestImportExportService_ImportCatalogRejects(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "root", models.RoleAdmin)
	learner := env.seedUser(t, "ada", models.RoleLearner)
	svc := NewImportExportService(env.repo, env.db, env.logger, env.validator)
	ctx := context.Background()

	var permErr *PermissionError
	if _, err := svc.ImportCatalog(ctx, learner, buildWorkbook(t, [][]interface{}{catalogHeader})); !errors.As(err, &permErr) {
		t.Errorf("learner ImportCatalog() error = %v, want PermissionError", err)
	}

	tests := []struct {
		name string
		rows [][]interface{}
	}{
		{name: "bad grade", rows: [][]interface{}{catalogHeader, {"Go", "", "Q", "ten", "A", "true"}}},
		{name: "bad boolean", rows: [][]interface{}{catalogHeader, {"Go", "", "Q", 1, "A", "maybe"}}},
		{name: "missing choice text", rows: [][]interface{}{catalogHeader, {"Go", "", "Q", 1, "", "true"}}},
		{name: "missing column", rows: [][]interface{}{{"course_title", "question_text"}, {"Go", "Q"}}},
		{name: "conflicting grade", rows: [][]interface{}{
			catalogHeader,
			{"Go", "", "Q", 5, "A", "true"},
			{"Go", "", "Q", 3, "B", "false"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ve ValidationErrors
			if _, err := svc.ImportCatalog(ctx, admin, buildWorkbook(t, tt.rows)); !errors.As(err, &ve) {
				t.Errorf("ImportCatalog() error = %v, want ValidationErrors", err)
			}
		})
	}

	var ruleErr *BusinessRuleError
	if _, err := svc.ImportCatalog(ctx, admin, buildWorkbook(t, [][]interface{}{catalogHeader, {}})); !errors.As(err, &ruleErr) || ruleErr.Rule != "catalog_empty" {
		t.Errorf("header only ImportCatalog() error = %v, want catalog_empty rule", err)
	}

	if _, err := svc.ImportCatalog(ctx, admin, bytes.NewBufferString("not a workbook")); err == nil {
		t.Error("expected error for non-xlsx input")
	}
	if got := env.count(t, &models.Course{}); got != 0 {
		t.Errorf("courses = %d, want 0 after rejected imports", got)
	}
}

func TestGroupCatalog_Grades(t *testing.T) {
	rows := []*validator.CatalogRow{
		{Line: 2, CourseTitle: "Go", QuestionText: "Q1", ChoiceText: "A"},
		{Line: 3, CourseTitle: "Go", QuestionText: "Q1", QuestionGrade: 4, HasGrade: true, ChoiceText: "B"},
		{Line: 4, CourseTitle: "Go", QuestionText: "Q1", ChoiceText: "C"},
		{Line: 5, CourseTitle: "Go", QuestionText: "Q2", QuestionGrade: 2, HasGrade: true, ChoiceText: "A"},
		{Line: 6, CourseTitle: "Go", QuestionText: "Q2", QuestionGrade: 7, HasGrade: true, ChoiceText: "B"},
	}

	courses, errs := groupCatalog(rows)
	if len(courses) != 1 || len(courses[0].Questions) != 2 {
		t.Fatalf("groupCatalog() courses = %+v", courses)
	}
	if got := courses[0].Questions[0].Grade; got != 4 {
		t.Errorf("Q1 grade = %d, want 4 from the first row that states one", got)
	}
	if len(errs) != 1 || errs[0].Field != "row 6 question_grade" {
		t.Errorf("groupCatalog() errs = %v, want one error on row 6", errs)
	}
}

func TestImportExportService_ExportCourseResults(t *testing.T) {
	env := newTestEnv(t)
	course := env.seedCourse(t, "Go")
	admin := env.seedUser(t, "root", models.RoleAdmin)
	learner := env.seedUser(t, "ada", models.RoleLearner)
	ctx := context.Background()

	if _, err := env.enrollmentService().Enroll(ctx, learner, course.ID); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	selected := []uint{choiceID(course, 0, 0), choiceID(course, 0, 1), choiceID(course, 1, 0)}
	if _, err := env.examService().Submit(ctx, learner, course.ID, selected, nil); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	svc := NewImportExportService(env.repo, env.db, env.logger, env.validator)
	buf, err := svc.ExportCourseResults(ctx, admin, course.ID)
	if err != nil {
		t.Fatalf("ExportCourseResults() error = %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Results")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header plus one submission", len(rows))
	}
	if rows[0][0] != "Submission ID" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "ada" || rows[1][4] != "honor" || rows[1][6] != "15" || rows[1][7] != "15" {
		t.Errorf("result row = %v", rows[1])
	}

	var permErr *PermissionError
	if _, err := svc.ExportCourseResults(ctx, learner, course.ID); !errors.As(err, &permErr) {
		t.Errorf("learner ExportCourseResults() error = %v, want PermissionError", err)
	}
	if _, err := svc.ExportCourseResults(ctx, admin, 404); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("ExportCourseResults(missing) error = %v, want ErrCourseNotFound", err)
	}
}
