package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/SAP-F-2025/onlinecourse-service/internal/auth"
	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
)

func TestCourseService_ListTop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	courses := make([]*models.Course, 12)
	for i := range courses {
		courses[i] = env.seedCourse(t, fmt.Sprintf("Course %d", i))
	}
	// courses[3] and courses[5] tie on 2, courses[7] leads with 5
	for id, total := range map[uint]int{courses[3].ID: 2, courses[5].ID: 2, courses[7].ID: 5} {
		if err := env.db.Model(&models.Course{}).Where("id = ?", id).UpdateColumn("total_enrollment", total).Error; err != nil {
			t.Fatalf("failed to set counter: %v", err)
		}
	}

	learner := env.seedUser(t, "ada", models.RoleLearner)
	if _, err := env.enrollmentService().Enroll(ctx, learner, courses[5].ID); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}

	svc := NewCourseService(env.repo, env.db, env.logger)
	top, err := svc.ListTop(ctx, learner)
	if err != nil {
		t.Fatalf("ListTop() error = %v", err)
	}
	if len(top) != 10 {
		t.Fatalf("ListTop() returned %d courses, want 10", len(top))
	}

	wantOrder := []uint{courses[7].ID, courses[5].ID, courses[3].ID, courses[0].ID}
	for i, want := range wantOrder {
		if top[i].ID != want {
			t.Errorf("top[%d] = %d, want %d", i, top[i].ID, want)
		}
	}
	for _, c := range top {
		if c.IsEnrolled != (c.ID == courses[5].ID) {
			t.Errorf("course %d IsEnrolled = %v", c.ID, c.IsEnrolled)
		}
	}

	anonymous, err := svc.ListTop(ctx, auth.Anonymous())
	if err != nil {
		t.Fatalf("ListTop(anonymous) error = %v", err)
	}
	for _, c := range anonymous {
		if c.IsEnrolled {
			t.Errorf("anonymous sees course %d as enrolled", c.ID)
		}
	}
}

func TestCourseService_GetByID(t *testing.T) {
	env := newTestEnv(t)
	course := env.seedCourse(t, "Go")
	svc := NewCourseService(env.repo, env.db, env.logger)
	ctx := context.Background()

	detail, err := svc.GetByID(ctx, auth.Anonymous(), course.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(detail.Questions) != 2 || len(detail.Questions[0].Choices) != 3 {
		t.Errorf("detail catalog = %+v", detail.Questions)
	}
	if detail.IsEnrolled {
		t.Error("anonymous detail must not be enrolled")
	}

	if _, err := svc.GetByID(ctx, auth.Anonymous(), 404); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrCourseNotFound", err)
	}
}
