package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type cachedCourse struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func newTestManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheManager(client), mr
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return cachedCourse{ID: 7, Title: "Go"}, nil
	}

	var first cachedCourse
	if err := cm.Course.CacheOrExecute(ctx, CourseKey(7), &first, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute() error = %v", err)
	}
	if first.Title != "Go" {
		t.Errorf("title = %q, want Go", first.Title)
	}
	if !mr.Exists("course:id:7") {
		t.Error("expected course:id:7 to be stored")
	}

	var second cachedCourse
	if err := cm.Course.CacheOrExecute(ctx, CourseKey(7), &second, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
	if second != first {
		t.Errorf("cached value = %+v, want %+v", second, first)
	}
}

func TestCacheHelper_CacheOrExecuteFetchError(t *testing.T) {
	cm, mr := newTestManager(t)
	wantErr := errors.New("boom")

	var dest cachedCourse
	err := cm.Course.CacheOrExecute(context.Background(), "id:1", &dest, time.Minute, func() (interface{}, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
	if mr.Exists("course:id:1") {
		t.Error("failed fetch must not be cached")
	}
}

func TestCacheHelper_WithoutClient(t *testing.T) {
	helper := NewCacheHelper(nil, "course:")
	ctx := context.Background()

	if err := helper.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Errorf("Set() without client error = %v", err)
	}
	var out string
	if err := helper.Get(ctx, "k", &out); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Get() error = %v, want ErrCacheNotAvailable", err)
	}

	calls := 0
	err := helper.CacheOrExecute(ctx, "k", &out, time.Minute, func() (interface{}, error) {
		calls++
		return "fresh", nil
	})
	if err != nil || out != "fresh" || calls != 1 {
		t.Errorf("CacheOrExecute() = (%q, %v, calls=%d)", out, err, calls)
	}
}

func TestInvalidateCourseCache(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	for _, key := range []string{CourseKey(1), CourseKey(2), TopCoursesKey(10), TopCoursesKey(5)} {
		if err := cm.Course.Set(ctx, key, cachedCourse{ID: 1}, time.Minute); err != nil {
			t.Fatalf("Set(%s) error = %v", key, err)
		}
	}

	InvalidateCourseCache(ctx, cm, 1)

	tests := []struct {
		key  string
		want bool
	}{
		{"course:id:1", false},
		{"course:id:2", true},
		{"course:top:10", false},
		{"course:top:5", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := mr.Exists(tt.key); got != tt.want {
				t.Errorf("Exists(%s) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}
