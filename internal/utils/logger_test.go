package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		status    int
		wantLevel string
		wantMsg   string
	}{
		{name: "success", status: http.StatusOK, wantLevel: "INFO", wantMsg: "Request completed"},
		{name: "client error", status: http.StatusNotFound, wantLevel: "WARN", wantMsg: "Request rejected"},
		{name: "server error", status: http.StatusInternalServerError, wantLevel: "ERROR", wantMsg: "Request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

			router := gin.New()
			router.Use(func(c *gin.Context) {
				c.Set("request_id", "req-1")
				c.Next()
			})
			router.Use(ContextLogger(logger))
			router.Use(LoggerMiddleware(logger))
			router.GET("/x", func(c *gin.Context) { c.Status(tt.status) })

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

			var entry map[string]any
			if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
				t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry["msg"] != tt.wantMsg {
				t.Errorf("msg = %v, want %s", entry["msg"], tt.wantMsg)
			}
			if entry["request_id"] != "req-1" {
				t.Errorf("request_id = %v, want req-1", entry["request_id"])
			}
			if int(entry["status"].(float64)) != tt.status {
				t.Errorf("status = %v, want %d", entry["status"], tt.status)
			}
		})
	}
}

func TestLogAttrsFromContext(t *testing.T) {
	if attrs := LogAttrsFromContext(context.Background()); attrs != nil {
		t.Errorf("LogAttrsFromContext(empty) = %v, want nil", attrs)
	}

	ctx := WithRequestID(context.Background(), "abc")
	attrs := LogAttrsFromContext(ctx)
	if len(attrs) != 2 || attrs[1] != "abc" {
		t.Errorf("LogAttrsFromContext() = %v", attrs)
	}
}

func TestSlogLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil))).With("component", "test")
	logger.Info("hello")

	if !strings.Contains(buf.String(), "component=test") {
		t.Errorf("missing attribute in %q", buf.String())
	}
}
