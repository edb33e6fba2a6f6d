package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"contentops-workflow/internal/domain/apperr"
	"contentops-workflow/internal/domain/tenant"
	"contentops-workflow/internal/logging"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestHealth_ReturnsOKWithRFC3339NanoUTC(t *testing.T) {
	e := echo.New()
	h := NewHandler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	start := time.Now().UTC()

	if err := h.Health(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	ct := rec.Header().Get(echo.HeaderContentType)
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		t.Fatalf("expected Content-Type application/json, got %q", ct)
	}

	var body struct {
		Status string `json:"status"`
		Time   string `json:"time"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v; raw=%s", err, rec.Body.String())
	}
	if body.Status != "ok" {
		t.Fatalf(`expected status "ok", got %q`, body.Status)
	}

	parsed, err := time.Parse(time.RFC3339Nano, body.Time)
	if err != nil {
		t.Fatalf("time not RFC3339Nano: %v (value=%q)", err, body.Time)
	}
	if parsed.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %v", parsed.Location())
	}
	now := time.Now().UTC()
	if parsed.Before(start.Add(-2*time.Second)) || parsed.After(now.Add(2*time.Second)) {
		t.Fatalf("time not within expected window: parsed=%v start=%v now=%v", parsed, start, now)
	}
}

func TestWriteError_StatusByKind(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.Validation("bad", apperr.FieldError{Field: "x", Message: "is required"}), http.StatusUnprocessableEntity},
		{apperr.InvalidTransition("no"), http.StatusConflict},
		{apperr.Precondition("not yet"), http.StatusConflict},
		{apperr.Conflict("dup"), http.StatusConflict},
		{apperr.Authorization("denied"), http.StatusForbidden},
		{apperr.NotFound("Thing"), http.StatusNotFound},
		{apperr.Configuration("missing url"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", apperr.Authorization("denied")), http.StatusForbidden},
		{tenant.ErrMissingTenant, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		if err := writeError(c, tt.err); err != nil {
			t.Fatalf("writeError(%v): %v", tt.err, err)
		}
		if rec.Code != tt.want {
			t.Fatalf("writeError(%v) status = %d, want %d", tt.err, rec.Code, tt.want)
		}
	}
}

func TestWriteError_HidesInternalMessages(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = writeError(c, errors.New("dial tcp 10.0.0.1:3306: refused"))

	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if er.Error != "internal error" || er.Kind != "" {
		t.Fatalf("unexpected body: %+v", er)
	}
}

func TestWriteError_CarriesFieldDetails(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = writeError(c, apperr.Validation("Please fix the highlighted fields.",
		apperr.FieldError{Field: "scheduled_for", Message: "must be an RFC3339 time"}))

	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if er.Kind != "validation" || len(er.Details) != 1 || er.Details[0].Field != "scheduled_for" {
		t.Fatalf("unexpected body: %+v", er)
	}
}

func TestWriteError_LogsUnclassifiedToRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.WithContext(context.Background(), zerolog.New(&buf))

	e := echo.New()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	c := e.NewContext(req, rec)
	_ = writeError(c, errors.New("dial tcp 10.0.0.1:3306: refused"))

	if !strings.Contains(buf.String(), "unhandled error") || !strings.Contains(buf.String(), "3306") {
		t.Fatalf("expected the cause in the request log, got %q", buf.String())
	}
	if strings.Contains(rec.Body.String(), "3306") {
		t.Fatalf("cause leaked into the response: %s", rec.Body.String())
	}
}
