package api

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crxaudit/crxaudit-cli/internal/analyzer"
	"go.uber.org/zap"
)

func testPackage(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("manifest.json")
	if err != nil {
		t.Fatalf("create manifest entry: %v", err)
	}
	if _, err := f.Write([]byte(`{"name":"API Test","version":"1.0","manifest_version":3,"permissions":["tabs"]}`)); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestHealthz(t *testing.T) {
	srv := NewServer(Config{Logger: zap.NewNop()})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAnalyzeUpload(t *testing.T) {
	srv := NewServer(Config{Logger: zap.NewNop()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(testPackage(t)))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result analyzer.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Name != "API Test" {
		t.Errorf("name = %q", result.Name)
	}
	if len(result.Permissions) != 1 || result.Permissions[0].Permission != "tabs" {
		t.Errorf("permissions = %v", result.Permissions)
	}
}

func TestAnalyzeRejectsInvalidPackage(t *testing.T) {
	srv := NewServer(Config{Logger: zap.NewNop()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader([]byte("junk")))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestAnalyzeRejectsEmptyBody(t *testing.T) {
	srv := NewServer(Config{Logger: zap.NewNop()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeMethodNotAllowed(t *testing.T) {
	srv := NewServer(Config{Logger: zap.NewNop()})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analyze", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestAuthToken(t *testing.T) {
	srv := NewServer(Config{Logger: zap.NewNop(), AuthToken: "sekrit"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(testPackage(t)))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("without token: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(testPackage(t)))
	req.Header.Set("X-Auth-Token", "sekrit")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("with token: status = %d, want 200", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	srv := NewServer(Config{Logger: zap.NewNop(), RateLimit: 1, RateBurst: 1})

	first := httptest.NewRecorder()
	srv.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request: status = %d", first.Code)
	}

	second := httptest.NewRecorder()
	srv.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second request: status = %d, want 429", second.Code)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	srv := NewServer(Config{Logger: zap.NewNop()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "trace-123" {
		t.Errorf("X-Request-ID = %q, want echoed value", got)
	}
}
