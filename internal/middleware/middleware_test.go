package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean", "/api/gallery", "/api/gallery"},
		{"newline injection", "GET /x\n2026-01-01 evil", "GET /x 2026-01-01 evil"},
		{"ansi escape", "path\x1b[31mred", "path[31mred"},
		{"null byte", "a\x00b", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLogField(tt.input); got != tt.want {
				t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestShouldSkipLogging(t *testing.T) {
	config := LoggingConfig{SkipPaths: []string{"/static/"}}

	if !shouldSkipLogging("/static/app.css", config) {
		t.Error("configured skip path was logged")
	}
	if !shouldSkipLogging("/healthz", config) {
		t.Error("health check was logged with LogHealthChecks false")
	}
	if shouldSkipLogging("/api/gallery", config) {
		t.Error("API path was skipped")
	}

	config.LogHealthChecks = true
	if shouldSkipLogging("/healthz", config) {
		t.Error("health check skipped with LogHealthChecks true")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"socket address", "192.0.2.1:1234", nil, "192.0.2.1"},
		{"x-forwarded-for", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "203.0.113.7"},
		{"x-real-ip", "10.0.0.1:80", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := clientIP(r); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoggerPreservesResponse(t *testing.T) {
	handler := Logger(DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/gallery", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	if rec.Body.String() != "short and stout" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/thumbnail/vacation/clip.mp4", "/thumbnail/{path}"},
		{"/media/photo.jpg", "/media/{path}"},
		{"/static/app.css", "/static/{file}"},
		{"/api/gallery", "/api/gallery"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMetricsMiddlewarePassesThrough(t *testing.T) {
	handler := Metrics(DefaultMetricsConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/gallery", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCompressionGzipsJSON(t *testing.T) {
	payload := strings.Repeat(`{"path":"clip.mp4"},`, 100)
	handler := Compression()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/gallery", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatal("response not gzip encoded")
	}
	gr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("invalid gzip body: %v", err)
	}
	defer gr.Close()
	body, err := io.ReadAll(gr)
	if err != nil {
		t.Fatalf("failed to decompress: %v", err)
	}
	if string(body) != payload {
		t.Error("decompressed body does not match original")
	}
}

func TestCompressionSkipsMediaTypes(t *testing.T) {
	handler := Compression()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("binary png bytes"))
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/thumbnail/clip.mp4", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") == "gzip" {
		t.Error("binary response was compressed")
	}
	if rec.Body.String() != "binary png bytes" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestCompressionSkipsWithoutAcceptEncoding(t *testing.T) {
	handler := Compression()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/gallery", nil))

	if rec.Header().Get("Content-Encoding") == "gzip" {
		t.Error("compressed without Accept-Encoding: gzip")
	}
}
