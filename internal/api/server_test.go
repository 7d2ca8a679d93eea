// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Symbiot01/medsight/internal/config"
	controlhttp "github.com/Symbiot01/medsight/internal/control/http"
	"github.com/Symbiot01/medsight/internal/control/middleware"
	"github.com/Symbiot01/medsight/internal/storage"
)

var testBucket = config.BucketConfig{
	BucketURL:    "https://medsight.atl1.digitaloceanspaces.com",
	AccessKey:    "DO00EXAMPLE",
	SecretKey:    "secret",
	BucketName:   "medsight",
	BucketRegion: "atl1",
}

type fakePresigner struct {
	key string
	ttl time.Duration
	err error
}

func (f *fakePresigner) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	f.key, f.ttl = key, ttl
	if f.err != nil {
		return "", f.err
	}
	return "https://atl1.digitaloceanspaces.com/medsight/" + key + "?X-Amz-Signature=sig", nil
}

func (f *fakePresigner) Ping(context.Context) error { return f.err }

func okProvider() *config.Provider {
	return config.NewProviderFunc(func() (config.BucketConfig, error) { return testBucket, nil })
}

func failingProvider() *config.Provider {
	return config.NewProviderFunc(func() (config.BucketConfig, error) {
		return config.BucketConfig{}, &config.ConfigError{Field: config.EnvBucketURL, Reason: config.ReasonInvalidURL}
	})
}

func newTestServer(t *testing.T, p *config.Provider, fp *fakePresigner) http.Handler {
	t.Helper()
	s := New(Config{
		Version:    "test",
		Stack:      middleware.StackConfig{AllowedOrigins: config.DefaultAllowedOrigins},
		PresignTTL: 10 * time.Minute,
	}, p, WithPresigner(func() (storage.Presigner, error) { return fp, nil }))
	return s.Handler()
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var body map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestRoot(t *testing.T) {
	h := newTestServer(t, okProvider(), &fakePresigner{})

	w, body := do(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DICOM Processing Backend API", body["message"])
	assert.Equal(t, "running", body["status"])
	assert.Contains(t, body["endpoints"], "download_url")
	assert.NotEmpty(t, w.Header().Get(controlhttp.HeaderRequestID))
}

func TestRequestIDEchoed(t *testing.T) {
	h := newTestServer(t, okProvider(), &fakePresigner{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-request-id", "abc-123")
	w, _ := do(t, h, req)
	assert.Equal(t, "abc-123", w.Header().Get(controlhttp.HeaderRequestID))
}

func TestNotFoundCarriesRequestID(t *testing.T) {
	h := newTestServer(t, okProvider(), &fakePresigner{})

	w, _ := do(t, h, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, w.Header().Get(controlhttp.HeaderRequestID))
}

func TestDownloadURL(t *testing.T) {
	fp := &fakePresigner{}
	h := newTestServer(t, okProvider(), fp)

	req := httptest.NewRequest(http.MethodPost, "/api/dicom/download-url",
		strings.NewReader(`{"fileName":"studies/ct-001.dcm","expiresIn":3600}`))
	req.Header.Set("Content-Type", "application/json")
	w, body := do(t, h, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "studies/ct-001.dcm", body["fileName"])
	assert.EqualValues(t, 3600, body["expiresIn"])
	assert.Contains(t, body["url"], "X-Amz-Signature")
	assert.Equal(t, "studies/ct-001.dcm", fp.key)
	assert.Equal(t, time.Hour, fp.ttl)
}

func TestDownloadURL_DefaultTTL(t *testing.T) {
	fp := &fakePresigner{}
	h := newTestServer(t, okProvider(), fp)

	req := httptest.NewRequest(http.MethodPost, "/api/dicom/download-url", strings.NewReader(`{"fileName":"a.dcm"}`))
	w, body := do(t, h, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 600, body["expiresIn"])
	assert.Equal(t, 10*time.Minute, fp.ttl)
}

func TestDownloadURL_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		loc     []any
		errType string
	}{
		{"missing file name", `{}`, []any{"body", "fileName"}, "missing"},
		{"ttl too small", `{"fileName":"a.dcm","expiresIn":5}`, []any{"body", "expiresIn"}, "greater_than_equal"},
		{"ttl too large", `{"fileName":"a.dcm","expiresIn":100000}`, []any{"body", "expiresIn"}, "less_than_equal"},
		{"wrong type", `{"fileName":42}`, []any{"body", "fileName"}, "string_type"},
		{"unknown field", `{"fileName":"a.dcm","bucket":"x"}`, []any{"body", "bucket"}, "extra_forbidden"},
		{"empty body", ``, []any{"body"}, "missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, okProvider(), &fakePresigner{})

			req := httptest.NewRequest(http.MethodPost, "/api/dicom/download-url", strings.NewReader(tt.body))
			w, body := do(t, h, req)

			require.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Equal(t, w.Header().Get(controlhttp.HeaderRequestID), body["requestId"])

			detail, ok := body["detail"].([]any)
			require.True(t, ok, "detail should be a list: %v", body["detail"])
			require.Len(t, detail, 1)
			item := detail[0].(map[string]any)
			assert.Equal(t, tt.loc, item["loc"])
			assert.Equal(t, tt.errType, item["type"])
			assert.NotEmpty(t, item["msg"])
		})
	}
}

func TestDownloadURL_StorageNotConfigured(t *testing.T) {
	h := newTestServer(t, failingProvider(), &fakePresigner{})

	req := httptest.NewRequest(http.MethodPost, "/api/dicom/download-url", strings.NewReader(`{"fileName":"a.dcm"}`))
	req.Header.Set("x-request-id", "cfg-1")
	w, body := do(t, h, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, DetailStorageNotConfigured, body["detail"])
	assert.Equal(t, "cfg-1", body["requestId"])
}

func TestDownloadURL_PresignFailureIsUnhandled(t *testing.T) {
	h := newTestServer(t, okProvider(), &fakePresigner{err: errors.New("signer exploded")})

	req := httptest.NewRequest(http.MethodPost, "/api/dicom/download-url", strings.NewReader(`{"fileName":"a.dcm"}`))
	w, _ := do(t, h, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "signer exploded")
	assert.NotEmpty(t, w.Header().Get(controlhttp.HeaderRequestID))
}

func TestStorage(t *testing.T) {
	h := newTestServer(t, okProvider(), &fakePresigner{})

	w, body := do(t, h, httptest.NewRequest(http.MethodGet, "/api/storage", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{
		"bucketName":   "medsight",
		"bucketRegion": "atl1",
		"endpoint":     "https://atl1.digitaloceanspaces.com",
	}, body)
	assert.NotContains(t, w.Body.String(), "secret")
	assert.NotContains(t, w.Body.String(), "DO00EXAMPLE")
}

func TestStorage_NotConfigured(t *testing.T) {
	h := newTestServer(t, failingProvider(), &fakePresigner{})

	w, body := do(t, h, httptest.NewRequest(http.MethodGet, "/api/storage", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, DetailStorageNotConfigured, body["detail"])
}

func TestReadiness(t *testing.T) {
	w, body := do(t, newTestServer(t, okProvider(), &fakePresigner{}), httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ready"])

	w, body = do(t, newTestServer(t, failingProvider(), &fakePresigner{}), httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, false, body["ready"])
}

func TestPreflight(t *testing.T) {
	h := newTestServer(t, okProvider(), &fakePresigner{})

	req := httptest.NewRequest(http.MethodOptions, "/api/dicom/download-url", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	w, _ := do(t, h, req)

	assert.Less(t, w.Code, 300)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.NotEmpty(t, w.Header().Get(controlhttp.HeaderRequestID))
}

func TestMetricsEndpoint(t *testing.T) {
	s := New(Config{Stack: middleware.StackConfig{EnableMetrics: true}}, okProvider(),
		WithPresigner(func() (storage.Presigner, error) { return &fakePresigner{}, nil }))
	h := s.Handler()

	do(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "medsight_http_request_duration_seconds")
}
