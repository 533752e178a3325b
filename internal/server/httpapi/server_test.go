package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	url      string
	err      error
	gotToken string
}

func (f *fakeResolver) Resolve(_ context.Context, token string) (string, error) {
	f.gotToken = token
	return f.url, f.err
}

func doGet(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) Error {
	t.Helper()
	var e Error
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
	return e
}

func TestFile_RedirectsToPresignedURL(t *testing.T) {
	files := &fakeResolver{url: "https://s3.local/bucket/k?sig=1"}
	h := NewServer(":0", logging.Nop{}, files, nil).Router()

	rec := doGet(t, h, "/files/abc.def.ghi")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://s3.local/bucket/k?sig=1", rec.Header().Get("Location"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "abc.def.ghi", files.gotToken)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestFile_InvalidToken(t *testing.T) {
	files := &fakeResolver{err: common.ErrInvalidToken}
	h := NewServer(":0", logging.Nop{}, files, nil).Router()

	rec := doGet(t, h, "/files/expired")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrCodeUnauthorized, decodeError(t, rec).Code)
}

func TestFile_InternalError(t *testing.T) {
	files := &fakeResolver{err: common.ErrorInternal}
	h := NewServer(":0", logging.Nop{}, files, nil).Router()

	rec := doGet(t, h, "/files/x")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, ErrCodeInternal, e.Code)
}

func TestRoutes_NotFoundAndMethod(t *testing.T) {
	h := NewServer(":0", logging.Nop{}, &fakeResolver{}, nil).Router()

	rec := doGet(t, h, "/files/")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/files/abc", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	h := NewServer(":0", logging.Nop{}, &fakeResolver{}, nil).Router()
	rec := doGet(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	down := NewServer(":0", logging.Nop{}, &fakeResolver{}, func(context.Context) error {
		return errors.New("db down")
	}).Router()
	rec = doGet(t, down, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestRequestID_Propagated(t *testing.T) {
	h := NewServer(":0", logging.Nop{}, &fakeResolver{}, nil).Router()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-7")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-7", rec.Header().Get("X-Request-Id"))
}

type panicResolver struct{}

func (panicResolver) Resolve(context.Context, string) (string, error) { panic("boom") }

func TestRecovery(t *testing.T) {
	h := NewServer(":0", logging.Nop{}, panicResolver{}, nil).Router()
	rec := doGet(t, h, "/files/x")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	srv := NewServer("127.0.0.1:0", logging.Nop{}, &fakeResolver{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_BadAddress(t *testing.T) {
	srv := NewServer("127.0.0.1:99999", logging.Nop{}, &fakeResolver{}, nil)
	require.Error(t, srv.Run(context.Background()))
}
