package core

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestRouter(t *testing.T, cfg Config, ctx RuntimeContext) *Router {
	t.Helper()
	router := NewRouter(cfg, ctx).(*Router)
	t.Cleanup(func() { _ = router.Close() })
	return router
}

func serve(h http.Handler, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_ServesIndex(t *testing.T) {
	router := newTestRouter(t, *DefaultConfig(), RuntimeContext{})

	rec := serve(router, http.MethodGet, "/", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("expected non-empty body")
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected text/html, got %q", ct)
	}
}

func TestRouter_BodyEqualsRenderedTemplate(t *testing.T) {
	cfg := *DefaultConfig()
	router := newTestRouter(t, cfg, RuntimeContext{})

	want, err := NewRendererFromConfig(cfg).Render(cfg.IndexTemplate, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		rec := serve(router, http.MethodGet, "/", nil)
		if !bytes.Equal(rec.Body.Bytes(), want) {
			t.Fatalf("request %d: body differs from rendered template:\n%s", i, rec.Body.String())
		}
	}
}

func TestRouter_CachedBodyEqualsRenderedTemplate(t *testing.T) {
	cfg := *DefaultConfig()
	cfg.CacheEnabled = true
	router := newTestRouter(t, cfg, RuntimeContext{})

	want, err := NewRendererFromConfig(cfg).Render(cfg.IndexTemplate, nil)
	if err != nil {
		t.Fatal(err)
	}

	first := serve(router, http.MethodGet, "/", nil)
	second := serve(router, http.MethodGet, "/", nil)

	if !bytes.Equal(first.Body.Bytes(), want) || !bytes.Equal(second.Body.Bytes(), want) {
		t.Error("cached body differs from rendered template")
	}
	if router.cache.Len() != 1 {
		t.Errorf("expected index page to be cached, got %d entries", router.cache.Len())
	}
}

func TestRouter_Returns404ForUnknownRoute(t *testing.T) {
	router := newTestRouter(t, *DefaultConfig(), RuntimeContext{})

	for _, path := range []string{"/nonexistent", "/first_app.html", "/index", ReloadPath} {
		rec := serve(router, http.MethodGet, path, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestRouter_RejectsOtherMethods(t *testing.T) {
	router := newTestRouter(t, *DefaultConfig(), RuntimeContext{})

	rec := serve(router, http.MethodPost, "/", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) {
		t.Errorf("expected Allow header to list GET, got %q", allow)
	}
}

func TestRouter_HeadHasNoBody(t *testing.T) {
	router := newTestRouter(t, *DefaultConfig(), RuntimeContext{})

	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Head(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) != 0 {
		t.Errorf("expected empty HEAD body, got %q", body)
	}
}

func TestRouter_MissingTemplate(t *testing.T) {
	cfg := *DefaultConfig()
	cfg.IndexTemplate = "missing.html"

	prod := newTestRouter(t, cfg, RuntimeContext{})
	rec := serve(prod, http.MethodGet, "/", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "missing.html") {
		t.Errorf("production error page leaked details: %q", rec.Body.String())
	}

	dev := newTestRouter(t, cfg, RuntimeContext{Debug: true})
	rec = serve(dev, http.MethodGet, "/", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing.html") {
		t.Errorf("expected debug error page to name the template, got %q", rec.Body.String())
	}
}

func TestRouter_DebugInjectsReloadScript(t *testing.T) {
	cfg := *DefaultConfig()
	router := newTestRouter(t, cfg, RuntimeContext{Debug: true})

	rendered, err := NewRendererFromConfig(cfg).Render(cfg.IndexTemplate, nil)
	if err != nil {
		t.Fatal(err)
	}

	rec := serve(router, http.MethodGet, "/", nil)
	if !bytes.Equal(rec.Body.Bytes(), InjectReloadScript(rendered)) {
		t.Errorf("unexpected debug body:\n%s", rec.Body.String())
	}
	if rec.Header().Get("ETag") != "" {
		t.Error("did not expect ETag in debug mode")
	}
}

func TestRouter_DebugHeaders(t *testing.T) {
	cfg := *DefaultConfig()
	cfg.DebugHeaders = true
	router := newTestRouter(t, cfg, RuntimeContext{})

	rec := serve(router, http.MethodGet, "/", nil)
	if got := rec.Header().Get("X-Firstapp-Template"); got != "first_app.html" {
		t.Errorf("expected X-Firstapp-Template header, got %q", got)
	}
}

func TestRouter_ETagAndNotModified(t *testing.T) {
	cfg := *DefaultConfig()
	cfg.CacheEnabled = true
	router := newTestRouter(t, cfg, RuntimeContext{})

	first := serve(router, http.MethodGet, "/", nil)
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	rec := serve(router, http.MethodGet, "/", map[string]string{"If-None-Match": etag})
	if rec.Code != http.StatusNotModified {
		t.Errorf("expected 304, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty 304 body, got %q", rec.Body.String())
	}
}

func TestRouter_ServesGzipWhenAccepted(t *testing.T) {
	cfg := *DefaultConfig()
	cfg.CacheEnabled = true
	router := newTestRouter(t, cfg, RuntimeContext{})

	plain := serve(router, http.MethodGet, "/", nil)
	rec := serve(router, http.MethodGet, "/", map[string]string{"Accept-Encoding": "gzip"})

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatal("expected gzip Content-Encoding")
	}
	if rec.Header().Get("Vary") != "Accept-Encoding" {
		t.Error("expected Vary: Accept-Encoding header")
	}

	gz, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(gz)
	if !bytes.Equal(body, plain.Body.Bytes()) {
		t.Error("decompressed body differs from plain body")
	}
}

func TestRouter_PlainBodyWhenGzipRefused(t *testing.T) {
	cfg := *DefaultConfig()
	cfg.CacheEnabled = true
	router := newTestRouter(t, cfg, RuntimeContext{})

	plain := serve(router, http.MethodGet, "/", nil)
	rec := serve(router, http.MethodGet, "/", map[string]string{"Accept-Encoding": "gzip;q=0, identity"})

	if enc := rec.Header().Get("Content-Encoding"); enc != "" {
		t.Fatalf("expected no Content-Encoding when gzip is refused, got %q", enc)
	}
	if !bytes.Equal(rec.Body.Bytes(), plain.Body.Bytes()) {
		t.Error("expected the plain body when gzip is refused")
	}
}

func TestRouter_WatcherReloadsTemplates(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "first_app.html", "<body>one</body>")

	reloaded := make(chan struct{}, 10)
	cfg := *DefaultConfig()
	cfg.TemplatesDir = dir
	router := newTestRouter(t, cfg, RuntimeContext{
		Debug: true,
		OnReload: func() {
			reloaded <- struct{}{}
		},
	})

	if router.watcher == nil {
		t.Fatal("expected template watcher in debug mode")
	}

	writeTempFile(t, dir, "first_app.html", "<body>two</body>")
	waitFor(t, reloaded)

	rec := serve(router, http.MethodGet, "/", nil)
	if !strings.Contains(rec.Body.String(), "two") {
		t.Errorf("expected updated template, got %q", rec.Body.String())
	}
}

func TestRouter_NoWatcherOutsideDebug(t *testing.T) {
	cfg := *DefaultConfig()
	cfg.TemplatesDir = t.TempDir()
	router := newTestRouter(t, cfg, RuntimeContext{})

	if router.watcher != nil {
		t.Error("did not expect a template watcher outside debug mode")
	}
}

func TestRouter_CloseStopsWatcher(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "first_app.html", "<body>one</body>")

	reloaded := make(chan struct{}, 10)
	cfg := *DefaultConfig()
	cfg.TemplatesDir = dir
	router := NewRouter(cfg, RuntimeContext{
		Debug:    true,
		OnReload: func() { reloaded <- struct{}{} },
	}).(*Router)

	if err := router.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := router.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	writeTempFile(t, dir, "first_app.html", "<body>two</body>")
	select {
	case <-reloaded:
		t.Error("expected no reload after Close")
	case <-time.After(200 * time.Millisecond):
	}
}
