package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/qtpi-bonding/folio/internal/buildcache"
	"github.com/qtpi-bonding/folio/internal/db"
	"github.com/qtpi-bonding/folio/internal/site"
)

func writeTestFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "index.html"), "<h1>home</h1>")
	writeTestFile(t, filepath.Join(dir, "work", "alpha", "index.html"), "<h1>alpha</h1>")
	writeTestFile(t, filepath.Join(dir, "assets", "js", "x.js"), "var x;")

	index, err := site.MarshalSearchIndex([]site.SearchEntry{
		{Path: "/work/alpha/", Title: "Alpha telescope", Content: "observations"},
		{Path: "/work/beta/", Title: "Beta", Content: "policy"},
	})
	if err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, filepath.Join(dir, site.SearchIndexFile), string(index))

	return New(Config{Port: 0, OutputDir: dir}, nil, nil), dir
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)

	w := get(t, srv, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	dir := t.TempDir()
	srv := New(Config{Port: 0, OutputDir: dir, AllowAll: true}, nil, nil)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestStaticFiles(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/", http.StatusOK, "<h1>home</h1>"},
		{"/work/alpha/", http.StatusOK, "<h1>alpha</h1>"},
		{"/assets/js/x.js", http.StatusOK, "var x;"},
		{"/work/alpha", http.StatusMovedPermanently, ""},
		{"/assets/js/", http.StatusNotFound, ""},
		{"/missing.html", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		w := get(t, srv, tt.path)
		if w.Code != tt.wantCode {
			t.Errorf("GET %s status = %d, want %d", tt.path, w.Code, tt.wantCode)
			continue
		}
		if tt.wantBody != "" && w.Body.String() != tt.wantBody {
			t.Errorf("GET %s body = %q, want %q", tt.path, w.Body.String(), tt.wantBody)
		}
		if tt.wantCode == http.StatusOK && !strings.Contains(w.Header().Get("Cache-Control"), "no-cache") {
			t.Errorf("GET %s Cache-Control = %q", tt.path, w.Header().Get("Cache-Control"))
		}
	}
}

func TestSearchAPI(t *testing.T) {
	srv, dir := newTestServer(t)

	w := get(t, srv, "/api/search?q=telescope")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var results []site.SearchEntry
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(results) != 1 || results[0].Path != "/work/alpha/" {
		t.Errorf("results = %+v", results)
	}

	w = get(t, srv, "/api/search?q=nomatch")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("no-match body = %q, want []", w.Body.String())
	}

	for _, target := range []string{"/api/search", "/api/search?q=x&limit=0", "/api/search?q=x&limit=abc"} {
		if w := get(t, srv, target); w.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", target, w.Code)
		}
	}

	if err := os.Remove(filepath.Join(dir, site.SearchIndexFile)); err != nil {
		t.Fatal(err)
	}
	if w := get(t, srv, "/api/search?q=x"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("missing index status = %d, want 503", w.Code)
	}
}

func TestBuildRoutesMounted(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()

	dir := t.TempDir()
	store := buildcache.NewStore(database, dir)
	if _, err := store.StartBuild(context.Background(), "development"); err != nil {
		t.Fatal(err)
	}

	srv := New(Config{OutputDir: dir}, nil, store)
	w := get(t, srv, "/api/builds/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var builds []buildcache.Build
	if err := json.Unmarshal(w.Body.Bytes(), &builds); err != nil {
		t.Fatal(err)
	}
	if len(builds) != 1 {
		t.Errorf("builds = %d, want 1", len(builds))
	}

	withoutStore, _ := newTestServer(t)
	if w := get(t, withoutStore, "/api/builds/"); w.Code != http.StatusNotFound {
		t.Errorf("build API without a store = %d, want 404", w.Code)
	}
}

func TestLiveReloadBroadcast(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + LiveReloadPath
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}

	deadline := time.Now().Add(2 * time.Second)
	for srv.Hub().Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if n := srv.Hub().Broadcast(); n != 1 {
		t.Fatalf("Broadcast() = %d, want 1", n)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg reloadMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "reload" {
		t.Errorf("message type = %q, want reload", msg.Type)
	}

	srv.Hub().Close()
	if n := srv.Hub().Clients(); n != 0 {
		t.Errorf("Clients() after Close = %d", n)
	}
	if n := srv.Hub().Broadcast(); n != 0 {
		t.Errorf("Broadcast() after Close = %d", n)
	}
}
