package buildcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/qtpi-bonding/folio/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database, t.TempDir())
}

func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func TestBuildLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.now = fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	b, err := s.StartBuild(ctx, "production")
	if err != nil {
		t.Fatalf("StartBuild: %v", err)
	}
	if b.ID == "" || b.Status != StatusRunning {
		t.Fatalf("unexpected build: %+v", b)
	}

	b.Pages, b.Written, b.Skipped = 5, 3, 2
	if err := s.FinishBuild(ctx, b, nil); err != nil {
		t.Fatalf("FinishBuild: %v", err)
	}

	got, err := s.GetBuild(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBuild: %v", err)
	}
	if got.Status != StatusSucceeded || got.Pages != 5 || got.Written != 3 || got.Skipped != 2 {
		t.Errorf("stored build = %+v", got)
	}
	if got.Duration() != time.Second {
		t.Errorf("Duration() = %v, want 1s", got.Duration())
	}
}

func TestFinishBuildFailed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	b, err := s.StartBuild(ctx, "development")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.FinishBuild(ctx, b, errors.New("content validation failed")); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetBuild(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusFailed || got.Error != "content validation failed" {
		t.Errorf("stored build = %+v", got)
	}
}

func TestGetBuildMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetBuild(context.Background(), "nope"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetBuild() error = %v, want sql.ErrNoRows", err)
	}
}

func TestRecentBuildsOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.now = fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	var ids []string
	for i := 0; i < 3; i++ {
		b, err := s.StartBuild(ctx, "development")
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, b.ID)
	}

	builds, err := s.RecentBuilds(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(builds) != 2 {
		t.Fatalf("got %d builds, want 2", len(builds))
	}
	if builds[0].ID != ids[2] || builds[1].ID != ids[1] {
		t.Errorf("order = %s, %s; want newest first", builds[0].ID, builds[1].ID)
	}
}

func TestLookupAndRecord(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	b, err := s.StartBuild(ctx, "development")
	if err != nil {
		t.Fatal(err)
	}

	o, err := s.Lookup(ctx, "index.html")
	if err != nil || o != nil {
		t.Fatalf("Lookup() on empty cache = %v, %v", o, err)
	}

	if err := s.Record(ctx, b.ID, "index.html", "abc", 10); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, b.ID, "index.html", "def", 12); err != nil {
		t.Fatal(err)
	}

	o, err = s.Lookup(ctx, "index.html")
	if err != nil {
		t.Fatal(err)
	}
	if o == nil || o.Hash != "def" || o.Size != 12 || o.BuildID != b.ID {
		t.Errorf("Lookup() = %+v", o)
	}

	n, err := s.Reset(ctx)
	if err != nil || n != 1 {
		t.Errorf("Reset() = %d, %v", n, err)
	}
	if o, _ := s.Lookup(ctx, "index.html"); o != nil {
		t.Error("expected cache to be empty after Reset")
	}
}

func TestOutputsScopedByDirectory(t *testing.T) {
	ctx := context.Background()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	a := NewStore(database, t.TempDir())
	other := NewStore(database, t.TempDir())

	b, err := a.StartBuild(ctx, "development")
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Record(ctx, b.ID, "index.html", "abc", 3); err != nil {
		t.Fatal(err)
	}
	if o, _ := other.Lookup(ctx, "index.html"); o != nil {
		t.Error("outputs of one directory leaked into another")
	}
}

func TestRoutes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	b, err := s.StartBuild(ctx, "development")
	if err != nil {
		t.Fatal(err)
	}

	r := chi.NewRouter()
	RegisterRoutes(r, s)

	req := httptest.NewRequest("GET", "/api/builds/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var builds []Build
	if err := json.Unmarshal(w.Body.Bytes(), &builds); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(builds) != 1 || builds[0].ID != b.ID {
		t.Errorf("builds = %+v", builds)
	}

	req = httptest.NewRequest("GET", "/api/builds/"+b.ID, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("get status = %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/builds/missing", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing build status = %d, want 404", w.Code)
	}
}
