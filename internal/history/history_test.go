package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tagtrain/internal/history"
	"tagtrain/internal/testsupport"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.OpenPath(filepath.Join(t.TempDir(), "logs", "history.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestBeginAndFinishRecordRun(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	run, err := store.Begin(ctx, history.Run{Tagger: "pie", Config: "fast", Dataset: "/d/a", LogPath: "/l/fast-1.txt", StartedAt: started})
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if run.ID == "" || run.Status != history.StatusRunning {
		t.Fatalf("unexpected begun run %+v", run)
	}

	got, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FinishedAt != nil || got.ExitCode != nil || got.Status != history.StatusRunning {
		t.Fatalf("expected open run, got %+v", got)
	}

	if err := store.Finish(ctx, run.ID, 0, started.Add(90*time.Second)); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	got, err = store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != history.StatusSucceeded || got.ExitCode == nil || *got.ExitCode != 0 {
		t.Fatalf("expected succeeded run, got %+v", got)
	}
	if got.Duration() != 90*time.Second {
		t.Fatalf("unexpected duration %s", got.Duration())
	}
	if got.Target() != "pie/fast" || got.Dataset != "/d/a" || got.LogPath != "/l/fast-1.txt" {
		t.Fatalf("unexpected run fields %+v", got)
	}
}

func TestFinishNonZeroMarksFailed(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	run, err := store.Begin(ctx, history.Run{Tagger: "pie", Config: "fast"})
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := store.Finish(ctx, run.ID, 137, time.Now()); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	got, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != history.StatusFailed || *got.ExitCode != 137 {
		t.Fatalf("expected failed run, got %+v", got)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store := openStore(t)
	if err := store.Finish(context.Background(), "missing", 0, time.Now()); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetResolvesIDPrefix(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for _, id := range []string{"abc-1", "abd-2", "a_c"} {
		if _, err := store.Begin(ctx, history.Run{ID: id, Tagger: "pie", Config: id}); err != nil {
			t.Fatalf("Begin %s: %v", id, err)
		}
	}

	got, err := store.Get(ctx, "abc")
	if err != nil || got.ID != "abc-1" {
		t.Fatalf("expected abc-1, got %+v (%v)", got, err)
	}
	if _, err := store.Get(ctx, "ab"); !errors.Is(err, history.ErrAmbiguousID) {
		t.Fatalf("expected ErrAmbiguousID, got %v", err)
	}
	got, err = store.Get(ctx, "a_")
	if err != nil || got.ID != "a_c" {
		t.Fatalf("expected underscore to match literally, got %+v (%v)", got, err)
	}
	if _, err := store.Get(ctx, ""); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty id, got %v", err)
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, cfg := range []string{"a", "b", "c"} {
		if _, err := store.Begin(ctx, history.Run{Tagger: "pie", Config: cfg, StartedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("Begin: %v", err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].Config != "c" || runs[1].Config != "b" {
		t.Fatalf("unexpected runs %+v", runs)
	}

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all runs, got %d", len(all))
	}
}

func TestLatestKeepsNewestPerTarget(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	old, err := store.Begin(ctx, history.Run{Tagger: "pie", Config: "fast", StartedAt: base})
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	fresh, err := store.Begin(ctx, history.Run{Tagger: "pie", Config: "fast", StartedAt: base.Add(time.Hour)})
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	latest, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest["pie/fast"].ID != fresh.ID || latest["pie/fast"].ID == old.ID {
		t.Fatalf("expected newest run, got %+v", latest["pie/fast"])
	}
}

func TestOpenUsesConfiguredPathAndReopens(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if store.Path() != filepath.Join(cfg.Paths.LogsDir, "history.db") {
		t.Fatalf("unexpected path %q", store.Path())
	}
	if _, err := store.Begin(context.Background(), history.Run{Tagger: "pie", Config: "fast"}); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	store.Close()

	reopened, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected persisted run, got %d", len(runs))
	}
}

func TestOpenRejectsLedgerWithOtherVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("update version: %v", err)
	}
	db.Close()

	if _, err := history.OpenPath(path); !errors.Is(err, history.ErrLedgerVersion) {
		t.Fatalf("expected ErrLedgerVersion, got %v", err)
	}
}
