package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"courserag/internal/embed"
	"courserag/internal/index"
	"courserag/internal/retrieval"
	"courserag/internal/store"
)

func newTestIngest(t *testing.T) (*Service, *retrieval.Service) {
	t.Helper()
	st := store.NewSQLiteStore(filepath.Join(t.TempDir(), "catalog.db"))
	if err := st.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })
	retrievalSvc := retrieval.NewService(st, index.NewCosineIndex(), embed.NewHashEmbedder(0), 5)
	return NewService(retrievalSvc, NewChunker(200, 40)), retrievalSvc
}

func writeScript(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestAddCourseFolder_IngestsScripts(t *testing.T) {
	svc, retrievalSvc := newTestIngest(t)
	dir := t.TempDir()
	writeScript(t, dir, "course1.txt", sampleScript)
	writeScript(t, dir, "notes.json", `{"ignored": true}`)

	courses, chunks, err := svc.AddCourseFolder(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("AddCourseFolder failed: %v", err)
	}
	if courses != 1 || chunks == 0 {
		t.Fatalf("courses=%d chunks=%d", courses, chunks)
	}

	outline, err := retrievalSvc.Outline(context.Background(), "MCP")
	if err != nil {
		t.Fatalf("ingested course not searchable: %v", err)
	}
	if len(outline.Lessons) != 2 {
		t.Fatalf("lessons lost in ingestion: %#v", outline)
	}

	results := retrievalSvc.Search(context.Background(), "wire format", "", 0, 0)
	if results.IsEmpty() {
		t.Fatal("ingested content not searchable")
	}
}

func TestAddCourseFolder_SkipsExistingCourses(t *testing.T) {
	svc, _ := newTestIngest(t)
	dir := t.TempDir()
	writeScript(t, dir, "course1.txt", sampleScript)

	if _, _, err := svc.AddCourseFolder(context.Background(), dir, false); err != nil {
		t.Fatal(err)
	}
	courses, chunks, err := svc.AddCourseFolder(context.Background(), dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if courses != 0 || chunks != 0 {
		t.Fatalf("second run re-ingested: courses=%d chunks=%d", courses, chunks)
	}
}

func TestAddCourseFolder_ClearExisting(t *testing.T) {
	svc, retrievalSvc := newTestIngest(t)
	dir := t.TempDir()
	writeScript(t, dir, "course1.txt", sampleScript)

	if _, _, err := svc.AddCourseFolder(context.Background(), dir, false); err != nil {
		t.Fatal(err)
	}
	courses, _, err := svc.AddCourseFolder(context.Background(), dir, true)
	if err != nil {
		t.Fatal(err)
	}
	if courses != 1 {
		t.Fatalf("clear run should re-ingest, got %d courses", courses)
	}
	analytics, err := retrievalSvc.Analytics(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if analytics.TotalCourses != 1 {
		t.Fatalf("duplicate courses after clear: %#v", analytics)
	}
}

func TestAddCourseFolder_SkipsMalformedScript(t *testing.T) {
	svc, _ := newTestIngest(t)
	dir := t.TempDir()
	writeScript(t, dir, "bad.txt", "no header here, just text")
	writeScript(t, dir, "good.txt", sampleScript)

	courses, _, err := svc.AddCourseFolder(context.Background(), dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if courses != 1 {
		t.Fatalf("expected only the valid script, got %d courses", courses)
	}
}

func TestAddCourseFolder_MissingDir(t *testing.T) {
	svc, _ := newTestIngest(t)
	if _, _, err := svc.AddCourseFolder(context.Background(), "/nonexistent/dir", false); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
