package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dianabombi/student-advisor-sub000/internal/common"
	"github.com/dianabombi/student-advisor-sub000/internal/repository"
)

func testRepo(t *testing.T) *repository.FileRepository {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "ingest.db")
	db, err := repository.Open(context.Background(), common.DatabaseConfig{Driver: "sqlite", DSN: dsn}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return repository.NewFileRepository(db)
}

func TestAllowedExt(t *testing.T) {
	for _, ext := range []string{"pdf", ".PDF", "jpg", ".tiff", "bmp"} {
		if !AllowedExt(ext) {
			t.Fatalf("AllowedExt(%q) = false", ext)
		}
	}
	for _, ext := range []string{"exe", ".docx", "", "txt"} {
		if AllowedExt(ext) {
			t.Fatalf("AllowedExt(%q) = true", ext)
		}
	}
}

func TestIsHidden(t *testing.T) {
	if !IsHidden("/data/.cache") || !IsHidden(".env") {
		t.Fatalf("dotfiles should be hidden")
	}
	if IsHidden("/data/in/doc.pdf") {
		t.Fatalf("regular file reported hidden")
	}
}

func TestIngestPathDeduplicates(t *testing.T) {
	ing := NewFSIngestor(testRepo(t), nil)
	dir := t.TempDir()
	path := filepath.Join(dir, "a.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	first, err := ing.IngestPath(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestPath: %v", err)
	}
	if first.Deduplicated {
		t.Fatalf("first ingest flagged as duplicate")
	}
	if first.HashHex == "" || first.FileID == "" {
		t.Fatalf("incomplete result: %+v", first)
	}

	second, err := ing.IngestPath(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestPath: %v", err)
	}
	if !second.Deduplicated {
		t.Fatalf("second ingest of identical bytes not deduplicated")
	}
	if second.FileID != first.FileID {
		t.Fatalf("dedup produced a new file id")
	}
}

func TestIngestPathRejectsUnsupported(t *testing.T) {
	ing := NewFSIngestor(testRepo(t), nil)
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ing.IngestPath(context.Background(), path); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}

func TestIngestDirectory(t *testing.T) {
	ing := NewFSIngestor(testRepo(t), nil)
	dir := t.TempDir()

	writeFile := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	writeFile("one.pdf", "pdf-one")
	writeFile("two.jpg", "jpg-two")
	writeFile("skip.txt", "text")
	writeFile(".hidden.pdf", "hidden")

	results, stats, err := ing.IngestDirectory(context.Background(), dir, true)
	if err != nil {
		t.Fatalf("IngestDirectory: %v", err)
	}
	if stats.Matched != 2 || stats.Succeeded != 2 || stats.Failed != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
}
