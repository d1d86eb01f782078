package vault

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mrwolf/daybook/internal/dates"
	"github.com/mrwolf/daybook/internal/notes"
)

const titleLayout = "02/01/2006 Mon"

func TestCreateNote(t *testing.T) {
	tmpDir := t.TempDir()
	v := NewVault(tmpDir, titleLayout)

	note := notes.Note{
		Title:   "18/10/2026 Sun",
		Body:    "<h2>Mood</h2>",
		Created: time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC),
	}

	relPath, err := v.CreateNote(context.Background(), note)
	if err != nil {
		t.Fatalf("creating note: %v", err)
	}

	expectedPath := filepath.Join("Journal", "Daily", "2026-10-18.enml")
	if relPath != expectedPath {
		t.Errorf("expected path %s, got %s", expectedPath, relPath)
	}

	content, err := os.ReadFile(filepath.Join(tmpDir, relPath))
	if err != nil {
		t.Fatalf("reading note: %v", err)
	}
	str := string(content)
	if !strings.HasPrefix(str, "<?xml") {
		t.Error("missing xml declaration")
	}
	if strings.Count(str, "<en-note>") != 1 {
		t.Errorf("expected one en-note wrapper, got %q", str)
	}
	if !strings.Contains(str, "<h2>Mood</h2>") {
		t.Error("missing body")
	}
}

func TestCreateNoteReplacesSameDay(t *testing.T) {
	v := NewVault(t.TempDir(), titleLayout)
	created := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	for _, body := range []string{"first", "second"} {
		if _, err := v.CreateNote(context.Background(), notes.Note{Body: body, Created: created}); err != nil {
			t.Fatalf("creating note: %v", err)
		}
	}

	content, err := v.ReadNote(dates.Of(created))
	if err != nil {
		t.Fatalf("reading note: %v", err)
	}
	if strings.Contains(content, "first") || !strings.Contains(content, "second") {
		t.Errorf("expected the second write to win, got %q", content)
	}
}

func TestCreateNoteRequiresDate(t *testing.T) {
	v := NewVault(t.TempDir(), titleLayout)
	if _, err := v.CreateNote(context.Background(), notes.Note{Title: "x"}); err == nil {
		t.Error("expected error for missing created date")
	}
}

func TestMemories(t *testing.T) {
	tmpDir := t.TempDir()
	v := NewVault(tmpDir, titleLayout)

	for _, d := range []string{"2019-10-18", "2024-10-18", "2025-10-18", "2026-10-18", "2025-10-17", "2027-10-18"} {
		day, err := dates.Parse(d)
		if err != nil {
			t.Fatalf("parsing %s: %v", d, err)
		}
		if _, err := v.CreateNote(context.Background(), notes.Note{Body: d, Created: day.Midnight(time.UTC)}); err != nil {
			t.Fatalf("creating note: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "Journal", "Daily", "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	memories, err := v.Memories(context.Background(), dates.Date{Year: 2026, Month: time.October, Day: 18})
	if err != nil {
		t.Fatalf("listing memories: %v", err)
	}

	want := []string{"18/10/2025 Sat", "18/10/2024 Fri", "18/10/2019 Fri"}
	if len(memories) != len(want) {
		t.Fatalf("expected %d memories, got %d: %+v", len(want), len(memories), memories)
	}
	for i, m := range memories {
		if m.Title != want[i] {
			t.Errorf("memory %d: expected title %q, got %q", i, want[i], m.Title)
		}
		if !strings.HasPrefix(m.Link, "file://") {
			t.Errorf("memory %d: expected file link, got %q", i, m.Link)
		}
	}
}

func TestMemoriesLimit(t *testing.T) {
	v := NewVault(t.TempDir(), titleLayout)
	for year := 2000; year < 2000+MemoryLimit+3; year++ {
		created := time.Date(year, 3, 1, 0, 0, 0, 0, time.UTC)
		if _, err := v.CreateNote(context.Background(), notes.Note{Created: created}); err != nil {
			t.Fatalf("creating note: %v", err)
		}
	}

	memories, err := v.Memories(context.Background(), dates.Date{Year: 2030, Month: time.March, Day: 1})
	if err != nil {
		t.Fatalf("listing memories: %v", err)
	}
	if len(memories) != MemoryLimit {
		t.Errorf("expected %d memories, got %d", MemoryLimit, len(memories))
	}
	if memories[0].Title != "01/03/2012 Thu" {
		t.Errorf("expected newest first, got %q", memories[0].Title)
	}
}

func TestMemoriesEmptyVault(t *testing.T) {
	v := NewVault(t.TempDir(), titleLayout)
	memories, err := v.Memories(context.Background(), dates.Date{Year: 2026, Month: time.October, Day: 18})
	if err != nil {
		t.Fatalf("listing memories: %v", err)
	}
	if len(memories) != 0 {
		t.Errorf("expected no memories, got %d", len(memories))
	}
}

func TestWriteAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "2026-10-18.enml")
	if err := writeAtomic(context.Background(), path, []byte("first")); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if err := writeAtomic(context.Background(), path, []byte("second")); err != nil {
		t.Fatalf("replacing file: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	if string(content) != "second" {
		t.Errorf("expected second, got %q", content)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("expected mode 0644, got %v", info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected temp file to be cleaned up, found %d entries", len(entries))
	}
}

func TestWriteAtomicStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	// A regular file where a directory is needed makes every attempt fail.
	blocker := filepath.Join(dir, "Journal")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := writeAtomic(ctx, filepath.Join(blocker, "Daily", "2026-10-18.enml"), []byte("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > writeBackoff {
		t.Error("expected no backoff after cancellation")
	}
}
