// Package vault stores daily notes as ENML files on disk and reads earlier
// ones back as memories. It stands in for the note service when the sink
// is configured as "vault".
package vault

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mrwolf/daybook/internal/dates"
	"github.com/mrwolf/daybook/internal/notes"
)

// MemoryLimit caps how many earlier notes are returned.
const MemoryLimit = 10

const (
	dailyDir = "Journal/Daily"
	noteExt  = ".enml"
)

// Vault handles all file operations for the vault
type Vault struct {
	basePath  string
	titleFmt  string
	writeLock sync.Mutex
}

// NewVault creates a vault rooted at basePath. titleLayout is the time
// layout used to title memories read back from disk.
func NewVault(basePath, titleLayout string) *Vault {
	return &Vault{basePath: basePath, titleFmt: titleLayout}
}

// CreateNote writes note to Journal/Daily/{YYYY-MM-DD}.enml and returns the
// relative path. An existing note for the same day is replaced.
func (v *Vault) CreateNote(ctx context.Context, note notes.Note) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if note.Created.IsZero() {
		return "", fmt.Errorf("writing note %q: missing created date", note.Title)
	}

	day := dates.Of(note.Created)
	relPath := filepath.Join(dailyDir, day.String()+noteExt)
	fullPath := filepath.Join(v.basePath, relPath)

	v.writeLock.Lock()
	defer v.writeLock.Unlock()

	if err := writeAtomic(ctx, fullPath, []byte(notes.WrapENML(note.Body))); err != nil {
		return "", fmt.Errorf("writing note: %w", err)
	}

	return relPath, nil
}

// ReadNote returns the stored ENML for day.
func (v *Vault) ReadNote(day dates.Date) (string, error) {
	content, err := os.ReadFile(filepath.Join(v.basePath, dailyDir, day.String()+noteExt))
	if err != nil {
		return "", fmt.Errorf("reading note: %w", err)
	}
	return string(content), nil
}

// Memories returns notes from earlier years written on the same day and
// month as day, newest first.
func (v *Vault) Memories(ctx context.Context, day dates.Date) ([]notes.Memory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := filepath.Join(v.basePath, dailyDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []notes.Memory{}, nil
		}
		return nil, fmt.Errorf("listing notes: %w", err)
	}

	var found []dates.Date
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != noteExt {
			continue
		}
		d, err := dates.Parse(strings.TrimSuffix(e.Name(), noteExt))
		if err != nil {
			continue
		}
		if d.Month == day.Month && d.Day == day.Day && d.Year < day.Year {
			found = append(found, d)
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Year > found[j].Year })
	if len(found) > MemoryLimit {
		found = found[:MemoryLimit]
	}

	memories := make([]notes.Memory, 0, len(found))
	for _, d := range found {
		memories = append(memories, notes.Memory{
			Link:  v.fileLink(d),
			Title: d.Format(v.titleFmt),
		})
	}
	return memories, nil
}

func (v *Vault) fileLink(d dates.Date) string {
	path := filepath.Join(v.basePath, dailyDir, d.String()+noteExt)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
