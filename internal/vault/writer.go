package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	writeAttempts = 3
	writeBackoff  = 100 * time.Millisecond
)

// writeAtomic replaces path with content via a sibling temp file and a
// rename, so readers see the old note or the new one, never a partial one.
// Failed attempts are retried with doubling backoff until ctx is done.
func writeAtomic(ctx context.Context, path string, content []byte) error {
	var err error
	backoff := writeBackoff
	for attempt := 1; attempt <= writeAttempts; attempt++ {
		if err = replaceFile(path, content); err == nil {
			return nil
		}
		if attempt == writeAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("writing %s: %w (last error: %v)", filepath.Base(path), ctx.Err(), err)
		case <-time.After(backoff):
			backoff *= 2
		}
	}
	return fmt.Errorf("writing %s after %d attempts: %w", filepath.Base(path), writeAttempts, err)
}

func replaceFile(path string, content []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(content); err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
