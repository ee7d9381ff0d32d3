package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// Sweep deletes generated .docx files in dir last modified before
// now-maxAge. Files that cannot be removed are reported together; the sweep
// carries on past them.
func Sweep(dir string, maxAge time.Duration, now time.Time) (removed int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read output dir: %w", err)
	}
	cutoff := now.Add(-maxAge)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".docx") {
			continue
		}
		info, ierr := e.Info()
		if ierr != nil {
			err = multierr.Append(err, ierr)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if rerr := os.Remove(filepath.Join(dir, e.Name())); rerr != nil && !os.IsNotExist(rerr) {
			err = multierr.Append(err, rerr)
			continue
		}
		removed++
	}
	return removed, err
}
