package builder

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/othala/internal/graphservice"
	"github.com/starford/othala/internal/parser"
	"github.com/starford/othala/internal/storage"
	"github.com/starford/othala/internal/store"
)

// EventCallback is called after a watcher-driven graph change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the vault root and folds file
// change events into the graph (and page cache) until ctx is cancelled.
// It calls cb (if non-nil) after each successful mutation.
//
// New directories created at runtime are added to the watch list.
// Rename events trigger a debounced reconciliation pass that removes
// graph entries whose files no longer exist on disk and picks up files
// that arrived under the new name.
func Watch(ctx context.Context, svc *graphservice.Service, db *store.DB, vault storage.Provider, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(svc, db, vault, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					}
					indexNewDir(svc, db, vault, vaultRoot, absPath, logger, cb)
					continue
				}
			}

			if !storage.IsMarkdown(absPath) {
				continue
			}

			rel, relErr := filepath.Rel(vaultRoot, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				kind := "updated"
				if ev.Op&fsnotify.Create != 0 {
					kind = "created"
				}
				if applyFile(svc, db, vault, rel, logger) {
					logger.Debug("watcher: applied", slog.String("path", rel), slog.String("op", kind))
					if cb != nil {
						cb(kind, rel)
					}
				}

			case ev.Op&fsnotify.Remove != 0:
				svc.Remove(rel)
				if delErr := db.DeletePage(rel); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
				}
				logger.Debug("watcher: deleted", slog.String("path", rel))
				if cb != nil {
					cb("deleted", rel)
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only; the new
				// path arrives as a separate Create event if it stays
				// inside a watched dir. Drop the old entry now and
				// reconcile shortly after for stragglers.
				svc.Remove(rel)
				_ = db.DeletePage(rel)
				logger.Debug("watcher: rename old deleted", slog.String("path", rel))
				if cb != nil {
					cb("deleted", rel)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// applyFile parses one vault file and folds it into graph and cache.
func applyFile(svc *graphservice.Service, db *store.DB, vault storage.Provider, rel string, logger *slog.Logger) bool {
	data, err := vault.Read(rel)
	if err != nil {
		logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return false
	}
	p, err := parser.Parse(data, rel)
	if err != nil {
		logger.Warn("watcher: parse failed", slog.String("path", rel), slog.String("error", err.Error()))
		return false
	}
	svc.ApplyPage(p)
	if err := db.UpsertPage(p, storage.Checksum(data)); err != nil {
		logger.Warn("watcher: cache failed", slog.String("path", rel), slog.String("error", err.Error()))
	}
	return true
}

// reconcile does a lightweight sync using batch lookups: graph/cache
// entries without a file on disk are removed, and on-disk files whose
// checksum changed (or that were never seen) are applied.
func reconcile(svc *graphservice.Service, db *store.DB, vault storage.Provider, logger *slog.Logger, cb EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := vault.List("")
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}

	for path := range checksums {
		if _, ok := disk[path]; !ok {
			svc.Remove(path)
			if delErr := db.DeletePage(path); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("path", path))
				if cb != nil {
					cb("deleted", path)
				}
			}
		}
	}

	for path, cs := range disk {
		if checksums[path] == cs {
			continue
		}
		if applyFile(svc, db, vault, path, logger) {
			logger.Debug("reconcile: applied", slog.String("path", path))
			if cb != nil {
				cb("created", path)
			}
		}
	}
}

// indexNewDir applies any markdown files found in a newly created directory.
func indexNewDir(svc *graphservice.Service, db *store.DB, vault storage.Provider, vaultRoot, dirPath string, logger *slog.Logger, cb EventCallback) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !storage.IsMarkdown(path) {
			return nil
		}
		rel, relErr := filepath.Rel(vaultRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if applyFile(svc, db, vault, rel, logger) {
			logger.Debug("watcher: applied from new dir", slog.String("path", rel))
			if cb != nil {
				cb("created", rel)
			}
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
