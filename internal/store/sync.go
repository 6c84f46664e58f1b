package store

import (
	"log/slog"
	"sort"

	"github.com/starford/othala/internal/graph"
	"github.com/starford/othala/internal/parser"
	"github.com/starford/othala/internal/storage"
)

// Sync walks the vault and returns an up-to-date graph, reusing cached
// pages whose content checksum is unchanged:
//   - new/changed files are parsed and upserted
//   - unchanged files come straight from the cache
//   - cache rows whose files left the disk are dropped
//
// A file that fails to parse is skipped and its stale cache row removed;
// the graph simply omits that page.
func Sync(db *DB, vault storage.Provider, logger *slog.Logger) (*graph.Graph, error) {
	metas, err := vault.List("")
	if err != nil {
		return nil, err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return nil, err
	}
	cached, err := db.LoadPages()
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*graph.Page, len(metas))
	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			if p, ok := cached[m.Path]; ok {
				pages[m.Path] = p
				continue
			}
		}

		data, err := vault.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		p, err := parser.Parse(data, m.Path)
		if err != nil {
			logger.Warn("sync: parse failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			_ = db.DeletePage(m.Path)
			continue
		}
		if err := db.UpsertPage(p, m.Checksum); err != nil {
			logger.Warn("sync: cache failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		}
		pages[m.Path] = p
		logger.Debug("sync: parsed", slog.String("path", m.Path))
	}

	// Remove stale cache rows.
	for path := range checksums {
		if _, ok := disk[path]; !ok {
			if err := db.DeletePage(path); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", path), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", path))
			}
		}
	}

	g := graph.New()
	paths := make([]string, 0, len(pages))
	for p := range pages {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		g.AddPage(pages[p])
	}
	return g, nil
}
