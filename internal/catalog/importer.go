package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/abhisek/drill/internal/store"
	"go.uber.org/zap"
)

// PageExtension is the file extension of importable quiz pages.
const PageExtension = ".html"

// Skipped records a page that was not imported.
type Skipped struct {
	Path   string
	Reason string
}

// Report summarizes an import batch.
type Report struct {
	Imported []Imported
	Skipped  []Skipped // malformed pages
	Failed   []Skipped // pages that parsed but could not be stored
}

// Imported records a stored problem.
type Imported struct {
	Path      string
	ProblemID int64
	Title     string
}

// Importer parses quiz pages and upserts them as problems.
type Importer struct {
	problems store.ProblemRepo
	ext      string
	logger   *zap.Logger
}

// NewImporter creates an Importer writing to problems. ext is the solution
// file extension. A nil logger disables logging.
func NewImporter(problems store.ProblemRepo, ext string, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{problems: problems, ext: ext, logger: logger}
}

// ImportDir imports every quiz page directly inside dir, in name order.
func (im *Importer) ImportDir(ctx context.Context, dir string) (Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Report{}, fmt.Errorf("read questions dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), PageExtension) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	return im.ImportFiles(ctx, paths), nil
}

// ImportFiles imports the given pages. A page that cannot be read or parsed
// is skipped, and a page that cannot be stored is recorded as failed; in
// both cases the batch continues.
func (im *Importer) ImportFiles(ctx context.Context, paths []string) Report {
	var rep Report
	for _, path := range paths {
		log := im.logger.With(zap.String("path", path))

		page, err := os.ReadFile(path)
		if err != nil {
			log.Warn("skipping unreadable page", zap.Error(err))
			rep.Skipped = append(rep.Skipped, Skipped{Path: path, Reason: err.Error()})
			continue
		}

		def, err := Parse(page, im.ext)
		if err != nil {
			log.Debug("skipping malformed page", zap.Error(err))
			rep.Skipped = append(rep.Skipped, Skipped{Path: path, Reason: err.Error()})
			continue
		}

		id, err := im.problems.Upsert(ctx, def.Input())
		if err != nil {
			log.Error("storing problem failed", zap.String("title", def.Title), zap.Error(err))
			rep.Failed = append(rep.Failed, Skipped{Path: path, Reason: err.Error()})
			continue
		}

		log.Debug("imported problem", zap.Int64("problem_id", id), zap.String("title", def.Title))
		rep.Imported = append(rep.Imported, Imported{Path: path, ProblemID: id, Title: def.Title})
	}
	return rep
}
