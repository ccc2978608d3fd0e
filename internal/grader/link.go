package grader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrSolutionMissing is reported when the solution file to grade does not
// exist.
var ErrSolutionMissing = errors.New("solution file missing")

// Plan describes how to run a linked test script.
type Plan struct {
	// Script is the test script text to execute.
	Script string

	// Dir is the working directory of the child process.
	Dir string

	// Path lists directories prepended to the child's module search path.
	Path []string
}

// Linker binds a test script to a solution module inside a run directory.
type Linker interface {
	Link(runDir, script, module string) (Plan, error)
}

// NewLinker returns the Linker for the configured mode.
func NewLinker(cfg Config) (Linker, error) {
	switch cfg.LinkMode {
	case LinkAlias, "":
		return &AliasLinker{cfg: cfg}, nil
	case LinkRewrite:
		return &RewriteLinker{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("unknown link mode %q", cfg.LinkMode)
	}
}

// AliasLinker copies the solution into the run directory under the
// placeholder name, so the placeholder import resolves by module name.
// The solution directory is also put on the search path for solutions
// that import their siblings.
type AliasLinker struct {
	cfg Config
}

func (l *AliasLinker) Link(runDir, script, module string) (Plan, error) {
	src := filepath.Join(l.cfg.SolutionsDir, module+l.cfg.Extension)
	data, err := os.ReadFile(src)
	if errors.Is(err, os.ErrNotExist) {
		return Plan{}, fmt.Errorf("%w: %s", ErrSolutionMissing, src)
	}
	if err != nil {
		return Plan{}, fmt.Errorf("read solution: %w", err)
	}

	dst := filepath.Join(runDir, l.cfg.Placeholder+l.cfg.Extension)
	if err := os.WriteFile(dst, data, 0o600); err != nil {
		return Plan{}, fmt.Errorf("write module alias: %w", err)
	}

	return Plan{
		Script: script,
		Dir:    runDir,
		Path:   []string{runDir, l.cfg.SolutionsDir, filepath.Dir(l.cfg.SolutionsDir)},
	}, nil
}

// RewriteLinker replaces "from <placeholder> import" with
// "from <solutions package>.<module> import" and runs from the directory
// that contains the solutions package. A script without the placeholder
// import is left as is and fails at import time.
type RewriteLinker struct {
	cfg Config
}

func (l *RewriteLinker) Link(runDir, script, module string) (Plan, error) {
	root := filepath.Dir(l.cfg.SolutionsDir)
	pkg := filepath.Base(l.cfg.SolutionsDir)

	return Plan{
		Script: RewriteImport(script, l.cfg.Placeholder, pkg+"."+module),
		Dir:    root,
		Path:   []string{root},
	}, nil
}

// RewriteImport substitutes the placeholder import statement of script
// with an import of target.
func RewriteImport(script, placeholder, target string) string {
	return strings.ReplaceAll(script,
		"from "+placeholder+" import",
		"from "+target+" import",
	)
}
