// Package workspace manages the on-disk questions and solutions
// directories.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abhisek/drill/internal/store"
)

const (
	questionsDir = "questions"
	solutionsDir = "solutions"
)

// Workspace is a root directory holding imported question pages and the
// user's solution files.
type Workspace struct {
	Root         string
	QuestionsDir string
	SolutionsDir string

	// CommentPrefix starts the header line of a new solution file.
	CommentPrefix string
}

// New returns a Workspace rooted at root. Directories are not created until
// Init is called.
func New(root string) *Workspace {
	return &Workspace{
		Root:          root,
		QuestionsDir:  filepath.Join(root, questionsDir),
		SolutionsDir:  filepath.Join(root, solutionsDir),
		CommentPrefix: "#",
	}
}

// Init creates the questions and solutions directories.
func (w *Workspace) Init() error {
	for _, dir := range []string{w.QuestionsDir, w.SolutionsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// SolutionPath returns the path of a problem's solution file.
func (w *Workspace) SolutionPath(p *store.Problem) string {
	return filepath.Join(w.SolutionsDir, p.Filename)
}

// ModuleName returns the module name a solution file is imported as.
func ModuleName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// Template returns the initial content of a problem's solution file.
func (w *Workspace) Template(p *store.Problem) string {
	return w.CommentPrefix + " " + p.Title + "\n" + p.SolutionStub
}

// EnsureSolution creates the solution file from the template when it does
// not exist. It reports whether the file was created.
func (w *Workspace) EnsureSolution(p *store.Problem) (string, bool, error) {
	path := w.SolutionPath(p)
	if err := os.MkdirAll(w.SolutionsDir, 0o755); err != nil {
		return path, false, fmt.Errorf("create solutions dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return path, false, nil
	}
	if err != nil {
		return path, false, fmt.Errorf("create solution: %w", err)
	}
	if _, err := f.WriteString(w.Template(p)); err != nil {
		f.Close()
		return path, false, fmt.Errorf("write solution: %w", err)
	}
	if err := f.Close(); err != nil {
		return path, false, fmt.Errorf("write solution: %w", err)
	}
	return path, true, nil
}

// ResetSolution overwrites the solution file with the template.
func (w *Workspace) ResetSolution(p *store.Problem) (string, error) {
	path := w.SolutionPath(p)
	if err := os.MkdirAll(w.SolutionsDir, 0o755); err != nil {
		return path, fmt.Errorf("create solutions dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(w.Template(p)), 0o644); err != nil {
		return path, fmt.Errorf("reset solution: %w", err)
	}
	return path, nil
}

// ReadSolution returns the current solution source.
func (w *Workspace) ReadSolution(p *store.Problem) (string, error) {
	b, err := os.ReadFile(w.SolutionPath(p))
	if err != nil {
		return "", fmt.Errorf("read solution: %w", err)
	}
	return string(b), nil
}
