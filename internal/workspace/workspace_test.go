package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abhisek/drill/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProblem() *store.Problem {
	return &store.Problem{
		ID:           1,
		Title:        "001 Adder",
		Filename:     "Adder.py",
		SolutionStub: "def add(a, b):\n    pass\n",
	}
}

func TestInit(t *testing.T) {
	w := New(t.TempDir())
	require.NoError(t, w.Init())
	assert.DirExists(t, w.QuestionsDir)
	assert.DirExists(t, w.SolutionsDir)
	require.NoError(t, w.Init(), "Init is repeatable")
}

func TestEnsureSolution(t *testing.T) {
	w := New(t.TempDir())
	p := testProblem()

	path, created, err := w.EnsureSolution(p)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, filepath.Join(w.SolutionsDir, "Adder.py"), path)

	got, err := w.ReadSolution(p)
	require.NoError(t, err)
	assert.Equal(t, "# 001 Adder\ndef add(a, b):\n    pass\n", got)

	// Existing work is never overwritten.
	require.NoError(t, os.WriteFile(path, []byte("def add(a, b):\n    return a + b\n"), 0o644))
	_, created, err = w.EnsureSolution(p)
	require.NoError(t, err)
	assert.False(t, created)

	got, err = w.ReadSolution(p)
	require.NoError(t, err)
	assert.Equal(t, "def add(a, b):\n    return a + b\n", got)
}

func TestResetSolution(t *testing.T) {
	w := New(t.TempDir())
	p := testProblem()

	path, _, err := w.EnsureSolution(p)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("broken"), 0o644))

	_, err = w.ResetSolution(p)
	require.NoError(t, err)

	got, err := w.ReadSolution(p)
	require.NoError(t, err)
	assert.Equal(t, w.Template(p), got)
}

func TestReadSolutionMissing(t *testing.T) {
	w := New(t.TempDir())
	_, err := w.ReadSolution(testProblem())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestModuleName(t *testing.T) {
	tests := map[string]string{
		"Adder.py":       "Adder",
		"Two-Sum.py":     "Two-Sum",
		"noext":          "noext",
		"archive.tar.gz": "archive.tar",
	}
	for in, want := range tests {
		assert.Equal(t, want, ModuleName(in), in)
	}
}
