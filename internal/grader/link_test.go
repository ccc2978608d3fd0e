package grader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteImport(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{
			name:   "placeholder import",
			script: "import unittest\nfrom exercise import add\n",
			want:   "import unittest\nfrom solutions.Adder import add\n",
		},
		{
			name:   "no placeholder is a no-op",
			script: "import exercise\n",
			want:   "import exercise\n",
		},
		{
			name:   "every occurrence",
			script: "from exercise import a\nfrom exercise import b\n",
			want:   "from solutions.Adder import a\nfrom solutions.Adder import b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RewriteImport(tt.script, "exercise", "solutions.Adder")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAliasLinker(t *testing.T) {
	root := t.TempDir()
	solutions := filepath.Join(root, "solutions")
	require.NoError(t, os.MkdirAll(solutions, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(solutions, "Adder.py"), []byte("def add(a, b): return a + b\n"), 0o644))

	cfg := DefaultConfig(solutions)
	l, err := NewLinker(cfg)
	require.NoError(t, err)

	runDir := t.TempDir()
	script := "from exercise import add\n"
	plan, err := l.Link(runDir, script, "Adder")
	require.NoError(t, err)

	assert.Equal(t, script, plan.Script, "alias linking leaves the script untouched")
	assert.Equal(t, runDir, plan.Dir)
	assert.Equal(t, []string{runDir, solutions, root}, plan.Path)

	alias, err := os.ReadFile(filepath.Join(runDir, "exercise.py"))
	require.NoError(t, err)
	assert.Equal(t, "def add(a, b): return a + b\n", string(alias))

	_, err = l.Link(t.TempDir(), script, "Missing")
	assert.True(t, errors.Is(err, ErrSolutionMissing))
}

func TestRewriteLinker(t *testing.T) {
	root := t.TempDir()
	solutions := filepath.Join(root, "solutions")

	cfg := DefaultConfig(solutions)
	cfg.LinkMode = LinkRewrite
	l, err := NewLinker(cfg)
	require.NoError(t, err)

	plan, err := l.Link(t.TempDir(), "from exercise import add\n", "Adder")
	require.NoError(t, err)
	assert.Equal(t, "from solutions.Adder import add\n", plan.Script)
	assert.Equal(t, root, plan.Dir)
	assert.Equal(t, []string{root}, plan.Path)
}

func TestNewLinkerUnknownMode(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	cfg.LinkMode = "copy"
	if _, err := NewLinker(cfg); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
