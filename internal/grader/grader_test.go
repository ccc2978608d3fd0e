package grader

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shAdder = "add() { echo $(($1 + $2)); }\n"

const shAdderTest = `. ./exercise.sh || exit 2
got=$(add 2 3) || exit 1
if [ "$got" != "5" ]; then
	echo "FAIL: test_add (tests.TestAdd.test_add)" >&2
	echo "AssertionError: $got != 5" >&2
	exit 1
fi
`

// newShellGrader returns a Grader that runs /bin/sh scripts against
// solutions written into a fresh solutions directory.
func newShellGrader(t *testing.T, solutions map[string]string) (*Grader, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts require a POSIX sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir := filepath.Join(t.TempDir(), "solutions")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, body := range solutions {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".sh"), []byte(body), 0o644))
	}

	cfg := DefaultConfig(dir)
	cfg.Interpreter = "sh"
	cfg.Extension = ".sh"
	cfg.Timeout = 5 * time.Second
	cfg.WaitDelay = 100 * time.Millisecond

	g, err := New(cfg, nil)
	require.NoError(t, err)
	return g, dir
}

func TestGradePassing(t *testing.T) {
	g, _ := newShellGrader(t, map[string]string{"Adder": shAdder})

	v, err := g.Grade(context.Background(), shAdderTest, "Adder")
	require.NoError(t, err)
	assert.True(t, v.Success)
	assert.Equal(t, KindPassed, v.Kind)
	assert.Equal(t, SuccessMessage, v.Diagnostic)
	assert.Equal(t, 0, v.ExitCode)
	assert.NotEmpty(t, v.RunID)
}

func TestGradeIsIdempotent(t *testing.T) {
	g, dir := newShellGrader(t, map[string]string{"Adder": shAdder})
	path := filepath.Join(dir, "Adder.sh")

	for i := 0; i < 2; i++ {
		v, err := g.Grade(context.Background(), shAdderTest, "Adder")
		require.NoError(t, err)
		assert.True(t, v.Success, "run %d", i)
		assert.Equal(t, SuccessMessage, v.Diagnostic, "run %d", i)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, shAdder, string(data), "solution file changed after run %d", i)
	}
}

func TestGradeAssertionFailure(t *testing.T) {
	g, _ := newShellGrader(t, map[string]string{
		"Adder": "add() { echo $(($1 - $2)); }\n",
	})

	v, err := g.Grade(context.Background(), shAdderTest, "Adder")
	require.NoError(t, err)
	assert.False(t, v.Success)
	assert.Equal(t, KindFailed, v.Kind)
	assert.Equal(t, 1, v.ExitCode)
	assert.Equal(t, "\n🔻 FAILED TEST CASE: test_add\n   ⚠️  Mismatch: -1 != 5", v.Diagnostic)
}

func TestGradeMissingSymbolFallsBackToStderr(t *testing.T) {
	g, _ := newShellGrader(t, map[string]string{
		"Adder": "subtract() { echo $(($1 - $2)); }\n",
	})

	v, err := g.Grade(context.Background(), shAdderTest, "Adder")
	require.NoError(t, err)
	assert.False(t, v.Success)
	assert.Equal(t, KindFailed, v.Kind)
	assert.True(t, strings.HasPrefix(v.Diagnostic, "⚠️ Error details:\n"), v.Diagnostic)
	assert.Contains(t, v.Diagnostic, "not found")
}

func TestGradeTimeout(t *testing.T) {
	g, _ := newShellGrader(t, map[string]string{"Slow": shAdder})
	g.cfg.Timeout = 200 * time.Millisecond

	start := time.Now()
	v, err := g.Grade(context.Background(), "exec sleep 5\n", "Slow")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
	assert.False(t, v.Success)
	assert.Equal(t, KindTimeout, v.Kind)
	assert.Equal(t, -1, v.ExitCode)
	assert.Contains(t, v.Diagnostic, "Timed out after 200ms")
}

func TestGradeInterpreterMissing(t *testing.T) {
	g, _ := newShellGrader(t, map[string]string{"Adder": shAdder})
	g.cfg.Interpreter = "drill-no-such-interpreter"

	v, err := g.Grade(context.Background(), shAdderTest, "Adder")
	require.NoError(t, err)
	assert.False(t, v.Success)
	assert.Equal(t, KindError, v.Kind)
	assert.True(t, strings.HasPrefix(v.Diagnostic, "⚠️ Error details:\n"))
}

func TestGradeSolutionMissing(t *testing.T) {
	g, _ := newShellGrader(t, nil)

	v, err := g.Grade(context.Background(), shAdderTest, "Nope")
	require.NoError(t, err)
	assert.False(t, v.Success)
	assert.Equal(t, KindError, v.Kind)
	assert.Contains(t, v.Diagnostic, ErrSolutionMissing.Error())
}

func TestGradeReadsResultReport(t *testing.T) {
	g, _ := newShellGrader(t, map[string]string{"Adder": shAdder})

	script := `printf '{"cases":[{"name":"adds","status":"pass"},{"name":"carries","status":"fail","message":"10 != 9"}]}' > "$DRILL_REPORT"
echo "FAIL: ignored_when_report_present" >&2
exit 1
`
	v, err := g.Grade(context.Background(), script, "Adder")
	require.NoError(t, err)
	assert.False(t, v.Success)
	require.Len(t, v.Cases, 2)
	assert.False(t, v.Cases[0].Failed())
	assert.True(t, v.Cases[1].Failed())
	assert.Equal(t, "\n🔻 FAILED TEST CASE: carries\n   ⚠️  Mismatch: 10 != 9", v.Diagnostic)
}

func TestGradeRemovesRunDir(t *testing.T) {
	g, _ := newShellGrader(t, map[string]string{"Adder": shAdder})

	v, err := g.Grade(context.Background(), "pwd\n", "Adder")
	require.NoError(t, err)
	require.True(t, v.Success)

	runDir := strings.TrimSpace(v.Stdout)
	require.NotEmpty(t, runDir)
	_, statErr := os.Stat(runDir)
	assert.True(t, os.IsNotExist(statErr), "run dir %s still exists", runDir)
}

func TestGradeCancelledContext(t *testing.T) {
	g, _ := newShellGrader(t, map[string]string{"Adder": shAdder})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Grade(ctx, shAdderTest, "Adder")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no interpreter", func(c *Config) { c.Interpreter = "" }},
		{"extension without dot", func(c *Config) { c.Extension = "py" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"unknown link mode", func(c *Config) { c.LinkMode = "symlink" }},
		{"no fallback lines", func(c *Config) { c.FallbackLines = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(t.TempDir())
			tt.mutate(&cfg)
			if _, err := New(cfg, nil); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

const pyAdderTest = `import unittest
from exercise import add


class TestAdd(unittest.TestCase):
    def test_add(self):
        self.assertEqual(add(2, 3), 5)


if __name__ == "__main__":
    unittest.main()
`

func TestGradePythonScenarios(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}

	tests := []struct {
		name     string
		solution string
		success  bool
		contains string
	}{
		{"correct add", "def add(a, b):\n    return a + b\n", true, SuccessMessage},
		{"wrong add", "def add(a, b):\n    return a - b\n", false, "🔻 FAILED TEST CASE: test_add"},
		{"missing add", "def subtract(a, b):\n    return a - b\n", false, "⚠️ Error details:\n"},
	}

	for _, mode := range []LinkMode{LinkAlias, LinkRewrite} {
		for _, tt := range tests {
			t.Run(string(mode)+"/"+tt.name, func(t *testing.T) {
				dir := filepath.Join(t.TempDir(), "solutions")
				require.NoError(t, os.MkdirAll(dir, 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "Adder.py"), []byte(tt.solution), 0o644))

				cfg := DefaultConfig(dir)
				cfg.LinkMode = mode
				g, err := New(cfg, nil)
				require.NoError(t, err)

				v, err := g.Grade(context.Background(), pyAdderTest, "Adder")
				require.NoError(t, err)
				assert.Equal(t, tt.success, v.Success, v.Diagnostic)
				assert.Contains(t, v.Diagnostic, tt.contains)
			})
		}
	}
}
