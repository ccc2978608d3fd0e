package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/abhisek/drill/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adderPage = `<!DOCTYPE html>
<html>
<body>
<div id="app"></div>
<script>
const quizData = {
  "title": "001 Adder",
  "instructions": "<p>Write <code>add(a, b)</code> that returns a &amp; b summed.</p><p>Line two<br>continues.</p>",
  "solutions": [
    {"content": "def add(a, b):\n    return a + b\n"},
    {"content": "add = lambda a, b: a + b"}
  ],
  "tests": [
    {"content": "import unittest\nfrom exercise import add\n"}
  ]
};
render(quizData);
</script>
</body>
</html>`

func TestParse(t *testing.T) {
	def, err := Parse([]byte(adderPage), ".py")
	require.NoError(t, err)

	assert.Equal(t, "001 Adder", def.Title)
	assert.Equal(t, "Adder.py", def.Filename)
	assert.Equal(t, "Write add(a, b) that returns a & b summed.\nLine two\ncontinues.", def.Instructions)
	assert.Equal(t, "def add(a, b):\n    pass\n", def.SolutionStub)
	assert.Equal(t, "import unittest\nfrom exercise import add\n", def.TestCode)
}

func TestParseRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		page string
		want error
	}{
		{"no quiz data", "<html><body>nothing here</body></html>", ErrNoQuizData},
		{"broken json", "const quizData = {\"title\": };", ErrInvalidDefinition},
		{"missing tests", `const quizData = {"title": "X", "instructions": "", "solutions": [{"content": "def f():"}]};`, ErrInvalidDefinition},
		{"empty solutions", `const quizData = {"title": "X", "instructions": "", "solutions": [], "tests": [{"content": "t"}]};`, ErrInvalidDefinition},
		{"empty title", `const quizData = {"title": "", "instructions": "", "solutions": [{"content": "s"}], "tests": [{"content": "t"}]};`, ErrInvalidDefinition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.page), ".py")
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse() err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFilenameFor(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"001 Square Pattern", "Square_Pattern.py"},
		{"12Two Sum", "Two_Sum.py"},
		{"Reverse a String!", "Reverse_a_String.py"},
		{"Café Menu", "Cafe_Menu.py"},
		{"FizzBuzz (easy)", "FizzBuzz_easy.py"},
		{"Two-Sum", "Two-Sum.py"},
		{"007", "problem.py"},
		{"  Padded  ", "Padded.py"},
		{"???", "problem.py"},
	}

	for _, tt := range tests {
		if got := FilenameFor(tt.title, ".py"); got != tt.want {
			t.Errorf("FilenameFor(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestStubFromStarter(t *testing.T) {
	assert.Equal(t, "def f(x):\n    pass\n", StubFromStarter("def f(x):\r\n    return x\r\n"))
	assert.Equal(t, "def g():\n    pass\n", StubFromStarter("def g():"))
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"<b>bold</b> &lt;tag&gt;", "bold <tag>"},
		{"<ul><li>one</li><li>two</li></ul>", "one\ntwo"},
		{"<p>a</p>\n\n\n\n<p>b</p>", "a\n\nb"},
	}
	for _, tt := range tests {
		if got := StripMarkup(tt.in); got != tt.want {
			t.Errorf("StripMarkup(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestImportDir(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "drill.db"))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("001 Adder.html", adderPage)
	write("002 Broken.html", "<html>const quizData = {oops};</html>")
	write("notes.txt", adderPage)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.html"), 0o755))

	im := NewImporter(s.ProblemRepo(), ".py", nil)
	rep, err := im.ImportDir(ctx, dir)
	require.NoError(t, err)

	require.Len(t, rep.Imported, 1)
	assert.Equal(t, "001 Adder", rep.Imported[0].Title)
	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, filepath.Join(dir, "002 Broken.html"), rep.Skipped[0].Path)
	assert.Empty(t, rep.Failed)

	// Re-importing refreshes the same row.
	rep2, err := im.ImportDir(ctx, dir)
	require.NoError(t, err)
	require.Len(t, rep2.Imported, 1)
	assert.Equal(t, rep.Imported[0].ProblemID, rep2.Imported[0].ProblemID)

	p, err := s.ProblemRepo().Get(ctx, rep.Imported[0].ProblemID)
	require.NoError(t, err)
	assert.Equal(t, "Adder.py", p.Filename)

	_, err = im.ImportDir(ctx, filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

type failingRepo struct {
	store.ProblemRepo
}

func (failingRepo) Upsert(context.Context, store.ProblemInput) (int64, error) {
	return 0, errors.New("disk full")
}

func TestImportFilesContinuesAfterStoreFailure(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.html")
	b := filepath.Join(dir, "b.html")
	require.NoError(t, os.WriteFile(a, []byte(adderPage), 0o644))
	require.NoError(t, os.WriteFile(b, []byte(adderPage), 0o644))

	rep := NewImporter(failingRepo{}, ".py", nil).ImportFiles(context.Background(), []string{a, filepath.Join(dir, "gone.html"), b})
	assert.Empty(t, rep.Imported)
	assert.Len(t, rep.Failed, 2)
	assert.Len(t, rep.Skipped, 1)
}
