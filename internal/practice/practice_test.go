package practice

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/abhisek/drill/internal/grader"
	"github.com/abhisek/drill/internal/store"
	"github.com/abhisek/drill/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adderTest = `. ./exercise.sh || exit 2
got=$(add 2 3) || exit 1
if [ "$got" != "5" ]; then
	echo "FAIL: test_add (tests.TestAdd.test_add)" >&2
	echo "AssertionError: $got != 5" >&2
	exit 1
fi
`

type fixture struct {
	svc   *Service
	store *store.Store
	ws    *workspace.Workspace
	id    int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts require a POSIX sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	st, err := store.Open(filepath.Join(t.TempDir(), "drill.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ws := workspace.New(t.TempDir())
	require.NoError(t, ws.Init())

	cfg := grader.DefaultConfig(ws.SolutionsDir)
	cfg.Interpreter = "sh"
	cfg.Extension = ".sh"
	cfg.Timeout = 5 * time.Second
	cfg.WaitDelay = 100 * time.Millisecond
	g, err := grader.New(cfg, nil)
	require.NoError(t, err)

	id, err := st.ProblemRepo().Upsert(context.Background(), store.ProblemInput{
		Title:        "001 Adder",
		Filename:     "Adder.sh",
		SolutionStub: "add() { :; }\n",
		TestCode:     adderTest,
	})
	require.NoError(t, err)

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	svc := NewService(st, g, ws, WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	return &fixture{svc: svc, store: st, ws: ws, id: id}
}

func TestOpenCreatesSolutionFromStub(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.svc.Open(ctx, f.id)
	require.NoError(t, err)
	assert.True(t, sess.Created)
	assert.Empty(t, sess.History)

	data, err := os.ReadFile(sess.SolutionPath)
	require.NoError(t, err)
	assert.Equal(t, "# 001 Adder\nadd() { :; }\n", string(data))

	sess, err = f.svc.Open(ctx, f.id)
	require.NoError(t, err)
	assert.False(t, sess.Created)
}

func TestSubmitAwardsOnlyFirstSolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.svc.Open(ctx, f.id)
	require.NoError(t, err)

	res, err := f.svc.Submit(ctx, f.id, 30*time.Second)
	require.NoError(t, err)
	assert.False(t, res.Verdict.Success)
	assert.Equal(t, grader.KindFailed, res.Verdict.Kind)
	assert.Nil(t, res.Award)
	assert.Equal(t, "failed", res.Attempt.Kind)
	assert.Equal(t, 30*time.Second, res.Attempt.Duration)

	require.NoError(t, os.WriteFile(sess.SolutionPath, []byte("add() { echo $(($1 + $2)); }\n"), 0o644))

	res, err = f.svc.Submit(ctx, f.id, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Verdict.Success)
	assert.Equal(t, grader.SuccessMessage, res.Attempt.Diagnostic)
	assert.False(t, res.AlreadySolved)
	require.NotNil(t, res.Award)
	assert.Equal(t, 30, res.Award.XP, "solved on the second try")
	assert.Equal(t, 30, res.Award.TotalXP)

	res, err = f.svc.Submit(ctx, f.id, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Verdict.Success)
	assert.True(t, res.AlreadySolved)
	assert.Nil(t, res.Award)

	// A later failure leaves the problem solved.
	require.NoError(t, os.WriteFile(sess.SolutionPath, []byte("add() { echo 0; }\n"), 0o644))
	res, err = f.svc.Submit(ctx, f.id, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Verdict.Success)

	p, err := f.store.ProblemRepo().Get(ctx, f.id)
	require.NoError(t, err)
	assert.True(t, p.Solved)

	st, err := f.svc.Ledger().State(ctx, time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local))
	require.NoError(t, err)
	assert.Equal(t, 30, st.TotalXP)
	assert.Equal(t, 1, st.Streak)

	hist, err := f.store.AttemptRepo().History(ctx, f.id)
	require.NoError(t, err)
	require.Len(t, hist, 4)
	assert.False(t, hist[0].Success, "newest first")
	assert.NotEmpty(t, hist[0].RunID)
}

func TestSubmitFirstTrySolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.svc.Open(ctx, f.id)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(sess.SolutionPath, []byte("add() { echo $(($1 + $2)); }\n"), 0o644))

	res, err := f.svc.Submit(ctx, f.id, time.Second)
	require.NoError(t, err)
	require.NotNil(t, res.Award)
	assert.Equal(t, 50, res.Award.XP)
}

func TestSubmitUnknownProblem(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), f.id+100, time.Second)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSubmitCancelledRecordsNothing(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Submit(ctx, f.id, time.Second)
	require.Error(t, err)

	n, err := f.store.AttemptRepo().Count(context.Background(), f.id)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.svc.Open(ctx, f.id)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(sess.SolutionPath, []byte("garbage"), 0o644))

	path, err := f.svc.Reset(ctx, f.id)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# 001 Adder\nadd() { :; }\n", string(data))
}
