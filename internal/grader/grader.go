// Package grader runs a problem's test script against the user's solution
// in a child process and turns the outcome into a verdict.
package grader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind classifies how a run ended.
type Kind string

const (
	KindPassed  Kind = "passed"
	KindFailed  Kind = "failed"
	KindTimeout Kind = "timeout"
	KindError   Kind = "error"
)

// Verdict is the outcome of one grading run.
type Verdict struct {
	RunID      string
	Success    bool
	Kind       Kind
	Diagnostic string

	// ExitCode is the child's exit status, -1 when it did not exit on its
	// own.
	ExitCode int
	Elapsed  time.Duration

	// Cases holds per-case results when the test script wrote a report.
	Cases []CaseResult

	Stdout string
	Stderr string
}

// Grader executes test scripts. It holds no per-run state and is safe for
// concurrent use.
type Grader struct {
	cfg    Config
	linker Linker
	logger *zap.Logger
}

// New creates a Grader. A nil logger disables logging.
func New(cfg Config, logger *zap.Logger) (*Grader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	linker, err := NewLinker(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Grader{cfg: cfg, linker: linker, logger: logger}, nil
}

// Config returns the grader's configuration.
func (g *Grader) Config() Config {
	return g.cfg
}

// Grade runs testScript against the solution module named module (the
// solution file name without extension) and classifies the result.
//
// Test failures, timeouts and an interpreter that cannot be started are
// all reported as an unsuccessful Verdict with a nil error. A non-nil
// error means the run could not be prepared, or ctx was cancelled.
func (g *Grader) Grade(ctx context.Context, testScript, module string) (Verdict, error) {
	runID := uuid.NewString()
	log := g.logger.With(
		zap.String("run_id", runID),
		zap.String("module", module),
	)
	v := Verdict{RunID: runID, ExitCode: -1}

	runDir, err := os.MkdirTemp("", "drill-run-")
	if err != nil {
		return v, fmt.Errorf("create run dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(runDir); err != nil {
			log.Warn("remove run dir", zap.String("dir", runDir), zap.Error(err))
		}
	}()

	plan, err := g.linker.Link(runDir, testScript, module)
	if errors.Is(err, ErrSolutionMissing) {
		v.Kind = KindError
		v.Diagnostic = errorDetailsHeader + err.Error()
		log.Info("grading skipped", zap.Error(err))
		return v, nil
	}
	if err != nil {
		return v, fmt.Errorf("link test script: %w", err)
	}

	scriptPath := filepath.Join(runDir, "evaluate"+g.cfg.Extension)
	if err := os.WriteFile(scriptPath, []byte(plan.Script), 0o600); err != nil {
		return v, fmt.Errorf("write test script: %w", err)
	}
	reportPath := filepath.Join(runDir, "report.json")

	runCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	args := append(append([]string{}, g.cfg.Args...), scriptPath)
	cmd := exec.CommandContext(runCtx, g.cfg.Interpreter, args...)
	cmd.Dir = plan.Dir
	cmd.Env = g.childEnv(plan, reportPath)
	cmd.WaitDelay = g.cfg.WaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("grading started", zap.String("interpreter", g.cfg.Interpreter))
	start := time.Now()
	runErr := cmd.Run()
	v.Elapsed = time.Since(start)
	v.Stdout = stdout.String()
	v.Stderr = stderr.String()

	if ctx.Err() != nil {
		return v, ctx.Err()
	}

	cases, _, repErr := readReport(reportPath)
	if repErr != nil {
		log.Warn("ignoring result report", zap.Error(repErr))
	}
	v.Cases = cases

	var exitErr *exec.ExitError
	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		v.Kind = KindTimeout
		v.Diagnostic = fmt.Sprintf("⏱️ Timed out after %s", g.cfg.Timeout)
		if tail := strings.TrimSpace(v.Stderr); tail != "" {
			v.Diagnostic += "\n" + errorDetailsHeader + tailLines(v.Stderr, g.cfg.FallbackLines)
		}
	case runErr == nil:
		v.Success = true
		v.Kind = KindPassed
		v.ExitCode = 0
		v.Diagnostic = SuccessMessage
	case errors.As(runErr, &exitErr):
		v.Kind = KindFailed
		v.ExitCode = exitErr.ExitCode()
		v.Diagnostic = diagnose(v.Stderr, cases, g.cfg.FallbackLines)
	default:
		// The interpreter could not be started.
		v.Kind = KindError
		v.Diagnostic = errorDetailsHeader + runErr.Error()
	}

	log.Info("grading finished",
		zap.String("kind", string(v.Kind)),
		zap.Int("exit_code", v.ExitCode),
		zap.Duration("elapsed", v.Elapsed),
	)
	return v, nil
}

// childEnv returns the inherited environment extended with the module
// search path, the report location and configured extras.
func (g *Grader) childEnv(plan Plan, reportPath string) []string {
	env := os.Environ()

	path := strings.Join(plan.Path, string(os.PathListSeparator))
	if existing := os.Getenv(g.cfg.PathEnv); existing != "" {
		path += string(os.PathListSeparator) + existing
	}
	env = append(env, g.cfg.PathEnv+"="+path, ReportEnv+"="+reportPath)

	return append(env, g.cfg.Env...)
}
