// Package config resolves application settings from flags, the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/abhisek/drill/internal/grader"
	"github.com/abhisek/drill/internal/logging"
	"github.com/abhisek/drill/internal/review"
	"github.com/abhisek/drill/internal/store"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvDB          = "DRILL_DB"
	EnvWorkspace   = "DRILL_WORKSPACE"
	EnvInterpreter = "DRILL_INTERPRETER"
	EnvExtension   = "DRILL_EXTENSION"
	EnvTimeout     = "DRILL_TIMEOUT"
	EnvLinkMode    = "DRILL_LINK_MODE"
	EnvReviewAfter = "DRILL_REVIEW_AFTER"
	EnvDebug       = "DRILL_DEBUG"
)

// Config holds application settings.
type Config struct {
	DataDir   string `validate:"required"`
	DBPath    string `validate:"required"`
	Workspace string `validate:"required"`

	Interpreter string          `validate:"required"`
	Extension   string          `validate:"required,startswith=."`
	Timeout     time.Duration   `validate:"gt=0"`
	LinkMode    grader.LinkMode `validate:"oneof=alias rewrite"`
	ReviewAfter time.Duration   `validate:"gt=0"`

	Debug bool
}

var validate = validator.New()

// LoadDotEnv loads KEY=VALUE pairs from the given files, or ./.env when
// none are given. Missing files are ignored and variables already set in
// the environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Default returns the built-in settings with data under dataDir and the
// workspace in the current directory.
func Default(dataDir string) Config {
	g := grader.DefaultConfig("")
	return Config{
		DataDir:     dataDir,
		DBPath:      filepath.Join(dataDir, "drill.db"),
		Workspace:   ".",
		Interpreter: g.Interpreter,
		Extension:   g.Extension,
		Timeout:     g.Timeout,
		LinkMode:    g.LinkMode,
		ReviewAfter: review.DefaultThreshold,
	}
}

// FromEnv returns Default settings overridden by DRILL_* environment
// variables.
func FromEnv() (Config, error) {
	dataDir, err := store.DataDir()
	if err != nil {
		return Config{}, err
	}
	cfg := Default(dataDir)

	if v := os.Getenv(EnvDB); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvWorkspace); v != "" {
		cfg.Workspace = v
	}
	if v := os.Getenv(EnvInterpreter); v != "" {
		cfg.Interpreter = v
	}
	if v := os.Getenv(EnvExtension); v != "" {
		cfg.Extension = v
	}
	if v := os.Getenv(EnvLinkMode); v != "" {
		cfg.LinkMode = grader.LinkMode(v)
	}
	if cfg.Timeout, err = durationEnv(EnvTimeout, cfg.Timeout); err != nil {
		return Config{}, err
	}
	if cfg.ReviewAfter, err = durationEnv(EnvReviewAfter, cfg.ReviewAfter); err != nil {
		return Config{}, err
	}
	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvDebug, err)
		}
		cfg.Debug = debug
	}

	return cfg, cfg.Validate()
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

// Validate reports missing or out-of-range settings.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LogPath returns the log file location.
func (c Config) LogPath() string {
	return filepath.Join(c.DataDir, logging.FileName)
}

// Grader returns the grading configuration for solutions in solutionsDir.
func (c Config) Grader(solutionsDir string) grader.Config {
	g := grader.DefaultConfig(solutionsDir)
	g.Interpreter = c.Interpreter
	g.Extension = c.Extension
	g.Timeout = c.Timeout
	g.LinkMode = c.LinkMode
	return g
}
