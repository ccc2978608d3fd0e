package grader

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// LinkMode selects how a test script is bound to the solution module.
type LinkMode string

const (
	// LinkAlias places the solution next to the test script under the
	// placeholder module name. The script text is not modified.
	LinkAlias LinkMode = "alias"

	// LinkRewrite substitutes the placeholder import statement with the
	// solution's package path.
	LinkRewrite LinkMode = "rewrite"
)

// Config holds grading pipeline configuration.
type Config struct {
	// Interpreter is the program that runs test scripts.
	Interpreter string `validate:"required"`

	// Args are passed to the interpreter before the script path.
	Args []string

	// SolutionsDir holds one solution file per problem.
	SolutionsDir string `validate:"required"`

	// Extension is the solution and script file extension, with the dot.
	Extension string `validate:"required,startswith=."`

	// Placeholder is the logical module name test scripts import.
	Placeholder string `validate:"required"`

	LinkMode LinkMode `validate:"oneof=alias rewrite"`

	// Timeout bounds the wall-clock time of one test run.
	Timeout time.Duration `validate:"gt=0"`

	// WaitDelay bounds how long to wait for output after the child is
	// killed.
	WaitDelay time.Duration `validate:"gte=0"`

	// FallbackLines is how many trailing stderr lines the generic
	// diagnostic shows.
	FallbackLines int `validate:"gte=1"`

	// PathEnv names the variable through which the child learns its
	// module search path.
	PathEnv string `validate:"required"`

	// Env is appended to the inherited environment of the child.
	Env []string
}

// DefaultConfig returns a Config with sensible defaults for Python
// exercises stored under solutionsDir.
func DefaultConfig(solutionsDir string) Config {
	return Config{
		Interpreter:   "python3",
		SolutionsDir:  solutionsDir,
		Extension:     ".py",
		Placeholder:   "exercise",
		LinkMode:      LinkAlias,
		Timeout:       10 * time.Second,
		WaitDelay:     time.Second,
		FallbackLines: 5,
		PathEnv:       "PYTHONPATH",
	}
}

var validate = validator.New()

// Validate checks the configuration for missing or out-of-range values.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid grader config: %w", err)
	}
	return nil
}
