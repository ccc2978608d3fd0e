package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/abhisek/drill/internal/app"
	"github.com/abhisek/drill/internal/catalog"
	"github.com/abhisek/drill/internal/config"
	"github.com/abhisek/drill/internal/grader"
	"github.com/abhisek/drill/internal/hints"
	"github.com/abhisek/drill/internal/llm"
	"github.com/abhisek/drill/internal/logging"
	"github.com/abhisek/drill/internal/practice"
	"github.com/abhisek/drill/internal/review"
	"github.com/abhisek/drill/internal/screens/dashboard"
	"github.com/abhisek/drill/internal/store"
	"github.com/abhisek/drill/internal/workspace"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// services bundles everything a command may need. Close releases the store
// and flushes the log.
type services struct {
	cfg       config.Config
	store     *store.Store
	logger    *zap.Logger
	workspace *workspace.Workspace
	practice  *practice.Service
	scheduler *review.Scheduler
	importer  *catalog.Importer
}

func (s *services) Close() {
	s.store.Close()
	logging.Sync(s.logger)
}

// openServices resolves configuration, opens the store and log file, and
// wires the domain services.
func openServices(cmd *cobra.Command) (*services, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}

	if err := store.EnsureDir(cfg.LogPath()); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	logger, err := logging.New(cfg.LogPath(), cfg.Debug)
	if err != nil {
		return nil, err
	}

	if err := store.EnsureDir(cfg.DBPath); err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	ws := workspace.New(cfg.Workspace)
	if err := ws.Init(); err != nil {
		st.Close()
		return nil, err
	}

	g, err := grader.New(cfg.Grader(ws.SolutionsDir), logger.Named("grader"))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("configure grader: %w", err)
	}

	return &services{
		cfg:       cfg,
		store:     st,
		logger:    logger,
		workspace: ws,
		practice:  practice.NewService(st, g, ws, practice.WithLogger(logger.Named("practice"))),
		scheduler: review.NewScheduler(st.AttemptRepo(), cfg.ReviewAfter),
		importer:  catalog.NewImporter(st.ProblemRepo(), cfg.Extension, logger.Named("catalog")),
	}, nil
}

// hintService builds the hint generator from DRILL_LLM_* settings, falling
// back to the first standard provider key found in the environment.
func (s *services) hintService(ctx context.Context) (*hints.Service, error) {
	cfg, err := llm.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			return nil, err
		}
		cfg = discovered
	}
	provider, err := llm.NewProvider(ctx, cfg, s.store.EventRepo(), s.logger.Named("llm"))
	if err != nil {
		return nil, err
	}
	return hints.NewService(provider, hints.DefaultConfig()), nil
}

// runApp opens the services and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	svc, err := openServices(cmd)
	if err != nil {
		return err
	}
	defer svc.Close()

	deps := dashboard.Deps{
		Store:     svc.store,
		Practice:  svc.practice,
		Scheduler: svc.scheduler,
		Workspace: svc.workspace,
		Importer:  svc.importer,
	}

	hintSvc, err := svc.hintService(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Hints will be unavailable.")
	} else {
		deps.Hints = hintSvc
	}

	return app.Run(ctx, deps, svc.logger.Named("ui"))
}
