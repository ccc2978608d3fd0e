package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/abhisek/drill/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "drill",
	Short: "Terminal coding-practice tracker",
	Long: "Drill imports coding exercises, grades your solutions against their tests " +
		"and tracks experience, levels and problems due for review.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// Execute runs the root command. An interrupt cancels the command's
// context, which stops a running grade.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides DRILL_DB env var)")
	rootCmd.PersistentFlags().String("workspace", "", "Directory holding questions/ and solutions/ (overrides DRILL_WORKSPACE)")
	rootCmd.PersistentFlags().Bool("debug", false, "Write debug-level logs")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(resetCodeCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(hintCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveConfig loads .env, then the environment, then applies flags, which
// take priority.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, err
	}

	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if w, _ := cmd.Flags().GetString("workspace"); w != "" {
		cfg.Workspace = w
	}
	if d, _ := cmd.Flags().GetBool("debug"); d {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("resolve config: %w", err)
	}
	return cfg, nil
}
