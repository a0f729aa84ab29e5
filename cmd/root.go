package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/cardwise/internal/app"
	"github.com/abhisek/cardwise/internal/config"
	"github.com/abhisek/cardwise/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "cardwise",
	Short: "Adaptive spaced repetition from the terminal",
	Long: "Cardwise schedules reviews with an SM-2 variant, ranks what to study next, " +
		"and learns how long each learner remembers.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CARDWISE_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ./cardwise.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (overrides config)")

	rootCmd.AddCommand(itemCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file, then CARDWISE_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DB.Path != "" {
		return cfg.DB.Path, store.EnsureDir(cfg.DB.Path)
	}
	return store.DefaultDBPath()
}

// openApp loads configuration and opens the application. sessionSize
// overrides the configured session size when positive.
func openApp(cmd *cobra.Command, sessionSize int) (*app.App, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	return app.New(app.Options{
		Config:      cfg,
		DBPath:      dbPath,
		LogOutput:   os.Stderr,
		SessionSize: sessionSize,
	})
}

// requireUser returns the --user flag or an error when it is empty.
func requireUser(cmd *cobra.Command) (string, error) {
	user, _ := cmd.Flags().GetString("user")
	if user == "" {
		return "", fmt.Errorf("--user is required")
	}
	return user, nil
}
