package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizwatch/internal/config"
	"github.com/abhisek/quizwatch/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizwatch",
	Short: "Adaptive practice quizzes with camera proctoring",
	Long: "QuizWatch runs adaptive multiple-choice practice sessions in the terminal. " +
		"With consent, it watches the camera during a session to keep evidence frames " +
		"and periodic attention readings.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, nil)
	},
}

// Execute runs the root command. An interrupt cancels the command
// context so subcommands stop their queries.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides QUIZWATCH_CONFIG)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZWATCH_DB)")
	rootCmd.PersistentFlags().String("user", "", "Learner ID (overrides QUIZWATCH_USER)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(masteryCmd)
	rootCmd.AddCommand(evidenceCmd)
	rootCmd.AddCommand(cameraCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the configuration, then applies the persistent
// flags on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		cfg.UserID = u
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Storage.DB = p
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db or the config
// (highest priority), then QUIZWATCH_DB, then the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.Storage.DB != "" {
		return cfg.Storage.DB, store.EnsureDir(cfg.Storage.DB)
	}
	return store.DefaultDBPath()
}

// openStore loads the configuration and opens the database.
func openStore(cmd *cobra.Command) (*store.Store, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, config.Config{}, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, config.Config{}, err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, config.Config{}, err
	}
	return st, cfg, nil
}
