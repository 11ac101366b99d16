package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/dailydrill/internal/analysis"
	"github.com/abhisek/dailydrill/internal/config"
	"github.com/abhisek/dailydrill/internal/engine"
	"github.com/abhisek/dailydrill/internal/logger"
	"github.com/abhisek/dailydrill/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "dailydrill",
	Short:         "Daily coding-practice recommendations",
	Long:          "Dailydrill picks a small daily batch of practice questions from your solve history and adapts to how you perform.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides DAILYDRILL_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides DAILYDRILL_CONFIG env var)")
	rootCmd.PersistentFlags().String("user", "", "Learner id (overrides DAILYDRILL_USER env var)")
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")

	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(replaceCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(staleCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file named by --config or DAILYDRILL_CONFIG.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("DAILYDRILL_CONFIG")
	}
	return config.Load(path)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path (DAILYDRILL_DB or config file), then the default
// XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// resolveUser returns --user, then the configured user.
func resolveUser(cmd *cobra.Command, cfg config.Config) string {
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		return u
	}
	return cfg.User
}

// env is what every subcommand needs.
type env struct {
	cfg  config.Config
	user string
	svc  *engine.Service
	log  *logger.Logger
}

// newLogger is swapped in tests.
var newLogger = logger.New

// setup loads configuration, opens the store and builds the engine. The
// returned cleanup closes the store and flushes the logger. Failures after
// the logger exists are logged and flushed before returning.
func setup(cmd *cobra.Command) (*env, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	log, err := newLogger(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	fail := func(err error) (*env, func(), error) {
		log.Error("setup failed", "error", err)
		log.Sync()
		return nil, nil, err
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return fail(fmt.Errorf("resolve DB path: %w", err))
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fail(fmt.Errorf("open store: %w", err))
	}
	log.Debug("store opened", "path", dbPath)

	svc := engine.NewService(engine.Options{
		Questions:    st.QuestionRepo(),
		History:      st.HistoryRepo(),
		Profiles:     st.ProfileRepo(),
		Batches:      st.BatchRepo(),
		Events:       st.EventRepo(),
		Logger:       log,
		Location:     loc,
		Batch:        cfg.Batch,
		Recommend:    cfg.Recommend,
		Adaptive:     cfg.Adaptive,
		AnalyzerMode: analysis.Mode(cfg.AnalyzerMode),
	})

	cleanup := func() {
		if err := st.Close(); err != nil {
			log.Warn("close store", "error", err)
		}
		log.Sync()
	}
	return &env{cfg: cfg, user: resolveUser(cmd, cfg), svc: svc, log: log}, cleanup, nil
}

// output prints v as JSON when --json is set, and the rendered view
// otherwise.
func output(cmd *cobra.Command, v any, view func() string) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := lipgloss.Fprintln(cmd.OutOrStdout(), view())
	return err
}
