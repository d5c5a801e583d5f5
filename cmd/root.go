package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pable/go-defense-metrics/internal/config"
	"github.com/pable/go-defense-metrics/internal/model"
	"github.com/pable/go-defense-metrics/internal/session"
)

var (
	cfgPath string
	dataDir string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "defmetrics",
	Short: "Basketball defensive event metrics",
	Long: `Explore per-category defensive event tables (picks, screens, isolations,
closeouts): merged per-defender-per-game summaries, cascading page filters,
and drilldowns to individual chance ids.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}

		zc := zap.NewProductionConfig()
		if lvl, err := zap.ParseAtomicLevel(cfg.Logging.Level); err == nil {
			zc.Level = lvl
		}
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultCfg := filepath.Join(mustUserHome(), ".defmetrics", "config.yaml")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultCfg, "path to YAML config")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding the category sources (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(pageCmd)
	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(shellCmd)
}

// openSession starts a session and applies the --team/--game selection.
func openSession(team, game string) (*session.Session, error) {
	s, err := session.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if team == "" && game == "" {
		return s, nil
	}
	if game == "" {
		game = model.AllGames
	}
	s.Registry.SetSelection(team, game)
	return s, nil
}

// addSelectionFlags registers the --team and --game flags on c.
func addSelectionFlags(c *cobra.Command, team, game *string) {
	c.Flags().StringVar(team, "team", "", "defense team code (default: All Teams); without --game selects the team's newest game")
	c.Flags().StringVar(game, "game", "", "game id (default: All Games when no team is given)")
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
