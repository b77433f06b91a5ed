package cmd

import (
	"context"
	"fmt"

	"github.com/planair/planair/internal/config"
	"github.com/planair/planair/internal/favorites"
	"github.com/planair/planair/internal/filter"
	"github.com/planair/planair/internal/log"
	"github.com/planair/planair/internal/session"
	"github.com/planair/planair/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	cfgFile    string
	eventsFile string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "planair",
	Short: "Browse local events in the terminal",
	Long: `PlanAir lists local events and lets you filter them by category, price,
date range and distance, and keep a list of favorites.`,
	PersistentPreRunE: initConfig,
	SilenceUsage:      true,
	RunE:              runTUI,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&eventsFile, "events", "", "Events file to use instead of the configured one")
}

func initConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if eventsFile != "" {
		cfg.EventsFile = eventsFile
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The TUI owns the terminal, so logs go to a file.
	logger, closer, err := log.New(log.ModeFile, cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	sess, err := newSession(logger, nil, cfg.WatchEvents)
	if err != nil {
		return err
	}
	defer sess.Close()

	model := ui.NewModel(cfg, sess)
	p := tea.NewProgram(model, tea.WithAltScreen())

	cancel := ui.Subscribe(p, sess)
	defer cancel()

	ctx, stop := context.WithCancel(cmd.Context())
	defer stop()
	sess.Start(ctx)

	logger.Info().Str("events", cfg.EventsFile).Str("config", cfg.Source).Msg("Starting PlanAir")
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	return nil
}

// newSession builds the favorites store for the configured backend and a
// session over the configured events file.
func newSession(logger zerolog.Logger, initial *filter.State, watch bool) (*session.Session, error) {
	var persister favorites.Persister
	switch cfg.FavoritesBackend {
	case config.BackendSQLite:
		db, err := favorites.OpenSQLite(cfg.FavoritesPath())
		if err != nil {
			return nil, fmt.Errorf("failed to open favorites database: %w", err)
		}
		persister = db
	default:
		persister = favorites.NewJSONFile(cfg.FavoritesPath())
	}

	return session.New(session.Options{
		EventsPath:      cfg.EventsFile,
		Favorites:       favorites.NewStore(persister, logger),
		Location:        cfg.LocationProvider(),
		Logger:          logger,
		Loc:             cfg.Timezone,
		Initial:         initial,
		DefaultRadiusKm: cfg.DefaultRadiusKm,
		Camera:          cfg.CameraConfig(),
		DefaultName:     cfg.DefaultCenterName,
		Permission:      cfg.LocationPermission,
		WatchEvents:     watch,
	})
}
