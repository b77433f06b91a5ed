package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/planair/planair/internal/calendar"
	"github.com/planair/planair/internal/filter"
	"github.com/planair/planair/internal/log"
	"github.com/spf13/cobra"
)

var (
	exportFavorites bool
	exportOutput    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export events as iCalendar",
	Long:  `Write all events, or only favorites, to an .ics file that calendar applications can import.`,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().BoolVar(&exportFavorites, "favorites", false, "Export only favorite events")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "Output file, - for stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	logger, closer, err := log.New(log.ModeConsole, "", cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	st := filter.Default().WithRadius(cfg.DefaultRadiusKm)
	st.FavoritesOnly = exportFavorites

	sess, err := newSession(logger, &st, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.Start(cmd.Context())
	sess.Wait()

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "-" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOutput, err)
		}
		defer f.Close()
		w = f
	}

	n, err := calendar.Export(w, sess.Visible(), cfg.Timezone, time.Now())
	if err != nil {
		return fmt.Errorf("failed to export events: %w", err)
	}
	logger.Info().Int("events", n).Str("output", exportOutput).Msg("Exported events")
	return nil
}
