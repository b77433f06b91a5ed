package cmd

import (
	"fmt"
	"time"

	"github.com/planair/planair/internal/dateinput"
	"github.com/planair/planair/internal/event"
	"github.com/planair/planair/internal/filter"
	"github.com/planair/planair/internal/location"
	"github.com/planair/planair/internal/log"
	"github.com/spf13/cobra"
)

var listFlags struct {
	category  string
	price     string
	from      string
	to        string
	favorites bool
	near      string
	radius    float64
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the events that pass the filter and exit",
	Long: `Print the events that pass the given filter in a simple text format and exit.
Dates accept the same forms as the TUI: "today", "next friday", "in 3 days",
"10-05-2025" and similar.`,
	RunE: runList,
}

func init() {
	f := listCmd.Flags()
	f.StringVar(&listFlags.category, "category", "", "Only events in this category")
	f.StringVar(&listFlags.price, "price", "all", "Price range: all, free or paid")
	f.StringVar(&listFlags.from, "from", "", "Earliest event date")
	f.StringVar(&listFlags.to, "to", "", "Latest event date")
	f.BoolVar(&listFlags.favorites, "favorites", false, "Only favorite events")
	f.StringVar(&listFlags.near, "near", "", "Only events near lat,lon")
	f.Float64Var(&listFlags.radius, "radius", 0, "Radius in km for --near (default from config)")
	rootCmd.AddCommand(listCmd)
}

// buildFilter turns the list flags into a filter state.
func buildFilter(loc *time.Location, defaultKm float64) (filter.State, error) {
	st := filter.Default().WithRadius(defaultKm)

	if listFlags.category != "" {
		c, ok := event.ParseCategory(listFlags.category)
		if !ok {
			return st, fmt.Errorf("unknown category: %s", listFlags.category)
		}
		st = st.WithCategory(&c)
	}

	price, err := filter.ParsePriceRange(listFlags.price)
	if err != nil {
		return st, err
	}
	st = st.WithPrice(price)

	parser := dateinput.NewParser(loc)
	from, err := parser.ParseBound(listFlags.from)
	if err != nil {
		return st, fmt.Errorf("invalid --from: %w", err)
	}
	to, err := parser.ParseBound(listFlags.to)
	if err != nil {
		return st, fmt.Errorf("invalid --to: %w", err)
	}
	st = st.WithStartDate(from).WithEndDate(to)

	if listFlags.near != "" {
		c, err := location.ParseCoordinate(listFlags.near)
		if err != nil {
			return st, fmt.Errorf("invalid --near: %w", err)
		}
		st = st.WithOrigin(filter.PointOrigin(filter.OriginMapPoint, c, c.String()))
	}
	if listFlags.radius > 0 {
		st = st.WithRadius(listFlags.radius)
	}

	st.FavoritesOnly = listFlags.favorites
	return st, nil
}

func runList(cmd *cobra.Command, args []string) error {
	logger, closer, err := log.New(log.ModeConsole, "", cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	st, err := buildFilter(cfg.Timezone, cfg.DefaultRadiusKm)
	if err != nil {
		return err
	}

	sess, err := newSession(logger, &st, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.Start(cmd.Context())
	sess.Wait()

	events := sess.Visible()
	fmt.Fprintf(cmd.OutOrStdout(), "%s events (%d of %d):\n", st.Title(), len(events), sess.Events().Len())
	if len(events) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No events found.")
		return nil
	}

	for _, e := range events {
		date := e.Date
		if d, err := event.ParseDate(e.Date, cfg.Timezone); err == nil {
			date = d.Format(cfg.DateFormat)
		}
		timeStr := "All day"
		if e.StartTime != "" {
			timeStr = e.StartTime
		}

		favStr := ""
		if sess.IsFavorite(e) {
			favStr = " *"
		}

		fmt.Fprintf(cmd.OutOrStdout(), "  %s %s - %s%s\n", date, timeStr, e.Title, favStr)
		details := []string{e.Category.String()}
		if e.IsFree() {
			details = append(details, "free")
		} else {
			details = append(details, e.Price)
		}
		if e.Location != nil && e.Location.Address != "" {
			details = append(details, e.Location.Address)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "    %v\n", details)
	}

	return nil
}
