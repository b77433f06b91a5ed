package session

import (
	"context"
	"strings"
	"time"

	"github.com/planair/planair/internal/event"
	"github.com/planair/planair/internal/filter"
)

func (s *Session) update(fn func(filter.State) filter.State) filter.State {
	return s.filter.Update(fn)
}

func (s *Session) SetCategory(c *event.Category) {
	s.update(func(st filter.State) filter.State { return st.WithCategory(c) })
}

func (s *Session) SetRadius(km float64) {
	s.update(func(st filter.State) filter.State { return st.WithRadius(km) })
}

func (s *Session) SetPriceRange(p filter.PriceRange) {
	s.update(func(st filter.State) filter.State { return st.WithPrice(p) })
}

func (s *Session) SetStartDate(t *time.Time) {
	s.update(func(st filter.State) filter.State { return st.WithStartDate(t) })
}

func (s *Session) SetEndDate(t *time.Time) {
	s.update(func(st filter.State) filter.State { return st.WithEndDate(t) })
}

func (s *Session) SetOrigin(o filter.Origin) {
	s.update(func(st filter.State) filter.State { return st.WithOrigin(o) })
}

// ToggleFavoritesOnly enters or leaves favorites-only mode. Entering keeps a
// snapshot of the current filter and clears category, dates and price;
// leaving restores the snapshot.
func (s *Session) ToggleFavoritesOnly() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	s.update(func(cur filter.State) filter.State {
		if !cur.FavoritesOnly {
			snap := cur
			s.snapshot = &snap
			next := cur.WithCategory(nil).WithStartDate(nil).WithEndDate(nil).WithPrice(filter.PriceAll)
			next.FavoritesOnly = true
			return next
		}
		return s.leaveFavoritesLocked(cur)
	})
}

// must be called with stateMu held
func (s *Session) leaveFavoritesLocked(cur filter.State) filter.State {
	next := cur
	if s.snapshot != nil {
		next = *s.snapshot
	}
	next.FavoritesOnly = false
	s.snapshot = nil
	return next
}

// PrepareForFilterEditing leaves favorites-only mode so every criterion can be
// edited.
func (s *Session) PrepareForFilterEditing() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if !s.filter.Get().FavoritesOnly {
		s.snapshot = nil
		return
	}
	s.update(s.leaveFavoritesLocked)
}

// ResetToDefaults replaces the filter with defaults, keeping the fields set in
// opts.
func (s *Session) ResetToDefaults(opts filter.ResetOptions) {
	s.stateMu.Lock()
	s.snapshot = nil
	s.stateMu.Unlock()

	next := filter.Reset(opts).WithRadius(s.defaultKm)
	s.filter.Set(next)
	s.logger.Debug().Str("title", next.Title()).Msg("Filters reset")
}

// ResetFilters resets to defaults while keeping the anchored category,
// favorites-only flag and origin.
func (s *Session) ResetFilters() {
	s.stateMu.Lock()
	anchors := s.anchors
	s.stateMu.Unlock()

	s.ResetToDefaults(anchors)
	if s.filter.Get().Origin.Kind == filter.OriginUserLocation && s.permission.Get() {
		s.RequestLocation(s.ctx)
	}
}

// ApplyFilter replaces the whole filter and clears the selection.
func (s *Session) ApplyFilter(st filter.State) {
	s.stateMu.Lock()
	s.snapshot = nil
	s.anchors = anchorsOf(st)
	s.stateMu.Unlock()

	s.filter.Set(st)
	s.ClearSelection()
}

// ApplyIntroChoice applies an entry choice: FavoritesChoice, a category name,
// or anything else for all categories.
func (s *Session) ApplyIntroChoice(choice string) {
	choice = strings.TrimSpace(choice)

	next := s.update(func(cur filter.State) filter.State {
		if strings.EqualFold(choice, FavoritesChoice) {
			next := cur.WithCategory(nil)
			next.FavoritesOnly = true
			return next
		}
		var cat *event.Category
		if c, ok := event.ParseCategory(choice); ok {
			cat = &c
		}
		next := cur.WithCategory(cat)
		next.FavoritesOnly = false
		return next
	})

	s.stateMu.Lock()
	s.snapshot = nil
	s.anchors = anchorsOf(next)
	s.stateMu.Unlock()

	s.ClearSelection()
	s.logger.Info().Str("choice", choice).Str("title", next.Title()).Msg("Applied entry choice")
}

// UseDefaultLocation centers the radius filter on the configured default
// point.
func (s *Session) UseDefaultLocation() {
	s.SetOrigin(filter.PointOrigin(filter.OriginDefault, s.cameraCfg.DefaultCenter, s.centerName))
}

func (s *Session) SetLocationPermission(granted bool) {
	s.permission.Set(granted)
	if granted {
		s.RequestLocation(s.ctx)
	}
}

// RequestLocation asks the provider for the last known position in the
// background. Without permission, or when no position is available, a
// user-location origin falls back to the default origin.
func (s *Session) RequestLocation(ctx context.Context) {
	if !s.permission.Get() {
		s.logger.Warn().Msg("Location requested without permission")
		s.fallbackFromUserOrigin()
		return
	}
	s.goTask(func() {
		c, err := s.provider.LastKnown(ctx)
		if ctx.Err() != nil || s.ctx.Err() != nil {
			return
		}
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to get location")
			s.fallbackFromUserOrigin()
			return
		}
		if c == nil {
			s.logger.Warn().Msg("No last known location")
			s.fallbackFromUserOrigin()
			return
		}

		s.logger.Debug().Str("location", c.String()).Msg("User location updated")
		s.user.Set(c)
		s.update(func(st filter.State) filter.State {
			if st.Origin.Kind != filter.OriginUserLocation {
				return st
			}
			if _, ok := st.Origin.Coordinate(); ok {
				return st
			}
			return st.WithOrigin(filter.PointOrigin(filter.OriginUserLocation, *c, filter.UserOrigin().Name))
		})
	})
}

func (s *Session) fallbackFromUserOrigin() {
	s.update(func(st filter.State) filter.State {
		if st.Origin.Kind != filter.OriginUserLocation {
			return st
		}
		return st.WithOrigin(filter.DefaultOrigin())
	})
}

func anchorsOf(st filter.State) filter.ResetOptions {
	opts := filter.ResetOptions{Category: st.Category}
	if st.FavoritesOnly {
		v := true
		opts.FavoritesOnly = &v
	}
	origin := st.Origin
	opts.Origin = &origin
	return opts
}
