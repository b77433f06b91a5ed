package filter

import (
	"testing"
	"time"

	"github.com/planair/planair/internal/event"
	"github.com/planair/planair/internal/location"
)

func TestDefault(t *testing.T) {
	s := Default()

	if s.Category != nil {
		t.Error("default category should be any")
	}
	if s.RadiusKm != 20 {
		t.Errorf("default radius = %v, want 20", s.RadiusKm)
	}
	if s.Price != PriceAll {
		t.Errorf("default price = %v, want All", s.Price)
	}
	if s.StartDate != nil || s.EndDate != nil {
		t.Error("default dates should be unset")
	}
	if s.Origin.Kind != OriginDefault {
		t.Errorf("default origin kind = %v", s.Origin.Kind)
	}
	if _, ok := s.Origin.Coordinate(); ok {
		t.Error("default origin should have no coordinate")
	}
	if s.FavoritesOnly {
		t.Error("favorites-only should be off by default")
	}
}

func TestWithMethodsCopy(t *testing.T) {
	base := Default()
	c := event.CategorySport
	day := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

	next := base.WithCategory(&c).WithStartDate(&day).WithRadius(5)

	c = event.CategoryCulture
	day = day.AddDate(1, 0, 0)

	if base.Category != nil || base.StartDate != nil || base.RadiusKm != DefaultRadiusKm {
		t.Error("With* modified the receiver")
	}
	if *next.Category != event.CategorySport {
		t.Error("state should not alias the caller's category")
	}
	if next.StartDate.Year() != 2025 {
		t.Error("state should not alias the caller's date")
	}
	if next.WithRadius(-3).RadiusKm != 0 {
		t.Error("negative radius should clamp to zero")
	}
}

func TestToggleFavoritesOnly(t *testing.T) {
	c := event.CategorySport
	s := Default().WithCategory(&c)

	on := s.ToggleFavoritesOnly()
	if !on.FavoritesOnly || on.Category != nil {
		t.Errorf("enabling favorites-only should clear category: %+v", on)
	}

	off := on.ToggleFavoritesOnly()
	if off.FavoritesOnly {
		t.Error("second toggle should disable favorites-only")
	}
}

func TestReset(t *testing.T) {
	c := event.CategoryEducation
	yes := true
	origin := PointOrigin(OriginMapPoint, location.Coordinate{Lat: 52, Lon: 21}, "Pin")

	tests := []struct {
		name  string
		opts  ResetOptions
		check func(State) bool
	}{
		{
			name:  "nothing preserved",
			opts:  ResetOptions{},
			check: func(s State) bool { return s.Category == nil && !s.FavoritesOnly && s.Origin.Kind == OriginDefault },
		},
		{
			name:  "category preserved",
			opts:  ResetOptions{Category: &c},
			check: func(s State) bool { return s.Category != nil && *s.Category == event.CategoryEducation },
		},
		{
			name:  "favorites-only preserved",
			opts:  ResetOptions{FavoritesOnly: &yes},
			check: func(s State) bool { return s.FavoritesOnly },
		},
		{
			name:  "origin preserved",
			opts:  ResetOptions{Origin: &origin},
			check: func(s State) bool { return s.Origin.Kind == OriginMapPoint && s.Origin.Name == "Pin" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Reset(tt.opts)
			if !tt.check(s) {
				t.Errorf("unexpected state: %+v", s)
			}
			if s.RadiusKm != DefaultRadiusKm || s.Price != PriceAll || s.StartDate != nil || s.EndDate != nil {
				t.Errorf("non-preserved fields should be defaults: %+v", s)
			}
		})
	}
}

func TestParsePriceRange(t *testing.T) {
	tests := []struct {
		input    string
		expected PriceRange
		hasError bool
	}{
		{"all", PriceAll, false},
		{"", PriceAll, false},
		{"FREE", PriceFree, false},
		{"paid", PricePaid, false},
		{"cheap", PriceAll, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePriceRange(tt.input)
			if (err != nil) != tt.hasError {
				t.Fatalf("error = %v, hasError %v", err, tt.hasError)
			}
			if got != tt.expected {
				t.Errorf("ParsePriceRange(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTitle(t *testing.T) {
	c := event.CategoryCulture
	if got := Default().Title(); got != "All" {
		t.Errorf("Title = %q", got)
	}
	if got := Default().WithCategory(&c).Title(); got != "Culture" {
		t.Errorf("Title = %q", got)
	}
	if got := Default().ToggleFavoritesOnly().Title(); got != "Favorites" {
		t.Errorf("Title = %q", got)
	}
}
