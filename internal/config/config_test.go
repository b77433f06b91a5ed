package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/planair/planair/internal/location"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.FavoritesBackend != BackendJSON {
		t.Errorf("Wrong default favorites backend: %s", cfg.FavoritesBackend)
	}

	if !strings.HasSuffix(cfg.FavoritesFile, "user_favorites.json") {
		t.Errorf("Wrong default favorites file: %s", cfg.FavoritesFile)
	}

	if cfg.DefaultRadiusKm != 20 {
		t.Errorf("Wrong default radius: %v", cfg.DefaultRadiusKm)
	}

	if cfg.LocationPermission {
		t.Error("Location permission should be off by default")
	}

	if cfg.DateFormat != "02-01-2006" {
		t.Errorf("Wrong default date format: %s", cfg.DateFormat)
	}

	if !cfg.AutoRefresh {
		t.Error("Auto refresh should be enabled by default")
	}

	if cfg.RefreshRate != 30*time.Second {
		t.Errorf("Wrong default refresh rate: %v", cfg.RefreshRate)
	}

	if cfg.ActionFor("q") != "quit" {
		t.Errorf("Wrong quit key binding: %s", cfg.ActionFor("q"))
	}

	if cfg.DetailOffsetDp != 200 {
		t.Errorf("Wrong default detail offset: %d", cfg.DetailOffsetDp)
	}
}

func TestParseLine(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		line     string
		check    func(*Config) bool
		hasError bool
	}{
		{
			line:  "set events_file /srv/events.yaml",
			check: func(c *Config) bool { return c.EventsFile == "/srv/events.yaml" },
		},
		{
			line:  "set favorites_backend SQLite",
			check: func(c *Config) bool { return c.FavoritesBackend == BackendSQLite },
		},
		{
			line:     "set favorites_backend redis",
			hasError: true,
		},
		{
			line:  "set auto_refresh false",
			check: func(c *Config) bool { return !c.AutoRefresh },
		},
		{
			line:  "set refresh_rate 60",
			check: func(c *Config) bool { return c.RefreshRate == 60*time.Second },
		},
		{
			line:  `set default_center_name "Kraków Rynek"`,
			check: func(c *Config) bool { return c.DefaultCenterName == "Kraków Rynek" },
		},
		{
			line:  "bind z favorites_only",
			check: func(c *Config) bool { return c.ActionFor("z") == "favorites_only" },
		},
		{
			line:  "color favorite 201",
			check: func(c *Config) bool { return c.Colors["favorite"] == "201" },
		},
		{
			line:     "invalid command",
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			err := cfg.parseLine(tt.line)

			if tt.hasError && err == nil {
				t.Error("Expected error but got none")
			}

			if !tt.hasError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}

			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Check failed for line: %s", tt.line)
			}
		})
	}
}

func TestSetVariable(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		value    string
		check    func(*Config) bool
		hasError bool
	}{
		{
			name:  "favorites_file",
			value: "~/favs.json",
			check: func(c *Config) bool {
				return !strings.HasPrefix(c.FavoritesFile, "~") && strings.HasSuffix(c.FavoritesFile, "favs.json")
			},
		},
		{
			name:  "log_level",
			value: "DEBUG",
			check: func(c *Config) bool { return c.LogLevel == zerolog.DebugLevel },
		},
		{
			name:     "log_level",
			value:    "loud",
			hasError: true,
		},
		{
			name:  "timezone",
			value: "UTC",
			check: func(c *Config) bool { return c.Timezone == time.UTC },
		},
		{
			name:     "timezone",
			value:    "Mars/Olympus",
			hasError: true,
		},
		{
			name:  "default_radius",
			value: "12.5",
			check: func(c *Config) bool { return c.DefaultRadiusKm == 12.5 },
		},
		{
			name:     "default_radius",
			value:    "-1",
			hasError: true,
		},
		{
			name:  "default_center",
			value: "50.0614, 19.9366",
			check: func(c *Config) bool {
				return c.DefaultCenter == location.Coordinate{Lat: 50.0614, Lon: 19.9366}
			},
		},
		{
			name:     "default_center",
			value:    "95,10",
			hasError: true,
		},
		{
			name:  "user_location",
			value: "52.23,21.01",
			check: func(c *Config) bool {
				return c.UserLocation != nil && c.UserLocation.Lat == 52.23
			},
		},
		{
			name:  "location_permission",
			value: "yes",
			check: func(c *Config) bool { return c.LocationPermission },
		},
		{
			name:  "watch_events",
			value: "0",
			check: func(c *Config) bool { return !c.WatchEvents },
		},
		{
			name:  "refresh_rate",
			value: "5m",
			check: func(c *Config) bool { return c.RefreshRate == 5*time.Minute },
		},
		{
			name:     "refresh_rate",
			value:    "often",
			hasError: true,
		},
		{
			name:  "detail_offset_dp",
			value: "150",
			check: func(c *Config) bool { return c.DetailOffsetDp == 150 },
		},
		{
			name:     "unknown_variable",
			value:    "something",
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+"="+tt.value, func(t *testing.T) {
			err := cfg.setVariable(tt.name, tt.value)

			if tt.hasError && err == nil {
				t.Error("Expected error but got none")
			}

			if !tt.hasError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}

			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Check failed for %s = %s", tt.name, tt.value)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "planairrc")

	content := `# Test config file
set events_file /data/events.json
set favorites_backend sqlite
set default_radius 5
set location_permission true
set location_file /run/planair/location.json
set auto_refresh false
set refresh_rate 120

bind Q quit
bind z favorites_only

color selected 33
`

	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	cfg, err := LoadConfig(configFile)
	if err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}

	if cfg.Source != configFile {
		t.Errorf("Wrong source: %s", cfg.Source)
	}

	if cfg.EventsFile != "/data/events.json" {
		t.Errorf("Wrong events file: %s", cfg.EventsFile)
	}

	if cfg.FavoritesBackend != BackendSQLite || !strings.HasSuffix(cfg.FavoritesPath(), "user_favorites.db") {
		t.Errorf("Wrong favorites path for sqlite: %s", cfg.FavoritesPath())
	}

	if cfg.DefaultRadiusKm != 5 || !cfg.LocationPermission {
		t.Errorf("Wrong location settings: %+v", cfg)
	}

	if _, ok := cfg.LocationProvider().(location.File); !ok {
		t.Errorf("location_file should select the file provider, got %T", cfg.LocationProvider())
	}

	if cfg.AutoRefresh {
		t.Error("Auto refresh should be disabled")
	}

	if cfg.RefreshRate != 120*time.Second {
		t.Errorf("Wrong refresh rate: %v", cfg.RefreshRate)
	}

	if cfg.ActionFor("Q") != "quit" || cfg.ActionFor("z") != "favorites_only" {
		t.Errorf("Wrong bindings: %v", cfg.KeyBindings)
	}

	if cfg.Colors["selected"] != "33" {
		t.Errorf("Wrong selected color: %s", cfg.Colors["selected"])
	}
}

func TestLoadFromFileReportsLine(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "planairrc")
	if err := os.WriteFile(configFile, []byte("set default_radius 3\nset default_radius far\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(configFile)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected error on line 2, got %v", err)
	}
}

func TestLoadConfigSearchAndEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "rc")
	if err := os.WriteFile(configFile, []byte("set default_radius 7\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PLANAIR_CONFIG", configFile)
	t.Setenv("PLANAIR_EVENTS", "/tmp/override.yaml")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DefaultRadiusKm != 7 {
		t.Errorf("PLANAIR_CONFIG not honoured, radius %v", cfg.DefaultRadiusKm)
	}
	if cfg.EventsFile != "/tmp/override.yaml" {
		t.Errorf("PLANAIR_EVENTS not honoured: %s", cfg.EventsFile)
	}
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("missing explicit config should be an error")
	}
}

func TestLocationProviderStatic(t *testing.T) {
	cfg := DefaultConfig()
	if p, ok := cfg.LocationProvider().(location.Static); !ok || p.Coordinate != nil {
		t.Errorf("default provider should be an empty Static, got %#v", cfg.LocationProvider())
	}
}
