package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/planair/planair/internal/camera"
	"github.com/planair/planair/internal/location"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

var (
	setRe   = regexp.MustCompile(`^set\s+(\w+)\s+(.+)$`)
	bindRe  = regexp.MustCompile(`^bind\s+(\S+)\s+(\S+)$`)
	colorRe = regexp.MustCompile(`^color\s+(\w+)\s+(.+)$`)
)

type Config struct {
	// File settings
	EventsFile       string
	FavoritesFile    string
	FavoritesBackend string
	LogFile          string
	LogLevel         zerolog.Level

	// Location settings
	Timezone           *time.Location
	DefaultRadiusKm    float64
	DefaultCenter      location.Coordinate
	DefaultCenterName  string
	UserLocation       *location.Coordinate
	LocationFile       string
	LocationPermission bool

	// Display settings
	DateFormat     string
	DetailOffsetDp int

	// UI settings
	Colors      map[string]string
	KeyBindings map[string]string // key -> action

	// Behavior settings
	WatchEvents bool
	AutoRefresh bool
	RefreshRate time.Duration

	// Path the settings were read from, empty when only defaults apply.
	Source string
}

func DefaultConfig() *Config {
	dataDir := defaultDataDir()

	return &Config{
		EventsFile:       filepath.Join(dataDir, "events.json"),
		FavoritesFile:    filepath.Join(dataDir, "user_favorites.json"),
		FavoritesBackend: BackendJSON,
		LogFile:          filepath.Join(dataDir, "planair.log"),
		LogLevel:         zerolog.InfoLevel,

		Timezone:          time.Local,
		DefaultRadiusKm:   20,
		DefaultCenter:     camera.DefaultCenter,
		DefaultCenterName: "Warsaw",

		DateFormat:     "02-01-2006",
		DetailOffsetDp: camera.DefaultOffsetDp,

		Colors: map[string]string{
			"normal":   "252",
			"selected": "220",
			"header":   "220",
			"favorite": "205",
			"free":     "40",
			"paid":     "39",
			"help":     "241",
		},

		KeyBindings: map[string]string{
			"q":      "quit",
			"?":      "help",
			"j":      "next_event",
			"k":      "prev_event",
			"down":   "next_event",
			"up":     "prev_event",
			"enter":  "select",
			"esc":    "clear_selection",
			"f":      "toggle_favorite",
			"F":      "favorites_only",
			"c":      "next_category",
			"C":      "prev_category",
			"p":      "cycle_price",
			"+":      "radius_up",
			"-":      "radius_down",
			"o":      "cycle_origin",
			"s":      "set_start_date",
			"e":      "set_end_date",
			"x":      "reset_filters",
			"l":      "request_location",
			"L":      "toggle_permission",
			"n":      "navigate",
			"r":      "refresh",
			"ctrl+c": "quit",
		},

		WatchEvents: true,
		AutoRefresh: true,
		RefreshRate: 30 * time.Second,
	}
}

// SearchPaths lists the rc files tried in order when no path is given.
func SearchPaths() []string {
	home, _ := os.UserHomeDir()
	paths := []string{os.Getenv("PLANAIR_CONFIG")}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "planair", "planairrc"))
	}
	return append(paths,
		filepath.Join(home, ".config", "planair", "planairrc"),
		filepath.Join(home, ".planairrc"),
	)
}

// LoadConfig reads the given rc file, or the first one found on the search
// path when explicit is empty. PLANAIR_EVENTS overrides the events file.
func LoadConfig(explicit string) (*Config, error) {
	config := DefaultConfig()

	if explicit != "" {
		if err := config.loadFromFile(explicit); err != nil {
			return nil, fmt.Errorf("error loading config from %s: %w", explicit, err)
		}
	} else {
		for _, path := range SearchPaths() {
			if path == "" {
				continue
			}

			if _, err := os.Stat(path); err == nil {
				if err := config.loadFromFile(path); err != nil {
					return nil, fmt.Errorf("error loading config from %s: %w", path, err)
				}
				break
			}
		}
	}

	if events := os.Getenv("PLANAIR_EVENTS"); events != "" {
		config.EventsFile = expandHome(events)
	}

	return config, nil
}

func (c *Config) loadFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := c.parseLine(line); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	c.Source = path
	return nil
}

func (c *Config) parseLine(line string) error {
	// set variable value
	if matches := setRe.FindStringSubmatch(line); matches != nil {
		return c.setVariable(matches[1], matches[2])
	}

	// bind key action
	if matches := bindRe.FindStringSubmatch(line); matches != nil {
		c.KeyBindings[matches[1]] = matches[2]
		return nil
	}

	// color element color_spec
	if matches := colorRe.FindStringSubmatch(line); matches != nil {
		c.Colors[matches[1]] = strings.Trim(matches[2], `"'`)
		return nil
	}

	return fmt.Errorf("unknown config line: %s", line)
}

func (c *Config) setVariable(name, value string) error {
	// Remove quotes if present
	value = strings.Trim(value, `"'`)

	switch name {
	case "events_file":
		c.EventsFile = expandHome(value)

	case "favorites_file":
		c.FavoritesFile = expandHome(value)

	case "favorites_backend":
		switch strings.ToLower(value) {
		case BackendJSON, BackendSQLite:
			c.FavoritesBackend = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid favorites_backend: %s", value)
		}

	case "log_file":
		c.LogFile = expandHome(value)

	case "log_level":
		level, err := zerolog.ParseLevel(strings.ToLower(value))
		if err != nil {
			return fmt.Errorf("invalid log_level: %s", value)
		}
		c.LogLevel = level

	case "timezone":
		loc, err := time.LoadLocation(value)
		if err != nil {
			return fmt.Errorf("invalid timezone: %s", value)
		}
		c.Timezone = loc

	case "default_radius":
		km, err := strconv.ParseFloat(value, 64)
		if err != nil || km < 0 {
			return fmt.Errorf("invalid default_radius: %s", value)
		}
		c.DefaultRadiusKm = km

	case "default_center":
		coord, err := location.ParseCoordinate(value)
		if err != nil {
			return fmt.Errorf("invalid default_center: %w", err)
		}
		c.DefaultCenter = coord

	case "default_center_name":
		c.DefaultCenterName = value

	case "user_location":
		coord, err := location.ParseCoordinate(value)
		if err != nil {
			return fmt.Errorf("invalid user_location: %w", err)
		}
		c.UserLocation = &coord

	case "location_file":
		c.LocationFile = expandHome(value)

	case "location_permission":
		c.LocationPermission = parseBool(value)

	case "watch_events":
		c.WatchEvents = parseBool(value)

	case "auto_refresh":
		c.AutoRefresh = parseBool(value)

	case "refresh_rate":
		rate, err := time.ParseDuration(value)
		if err != nil {
			// Try parsing as seconds
			if seconds, err2 := strconv.Atoi(value); err2 == nil {
				rate = time.Duration(seconds) * time.Second
			} else {
				return fmt.Errorf("invalid refresh_rate: %s", value)
			}
		}
		c.RefreshRate = rate

	case "date_format":
		c.DateFormat = value

	case "detail_offset_dp":
		dp, err := strconv.Atoi(value)
		if err != nil || dp < 0 {
			return fmt.Errorf("invalid detail_offset_dp: %s", value)
		}
		c.DetailOffsetDp = dp

	default:
		return fmt.Errorf("unknown config variable: %s", name)
	}

	return nil
}

// FavoritesPath is the favorites file for the configured backend. The SQLite
// backend uses a .db file next to the default JSON file unless one was set.
func (c *Config) FavoritesPath() string {
	if c.FavoritesBackend == BackendSQLite && c.FavoritesFile == DefaultConfig().FavoritesFile {
		return strings.TrimSuffix(c.FavoritesFile, filepath.Ext(c.FavoritesFile)) + ".db"
	}
	return c.FavoritesFile
}

// LocationProvider returns the configured source of the user position.
func (c *Config) LocationProvider() location.Provider {
	if c.LocationFile != "" {
		return location.File{Path: c.LocationFile}
	}
	return location.Static{Coordinate: c.UserLocation}
}

func (c *Config) CameraConfig() camera.Config {
	return camera.Config{DefaultCenter: c.DefaultCenter, OffsetDp: c.DetailOffsetDp}
}

// ActionFor returns the action bound to key, if any.
func (c *Config) ActionFor(key string) string {
	return c.KeyBindings[key]
}

func parseBool(value string) bool {
	return strings.ToLower(value) == "true" || value == "1" || strings.ToLower(value) == "yes"
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "planair")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "planair")
}
