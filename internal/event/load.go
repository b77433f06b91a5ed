package event

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Load reads the event source at path. It never fails: an unreadable or
// malformed file yields an empty Store and individual bad records are dropped.
// Problems are reported through logger.
func Load(ctx context.Context, path string, logger zerolog.Logger) *Store {
	if err := ctx.Err(); err != nil {
		return NewStore(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("failed to read event source")
		return NewStore(nil)
	}

	events, err := Decode(data, FormatFor(path), logger)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("failed to parse event source")
		return NewStore(nil)
	}

	store := NewStore(events)
	for _, key := range store.DuplicateKeys() {
		logger.Warn().Str("key", key).Msg("several events share a key; favorites and selection will treat them as one")
	}
	logger.Info().Str("path", path).Int("events", store.Len()).Msg("loaded events")
	return store
}

type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks a codec from the file extension, defaulting to JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a list of event records. An error is returned only when the
// document itself is not a list; bad records are skipped.
func Decode(data []byte, format Format, logger zerolog.Logger) ([]Event, error) {
	var decoders []func(*Record) error

	switch format {
	case FormatYAML:
		var nodes []yaml.Node
		if err := yaml.Unmarshal(data, &nodes); err != nil {
			return nil, fmt.Errorf("failed to parse event YAML: %w", err)
		}
		for i := range nodes {
			node := &nodes[i]
			decoders = append(decoders, func(r *Record) error { return node.Decode(r) })
		}
	default:
		var raws []json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("failed to parse event JSON: %w", err)
		}
		for _, raw := range raws {
			raw := raw
			decoders = append(decoders, func(r *Record) error { return json.Unmarshal(raw, r) })
		}
	}

	events := make([]Event, 0, len(decoders))
	for i, decode := range decoders {
		var rec Record
		if err := decode(&rec); err != nil {
			logger.Warn().Err(err).Int("index", i).Msg("dropping malformed event record")
			continue
		}
		if err := rec.Validate(); err != nil {
			logger.Warn().Err(err).Int("index", i).Str("title", rec.Title).Msg("dropping invalid event record")
			continue
		}

		e, issues := rec.ToEvent()
		for _, issue := range issues {
			logger.Warn().Int("index", i).Str("title", e.Title).Str("field", issue.Field).Msg(issue.Message)
		}
		events = append(events, e)
	}

	return events, nil
}
