// Package config loads and saves user settings for the timer host.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"meettimer/internal/core/visibility"
	"meettimer/internal/page"
	"meettimer/internal/storage"
)

// AppName names the per-user config directory.
const AppName = "meettimer"

const settingsFileName = "settings.yaml"

// Settings holds user configurable options.
type Settings struct {
	StoreDriver     string
	StorePath       string
	TickInterval    time.Duration
	PollInterval    time.Duration
	DebounceDelay   time.Duration
	PrimaryHost     string
	SecondaryHost   string
	SecondaryPrefix string
	PresentPattern  string
	PresentMarkers  []string
	EditMarkers     []string
	LogLevel        string
}

type yamlSettings struct {
	StoreDriver      string   `yaml:"store_driver"`
	StorePath        string   `yaml:"store_path"`
	TickMilliseconds int      `yaml:"tick_ms"`
	PollSeconds      int      `yaml:"poll_seconds"`
	DebounceMillis   int      `yaml:"debounce_ms"`
	PrimaryHost      string   `yaml:"primary_host"`
	SecondaryHost    string   `yaml:"secondary_host"`
	SecondaryPrefix  string   `yaml:"secondary_prefix"`
	PresentPattern   string   `yaml:"present_pattern"`
	PresentMarkers   []string `yaml:"present_markers"`
	EditMarkers      []string `yaml:"edit_markers"`
	LogLevel         string   `yaml:"log_level"`
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() Settings {
	classifier := visibility.DefaultClassifier()
	markers := visibility.DefaultMarkerDetector()
	return Settings{
		StoreDriver:     storage.DriverYAML,
		TickInterval:    time.Second,
		PollInterval:    5 * time.Second,
		DebounceDelay:   time.Second,
		PrimaryHost:     classifier.PrimaryHost,
		SecondaryHost:   classifier.SecondaryHost,
		SecondaryPrefix: classifier.SecondaryPrefix,
		PresentPattern:  visibility.DefaultPresentPattern.String(),
		PresentMarkers:  formatMarkers(markers.Present),
		EditMarkers:     formatMarkers(markers.Edit),
		LogLevel:        "info",
	}
}

// DefaultPath returns the settings file location for appName.
func DefaultPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

// LoadSettings reads settings from path.
// If the file does not exist, default settings are returned.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes settings to path.
func SaveSettings(path string, settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		StoreDriver:      settings.StoreDriver,
		StorePath:        settings.StorePath,
		TickMilliseconds: int(settings.TickInterval / time.Millisecond),
		PollSeconds:      int(settings.PollInterval / time.Second),
		DebounceMillis:   int(settings.DebounceDelay / time.Millisecond),
		PrimaryHost:      settings.PrimaryHost,
		SecondaryHost:    settings.SecondaryHost,
		SecondaryPrefix:  settings.SecondaryPrefix,
		PresentPattern:   settings.PresentPattern,
		PresentMarkers:   settings.PresentMarkers,
		EditMarkers:      settings.EditMarkers,
		LogLevel:         settings.LogLevel,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

// Classifier builds the page classifier.
func (settings Settings) Classifier() visibility.Classifier {
	return visibility.Classifier{
		PrimaryHost:     strings.ToLower(settings.PrimaryHost),
		SecondaryHost:   strings.ToLower(settings.SecondaryHost),
		SecondaryPrefix: settings.SecondaryPrefix,
	}
}

// Detector builds the presenting-mode detector.
func (settings Settings) Detector() (visibility.Detector, error) {
	pattern, err := regexp.Compile(settings.PresentPattern)
	if err != nil {
		return nil, fmt.Errorf("compile present pattern: %w", err)
	}
	return visibility.AnyOf(
		visibility.FullscreenDetector,
		visibility.URLPatternDetector{Pattern: pattern},
		visibility.MarkerDetector{
			Present: parseMarkers(settings.PresentMarkers),
			Edit:    parseMarkers(settings.EditMarkers),
		},
	), nil
}

// PageConfig builds page controller options.
func (settings Settings) PageConfig() (page.Config, error) {
	detector, err := settings.Detector()
	if err != nil {
		return page.Config{}, err
	}
	return page.Config{
		TickInterval:  settings.TickInterval,
		PollInterval:  settings.PollInterval,
		DebounceDelay: settings.DebounceDelay,
		Classifier:    settings.Classifier(),
		Detector:      detector,
	}, nil
}

// Level parses LogLevel, defaulting to info.
func (settings Settings) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(settings.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func applyYamlSettings(settings *Settings, fileData yamlSettings) {
	if fileData.StoreDriver != "" {
		settings.StoreDriver = fileData.StoreDriver
	}
	if fileData.StorePath != "" {
		settings.StorePath = fileData.StorePath
	}
	if fileData.TickMilliseconds > 0 {
		settings.TickInterval = time.Duration(fileData.TickMilliseconds) * time.Millisecond
	}
	if fileData.PollSeconds > 0 {
		settings.PollInterval = time.Duration(fileData.PollSeconds) * time.Second
	}
	if fileData.DebounceMillis > 0 {
		settings.DebounceDelay = time.Duration(fileData.DebounceMillis) * time.Millisecond
	}
	if fileData.PrimaryHost != "" {
		settings.PrimaryHost = fileData.PrimaryHost
	}
	if fileData.SecondaryHost != "" {
		settings.SecondaryHost = fileData.SecondaryHost
	}
	if fileData.SecondaryPrefix != "" {
		settings.SecondaryPrefix = fileData.SecondaryPrefix
	}
	if fileData.PresentPattern != "" {
		settings.PresentPattern = fileData.PresentPattern
	}
	if len(fileData.PresentMarkers) > 0 {
		settings.PresentMarkers = fileData.PresentMarkers
	}
	if len(fileData.EditMarkers) > 0 {
		settings.EditMarkers = fileData.EditMarkers
	}
	if fileData.LogLevel != "" {
		settings.LogLevel = fileData.LogLevel
	}
}

// Markers are written "#id" or ".class".
func parseMarkers(raw []string) []visibility.Marker {
	markers := make([]visibility.Marker, 0, len(raw))
	for _, entry := range raw {
		entry = strings.TrimSpace(entry)
		switch {
		case strings.HasPrefix(entry, "#") && len(entry) > 1:
			markers = append(markers, visibility.Marker{ID: entry[1:]})
		case strings.HasPrefix(entry, ".") && len(entry) > 1:
			markers = append(markers, visibility.Marker{Class: entry[1:]})
		}
	}
	return markers
}

func formatMarkers(markers []visibility.Marker) []string {
	out := make([]string, 0, len(markers))
	for _, marker := range markers {
		if marker.ID != "" {
			out = append(out, "#"+marker.ID)
			continue
		}
		out = append(out, "."+marker.Class)
	}
	return out
}
