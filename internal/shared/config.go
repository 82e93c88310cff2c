package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Scraper  ScraperConfig  `toml:"scraper"`
	Markers  MarkersConfig  `toml:"markers"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ScraperConfig contains settings for fetching upstream artist pages.
type ScraperConfig struct {
	BaseURL           string  `toml:"base_url"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	UserAgent         string  `toml:"user_agent"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Workers           int     `toml:"workers"`
}

// Timeout returns the per-fetch timeout. Non-positive values fall back to 30 seconds.
func (s ScraperConfig) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// MarkersConfig is the single table of CSS selectors used to locate artist data in upstream markup.
//
// Each selector matches on a class-name substring so surrounding markup noise does not break extraction.
type MarkersConfig struct {
	ArtistName       string `toml:"artist_name"`
	Subscribers      string `toml:"subscribers"`
	MonthlyListeners string `toml:"monthly_listeners"`
	AlbumTitle       string `toml:"album_title"`
	TrackTitle       string `toml:"track_title"`
	TrackDuration    string `toml:"track_duration"`
}

// DefaultMarkers returns the selectors matching the current upstream markup.
func DefaultMarkers() MarkersConfig {
	return MarkersConfig{
		ArtistName:       "h1[class*='page-artist__title']",
		Subscribers:      "span[class*='d-like_theme-count']",
		MonthlyListeners: "div[class*='page-artist__summary'] > span",
		AlbumTitle:       "div[class*='album__title']",
		TrackTitle:       "a[class*='d-track__title']",
		TrackDuration:    "div[class*='d-track__end-column']",
	}
}

// WithDefaults fills any empty selector with its default.
func (m MarkersConfig) WithDefaults() MarkersConfig {
	d := DefaultMarkers()
	if m.ArtistName == "" {
		m.ArtistName = d.ArtistName
	}
	if m.Subscribers == "" {
		m.Subscribers = d.Subscribers
	}
	if m.MonthlyListeners == "" {
		m.MonthlyListeners = d.MonthlyListeners
	}
	if m.AlbumTitle == "" {
		m.AlbumTitle = d.AlbumTitle
	}
	if m.TrackTitle == "" {
		m.TrackTitle = d.TrackTitle
	}
	if m.TrackDuration == "" {
		m.TrackDuration = d.TrackDuration
	}
	return m
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Missing marker selectors are filled from [DefaultMarkers].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}
	config.Markers = config.Markers.WithDefaults()

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.Markers = config.Markers.WithDefaults()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ResolveConfig loads the config at path when it exists and falls back to [DefaultConfig] otherwise.
//
// The YMSCRAPE_DB environment variable overrides the database path.
func ResolveConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	if dbPath := os.Getenv("YMSCRAPE_DB"); dbPath != "" {
		config.Database.Path = dbPath
	}
	return config, nil
}
