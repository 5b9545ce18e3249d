package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the on-disk locations used by the CLI.
type Paths struct {
	CacheFile      string `toml:"cache_file"`
	LogFile        string `toml:"log_file"`
	TraktTokenFile string `toml:"trakt_token_file"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Plex contains configuration for the Plex Media Server.
type Plex struct {
	URL            string `toml:"url"`
	Token          string `toml:"token"`
	Library        string `toml:"library"`
	VerifyTLS      bool   `toml:"verify_tls"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Radarr contains configuration for the Radarr API.
type Radarr struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Trakt contains configuration for the Trakt API and its OAuth application.
type Trakt struct {
	BaseURL         string `toml:"base_url"`
	ClientID        string `toml:"client_id"`
	ClientSecret    string `toml:"client_secret"`
	RedirectURL     string `toml:"redirect_url"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	RequestsPer5Min int    `toml:"requests_per_5min"`
}

// Retry controls the exponential backoff applied to every HTTP call.
type Retry struct {
	MaxTries          int `toml:"max_tries"`
	InitialIntervalMS int `toml:"initial_interval_ms"`
	MaxIntervalSec    int `toml:"max_interval_seconds"`
}

// Cache controls how long memoized lookups stay fresh.
type Cache struct {
	FeedTTLSeconds   int `toml:"feed_ttl_seconds"`
	TraktTTLSeconds  int `toml:"trakt_ttl_seconds"`
	RadarrTTLSeconds int `toml:"radarr_ttl_seconds"`
}

// CollectionList describes a list that is mirrored into a Plex collection.
//
// Agent "json" reads a feed of collections from URL; agent "trakt" reads the
// Trakt list User/ListID and mirrors it into the collection called Name.
type CollectionList struct {
	Agent  string `toml:"agent"`
	URL    string `toml:"url"`
	User   string `toml:"user"`
	ListID string `toml:"list_id"`
	Name   string `toml:"name"`
}

// ExternalList describes a JSON feed that is mirrored into a Trakt list.
type ExternalList struct {
	User    string `toml:"user"`
	ListID  string `toml:"list_id"`
	FeedURL string `toml:"feed_url"`
}

// Config encapsulates all configuration values for dionysia.
//
// Configuration sections by subsystem:
//   - Paths: cache database, log file, Trakt token file
//   - Logging: log format and level
//   - Plex / Radarr / Trakt: service endpoints and credentials
//   - Retry: backoff policy shared by every HTTP call
//   - Cache: memoization lifetimes
//   - Collections: named lists synced into Plex collections
//   - ExternalLists: named feeds synced into Trakt lists
type Config struct {
	Paths         Paths                     `toml:"paths"`
	Logging       Logging                   `toml:"logging"`
	Plex          Plex                      `toml:"plex"`
	Radarr        Radarr                    `toml:"radarr"`
	Trakt         Trakt                     `toml:"trakt"`
	Retry         Retry                     `toml:"retry"`
	Cache         Cache                     `toml:"cache"`
	Collections   map[string]CollectionList `toml:"collections"`
	ExternalLists map[string]ExternalList   `toml:"external_lists"`
}

// Overrides carries command-line values that take precedence over the file.
type Overrides struct {
	CacheFile string
	LogFile   string
	Verbose   bool
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dionysia.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// ApplyOverrides merges command-line overrides into the loaded config.
func (c *Config) ApplyOverrides(o Overrides) error {
	var err error
	if value := strings.TrimSpace(o.CacheFile); value != "" {
		if c.Paths.CacheFile, err = expandPath(value); err != nil {
			return fmt.Errorf("cache file: %w", err)
		}
	}
	if value := strings.TrimSpace(o.LogFile); value != "" {
		if c.Paths.LogFile, err = expandPath(value); err != nil {
			return fmt.Errorf("log file: %w", err)
		}
	}
	if o.Verbose {
		c.Logging.Level = "debug"
	}
	return nil
}

// EnsureDirectories creates the parent directories of the cache, log and token files.
func (c *Config) EnsureDirectories() error {
	for _, file := range []string{c.Paths.CacheFile, c.Paths.LogFile, c.Paths.TraktTokenFile} {
		if strings.TrimSpace(file) == "" {
			continue
		}
		dir := filepath.Dir(file)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CollectionNames returns the configured collection list names in sorted order.
func (c *Config) CollectionNames() []string {
	return sortedKeys(c.Collections)
}

// ExternalListNames returns the configured external list names in sorted order.
func (c *Config) ExternalListNames() []string {
	return sortedKeys(c.ExternalLists)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RetryInitialInterval returns the first backoff wait.
func (c *Config) RetryInitialInterval() time.Duration {
	return time.Duration(c.Retry.InitialIntervalMS) * time.Millisecond
}

// RetryMaxInterval returns the cap applied to individual backoff waits.
func (c *Config) RetryMaxInterval() time.Duration {
	return time.Duration(c.Retry.MaxIntervalSec) * time.Second
}

// FeedTTL returns how long JSON feed lookups are memoized.
func (c *Config) FeedTTL() time.Duration {
	return time.Duration(c.Cache.FeedTTLSeconds) * time.Second
}

// TraktTTL returns how long Trakt list lookups are memoized.
func (c *Config) TraktTTL() time.Duration {
	return time.Duration(c.Cache.TraktTTLSeconds) * time.Second
}

// RadarrTTL returns how long Radarr movie and tag lookups are memoized.
func (c *Config) RadarrTTL() time.Duration {
	return time.Duration(c.Cache.RadarrTTLSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheFile() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "dionysia", "cache.db")
	}
	return defaultCacheFilePath
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
