package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePlex()
	c.normalizeRadarr()
	c.normalizeTrakt()
	c.normalizeRetry()
	c.normalizeCache()
	c.normalizeLists()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheFile) == "" {
		c.Paths.CacheFile = defaultCacheFile()
	}
	if c.Paths.CacheFile, err = expandPath(c.Paths.CacheFile); err != nil {
		return fmt.Errorf("paths.cache_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogFile) == "" {
		c.Paths.LogFile = defaultLogFilePath
	}
	if c.Paths.LogFile, err = expandPath(c.Paths.LogFile); err != nil {
		return fmt.Errorf("paths.log_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.TraktTokenFile) == "" {
		c.Paths.TraktTokenFile = defaultTraktTokenFilePath
	}
	if c.Paths.TraktTokenFile, err = expandPath(c.Paths.TraktTokenFile); err != nil {
		return fmt.Errorf("paths.trakt_token_file: %w", err)
	}
	return nil
}

func (c *Config) normalizePlex() {
	c.Plex.URL = strings.TrimRight(strings.TrimSpace(c.Plex.URL), "/")
	c.Plex.Token = strings.TrimSpace(c.Plex.Token)
	if c.Plex.Token == "" {
		if value, ok := os.LookupEnv("PLEX_TOKEN"); ok {
			c.Plex.Token = strings.TrimSpace(value)
		}
	}
	c.Plex.Library = strings.TrimSpace(c.Plex.Library)
	if c.Plex.Library == "" {
		c.Plex.Library = defaultPlexLibrary
	}
	if c.Plex.TimeoutSeconds <= 0 {
		c.Plex.TimeoutSeconds = defaultPlexTimeout
	}
}

func (c *Config) normalizeRadarr() {
	c.Radarr.BaseURL = strings.TrimRight(strings.TrimSpace(c.Radarr.BaseURL), "/")
	if c.Radarr.BaseURL == "" {
		c.Radarr.BaseURL = defaultRadarrBaseURL
	}
	c.Radarr.APIKey = strings.TrimSpace(c.Radarr.APIKey)
	if c.Radarr.APIKey == "" {
		if value, ok := os.LookupEnv("RADARR_API_KEY"); ok {
			c.Radarr.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Radarr.TimeoutSeconds <= 0 {
		c.Radarr.TimeoutSeconds = defaultRadarrTimeout
	}
}

func (c *Config) normalizeTrakt() {
	c.Trakt.BaseURL = strings.TrimRight(strings.TrimSpace(c.Trakt.BaseURL), "/")
	if c.Trakt.BaseURL == "" {
		c.Trakt.BaseURL = defaultTraktBaseURL
	}
	c.Trakt.ClientID = strings.TrimSpace(c.Trakt.ClientID)
	if c.Trakt.ClientID == "" {
		if value, ok := os.LookupEnv("TRAKT_CLIENT_ID"); ok {
			c.Trakt.ClientID = strings.TrimSpace(value)
		}
	}
	c.Trakt.ClientSecret = strings.TrimSpace(c.Trakt.ClientSecret)
	if c.Trakt.ClientSecret == "" {
		if value, ok := os.LookupEnv("TRAKT_CLIENT_SECRET"); ok {
			c.Trakt.ClientSecret = strings.TrimSpace(value)
		}
	}
	c.Trakt.RedirectURL = strings.TrimSpace(c.Trakt.RedirectURL)
	if c.Trakt.RedirectURL == "" {
		c.Trakt.RedirectURL = defaultTraktRedirectURL
	}
	if c.Trakt.TimeoutSeconds <= 0 {
		c.Trakt.TimeoutSeconds = defaultTraktTimeout
	}
	if c.Trakt.RequestsPer5Min <= 0 {
		c.Trakt.RequestsPer5Min = defaultTraktRequestsPer5m
	}
}

func (c *Config) normalizeRetry() {
	if c.Retry.MaxTries <= 0 {
		c.Retry.MaxTries = defaultRetryMaxTries
	}
	if c.Retry.InitialIntervalMS <= 0 {
		c.Retry.InitialIntervalMS = defaultRetryInitialMS
	}
	if c.Retry.MaxIntervalSec <= 0 {
		c.Retry.MaxIntervalSec = defaultRetryMaxIntervalSec
	}
}

func (c *Config) normalizeCache() {
	if c.Cache.FeedTTLSeconds < 0 {
		c.Cache.FeedTTLSeconds = 0
	}
	if c.Cache.TraktTTLSeconds < 0 {
		c.Cache.TraktTTLSeconds = 0
	}
	if c.Cache.RadarrTTLSeconds < 0 {
		c.Cache.RadarrTTLSeconds = 0
	}
}

func (c *Config) normalizeLists() {
	if c.Collections == nil {
		c.Collections = map[string]CollectionList{}
	}
	for name, list := range c.Collections {
		list.Agent = strings.ToLower(strings.TrimSpace(list.Agent))
		list.URL = strings.TrimSpace(list.URL)
		list.User = strings.TrimSpace(list.User)
		list.ListID = strings.TrimSpace(list.ListID)
		list.Name = strings.TrimSpace(list.Name)
		if list.Agent == agentTrakt && list.Name == "" {
			list.Name = name
		}
		c.Collections[name] = list
	}
	if c.ExternalLists == nil {
		c.ExternalLists = map[string]ExternalList{}
	}
	for name, list := range c.ExternalLists {
		list.User = strings.TrimSpace(list.User)
		list.ListID = strings.TrimSpace(list.ListID)
		list.FeedURL = strings.TrimSpace(list.FeedURL)
		if list.ListID == "" {
			list.ListID = name
		}
		c.ExternalLists[name] = list
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
