package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. Credentials are not required
// here because each command only talks to a subset of services; use the
// Require* helpers before contacting a service.
func (c *Config) Validate() error {
	if err := ensurePositiveMap(map[string]int{
		"plex.timeout_seconds":       c.Plex.TimeoutSeconds,
		"radarr.timeout_seconds":     c.Radarr.TimeoutSeconds,
		"trakt.timeout_seconds":      c.Trakt.TimeoutSeconds,
		"trakt.requests_per_5min":    c.Trakt.RequestsPer5Min,
		"retry.max_tries":            c.Retry.MaxTries,
		"retry.initial_interval_ms":  c.Retry.InitialIntervalMS,
		"retry.max_interval_seconds": c.Retry.MaxIntervalSec,
	}); err != nil {
		return err
	}
	if err := validateURL("radarr.base_url", c.Radarr.BaseURL); err != nil {
		return err
	}
	if err := validateURL("trakt.base_url", c.Trakt.BaseURL); err != nil {
		return err
	}
	if c.Plex.URL != "" {
		if err := validateURL("plex.url", c.Plex.URL); err != nil {
			return err
		}
	}
	if err := c.validateCollections(); err != nil {
		return err
	}
	return c.validateExternalLists()
}

func (c *Config) validateCollections() error {
	for _, name := range c.CollectionNames() {
		list := c.Collections[name]
		switch list.Agent {
		case agentJSON:
			if list.URL == "" {
				return fmt.Errorf("collections.%s.url must be set for the json agent", name)
			}
		case agentTrakt:
			if list.User == "" || list.ListID == "" {
				return fmt.Errorf("collections.%s.user and list_id must be set for the trakt agent", name)
			}
		case "":
			return fmt.Errorf("collections.%s.agent must be set (json or trakt)", name)
		default:
			return fmt.Errorf("collections.%s.agent: unsupported value %q", name, list.Agent)
		}
	}
	return nil
}

func (c *Config) validateExternalLists() error {
	for _, name := range c.ExternalListNames() {
		list := c.ExternalLists[name]
		if list.User == "" {
			return fmt.Errorf("external_lists.%s.user must be set", name)
		}
		if list.FeedURL == "" {
			return fmt.Errorf("external_lists.%s.feed_url must be set", name)
		}
	}
	return nil
}

// RequirePlex reports whether the Plex connection settings are present.
func (c *Config) RequirePlex() error {
	if strings.TrimSpace(c.Plex.URL) == "" {
		return errors.New("plex.url must be set")
	}
	if strings.TrimSpace(c.Plex.Token) == "" {
		return errors.New("plex.token must be set (or export PLEX_TOKEN)")
	}
	return nil
}

// RequireRadarr reports whether the Radarr connection settings are present.
func (c *Config) RequireRadarr() error {
	if strings.TrimSpace(c.Radarr.APIKey) == "" {
		return errors.New("radarr.api_key must be set (or export RADARR_API_KEY)")
	}
	return nil
}

// RequireTrakt reports whether the Trakt application credentials are present.
func (c *Config) RequireTrakt() error {
	if strings.TrimSpace(c.Trakt.ClientID) == "" {
		return errors.New("trakt.client_id must be set (or export TRAKT_CLIENT_ID)")
	}
	return nil
}

// RequireTraktOAuth reports whether the Trakt OAuth application is fully configured.
func (c *Config) RequireTraktOAuth() error {
	if err := c.RequireTrakt(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Trakt.ClientSecret) == "" {
		return errors.New("trakt.client_secret must be set (or export TRAKT_CLIENT_SECRET)")
	}
	return nil
}

func validateURL(key, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", key, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", key, value)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for _, key := range sortedKeys(values) {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
