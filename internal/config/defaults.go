package config

const (
	defaultConfigPath          = "~/.config/dionysia/config.toml"
	defaultCacheFilePath       = "~/.cache/dionysia/cache.db"
	defaultLogFilePath         = "~/.local/share/dionysia/logs/activity.log"
	defaultTraktTokenFilePath  = "~/.config/dionysia/trakt_token.json"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultPlexLibrary         = "Movies"
	defaultPlexTimeout         = 30
	defaultRadarrBaseURL       = "http://localhost:7878"
	defaultRadarrTimeout       = 60
	defaultTraktBaseURL        = "https://api.trakt.tv"
	defaultTraktRedirectURL    = "urn:ietf:wg:oauth:2.0:oob"
	defaultTraktTimeout        = 30
	defaultTraktRequestsPer5m  = 1000
	defaultRetryMaxTries       = 4
	defaultRetryInitialMS      = 1000
	defaultRetryMaxIntervalSec = 30
	defaultFeedTTLSeconds      = 3600
	defaultTraktTTLSeconds     = 3600
	defaultRadarrTTLSeconds    = 300
	agentJSON                  = "json"
	agentTrakt                 = "trakt"
)

// AgentJSON and AgentTrakt name the supported collection list agents.
const (
	AgentJSON  = agentJSON
	AgentTrakt = agentTrakt
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheFile:      defaultCacheFile(),
			LogFile:        defaultLogFilePath,
			TraktTokenFile: defaultTraktTokenFilePath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Plex: Plex{
			Library:        defaultPlexLibrary,
			VerifyTLS:      true,
			TimeoutSeconds: defaultPlexTimeout,
		},
		Radarr: Radarr{
			BaseURL:        defaultRadarrBaseURL,
			TimeoutSeconds: defaultRadarrTimeout,
		},
		Trakt: Trakt{
			BaseURL:         defaultTraktBaseURL,
			RedirectURL:     defaultTraktRedirectURL,
			TimeoutSeconds:  defaultTraktTimeout,
			RequestsPer5Min: defaultTraktRequestsPer5m,
		},
		Retry: Retry{
			MaxTries:          defaultRetryMaxTries,
			InitialIntervalMS: defaultRetryInitialMS,
			MaxIntervalSec:    defaultRetryMaxIntervalSec,
		},
		Cache: Cache{
			FeedTTLSeconds:   defaultFeedTTLSeconds,
			TraktTTLSeconds:  defaultTraktTTLSeconds,
			RadarrTTLSeconds: defaultRadarrTTLSeconds,
		},
		Collections:   map[string]CollectionList{},
		ExternalLists: map[string]ExternalList{},
	}
}
