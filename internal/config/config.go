// Package config loads planweave settings from an XDG JSON file with
// environment variable overrides.
package config

type Config struct {
	Server    ServerConfig
	Providers ProvidersConfig
	Planner   PlannerConfig
	Cache     CacheConfig
	Storage   StorageConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port     int
	APIToken string
}

// ProvidersConfig holds credentials for external data providers. Any of
// these may be empty; the corresponding client then serves mock data.
type ProvidersConfig struct {
	SearchAPIKey   string
	SearchEngineID string
	WeatherAPIKey  string
}

type PlannerConfig struct {
	OpenAIAPIKey string
	Model        string
}

type CacheConfig struct {
	Enabled    bool
	TTLSeconds int
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8000,
		},
		Planner: PlannerConfig{
			Model: "gpt-4o-mini",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 3600,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/planweave/config.json, then applies PLANWEAVE_*
// environment variable overrides. Missing provider credentials are not an
// error; clients without credentials fall back to mock data.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}
