package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "PLANWEAVE_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.api_token", typ: kString, env: "PLANWEAVE_API_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Server.APIToken = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.APIToken },
	},
	{
		key: "providers.search_api_key", typ: kString, env: "PLANWEAVE_SEARCH_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Providers.SearchAPIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Providers.SearchAPIKey },
	},
	{
		key: "providers.search_engine_id", typ: kString, env: "PLANWEAVE_SEARCH_ENGINE_ID",
		apply:   func(cfg *Config, v any) { cfg.Providers.SearchEngineID = v.(string) },
		extract: func(cfg Config) any { return cfg.Providers.SearchEngineID },
	},
	{
		key: "providers.weather_api_key", typ: kString, env: "PLANWEAVE_WEATHER_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Providers.WeatherAPIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Providers.WeatherAPIKey },
	},
	{
		key: "planner.openai_api_key", typ: kString, env: "PLANWEAVE_OPENAI_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Planner.OpenAIAPIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Planner.OpenAIAPIKey },
	},
	{
		key: "planner.model", typ: kString, env: "PLANWEAVE_PLANNER_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Planner.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Planner.Model },
	},
	{
		key: "cache.enabled", typ: kBool, env: "PLANWEAVE_CACHE_ENABLED",
		apply:   func(cfg *Config, v any) { cfg.Cache.Enabled = v.(bool) },
		extract: func(cfg Config) any { return cfg.Cache.Enabled },
	},
	{
		key: "cache.ttl_seconds", typ: kInt, env: "PLANWEAVE_CACHE_TTL_SECONDS",
		apply:   func(cfg *Config, v any) { cfg.Cache.TTLSeconds = v.(int) },
		extract: func(cfg Config) any { return cfg.Cache.TTLSeconds },
	},
	{
		key: "storage.data_dir", typ: kString, env: "PLANWEAVE_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", typ: kString, env: "PLANWEAVE_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kBool:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				if bv, err := strconv.ParseBool(v); err == nil {
					s.apply(cfg, bv)
				} else {
					fmt.Fprintf(os.Stderr, "[WARN] could not parse bool from config key %s=%q: %v. Using default value.\n", s.key, v, err)
				}
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kBool:
			if b, err := strconv.ParseBool(raw); err == nil {
				s.apply(cfg, b)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse bool from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
