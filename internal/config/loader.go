package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so the bot token can be stored as ${BOT_TOKEN}.
func expandSensitiveFields(cfg *Config) {
	cfg.Bot.Token = expandEnvVars(cfg.Bot.Token)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Bot.PollTimeout == 0 {
		cfg.Bot.PollTimeout = 30
	}
	if cfg.Album.Window == "" {
		cfg.Album.Window = "1200ms"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// applyEnvOverrides reads environment variables and overrides config values.
// BOT_TOKEN and CHANNEL keep their historical names; the rest use POSTBOT_*.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Bot.Token = strings.TrimSpace(v)
	}
	if v := os.Getenv("CHANNEL"); v != "" {
		cfg.Channel = strings.TrimSpace(v)
	}
	if v := os.Getenv("SUBSCRIBE_TO"); v != "" {
		cfg.Links.Subscribe = strings.TrimSpace(v)
	}
	if v := os.Getenv("SUGGEST_TO"); v != "" {
		cfg.Links.Suggest = strings.TrimSpace(v)
	}
	if v := os.Getenv("AUTOSIGN"); v != "" {
		cfg.Format.Autosign = v
	}
	if v := os.Getenv("ALLOWED_ADMINS"); v != "" {
		cfg.Admins = ParseAdmins(v)
	}
	if v := os.Getenv("POSTBOT_ALBUM_WINDOW"); v != "" {
		cfg.Album.Window = v
	}
	if v := os.Getenv("POSTBOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

// ParseAdmins parses a comma-separated list of numeric operator ids.
// Non-numeric entries are skipped.
func ParseAdmins(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
