package main

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chack-ai/chack-tools/pkg/core"
	"github.com/chack-ai/chack-tools/pkg/errors"
	"github.com/chack-ai/chack-tools/pkg/session"
)

// fileConfig is the optional YAML configuration file. Every field falls
// back to the defaults plus the environment.
type fileConfig struct {
	Profile    string `yaml:"profile"`
	Model      string `yaml:"model"`
	SessionDir string `yaml:"session_dir"`

	// SessionStore selects the cross-process session state backend:
	// "memory", "sqlite:<path>" or "redis://host:port/db". Empty disables
	// it; the per-session files under SessionDir are always written.
	SessionStore string `yaml:"session_store"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Tools struct {
		ExecEnabled        *bool `yaml:"exec_enabled"`
		ExecTimeoutSeconds *int  `yaml:"exec_timeout_seconds"`
		ExecMaxOutputChars *int  `yaml:"exec_max_output_chars"`

		DuckDuckGoEnabled *bool `yaml:"duckduckgo_enabled"`

		BraveEnabled *bool  `yaml:"brave_enabled"`
		BraveAPIKey  string `yaml:"brave_api_key"`

		SerpAPIKey              string `yaml:"serpapi_api_key"`
		SerpAPIGoogleWebEnabled *bool  `yaml:"serpapi_google_web_enabled"`
		SerpAPIBingWebEnabled   *bool  `yaml:"serpapi_bing_web_enabled"`

		ForumScoutEnabled *bool  `yaml:"forumscout_enabled"`
		ForumScoutAPIKey  string `yaml:"forumscout_api_key"`
		ForumScoutBaseURL string `yaml:"forumscout_base_url"`

		ScientificEnabled  *bool `yaml:"scientific_enabled"`
		PDFTextEnabled     *bool `yaml:"pdf_text_enabled"`
		WebsearcherEnabled *bool `yaml:"websearcher_enabled"`
	} `yaml:"tools"`
}

func defaultSessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/tmp", "chack", "sessions")
	}
	return filepath.Join(home, ".chack", "sessions")
}

// loadConfig builds the tool configuration from defaults, environment and
// the optional YAML file; file values win over both.
func loadConfig(path string) (*core.ToolsConfig, *fileConfig, error) {
	config := core.NewToolsConfig().LoadFromEnv()

	fc := &fileConfig{}
	fc.Profile = "all"
	fc.SessionDir = defaultSessionDir()
	fc.Log.Level = "info"
	fc.Log.Format = "console"

	if path == "" {
		return config, fc, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.WithFields(
			errors.Wrap(err, errors.ResourceNotFound, "failed to read config file"),
			errors.Fields{"path": path},
		)
	}
	if err := yaml.Unmarshal(raw, fc); err != nil {
		return nil, nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to parse config file"),
			errors.Fields{"path": path},
		)
	}
	if fc.Profile == "" {
		fc.Profile = "all"
	}
	if fc.SessionDir == "" {
		fc.SessionDir = defaultSessionDir()
	}
	if fc.Log.Level == "" {
		fc.Log.Level = "info"
	}
	if fc.Log.Format == "" {
		fc.Log.Format = "console"
	}

	applyFileConfig(config, fc)
	return config, fc, nil
}

// openSessionStore builds the configured session state backend, or returns
// nil when none is configured.
func openSessionStore(fc *fileConfig) (session.Store, error) {
	spec := strings.TrimSpace(fc.SessionStore)
	switch {
	case spec == "":
		return nil, nil
	case spec == "memory":
		return session.NewInMemoryStore(), nil
	case strings.HasPrefix(spec, "sqlite:"):
		return session.NewSQLiteStore(strings.TrimPrefix(spec, "sqlite:"))
	case strings.HasPrefix(spec, "redis://") || strings.HasPrefix(spec, "rediss://"):
		return session.NewRedisStoreFromURL(spec, "")
	default:
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "unknown session_store; use memory, sqlite:<path> or redis://host:port/db"),
			errors.Fields{"session_store": spec},
		)
	}
}

func applyFileConfig(config *core.ToolsConfig, fc *fileConfig) {
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil && *src > 0 {
			*dst = *src
		}
	}

	t := &fc.Tools
	setBool(&config.ExecEnabled, t.ExecEnabled)
	setInt(&config.ExecTimeoutSeconds, t.ExecTimeoutSeconds)
	setInt(&config.ExecMaxOutputChars, t.ExecMaxOutputChars)
	setBool(&config.DuckDuckGoEnabled, t.DuckDuckGoEnabled)
	setBool(&config.BraveEnabled, t.BraveEnabled)
	setBool(&config.SerpAPIGoogleWebEnabled, t.SerpAPIGoogleWebEnabled)
	setBool(&config.SerpAPIBingWebEnabled, t.SerpAPIBingWebEnabled)
	setBool(&config.ForumScoutEnabled, t.ForumScoutEnabled)
	setBool(&config.ScientificEnabled, t.ScientificEnabled)
	setBool(&config.PDFTextEnabled, t.PDFTextEnabled)
	setBool(&config.WebsearcherEnabled, t.WebsearcherEnabled)

	if t.BraveAPIKey != "" {
		config.BraveAPIKey = t.BraveAPIKey
	}
	if t.SerpAPIKey != "" {
		config.SerpAPIKey = t.SerpAPIKey
	}
	if t.ForumScoutAPIKey != "" {
		config.ForumScoutAPIKey = t.ForumScoutAPIKey
	}
	if t.ForumScoutBaseURL != "" {
		config.ForumScoutBaseURL = t.ForumScoutBaseURL
	}
}
