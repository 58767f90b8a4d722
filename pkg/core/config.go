package core

import (
	"os"
	"strconv"
	"strings"

	"github.com/chack-ai/chack-tools/pkg/errors"
)

// Environment variables read by LoadFromEnv.
const (
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
	EnvBraveAPIKey      = "BRAVE_API_KEY"
	EnvSerpAPIKey       = "SERPAPI_API_KEY"
	EnvForumScoutAPIKey = "FORUMSCOUT_API_KEY"
	EnvForumScoutBase   = "FORUMSCOUT_BASE_URL"
	EnvAWSProfiles      = "CHACK_AWS_PROFILES"
	EnvExecTimeout      = "CHACK_EXEC_TIMEOUT"
	EnvExecMaxOutput    = "CHACK_EXEC_MAX_OUTPUT"
)

// Per-sub-agent model override variables, consulted at run time.
const (
	EnvWebsearcherAgentModel = "CHACK_WEBSEARCHER_AGENT_MODEL"
	EnvScientificAgentModel  = "CHACK_SCIENTIFIC_AGENT_MODEL"
	EnvSocialAgentModel      = "CHACK_SOCIAL_AGENT_MODEL"
)

// ToolsConfig holds per-tool enable flags, API keys and limits.
type ToolsConfig struct {
	ExecEnabled        bool
	ExecTimeoutSeconds int
	ExecMaxOutputChars int

	DuckDuckGoEnabled    bool
	DuckDuckGoMaxResults int

	BraveEnabled    bool
	BraveAPIKey     string
	BraveMaxResults int

	ForumScoutEnabled    bool
	ForumScoutAPIKey     string
	ForumScoutBaseURL    string
	ForumScoutMaxResults int

	// SerpAPIKey may hold several comma-separated keys; they are rotated
	// when SerpAPI reports rate limiting.
	SerpAPIKey              string
	SerpAPIGoogleWebEnabled bool
	SerpAPIBingWebEnabled   bool
	SerpAPIWebMaxResults    int

	ScientificEnabled    bool
	ScientificMaxResults int

	PDFTextEnabled  bool
	PDFTextMaxChars int

	WebsearcherEnabled bool

	OpenAIAPIKey string

	// AWSProfiles lists profile names exported to exec-tool child processes.
	AWSProfiles []string

	MinToolsUsed int
}

// NewToolsConfig returns a config with all tools enabled and default limits.
func NewToolsConfig() *ToolsConfig {
	return &ToolsConfig{
		ExecEnabled:        true,
		ExecTimeoutSeconds: 120,
		ExecMaxOutputChars: 5000,

		DuckDuckGoEnabled:    true,
		DuckDuckGoMaxResults: 6,

		BraveEnabled:    true,
		BraveMaxResults: 6,

		ForumScoutEnabled:    true,
		ForumScoutBaseURL:    "https://forumscout.app",
		ForumScoutMaxResults: 6,

		SerpAPIGoogleWebEnabled: true,
		SerpAPIBingWebEnabled:   true,
		SerpAPIWebMaxResults:    6,

		ScientificEnabled:    true,
		ScientificMaxResults: 10,

		PDFTextEnabled:  true,
		PDFTextMaxChars: 12000,

		WebsearcherEnabled: true,

		MinToolsUsed: 10,
	}
}

// LoadFromEnv fills keys and limits from the process environment. Explicitly
// set values win over the environment.
func (c *ToolsConfig) LoadFromEnv() *ToolsConfig {
	if c.BraveAPIKey == "" {
		c.BraveAPIKey = os.Getenv(EnvBraveAPIKey)
	}
	if c.SerpAPIKey == "" {
		c.SerpAPIKey = os.Getenv(EnvSerpAPIKey)
	}
	if c.ForumScoutAPIKey == "" {
		c.ForumScoutAPIKey = os.Getenv(EnvForumScoutAPIKey)
	}
	if base := os.Getenv(EnvForumScoutBase); base != "" {
		c.ForumScoutBaseURL = strings.TrimSuffix(base, "/")
	}
	if c.OpenAIAPIKey == "" {
		c.OpenAIAPIKey = os.Getenv(EnvOpenAIAPIKey)
	}
	if len(c.AWSProfiles) == 0 {
		c.AWSProfiles = splitList(os.Getenv(EnvAWSProfiles))
	}
	if v, err := strconv.Atoi(os.Getenv(EnvExecTimeout)); err == nil && v > 0 {
		c.ExecTimeoutSeconds = v
	}
	if v, err := strconv.Atoi(os.Getenv(EnvExecMaxOutput)); err == nil && v > 0 {
		c.ExecMaxOutputChars = v
	}
	return c
}

// WithBrave sets the Brave key and enables the tool.
func (c *ToolsConfig) WithBrave(apiKey string) *ToolsConfig {
	c.BraveAPIKey = apiKey
	c.BraveEnabled = true
	return c
}

// WithSerpAPI sets the SerpAPI key list (comma separated).
func (c *ToolsConfig) WithSerpAPI(keys string) *ToolsConfig {
	c.SerpAPIKey = keys
	return c
}

// WithForumScout sets the ForumScout key and enables the tool.
func (c *ToolsConfig) WithForumScout(apiKey string) *ToolsConfig {
	c.ForumScoutAPIKey = apiKey
	c.ForumScoutEnabled = true
	return c
}

// WithExecDisabled turns the shell exec tool off.
func (c *ToolsConfig) WithExecDisabled() *ToolsConfig {
	c.ExecEnabled = false
	return c
}

// HasSerpAPIKeys reports whether at least one SerpAPI key is configured.
func (c *ToolsConfig) HasSerpAPIKeys() bool {
	return len(splitList(c.SerpAPIKey)) > 0
}

// Validate reports configuration errors for enabled tools that cannot work,
// i.e. an enabled tool whose required API key is missing.
func (c *ToolsConfig) Validate() error {
	if c.BraveEnabled && strings.TrimSpace(c.BraveAPIKey) == "" {
		return errors.WithFields(
			errors.New(errors.MissingAPIKey, "brave search is enabled but no API key is configured"),
			errors.Fields{"env": EnvBraveAPIKey},
		)
	}
	if c.ForumScoutEnabled && strings.TrimSpace(c.ForumScoutAPIKey) == "" && !c.HasSerpAPIKeys() {
		return errors.WithFields(
			errors.New(errors.MissingAPIKey, "forumscout research is enabled but neither a ForumScout nor a SerpAPI key is configured"),
			errors.Fields{"env": EnvForumScoutAPIKey},
		)
	}
	if (c.SerpAPIGoogleWebEnabled || c.SerpAPIBingWebEnabled) && !c.HasSerpAPIKeys() && !c.BraveEnabled && !c.DuckDuckGoEnabled {
		return errors.New(errors.MissingAPIKey, "no web search backend is configured")
	}
	return nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
