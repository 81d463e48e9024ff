// -----------------------------------------------------------------------
// Last Modified: Friday, 14th August 2026 9:21:37 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/ternarybob/jobhunter/internal/models"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Pipeline    PipelineConfig   `toml:"pipeline"`
	Costs       CostsConfig      `toml:"costs"`
	Checkpoint  CheckpointConfig `toml:"checkpoint"`
	LLM         LLMConfig        `toml:"llm"`
	Search      SearchConfig     `toml:"search"`
	Scraper     ScraperConfig    `toml:"scraper"`
	Storage     StorageConfig    `toml:"storage"`
	Output      OutputConfig     `toml:"output"`
	Notify      NotifyConfig     `toml:"notify"`
	Mailbox     MailboxConfig    `toml:"mailbox"`
	Schedule    ScheduleConfig   `toml:"schedule"`
	Logging     LoggingConfig    `toml:"logging"`
	Tracing     TracingConfig    `toml:"tracing"`
}

// PipelineConfig tunes the staged pipeline and the adaptive discovery loop.
// MaxConcurrentScrapers bounds the scraping fan-out; AgentTimeoutSeconds is
// the per-stage timeout; CompanyLimit caps companies per iteration (0 means
// uncapped).
type PipelineConfig struct {
	MaxConcurrentScrapers  int `toml:"max_concurrent_scrapers" validate:"gte=1"`
	AgentTimeoutSeconds    int `toml:"agent_timeout_seconds" validate:"gte=1"`
	MinRecommendedJobs     int `toml:"min_recommended_jobs" validate:"gte=1"`
	MaxDiscoveryIterations int `toml:"max_discovery_iterations" validate:"gte=1"`
	MinScoreThreshold      int `toml:"min_score_threshold" validate:"gte=0,lte=100"`
	CompanyLimit           int `toml:"company_limit" validate:"gte=0"`
}

// CostsConfig holds the LLM spend guardrails: the hard stop and the soft
// warning threshold.
type CostsConfig struct {
	MaxCostPerRunUSD     float64 `toml:"max_cost_per_run_usd" validate:"gt=0"`
	WarnCostThresholdUSD float64 `toml:"warn_cost_threshold_usd" validate:"gte=0"`
}

// CheckpointConfig gates durable state snapshots
type CheckpointConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model id (default: "gemini-2.5-flash")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 8192)
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.2)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model id (default: "claude-sonnet-4-20250514")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 8192)
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.2)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
)

// LLMConfig contains unified configuration for all AI providers.
// MaxRetries is the structured-output retry budget per completion call.
type LLMConfig struct {
	DefaultProvider LLMProvider  `toml:"default_provider" validate:"oneof=claude gemini"`
	MaxRetries      int          `toml:"max_retries" validate:"gte=0"`
	Claude          ClaudeConfig `toml:"claude"`
	Gemini          GeminiConfig `toml:"gemini"`
}

// SearchConfig contains web-search provider configuration. CacheTTLHours
// controls the career-page cache (0 disables caching).
type SearchConfig struct {
	Provider      string  `toml:"provider"` // "serper"
	APIKey        string  `toml:"api_key"`
	RatePerSecond float64 `toml:"rate_per_second" validate:"gt=0"`
	MaxResults    int     `toml:"max_results" validate:"gte=1"`
	CacheTTLHours int     `toml:"cache_ttl_hours" validate:"gte=0"`
}

// ScraperConfig contains page-scraper configuration. Static results shorter
// than MinStaticLength are treated as JavaScript-gated and retried through
// the headless browser when BrowserEnabled is set.
type ScraperConfig struct {
	UserAgent             string `toml:"user_agent"`
	TimeoutSeconds        int    `toml:"timeout_seconds" validate:"gte=1"`
	BrowserEnabled        bool   `toml:"browser_enabled"`
	BrowserTimeoutSeconds int    `toml:"browser_timeout_seconds" validate:"gte=1"`
	MinStaticLength       int    `toml:"min_static_length"`
}

// StorageConfig holds local storage paths
type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path string `toml:"path"` // Database directory path
}

// OutputConfig controls report writing
type OutputConfig struct {
	Dir     string   `toml:"dir"`     // Output directory for run artifacts
	Formats []string `toml:"formats"` // Any of: csv, md, pdf, json
}

// NotifyConfig contains SMTP notification settings. To is the default
// recipient; a per-run override wins. SubjectTemplate supports {run-id},
// {matched} and {status} placeholders.
type NotifyConfig struct {
	Enabled         bool   `toml:"enabled"`
	SMTPHost        string `toml:"smtp_host"`
	SMTPPort        int    `toml:"smtp_port"`
	Username        string `toml:"username"`
	Password        string `toml:"password"`
	From            string `toml:"from"`
	To              string `toml:"to"`
	SubjectTemplate string `toml:"subject_template"`
}

// MailboxConfig contains IMAP intake settings
type MailboxConfig struct {
	Enabled       bool   `toml:"enabled"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Username      string `toml:"username"`
	Password      string `toml:"password"`
	Folder        string `toml:"folder"`         // Mailbox folder to poll (default: "INBOX")
	SubjectPrefix string `toml:"subject_prefix"` // Only messages with this subject prefix become runs
	PollMinutes   int    `toml:"poll_minutes"`   // Poll interval in watch mode
}

// ScheduleConfig drives watch mode
type ScheduleConfig struct {
	Cron string `toml:"cron"` // Cron expression; empty disables scheduled runs
}

// LoggingConfig controls the arbor logger. Level is one of "debug", "info",
// "warn", "error".
type LoggingConfig struct {
	Level       string `toml:"level"`
	FileEnabled bool   `toml:"file_enabled"`
	MaxBackups  int    `toml:"max_backups"`
	TimeFormat  string `toml:"time_format"`
}

// TracingConfig gates otel span emission
type TracingConfig struct {
	Enabled bool `toml:"enabled"`
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability; only
// user-facing settings should be exposed in jobhunter.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Pipeline: PipelineConfig{
			MaxConcurrentScrapers:  5,
			AgentTimeoutSeconds:    300,
			MinRecommendedJobs:     10,
			MaxDiscoveryIterations: 3,
			MinScoreThreshold:      60,
			CompanyLimit:           0, // uncapped
		},
		Costs: CostsConfig{
			MaxCostPerRunUSD:     5.0,
			WarnCostThresholdUSD: 2.0,
		},
		Checkpoint: CheckpointConfig{
			Enabled: true,
			Dir:     "./checkpoints",
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderClaude,
			MaxRetries:      3,
			Claude: ClaudeConfig{
				APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
				Model:       "claude-sonnet-4-20250514",
				MaxTokens:   8192,
				Temperature: 0.2,
			},
			Gemini: GeminiConfig{
				APIKey:      "", // User must provide API key (no fallback)
				Model:       "gemini-2.5-flash",
				MaxTokens:   8192,
				Temperature: 0.2,
			},
		},
		Search: SearchConfig{
			Provider:      "serper",
			APIKey:        "",
			RatePerSecond: 1.0,
			MaxResults:    10,
			CacheTTLHours: 72,
		},
		Scraper: ScraperConfig{
			UserAgent:             "Mozilla/5.0 (compatible; JobHunter/1.0)",
			TimeoutSeconds:        30,
			BrowserEnabled:        true,
			BrowserTimeoutSeconds: 60,
			MinStaticLength:       500,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Output: OutputConfig{
			Dir:     "./output",
			Formats: []string{"csv", "md", "pdf", "json"},
		},
		Notify: NotifyConfig{
			Enabled:         false, // Disabled by default - user must explicitly opt-in
			SMTPPort:        587,
			SubjectTemplate: "[jobhunter] run {run-id}: {matched} matches ({status})",
		},
		Mailbox: MailboxConfig{
			Enabled:       false,
			Port:          993,
			Folder:        "INBOX",
			SubjectPrefix: "[jobhunter]",
			PollMinutes:   5,
		},
		Schedule: ScheduleConfig{
			Cron: "",
		},
		Logging: LoggingConfig{
			Level:       "info",
			FileEnabled: true,
			MaxBackups:  3,
			TimeFormat:  "15:04:05",
		},
		Tracing: TracingConfig{
			Enabled: false,
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier
// files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	// Start with defaults
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier files)
	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// Apply environment variables (overrides all file configs)
	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the assembled configuration using go-playground/validator
// tags plus the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Costs.WarnCostThresholdUSD > c.Costs.MaxCostPerRunUSD {
		return fmt.Errorf("invalid configuration: warn_cost_threshold_usd %.2f exceeds max_cost_per_run_usd %.2f",
			c.Costs.WarnCostThresholdUSD, c.Costs.MaxCostPerRunUSD)
	}
	for _, f := range c.Output.Formats {
		switch f {
		case "csv", "md", "pdf", "json":
		default:
			return fmt.Errorf("invalid configuration: unknown output format %q", f)
		}
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Environment configuration (highest priority: JOBHUNTER_ENV, fallback: GO_ENV)
	if env := os.Getenv("JOBHUNTER_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Pipeline configuration
	if v := os.Getenv("JOBHUNTER_PIPELINE_MAX_CONCURRENT_SCRAPERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Pipeline.MaxConcurrentScrapers = n
		}
	}
	if v := os.Getenv("JOBHUNTER_PIPELINE_AGENT_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Pipeline.AgentTimeoutSeconds = n
		}
	}
	if v := os.Getenv("JOBHUNTER_PIPELINE_MIN_RECOMMENDED_JOBS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Pipeline.MinRecommendedJobs = n
		}
	}
	if v := os.Getenv("JOBHUNTER_PIPELINE_MAX_DISCOVERY_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Pipeline.MaxDiscoveryIterations = n
		}
	}
	if v := os.Getenv("JOBHUNTER_PIPELINE_MIN_SCORE_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Pipeline.MinScoreThreshold = n
		}
	}
	if v := os.Getenv("JOBHUNTER_PIPELINE_COMPANY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Pipeline.CompanyLimit = n
		}
	}

	// Costs configuration
	if v := os.Getenv("JOBHUNTER_COSTS_MAX_COST_PER_RUN_USD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Costs.MaxCostPerRunUSD = f
		}
	}
	if v := os.Getenv("JOBHUNTER_COSTS_WARN_COST_THRESHOLD_USD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Costs.WarnCostThresholdUSD = f
		}
	}

	// Checkpoint configuration
	if v := os.Getenv("JOBHUNTER_CHECKPOINT_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Checkpoint.Enabled = b
		}
	}
	if v := os.Getenv("JOBHUNTER_CHECKPOINT_DIR"); v != "" {
		config.Checkpoint.Dir = v
	}

	// LLM provider configuration
	if v := os.Getenv("JOBHUNTER_LLM_DEFAULT_PROVIDER"); v != "" {
		config.LLM.DefaultProvider = LLMProvider(v)
	}
	if v := os.Getenv("JOBHUNTER_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.LLM.MaxRetries = n
		}
	}

	// Claude configuration (standard ANTHROPIC_API_KEY first, JOBHUNTER_ prefix wins)
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		config.LLM.Claude.APIKey = v
	}
	if v := os.Getenv("JOBHUNTER_CLAUDE_API_KEY"); v != "" {
		config.LLM.Claude.APIKey = v
	}
	if v := os.Getenv("JOBHUNTER_CLAUDE_MODEL"); v != "" {
		config.LLM.Claude.Model = v
	}
	if v := os.Getenv("JOBHUNTER_CLAUDE_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.LLM.Claude.MaxTokens = n
		}
	}
	if v := os.Getenv("JOBHUNTER_CLAUDE_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			config.LLM.Claude.Temperature = float32(f)
		}
	}

	// Gemini configuration (standard GEMINI_API_KEY first, JOBHUNTER_ prefix wins)
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		config.LLM.Gemini.APIKey = v
	}
	if v := os.Getenv("JOBHUNTER_GEMINI_API_KEY"); v != "" {
		config.LLM.Gemini.APIKey = v
	}
	if v := os.Getenv("JOBHUNTER_GEMINI_MODEL"); v != "" {
		config.LLM.Gemini.Model = v
	}
	if v := os.Getenv("JOBHUNTER_GEMINI_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.LLM.Gemini.MaxTokens = n
		}
	}
	if v := os.Getenv("JOBHUNTER_GEMINI_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			config.LLM.Gemini.Temperature = float32(f)
		}
	}

	// Search configuration
	if v := os.Getenv("JOBHUNTER_SEARCH_API_KEY"); v != "" {
		config.Search.APIKey = v
	} else if v := os.Getenv("SERPER_API_KEY"); v != "" {
		config.Search.APIKey = v
	}
	if v := os.Getenv("JOBHUNTER_SEARCH_RATE_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Search.RatePerSecond = f
		}
	}
	if v := os.Getenv("JOBHUNTER_SEARCH_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Search.MaxResults = n
		}
	}
	if v := os.Getenv("JOBHUNTER_SEARCH_CACHE_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Search.CacheTTLHours = n
		}
	}

	// Scraper configuration
	if v := os.Getenv("JOBHUNTER_SCRAPER_USER_AGENT"); v != "" {
		config.Scraper.UserAgent = v
	}
	if v := os.Getenv("JOBHUNTER_SCRAPER_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Scraper.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("JOBHUNTER_SCRAPER_BROWSER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Scraper.BrowserEnabled = b
		}
	}
	if v := os.Getenv("JOBHUNTER_SCRAPER_BROWSER_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Scraper.BrowserTimeoutSeconds = n
		}
	}

	// Storage configuration
	if v := os.Getenv("JOBHUNTER_BADGER_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}

	// Output configuration
	if v := os.Getenv("JOBHUNTER_OUTPUT_DIR"); v != "" {
		config.Output.Dir = v
	}
	if v := os.Getenv("JOBHUNTER_OUTPUT_FORMATS"); v != "" {
		formats := []string{}
		for _, f := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(f); trimmed != "" {
				formats = append(formats, trimmed)
			}
		}
		if len(formats) > 0 {
			config.Output.Formats = formats
		}
	}

	// Notify configuration
	if v := os.Getenv("JOBHUNTER_NOTIFY_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Notify.Enabled = b
		}
	}
	if v := os.Getenv("JOBHUNTER_NOTIFY_SMTP_HOST"); v != "" {
		config.Notify.SMTPHost = v
	}
	if v := os.Getenv("JOBHUNTER_NOTIFY_SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Notify.SMTPPort = n
		}
	}
	if v := os.Getenv("JOBHUNTER_NOTIFY_USERNAME"); v != "" {
		config.Notify.Username = v
	}
	if v := os.Getenv("JOBHUNTER_NOTIFY_PASSWORD"); v != "" {
		config.Notify.Password = v
	}
	if v := os.Getenv("JOBHUNTER_NOTIFY_FROM"); v != "" {
		config.Notify.From = v
	}
	if v := os.Getenv("JOBHUNTER_NOTIFY_TO"); v != "" {
		config.Notify.To = v
	}

	// Mailbox configuration
	if v := os.Getenv("JOBHUNTER_MAILBOX_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Mailbox.Enabled = b
		}
	}
	if v := os.Getenv("JOBHUNTER_MAILBOX_HOST"); v != "" {
		config.Mailbox.Host = v
	}
	if v := os.Getenv("JOBHUNTER_MAILBOX_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Mailbox.Port = n
		}
	}
	if v := os.Getenv("JOBHUNTER_MAILBOX_USERNAME"); v != "" {
		config.Mailbox.Username = v
	}
	if v := os.Getenv("JOBHUNTER_MAILBOX_PASSWORD"); v != "" {
		config.Mailbox.Password = v
	}
	if v := os.Getenv("JOBHUNTER_MAILBOX_FOLDER"); v != "" {
		config.Mailbox.Folder = v
	}
	if v := os.Getenv("JOBHUNTER_MAILBOX_SUBJECT_PREFIX"); v != "" {
		config.Mailbox.SubjectPrefix = v
	}
	if v := os.Getenv("JOBHUNTER_MAILBOX_POLL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Mailbox.PollMinutes = n
		}
	}

	// Schedule configuration
	if v := os.Getenv("JOBHUNTER_SCHEDULE_CRON"); v != "" {
		config.Schedule.Cron = v
	}

	// Logging configuration
	if v := os.Getenv("JOBHUNTER_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("JOBHUNTER_LOG_FILE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Logging.FileEnabled = b
		}
	}
	if v := os.Getenv("JOBHUNTER_LOG_MAX_BACKUPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Logging.MaxBackups = n
		}
	}

	// Tracing configuration
	if v := os.Getenv("JOBHUNTER_TRACING_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Tracing.Enabled = b
		}
	}
}

// RunOverrides carries per-run CLI/MCP overrides applied on top of the
// loaded configuration. Zero values mean "no override".
type RunOverrides struct {
	MinRecommendedJobs int
	MaxCostUSD         float64
	CompanyLimit       int
	DisableCheckpoint  bool
	NotifyTo           string
}

// BuildRunConfig assembles the per-run configuration snapshot from the
// loaded config, the run inputs, and any overrides.
func (c *Config) BuildRunConfig(runID, resumePath, preferencesText string, ov RunOverrides) models.RunConfig {
	rc := models.RunConfig{
		RunID:           runID,
		ResumePath:      resumePath,
		PreferencesText: preferencesText,
		// OutputDir stays empty so the report service writes each run under
		// its own {output.dir}/{run_id} directory.
		OutputFormats:          append([]string(nil), c.Output.Formats...),
		CompanyLimit:           c.Pipeline.CompanyLimit,
		MinScoreThreshold:      c.Pipeline.MinScoreThreshold,
		MinRecommendedJobs:     c.Pipeline.MinRecommendedJobs,
		MaxDiscoveryIterations: c.Pipeline.MaxDiscoveryIterations,
		MaxConcurrentScrapers:  c.Pipeline.MaxConcurrentScrapers,
		AgentTimeoutSeconds:    c.Pipeline.AgentTimeoutSeconds,
		MaxCostPerRunUSD:       c.Costs.MaxCostPerRunUSD,
		WarnCostThresholdUSD:   c.Costs.WarnCostThresholdUSD,
		CheckpointEnabled:      c.Checkpoint.Enabled,
		CheckpointDir:          c.Checkpoint.Dir,
		NotifyTo:               c.Notify.To,
	}
	if ov.MinRecommendedJobs > 0 {
		rc.MinRecommendedJobs = ov.MinRecommendedJobs
	}
	if ov.MaxCostUSD > 0 {
		rc.MaxCostPerRunUSD = ov.MaxCostUSD
	}
	if ov.CompanyLimit > 0 {
		rc.CompanyLimit = ov.CompanyLimit
	}
	if ov.DisableCheckpoint {
		rc.CheckpointEnabled = false
	}
	if ov.NotifyTo != "" {
		rc.NotifyTo = ov.NotifyTo
	}
	return rc
}

// ResolveAPIKey resolves an API key by name with environment variable
// priority. Resolution order: environment variables -> config fallback.
func ResolveAPIKey(name string, configFallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"anthropic_api_key": {"JOBHUNTER_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
		"gemini_api_key":    {"JOBHUNTER_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"serper_api_key":    {"JOBHUNTER_SEARCH_API_KEY", "SERPER_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ScraperTimeout returns the per-request scraper timeout as a duration.
func (c *Config) ScraperTimeout() time.Duration {
	return time.Duration(c.Scraper.TimeoutSeconds) * time.Second
}

// BrowserTimeout returns the headless-browser timeout as a duration.
func (c *Config) BrowserTimeout() time.Duration {
	return time.Duration(c.Scraper.BrowserTimeoutSeconds) * time.Second
}

// CacheTTL returns the career-page cache time-to-live as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Search.CacheTTLHours) * time.Hour
}
