// -----------------------------------------------------------------------
// JobHunter CLI - runs the job-discovery pipeline once or in watch mode
// -----------------------------------------------------------------------

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobhunter/internal/app"
	"github.com/ternarybob/jobhunter/internal/common"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	resumePath   = flag.String("resume", "", "Path to the resume PDF (or .txt/.md)")
	prefsText    = flag.String("prefs", "", "Freeform search preferences text")
	prefsFile    = flag.String("prefs-file", "", "Path to a file holding the preferences text")
	runID        = flag.String("run-id", "", "Run id; reuse one to resume from its latest checkpoint")
	requestFile  = flag.String("request", "", "YAML request file; its fields fill in flags left unset")
	minJobs      = flag.Int("min-jobs", 0, "Minimum recommended jobs target (overrides config)")
	maxCost      = flag.Float64("max-cost", 0, "Cost hard stop in USD (overrides config)")
	companyLimit = flag.Int("company-limit", 0, "Cap companies per discovery iteration (overrides config)")
	noCheckpoint = flag.Bool("no-checkpoint", false, "Disable checkpoint writes and resume")
	notifyTo     = flag.String("notify-to", "", "Email recipient for this run (overrides config)")
	watchMode    = flag.Bool("watch", false, "Run on the configured schedule and poll the mailbox for requests")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	// Global state
	config *common.Config
	logger arbor.ILogger
)

func init() {
	// Register custom flag for multiple config files
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()
	common.LoadVersionFromFile()

	// Handle version flag
	if *showVersion || *showVersionV {
		fmt.Printf("JobHunter version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Initialize logger
	// 3. Print banner
	var err error

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("jobhunter.toml"); err == nil {
			configFiles = append(configFiles, "jobhunter.toml")
		} else if _, err := os.Stat("deployments/local/jobhunter.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/jobhunter.toml")
		}
	}

	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		// The configured logger does not exist yet; fall back to the default
		common.GetLogger().Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger = common.SetupLogger(config)
	common.PrintBanner(common.GetVersion())
	common.InstallCrashHandler("logs")

	logger.Info().
		Strs("config_files", configFiles).
		Str("environment", config.Environment).
		Bool("watch", *watchMode).
		Msg("Application configuration loaded")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	if *watchMode {
		runWatch(application)
		return
	}

	os.Exit(runOnce(application))
}

// preferencesText resolves the -prefs / -prefs-file flags. -prefs wins when
// both are set.
func preferencesText() (string, error) {
	if *prefsText != "" {
		return *prefsText, nil
	}
	if *prefsFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(*prefsFile)
	if err != nil {
		return "", fmt.Errorf("failed to read preferences file %s: %w", *prefsFile, err)
	}
	return string(data), nil
}
