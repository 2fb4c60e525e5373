package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/allscreenshots/allscreenshots-sdk-go"
	"github.com/allscreenshots/allscreenshots-sdk-go/internal/logging"
	"github.com/allscreenshots/allscreenshots-sdk-go/internal/settings"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	ConfigPath string
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	Retries    int
	LogLevel   string
	Pretty     bool
}

// app carries state from the root command to its subcommands.
type app struct {
	cfg    Config
	opts   globalOptions
	logger zerolog.Logger
	client *allscreenshots.Client
}

func newRootCommand(cfg Config) *cobra.Command {
	a := &app{cfg: cfg}

	cmd := &cobra.Command{
		Use:   "allscreenshots",
		Short: "Capture web pages with the AllScreenshots API",
		Long: `Command line client for the AllScreenshots API.

The API key is read from --api-key, then the ALLSCREENSHOTS_API_KEY
environment variable (a .env file in the working directory is loaded
first), then the api_key entry of the --config file.`,
		Version:       allscreenshots.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.opts.ConfigPath, "config", "c", "", "YAML settings file")
	flags.StringVar(&a.opts.APIKey, "api-key", "", "API key (default $ALLSCREENSHOTS_API_KEY)")
	flags.StringVar(&a.opts.BaseURL, "base-url", "", "API base URL")
	flags.DurationVar(&a.opts.Timeout, "timeout", 0, "per-attempt timeout (default 60s)")
	flags.IntVar(&a.opts.Retries, "retries", 3, "maximum retries per request")
	flags.StringVar(&a.opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&a.opts.Pretty, "pretty", false, "human-readable log output")

	cmd.AddCommand(
		newScreenshotCommand(a),
		newJobCommand(a),
		newUsageCommand(a),
		newQuotaCommand(a),
		newSchedulesCommand(a),
	)
	return cmd
}

// setup merges .env, the settings file and flags, then builds the logger and
// the client. Flags win over settings; settings win over defaults.
func (a *app) setup(cmd *cobra.Command) error {
	if a.cfg.EnvFile != "" {
		if err := godotenv.Load(a.cfg.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", a.cfg.EnvFile, err)
		}
	}

	s, err := settings.Load(a.opts.ConfigPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("api-key") {
		s.APIKey = a.opts.APIKey
	}
	if flags.Changed("base-url") {
		s.BaseURL = a.opts.BaseURL
	}
	if flags.Changed("timeout") {
		s.Timeout = a.opts.Timeout
	}
	if flags.Changed("retries") || s.MaxRetries == nil {
		s.MaxRetries = &a.opts.Retries
	}
	if flags.Changed("log-level") {
		s.LogLevel = a.opts.LogLevel
	}
	if flags.Changed("pretty") {
		s.LogPretty = a.opts.Pretty
	}

	a.logger = logging.New(s.LogLevel, s.LogPretty, a.cfg.Stderr)

	policy := allscreenshots.DefaultRetryPolicy()
	policy = allscreenshots.NewRetryPolicy(*s.MaxRetries, policy.BaseDelay(), policy.MaxDelay(),
		policy.Multiplier(), policy.RetryableStatusCodes()...)

	opts := []allscreenshots.Option{
		allscreenshots.WithAPIKey(s.APIKey),
		allscreenshots.WithTimeout(s.Timeout),
		allscreenshots.WithRetryPolicy(policy),
		allscreenshots.WithLogger(a.logger),
	}
	if s.BaseURL != "" {
		opts = append(opts, allscreenshots.WithBaseURL(s.BaseURL))
	}
	if s.UserAgent != "" {
		opts = append(opts, allscreenshots.WithUserAgent(s.UserAgent))
	}

	a.client, err = allscreenshots.New(opts...)
	if err != nil {
		return err
	}

	a.logger.Debug().
		Stringer("config", a.client.Configuration()).
		Msg("client configured")
	return nil
}

// printJSON writes v to stdout as indented JSON.
func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.cfg.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
