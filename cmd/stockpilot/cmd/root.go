// ABOUTME: Root command for the stockpilot CLI
// ABOUTME: Handles global flags, configuration, and SDK session construction

package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/stockpilot/stockpilot-go/cache"
	"github.com/stockpilot/stockpilot-go/client"
	"github.com/stockpilot/stockpilot-go/config"
	"github.com/stockpilot/stockpilot-go/cookies"
	"github.com/stockpilot/stockpilot-go/session"
)

var (
	apiURL     string
	jsonOutput bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "stockpilot",
	Short: "CLI for the Stockpilot inventory API",
	Long: `stockpilot is a command-line interface for the Stockpilot inventory API.

Each command authenticates within its own process; the access token lives in
memory only and is never written to disk.

Environment Variables:
  STOCKPILOT_API_URL   Backend API URL (required unless --api-url is given)
  STOCKPILOT_EMAIL     Login email
  STOCKPILOT_PASSWORD  Login password (prompted for when unset)`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides STOCKPILOT_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// loadConfig loads environment configuration, letting the --api-url flag
// stand in for (or override) STOCKPILOT_API_URL.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		if apiURL == "" {
			return nil, err
		}
		cfg = &config.Config{
			APIBaseURL:     apiURL,
			HTTPTimeout:    30,
			RefreshTimeout: 10,
			CacheTTL:       300,
		}
		return cfg, nil
	}

	if apiURL != "" {
		cfg.APIBaseURL = apiURL
	}
	return cfg, nil
}

// newSession builds the full SDK stack (cookie jar, client, cache, session
// manager) for a single CLI invocation and runs the boot sequence.
func newSession(ctx context.Context, cfg *config.Config) (*session.Manager, *client.Client, error) {
	jar, err := cookies.NewJar(cfg.APIBaseURL)
	if err != nil {
		return nil, nil, err
	}

	c := client.New(cfg.APIBaseURL, jar.HTTPJar(), time.Duration(cfg.HTTPTimeout)*time.Second)
	dataCache := cache.New(time.Duration(cfg.CacheTTL) * time.Second)
	mgr := session.NewManager(c, jar, dataCache, time.Duration(cfg.RefreshTimeout)*time.Second)

	mgr.Boot(ctx)
	return mgr, c, nil
}
