// Package cli provides the command-line interface for ghbulk.
package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ghbulk/ghbulk/internal/config"
	"github.com/ghbulk/ghbulk/internal/forge"
	"github.com/ghbulk/ghbulk/internal/forge/github"
	"github.com/ghbulk/ghbulk/internal/service"
)

// App bundles the dependencies the commands run against. Tests inject a
// pre-built App; the root command builds one from config on first use.
type App struct {
	Config  *config.Config
	Service *service.IssueService
	Cache   *service.FileCache
	Logger  service.Logger
}

// NewRootCommand creates the root command for ghbulk. When app.Service is
// unset the dependencies are wired from the config file and flags before any
// subcommand runs.
func NewRootCommand(app *App, version string) *cobra.Command {
	var configPath string
	var token string
	var apiURL string
	var verbose bool

	root := &cobra.Command{
		Use:   "ghbulk",
		Short: "Create, import, and bulk-edit issues on a code forge",
		Long: `ghbulk is a CLI for creating, importing, and bulk-editing issues
across the repositories a personal access token can reach.

The token comes from --token, GHBULK_TOKEN, GITHUB_TOKEN, or the config
file, in that order of precedence.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if app.Service != nil {
				return nil // already wired (tests)
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if token != "" {
				cfg.Token = token
			}
			if apiURL != "" {
				cfg.APIURL = apiURL
			}

			if !cfg.HasToken() {
				return fmt.Errorf("no access token configured: set --token, GHBULK_TOKEN, or GITHUB_TOKEN")
			}

			if verbose {
				app.Logger = service.NewStdLogger()
			}
			wireApp(app, cfg)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/ghbulk/config.yaml)")
	root.PersistentFlags().StringVar(&token, "token", "", "personal access token")
	root.PersistentFlags().StringVar(&apiURL, "api-url", "", "forge API base URL")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log API and cache activity")

	root.AddCommand(
		newWhoamiCommand(app),
		newOrgsCommand(app),
		newReposCommand(app),
		newLabelsCommand(app),
		newMilestonesCommand(app),
		newIssuesCommand(app),
		newCacheCommand(app),
	)

	return root
}

// wireApp builds the client stack for a loaded configuration.
func wireApp(app *App, cfg *config.Config) {
	if app.Logger == nil {
		app.Logger = service.NopLogger{}
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	client := github.NewClient(forge.ClientConfig{
		BaseURL:  cfg.APIURL,
		Token:    cfg.Token,
		PageSize: cfg.PageSize,
	}, httpClient)

	cached := forge.NewCachingClient(client, cfg.CacheTTL())

	app.Config = cfg
	app.Service = service.NewIssueService(cached, app.Logger)
	app.Cache = service.NewFileCache(cfg.CacheFile, app.Logger)
}

// updateSnapshot loads the persisted metadata snapshot, applies mutate, and
// saves it back. Snapshot failures are logged, never fatal: the cache is a
// convenience, not a source of truth.
func (a *App) updateSnapshot(mutate func(*service.Snapshot)) {
	if a.Cache == nil {
		return
	}

	snapshot, err := a.Cache.Load()
	if err != nil || snapshot == nil {
		snapshot = &service.Snapshot{}
	}

	mutate(snapshot)

	if err := a.Cache.Save(snapshot); err != nil {
		a.Logger.Printf("Failed to save metadata snapshot: %v", err)
	}
}
