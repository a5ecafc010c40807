package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lerenn/forgecheck/pkg/adapters/github"
	"github.com/lerenn/forgecheck/pkg/audit"
	"github.com/lerenn/forgecheck/pkg/config"
	"github.com/lerenn/forgecheck/pkg/forge"
	"github.com/lerenn/forgecheck/pkg/logging"
	"github.com/lerenn/forgecheck/pkg/reconcile"
	"github.com/lerenn/forgecheck/pkg/render"
	"github.com/lerenn/forgecheck/pkg/repo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	repoPath   string
	format     string
	branch     string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "forgecheck",
		Short: "Forgecheck audits Puppetfile modules across branches against the Puppet Forge",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				logging.InitDevelopment()
			} else {
				logging.Init()
			}
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the config file")
	rootCmd.PersistentFlags().StringVarP(&repoPath, "repo", "r", "", "Clone to work on, omit for current directory")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", string(render.FormatTerminal),
		"Output format (terminal-table, markdown, jira)")
	rootCmd.PersistentFlags().StringVarP(&branch, "branch", "b", "", "Show only this branch in views that support it")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Human-readable debug logging")

	rootCmd.AddCommand(newViewCmd("branches", "Show declared releases across branches", audit.ViewBranches))
	rootCmd.AddCommand(newViewCmd("latest", "Show the latest forge release per module", audit.ViewLatest))
	rootCmd.AddCommand(newViewCmd("deprecated", "Show modules the forge has deprecated", audit.ViewDeprecated))

	if err := rootCmd.Execute(); err != nil {
		logging.L().Error("Command execution failed", zap.Error(err))
		os.Exit(1)
	}
}

func newViewCmd(use, short string, view audit.View) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return run(cmd.Context(), view)
		},
	}
}

func run(ctx context.Context, view audit.View) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if repoPath != "" {
		cfg.Repo.Path = repoPath
	}

	renderer, err := render.New(render.Format(format))
	if err != nil {
		return err
	}

	source, err := newSource(cfg)
	if err != nil {
		return err
	}

	registry := forge.NewRegistry(
		forge.NewClient(cfg.Forge.URL, cfg.Forge.Timeout),
		forge.NewFileSnapshotStore(cfg.Cache.Path),
		cfg.Cache.TTL,
	)

	app := audit.New(source, registry, reconcile.NewEngine(registry), renderer)
	out, err := app.Run(ctx, view, branch)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// newSource picks the GitHub API when the config names a repository URL,
// the local clone otherwise.
func newSource(cfg *config.Config) (repo.Source, error) {
	if cfg.Repo.URL != "" {
		client := github.New(os.Getenv("GITHUB_TOKEN"))
		return repo.NewGitHubSource(client, cfg.Repo.URL, cfg.Repo.Manifest)
	}
	return repo.NewGitSource(cfg.Repo.Path, cfg.Repo.Remote, cfg.Repo.Manifest), nil
}
