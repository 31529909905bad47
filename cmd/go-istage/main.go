// Package main is the entry point for go-istage.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cszczepaniak/go-istage/internal/app"
	"github.com/cszczepaniak/go-istage/internal/buildinfo"
	"github.com/cszczepaniak/go-istage/internal/config"
	"github.com/cszczepaniak/go-istage/internal/git"
	"github.com/cszczepaniak/go-istage/internal/log"
	"github.com/cszczepaniak/go-istage/internal/theme"
	urfavecli "github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// The OSC 11 background query has to finish before the TUI takes the
// terminal, so it gets a short leash.
const backgroundDetectTimeout = 300 * time.Millisecond

func main() {
	buildinfo.Set(version, commit, date)
	buildinfo.Enrich()

	cliApp := &urfavecli.App{
		Name:    "go-istage",
		Usage:   "Stage and unstage working tree changes line by line",
		Version: buildinfo.Version(),
		Flags:   globalFlags(),
		Action:  runTUI,
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func runTUI(c *urfavecli.Context) error {
	workDir := c.String("working-dir")
	if workDir == "" {
		var err error
		if workDir, err = os.Getwd(); err != nil {
			return err
		}
	}

	if _, err := git.LookupPath("git"); err != nil {
		return fmt.Errorf("git not found in PATH: %w", err)
	}

	ctx := context.Background()
	svc := git.NewService(workDir)
	repoRoot, err := svc.RepoRoot(ctx)
	if err != nil {
		return fmt.Errorf("%s is not inside a git repository", workDir)
	}
	// Rebuild the service rooted at the toplevel so status paths come
	// back relative to it.
	svc = git.NewService(repoRoot)

	cfg, err := config.LoadConfig(c.String("config"), repoRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		cfg = config.DefaultConfig()
	}

	if themeName := c.String("theme"); themeName != "" {
		normalized := config.NormalizeThemeName(themeName)
		if normalized == "" {
			return fmt.Errorf("unknown theme %q", themeName)
		}
		cfg.Theme = normalized
	}
	if c.Bool("no-icons") {
		cfg.ShowIcons = false
	}
	if debugLog := c.String("debug-log"); debugLog != "" {
		cfg.DebugLog = debugLog
	}

	if cfg.Theme == "" {
		if name, err := theme.DetectBackground(backgroundDetectTimeout); err == nil {
			cfg.Theme = name
		} else {
			cfg.Theme = theme.DefaultDark()
		}
	}

	if err := log.SetFile(cfg.DebugLog); err != nil {
		fmt.Fprintf(os.Stderr, "warning: debug log %q: %v\n", cfg.DebugLog, err)
	}
	defer func() { _ = log.Close() }()

	svc.SetContextLines(cfg.ContextLines)

	status, err := svc.StatusFiles(ctx)
	if err != nil {
		return err
	}
	if len(status) == 0 {
		return fmt.Errorf("no changes present in %s", repoRoot)
	}

	model := app.NewModel(cfg, svc, repoRoot)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
