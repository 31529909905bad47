package main

import urfavecli "github.com/urfave/cli/v2"

// globalFlags returns the application flags. --version is provided by
// urfave/cli via App.Version.
func globalFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:  "config",
			Usage: "Path to configuration file",
		},
		&urfavecli.StringFlag{
			Name:    "theme",
			Aliases: []string{"t"},
			Usage:   "Override the UI theme",
		},
		&urfavecli.StringFlag{
			Name:  "debug-log",
			Usage: "Path to debug log file",
		},
		&urfavecli.StringFlag{
			Name:    "working-dir",
			Aliases: []string{"C"},
			Usage:   "Run as if started in this directory",
		},
		&urfavecli.BoolFlag{
			Name:  "no-icons",
			Usage: "Disable Nerd Font icons in the file list",
		},
	}
}
