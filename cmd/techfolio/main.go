package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitDataError    = 3
	ExitAuthError    = 4
)

func main() {
	app := &cli.App{
		Name:    "techfolio",
		Usage:   "An engineer's portfolio: projects, skills and articles on one timeline",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "YAML config file",
				EnvVars: []string{"TECHFOLIO_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Database file path (overrides config)",
			},
			&cli.StringFlag{
				Name:    "profile",
				Usage:   "Profile token; empty means the read-only demo portfolio",
				EnvVars: []string{"TECHFOLIO_TOKEN"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (overrides config)",
			},
		},
		Commands: []*cli.Command{
			profileCommand(),
			projectCommand(),
			tagCommand(),
			roleCommand(),
			sourceCommand(),
			{
				Name:   "sync",
				Usage:  "Fetch every article source into the cache",
				Action: syncArticles,
			},
			{
				Name:  "articles",
				Usage: "List cached articles",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Value:   50,
						Usage:   "Maximum number of articles to return",
					},
					&cli.StringFlag{
						Name:    "since",
						Aliases: []string{"s"},
						Usage:   "Show articles since duration (e.g., 7d, 2w, 3m, 1y)",
					},
				},
				Action: listArticles,
			},
			{
				Name:  "timeline",
				Usage: "Show the merged, filtered timeline",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "text", Usage: "Case-insensitive title/summary search"},
					&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Tag to match (repeatable)"},
					&cli.StringFlag{Name: "role", Usage: "Only projects with this role"},
					&cli.BoolFlag{Name: "no-projects", Usage: "Hide projects"},
					&cli.BoolFlag{Name: "no-articles", Usage: "Hide articles"},
					&cli.IntFlag{Name: "page-size", Usage: "Entries per page (default from config)"},
					&cli.IntFlag{Name: "pages", Value: 1, Usage: "Number of pages to reveal"},
				},
				Action: showTimeline,
			},
			{
				Name:  "stats",
				Usage: "Show skill and role statistics",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum number of skills (default from config)"},
				},
				Action: showStats,
			},
			{
				Name:   "browse",
				Usage:  "Browse the timeline interactively",
				Action: browse,
			},
			{
				Name:  "serve",
				Usage: "Serve the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "host", Usage: "Listen host (overrides config)"},
					&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (overrides config)"},
				},
				Action: serve,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitGeneralError)
	}
}
