package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/robertmeta/techfolio/feed"
	"github.com/robertmeta/techfolio/model"
	"github.com/robertmeta/techfolio/opml"
	"github.com/urfave/cli/v2"
)

func sourceCommand() *cli.Command {
	return &cli.Command{
		Name:  "source",
		Usage: "Manage article sources",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Connect an article source (qiita <user> or feed <url>)",
				ArgsUsage: "<kind> <target>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Display title (feeds default to the feed's own title)"},
					&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Source category"},
				},
				Action: addSource,
			},
			{
				Name:   "list",
				Usage:  "List article sources",
				Action: listSources,
			},
			{
				Name:      "remove",
				Usage:     "Remove an article source and its cached articles",
				ArgsUsage: "<source-id>",
				Action:    removeSource,
			},
			{
				Name:      "import",
				Usage:     "Import sources from OPML file",
				ArgsUsage: "<opml-file>",
				Action:    importOPML,
			},
			{
				Name:  "export",
				Usage: "Export sources to OPML file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file (default: stdout)",
					},
				},
				Action: exportOPML,
			},
		},
	}
}

func addSource(c *cli.Context) error {
	if c.NArg() < 2 {
		return cli.Exit("Usage: techfolio source add <qiita|feed> <target>", ExitUsageError)
	}
	src := &model.Source{
		Kind:     model.SourceKind(c.Args().Get(0)),
		Target:   c.Args().Get(1),
		Title:    c.String("title"),
		Category: c.String("category"),
	}
	if err := src.Validate(); err != nil {
		return cli.Exit(err.Error(), ExitUsageError)
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	if src.ProfileID, err = e.profileID(); err != nil {
		return err
	}

	if src.Kind == model.SourceFeed && src.Title == "" {
		fs := feed.NewFeedSource(src.Target, &http.Client{Timeout: e.cfg.Feed.Timeout})
		title, err := fs.Title(c.Context)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Failed to fetch feed: %v", err), ExitDataError)
		}
		src.Title = title
	}

	if err := e.store.SaveSource(c.Context, src); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to save source: %v", err), ExitDataError)
	}
	e.svc.Forget(e.id)

	return outputJSON(map[string]interface{}{
		"success": true,
		"source":  src,
	})
}

func listSources(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	profileID, err := e.profileID()
	if err != nil {
		return err
	}
	sources, err := e.store.GetSources(c.Context, profileID)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to get sources: %v", err), ExitDataError)
	}
	return outputJSON(map[string]interface{}{
		"count":   len(sources),
		"sources": sources,
	})
}

func removeSource(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: techfolio source remove <source-id>", ExitUsageError)
	}
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	profileID, err := e.profileID()
	if err != nil {
		return err
	}
	id := c.Args().Get(0)
	if err := e.store.DeleteSource(c.Context, profileID, id); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to remove source: %v", err), ExitDataError)
	}
	return outputJSON(map[string]interface{}{
		"success": true,
		"removed": id,
	})
}

func importOPML(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: techfolio source import <opml-file>", ExitUsageError)
	}

	file, err := os.Open(c.Args().Get(0))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to open OPML file: %v", err), ExitDataError)
	}
	defer file.Close()

	sources, err := opml.Parse(file)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to parse OPML: %v", err), ExitDataError)
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	profileID, err := e.profileID()
	if err != nil {
		return err
	}

	imported := 0
	skipped := 0
	var errors []string
	for _, src := range sources {
		src.ProfileID = profileID
		if err := e.store.SaveSource(c.Context, src); err != nil {
			skipped++
			errors = append(errors, fmt.Sprintf("%s: %v", src.Target, err))
			continue
		}
		imported++
	}

	return outputJSON(map[string]interface{}{
		"success":  true,
		"imported": imported,
		"skipped":  skipped,
		"total":    len(sources),
		"errors":   errors,
	})
}

func exportOPML(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	profileID, err := e.profileID()
	if err != nil {
		return err
	}
	sources, err := e.store.GetSources(c.Context, profileID)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to get sources: %v", err), ExitDataError)
	}

	outputPath := c.String("output")
	var writer io.Writer = os.Stdout
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Failed to create output file: %v", err), ExitDataError)
		}
		defer file.Close()
		writer = file
	}

	if err := opml.Generate(writer, sources); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to generate OPML: %v", err), ExitDataError)
	}

	if outputPath != "" {
		return outputJSON(map[string]interface{}{
			"success": true,
			"file":    outputPath,
			"count":   len(sources),
		})
	}
	return nil
}
