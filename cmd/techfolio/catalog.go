package main

import (
	"errors"
	"fmt"

	"github.com/robertmeta/techfolio/model"
	"github.com/robertmeta/techfolio/store"
	"github.com/robertmeta/techfolio/tagcolor"
	"github.com/urfave/cli/v2"
)

func profileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Manage profiles",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a profile and print its access token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Display name"},
					&cli.StringFlag{Name: "qiita-user", Usage: "Qiita user ID to pull articles from"},
				},
				Action: createProfile,
			},
			{
				Name:   "show",
				Usage:  "Show the profile selected by --profile",
				Action: showProfile,
			},
		},
	}
}

func createProfile(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	p, token, err := e.svc.CreateProfile(c.Context, c.String("name"), c.String("qiita-user"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to create profile: %v", err), ExitDataError)
	}

	// The token is only shown here; the database keeps its hash.
	return outputJSON(map[string]interface{}{
		"success": true,
		"profile": p,
		"token":   token,
	})
}

func showProfile(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	if e.id.Demo() {
		return outputJSON(map[string]interface{}{
			"demo":    true,
			"profile": e.svc.DemoProfile(),
		})
	}
	return outputJSON(map[string]interface{}{
		"demo":    false,
		"profile": e.id.Profile,
	})
}

func projectCommand() *cli.Command {
	return &cli.Command{
		Name:  "project",
		Usage: "Manage projects",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a project",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true, Usage: "Project title"},
					&cli.StringFlag{Name: "summary", Usage: "Short description"},
					&cli.StringFlag{Name: "start", Required: true, Usage: "Period start (YYYY-MM)"},
					&cli.StringFlag{Name: "end", Usage: "Period end (YYYY-MM)"},
					&cli.BoolFlag{Name: "ongoing", Usage: "Project is still running"},
					&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Tag name (repeatable)"},
					&cli.StringSliceFlag{Name: "role", Aliases: []string{"r"}, Usage: "Role name (repeatable)"},
				},
				Action: addProject,
			},
			{
				Name:  "list",
				Usage: "List projects",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Filter by tag"},
					&cli.StringFlag{Name: "role", Aliases: []string{"r"}, Usage: "Filter by role"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum number of projects to return"},
					&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Usage: "Offset for pagination"},
				},
				Action: listProjects,
			},
			{
				Name:      "show",
				Usage:     "Show project details",
				ArgsUsage: "<project-id>",
				Action:    showProject,
			},
			{
				Name:      "remove",
				Usage:     "Remove a project",
				ArgsUsage: "<project-id>",
				Action:    removeProject,
			},
		},
	}
}

func addProject(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	profileID, err := e.profileID()
	if err != nil {
		return err
	}

	p := &model.Project{
		ProfileID:   profileID,
		Title:       c.String("title"),
		Summary:     c.String("summary"),
		PeriodStart: model.YearMonth(c.String("start")),
		PeriodEnd:   model.YearMonth(c.String("end")),
		IsOngoing:   c.Bool("ongoing"),
		RoleNames:   c.StringSlice("role"),
	}
	for _, name := range c.StringSlice("tag") {
		p.Tags = append(p.Tags, model.Tag{Name: name})
	}

	if err := e.store.SaveProject(c.Context, p); err != nil {
		if errors.Is(err, model.ErrInvalidProject) {
			return cli.Exit(err.Error(), ExitUsageError)
		}
		return cli.Exit(fmt.Sprintf("Failed to save project: %v", err), ExitDataError)
	}
	return outputJSON(map[string]interface{}{
		"success": true,
		"project": p,
	})
}

func listProjects(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	var projects []model.Project
	if e.id.Demo() {
		// The demo set is small; filter it the same way the store would.
		all, err := e.svc.Projects(c.Context, e.id)
		if err != nil {
			return exitFor(err)
		}
		projects = filterProjects(all, c.String("tag"), c.String("role"), c.Int("limit"), c.Int("offset"))
	} else {
		projects, err = e.store.GetProjects(c.Context, e.id.ProfileID(), store.ProjectQuery{
			Limit:  c.Int("limit"),
			Offset: c.Int("offset"),
			Tag:    c.String("tag"),
			Role:   c.String("role"),
		})
		if err != nil {
			return cli.Exit(fmt.Sprintf("Failed to get projects: %v", err), ExitDataError)
		}
	}

	return outputJSON(map[string]interface{}{
		"count":    len(projects),
		"projects": projects,
	})
}

func filterProjects(all []model.Project, tag, role string, limit, offset int) []model.Project {
	out := []model.Project{}
	for i := range all {
		if tag != "" && !all[i].HasTag(tag) {
			continue
		}
		if role != "" && !all[i].HasRole(role) {
			continue
		}
		out = append(out, all[i])
	}
	if offset >= len(out) {
		return []model.Project{}
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func showProject(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: techfolio project show <project-id>", ExitUsageError)
	}
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	id := c.Args().Get(0)
	if e.id.Demo() {
		projects, err := e.svc.Projects(c.Context, e.id)
		if err != nil {
			return exitFor(err)
		}
		for i := range projects {
			if projects[i].ID == id {
				return outputJSON(projects[i])
			}
		}
		return cli.Exit(fmt.Sprintf("Failed to get project: %v", store.ErrNotFound), ExitDataError)
	}

	p, err := e.store.GetProject(c.Context, e.id.ProfileID(), id)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to get project: %v", err), ExitDataError)
	}
	return outputJSON(p)
}

func removeProject(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: techfolio project remove <project-id>", ExitUsageError)
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
	if err := e.store.DeleteProject(c.Context, profileID, id); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to remove project: %v", err), ExitDataError)
	}
	return outputJSON(map[string]interface{}{
		"success": true,
		"removed": id,
	})
}

func tagCommand() *cli.Command {
	return &cli.Command{
		Name:  "tag",
		Usage: "Manage the tag catalog",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a tag or change its color",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "color", Aliases: []string{"c"}, Usage: "Badge color (#RRGGBB)"},
				},
				Action: addTag,
			},
			{
				Name:   "list",
				Usage:  "List tags with their resolved colors",
				Action: listTags,
			},
		},
	}
}

func addTag(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: techfolio tag add <name>", ExitUsageError)
	}
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := e.profileID(); err != nil {
		return err
	}
	t := &model.Tag{Name: c.Args().Get(0), Color: c.String("color")}
	if err := e.store.SaveTag(c.Context, t); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to save tag: %v", err), ExitDataError)
	}
	return outputJSON(map[string]interface{}{
		"success": true,
		"tag":     t,
	})
}

func listTags(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	tags, err := e.svc.Catalog(c.Context, e.id)
	if err != nil {
		return exitFor(err)
	}
	colors := tagcolor.New(tags)
	resolved := make([]model.Tag, len(tags))
	for i, t := range tags {
		t.Color = colors.ColorFor(t.Name)
		resolved[i] = t
	}
	return outputJSON(map[string]interface{}{
		"count": len(resolved),
		"tags":  resolved,
	})
}

func roleCommand() *cli.Command {
	return &cli.Command{
		Name:  "role",
		Usage: "Manage the role catalog",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a role",
				ArgsUsage: "<name>",
				Action:    addRole,
			},
			{
				Name:   "list",
				Usage:  "List roles",
				Action: listRoles,
			},
		},
	}
}

func addRole(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: techfolio role add <name>", ExitUsageError)
	}
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := e.profileID(); err != nil {
		return err
	}
	name := c.Args().Get(0)
	if err := e.store.SaveRole(c.Context, name); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to save role: %v", err), ExitDataError)
	}
	return outputJSON(map[string]interface{}{
		"success": true,
		"role":    name,
	})
}

func listRoles(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	var roles []string
	if e.id.Demo() {
		roles, err = e.svc.Roles(c.Context, e.id)
	} else {
		roles, err = e.store.GetRoles(c.Context)
	}
	if err != nil {
		return exitFor(err)
	}
	return outputJSON(map[string]interface{}{
		"count": len(roles),
		"roles": roles,
	})
}
