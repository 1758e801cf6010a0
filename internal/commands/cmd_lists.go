package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kroget/internal/kroget"
	"github.com/hay-kot/kroget/pkg/iojson"
)

type ListsCmd struct {
	flags *Flags
	app   *kroget.App
	items *ItemsCmd

	jsonOut bool
}

// NewListsCmd creates the lists command.
func NewListsCmd(flags *Flags, app *kroget.App) *ListsCmd {
	return &ListsCmd{
		flags: flags,
		app:   app,
		items: NewItemsCmd(flags, app),
	}
}

// Register adds the lists command to the application.
func (cmd *ListsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "lists",
		Usage: "Manage named staple lists",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List all lists",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.jsonOut,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:      "create",
				Usage:     "Create an empty list",
				UsageText: "kroget lists create <name>",
				Action:    cmd.runCreate,
			},
			{
				Name:          "set-active",
				Usage:         "Make a list the active list",
				UsageText:     "kroget lists set-active <name>",
				Action:        cmd.runSetActive,
				ShellComplete: ListNameCompleter(cmd.app),
			},
			{
				Name:          "rename",
				Usage:         "Rename a list",
				UsageText:     "kroget lists rename <old> <new>",
				Action:        cmd.runRename,
				ShellComplete: ListNameCompleter(cmd.app),
			},
			{
				Name:          "delete",
				Usage:         "Delete a list and its staples",
				UsageText:     "kroget lists delete <name>",
				Action:        cmd.runDelete,
				ShellComplete: ListNameCompleter(cmd.app),
			},
			{
				Name:     "items",
				Usage:    "Manage the staples of a list",
				Commands: cmd.items.Commands(),
			},
		},
	})
	return app
}

type listSummary struct {
	Name    string `json:"name"`
	Active  bool   `json:"active"`
	Staples int    `json:"staples"`
}

func (cmd *ListsCmd) runList(ctx context.Context, c *cli.Command) error {
	names, err := cmd.app.Staples.ListNames(ctx)
	if err != nil {
		return err
	}
	active, err := cmd.app.Staples.Active(ctx)
	if err != nil {
		return err
	}

	summaries := make([]listSummary, 0, len(names))
	for _, name := range names {
		staples, err := cmd.app.Staples.Staples(ctx, name)
		if err != nil {
			return err
		}
		summaries = append(summaries, listSummary{Name: name, Active: name == active, Staples: len(staples)})
	}

	w := c.Root().Writer
	if cmd.jsonOut {
		return iojson.WriteWith(w, os.Stderr, summaries)
	}

	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "\tNAME\tSTAPLES")
	for _, s := range summaries {
		marker := ""
		if s.Active {
			marker = "*"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\n", marker, s.Name, s.Staples)
	}
	return tw.Flush()
}

func (cmd *ListsCmd) runCreate(ctx context.Context, c *cli.Command) error {
	name, err := requireArg(c, "name")
	if err != nil {
		return err
	}
	if err := cmd.app.Staples.Create(ctx, name); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Created list %s\n", name)
	return nil
}

func (cmd *ListsCmd) runSetActive(ctx context.Context, c *cli.Command) error {
	name, err := requireArg(c, "name")
	if err != nil {
		return err
	}
	if err := cmd.app.Staples.SetActive(ctx, name); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Active list is now %s\n", name)
	return nil
}

func (cmd *ListsCmd) runRename(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("usage: kroget lists rename <old> <new>")
	}
	oldName, newName := c.Args().Get(0), c.Args().Get(1)
	if err := cmd.app.Staples.Rename(ctx, oldName, newName); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Renamed %s to %s\n", oldName, newName)
	return nil
}

func (cmd *ListsCmd) runDelete(ctx context.Context, c *cli.Command) error {
	name, err := requireArg(c, "name")
	if err != nil {
		return err
	}
	if err := cmd.app.Staples.Delete(ctx, name); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Deleted list %s\n", name)
	return nil
}
