package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kroget/internal/kroget"
)

type StaplesCmd struct {
	items *ItemsCmd
}

// NewStaplesCmd creates the staples command, a shorter path to the list item
// commands.
func NewStaplesCmd(flags *Flags, app *kroget.App) *StaplesCmd {
	return &StaplesCmd{items: NewItemsCmd(flags, app)}
}

// Register adds the staples command to the application.
func (cmd *StaplesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "staples",
		Usage: "Manage staples (default: the active list)",
		Description: `Staples are the items you keep stocked. Each staple has a search term, a
quantity, a fulfillment modality, and optionally a preferred UPC.

These commands work on the active list unless --list names another one. They
are the same commands as 'kroget lists items'.`,
		Commands: cmd.items.Commands(),
	})
	return app
}
