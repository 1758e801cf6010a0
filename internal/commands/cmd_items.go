package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kroget/internal/core/logging"
	"github.com/hay-kot/kroget/internal/core/staple"
	"github.com/hay-kot/kroget/internal/kroget"
	"github.com/hay-kot/kroget/pkg/iojson"
)

// ItemsCmd holds the staple item subcommands. They are mounted under both
// "lists items" and "staples"; --list picks the list, defaulting to the
// active one.
type ItemsCmd struct {
	flags *Flags
	app   *kroget.App

	list  string
	lists []string

	// item flags
	term     string
	quantity int
	modality string
	upc      string
	clearUPC bool
	to       string

	// propose flags
	locationID  string
	only        []string
	autoPin     bool
	confirmPins bool
	out         string

	jsonOut  bool
	importer iojson.FileReader[[]staple.Staple]
}

// NewItemsCmd creates the staple item subcommands.
func NewItemsCmd(flags *Flags, app *kroget.App) *ItemsCmd {
	return &ItemsCmd{flags: flags, app: app}
}

func (cmd *ItemsCmd) listFlag() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "list",
			Aliases:     []string{"l"},
			Usage:       "list name (default: active list)",
			Destination: &cmd.list,
		},
	}
}

func (cmd *ItemsCmd) itemFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "term",
			Aliases:     []string{"t"},
			Usage:       "search term (default: the item name)",
			Destination: &cmd.term,
		},
		&cli.IntFlag{
			Name:        "quantity",
			Aliases:     []string{"q"},
			Usage:       "quantity to add to the cart",
			Value:       1,
			Destination: &cmd.quantity,
		},
		&cli.StringFlag{
			Name:        "modality",
			Aliases:     []string{"m"},
			Usage:       "fulfillment method (PICKUP, DELIVERY)",
			Destination: &cmd.modality,
		},
		&cli.StringFlag{
			Name:        "upc",
			Usage:       "preferred UPC",
			Destination: &cmd.upc,
		},
	}
}

// Commands returns the item subcommands.
func (cmd *ItemsCmd) Commands() []*cli.Command {
	const listUsage = " [--list <name>]"

	return []*cli.Command{
		{
			Name:      "add",
			Usage:     "Add a staple",
			UsageText: "add <name>" + listUsage + " [--term <term>] [--quantity <n>] [--modality <m>] [--upc <upc>]",
			Flags:     append(cmd.listFlag(), cmd.itemFlags()...),
			Action:    cmd.runAdd,
		},
		{
			Name:      "list",
			Aliases:   []string{"ls"},
			Usage:     "List staples",
			UsageText: "list" + listUsage + " [--json]",
			Flags: append(cmd.listFlag(), &cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOut,
			}),
			Action: cmd.runList,
		},
		{
			Name:      "set",
			Usage:     "Update a staple",
			UsageText: "set <name>" + listUsage + " [--term <term>] [--quantity <n>] [--modality <m>] [--upc <upc> | --clear-upc]",
			Flags: append(append(cmd.listFlag(), cmd.itemFlags()...), &cli.BoolFlag{
				Name:        "clear-upc",
				Usage:       "remove the preferred UPC",
				Destination: &cmd.clearUPC,
			}),
			Action: cmd.runSet,
		},
		{
			Name:      "remove",
			Aliases:   []string{"rm"},
			Usage:     "Remove a staple by name or preferred UPC",
			UsageText: "remove <name|upc>" + listUsage,
			Flags:     cmd.listFlag(),
			Action:    cmd.runRemove,
		},
		{
			Name:      "move",
			Usage:     "Move a staple to another list",
			UsageText: "move <name|upc>" + listUsage + " --to <list>",
			Flags: append(cmd.listFlag(), &cli.StringFlag{
				Name:        "to",
				Usage:       "destination list",
				Required:    true,
				Destination: &cmd.to,
			}),
			Action: cmd.runMove,
		},
		{
			Name:        "import",
			Usage:       "Add staples from a JSON array",
			UsageText:   "import" + listUsage + " [-f <file>]",
			Description: "Reads a JSON array of staples from a file or stdin and adds each one.",
			Flags:       append(cmd.listFlag(), cmd.importer.Flag()),
			Action:      cmd.runImport,
		},
		cmd.proposeCmd(),
	}
}

func (cmd *ItemsCmd) proposeCmd() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "location-id",
			Usage:       "store location (default: saved default store)",
			Destination: &cmd.locationID,
		},
		&cli.StringSliceFlag{
			Name:        "only",
			Usage:       "only include staples matching these glob patterns (repeatable)",
			Destination: &cmd.only,
		},
		&cli.BoolFlag{
			Name:        "auto-pin",
			Usage:       "save each resolved UPC as the staple's preferred UPC",
			Destination: &cmd.autoPin,
		},
		&cli.BoolFlag{
			Name:        "confirm-pins",
			Usage:       "ask before saving each resolved UPC (default: on when stdin is a terminal)",
			Destination: &cmd.confirmPins,
		},
		&cli.StringFlag{
			Name:        "out",
			Aliases:     []string{"o"},
			Usage:       "proposal file to write",
			Value:       "proposal.json",
			Destination: &cmd.out,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "print the proposal as JSON",
			Destination: &cmd.jsonOut,
		},
	}

	flags = append(flags, &cli.StringSliceFlag{
		Name:        "list",
		Aliases:     []string{"l"},
		Usage:       "lists to include, in order (repeatable; default: active list)",
		Destination: &cmd.lists,
	})

	return &cli.Command{
		Name:      "propose",
		Usage:     "Resolve staples to UPCs and write a proposal file",
		UsageText: "propose [--list <name>]... [--location-id <id>] [--only <glob>]... [--auto-pin] [--out <file>]",
		Description: `Searches the catalog for every staple without a preferred UPC and writes a
proposal that 'kroget proposal apply' can send to the cart.

Staples with a preferred UPC are used as is. Staples that cannot be resolved
are kept with an empty UPC and a note.

On a terminal you are asked before each resolved UPC is saved as the
preferred one. --auto-pin saves them all and --confirm-pins=false saves none.`,
		Flags:  flags,
		Action: cmd.runPropose,
	}
}

func (cmd *ItemsCmd) ctx(ctx context.Context) context.Context {
	if cmd.list == "" {
		return ctx
	}
	return logging.WithList(ctx, cmd.list)
}

func (cmd *ItemsCmd) runAdd(ctx context.Context, c *cli.Command) error {
	name, err := requireArg(c, "name")
	if err != nil {
		return err
	}

	s := staple.Staple{
		Name:         name,
		Term:         cmd.term,
		Quantity:     cmd.quantity,
		PreferredUPC: cmd.upc,
		Modality:     cmd.flags.Config.Defaults.Modality,
	}
	if s.Term == "" {
		s.Term = name
	}
	if cmd.modality != "" {
		if s.Modality, err = staple.ParseModality(cmd.modality); err != nil {
			return err
		}
	}

	if err := cmd.app.Staples.Add(cmd.ctx(ctx), cmd.list, s); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Added %s\n", name)
	return nil
}

func (cmd *ItemsCmd) runList(ctx context.Context, c *cli.Command) error {
	staples, err := cmd.app.Staples.Staples(cmd.ctx(ctx), cmd.list)
	if err != nil {
		return err
	}

	w := c.Root().Writer
	if cmd.jsonOut {
		return iojson.WriteWith(w, os.Stderr, staples)
	}

	if len(staples) == 0 {
		_, _ = fmt.Fprintln(w, "No staples")
		return nil
	}

	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "NAME\tTERM\tQTY\tMODALITY\tPREFERRED UPC")
	for _, s := range staples {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", s.Name, s.Term, s.Quantity, s.Modality, orDash(s.PreferredUPC))
	}
	return tw.Flush()
}

func (cmd *ItemsCmd) runSet(ctx context.Context, c *cli.Command) error {
	name, err := requireArg(c, "name")
	if err != nil {
		return err
	}

	var patch staple.Patch
	if c.IsSet("term") {
		patch.Term = &cmd.term
	}
	if c.IsSet("quantity") {
		patch.Quantity = &cmd.quantity
	}
	if c.IsSet("modality") {
		m, err := staple.ParseModality(cmd.modality)
		if err != nil {
			return err
		}
		patch.Modality = &m
	}
	switch {
	case cmd.clearUPC:
		empty := ""
		patch.PreferredUPC = &empty
	case c.IsSet("upc"):
		patch.PreferredUPC = &cmd.upc
	}

	updated, err := cmd.app.Staples.Update(cmd.ctx(ctx), cmd.list, name, patch)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Updated %s\n", updated.Name)
	return nil
}

func (cmd *ItemsCmd) runRemove(ctx context.Context, c *cli.Command) error {
	id, err := requireArg(c, "name|upc")
	if err != nil {
		return err
	}
	if err := cmd.app.Staples.Remove(cmd.ctx(ctx), cmd.list, id); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Removed %s\n", id)
	return nil
}

func (cmd *ItemsCmd) runMove(ctx context.Context, c *cli.Command) error {
	id, err := requireArg(c, "name|upc")
	if err != nil {
		return err
	}
	if err := cmd.app.Staples.Move(cmd.ctx(ctx), cmd.list, cmd.to, id); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Moved %s to %s\n", id, cmd.to)
	return nil
}

func (cmd *ItemsCmd) runImport(ctx context.Context, c *cli.Command) error {
	staples, err := cmd.importer.Read(c.Root().Reader)
	if err != nil {
		return err
	}

	for _, s := range staples {
		if s.Term == "" {
			s.Term = s.Name
		}
		if err := cmd.app.Staples.Add(cmd.ctx(ctx), cmd.list, s); err != nil {
			return fmt.Errorf("import %q: %w", s.Name, err)
		}
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Imported %d staple(s)\n", len(staples))
	return nil
}

func (cmd *ItemsCmd) runPropose(ctx context.Context, c *cli.Command) error {
	opts := kroget.ProposeOptions{
		Lists:      cmd.lists,
		LocationID: cmd.locationID,
		Only:       cmd.only,
		AutoPin:    cmd.autoPin,
		Out:        cmd.out,
	}
	ask := isTerminalReader(c.Root().Reader)
	if c.IsSet("confirm-pins") {
		ask = cmd.confirmPins
	}
	if ask && !cmd.autoPin {
		opts.Confirm = askPin
	}

	res, err := cmd.app.Proposals.Propose(ctx, opts)
	if err != nil {
		return err
	}

	w := c.Root().Writer
	if cmd.jsonOut {
		return iojson.WriteWith(w, os.Stderr, res.Proposal)
	}

	if err := printProposal(w, res.Proposal, res.Pinned); err != nil {
		return err
	}
	if cmd.out != "" {
		_, _ = fmt.Fprintf(w, "\nWrote %s\n", cmd.out)
	}
	return nil
}
