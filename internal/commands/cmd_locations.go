package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kroget/internal/kroger"
	"github.com/hay-kot/kroget/internal/kroget"
	"github.com/hay-kot/kroget/pkg/iojson"
)

type LocationsCmd struct {
	flags *Flags
	app   *kroget.App

	query   kroger.LocationQuery
	jsonOut bool
	verify  bool
}

// NewLocationsCmd creates the locations command.
func NewLocationsCmd(flags *Flags, app *kroget.App) *LocationsCmd {
	return &LocationsCmd{flags: flags, app: app}
}

// Register adds the locations command to the application.
func (cmd *LocationsCmd) Register(app *cli.Command) *cli.Command {
	jsonFlag := &cli.BoolFlag{
		Name:        "json",
		Usage:       "output as JSON",
		Destination: &cmd.jsonOut,
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "locations",
		Usage: "Find stores and set the default store",
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Find stores near a ZIP code",
				UsageText: "kroget locations search --zip <zip> [--radius <miles>] [--limit <n>] [--chain <chain>]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "zip",
						Usage:       "ZIP code to search near",
						Required:    true,
						Destination: &cmd.query.ZipCode,
					},
					&cli.IntFlag{
						Name:        "radius",
						Usage:       "search radius in miles",
						Value:       10,
						Destination: &cmd.query.RadiusInMiles,
					},
					&cli.IntFlag{
						Name:        "limit",
						Usage:       "maximum number of results",
						Value:       10,
						Destination: &cmd.query.Limit,
					},
					&cli.StringFlag{
						Name:        "chain",
						Usage:       "restrict to a chain (e.g. KROGER, RALPHS)",
						Destination: &cmd.query.Chain,
					},
					jsonFlag,
				},
				Action: cmd.runSearch,
			},
			{
				Name:      "get",
				Usage:     "Show one store",
				UsageText: "kroget locations get <location-id> [--json]",
				Flags:     []cli.Flag{jsonFlag},
				Action:    cmd.runGet,
			},
			{
				Name:      "set-default",
				Usage:     "Use a store for proposals by default",
				UsageText: "kroget locations set-default <location-id> [--verify]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "verify",
						Usage:       "look the store up before saving",
						Destination: &cmd.verify,
					},
				},
				Action: cmd.runSetDefault,
			},
		},
	})
	return app
}

func (cmd *LocationsCmd) runSearch(ctx context.Context, c *cli.Command) error {
	locations, err := cmd.app.Catalog.SearchLocations(ctx, cmd.query)
	if err != nil {
		return err
	}

	w := c.Root().Writer
	if cmd.jsonOut {
		return iojson.WriteWith(w, os.Stderr, locations)
	}

	if len(locations) == 0 {
		_, _ = fmt.Fprintln(w, "No stores found")
		return nil
	}

	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "LOCATION ID\tCHAIN\tNAME\tADDRESS")
	for _, l := range locations {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.LocationID, l.Chain, l.Name, l.Address)
	}
	return tw.Flush()
}

func (cmd *LocationsCmd) runGet(ctx context.Context, c *cli.Command) error {
	id, err := requireArg(c, "location-id")
	if err != nil {
		return err
	}

	l, err := cmd.app.Catalog.GetLocation(ctx, id)
	if err != nil {
		return err
	}

	w := c.Root().Writer
	if cmd.jsonOut {
		return iojson.WriteWith(w, os.Stderr, l)
	}

	_, _ = fmt.Fprintf(w, "%s  %s (%s)\n%s\n", l.LocationID, l.Name, l.Chain, l.Address)
	return nil
}

func (cmd *LocationsCmd) runSetDefault(ctx context.Context, c *cli.Command) error {
	id, err := requireArg(c, "location-id")
	if err != nil {
		return err
	}

	label := id
	if cmd.verify {
		l, err := cmd.app.Catalog.GetLocation(ctx, id)
		if err != nil {
			return err
		}
		label = fmt.Sprintf("%s (%s)", id, l.Name)
	}

	if err := cmd.app.Catalog.SetDefaultLocation(ctx, id); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Default store set to %s\n", label)
	return nil
}
