package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kroget/internal/core/proposal"
	"github.com/hay-kot/kroget/internal/core/staple"
	"github.com/hay-kot/kroget/internal/core/upc"
	"github.com/hay-kot/kroget/internal/core/validate"
	"github.com/hay-kot/kroget/internal/kroget"
)

// CartSource is recorded as the session source for direct cart adds.
const CartSource = "cart add"

type CartCmd struct {
	flags *Flags
	app   *kroget.App

	upc        string
	productID  string
	locationID string
	quantity   int
	modality   string
	apply      bool
	yes        bool
}

// NewCartCmd creates the cart command.
func NewCartCmd(flags *Flags, app *kroget.App) *CartCmd {
	return &CartCmd{flags: flags, app: app}
}

// Register adds the cart command to the application.
func (cmd *CartCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "cart",
		Usage: "Add single items to your cart",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add one product to the cart",
				UsageText: "kroget cart add (--upc <upc> | --product-id <id>) [--quantity <n>] [--modality <m>] [--apply] [--yes]",
				Description: `Adds a single product by UPC, or by product id whose first UPC is used.
Without --apply the item is only shown. Applied adds are recorded in the sent history.`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "upc",
						Usage:       "UPC to add",
						Destination: &cmd.upc,
					},
					&cli.StringFlag{
						Name:        "product-id",
						Usage:       "product id to look up the UPC from",
						Destination: &cmd.productID,
					},
					&cli.StringFlag{
						Name:        "location-id",
						Usage:       "store location used for the product lookup",
						Destination: &cmd.locationID,
					},
					&cli.IntFlag{
						Name:        "quantity",
						Aliases:     []string{"q"},
						Usage:       "quantity",
						Value:       1,
						Destination: &cmd.quantity,
					},
					&cli.StringFlag{
						Name:        "modality",
						Aliases:     []string{"m"},
						Usage:       "fulfillment method (PICKUP, DELIVERY)",
						Destination: &cmd.modality,
					},
					&cli.BoolFlag{
						Name:        "apply",
						Usage:       "send the item to the cart (default: dry run)",
						Destination: &cmd.apply,
					},
					&cli.BoolFlag{
						Name:        "yes",
						Aliases:     []string{"y"},
						Usage:       "skip the confirmation prompt",
						Destination: &cmd.yes,
					},
				},
				Action: cmd.runAdd,
			},
		},
	})
	return app
}

func (cmd *CartCmd) item(ctx context.Context) (proposal.Item, string, error) {
	if (cmd.upc == "") == (cmd.productID == "") {
		return proposal.Item{}, "", validate.Errorf("pass exactly one of --upc or --product-id")
	}
	if err := validate.PositiveField("quantity", cmd.quantity); err != nil {
		return proposal.Item{}, "", err
	}

	modality := cmd.flags.Config.Defaults.Modality
	if cmd.modality != "" {
		m, err := staple.ParseModality(cmd.modality)
		if err != nil {
			return proposal.Item{}, "", err
		}
		modality = m
	}

	loc, err := cmd.app.Catalog.Location(ctx, cmd.locationID)
	if err != nil {
		return proposal.Item{}, "", err
	}

	it := proposal.Item{
		Name:         cmd.upc,
		Quantity:     cmd.quantity,
		Modality:     modality,
		UPC:          cmd.upc,
		Source:       proposal.SourcePreferred,
		Sources:      []string{CartSource},
		Alternatives: []proposal.Alternative{},
	}

	if cmd.productID != "" {
		payload, err := cmd.app.Catalog.GetProduct(ctx, cmd.productID, loc)
		if err != nil {
			return proposal.Item{}, "", err
		}
		upcs, err := upc.Extract(payload)
		if err != nil {
			return proposal.Item{}, "", err
		}
		it.Name = cmd.productID
		it.UPC = upc.Pick(upcs)
		it.Source = proposal.SourceSearch
		if it.UPC == "" {
			return proposal.Item{}, "", fmt.Errorf("product %s has no UPC", cmd.productID)
		}
	}

	return it, loc, nil
}

func (cmd *CartCmd) runAdd(ctx context.Context, c *cli.Command) error {
	it, loc, err := cmd.item(ctx)
	if err != nil {
		return err
	}

	w := c.Root().Writer
	_, _ = fmt.Fprintf(w, "%d x %s (%s)\n", it.Quantity, it.UPC, it.Modality)

	if !cmd.apply {
		_, _ = fmt.Fprintln(w, "Dry run. Pass --apply to add it to your cart.")
		return nil
	}

	if !cmd.yes {
		ok, err := confirm(fmt.Sprintf("Add %s to your cart?", it.UPC))
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(w, "Cancelled")
			return nil
		}
	}

	p := proposal.New(timeNow(), loc)
	p.Items = append(p.Items, it)
	p.Sources = append(p.Sources, CartSource)

	res, err := cmd.app.Proposals.ApplyAndRecord(ctx, p, true)
	if err != nil {
		return err
	}

	printOutcome(w, res.Outcome)
	if !res.Outcome.OK() {
		return cli.Exit("", 1)
	}
	return nil
}
