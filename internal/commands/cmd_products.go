package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kroget/internal/core/upc"
	"github.com/hay-kot/kroget/internal/kroget"
	"github.com/hay-kot/kroget/pkg/iojson"
)

type ProductsCmd struct {
	flags *Flags
	app   *kroget.App

	locationID string
	limit      int
	jsonOut    bool
	upcsOnly   bool
}

// NewProductsCmd creates the products command.
func NewProductsCmd(flags *Flags, app *kroget.App) *ProductsCmd {
	return &ProductsCmd{flags: flags, app: app}
}

// Register adds the products command to the application.
func (cmd *ProductsCmd) Register(app *cli.Command) *cli.Command {
	locationFlag := &cli.StringFlag{
		Name:        "location-id",
		Usage:       "store location (default: saved default store)",
		Destination: &cmd.locationID,
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "products",
		Usage: "Search the product catalog",
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search products by term",
				UsageText: "kroget products search <term> [--location-id <id>] [--limit <n>] [--json]",
				Flags: []cli.Flag{
					locationFlag,
					&cli.IntFlag{
						Name:        "limit",
						Usage:       "maximum number of results",
						Value:       10,
						Destination: &cmd.limit,
					},
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.jsonOut,
					},
				},
				Action: cmd.runSearch,
			},
			{
				Name:      "get",
				Usage:     "Show a product's raw detail payload",
				UsageText: "kroget products get <product-id> [--location-id <id>] [--upcs]",
				Flags: []cli.Flag{
					locationFlag,
					&cli.BoolFlag{
						Name:        "upcs",
						Usage:       "print only the UPCs found in the payload",
						Destination: &cmd.upcsOnly,
					},
				},
				Action: cmd.runGet,
			},
		},
	})
	return app
}

func (cmd *ProductsCmd) runSearch(ctx context.Context, c *cli.Command) error {
	term := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if term == "" {
		return fmt.Errorf("missing required argument <term>")
	}

	loc, err := cmd.app.Catalog.Location(ctx, cmd.locationID)
	if err != nil {
		return err
	}

	products, err := cmd.app.Catalog.SearchProducts(ctx, term, loc, cmd.limit)
	if err != nil {
		return err
	}

	w := c.Root().Writer
	if cmd.jsonOut {
		return iojson.WriteWith(w, os.Stderr, products)
	}

	if len(products) == 0 {
		_, _ = fmt.Fprintf(w, "No products found for %q\n", term)
		return nil
	}

	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "PRODUCT ID\tUPC\tBRAND\tDESCRIPTION\tPRICE")
	for _, p := range products {
		price := "-"
		if v, ok := p.Price(); ok {
			price = fmt.Sprintf("$%.2f", v)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.ProductID, orDash(upc.Pick(p.EmbeddedUPCs())), orDash(p.Brand), p.Description, price)
	}
	return tw.Flush()
}

func (cmd *ProductsCmd) runGet(ctx context.Context, c *cli.Command) error {
	id, err := requireArg(c, "product-id")
	if err != nil {
		return err
	}

	loc, err := cmd.app.Catalog.Location(ctx, cmd.locationID)
	if err != nil {
		return err
	}

	payload, err := cmd.app.Catalog.GetProduct(ctx, id, loc)
	if err != nil {
		return err
	}

	w := c.Root().Writer
	if cmd.upcsOnly {
		upcs, err := upc.Extract(payload)
		if err != nil {
			return err
		}
		for _, u := range upcs {
			_, _ = fmt.Fprintln(w, u)
		}
		return nil
	}

	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return fmt.Errorf("decode product: %w", err)
	}
	return iojson.WriteWith(w, os.Stderr, v)
}
