package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kroget/internal/core/styles"
	"github.com/hay-kot/kroget/internal/kroger/openapi"
)

type OpenAPICmd struct {
	dir string
}

// NewOpenAPICmd creates the openapi command.
func NewOpenAPICmd() *OpenAPICmd {
	return &OpenAPICmd{}
}

// Register adds the openapi command to the application.
func (cmd *OpenAPICmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "openapi",
		Usage: "OpenAPI utilities",
		Commands: []*cli.Command{
			{
				Name:        "check",
				Usage:       "Check that required API operations exist in local OpenAPI specs",
				UsageText:   "kroget openapi check [--dir <dir>]",
				Description: "Reads the Kroger location, products, cart, and identity specs from --dir.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "dir",
						Usage:       "directory of spec files",
						Value:       "openapi",
						Destination: &cmd.dir,
					},
				},
				Action: cmd.runCheck,
			},
		},
	})
	return app
}

func (cmd *OpenAPICmd) runCheck(_ context.Context, c *cli.Command) error {
	w := c.Root().Writer

	ok := true
	for _, r := range openapi.Check(cmd.dir, openapi.Required) {
		switch {
		case errors.Is(r.Err, openapi.ErrMissing):
			ok = false
			_, _ = fmt.Fprintf(w, "%s %s missing\n", styles.ErrorStyle.Render("FAIL"), r.File)
		case r.Err != nil:
			ok = false
			_, _ = fmt.Fprintf(w, "%s %s %v\n", styles.ErrorStyle.Render("FAIL"), r.File, r.Err)
		case len(r.Missing) > 0:
			ok = false
			missing := make([]string, 0, len(r.Missing))
			for _, op := range r.Missing {
				missing = append(missing, op.String())
			}
			_, _ = fmt.Fprintf(w, "%s %s missing: %s\n", styles.ErrorStyle.Render("FAIL"), r.File, strings.Join(missing, ", "))
		default:
			_, _ = fmt.Fprintf(w, "%s %s\n", styles.SuccessStyle.Render("OK"), r.File)
		}
	}

	if !ok {
		return cli.Exit("", 1)
	}
	return nil
}
