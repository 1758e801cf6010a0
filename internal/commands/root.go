package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kroget/internal/kroget"
)

const rootDescription = `Kroget keeps lists of grocery staples and turns them into cart proposals
against the Kroger API.

A proposal resolves each staple to a product UPC, preferring the UPC pinned to
the staple and otherwise searching the catalog. Proposals are reviewed before
anything is added to the cart, and every apply is recorded in the sent history.

Run 'kroget' with no arguments to open the interactive proposal view.
Run 'kroget setup' to configure API credentials.`

// NewRootCmd builds the kroget command tree. flags is populated when the
// command runs; the caller installs the Before hook that fills app.
func NewRootCmd(flags *Flags, app *kroget.App) *cli.Command {
	root := &cli.Command{
		Name:                  "kroget",
		Usage:                 "Keep your Kroger cart stocked with staples",
		UsageText:             "kroget [global options] command [command options]",
		Description:           rootDescription,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("KROGET_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/kroget.log)",
				Sources:     cli.EnvVars("KROGET_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("KROGET_CONFIG"),
				Value:       DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("KROGET_DATA_DIR"),
				Value:       DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "env-file",
				Usage:       "dotenv file with KROGER_* credentials",
				Sources:     cli.EnvVars("KROGET_ENV_FILE"),
				Value:       ".env",
				Destination: &flags.EnvFile,
			},
		},
	}

	tuiCmd := NewTuiCmd(flags, app)

	root = NewSetupCmd(flags).Register(root)
	root = NewStaplesCmd(flags, app).Register(root)
	root = NewListsCmd(flags, app).Register(root)
	root = NewProposalCmd(flags, app).Register(root)
	root = NewSentCmd(flags, app).Register(root)
	root = NewProductsCmd(flags, app).Register(root)
	root = NewLocationsCmd(flags, app).Register(root)
	root = NewCartCmd(flags, app).Register(root)
	root = NewAuthCmd(flags, app).Register(root)
	root = NewDoctorCmd(flags, app).Register(root)
	root = NewConfigValidateCmd(flags).Register(root)
	root = NewOpenAPICmd().Register(root)
	root = tuiCmd.Register(root)

	// Register TUI flags on root command
	root.Flags = append(root.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	root.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'kroget --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	return root
}
