package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kroget/internal/commands/setup"
)

type SetupCmd struct {
	flags   *Flags
	yes     bool
	answers setup.Answers
}

func NewSetupCmd(flags *Flags) *SetupCmd {
	return &SetupCmd{flags: flags}
}

func (cmd *SetupCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "setup",
		Aliases:   []string{"init"},
		Usage:     "Configure Kroger API credentials with a guided wizard",
		UsageText: "kroget setup [options]",
		Description: `Writes Kroger API credentials and defaults to the config file.

Examples:
  kroget setup
  kroget setup --client-id ... --client-secret ... --yes
  kroget setup --client-id ... --client-secret ... --location-id 01400441 --yes

Existing files are backed up to <config>.bak before they are updated.
Use --yes to accept values from flags and the current file without prompting.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "client-id", Usage: "Kroger client ID", Destination: &cmd.answers.ClientID},
			&cli.StringFlag{Name: "client-secret", Usage: "Kroger client secret", Destination: &cmd.answers.ClientSecret},
			&cli.StringFlag{Name: "redirect-uri", Usage: "OAuth redirect URI", Destination: &cmd.answers.RedirectURI},
			&cli.StringFlag{Name: "location-id", Usage: "default store location", Destination: &cmd.answers.LocationID},
			&cli.StringFlag{Name: "modality", Usage: "default modality (PICKUP, DELIVERY)", Destination: &cmd.answers.Modality},
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "accept defaults without prompting",
				Destination: &cmd.yes,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *SetupCmd) run(ctx context.Context, c *cli.Command) error {
	if !cmd.yes && !isTerminal(os.Stdin) {
		return fmt.Errorf("setup needs a terminal; pass --yes with --client-id and --client-secret")
	}

	wizard := setup.NewWizard(setup.WizardOptions{
		ConfigPath: cmd.flags.ConfigPath,
		Preset:     cmd.answers,
		Yes:        cmd.yes,
		Out:        c.Root().Writer,
	})

	err := wizard.Run(ctx)
	if errors.Is(err, setup.ErrCancelled) {
		_, _ = fmt.Fprintln(c.Root().Writer, "Setup cancelled")
		return nil
	}
	return err
}
