package commands

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kroget/internal/core/logging"
	"github.com/hay-kot/kroget/internal/kroget"
	"github.com/hay-kot/kroget/internal/store/jsonfile"
	"github.com/hay-kot/kroget/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	app   *kroget.App

	list       string
	locationID string
	out        string
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *kroget.App) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
	}
}

// Flags returns the TUI flags. They are registered on both the tui command
// and the root command, which runs the TUI by default. They are local so they
// do not collide with subcommand flags of the same name.
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "list",
			Local:       true,
			Usage:       "staple list to propose from (default: active list)",
			Destination: &cmd.list,
		},
		&cli.StringFlag{
			Name:        "location-id",
			Local:       true,
			Usage:       "store location (default: saved default location)",
			Destination: &cmd.locationID,
		},
		&cli.StringFlag{
			Name:        "out",
			Local:       true,
			Usage:       "also write each regenerated proposal to this file",
			Destination: &cmd.out,
		},
	}
}

// Register adds the tui command to the application.
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "tui",
		Usage: "Review and apply a proposal interactively",
		Description: `Builds a proposal for a staple list and shows it next to the staples and the
alternatives of the selected item.

Keys: r regenerate, p pin the selected alternative, d remove the selected item,
a apply to cart, tab switch pane, q quit.`,
		Flags:  cmd.Flags(),
		Action: cmd.Run,
	})
	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, _ *cli.Command) error {
	cfg := cmd.flags.Config

	location, err := cmd.app.Catalog.Location(ctx, cmd.locationID)
	if err != nil {
		return err
	}

	_, tokErr := cmd.app.Auth.Saved(ctx)

	watcher, err := jsonfile.NewFileWatcher(cfg.DataDir, logging.Component("watcher"))
	if err != nil {
		return fmt.Errorf("watch data dir: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close file watcher")
		}
	}()

	changes, err := watcher.Watch(ctx, filepath.Base(cfg.ListsFile()))
	if err != nil {
		return err
	}

	model := tui.New(ctx, cmd.app.Proposals, cmd.app.Staples, kroget.StorePinner{Store: cmd.app.Staples}, tui.Options{
		List:         cmd.list,
		LocationID:   location,
		LoggedIn:     tokErr == nil,
		ProposalPath: cmd.out,
		Changes:      changes,
		Logger:       logging.Component("tui"),
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
