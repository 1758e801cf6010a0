package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kroget/internal/kroget"
)

// ListNameCompleter returns a ShellCompleteFunc that suggests staple list
// names as positional completions.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func ListNameCompleter(app *kroget.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if completingFlag(cmd) {
			cli.DefaultCompleteWithFlags(ctx, cmd)
			return
		}

		names, err := app.Staples.ListNames(ctx)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, name := range names {
			_, _ = fmt.Fprintln(w, name)
		}
	}
}

// SentSessionCompleter suggests recorded sent session ids, most recent first.
func SentSessionCompleter(app *kroget.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if completingFlag(cmd) {
			cli.DefaultCompleteWithFlags(ctx, cmd)
			return
		}

		sessions, err := app.Proposals.History(ctx)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, s := range sessions {
			_, _ = fmt.Fprintln(w, s.ID)
		}
	}
}

func completingFlag(cmd *cli.Command) bool {
	args := cmd.Args()
	if !args.Present() {
		return false
	}
	last := args.Slice()[args.Len()-1]
	return len(last) > 0 && last[0] == '-'
}
