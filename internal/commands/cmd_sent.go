package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kroget/internal/core/proposal"
	"github.com/hay-kot/kroget/internal/core/sent"
	"github.com/hay-kot/kroget/internal/core/styles"
	"github.com/hay-kot/kroget/internal/core/validate"
	"github.com/hay-kot/kroget/internal/kroget"
	"github.com/hay-kot/kroget/pkg/iojson"
)

type SentCmd struct {
	flags *Flags
	app   *kroget.App

	jsonOut bool
}

// NewSentCmd creates the sent command.
func NewSentCmd(flags *Flags, app *kroget.App) *SentCmd {
	return &SentCmd{flags: flags, app: app}
}

// Register adds the sent command to the application.
func (cmd *SentCmd) Register(app *cli.Command) *cli.Command {
	jsonFlag := &cli.BoolFlag{
		Name:        "json",
		Usage:       "output as JSON",
		Destination: &cmd.jsonOut,
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "sent",
		Usage: "Show the history of items sent to the cart",
		Description: fmt.Sprintf(`Every apply run is recorded as a session. The %d most recent sessions
are kept.`, sent.MaxSessions),
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List recorded sessions, most recent first",
				Flags:   []cli.Flag{jsonFlag},
				Action:  cmd.runList,
			},
			{
				Name:          "show",
				Usage:         "Show one session",
				UsageText:     "kroget sent show <session-id>",
				Description:   "The session id may be abbreviated to any unique prefix.",
				Flags:         []cli.Flag{jsonFlag},
				Action:        cmd.runShow,
				ShellComplete: SentSessionCompleter(cmd.app),
			},
		},
	})
	return app
}

func (cmd *SentCmd) runList(ctx context.Context, c *cli.Command) error {
	sessions, err := cmd.app.Proposals.History(ctx)
	if err != nil {
		return err
	}

	w := c.Root().Writer
	if cmd.jsonOut {
		if sessions == nil {
			sessions = []sent.Session{}
		}
		return iojson.WriteWith(w, os.Stderr, sessions)
	}

	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(w, "No sessions recorded")
		return nil
	}

	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "ID\tSTARTED\tLOCATION\tLISTS\tOK\tFAILED")
	for _, s := range sessions {
		ok, failed := s.Counts()
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n",
			shortID(s.ID),
			s.StartedAt.Local().Format(time.DateTime),
			orDash(s.LocationID),
			orDash(strings.Join(s.Sources, ",")),
			ok, failed)
	}
	return tw.Flush()
}

func (cmd *SentCmd) runShow(ctx context.Context, c *cli.Command) error {
	id, err := requireArg(c, "session-id")
	if err != nil {
		return err
	}

	s, err := findSession(ctx, cmd.app.Proposals, id)
	if err != nil {
		return err
	}

	w := c.Root().Writer
	if cmd.jsonOut {
		return iojson.WriteWith(w, os.Stderr, s)
	}

	ok, failed := s.Counts()
	_, _ = fmt.Fprintf(w, "Session   %s\n", s.ID)
	_, _ = fmt.Fprintf(w, "Started   %s\n", s.StartedAt.Format(proposal.TimeFormat))
	_, _ = fmt.Fprintf(w, "Duration  %s\n", s.Duration())
	_, _ = fmt.Fprintf(w, "Location  %s\n", orDash(s.LocationID))
	_, _ = fmt.Fprintf(w, "Lists     %s\n", orDash(strings.Join(s.Sources, ", ")))
	_, _ = fmt.Fprintf(w, "Result    %d ok, %d failed\n\n", ok, failed)

	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "NAME\tUPC\tQTY\tMODALITY\tSTATUS\tERROR")
	for _, it := range s.Items {
		status := styles.SuccessStyle.Render(string(it.Status))
		if it.Status != proposal.StatusSuccess {
			status = styles.ErrorStyle.Render(string(it.Status))
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			it.Name, orDash(it.UPC), it.Quantity, it.Modality, status, it.ErrorMessage())
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type sessionSource interface {
	History(ctx context.Context) ([]sent.Session, error)
	Session(ctx context.Context, id string) (sent.Session, error)
}

// findSession looks a session up by full id, then by unique prefix.
func findSession(ctx context.Context, src sessionSource, id string) (sent.Session, error) {
	s, err := src.Session(ctx, id)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, sent.ErrNotFound) {
		return sent.Session{}, err
	}

	sessions, err := src.History(ctx)
	if err != nil {
		return sent.Session{}, err
	}

	var matches []sent.Session
	for _, s := range sessions {
		if strings.HasPrefix(s.ID, id) {
			matches = append(matches, s)
		}
	}

	switch len(matches) {
	case 0:
		return sent.Session{}, fmt.Errorf("session %q: %w", id, sent.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return sent.Session{}, validate.Errorf("session id %q is ambiguous (%d matches)", id, len(matches))
	}
}
