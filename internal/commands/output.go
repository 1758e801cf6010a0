package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/kroget/internal/core/proposal"
	"github.com/hay-kot/kroget/internal/core/staple"
	"github.com/hay-kot/kroget/internal/core/styles"
	"github.com/hay-kot/kroget/internal/kroget"
)

var timeNow = time.Now

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func isTerminalReader(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && isTerminal(f)
}

// confirm asks a yes/no question. It fails on a non-interactive terminal so
// scripted runs must pass --yes.
func confirm(title string) (bool, error) {
	if !isTerminal(os.Stdin) {
		return false, fmt.Errorf("cannot confirm %q without a terminal; pass --yes", title)
	}

	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// askPin builds an interactive pin policy prompt.
func askPin(_ context.Context, s staple.Staple, upc string) bool {
	ok, err := confirm(fmt.Sprintf("Pin %s to UPC %s?", s.Name, upc))
	return err == nil && ok
}

func statusLabel(status kroget.PinStatus) string {
	switch status {
	case kroget.PinStatusPinned:
		return styles.PinnedStyle.Render(string(status))
	case kroget.PinStatusMissing:
		return styles.MissingStyle.Render(string(status))
	default:
		return styles.AutoStyle.Render(string(status))
	}
}

func printProposal(w io.Writer, p proposal.Proposal, pinned kroget.Pinned) error {
	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "#\tNAME\tQTY\tMODALITY\tUPC\tSTATUS\tNOTES")
	for i, it := range p.Items {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\t%s\n",
			i+1, it.Name, it.Quantity, it.Modality, orDash(it.UPC), statusLabel(pinned.Status(it)), it.Notes)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if missing := len(p.Unresolved()); missing > 0 {
		_, _ = fmt.Fprintln(w, styles.WarningStyle.Render(fmt.Sprintf("%d item(s) have no UPC and will fail to apply", missing)))
	}
	return nil
}

func printOutcome(w io.Writer, outcome kroget.ApplyOutcome) {
	_, _ = fmt.Fprintln(w, styles.SuccessStyle.Render(fmt.Sprintf("Added %d item(s)", outcome.Success)))
	if outcome.Failed > 0 {
		_, _ = fmt.Fprintln(w, styles.ErrorStyle.Render(fmt.Sprintf("Failed %d item(s)", outcome.Failed)))
		for _, msg := range outcome.Errors {
			_, _ = fmt.Fprintf(w, "  - %s\n", msg)
		}
	}
	if outcome.Halted {
		_, _ = fmt.Fprintln(w, styles.WarningStyle.Render("Stopped at the first failure"))
	}
}

func requireArg(c *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(c.Args().First())
	if v == "" {
		return "", fmt.Errorf("missing required argument <%s>", name)
	}
	return v, nil
}
