package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/kroget/internal/core/proposal"
	"github.com/hay-kot/kroget/internal/core/styles"
	"github.com/hay-kot/kroget/internal/kroget"
	"github.com/hay-kot/kroget/pkg/iojson"
)

type ProposalCmd struct {
	flags *Flags
	app   *kroget.App

	apply       bool
	yes         bool
	stopOnError bool
	jsonOut     bool
}

// NewProposalCmd creates the proposal command.
func NewProposalCmd(flags *Flags, app *kroget.App) *ProposalCmd {
	return &ProposalCmd{flags: flags, app: app}
}

// Register adds the proposal command to the application.
func (cmd *ProposalCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "proposal",
		Usage: "Review and apply proposal files",
		Commands: []*cli.Command{
			{
				Name:      "apply",
				Usage:     "Add a proposal's items to your cart",
				UsageText: "kroget proposal apply <file> [--apply] [--yes] [--stop-on-error]",
				Description: `Shows what would be added to the cart. Pass --apply to send the items.

Every attempt is recorded in the sent history, including failures.`,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "apply",
						Usage:       "send the items to the cart (default: dry run)",
						Destination: &cmd.apply,
					},
					&cli.BoolFlag{
						Name:        "yes",
						Aliases:     []string{"y"},
						Usage:       "skip the confirmation prompt",
						Destination: &cmd.yes,
					},
					&cli.BoolFlag{
						Name:        "stop-on-error",
						Usage:       "stop at the first item that fails",
						Destination: &cmd.stopOnError,
					},
				},
				Action: cmd.runApply,
			},
			{
				Name:      "show",
				Usage:     "Show a proposal",
				UsageText: "kroget proposal show <file> [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.jsonOut,
					},
				},
				Action: cmd.runShow,
			},
		},
	})
	return app
}

func loadProposal(c *cli.Command) (proposal.Proposal, error) {
	path, err := requireArg(c, "file")
	if err != nil {
		return proposal.Proposal{}, err
	}
	p, err := proposal.Load(path)
	if err != nil {
		return proposal.Proposal{}, err
	}
	if err := p.Validate(); err != nil {
		return proposal.Proposal{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func (cmd *ProposalCmd) runApply(ctx context.Context, c *cli.Command) error {
	p, err := loadProposal(c)
	if err != nil {
		return err
	}

	w := c.Root().Writer
	if err := printProposal(w, p, kroget.PinnedFromProposal(p)); err != nil {
		return err
	}

	if !cmd.apply {
		_, _ = fmt.Fprintln(w, styles.MutedStyle.Render("\nDry run. Pass --apply to add these items to your cart."))
		return nil
	}

	if !cmd.yes {
		ok, err := confirm(fmt.Sprintf("Add %d item(s) to your cart?", len(p.Items)))
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(w, "Cancelled")
			return nil
		}
	}

	res, err := cmd.app.Proposals.ApplyAndRecord(ctx, p, cmd.stopOnError)
	if err != nil {
		if len(res.Outcome.Results) > 0 {
			printOutcome(w, res.Outcome)
		}
		return err
	}

	_, _ = fmt.Fprintln(w)
	printOutcome(w, res.Outcome)
	_, _ = fmt.Fprintf(w, "Recorded session %s\n", res.Session.ID)

	if !res.Outcome.OK() {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *ProposalCmd) runShow(_ context.Context, c *cli.Command) error {
	p, err := loadProposal(c)
	if err != nil {
		return err
	}

	w := c.Root().Writer
	if cmd.jsonOut {
		return iojson.WriteWith(w, os.Stderr, p)
	}

	md := proposalMarkdown(p)
	if !isTerminal(os.Stdout) || w != os.Stdout {
		_, err := fmt.Fprint(w, md)
		return err
	}

	width := 100
	if tw, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && tw > 0 {
		width = tw
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return err
	}

	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, out)
	return err
}

func proposalMarkdown(p proposal.Proposal) string {
	pinned := kroget.PinnedFromProposal(p)

	var b strings.Builder
	b.WriteString("# Proposal\n\n")
	fmt.Fprintf(&b, "- **Created:** %s\n", p.CreatedAt.Format(proposal.TimeFormat))
	fmt.Fprintf(&b, "- **Location:** %s\n", orDash(p.LocationID))
	if len(p.Sources) > 0 {
		fmt.Fprintf(&b, "- **Lists:** %s\n", strings.Join(p.Sources, ", "))
	}
	fmt.Fprintf(&b, "- **Items:** %d (%d without a UPC)\n\n", len(p.Items), len(p.Unresolved()))

	b.WriteString("| # | Name | Qty | Modality | UPC | Status |\n")
	b.WriteString("|---|------|-----|----------|-----|--------|\n")
	for i, it := range p.Items {
		fmt.Fprintf(&b, "| %d | %s | %d | %s | %s | %s |\n",
			i+1, it.Name, it.Quantity, it.Modality, orDash(it.UPC), pinned.Status(it))
	}

	for _, it := range p.Items {
		if it.Notes == "" && len(it.Alternatives) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", it.Name)
		if it.Notes != "" {
			fmt.Fprintf(&b, "> %s\n\n", it.Notes)
		}
		for _, alt := range it.Alternatives {
			fmt.Fprintf(&b, "- `%s` %s\n", alt.UPC, alt.Description)
		}
	}

	return b.String()
}
