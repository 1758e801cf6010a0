package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kroget/internal/core/doctor"
	"github.com/hay-kot/kroget/internal/core/styles"
	"github.com/hay-kot/kroget/internal/kroget"
	"github.com/hay-kot/kroget/pkg/iojson"
)

type DoctorCmd struct {
	flags   *Flags
	app     *kroget.App
	format  string
	offline bool
	autofix bool
}

func NewDoctorCmd(flags *Flags, app *kroget.App) *DoctorCmd {
	return &DoctorCmd{flags: flags, app: app}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your kroget setup",
		UsageText:   "kroget doctor [options]",
		Description: "Runs diagnostic checks on configuration, data files, the saved login, and the Kroger API.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "offline",
				Usage:       "skip live API probes",
				Destination: &cmd.offline,
			},
			&cli.BoolFlag{
				Name:        "autofix",
				Usage:       "automatically fix issues (e.g., data file permissions)",
				Destination: &cmd.autofix,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	results := cmd.app.Doctor.RunChecks(ctx, cmd.flags.ConfigPath, !cmd.offline, cmd.autofix)
	tally := doctor.Count(results)

	var err error
	if cmd.format == "json" {
		err = iojson.WriteWith(c.Root().Writer, os.Stderr, doctorReport{
			Healthy: tally.Healthy(),
			Summary: tally,
			Checks:  results,
		})
	} else {
		err = cmd.printReport(c.Root().Writer, results, tally)
	}

	if err != nil {
		return err
	}
	if !tally.Healthy() {
		return cli.Exit("", 1)
	}
	return nil
}

type doctorReport struct {
	Healthy bool            `json:"healthy"`
	Summary doctor.Tally    `json:"summary"`
	Checks  []doctor.Result `json:"checks"`
}

func statusIcon(s doctor.Status) string {
	switch s {
	case doctor.StatusPass:
		return styles.SuccessStyle.Render("✔")
	case doctor.StatusWarn:
		return styles.WarningStyle.Render("●")
	default:
		return styles.ErrorStyle.Render("✘")
	}
}

func (cmd *DoctorCmd) printReport(w io.Writer, results []doctor.Result, tally doctor.Tally) error {
	var b strings.Builder

	b.WriteString("\n" + styles.CommandHeaderStyle.Render("Kroget Doctor") + "\n")
	b.WriteString(styles.DividerStyle.Render(strings.Repeat("─", 40)) + "\n\n")

	for _, result := range results {
		b.WriteString(styles.TitleStyle.Render(result.Name) + "\n")
		for _, item := range result.Items {
			line := "  " + statusIcon(item.Status) + " " + item.Label
			if item.Detail != "" {
				line += " " + styles.MutedStyle.Render(item.Detail)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s  %s  %s\n",
		styles.SuccessStyle.Render(fmt.Sprintf("%d passed", tally.Passed)),
		styles.WarningStyle.Render(fmt.Sprintf("%d warnings", tally.Warned)),
		styles.ErrorStyle.Render(fmt.Sprintf("%d failed", tally.Failed)),
	)

	if tally.Fixable > 0 && !cmd.autofix {
		b.WriteString("\n" + styles.MutedStyle.Render(
			fmt.Sprintf("%d issue(s) can be fixed with 'kroget doctor --autofix'", tally.Fixable)) + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
