package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kroget/internal/core/config"
	"github.com/hay-kot/kroget/internal/core/styles"
	"github.com/hay-kot/kroget/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "kroget config validate [options]",
				Description: "Validates the configuration file, checking URLs, limits, and file paths.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type validationErrorJSON struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	errs := validationErrors(cmd.flags.Config.ValidateDeep(cmd.flags.ConfigPath))
	warnings := cmd.flags.Config.Warnings()

	if cmd.format == "json" {
		out := struct {
			Valid    bool                       `json:"valid"`
			Errors   []validationErrorJSON      `json:"errors,omitempty"`
			Warnings []config.ValidationWarning `json:"warnings,omitempty"`
		}{
			Valid:    len(errs) == 0,
			Errors:   errs,
			Warnings: warnings,
		}
		if err := iojson.WriteWith(c.Root().Writer, os.Stderr, out); err != nil {
			return err
		}
		if len(errs) > 0 {
			return cli.Exit("", 1)
		}
		return nil
	}

	w := c.Root().Writer
	for _, warn := range warnings {
		line := warn.Category + ": " + warn.Message
		if warn.Item != "" {
			line = fmt.Sprintf("%s (%s): %s", warn.Category, warn.Item, warn.Message)
		}
		_, _ = fmt.Fprintln(w, styles.WarningStyle.Render("● "+line))
	}

	for _, e := range errs {
		line := e.Message
		if e.Field != "" {
			line = e.Field + ": " + e.Message
		}
		_, _ = fmt.Fprintln(w, styles.ErrorStyle.Render("✘ "+line))
	}

	if len(errs) == 0 {
		_, _ = fmt.Fprintln(w, styles.SuccessStyle.Render("✔ Configuration is valid"))
		return nil
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%d error(s) found\n", len(errs))
	return cli.Exit("", 1)
}

// validationErrors flattens a criterio field error set into printable
// entries. Other errors become a single entry without a field.
func validationErrors(err error) []validationErrorJSON {
	if err == nil {
		return nil
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		out := make([]validationErrorJSON, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, validationErrorJSON{Field: fe.Field, Message: fe.Err.Error()})
		}
		return out
	}

	return []validationErrorJSON{{Message: err.Error()}}
}
