// Package setup implements the guided first-run configuration of Kroger API
// credentials and defaults.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/hay-kot/kroget/internal/core/config"
	"github.com/hay-kot/kroget/internal/core/staple"
	"github.com/hay-kot/kroget/internal/core/styles"
)

// PortalURL is where Kroger developer applications are registered.
const PortalURL = "https://developer.kroger.com/"

// ErrCancelled is returned when the user declines to update an existing
// config.
var ErrCancelled = errors.New("setup cancelled")

// Answers are the values written to the config file.
type Answers struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	LocationID   string
	Modality     string
}

// WizardOptions configures the wizard behavior.
type WizardOptions struct {
	ConfigPath string

	// Preset values from flags. Empty values fall back to the config file.
	Preset Answers

	Yes bool // skip prompts, use file values and defaults
	Out io.Writer

	// Prompt asks for the answers interactively. Nil uses a huh form.
	Prompt func(ctx context.Context, a *Answers) error

	// ConfirmUpdate asks whether an existing config may be updated. Nil uses
	// a huh confirm.
	ConfirmUpdate func(path string) (bool, error)
}

// Wizard orchestrates the setup process.
type Wizard struct {
	opts WizardOptions
}

// NewWizard creates a new setup wizard.
func NewWizard(opts WizardOptions) *Wizard {
	if opts.Prompt == nil {
		opts.Prompt = promptForm
	}
	if opts.ConfirmUpdate == nil {
		opts.ConfirmUpdate = confirmUpdate
	}
	return &Wizard{opts: opts}
}

// Run executes the wizard.
func (w *Wizard) Run(ctx context.Context) error {
	out := w.opts.Out
	path := w.opts.ConfigPath

	existing, err := config.ReadFile(path)
	if err != nil {
		return err
	}

	if ConfigExists(path) && !w.opts.Yes {
		ok, err := w.opts.ConfirmUpdate(path)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCancelled
		}
	}

	answers := Answers{
		ClientID:     existing.Kroger.ClientID,
		ClientSecret: existing.Kroger.ClientSecret,
		RedirectURI:  existing.Kroger.RedirectURI,
		LocationID:   existing.Defaults.LocationID,
		Modality:     string(existing.Defaults.Modality),
	}
	answers.overlay(w.opts.Preset)
	if answers.RedirectURI == "" {
		answers.RedirectURI = existing.RedirectURI()
	}

	if answers.ClientID == "" || answers.ClientSecret == "" {
		printPortalSteps(out, answers.RedirectURI)
	}

	if !w.opts.Yes {
		if err := w.opts.Prompt(ctx, &answers); err != nil {
			return err
		}
	}

	answers.trim()
	switch {
	case answers.ClientID == "":
		return fmt.Errorf("%w: missing client id; pass --client-id or run without --yes", config.ErrConfiguration)
	case answers.ClientSecret == "":
		return fmt.Errorf("%w: missing client secret; pass --client-secret or run without --yes", config.ErrConfiguration)
	}

	modality, err := staple.ParseModality(answers.Modality)
	if err != nil {
		return err
	}

	backupPath, err := BackupConfig(path)
	if err != nil {
		return fmt.Errorf("backup config: %w", err)
	}
	if backupPath != "" {
		_, _ = fmt.Fprintln(out, styles.MutedStyle.Render("Backed up config to: "+backupPath))
	}

	kroger := existing.Kroger
	kroger.ClientID = answers.ClientID
	kroger.ClientSecret = answers.ClientSecret
	kroger.RedirectURI = answers.RedirectURI
	if kroger.BaseURL == config.DefaultBaseURL {
		kroger.BaseURL = ""
	}

	defaults := config.Defaults{LocationID: answers.LocationID, Modality: modality}
	if err := config.UpdateFile(path, kroger, defaults); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, styles.SuccessStyle.Render("Saved config: "+path))
	w.printNextSteps(answers)
	return nil
}

func (a *Answers) overlay(preset Answers) {
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	set(&a.ClientID, preset.ClientID)
	set(&a.ClientSecret, preset.ClientSecret)
	set(&a.RedirectURI, preset.RedirectURI)
	set(&a.LocationID, preset.LocationID)
	set(&a.Modality, preset.Modality)
}

func (a *Answers) trim() {
	a.ClientID = strings.TrimSpace(a.ClientID)
	a.ClientSecret = strings.TrimSpace(a.ClientSecret)
	a.RedirectURI = strings.TrimSpace(a.RedirectURI)
	a.LocationID = strings.TrimSpace(a.LocationID)
	a.Modality = strings.TrimSpace(a.Modality)
	if a.Modality == "" {
		a.Modality = string(staple.ModalityPickup)
	}
}

func printPortalSteps(out io.Writer, redirectURI string) {
	_, _ = fmt.Fprintln(out, styles.CommandHeaderStyle.Render("Kroger developer app setup"))
	_, _ = fmt.Fprintln(out, "1) Create a Kroger developer app (Production) at "+PortalURL)
	_, _ = fmt.Fprintln(out, "2) Enable the Products, Cart, Profile, and Location APIs.")
	_, _ = fmt.Fprintln(out, "3) Set the redirect URI to:")
	_, _ = fmt.Fprintln(out, "   "+redirectURI)
	_, _ = fmt.Fprintln(out)
}

func (w *Wizard) printNextSteps(a Answers) {
	out := w.opts.Out
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, styles.TitleStyle.Render("Next Steps"))

	step := 1
	if a.LocationID == "" {
		_, _ = fmt.Fprintf(out, "  %d. Run 'kroget locations search --zip <zip>' and 'kroget locations set-default <id>'\n", step)
		step++
	}
	_, _ = fmt.Fprintf(out, "  %d. Run 'kroget doctor' to verify your credentials\n", step)
	step++
	_, _ = fmt.Fprintf(out, "  %d. Run 'kroget auth login' to enable cart actions\n", step)
}

func confirmUpdate(path string) (bool, error) {
	var update bool
	err := huh.NewConfirm().
		Title("Config file already exists").
		Description(path + "\nUpdate it? (a backup will be created)").
		Value(&update).
		Run()
	return update, err
}

func promptForm(ctx context.Context, a *Answers) error {
	if a.Modality == "" {
		a.Modality = string(staple.ModalityPickup)
	}

	required := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", field)
			}
			return nil
		}
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Kroger Client ID").
			Value(&a.ClientID).
			Validate(required("client id")),
		huh.NewInput().
			Title("Kroger Client Secret").
			EchoMode(huh.EchoModePassword).
			Value(&a.ClientSecret).
			Validate(required("client secret")),
		huh.NewInput().
			Title("Redirect URI").
			Description("Must match the redirect URI registered for your app").
			Value(&a.RedirectURI),
		huh.NewInput().
			Title("Default location ID").
			Description("Optional; see 'kroget locations search'").
			Value(&a.LocationID),
		huh.NewSelect[string]().
			Title("Default modality").
			Options(huh.NewOptions(string(staple.ModalityPickup), string(staple.ModalityDelivery))...).
			Value(&a.Modality),
	))

	return form.RunWithContext(ctx)
}
