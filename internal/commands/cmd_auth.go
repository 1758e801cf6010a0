package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kroget/internal/core/styles"
	"github.com/hay-kot/kroget/internal/kroger/auth"
	"github.com/hay-kot/kroget/internal/kroget"
)

type AuthCmd struct {
	flags *Flags
	app   *kroget.App

	scopes  []string
	port    int
	timeout time.Duration
}

// NewAuthCmd creates the auth command.
func NewAuthCmd(flags *Flags, app *kroget.App) *AuthCmd {
	return &AuthCmd{flags: flags, app: app}
}

// Register adds the auth command to the application.
func (cmd *AuthCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "auth",
		Usage: "Log in to your Kroger account",
		Commands: []*cli.Command{
			{
				Name:      "login",
				Usage:     "Authorize kroget to update your cart",
				UsageText: "kroget auth login [--scopes <scope>]... [--port <port>]",
				Description: `Prints an authorization URL and waits for the browser redirect on a local
callback server. The resulting user token is saved to the data directory and
refreshed automatically.

The redirect URI registered for your Kroger application must match the
callback address.`,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:        "scopes",
						Usage:       "OAuth scopes to request",
						Value:       auth.LoginScopes,
						Destination: &cmd.scopes,
					},
					&cli.IntFlag{
						Name:        "port",
						Usage:       "callback server port (default: auth.callback_port)",
						Destination: &cmd.port,
					},
					&cli.DurationFlag{
						Name:        "timeout",
						Usage:       "how long to wait for the browser redirect",
						Value:       5 * time.Minute,
						Destination: &cmd.timeout,
					},
				},
				Action: cmd.runLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the saved user token and profile",
				Action: cmd.runStatus,
			},
		},
	})
	return app
}

func (cmd *AuthCmd) runLogin(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	port := cfg.Auth.CallbackPort
	authn := cmd.app.Auth
	if cmd.port > 0 {
		port = cmd.port
		if cfg.Kroger.RedirectURI == "" {
			authn = authn.WithRedirectURI(fmt.Sprintf("http://localhost:%d%s", port, cfg.Auth.CallbackPath))
		}
	}

	state := auth.NewState()
	server, err := auth.ListenForCallback(port, cfg.Auth.CallbackPath, state)
	if err != nil {
		return err
	}
	defer server.Close()

	w := c.Root().Writer
	_, _ = fmt.Fprintln(w, "Open this URL in your browser to log in:")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "  "+authn.AuthCodeURL(state, cmd.scopes))
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, styles.MutedStyle.Render("Waiting for redirect to "+authn.RedirectURI()))

	waitCtx, cancel := context.WithTimeout(ctx, cmd.timeout)
	defer cancel()

	code, err := server.Wait(waitCtx)
	if err != nil {
		return err
	}

	tok, err := authn.Exchange(ctx, code, cmd.scopes)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w, styles.SuccessStyle.Render("Logged in"))
	_, _ = fmt.Fprintf(w, "Scopes: %s\n", strings.Join(tok.Scopes, " "))
	return nil
}

func (cmd *AuthCmd) runStatus(ctx context.Context, c *cli.Command) error {
	w := c.Root().Writer

	tok, err := cmd.app.Auth.Saved(ctx)
	if errors.Is(err, auth.ErrNoToken) {
		_, _ = fmt.Fprintln(w, "Not logged in. Run 'kroget auth login'.")
		return nil
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "Obtained  %s\n", tok.ObtainedAt.Local().Format(time.DateTime))
	if tok.ExpiresAt.IsZero() {
		_, _ = fmt.Fprintln(w, "Expires   unknown")
	} else {
		_, _ = fmt.Fprintf(w, "Expires   %s\n", tok.ExpiresAt.Local().Format(time.DateTime))
	}
	_, _ = fmt.Fprintf(w, "Refresh   %t\n", tok.RefreshToken != "")
	_, _ = fmt.Fprintf(w, "Scopes    %s\n", strings.Join(tok.Scopes, " "))

	profile, err := cmd.app.Catalog.Profile(ctx)
	if err != nil {
		_, _ = fmt.Fprintln(w, styles.WarningStyle.Render("Profile   unavailable: "+err.Error()))
		return nil
	}
	_, _ = fmt.Fprintf(w, "Profile   %s\n", profile.ID)
	return nil
}
