package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kroget/internal/commands"
	"github.com/hay-kot/kroget/internal/core/config"
	"github.com/hay-kot/kroget/internal/core/logging"
	"github.com/hay-kot/kroget/internal/core/styles"
	"github.com/hay-kot/kroget/internal/kroger"
	"github.com/hay-kot/kroget/internal/kroger/auth"
	"github.com/hay-kot/kroget/internal/kroget"
	"github.com/hay-kot/kroget/internal/store/jsonfile"
	"github.com/hay-kot/kroget/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// ldflags aren't set for `go install module@version`; fall back to the
	// module version and VCS metadata from runtime/debug.BuildInfo.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		flags     = &commands.Flags{}
		app       = &kroget.App{}
	)

	root := commands.NewRootCmd(flags, app)
	root.Version = build()

	root.Before = func(ctx context.Context, c *cli.Command) (context.Context, error) {
		if err := config.LoadEnvFile(flags.EnvFile); err != nil {
			return ctx, err
		}

		cfg, err := config.Parse(flags.ConfigPath, flags.DataDir)
		if err != nil {
			return ctx, fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Validate(); err != nil && !commands.ToleratesInvalidConfig(c.Args().Slice()) {
			return ctx, fmt.Errorf("load config: invalid config: %w", err)
		}
		flags.Config = cfg

		logFile := flags.LogFile
		if logFile == "" {
			logFile = cfg.LogFile()
		}

		logger, closer, err := logutils.New(flags.LogLevel, logFile, logging.ContextHook{})
		if err != nil {
			return ctx, fmt.Errorf("setup logger: %w", err)
		}
		log.Logger = logger
		logCloser = closer

		if palette, ok := styles.GetPalette(cfg.TUI.Theme); ok {
			styles.SetTheme(palette)
		}

		var (
			staples    = jsonfile.NewListStore(cfg.ListsFile(), cfg.LegacyStaplesFile())
			sentStore  = jsonfile.NewSentStore(cfg.SentFile())
			settings   = jsonfile.NewSettingsStore(cfg.SettingsFile())
			tokenStore = jsonfile.NewTokenStore(cfg.TokensFile())
		)

		client := kroger.NewClient(kroger.Options{
			BaseURL: cfg.Kroger.BaseURL,
			Timeout: cfg.HTTP.Timeout,
		}, logging.Component("kroger"))

		authn := auth.New(auth.Config{
			ClientID:     cfg.Kroger.ClientID,
			ClientSecret: cfg.Kroger.ClientSecret,
			BaseURL:      cfg.Kroger.BaseURL,
			RedirectURI:  cfg.RedirectURI(),
		}, tokenStore, logging.Component("auth"))

		// Commands already hold a pointer to app
		*app = *kroget.NewApp(cfg, staples, sentStore, settings, authn, client)

		log.Debug().Str("config", flags.ConfigPath).Str("data_dir", cfg.DataDir).Msg("kroget started")
		return ctx, nil
	}

	root.After = func(ctx context.Context, c *cli.Command) error {
		if logCloser != nil {
			logCloser()
		}
		return nil
	}

	exitCode := 0
	if err := root.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
