// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the root command: configuration loading, logging, the
// process storage scope, and the subcommands.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/scaffold/internal/config"
	"github.com/toeirei/scaffold/internal/db"
	"github.com/toeirei/scaffold/internal/logging"
)

var version = "dev"   // this will be set by the linker
var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)
var cfgFile string
var verbose bool

var (
	appConfig config.Config
	// storageFactory builds the proxies of every scope the process creates.
	storageFactory db.Factory
	// processScope lives until the command finishes; its proxies are closed
	// by shutdownServices.
	processScope *db.Scope
	logCloser    io.Closer
)

func setupDefaultServices(cmd *cobra.Command, args []string) error {
	// Load optional config file argument from cli
	optionalConfigPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	appConfig, err = config.LoadConfig[config.Config](cmd, config.Defaults(), optionalConfigPath)
	// A "file not found" error is expected on first run, so we handle it specifically.
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		if optionalConfigPath == nil {
			// First run, or the config file was deleted. Create a default one.
			if writeErr := config.WriteConfigFile(&appConfig, false); writeErr != nil {
				// The app can run on defaults.
				log.Warnf("could not write default config file: %v", writeErr)
			}
		}
	} else if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if verbose {
		appConfig.Log.Level = "debug"
		db.SetDebug(true)
	}
	closer, err := logging.Setup(appConfig.Log)
	if err != nil {
		return fmt.Errorf("error configuring logging: %w", err)
	}
	logCloser = closer

	if appConfig.InstancePath != "" {
		if err := os.MkdirAll(appConfig.InstancePath, 0o755); err != nil {
			return fmt.Errorf("create instance path: %w", err)
		}
	}

	opts, err := db.NewOptions(appConfig.Database.Type, appConfig.Database.Dsn, appConfig.Database.Mode)
	if err != nil {
		return err
	}
	storageFactory = db.OptionsFactory(opts)
	processScope = db.NewScope(storageFactory)
	logging.Debugf("cli: storage %s at %s (%s)", opts.Backend(), opts.Location(), opts.TxMode())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(db.WithScope(ctx, processScope))
	return nil
}

// shutdownServices ends the process scope and closes the log file. It is
// safe to call more than once.
func shutdownServices() error {
	var errs []error
	if processScope != nil {
		if err := processScope.End(); err != nil {
			errs = append(errs, err)
		}
	}
	if logCloser != nil {
		if err := logCloser.Close(); err != nil {
			errs = append(errs, err)
		}
		logCloser = nil
	}
	return errors.Join(errs...)
}

// Execute runs the CLI entrypoint. The main package should call this
// function and handle process exit.
func Execute() error {
	defer func() {
		if err := shutdownServices(); err != nil {
			log.Errorf("Error during shutdown: %v", err)
		}
	}()
	return NewRootCmd().ExecuteContext(context.Background())
}

func applyDefaultFlags(cmd *cobra.Command) {
	// pflag panics on duplicate flag definitions, so check first.
	if cmd.PersistentFlags().Lookup("database.type") == nil {
		cmd.PersistentFlags().String("database.type", "sqlite", "Database type (sqlite, postgres, mysql)")
	}
	if cmd.PersistentFlags().Lookup("database.dsn") == nil {
		cmd.PersistentFlags().String("database.dsn", "", "Database connection string (DSN) or SQLite path")
	}
	if cmd.PersistentFlags().Lookup("database.mode") == nil {
		cmd.PersistentFlags().String("database.mode", "autocommit", "Transaction mode (autocommit, manual)")
	}
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	// Only proceed if the user has explicitly set the --config flag.
	if cmd.Flags().Changed("config") {
		path, err := cmd.Flags().GetString("config")
		if err != nil {
			return nil, fmt.Errorf("could not read --config flag: %w", err)
		}

		// If the flag is set but the value is empty, do nothing.
		if path == "" {
			return nil, nil
		}

		// Make sure the user-provided file exists to avoid unwanted behavior.
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
		}
		return &path, nil
	}
	return nil, nil
}

// NewRootCmd creates and configures a new root cobra command.
// This function is used to create the main application command as well as
// fresh instances for isolated testing.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scaffold",
		Short: "Scaffold is a small web application with a pluggable storage backend.",
		Long: `Scaffold serves a registration/login front end backed by SQLite,
PostgreSQL or MySQL. Every command talks to the database through a single
storage proxy that lives for the duration of the command.`,
		SilenceUsage:      true,
		PersistentPreRunE: setupDefaultServices,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return shutdownServices()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	v, c, d := resolveBuildVersion(nil)
	compositeVersion := v
	if c != "" && c != "dev" {
		compositeVersion = compositeVersion + " (" + c + ")"
	}
	if d != "" {
		compositeVersion = compositeVersion + " built: " + d
	}
	cmd.Version = compositeVersion

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output (debug logs, including DB logs)")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	applyDefaultFlags(cmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		// No services needed.
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "version: %s\n", v)
			_, _ = fmt.Fprintf(out, "commit: %s\n", c)
			if d != "" {
				_, _ = fmt.Fprintf(out, "built: %s\n", d)
			}
		},
	}

	cmd.AddCommand(
		newInitDBCmd(),
		newServeCmd(),
		newExecCmd(),
		newScriptCmd(),
		newMaintainCmd(),
		newUserCmd(),
		versionCmd,
	)
	return cmd
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If `info` is nil, it reads build info from
// the runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := version
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	if info == nil {
		if infoLocal, found := debug.ReadBuildInfo(); found {
			info = infoLocal
		}
	}

	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		// If Main doesn't contain the version (some build paths), try to
		// find our module in the dependencies and use that version.
		if (resolvedVersion == "dev" || resolvedVersion == "(devel)") && info.Deps != nil {
			for _, dep := range info.Deps {
				if dep.Path == "github.com/toeirei/scaffold" && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	// As a last resort, show the commit provided via ldflags.
	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}

	return resolvedVersion, resolvedCommit, resolvedDate
}
