package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	arcade "github.com/splashkit/arcade-packager"
	"github.com/splashkit/arcade-packager/internal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(newApp()).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.Sprintf("<red>error:</> %s", err))
		os.Exit(arcade.ExitCode(err))
	}
}

type app struct {
	v      *viper.Viper
	log    *slog.Logger
	closer io.Closer
}

func newApp() *app {
	return &app{v: viper.New()}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "arcade",
		Short:         "splashkit arcade package manager",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.String("path", ".", "path to the games repo (manifest directory)")
	pf.String("work-dir", ".", "directory that is staged and archived")
	pf.String("config", "", "config file (default ./arcade.toml if present)")
	pf.CountP("verbose", "v", "more output, repeatable")
	pf.BoolP("quiet", "q", false, "only warnings and errors")
	pf.String("log-format", "text", "log format: text|json")
	pf.String("log-file", "", "write logs to a rotating file instead of stderr")
	pf.Bool("no-color", false, "disable colored output")

	root.AddCommand(
		a.buildCmd(),
		a.watchCmd(),
		a.serveCmd(),
		a.statusCmd(),
		a.newCmd(),
	)
	return root
}

func addBuildFlags(f *pflag.FlagSet) {
	f.String("cs-runtime", arcade.DefaultCSRuntime, "dotnet runtime architecture, empty to omit")
	f.String("cpp-prefix", "", "cpp compiler prefix")
	f.String("cpp", arcade.DefaultCPPCompiler, "cpp compiler")
	f.StringSlice("cpp-link", []string{arcade.DefaultCPPLinkFlag}, "linker flags for cpp games")
	f.String("archive-prefix", arcade.DefaultArchivePrefix, "archive file name prefix")
	f.StringSlice("exclude", nil, "pattern to leave out of the archive, repeatable")
	f.Bool("no-archive", false, "skip creating the archive")
	f.Bool("keep-going", false, "record failing games and continue with the rest")
	f.Bool("clean", false, "remove previous build output first")
}

// setup layers flags over ARCADE_* env vars over the config file, then
// builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	v := a.v
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	v.SetEnvPrefix("ARCADE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("arcade")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if v.GetBool("no-color") || !term.IsTerminal(int(os.Stdout.Fd())) {
		color.Disable()
	}

	verbosity := v.GetInt("verbose")
	if v.GetBool("quiet") {
		verbosity = -1
	}
	a.log, a.closer = internal.NewLogger(internal.LogOptions{
		Verbosity:  verbosity,
		Format:     v.GetString("log-format"),
		File:       v.GetString("log-file"),
		MaxSizeMB:  10,
		MaxBackups: 3,
	})
	return nil
}

func (a *app) config() arcade.Config {
	v := a.v
	cfg := arcade.DefaultConfig(v.GetString("path"), v.GetString("work-dir"))
	cfg.ConfigFile = v.ConfigFileUsed()
	cfg.Logger = a.log
	cfg.Runner = internal.NewExecRunner()
	cfg.Verbose = v.GetInt("verbose") > 0
	if v.IsSet("cs-runtime") {
		cfg.CSRuntime = v.GetString("cs-runtime")
	}
	cfg.CPPPrefix = v.GetString("cpp-prefix")
	if c := v.GetString("cpp"); c != "" {
		cfg.CPPCompiler = c
	}
	if v.IsSet("cpp-link") {
		cfg.CPPLinkFlags = v.GetStringSlice("cpp-link")
	}
	if p := v.GetString("archive-prefix"); p != "" {
		cfg.ArchivePrefix = p
	}
	cfg.ArchiveExclude = v.GetStringSlice("exclude")
	cfg.SkipArchive = v.GetBool("no-archive")
	cfg.KeepGoing = v.GetBool("keep-going")
	cfg.Clean = v.GetBool("clean")
	return cfg
}

func (a *app) buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Clone, build, script, catalog and archive every game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := arcade.Run(cmd.Context(), a.config())
			if res != nil {
				printBuilds(res.Builds)
				if res.Archive != "" {
					color.Printf("Archive <green>%s</>\n", res.Archive)
				}
			}
			return err
		},
	}
	addBuildFlags(cmd.Flags())
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Build, then rebuild whenever a manifest changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.config()
			cfg.SkipArchive = true
			interval, err := cmd.Flags().GetDuration("interval")
			if err != nil {
				return err
			}
			mw, err := arcade.NewManifestWatcher(cfg.ManifestDir, a.log, interval)
			if err != nil {
				return err
			}
			color.Printf("Watching <cyan>%s</> for manifest changes\n", cfg.ManifestDir)
			return mw.Watch(cmd.Context(), func(ctx context.Context) error {
				res, err := arcade.Run(ctx, cfg)
				if res != nil {
					printBuilds(res.Builds)
				}
				return err
			})
		},
	}
	addBuildFlags(cmd.Flags())
	cmd.Flags().Duration("interval", arcade.DefaultPollInterval, "manifest poll interval")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog, launch scripts and archives over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, err := cmd.Flags().GetString("addr")
			if err != nil {
				return err
			}
			color.Printf("Ready on <cyan>%s</>\n", addr)
			return arcade.NewServer(a.config(), addr).Serve(cmd.Context())
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("archive-prefix", arcade.DefaultArchivePrefix, "archive file name prefix")
	return cmd
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the result of the last run",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg := a.config()
			summary, err := arcade.ReadReport(cfg.ReportPath())
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					fmt.Println("No build report yet, run `arcade build` first")
					return nil
				}
				return err
			}
			color.Printf("Last run <grey>%s</> - <grey>%s</>\n", summary.Started, summary.Finished)
			for _, g := range summary.Games {
				switch g.Status {
				case arcade.StatusBuilt:
					color.Printf("  <green>%-20s</> %-7s %s (%s)\n", g.Name, g.Language, g.Binary, g.Duration)
				default:
					color.Printf("  <red>%-20s</> %-7s %s\n", g.Name, g.Language, g.Error)
				}
			}
			if summary.Archive != "" {
				color.Printf("Archive <cyan>%s</>\n", summary.Archive)
			}
			return nil
		},
	}
}

func printBuilds(builds []arcade.BuildResult) {
	for _, b := range builds {
		if b.OK() {
			color.Printf("<green>built</>  %s in %s\n", b.Game, b.Duration)
		} else {
			color.Printf("<red>failed</> %s: %s\n", b.Game, b.Err)
		}
	}
}

func (a *app) newCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Interactively write a new game manifest",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return errors.New("new needs an interactive terminal")
			}
			raw, err := promptManifest()
			if err != nil {
				return err
			}
			path, err := arcade.WriteManifest(filepath.Clean(a.v.GetString("path")), raw)
			if err != nil {
				return err
			}
			color.Printf("Wrote <green>%s</>\n", path)
			return nil
		},
	}
}
