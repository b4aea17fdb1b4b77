package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-isatty"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	rerrors "github.com/rascal-lang/rascalc/errors"
)

// app holds the configuration and standard streams shared by every command.
type app struct {
	v      *viper.Viper
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	log    zerolog.Logger
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		v:      viper.New(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		log:    zerolog.Nop(),
	}
}

func (a *app) execute(args []string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	return root.Execute()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rascalc",
		Short:         "Compile Rascal programs to MEPA",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.configure(cmd)
		},
	}
	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is .rascalc.yaml in the working or home directory)")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.Bool("no-color", false, "disable colored output")

	root.AddCommand(
		a.compileCmd(),
		a.runCmd(),
		a.astCmd(),
		a.disCmd(),
		a.versionCmd(),
	)
	return root
}

// configure binds flags, environment and the optional config file, then
// builds the logger.
func (a *app) configure(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("RASCALC")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if file := a.v.GetString("config"); file != "" {
		a.v.SetConfigFile(file)
	} else {
		a.v.SetConfigName(".rascalc")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			a.v.AddConfigPath(home)
		}
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	if a.v.GetBool("no-color") {
		color.NoColor = true
	}

	level, err := zerolog.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level %q", a.v.GetString("log-level"))
	}
	a.log = zerolog.New(zerolog.ConsoleWriter{
		Out:     a.stderr,
		NoColor: !a.colorize(a.stderr),
	}).Level(level).With().Timestamp().Logger()
	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debug().Str("file", used).Msg("loaded config")
	}
	return nil
}

// colorize reports whether output written to w should carry colors.
func (a *app) colorize(w io.Writer) bool {
	if a.v.GetBool("no-color") {
		return false
	}
	return isTerminal(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// report prints err to stderr. Compiler and VM errors are rendered with
// their source context; accumulated errors are printed one after another.
func (a *app) report(err error) {
	useColor := a.colorize(a.stderr)
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.WrappedErrors() {
			fmt.Fprintln(a.stderr, rerrors.Render(e, useColor))
		}
		return
	}
	fmt.Fprintln(a.stderr, rerrors.Render(err, useColor))
}
