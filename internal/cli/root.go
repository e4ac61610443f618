// Package cli implements the cellref command-line interface: running cell
// scripts and browsing the run journal.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/cellref/internal/journal"
	"github.com/mesh-intelligence/cellref/internal/paths"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootOptions holds global flag values and the state PersistentPreRunE
// builds from them.
type rootOptions struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string

	resolvedConfigDir string
	cfg               *viper.Viper
	log               *logrus.Logger
}

// NewRootCmd creates the top-level "cellref" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "cellref",
		Short: "Run scripts against single-value cells",
		Long: "cellref drives Cell values from YAML scripts, checks step expectations,\n" +
			"and keeps a SQLite journal of every run.",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "data directory (default: .cellref-db)")
	root.PersistentFlags().BoolVar(&opts.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(opts))
	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newHistoryCmd(opts))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cellref:", err)
		os.Exit(exitCode(err))
	}
}

// setup resolves the config directory, loads config.yaml and builds the
// logger.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(o.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}

	level := o.logLevel
	if level == "" {
		level = cfg.GetString(cfgKeyLogLevel)
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	log.SetLevel(lvl)
	log.WithField("config_dir", configDir).Debug("loaded config")

	o.resolvedConfigDir = configDir
	o.cfg = cfg
	o.log = log
	return nil
}

// openJournal opens the journal in the resolved data directory. The caller
// must Close it.
func (o *rootOptions) openJournal() (*journal.Journal, error) {
	dataDir, err := paths.ResolveDataDir(o.dataDir, o.cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	j, err := journal.Open(dataDir, o.log)
	if err != nil {
		return nil, sysError(err)
	}
	return j, nil
}

// systemErr marks failures of the environment rather than of the input.
type systemErr struct {
	err error
}

func (e *systemErr) Error() string { return e.err.Error() }
func (e *systemErr) Unwrap() error { return e.err }

func sysError(err error) error {
	return &systemErr{err: err}
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *systemErr
	if errors.As(err, &se) {
		return exitSysError
	}
	return exitUserError
}
