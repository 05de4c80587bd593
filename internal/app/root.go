package app

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"gtile/core/errs"
	"gtile/internal/config"
	"gtile/internal/logging"
)

// env is the state shared by every subcommand of one invocation.
type env struct {
	stdout, stderr io.Writer

	configPath string
	logPath    string
	logLevel   string
	logJSON    bool

	cfg     *config.Config
	log     *logging.Logger
	logFile *os.File
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *env) {
	e := &env{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:   "gtile",
		Short: "Whole-genome tile index: build, load and query",
		Long: `gtile indexes every 13-base tile of a reference genome and uses the
index to propose candidate loci for query sequences, to be refined by an
aligner.`,
		SilenceUsage:      true, // don't print usage on operational errors
		SilenceErrors:     true,
		PersistentPreRunE: e.setup,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&e.configPath, "config", "", "YAML config file")
	pf.StringVar(&e.logPath, "log", "", "write logs to this file instead of stderr")
	pf.StringVar(&e.logLevel, "loglevel", "", "log level: debug|info|warn|error [info]")
	pf.BoolVar(&e.logJSON, "log-json", false, "emit logs as JSON")

	root.AddCommand(
		newBuildCmd(e),
		newQueryCmd(e),
		newLoadCmd(e),
		newLocateCmd(e),
		newVersionCmd(e),
	)
	return root, e
}

// setup loads the config file and opens the logger.
func (e *env) setup(cmd *cobra.Command, _ []string) error {
	e.cfg = config.Default()
	if e.configPath != "" {
		c, err := config.Load(e.configPath)
		if err != nil {
			return err
		}
		e.cfg = c
	}
	if cmd.Flags().Changed("loglevel") {
		e.cfg.LogLevel = e.logLevel
	}
	if cmd.Flags().Changed("log-json") && e.logJSON {
		e.cfg.LogFormat = "json"
	}
	level, err := logging.ParseLevel(e.cfg.LogLevel)
	if err != nil {
		return err
	}

	var w io.Writer = e.stderr
	if e.logPath != "" {
		f, err := os.OpenFile(e.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errs.IO(err, "open log", e.logPath)
		}
		e.logFile = f
		w = f
	}
	e.log = logging.New(w, level, e.cfg.LogFormat == "json").WithCommand(cmd.Name())
	return nil
}

func (e *env) close() error {
	if e.logFile == nil {
		return nil
	}
	err := e.logFile.Close()
	e.logFile = nil
	return err
}

func (e *env) logger() *slog.Logger {
	if e.log == nil {
		return logging.Nop().Logger
	}
	return e.log.Logger
}
