// Package cmd implements the loanprep command line.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"loanprep/internal/config"
	"loanprep/internal/logging"
	"loanprep/internal/metrics"
	"loanprep/pkg/data"
	"loanprep/pkg/frame"
	"loanprep/pkg/pipeline"
	"loanprep/pkg/schema"
)

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// app carries the state shared by one invocation.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder *metrics.Recorder
	registry *schema.Registry
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{registry: schema.Default()}

	root := &cobra.Command{
		Use:   "loanprep",
		Short: "Prepare mortgage origination data for model training",
		Long: `loanprep turns Freddie Mac style loan-level files into numeric feature
tables: packed dates are split into year and month, loans are partitioned
by first payment year, missing values are filled from training statistics
and categorical fields are one-hot encoded.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	d := config.Default()
	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "config file (YAML)")
	pf.String("log-level", d.Logging.Level, "log level: debug, info, warn or error")
	pf.String("log-format", d.Logging.Format, "log format: text or json")
	pf.String("metrics-file", "", "write Prometheus metrics to this file when the run ends")

	root.AddCommand(newSplitCmd(a), newTidyCmd(a))
	return root
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"metrics-file": "metrics_file",
	"input":        "input.path",
	"delimiter":    "input.delimiter",
	"sheet":        "input.sheet",
	"split-year":   "split.year",
	"pre-process":  "split.pre_process",
	"tidy":         "split.tidy",
	"require-all":  "split.require_all_fields",
	"format":       "output.format",
	"output-dir":   "output.dir",
}

func (a *app) init(cmd *cobra.Command) error {
	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	v, err := config.NewViper(cfgFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	if a.cfg, err = config.Load(v); err != nil {
		return err
	}

	runID := uuid.NewString()
	a.logger = logging.WithRun(logging.New(a.cfg.Logging.Level, a.cfg.Logging.Format, cmd.ErrOrStderr()), runID)
	a.recorder = metrics.NewRecorder()
	a.logger.Debug("configuration loaded", slog.String("command", cmd.Name()), slog.String("config_file", cfgFile))
	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		fl := flags.Lookup(name)
		if fl == nil {
			continue
		}
		if err := v.BindPFlag(key, fl); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

func (a *app) newPipeline() *pipeline.Pipeline {
	return pipeline.New(
		pipeline.WithRegistry(a.registry),
		pipeline.WithLogger(a.logger),
		pipeline.WithObserver(a.recorder))
}

func (a *app) readInput() (*frame.Frame, error) {
	if a.cfg.Input.Path == "" {
		return nil, fmt.Errorf("no input file: set --input or input.path")
	}
	src := data.Source{
		Path:      a.cfg.Input.Path,
		Delimiter: []rune(a.cfg.Input.Delimiter)[0],
		Sheet:     a.cfg.Input.Sheet,
	}
	f, err := data.Load(src, a.registry)
	if err != nil {
		return nil, err
	}
	a.logger.Info("loaded input",
		slog.String("path", src.Path),
		slog.Int("rows", f.Nrow()),
		slog.Int("columns", f.Ncol()))
	return f, nil
}

// finish writes the metrics file, if configured, and returns err or the
// write failure.
func (a *app) finish(err error) error {
	if err != nil {
		a.logger.Error("run failed", logging.Err(err))
	}
	if a.cfg.MetricsFile == "" {
		return err
	}
	if werr := a.recorder.WriteTextfile(a.cfg.MetricsFile); werr != nil {
		a.logger.Error("failed to write metrics", slog.String("path", a.cfg.MetricsFile), logging.Err(werr))
		if err == nil {
			err = werr
		}
	}
	return err
}

func addInputFlags(cmd *cobra.Command) {
	d := config.Default()
	cmd.Flags().StringP("input", "i", "", "loan file to read (.csv or .xlsx)")
	cmd.Flags().String("delimiter", d.Input.Delimiter, "CSV field delimiter")
	cmd.Flags().String("sheet", "", "XLSX sheet to read (default first sheet)")
}
