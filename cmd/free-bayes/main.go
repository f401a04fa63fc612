package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/drakos74/free-bayes/infra/config"
	"github.com/drakos74/free-bayes/internal/data"
	"github.com/drakos74/free-bayes/internal/experiment"
	coinmath "github.com/drakos74/free-bayes/internal/math"
	"github.com/drakos74/free-bayes/internal/metrics"
	"github.com/drakos74/free-bayes/internal/report"
	"github.com/drakos74/free-bayes/internal/storage"
	"github.com/drakos74/free-bayes/internal/storage/file/json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "free-bayes",
		Short:         "Stratified k-fold cross validation of a discrete naive bayes classifier",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newRunCmd(), newShowCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		path string
		cfg  config.Experiment
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the cross validation on a dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path != "" {
				loaded, err := config.Load(path)
				if err != nil {
					return err
				}
				cfg = merge(loaded, cfg, cmd)
			}
			cfg = cfg.WithDefaults()
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.Debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	defaults := config.Default()
	flags := cmd.Flags()
	flags.StringVarP(&path, "config", "c", "", "config file (json or yaml)")
	flags.StringVarP(&cfg.Dataset, "dataset", "d", "", "path to the delimited dataset")
	flags.StringVar(&cfg.Separator, "separator", defaults.Separator, "column separator")
	flags.BoolVar(&cfg.Header, "header", false, "skip the first line of the dataset")
	flags.IntVarP(&cfg.Folds, "folds", "k", defaults.Folds, "number of folds")
	flags.IntVarP(&cfg.Workers, "workers", "w", 0, "parallel experiments (defaults to the number of folds)")
	flags.StringVar(&cfg.Trace, "trace", "", "trace output file (stdout if empty)")
	flags.StringVar(&cfg.Summary, "summary", "", "summary output file (stdout if empty)")
	flags.StringVar(&cfg.Storage, "storage", "", "directory to store json reports in")
	flags.BoolVar(&cfg.Baseline, "baseline", false, "compare against a random forest baseline")
	flags.IntVar(&cfg.Trees, "trees", defaults.Trees, "number of trees for the baseline")
	flags.BoolVar(&cfg.Debug, "debug", false, "enable debug logging")
	return cmd
}

// merge applies the explicitly set flags on top of the loaded config.
func merge(loaded, flags config.Experiment, cmd *cobra.Command) config.Experiment {
	set := func(name string) bool {
		return cmd.Flags().Changed(name)
	}
	if set("dataset") {
		loaded.Dataset = flags.Dataset
	}
	if set("separator") {
		loaded.Separator = flags.Separator
	}
	if set("header") {
		loaded.Header = flags.Header
	}
	if set("folds") {
		loaded.Folds = flags.Folds
	}
	if set("workers") {
		loaded.Workers = flags.Workers
	}
	if set("trace") {
		loaded.Trace = flags.Trace
	}
	if set("summary") {
		loaded.Summary = flags.Summary
	}
	if set("storage") {
		loaded.Storage = flags.Storage
	}
	if set("baseline") {
		loaded.Baseline = flags.Baseline
	}
	if set("trees") {
		loaded.Trees = flags.Trees
	}
	if set("debug") {
		loaded.Debug = flags.Debug
	}
	return loaded
}

func run(ctx context.Context, cfg config.Experiment, stdout io.Writer) error {
	ds, err := data.LoadFile(cfg.Dataset, cfg.Separator, cfg.Header)
	if err != nil {
		return err
	}
	log.Info().Str("dataset", cfg.Dataset).Int("records", len(ds)).Msg("loaded dataset")

	m, err := metrics.NewPrometheusMetrics(prometheus.NewRegistry())
	if err != nil {
		return err
	}

	opts := experiment.Options{
		Dataset:  cfg.Dataset,
		Folds:    cfg.Folds,
		Workers:  cfg.Workers,
		Baseline: cfg.Baseline,
		Trees:    cfg.Trees,
		Metrics:  m,
	}
	if cfg.Storage != "" {
		persistence, err := json.Shard(cfg.Storage)(storage.ReportDir)
		if err != nil {
			return err
		}
		opts.Storage = persistence
	}

	r, err := experiment.Run(ctx, ds, opts)
	if err != nil {
		return err
	}

	if err := write(cfg.Trace, stdout, r, report.Trace); err != nil {
		return err
	}
	if err := write(cfg.Summary, stdout, r, report.Summary); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Classification Accuracy : %s\n", coinmath.Percent(r.Summary.Mean))
	if cfg.Storage != "" {
		fmt.Fprintf(stdout, "Report : %s\n", r.ID)
	}
	return nil
}

func write(path string, stdout io.Writer, r *experiment.Report, render func(io.Writer, *experiment.Report) error) error {
	if path == "" {
		return render(stdout, r)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create '%s': %w", path, err)
	}
	defer f.Close()
	if err := render(f, r); err != nil {
		return fmt.Errorf("could not write '%s': %w", path, err)
	}
	log.Info().Str("file", path).Msg("written")
	return nil
}

func newShowCmd() *cobra.Command {
	var trace bool
	cmd := &cobra.Command{
		Use:   "show <storage-dir> <dataset> <report-id>",
		Short: "Print a stored report",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			persistence, err := json.Shard(args[0])(storage.ReportDir)
			if err != nil {
				return err
			}
			r, err := experiment.Load(persistence, storage.Key{Dataset: args[1], ID: args[2]})
			if err != nil {
				return err
			}
			if trace {
				if err := report.Trace(cmd.OutOrStdout(), r); err != nil {
					return err
				}
			}
			return report.Summary(cmd.OutOrStdout(), r)
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "print the experiment trace as well")
	return cmd
}
