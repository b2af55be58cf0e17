// Command azfda charts the average number of active ingredients in the drug
// labels openFDA holds for one manufacturer.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/linesd/az-fda/pkg/analysis"
	"github.com/linesd/az-fda/pkg/config"
	"github.com/linesd/az-fda/pkg/render"
	"github.com/spf13/cobra"
)

// options are the command-line flags. Flags left unset keep the config value.
type options struct {
	configPath   string
	baseURL      string
	manufacturer string
	plotType     string
	saveFig      bool
	analysisType string
	figuresDir   string
	logLevel     string
	pretty       bool
	redisAddr    string
	sqlitePath   string
	metricsFile  string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "azfda",
		Short: "Average active ingredients per year from openFDA drug labels",
		Long: `azfda retrieves every openFDA drug label for a manufacturer, counts the
active ingredients on each label and reports the yearly average, either
across all products (generic) or split by route of administration (route).

The results table is always printed. With --save-fig the chart is written
to the figures directory as <analysis>_<plot>.png.

Example:
  azfda -m "AstraZeneca Pharmaceuticals LP" -a route -p line`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, stdout, stderr)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "azfda.yaml", "Preset file")

	flags.StringVarP(&opts.baseURL, "base-url", "u", "", "Base url for API query")
	flags.StringVarP(&opts.manufacturer, "manufacturer", "m", "", "Drug manufacturer")

	flags.StringVarP(&opts.plotType, "plot-type", "p", "", "Type of plot to produce ("+choices(render.ChartKinds())+")")
	flags.BoolVarP(&opts.saveFig, "save-fig", "s", false, "Whether to save the figure")
	flags.StringVarP(&opts.figuresDir, "figures-dir", "o", "", "Directory saved figures are written to")

	flags.StringVarP(&opts.analysisType, "analysis-type", "a", "", "The type of analysis to undertake ("+choices(analysis.Kinds())+")")

	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.BoolVar(&opts.pretty, "pretty", false, "Human-readable console logs")

	flags.StringVar(&opts.redisAddr, "redis-addr", "", "Publish results to this Redis server")
	flags.StringVar(&opts.sqlitePath, "sqlite-path", "", "Archive results in this SQLite database")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the run")

	return cmd
}

// choices lists the accepted values of a flag for its help text.
func choices[K ~string](kinds []K) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// loadConfig reads the preset file and applies the flags the user set.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = opts.baseURL
	}
	if flags.Changed("manufacturer") {
		cfg.Manufacturer = opts.manufacturer
	}
	if flags.Changed("plot-type") {
		cfg.PlotType = opts.plotType
	}
	if flags.Changed("save-fig") {
		cfg.SaveFig = opts.saveFig
	}
	if flags.Changed("figures-dir") {
		cfg.FiguresDir = opts.figuresDir
	}
	if flags.Changed("analysis-type") {
		cfg.AnalysisType = opts.analysisType
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("pretty") {
		cfg.Logging.Pretty = opts.pretty
	}
	if flags.Changed("redis-addr") {
		cfg.Store.RedisAddr = opts.redisAddr
	}
	if flags.Changed("sqlite-path") {
		cfg.Store.SQLitePath = opts.sqlitePath
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = opts.metricsFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
