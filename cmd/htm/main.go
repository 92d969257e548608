// Command htm queries the hydrogen transport property database and exports
// curves for plotting.
//
//	htm query --material tungsten --kind diffusivity
//	htm curves --material lipb --kind solubility --format parquet -o lipb.parquet
//	htm store push --store-driver postgres --store-dsn postgres://localhost/htm
//
// Every setting can come from the YAML config file (--config), an HTM_
// environment variable (HTM_EXPORT_FORMAT, HTM_STORE_DSN, ...) or a flag,
// flags winning over the environment and the environment over the file.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/htm/internal/pipeline"
	"github.com/ajitpratap0/htm/pkg/config"
	"github.com/ajitpratap0/htm/pkg/logger"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app carries the state shared by the commands.
type app struct {
	v          *viper.Viper
	configFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix("HTM")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "htm",
		Short: "htm - hydrogen transport materials database",
		Long: `htm is a curated database of hydrogen transport properties (diffusivity,
solubility, permeability, recombination and dissociation coefficients) of
fusion materials, with filtering and curve export.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configFile, "config", "c", "", "Path to YAML configuration file")
	pf.String("log-level", "", "Log level (debug, info, warn, error)")
	pf.String("tables-dir", "", "Directory of digitized tables")
	pf.StringSlice("manifest", nil, "Record manifest to load after the built-in materials (repeatable)")
	pf.StringSlice("materials", nil, "Built-in materials to load (default all)")
	pf.Int("workers", 0, "Materials built concurrently")
	pf.String("interpolation", "", "Default interpolation of manifest tables, e.g. inverse_log")
	pf.String("store-driver", "", "Store driver (sqlite, postgres)")
	pf.String("store-dsn", "", "Store file path or connection string")
	pf.Bool("metrics", false, "Print Prometheus metrics to stderr when done")
	pf.Bool("trace", false, "Export trace spans to stderr")
	a.bind(pf.Lookup("log-level"), "logging.level")
	a.bind(pf.Lookup("tables-dir"), "data.tables_dir")
	a.bind(pf.Lookup("manifest"), "data.manifests")
	a.bind(pf.Lookup("materials"), "data.materials")
	a.bind(pf.Lookup("workers"), "data.workers")
	a.bind(pf.Lookup("interpolation"), "evaluation.interpolation")
	a.bind(pf.Lookup("store-driver"), "store.driver")
	a.bind(pf.Lookup("store-dsn"), "store.dsn")
	a.bind(pf.Lookup("metrics"), "observability.metrics")
	a.bind(pf.Lookup("trace"), "observability.tracing")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "htm v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})
	root.AddCommand(
		newMaterialsCmd(),
		a.newQueryCmd(),
		a.newCurvesCmd(),
		a.newManifestCmd(),
		a.newStoreCmd(),
	)
	return root
}

func (a *app) bind(f *pflag.Flag, key string) {
	if err := a.v.BindPFlag(key, f); err != nil {
		panic(err)
	}
}

// loadConfig reads the config file, if any, over the defaults and applies
// environment variables and flags on top.
func (a *app) loadConfig() (*config.Config, error) {
	path := a.configFile
	if path == "" {
		path = a.v.GetString("config")
	}

	cfg := config.Default()
	if path != "" {
		if err := config.Load(path, cfg); err != nil {
			return nil, err
		}
	}
	a.overlay(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) overlay(cfg *config.Config) {
	str := func(key string, dst *string) {
		if a.v.IsSet(key) {
			*dst = a.v.GetString(key)
		}
	}
	strs := func(key string, dst *[]string) {
		if a.v.IsSet(key) {
			*dst = a.v.GetStringSlice(key)
		}
	}
	num := func(key string, dst *int) {
		if a.v.IsSet(key) {
			*dst = a.v.GetInt(key)
		}
	}
	flt := func(key string, dst *float64) {
		if a.v.IsSet(key) {
			*dst = a.v.GetFloat64(key)
		}
	}
	flag := func(key string, dst *bool) {
		if a.v.IsSet(key) {
			*dst = a.v.GetBool(key)
		}
	}

	str("logging.level", &cfg.Logging.Level)
	str("logging.encoding", &cfg.Logging.Encoding)
	str("data.tables_dir", &cfg.Data.TablesDir)
	str("data.tables_bucket", &cfg.Data.TablesBucket)
	str("data.tables_prefix", &cfg.Data.TablesPrefix)
	str("data.tables_provider", &cfg.Data.TablesProvider)
	str("data.region", &cfg.Data.Region)
	str("data.endpoint", &cfg.Data.Endpoint)
	str("data.credentials_file", &cfg.Data.CredentialsFile)
	strs("data.manifests", &cfg.Data.Manifests)
	strs("data.materials", &cfg.Data.Materials)
	num("data.workers", &cfg.Data.Workers)
	flt("evaluation.t_min", &cfg.Evaluation.Range[0])
	flt("evaluation.t_max", &cfg.Evaluation.Range[1])
	num("evaluation.points", &cfg.Evaluation.Points)
	str("evaluation.interpolation", &cfg.Evaluation.Interpolation)
	str("export.format", &cfg.Export.Format)
	str("export.compression", &cfg.Export.Compression)
	num("export.compression_level", &cfg.Export.CompressionLevel)
	str("export.output", &cfg.Export.Output)
	str("store.driver", &cfg.Store.Driver)
	str("store.dsn", &cfg.Store.DSN)
	flag("observability.metrics", &cfg.Observability.Metrics)
	flag("observability.tracing", &cfg.Observability.Tracing)
	flt("observability.sample_rate", &cfg.Observability.SampleRate)
}

// run builds a pipeline from the configuration, hands it to fn and prints
// the metrics afterwards when asked to.
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline) error) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging); err != nil {
		return err
	}
	log := logger.Component("cli")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p, err := pipeline.New(ctx, cfg, pipeline.WithLogger(logger.Get()))
	if err != nil {
		return err
	}

	err = fn(ctx, cfg, p)
	if cerr := p.Close(ctx); cerr != nil {
		log.Warn("failed to release resources", zap.Error(cerr))
	}
	if cfg.Observability.Metrics {
		if merr := dumpMetrics(cmd.ErrOrStderr()); merr != nil {
			log.Warn("failed to print metrics", zap.Error(merr))
		}
	}
	return err
}

// dumpMetrics writes the htm metric families in the Prometheus text format.
func dumpMetrics(w io.Writer) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "htm_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
