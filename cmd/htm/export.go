package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/htm/internal/pipeline"
	"github.com/ajitpratap0/htm/pkg/compression"
	"github.com/ajitpratap0/htm/pkg/config"
	"github.com/ajitpratap0/htm/pkg/htmerrors"
	"github.com/ajitpratap0/htm/pkg/manifest"
)

// createOutput opens path for writing; "" and "-" mean stdout. The returned
// close function must be called.
func createOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		return nil, nil, htmerrors.Wrap(err, htmerrors.ErrorTypeFile, "failed to create output file").
			WithDetail("path", path)
	}
	return f, f.Close, nil
}

func (a *app) newCurvesCmd() *cobra.Command {
	var filter filterFlags
	cmd := &cobra.Command{
		Use:   "curves",
		Short: "Evaluate the matching records and export the curves",
		Long: `Evaluate every matching record over a temperature grid and write one row per
point (label, material, kind, isotope, source, unit, t, inv_t, value, in_range).
Points outside a record's validity range are flagged and logged, not dropped.`,
		Example: `  htm curves --material tungsten --kind diffusivity
  htm curves --material lipb --format parquet --compression zstd -o lipb.parquet
  htm curves --t-min 500 --t-max 1000 --points 100 -o all.csv.gz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := filter.criteria()
			if err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline) (err error) {
				// a compressed output name implies the compression
				if algo, _ := compression.ParseAlgorithm(cfg.Export.Compression); algo == compression.None {
					if algo := compression.FromExtension(cfg.Export.Output); algo != compression.None {
						cfg.Export.Compression = string(algo)
					}
				}
				w, closeOut, err := createOutput(cmd, cfg.Export.Output)
				if err != nil {
					return err
				}
				defer func() {
					if cerr := closeOut(); cerr != nil && err == nil {
						err = htmerrors.Wrap(cerr, htmerrors.ErrorTypeFile, "failed to close output file")
					}
				}()
				return p.Export(ctx, c, w)
			})
		},
	}
	filter.register(cmd.Flags())

	fs := cmd.Flags()
	fs.String("format", "", "Output format (csv, json, parquet, avro)")
	fs.String("compression", "", "Compression (none, gzip, zstd, lz4, s2, snappy)")
	fs.Int("compression-level", 0, "Compression level 1-9")
	fs.StringP("output", "o", "", "Output file (default stdout)")
	fs.Int("points", 0, "Points per curve")
	fs.Float64("t-min", 0, "Lower end of a common temperature grid in K")
	fs.Float64("t-max", 0, "Upper end of a common temperature grid in K")
	a.bind(fs.Lookup("format"), "export.format")
	a.bind(fs.Lookup("compression"), "export.compression")
	a.bind(fs.Lookup("compression-level"), "export.compression_level")
	a.bind(fs.Lookup("output"), "export.output")
	a.bind(fs.Lookup("points"), "evaluation.points")
	a.bind(fs.Lookup("t-min"), "evaluation.t_min")
	a.bind(fs.Lookup("t-max"), "evaluation.t_max")
	return cmd
}

func manifestFormat(flag, output string) (manifest.Format, error) {
	switch flag {
	case "":
		return manifest.FormatFromPath(output), nil
	case "yaml", "yml":
		return manifest.FormatYAML, nil
	case "json":
		return manifest.FormatJSON, nil
	default:
		return "", htmerrors.Newf(htmerrors.ErrorTypeConfig, "--format must be yaml or json, got %q", flag)
	}
}

func (a *app) newManifestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Work with record manifests",
	}

	var (
		filter filterFlags
		format string
		output string
	)
	dump := &cobra.Command{
		Use:   "dump",
		Short: "Write the matching records as a manifest",
		Long: `Write the matching records as a YAML or JSON manifest in canonical SI units.
Digitized records become self-contained tabulated entries, so the output can
be loaded with --manifest without the table files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := filter.criteria()
			if err != nil {
				return err
			}
			mf, err := manifestFormat(format, output)
			if err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context, _ *config.Config, p *pipeline.Pipeline) (err error) {
				w, closeOut, err := createOutput(cmd, output)
				if err != nil {
					return err
				}
				defer func() {
					if cerr := closeOut(); cerr != nil && err == nil {
						err = htmerrors.Wrap(cerr, htmerrors.ErrorTypeFile, "failed to close output file")
					}
				}()
				return p.DumpManifest(ctx, c, w, mf)
			})
		},
	}
	filter.register(dump.Flags())
	dump.Flags().StringVar(&format, "format", "", "Manifest format (yaml, json; default from --output)")
	dump.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.AddCommand(dump)
	return cmd
}

func (a *app) newStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Save the database to, or read it back from, SQLite or PostgreSQL",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "push",
		Short: "Load the database and save it to the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline) error {
				if err := p.Persist(ctx); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "saved %d records to %s\n", p.Registry().Len(), cfg.Store.Driver)
				return err
			})
		},
	})

	var (
		format string
		output string
	)
	pull := &cobra.Command{
		Use:   "pull",
		Short: "Read the stored database and write it as a manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			mf, err := manifestFormat(format, output)
			if err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context, _ *config.Config, p *pipeline.Pipeline) (err error) {
				db, err := p.Restore(ctx)
				if err != nil {
					return err
				}
				w, closeOut, err := createOutput(cmd, output)
				if err != nil {
					return err
				}
				defer func() {
					if cerr := closeOut(); cerr != nil && err == nil {
						err = htmerrors.Wrap(cerr, htmerrors.ErrorTypeFile, "failed to close output file")
					}
				}()
				return manifest.Encode(w, db, mf)
			})
		},
	}
	pull.Flags().StringVar(&format, "format", "", "Manifest format (yaml, json; default from --output)")
	pull.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.AddCommand(pull)
	return cmd
}
