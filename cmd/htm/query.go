package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ajitpratap0/htm/internal/pipeline"
	"github.com/ajitpratap0/htm/pkg/config"
	"github.com/ajitpratap0/htm/pkg/database"
	"github.com/ajitpratap0/htm/pkg/htmerrors"
	"github.com/ajitpratap0/htm/pkg/json"
	"github.com/ajitpratap0/htm/pkg/materials"
	"github.com/ajitpratap0/htm/pkg/property"
)

// filterFlags are the record selection flags shared by query, curves and
// manifest dump.
type filterFlags struct {
	material  []string
	isotope   []string
	author    []string
	source    []string
	year      []int
	kind      []string
	name      []string
	substring bool
	fold      bool
	exclude   bool
}

func (f *filterFlags) register(fs *pflag.FlagSet) {
	fs.StringSliceVar(&f.material, "material", nil, "Material tag, e.g. tungsten (repeatable)")
	fs.StringSliceVar(&f.isotope, "isotope", nil, "Isotope: H, D or T (repeatable)")
	fs.StringSliceVar(&f.author, "author", nil, "First author (repeatable)")
	fs.BoolVar(&f.fold, "author-fold", false, "Match --author ignoring case")
	fs.StringSliceVar(&f.source, "source", nil, "Citation key (repeatable)")
	fs.IntSliceVar(&f.year, "year", nil, "Publication year (repeatable)")
	fs.StringSliceVar(&f.kind, "kind", nil, "Property kind, e.g. diffusivity or d (repeatable)")
	fs.StringSliceVar(&f.name, "name", nil, "Record label (repeatable)")
	fs.BoolVar(&f.substring, "name-contains", false, "Match --name as a substring of the label")
	fs.BoolVar(&f.exclude, "exclude", false, "Drop the matching records instead of keeping them")
}

func (f *filterFlags) criteria() (database.Criteria, error) {
	c := database.Criteria{
		Material:   f.material,
		Author:     f.author,
		FoldAuthor: f.fold,
		Source:     f.source,
		Year:       f.year,
		Name:       f.name,
		Exclude:    f.exclude,
	}
	if f.substring {
		c.NameMatch = database.NameSubstring
	}
	for _, s := range f.isotope {
		iso, err := property.ParseIsotope(s)
		if err != nil {
			return database.Criteria{}, err
		}
		c.Isotope = append(c.Isotope, iso)
	}
	for _, s := range f.kind {
		k, err := property.ParseKind(s)
		if err != nil {
			return database.Criteria{}, err
		}
		c.Kind = append(c.Kind, k)
	}
	return c, nil
}

func newMaterialsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "materials",
		Short: "List the built-in materials",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "MATERIAL\tRECORDS\tDIGITIZED\tDESCRIPTION")
			for _, m := range materials.Catalog() {
				digitized := 0
				for _, r := range m.Records {
					if r.Digitized() {
						digitized++
					}
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", m.Name, len(m.Records), digitized, m.Description)
			}
			return tw.Flush()
		},
	}
}

// recordView is the JSON form of a record in query output.
type recordView struct {
	Key      string              `json:"key"`
	Label    string              `json:"label"`
	Material string              `json:"material"`
	Kind     property.Kind       `json:"kind"`
	Isotope  property.Isotope    `json:"isotope"`
	Source   string              `json:"source"`
	Author   string              `json:"author,omitempty"`
	Year     int                 `json:"year,omitempty"`
	Note     string              `json:"note,omitempty"`
	Law      property.Law        `json:"law,omitempty"`
	Unit     string              `json:"unit"`
	Range    property.Range      `json:"range"`
	Mode     string              `json:"mode"`
	Fit      *property.Arrhenius `json:"fit,omitempty"`
	Points   int                 `json:"points,omitempty"`
}

func viewOf(p *property.Property) recordView {
	v := recordView{
		Key:      p.Key().String(),
		Label:    p.Label(),
		Material: p.Material(),
		Kind:     p.Kind(),
		Isotope:  p.Isotope(),
		Source:   p.Source(),
		Author:   p.Author(),
		Year:     p.Year(),
		Note:     p.Note(),
		Law:      p.Law(),
		Unit:     p.Unit(),
		Range:    p.Range(),
		Mode:     p.Mode().String(),
	}
	if fit, ok := p.Fit(); ok {
		v.Fit = &fit
	}
	if tb, ok := p.Table(); ok {
		v.Points = len(tb.T)
	}
	return v
}

func (a *app) newQueryCmd() *cobra.Command {
	var (
		filter filterFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "List the records matching the filter",
		Example: `  htm query --material tungsten --isotope H
  htm query --kind permeability --author reiter --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := filter.criteria()
			if err != nil {
				return err
			}
			if output != "table" && output != "json" {
				return htmerrors.Newf(htmerrors.ErrorTypeConfig, "--output must be table or json, got %q", output)
			}
			return a.run(cmd, func(ctx context.Context, _ *config.Config, p *pipeline.Pipeline) error {
				db, err := p.Query(ctx, c)
				if err != nil {
					return err
				}
				if output == "json" {
					return printJSON(cmd.OutOrStdout(), db)
				}
				return printTable(cmd.OutOrStdout(), db)
			})
		},
	}
	filter.register(cmd.Flags())
	cmd.Flags().StringVar(&output, "output", "table", "Output format (table, json)")
	return cmd
}

func printTable(w io.Writer, db database.Database) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MATERIAL\tKIND\tLABEL\tMODE\tRANGE\tUNIT")
	for _, p := range db.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.Material(), p.Kind(), p.Label(), p.Mode(), p.Range(), p.Unit())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d records\n", db.Len())
	return err
}

func printJSON(w io.Writer, db database.Database) error {
	views := make([]recordView, 0, db.Len())
	for _, p := range db.All() {
		views = append(views, viewOf(p))
	}
	data, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "failed to encode records")
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
