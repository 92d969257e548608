package curves

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/ajitpratap0/htm/pkg/compression"
	"github.com/ajitpratap0/htm/pkg/htmerrors"
	"github.com/ajitpratap0/htm/pkg/json"
)

// Export formats.
const (
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatParquet = "parquet"
	FormatAvro    = "avro"
)

// WriteOptions selects the output encoding. Parquet and Avro compress
// internally; CSV and JSON are wrapped in a compression stream.
type WriteOptions struct {
	Format      string
	Compression compression.Config
}

// columns of the long-format table shared by CSV, Parquet and Avro
var columns = []string{"label", "material", "kind", "isotope", "source", "unit", "t", "inv_t", "value", "in_range"}

// Write encodes curves to w.
func Write(w io.Writer, curves []Curve, opts WriteOptions) error {
	switch strings.ToLower(opts.Format) {
	case FormatParquet:
		return writeParquet(w, curves, opts.Compression.Algorithm)
	case FormatAvro:
		return writeAvro(w, curves, opts.Compression.Algorithm)
	case FormatCSV, "", FormatJSON:
	default:
		return htmerrors.Newf(htmerrors.ErrorTypeConfig, "unsupported export format %q", opts.Format)
	}

	cw, err := compression.NewWriter(w, opts.Compression)
	if err != nil {
		return err
	}
	if strings.EqualFold(opts.Format, FormatJSON) {
		err = writeJSON(cw, curves)
	} else {
		err = writeCSV(cw, curves)
	}
	if err != nil {
		_ = cw.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		return htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "failed to flush compressed output")
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeCSV(w io.Writer, curves []Curve) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "failed to write CSV header")
	}
	row := make([]string, len(columns))
	for _, c := range curves {
		row[0], row[1], row[2], row[3], row[4], row[5] =
			c.Label, c.Material, string(c.Kind), string(c.Isotope), c.Source, c.Unit
		for _, p := range c.Points {
			row[6], row[7], row[8] = formatFloat(p.T), formatFloat(p.InvT), formatFloat(p.Value)
			row[9] = strconv.FormatBool(p.InRange)
			if err := cw.Write(row); err != nil {
				return htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "failed to write CSV row")
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "failed to write CSV")
	}
	return nil
}

func writeJSON(w io.Writer, curves []Curve) error {
	enc := json.NewStreamingEncoder(w, true)
	for _, c := range curves {
		if err := enc.Encode(c); err != nil {
			return htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "failed to encode curve")
		}
	}
	if err := enc.Close(); err != nil {
		return htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "failed to write JSON")
	}
	return nil
}
