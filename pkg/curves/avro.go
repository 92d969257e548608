package curves

import (
	"io"

	"github.com/linkedin/goavro/v2"

	"github.com/ajitpratap0/htm/pkg/compression"
	"github.com/ajitpratap0/htm/pkg/htmerrors"
)

const avroSchema = `{
  "type": "record",
  "name": "CurvePoint",
  "namespace": "htm",
  "fields": [
    {"name": "label", "type": "string"},
    {"name": "material", "type": "string"},
    {"name": "kind", "type": "string"},
    {"name": "isotope", "type": "string"},
    {"name": "source", "type": "string"},
    {"name": "unit", "type": "string"},
    {"name": "t", "type": "double"},
    {"name": "inv_t", "type": "double"},
    {"name": "value", "type": "double"},
    {"name": "in_range", "type": "boolean"}
  ]
}`

// avroBlockSize is the number of points per OCF block.
const avroBlockSize = 500

func avroCompression(a compression.Algorithm) string {
	switch a {
	case compression.None, "":
		return "null"
	case compression.Snappy, compression.S2:
		return "snappy"
	default:
		return "deflate"
	}
}

// writeAvro writes an Avro object container file.
func writeAvro(w io.Writer, curves []Curve, algo compression.Algorithm) error {
	ocf, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               w,
		Schema:          avroSchema,
		CompressionName: avroCompression(algo),
	})
	if err != nil {
		return htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "failed to create Avro writer")
	}

	block := make([]interface{}, 0, avroBlockSize)
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		if err := ocf.Append(block); err != nil {
			return htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "failed to write Avro block")
		}
		block = block[:0]
		return nil
	}

	for _, c := range curves {
		for _, p := range c.Points {
			block = append(block, map[string]interface{}{
				"label":    c.Label,
				"material": c.Material,
				"kind":     string(c.Kind),
				"isotope":  string(c.Isotope),
				"source":   c.Source,
				"unit":     c.Unit,
				"t":        p.T,
				"inv_t":    p.InvT,
				"value":    p.Value,
				"in_range": p.InRange,
			})
			if len(block) == avroBlockSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	return flush()
}
