package curves

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/ajitpratap0/htm/pkg/compression"
	"github.com/ajitpratap0/htm/pkg/htmerrors"
)

var arrowSchema = arrow.NewSchema([]arrow.Field{
	{Name: "label", Type: arrow.BinaryTypes.String},
	{Name: "material", Type: arrow.BinaryTypes.String},
	{Name: "kind", Type: arrow.BinaryTypes.String},
	{Name: "isotope", Type: arrow.BinaryTypes.String},
	{Name: "source", Type: arrow.BinaryTypes.String},
	{Name: "unit", Type: arrow.BinaryTypes.String},
	{Name: "t", Type: arrow.PrimitiveTypes.Float64},
	{Name: "inv_t", Type: arrow.PrimitiveTypes.Float64},
	{Name: "value", Type: arrow.PrimitiveTypes.Float64},
	{Name: "in_range", Type: arrow.FixedWidthTypes.Boolean},
}, nil)

func parquetCodec(a compression.Algorithm) compress.Compression {
	switch a {
	case compression.Gzip:
		return compress.Codecs.Gzip
	case compression.Zstd:
		return compress.Codecs.Zstd
	case compression.LZ4:
		return compress.Codecs.Lz4Raw
	case compression.Snappy, compression.S2:
		return compress.Codecs.Snappy
	default:
		return compress.Codecs.Uncompressed
	}
}

// writeParquet writes one row group holding every point.
func writeParquet(w io.Writer, curves []Curve, algo compression.Algorithm) error {
	pool := memory.NewGoAllocator()
	b := array.NewRecordBuilder(pool, arrowSchema)
	defer b.Release()

	var (
		label    = b.Field(0).(*array.StringBuilder)
		material = b.Field(1).(*array.StringBuilder)
		kind     = b.Field(2).(*array.StringBuilder)
		isotope  = b.Field(3).(*array.StringBuilder)
		source   = b.Field(4).(*array.StringBuilder)
		unit     = b.Field(5).(*array.StringBuilder)
		temp     = b.Field(6).(*array.Float64Builder)
		invT     = b.Field(7).(*array.Float64Builder)
		value    = b.Field(8).(*array.Float64Builder)
		inRange  = b.Field(9).(*array.BooleanBuilder)
	)
	for _, c := range curves {
		for _, p := range c.Points {
			label.Append(c.Label)
			material.Append(c.Material)
			kind.Append(string(c.Kind))
			isotope.Append(string(c.Isotope))
			source.Append(c.Source)
			unit.Append(c.Unit)
			temp.Append(p.T)
			invT.Append(p.InvT)
			value.Append(p.Value)
			inRange.Append(p.InRange)
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(parquetCodec(algo)))
	fw, err := pqarrow.NewFileWriter(arrowSchema, w, props, pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(pool)))
	if err != nil {
		return htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "failed to create Parquet writer")
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "failed to write Parquet record batch")
	}
	if err := fw.Close(); err != nil {
		return htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "failed to close Parquet writer")
	}
	return nil
}
