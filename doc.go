// Package htm is a curated database of hydrogen transport properties of
// fusion materials: diffusivity, solubility, permeability, recombination and
// dissociation coefficients of H, D and T, as published in the literature.
//
// Every record is either an Arrhenius fit (pre-exponential factor and
// activation energy) or a table digitized from a figure. Records are
// normalized to canonical SI units when they are built, tagged with their
// material, and collected in a registry that can be filtered and exported.
//
// # Quick Start
//
// Load the built-in materials and list the tungsten diffusivities:
//
//	import (
//	    "context"
//	    "github.com/ajitpratap0/htm/pkg/database"
//	    "github.com/ajitpratap0/htm/pkg/materials"
//	    "github.com/ajitpratap0/htm/pkg/property"
//	)
//
//	reg := database.NewRegistry()
//	_, err := materials.LoadAll(context.Background(), reg, materials.Options{})
//
//	d := reg.Filter(database.Criteria{
//	    Material: []string{"tungsten"},
//	    Kind:     []property.Kind{property.Diffusivity},
//	})
//	for _, p := range d.All() {
//	    v, _ := p.Value(1000) // m^2 s^-1
//	    fmt.Println(p.Label(), v)
//	}
//
// # Key Packages
//
//	pkg/units        - Unit parsing and conversion to canonical SI
//	pkg/property     - Fitted and tabulated property records
//	pkg/database     - Ordered record collections, filters and the registry
//	pkg/tables       - Digitized table reading from disk, S3 or GCS
//	pkg/materials    - Built-in records per material
//	pkg/manifest     - YAML/JSON record manifests
//	pkg/curves       - Curve sampling and CSV/JSON/Parquet/Avro export
//	pkg/store        - SQLite and PostgreSQL persistence
//	pkg/config       - Configuration management
//	pkg/htmerrors    - Structured error handling
//	pkg/logger       - Structured logging
//	pkg/metrics      - Prometheus metrics
//
// # Configuration
//
// The htm command reads a YAML file:
//
//	type Config struct {
//	    Logging       logger.Config       // Level, encoding, outputs
//	    Data          DataConfig          // Table sources, manifests, materials
//	    Evaluation    EvaluationConfig    // Grid size and range, interpolation
//	    Export        ExportConfig        // Format, compression, output
//	    Store         StoreConfig         // sqlite or postgres
//	    Observability ObservabilityConfig // Metrics dump, tracing
//	}
//
// Environment variables are supported with ${VAR_NAME} syntax, and every
// setting can be overridden with an HTM_ variable or a flag.
package htm
