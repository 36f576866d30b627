package codec

import (
	"fmt"
	"io"
	"sort"

	"mswell/internal/domain"
)

// Importer reads a consumer tree view from a serialized form
type Importer interface {
	Parse(r io.Reader) (*domain.Tree, error)
	Format() string
}

// Exporter writes a consumer tree view in a serialized form
type Exporter interface {
	Export(tree *domain.Tree, w io.Writer) error
	Format() string
}

var exporters = map[string]func() Exporter{
	"json":  func() Exporter { return NewJSONCodec() },
	"yaml":  func() Exporter { return NewYAMLCodec() },
	"table": func() Exporter { return NewTableCodec() },
}

var importers = map[string]func() Importer{
	"json": func() Importer { return NewJSONCodec() },
	"yaml": func() Importer { return NewYAMLCodec() },
}

// ImporterFor returns the importer registered under format
func ImporterFor(format string) (Importer, error) {
	newImporter, ok := importers[format]
	if !ok {
		return nil, fmt.Errorf("unknown import format %q", format)
	}
	return newImporter(), nil
}

// ExporterFor returns the exporter registered under format
func ExporterFor(format string) (Exporter, error) {
	newExporter, ok := exporters[format]
	if !ok {
		return nil, fmt.Errorf("unknown export format %q (available: %v)", format, Formats())
	}
	return newExporter(), nil
}

// Formats lists the registered export formats
func Formats() []string {
	names := make([]string, 0, len(exporters))
	for name := range exporters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
