package codec

import (
	"bytes"
	"strings"
	"testing"

	"mswell/internal/domain"
)

// testTree builds a finalized top(1) <- 2(VALVE) <- 3(SICD) tree
func testTree(t *testing.T) *domain.Tree {
	t.Helper()
	set := domain.NewSegmentSet("PROD1")
	segments := []domain.SegmentFields{
		{
			Number: 1, Branch: 1, Outlet: domain.NoOutlet,
			TotalLength: 100, Depth: 2000,
			InternalDiameter: domain.InvalidValue, Roughness: domain.InvalidValue, CrossArea: domain.InvalidValue,
			Volume: 1e-5,
		},
		{
			Number: 2, Branch: 1, Outlet: 1,
			TotalLength: 10, Depth: 5, InternalDiameter: 0.1, Roughness: 1e-5, CrossArea: 0.00785,
			Volume: domain.InvalidValue, Type: domain.SegmentTypeValve,
		},
		{
			Number: 3, Branch: 2, Outlet: 2,
			TotalLength: 20, Depth: 0, InternalDiameter: 0.08, Roughness: 1e-5, CrossArea: 0.005,
			Volume: 0.1, Type: domain.SegmentTypeSICD,
		},
	}
	for _, f := range segments {
		if err := set.Insert(domain.NewSegment(f)); err != nil {
			t.Fatalf("insert %d: %v", f.Number, err)
		}
	}
	if err := set.Finalize(); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	if err := set.UpdateValve(2, domain.NewValve(0.7, 0.003)); err != nil {
		t.Fatalf("UpdateValve() error: %v", err)
	}
	if err := set.UpdateSpiralICD(3, domain.NewSpiralICD(0.002, 12)); err != nil {
		t.Fatalf("UpdateSpiralICD() error: %v", err)
	}

	tree, err := domain.DeriveTree(set)
	if err != nil {
		t.Fatalf("DeriveTree() error: %v", err)
	}
	return tree
}

func TestRoundTrip(t *testing.T) {
	codecs := []interface {
		Importer
		Exporter
	}{
		NewJSONCodec(),
		NewYAMLCodec(),
	}

	for _, c := range codecs {
		t.Run(c.Format(), func(t *testing.T) {
			tree := testTree(t)
			want, err := tree.SegmentSet()
			if err != nil {
				t.Fatalf("SegmentSet() error: %v", err)
			}

			var buf bytes.Buffer
			if err := c.Export(tree, &buf); err != nil {
				t.Fatalf("Export() error: %v", err)
			}
			if strings.Contains(buf.String(), "1e+100") {
				t.Errorf("sentinel leaked into export:\n%s", buf.String())
			}

			parsed, err := c.Parse(&buf)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			got, err := parsed.SegmentSet()
			if err != nil {
				t.Fatalf("SegmentSet() error: %v", err)
			}
			if !got.Equal(want) {
				t.Error("tree changed across export and parse")
			}
			if err := got.RequireReady(); err != nil {
				t.Errorf("parsed tree not ready: %v", err)
			}
		})
	}
}

func TestRoundTripAICD(t *testing.T) {
	set := domain.NewSegmentSet("PROD2")
	for _, f := range []domain.SegmentFields{
		{
			Number: 1, Branch: 1, Outlet: domain.NoOutlet,
			TotalLength: 100, Depth: 2000,
			InternalDiameter: domain.InvalidValue, Roughness: domain.InvalidValue, CrossArea: domain.InvalidValue,
			Volume: 1e-5,
		},
		{
			Number: 2, Branch: 1, Outlet: 1,
			TotalLength: 10, Depth: 5, InternalDiameter: 0.1, Roughness: 1e-5, CrossArea: 0.00785,
			Volume: domain.InvalidValue, Type: domain.SegmentTypeAICD,
		},
	} {
		if err := set.Insert(domain.NewSegment(f)); err != nil {
			t.Fatalf("insert %d: %v", f.Number, err)
		}
	}
	if err := set.Finalize(); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	tree, err := domain.DeriveTree(set)
	if err != nil {
		t.Fatalf("DeriveTree() error: %v", err)
	}

	for _, c := range []interface {
		Importer
		Exporter
	}{NewJSONCodec(), NewYAMLCodec()} {
		t.Run(c.Format(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := c.Export(tree, &buf); err != nil {
				t.Fatalf("Export() error: %v", err)
			}
			if !strings.Contains(buf.String(), "AICD") {
				t.Errorf("segment type lost in export:\n%s", buf.String())
			}
			parsed, err := c.Parse(&buf)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			got, err := parsed.SegmentSet()
			if err != nil {
				t.Fatalf("SegmentSet() error: %v", err)
			}
			if !got.Equal(set) {
				t.Error("AICD tree changed across export and parse")
			}
		})
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	tests := []struct {
		name  string
		codec Importer
		input string
	}{
		{"json", NewJSONCodec(), `{"well": "W", "top": 1, "segments": [], "colour": "red"}`},
		{"yaml", NewYAMLCodec(), "well: W\ntop: 1\nsegments: []\ncolour: red\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.codec.Parse(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error for unknown field")
			}
		})
	}
}

func TestTableExport(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTableCodec().Export(testTree(t), &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"Well PROD1", "3 segments", "VALVE", "SICD", "valve cv=0.7", "sicd k=0.002", "2005", "130"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestExporterFor(t *testing.T) {
	for _, format := range Formats() {
		exp, err := ExporterFor(format)
		if err != nil {
			t.Fatalf("ExporterFor(%q) error: %v", format, err)
		}
		if exp.Format() != format {
			t.Errorf("ExporterFor(%q).Format() = %q", format, exp.Format())
		}
	}

	if _, err := ExporterFor("ansible"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestImporterFor(t *testing.T) {
	for _, format := range []string{"json", "yaml"} {
		imp, err := ImporterFor(format)
		if err != nil {
			t.Fatalf("ImporterFor(%q) error: %v", format, err)
		}
		if imp.Format() != format {
			t.Errorf("ImporterFor(%q).Format() = %q", format, imp.Format())
		}
	}
	if _, err := ImporterFor("table"); err == nil {
		t.Error("table is export only")
	}
}
