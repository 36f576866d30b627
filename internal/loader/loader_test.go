package loader

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"mswell/internal/domain"
)

const incDeck = `
well: PROD1
welsegs:
  top_depth: 2000
  top_length: 100
  wellbore_volume: 0.05
  mode: INC
  segments:
    - first: 2
      last: 4
      branch: 1
      outlet: 1
      length: 10
      depth: 5
      diameter: 0.1
      roughness: 1.0e-5
    - first: 5
      branch: 2
      outlet: 3
      length: 20
      depth: 0
      diameter: 0.08
      roughness: 1.0e-5
      area: 0.004
      volume: 0.1
wsegsicd:
  - first: 4
    strength: 0.002
    length: 12
    max_absolute_rate: 300
wsegvalv:
  - segment: 5
    flow_coefficient: 0.7
    cross_area: 0.003
`

func mustBuild(t *testing.T, deck *Deck) *domain.SegmentSet {
	t.Helper()
	set, err := deck.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return set
}

func lookup(t *testing.T, set *domain.SegmentSet, number int) *domain.Segment {
	t.Helper()
	seg, err := set.Lookup(number)
	if err != nil {
		t.Fatalf("Lookup(%d): %v", number, err)
	}
	return seg
}

func TestParseDeckINC(t *testing.T) {
	deck, err := ParseDeck([]byte(incDeck), DefaultOptions())
	if err != nil {
		t.Fatalf("ParseDeck() error: %v", err)
	}
	if deck.Well != "PROD1" || deck.Mode != ModeINC {
		t.Errorf("unexpected deck header %s/%s", deck.Well, deck.Mode)
	}
	if deck.Segments.Size() != 5 {
		t.Fatalf("expected 5 segments, got %d", deck.Segments.Size())
	}

	t.Run("range chains outlets", func(t *testing.T) {
		for number, outlet := range map[int]int{2: 1, 3: 2, 4: 3, 5: 3} {
			if got := lookup(t, deck.Segments, number).OutletSegment(); got != outlet {
				t.Errorf("segment %d outlet = %d, want %d", number, got, outlet)
			}
		}
		if inlets, _ := deck.Segments.Inlets(3); !slices.Equal(inlets, []int{4, 5}) {
			t.Errorf("segment 3 inlets = %v, want [4 5]", inlets)
		}
	})

	t.Run("types follow device records", func(t *testing.T) {
		if got := lookup(t, deck.Segments, 4).Type(); got != domain.SegmentTypeSICD {
			t.Errorf("segment 4 type = %s, want SICD", got)
		}
		if got := lookup(t, deck.Segments, 5).Type(); got != domain.SegmentTypeValve {
			t.Errorf("segment 5 type = %s, want VALVE", got)
		}
	})

	t.Run("area defaults from diameter", func(t *testing.T) {
		want := math.Pi * 0.1 * 0.1 / 4
		if got := lookup(t, deck.Segments, 2).CrossArea(); math.Abs(got-want) > 1e-15 {
			t.Errorf("area = %v, want %v", got, want)
		}
	})

	set := mustBuild(t, deck)

	t.Run("finalized absolute geometry", func(t *testing.T) {
		s4 := lookup(t, set, 4)
		if s4.TotalLength() != 130 || s4.Depth() != 2015 {
			t.Errorf("segment 4 = %v/%v, want 130/2015", s4.TotalLength(), s4.Depth())
		}
		s5 := lookup(t, set, 5)
		if s5.TotalLength() != 140 || s5.Depth() != 2010 {
			t.Errorf("segment 5 = %v/%v, want 140/2010", s5.TotalLength(), s5.Depth())
		}
		if got := lookup(t, set, 1).Volume(); got != 0.05 {
			t.Errorf("top volume = %v, want 0.05", got)
		}
		s2 := lookup(t, set, 2)
		if want := s2.CrossArea() * 10; math.Abs(s2.Volume()-want) > 1e-12 {
			t.Errorf("segment 2 volume = %v, want %v", s2.Volume(), want)
		}
		if s5.Volume() != 0.1 {
			t.Errorf("explicit volume changed: %v", s5.Volume())
		}
	})

	t.Run("devices attached", func(t *testing.T) {
		icd := lookup(t, set, 4).SpiralICD()
		if icd == nil || icd.Strength != 0.002 || icd.MaxAbsoluteRate == nil || *icd.MaxAbsoluteRate != 300 {
			t.Fatalf("unexpected spiral ICD %+v", icd)
		}
		valve := lookup(t, set, 5).Valve()
		if valve == nil {
			t.Fatal("expected valve on segment 5")
		}
		if valve.PipeAdditionalLength != 20 || valve.PipeCrossArea != 0.004 || valve.ConMaxCrossArea != 0.004 {
			t.Errorf("valve defaults not resolved: %+v", valve)
		}
		if err := set.RequireReady(); err != nil {
			t.Errorf("RequireReady() error: %v", err)
		}
	})
}

func TestParseDeckABS(t *testing.T) {
	const deckABS = `
well: INJ1
welsegs:
  top_depth: 1000
  top_length: 50
  mode: ABS
  segments:
    - first: 2
      last: 5
      branch: 1
      outlet: 1
      length: 90
      depth: 1040
      diameter: 0.1
      roughness: 1.0e-5
`
	deck, err := ParseDeck([]byte(deckABS), DefaultOptions())
	if err != nil {
		t.Fatalf("ParseDeck() error: %v", err)
	}
	for number, want := range map[int]float64{2: 60, 3: 70, 4: 80, 5: 90} {
		seg := lookup(t, deck.Segments, number)
		if math.Abs(seg.TotalLength()-want) > 1e-9 {
			t.Errorf("segment %d length = %v, want %v", number, seg.TotalLength(), want)
		}
		if !seg.DataReady() {
			t.Errorf("segment %d should be ready in ABS mode", number)
		}
	}
	if got := lookup(t, deck.Segments, 1).Volume(); got != 1e-5 {
		t.Errorf("top volume = %v, want default 1e-5", got)
	}

	set := mustBuild(t, deck)
	if got := lookup(t, set, 5).TotalLength(); math.Abs(got-90) > 1e-9 {
		t.Errorf("finalize moved ABS length to %v", got)
	}
}

func TestParseDeckErrors(t *testing.T) {
	base := func(extra string) string {
		return `
well: W
welsegs:
  top_depth: 1000
  top_length: 50
  segments:
    - first: 2
      branch: 1
      outlet: 1
      length: 10
      depth: 1
      diameter: 0.1
      roughness: 1.0e-5
` + extra
	}

	tests := []struct {
		name  string
		input string
		opts  Options
		is    error
		text  string
	}{
		{
			name:  "projected length",
			input: strings.Replace(base(""), "      roughness: 1.0e-5\n", "      roughness: 1.0e-5\n      length_x: 3\n", 1),
			is:    ErrUnsupportedField,
		},
		{
			name:  "thermal property",
			input: strings.Replace(base(""), "      roughness: 1.0e-5\n", "      roughness: 1.0e-5\n      heat_capacity: 3\n", 1),
			is:    ErrUnsupportedField,
		},
		{
			name:  "dangling outlet",
			input: strings.Replace(base(""), "outlet: 1", "outlet: 7", 1),
			is:    domain.ErrDanglingOutletReference,
		},
		{
			name:  "unknown type",
			input: strings.Replace(base(""), "      roughness: 1.0e-5\n", "      roughness: 1.0e-5\n      type: PUMP\n", 1),
			is:    domain.ErrInvalidTypeCode,
		},
		{
			name:  "declared type contradicts device",
			input: strings.Replace(base("wsegvalv:\n  - segment: 2\n    flow_coefficient: 0.7\n    cross_area: 0.003\n"), "      roughness: 1.0e-5\n", "      roughness: 1.0e-5\n      type: SICD\n", 1),
			is:    domain.ErrDeviceTypeMismatch,
		},
		{
			name:  "device on AICD segment",
			input: strings.Replace(base("wsegsicd:\n  - first: 2\n    strength: 0.1\n    length: 1\n"), "      roughness: 1.0e-5\n", "      roughness: 1.0e-5\n      type: AICD\n", 1),
			is:    domain.ErrUnsupportedSegmentType,
		},
		{
			name:  "device on unknown segment",
			input: base("wsegvalv:\n  - segment: 9\n    flow_coefficient: 0.7\n    cross_area: 0.003\n"),
			is:    domain.ErrUnknownSegment,
		},
		{
			name:  "two devices on one segment",
			input: base("wsegvalv:\n  - segment: 2\n    flow_coefficient: 0.7\n    cross_area: 0.003\nwsegsicd:\n  - first: 2\n    strength: 0.1\n    length: 1\n"),
			is:    domain.ErrDeviceTypeMismatch,
		},
		{
			name:  "unknown key in strict mode",
			input: base("comment: hello\n"),
			opts:  Options{Strict: true},
			text:  "failed to parse deck",
		},
		{
			name:  "missing well",
			input: strings.Replace(base(""), "well: W", "", 1),
			text:  "no well name",
		},
		{
			name:  "bad mode",
			input: strings.Replace(base(""), "top_length: 50", "top_length: 50\n  mode: REL", 1),
			text:  "invalid length/depth mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDeck([]byte(tt.input), tt.opts)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("error = %v, want %v", err, tt.is)
			}
			if tt.text != "" && !strings.Contains(err.Error(), tt.text) {
				t.Errorf("error = %v, want containing %q", err, tt.text)
			}
		})
	}

	t.Run("unknown key tolerated when not strict", func(t *testing.T) {
		if _, err := ParseDeck([]byte(base("comment: hello\n")), DefaultOptions()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestSegmentFromDeckFields(t *testing.T) {
	seg, err := SegmentFromDeckFields(DeckFields{
		Number: 3, Branch: 2, Outlet: 2,
		Length: 10, Depth: 1, Diameter: 0.1, Roughness: 1e-5, Area: 0.0078, Volume: 0.078,
		TypeCode: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seg.Type() != domain.SegmentTypeValve || seg.BranchNumber() != 2 || seg.DataReady() {
		t.Errorf("unexpected segment %v", seg)
	}

	if _, err := SegmentFromDeckFields(DeckFields{Number: 3, TypeCode: 9}); !errors.Is(err, domain.ErrInvalidTypeCode) {
		t.Errorf("expected ErrInvalidTypeCode, got %v", err)
	}
}

func TestLoadDeck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.yaml")
	if err := os.WriteFile(path, []byte(incDeck), 0644); err != nil {
		t.Fatalf("write deck: %v", err)
	}
	deck, err := LoadDeck(path, DefaultOptions())
	if err != nil {
		t.Fatalf("LoadDeck() error: %v", err)
	}
	if deck.Segments.Size() != 5 {
		t.Errorf("expected 5 segments, got %d", deck.Segments.Size())
	}

	if _, err := LoadDeck(filepath.Join(t.TempDir(), "missing.yaml"), DefaultOptions()); err == nil {
		t.Error("expected error for missing file")
	}
}
