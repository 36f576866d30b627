package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mswell/internal/domain"
	"mswell/internal/loader"
	"mswell/internal/logging"
	"mswell/internal/repository"
	"mswell/internal/repository/sqlite"
)

const testDeck = `
well: PROD1
welsegs:
  top_depth: 2000
  top_length: 100
  segments:
    - first: 2
      last: 3
      branch: 1
      outlet: 1
      length: 10
      depth: 5
      diameter: 0.1
      roughness: 1.0e-5
    - first: 4
      branch: 2
      outlet: 2
      length: 15
      depth: 0
      diameter: 0.08
      roughness: 1.0e-5
wsegvalv:
  - segment: 4
    flow_coefficient: 0.7
    cross_area: 0.003
`

func newTestService(t *testing.T) (*WellService, <-chan Event) {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	events := make(chan Event, 16)
	bus := NewEventBus()
	bus.Subscribe(events)
	return NewWellService(repo, bus, logging.Nop(), loader.DefaultOptions()), events
}

func drain(events <-chan Event) []EventType {
	var types []EventType
	for {
		select {
		case ev := <-events:
			types = append(types, ev.Type)
		default:
			return types
		}
	}
}

func TestWellServiceImportDeck(t *testing.T) {
	svc, events := newTestService(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "deck.yaml")
	if err := os.WriteFile(path, []byte(testDeck), 0644); err != nil {
		t.Fatalf("write deck: %v", err)
	}

	set, err := svc.ImportDeck(ctx, path)
	if err != nil {
		t.Fatalf("ImportDeck() error: %v", err)
	}
	if set.Size() != 4 {
		t.Errorf("expected 4 segments, got %d", set.Size())
	}
	seg, err := set.Lookup(4)
	if err != nil {
		t.Fatalf("Lookup(4): %v", err)
	}
	if seg.TotalLength() != 125 || seg.Valve() == nil {
		t.Errorf("unexpected segment 4: %v valve=%v", seg, seg.Valve())
	}

	got := drain(events)
	want := []EventType{EventWellImported, EventWellFinalized}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestWellServiceImportDeckErrors(t *testing.T) {
	svc, events := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input string
		is    error
	}{
		{
			name:  "dangling outlet",
			input: strings.Replace(testDeck, "outlet: 2", "outlet: 9", 1),
			is:    domain.ErrDanglingOutletReference,
		},
		{
			name:  "declared type contradicts valve",
			input: strings.Replace(testDeck, "      roughness: 1.0e-5\nwsegvalv", "      roughness: 1.0e-5\n      type: SICD\nwsegvalv", 1),
			is:    domain.ErrDeviceTypeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ImportDeckData(ctx, []byte(tt.input))
			if !errors.Is(err, tt.is) {
				t.Errorf("error = %v, want %v", err, tt.is)
			}
			if got := drain(events); len(got) != 0 {
				t.Errorf("unexpected events %v", got)
			}
		})
	}
}

func TestWellServiceCheckpointCycle(t *testing.T) {
	svc, events := newTestService(t)
	ctx := context.Background()

	set, err := svc.ImportDeckData(ctx, []byte(testDeck))
	if err != nil {
		t.Fatalf("ImportDeckData() error: %v", err)
	}
	drain(events)

	id, err := svc.Checkpoint(ctx, set)
	if err != nil {
		t.Fatalf("Checkpoint() error: %v", err)
	}

	restored, err := svc.Restore(ctx, id)
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if !restored.Equal(set) {
		t.Error("restored set differs from checkpointed set")
	}

	latest, err := svc.RestoreLatest(ctx, "PROD1")
	if err != nil {
		t.Fatalf("RestoreLatest() error: %v", err)
	}
	if !latest.Equal(set) {
		t.Error("latest checkpoint differs from checkpointed set")
	}

	infos, err := svc.List(ctx, "PROD1")
	if err != nil || len(infos) != 1 || infos[0].ID != id.String() {
		t.Fatalf("List() = %v, %v", infos, err)
	}

	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := svc.Restore(ctx, id); !errors.Is(err, repository.ErrCheckpointNotFound) {
		t.Errorf("expected ErrCheckpointNotFound, got %v", err)
	}

	got := drain(events)
	want := []EventType{EventCheckpointSaved, EventCheckpointRestored, EventCheckpointRestored, EventCheckpointDeleted}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestWellServiceExport(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	set, err := svc.ImportDeckData(ctx, []byte(testDeck))
	if err != nil {
		t.Fatalf("ImportDeckData() error: %v", err)
	}

	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := svc.Export(set, format, &buf); err != nil {
				t.Fatalf("Export() error: %v", err)
			}
			imported, err := svc.ImportTree(ctx, &buf, format)
			if err != nil {
				t.Fatalf("ImportTree() error: %v", err)
			}
			if imported.Well() != "PROD1" || imported.Size() != set.Size() {
				t.Errorf("unexpected imported set %s/%d", imported.Well(), imported.Size())
			}
			if err := imported.RequireReady(); err != nil {
				t.Errorf("imported set not ready: %v", err)
			}
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		if err := svc.Export(set, "csv", &bytes.Buffer{}); err == nil {
			t.Error("expected error for unknown format")
		}
	})

	t.Run("unfinalized set", func(t *testing.T) {
		raw := domain.NewSegmentSet("RAW")
		if err := raw.Insert(domain.NewSegment(domain.SegmentFields{Number: 1, Outlet: domain.NoOutlet})); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if err := svc.Export(raw, "json", &bytes.Buffer{}); !errors.Is(err, domain.ErrNotFinalized) {
			t.Errorf("expected ErrNotFinalized, got %v", err)
		}
	})
}

func TestWellServiceAICDWorkflow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	deck := strings.Replace(testDeck, "      roughness: 1.0e-5\n    - first: 4", "      roughness: 1.0e-5\n      type: AICD\n    - first: 4", 1)
	set, err := svc.ImportDeckData(ctx, []byte(deck))
	if err != nil {
		t.Fatalf("ImportDeckData() error: %v", err)
	}
	seg, err := set.Lookup(2)
	if err != nil {
		t.Fatalf("Lookup(2): %v", err)
	}
	if seg.Type() != domain.SegmentTypeAICD {
		t.Fatalf("expected AICD segment, got %s", seg.Type())
	}
	if err := set.RequireReady(); !errors.Is(err, domain.ErrUnsupportedSegmentType) {
		t.Errorf("expected solver gate to reject AICD, got %v", err)
	}

	id, err := svc.Checkpoint(ctx, set)
	if err != nil {
		t.Fatalf("Checkpoint() error: %v", err)
	}
	restored, err := svc.Restore(ctx, id)
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if !restored.Equal(set) {
		t.Error("restored AICD set differs from checkpointed set")
	}

	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := svc.Export(restored, format, &buf); err != nil {
				t.Fatalf("Export() error: %v", err)
			}
			imported, err := svc.ImportTree(ctx, &buf, format)
			if err != nil {
				t.Fatalf("ImportTree() error: %v", err)
			}
			got, err := imported.Lookup(3)
			if err != nil {
				t.Fatalf("Lookup(3): %v", err)
			}
			if got.Type() != domain.SegmentTypeAICD {
				t.Errorf("expected AICD after %s round trip, got %s", format, got.Type())
			}
		})
	}
}

func TestEventBusSkipsSlowSubscriber(t *testing.T) {
	bus := NewEventBus()
	slow := make(chan Event)
	fast := make(chan Event, 1)
	bus.Subscribe(slow)
	bus.Subscribe(fast)

	bus.Publish(Event{Type: EventWellImported})

	select {
	case ev := <-fast:
		if ev.Type != EventWellImported {
			t.Errorf("unexpected event %s", ev.Type)
		}
	default:
		t.Error("fast subscriber missed the event")
	}
}
