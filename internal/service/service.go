package service

import (
	"context"
	"fmt"
	"io"

	"mswell/internal/codec"
	"mswell/internal/domain"
	"mswell/internal/loader"
	"mswell/internal/logging"
	"mswell/internal/repository"

	"github.com/google/uuid"
)

// WellService provides the import, checkpoint and export workflows
type WellService struct {
	store    repository.CheckpointStore
	eventBus *EventBus
	logger   logging.Logger
	opts     loader.Options
}

// NewWellService creates a new well service. A nil logger discards
// output.
func NewWellService(store repository.CheckpointStore, eventBus *EventBus, logger logging.Logger, opts loader.Options) *WellService {
	if logger == nil {
		logger = logging.Nop()
	}
	if eventBus == nil {
		eventBus = NewEventBus()
	}
	return &WellService{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
		opts:     opts,
	}
}

// ImportDeck loads a deck file and returns its finalized segment set
func (s *WellService) ImportDeck(ctx context.Context, path string) (*domain.SegmentSet, error) {
	deck, err := loader.LoadDeck(path, s.opts)
	if err != nil {
		s.logger.Error(ctx, "deck import failed", logging.String("path", path), logging.Err(err))
		return nil, err
	}
	return s.finalizeDeck(ctx, deck, path)
}

// ImportDeckData is ImportDeck for an in-memory deck
func (s *WellService) ImportDeckData(ctx context.Context, data []byte) (*domain.SegmentSet, error) {
	deck, err := loader.ParseDeck(data, s.opts)
	if err != nil {
		s.logger.Error(ctx, "deck import failed", logging.Err(err))
		return nil, err
	}
	return s.finalizeDeck(ctx, deck, "")
}

func (s *WellService) finalizeDeck(ctx context.Context, deck *loader.Deck, source string) (*domain.SegmentSet, error) {
	log := s.logger.With(logging.Well(deck.Well))
	log.Info(ctx, "deck imported",
		logging.Int("segments", deck.Segments.Size()),
		logging.String("mode", string(deck.Mode)),
		logging.String("source", source))
	s.eventBus.Publish(Event{
		Type:    EventWellImported,
		Payload: WellPayload{Well: deck.Well, Segments: deck.Segments.Size(), Source: source},
	})

	set, err := deck.Build()
	if err != nil {
		s.logFailure(ctx, log, "finalize failed", err)
		return nil, err
	}
	if err := set.RequireFinalized(); err != nil {
		s.logFailure(ctx, log, "well not finalized", err)
		return nil, err
	}

	log.Info(ctx, "well finalized", logging.Int("segments", set.Size()))
	s.eventBus.Publish(Event{
		Type:    EventWellFinalized,
		Payload: WellPayload{Well: set.Well(), Segments: set.Size(), Source: source},
	})
	return set, nil
}

// ImportTree reads a previously exported tree view back into a set
func (s *WellService) ImportTree(ctx context.Context, r io.Reader, format string) (*domain.SegmentSet, error) {
	imp, err := codec.ImporterFor(format)
	if err != nil {
		return nil, err
	}
	tree, err := imp.Parse(r)
	if err != nil {
		return nil, err
	}
	set, err := tree.SegmentSet()
	if err != nil {
		s.logFailure(ctx, s.logger.With(logging.Well(tree.Well)), "tree import failed", err)
		return nil, err
	}

	s.logger.Info(ctx, "tree imported", logging.Well(set.Well()), logging.Int("segments", set.Size()), logging.String("format", format))
	s.eventBus.Publish(Event{
		Type:    EventWellImported,
		Payload: WellPayload{Well: set.Well(), Segments: set.Size(), Source: format},
	})
	return set, nil
}

// Checkpoint stores a finalized set and returns the checkpoint ID
func (s *WellService) Checkpoint(ctx context.Context, set *domain.SegmentSet) (uuid.UUID, error) {
	id, err := s.store.SaveWell(ctx, set)
	if err != nil {
		s.logFailure(ctx, s.logger.With(logging.Well(set.Well())), "checkpoint failed", err)
		return uuid.Nil, err
	}

	s.logger.Info(ctx, "checkpoint saved", logging.Well(set.Well()), logging.Checkpoint(id), logging.Int("segments", set.Size()))
	s.eventBus.Publish(Event{
		Type:    EventCheckpointSaved,
		Payload: CheckpointPayload{Well: set.Well(), Checkpoint: id.String(), Segments: set.Size()},
	})
	return id, nil
}

// Restore loads the set stored under a checkpoint ID
func (s *WellService) Restore(ctx context.Context, id uuid.UUID) (*domain.SegmentSet, error) {
	set, err := s.store.LoadWell(ctx, id)
	if err != nil {
		s.logger.Error(ctx, "restore failed", logging.Checkpoint(id), logging.Err(err))
		return nil, err
	}

	s.logger.Info(ctx, "checkpoint restored", logging.Well(set.Well()), logging.Checkpoint(id), logging.Int("segments", set.Size()))
	s.eventBus.Publish(Event{
		Type:    EventCheckpointRestored,
		Payload: CheckpointPayload{Well: set.Well(), Checkpoint: id.String(), Segments: set.Size()},
	})
	return set, nil
}

// RestoreLatest loads the newest checkpoint of a well
func (s *WellService) RestoreLatest(ctx context.Context, well string) (*domain.SegmentSet, error) {
	info, err := s.store.LatestCheckpoint(ctx, well)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(info.ID)
	if err != nil {
		return nil, fmt.Errorf("corrupt checkpoint id %q: %w", info.ID, err)
	}
	return s.Restore(ctx, id)
}

// List returns the checkpoints of a well, newest first; an empty name
// lists all wells
func (s *WellService) List(ctx context.Context, well string) ([]domain.CheckpointInfo, error) {
	return s.store.ListCheckpoints(ctx, well)
}

// Delete removes a checkpoint
func (s *WellService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteCheckpoint(ctx, id); err != nil {
		return err
	}

	s.logger.Info(ctx, "checkpoint deleted", logging.Checkpoint(id))
	s.eventBus.Publish(Event{
		Type:    EventCheckpointDeleted,
		Payload: CheckpointPayload{Checkpoint: id.String()},
	})
	return nil
}

// Export writes the consumer tree view of a finalized set
func (s *WellService) Export(set *domain.SegmentSet, format string, w io.Writer) error {
	exp, err := codec.ExporterFor(format)
	if err != nil {
		return err
	}
	tree, err := domain.DeriveTree(set)
	if err != nil {
		return err
	}
	return exp.Export(tree, w)
}

// logFailure logs a domain error with the offending segment when known
func (s *WellService) logFailure(ctx context.Context, log logging.Logger, msg string, err error) {
	if number, ok := domain.SegmentNumberOf(err); ok {
		log = log.With(logging.Segment(number))
	}
	log.Error(ctx, msg, logging.Err(err))
}
