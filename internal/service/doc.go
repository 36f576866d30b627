// Package service implements the well workflows of mswell.
//
// WellService coordinates the deck loader, the segment model, the
// restart checkpoint store and the tree codecs. The CLI is a thin layer
// over it.
//
// # Workflows
//
// ImportDeck reads a deck, finalizes the segment set and checks that it
// is ready for consumers. Checkpoint and Restore move finalized sets in
// and out of the store. Export renders the consumer tree view in any
// registered codec format.
//
// # Event System
//
// Every workflow step publishes an Event on the EventBus. Publishing
// never blocks; slow subscribers miss events.
package service
