// Package repository defines the restart checkpoint storage interface.
//
// A checkpoint is the flat per-segment record of a finalized well (see
// domain.RstSegment) plus its device records, stored under a UUID. The
// sqlite subpackage implements the store.
//
// # Restoring
//
// Segments are read first and assembled into a SegmentSet, which rebuilds
// inlet lists from the outlet references. Devices are attached afterwards.
// Checkpoints only ever hold finalized data.
//
// # Testing
//
// The sqlite store is tested against in-memory databases.
package repository
