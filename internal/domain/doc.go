// Package domain defines the multi-segment well model.
//
// A multi-segment well is a tree of flow segments rooted at the top
// segment, which sits at the bottom-hole pressure reference point. Each
// segment flows into its outlet; the reverse links are its inlets.
//
// # Core Types
//
// Segment holds one node's geometry (length, depth, diameter, roughness,
// area, volume), its type and an optional shared flow device.
//
// SpiralICD and Valve are the flow devices. They are value types
// referenced by pointer so that clones of a segment share them.
//
// SegmentSet owns the segments of a well, maintains the inlet lists and
// runs the finalization pass that turns incremental (INC) length/depth
// into absolute (ABS) values.
//
// Tree is the derived, read-only view handed to consumers.
//
// # Sentinels
//
// The deck and restart formats encode "not applicable" as InvalidValue
// and "no outlet" as NoOutlet. Both are kept on Segment for round-trip
// fidelity; PipeGeometry, Outlet and Tree expose them as optional values.
//
// # Errors
//
// Every failure wraps one of the Err* kinds in a SegmentError naming the
// offending segment.
package domain
