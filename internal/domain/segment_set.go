package domain

import (
	"fmt"
	"slices"
)

// SegmentSet owns the segments of one well and keeps the outlet/inlet
// tree consistent. It is not safe for concurrent use.
type SegmentSet struct {
	well     string
	segments []*Segment
	index    map[int]int // segment number -> position in segments
}

// NewSegmentSet creates an empty set for the named well
func NewSegmentSet(well string) *SegmentSet {
	return &SegmentSet{
		well:     well,
		segments: make([]*Segment, 0),
		index:    make(map[int]int),
	}
}

// AssembleSegmentSet builds a set from segments given in any order.
// Inlet lists are rebuilt from the outlet references.
func AssembleSegmentSet(well string, segments []*Segment) (*SegmentSet, error) {
	set := NewSegmentSet(well)
	for _, seg := range segments {
		if _, exists := set.index[seg.number]; exists {
			return nil, segmentErr("assemble", seg.number, ErrDuplicateSegmentNumber)
		}
		c := seg.clone()
		c.inlets = nil
		set.index[c.number] = len(set.segments)
		set.segments = append(set.segments, c)
	}
	for _, seg := range set.segments {
		outlet, ok := seg.Outlet()
		if !ok {
			continue
		}
		pos, exists := set.index[outlet]
		if !exists {
			return nil, segmentErrf("assemble", seg.number, ErrDanglingOutletReference, "outlet %d", outlet)
		}
		set.segments[pos].AddInletSegment(seg.number)
	}
	return set, nil
}

// Well returns the well name
func (s *SegmentSet) Well() string { return s.well }

// Size returns the number of segments
func (s *SegmentSet) Size() int { return len(s.segments) }

// Insert adds a segment whose outlet is already present (or the top
// segment) and registers it as an inlet of that outlet. The set keeps
// its own copy; any inlets carried by seg are discarded.
func (s *SegmentSet) Insert(seg *Segment) error {
	if _, exists := s.index[seg.number]; exists {
		return segmentErr("insert", seg.number, ErrDuplicateSegmentNumber)
	}
	outletPos := -1
	if outlet, ok := seg.Outlet(); ok {
		pos, exists := s.index[outlet]
		if !exists {
			return segmentErrf("insert", seg.number, ErrDanglingOutletReference, "outlet %d", outlet)
		}
		outletPos = pos
	}

	c := seg.clone()
	c.inlets = nil
	s.index[c.number] = len(s.segments)
	s.segments = append(s.segments, c)
	if outletPos >= 0 {
		out := s.segments[outletPos].clone()
		out.AddInletSegment(c.number)
		s.segments[outletPos] = out
	}
	return nil
}

// Replace swaps in a new version of an existing segment, typically a
// WithVolume/WithGeometry clone. The outlet must not change; the inlet
// list is kept from the stored segment.
func (s *SegmentSet) Replace(seg *Segment) error {
	pos, ok := s.index[seg.number]
	if !ok {
		return segmentErr("replace", seg.number, ErrUnknownSegment)
	}
	old := s.segments[pos]
	if old.outlet != seg.outlet {
		return segmentErrf("replace", seg.number, ErrMalformedSegment, "outlet changed from %d to %d", old.outlet, seg.outlet)
	}
	if err := seg.checkDevice(); err != nil {
		return err
	}
	c := seg.clone()
	c.inlets = slices.Clone(old.inlets)
	s.segments[pos] = c
	return nil
}

// Contains reports whether the segment number is present
func (s *SegmentSet) Contains(number int) bool {
	_, ok := s.index[number]
	return ok
}

// Lookup returns a copy of the segment with the given number. Devices
// stay shared with the stored segment; use Replace to write changes back.
func (s *SegmentSet) Lookup(number int) (*Segment, error) {
	seg, err := s.lookup(number)
	if err != nil {
		return nil, err
	}
	return seg.clone(), nil
}

func (s *SegmentSet) lookup(number int) (*Segment, error) {
	pos, ok := s.index[number]
	if !ok {
		return nil, segmentErr("lookup", number, ErrUnknownSegment)
	}
	return s.segments[pos], nil
}

// Segments returns the segments in insertion order. The segments are
// the stored ones and must be treated as read-only.
func (s *SegmentSet) Segments() []*Segment {
	return slices.Clone(s.segments)
}

// Inlets returns the inlet numbers of a segment
func (s *SegmentSet) Inlets(number int) ([]int, error) {
	seg, err := s.lookup(number)
	if err != nil {
		return nil, err
	}
	return seg.InletSegments(), nil
}

// Branch returns the segments of one branch in insertion order
func (s *SegmentSet) Branch(branch int) []*Segment {
	var out []*Segment
	for _, seg := range s.segments {
		if seg.branch == branch {
			out = append(out, seg)
		}
	}
	return out
}

// Root returns the single top segment
func (s *SegmentSet) Root() (*Segment, error) {
	var root *Segment
	for _, seg := range s.segments {
		if !seg.IsTop() {
			continue
		}
		if root != nil {
			return nil, segmentErrf("root", seg.number, ErrMissingRoot, "segment %d is also a top segment", root.number)
		}
		root = seg
	}
	if root == nil {
		return nil, fmt.Errorf("well %s: %w: no segment has outlet %d", s.well, ErrMissingRoot, NoOutlet)
	}
	return root, nil
}

// TopDown returns every segment ordered so that each one follows its
// outlet (breadth-first from the top segment, inlets in order).
func (s *SegmentSet) TopDown() ([]*Segment, error) {
	root, err := s.Root()
	if err != nil {
		return nil, err
	}

	order := make([]*Segment, 0, len(s.segments))
	visited := make(map[int]bool, len(s.segments))
	queue := []*Segment{root}
	visited[root.number] = true

	for len(queue) > 0 {
		seg := queue[0]
		queue = queue[1:]
		order = append(order, seg)

		for _, inlet := range seg.inlets {
			child, err := s.lookup(inlet)
			if err != nil {
				return nil, err
			}
			if child.outlet != seg.number {
				return nil, segmentErrf("traverse", inlet, ErrCyclicTopology, "listed as inlet of %d but flows into %d", seg.number, child.outlet)
			}
			if visited[inlet] {
				return nil, segmentErrf("traverse", inlet, ErrCyclicTopology, "reached twice")
			}
			visited[inlet] = true
			queue = append(queue, child)
		}
	}

	if len(order) != len(s.segments) {
		for _, seg := range s.segments {
			if !visited[seg.number] {
				return nil, segmentErrf("traverse", seg.number, ErrCyclicTopology, "not reachable from top segment %d", root.number)
			}
		}
	}
	return order, nil
}

// SegmentLength returns the length of one segment: its absolute length
// minus its outlet's, or the full length for the top segment
func (s *SegmentSet) SegmentLength(number int) (float64, error) {
	seg, err := s.lookup(number)
	if err != nil {
		return 0, err
	}
	if !seg.dataReady {
		return 0, segmentErr("segment length", number, ErrNotFinalized)
	}
	outlet, ok := seg.Outlet()
	if !ok {
		return seg.totalLength, nil
	}
	out, err := s.lookup(outlet)
	if err != nil {
		return 0, err
	}
	return seg.totalLength - out.totalLength, nil
}

// Finalize converts incremental length/depth to absolute values, fills
// defaulted volumes (area × segment length) and marks every segment
// ready. The set is left unchanged on error.
func (s *SegmentSet) Finalize() error {
	order, err := s.TopDown()
	if err != nil {
		return err
	}

	updated := make(map[int]*Segment, len(order))
	for _, seg := range order {
		if err := seg.Validate(); err != nil {
			return err
		}

		outletNumber, ok := seg.Outlet()
		if !ok {
			if seg.dataReady {
				updated[seg.number] = seg
			} else {
				updated[seg.number] = seg.WithGeometry(seg.depth, seg.totalLength)
			}
			continue
		}

		outlet := updated[outletNumber]
		length, depth := seg.totalLength, seg.depth
		segLength := length
		if seg.dataReady {
			segLength = length - outlet.totalLength
		} else {
			length += outlet.totalLength
			depth += outlet.depth
		}

		if seg.volume == InvalidValue {
			updated[seg.number] = seg.WithGeometryAndVolume(depth, length, seg.crossArea*segLength)
		} else {
			updated[seg.number] = seg.WithGeometry(depth, length)
		}
	}

	for number, seg := range updated {
		s.segments[s.index[number]] = seg
	}
	return nil
}

// Validate checks every tree invariant: a single top segment, resolvable
// outlets, no cycles, inlet lists mirroring outlets, undefined geometry
// only on the top segment and devices matching segment types.
func (s *SegmentSet) Validate() error {
	for _, seg := range s.segments {
		if outlet, ok := seg.Outlet(); ok && !s.Contains(outlet) {
			return segmentErrf("validate", seg.number, ErrDanglingOutletReference, "outlet %d", outlet)
		}
	}

	expected := make(map[int][]int, len(s.segments))
	for _, seg := range s.segments {
		if outlet, ok := seg.Outlet(); ok {
			expected[outlet] = append(expected[outlet], seg.number)
		}
	}
	for _, seg := range s.segments {
		got := slices.Clone(seg.inlets)
		want := slices.Clone(expected[seg.number])
		slices.Sort(got)
		slices.Sort(want)
		if !slices.Equal(got, want) {
			return segmentErrf("validate", seg.number, ErrMalformedSegment, "inlets %v, segments flowing in %v", seg.inlets, expected[seg.number])
		}
	}

	if _, err := s.TopDown(); err != nil {
		return err
	}
	for _, seg := range s.segments {
		if err := seg.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RequireFinalized checks that the tree is valid, finalized, and that
// every SICD/VALVE segment carries its device. AICD segments pass; they
// only fail where device behavior is needed.
func (s *SegmentSet) RequireFinalized() error {
	if err := s.Validate(); err != nil {
		return err
	}
	for _, seg := range s.segments {
		if !seg.dataReady {
			return segmentErr("require finalized", seg.number, ErrNotFinalized)
		}
		if !seg.hasDevice() {
			return segmentErrf("require finalized", seg.number, ErrDeviceTypeMismatch, "%s segment has no device", seg.segmentType)
		}
	}
	return nil
}

// RequireReady is the gate for solver code: on top of RequireFinalized,
// every segment type must have supported device behavior.
func (s *SegmentSet) RequireReady() error {
	if err := s.RequireFinalized(); err != nil {
		return err
	}
	for _, seg := range s.segments {
		if !seg.segmentType.Supported() {
			return segmentErr("require ready", seg.number, ErrUnsupportedSegmentType)
		}
	}
	return nil
}

// UpdateSpiralICD attaches a spiral ICD to a SICD segment
func (s *SegmentSet) UpdateSpiralICD(number int, device SpiralICD) error {
	seg, err := s.lookup(number)
	if err != nil {
		return err
	}
	c := seg.clone()
	if err := c.UpdateSpiralICD(device); err != nil {
		return err
	}
	s.segments[s.index[number]] = c
	return nil
}

// UpdateValve attaches a valve to a VALVE segment, resolving defaulted
// valve properties from the finalized segment length
func (s *SegmentSet) UpdateValve(number int, valve Valve) error {
	seg, err := s.lookup(number)
	if err != nil {
		return err
	}
	if seg.segmentType == SegmentTypeAICD {
		return segmentErr("update valve", number, ErrUnsupportedSegmentType)
	}
	length, err := s.SegmentLength(number)
	if err != nil {
		return err
	}
	c := seg.clone()
	if err := c.UpdateValve(valve, length); err != nil {
		return err
	}
	s.segments[s.index[number]] = c
	return nil
}

// Equal compares two sets segment by segment in insertion order
func (s *SegmentSet) Equal(o *SegmentSet) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.well != o.well || len(s.segments) != len(o.segments) {
		return false
	}
	for i := range s.segments {
		if !s.segments[i].Equal(o.segments[i]) {
			return false
		}
	}
	return true
}
