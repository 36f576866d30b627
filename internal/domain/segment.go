package domain

import (
	"fmt"
	"slices"
)

// InvalidValue marks a geometry value that does not apply to a segment,
// e.g. diameter, roughness and area of the top segment.
const InvalidValue = -1.0e100

// NoOutlet is the outlet number of the top segment
const NoOutlet = -1

// Segment is one node of a multi-segment well. Lengths and depths are
// incremental (relative to the outlet) until DataReady is set, absolute
// from the bhp reference point afterwards.
//
// Devices are shared: clones reference the same SpiralICD/Valve.
type Segment struct {
	number int
	branch int
	outlet int
	inlets []int

	totalLength      float64
	depth            float64
	internalDiameter float64
	roughness        float64
	crossArea        float64
	volume           float64
	dataReady        bool

	segmentType SegmentType
	spiralICD   *SpiralICD
	valve       *Valve
}

// SegmentFields holds the scalar values a segment is built from
type SegmentFields struct {
	Number           int
	Branch           int
	Outlet           int
	TotalLength      float64
	Depth            float64
	InternalDiameter float64
	Roughness        float64
	CrossArea        float64
	Volume           float64
	DataReady        bool
	Type             SegmentType
}

// NewDefaultSegment returns a placeholder with every value undefined
func NewDefaultSegment() *Segment {
	return &Segment{
		number:           -1,
		branch:           -1,
		outlet:           NoOutlet,
		totalLength:      InvalidValue,
		depth:            InvalidValue,
		internalDiameter: InvalidValue,
		roughness:        InvalidValue,
		crossArea:        InvalidValue,
		volume:           InvalidValue,
		segmentType:      SegmentTypeRegular,
	}
}

// NewSegment builds a segment without a device. The caller is
// responsible for using InvalidValue only on the top segment.
func NewSegment(f SegmentFields) *Segment {
	return &Segment{
		number:           f.Number,
		branch:           f.Branch,
		outlet:           f.Outlet,
		totalLength:      f.TotalLength,
		depth:            f.Depth,
		internalDiameter: f.InternalDiameter,
		roughness:        f.Roughness,
		crossArea:        f.CrossArea,
		volume:           f.Volume,
		dataReady:        f.DataReady,
		segmentType:      f.Type,
	}
}

// NewSegmentWithDevices builds a segment with inlets and device
// references. Devices are shared, not copied. A device that does not
// match the segment type is rejected.
func NewSegmentWithDevices(f SegmentFields, inlets []int, spiralICD *SpiralICD, valve *Valve) (*Segment, error) {
	seg := NewSegment(f)
	seg.inlets = slices.Clone(inlets)
	seg.spiralICD = spiralICD
	seg.valve = valve
	if err := seg.checkDevice(); err != nil {
		return nil, err
	}
	return seg, nil
}

// clone copies the record; the inlet slice is copied, devices are shared
func (s *Segment) clone() *Segment {
	c := *s
	c.inlets = slices.Clone(s.inlets)
	return &c
}

// WithVolume returns a copy with the volume replaced
func (s *Segment) WithVolume(volume float64) *Segment {
	c := s.clone()
	c.volume = volume
	return c
}

// WithGeometry returns a copy carrying absolute depth and length
func (s *Segment) WithGeometry(depth, length float64) *Segment {
	c := s.clone()
	c.depth = depth
	c.totalLength = length
	c.dataReady = true
	return c
}

// WithGeometryAndVolume returns a copy carrying absolute depth and
// length and a new volume
func (s *Segment) WithGeometryAndVolume(depth, length, volume float64) *Segment {
	c := s.WithGeometry(depth, length)
	c.volume = volume
	return c
}

func (s *Segment) SegmentNumber() int { return s.number }
func (s *Segment) BranchNumber() int  { return s.branch }
func (s *Segment) OutletSegment() int { return s.outlet }

// Outlet returns the outlet segment number, false for the top segment
func (s *Segment) Outlet() (int, bool) {
	if s.outlet == NoOutlet {
		return 0, false
	}
	return s.outlet, true
}

// IsTop reports whether this is the well's top (root) segment
func (s *Segment) IsTop() bool { return s.outlet == NoOutlet }

// InletSegments returns the inlet numbers in registration order
func (s *Segment) InletSegments() []int { return slices.Clone(s.inlets) }

func (s *Segment) TotalLength() float64      { return s.totalLength }
func (s *Segment) Depth() float64            { return s.depth }
func (s *Segment) InternalDiameter() float64 { return s.internalDiameter }
func (s *Segment) Roughness() float64        { return s.roughness }
func (s *Segment) CrossArea() float64        { return s.crossArea }
func (s *Segment) Volume() float64           { return s.volume }
func (s *Segment) DataReady() bool           { return s.dataReady }
func (s *Segment) Type() SegmentType         { return s.segmentType }

// EclTypeID returns the file-format code of the segment type
func (s *Segment) EclTypeID() int { return s.segmentType.EclTypeID() }

// SpiralICD returns the shared device, nil unless the segment is SICD
func (s *Segment) SpiralICD() *SpiralICD { return s.spiralICD }

// Valve returns the shared device, nil unless the segment is VALVE
func (s *Segment) Valve() *Valve { return s.valve }

// PipeGeometry returns diameter, roughness and area; ok is false when
// they are undefined (top segment)
func (s *Segment) PipeGeometry() (diameter, roughness, area float64, ok bool) {
	if s.internalDiameter == InvalidValue || s.roughness == InvalidValue || s.crossArea == InvalidValue {
		return 0, 0, 0, false
	}
	return s.internalDiameter, s.roughness, s.crossArea, true
}

// AddInletSegment registers an inlet. Duplicates are not filtered.
func (s *Segment) AddInletSegment(number int) {
	s.inlets = append(s.inlets, number)
}

// UpdateSpiralICD attaches a copy of device
func (s *Segment) UpdateSpiralICD(device SpiralICD) error {
	if err := s.requireType(SegmentTypeSICD, "update spiral ICD"); err != nil {
		return err
	}
	s.spiralICD = &device
	return nil
}

// UpdateValve attaches a copy of valve, resolving its defaulted pipe
// properties from segmentLength and this segment's geometry
func (s *Segment) UpdateValve(valve Valve, segmentLength float64) error {
	if err := s.requireType(SegmentTypeValve, "update valve"); err != nil {
		return err
	}
	valve.RecomputeFromLength(segmentLength)
	if valve.PipeDiameter < 0 {
		valve.PipeDiameter = s.internalDiameter
	}
	if valve.PipeRoughness < 0 {
		valve.PipeRoughness = s.roughness
	}
	if valve.PipeCrossArea < 0 {
		valve.PipeCrossArea = s.crossArea
	}
	if valve.ConMaxCrossArea < 0 {
		valve.ConMaxCrossArea = valve.PipeCrossArea
	}
	s.valve = &valve
	return nil
}

func (s *Segment) requireType(want SegmentType, op string) error {
	if s.segmentType == SegmentTypeAICD {
		return segmentErr(op, s.number, ErrUnsupportedSegmentType)
	}
	if s.segmentType != want {
		return segmentErrf(op, s.number, ErrDeviceTypeMismatch, "segment is %s", s.segmentType)
	}
	return nil
}

// checkDevice verifies a present device matches the segment type.
// A SICD/VALVE segment may still be waiting for its device.
func (s *Segment) checkDevice() error {
	switch {
	case s.spiralICD == nil && s.valve == nil:
		return nil
	case s.segmentType == SegmentTypeAICD:
		return segmentErr("check device", s.number, ErrUnsupportedSegmentType)
	case s.spiralICD != nil && s.valve != nil:
		return segmentErrf("check device", s.number, ErrDeviceTypeMismatch, "both spiral ICD and valve attached")
	case s.spiralICD != nil && s.segmentType != SegmentTypeSICD:
		return segmentErrf("check device", s.number, ErrDeviceTypeMismatch, "spiral ICD on %s segment", s.segmentType)
	case s.valve != nil && s.segmentType != SegmentTypeValve:
		return segmentErrf("check device", s.number, ErrDeviceTypeMismatch, "valve on %s segment", s.segmentType)
	}
	return nil
}

// hasDevice reports whether a SICD/VALVE segment carries its device
func (s *Segment) hasDevice() bool {
	switch s.segmentType {
	case SegmentTypeSICD:
		return s.spiralICD != nil
	case SegmentTypeValve:
		return s.valve != nil
	}
	return true
}

// Validate checks the record on its own: undefined pipe geometry is
// only allowed on the top segment, and devices must match the type.
func (s *Segment) Validate() error {
	if !s.IsTop() {
		fields := []struct {
			name  string
			value float64
		}{
			{"internal diameter", s.internalDiameter},
			{"roughness", s.roughness},
			{"cross area", s.crossArea},
		}
		for _, f := range fields {
			if f.value == InvalidValue {
				return segmentErrf("validate", s.number, ErrMalformedSegment, "%s undefined", f.name)
			}
		}
	}
	return s.checkDevice()
}

// Equal compares every field; devices by value, inlets by order
func (s *Segment) Equal(o *Segment) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.number != o.number ||
		s.branch != o.branch ||
		s.outlet != o.outlet ||
		!slices.Equal(s.inlets, o.inlets) ||
		s.totalLength != o.totalLength ||
		s.depth != o.depth ||
		s.internalDiameter != o.internalDiameter ||
		s.roughness != o.roughness ||
		s.crossArea != o.crossArea ||
		s.volume != o.volume ||
		s.dataReady != o.dataReady ||
		s.segmentType != o.segmentType {
		return false
	}
	if (s.spiralICD == nil) != (o.spiralICD == nil) || (s.valve == nil) != (o.valve == nil) {
		return false
	}
	if s.spiralICD != nil && !s.spiralICD.Equal(*o.spiralICD) {
		return false
	}
	if s.valve != nil && !s.valve.Equal(*o.valve) {
		return false
	}
	return true
}

func (s *Segment) String() string {
	return fmt.Sprintf("segment %d (branch %d, outlet %d, %s)", s.number, s.branch, s.outlet, s.segmentType)
}

// IsRegular, IsSpiralICD and IsValve classify a segment by type
func IsRegular(s *Segment) bool   { return s.segmentType == SegmentTypeRegular }
func IsSpiralICD(s *Segment) bool { return s.segmentType == SegmentTypeSICD }
func IsValve(s *Segment) bool     { return s.segmentType == SegmentTypeValve }
