package domain

import "time"

// RstSegment is the flat per-segment record persisted in a restart
// checkpoint. Geometry is always absolute.
type RstSegment struct {
	Segment       int     `json:"segment"`
	Branch        int     `json:"branch"`
	OutletSegment int     `json:"outlet_segment"`
	SegmentType   int     `json:"segment_type"`
	DistBHPRef    float64 `json:"dist_bhp_ref"`
	NodeDepth     float64 `json:"node_depth"`
	Diameter      float64 `json:"diameter"`
	Roughness     float64 `json:"roughness"`
	Area          float64 `json:"area"`
	Volume        float64 `json:"volume"`
}

// NewSegmentFromRestart rebuilds a finalized segment from a checkpoint
// record. Devices are attached afterwards by the owning SegmentSet.
func NewSegmentFromRestart(rst RstSegment) (*Segment, error) {
	segType, err := TypeFromInt(rst.SegmentType)
	if err != nil {
		return nil, segmentErr("restore", rst.Segment, err)
	}
	return NewSegment(SegmentFields{
		Number:           rst.Segment,
		Branch:           rst.Branch,
		Outlet:           rst.OutletSegment,
		TotalLength:      rst.DistBHPRef,
		Depth:            rst.NodeDepth,
		InternalDiameter: rst.Diameter,
		Roughness:        rst.Roughness,
		CrossArea:        rst.Area,
		Volume:           rst.Volume,
		DataReady:        true,
		Type:             segType,
	}), nil
}

// ToRestart flattens a finalized segment into a checkpoint record
func (s *Segment) ToRestart() (RstSegment, error) {
	if !s.dataReady {
		return RstSegment{}, segmentErr("checkpoint", s.number, ErrNotFinalized)
	}
	return RstSegment{
		Segment:       s.number,
		Branch:        s.branch,
		OutletSegment: s.outlet,
		SegmentType:   s.EclTypeID(),
		DistBHPRef:    s.totalLength,
		NodeDepth:     s.depth,
		Diameter:      s.internalDiameter,
		Roughness:     s.roughness,
		Area:          s.crossArea,
		Volume:        s.volume,
	}, nil
}

// CheckpointInfo describes one stored restart checkpoint of a well
type CheckpointInfo struct {
	ID           string    `json:"id"`
	Well         string    `json:"well"`
	SegmentCount int       `json:"segment_count"`
	CreatedAt    time.Time `json:"created_at"`
}
