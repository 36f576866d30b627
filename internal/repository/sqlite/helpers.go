package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"mswell/internal/domain"
)

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a column to the segments table:
// 1. Add field to segmentRow (below)
// 2. APPEND to scanArgs() and segmentColumns in the same position
// 3. Map it in toRestart() and segmentInsertArgs()
// 4. Add a migration in sqlite.go migrate()
//
// CRITICAL: column order must match between segmentColumns, scanArgs()
// and segmentInsertArgs().

// ============================================================================
// Segment Row Scanner
// ============================================================================

// segmentRow holds all columns from a segment query for scanning
type segmentRow struct {
	Segment       int
	Branch        int
	OutletSegment int
	SegmentType   int
	DistBHPRef    float64
	NodeDepth     float64
	Diameter      float64
	Roughness     float64
	Area          float64
	Volume        float64
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match segmentColumns order exactly
func (r *segmentRow) scanArgs() []interface{} {
	return []interface{}{
		&r.Segment,       // 1
		&r.Branch,        // 2
		&r.OutletSegment, // 3
		&r.SegmentType,   // 4
		&r.DistBHPRef,    // 5
		&r.NodeDepth,     // 6
		&r.Diameter,      // 7
		&r.Roughness,     // 8
		&r.Area,          // 9
		&r.Volume,        // 10
	}
}

func (r *segmentRow) toRestart() domain.RstSegment {
	return domain.RstSegment{
		Segment:       r.Segment,
		Branch:        r.Branch,
		OutletSegment: r.OutletSegment,
		SegmentType:   r.SegmentType,
		DistBHPRef:    r.DistBHPRef,
		NodeDepth:     r.NodeDepth,
		Diameter:      r.Diameter,
		Roughness:     r.Roughness,
		Area:          r.Area,
		Volume:        r.Volume,
	}
}

// segmentColumns is the SELECT column list for segment queries
const segmentColumns = `segment, branch, outlet_segment, segment_type,
	dist_bhp_ref, node_depth, diameter, roughness, area, volume`

// segmentInsertArgs returns checkpoint_id, seq followed by segmentColumns
func segmentInsertArgs(checkpointID string, seq int, rst domain.RstSegment) []interface{} {
	return []interface{}{
		checkpointID,
		seq,
		rst.Segment,
		rst.Branch,
		rst.OutletSegment,
		rst.SegmentType,
		rst.DistBHPRef,
		rst.NodeDepth,
		rst.Diameter,
		rst.Roughness,
		rst.Area,
		rst.Volume,
	}
}

// ============================================================================
// Device Rows
// ============================================================================

const (
	deviceKindSpiralICD = "sicd"
	deviceKindValve     = "valve"
)

// deviceRow is one device record of a checkpoint
type deviceRow struct {
	Segment int
	Kind    string
	Data    sql.NullString
}

func (r *deviceRow) scanArgs() []interface{} {
	return []interface{}{&r.Segment, &r.Kind, &r.Data}
}

// attach restores the device onto its segment in set
func (r *deviceRow) attach(set *domain.SegmentSet) error {
	if !r.Data.Valid {
		return fmt.Errorf("device for segment %d has no data", r.Segment)
	}
	switch r.Kind {
	case deviceKindSpiralICD:
		var icd domain.SpiralICD
		if err := json.Unmarshal([]byte(r.Data.String), &icd); err != nil {
			return fmt.Errorf("unmarshal spiral ICD for segment %d: %w", r.Segment, err)
		}
		return set.UpdateSpiralICD(r.Segment, icd)
	case deviceKindValve:
		var valve domain.Valve
		if err := json.Unmarshal([]byte(r.Data.String), &valve); err != nil {
			return fmt.Errorf("unmarshal valve for segment %d: %w", r.Segment, err)
		}
		return set.UpdateValve(r.Segment, valve)
	}
	return fmt.Errorf("unknown device kind %q for segment %d", r.Kind, r.Segment)
}

// deviceInsertArgs returns the device row of seg, or nil if it has none
func deviceInsertArgs(checkpointID string, seg *domain.Segment) ([]interface{}, error) {
	var (
		kind string
		v    interface{}
	)
	switch {
	case seg.SpiralICD() != nil:
		kind, v = deviceKindSpiralICD, seg.SpiralICD()
	case seg.Valve() != nil:
		kind, v = deviceKindValve, seg.Valve()
	default:
		return nil, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s for segment %d: %w", kind, seg.SegmentNumber(), err)
	}
	return []interface{}{checkpointID, seg.SegmentNumber(), kind, string(data)}, nil
}
