package domain

import (
	"fmt"
	"strings"
)

// SegmentType classifies a segment by the flow device it carries
type SegmentType int

const (
	SegmentTypeRegular SegmentType = iota
	SegmentTypeSICD
	SegmentTypeAICD // recognized so decks round-trip, no device behavior
	SegmentTypeValve
)

// eclTypeIDs is the fixed type-code table of the deck and restart formats
var eclTypeIDs = map[SegmentType]int{
	SegmentTypeRegular: 0,
	SegmentTypeSICD:    1,
	SegmentTypeAICD:    2,
	SegmentTypeValve:   3,
}

var segmentTypeNames = map[SegmentType]string{
	SegmentTypeRegular: "REGULAR",
	SegmentTypeSICD:    "SICD",
	SegmentTypeAICD:    "AICD",
	SegmentTypeValve:   "VALVE",
}

// EclTypeID returns the integer code used by the file formats
func (t SegmentType) EclTypeID() int {
	if id, ok := eclTypeIDs[t]; ok {
		return id
	}
	return -1
}

// String returns the deck keyword spelling of the type
func (t SegmentType) String() string {
	if name, ok := segmentTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("SegmentType(%d)", int(t))
}

// Supported reports whether the type has implemented device behavior
func (t SegmentType) Supported() bool {
	return t != SegmentTypeAICD
}

// TypeFromInt maps a file-format type code back to a SegmentType
func TypeFromInt(id int) (SegmentType, error) {
	for t, code := range eclTypeIDs {
		if code == id {
			return t, nil
		}
	}
	return SegmentTypeRegular, fmt.Errorf("%w: %d", ErrInvalidTypeCode, id)
}

// ParseSegmentType parses the keyword spelling (case-insensitive)
func ParseSegmentType(s string) (SegmentType, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "" {
		return SegmentTypeRegular, nil
	}
	for t, n := range segmentTypeNames {
		if n == name {
			return t, nil
		}
	}
	return SegmentTypeRegular, fmt.Errorf("%w: %q", ErrInvalidTypeCode, s)
}
