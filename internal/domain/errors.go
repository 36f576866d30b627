package domain

import (
	"errors"
	"fmt"
)

// Error kinds reported by the segment model. Match with errors.Is.
var (
	ErrInvalidTypeCode         = errors.New("invalid segment type code")
	ErrDuplicateSegmentNumber  = errors.New("duplicate segment number")
	ErrDanglingOutletReference = errors.New("outlet segment does not exist")
	ErrCyclicTopology          = errors.New("segment topology contains a cycle")
	ErrMissingRoot             = errors.New("well must have exactly one top segment")
	ErrUnknownSegment          = errors.New("unknown segment")
	ErrDeviceTypeMismatch      = errors.New("device does not match segment type")
	ErrUnsupportedSegmentType  = errors.New("unsupported segment type")
	ErrMalformedSegment        = errors.New("malformed segment")
	ErrNotFinalized            = errors.New("segment data not finalized")
)

// SegmentError carries the segment number an operation failed on
type SegmentError struct {
	Op      string
	Segment int
	Err     error
	Detail  string
}

func (e *SegmentError) Error() string {
	msg := fmt.Sprintf("%s segment %d: %v", e.Op, e.Segment, e.Err)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}

func segmentErr(op string, segment int, err error) error {
	return &SegmentError{Op: op, Segment: segment, Err: err}
}

func segmentErrf(op string, segment int, err error, format string, args ...any) error {
	return &SegmentError{Op: op, Segment: segment, Err: err, Detail: fmt.Sprintf(format, args...)}
}

// SegmentNumberOf extracts the offending segment number from err, if any
func SegmentNumberOf(err error) (int, bool) {
	var se *SegmentError
	if errors.As(err, &se) {
		return se.Segment, true
	}
	return 0, false
}
