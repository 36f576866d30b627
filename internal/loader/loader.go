// Package loader reads a well's segment deck (WELSEGS, WSEGSICD and
// WSEGVALV records in YAML form) into a domain.SegmentSet.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"

	"mswell/internal/domain"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedField is returned for deck items the model does not
// handle: projected X/Y lengths and thermal properties
var ErrUnsupportedField = errors.New("unsupported deck item")

// LengthDepthMode tells whether WELSEGS lengths/depths are incremental
// or absolute
type LengthDepthMode string

const (
	ModeINC LengthDepthMode = "INC"
	ModeABS LengthDepthMode = "ABS"
)

// ParseMode parses INC/ABS; empty returns def
func ParseMode(s string, def LengthDepthMode) (LengthDepthMode, error) {
	switch LengthDepthMode(strings.ToUpper(strings.TrimSpace(s))) {
	case "":
		return def, nil
	case ModeINC:
		return ModeINC, nil
	case ModeABS:
		return ModeABS, nil
	}
	return def, fmt.Errorf("invalid length/depth mode %q", s)
}

// Options control deck decoding
type Options struct {
	DefaultMode LengthDepthMode
	Strict      bool    // reject unknown keys
	TopVolume   float64 // wellbore volume when the deck omits it
}

// DefaultOptions matches the WELSEGS keyword defaults
func DefaultOptions() Options {
	return Options{DefaultMode: ModeINC, TopVolume: 1e-5}
}

// DeckFields are the primitive values of one segment as extracted from
// a deck record
type DeckFields struct {
	Number    int
	Branch    int
	Outlet    int
	Length    float64
	Depth     float64
	Diameter  float64
	Roughness float64
	Area      float64
	Volume    float64
	DataReady bool
	TypeCode  int
}

// SegmentFromDeckFields builds one segment from extracted deck values
func SegmentFromDeckFields(f DeckFields) (*domain.Segment, error) {
	segType, err := domain.TypeFromInt(f.TypeCode)
	if err != nil {
		return nil, fmt.Errorf("segment %d: %w", f.Number, err)
	}
	return domain.NewSegment(domain.SegmentFields{
		Number:           f.Number,
		Branch:           f.Branch,
		Outlet:           f.Outlet,
		TotalLength:      f.Length,
		Depth:            f.Depth,
		InternalDiameter: f.Diameter,
		Roughness:        f.Roughness,
		CrossArea:        f.Area,
		Volume:           f.Volume,
		DataReady:        f.DataReady,
		Type:             segType,
	}), nil
}

// Deck is a decoded but not yet finalized well
type Deck struct {
	Well       string
	Mode       LengthDepthMode
	Segments   *domain.SegmentSet
	SpiralICDs map[int]domain.SpiralICD
	Valves     map[int]domain.Valve
}

// LoadDeck reads and decodes a deck file
func LoadDeck(path string, opts Options) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck: %w", err)
	}
	return ParseDeck(data, opts)
}

// ParseDeck decodes deck bytes
func ParseDeck(data []byte, opts Options) (*Deck, error) {
	var y DeckYAML
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(opts.Strict)
	if err := dec.Decode(&y); err != nil {
		return nil, fmt.Errorf("failed to parse deck: %w", err)
	}
	return convertDeck(&y, opts)
}

func convertDeck(y *DeckYAML, opts Options) (*Deck, error) {
	if y.Well == "" {
		return nil, errors.New("deck has no well name")
	}
	if y.WELSEGS == nil {
		return nil, fmt.Errorf("well %s: missing WELSEGS", y.Well)
	}
	ws := y.WELSEGS
	if ws.TopX != nil || ws.TopY != nil {
		return nil, fmt.Errorf("well %s: %w: top segment X/Y coordinates", y.Well, ErrUnsupportedField)
	}
	if opts.DefaultMode == "" {
		opts.DefaultMode = ModeINC
	}
	mode, err := ParseMode(ws.Mode, opts.DefaultMode)
	if err != nil {
		return nil, fmt.Errorf("well %s: %w", y.Well, err)
	}

	deck := &Deck{
		Well:       y.Well,
		Mode:       mode,
		Segments:   domain.NewSegmentSet(y.Well),
		SpiralICDs: make(map[int]domain.SpiralICD),
		Valves:     make(map[int]domain.Valve),
	}

	deviceTypes, err := deck.convertDevices(y)
	if err != nil {
		return nil, err
	}

	topVolume := opts.TopVolume
	if ws.WellboreVolume != nil {
		topVolume = *ws.WellboreVolume
	}
	top, err := SegmentFromDeckFields(DeckFields{
		Number:    1,
		Branch:    1,
		Outlet:    domain.NoOutlet,
		Length:    ws.TopLength,
		Depth:     ws.TopDepth,
		Diameter:  domain.InvalidValue,
		Roughness: domain.InvalidValue,
		Area:      domain.InvalidValue,
		Volume:    topVolume,
		DataReady: mode == ModeABS,
	})
	if err != nil {
		return nil, err
	}
	if err := deck.Segments.Insert(top); err != nil {
		return nil, fmt.Errorf("well %s: %w", y.Well, err)
	}

	for i, rec := range ws.Segments {
		if err := deck.addRecord(rec, mode, deviceTypes); err != nil {
			return nil, fmt.Errorf("well %s: WELSEGS record %d: %w", y.Well, i+1, err)
		}
	}

	for number := range deviceTypes {
		if !deck.Segments.Contains(number) {
			return nil, fmt.Errorf("well %s: device on segment %d: %w", y.Well, number, domain.ErrUnknownSegment)
		}
	}
	return deck, nil
}

// addRecord expands one WELSEGS record into its segment range. Each
// segment flows into the previous one; the first into the record outlet.
func (d *Deck) addRecord(rec SegmentYAML, mode LengthDepthMode, deviceTypes map[int]domain.SegmentType) error {
	if rec.LengthX != nil || rec.LengthY != nil {
		return fmt.Errorf("%w: projected X/Y segment length", ErrUnsupportedField)
	}
	if rec.ThermalConductivity != nil || rec.HeatCapacity != nil || rec.WallThickness != nil {
		return fmt.Errorf("%w: thermal conduction properties", ErrUnsupportedField)
	}

	first, last := rec.First, lastOf(rec.First, rec.Last)
	if first < 2 || last < first {
		return fmt.Errorf("invalid segment range %d..%d", first, last)
	}
	if rec.Branch < 1 {
		return fmt.Errorf("invalid branch %d", rec.Branch)
	}

	declared, err := domain.ParseSegmentType(rec.Type)
	if err != nil {
		return err
	}

	area := math.Pi * rec.Diameter * rec.Diameter / 4
	if rec.Area != nil {
		area = *rec.Area
	}
	volume := domain.InvalidValue
	if rec.Volume != nil {
		volume = *rec.Volume
	}

	// ABS values are interpolated from the outlet of the first segment
	var startLength, startDepth float64
	if mode == ModeABS {
		outlet, err := d.Segments.Lookup(rec.Outlet)
		if err != nil {
			return err
		}
		startLength, startDepth = outlet.TotalLength(), outlet.Depth()
	}
	count := float64(last - first + 1)

	outlet := rec.Outlet
	for number := first; number <= last; number++ {
		segType, err := resolveType(number, rec.Type != "", declared, deviceTypes)
		if err != nil {
			return err
		}

		length, depth := rec.Length, rec.Depth
		if mode == ModeABS {
			frac := float64(number-first+1) / count
			length = startLength + (rec.Length-startLength)*frac
			depth = startDepth + (rec.Depth-startDepth)*frac
		}

		seg, err := SegmentFromDeckFields(DeckFields{
			Number:    number,
			Branch:    rec.Branch,
			Outlet:    outlet,
			Length:    length,
			Depth:     depth,
			Diameter:  rec.Diameter,
			Roughness: rec.Roughness,
			Area:      area,
			Volume:    volume,
			DataReady: mode == ModeABS,
			TypeCode:  segType.EclTypeID(),
		})
		if err != nil {
			return err
		}
		if err := d.Segments.Insert(seg); err != nil {
			return err
		}
		outlet = number
	}
	return nil
}

// resolveType combines a declared segment type with the type implied
// by device records
func resolveType(number int, hasDeclared bool, declared domain.SegmentType, deviceTypes map[int]domain.SegmentType) (domain.SegmentType, error) {
	implied, hasDevice := deviceTypes[number]
	switch {
	case !hasDevice:
		return declared, nil
	case !hasDeclared:
		return implied, nil
	case declared == domain.SegmentTypeAICD:
		return declared, &domain.SegmentError{Op: "load", Segment: number, Err: domain.ErrUnsupportedSegmentType}
	case declared != implied:
		return declared, &domain.SegmentError{
			Op: "load", Segment: number, Err: domain.ErrDeviceTypeMismatch,
			Detail: fmt.Sprintf("declared %s, device record implies %s", declared, implied),
		}
	}
	return declared, nil
}

func (d *Deck) convertDevices(y *DeckYAML) (map[int]domain.SegmentType, error) {
	types := make(map[int]domain.SegmentType)
	assign := func(number int, t domain.SegmentType) error {
		if prev, ok := types[number]; ok && prev != t {
			return &domain.SegmentError{
				Op: "load", Segment: number, Err: domain.ErrDeviceTypeMismatch,
				Detail: fmt.Sprintf("both %s and %s records", prev, t),
			}
		}
		types[number] = t
		return nil
	}

	for i, rec := range y.WSEGSICD {
		icd, err := convertSpiralICD(rec)
		if err != nil {
			return nil, fmt.Errorf("well %s: WSEGSICD record %d: %w", y.Well, i+1, err)
		}
		for number := rec.First; number <= lastOf(rec.First, rec.Last); number++ {
			if err := assign(number, domain.SegmentTypeSICD); err != nil {
				return nil, fmt.Errorf("well %s: %w", y.Well, err)
			}
			d.SpiralICDs[number] = icd
		}
	}

	for i, rec := range y.WSEGVALV {
		valve, err := convertValve(rec)
		if err != nil {
			return nil, fmt.Errorf("well %s: WSEGVALV record %d: %w", y.Well, i+1, err)
		}
		if err := assign(rec.Segment, domain.SegmentTypeValve); err != nil {
			return nil, fmt.Errorf("well %s: %w", y.Well, err)
		}
		d.Valves[rec.Segment] = valve
	}
	return types, nil
}

func convertSpiralICD(rec SpiralICDYAML) (domain.SpiralICD, error) {
	icd := domain.NewSpiralICD(rec.Strength, rec.Length)
	setFloat(&icd.DensityCalibration, rec.DensityCalibration)
	setFloat(&icd.ViscosityCalibration, rec.ViscosityCalibration)
	setFloat(&icd.CriticalValue, rec.CriticalValue)
	setFloat(&icd.WidthTransitionRegion, rec.WidthTransitionRegion)
	setFloat(&icd.MaxViscosityRatio, rec.MaxViscosityRatio)
	if rec.MethodFlowScaling != nil {
		icd.MethodFlowScaling = *rec.MethodFlowScaling
	}
	if rec.MaxAbsoluteRate != nil {
		rate := *rec.MaxAbsoluteRate
		icd.MaxAbsoluteRate = &rate
	}
	status, err := domain.ParseDeviceStatus(rec.Status)
	if err != nil {
		return icd, err
	}
	icd.Status = status
	return icd, nil
}

func convertValve(rec ValveYAML) (domain.Valve, error) {
	valve := domain.NewValve(rec.FlowCoefficient, rec.CrossArea)
	setFloat(&valve.PipeAdditionalLength, rec.AdditionalLength)
	setFloat(&valve.PipeDiameter, rec.PipeDiameter)
	setFloat(&valve.PipeRoughness, rec.PipeRoughness)
	setFloat(&valve.PipeCrossArea, rec.PipeCrossArea)
	setFloat(&valve.ConMaxCrossArea, rec.MaxCrossArea)
	status, err := domain.ParseDeviceStatus(rec.Status)
	if err != nil {
		return valve, err
	}
	valve.Status = status
	return valve, nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// Build finalizes the segment tree and attaches the devices. Valves
// resolve their defaulted properties against the absolute geometry.
func (d *Deck) Build() (*domain.SegmentSet, error) {
	if err := d.Segments.Finalize(); err != nil {
		return nil, fmt.Errorf("well %s: %w", d.Well, err)
	}
	for _, number := range sortedKeys(d.SpiralICDs) {
		if err := d.Segments.UpdateSpiralICD(number, d.SpiralICDs[number]); err != nil {
			return nil, fmt.Errorf("well %s: %w", d.Well, err)
		}
	}
	for _, number := range sortedKeys(d.Valves) {
		if err := d.Segments.UpdateValve(number, d.Valves[number]); err != nil {
			return nil, fmt.Errorf("well %s: %w", d.Well, err)
		}
	}
	return d.Segments, nil
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
