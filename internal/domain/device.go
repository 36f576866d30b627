package domain

import "fmt"

// DeviceStatus is the open/shut state of a flow device
type DeviceStatus string

const (
	DeviceOpen DeviceStatus = "OPEN"
	DeviceShut DeviceStatus = "SHUT"
)

// ParseDeviceStatus parses a status keyword, defaulting to OPEN
func ParseDeviceStatus(s string) (DeviceStatus, error) {
	switch DeviceStatus(s) {
	case "", DeviceOpen:
		return DeviceOpen, nil
	case DeviceShut:
		return DeviceShut, nil
	}
	return DeviceOpen, fmt.Errorf("invalid device status %q", s)
}

// Defaults applied by the WSEGSICD keyword when items are omitted
const (
	DefaultSICDDensityCalibration   = 1000.25
	DefaultSICDViscosityCalibration = 1.45
	DefaultSICDCriticalValue        = 0.5
	DefaultSICDWidthTransition      = 0.05
	DefaultSICDMaxViscosityRatio    = 5.0
	DefaultSICDMethodFlowScaling    = -1
)

// SpiralICD describes a spiral inflow-control device. Hydraulic
// coefficient computations are left to the simulator.
type SpiralICD struct {
	Strength              float64      `json:"strength" yaml:"strength"`
	Length                float64      `json:"length" yaml:"length"`
	DensityCalibration    float64      `json:"density_calibration" yaml:"density_calibration"`
	ViscosityCalibration  float64      `json:"viscosity_calibration" yaml:"viscosity_calibration"`
	CriticalValue         float64      `json:"critical_value" yaml:"critical_value"`
	WidthTransitionRegion float64      `json:"width_transition_region" yaml:"width_transition_region"`
	MaxViscosityRatio     float64      `json:"max_viscosity_ratio" yaml:"max_viscosity_ratio"`
	MethodFlowScaling     int          `json:"method_flow_scaling" yaml:"method_flow_scaling"`
	MaxAbsoluteRate       *float64     `json:"max_absolute_rate,omitempty" yaml:"max_absolute_rate,omitempty"` // nil = unlimited
	Status                DeviceStatus `json:"status" yaml:"status"`
	ScalingFactor         float64      `json:"scaling_factor" yaml:"scaling_factor"`
}

// NewSpiralICD creates a device with keyword defaults for everything
// except strength and length
func NewSpiralICD(strength, length float64) SpiralICD {
	return SpiralICD{
		Strength:              strength,
		Length:                length,
		DensityCalibration:    DefaultSICDDensityCalibration,
		ViscosityCalibration:  DefaultSICDViscosityCalibration,
		CriticalValue:         DefaultSICDCriticalValue,
		WidthTransitionRegion: DefaultSICDWidthTransition,
		MaxViscosityRatio:     DefaultSICDMaxViscosityRatio,
		MethodFlowScaling:     DefaultSICDMethodFlowScaling,
		Status:                DeviceOpen,
		ScalingFactor:         1.0,
	}
}

// Equal compares by value, including the optional rate limit
func (d SpiralICD) Equal(o SpiralICD) bool {
	if (d.MaxAbsoluteRate == nil) != (o.MaxAbsoluteRate == nil) {
		return false
	}
	if d.MaxAbsoluteRate != nil && *d.MaxAbsoluteRate != *o.MaxAbsoluteRate {
		return false
	}
	a, b := d, o
	a.MaxAbsoluteRate, b.MaxAbsoluteRate = nil, nil
	return a == b
}

// Valve describes a sub-critical valve. Pipe fields below zero are
// defaulted and resolved from the owning segment by UpdateValve.
type Valve struct {
	ConFlowCoefficient   float64      `json:"con_flow_coefficient" yaml:"con_flow_coefficient"`
	ConCrossArea         float64      `json:"con_cross_area" yaml:"con_cross_area"`
	PipeAdditionalLength float64      `json:"pipe_additional_length" yaml:"pipe_additional_length"`
	PipeDiameter         float64      `json:"pipe_diameter" yaml:"pipe_diameter"`
	PipeRoughness        float64      `json:"pipe_roughness" yaml:"pipe_roughness"`
	PipeCrossArea        float64      `json:"pipe_cross_area" yaml:"pipe_cross_area"`
	ConMaxCrossArea      float64      `json:"con_max_cross_area" yaml:"con_max_cross_area"`
	Status               DeviceStatus `json:"status" yaml:"status"`
}

// NewValve creates an open valve with all pipe properties defaulted
func NewValve(flowCoefficient, crossArea float64) Valve {
	return Valve{
		ConFlowCoefficient:   flowCoefficient,
		ConCrossArea:         crossArea,
		PipeAdditionalLength: -1,
		PipeDiameter:         -1,
		PipeRoughness:        -1,
		PipeCrossArea:        -1,
		ConMaxCrossArea:      -1,
		Status:               DeviceOpen,
	}
}

// RecomputeFromLength resolves a defaulted additional pipe length to the
// length of the segment the valve sits in
func (v *Valve) RecomputeFromLength(length float64) {
	if v.PipeAdditionalLength < 0 {
		v.PipeAdditionalLength = length
	}
}

// Equal compares by value
func (v Valve) Equal(o Valve) bool {
	return v == o
}
