package loader

// DeckYAML is the YAML form of a well's segment keywords
type DeckYAML struct {
	Well     string          `yaml:"well"`
	WELSEGS  *WelsegsYAML    `yaml:"welsegs"`
	WSEGSICD []SpiralICDYAML `yaml:"wsegsicd,omitempty"`
	WSEGVALV []ValveYAML     `yaml:"wsegvalv,omitempty"`
}

// WelsegsYAML is the WELSEGS header plus its segment records
type WelsegsYAML struct {
	TopDepth       float64       `yaml:"top_depth"`
	TopLength      float64       `yaml:"top_length"`
	WellboreVolume *float64      `yaml:"wellbore_volume,omitempty"`
	Mode           string        `yaml:"mode,omitempty"` // INC or ABS
	Segments       []SegmentYAML `yaml:"segments"`

	// Not supported
	TopX *float64 `yaml:"top_x,omitempty"`
	TopY *float64 `yaml:"top_y,omitempty"`
}

// SegmentYAML covers the segments first..last of one branch
type SegmentYAML struct {
	First     int      `yaml:"first"`
	Last      int      `yaml:"last,omitempty"` // defaults to First
	Branch    int      `yaml:"branch"`
	Outlet    int      `yaml:"outlet"`
	Length    float64  `yaml:"length"`
	Depth     float64  `yaml:"depth"`
	Diameter  float64  `yaml:"diameter"`
	Roughness float64  `yaml:"roughness"`
	Area      *float64 `yaml:"area,omitempty"`
	Volume    *float64 `yaml:"volume,omitempty"`
	Type      string   `yaml:"type,omitempty"`

	// Not supported
	LengthX             *float64 `yaml:"length_x,omitempty"`
	LengthY             *float64 `yaml:"length_y,omitempty"`
	ThermalConductivity *float64 `yaml:"thermal_conductivity,omitempty"`
	HeatCapacity        *float64 `yaml:"heat_capacity,omitempty"`
	WallThickness       *float64 `yaml:"wall_thickness,omitempty"`
}

// SpiralICDYAML is one WSEGSICD record
type SpiralICDYAML struct {
	First                 int      `yaml:"first"`
	Last                  int      `yaml:"last,omitempty"`
	Strength              float64  `yaml:"strength"`
	Length                float64  `yaml:"length"`
	DensityCalibration    *float64 `yaml:"density_calibration,omitempty"`
	ViscosityCalibration  *float64 `yaml:"viscosity_calibration,omitempty"`
	CriticalValue         *float64 `yaml:"critical_value,omitempty"`
	WidthTransitionRegion *float64 `yaml:"width_transition_region,omitempty"`
	MaxViscosityRatio     *float64 `yaml:"max_viscosity_ratio,omitempty"`
	MethodFlowScaling     *int     `yaml:"method_flow_scaling,omitempty"`
	MaxAbsoluteRate       *float64 `yaml:"max_absolute_rate,omitempty"`
	Status                string   `yaml:"status,omitempty"`
}

// ValveYAML is one WSEGVALV record
type ValveYAML struct {
	Segment          int      `yaml:"segment"`
	FlowCoefficient  float64  `yaml:"flow_coefficient"`
	CrossArea        float64  `yaml:"cross_area"`
	AdditionalLength *float64 `yaml:"additional_length,omitempty"`
	PipeDiameter     *float64 `yaml:"pipe_diameter,omitempty"`
	PipeRoughness    *float64 `yaml:"pipe_roughness,omitempty"`
	PipeCrossArea    *float64 `yaml:"pipe_cross_area,omitempty"`
	MaxCrossArea     *float64 `yaml:"max_cross_area,omitempty"`
	Status           string   `yaml:"status,omitempty"`
}

func lastOf(first, last int) int {
	if last == 0 {
		return first
	}
	return last
}
