package domain

import "testing"

func TestNewSpiralICDDefaults(t *testing.T) {
	d := NewSpiralICD(0.002, 10)
	if d.DensityCalibration != DefaultSICDDensityCalibration || d.ViscosityCalibration != DefaultSICDViscosityCalibration {
		t.Errorf("unexpected calibration defaults: %+v", d)
	}
	if d.Status != DeviceOpen {
		t.Errorf("expected OPEN, got %s", d.Status)
	}
	if d.MaxAbsoluteRate != nil {
		t.Error("expected no rate limit by default")
	}
}

func TestSpiralICDEqual(t *testing.T) {
	a, b := NewSpiralICD(0.002, 10), NewSpiralICD(0.002, 10)
	if !a.Equal(b) {
		t.Error("expected equal devices")
	}

	r1, r2 := 100.0, 100.0
	a.MaxAbsoluteRate, b.MaxAbsoluteRate = &r1, &r2
	if !a.Equal(b) {
		t.Error("expected rate limits to compare by value")
	}

	r2 = 200
	if a.Equal(b) {
		t.Error("expected different rate limits to differ")
	}

	b.MaxAbsoluteRate = nil
	if a.Equal(b) {
		t.Error("expected limited and unlimited devices to differ")
	}
}

func TestValveRecomputeFromLength(t *testing.T) {
	v := NewValve(0.7, 0.003)
	v.RecomputeFromLength(8)
	if v.PipeAdditionalLength != 8 {
		t.Errorf("expected 8, got %v", v.PipeAdditionalLength)
	}
	v.RecomputeFromLength(20)
	if v.PipeAdditionalLength != 8 {
		t.Errorf("expected resolved length to stick, got %v", v.PipeAdditionalLength)
	}
}

func TestParseDeviceStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    DeviceStatus
		wantErr bool
	}{
		{"", DeviceOpen, false},
		{"OPEN", DeviceOpen, false},
		{"SHUT", DeviceShut, false},
		{"AUTO", DeviceOpen, true},
	}
	for _, tt := range tests {
		got, err := ParseDeviceStatus(tt.input)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDeviceStatus(%q) = %s, %v", tt.input, got, err)
		}
	}
}
