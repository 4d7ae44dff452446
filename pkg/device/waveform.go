package device

import "math"

// Waveform evaluates an independent source's instantaneous value during
// transient analysis. DC operating-point and DC-sweep analyses always use
// the source's DCValue directly; Waveform only applies once Mode ==
// Transient.
type Waveform interface {
	At(t float64) float64
}

// SinWaveform implements SPICE's SIN(offset amplitude freq delay phase).
type SinWaveform struct {
	Offset    float64
	Amplitude float64
	Freq      float64
	Delay     float64
	PhaseDeg  float64
}

func (w SinWaveform) At(t float64) float64 {
	if t < w.Delay {
		return w.Offset
	}
	phase := w.PhaseDeg * math.Pi / 180.0
	return w.Offset + w.Amplitude*math.Sin(2*math.Pi*w.Freq*(t-w.Delay)+phase)
}

// PulseWaveform implements SPICE's PULSE(v1 v2 delay rise fall width period).
type PulseWaveform struct {
	V1, V2             float64
	Delay, Rise, Fall  float64
	PulseWidth, Period float64
}

func (w PulseWaveform) At(t float64) float64 {
	if t < w.Delay {
		return w.V1
	}
	t -= w.Delay
	if w.Period > 0 {
		t = math.Mod(t, w.Period)
	}
	switch {
	case t < w.Rise:
		if w.Rise == 0 {
			return w.V2
		}
		return w.V1 + (w.V2-w.V1)*t/w.Rise
	case t < w.Rise+w.PulseWidth:
		return w.V2
	case t < w.Rise+w.PulseWidth+w.Fall:
		if w.Fall == 0 {
			return w.V1
		}
		fallStart := w.Rise + w.PulseWidth
		return w.V2 - (w.V2-w.V1)*(t-fallStart)/w.Fall
	default:
		return w.V1
	}
}

// PWLWaveform implements SPICE's PWL(t1 v1 t2 v2 ...) piecewise-linear
// waveform.
type PWLWaveform struct {
	Times  []float64
	Values []float64
}

func (w PWLWaveform) At(t float64) float64 {
	if len(w.Times) == 0 {
		return 0
	}
	if t <= w.Times[0] {
		return w.Values[0]
	}
	last := len(w.Times) - 1
	if t >= w.Times[last] {
		return w.Values[last]
	}
	for i := 1; i <= last; i++ {
		if t <= w.Times[i] {
			t0, t1 := w.Times[i-1], w.Times[i]
			v0, v1 := w.Values[i-1], w.Values[i]
			return v0 + (v1-v0)*(t-t0)/(t1-t0)
		}
	}
	return w.Values[last]
}
