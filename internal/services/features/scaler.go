package features

import "math"

// MinMaxScaler maps a column into [0,1]. It is fit once per request.
type MinMaxScaler struct {
	min, max float64
	fitted   bool
}

// Fit records the column bounds. An empty column leaves the scaler unfitted.
func (s *MinMaxScaler) Fit(values []float64) {
	if len(values) == 0 {
		return
	}
	s.min, s.max = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		s.min = math.Min(s.min, v)
		s.max = math.Max(s.max, v)
	}
	s.fitted = true
}

// Fitted reports whether Fit saw at least one value.
func (s *MinMaxScaler) Fitted() bool { return s.fitted }

// Bounds returns the fitted min and max.
func (s *MinMaxScaler) Bounds() (float64, float64) { return s.min, s.max }

// Transform scales one value. A flat column maps every value to 0.
func (s *MinMaxScaler) Transform(v float64) float64 {
	span := s.max - s.min
	if span == 0 {
		return 0
	}
	return (v - s.min) / span
}

// TransformAll scales values into a new slice.
func (s *MinMaxScaler) TransformAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = s.Transform(v)
	}
	return out
}

// Inverse maps a scaled value back to price space. A flat column inverts to min.
func (s *MinMaxScaler) Inverse(v float64) float64 {
	return s.min + v*(s.max-s.min)
}
