package model

import (
	"fmt"
	"math"
)

// StandardScaler centers each column to zero mean and unit variance. Fit on
// the training partition only; the fitted transform is applied unchanged to
// validation and inference inputs.
type StandardScaler struct {
	Means  []float64 `json:"means"`
	Scales []float64 `json:"scales"`
}

// Fit computes per-column mean and population standard deviation.
// Zero-variance columns keep a scale of 1 so they pass through centered.
func (s *StandardScaler) Fit(rows [][]float64) error {
	if len(rows) == 0 {
		return fmt.Errorf("fit scaler: no rows")
	}
	cols := len(rows[0])
	s.Means = make([]float64, cols)
	s.Scales = make([]float64, cols)

	for _, row := range rows {
		if len(row) != cols {
			return fmt.Errorf("fit scaler: ragged row, want %d columns got %d", cols, len(row))
		}
		for j, v := range row {
			s.Means[j] += v
		}
	}
	n := float64(len(rows))
	for j := range s.Means {
		s.Means[j] /= n
	}

	for _, row := range rows {
		for j, v := range row {
			d := v - s.Means[j]
			s.Scales[j] += d * d
		}
	}
	for j := range s.Scales {
		std := math.Sqrt(s.Scales[j] / n)
		if std == 0 {
			std = 1
		}
		s.Scales[j] = std
	}
	return nil
}

// Transform scales one row in place-safe fashion, returning a new slice.
func (s *StandardScaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.Means) {
		return nil, fmt.Errorf("transform: want %d columns got %d", len(s.Means), len(row))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Means[j]) / s.Scales[j]
	}
	return out, nil
}

// TransformAll scales a batch of rows.
func (s *StandardScaler) TransformAll(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}
