package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardScaler_FitTransform(t *testing.T) {
	s := &StandardScaler{}
	err := s.Fit([][]float64{
		{1, 10},
		{2, 10},
		{3, 10},
	})
	require.NoError(t, err)

	assert.InDelta(t, 2.0, s.Means[0], 1e-9)
	assert.InDelta(t, 10.0, s.Means[1], 1e-9)
	// Zero-variance column keeps scale 1
	assert.InDelta(t, 1.0, s.Scales[1], 1e-9)

	out, err := s.Transform([]float64{2, 12})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, out[0], 1e-9)
	assert.InDelta(t, 2.0, out[1], 1e-9)
}

func TestStandardScaler_EmptyAndRagged(t *testing.T) {
	s := &StandardScaler{}
	require.Error(t, s.Fit(nil))
	require.Error(t, s.Fit([][]float64{{1, 2}, {1}}))

	require.NoError(t, s.Fit([][]float64{{1, 2}, {3, 4}}))
	_, err := s.Transform([]float64{1})
	require.Error(t, err)
}
