// Package predictor turns one validated observation record plus a persisted
// model artifact into a price prediction with per-feature importance.
package predictor

import (
	"fmt"
	"path/filepath"

	"dynamic-price-optimizer/internal/apperr"
	"dynamic-price-optimizer/internal/feature"
	"dynamic-price-optimizer/internal/model"
)

// Result is the prediction response: the predicted price and the ensemble's
// split-decision feature importances (a model property, not a per-prediction
// attribution).
type Result struct {
	PredictedPrice    float64            `json:"predicted_price"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
}

// Predictor scores single records against a loaded artifact.
type Predictor struct {
	artifact *model.Artifact
}

// Load reads the artifact from the model directory and verifies its feature
// schema matches the one this build of the feature package produces. A
// mismatched schema would silently misalign columns, so it is rejected as a
// ModelError instead.
func Load(modelDir string) (*Predictor, error) {
	artifact, err := model.LoadArtifact(modelDir)
	if err != nil {
		return nil, err
	}
	if len(artifact.FeatureNames) != len(feature.TrainingFeatureNames) {
		return nil, schemaMismatch(modelDir, artifact.FeatureNames)
	}
	for i, name := range artifact.FeatureNames {
		if name != feature.TrainingFeatureNames[i] {
			return nil, schemaMismatch(modelDir, artifact.FeatureNames)
		}
	}
	return &Predictor{artifact: artifact}, nil
}

func schemaMismatch(modelDir string, got []string) error {
	return &apperr.ModelError{
		Path: filepath.Join(modelDir, model.ArtifactFileName),
		Err:  fmt.Errorf("artifact feature schema %v does not match expected %v", got, feature.TrainingFeatureNames),
	}
}

// Predict validates the request, rebuilds the single-record feature row,
// applies the artifact's persisted scaler and regressor, and reports the
// result. Validation failures abort before any feature computation or model
// invocation.
func (p *Predictor) Predict(req *Request) (*Result, error) {
	date, err := req.Validate()
	if err != nil {
		return nil, err
	}

	row := feature.BuildRow(feature.Record{
		Date:            date,
		Price:           *req.Price,
		CompetitorPrice: *req.CompetitorPrice,
		Sales:           *req.Sales,
		Views:           *req.Views,
		StockLevel:      *req.StockLevel,
		MaxStock:        *req.MaxStock,
	})

	scaled, err := p.artifact.Scaler.Transform(row)
	if err != nil {
		return nil, fmt.Errorf("scale features: %w", err)
	}
	predicted, err := p.artifact.Forest.Predict(scaled)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	importance := make(map[string]float64, len(p.artifact.FeatureNames))
	for i, name := range p.artifact.FeatureNames {
		importance[name] = p.artifact.Forest.Importances[i]
	}

	return &Result{
		PredictedPrice:    predicted,
		FeatureImportance: importance,
	}, nil
}

// ConstrainPrice clamps a predicted price to within maxChange (a fraction,
// e.g. 0.20) of the current price. maxChange <= 0 disables the clamp.
func ConstrainPrice(predicted, current, maxChange float64) float64 {
	if maxChange <= 0 {
		return predicted
	}
	low := current * (1 - maxChange)
	high := current * (1 + maxChange)
	if predicted < low {
		return low
	}
	if predicted > high {
		return high
	}
	return predicted
}
