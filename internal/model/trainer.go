// Package model implements the training and prediction lifecycle: a seeded
// train/validation split, a feature scaler fit on the training partition
// only, a hand-built random-forest regressor, and the persisted artifact
// bundling all three with the ordered feature schema.
package model

import (
	"fmt"
	"math/rand"
)

// splitSeed fixes the train/validation assignment across runs.
const splitSeed = 42

// validationFraction is the held-out share of the dataset.
const validationFraction = 0.2

// Metrics reports validation quality of a fitted model.
type Metrics struct {
	MSE float64 `json:"mse"`
	R2  float64 `json:"r2"`
}

// Trainer fits the scaler and forest and evaluates on the held-out
// partition.
type Trainer struct {
	forestParams ForestParams
}

// NewTrainer creates a trainer with the given forest parameters.
func NewTrainer(params ForestParams) *Trainer {
	return &Trainer{forestParams: params}
}

// Train fits the full pipeline on the feature matrix x against target y and
// returns the artifact plus validation metrics. featureNames is the ordered
// column schema persisted with the artifact; it must match x's columns.
//
// The scaler is fit on the training partition only and then applied to the
// validation partition, so validation data never leaks into the transform.
func (tr *Trainer) Train(x [][]float64, y []float64, featureNames []string) (*Artifact, Metrics, error) {
	if len(x) != len(y) {
		return nil, Metrics{}, fmt.Errorf("train: %d feature rows vs %d targets", len(x), len(y))
	}
	if len(x) > 0 && len(featureNames) != len(x[0]) {
		return nil, Metrics{}, fmt.Errorf("train: %d feature names vs %d columns", len(featureNames), len(x[0]))
	}
	trainIdx, valIdx, err := splitIndices(len(x))
	if err != nil {
		return nil, Metrics{}, err
	}

	xTrain, yTrain := take(x, y, trainIdx)
	xVal, yVal := take(x, y, valIdx)

	scaler := &StandardScaler{}
	if err := scaler.Fit(xTrain); err != nil {
		return nil, Metrics{}, fmt.Errorf("train: %w", err)
	}
	xTrainScaled, err := scaler.TransformAll(xTrain)
	if err != nil {
		return nil, Metrics{}, fmt.Errorf("train: %w", err)
	}
	xValScaled, err := scaler.TransformAll(xVal)
	if err != nil {
		return nil, Metrics{}, fmt.Errorf("train: %w", err)
	}

	forest, err := FitForest(xTrainScaled, yTrain, tr.forestParams)
	if err != nil {
		return nil, Metrics{}, fmt.Errorf("train: %w", err)
	}

	metrics, err := evaluate(forest, xValScaled, yVal)
	if err != nil {
		return nil, Metrics{}, fmt.Errorf("train: %w", err)
	}

	artifact := &Artifact{
		FeatureNames: append([]string(nil), featureNames...),
		Scaler:       scaler,
		Forest:       forest,
		Metrics:      metrics,
	}
	return artifact, metrics, nil
}

// splitIndices shuffles row indices with a fixed seed and carves off the
// validation fraction. Requires enough rows for at least one row on each
// side.
func splitIndices(n int) (train, validation []int, err error) {
	nVal := int(float64(n) * validationFraction)
	if nVal < 1 || n-nVal < 1 {
		return nil, nil, fmt.Errorf("train: need at least %d rows for an 80/20 split, got %d", minTrainingRows, n)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	rng := rand.New(rand.NewSource(splitSeed))
	rng.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	return indices[nVal:], indices[:nVal], nil
}

// minTrainingRows is the smallest dataset an 80/20 split can partition.
const minTrainingRows = 5

func take(x [][]float64, y []float64, indices []int) ([][]float64, []float64) {
	xs := make([][]float64, len(indices))
	ys := make([]float64, len(indices))
	for k, i := range indices {
		xs[k] = x[i]
		ys[k] = y[i]
	}
	return xs, ys
}

// evaluate computes mean-squared-error and coefficient of determination on
// the validation partition.
func evaluate(f *Forest, x [][]float64, y []float64) (Metrics, error) {
	n := len(y)
	if n == 0 {
		return Metrics{}, fmt.Errorf("evaluate: empty validation partition")
	}

	yMean := 0.0
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)

	var ssRes, ssTot, mse float64
	for i, row := range x {
		pred, err := f.Predict(row)
		if err != nil {
			return Metrics{}, err
		}
		d := y[i] - pred
		ssRes += d * d
		mse += d * d
		t := y[i] - yMean
		ssTot += t * t
	}
	mse /= float64(n)

	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}
	return Metrics{MSE: mse, R2: r2}, nil
}
