package model

import (
	"fmt"
	"math/rand"
)

// ForestParams bounds random-forest training. The zero value is not usable;
// start from DefaultForestParams.
type ForestParams struct {
	NumTrees        int   `json:"num_trees"`
	MaxDepth        int   `json:"max_depth"`
	MinSamplesSplit int   `json:"min_samples_split"`
	MinSamplesLeaf  int   `json:"min_samples_leaf"`
	Seed            int64 `json:"seed"`
}

// DefaultForestParams mirrors the production configuration: 100 trees,
// depth 10, split 5, leaf 2, fixed seed for reproducible fits.
func DefaultForestParams() ForestParams {
	return ForestParams{
		NumTrees:        100,
		MaxDepth:        10,
		MinSamplesSplit: 5,
		MinSamplesLeaf:  2,
		Seed:            42,
	}
}

// Forest is a fitted tree-ensemble regressor. Prediction averages the trees;
// importances are the normalized mean impurity decreases across trees.
type Forest struct {
	Params      ForestParams      `json:"params"`
	NumFeatures int               `json:"num_features"`
	Trees       []*RegressionTree `json:"trees"`
	Importances []float64         `json:"importances"`
}

// FitForest trains the ensemble on scaled features x against target y.
// Each tree fits a bootstrap resample drawn from a seeded source, so the
// same inputs and seed always produce an identical forest.
func FitForest(x [][]float64, y []float64, params ForestParams) (*Forest, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("fit forest: no rows")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("fit forest: %d feature rows vs %d targets", len(x), len(y))
	}
	if params.NumTrees <= 0 {
		return nil, fmt.Errorf("fit forest: num_trees must be positive")
	}

	n := len(x)
	numFeatures := len(x[0])
	rng := rand.New(rand.NewSource(params.Seed))
	tp := treeParams{
		maxDepth:        params.MaxDepth,
		minSamplesSplit: params.MinSamplesSplit,
		minSamplesLeaf:  params.MinSamplesLeaf,
	}

	f := &Forest{
		Params:      params,
		NumFeatures: numFeatures,
		Trees:       make([]*RegressionTree, params.NumTrees),
		Importances: make([]float64, numFeatures),
	}

	for t := 0; t < params.NumTrees; t++ {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = rng.Intn(n)
		}
		tree, imp := growTree(x, y, indices, tp, numFeatures)
		f.Trees[t] = tree
		for j, v := range imp {
			f.Importances[j] += v
		}
	}

	// Normalize importances to sum to 1 when any split happened at all.
	total := 0.0
	for _, v := range f.Importances {
		total += v
	}
	if total > 0 {
		for j := range f.Importances {
			f.Importances[j] /= total
		}
	}
	return f, nil
}

// Predict averages the per-tree predictions for one scaled row.
func (f *Forest) Predict(row []float64) (float64, error) {
	if len(row) != f.NumFeatures {
		return 0, fmt.Errorf("predict: want %d features got %d", f.NumFeatures, len(row))
	}
	sum := 0.0
	for _, t := range f.Trees {
		sum += t.Predict(row)
	}
	return sum / float64(len(f.Trees)), nil
}
