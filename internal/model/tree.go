package model

import "sort"

// TreeNode is one node of a fitted regression tree. Nodes are stored in a
// flat slice so the tree serializes to JSON without recursion; Left/Right
// index into the same slice, -1 marks a leaf.
type TreeNode struct {
	Feature   int     `json:"feature"` // split feature index, -1 for leaf
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"` // mean target of samples at this node
}

// RegressionTree is a CART regression tree grown by variance reduction.
type RegressionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

// treeParams bounds tree growth.
type treeParams struct {
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
}

// treeBuilder accumulates nodes and impurity-decrease importances while
// growing one tree.
type treeBuilder struct {
	x           [][]float64
	y           []float64
	params      treeParams
	nodes       []TreeNode
	importances []float64 // summed weighted impurity decrease per feature
	totalCount  float64
}

// growTree fits one tree on the sample identified by indices (bootstrap
// indices may repeat). Returns the tree and its un-normalized per-feature
// importance contributions.
func growTree(x [][]float64, y []float64, indices []int, params treeParams, numFeatures int) (*RegressionTree, []float64) {
	b := &treeBuilder{
		x:           x,
		y:           y,
		params:      params,
		importances: make([]float64, numFeatures),
		totalCount:  float64(len(indices)),
	}
	b.grow(indices, 0)
	return &RegressionTree{Nodes: b.nodes}, b.importances
}

// grow appends the subtree for the given samples, returning its node index.
func (b *treeBuilder) grow(indices []int, depth int) int {
	mean, sse := meanAndSSE(b.y, indices)

	nodeIdx := len(b.nodes)
	b.nodes = append(b.nodes, TreeNode{Feature: -1, Left: -1, Right: -1, Value: mean})

	if depth >= b.params.maxDepth || len(indices) < b.params.minSamplesSplit || sse == 0 {
		return nodeIdx
	}

	feat, threshold, gain, ok := b.bestSplit(indices, sse)
	if !ok {
		return nodeIdx
	}

	var left, right []int
	for _, i := range indices {
		if b.x[i][feat] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	// Weighted impurity decrease, sklearn-style: weight by node share of the
	// total sample.
	b.importances[feat] += float64(len(indices)) / b.totalCount * gain / float64(len(indices))

	b.nodes[nodeIdx].Feature = feat
	b.nodes[nodeIdx].Threshold = threshold
	b.nodes[nodeIdx].Left = b.grow(left, depth+1)
	b.nodes[nodeIdx].Right = b.grow(right, depth+1)
	return nodeIdx
}

// bestSplit scans every feature for the threshold minimizing the summed SSE
// of both children, honoring minSamplesLeaf. Returns ok=false when no valid
// split improves on the parent.
func (b *treeBuilder) bestSplit(indices []int, parentSSE float64) (feature int, threshold, gain float64, ok bool) {
	n := len(indices)
	bestGain := 0.0
	sorted := make([]int, n)

	for feat := range b.x[indices[0]] {
		copy(sorted, indices)
		sort.Slice(sorted, func(i, j int) bool {
			return b.x[sorted[i]][feat] < b.x[sorted[j]][feat]
		})

		// Prefix sums over the sorted order allow O(1) SSE for each cut.
		var sumL, sumSqL float64
		sumR, sumSqR := 0.0, 0.0
		for _, i := range sorted {
			sumR += b.y[i]
			sumSqR += b.y[i] * b.y[i]
		}

		for cut := 1; cut < n; cut++ {
			yi := b.y[sorted[cut-1]]
			sumL += yi
			sumSqL += yi * yi
			sumR -= yi
			sumSqR -= yi * yi

			// Only cut between distinct feature values
			if b.x[sorted[cut-1]][feat] == b.x[sorted[cut]][feat] {
				continue
			}
			if cut < b.params.minSamplesLeaf || n-cut < b.params.minSamplesLeaf {
				continue
			}

			sseL := sumSqL - sumL*sumL/float64(cut)
			sseR := sumSqR - sumR*sumR/float64(n-cut)
			g := parentSSE - sseL - sseR
			if g > bestGain {
				bestGain = g
				feature = feat
				threshold = (b.x[sorted[cut-1]][feat] + b.x[sorted[cut]][feat]) / 2
				ok = true
			}
		}
	}
	return feature, threshold, bestGain, ok
}

// Predict walks the tree for one scaled feature row.
func (t *RegressionTree) Predict(row []float64) float64 {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.Feature < 0 {
			return node.Value
		}
		if row[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

func meanAndSSE(y []float64, indices []int) (mean, sse float64) {
	for _, i := range indices {
		mean += y[i]
	}
	mean /= float64(len(indices))
	for _, i := range indices {
		d := y[i] - mean
		sse += d * d
	}
	return mean, sse
}
