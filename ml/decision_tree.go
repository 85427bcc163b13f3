package ml

import (
	"encoding/json"
	"errors"
	"math"
)

// DefaultMaxTreeDepth bounds tree growth when the caller does not set one.
const DefaultMaxTreeDepth = 6

// DecisionTree is the alternative delay classifier: a gini-impurity tree
// over one-hot inputs, stored as a flat node array. Class weights scale the
// impurity counts so the minority delayed class can still win splits.
type DecisionTree struct {
	MaxDepth int        `json:"max_depth"`
	Nodes    []TreeNode `json:"nodes"`
}

// TreeNode is one node of the flattened tree. Children are indexes into the
// node array; leaves carry the predicted label.
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
}

// NewDecisionTree returns an untrained tree with the given depth bound.
func NewDecisionTree(maxDepth int) *DecisionTree {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxTreeDepth
	}
	return &DecisionTree{MaxDepth: maxDepth}
}

// Fit grows the tree. Inputs are one-hot indicators, so every split tests
// a single column against 0.5.
func (dt *DecisionTree) Fit(features [][]float64, labels []int, classWeights map[int]float64) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	if dt.MaxDepth <= 0 {
		dt.MaxDepth = DefaultMaxTreeDepth
	}
	if classWeights == nil {
		classWeights = map[int]float64{0: 1, 1: 1}
	}

	dt.Nodes = dt.buildNode(features, labels, classWeights, 0)
	return nil
}

// Predict walks the tree for one encoded row.
func (dt *DecisionTree) Predict(features []float64) (int, error) {
	if len(dt.Nodes) == 0 {
		return 0, ErrNotTrained
	}
	idx := 0
	for {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.Nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

// MarshalParams serializes the fitted tree.
func (dt *DecisionTree) MarshalParams() ([]byte, error) {
	if len(dt.Nodes) == 0 {
		return nil, ErrNotTrained
	}
	return json.Marshal(dt)
}

// UnmarshalParams restores a fitted tree from an artifact.
func (dt *DecisionTree) UnmarshalParams(data []byte) error {
	var restored DecisionTree
	if err := json.Unmarshal(data, &restored); err != nil {
		return err
	}
	if len(restored.Nodes) == 0 {
		return errors.New("artifact params missing tree nodes")
	}
	*dt = restored
	return nil
}

func (dt *DecisionTree) buildNode(features [][]float64, labels []int, classWeights map[int]float64, depth int) []TreeNode {
	label := weightedMajority(labels, classWeights)
	leaf := []TreeNode{{
		FeatureIdx: -1,
		LeftChild:  -1,
		RightChild: -1,
		ClassLabel: label,
		IsLeaf:     true,
	}}
	if depth >= dt.MaxDepth || isPure(labels) {
		return leaf
	}

	bestFeature, ok := findBestSplit(features, labels, classWeights)
	if !ok {
		return leaf
	}

	leftFeatures, leftLabels, rightFeatures, rightLabels := splitData(features, labels, bestFeature)
	if len(leftLabels) == 0 || len(rightLabels) == 0 {
		return leaf
	}

	leftNodes := dt.buildNode(leftFeatures, leftLabels, classWeights, depth+1)
	rightNodes := dt.buildNode(rightFeatures, rightLabels, classWeights, depth+1)

	root := TreeNode{
		FeatureIdx: bestFeature,
		Threshold:  0.5,
		LeftChild:  1,
		RightChild: 1 + len(leftNodes),
		ClassLabel: label,
	}
	nodes := make([]TreeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, root)
	nodes = append(nodes, leftNodes...)
	nodes = append(nodes, rightNodes...)
	return nodes
}

func findBestSplit(features [][]float64, labels []int, classWeights map[int]float64) (int, bool) {
	featureCount := len(features[0])
	bestFeature := -1
	bestImpurity := math.MaxFloat64

	for featureIdx := 0; featureIdx < featureCount; featureIdx++ {
		leftLabels, rightLabels := splitLabels(features, labels, featureIdx)
		if len(leftLabels) == 0 || len(rightLabels) == 0 {
			continue
		}
		impurity := weightedGini(leftLabels, rightLabels, classWeights)
		if impurity < bestImpurity {
			bestImpurity = impurity
			bestFeature = featureIdx
		}
	}
	if bestFeature == -1 {
		return -1, false
	}
	return bestFeature, true
}

func splitData(features [][]float64, labels []int, featureIdx int) ([][]float64, []int, [][]float64, []int) {
	var leftFeatures, rightFeatures [][]float64
	var leftLabels, rightLabels []int
	for i, row := range features {
		if row[featureIdx] <= 0.5 {
			leftFeatures = append(leftFeatures, row)
			leftLabels = append(leftLabels, labels[i])
		} else {
			rightFeatures = append(rightFeatures, row)
			rightLabels = append(rightLabels, labels[i])
		}
	}
	return leftFeatures, leftLabels, rightFeatures, rightLabels
}

func splitLabels(features [][]float64, labels []int, featureIdx int) ([]int, []int) {
	var leftLabels, rightLabels []int
	for i, row := range features {
		if row[featureIdx] <= 0.5 {
			leftLabels = append(leftLabels, labels[i])
		} else {
			rightLabels = append(rightLabels, labels[i])
		}
	}
	return leftLabels, rightLabels
}

func weightedGini(leftLabels, rightLabels []int, classWeights map[int]float64) float64 {
	leftWeight := totalWeight(leftLabels, classWeights)
	rightWeight := totalWeight(rightLabels, classWeights)
	total := leftWeight + rightWeight
	if total == 0 {
		return 0
	}
	return (leftWeight/total)*gini(leftLabels, classWeights) + (rightWeight/total)*gini(rightLabels, classWeights)
}

func gini(labels []int, classWeights map[int]float64) float64 {
	total := totalWeight(labels, classWeights)
	if total == 0 {
		return 0
	}
	counts := make(map[int]float64)
	for _, label := range labels {
		counts[label] += classWeight(label, classWeights)
	}
	impurity := 1.0
	for _, count := range counts {
		prob := count / total
		impurity -= prob * prob
	}
	return impurity
}

func totalWeight(labels []int, classWeights map[int]float64) float64 {
	var total float64
	for _, label := range labels {
		total += classWeight(label, classWeights)
	}
	return total
}

func classWeight(label int, classWeights map[int]float64) float64 {
	if w, ok := classWeights[label]; ok {
		return w
	}
	return 1
}

func weightedMajority(labels []int, classWeights map[int]float64) int {
	counts := make(map[int]float64)
	bestLabel := 0
	bestCount := -1.0
	for _, label := range labels {
		counts[label] += classWeight(label, classWeights)
		if counts[label] > bestCount {
			bestCount = counts[label]
			bestLabel = label
		}
	}
	return bestLabel
}

func isPure(labels []int) bool {
	if len(labels) == 0 {
		return true
	}
	first := labels[0]
	for _, label := range labels[1:] {
		if label != first {
			return false
		}
	}
	return true
}
