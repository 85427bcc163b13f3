package ml

import "fmt"

// Supported classifier algorithms. The algorithm is chosen once, at
// training-configuration time, and fixed for the artifact's lifetime.
const (
	AlgorithmLogistic     = "logistic"
	AlgorithmDecisionTree = "decision_tree"
)

// NewClassifier builds an untrained classifier for the named algorithm.
func NewClassifier(algorithm string) (Classifier, error) {
	switch algorithm {
	case AlgorithmLogistic:
		return NewLogisticRegression(), nil
	case AlgorithmDecisionTree:
		return NewDecisionTree(DefaultMaxTreeDepth), nil
	default:
		return nil, fmt.Errorf("unsupported algorithm %q", algorithm)
	}
}
