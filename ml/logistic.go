package ml

import (
	"encoding/json"
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// LogisticRegression is the default delay classifier: weighted binary
// logistic regression trained with full-batch gradient descent. Weights
// start at zero and the schedule is fixed, so fitting the same data always
// produces the same parameters without needing a seed.
type LogisticRegression struct {
	Weights      []float64 `json:"weights"`
	Bias         float64   `json:"bias"`
	LearningRate float64   `json:"learning_rate"`
	Epochs       int       `json:"epochs"`
}

// NewLogisticRegression returns an untrained model with the default
// training schedule.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{LearningRate: 0.5, Epochs: 400}
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// Fit trains on the feature matrix with per-sample weighting taken from
// classWeights, so minority-class errors cost more.
func (lr *LogisticRegression) Fit(features [][]float64, labels []int, classWeights map[int]float64) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	dim := len(features[0])
	for _, row := range features {
		if len(row) != dim {
			return errors.New("ragged feature matrix")
		}
	}
	if lr.LearningRate <= 0 {
		lr.LearningRate = 0.5
	}
	if lr.Epochs <= 0 {
		lr.Epochs = 400
	}

	lr.Weights = make([]float64, dim)
	lr.Bias = 0
	grad := make([]float64, dim)

	for epoch := 0; epoch < lr.Epochs; epoch++ {
		for i := range grad {
			grad[i] = 0
		}
		gradBias := 0.0
		totalWeight := 0.0
		for i, x := range features {
			w, ok := classWeights[labels[i]]
			if !ok {
				w = 1
			}
			p := sigmoid(floats.Dot(lr.Weights, x) + lr.Bias)
			residual := w * (p - float64(labels[i]))
			floats.AddScaled(grad, residual, x)
			gradBias += residual
			totalWeight += w
		}
		floats.AddScaled(lr.Weights, -lr.LearningRate/totalWeight, grad)
		lr.Bias -= lr.LearningRate * gradBias / totalWeight
	}
	return nil
}

// Predict returns the {0,1} label for one encoded row.
func (lr *LogisticRegression) Predict(features []float64) (int, error) {
	if len(lr.Weights) == 0 {
		return 0, ErrNotTrained
	}
	if len(features) != len(lr.Weights) {
		return 0, errors.New("feature dimension mismatch")
	}
	if sigmoid(floats.Dot(lr.Weights, features)+lr.Bias) >= 0.5 {
		return 1, nil
	}
	return 0, nil
}

// MarshalParams serializes the fitted parameters.
func (lr *LogisticRegression) MarshalParams() ([]byte, error) {
	if len(lr.Weights) == 0 {
		return nil, ErrNotTrained
	}
	return json.Marshal(lr)
}

// UnmarshalParams restores fitted parameters from an artifact.
func (lr *LogisticRegression) UnmarshalParams(data []byte) error {
	var restored LogisticRegression
	if err := json.Unmarshal(data, &restored); err != nil {
		return err
	}
	if len(restored.Weights) == 0 {
		return errors.New("artifact params missing weights")
	}
	*lr = restored
	return nil
}
