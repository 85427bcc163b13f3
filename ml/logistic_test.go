package ml

import (
	"reflect"
	"testing"
)

func separableOneHotSet() ([][]float64, []int) {
	features := [][]float64{
		{1, 0, 1, 0},
		{1, 0, 0, 1},
		{1, 0, 1, 0},
		{0, 1, 0, 1},
		{0, 1, 1, 0},
		{0, 1, 0, 1},
	}
	labels := []int{0, 0, 0, 1, 1, 1}
	return features, labels
}

func TestLogisticFitPredict(t *testing.T) {
	features, labels := separableOneHotSet()
	weights := map[int]float64{0: 1, 1: 1}

	model := NewLogisticRegression()
	if err := model.Fit(features, labels, weights); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, row := range features {
		label, err := model.Predict(row)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if label != labels[i] {
			t.Fatalf("row %d: predicted %d, want %d", i, label, labels[i])
		}
	}
}

func TestLogisticFitDeterministic(t *testing.T) {
	features, labels := separableOneHotSet()
	weights := map[int]float64{0: 1, 1: 1}

	first := NewLogisticRegression()
	second := NewLogisticRegression()
	if err := first.Fit(features, labels, weights); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := second.Fit(features, labels, weights); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first.Weights, second.Weights) || first.Bias != second.Bias {
		t.Fatal("training is not deterministic")
	}
}

func TestLogisticPredictUntrained(t *testing.T) {
	model := NewLogisticRegression()
	if _, err := model.Predict([]float64{1, 0}); err != ErrNotTrained {
		t.Fatalf("expected ErrNotTrained, got %v", err)
	}
}

func TestLogisticParamsRoundTrip(t *testing.T) {
	features, labels := separableOneHotSet()
	model := NewLogisticRegression()
	if err := model.Fit(features, labels, map[int]float64{0: 1, 1: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	params, err := model.MarshalParams()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	restored := NewLogisticRegression()
	if err := restored.UnmarshalParams(params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, row := range features {
		a, _ := model.Predict(row)
		b, _ := restored.Predict(row)
		if a != b {
			t.Fatalf("restored model disagrees on %v: %d vs %d", row, a, b)
		}
	}
}

func TestLogisticFitSizeMismatch(t *testing.T) {
	model := NewLogisticRegression()
	err := model.Fit([][]float64{{1, 0}}, []int{0, 1}, nil)
	if err == nil {
		t.Fatal("expected size mismatch error")
	}
}
