package ml

import (
	"math"
	"testing"
)

func TestClassWeightsBalanced(t *testing.T) {
	labels := make([]int, 0, 100)
	for i := 0; i < 80; i++ {
		labels = append(labels, 0)
	}
	for i := 0; i < 20; i++ {
		labels = append(labels, 1)
	}

	weights, err := ClassWeights(labels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// n/(k*count): 100/(2*80) and 100/(2*20).
	if math.Abs(weights[0]-0.625) > 1e-9 {
		t.Fatalf("weight for class 0 = %v, want 0.625", weights[0])
	}
	if math.Abs(weights[1]-2.5) > 1e-9 {
		t.Fatalf("weight for class 1 = %v, want 2.5", weights[1])
	}
	// The minority class must carry the heavier weight.
	if weights[1] <= weights[0] {
		t.Fatalf("minority class not upweighted: %v", weights)
	}
}

func TestClassWeightsSingleClass(t *testing.T) {
	weights, err := ClassWeights([]int{0, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(weights[0]-1) > 1e-9 {
		t.Fatalf("single-class weight = %v, want 1", weights[0])
	}
}

func TestClassWeightsEmpty(t *testing.T) {
	if _, err := ClassWeights(nil); err == nil {
		t.Fatal("expected error for empty labels")
	}
}
