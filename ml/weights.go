package ml

import "errors"

// ClassWeights computes balanced inverse-frequency weights over the
// training labels: w(c) = n / (numClasses * count(c)). Delayed flights are
// the minority class in real traffic, so without this the optimizer would
// collapse onto the majority. Pure statistic, recomputed every training run.
func ClassWeights(labels []int) (map[int]float64, error) {
	if len(labels) == 0 {
		return nil, errors.New("labels is empty")
	}
	counts := make(map[int]int)
	for _, label := range labels {
		counts[label]++
	}
	n := float64(len(labels))
	k := float64(len(counts))
	weights := make(map[int]float64, len(counts))
	for label, count := range counts {
		weights[label] = n / (k * float64(count))
	}
	return weights, nil
}
