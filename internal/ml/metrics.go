package ml

import (
	"fmt"
	"sort"
)

// AUC computes the area under the ROC curve via the rank-sum statistic, with
// average ranks for tied scores. Both classes must be present.
func AUC(labels []int, scores []float64) (float64, error) {
	n := len(labels)
	if n == 0 || n != len(scores) {
		return 0, fmt.Errorf("labels (%d) and scores (%d) must be the same non-zero length", len(labels), len(scores))
	}

	positives, negatives := 0, 0
	for _, label := range labels {
		if label == 1 {
			positives++
		} else {
			negatives++
		}
	}
	if positives == 0 || negatives == 0 {
		return 0, fmt.Errorf("AUC is undefined when only one class is present")
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] < scores[order[b]]
	})

	// Average rank within each tie group, 1-based.
	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && scores[order[j+1]] == scores[order[i]] {
			j++
		}
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}

	rankSum := 0.0
	for i, label := range labels {
		if label == 1 {
			rankSum += ranks[i]
		}
	}

	p := float64(positives)
	return (rankSum - p*(p+1)/2) / (p * float64(negatives)), nil
}

// Lift is the ratio of the conversion rate within the topFraction
// highest-scored rows to the overall conversion rate. Returns 0 when the
// slice or the overall rate is empty.
func Lift(labels []int, scores []float64, topFraction float64) float64 {
	n := len(labels)
	if n == 0 || n != len(scores) {
		return 0
	}

	total := 0
	for _, label := range labels {
		total += label
	}
	if total == 0 {
		return 0
	}
	overall := float64(total) / float64(n)

	k := int(topFraction * float64(n))
	if k <= 0 {
		return 0
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	converted := 0
	for _, i := range order[:k] {
		converted += labels[i]
	}
	topRate := float64(converted) / float64(k)

	return topRate / overall
}

// Confusion counts outcomes at a probability threshold (predicted positive
// iff score > threshold).
func Confusion(labels []int, scores []float64, threshold float64) (tp, fp, tn, fn int) {
	for i, label := range labels {
		predicted := scores[i] > threshold
		switch {
		case predicted && label == 1:
			tp++
		case predicted && label == 0:
			fp++
		case !predicted && label == 0:
			tn++
		default:
			fn++
		}
	}
	return tp, fp, tn, fn
}

// QualityGate maps a held-out AUC to the advisory readiness flag. It never
// fails a training run; the flag is for the operator.
func QualityGate(testAUC float64) string {
	switch {
	case testAUC < 0.70:
		return "not production ready"
	case testAUC < 0.80:
		return "acceptable with monitoring"
	default:
		return "ready"
	}
}
