package ml

import (
	"fmt"
	"math"
	"sort"
)

// Model is the black-box classifier capability the scoring pipeline depends
// on. Anything that turns a feature vector into a conversion probability
// satisfies it.
type Model interface {
	PredictProbability(features []float64) (float64, error)
}

// TreeNode is one node of a regression tree. A node with no children is a
// leaf and carries the additive raw-score contribution in Value.
type TreeNode struct {
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
	Value     float64   `json:"value,omitempty"`
}

func (n *TreeNode) predict(x []float64) float64 {
	for n.Left != nil {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// GradientBoosting is a gradient-boosted ensemble of depth-limited regression
// trees fit to the logistic loss. Fitting is fully deterministic: no row or
// feature subsampling, splits chosen by exhaustive scan.
type GradientBoosting struct {
	Estimators   int         `json:"n_estimators"`
	LearningRate float64     `json:"learning_rate"`
	MaxDepth     int         `json:"max_depth"`
	NumFeatures  int         `json:"num_features"`
	Prior        float64     `json:"prior"`
	Trees        []*TreeNode `json:"trees"`
	Importances  []float64   `json:"feature_importances"`
}

func NewGradientBoosting(estimators int, learningRate float64, maxDepth int) *GradientBoosting {
	return &GradientBoosting{
		Estimators:   estimators,
		LearningRate: learningRate,
		MaxDepth:     maxDepth,
	}
}

// Fit trains the ensemble on X (rows of feature vectors) and binary labels y.
// Both classes must be present: the log-odds prior is undefined otherwise.
func (g *GradientBoosting) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("cannot fit on an empty dataset")
	}
	if len(X) != len(y) {
		return fmt.Errorf("feature rows (%d) and labels (%d) differ in length", len(X), len(y))
	}

	g.NumFeatures = len(X[0])
	for i, row := range X {
		if len(row) != g.NumFeatures {
			return fmt.Errorf("row %d has %d features, want %d", i, len(row), g.NumFeatures)
		}
	}

	positives := 0
	for _, label := range y {
		if label == 1 {
			positives++
		}
	}
	if positives == 0 || positives == len(y) {
		return fmt.Errorf("training labels contain a single class, cannot fit")
	}

	p := float64(positives) / float64(len(y))
	g.Prior = math.Log(p / (1 - p))
	g.Trees = make([]*TreeNode, 0, g.Estimators)

	raw := make([]float64, len(y))
	grad := make([]float64, len(y))
	hess := make([]float64, len(y))
	for i := range raw {
		raw[i] = g.Prior
	}

	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}
	gains := make([]float64, g.NumFeatures)

	for m := 0; m < g.Estimators; m++ {
		for i := range raw {
			pi := sigmoid(raw[i])
			grad[i] = float64(y[i]) - pi
			hess[i] = pi * (1 - pi)
		}

		root := g.buildNode(X, grad, hess, idx, 0, gains)
		g.Trees = append(g.Trees, root)

		for i := range raw {
			raw[i] += g.LearningRate * root.predict(X[i])
		}
	}

	g.Importances = make([]float64, g.NumFeatures)
	total := 0.0
	for _, gain := range gains {
		total += gain
	}
	if total > 0 {
		for j := range gains {
			g.Importances[j] = gains[j] / total
		}
	}

	return nil
}

// buildNode grows one tree node to fit the current gradients. Split quality
// is variance reduction of the gradient; leaf values are a Newton step.
func (g *GradientBoosting) buildNode(X [][]float64, grad, hess []float64, idx []int, depth int, gains []float64) *TreeNode {
	sumG, sumH := 0.0, 0.0
	for _, i := range idx {
		sumG += grad[i]
		sumH += hess[i]
	}

	if depth >= g.MaxDepth || len(idx) < 2 {
		return leafNode(sumG, sumH)
	}

	parentScore := sumG * sumG / float64(len(idx))
	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	order := make([]int, len(idx))
	for j := 0; j < g.NumFeatures; j++ {
		copy(order, idx)
		sort.SliceStable(order, func(a, b int) bool {
			return X[order[a]][j] < X[order[b]][j]
		})

		leftG := 0.0
		for k := 0; k < len(order)-1; k++ {
			leftG += grad[order[k]]
			if X[order[k]][j] == X[order[k+1]][j] {
				continue
			}
			leftN := float64(k + 1)
			rightG := sumG - leftG
			rightN := float64(len(order) - k - 1)
			gain := leftG*leftG/leftN + rightG*rightG/rightN - parentScore
			if gain > bestGain+1e-12 {
				bestGain = gain
				bestFeature = j
				bestThreshold = (X[order[k]][j] + X[order[k+1]][j]) / 2
			}
		}
	}

	if bestFeature < 0 {
		return leafNode(sumG, sumH)
	}
	gains[bestFeature] += bestGain

	var left, right []int
	for _, i := range idx {
		if X[i][bestFeature] <= bestThreshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &TreeNode{
		Feature:   bestFeature,
		Threshold: bestThreshold,
		Left:      g.buildNode(X, grad, hess, left, depth+1, gains),
		Right:     g.buildNode(X, grad, hess, right, depth+1, gains),
	}
}

func leafNode(sumG, sumH float64) *TreeNode {
	return &TreeNode{Value: sumG / (sumH + 1e-6)}
}

// PredictProbability implements Model.
func (g *GradientBoosting) PredictProbability(features []float64) (float64, error) {
	if len(features) != g.NumFeatures {
		return 0, fmt.Errorf("got %d features, model expects %d", len(features), g.NumFeatures)
	}

	raw := g.Prior
	for _, tree := range g.Trees {
		raw += g.LearningRate * tree.predict(features)
	}
	return sigmoid(raw), nil
}

// FeatureImportances returns the normalized split-gain attribution per
// feature, in training column order.
func (g *GradientBoosting) FeatureImportances() []float64 {
	out := make([]float64, len(g.Importances))
	copy(out, g.Importances)
	return out
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
