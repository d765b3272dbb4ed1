package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAUC(t *testing.T) {
	t.Run("perfect ranking", func(t *testing.T) {
		auc, err := AUC([]int{0, 0, 1, 1}, []float64{0.1, 0.2, 0.8, 0.9})
		require.NoError(t, err)
		assert.Equal(t, 1.0, auc)
	})

	t.Run("inverted ranking", func(t *testing.T) {
		auc, err := AUC([]int{0, 0, 1, 1}, []float64{0.9, 0.8, 0.2, 0.1})
		require.NoError(t, err)
		assert.Equal(t, 0.0, auc)
	})

	t.Run("all scores tied", func(t *testing.T) {
		auc, err := AUC([]int{0, 1, 0, 1}, []float64{0.5, 0.5, 0.5, 0.5})
		require.NoError(t, err)
		assert.InDelta(t, 0.5, auc, 1e-12)
	})

	t.Run("partial ties averaged", func(t *testing.T) {
		// One positive tied with one negative at 0.5, one clean pair.
		auc, err := AUC([]int{0, 1, 0, 1}, []float64{0.5, 0.5, 0.1, 0.9})
		require.NoError(t, err)
		assert.InDelta(t, 0.875, auc, 1e-12)
	})

	t.Run("single class is undefined", func(t *testing.T) {
		_, err := AUC([]int{1, 1}, []float64{0.4, 0.6})
		assert.Error(t, err)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := AUC([]int{1, 0}, []float64{0.4})
		assert.Error(t, err)
	})
}

func TestLift(t *testing.T) {
	// 10 rows, 3 converted overall (30%). The top 2 scored rows both
	// converted, so top-20% lift is 1.0/0.3.
	labels := []int{1, 1, 0, 0, 1, 0, 0, 0, 0, 0}
	scores := []float64{0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1, 0.05}

	assert.InDelta(t, 1.0/0.3, Lift(labels, scores, 0.2), 1e-9)

	// Top 10% is the single best row, which converted.
	assert.InDelta(t, 1.0/0.3, Lift(labels, scores, 0.1), 1e-9)

	t.Run("no conversions", func(t *testing.T) {
		assert.Equal(t, 0.0, Lift([]int{0, 0, 0}, []float64{0.1, 0.2, 0.3}, 0.3))
	})

	t.Run("slice too small", func(t *testing.T) {
		assert.Equal(t, 0.0, Lift([]int{1, 0}, []float64{0.9, 0.1}, 0.1))
	})
}

func TestConfusion(t *testing.T) {
	labels := []int{1, 1, 0, 0, 1}
	scores := []float64{0.9, 0.3, 0.8, 0.2, 0.6}

	tp, fp, tn, fn := Confusion(labels, scores, 0.5)
	assert.Equal(t, 2, tp)
	assert.Equal(t, 1, fp)
	assert.Equal(t, 1, tn)
	assert.Equal(t, 1, fn)

	t.Run("threshold is strict", func(t *testing.T) {
		tp, _, _, fn := Confusion([]int{1}, []float64{0.5}, 0.5)
		assert.Equal(t, 0, tp)
		assert.Equal(t, 1, fn)
	})
}

func TestQualityGate(t *testing.T) {
	assert.Equal(t, "not production ready", QualityGate(0.55))
	assert.Equal(t, "not production ready", QualityGate(0.699))
	assert.Equal(t, "acceptable with monitoring", QualityGate(0.70))
	assert.Equal(t, "acceptable with monitoring", QualityGate(0.799))
	assert.Equal(t, "ready", QualityGate(0.80))
	assert.Equal(t, "ready", QualityGate(0.95))
}
