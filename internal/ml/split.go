package ml

import (
	"fmt"
	"math"
	"math/rand"
)

// StratifiedSplit partitions the dataset into train and test sets, sampling
// each outcome class independently so the class balance is preserved in both
// partitions. The split is deterministic for a given seed.
func StratifiedSplit(X [][]float64, y []int, testFraction float64, seed int64) (xTrain, xTest [][]float64, yTrain, yTest []int, err error) {
	if len(X) == 0 || len(X) != len(y) {
		return nil, nil, nil, nil, fmt.Errorf("cannot split %d rows against %d labels", len(X), len(y))
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, nil, nil, fmt.Errorf("test fraction %v outside (0,1)", testFraction)
	}

	var posIdx, negIdx []int
	for i, label := range y {
		if label == 1 {
			posIdx = append(posIdx, i)
		} else {
			negIdx = append(negIdx, i)
		}
	}
	if len(posIdx) == 0 || len(negIdx) == 0 {
		return nil, nil, nil, nil, fmt.Errorf("stratified split impossible: outcome has a single class")
	}

	rng := rand.New(rand.NewSource(seed))
	for _, class := range [][]int{negIdx, posIdx} {
		rng.Shuffle(len(class), func(a, b int) {
			class[a], class[b] = class[b], class[a]
		})

		nTest := int(math.Round(testFraction * float64(len(class))))
		if nTest >= len(class) {
			nTest = len(class) - 1
		}
		if nTest == 0 {
			return nil, nil, nil, nil, fmt.Errorf(
				"stratified split impossible: a class with %d samples yields an empty test partition at fraction %v",
				len(class), testFraction)
		}

		for k, i := range class {
			if k < nTest {
				xTest = append(xTest, X[i])
				yTest = append(yTest, y[i])
			} else {
				xTrain = append(xTrain, X[i])
				yTrain = append(yTrain, y[i])
			}
		}
	}

	return xTrain, xTest, yTrain, yTest, nil
}
