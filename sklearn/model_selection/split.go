// Package model_selection provides dataset splitting utilities.
package model_selection

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
)

// TrainTestSplit shuffles the row indices 0..n-1 with the given seed and
// returns the train and test partitions. The test partition has
// ceil(testSize*n) rows, matching scikit-learn's train_test_split.
// testSize must be in [0, 1); the train partition must not be empty.
func TrainTestSplit(n int, testSize float64, seed int64) (train, test []int, err error) {
	if n <= 0 {
		return nil, nil, errors.NewModelError("TrainTestSplit", "empty data", errors.ErrEmptyData)
	}
	if testSize < 0 || testSize >= 1 || math.IsNaN(testSize) {
		return nil, nil, errors.NewValidationError("test_size", "must be in [0, 1)", testSize)
	}

	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest >= n {
		return nil, nil, errors.NewValueError("TrainTestSplit",
			fmt.Sprintf("with n_samples=%d and test_size=%v the resulting train set will be empty", n, testSize))
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test = perm[:nTest]
	train = perm[nTest:]
	return train, test, nil
}
