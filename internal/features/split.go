package features

import (
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/desertthunder/tastemaker/internal/shared"
)

// StratifiedSplit partitions row indices into train and test sets so each label keeps its share.
//
// Each class sends round(count × testRatio) of its rows to the test set, drawn from a generator
// seeded with seed. Classes with at least two rows always keep one row on each side. Both index
// lists are returned in ascending order.
func StratifiedSplit(labels []int, testRatio float64, seed int64) (train, test []int, err error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("%w: test ratio must be in (0, 1), got %v", shared.ErrInvalidArgument, testRatio)
	}

	byClass := make(map[int][]int)
	for i, y := range labels {
		byClass[y] = append(byClass[y], i)
	}
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	slices.Sort(classes)

	rng := rand.New(rand.NewSource(seed))
	for _, c := range classes {
		idx := byClass[c]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		n := int(math.Round(float64(len(idx)) * testRatio))
		if len(idx) >= 2 {
			n = min(max(n, 1), len(idx)-1)
		}
		test = append(test, idx[:n]...)
		train = append(train, idx[n:]...)
	}

	slices.Sort(train)
	slices.Sort(test)
	return train, test, nil
}
