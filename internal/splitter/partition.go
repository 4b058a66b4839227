package splitter

import (
	"math"

	"github.com/lehigh-university-libraries/yolosplit/internal/models"
)

// boundaryEpsilon absorbs float error so that e.g. 10*(0.7+0.2) floors to 9, not 8.
// It is relative: the error in n*ratio grows with n.
const boundaryEpsilon = 1e-9

// Boundaries returns the end indices of the train and val segments for n items.
// train = [0,trainEnd), val = [trainEnd,valEnd), test = [valEnd,n).
// A ratio of exactly zero always yields an empty segment; the last nonzero
// split absorbs the rounding remainder.
func Boundaries(n int, r models.SplitRatios) (trainEnd, valEnd int) {
	trainEnd = floorIndex(n, r.Train)
	valEnd = floorIndex(n, r.Train+r.Val)

	if r.Val == 0 && r.Test == 0 {
		trainEnd = n
	}
	if r.Val == 0 {
		valEnd = trainEnd
	}
	if r.Test == 0 {
		valEnd = n
	}

	trainEnd = min(max(trainEnd, 0), n)
	valEnd = min(max(valEnd, trainEnd), n)
	return trainEnd, valEnd
}

func floorIndex(n int, ratio float64) int {
	size := float64(n)
	return int(math.Floor(size*ratio + boundaryEpsilon*max(1, size)))
}

// Assign permutes the sorted stems with seed and cuts the result at Boundaries.
func Assign(sortedStems []string, r models.SplitRatios, seed int64) *models.SplitAssignment {
	permuted := Permute(sortedStems, seed)
	trainEnd, valEnd := Boundaries(len(permuted), r)

	return models.NewSplitAssignment(map[models.Split][]string{
		models.SplitTrain: permuted[:trainEnd],
		models.SplitVal:   permuted[trainEnd:valEnd],
		models.SplitTest:  permuted[valEnd:],
	})
}
