package splitter

import (
	"fmt"
	"math"
	"strings"

	"github.com/lehigh-university-libraries/yolosplit/internal/models"
)

// Tolerance is how far the ratio sum may drift from 1.0
const Tolerance = 0.001

// ValidateRatios returns a models.ErrRatio error unless every ratio is within
// [0,1] and their sum is within Tolerance of 1.0.
func ValidateRatios(r models.SplitRatios) error {
	for _, s := range models.AllSplits {
		v := r.Of(s)
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: %s ratio %v must be between 0 and 1", models.ErrRatio, s, v)
		}
	}

	sum := r.Sum()
	if math.Abs(sum-1.0) > Tolerance {
		return fmt.Errorf("%w: ratios must sum to 1.0, got %.3f (train=%.2f, val=%.2f, test=%.2f)",
			models.ErrRatio, sum, r.Train, r.Val, r.Test)
	}
	return nil
}

// RatioStatus reports whether the ratios are usable and a short summary for display
func RatioStatus(train, val, test float64) (bool, string) {
	r := models.SplitRatios{Train: train, Val: val, Test: test}
	valid := ValidateRatios(r) == nil

	status := "✅ Valid"
	if !valid {
		status = "❌ Invalid"
	}

	var b strings.Builder
	b.WriteString("Current Ratios:\n")
	fmt.Fprintf(&b, "- Train: %.0f%%\n", train*100)
	fmt.Fprintf(&b, "- Val: %.0f%%\n", val*100)
	fmt.Fprintf(&b, "- Test: %.0f%%\n", test*100)
	fmt.Fprintf(&b, "\nTotal: %.0f%% %s\n", r.Sum()*100, status)
	b.WriteString("\nRatios must sum to 1.0. Set any ratio to 0 to skip that split.")

	return valid, b.String()
}
