package analysis

import "math"

// scoreWeights is the product-tuned weighting of the eight attributes.
// The values are a behavioral contract with existing users; do not retune
// without a product decision. They sum to 1.0.
var scoreWeights = map[ScoreKey]float64{
	ScoreHydration:   0.15,
	ScoreWrinkles:    0.20,
	ScoreFirmness:    0.12,
	ScoreRadiance:    0.12,
	ScorePores:       0.15,
	ScoreSpots:       0.08,
	ScoreDarkCircles: 0.08,
	ScoreSkinAge:     0.10,
}

// ComputeOverall derives the overall score from the per-attribute details.
// Missing attributes are skipped and the weighted mean is taken over the
// weights actually used, so a partially degraded inference response still
// yields a sensible number. An empty set yields 0.
func ComputeOverall(details map[ScoreKey]*ScoreDetail) int {
	var weightedSum, weightUsed float64
	for key, weight := range scoreWeights {
		detail, ok := details[key]
		if !ok || detail == nil {
			continue
		}
		weightedSum += detail.Value * weight
		weightUsed += weight
	}
	if weightUsed == 0 {
		return 0
	}
	return int(math.Round(weightedSum / weightUsed))
}
