package replen

import (
	"github.com/ClaudioSBezerra/JC-CP01-sub001/models"
)

// scoreWeight favors high-turnover products: a depleted A location hurts the
// branch three times as much as an unclassified one.
func scoreWeight(abcClass string) float64 {
	switch abcClass {
	case models.AbcClassA:
		return 3
	case models.AbcClassB:
		return 2
	default:
		return 1
	}
}

// FragmentationScore is the weighted shortage percentage for a branch:
// per eligible row (min_qty > 0), shortage = max(0,(min-current)/min)*100,
// weighted 3/2/1 by ABC class, averaged and capped at 100.
// Lower is healthier; 0 when no row has a defined minimum.
func FragmentationScore(records []models.StockRecord) float64 {
	var weightedSum, totalWeight float64
	for _, rec := range records {
		if !rec.MinQty.IsPositive() {
			continue
		}
		w := scoreWeight(rec.AbcClass)
		totalWeight += w

		gap := rec.MinQty.Sub(rec.CurrentQty)
		if !gap.IsPositive() {
			continue
		}
		shortage, _ := gap.Div(rec.MinQty).Float64()
		weightedSum += shortage * 100 * w
	}
	if totalWeight == 0 {
		return 0
	}
	score := weightedSum / totalWeight
	if score > 100 {
		score = 100
	}
	return score
}

// CountBelowMinimum counts shortage locations. Rows without a defined minimum
// are never "below minimum".
func CountBelowMinimum(records []models.StockRecord) int {
	count := 0
	for _, rec := range records {
		if rec.MinQty.IsPositive() && rec.CurrentQty.LessThanOrEqual(rec.MinQty) {
			count++
		}
	}
	return count
}

// CountEligible counts the locations the scorer considered (min_qty > 0).
func CountEligible(records []models.StockRecord) int {
	count := 0
	for _, rec := range records {
		if rec.MinQty.IsPositive() {
			count++
		}
	}
	return count
}
