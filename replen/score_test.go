package replen

import (
	"testing"

	"github.com/ClaudioSBezerra/JC-CP01-sub001/models"
	"github.com/shopspring/decimal"
)

func stockRec(class string, current, min, max int64) models.StockRecord {
	return models.StockRecord{
		AbcClass:   class,
		CurrentQty: decimal.NewFromInt(current),
		MinQty:     decimal.NewFromInt(min),
		MaxQty:     decimal.NewFromInt(max),
	}
}

func TestFragmentationScore_NoEligibleRecords(t *testing.T) {
	records := []models.StockRecord{
		stockRec("A", 5, 0, 50),
		stockRec("B", 0, 0, 20),
	}
	if got := FragmentationScore(records); got != 0 {
		t.Fatalf("expected score 0 with no min-defined records, got %v", got)
	}
	if got := FragmentationScore(nil); got != 0 {
		t.Fatalf("expected score 0 for empty input, got %v", got)
	}
}

func TestFragmentationScore_Bounds(t *testing.T) {
	// Everything fully depleted: per-item shortage is 100, so the weighted
	// average must be exactly 100 regardless of class mix.
	records := []models.StockRecord{
		stockRec("A", 0, 10, 50),
		stockRec("B", 0, 8, 20),
		stockRec("", 0, 4, 10),
	}
	if got := FragmentationScore(records); got != 100 {
		t.Fatalf("expected score 100 when everything is empty, got %v", got)
	}

	// Everything at or above minimum: score 0.
	healthy := []models.StockRecord{
		stockRec("A", 10, 10, 50),
		stockRec("C", 30, 8, 40),
	}
	if got := FragmentationScore(healthy); got != 0 {
		t.Fatalf("expected score 0 when nothing is short, got %v", got)
	}
}

func TestFragmentationScore_WeightsFavorClassA(t *testing.T) {
	// Same shortage (50%) on a single item; an A item must dominate a mixed
	// branch more than a C item would.
	aShort := []models.StockRecord{
		stockRec("A", 5, 10, 50),
		stockRec("C", 10, 10, 20),
	}
	cShort := []models.StockRecord{
		stockRec("A", 10, 10, 50),
		stockRec("C", 5, 10, 20),
	}
	scoreA := FragmentationScore(aShort)
	scoreC := FragmentationScore(cShort)
	if scoreA <= scoreC {
		t.Fatalf("A-class shortage should outweigh C-class: a=%v c=%v", scoreA, scoreC)
	}
	// Weighted averages: A short = 50*3/(3+1)=37.5, C short = 50*1/4=12.5.
	if scoreA != 37.5 {
		t.Fatalf("expected 37.5 for A-class shortage, got %v", scoreA)
	}
	if scoreC != 12.5 {
		t.Fatalf("expected 12.5 for C-class shortage, got %v", scoreC)
	}
}

func TestFragmentationScore_MonotonicInShortage(t *testing.T) {
	base := []models.StockRecord{
		stockRec("B", 6, 10, 50),
		stockRec("C", 7, 8, 20),
	}
	worse := []models.StockRecord{
		stockRec("B", 3, 10, 50),
		stockRec("C", 7, 8, 20),
	}
	if FragmentationScore(worse) <= FragmentationScore(base) {
		t.Fatalf("score must increase as shortage deepens: base=%v worse=%v",
			FragmentationScore(base), FragmentationScore(worse))
	}
}

func TestFragmentationScore_UnclassifiedWeighsLikeC(t *testing.T) {
	unclassified := []models.StockRecord{stockRec("", 5, 10, 50)}
	classC := []models.StockRecord{stockRec("C", 5, 10, 50)}
	if FragmentationScore(unclassified) != FragmentationScore(classC) {
		t.Fatalf("unclassified should score like class C")
	}
}

func TestCountBelowMinimum(t *testing.T) {
	records := []models.StockRecord{
		stockRec("A", 5, 10, 50),  // below
		stockRec("C", 8, 8, 20),   // at minimum counts as below
		stockRec("B", 9, 8, 20),   // healthy
		stockRec("A", 0, 0, 50),   // no minimum defined: never below
	}
	if got := CountBelowMinimum(records); got != 2 {
		t.Fatalf("expected 2 below-minimum locations, got %d", got)
	}
	if got := CountEligible(records); got != 3 {
		t.Fatalf("expected 3 eligible locations, got %d", got)
	}
}
