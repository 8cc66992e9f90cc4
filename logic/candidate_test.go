package logic

import (
	"math"
	"testing"
)

func TestPick_BaseOutranksAnyScore(t *testing.T) {
	cands := []Candidate{
		{Target: pos(1, 1), Score: math.Inf(1), Category: CategoryDensity},
		{Target: pos(0, 0), Score: 0.1, Category: CategoryBaseFallback},
		{Target: pos(2, 2), Score: 5, Category: CategoryEnemy},
	}
	if got := pick(cands); got.Category != CategoryBaseFallback {
		t.Fatalf("pick=%+v want base_fallback", got)
	}
}

func TestPick_HighestScoreThenFirstSeen(t *testing.T) {
	cands := []Candidate{
		{Target: pos(1, 1), Score: 0.5, Category: CategoryBlueGem},
		{Target: pos(2, 2), Score: 2, Category: CategoryEnemy},
		{Target: pos(3, 3), Score: 2, Category: CategoryRedGem},
	}
	got := pick(cands)
	if got.Category != CategoryEnemy || got.Target != pos(2, 2) {
		t.Fatalf("pick=%+v want the first score-2 candidate", got)
	}
}

func TestCategory_Strings(t *testing.T) {
	if CategoryDensityTele.String() != "density_tele" || CategoryBaseTime.String() != "base_time" {
		t.Fatalf("unexpected names %s %s", CategoryDensityTele, CategoryBaseTime)
	}
	if Category(99).String() != "unknown" {
		t.Fatalf("out of range category should be unknown")
	}
	for c := CategoryBaseTime; c <= CategoryDensityTele; c++ {
		want := c == CategoryBaseTime || c == CategoryBaseInventory || c == CategoryBaseFallback
		if c.IsBase() != want {
			t.Fatalf("%s IsBase=%v", c, c.IsBase())
		}
	}
}

func TestWeighted(t *testing.T) {
	if c := weighted(pos(0, 0), 1.5, 3, CategoryRedSwitch); c.Score != 0.5 {
		t.Fatalf("score=%v want 0.5", c.Score)
	}
	if c := weighted(pos(0, 0), 2, 0, CategoryRedGem); !math.IsInf(c.Score, 1) {
		t.Fatalf("zero distance should score +Inf, got %v", c.Score)
	}
}
