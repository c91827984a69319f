package service

import (
	"fmt"
	"testing"

	"homefinder/internal/config"
	"homefinder/internal/model"

	"go.uber.org/zap"
)

func testRankingConfig() config.RankingConfig {
	return config.RankingConfig{
		SemanticWeight:  0.4,
		CriteriaWeight:  0.6,
		MinFiltered:     5,
		MinRelaxed:      3,
		MaxPriceFactor:  1.25,
		MinPriceFactor:  0.75,
		ExpandedScanCap: 80,
		ResultCap:       50,
	}
}

func makeListing(id string, price, bedrooms int, neighborhood string) model.Listing {
	return model.Listing{
		ID:       id,
		Title:    "Listing " + id,
		Price:    price,
		Bedrooms: bedrooms,
		Location: model.Location{
			Address:      "1 Test St",
			Neighborhood: neighborhood,
		},
	}
}

func TestRelaxedCriteria(t *testing.T) {
	criteria := &model.SearchCriteria{
		MinPrice: intPtr(1000),
		MaxPrice: intPtr(1999),
		Bedrooms: intPtr(2),
		Location: strPtr("downtown"),
	}

	relaxed := criteria.Relaxed(1.25, 0.75)

	// Factors apply with integer truncation.
	if relaxed.MaxPrice == nil || *relaxed.MaxPrice != 2498 {
		t.Errorf("relaxed MaxPrice = %v, want 2498", relaxed.MaxPrice)
	}
	if relaxed.MinPrice == nil || *relaxed.MinPrice != 750 {
		t.Errorf("relaxed MinPrice = %v, want 750", relaxed.MinPrice)
	}
	if relaxed.Location != nil {
		t.Errorf("relaxed Location = %v, want dropped", *relaxed.Location)
	}
	if relaxed.Bedrooms == nil || *relaxed.Bedrooms != 2 {
		t.Errorf("relaxed Bedrooms = %v, want 2", relaxed.Bedrooms)
	}

	// The source criteria is untouched.
	if *criteria.MaxPrice != 1999 || criteria.Location == nil {
		t.Error("Relaxed mutated its receiver")
	}
}

func TestRank_OrdersByCombinedScore(t *testing.T) {
	ranker := NewHybridRanker(testRankingConfig(), zap.NewNop())

	// Five candidates pass filtering so no expansion kicks in. Identical
	// field scores leave ordering to the semantic component.
	criteria := &model.SearchCriteria{Bedrooms: intPtr(2)}
	candidates := []model.ScoredListing{
		{Listing: makeListing("a", 1500, 2, "downtown"), Score: 0.10},
		{Listing: makeListing("b", 1500, 2, "downtown"), Score: 0.90},
		{Listing: makeListing("c", 1500, 2, "downtown"), Score: 0.50},
		{Listing: makeListing("d", 1500, 2, "downtown"), Score: 0.70},
		{Listing: makeListing("e", 1500, 2, "downtown"), Score: 0.30},
	}

	results := ranker.Rank(criteria, candidates, nil)

	want := []string{"b", "d", "c", "e", "a"}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i, id := range want {
		if results[i].ID != id {
			t.Errorf("results[%d] = %s, want %s", i, results[i].ID, id)
		}
	}
}

func TestRank_FieldScoreDominatesAtEqualSimilarity(t *testing.T) {
	ranker := NewHybridRanker(testRankingConfig(), zap.NewNop())

	criteria := &model.SearchCriteria{MaxPrice: intPtr(2000)}
	candidates := []model.ScoredListing{
		{Listing: makeListing("pricier", 1900, 1, "downtown"), Score: 0.5},
		{Listing: makeListing("cheaper", 1000, 1, "downtown"), Score: 0.5},
		{Listing: makeListing("mid", 1500, 1, "downtown"), Score: 0.5},
		{Listing: makeListing("d", 1800, 1, "downtown"), Score: 0.5},
		{Listing: makeListing("e", 1700, 1, "downtown"), Score: 0.5},
	}

	results := ranker.Rank(criteria, candidates, nil)

	if results[0].ID != "cheaper" {
		t.Errorf("results[0] = %s, want cheaper", results[0].ID)
	}
	if results[len(results)-1].ID != "pricier" {
		t.Errorf("last result = %s, want pricier", results[len(results)-1].ID)
	}
}

func TestRank_ExpandsWithRelaxedCriteria(t *testing.T) {
	ranker := NewHybridRanker(testRankingConfig(), zap.NewNop())

	// Only one candidate fits the strict budget, but all five fit the
	// relaxed budget of 1250.
	criteria := &model.SearchCriteria{MaxPrice: intPtr(1000)}
	candidates := []model.ScoredListing{
		{Listing: makeListing("a", 950, 1, "downtown"), Score: 0.9},
		{Listing: makeListing("b", 1100, 1, "downtown"), Score: 0.8},
		{Listing: makeListing("c", 1150, 1, "downtown"), Score: 0.7},
		{Listing: makeListing("d", 1200, 1, "downtown"), Score: 0.6},
		{Listing: makeListing("e", 1250, 1, "downtown"), Score: 0.5},
	}

	results := ranker.Rank(criteria, candidates, nil)

	if len(results) != 5 {
		t.Fatalf("got %d results, want 5 after relaxed expansion", len(results))
	}
}

func TestRank_FallsBackToCatalogScan(t *testing.T) {
	ranker := NewHybridRanker(testRankingConfig(), zap.NewNop())

	// No candidate fits even the relaxed budget; the catalog supplies the
	// pool instead, and catalog-only listings score without a semantic
	// component.
	criteria := &model.SearchCriteria{MaxPrice: intPtr(1000)}
	candidates := []model.ScoredListing{
		{Listing: makeListing("expensive", 5000, 1, "downtown"), Score: 0.9},
	}
	catalog := []model.Listing{
		makeListing("cat-1", 800, 1, "downtown"),
		makeListing("cat-2", 900, 1, "downtown"),
	}

	results := ranker.Rank(criteria, candidates, catalog)

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 from catalog scan", len(results))
	}
	for _, r := range results {
		if r.ID == "expensive" {
			t.Error("over-budget candidate survived the catalog fallback")
		}
	}
}

func TestRank_CapsResults(t *testing.T) {
	cfg := testRankingConfig()
	ranker := NewHybridRanker(cfg, zap.NewNop())

	criteria := &model.SearchCriteria{Bedrooms: intPtr(1)}
	candidates := make([]model.ScoredListing, 70)
	for i := range candidates {
		candidates[i] = model.ScoredListing{
			Listing: makeListing(fmt.Sprintf("apt-%03d", i), 1000+i, 1, "downtown"),
			Score:   0.5,
		}
	}

	results := ranker.Rank(criteria, candidates, nil)

	if len(results) != cfg.ResultCap {
		t.Errorf("got %d results, want cap %d", len(results), cfg.ResultCap)
	}
}

func TestFilterCatalog(t *testing.T) {
	catalog := []model.Listing{
		makeListing("a", 1000, 1, "downtown"),
		makeListing("b", 2000, 2, "cambridge"),
		makeListing("c", 1500, 1, "downtown"),
	}

	t.Run("empty criteria returns catalog order", func(t *testing.T) {
		results := FilterCatalog(catalog, &model.SearchCriteria{}, 60)
		if len(results) != 3 {
			t.Fatalf("got %d results, want 3", len(results))
		}
		if results[0].ID != "a" || results[2].ID != "c" {
			t.Error("catalog order not preserved")
		}
	})

	t.Run("criteria filters", func(t *testing.T) {
		results := FilterCatalog(catalog, &model.SearchCriteria{Bedrooms: intPtr(1)}, 60)
		if len(results) != 2 {
			t.Fatalf("got %d results, want 2", len(results))
		}
	})

	t.Run("limit caps results", func(t *testing.T) {
		results := FilterCatalog(catalog, &model.SearchCriteria{}, 2)
		if len(results) != 2 {
			t.Fatalf("got %d results, want 2", len(results))
		}
	})
}
