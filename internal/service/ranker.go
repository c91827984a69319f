package service

import (
	"sort"

	"homefinder/internal/config"
	"homefinder/internal/model"

	"go.uber.org/zap"
)

// HybridRanker orders listings by a weighted combination of semantic
// similarity and structured-criteria match, widening the candidate pool when
// too few listings survive filtering.
type HybridRanker struct {
	cfg    config.RankingConfig
	logger *zap.Logger
}

// NewHybridRanker creates a ranker with the given weights and thresholds
func NewHybridRanker(cfg config.RankingConfig, logger *zap.Logger) *HybridRanker {
	return &HybridRanker{cfg: cfg, logger: logger}
}

type scoredResult struct {
	listing model.Listing
	score   float64
}

// Rank filters the semantic candidates against the criteria, expands the
// pool with relaxed criteria when fewer than the configured minimum pass,
// scores every survivor against the original criteria, and returns them in
// descending score order capped at the result limit.
func (r *HybridRanker) Rank(
	criteria *model.SearchCriteria,
	candidates []model.ScoredListing,
	catalog []model.Listing,
) []model.Listing {

	if !criteria.HasSemanticScores() {
		scores := make(map[string]float64, len(candidates))
		for _, c := range candidates {
			scores[c.Listing.ID] = c.Score
		}
		criteria.SemanticScores = scores
	}

	filtered := make([]model.Listing, 0, len(candidates))
	for _, c := range candidates {
		if Matches(c.Listing, criteria) {
			filtered = append(filtered, c.Listing)
		}
	}

	r.logger.Debug("filtered semantic candidates",
		zap.Int("candidates", len(candidates)),
		zap.Int("passed", len(filtered)))

	if len(filtered) < r.cfg.MinFiltered {
		filtered = r.expand(criteria, candidates, catalog)
	}

	scored := make([]scoredResult, 0, len(filtered))
	for _, listing := range filtered {
		// Listings that only appeared via catalog expansion carry a
		// semantic score of 0.
		semantic := criteria.SemanticScore(listing.ID)
		total := r.cfg.SemanticWeight*semantic + r.cfg.CriteriaWeight*FieldScore(listing, criteria)
		scored = append(scored, scoredResult{listing: listing, score: total})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > r.cfg.ResultCap {
		scored = scored[:r.cfg.ResultCap]
	}

	results := make([]model.Listing, len(scored))
	for i, s := range scored {
		results[i] = s.listing
	}
	return results
}

// expand re-filters the same semantic candidates under relaxed criteria and,
// when still too few pass, falls back to scanning the whole catalog under
// the relaxed criteria.
func (r *HybridRanker) expand(
	criteria *model.SearchCriteria,
	candidates []model.ScoredListing,
	catalog []model.Listing,
) []model.Listing {

	relaxed := criteria.Relaxed(r.cfg.MaxPriceFactor, r.cfg.MinPriceFactor)

	relaxedResults := make([]model.Listing, 0, len(candidates))
	for _, c := range candidates {
		if Matches(c.Listing, relaxed) {
			relaxedResults = append(relaxedResults, c.Listing)
		}
	}

	if len(relaxedResults) >= r.cfg.MinRelaxed {
		r.logger.Debug("relaxed criteria recovered enough candidates",
			zap.Int("passed", len(relaxedResults)))
		return relaxedResults
	}

	r.logger.Debug("semantic pool insufficient, scanning full catalog with relaxed criteria")

	scan := make([]model.Listing, 0, r.cfg.ExpandedScanCap)
	for _, listing := range catalog {
		if Matches(listing, relaxed) {
			scan = append(scan, listing)
			if len(scan) >= r.cfg.ExpandedScanCap {
				break
			}
		}
	}
	return scan
}

// FilterCatalog is the non-hybrid path: it returns catalog listings matching
// the criteria in catalog order, capped at limit.
func FilterCatalog(catalog []model.Listing, criteria *model.SearchCriteria, limit int) []model.Listing {
	results := make([]model.Listing, 0, limit)
	for _, listing := range catalog {
		if Matches(listing, criteria) {
			results = append(results, listing)
			if len(results) >= limit {
				break
			}
		}
	}
	return results
}
